package service

import (
	"fmt"
	"time"

	"activities/internal/appers"
	"activities/internal/application/entity"
)

// checkRules проверяет заявку на активность по фиксированному набору правил.
// Порядок проверок фиксирован: побеждает первое нарушенное правило,
// от этого зависит детерминированность текста причины.
func checkRules(req *entity.ActivityRequest, now time.Time) error {
	if req == nil {
		return appers.ValidationFailed("REQUEST IS NULL")
	}
	if req.Name == "" {
		return appers.ValidationFailed("NAME IS EMPTY")
	}
	if req.Description == "" {
		return appers.ValidationFailed("DESCRIPTION IS EMPTY")
	}
	if req.NumPlaces < 1 {
		return appers.ValidationFailed("NUMBER OF PLACES HAVE TO BE GREATER THAN 0")
	}
	if req.Day < 1 || req.Day > 31 {
		return appers.ValidationFailed("DAY HAVE TO BE BETWEEN 1 AND 31")
	}
	if req.Month < 1 || req.Month > 12 {
		return appers.ValidationFailed("MONTH HAVE TO BE BETWEEN 1 AND 12")
	}
	if req.AgeLimit < 0 {
		return appers.ValidationFailed("AGE CAN NOT BE LESS THAN 0")
	}
	if !isFebruaryCorrect(req.Year, req.Month, req.Day) {
		return appers.ValidationFailed("FEBRUARY HAVE TO BE BETWEEN 1 AND 28 OR 29")
	}
	if req.Year < now.Year() {
		return appers.ValidationFailed(fmt.Sprintf("YEAR HAVE TO BE %d OR LATER", now.Year()))
	}
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
	if req.ComposedDate().Before(today) {
		return appers.ValidationFailed(fmt.Sprintf("DATE HAVE TO BE %s OR LATER", today.Format("2006-01-02")))
	}
	if req.StartHour < 0 || req.StartHour > 23 {
		return appers.ValidationFailed("START HOUR HAVE TO BE BETWEEN 0 AND 23")
	}
	if req.StartMinute < 0 || req.StartMinute > 59 {
		return appers.ValidationFailed("START MINUTE HAVE TO BE BETWEEN 0 AND 59")
	}
	if req.EndHour < 0 || req.EndHour > 23 {
		return appers.ValidationFailed("END HOUR HAVE TO BE BETWEEN 0 AND 23")
	}
	if req.EndMinute < 0 || req.EndMinute > 59 {
		return appers.ValidationFailed("END MINUTE HAVE TO BE BETWEEN 0 AND 59")
	}
	return nil
}

func isLeapYear(year int) bool {
	return (year%4 == 0 && year%100 != 0) || year%400 == 0
}

func isFebruaryCorrect(year, month, day int) bool {
	if month != 2 {
		return true
	}
	if isLeapYear(year) {
		return day <= 29
	}
	return day <= 28
}
