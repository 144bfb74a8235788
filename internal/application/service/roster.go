package service

import (
	"fmt"
	"strings"
	"time"

	"activities/internal/appers"
	"activities/internal/application/entity"
)

// enroll переводит пользователя в участники либо в лист ожидания.
// Возвращает текст подтверждения, различающий обе ветки.
func enroll(act *entity.Activity, user *entity.User, now time.Time) (string, error) {
	if act.IsParticipant(user.ID) {
		return "", appers.AlreadyParticipant(user.Username)
	}
	if act.IsWaiting(user.ID) {
		return "", appers.AlreadyWaiting(user.Username)
	}
	// ageLimit — верхняя граница: допускаются только те, кто моложе лимита.
	if act.AgeLimit > 0 && user.AgeAt(now) >= act.AgeLimit {
		return "", appers.TooYoung(user.Username)
	}

	if len(act.Participants) < act.NumPlaces {
		act.Participants = append(act.Participants, *user)
		return fmt.Sprintf("NEW PARTICIPANT %s ADDED", strings.ToUpper(user.Username)), nil
	}
	act.WaitingList = append(act.WaitingList, *user)
	return fmt.Sprintf("PARTICIPANT %s ADDED TO WAITING LIST", strings.ToUpper(user.Username)), nil
}

// freePlace продвигает одного случайного пользователя из листа ожидания в участники.
// При заполненной активности мутации не происходит, даже если лист ожидания не пуст.
// Пустой лист ожидания при свободных местах не считается ошибкой.
func freePlace(act *entity.Activity, intn func(n int) int) (string, error) {
	if len(act.Participants) >= act.NumPlaces {
		return "", appers.ErrNoAvailablePlaces
	}
	if len(act.WaitingList) > 0 {
		i := intn(len(act.WaitingList))
		promoted := act.WaitingList[i]
		act.WaitingList = append(act.WaitingList[:i], act.WaitingList[i+1:]...)
		act.Participants = append(act.Participants, promoted)
	}
	return "NEW PARTICIPANTS ADDED", nil
}

// removeParticipant убирает пользователя из участников. Лист ожидания не трогается:
// продвижение — отдельная явная операция.
func removeParticipant(act *entity.Activity, user *entity.User) (string, error) {
	for i, p := range act.Participants {
		if p.ID == user.ID {
			act.Participants = append(act.Participants[:i], act.Participants[i+1:]...)
			return fmt.Sprintf("USER %s SUCCESSFULLY DELETED PARTICIPATION", strings.ToUpper(user.Username)), nil
		}
	}
	return "", appers.NotParticipant(user.Username)
}
