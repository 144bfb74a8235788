package service

import (
	"errors"
	"testing"

	"activities/internal/appers"
	"activities/internal/application/entity"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCheckRulesAcceptsValidRequest(t *testing.T) {
	require.NoError(t, checkRules(validRequest(), testNow))
}

func TestCheckRulesNilRequest(t *testing.T) {
	err := checkRules(nil, testNow)
	assertValidation(t, err, "REQUEST IS NULL")
}

func TestCheckRulesOrderAndMessages(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(req *entity.ActivityRequest)
		message string
	}{
		{
			name:    "empty name",
			mutate:  func(req *entity.ActivityRequest) { req.Name = "" },
			message: "NAME IS EMPTY",
		},
		{
			name:    "empty description",
			mutate:  func(req *entity.ActivityRequest) { req.Description = "" },
			message: "DESCRIPTION IS EMPTY",
		},
		{
			name:    "zero places",
			mutate:  func(req *entity.ActivityRequest) { req.NumPlaces = 0 },
			message: "NUMBER OF PLACES HAVE TO BE GREATER THAN 0",
		},
		{
			name:    "day too large",
			mutate:  func(req *entity.ActivityRequest) { req.Day = 32 },
			message: "DAY HAVE TO BE BETWEEN 1 AND 31",
		},
		{
			name:    "month too large",
			mutate:  func(req *entity.ActivityRequest) { req.Month = 13 },
			message: "MONTH HAVE TO BE BETWEEN 1 AND 12",
		},
		{
			name:    "negative age limit",
			mutate:  func(req *entity.ActivityRequest) { req.AgeLimit = -1 },
			message: "AGE CAN NOT BE LESS THAN 0",
		},
		{
			name: "february 30 rejected",
			mutate: func(req *entity.ActivityRequest) {
				req.Month = 2
				req.Day = 30
				req.Year = 2027
			},
			message: "FEBRUARY HAVE TO BE BETWEEN 1 AND 28 OR 29",
		},
		{
			name: "february 29 of a non leap year rejected",
			mutate: func(req *entity.ActivityRequest) {
				req.Month = 2
				req.Day = 29
				req.Year = 2027
			},
			message: "FEBRUARY HAVE TO BE BETWEEN 1 AND 28 OR 29",
		},
		{
			name:    "year in the past",
			mutate:  func(req *entity.ActivityRequest) { req.Year = 2025 },
			message: "YEAR HAVE TO BE 2026 OR LATER",
		},
		{
			name: "date earlier than today",
			mutate: func(req *entity.ActivityRequest) {
				req.Month = 1
				req.Day = 10
			},
			message: "DATE HAVE TO BE 2026-06-15 OR LATER",
		},
		{
			name:    "start hour out of range",
			mutate:  func(req *entity.ActivityRequest) { req.StartHour = 24 },
			message: "START HOUR HAVE TO BE BETWEEN 0 AND 23",
		},
		{
			name:    "start minute out of range",
			mutate:  func(req *entity.ActivityRequest) { req.StartMinute = 60 },
			message: "START MINUTE HAVE TO BE BETWEEN 0 AND 59",
		},
		{
			name:    "end hour out of range",
			mutate:  func(req *entity.ActivityRequest) { req.EndHour = -1 },
			message: "END HOUR HAVE TO BE BETWEEN 0 AND 23",
		},
		{
			name:    "end minute out of range",
			mutate:  func(req *entity.ActivityRequest) { req.EndMinute = 60 },
			message: "END MINUTE HAVE TO BE BETWEEN 0 AND 59",
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			req := validRequest()
			tc.mutate(req)
			assertValidation(t, checkRules(req, testNow), tc.message)
		})
	}
}

// Порядок фиксирован: при нескольких нарушениях сообщается первое по списку.
func TestCheckRulesFirstViolationWins(t *testing.T) {
	req := validRequest()
	req.Name = ""
	req.NumPlaces = 0
	req.StartHour = 99
	assertValidation(t, checkRules(req, testNow), "NAME IS EMPTY")
}

func TestFebruaryRule(t *testing.T) {
	assert.True(t, isFebruaryCorrect(2024, 2, 29))
	assert.False(t, isFebruaryCorrect(2023, 2, 29))
	assert.False(t, isFebruaryCorrect(2024, 2, 30))
	assert.False(t, isFebruaryCorrect(2023, 2, 30))
	assert.True(t, isFebruaryCorrect(2023, 3, 31))
}

func TestCheckRulesFebruary29LeapYearAccepted(t *testing.T) {
	req := validRequest()
	req.Year = 2028
	req.Month = 2
	req.Day = 29
	require.NoError(t, checkRules(req, testNow))
}

func TestCheckRulesTodayAccepted(t *testing.T) {
	req := validRequest()
	req.Year = 2026
	req.Month = 6
	req.Day = 15
	require.NoError(t, checkRules(req, testNow))
}

func assertValidation(t *testing.T, err error, message string) {
	t.Helper()
	require.Error(t, err)
	var resp appers.ErrorResp
	require.True(t, errors.As(err, &resp))
	assert.Equal(t, 400, resp.StatusCode)
	assert.Equal(t, message, resp.StatusDesc)
}
