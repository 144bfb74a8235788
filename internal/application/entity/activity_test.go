package entity

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestClockTimeMinutesRoundTrip(t *testing.T) {
	for _, ct := range []ClockTime{{}, {Hour: 9, Minute: 5}, {Hour: 23, Minute: 59}} {
		assert.Equal(t, ct, ClockTimeFromMinutes(ct.Minutes()))
	}
	assert.Equal(t, 1125, ClockTime{Hour: 18, Minute: 45}.Minutes())
}

func TestClockTimeString(t *testing.T) {
	assert.Equal(t, "09:05", ClockTime{Hour: 9, Minute: 5}.String())
	assert.Equal(t, "00:00", ClockTime{}.String())
}

func TestAgeAt(t *testing.T) {
	born := time.Date(2008, time.March, 10, 0, 0, 0, 0, time.UTC)
	u := User{BirthDate: born}

	tests := []struct {
		at   time.Time
		want int
	}{
		{time.Date(2026, time.March, 9, 0, 0, 0, 0, time.UTC), 17},
		{time.Date(2026, time.March, 10, 0, 0, 0, 0, time.UTC), 18},
		{time.Date(2026, time.June, 15, 0, 0, 0, 0, time.UTC), 18},
	}
	for _, tc := range tests {
		assert.Equal(t, tc.want, u.AgeAt(tc.at), "at %s", tc.at.Format("2006-01-02"))
	}
}

func TestComposedDate(t *testing.T) {
	req := ActivityRequest{Day: 20, Month: 10, Year: 2026}
	assert.Equal(t, time.Date(2026, time.October, 20, 0, 0, 0, 0, time.UTC), req.ComposedDate())
}
