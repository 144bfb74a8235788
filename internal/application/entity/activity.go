package entity

import (
	"fmt"
	"time"

	"github.com/gofrs/uuid"
)

// ClockTime — время суток без даты (колонки *_minutes в БД).
type ClockTime struct {
	Hour   int `json:"hour"`
	Minute int `json:"minute"`
}

func ClockTimeFromMinutes(m int) ClockTime {
	return ClockTime{Hour: m / 60, Minute: m % 60}
}

func (t ClockTime) Minutes() int {
	return t.Hour*60 + t.Minute
}

func (t ClockTime) Equal(o ClockTime) bool {
	return t.Hour == o.Hour && t.Minute == o.Minute
}

func (t ClockTime) String() string {
	return fmt.Sprintf("%02d:%02d", t.Hour, t.Minute)
}

type Activity struct {
	ID          uuid.UUID  `json:"id"`
	Name        string     `json:"name"`
	Description string     `json:"description"`
	Date        time.Time  `json:"date"`
	StartTime   ClockTime  `json:"startTime"`
	EndTime     ClockTime  `json:"endTime"`
	NumPlaces   int        `json:"numPlaces"`
	AgeLimit    int        `json:"ageLimit"` // 0 = без ограничения
	Creator     User       `json:"creator"`
	AddressID   *uuid.UUID `json:"addressId,omitempty"`

	Tags         []Tag  `json:"tags"`
	Participants []User `json:"participants"`
	WaitingList  []User `json:"waitingList"`
}

// HasTag — по имени, тэги уникальны по имени.
func (a *Activity) HasTag(name string) bool {
	for _, t := range a.Tags {
		if t.Name == name {
			return true
		}
	}
	return false
}

func (a *Activity) IsParticipant(userID uuid.UUID) bool {
	for _, u := range a.Participants {
		if u.ID == userID {
			return true
		}
	}
	return false
}

func (a *Activity) IsWaiting(userID uuid.UUID) bool {
	for _, u := range a.WaitingList {
		if u.ID == userID {
			return true
		}
	}
	return false
}

// ActivityRequest — тело запроса создания/изменения активности.
// Диапазоны полей проверяет движок правил, здесь только форма.
type ActivityRequest struct {
	Name        string `json:"name" validate:"max=200"`
	Description string `json:"description" validate:"max=1000"`
	Day         int    `json:"day"`
	Month       int    `json:"month"`
	Year        int    `json:"year"`
	StartHour   int    `json:"startHour"`
	StartMinute int    `json:"startMinute"`
	EndHour     int    `json:"endHour"`
	EndMinute   int    `json:"endMinute"`
	NumPlaces   int    `json:"numPlaces"`
	AgeLimit    int    `json:"ageLimit"`
}

func (r *ActivityRequest) ComposedDate() time.Time {
	return time.Date(r.Year, time.Month(r.Month), r.Day, 0, 0, 0, 0, time.UTC)
}

type User struct {
	ID        uuid.UUID `json:"id"`
	Username  string    `json:"username"`
	FirstName string    `json:"firstName,omitempty"`
	LastName  string    `json:"lastName,omitempty"`
	Email     string    `json:"email,omitempty"`
	BirthDate time.Time `json:"birthDate,omitempty"`
}

// AgeAt — полных лет на дату at.
func (u *User) AgeAt(at time.Time) int {
	years := at.Year() - u.BirthDate.Year()
	anniversary := u.BirthDate.AddDate(years, 0, 0)
	if anniversary.After(at) {
		years--
	}
	return years
}

type Address struct {
	ID      uuid.UUID `json:"id"`
	Street  string    `json:"street"`
	City    string    `json:"city"`
	Country string    `json:"country"`
}

type Tag struct {
	ID   uuid.UUID `json:"id"`
	Name string    `json:"name"`
}

// Opinion — оценка активности участником, уникальна по паре (activity, user).
type Opinion struct {
	ActivityID uuid.UUID `json:"activityId"`
	UserID     uuid.UUID `json:"userId"`
	Username   string    `json:"username"`
	Rating     int       `json:"rating"`
	Comment    string    `json:"comment"`
}

type OpinionRequest struct {
	Rating  int    `json:"rating"`
	Comment string `json:"comment" validate:"max=1000"`
}

type TagsRequest struct {
	Names []string `json:"names" validate:"required,min=1"`
}
