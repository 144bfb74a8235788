package appers

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/gofiber/fiber/v2"
)

// ErrorResp — типизированный исход операции движка: статус плюс текст.
// Хэндлер различает исходы через errors.As по StatusCode.
type ErrorResp struct {
	StatusCode int    `json:"statusCode,omitempty"`
	StatusDesc string `json:"statusDesc,omitempty"`
}

func (e ErrorResp) Error() string {
	return e.StatusDesc
}

var (
	ErrActivityNotFound = ErrorResp{
		http.StatusNotFound,
		"ACTIVITY NOT FOUND",
	}
	ErrAddressNotFound = ErrorResp{
		http.StatusNotFound,
		"ADDRESS NOT FOUND",
	}
	ErrTagNotFound = ErrorResp{
		http.StatusNotFound,
		"TAG DOES NOT EXIST",
	}
	ErrUserNotFound = ErrorResp{
		http.StatusNotFound,
		"USER NOT FOUND",
	}
	ErrNoDataFound = ErrorResp{
		http.StatusNotFound,
		"NO DATA FOUND",
	}
	ErrActivityExists = ErrorResp{
		http.StatusConflict,
		"ACTIVITY ALREADY EXISTS",
	}
	// Кандидат удалён в пользу ранее существующей активности.
	ErrDuplicateDeleted = ErrorResp{
		http.StatusConflict,
		"ACTIVITY DELETED BECAUSE ALREADY EXISTENT",
	}
	ErrSlotTaken = ErrorResp{
		http.StatusConflict,
		"THE ADDRESS IS ALREADY BOOK FOR AN OTHER ACTIVITY",
	}
	ErrNoAvailablePlaces = ErrorResp{
		http.StatusConflict,
		"NO AVAILABLE PLACES",
	}
	ErrNoTagsResolved = ErrorResp{
		http.StatusBadRequest,
		"NO TAGS WERE ADDED",
	}
	ErrOpinionExists = ErrorResp{
		http.StatusConflict,
		"OPINION ALREADY EXISTS",
	}
	ErrOpinionNotFound = ErrorResp{
		http.StatusNotFound,
		"NO OPINION WAS FOUND",
	}
	ErrOpinionsNotDeleted = ErrorResp{
		http.StatusInternalServerError,
		"OPINIONS COULDN'T BE DELETED",
	}
	ErrRatingOutOfRange = ErrorResp{
		http.StatusBadRequest,
		"RATING HAS TO BE BETWEEN 0 AND 10",
	}
)

// ValidationFailed — нарушение правила содержимого заявки (причина из фиксированного набора).
func ValidationFailed(reason string) ErrorResp {
	return ErrorResp{StatusCode: http.StatusBadRequest, StatusDesc: reason}
}

func NotCreator(username string) ErrorResp {
	return ErrorResp{
		StatusCode: http.StatusUnauthorized,
		StatusDesc: fmt.Sprintf("USER %s IS NOT THE CREATOR", strings.ToUpper(username)),
	}
}

func AlreadyParticipant(username string) ErrorResp {
	return ErrorResp{
		StatusCode: http.StatusConflict,
		StatusDesc: fmt.Sprintf("USER %s IS ALREADY A PARTICIPANT", strings.ToUpper(username)),
	}
}

func AlreadyWaiting(username string) ErrorResp {
	return ErrorResp{
		StatusCode: http.StatusConflict,
		StatusDesc: fmt.Sprintf("USER %s IS ALREADY IN THE WAITING LIST", strings.ToUpper(username)),
	}
}

func TooYoung(username string) ErrorResp {
	return ErrorResp{
		StatusCode: http.StatusForbidden,
		StatusDesc: fmt.Sprintf("USER %s IS TOO YOUNG", strings.ToUpper(username)),
	}
}

func NotParticipant(username string) ErrorResp {
	return ErrorResp{
		StatusCode: http.StatusNotFound,
		StatusDesc: fmt.Sprintf("USER %s IS NOT A PARTICIPANT", strings.ToUpper(username)),
	}
}

// NotParticipantConflict — вариант для оценок: статус конфликта, а не not found.
func NotParticipantConflict(username string) ErrorResp {
	return ErrorResp{
		StatusCode: http.StatusConflict,
		StatusDesc: fmt.Sprintf("USER %s IS NOT A PARTICIPANT", strings.ToUpper(username)),
	}
}

func OpinionAlreadyAdded(username string) ErrorResp {
	return ErrorResp{
		StatusCode: http.StatusConflict,
		StatusDesc: fmt.Sprintf("USER %s ALREADY ADDED AN OPINION TO THIS ACTIVITY", strings.ToUpper(username)),
	}
}

func SanitizeError(c *fiber.Ctx, err error) error {
	var errResp ErrorResp

	if ok := errors.As(err, &errResp); ok {
		return c.Status(errResp.StatusCode).JSON(fiber.Map{
			"message": errResp.StatusDesc,
		})
	} else {
		return NewErr(c, http.StatusInternalServerError, err)
	}
}

func NewErr(ctx *fiber.Ctx, status int, err error) error {
	return ctx.Status(status).JSON(fiber.Map{
		"message": err.Error(),
	})
}
