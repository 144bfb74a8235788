package validator

import (
	"github.com/go-playground/validator/v10"
)

var (
	// Validate - singleton экземпляр валидатора для переиспользования
	Validate *validator.Validate
)

func init() {
	Validate = validator.New()
}
