package service

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/salesdojo/backend/internal/domain"
)

// NewValidator returns a validator that reports fields by their json name.
func NewValidator() *validator.Validate {
	v := validator.New()
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		if name == "" {
			return strings.ToLower(fld.Name)
		}
		return name
	})
	return v
}

// invalidInput turns a validation failure into a client-safe invalid-argument
// error. Struct and type names never reach the message.
func invalidInput(err error) error {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) || len(verrs) == 0 {
		return domain.NewInvalidArgument("validation failed")
	}

	fe := verrs[0]
	field := strings.ToLower(fe.Field())
	switch fe.Tag() {
	case "required":
		return domain.NewInvalidArgument(fmt.Sprintf("%s is required", field))
	case "email":
		return domain.NewInvalidArgument(fmt.Sprintf("%s must be a valid email address", field))
	case "min":
		return domain.NewInvalidArgument(fmt.Sprintf("%s must be at least %s", field, fe.Param()))
	case "max":
		return domain.NewInvalidArgument(fmt.Sprintf("%s must be at most %s", field, fe.Param()))
	case "oneof":
		return domain.NewInvalidArgument(fmt.Sprintf("%s must be one of: %s", field, fe.Param()))
	default:
		return domain.NewInvalidArgument(fmt.Sprintf("%s is invalid", field))
	}
}
