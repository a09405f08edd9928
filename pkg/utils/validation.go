// Package utils holds the request-validation helper shared by the HTTP
// handlers.
package utils

import (
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
	apperrors "github.com/upskillpro/backend/pkg/errors"
)

var validate = validator.New()

// ValidateStruct validates a struct against its validation tags, returning a
// 400 validation error naming every failed field.
func ValidateStruct(s any) error {
	if err := validate.Struct(s); err != nil {
		return formatValidationError(err)
	}
	return nil
}

func formatValidationError(err error) error {
	validationErrors, ok := err.(validator.ValidationErrors)
	if !ok {
		return apperrors.NewValidationError(err.Error())
	}
	msgs := make([]string, 0, len(validationErrors))
	for _, e := range validationErrors {
		msgs = append(msgs, formatFieldError(e))
	}
	return apperrors.NewValidationError(strings.Join(msgs, "; "))
}

func formatFieldError(e validator.FieldError) string {
	field := strings.ToLower(e.Field())

	switch e.Tag() {
	case "required":
		return fmt.Sprintf("%s is required", field)
	case "min":
		return fmt.Sprintf("%s must be at least %s", field, e.Param())
	case "max":
		return fmt.Sprintf("%s must be at most %s", field, e.Param())
	case "email":
		return fmt.Sprintf("%s must be a valid email", field)
	case "oneof":
		return fmt.Sprintf("%s must be one of: %s", field, e.Param())
	case "uuid":
		return fmt.Sprintf("%s must be a valid UUID", field)
	case "cidr":
		return fmt.Sprintf("%s must be a valid CIDR range", field)
	case "gte", "gt":
		return fmt.Sprintf("%s is too small", field)
	case "lte", "lt":
		return fmt.Sprintf("%s is too large", field)
	default:
		return fmt.Sprintf("%s is invalid", field)
	}
}
