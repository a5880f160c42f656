package shared

import (
	"errors"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

var ErrValidation = errors.New("validation failed")

// FieldError names the field that failed validation.
type FieldError struct {
	Field  string
	Reason string
}

func (e *FieldError) Error() string {
	return fmt.Sprintf("%s %s", e.Field, e.Reason)
}

func (e *FieldError) Unwrap() error {
	return ErrValidation
}

func RequireNonBlank(field, value string) error {
	if strings.TrimSpace(value) == "" {
		return &FieldError{Field: field, Reason: "must not be blank"}
	}
	return nil
}

func RequirePositive(field string, value decimal.Decimal) error {
	if !value.IsPositive() {
		return &FieldError{Field: field, Reason: "must be greater than zero"}
	}
	return nil
}

func RequireNonNegative(field string, value decimal.Decimal) error {
	if value.IsNegative() {
		return &FieldError{Field: field, Reason: "must not be negative"}
	}
	return nil
}

// FirstNonBlank returns next when it has content, otherwise prev.
func FirstNonBlank(next, prev string) string {
	if strings.TrimSpace(next) != "" {
		return next
	}
	return prev
}
