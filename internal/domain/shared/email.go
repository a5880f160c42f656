package shared

import (
	"regexp"
	"strings"
)

var emailRegex = regexp.MustCompile(`^[a-z0-9._%+\-]+@[a-z0-9.\-]+\.[a-z]{2,}$`)

type Email string

// NewEmail lowercases raw and checks its format.
func NewEmail(raw string) (Email, error) {
	v := strings.ToLower(strings.TrimSpace(raw))
	if !emailRegex.MatchString(v) {
		return "", &FieldError{Field: "email", Reason: "is not a valid address"}
	}
	return Email(v), nil
}

func (e Email) String() string {
	return string(e)
}
