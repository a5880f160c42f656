package auth

import (
	"errors"

	"golang.org/x/crypto/bcrypt"
)

var ErrPasswordTooShort = errors.New("password must be at least 8 characters")

const (
	DefaultBcryptCost = 12
	minPasswordLength = 8
)

// BcryptHasher hashes and checks passwords. The zero value uses
// DefaultBcryptCost.
type BcryptHasher struct {
	Cost int
}

// Hash rejects passwords shorter than eight bytes.
func (h BcryptHasher) Hash(password string) (string, error) {
	if len(password) < minPasswordLength {
		return "", ErrPasswordTooShort
	}
	cost := h.Cost
	if cost == 0 {
		cost = DefaultBcryptCost
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), cost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}

// Matches reports whether password produced hash.
func (h BcryptHasher) Matches(password, hash string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)) == nil
}
