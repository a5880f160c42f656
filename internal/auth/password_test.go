package auth

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

var testHasher = BcryptHasher{Cost: bcrypt.MinCost}

func TestBcryptHasher_Hash_ValidPassword(t *testing.T) {
	tests := []struct {
		name     string
		password string
	}{
		{"8 characters", "password"},
		{"long password", "this-is-a-very-long-password-123!@#"},
		{"with unicode", "パスワード12345"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			hash, err := testHasher.Hash(tt.password)
			require.NoError(t, err)
			assert.NotEqual(t, tt.password, hash)
			assert.True(t, len(hash) >= 60, "bcrypt hash should be at least 60 chars")
			assert.True(t, testHasher.Matches(tt.password, hash))
		})
	}
}

func TestBcryptHasher_Hash_ShortPassword(t *testing.T) {
	for _, pw := range []string{"", "1234567"} {
		_, err := testHasher.Hash(pw)
		assert.ErrorIs(t, err, ErrPasswordTooShort, pw)
	}
}

func TestBcryptHasher_Hash_Salted(t *testing.T) {
	a, err := testHasher.Hash("password123")
	require.NoError(t, err)
	b, err := testHasher.Hash("password123")
	require.NoError(t, err)

	assert.NotEqual(t, a, b)
}

func TestBcryptHasher_Matches(t *testing.T) {
	hash, err := testHasher.Hash("Password123")
	require.NoError(t, err)

	assert.True(t, testHasher.Matches("Password123", hash))
	assert.False(t, testHasher.Matches("password123", hash), "case sensitive")
	assert.False(t, testHasher.Matches("", hash))
	assert.False(t, testHasher.Matches("Password123", "not-a-hash"))
	assert.False(t, testHasher.Matches("Password123", ""))
}

func TestBcryptHasher_DefaultCost(t *testing.T) {
	hash, err := BcryptHasher{}.Hash("password123")
	require.NoError(t, err)

	cost, err := bcrypt.Cost([]byte(hash))
	require.NoError(t, err)
	assert.Equal(t, DefaultBcryptCost, cost)
}
