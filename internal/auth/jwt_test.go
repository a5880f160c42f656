package auth

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSecret = "test-secret-key-for-testing-purposes"

func newTestJWTService() *JWTService {
	return NewJWTService(testSecret, "ec-fulfillment", 15*time.Minute, 7*24*time.Hour)
}

func TestJWTService_IssuePair(t *testing.T) {
	service := newTestJWTService()

	pair, err := service.IssuePair("acct-123", "test@example.com", "customer")

	require.NoError(t, err)
	assert.NotEmpty(t, pair.Access.Value)
	assert.NotEqual(t, pair.Access.Value, pair.Refresh.Value)
	assert.True(t, pair.Access.ExpiresAt.Before(time.Now().Add(16*time.Minute)))
	assert.True(t, pair.Refresh.ExpiresAt.After(pair.Access.ExpiresAt))
	assert.Equal(t, 15*time.Minute, service.AccessTokenExpiry())
}

func TestJWTService_ValidateAccessToken_Valid(t *testing.T) {
	service := newTestJWTService()
	pair, err := service.IssuePair("acct-456", "test@example.com", "admin")
	require.NoError(t, err)

	claims, err := service.ValidateAccessToken(pair.Access.Value)

	require.NoError(t, err)
	assert.Equal(t, "acct-456", claims.AccountID)
	assert.Equal(t, "test@example.com", claims.Email)
	assert.Equal(t, "admin", claims.Role)
	assert.Equal(t, "acct-456", claims.Subject)
}

func TestJWTService_ValidateAccessToken_Expired(t *testing.T) {
	service := newTestJWTService()
	service.now = func() time.Time { return time.Now().Add(-time.Hour) }
	pair, err := service.IssuePair("acct-1", "test@example.com", "customer")
	require.NoError(t, err)

	service.now = time.Now
	_, err = service.ValidateAccessToken(pair.Access.Value)

	assert.ErrorIs(t, err, ErrExpiredToken)
}

func TestJWTService_ValidateAccessToken_Invalid(t *testing.T) {
	tests := []struct {
		name  string
		token string
	}{
		{"empty", ""},
		{"garbage", "not.a.token"},
		{"random string", "abcdef"},
	}
	service := newTestJWTService()
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := service.ValidateAccessToken(tt.token)
			assert.ErrorIs(t, err, ErrInvalidToken)
		})
	}
}

func TestJWTService_ValidateAccessToken_WrongSignature(t *testing.T) {
	other := NewJWTService("another-secret-key-that-is-long-enough", "ec-fulfillment", time.Minute, time.Hour)
	pair, err := other.IssuePair("acct-1", "test@example.com", "customer")
	require.NoError(t, err)

	_, err = newTestJWTService().ValidateAccessToken(pair.Access.Value)

	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestJWTService_ValidateAccessToken_WrongAlgorithm(t *testing.T) {
	claims := Claims{
		AccountID: "acct-1",
		TokenType: tokenTypeAccess,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    "ec-fulfillment",
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS512, claims).SignedString([]byte(testSecret))
	require.NoError(t, err)

	_, err = newTestJWTService().ValidateAccessToken(signed)

	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestJWTService_ValidateRefreshToken(t *testing.T) {
	service := newTestJWTService()
	pair, err := service.IssuePair("acct-789", "test@example.com", "customer")
	require.NoError(t, err)

	accountID, err := service.ValidateRefreshToken(pair.Refresh.Value)

	require.NoError(t, err)
	assert.Equal(t, "acct-789", accountID)
}

func TestJWTService_TokenTypesAreNotInterchangeable(t *testing.T) {
	service := newTestJWTService()
	pair, err := service.IssuePair("acct-1", "test@example.com", "customer")
	require.NoError(t, err)

	_, err = service.ValidateAccessToken(pair.Refresh.Value)
	assert.ErrorIs(t, err, ErrInvalidToken)

	_, err = service.ValidateRefreshToken(pair.Access.Value)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestJWTService_WrongIssuer(t *testing.T) {
	other := NewJWTService(testSecret, "someone-else", time.Minute, time.Hour)
	pair, err := other.IssuePair("acct-1", "test@example.com", "customer")
	require.NoError(t, err)

	_, err = newTestJWTService().ValidateAccessToken(pair.Access.Value)

	assert.ErrorIs(t, err, ErrInvalidToken)
}
