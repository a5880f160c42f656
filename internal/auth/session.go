package auth

import (
	"context"
	"crypto/sha256"
	"crypto/subtle"
	"encoding/hex"
	"errors"
	"time"
)

var (
	ErrSessionNotFound = errors.New("session not found")
	ErrSessionExpired  = errors.New("session has expired")
)

// Session records one issued refresh token. Only the token's hash is kept.
type Session struct {
	ID               string    `json:"id"`
	AccountID        string    `json:"account_id"`
	RefreshTokenHash string    `json:"refresh_token_hash"`
	ExpiresAt        time.Time `json:"expires_at"`
	CreatedAt        time.Time `json:"created_at"`
	IPAddress        string    `json:"ip_address,omitempty"`
	UserAgent        string    `json:"user_agent,omitempty"`
}

// SessionStore persists sessions. Get reports false for an unknown id.
type SessionStore interface {
	Create(ctx context.Context, s Session) error
	Get(ctx context.Context, id string) (Session, bool, error)
	Delete(ctx context.Context, id string) error
	DeleteByAccount(ctx context.Context, accountID string) error
}

// HashToken returns the hex SHA-256 of token.
func HashToken(token string) string {
	hash := sha256.Sum256([]byte(token))
	return hex.EncodeToString(hash[:])
}

func NewSession(id, accountID string, refresh Token, ip, userAgent string, now time.Time) Session {
	return Session{
		ID:               id,
		AccountID:        accountID,
		RefreshTokenHash: HashToken(refresh.Value),
		ExpiresAt:        refresh.ExpiresAt,
		CreatedAt:        now,
		IPAddress:        ip,
		UserAgent:        userAgent,
	}
}

// Verify checks that refreshToken is the one this session was issued for
// and that the session is still live.
func (s Session) Verify(accountID, refreshToken string, now time.Time) error {
	if now.After(s.ExpiresAt) {
		return ErrSessionExpired
	}
	if s.AccountID != accountID {
		return ErrInvalidToken
	}
	if subtle.ConstantTimeCompare([]byte(HashToken(refreshToken)), []byte(s.RefreshTokenHash)) != 1 {
		return ErrInvalidToken
	}
	return nil
}
