// Package account holds login identities. Customer details such as names and
// addresses live in the profile aggregate.
package account

import (
	"errors"
	"time"

	"github.com/example/ec-fulfillment/internal/domain/aggregate"
	"github.com/example/ec-fulfillment/internal/domain/shared"
)

const AggregateType = "Account"

const (
	RoleCustomer = "customer"
	RoleAdmin    = "admin"
)

var (
	ErrAccountNotFound    = errors.New("account not found")
	ErrEmailTaken         = errors.New("email already registered")
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrAccountDeactivated = errors.New("account is deactivated")
	ErrInvalidRole        = errors.New("unknown role")
	ErrPasswordRequired   = errors.New("password hash is required")
)

type State struct {
	ID           shared.AccountID `json:"id"`
	Email        shared.Email     `json:"email"`
	PasswordHash string           `json:"password_hash"`
	Role         string           `json:"role"`
	Active       bool             `json:"active"`
	LastLoginAt  *time.Time       `json:"last_login_at,omitempty"`
	shared.AuditInfo
}

type Account struct {
	aggregate.Root
	s State
}

// Register creates an active account. Email uniqueness is checked by the caller.
func Register(id shared.AccountID, email shared.Email, passwordHash, role string, now time.Time) (Account, error) {
	if err := shared.RequireNonBlank("account_id", string(id)); err != nil {
		return Account{}, err
	}
	if err := shared.RequireNonBlank("email", string(email)); err != nil {
		return Account{}, err
	}
	if passwordHash == "" {
		return Account{}, ErrPasswordRequired
	}
	if role != RoleCustomer && role != RoleAdmin {
		return Account{}, ErrInvalidRole
	}
	s := State{
		ID:           id,
		Email:        email,
		PasswordHash: passwordHash,
		Role:         role,
		Active:       true,
		AuditInfo:    shared.NewAuditInfo(now),
	}
	return Account{}.next(s, EventAccountRegistered, AccountRegistered{
		AccountID:    id,
		Email:        email,
		Role:         role,
		RegisteredAt: now,
	}, now), nil
}

func Reconstruct(s State, version int) Account {
	return Account{Root: aggregate.Rehydrate(version), s: s}
}

func (a Account) ID() shared.AccountID { return a.s.ID }
func (a Account) Email() shared.Email { return a.s.Email }
func (a Account) Role() string { return a.s.Role }
func (a Account) IsActive() bool { return a.s.Active }
func (a Account) PasswordHash() string { return a.s.PasswordHash }
func (a Account) State() State { return a.s }

func (a Account) RecordLogin(now time.Time) (Account, error) {
	if !a.s.Active {
		return Account{}, ErrAccountDeactivated
	}
	s := a.s
	s.LastLoginAt = &now
	return a.next(s, EventAccountLoggedIn, AccountLoggedIn{AccountID: s.ID, LoggedInAt: now}, now), nil
}

func (a Account) ChangePassword(passwordHash string, now time.Time) (Account, error) {
	if passwordHash == "" {
		return Account{}, ErrPasswordRequired
	}
	s := a.s
	s.PasswordHash = passwordHash
	s.AuditInfo = s.Touch(now)
	return a.next(s, EventAccountPasswordChanged, AccountPasswordChanged{AccountID: s.ID, ChangedAt: now}, now), nil
}

func (a Account) Deactivate(now time.Time) Account {
	if !a.s.Active {
		return a
	}
	s := a.s
	s.Active = false
	s.AuditInfo = s.Touch(now)
	return a.next(s, EventAccountDeactivated, AccountDeactivated{AccountID: s.ID, DeactivatedAt: now}, now)
}

func (a Account) Activate(now time.Time) Account {
	if a.s.Active {
		return a
	}
	s := a.s
	s.Active = true
	s.AuditInfo = s.Touch(now)
	return a.next(s, EventAccountActivated, AccountActivated{AccountID: s.ID, ActivatedAt: now}, now)
}

func (a Account) next(s State, eventType string, data any, now time.Time) Account {
	return Account{
		Root: a.With(aggregate.Event{
			AggregateID:   string(s.ID),
			AggregateType: AggregateType,
			EventType:     eventType,
			Data:          data,
			OccurredAt:    now,
		}),
		s: s,
	}
}
