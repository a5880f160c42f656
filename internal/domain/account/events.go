package account

import (
	"time"

	"github.com/example/ec-fulfillment/internal/domain/shared"
)

const (
	EventAccountRegistered      = "AccountRegistered"
	EventAccountLoggedIn        = "AccountLoggedIn"
	EventAccountPasswordChanged = "AccountPasswordChanged"
	EventAccountDeactivated     = "AccountDeactivated"
	EventAccountActivated       = "AccountActivated"
)

// AccountRegistered never carries the password hash.
type AccountRegistered struct {
	AccountID    shared.AccountID `json:"account_id"`
	Email        shared.Email     `json:"email"`
	Role         string           `json:"role"`
	RegisteredAt time.Time        `json:"registered_at"`
}

type AccountLoggedIn struct {
	AccountID  shared.AccountID `json:"account_id"`
	LoggedInAt time.Time        `json:"logged_in_at"`
}

type AccountPasswordChanged struct {
	AccountID shared.AccountID `json:"account_id"`
	ChangedAt time.Time        `json:"changed_at"`
}

type AccountDeactivated struct {
	AccountID     shared.AccountID `json:"account_id"`
	DeactivatedAt time.Time        `json:"deactivated_at"`
}

type AccountActivated struct {
	AccountID   shared.AccountID `json:"account_id"`
	ActivatedAt time.Time        `json:"activated_at"`
}
