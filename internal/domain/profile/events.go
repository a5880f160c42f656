package profile

import (
	"time"

	"github.com/example/ec-fulfillment/internal/domain/shared"
)

const (
	EventProfileCreated        = "ProfileCreated"
	EventAddressAdded          = "AddressAdded"
	EventDefaultAddressChanged = "DefaultAddressChanged"
)

type ProfileCreated struct {
	ProfileID shared.ProfileID `json:"profile_id"`
	AccountID shared.AccountID `json:"account_id"`
	Name      string           `json:"name"`
	Email     shared.Email     `json:"email"`
	CreatedAt time.Time        `json:"created_at"`
}

type AddressAdded struct {
	ProfileID shared.ProfileID `json:"profile_id"`
	AccountID shared.AccountID `json:"account_id"`
	Address   Address          `json:"address"`
	AddedAt   time.Time        `json:"added_at"`
}

type DefaultAddressChanged struct {
	ProfileID shared.ProfileID `json:"profile_id"`
	AddressID shared.AddressID `json:"address_id"`
	ChangedAt time.Time        `json:"changed_at"`
}
