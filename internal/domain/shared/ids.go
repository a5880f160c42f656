// Package shared holds the value objects and ports used across aggregates.
package shared

import (
	"strings"

	"github.com/google/uuid"
)

type (
	AccountID   string
	CartID      string
	OrderID     string
	PaymentID   string
	ShipmentID  string
	ProductID   string
	InventoryID string
	PromotionID string
	CategoryID  string
	ProfileID   string
	AddressID   string
)

// ParseID trims raw and rejects a blank value.
func ParseID[T ~string](field, raw string) (T, error) {
	v := strings.TrimSpace(raw)
	if v == "" {
		return "", &FieldError{Field: field, Reason: "must not be blank"}
	}
	return T(v), nil
}

// IDGenerator produces fresh unique identifiers.
type IDGenerator interface {
	NewID() string
}

// UUIDGenerator issues random (v4) UUIDs.
type UUIDGenerator struct{}

func (UUIDGenerator) NewID() string {
	return uuid.New().String()
}

// An account owns at most one cart and one profile, so their ids derive from
// the account id. Two first-use saves then collide on the store's version
// check instead of creating a second document.

func CartIDFor(a AccountID) CartID { return CartID("cart-" + a) }

func ProfileIDFor(a AccountID) ProfileID { return ProfileID("profile-" + a) }
