package profile

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/example/ec-fulfillment/internal/domain/aggregate"
	"github.com/example/ec-fulfillment/internal/domain/shared"
)

const AggregateType = "Profile"

const maxAddresses = 10

var (
	ErrProfileNotFound  = errors.New("profile not found")
	ErrProfileExists    = errors.New("profile already exists for account")
	ErrInvalidName      = errors.New("name is required")
	ErrInvalidAddress   = errors.New("address is incomplete")
	ErrTooManyAddresses = errors.New("too many addresses")
	ErrAddressNotFound  = errors.New("address not found")
)

type Address struct {
	ID         shared.AddressID `json:"id"`
	Label      string           `json:"label,omitempty"`
	Recipient  string           `json:"recipient"`
	Line1      string           `json:"line1"`
	Line2      string           `json:"line2,omitempty"`
	City       string           `json:"city"`
	PostalCode string           `json:"postal_code"`
	Country    string           `json:"country"`
	IsDefault  bool             `json:"is_default"`
}

func (a Address) validate() error {
	for _, f := range []string{a.Recipient, a.Line1, a.City, a.PostalCode, a.Country} {
		if strings.TrimSpace(f) == "" {
			return ErrInvalidAddress
		}
	}
	return nil
}

// String formats the address on one line for shipping labels.
func (a Address) String() string {
	parts := []string{a.Recipient, a.Line1}
	if a.Line2 != "" {
		parts = append(parts, a.Line2)
	}
	parts = append(parts, a.City+" "+a.PostalCode, a.Country)
	return strings.Join(parts, ", ")
}

type State struct {
	ID        shared.ProfileID `json:"id"`
	AccountID shared.AccountID `json:"account_id"`
	Name      string           `json:"name"`
	Email     shared.Email     `json:"email"`
	Phone     string           `json:"phone,omitempty"`
	Addresses []Address        `json:"addresses"`
	shared.AuditInfo
}

type Profile struct {
	aggregate.Root
	s State
}

func New(id shared.ProfileID, accountID shared.AccountID, name string, email shared.Email, phone string, now time.Time) (Profile, error) {
	if err := shared.RequireNonBlank("profile_id", string(id)); err != nil {
		return Profile{}, err
	}
	if err := shared.RequireNonBlank("account_id", string(accountID)); err != nil {
		return Profile{}, err
	}
	if strings.TrimSpace(name) == "" {
		return Profile{}, ErrInvalidName
	}
	s := State{
		ID:        id,
		AccountID: accountID,
		Name:      name,
		Email:     email,
		Phone:     phone,
		AuditInfo: shared.NewAuditInfo(now),
	}
	return Profile{}.next(s, EventProfileCreated, ProfileCreated{
		ProfileID: id,
		AccountID: accountID,
		Name:      name,
		Email:     email,
		CreatedAt: now,
	}, now), nil
}

func Reconstruct(s State, version int) Profile {
	s.Addresses = cloneAddresses(s.Addresses)
	return Profile{Root: aggregate.Rehydrate(version), s: s}
}

func (p Profile) ID() shared.ProfileID { return p.s.ID }
func (p Profile) AccountID() shared.AccountID { return p.s.AccountID }
func (p Profile) Email() shared.Email { return p.s.Email }
func (p Profile) Name() string { return p.s.Name }
func (p Profile) Addresses() []Address { return cloneAddresses(p.s.Addresses) }
func (p Profile) BelongsTo(a shared.AccountID) bool { return p.s.AccountID == a }

func (p Profile) State() State {
	s := p.s
	s.Addresses = cloneAddresses(p.s.Addresses)
	return s
}

// DefaultAddress returns the address marked default.
func (p Profile) DefaultAddress() (Address, bool) {
	for _, a := range p.s.Addresses {
		if a.IsDefault {
			return a, true
		}
	}
	return Address{}, false
}

// AddAddress appends addr. The first address always becomes the default, and
// a new default clears the flag on the others.
func (p Profile) AddAddress(addr Address, now time.Time) (Profile, error) {
	if err := shared.RequireNonBlank("address_id", string(addr.ID)); err != nil {
		return Profile{}, err
	}
	if err := addr.validate(); err != nil {
		return Profile{}, err
	}
	if len(p.s.Addresses) >= maxAddresses {
		return Profile{}, fmt.Errorf("%w: limit is %d", ErrTooManyAddresses, maxAddresses)
	}

	s := p.State()
	if len(s.Addresses) == 0 {
		addr.IsDefault = true
	}
	if addr.IsDefault {
		for i := range s.Addresses {
			s.Addresses[i].IsDefault = false
		}
	}
	s.Addresses = append(s.Addresses, addr)
	s.AuditInfo = s.Touch(now)
	return p.next(s, EventAddressAdded, AddressAdded{
		ProfileID: s.ID,
		AccountID: s.AccountID,
		Address:   addr,
		AddedAt:   now,
	}, now), nil
}

// SetDefaultAddress marks id as the default. Already default is a no-op.
func (p Profile) SetDefaultAddress(id shared.AddressID, now time.Time) (Profile, error) {
	idx := -1
	for i, a := range p.s.Addresses {
		if a.ID == id {
			idx = i
		}
	}
	if idx < 0 {
		return Profile{}, ErrAddressNotFound
	}
	if p.s.Addresses[idx].IsDefault {
		return p, nil
	}
	s := p.State()
	for i := range s.Addresses {
		s.Addresses[i].IsDefault = i == idx
	}
	s.AuditInfo = s.Touch(now)
	return p.next(s, EventDefaultAddressChanged, DefaultAddressChanged{
		ProfileID: s.ID,
		AddressID: id,
		ChangedAt: now,
	}, now), nil
}

func (p Profile) next(s State, eventType string, data any, now time.Time) Profile {
	return Profile{
		Root: p.With(aggregate.Event{
			AggregateID:   string(s.ID),
			AggregateType: AggregateType,
			EventType:     eventType,
			Data:          data,
			OccurredAt:    now,
		}),
		s: s,
	}
}

func cloneAddresses(in []Address) []Address {
	if in == nil {
		return nil
	}
	out := make([]Address, len(in))
	copy(out, in)
	return out
}
