package promotion

import (
	"errors"
	"strings"
	"time"

	"github.com/example/ec-fulfillment/internal/domain/aggregate"
	"github.com/example/ec-fulfillment/internal/domain/shared"
	"github.com/shopspring/decimal"
)

const AggregateType = "Promotion"

type DiscountType string

const (
	DiscountPercentage DiscountType = "percentage"
	DiscountFixed      DiscountType = "fixed"
)

var (
	ErrPromotionNotFound = errors.New("promotion not found")
	ErrInvalidCode       = errors.New("promotion code is required")
	ErrDuplicateCode     = errors.New("promotion code already in use")
	ErrInvalidDiscount   = errors.New("invalid discount")
	ErrInvalidPeriod     = errors.New("promotion must end after it starts")
)

var hundred = decimal.NewFromInt(100)

type State struct {
	ID            shared.PromotionID `json:"id"`
	Code          string             `json:"code"`
	Description   string             `json:"description"`
	DiscountType  DiscountType       `json:"discount_type"`
	DiscountValue decimal.Decimal    `json:"discount_value"`
	StartsAt      time.Time          `json:"starts_at"`
	EndsAt        time.Time          `json:"ends_at"`
	Active        bool               `json:"active"`
	shared.AuditInfo
}

type Promotion struct {
	aggregate.Root
	s State
}

// New creates an active promotion. Code uniqueness is checked by the caller.
func New(id shared.PromotionID, code, description string, kind DiscountType, value decimal.Decimal, startsAt, endsAt, now time.Time) (Promotion, error) {
	if err := shared.RequireNonBlank("promotion_id", string(id)); err != nil {
		return Promotion{}, err
	}
	code = NormalizeCode(code)
	if code == "" {
		return Promotion{}, ErrInvalidCode
	}
	if err := validateDiscount(kind, value); err != nil {
		return Promotion{}, err
	}
	if !endsAt.After(startsAt) {
		return Promotion{}, ErrInvalidPeriod
	}
	s := State{
		ID:            id,
		Code:          code,
		Description:   description,
		DiscountType:  kind,
		DiscountValue: value,
		StartsAt:      startsAt,
		EndsAt:        endsAt,
		Active:        true,
		AuditInfo:     shared.NewAuditInfo(now),
	}
	return Promotion{}.next(s, EventPromotionCreated, PromotionCreated{
		PromotionID:   id,
		Code:          code,
		DiscountType:  kind,
		DiscountValue: value,
		StartsAt:      startsAt,
		EndsAt:        endsAt,
		CreatedAt:     now,
	}, now), nil
}

func validateDiscount(kind DiscountType, value decimal.Decimal) error {
	switch kind {
	case DiscountPercentage:
		if !value.IsPositive() || value.GreaterThan(hundred) {
			return ErrInvalidDiscount
		}
	case DiscountFixed:
		if !value.IsPositive() {
			return ErrInvalidDiscount
		}
	default:
		return ErrInvalidDiscount
	}
	return nil
}

func NormalizeCode(code string) string {
	return strings.ToUpper(strings.TrimSpace(code))
}

func Reconstruct(s State, version int) Promotion {
	return Promotion{Root: aggregate.Rehydrate(version), s: s}
}

func (p Promotion) ID() shared.PromotionID { return p.s.ID }
func (p Promotion) Code() string { return p.s.Code }
func (p Promotion) State() State { return p.s }

// IsApplicable reports whether the promotion is active and at is inside
// [StartsAt, EndsAt).
func (p Promotion) IsApplicable(at time.Time) bool {
	return p.s.Active && !at.Before(p.s.StartsAt) && at.Before(p.s.EndsAt)
}

// DiscountFor returns the discount on amount, never more than amount.
// Percentage discounts round half-up to whole units.
func (p Promotion) DiscountFor(amount decimal.Decimal) decimal.Decimal {
	if !amount.IsPositive() {
		return decimal.Zero
	}
	var d decimal.Decimal
	switch p.s.DiscountType {
	case DiscountPercentage:
		d = shared.RoundHalfUp(amount.Mul(p.s.DiscountValue).Div(hundred), 0)
	case DiscountFixed:
		d = p.s.DiscountValue
	}
	if d.GreaterThan(amount) {
		return amount
	}
	return d
}

func (p Promotion) Activate(now time.Time) Promotion {
	if p.s.Active {
		return p
	}
	s := p.s
	s.Active = true
	s.AuditInfo = s.Touch(now)
	return p.next(s, EventPromotionActivated, PromotionActivated{PromotionID: s.ID, ActivatedAt: now}, now)
}

func (p Promotion) Deactivate(now time.Time) Promotion {
	if !p.s.Active {
		return p
	}
	s := p.s
	s.Active = false
	s.AuditInfo = s.Touch(now)
	return p.next(s, EventPromotionDeactivated, PromotionDeactivated{PromotionID: s.ID, DeactivatedAt: now}, now)
}

func (p Promotion) next(s State, eventType string, data any, now time.Time) Promotion {
	return Promotion{
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
