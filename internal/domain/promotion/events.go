package promotion

import (
	"time"

	"github.com/example/ec-fulfillment/internal/domain/shared"
	"github.com/shopspring/decimal"
)

const (
	EventPromotionCreated     = "PromotionCreated"
	EventPromotionActivated   = "PromotionActivated"
	EventPromotionDeactivated = "PromotionDeactivated"
)

type PromotionCreated struct {
	PromotionID   shared.PromotionID `json:"promotion_id"`
	Code          string             `json:"code"`
	DiscountType  DiscountType       `json:"discount_type"`
	DiscountValue decimal.Decimal    `json:"discount_value"`
	StartsAt      time.Time          `json:"starts_at"`
	EndsAt        time.Time          `json:"ends_at"`
	CreatedAt     time.Time          `json:"created_at"`
}

type PromotionActivated struct {
	PromotionID shared.PromotionID `json:"promotion_id"`
	ActivatedAt time.Time          `json:"activated_at"`
}

type PromotionDeactivated struct {
	PromotionID   shared.PromotionID `json:"promotion_id"`
	DeactivatedAt time.Time          `json:"deactivated_at"`
}
