package order

import (
	"time"

	"github.com/example/ec-fulfillment/internal/domain/shared"
	"github.com/shopspring/decimal"
)

const (
	EventOrderPlaced    = "OrderPlaced"
	EventOrderPaid      = "OrderPaid"
	EventOrderShipped   = "OrderShipped"
	EventOrderDelivered = "OrderDelivered"
	EventOrderCompleted = "OrderCompleted"
	EventOrderCancelled = "OrderCancelled"
)

type OrderPlaced struct {
	OrderID         shared.OrderID   `json:"order_id"`
	AccountID       shared.AccountID `json:"account_id"`
	Items           []Item           `json:"items"`
	Subtotal        decimal.Decimal  `json:"subtotal"`
	Tax             decimal.Decimal  `json:"tax"`
	ShippingCost    decimal.Decimal  `json:"shipping_cost"`
	TotalAmount     decimal.Decimal  `json:"total_amount"`
	ShippingAddress string           `json:"shipping_address"`
	PlacedAt        time.Time        `json:"placed_at"`
}

type OrderPaid struct {
	OrderID       shared.OrderID   `json:"order_id"`
	PaymentID     shared.PaymentID `json:"payment_id"`
	PaymentMethod string           `json:"payment_method"`
	Amount        decimal.Decimal  `json:"amount"`
	PaidAt        time.Time        `json:"paid_at"`
}

type OrderShipped struct {
	OrderID        shared.OrderID `json:"order_id"`
	TrackingNumber string         `json:"tracking_number,omitempty"`
	ShippedAt      time.Time      `json:"shipped_at"`
}

type OrderDelivered struct {
	OrderID     shared.OrderID `json:"order_id"`
	DeliveredAt time.Time      `json:"delivered_at"`
}

type OrderCompleted struct {
	OrderID     shared.OrderID `json:"order_id"`
	CompletedAt time.Time      `json:"completed_at"`
}

type OrderCancelled struct {
	OrderID        shared.OrderID `json:"order_id"`
	Reason         string         `json:"reason"`
	PreviousStatus Status         `json:"previous_status"`
	CancelledAt    time.Time      `json:"cancelled_at"`
}
