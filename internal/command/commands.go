package command

import (
	"time"

	"github.com/example/ec-fulfillment/internal/domain/shared"
	"github.com/example/ec-fulfillment/internal/workflow"
	"github.com/shopspring/decimal"
)

// Fields tagged `json:"-"` are filled from the path or the caller's token.

// Catalog Commands
type CreateProduct struct {
	SKU         string            `json:"sku"`
	Name        string            `json:"name"`
	Description string            `json:"description"`
	Price       decimal.Decimal   `json:"price"`
	CategoryID  shared.CategoryID `json:"category_id"`
	Stock       int               `json:"stock"`
}

type CreateCategory struct {
	Name        string            `json:"name"`
	Slug        string            `json:"slug"`
	Description string            `json:"description"`
	ParentID    shared.CategoryID `json:"parent_id"`
	SortOrder   int               `json:"sort_order"`
}

type AdjustInventory struct {
	ProductID shared.ProductID `json:"-"`
	Delta     int              `json:"delta"`
	Reason    string           `json:"reason"`
}

type CreatePromotion struct {
	Code          string          `json:"code"`
	Description   string          `json:"description"`
	DiscountType  string          `json:"discount_type"`
	DiscountValue decimal.Decimal `json:"discount_value"`
	StartsAt      time.Time       `json:"starts_at"`
	EndsAt        time.Time       `json:"ends_at"`
}

// Cart Commands
type AddToCart struct {
	AccountID shared.AccountID `json:"-"`
	ProductID shared.ProductID `json:"product_id"`
	Quantity  int              `json:"quantity"`
}

type UpdateCartItem struct {
	AccountID shared.AccountID `json:"-"`
	ProductID shared.ProductID `json:"-"`
	Quantity  int              `json:"quantity"`
}

type RemoveFromCart struct {
	AccountID shared.AccountID `json:"-"`
	ProductID shared.ProductID `json:"-"`
}

type ClearCart struct {
	AccountID shared.AccountID `json:"-"`
}

// Order Commands
type PlaceOrder struct {
	AccountID shared.AccountID `json:"-"`
	// ShippingAddress falls back to the profile's default address.
	ShippingAddress string `json:"shipping_address"`
}

type CancelOrder struct {
	Actor   workflow.Actor `json:"-"`
	OrderID shared.OrderID `json:"-"`
	Reason  string         `json:"reason"`
}

type CompleteOrder struct {
	Actor   workflow.Actor `json:"-"`
	OrderID shared.OrderID `json:"-"`
}

// Payment Commands
type InitiatePayment struct {
	Actor   workflow.Actor `json:"-"`
	OrderID shared.OrderID `json:"order_id"`
	Method  string         `json:"payment_method"`
}

type AuthorizePayment struct {
	Actor         workflow.Actor   `json:"-"`
	PaymentID     shared.PaymentID `json:"-"`
	TransactionID string           `json:"transaction_id"`
}

type CapturePayment struct {
	Actor         workflow.Actor   `json:"-"`
	PaymentID     shared.PaymentID `json:"-"`
	TransactionID string           `json:"transaction_id"`
}

type FailPayment struct {
	Actor     workflow.Actor   `json:"-"`
	PaymentID shared.PaymentID `json:"-"`
	Code      string           `json:"error_code"`
	Message   string           `json:"error_message"`
}

type RefundPayment struct {
	Actor         workflow.Actor   `json:"-"`
	PaymentID     shared.PaymentID `json:"-"`
	Amount        decimal.Decimal  `json:"amount"`
	Reason        string           `json:"reason"`
	TransactionID string           `json:"transaction_id"`
}

// Shipment Commands
type CreateShipment struct {
	OrderID           shared.OrderID `json:"order_id"`
	Address           string         `json:"shipping_address"`
	Method            string         `json:"shipping_method"`
	TrackingNumber    string         `json:"tracking_number"`
	EstimatedDelivery *time.Time     `json:"estimated_delivery_date"`
}

type UpdateShipmentStatus struct {
	ShipmentID     shared.ShipmentID `json:"-"`
	Status         string            `json:"status"`
	TrackingNumber string            `json:"tracking_number"`
	Note           string            `json:"note"`
}

type MarkDelivered struct {
	ShipmentID   shared.ShipmentID `json:"-"`
	ReceiverName string            `json:"receiver_name"`
	DeliveredAt  *time.Time        `json:"delivered_at"`
}

// Account Commands
type Register struct {
	Email    string `json:"email"`
	Password string `json:"password"`
	// Role is never read from the request body.
	Role string `json:"-"`
}

type Login struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type CreateProfile struct {
	AccountID shared.AccountID `json:"-"`
	Name      string           `json:"name"`
	Phone     string           `json:"phone"`
}

type AddAddress struct {
	Actor      workflow.Actor `json:"-"`
	Label      string         `json:"label"`
	Recipient  string         `json:"recipient"`
	Line1      string         `json:"line1"`
	Line2      string         `json:"line2"`
	City       string         `json:"city"`
	PostalCode string         `json:"postal_code"`
	Country    string         `json:"country"`
	IsDefault  bool           `json:"is_default"`
}

type SetDefaultAddress struct {
	Actor     workflow.Actor   `json:"-"`
	AddressID shared.AddressID `json:"-"`
}
