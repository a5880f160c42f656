package order

import (
	"errors"
	"fmt"
	"time"

	"github.com/example/ec-fulfillment/internal/domain/aggregate"
	"github.com/example/ec-fulfillment/internal/domain/cart"
	"github.com/example/ec-fulfillment/internal/domain/shared"
	"github.com/shopspring/decimal"
)

const AggregateType = "Order"

var (
	ErrOrderNotFound         = errors.New("order not found")
	ErrEmptyOrder            = errors.New("order must have at least one item")
	ErrShippingAddress       = errors.New("shipping address is required")
	ErrNegativeShippingCost  = errors.New("shipping cost must not be negative")
	ErrNegativeTaxRate       = errors.New("tax rate must not be negative")
	ErrSubtotalMismatch      = errors.New("item subtotal does not match unit price times quantity")
	ErrInvalidQuantity       = errors.New("quantity must be positive")
	ErrInvalidPrice          = errors.New("unit price must not be negative")
	ErrReasonRequired        = errors.New("cancellation reason is required")
	ErrPaymentMethodRequired = errors.New("payment method is required")
)

// Item is a frozen copy of a cart line.
type Item struct {
	ProductID   shared.ProductID `json:"product_id"`
	ProductName string           `json:"product_name"`
	Quantity    int              `json:"quantity"`
	UnitPrice   decimal.Decimal  `json:"unit_price"`
	Subtotal    decimal.Decimal  `json:"subtotal"`
}

// NewItem checks that subtotal equals unitPrice * quantity.
func NewItem(productID shared.ProductID, name string, quantity int, unitPrice, subtotal decimal.Decimal) (Item, error) {
	if err := shared.RequireNonBlank("product_id", string(productID)); err != nil {
		return Item{}, err
	}
	if quantity <= 0 {
		return Item{}, ErrInvalidQuantity
	}
	if unitPrice.IsNegative() {
		return Item{}, ErrInvalidPrice
	}
	if !shared.LineTotal(unitPrice, quantity).Equal(subtotal) {
		return Item{}, fmt.Errorf("%w: %s x %d != %s", ErrSubtotalMismatch, unitPrice, quantity, subtotal)
	}
	return Item{
		ProductID:   productID,
		ProductName: name,
		Quantity:    quantity,
		UnitPrice:   unitPrice,
		Subtotal:    subtotal,
	}, nil
}

type State struct {
	ID                 shared.OrderID   `json:"id"`
	AccountID          shared.AccountID `json:"account_id"`
	Items              []Item           `json:"items"`
	Subtotal           decimal.Decimal  `json:"subtotal"`
	Tax                decimal.Decimal  `json:"tax"`
	ShippingCost       decimal.Decimal  `json:"shipping_cost"`
	TotalAmount        decimal.Decimal  `json:"total_amount"`
	Status             Status           `json:"status"`
	ShippingAddress    string           `json:"shipping_address"`
	TrackingNumber     string           `json:"tracking_number,omitempty"`
	PaymentID          shared.PaymentID `json:"payment_id,omitempty"`
	PaymentMethod      string           `json:"payment_method,omitempty"`
	CancellationReason string           `json:"cancellation_reason,omitempty"`
	shared.AuditInfo
}

type Order struct {
	aggregate.Root
	s State
}

// CreateFromCart places an order for every line in c. Tax is
// subtotal * taxRate rounded half-up to whole units.
func CreateFromCart(id shared.OrderID, c cart.Cart, shippingAddress string, shippingCost, taxRate decimal.Decimal, now time.Time) (Order, error) {
	if err := shared.RequireNonBlank("order_id", string(id)); err != nil {
		return Order{}, err
	}
	if c.IsEmpty() {
		return Order{}, ErrEmptyOrder
	}
	if shared.RequireNonBlank("shipping_address", shippingAddress) != nil {
		return Order{}, ErrShippingAddress
	}
	if shippingCost.IsNegative() {
		return Order{}, ErrNegativeShippingCost
	}
	if taxRate.IsNegative() {
		return Order{}, ErrNegativeTaxRate
	}

	items := make([]Item, 0, len(c.Items()))
	subtotal := decimal.Zero
	for _, line := range c.Items() {
		item, err := NewItem(line.ProductID, line.ProductName, line.Quantity, line.UnitPrice, line.Subtotal())
		if err != nil {
			return Order{}, err
		}
		items = append(items, item)
		subtotal = subtotal.Add(item.Subtotal)
	}

	tax := shared.RoundHalfUp(subtotal.Mul(taxRate), 0)
	total := subtotal.Add(tax).Add(shippingCost)

	s := State{
		ID:              id,
		AccountID:       c.AccountID(),
		Items:           items,
		Subtotal:        subtotal,
		Tax:             tax,
		ShippingCost:    shippingCost,
		TotalAmount:     total,
		Status:          StatusCreated,
		ShippingAddress: shippingAddress,
		AuditInfo:       shared.NewAuditInfo(now),
	}
	o := Order{s: s}
	return o.next(s, EventOrderPlaced, OrderPlaced{
		OrderID:         id,
		AccountID:       s.AccountID,
		Items:           cloneItems(items),
		Subtotal:        subtotal,
		Tax:             tax,
		ShippingCost:    shippingCost,
		TotalAmount:     total,
		ShippingAddress: shippingAddress,
		PlacedAt:        now,
	}, now), nil
}

// Reconstruct restores an order from storage with no pending events.
func Reconstruct(s State, version int) Order {
	s.Items = cloneItems(s.Items)
	return Order{Root: aggregate.Rehydrate(version), s: s}
}

func (o Order) ID() shared.OrderID { return o.s.ID }
func (o Order) AccountID() shared.AccountID { return o.s.AccountID }
func (o Order) Status() Status { return o.s.Status }
func (o Order) Items() []Item { return cloneItems(o.s.Items) }
func (o Order) TotalAmount() decimal.Decimal { return o.s.TotalAmount }
func (o Order) BelongsTo(a shared.AccountID) bool { return o.s.AccountID == a }

func (o Order) State() State {
	s := o.s
	s.Items = cloneItems(o.s.Items)
	return s
}

func (o Order) CanTransitionTo(next Status) bool {
	return CanTransitionTo(o.s.Status, next)
}

func (o Order) Cancel(reason string, now time.Time) (Order, error) {
	if err := o.transition(StatusCancelled); err != nil {
		return Order{}, err
	}
	if shared.RequireNonBlank("reason", reason) != nil {
		return Order{}, ErrReasonRequired
	}
	s := o.State()
	previous := s.Status
	s.Status = StatusCancelled
	s.CancellationReason = reason
	s.AuditInfo = s.Touch(now)
	return o.next(s, EventOrderCancelled, OrderCancelled{
		OrderID:        s.ID,
		Reason:         reason,
		PreviousStatus: previous,
		CancelledAt:    now,
	}, now), nil
}

func (o Order) MarkPaid(paymentID shared.PaymentID, paymentMethod string, now time.Time) (Order, error) {
	if err := o.transition(StatusPaid); err != nil {
		return Order{}, err
	}
	if shared.RequireNonBlank("payment_method", paymentMethod) != nil {
		return Order{}, ErrPaymentMethodRequired
	}
	s := o.State()
	s.Status = StatusPaid
	s.PaymentID = paymentID
	s.PaymentMethod = paymentMethod
	s.AuditInfo = s.Touch(now)
	return o.next(s, EventOrderPaid, OrderPaid{
		OrderID:       s.ID,
		PaymentID:     paymentID,
		PaymentMethod: paymentMethod,
		Amount:        s.TotalAmount,
		PaidAt:        now,
	}, now), nil
}

func (o Order) MarkShipped(trackingNumber string, now time.Time) (Order, error) {
	if err := o.transition(StatusShipped); err != nil {
		return Order{}, err
	}
	s := o.State()
	s.Status = StatusShipped
	s.TrackingNumber = shared.FirstNonBlank(trackingNumber, s.TrackingNumber)
	s.AuditInfo = s.Touch(now)
	return o.next(s, EventOrderShipped, OrderShipped{
		OrderID:        s.ID,
		TrackingNumber: s.TrackingNumber,
		ShippedAt:      now,
	}, now), nil
}

func (o Order) MarkDelivered(now time.Time) (Order, error) {
	if err := o.transition(StatusDelivered); err != nil {
		return Order{}, err
	}
	s := o.State()
	s.Status = StatusDelivered
	s.AuditInfo = s.Touch(now)
	return o.next(s, EventOrderDelivered, OrderDelivered{OrderID: s.ID, DeliveredAt: now}, now), nil
}

func (o Order) Complete(now time.Time) (Order, error) {
	if err := o.transition(StatusCompleted); err != nil {
		return Order{}, err
	}
	s := o.State()
	s.Status = StatusCompleted
	s.AuditInfo = s.Touch(now)
	return o.next(s, EventOrderCompleted, OrderCompleted{OrderID: s.ID, CompletedAt: now}, now), nil
}

func (o Order) transition(to Status) error {
	return aggregate.CheckTransition(AggregateType, validTransitions, o.s.Status, to)
}

func (o Order) next(s State, eventType string, data any, now time.Time) Order {
	return Order{
		Root: o.With(aggregate.Event{
			AggregateID:   string(s.ID),
			AggregateType: AggregateType,
			EventType:     eventType,
			Data:          data,
			OccurredAt:    now,
		}),
		s: s,
	}
}

func cloneItems(items []Item) []Item {
	if items == nil {
		return nil
	}
	out := make([]Item, len(items))
	copy(out, items)
	return out
}
