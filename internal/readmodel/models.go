// Package readmodel holds the JSON views served by the query side. Views are
// built from aggregate snapshots and never carry pending events.
package readmodel

import (
	"time"

	"github.com/example/ec-fulfillment/internal/domain/account"
	"github.com/example/ec-fulfillment/internal/domain/cart"
	"github.com/example/ec-fulfillment/internal/domain/category"
	"github.com/example/ec-fulfillment/internal/domain/inventory"
	"github.com/example/ec-fulfillment/internal/domain/order"
	"github.com/example/ec-fulfillment/internal/domain/payment"
	"github.com/example/ec-fulfillment/internal/domain/product"
	"github.com/example/ec-fulfillment/internal/domain/profile"
	"github.com/example/ec-fulfillment/internal/domain/promotion"
	"github.com/example/ec-fulfillment/internal/domain/shared"
	"github.com/example/ec-fulfillment/internal/domain/shipment"
	"github.com/shopspring/decimal"
)

// ProductReadModel is a product with its current stock.
type ProductReadModel struct {
	product.State
	AvailableStock int `json:"available_stock"`
	ReservedStock  int `json:"reserved_stock"`
}

func Product(p product.Product, inv *inventory.Inventory) ProductReadModel {
	m := ProductReadModel{State: p.State()}
	if inv != nil {
		m.AvailableStock = inv.Available()
		m.ReservedStock = inv.Reserved()
	}
	return m
}

type InventoryReadModel struct {
	inventory.State
}

func Inventory(inv inventory.Inventory) InventoryReadModel {
	return InventoryReadModel{State: inv.State()}
}

// CartReadModel adds the running total to the cart snapshot.
type CartReadModel struct {
	cart.State
	Total decimal.Decimal `json:"total"`
}

func Cart(c cart.Cart) CartReadModel {
	s := c.State()
	if s.Items == nil {
		s.Items = []cart.Item{}
	}
	return CartReadModel{State: s, Total: c.Total()}
}

// EmptyCart is served to an account that has not used its cart yet.
func EmptyCart(accountID shared.AccountID) CartReadModel {
	return CartReadModel{State: cart.State{AccountID: accountID, Items: []cart.Item{}}, Total: decimal.Zero}
}

type PaymentReadModel struct {
	payment.State
}

func Payment(p payment.Payment) PaymentReadModel {
	return PaymentReadModel{State: p.State()}
}

type ShipmentReadModel struct {
	shipment.State
}

func Shipment(sh shipment.Shipment) ShipmentReadModel {
	return ShipmentReadModel{State: sh.State()}
}

// OrderReadModel is an order with its payments and shipments attached.
type OrderReadModel struct {
	order.State
	Payments  []PaymentReadModel  `json:"payments"`
	Shipments []ShipmentReadModel `json:"shipments"`
}

func Order(o order.Order, payments []payment.Payment, shipments []shipment.Shipment) OrderReadModel {
	m := OrderReadModel{
		State:     o.State(),
		Payments:  make([]PaymentReadModel, 0, len(payments)),
		Shipments: make([]ShipmentReadModel, 0, len(shipments)),
	}
	for _, p := range payments {
		m.Payments = append(m.Payments, Payment(p))
	}
	for _, sh := range shipments {
		m.Shipments = append(m.Shipments, Shipment(sh))
	}
	return m
}

// OrderSummary is the list form of an order.
type OrderSummary struct {
	ID          string          `json:"id"`
	Status      string          `json:"status"`
	ItemCount   int             `json:"item_count"`
	TotalAmount decimal.Decimal `json:"total_amount"`
	CreatedAt   time.Time       `json:"created_at"`
}

func Summary(o order.Order) OrderSummary {
	s := o.State()
	n := 0
	for _, it := range s.Items {
		n += it.Quantity
	}
	return OrderSummary{
		ID:          string(s.ID),
		Status:      string(s.Status),
		ItemCount:   n,
		TotalAmount: s.TotalAmount,
		CreatedAt:   s.CreatedAt,
	}
}

// AccountReadModel never exposes the password hash.
type AccountReadModel struct {
	ID          string     `json:"id"`
	Email       string     `json:"email"`
	Role        string     `json:"role"`
	IsActive    bool       `json:"is_active"`
	LastLoginAt *time.Time `json:"last_login_at,omitempty"`
	CreatedAt   time.Time  `json:"created_at"`
}

func Account(a account.Account) AccountReadModel {
	s := a.State()
	return AccountReadModel{
		ID:          string(s.ID),
		Email:       s.Email.String(),
		Role:        s.Role,
		IsActive:    s.Active,
		LastLoginAt: s.LastLoginAt,
		CreatedAt:   s.CreatedAt,
	}
}

type ProfileReadModel struct {
	profile.State
}

func Profile(p profile.Profile) ProfileReadModel {
	s := p.State()
	if s.Addresses == nil {
		s.Addresses = []profile.Address{}
	}
	return ProfileReadModel{State: s}
}

type CategoryReadModel struct {
	category.State
}

func Category(c category.Category) CategoryReadModel {
	return CategoryReadModel{State: c.State()}
}

type PromotionReadModel struct {
	promotion.State
	Applicable bool `json:"applicable"`
}

func Promotion(p promotion.Promotion, at time.Time) PromotionReadModel {
	return PromotionReadModel{State: p.State(), Applicable: p.IsApplicable(at)}
}
