// Package factory creates new aggregates with generated identifiers and the
// clock's current time.
package factory

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

type Factory struct {
	ids   shared.IDGenerator
	clock shared.Clock
}

func New(ids shared.IDGenerator, clock shared.Clock) *Factory {
	return &Factory{ids: ids, clock: clock}
}

func (f *Factory) Now() time.Time {
	return f.clock.Now()
}

func (f *Factory) NewAddressID() shared.AddressID {
	return shared.AddressID(f.ids.NewID())
}

func (f *Factory) NewCart(accountID shared.AccountID) (cart.Cart, error) {
	return cart.New(shared.CartIDFor(accountID), accountID, f.clock.Now())
}

func (f *Factory) NewOrder(c cart.Cart, shippingAddress string, shippingCost, taxRate decimal.Decimal) (order.Order, error) {
	return order.CreateFromCart(shared.OrderID(f.ids.NewID()), c, shippingAddress, shippingCost, taxRate, f.clock.Now())
}

func (f *Factory) NewPayment(orderID shared.OrderID, accountID shared.AccountID, amount decimal.Decimal, method string) (payment.Payment, error) {
	return payment.Initiate(shared.PaymentID(f.ids.NewID()), orderID, accountID, amount, method, f.clock.Now())
}

func (f *Factory) NewShipment(orderID shared.OrderID, address, method, trackingNumber string, estimatedDelivery *time.Time) (shipment.Shipment, error) {
	return shipment.Create(shared.ShipmentID(f.ids.NewID()), orderID, address, method, trackingNumber, estimatedDelivery, f.clock.Now())
}

func (f *Factory) NewInventory(productID shared.ProductID, initial int) (inventory.Inventory, error) {
	return inventory.New(shared.InventoryID(f.ids.NewID()), productID, initial, f.clock.Now())
}

func (f *Factory) NewProduct(sku, name, description string, price decimal.Decimal) (product.Product, error) {
	return product.New(shared.ProductID(f.ids.NewID()), sku, name, description, price, f.clock.Now())
}

func (f *Factory) NewCategory(name, slug, description string, parentID shared.CategoryID, sortOrder int) (category.Category, error) {
	return category.New(shared.CategoryID(f.ids.NewID()), name, slug, description, parentID, sortOrder, f.clock.Now())
}

func (f *Factory) NewPromotion(code, description string, kind promotion.DiscountType, value decimal.Decimal, startsAt, endsAt time.Time) (promotion.Promotion, error) {
	return promotion.New(shared.PromotionID(f.ids.NewID()), code, description, kind, value, startsAt, endsAt, f.clock.Now())
}

func (f *Factory) NewAccount(email shared.Email, passwordHash, role string) (account.Account, error) {
	return account.Register(shared.AccountID(f.ids.NewID()), email, passwordHash, role, f.clock.Now())
}

func (f *Factory) NewProfile(accountID shared.AccountID, name string, email shared.Email, phone string) (profile.Profile, error) {
	return profile.New(shared.ProfileIDFor(accountID), accountID, name, email, phone, f.clock.Now())
}
