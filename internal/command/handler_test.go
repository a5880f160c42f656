package command

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/example/ec-fulfillment/internal/apperr"
	"github.com/example/ec-fulfillment/internal/auth"
	"github.com/example/ec-fulfillment/internal/domain/account"
	"github.com/example/ec-fulfillment/internal/domain/aggregate"
	"github.com/example/ec-fulfillment/internal/domain/cart"
	"github.com/example/ec-fulfillment/internal/domain/factory"
	"github.com/example/ec-fulfillment/internal/domain/order"
	"github.com/example/ec-fulfillment/internal/domain/payment"
	"github.com/example/ec-fulfillment/internal/domain/shared"
	"github.com/example/ec-fulfillment/internal/domain/shipment"
	"github.com/example/ec-fulfillment/internal/infrastructure/eventbus"
	"github.com/example/ec-fulfillment/internal/infrastructure/repository"
	"github.com/example/ec-fulfillment/internal/infrastructure/store"
	"github.com/example/ec-fulfillment/internal/infrastructure/store/mocks"
	"github.com/example/ec-fulfillment/internal/logger"
	"github.com/example/ec-fulfillment/internal/workflow"
	"github.com/example/ec-fulfillment/internal/workflow/orderflow"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

var now = time.Date(2026, 7, 1, 10, 0, 0, 0, time.UTC)

func newTestHandler(t *testing.T, pub eventbus.Publisher) (*Handler, *repository.Set) {
	t.Helper()
	return newTestHandlerOn(t, store.NewMemoryStore(), pub)
}

func newTestHandlerOn(t *testing.T, st store.DocumentStore, pub eventbus.Publisher) (*Handler, *repository.Set) {
	t.Helper()
	repos := repository.NewSet(st)
	h := NewHandler(Deps{
		Repos:   repos,
		Factory: factory.New(&shared.SequenceIDs{Prefix: "id"}, shared.FixedClock{T: now}),
		Hasher:  auth.BcryptHasher{Cost: bcrypt.MinCost},
		Pricing: orderflow.Pricing{
			ShippingCost: decimal.NewFromInt(500),
			TaxRate:      decimal.Zero,
		},
		Publisher: pub,
		Logger:    logger.Nop(),
	})
	return h, repos
}

func createProduct(t *testing.T, h *Handler, sku string, stock int) shared.ProductID {
	t.Helper()
	res, err := h.CreateProduct(context.Background(), CreateProduct{
		SKU:   sku,
		Name:  "Item " + sku,
		Price: decimal.NewFromInt(1200),
		Stock: stock,
	})
	require.NoError(t, err)
	return res.Product.ID()
}

func customer(t *testing.T, h *Handler, email string) workflow.Actor {
	t.Helper()
	a, err := h.Register(context.Background(), Register{Email: email, Password: "correct-horse"})
	require.NoError(t, err)
	return workflow.Actor{AccountID: a.ID(), Role: a.Role()}
}

func placeOrder(t *testing.T, h *Handler, actor workflow.Actor, productID shared.ProductID, qty int) order.Order {
	t.Helper()
	ctx := context.Background()
	_, err := h.AddToCart(ctx, AddToCart{AccountID: actor.AccountID, ProductID: productID, Quantity: qty})
	require.NoError(t, err)
	o, err := h.PlaceOrder(ctx, PlaceOrder{AccountID: actor.AccountID, ShippingAddress: "1 Main St"})
	require.NoError(t, err)
	return o
}

// ============================================
// Publishing
// ============================================

func TestHandler_PublishesEventsAfterSuccess(t *testing.T) {
	journal := eventbus.NewJournal()
	h, _ := newTestHandler(t, journal)

	pid := createProduct(t, h, "mug-1", 5)

	assert.Contains(t, journal.Types(), "ProductCreated")
	assert.Contains(t, journal.Types(), "InventoryCreated")
	assert.NotEmpty(t, journal.ForAggregate(string(pid)))
}

func TestHandler_FailedCommandPublishesNothing(t *testing.T) {
	journal := eventbus.NewJournal()
	h, _ := newTestHandler(t, journal)
	createProduct(t, h, "mug-1", 5)
	journal.Reset()

	_, err := h.CreateProduct(context.Background(), CreateProduct{SKU: "MUG-1", Name: "Again", Price: decimal.NewFromInt(1)})

	assert.Equal(t, apperr.KindConflict, apperr.KindOf(err))
	assert.Empty(t, journal.Events())
}

func TestHandler_PublishFailureDoesNotFailCommand(t *testing.T) {
	calls := 0
	h, repos := newTestHandler(t, eventbus.PublisherFunc(func(context.Context, aggregate.Event) error {
		calls++
		return errors.New("broker down")
	}))

	pid := createProduct(t, h, "mug-1", 5)

	assert.Positive(t, calls)
	_, ok, err := repos.Products.FindByID(context.Background(), pid)
	require.NoError(t, err)
	assert.True(t, ok, "state is committed even when publishing fails")
}

func TestHandler_NilPublisher(t *testing.T) {
	h, _ := newTestHandler(t, nil)

	assert.NotPanics(t, func() { createProduct(t, h, "mug-1", 1) })
}

func TestHandler_ClassifiedErrorsPassThrough(t *testing.T) {
	h, _ := newTestHandler(t, nil)

	_, err := h.AddToCart(context.Background(), AddToCart{AccountID: "acct-1", ProductID: "missing", Quantity: 1})

	var appErr *apperr.Error
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, apperr.KindNotFound, appErr.Kind)
	assert.Empty(t, appErr.Op)
}

func TestHandler_UnexpectedErrorsCarryOperation(t *testing.T) {
	st := mocks.NewMockDocumentStore()
	st.PutErr = errors.New("disk full")
	journal := eventbus.NewJournal()
	h, _ := newTestHandlerOn(t, st, journal)

	_, err := h.Register(context.Background(), Register{Email: "ann@example.com", Password: "correct-horse"})

	var appErr *apperr.Error
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, "Register", appErr.Op)
	assert.Equal(t, apperr.KindUnexpected, appErr.Kind)
	assert.ErrorIs(t, err, st.PutErr)
	assert.Empty(t, journal.Events())
}

// ============================================
// Checkout Flow Tests
// ============================================

func TestHandler_CheckoutToDelivery(t *testing.T) {
	journal := eventbus.NewJournal()
	h, repos := newTestHandler(t, journal)
	ctx := context.Background()
	pid := createProduct(t, h, "mug-1", 5)
	buyer := customer(t, h, "buyer@example.com")
	ops := workflow.Actor{AccountID: "ops-1", Role: account.RoleAdmin}

	o := placeOrder(t, h, buyer, pid, 2)
	assert.Equal(t, order.StatusCreated, o.Status())
	assert.True(t, decimal.NewFromInt(2900).Equal(o.TotalAmount()), "2 x 1200 + 500 shipping")

	c, ok, err := repos.Carts.FindByAccount(ctx, buyer.AccountID)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Empty(t, c.Items())

	p, err := h.InitiatePayment(ctx, InitiatePayment{Actor: buyer, OrderID: o.ID(), Method: "card"})
	require.NoError(t, err)
	_, err = h.CapturePayment(ctx, CapturePayment{Actor: buyer, PaymentID: p.ID(), TransactionID: "tx-1"})
	assert.ErrorIs(t, err, workflow.ErrAdminOnly)
	_, err = h.AuthorizePayment(ctx, AuthorizePayment{Actor: ops, PaymentID: p.ID(), TransactionID: "tx-1"})
	require.NoError(t, err)
	p, err = h.CapturePayment(ctx, CapturePayment{Actor: ops, PaymentID: p.ID(), TransactionID: "tx-1"})
	require.NoError(t, err)
	assert.Equal(t, payment.StatusCaptured, p.Status())

	paid, _, err := repos.Orders.FindByID(ctx, o.ID())
	require.NoError(t, err)
	assert.Equal(t, order.StatusPaid, paid.Status())

	sh, err := h.CreateShipment(ctx, CreateShipment{OrderID: o.ID(), Method: "ground", TrackingNumber: "TRK-1"})
	require.NoError(t, err)
	assert.Equal(t, "1 Main St", sh.State().ShippingAddress)

	for _, status := range []string{"PENDING", "SHIPPED", "ARRIVED"} {
		_, err = h.UpdateShipmentStatus(ctx, UpdateShipmentStatus{ShipmentID: sh.ID(), Status: status})
		require.NoError(t, err, status)
	}
	sh, err = h.MarkDelivered(ctx, MarkDelivered{ShipmentID: sh.ID(), ReceiverName: "Ann"})
	require.NoError(t, err)
	assert.Equal(t, shipment.StatusDelivered, sh.Status())

	types := journal.Types()
	for _, want := range []string{"OrderPlaced", "PaymentCaptured", "OrderPaid", "ShipmentCreated", "OrderShipped", "ShipmentDelivered"} {
		assert.Contains(t, types, want)
	}
}

func TestHandler_CancelOrder_OtherCustomerForbidden(t *testing.T) {
	h, _ := newTestHandler(t, nil)
	pid := createProduct(t, h, "mug-1", 5)
	buyer := customer(t, h, "buyer@example.com")
	other := customer(t, h, "other@example.com")
	o := placeOrder(t, h, buyer, pid, 1)

	_, err := h.CancelOrder(context.Background(), CancelOrder{Actor: other, OrderID: o.ID(), Reason: "mine now"})

	assert.Equal(t, apperr.KindForbidden, apperr.KindOf(err))
	assert.ErrorIs(t, err, workflow.ErrNotOwner)
}

func TestHandler_CancelOrder_ReleasesStock(t *testing.T) {
	h, repos := newTestHandler(t, nil)
	ctx := context.Background()
	pid := createProduct(t, h, "mug-1", 5)
	buyer := customer(t, h, "buyer@example.com")
	o := placeOrder(t, h, buyer, pid, 3)

	cancelled, err := h.CancelOrder(ctx, CancelOrder{Actor: buyer, OrderID: o.ID(), Reason: "changed mind"})
	require.NoError(t, err)
	assert.Equal(t, order.StatusCancelled, cancelled.Status())

	inv, _, err := repos.Inventory.FindByProduct(ctx, pid)
	require.NoError(t, err)
	assert.Equal(t, 5, inv.Available())
	assert.Equal(t, 0, inv.Reserved())
}

// ============================================
// Cart Tests
// ============================================

func TestHandler_CartLifecycle(t *testing.T) {
	h, _ := newTestHandler(t, nil)
	ctx := context.Background()
	pid := createProduct(t, h, "mug-1", 5)

	c, err := h.GetOrCreateCart(ctx, "acct-1")
	require.NoError(t, err)
	assert.Empty(t, c.Items())

	c, err = h.AddToCart(ctx, AddToCart{AccountID: "acct-1", ProductID: pid, Quantity: 1})
	require.NoError(t, err)
	c, err = h.UpdateCartItem(ctx, UpdateCartItem{AccountID: "acct-1", ProductID: pid, Quantity: 4})
	require.NoError(t, err)
	assert.True(t, decimal.NewFromInt(4800).Equal(c.Total()))

	c, err = h.RemoveFromCart(ctx, RemoveFromCart{AccountID: "acct-1", ProductID: pid})
	require.NoError(t, err)
	assert.Empty(t, c.Items())

	_, err = h.ClearCart(ctx, ClearCart{AccountID: "acct-1"})
	assert.NoError(t, err)
}

func TestHandler_AddToCart_InvalidQuantity(t *testing.T) {
	h, _ := newTestHandler(t, nil)
	pid := createProduct(t, h, "mug-1", 5)

	_, err := h.AddToCart(context.Background(), AddToCart{AccountID: "acct-1", ProductID: pid, Quantity: 0})

	assert.Equal(t, apperr.KindDomainRule, apperr.KindOf(err))
	assert.ErrorIs(t, err, cart.ErrInvalidQuantity)
}

// ============================================
// Account Tests
// ============================================

func TestHandler_RegisterAndLogin(t *testing.T) {
	journal := eventbus.NewJournal()
	h, _ := newTestHandler(t, journal)
	ctx := context.Background()

	a, err := h.Register(ctx, Register{Email: "Ann@Example.com", Password: "correct-horse"})
	require.NoError(t, err)
	assert.Equal(t, account.RoleCustomer, a.Role())

	logged, err := h.Login(ctx, Login{Email: "ann@example.com", Password: "correct-horse"})
	require.NoError(t, err)
	assert.Equal(t, a.ID(), logged.ID())

	_, err = h.Login(ctx, Login{Email: "ann@example.com", Password: "wrong-horse"})
	assert.ErrorIs(t, err, account.ErrInvalidCredentials)

	assert.Equal(t, []string{"AccountRegistered", "AccountLoggedIn"}, journal.Types())
}

func TestHandler_ProfileAndAddresses(t *testing.T) {
	h, _ := newTestHandler(t, nil)
	ctx := context.Background()
	buyer := customer(t, h, "buyer@example.com")

	_, err := h.CreateProfile(ctx, CreateProfile{AccountID: buyer.AccountID, Name: "Buyer"})
	require.NoError(t, err)
	p, err := h.AddAddress(ctx, AddAddress{
		Actor:      buyer,
		Recipient:  "Buyer",
		Line1:      "1 Main St",
		City:       "Springfield",
		PostalCode: "12345",
		Country:    "US",
	})
	require.NoError(t, err)
	require.Len(t, p.Addresses(), 1)

	p, err = h.SetDefaultAddress(ctx, SetDefaultAddress{Actor: buyer, AddressID: p.Addresses()[0].ID})
	require.NoError(t, err)
	_, ok := p.DefaultAddress()
	assert.True(t, ok)
}

// ============================================
// Catalog Tests
// ============================================

func TestHandler_CatalogAdmin(t *testing.T) {
	h, _ := newTestHandler(t, nil)
	ctx := context.Background()

	cat, err := h.CreateCategory(ctx, CreateCategory{Name: "Kitchen"})
	require.NoError(t, err)
	assert.Equal(t, "kitchen", cat.Slug())

	pid := createProduct(t, h, "mug-1", 2)
	inv, err := h.AdjustInventory(ctx, AdjustInventory{ProductID: pid, Delta: 3, Reason: "restock"})
	require.NoError(t, err)
	assert.Equal(t, 5, inv.Available())

	promo, err := h.CreatePromotion(ctx, CreatePromotion{
		Code:          "summer10",
		DiscountType:  "percentage",
		DiscountValue: decimal.NewFromInt(10),
		StartsAt:      now,
		EndsAt:        now.Add(24 * time.Hour),
	})
	require.NoError(t, err)
	assert.Equal(t, "SUMMER10", promo.Code())
}
