// Package orderflow places, cancels and completes orders.
package orderflow

import (
	"context"

	"github.com/example/ec-fulfillment/internal/domain/cart"
	"github.com/example/ec-fulfillment/internal/domain/factory"
	"github.com/example/ec-fulfillment/internal/domain/inventory"
	"github.com/example/ec-fulfillment/internal/domain/order"
	"github.com/example/ec-fulfillment/internal/domain/payment"
	"github.com/example/ec-fulfillment/internal/domain/profile"
	"github.com/example/ec-fulfillment/internal/domain/shared"
	"github.com/example/ec-fulfillment/internal/workflow"
	"github.com/shopspring/decimal"
)

// Pricing is applied to every new order.
type Pricing struct {
	ShippingCost decimal.Decimal
	TaxRate      decimal.Decimal
}

type Deps struct {
	Orders    order.Repository
	Carts     cart.Repository
	Inventory inventory.Repository
	Profiles  profile.Repository
	Payments  payment.Repository
	Factory   *factory.Factory
	Pricing   Pricing
}

// StockFor loads the inventory of each product, in argument order.
func StockFor(ctx context.Context, repo inventory.Repository, productIDs []shared.ProductID) ([]inventory.Inventory, error) {
	out := make([]inventory.Inventory, 0, len(productIDs))
	for _, id := range productIDs {
		inv, ok, err := repo.FindByProduct(ctx, id)
		inv, err = workflow.Found(inv, ok, err, inventory.ErrInventoryNotFound)
		if err != nil {
			return nil, err
		}
		out = append(out, inv)
	}
	return out, nil
}

// ProductIDs lists the products of items in line order.
func ProductIDs(items []order.Item) []shared.ProductID {
	out := make([]shared.ProductID, len(items))
	for i, item := range items {
		out[i] = item.ProductID
	}
	return out
}

func loadOrder(ctx context.Context, repo order.Repository, id shared.OrderID) (order.Order, error) {
	o, ok, err := repo.FindByID(ctx, id)
	return workflow.Found(o, ok, err, order.ErrOrderNotFound)
}

// =============================================================================
// CreateOrderFromCart
// =============================================================================

type CreateInput struct {
	AccountID shared.AccountID
	// ShippingAddress falls back to the profile's default address when blank.
	ShippingAddress string
}

type createFound struct {
	in   CreateInput
	cart cart.Cart
}

type createValidated struct {
	cart    cart.Cart
	address string
	stock   []inventory.Inventory
}

type createMutated struct {
	order order.Order
	stock []inventory.Inventory
	cart  cart.Cart
}

type CreateOrderFromCart struct {
	deps Deps
	run  workflow.Step[CreateInput, workflow.Result[order.Order]]
}

func NewCreateOrderFromCart(d Deps) *CreateOrderFromCart {
	w := &CreateOrderFromCart{deps: d}
	w.run = workflow.Chain4(w.find, w.validate, w.mutate, w.persist)
	return w
}

// Execute turns the account's cart into an order. Stock is reserved for every
// line and the cart is cleared. Inventories are saved first, then the order,
// then the cart.
func (w *CreateOrderFromCart) Execute(ctx context.Context, in CreateInput) (workflow.Result[order.Order], error) {
	return w.run(ctx, in)
}

func (w *CreateOrderFromCart) find(ctx context.Context, in CreateInput) (createFound, error) {
	c, ok, err := w.deps.Carts.FindByAccount(ctx, in.AccountID)
	c, err = workflow.Found(c, ok, err, cart.ErrCartNotFound)
	if err != nil {
		return createFound{}, err
	}
	return createFound{in: in, cart: c}, nil
}

func (w *CreateOrderFromCart) validate(ctx context.Context, f createFound) (createValidated, error) {
	if f.cart.IsEmpty() {
		return createValidated{}, workflow.Rule(order.ErrEmptyOrder)
	}
	address, err := w.shippingAddress(ctx, f.in)
	if err != nil {
		return createValidated{}, err
	}
	lines := f.cart.Items()
	ids := make([]shared.ProductID, len(lines))
	for i, l := range lines {
		ids[i] = l.ProductID
	}
	stock, err := StockFor(ctx, w.deps.Inventory, ids)
	if err != nil {
		return createValidated{}, err
	}
	return createValidated{cart: f.cart, address: address, stock: stock}, nil
}

func (w *CreateOrderFromCart) shippingAddress(ctx context.Context, in CreateInput) (string, error) {
	if in.ShippingAddress != "" || w.deps.Profiles == nil {
		return in.ShippingAddress, nil
	}
	p, ok, err := w.deps.Profiles.FindByAccount(ctx, in.AccountID)
	if err != nil {
		return "", err
	}
	if !ok {
		return "", nil
	}
	addr, ok := p.DefaultAddress()
	if !ok {
		return "", nil
	}
	return addr.String(), nil
}

func (w *CreateOrderFromCart) mutate(_ context.Context, v createValidated) (createMutated, error) {
	now := w.deps.Factory.Now()
	o, err := w.deps.Factory.NewOrder(v.cart, v.address, w.deps.Pricing.ShippingCost, w.deps.Pricing.TaxRate)
	if err != nil {
		return createMutated{}, workflow.Rule(err)
	}
	items := o.Items()
	stock := make([]inventory.Inventory, len(v.stock))
	for i, inv := range v.stock {
		stock[i], err = inv.Reserve(items[i].Quantity, o.ID(), now)
		if err != nil {
			return createMutated{}, workflow.Rule(err)
		}
	}
	cleared, err := v.cart.Clear(now)
	if err != nil {
		return createMutated{}, workflow.Rule(err)
	}
	return createMutated{order: o, stock: stock, cart: cleared}, nil
}

func (w *CreateOrderFromCart) persist(ctx context.Context, m createMutated) (workflow.Result[order.Order], error) {
	events := append(append(m.order.Events(), workflow.EventsOf(m.stock)...), m.cart.Events()...)
	if _, err := workflow.SaveAll(ctx, w.deps.Inventory.Save, m.stock); err != nil {
		return workflow.Result[order.Order]{}, err
	}
	saved, err := w.deps.Orders.Save(ctx, m.order)
	if err != nil {
		return workflow.Result[order.Order]{}, workflow.Persisted(err)
	}
	if _, err := w.deps.Carts.Save(ctx, m.cart); err != nil {
		return workflow.Result[order.Order]{}, workflow.Persisted(err)
	}
	return workflow.Result[order.Order]{Value: saved, Events: events}, nil
}

// =============================================================================
// CancelOrder
// =============================================================================

type CancelInput struct {
	Actor   workflow.Actor
	OrderID shared.OrderID
	Reason  string
}

type cancelFound struct {
	in    CancelInput
	order order.Order
}

type cancelValidated struct {
	cancelFound
	// stock is empty when nothing is held for the order any more.
	stock []inventory.Inventory
	// open lists the order's payments that have not been captured yet.
	open []payment.Payment
}

type cancelMutated struct {
	order    order.Order
	stock    []inventory.Inventory
	payments []payment.Payment
}

type CancelOrder struct {
	deps Deps
	run  workflow.Step[CancelInput, workflow.Result[order.Order]]
}

func NewCancelOrder(d Deps) *CancelOrder {
	w := &CancelOrder{deps: d}
	w.run = workflow.Chain4(w.find, w.validate, w.mutate, w.persist)
	return w
}

// Execute cancels the order. Reservations are released while the goods are
// still in the warehouse; a shipped order keeps its stock deducted. Pending
// and authorized payments are cancelled with it. A captured payment is left
// as is and has to be refunded by an admin.
func (w *CancelOrder) Execute(ctx context.Context, in CancelInput) (workflow.Result[order.Order], error) {
	return w.run(ctx, in)
}

func (w *CancelOrder) find(ctx context.Context, in CancelInput) (cancelFound, error) {
	o, err := loadOrder(ctx, w.deps.Orders, in.OrderID)
	if err != nil {
		return cancelFound{}, err
	}
	return cancelFound{in: in, order: o}, nil
}

func (w *CancelOrder) validate(ctx context.Context, f cancelFound) (cancelValidated, error) {
	if err := workflow.Authorize(f.in.Actor, f.order); err != nil {
		return cancelValidated{}, err
	}
	v := cancelValidated{cancelFound: f}
	if !f.order.CanTransitionTo(order.StatusCancelled) {
		return v, nil
	}
	payments, err := w.deps.Payments.FindByOrder(ctx, f.order.ID())
	if err != nil {
		return cancelValidated{}, err
	}
	for _, p := range payments {
		if p.CanTransitionTo(payment.StatusCancelled) {
			v.open = append(v.open, p)
		}
	}
	if !holdsReservation(f.order.Status()) {
		return v, nil
	}
	stock, err := StockFor(ctx, w.deps.Inventory, ProductIDs(f.order.Items()))
	if err != nil {
		return cancelValidated{}, err
	}
	v.stock = stock
	return v, nil
}

func holdsReservation(s order.Status) bool {
	return s == order.StatusCreated || s == order.StatusPaid
}

func (w *CancelOrder) mutate(_ context.Context, v cancelValidated) (cancelMutated, error) {
	now := w.deps.Factory.Now()
	o, err := v.order.Cancel(v.in.Reason, now)
	if err != nil {
		return cancelMutated{}, workflow.Rule(err)
	}
	items := o.Items()
	stock := make([]inventory.Inventory, len(v.stock))
	for i, inv := range v.stock {
		stock[i], err = inv.ReleaseReservation(items[i].Quantity, o.ID(), now)
		if err != nil {
			return cancelMutated{}, workflow.Rule(err)
		}
	}
	payments := make([]payment.Payment, len(v.open))
	for i, p := range v.open {
		if payments[i], err = p.Cancel("order cancelled: "+v.in.Reason, now); err != nil {
			return cancelMutated{}, workflow.Rule(err)
		}
	}
	return cancelMutated{order: o, stock: stock, payments: payments}, nil
}

func (w *CancelOrder) persist(ctx context.Context, m cancelMutated) (workflow.Result[order.Order], error) {
	events := append(m.order.Events(), workflow.EventsOf(m.stock)...)
	events = append(events, workflow.EventsOf(m.payments)...)
	saved, err := w.deps.Orders.Save(ctx, m.order)
	if err != nil {
		return workflow.Result[order.Order]{}, workflow.Persisted(err)
	}
	if _, err := workflow.SaveAll(ctx, w.deps.Inventory.Save, m.stock); err != nil {
		return workflow.Result[order.Order]{}, err
	}
	if _, err := workflow.SaveAll(ctx, w.deps.Payments.Save, m.payments); err != nil {
		return workflow.Result[order.Order]{}, err
	}
	return workflow.Result[order.Order]{Value: saved, Events: events}, nil
}

// =============================================================================
// CompleteOrder
// =============================================================================

type CompleteInput struct {
	Actor   workflow.Actor
	OrderID shared.OrderID
}

type completeFound struct {
	in    CompleteInput
	order order.Order
}

type CompleteOrder struct {
	deps Deps
	run  workflow.Step[CompleteInput, workflow.Result[order.Order]]
}

func NewCompleteOrder(d Deps) *CompleteOrder {
	w := &CompleteOrder{deps: d}
	w.run = workflow.Chain4(w.find, w.validate, w.mutate, w.persist)
	return w
}

// Execute closes a delivered order.
func (w *CompleteOrder) Execute(ctx context.Context, in CompleteInput) (workflow.Result[order.Order], error) {
	return w.run(ctx, in)
}

func (w *CompleteOrder) find(ctx context.Context, in CompleteInput) (completeFound, error) {
	o, err := loadOrder(ctx, w.deps.Orders, in.OrderID)
	if err != nil {
		return completeFound{}, err
	}
	return completeFound{in: in, order: o}, nil
}

func (w *CompleteOrder) validate(_ context.Context, f completeFound) (order.Order, error) {
	if err := workflow.Authorize(f.in.Actor, f.order); err != nil {
		return order.Order{}, err
	}
	return f.order, nil
}

func (w *CompleteOrder) mutate(_ context.Context, o order.Order) (order.Order, error) {
	done, err := o.Complete(w.deps.Factory.Now())
	return done, workflow.Rule(err)
}

func (w *CompleteOrder) persist(ctx context.Context, o order.Order) (workflow.Result[order.Order], error) {
	return workflow.Persist(ctx, w.deps.Orders.Save, o)
}
