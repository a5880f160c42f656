// Package shipmentflow ships paid orders and tracks the parcels until they
// are delivered.
package shipmentflow

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/example/ec-fulfillment/internal/apperr"
	"github.com/example/ec-fulfillment/internal/domain/factory"
	"github.com/example/ec-fulfillment/internal/domain/inventory"
	"github.com/example/ec-fulfillment/internal/domain/order"
	"github.com/example/ec-fulfillment/internal/domain/shipment"
	"github.com/example/ec-fulfillment/internal/domain/shared"
	"github.com/example/ec-fulfillment/internal/workflow"
	"github.com/example/ec-fulfillment/internal/workflow/orderflow"
)

var (
	ErrOrderNotShippable = errors.New("order must be paid before it ships")
	ErrAlreadyShipped    = errors.New("order already has a shipment")
	ErrUnknownStatus     = errors.New("unknown shipment status")
)

type Deps struct {
	Shipments shipment.Repository
	Orders    order.Repository
	Inventory inventory.Repository
	Factory   *factory.Factory
}

func loadShipment(ctx context.Context, repo shipment.Repository, id shared.ShipmentID) (shipment.Shipment, error) {
	sh, ok, err := repo.FindByID(ctx, id)
	return workflow.Found(sh, ok, err, shipment.ErrShipmentNotFound)
}

func loadOrder(ctx context.Context, repo order.Repository, id shared.OrderID) (order.Order, error) {
	o, ok, err := repo.FindByID(ctx, id)
	return workflow.Found(o, ok, err, order.ErrOrderNotFound)
}

// =============================================================================
// CreateShipment
// =============================================================================

type CreateInput struct {
	OrderID shared.OrderID
	// Address defaults to the order's shipping address.
	Address           string
	Method            string
	TrackingNumber    string
	EstimatedDelivery *time.Time
}

type createFound struct {
	in       CreateInput
	order    order.Order
	existing []shipment.Shipment
}

type createValidated struct {
	in    CreateInput
	order order.Order
	stock []inventory.Inventory
}

type createMutated struct {
	shipment shipment.Shipment
	order    order.Order
	stock    []inventory.Inventory
}

type CreateShipment struct {
	deps Deps
	run  workflow.Step[CreateInput, workflow.Result[shipment.Shipment]]
}

func NewCreateShipment(d Deps) *CreateShipment {
	w := &CreateShipment{deps: d}
	w.run = workflow.Chain4(w.find, w.validate, w.mutate, w.persist)
	return w
}

// Execute ships a paid order. The order is marked shipped and its reserved
// stock is deducted. The shipment is saved first, then the order, then the
// inventories.
func (w *CreateShipment) Execute(ctx context.Context, in CreateInput) (workflow.Result[shipment.Shipment], error) {
	return w.run(ctx, in)
}

func (w *CreateShipment) find(ctx context.Context, in CreateInput) (createFound, error) {
	o, err := loadOrder(ctx, w.deps.Orders, in.OrderID)
	if err != nil {
		return createFound{}, err
	}
	existing, err := w.deps.Shipments.FindByOrder(ctx, o.ID())
	if err != nil {
		return createFound{}, err
	}
	return createFound{in: in, order: o, existing: existing}, nil
}

func (w *CreateShipment) validate(ctx context.Context, f createFound) (createValidated, error) {
	if f.order.Status() != order.StatusPaid {
		return createValidated{}, workflow.Rule(fmt.Errorf("%w: order is %s", ErrOrderNotShippable, f.order.Status()))
	}
	for _, sh := range f.existing {
		if sh.Status() != shipment.StatusReturned {
			return createValidated{}, apperr.Conflict(ErrAlreadyShipped)
		}
	}
	stock, err := orderflow.StockFor(ctx, w.deps.Inventory, orderflow.ProductIDs(f.order.Items()))
	if err != nil {
		return createValidated{}, err
	}
	return createValidated{in: f.in, order: f.order, stock: stock}, nil
}

func (w *CreateShipment) mutate(_ context.Context, v createValidated) (createMutated, error) {
	now := w.deps.Factory.Now()
	address := shared.FirstNonBlank(v.in.Address, v.order.State().ShippingAddress)
	sh, err := w.deps.Factory.NewShipment(v.order.ID(), address, v.in.Method, v.in.TrackingNumber, v.in.EstimatedDelivery)
	if err != nil {
		return createMutated{}, workflow.Rule(err)
	}
	o, err := v.order.MarkShipped(v.in.TrackingNumber, now)
	if err != nil {
		return createMutated{}, workflow.Rule(err)
	}
	items := o.Items()
	stock := make([]inventory.Inventory, len(v.stock))
	for i, inv := range v.stock {
		stock[i], err = inv.CommitReservation(items[i].Quantity, o.ID(), now)
		if err != nil {
			return createMutated{}, workflow.Rule(err)
		}
	}
	return createMutated{shipment: sh, order: o, stock: stock}, nil
}

func (w *CreateShipment) persist(ctx context.Context, m createMutated) (workflow.Result[shipment.Shipment], error) {
	events := append(workflow.Collect(m.shipment, m.order), workflow.EventsOf(m.stock)...)
	saved, err := w.deps.Shipments.Save(ctx, m.shipment)
	if err != nil {
		return workflow.Result[shipment.Shipment]{}, workflow.Persisted(err)
	}
	if _, err := w.deps.Orders.Save(ctx, m.order); err != nil {
		return workflow.Result[shipment.Shipment]{}, workflow.Persisted(err)
	}
	if _, err := workflow.SaveAll(ctx, w.deps.Inventory.Save, m.stock); err != nil {
		return workflow.Result[shipment.Shipment]{}, err
	}
	return workflow.Result[shipment.Shipment]{Value: saved, Events: events}, nil
}

// =============================================================================
// UpdateShipmentStatus / MarkShipmentDelivered
// =============================================================================

type delivery struct {
	shipment shipment.Shipment
	// order is set only when the shipment reached DELIVERED.
	order *order.Order
}

func persistDelivery(ctx context.Context, d Deps, m delivery) (workflow.Result[shipment.Shipment], error) {
	events := m.shipment.Events()
	saved, err := d.Shipments.Save(ctx, m.shipment)
	if err != nil {
		return workflow.Result[shipment.Shipment]{}, workflow.Persisted(err)
	}
	if m.order != nil {
		events = append(events, m.order.Events()...)
		if _, err := d.Orders.Save(ctx, *m.order); err != nil {
			return workflow.Result[shipment.Shipment]{}, workflow.Persisted(err)
		}
	}
	return workflow.Result[shipment.Shipment]{Value: saved, Events: events}, nil
}

// markOrderDelivered returns nil for an order that was cancelled or completed
// while the parcel was in transit. The shipment still records the delivery.
func markOrderDelivered(ctx context.Context, d Deps, sh shipment.Shipment) (*order.Order, error) {
	o, err := loadOrder(ctx, d.Orders, sh.OrderID())
	if err != nil {
		return nil, err
	}
	if o.Status().IsTerminal() {
		return nil, nil
	}
	o, err = o.MarkDelivered(d.Factory.Now())
	if err != nil {
		return nil, workflow.Rule(err)
	}
	return &o, nil
}

type UpdateStatusInput struct {
	ShipmentID     shared.ShipmentID
	Status         string
	TrackingNumber string
	Note           string
}

type updateParsed struct {
	in UpdateStatusInput
	to shipment.Status
}

type updateFound struct {
	updateParsed
	shipment shipment.Shipment
}

type UpdateShipmentStatus struct {
	deps Deps
	run  workflow.Step[UpdateStatusInput, workflow.Result[shipment.Shipment]]
}

func NewUpdateShipmentStatus(d Deps) *UpdateShipmentStatus {
	w := &UpdateShipmentStatus{deps: d}
	w.run = workflow.Chain4(w.parse, w.find, w.mutate, w.persist)
	return w
}

// Execute moves the shipment to the named status. Reaching DELIVERED also
// marks the order delivered.
func (w *UpdateShipmentStatus) Execute(ctx context.Context, in UpdateStatusInput) (workflow.Result[shipment.Shipment], error) {
	return w.run(ctx, in)
}

func (w *UpdateShipmentStatus) parse(_ context.Context, in UpdateStatusInput) (updateParsed, error) {
	to, ok := shipment.ParseStatus(in.Status)
	if !ok {
		return updateParsed{}, workflow.Rule(fmt.Errorf("%w: %q", ErrUnknownStatus, in.Status))
	}
	return updateParsed{in: in, to: to}, nil
}

func (w *UpdateShipmentStatus) find(ctx context.Context, p updateParsed) (updateFound, error) {
	sh, err := loadShipment(ctx, w.deps.Shipments, p.in.ShipmentID)
	if err != nil {
		return updateFound{}, err
	}
	return updateFound{updateParsed: p, shipment: sh}, nil
}

func (w *UpdateShipmentStatus) mutate(ctx context.Context, f updateFound) (delivery, error) {
	sh, err := f.shipment.UpdateStatus(f.to, f.in.TrackingNumber, f.in.Note, w.deps.Factory.Now())
	if err != nil {
		return delivery{}, workflow.Rule(err)
	}
	m := delivery{shipment: sh}
	if f.to == shipment.StatusDelivered {
		if m.order, err = markOrderDelivered(ctx, w.deps, sh); err != nil {
			return delivery{}, err
		}
	}
	return m, nil
}

func (w *UpdateShipmentStatus) persist(ctx context.Context, m delivery) (workflow.Result[shipment.Shipment], error) {
	return persistDelivery(ctx, w.deps, m)
}

type DeliveredInput struct {
	ShipmentID   shared.ShipmentID
	ReceiverName string
	DeliveredAt  *time.Time
}

type MarkShipmentDelivered struct {
	deps Deps
	run  workflow.Step[DeliveredInput, workflow.Result[shipment.Shipment]]
}

func NewMarkShipmentDelivered(d Deps) *MarkShipmentDelivered {
	w := &MarkShipmentDelivered{deps: d}
	w.run = workflow.Chain3(w.find, w.mutate, w.persist)
	return w
}

// Execute records the hand-over and marks the order delivered. The shipment
// is saved before the order.
func (w *MarkShipmentDelivered) Execute(ctx context.Context, in DeliveredInput) (workflow.Result[shipment.Shipment], error) {
	return w.run(ctx, in)
}

type deliveredFound struct {
	in       DeliveredInput
	shipment shipment.Shipment
}

func (w *MarkShipmentDelivered) find(ctx context.Context, in DeliveredInput) (deliveredFound, error) {
	sh, err := loadShipment(ctx, w.deps.Shipments, in.ShipmentID)
	if err != nil {
		return deliveredFound{}, err
	}
	return deliveredFound{in: in, shipment: sh}, nil
}

func (w *MarkShipmentDelivered) mutate(ctx context.Context, f deliveredFound) (delivery, error) {
	sh, err := f.shipment.MarkDelivered(f.in.ReceiverName, f.in.DeliveredAt, w.deps.Factory.Now())
	if err != nil {
		return delivery{}, workflow.Rule(err)
	}
	o, err := markOrderDelivered(ctx, w.deps, sh)
	if err != nil {
		return delivery{}, err
	}
	return delivery{shipment: sh, order: o}, nil
}

func (w *MarkShipmentDelivered) persist(ctx context.Context, m delivery) (workflow.Result[shipment.Shipment], error) {
	return persistDelivery(ctx, w.deps, m)
}
