package shipmentflow

import (
	"context"
	"testing"
	"time"

	"github.com/example/ec-fulfillment/internal/apperr"
	"github.com/example/ec-fulfillment/internal/domain/aggregate"
	"github.com/example/ec-fulfillment/internal/domain/factory"
	"github.com/example/ec-fulfillment/internal/domain/inventory"
	"github.com/example/ec-fulfillment/internal/domain/order"
	"github.com/example/ec-fulfillment/internal/domain/shared"
	"github.com/example/ec-fulfillment/internal/domain/shipment"
	"github.com/example/ec-fulfillment/internal/infrastructure/repository"
	"github.com/example/ec-fulfillment/internal/infrastructure/store/mocks"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var now = time.Date(2026, 6, 3, 14, 0, 0, 0, time.UTC)

type fixture struct {
	deps  Deps
	repos *repository.Set
	store *mocks.MockDocumentStore
}

func newFixture(t *testing.T) fixture {
	t.Helper()
	st := mocks.NewMockDocumentStore()
	repos := repository.NewSet(st)
	return fixture{
		deps: Deps{
			Shipments: repos.Shipments,
			Orders:    repos.Orders,
			Inventory: repos.Inventory,
			Factory:   factory.New(&shared.SequenceIDs{Prefix: "id"}, shared.FixedClock{T: now}),
		},
		repos: repos,
		store: st,
	}
}

// paidOrder stores an order for 3 x P1 with the stock already reserved.
func (f fixture) paidOrder(t *testing.T) order.Order {
	t.Helper()
	ctx := context.Background()
	c, err := f.deps.Factory.NewCart("acct-1")
	require.NoError(t, err)
	c, err = c.AddItem("P1", "Mug", decimal.NewFromInt(1000), 3, now)
	require.NoError(t, err)
	o, err := f.deps.Factory.NewOrder(c, "1 Main St", decimal.Zero, decimal.Zero)
	require.NoError(t, err)
	o, err = o.MarkPaid("pay-1", "card", now)
	require.NoError(t, err)
	o, err = f.repos.Orders.Save(ctx, o)
	require.NoError(t, err)

	inv, err := f.deps.Factory.NewInventory("P1", 10)
	require.NoError(t, err)
	inv, err = inv.Reserve(3, o.ID(), now)
	require.NoError(t, err)
	_, err = f.repos.Inventory.Save(ctx, inv)
	require.NoError(t, err)
	f.store.Reset()
	return o
}

func (f fixture) shipped(t *testing.T) shipment.Shipment {
	t.Helper()
	o := f.paidOrder(t)
	res, err := NewCreateShipment(f.deps).Execute(context.Background(), CreateInput{OrderID: o.ID(), Method: "standard", TrackingNumber: "TRK-1"})
	require.NoError(t, err)
	f.store.Reset()
	return res.Value
}

func (f fixture) orderStatus(t *testing.T, id shared.OrderID) order.Status {
	t.Helper()
	o, ok, err := f.repos.Orders.FindByID(context.Background(), id)
	require.NoError(t, err)
	require.True(t, ok)
	return o.Status()
}

func types(events []aggregate.Event) []string {
	out := make([]string, len(events))
	for i, e := range events {
		out[i] = e.EventType
	}
	return out
}

// =============================================================================
// CreateShipment
// =============================================================================

func TestCreateShipment_Success(t *testing.T) {
	f := newFixture(t)
	o := f.paidOrder(t)

	res, err := NewCreateShipment(f.deps).Execute(context.Background(), CreateInput{
		OrderID: o.ID(), Method: "standard", TrackingNumber: "TRK-1",
	})

	require.NoError(t, err)
	sh := res.Value
	assert.Equal(t, shipment.StatusCreated, sh.Status())
	assert.Equal(t, "1 Main St", sh.State().ShippingAddress)
	assert.Equal(t, []string{shipment.EventShipmentCreated, order.EventOrderShipped, inventory.EventStockDeducted}, types(res.Events))
	assert.Equal(t, []string{
		repository.CollectionShipments, repository.CollectionOrders, repository.CollectionInventory,
	}, f.store.PutCollections())
	assert.Equal(t, order.StatusShipped, f.orderStatus(t, o.ID()))

	inv, ok, err := f.repos.Inventory.FindByProduct(context.Background(), "P1")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, 7, inv.Available())
	assert.Zero(t, inv.Reserved())
}

func TestCreateShipment_OrderNotPaid(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	c, err := f.deps.Factory.NewCart("acct-1")
	require.NoError(t, err)
	c, err = c.AddItem("P1", "Mug", decimal.NewFromInt(1000), 1, now)
	require.NoError(t, err)
	o, err := f.deps.Factory.NewOrder(c, "addr", decimal.Zero, decimal.Zero)
	require.NoError(t, err)
	_, err = f.repos.Orders.Save(ctx, o)
	require.NoError(t, err)

	_, err = NewCreateShipment(f.deps).Execute(ctx, CreateInput{OrderID: o.ID(), Method: "standard"})

	assert.ErrorIs(t, err, ErrOrderNotShippable)
	assert.Equal(t, apperr.KindDomainRule, apperr.KindOf(err))
}

func TestCreateShipment_MethodRequired(t *testing.T) {
	f := newFixture(t)
	o := f.paidOrder(t)

	_, err := NewCreateShipment(f.deps).Execute(context.Background(), CreateInput{OrderID: o.ID()})

	assert.ErrorIs(t, err, shipment.ErrMethodRequired)
	assert.Empty(t, f.store.PutCalls)
}

func TestCreateShipment_OrderNotFound(t *testing.T) {
	f := newFixture(t)

	_, err := NewCreateShipment(f.deps).Execute(context.Background(), CreateInput{OrderID: "nope", Method: "standard"})

	assert.ErrorIs(t, err, order.ErrOrderNotFound)
	assert.Equal(t, apperr.KindNotFound, apperr.KindOf(err))
}

// =============================================================================
// UpdateShipmentStatus
// =============================================================================

func TestUpdateShipmentStatus_WalksToDelivered(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	sh := f.shipped(t)
	w := NewUpdateShipmentStatus(f.deps)

	for _, s := range []string{"PENDING", "SHIPPED", "ARRIVED"} {
		res, err := w.Execute(ctx, UpdateStatusInput{ShipmentID: sh.ID(), Status: s})
		require.NoError(t, err, s)
		assert.Equal(t, []string{shipment.EventShipmentStatusUpdated}, types(res.Events))
	}
	assert.Equal(t, order.StatusShipped, f.orderStatus(t, sh.OrderID()))

	res, err := w.Execute(ctx, UpdateStatusInput{ShipmentID: sh.ID(), Status: "DELIVERED", Note: "porch"})

	require.NoError(t, err)
	assert.Equal(t, shipment.StatusDelivered, res.Value.Status())
	assert.NotNil(t, res.Value.State().ActualDeliveryDate)
	assert.Equal(t, []string{shipment.EventShipmentStatusUpdated, order.EventOrderDelivered}, types(res.Events))
	assert.Equal(t, order.StatusDelivered, f.orderStatus(t, sh.OrderID()))
}

func TestUpdateShipmentStatus_UnknownStatus(t *testing.T) {
	f := newFixture(t)
	sh := f.shipped(t)

	_, err := NewUpdateShipmentStatus(f.deps).Execute(context.Background(), UpdateStatusInput{ShipmentID: sh.ID(), Status: "LOST"})

	assert.ErrorIs(t, err, ErrUnknownStatus)
	assert.Equal(t, apperr.KindDomainRule, apperr.KindOf(err))
}

func TestUpdateShipmentStatus_IllegalTransition(t *testing.T) {
	f := newFixture(t)
	sh := f.shipped(t)

	_, err := NewUpdateShipmentStatus(f.deps).Execute(context.Background(), UpdateStatusInput{ShipmentID: sh.ID(), Status: "DELIVERED"})

	assert.ErrorIs(t, err, aggregate.ErrIllegalTransition)
	assert.Empty(t, f.store.PutCalls)
}

// =============================================================================
// MarkShipmentDelivered
// =============================================================================

func TestMarkShipmentDelivered(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	sh := f.shipped(t)
	w := NewUpdateShipmentStatus(f.deps)
	for _, s := range []string{"PENDING", "SHIPPED", "ARRIVED"} {
		_, err := w.Execute(ctx, UpdateStatusInput{ShipmentID: sh.ID(), Status: s})
		require.NoError(t, err)
	}
	f.store.Reset()
	at := now.Add(-time.Hour)

	res, err := NewMarkShipmentDelivered(f.deps).Execute(ctx, DeliveredInput{ShipmentID: sh.ID(), ReceiverName: "Bob", DeliveredAt: &at})

	require.NoError(t, err)
	assert.Equal(t, "Bob", res.Value.State().ReceiverName)
	assert.True(t, at.Equal(*res.Value.State().ActualDeliveryDate))
	assert.Equal(t, []string{shipment.EventShipmentDelivered, order.EventOrderDelivered}, types(res.Events))
	assert.Equal(t, []string{repository.CollectionShipments, repository.CollectionOrders}, f.store.PutCollections())
}

func TestMarkShipmentDelivered_NotFound(t *testing.T) {
	f := newFixture(t)

	_, err := NewMarkShipmentDelivered(f.deps).Execute(context.Background(), DeliveredInput{ShipmentID: "nope"})

	assert.ErrorIs(t, err, shipment.ErrShipmentNotFound)
	assert.Equal(t, apperr.KindNotFound, apperr.KindOf(err))
}

func (f fixture) cancelOrder(t *testing.T, id shared.OrderID) {
	t.Helper()
	ctx := context.Background()
	o, ok, err := f.repos.Orders.FindByID(ctx, id)
	require.NoError(t, err)
	require.True(t, ok)
	o, err = o.Cancel("lost in transit", now)
	require.NoError(t, err)
	_, err = f.repos.Orders.Save(ctx, o)
	require.NoError(t, err)
}

func (f fixture) arrived(t *testing.T) shipment.Shipment {
	t.Helper()
	sh := f.shipped(t)
	w := NewUpdateShipmentStatus(f.deps)
	for _, s := range []string{"PENDING", "SHIPPED", "ARRIVED"} {
		_, err := w.Execute(context.Background(), UpdateStatusInput{ShipmentID: sh.ID(), Status: s})
		require.NoError(t, err, s)
	}
	return sh
}

func TestMarkShipmentDelivered_CancelledOrderKeepsStatus(t *testing.T) {
	f := newFixture(t)
	sh := f.arrived(t)
	f.cancelOrder(t, sh.OrderID())
	f.store.Reset()

	res, err := NewMarkShipmentDelivered(f.deps).Execute(context.Background(), DeliveredInput{ShipmentID: sh.ID(), ReceiverName: "Bob"})

	require.NoError(t, err)
	assert.Equal(t, shipment.StatusDelivered, res.Value.Status())
	assert.Equal(t, []string{shipment.EventShipmentDelivered}, types(res.Events))
	assert.Equal(t, []string{repository.CollectionShipments}, f.store.PutCollections())
	assert.Equal(t, order.StatusCancelled, f.orderStatus(t, sh.OrderID()))
}

func TestUpdateShipmentStatus_DeliveredForCancelledOrder(t *testing.T) {
	f := newFixture(t)
	sh := f.arrived(t)
	f.cancelOrder(t, sh.OrderID())

	res, err := NewUpdateShipmentStatus(f.deps).Execute(context.Background(), UpdateStatusInput{ShipmentID: sh.ID(), Status: "DELIVERED"})

	require.NoError(t, err)
	assert.Equal(t, shipment.StatusDelivered, res.Value.Status())
	assert.Equal(t, []string{shipment.EventShipmentStatusUpdated}, types(res.Events))
	assert.Equal(t, order.StatusCancelled, f.orderStatus(t, sh.OrderID()))
}
