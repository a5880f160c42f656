package inventory

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var now = time.Date(2026, 3, 1, 8, 0, 0, 0, time.UTC)

func newTestInventory(t *testing.T, available int) Inventory {
	t.Helper()
	inv, err := New("inv-1", "prod-1", available, now)
	require.NoError(t, err)
	return Reconstruct(inv.State(), 1)
}

// ============================================
// New Tests
// ============================================

func TestNew(t *testing.T) {
	inv, err := New("inv-1", "prod-1", 10, now)

	require.NoError(t, err)
	assert.Equal(t, 10, inv.Available())
	assert.Equal(t, 0, inv.Reserved())
	require.Len(t, inv.Events(), 1)
	assert.Equal(t, EventInventoryCreated, inv.Events()[0].EventType)

	_, err = New("inv-1", "prod-1", -1, now)
	assert.ErrorIs(t, err, ErrNegativeInitialStock)
}

// ============================================
// AdjustQuantity Tests
// ============================================

func TestInventory_AdjustQuantity(t *testing.T) {
	inv := newTestInventory(t, 5)

	up, err := inv.AdjustQuantity(3, "restock", now)
	require.NoError(t, err)
	assert.Equal(t, 8, up.Available())
	require.Len(t, up.Events(), 1)
	data := up.Events()[0].Data.(InventoryAdjusted)
	assert.Equal(t, 5, data.OldQuantity)
	assert.Equal(t, 8, data.NewQuantity)
	assert.Equal(t, 3, data.Delta)

	down, err := inv.AdjustQuantity(-2, "damaged", now)
	require.NoError(t, err)
	assert.Equal(t, 3, down.Available())
}

func TestInventory_AdjustQuantity_BelowZeroFails(t *testing.T) {
	inv := newTestInventory(t, 2)

	_, err := inv.AdjustQuantity(-3, "count", now)

	assert.ErrorIs(t, err, ErrInsufficientStock)
	assert.Equal(t, 2, inv.Available())
}

func TestInventory_AdjustQuantity_ZeroDeltaFails(t *testing.T) {
	_, err := newTestInventory(t, 2).AdjustQuantity(0, "noop", now)
	assert.ErrorIs(t, err, ErrInvalidQuantity)
}

func TestInventory_AdjustQuantity_Depleted(t *testing.T) {
	next, err := newTestInventory(t, 4).AdjustQuantity(-4, "sold out", now)

	require.NoError(t, err)
	assert.Equal(t, 0, next.Available())
	events := next.Events()
	require.Len(t, events, 2)
	assert.Equal(t, EventInventoryAdjusted, events[0].EventType)
	assert.Equal(t, EventStockDepleted, events[1].EventType)
}

func TestInventory_AdjustQuantity_NoDepletedWhenAlreadyZero(t *testing.T) {
	next, err := newTestInventory(t, 0).AdjustQuantity(5, "restock", now)
	require.NoError(t, err)
	require.Len(t, next.Events(), 1)

	same, err := Reconstruct(next.State(), 2).AdjustQuantity(-1, "count", now)
	require.NoError(t, err)
	assert.Len(t, same.Events(), 1)
}

// ============================================
// Reservation Tests
// ============================================

func TestInventory_Reserve(t *testing.T) {
	next, err := newTestInventory(t, 5).Reserve(3, "order-1", now)

	require.NoError(t, err)
	assert.Equal(t, 2, next.Available())
	assert.Equal(t, 3, next.Reserved())
	require.Len(t, next.Events(), 1)
	assert.Equal(t, EventStockReserved, next.Events()[0].EventType)
}

func TestInventory_Reserve_Insufficient(t *testing.T) {
	inv := newTestInventory(t, 5)

	_, err := inv.Reserve(6, "order-1", now)

	assert.ErrorIs(t, err, ErrInsufficientStock)
	assert.Equal(t, 5, inv.Available())
	assert.Equal(t, 0, inv.Reserved())
}

func TestInventory_Reserve_InvalidQuantity(t *testing.T) {
	for _, q := range []int{0, -1} {
		_, err := newTestInventory(t, 5).Reserve(q, "order-1", now)
		assert.ErrorIs(t, err, ErrInvalidQuantity)
	}
}

func TestInventory_ReserveThenRelease_Restores(t *testing.T) {
	for _, q := range []int{1, 3, 5} {
		inv := newTestInventory(t, 5)

		reserved, err := inv.Reserve(q, "order-1", now)
		require.NoError(t, err)
		released, err := reserved.ReleaseReservation(q, "order-1", now)
		require.NoError(t, err)

		assert.Equal(t, inv.Available(), released.Available())
		assert.Equal(t, inv.Reserved(), released.Reserved())
	}
}

func TestInventory_ReleaseReservation_ExceedsReserved(t *testing.T) {
	reserved, err := newTestInventory(t, 5).Reserve(2, "order-1", now)
	require.NoError(t, err)

	_, err = reserved.ReleaseReservation(3, "order-1", now)
	assert.ErrorIs(t, err, ErrInsufficientReserved)

	_, err = reserved.ReleaseReservation(0, "order-1", now)
	assert.ErrorIs(t, err, ErrInvalidQuantity)
}

func TestInventory_CommitReservation(t *testing.T) {
	reserved, err := newTestInventory(t, 5).Reserve(2, "order-1", now)
	require.NoError(t, err)

	committed, err := Reconstruct(reserved.State(), 2).CommitReservation(2, "order-1", now)

	require.NoError(t, err)
	assert.Equal(t, 3, committed.Available())
	assert.Equal(t, 0, committed.Reserved())
	require.Len(t, committed.Events(), 1)
	assert.Equal(t, EventStockDeducted, committed.Events()[0].EventType)

	_, err = committed.CommitReservation(1, "order-1", now)
	assert.ErrorIs(t, err, ErrInsufficientReserved)
}
