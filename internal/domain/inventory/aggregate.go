package inventory

import (
	"errors"
	"fmt"
	"time"

	"github.com/example/ec-fulfillment/internal/domain/aggregate"
	"github.com/example/ec-fulfillment/internal/domain/shared"
)

const AggregateType = "Inventory"

var (
	ErrInventoryNotFound    = errors.New("inventory not found")
	ErrInsufficientStock    = errors.New("insufficient stock")
	ErrInvalidQuantity      = errors.New("quantity must be positive")
	ErrInsufficientReserved = errors.New("quantity exceeds reserved stock")
	ErrNegativeInitialStock = errors.New("initial stock must not be negative")
)

type State struct {
	ID                shared.InventoryID `json:"id"`
	ProductID         shared.ProductID   `json:"product_id"`
	AvailableQuantity int                `json:"available_quantity"`
	ReservedQuantity  int                `json:"reserved_quantity"`
	shared.AuditInfo
}

type Inventory struct {
	aggregate.Root
	s State
}

// New starts stock tracking for productID with initial units available.
func New(id shared.InventoryID, productID shared.ProductID, initial int, now time.Time) (Inventory, error) {
	if err := shared.RequireNonBlank("inventory_id", string(id)); err != nil {
		return Inventory{}, err
	}
	if err := shared.RequireNonBlank("product_id", string(productID)); err != nil {
		return Inventory{}, err
	}
	if initial < 0 {
		return Inventory{}, ErrNegativeInitialStock
	}
	s := State{ID: id, ProductID: productID, AvailableQuantity: initial, AuditInfo: shared.NewAuditInfo(now)}
	return Inventory{s: s}.with(s, now, event(EventInventoryCreated, InventoryCreated{
		InventoryID: id,
		ProductID:   productID,
		Quantity:    initial,
		CreatedAt:   now,
	})), nil
}

func Reconstruct(s State, version int) Inventory {
	return Inventory{Root: aggregate.Rehydrate(version), s: s}
}

func (i Inventory) ID() shared.InventoryID { return i.s.ID }
func (i Inventory) ProductID() shared.ProductID { return i.s.ProductID }
func (i Inventory) Available() int { return i.s.AvailableQuantity }
func (i Inventory) Reserved() int { return i.s.ReservedQuantity }
func (i Inventory) State() State { return i.s }

// AdjustQuantity adds delta (which may be negative) to the available stock.
// It also emits StockDepleted when available drops from above zero to zero.
func (i Inventory) AdjustQuantity(delta int, reason string, now time.Time) (Inventory, error) {
	if delta == 0 {
		return Inventory{}, ErrInvalidQuantity
	}
	old := i.s.AvailableQuantity
	updated := old + delta
	if updated < 0 {
		return Inventory{}, fmt.Errorf("%w: available %d, adjustment %d", ErrInsufficientStock, old, delta)
	}

	s := i.s
	s.AvailableQuantity = updated
	s.AuditInfo = s.Touch(now)

	events := []pending{event(EventInventoryAdjusted, InventoryAdjusted{
		InventoryID: s.ID,
		ProductID:   s.ProductID,
		Delta:       delta,
		OldQuantity: old,
		NewQuantity: updated,
		Reason:      reason,
		AdjustedAt:  now,
	})}
	if old > 0 && updated == 0 {
		events = append(events, event(EventStockDepleted, StockDepleted{
			InventoryID: s.ID,
			ProductID:   s.ProductID,
			DepletedAt:  now,
		}))
	}
	return i.with(s, now, events...), nil
}

// Reserve moves quantity from available to reserved for orderID.
func (i Inventory) Reserve(quantity int, orderID shared.OrderID, now time.Time) (Inventory, error) {
	if quantity <= 0 {
		return Inventory{}, ErrInvalidQuantity
	}
	if quantity > i.s.AvailableQuantity {
		return Inventory{}, fmt.Errorf("%w: available %d, requested %d", ErrInsufficientStock, i.s.AvailableQuantity, quantity)
	}
	s := i.s
	s.AvailableQuantity -= quantity
	s.ReservedQuantity += quantity
	s.AuditInfo = s.Touch(now)
	return i.with(s, now, event(EventStockReserved, StockReserved{
		InventoryID: s.ID,
		ProductID:   s.ProductID,
		OrderID:     orderID,
		Quantity:    quantity,
		ReservedAt:  now,
	})), nil
}

// ReleaseReservation moves quantity from reserved back to available.
func (i Inventory) ReleaseReservation(quantity int, orderID shared.OrderID, now time.Time) (Inventory, error) {
	if quantity <= 0 {
		return Inventory{}, ErrInvalidQuantity
	}
	if quantity > i.s.ReservedQuantity {
		return Inventory{}, fmt.Errorf("%w: reserved %d, requested %d", ErrInsufficientReserved, i.s.ReservedQuantity, quantity)
	}
	s := i.s
	s.AvailableQuantity += quantity
	s.ReservedQuantity -= quantity
	s.AuditInfo = s.Touch(now)
	return i.with(s, now, event(EventStockReleased, StockReleased{
		InventoryID: s.ID,
		ProductID:   s.ProductID,
		OrderID:     orderID,
		Quantity:    quantity,
		ReleasedAt:  now,
	})), nil
}

// CommitReservation removes quantity from reserved stock once the goods have
// left the warehouse.
func (i Inventory) CommitReservation(quantity int, orderID shared.OrderID, now time.Time) (Inventory, error) {
	if quantity <= 0 {
		return Inventory{}, ErrInvalidQuantity
	}
	if quantity > i.s.ReservedQuantity {
		return Inventory{}, fmt.Errorf("%w: reserved %d, requested %d", ErrInsufficientReserved, i.s.ReservedQuantity, quantity)
	}
	s := i.s
	s.ReservedQuantity -= quantity
	s.AuditInfo = s.Touch(now)
	return i.with(s, now, event(EventStockDeducted, StockDeducted{
		InventoryID: s.ID,
		ProductID:   s.ProductID,
		OrderID:     orderID,
		Quantity:    quantity,
		DeductedAt:  now,
	})), nil
}

type pending struct {
	eventType string
	data      any
}

func event(eventType string, data any) pending {
	return pending{eventType: eventType, data: data}
}

func (i Inventory) with(s State, now time.Time, events ...pending) Inventory {
	recorded := make([]aggregate.Event, 0, len(events))
	for _, e := range events {
		recorded = append(recorded, aggregate.Event{
			AggregateID:   string(s.ID),
			AggregateType: AggregateType,
			EventType:     e.eventType,
			Data:          e.data,
			OccurredAt:    now,
		})
	}
	return Inventory{Root: i.With(recorded...), s: s}
}
