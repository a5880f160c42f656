package cart

import (
	"errors"
	"time"

	"github.com/example/ec-fulfillment/internal/domain/aggregate"
	"github.com/example/ec-fulfillment/internal/domain/shared"
	"github.com/shopspring/decimal"
)

const AggregateType = "Cart"

var (
	ErrInvalidQuantity = errors.New("quantity must be positive")
	ErrInvalidProduct  = errors.New("product_id is required")
	ErrInvalidPrice    = errors.New("unit price must not be negative")
	ErrCartNotFound    = errors.New("cart not found")
)

type Item struct {
	ProductID   shared.ProductID `json:"product_id"`
	ProductName string           `json:"product_name"`
	Quantity    int              `json:"quantity"`
	UnitPrice   decimal.Decimal  `json:"unit_price"`
}

// Subtotal is UnitPrice * Quantity.
func (i Item) Subtotal() decimal.Decimal {
	return shared.LineTotal(i.UnitPrice, i.Quantity)
}

// State is the persisted form of a cart.
type State struct {
	ID        shared.CartID    `json:"id"`
	AccountID shared.AccountID `json:"account_id"`
	Items     []Item           `json:"items"`
	shared.AuditInfo
}

type Cart struct {
	aggregate.Root
	s State
}

// New returns an empty cart owned by accountID.
func New(id shared.CartID, accountID shared.AccountID, now time.Time) (Cart, error) {
	if err := shared.RequireNonBlank("cart_id", string(id)); err != nil {
		return Cart{}, err
	}
	if err := shared.RequireNonBlank("account_id", string(accountID)); err != nil {
		return Cart{}, err
	}
	return Cart{s: State{ID: id, AccountID: accountID, AuditInfo: shared.NewAuditInfo(now)}}, nil
}

// Reconstruct restores a cart from storage with no pending events.
func Reconstruct(s State, version int) Cart {
	s.Items = cloneItems(s.Items)
	return Cart{Root: aggregate.Rehydrate(version), s: s}
}

func (c Cart) ID() shared.CartID { return c.s.ID }
func (c Cart) AccountID() shared.AccountID { return c.s.AccountID }
func (c Cart) Items() []Item { return cloneItems(c.s.Items) }
func (c Cart) IsEmpty() bool { return len(c.s.Items) == 0 }
func (c Cart) Audit() shared.AuditInfo { return c.s.AuditInfo }
func (c Cart) BelongsTo(a shared.AccountID) bool { return c.s.AccountID == a }

func (c Cart) State() State {
	s := c.s
	s.Items = cloneItems(c.s.Items)
	return s
}

// Item returns the line for productID.
func (c Cart) Item(productID shared.ProductID) (Item, bool) {
	if i := c.indexOf(productID); i >= 0 {
		return c.s.Items[i], true
	}
	return Item{}, false
}

// Total sums unit price times quantity over all items. It never rounds.
func (c Cart) Total() decimal.Decimal {
	total := decimal.Zero
	for _, item := range c.s.Items {
		total = total.Add(item.Subtotal())
	}
	return total
}

// AddItem appends the product, or merges it into the existing line for the
// same product by summing quantities. The new name and unit price win.
func (c Cart) AddItem(productID shared.ProductID, name string, unitPrice decimal.Decimal, quantity int, now time.Time) (Cart, error) {
	if productID == "" {
		return Cart{}, ErrInvalidProduct
	}
	if quantity <= 0 {
		return Cart{}, ErrInvalidQuantity
	}
	if unitPrice.IsNegative() {
		return Cart{}, ErrInvalidPrice
	}

	next := c.State()
	next.AuditInfo = next.Touch(now)

	if i := c.indexOf(productID); i >= 0 {
		old := next.Items[i].Quantity
		next.Items[i] = Item{ProductID: productID, ProductName: name, Quantity: old + quantity, UnitPrice: unitPrice}
		return c.next(next, EventItemQuantityChanged, CartItemQuantityChanged{
			CartID:      c.s.ID,
			AccountID:   c.s.AccountID,
			ProductID:   productID,
			OldQuantity: old,
			NewQuantity: old + quantity,
			ChangedAt:   now,
		}, now), nil
	}

	next.Items = append(next.Items, Item{ProductID: productID, ProductName: name, Quantity: quantity, UnitPrice: unitPrice})
	return c.next(next, EventItemAdded, ItemAddedToCart{
		CartID:      c.s.ID,
		AccountID:   c.s.AccountID,
		ProductID:   productID,
		ProductName: name,
		Quantity:    quantity,
		UnitPrice:   unitPrice,
		AddedAt:     now,
	}, now), nil
}

// RemoveItem drops the product's line. Removing an absent product is a no-op.
func (c Cart) RemoveItem(productID shared.ProductID, now time.Time) (Cart, error) {
	if productID == "" {
		return Cart{}, ErrInvalidProduct
	}
	i := c.indexOf(productID)
	if i < 0 {
		return c, nil
	}

	next := c.State()
	next.Items = append(next.Items[:i], next.Items[i+1:]...)
	next.AuditInfo = next.Touch(now)
	return c.next(next, EventItemRemoved, ItemRemovedFromCart{
		CartID:    c.s.ID,
		AccountID: c.s.AccountID,
		ProductID: productID,
		RemovedAt: now,
	}, now), nil
}

// UpdateItemQuantity sets the line's quantity. A quantity of zero or less
// removes the line; an absent product or an unchanged quantity is a no-op.
func (c Cart) UpdateItemQuantity(productID shared.ProductID, quantity int, now time.Time) (Cart, error) {
	if quantity <= 0 {
		return c.RemoveItem(productID, now)
	}
	if productID == "" {
		return Cart{}, ErrInvalidProduct
	}
	i := c.indexOf(productID)
	if i < 0 || c.s.Items[i].Quantity == quantity {
		return c, nil
	}

	next := c.State()
	old := next.Items[i].Quantity
	next.Items[i].Quantity = quantity
	next.AuditInfo = next.Touch(now)
	return c.next(next, EventItemQuantityChanged, CartItemQuantityChanged{
		CartID:      c.s.ID,
		AccountID:   c.s.AccountID,
		ProductID:   productID,
		OldQuantity: old,
		NewQuantity: quantity,
		ChangedAt:   now,
	}, now), nil
}

// Clear empties the cart. Clearing an empty cart is a no-op.
func (c Cart) Clear(now time.Time) (Cart, error) {
	if c.IsEmpty() {
		return c, nil
	}
	next := c.State()
	next.Items = nil
	next.AuditInfo = next.Touch(now)
	return c.next(next, EventCartCleared, CartCleared{
		CartID:    c.s.ID,
		AccountID: c.s.AccountID,
		ClearedAt: now,
	}, now), nil
}

func (c Cart) indexOf(productID shared.ProductID) int {
	for i, item := range c.s.Items {
		if item.ProductID == productID {
			return i
		}
	}
	return -1
}

func (c Cart) next(s State, eventType string, data any, now time.Time) Cart {
	return Cart{
		Root: c.With(aggregate.Event{
			AggregateID:   string(c.s.ID),
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
