package cart

import (
	"time"

	"github.com/example/ec-fulfillment/internal/domain/shared"
	"github.com/shopspring/decimal"
)

const (
	EventItemAdded           = "ItemAddedToCart"
	EventItemQuantityChanged = "CartItemQuantityChanged"
	EventItemRemoved         = "ItemRemovedFromCart"
	EventCartCleared         = "CartCleared"
)

type ItemAddedToCart struct {
	CartID      shared.CartID    `json:"cart_id"`
	AccountID   shared.AccountID `json:"account_id"`
	ProductID   shared.ProductID `json:"product_id"`
	ProductName string           `json:"product_name"`
	Quantity    int              `json:"quantity"`
	UnitPrice   decimal.Decimal  `json:"unit_price"`
	AddedAt     time.Time        `json:"added_at"`
}

type CartItemQuantityChanged struct {
	CartID      shared.CartID    `json:"cart_id"`
	AccountID   shared.AccountID `json:"account_id"`
	ProductID   shared.ProductID `json:"product_id"`
	OldQuantity int              `json:"old_quantity"`
	NewQuantity int              `json:"new_quantity"`
	ChangedAt   time.Time        `json:"changed_at"`
}

type ItemRemovedFromCart struct {
	CartID    shared.CartID    `json:"cart_id"`
	AccountID shared.AccountID `json:"account_id"`
	ProductID shared.ProductID `json:"product_id"`
	RemovedAt time.Time        `json:"removed_at"`
}

type CartCleared struct {
	CartID    shared.CartID    `json:"cart_id"`
	AccountID shared.AccountID `json:"account_id"`
	ClearedAt time.Time        `json:"cleared_at"`
}
