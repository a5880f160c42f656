package inventory

import (
	"time"

	"github.com/example/ec-fulfillment/internal/domain/shared"
)

const (
	EventInventoryCreated  = "InventoryCreated"
	EventInventoryAdjusted = "InventoryAdjusted"
	EventStockDepleted     = "StockDepleted"
	EventStockReserved     = "StockReserved"
	EventStockReleased     = "StockReleased"
	EventStockDeducted     = "StockDeducted"
)

type InventoryCreated struct {
	InventoryID shared.InventoryID `json:"inventory_id"`
	ProductID   shared.ProductID   `json:"product_id"`
	Quantity    int                `json:"quantity"`
	CreatedAt   time.Time          `json:"created_at"`
}

type InventoryAdjusted struct {
	InventoryID shared.InventoryID `json:"inventory_id"`
	ProductID   shared.ProductID   `json:"product_id"`
	Delta       int                `json:"delta"`
	OldQuantity int                `json:"old_quantity"`
	NewQuantity int                `json:"new_quantity"`
	Reason      string             `json:"reason,omitempty"`
	AdjustedAt  time.Time          `json:"adjusted_at"`
}

type StockDepleted struct {
	InventoryID shared.InventoryID `json:"inventory_id"`
	ProductID   shared.ProductID   `json:"product_id"`
	DepletedAt  time.Time          `json:"depleted_at"`
}

type StockReserved struct {
	InventoryID shared.InventoryID `json:"inventory_id"`
	ProductID   shared.ProductID   `json:"product_id"`
	OrderID     shared.OrderID     `json:"order_id"`
	Quantity    int                `json:"quantity"`
	ReservedAt  time.Time          `json:"reserved_at"`
}

type StockReleased struct {
	InventoryID shared.InventoryID `json:"inventory_id"`
	ProductID   shared.ProductID   `json:"product_id"`
	OrderID     shared.OrderID     `json:"order_id"`
	Quantity    int                `json:"quantity"`
	ReleasedAt  time.Time          `json:"released_at"`
}

type StockDeducted struct {
	InventoryID shared.InventoryID `json:"inventory_id"`
	ProductID   shared.ProductID   `json:"product_id"`
	OrderID     shared.OrderID     `json:"order_id"`
	Quantity    int                `json:"quantity"`
	DeductedAt  time.Time          `json:"deducted_at"`
}
