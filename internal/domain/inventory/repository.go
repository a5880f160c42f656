package inventory

import (
	"context"

	"github.com/example/ec-fulfillment/internal/domain/shared"
)

// Repository persists inventories. Each product has one inventory.
type Repository interface {
	FindByID(ctx context.Context, id shared.InventoryID) (Inventory, bool, error)
	FindByProduct(ctx context.Context, productID shared.ProductID) (Inventory, bool, error)
	Save(ctx context.Context, i Inventory) (Inventory, error)
}
