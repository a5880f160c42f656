package product

import (
	"context"

	"github.com/example/ec-fulfillment/internal/domain/shared"
)

type Repository interface {
	FindByID(ctx context.Context, id shared.ProductID) (Product, bool, error)
	FindBySKU(ctx context.Context, sku string) (Product, bool, error)
	FindByCategory(ctx context.Context, categoryID shared.CategoryID) ([]Product, error)
	Save(ctx context.Context, p Product) (Product, error)
	Delete(ctx context.Context, id shared.ProductID) error
}
