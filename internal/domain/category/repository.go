package category

import (
	"context"

	"github.com/example/ec-fulfillment/internal/domain/shared"
)

type Repository interface {
	FindByID(ctx context.Context, id shared.CategoryID) (Category, bool, error)
	FindBySlug(ctx context.Context, slug string) (Category, bool, error)
	Save(ctx context.Context, c Category) (Category, error)
	Delete(ctx context.Context, id shared.CategoryID) error
}
