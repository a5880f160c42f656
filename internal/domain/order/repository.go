package order

import (
	"context"

	"github.com/example/ec-fulfillment/internal/domain/shared"
)

type Repository interface {
	FindByID(ctx context.Context, id shared.OrderID) (Order, bool, error)
	FindByAccount(ctx context.Context, accountID shared.AccountID) ([]Order, error)
	FindByStatus(ctx context.Context, status Status) ([]Order, error)
	Save(ctx context.Context, o Order) (Order, error)
}
