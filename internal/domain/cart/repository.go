package cart

import (
	"context"

	"github.com/example/ec-fulfillment/internal/domain/shared"
)

// Repository persists carts. An account has at most one cart.
type Repository interface {
	FindByID(ctx context.Context, id shared.CartID) (Cart, bool, error)
	FindByAccount(ctx context.Context, accountID shared.AccountID) (Cart, bool, error)
	Save(ctx context.Context, c Cart) (Cart, error)
	Delete(ctx context.Context, id shared.CartID) error
}
