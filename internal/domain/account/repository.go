package account

import (
	"context"

	"github.com/example/ec-fulfillment/internal/domain/shared"
)

type Repository interface {
	FindByID(ctx context.Context, id shared.AccountID) (Account, bool, error)
	FindByEmail(ctx context.Context, email shared.Email) (Account, bool, error)
	Save(ctx context.Context, a Account) (Account, error)
}
