package profile

import (
	"context"

	"github.com/example/ec-fulfillment/internal/domain/shared"
)

// Repository persists profiles. An account has at most one profile.
type Repository interface {
	FindByID(ctx context.Context, id shared.ProfileID) (Profile, bool, error)
	FindByAccount(ctx context.Context, accountID shared.AccountID) (Profile, bool, error)
	Save(ctx context.Context, p Profile) (Profile, error)
}
