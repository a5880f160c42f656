package promotion

import (
	"context"

	"github.com/example/ec-fulfillment/internal/domain/shared"
)

type Repository interface {
	FindByID(ctx context.Context, id shared.PromotionID) (Promotion, bool, error)
	FindByCode(ctx context.Context, code string) (Promotion, bool, error)
	Save(ctx context.Context, p Promotion) (Promotion, error)
	Delete(ctx context.Context, id shared.PromotionID) error
}
