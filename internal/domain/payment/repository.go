package payment

import (
	"context"

	"github.com/example/ec-fulfillment/internal/domain/shared"
)

type Repository interface {
	FindByID(ctx context.Context, id shared.PaymentID) (Payment, bool, error)
	FindByOrder(ctx context.Context, orderID shared.OrderID) ([]Payment, error)
	FindByStatus(ctx context.Context, status Status) ([]Payment, error)
	Save(ctx context.Context, p Payment) (Payment, error)
}
