package shipment

import (
	"context"

	"github.com/example/ec-fulfillment/internal/domain/shared"
)

type Repository interface {
	FindByID(ctx context.Context, id shared.ShipmentID) (Shipment, bool, error)
	FindByOrder(ctx context.Context, orderID shared.OrderID) ([]Shipment, error)
	FindByStatus(ctx context.Context, status Status) ([]Shipment, error)
	Save(ctx context.Context, sh Shipment) (Shipment, error)
}
