package shipment

import (
	"time"

	"github.com/example/ec-fulfillment/internal/domain/shared"
)

const (
	EventShipmentCreated       = "ShipmentCreated"
	EventShipmentStatusUpdated = "ShipmentStatusUpdated"
	EventShipmentArrived       = "ShipmentArrived"
	EventShipmentDelivered     = "ShipmentDelivered"
	EventShipmentReturned      = "ShipmentReturned"
)

type ShipmentCreated struct {
	ShipmentID            shared.ShipmentID `json:"shipment_id"`
	OrderID               shared.OrderID    `json:"order_id"`
	ShippingAddress       string            `json:"shipping_address"`
	ShippingMethod        string            `json:"shipping_method"`
	TrackingNumber        string            `json:"tracking_number,omitempty"`
	EstimatedDeliveryDate *time.Time        `json:"estimated_delivery_date,omitempty"`
	CreatedAt             time.Time         `json:"created_at"`
}

type ShipmentStatusUpdated struct {
	ShipmentID     shared.ShipmentID `json:"shipment_id"`
	OrderID        shared.OrderID    `json:"order_id"`
	From           Status            `json:"from"`
	To             Status            `json:"to"`
	TrackingNumber string            `json:"tracking_number,omitempty"`
	Note           string            `json:"note,omitempty"`
	UpdatedAt      time.Time         `json:"updated_at"`
}

type ShipmentArrived struct {
	ShipmentID shared.ShipmentID `json:"shipment_id"`
	OrderID    shared.OrderID    `json:"order_id"`
	Note       string            `json:"note,omitempty"`
	ArrivedAt  time.Time         `json:"arrived_at"`
}

type ShipmentDelivered struct {
	ShipmentID   shared.ShipmentID `json:"shipment_id"`
	OrderID      shared.OrderID    `json:"order_id"`
	ReceiverName string            `json:"receiver_name,omitempty"`
	DeliveredAt  time.Time         `json:"delivered_at"`
}

type ShipmentReturned struct {
	ShipmentID shared.ShipmentID `json:"shipment_id"`
	OrderID    shared.OrderID    `json:"order_id"`
	Reason     string            `json:"reason,omitempty"`
	ReturnedAt time.Time         `json:"returned_at"`
}
