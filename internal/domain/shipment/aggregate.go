package shipment

import (
	"errors"
	"time"

	"github.com/example/ec-fulfillment/internal/domain/aggregate"
	"github.com/example/ec-fulfillment/internal/domain/shared"
)

const AggregateType = "Shipment"

var (
	ErrShipmentNotFound = errors.New("shipment not found")
	ErrAddressRequired  = errors.New("shipping address is required")
	ErrMethodRequired   = errors.New("shipping method is required")
)

type State struct {
	ID                    shared.ShipmentID `json:"id"`
	OrderID               shared.OrderID    `json:"order_id"`
	ShippingAddress       string            `json:"shipping_address"`
	ShippingMethod        string            `json:"shipping_method"`
	Status                Status            `json:"status"`
	TrackingNumber        string            `json:"tracking_number,omitempty"`
	EstimatedDeliveryDate *time.Time        `json:"estimated_delivery_date,omitempty"`
	ActualDeliveryDate    *time.Time        `json:"actual_delivery_date,omitempty"`
	ReceiverName          string            `json:"receiver_name,omitempty"`
	Note                  string            `json:"note,omitempty"`
	shared.AuditInfo
}

type Shipment struct {
	aggregate.Root
	s State
}

// Create starts a shipment in CREATED for orderID.
func Create(id shared.ShipmentID, orderID shared.OrderID, address, method, trackingNumber string, estimatedDelivery *time.Time, now time.Time) (Shipment, error) {
	if err := shared.RequireNonBlank("shipment_id", string(id)); err != nil {
		return Shipment{}, err
	}
	if err := shared.RequireNonBlank("order_id", string(orderID)); err != nil {
		return Shipment{}, err
	}
	if shared.RequireNonBlank("shipping_address", address) != nil {
		return Shipment{}, ErrAddressRequired
	}
	if shared.RequireNonBlank("shipping_method", method) != nil {
		return Shipment{}, ErrMethodRequired
	}

	s := State{
		ID:                    id,
		OrderID:               orderID,
		ShippingAddress:       address,
		ShippingMethod:        method,
		Status:                StatusCreated,
		TrackingNumber:        trackingNumber,
		EstimatedDeliveryDate: copyTime(estimatedDelivery),
		AuditInfo:             shared.NewAuditInfo(now),
	}
	return Shipment{}.next(s, EventShipmentCreated, ShipmentCreated{
		ShipmentID:            id,
		OrderID:               orderID,
		ShippingAddress:       address,
		ShippingMethod:        method,
		TrackingNumber:        trackingNumber,
		EstimatedDeliveryDate: copyTime(estimatedDelivery),
		CreatedAt:             now,
	}, now), nil
}

func Reconstruct(s State, version int) Shipment {
	s.EstimatedDeliveryDate = copyTime(s.EstimatedDeliveryDate)
	s.ActualDeliveryDate = copyTime(s.ActualDeliveryDate)
	return Shipment{Root: aggregate.Rehydrate(version), s: s}
}

func (sh Shipment) ID() shared.ShipmentID { return sh.s.ID }
func (sh Shipment) OrderID() shared.OrderID { return sh.s.OrderID }
func (sh Shipment) Status() Status { return sh.s.Status }

func (sh Shipment) State() State {
	s := sh.s
	s.EstimatedDeliveryDate = copyTime(sh.s.EstimatedDeliveryDate)
	s.ActualDeliveryDate = copyTime(sh.s.ActualDeliveryDate)
	return s
}

func (sh Shipment) CanTransitionTo(next Status) bool {
	return CanTransitionTo(sh.s.Status, next)
}

// UpdateStatus moves the shipment to any status the table allows. Moving to
// DELIVERED stamps the delivery date; ARRIVED and RETURNED clear it.
func (sh Shipment) UpdateStatus(to Status, trackingNumber, note string, now time.Time) (Shipment, error) {
	if err := sh.transition(to); err != nil {
		return Shipment{}, err
	}
	s := sh.State()
	from := s.Status
	s.Status = to
	s.TrackingNumber = shared.FirstNonBlank(trackingNumber, s.TrackingNumber)
	s.Note = shared.FirstNonBlank(note, s.Note)
	switch to {
	case StatusDelivered:
		s.ActualDeliveryDate = &now
	case StatusArrived, StatusReturned:
		s.ActualDeliveryDate = nil
	}
	s.AuditInfo = s.Touch(now)
	return sh.next(s, EventShipmentStatusUpdated, ShipmentStatusUpdated{
		ShipmentID:     s.ID,
		OrderID:        s.OrderID,
		From:           from,
		To:             to,
		TrackingNumber: s.TrackingNumber,
		Note:           s.Note,
		UpdatedAt:      now,
	}, now), nil
}

func (sh Shipment) MarkArrived(note string, now time.Time) (Shipment, error) {
	if err := sh.transition(StatusArrived); err != nil {
		return Shipment{}, err
	}
	s := sh.State()
	s.Status = StatusArrived
	s.Note = shared.FirstNonBlank(note, s.Note)
	s.ActualDeliveryDate = nil
	s.AuditInfo = s.Touch(now)
	return sh.next(s, EventShipmentArrived, ShipmentArrived{
		ShipmentID: s.ID,
		OrderID:    s.OrderID,
		Note:       s.Note,
		ArrivedAt:  now,
	}, now), nil
}

// MarkDelivered records delivery at deliveredAt, or now when deliveredAt is nil.
func (sh Shipment) MarkDelivered(receiverName string, deliveredAt *time.Time, now time.Time) (Shipment, error) {
	if err := sh.transition(StatusDelivered); err != nil {
		return Shipment{}, err
	}
	at := now
	if deliveredAt != nil {
		at = *deliveredAt
	}
	s := sh.State()
	s.Status = StatusDelivered
	s.ReceiverName = shared.FirstNonBlank(receiverName, s.ReceiverName)
	s.ActualDeliveryDate = &at
	s.AuditInfo = s.Touch(now)
	return sh.next(s, EventShipmentDelivered, ShipmentDelivered{
		ShipmentID:   s.ID,
		OrderID:      s.OrderID,
		ReceiverName: s.ReceiverName,
		DeliveredAt:  at,
	}, now), nil
}

func (sh Shipment) MarkReturned(reason string, now time.Time) (Shipment, error) {
	if err := sh.transition(StatusReturned); err != nil {
		return Shipment{}, err
	}
	s := sh.State()
	s.Status = StatusReturned
	s.Note = shared.FirstNonBlank(reason, s.Note)
	s.ActualDeliveryDate = nil
	s.AuditInfo = s.Touch(now)
	return sh.next(s, EventShipmentReturned, ShipmentReturned{
		ShipmentID: s.ID,
		OrderID:    s.OrderID,
		Reason:     reason,
		ReturnedAt: now,
	}, now), nil
}

func (sh Shipment) transition(to Status) error {
	return aggregate.CheckTransition(AggregateType, validTransitions, sh.s.Status, to)
}

func (sh Shipment) next(s State, eventType string, data any, now time.Time) Shipment {
	return Shipment{
		Root: sh.With(aggregate.Event{
			AggregateID:   string(s.ID),
			AggregateType: AggregateType,
			EventType:     eventType,
			Data:          data,
			OccurredAt:    now,
		}),
		s: s,
	}
}

func copyTime(t *time.Time) *time.Time {
	if t == nil {
		return nil
	}
	v := *t
	return &v
}
