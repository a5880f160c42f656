package shipment

import "github.com/example/ec-fulfillment/internal/domain/aggregate"

type Status string

const (
	StatusCreated   Status = "CREATED"
	StatusPending   Status = "PENDING"
	StatusShipped   Status = "SHIPPED"
	StatusArrived   Status = "ARRIVED"
	StatusOnHold    Status = "ON_HOLD"
	StatusDelivered Status = "DELIVERED"
	StatusReturned  Status = "RETURNED"
)

var Statuses = []Status{
	StatusCreated, StatusPending, StatusShipped, StatusArrived,
	StatusOnHold, StatusDelivered, StatusReturned,
}

var validTransitions = aggregate.Transitions[Status]{
	StatusCreated:   {StatusPending, StatusReturned},
	StatusPending:   {StatusShipped, StatusReturned},
	StatusShipped:   {StatusArrived, StatusOnHold, StatusReturned},
	StatusArrived:   {StatusDelivered, StatusOnHold, StatusReturned},
	StatusOnHold:    {StatusShipped, StatusArrived, StatusDelivered, StatusReturned},
	StatusDelivered: {},
	StatusReturned:  {},
}

func CanTransitionTo(current, next Status) bool {
	return validTransitions.Allows(current, next)
}

func (s Status) IsTerminal() bool {
	return len(validTransitions[s]) == 0
}

// ParseStatus accepts any known status name.
func ParseStatus(raw string) (Status, bool) {
	s := Status(raw)
	_, ok := validTransitions[s]
	return s, ok
}
