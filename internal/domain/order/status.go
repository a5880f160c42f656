package order

import "github.com/example/ec-fulfillment/internal/domain/aggregate"

type Status string

const (
	StatusCreated   Status = "CREATED"
	StatusPaid      Status = "PAID"
	StatusShipped   Status = "SHIPPED"
	StatusDelivered Status = "DELIVERED"
	StatusCompleted Status = "COMPLETED"
	StatusCancelled Status = "CANCELLED"
)

// Statuses lists every order status.
var Statuses = []Status{StatusCreated, StatusPaid, StatusShipped, StatusDelivered, StatusCompleted, StatusCancelled}

// validTransitions defines allowed state transitions
var validTransitions = aggregate.Transitions[Status]{
	StatusCreated:   {StatusPaid, StatusCancelled},
	StatusPaid:      {StatusShipped, StatusCancelled},
	StatusShipped:   {StatusDelivered, StatusCancelled},
	StatusDelivered: {StatusCompleted},
	StatusCompleted: {}, // terminal state
	StatusCancelled: {}, // terminal state
}

// CanTransitionTo checks if an order in current may move to next.
func CanTransitionTo(current, next Status) bool {
	return validTransitions.Allows(current, next)
}

// IsTerminal reports whether no transition leaves s.
func (s Status) IsTerminal() bool {
	return len(validTransitions[s]) == 0
}

func (s Status) Valid() bool {
	_, ok := validTransitions[s]
	return ok
}
