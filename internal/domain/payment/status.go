package payment

import "github.com/example/ec-fulfillment/internal/domain/aggregate"

type Status string

const (
	StatusPending           Status = "PENDING"
	StatusAuthorized        Status = "AUTHORIZED"
	StatusCaptured          Status = "CAPTURED"
	StatusPartiallyRefunded Status = "PARTIALLY_REFUNDED"
	StatusRefunded          Status = "REFUNDED"
	StatusFailed            Status = "FAILED"
	StatusCancelled         Status = "CANCELLED"
)

var Statuses = []Status{
	StatusPending, StatusAuthorized, StatusCaptured, StatusPartiallyRefunded,
	StatusRefunded, StatusFailed, StatusCancelled,
}

var validTransitions = aggregate.Transitions[Status]{
	StatusPending:           {StatusAuthorized, StatusFailed, StatusCancelled},
	StatusAuthorized:        {StatusCaptured, StatusFailed, StatusCancelled},
	StatusCaptured:          {StatusRefunded, StatusPartiallyRefunded},
	StatusPartiallyRefunded: {StatusRefunded},
	StatusFailed:            {},
	StatusCancelled:         {},
	StatusRefunded:          {},
}

func CanTransitionTo(current, next Status) bool {
	return validTransitions.Allows(current, next)
}

func (s Status) IsTerminal() bool {
	return len(validTransitions[s]) == 0
}
