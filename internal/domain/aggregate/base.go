// Package aggregate holds the pieces shared by every aggregate: the persisted
// version, the pending event list and the status transition tables.
package aggregate

import (
	"errors"
	"fmt"
	"time"
)

var (
	ErrIllegalTransition      = errors.New("illegal status transition")
	ErrConcurrentModification = errors.New("aggregate was modified concurrently")
)

// Event is a domain event emitted by an aggregate mutator. Data holds the
// typed payload declared in the aggregate's events.go.
type Event struct {
	AggregateID   string
	AggregateType string
	EventType     string
	Data          any
	OccurredAt    time.Time
}

// Root is embedded by aggregates. It is a value: With returns a copy and never
// touches the receiver's backing array.
type Root struct {
	version int
	events  []Event
}

// Rehydrate restores a root at a persisted version with no pending events.
func Rehydrate(version int) Root {
	return Root{version: version}
}

// Version is the version the aggregate was loaded at. Zero means never saved.
func (r Root) Version() int {
	return r.version
}

// Events returns the events recorded since the aggregate was loaded.
func (r Root) Events() []Event {
	out := make([]Event, len(r.events))
	copy(out, r.events)
	return out
}

// With returns a root carrying the receiver's events followed by events.
func (r Root) With(events ...Event) Root {
	next := make([]Event, 0, len(r.events)+len(events))
	next = append(next, r.events...)
	next = append(next, events...)
	return Root{version: r.version, events: next}
}

// Transitions maps a status to the statuses it may move to.
type Transitions[S comparable] map[S][]S

// Allows reports whether from -> to is in the table.
func (t Transitions[S]) Allows(from, to S) bool {
	for _, allowed := range t[from] {
		if allowed == to {
			return true
		}
	}
	return false
}

// TransitionError reports a status change the table rejects.
type TransitionError struct {
	Aggregate string
	From      string
	To        string
}

func (e *TransitionError) Error() string {
	return fmt.Sprintf("%s: cannot transition from %s to %s", e.Aggregate, e.From, e.To)
}

func (e *TransitionError) Unwrap() error {
	return ErrIllegalTransition
}

// CheckTransition returns a *TransitionError when the table rejects from -> to.
func CheckTransition[S ~string](aggregateType string, table Transitions[S], from, to S) error {
	if table.Allows(from, to) {
		return nil
	}
	return &TransitionError{Aggregate: aggregateType, From: string(from), To: string(to)}
}
