package eventbus

import (
	"context"
	"sync"

	"github.com/example/ec-fulfillment/internal/domain/aggregate"
)

// Journal records published events in order. It backs tests and the
// memory bus driver.
type Journal struct {
	mu     sync.RWMutex
	events []aggregate.Event
}

func NewJournal() *Journal {
	return &Journal{}
}

func (j *Journal) Publish(_ context.Context, e aggregate.Event) error {
	j.mu.Lock()
	defer j.mu.Unlock()
	j.events = append(j.events, e)
	return nil
}

func (j *Journal) Events() []aggregate.Event {
	j.mu.RLock()
	defer j.mu.RUnlock()
	out := make([]aggregate.Event, len(j.events))
	copy(out, j.events)
	return out
}

// Types lists the event types in publish order.
func (j *Journal) Types() []string {
	j.mu.RLock()
	defer j.mu.RUnlock()
	out := make([]string, len(j.events))
	for i, e := range j.events {
		out[i] = e.EventType
	}
	return out
}

// ForAggregate returns the events of one aggregate instance.
func (j *Journal) ForAggregate(id string) []aggregate.Event {
	j.mu.RLock()
	defer j.mu.RUnlock()
	var out []aggregate.Event
	for _, e := range j.events {
		if e.AggregateID == id {
			out = append(out, e)
		}
	}
	return out
}

func (j *Journal) Reset() {
	j.mu.Lock()
	defer j.mu.Unlock()
	j.events = nil
}
