// Package eventbus delivers domain events to Kafka, to an in-process
// watermill channel, or to an in-memory journal.
package eventbus

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/example/ec-fulfillment/internal/domain/aggregate"
	"github.com/google/uuid"
)

// Publisher delivers one domain event.
type Publisher interface {
	Publish(ctx context.Context, e aggregate.Event) error
}

// Envelope is the wire form of a domain event.
type Envelope struct {
	ID            string          `json:"id"`
	AggregateID   string          `json:"aggregate_id"`
	AggregateType string          `json:"aggregate_type"`
	EventType     string          `json:"event_type"`
	Data          json.RawMessage `json:"data"`
	Timestamp     time.Time       `json:"timestamp"`
}

func NewEnvelope(e aggregate.Event) (Envelope, error) {
	data, err := json.Marshal(e.Data)
	if err != nil {
		return Envelope{}, fmt.Errorf("marshal %s payload: %w", e.EventType, err)
	}
	return Envelope{
		ID:            uuid.New().String(),
		AggregateID:   e.AggregateID,
		AggregateType: e.AggregateType,
		EventType:     e.EventType,
		Data:          data,
		Timestamp:     e.OccurredAt,
	}, nil
}

// DecodeEnvelope parses the JSON produced by publishers.
func DecodeEnvelope(raw []byte) (Envelope, error) {
	var env Envelope
	if err := json.Unmarshal(raw, &env); err != nil {
		return Envelope{}, fmt.Errorf("unmarshal envelope: %w", err)
	}
	return env, nil
}

// Decode unmarshals the payload into v.
func (e Envelope) Decode(v any) error {
	if err := json.Unmarshal(e.Data, v); err != nil {
		return fmt.Errorf("unmarshal %s payload: %w", e.EventType, err)
	}
	return nil
}

// PublisherFunc adapts a function to Publisher.
type PublisherFunc func(ctx context.Context, e aggregate.Event) error

func (f PublisherFunc) Publish(ctx context.Context, e aggregate.Event) error {
	return f(ctx, e)
}

// Fanout publishes to every publisher and returns the first error.
type Fanout []Publisher

func (f Fanout) Publish(ctx context.Context, e aggregate.Event) error {
	var first error
	for _, p := range f {
		if err := p.Publish(ctx, e); err != nil && first == nil {
			first = err
		}
	}
	return first
}
