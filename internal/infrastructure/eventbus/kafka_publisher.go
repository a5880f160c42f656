package eventbus

import (
	"context"

	"github.com/example/ec-fulfillment/internal/domain/aggregate"
)

// Producer is what kafka.Producer offers.
type Producer interface {
	Publish(ctx context.Context, key string, event any) error
}

// KafkaPublisher writes envelopes keyed by aggregate id, so every event of
// one aggregate lands on the same partition in order.
type KafkaPublisher struct {
	producer Producer
}

func NewKafkaPublisher(p Producer) *KafkaPublisher {
	return &KafkaPublisher{producer: p}
}

func (p *KafkaPublisher) Publish(ctx context.Context, e aggregate.Event) error {
	env, err := NewEnvelope(e)
	if err != nil {
		return err
	}
	return p.producer.Publish(ctx, e.AggregateID, env)
}
