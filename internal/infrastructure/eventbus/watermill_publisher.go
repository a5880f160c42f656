package eventbus

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
	"github.com/example/ec-fulfillment/internal/domain/aggregate"
)

const (
	DefaultTopic = "fulfillment.events"

	metadataEventType     = "event_type"
	metadataAggregateType = "aggregate_type"
)

// WatermillPublisher publishes envelopes to a watermill topic.
type WatermillPublisher struct {
	pub   message.Publisher
	topic string
}

func NewWatermillPublisher(pub message.Publisher, topic string) *WatermillPublisher {
	if topic == "" {
		topic = DefaultTopic
	}
	return &WatermillPublisher{pub: pub, topic: topic}
}

// NewChannel returns an in-process pub/sub. Subscribers only receive
// messages published after they subscribe.
func NewChannel(logger watermill.LoggerAdapter) *gochannel.GoChannel {
	return gochannel.NewGoChannel(gochannel.Config{OutputChannelBuffer: 256}, logger)
}

func (p *WatermillPublisher) Publish(_ context.Context, e aggregate.Event) error {
	env, err := NewEnvelope(e)
	if err != nil {
		return err
	}
	payload, err := json.Marshal(env)
	if err != nil {
		return fmt.Errorf("marshal envelope: %w", err)
	}
	msg := message.NewMessage(env.ID, payload)
	msg.Metadata.Set(metadataEventType, env.EventType)
	msg.Metadata.Set(metadataAggregateType, env.AggregateType)
	if err := p.pub.Publish(p.topic, msg); err != nil {
		return fmt.Errorf("publish %s: %w", env.EventType, err)
	}
	return nil
}

// MessageHandler is shared with the Kafka consumer.
type MessageHandler func(ctx context.Context, key, value []byte) error

// Consume feeds every message on topic to handler until ctx is done. Messages
// are acked even when handler fails; handlers log their own failures.
func Consume(ctx context.Context, sub message.Subscriber, topic string, handler MessageHandler) error {
	if topic == "" {
		topic = DefaultTopic
	}
	messages, err := sub.Subscribe(ctx, topic)
	if err != nil {
		return fmt.Errorf("subscribe %s: %w", topic, err)
	}
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case msg, ok := <-messages:
			if !ok {
				return ctx.Err()
			}
			_ = handler(msg.Context(), []byte(msg.UUID), msg.Payload)
			msg.Ack()
		}
	}
}
