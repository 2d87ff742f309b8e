// Package kafka publishes state-transition events for downstream consumers
// (analytics, warehouse systems). Publishing happens after commit and is
// best effort; the order of truth stays in postgres.
package kafka

import (
	"context"
	"encoding/json"
	"fmt"

	"storefront/internal/core/ports"

	"github.com/segmentio/kafka-go"
)

// DefaultTopic is where order and payment transitions go.
const DefaultTopic = "storefront-transitions"

// TransitionPublisher implements EventPublisher on a kafka writer. Messages
// are keyed by order id so one order's transitions stay in one partition.
type TransitionPublisher struct {
	writer *kafka.Writer
}

// NewTransitionPublisher creates a publisher writing to the given brokers.
func NewTransitionPublisher(topic string, brokers ...string) *TransitionPublisher {
	if topic == "" {
		topic = DefaultTopic
	}

	return &TransitionPublisher{
		writer: &kafka.Writer{
			Addr:                   kafka.TCP(brokers...),
			Topic:                  topic,
			Balancer:               &kafka.LeastBytes{},
			AllowAutoTopicCreation: true,
		},
	}
}

// PublishTransition writes one transition event.
func (p *TransitionPublisher) PublishTransition(ctx context.Context, event ports.TransitionEvent) error {
	payload, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("marshal transition event failed: %w", err)
	}

	msg := kafka.Message{
		Key:   []byte(event.OrderID),
		Value: payload,
	}
	if err = p.writer.WriteMessages(ctx, msg); err != nil {
		return fmt.Errorf("publish transition event failed: %w", err)
	}

	return nil
}

// Close flushes and closes the underlying writer.
func (p *TransitionPublisher) Close() error {
	return p.writer.Close()
}
