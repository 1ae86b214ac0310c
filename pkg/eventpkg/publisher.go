// Package eventpkg publishes domain events to Kafka.
package eventpkg

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/rs/zerolog"
	"github.com/segmentio/kafka-go"
)

// Event names.
const (
	TransferCompleted = "transfer.completed"
)

// Envelope wraps every published payload.
type Envelope struct {
	Type       string    `json:"type"`
	OccurredAt time.Time `json:"occurred_at"`
	Payload    any       `json:"payload"`
}

// Publisher publishes events keyed by key.
type Publisher interface {
	Publish(ctx context.Context, eventType, key string, payload any) error
}

// KafkaPublisher writes events to a single Kafka topic.
type KafkaPublisher struct {
	writer *kafka.Writer
}

// NewKafkaPublisher creates a new KafkaPublisher.
func NewKafkaPublisher(brokers []string, topic string) *KafkaPublisher {
	return &KafkaPublisher{
		writer: &kafka.Writer{
			Addr:                   kafka.TCP(brokers...),
			Topic:                  topic,
			Balancer:               &kafka.LeastBytes{},
			AllowAutoTopicCreation: true,
		},
	}
}

// Publish implements Publisher.
func (p *KafkaPublisher) Publish(ctx context.Context, eventType, key string, payload any) error {
	msg, err := newMessage(eventType, key, payload, time.Now().UTC())
	if err != nil {
		return err
	}

	if err := p.writer.WriteMessages(ctx, msg); err != nil {
		return fmt.Errorf("writer.WriteMessages: %w", err)
	}

	return nil
}

// Close flushes pending messages and closes the writer.
func (p *KafkaPublisher) Close() error {
	return p.writer.Close()
}

func newMessage(eventType, key string, payload any, now time.Time) (kafka.Message, error) {
	data, err := json.Marshal(Envelope{
		Type:       eventType,
		OccurredAt: now,
		Payload:    payload,
	})
	if err != nil {
		return kafka.Message{}, fmt.Errorf("json.Marshal: %w", err)
	}

	return kafka.Message{
		Key:     []byte(key),
		Value:   data,
		Headers: []kafka.Header{{Key: "type", Value: []byte(eventType)}},
		Time:    now,
	}, nil
}

// LogPublisher logs events instead of publishing them. Used when no brokers are configured.
type LogPublisher struct{}

// Publish implements Publisher.
func (LogPublisher) Publish(ctx context.Context, eventType, key string, payload any) error {
	zerolog.Ctx(ctx).Debug().
		Str("event", eventType).
		Str("key", key).
		Interface("payload", payload).
		Msg("event not published, no brokers configured")

	return nil
}

// New returns a KafkaPublisher when brokers are given and a LogPublisher otherwise.
func New(brokers []string, topic string) Publisher {
	if len(brokers) == 0 {
		return LogPublisher{}
	}

	return NewKafkaPublisher(brokers, topic)
}
