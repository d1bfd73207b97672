// Package auditsink is an audit.Store that publishes events to a Kafka topic as JSON,
// keyed by record hash so every event for one property lands on the same partition.
package auditsink

import (
	"context"
	"encoding/json"
	"fmt"

	"deedgate/internal/platform/kafka/producer"
	audit "deedgate/pkg/platform/audit"
)

// Producer sends one message synchronously. Satisfied by *producer.Producer.
type Producer interface {
	Produce(ctx context.Context, msg *producer.Message) error
}

type Store struct {
	producer Producer
	topic    string
}

func New(p Producer, topic string) *Store {
	if p == nil {
		panic("auditsink.New: producer is required")
	}
	return &Store{producer: p, topic: topic}
}

func (s *Store) Append(ctx context.Context, event audit.Event) error {
	value, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("marshal audit event: %w", err)
	}
	key := event.RecordHash
	if key == "" {
		key = event.Actor
	}
	msg := &producer.Message{
		Topic: s.topic,
		Key:   []byte(key),
		Value: value,
		Headers: map[string]string{
			"action":     event.Action,
			"request_id": event.RequestID,
		},
	}
	if err := s.producer.Produce(ctx, msg); err != nil {
		return fmt.Errorf("publish audit event: %w", err)
	}
	return nil
}

var _ audit.Store = (*Store)(nil)
