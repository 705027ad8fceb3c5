// Package kafka publishes audit entries to a Kafka topic as a secondary,
// best-effort sink. The database store stays the source of truth for the
// queryable log; the topic exists for downstream consumers (SIEM, retention).
package kafka

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/twmb/franz-go/pkg/kgo"

	"portaria/internal/audit"
)

// DefaultTopic is the audit topic when config leaves it unset.
const DefaultTopic = "portaria.audit"

// Sink publishes audit entries to Kafka.
type Sink struct {
	client *kgo.Client
	topic  string
}

// New dials the brokers and returns a Sink. Callers must Close it.
func New(brokers []string, topic string) (*Sink, error) {
	if topic == "" {
		topic = DefaultTopic
	}
	client, err := kgo.NewClient(
		kgo.SeedBrokers(brokers...),
		kgo.DefaultProduceTopic(topic),
		kgo.ProducerLinger(5*time.Millisecond),
	)
	if err != nil {
		return nil, fmt.Errorf("create kafka client: %w", err)
	}
	return &Sink{client: client, topic: topic}, nil
}

// payload is the wire shape on the topic. Timestamps cross the boundary as
// ISO-8601 UTC strings.
type payload struct {
	ID        string `json:"id"`
	Action    string `json:"action"`
	Details   string `json:"details"`
	ActorID   string `json:"actor_id,omitempty"`
	ActorName string `json:"actor_name,omitempty"`
	Level     string `json:"level"`
	Timestamp string `json:"timestamp"`
}

// Publish produces one entry synchronously. Errors are returned so the audit
// service can count them; the service never propagates them further.
func (s *Sink) Publish(ctx context.Context, entry audit.Entry) error {
	p := payload{
		ID:        entry.ID.String(),
		Action:    string(entry.Action),
		Details:   entry.Details,
		Level:     string(entry.Level),
		Timestamp: entry.Timestamp.UTC().Format(time.RFC3339Nano),
	}
	if entry.Actor != nil {
		p.ActorID = entry.Actor.ID
		p.ActorName = entry.Actor.Name
	}

	value, err := json.Marshal(p)
	if err != nil {
		return fmt.Errorf("marshal audit payload: %w", err)
	}

	record := &kgo.Record{
		Topic: s.topic,
		Key:   []byte(p.Action),
		Value: value,
	}
	if err := s.client.ProduceSync(ctx, record).FirstErr(); err != nil {
		return fmt.Errorf("produce audit entry: %w", err)
	}
	return nil
}

// Close flushes and releases the client.
func (s *Sink) Close() {
	s.client.Close()
}
