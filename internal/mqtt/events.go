// Package mqtt publishes and consumes record-change events.
package mqtt

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"go.uber.org/zap"
)

// Event types
const (
	EventDeleted   = "inspection.deleted"
	EventForwarded = "inspection.forwarded"
	EventMarked    = "inspection.marked"
	EventUpdated   = "inspection.updated"
)

// Event a record set change. Consumers refetch instead of applying it.
type Event struct {
	Type     string    `json:"type"`
	IDsPrinc []int64   `json:"ids_princ"`
	Field    string    `json:"field,omitempty"`
	UserID   int64     `json:"user_id"`
	At       time.Time `json:"at"`
}

// Publisher emits events after a mutation has been committed.
type Publisher interface {
	Publish(ctx context.Context, e Event) error
}

// RawPublisher what EventPublisher needs from a broker client.
type RawPublisher interface {
	Publish(topic string, qos byte, retained bool, payload []byte) error
}

// EventPublisher JSON events on one topic.
type EventPublisher struct {
	raw    RawPublisher
	topic  string
	qos    byte
	logger *zap.Logger
}

func NewEventPublisher(raw RawPublisher, topic string, qos byte, logger *zap.Logger) *EventPublisher {
	return &EventPublisher{raw: raw, topic: topic, qos: qos, logger: logger}
}

func (p *EventPublisher) Publish(_ context.Context, e Event) error {
	payload, err := json.Marshal(e)
	if err != nil {
		return fmt.Errorf("failed to encode event: %w", err)
	}
	if err := p.raw.Publish(p.topic, p.qos, false, payload); err != nil {
		return err
	}
	p.logger.Debug("Event published",
		zap.String("topic", p.topic),
		zap.String("type", e.Type),
		zap.Int64s("ids_princ", e.IDsPrinc),
	)
	return nil
}

// NopPublisher used when MQTT is disabled.
type NopPublisher struct{}

func (NopPublisher) Publish(context.Context, Event) error { return nil }

// DecodeEvent rejects payloads without a type.
func DecodeEvent(payload []byte) (Event, error) {
	var e Event
	if err := json.Unmarshal(payload, &e); err != nil {
		return e, fmt.Errorf("failed to decode event: %w", err)
	}
	if e.Type == "" {
		return e, fmt.Errorf("event without type")
	}
	return e, nil
}

var (
	_ Publisher    = (*EventPublisher)(nil)
	_ Publisher    = NopPublisher{}
	_ RawPublisher = (*Client)(nil)
)
