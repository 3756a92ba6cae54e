// Package events carries domain events from the order workflow to Kafka
// through an in-memory outbox.
package events

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
)

const (
	OrderCreated       = "order.created"
	OrderStatusChanged = "order.status_changed"
	ReturnRequested    = "return.requested"
	PaymentVerified    = "payment.verified"
)

type Event struct {
	ID          string          `json:"id"`
	Type        string          `json:"type"`
	AggregateID string          `json:"aggregateId"`
	Payload     json.RawMessage `json:"payload"`
	OccurredAt  time.Time       `json:"occurredAt"`
}

// New builds an event with a fresh id, marshalling payload to JSON.
func New(eventType, aggregateID string, payload any, at time.Time) (Event, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return Event{}, fmt.Errorf("marshal %s payload: %w", eventType, err)
	}
	return Event{
		ID:          uuid.NewString(),
		Type:        eventType,
		AggregateID: aggregateID,
		Payload:     data,
		OccurredAt:  at.UTC(),
	}, nil
}
