package services

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// AccountExchange is the exchange account events are published to.
const AccountExchange = "account"

// Account event types, used as routing keys.
const (
	EventAccountCreated = "account.created"
	EventSessionStarted = "session.started"
	EventSessionEnded   = "session.ended"
)

// EventPublisher sends an encoded event. Implemented by *rabbitmq.Client.
type EventPublisher interface {
	Publish(exchange, routingKey string, body []byte) error
}

// AccountEvent describes a change to accounts or the session. It never carries password material.
type AccountEvent struct {
	ID         string    `json:"id"`
	Type       string    `json:"type"`
	Username   string    `json:"username"`
	OccurredAt time.Time `json:"occurred_at"`
}

// NewAccountEvent stamps a new event with a random ID and the current time.
func NewAccountEvent(eventType, username string) AccountEvent {
	return AccountEvent{
		ID:         uuid.New().String(),
		Type:       eventType,
		Username:   username,
		OccurredAt: time.Now().UTC(),
	}
}

// Marshal encodes the event as JSON.
func (e AccountEvent) Marshal() ([]byte, error) {
	b, err := json.Marshal(e)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal %s event: %w", e.Type, err)
	}
	return b, nil
}

// ParseAccountEvent decodes an event body received from the broker.
func ParseAccountEvent(body []byte) (AccountEvent, error) {
	var e AccountEvent
	if err := json.Unmarshal(body, &e); err != nil {
		return AccountEvent{}, fmt.Errorf("failed to parse account event: %w", err)
	}
	return e, nil
}
