// Package events publishes domain events after the database transaction that
// produced them has committed. Delivery is best effort: a failed publish is
// logged by the caller and never rolls anything back.
package events

import (
	"context"
	"encoding/json"
	"time"

	"github.com/leoomartinelli/painel-financeiro-martinelli/internal/uuid"
)

// Event types.
const (
	PiggyBankDeposited = "piggy_bank.deposited"
	PiggyBankWithdrawn = "piggy_bank.withdrawn"
	PiggyBankDeleted   = "piggy_bank.deleted"
	CardSettled        = "card.settled"
	RecurringProcessed = "recurring.processed"
)

// Event is one published domain event.
type Event struct {
	ID         string                 `json:"id"`
	Type       string                 `json:"type"`
	UserID     uint                   `json:"user_id"`
	OccurredAt time.Time              `json:"occurred_at"`
	Payload    map[string]interface{} `json:"payload,omitempty"`
}

// New builds an event stamped with a fresh id and the current time.
func New(eventType string, userID uint, payload map[string]interface{}) Event {
	return Event{
		ID:         uuid.New(),
		Type:       eventType,
		UserID:     userID,
		OccurredAt: time.Now().UTC(),
		Payload:    payload,
	}
}

// JSON encodes the event for the wire.
func (e Event) JSON() ([]byte, error) {
	return json.Marshal(e)
}

// Publisher delivers events to an external broker.
type Publisher interface {
	Publish(ctx context.Context, event Event) error
	Close() error
}

// Nop discards every event.
type Nop struct{}

func (Nop) Publish(context.Context, Event) error { return nil }
func (Nop) Close() error                         { return nil }
