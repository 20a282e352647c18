package amqp

import (
	"encoding/json"
	"time"
)

// EventCreated and EventDeleted are the routing keys for export events.
const (
	EventCreated = "transaction.created"
	EventDeleted = "transaction.deleted"
)

// TransactionEvent is the lightweight message published on transaction
// writes. The worker fetches the full row from storage for created events;
// deleted events carry enough data to locate the exported row after the
// source row is gone.
type TransactionEvent struct {
	Event       string    `json:"event"`
	ID          string    `json:"id"`
	UserID      string    `json:"user_id"`
	Date        string    `json:"date,omitempty"`
	Description string    `json:"description,omitempty"`
	AmountCents int64     `json:"amount_cents,omitempty"`
	Timestamp   time.Time `json:"timestamp"`
}

func NewCreatedEvent(id, userID string) *TransactionEvent {
	return &TransactionEvent{
		Event:     EventCreated,
		ID:        id,
		UserID:    userID,
		Timestamp: time.Now(),
	}
}

func NewDeletedEvent(id, userID, date, description string, amountCents int64) *TransactionEvent {
	return &TransactionEvent{
		Event:       EventDeleted,
		ID:          id,
		UserID:      userID,
		Date:        date,
		Description: description,
		AmountCents: amountCents,
		Timestamp:   time.Now(),
	}
}

func (e *TransactionEvent) ToJSON() ([]byte, error) {
	return json.Marshal(e)
}

func TransactionEventFromJSON(data []byte) (*TransactionEvent, error) {
	var e TransactionEvent
	if err := json.Unmarshal(data, &e); err != nil {
		return nil, err
	}
	return &e, nil
}
