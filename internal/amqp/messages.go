package amqp

import (
	"encoding/json"
	"time"
)

// EventOp names the kind of ledger change an event reports.
type EventOp string

const (
	OpCreated  EventOp = "created"
	OpUpdated  EventOp = "updated"
	OpStatus   EventOp = "status"
	OpArchived EventOp = "archived"
	OpImported EventOp = "imported"
)

// LedgerEvent is a lightweight change notification. Consumers reload the
// entries they need from the store rather than trusting the payload.
type LedgerEvent struct {
	Op        EventOp   `json:"op"`
	IDs       []string  `json:"ids,omitempty"`
	Count     int       `json:"count"`
	Timestamp time.Time `json:"timestamp"`
}

// NewLedgerEvent stamps an event with the current time. Count defaults to
// the number of ids when not given explicitly.
func NewLedgerEvent(op EventOp, count int, ids ...string) *LedgerEvent {
	if count == 0 {
		count = len(ids)
	}
	return &LedgerEvent{
		Op:        op,
		IDs:       ids,
		Count:     count,
		Timestamp: time.Now(),
	}
}

// ToJSON converts the message to JSON bytes
func (m *LedgerEvent) ToJSON() ([]byte, error) {
	return json.Marshal(m)
}

// LedgerEventFromJSON creates a message from JSON bytes
func LedgerEventFromJSON(data []byte) (*LedgerEvent, error) {
	var msg LedgerEvent
	if err := json.Unmarshal(data, &msg); err != nil {
		return nil, err
	}
	return &msg, nil
}
