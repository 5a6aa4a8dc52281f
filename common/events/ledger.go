package events

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// TopicLedgerSaved is published after every successful partition write
const TopicLedgerSaved = "ledger.saved"

// SavedEvent describes one persisted change to a partition
type SavedEvent struct {
	ID        uuid.UUID `json:"id"`
	Partition string    `json:"partition"`
	Month     int       `json:"month,omitempty"`
	Actor     string    `json:"actor,omitempty"`
	Operation string    `json:"operation"`
	At        time.Time `json:"at"`
}

// NewSavedEvent stamps a new event with an id and the current time
func NewSavedEvent(partition string, month int, actor, operation string) SavedEvent {
	return SavedEvent{
		ID:        uuid.New(),
		Partition: partition,
		Month:     month,
		Actor:     actor,
		Operation: operation,
		At:        time.Now().UTC(),
	}
}

// Encode serializes the event for a bus
func (e SavedEvent) Encode() ([]byte, error) {
	return json.Marshal(e)
}

// DecodeSavedEvent parses an event received from a bus
func DecodeSavedEvent(data []byte) (SavedEvent, error) {
	var e SavedEvent
	if err := json.Unmarshal(data, &e); err != nil {
		return SavedEvent{}, fmt.Errorf("decode saved event: %w", err)
	}
	return e, nil
}
