package hub

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// Event is the normalized notification record the relay fans out. It is
// built once from untrusted inbound input, with defaults applied, and is
// immutable afterwards: Encode is called once per broadcast and the
// resulting bytes are reused for every recipient.
type Event struct {
	ID        string          `json:"id"`
	Type      string          `json:"type"`
	SourceID  string          `json:"sourceId"`
	Timestamp int64           `json:"timestamp"`
	Payload   json.RawMessage `json:"payload,omitempty"`
}

// EventDefaults supplies the configured fallbacks applied during
// normalization.
type EventDefaults struct {
	Type     string
	SourceID string
}

// NewEvent normalizes untrusted inbound fields into an Event. Empty type
// and sourceId fall back to the configured defaults; a zero timestamp is
// stamped with the current time in milliseconds since the epoch.
func NewEvent(eventType, sourceID string, timestamp int64, payload json.RawMessage, defaults EventDefaults) *Event {
	if eventType == "" {
		eventType = defaults.Type
	}
	if sourceID == "" {
		sourceID = defaults.SourceID
	}
	if timestamp == 0 {
		timestamp = time.Now().UnixMilli()
	}
	return &Event{
		ID:        uuid.NewString(),
		Type:      eventType,
		SourceID:  sourceID,
		Timestamp: timestamp,
		Payload:   payload,
	}
}

// Encode serializes the event for the wire.
func (e *Event) Encode() ([]byte, error) {
	data, err := json.Marshal(e)
	if err != nil {
		return nil, fmt.Errorf("failed to encode event: %w", err)
	}
	return data, nil
}
