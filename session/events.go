package session

import (
	"encoding/json"
	"fmt"
)

// Event kinds carried on a presentation's topic.
const (
	EventReaction = "reaction"
	EventComment  = "comment"
)

// An Event is the wire message fanned out to every subscriber of a
// presentation's topic. Events are transient: they exist only for the
// duration of delivery and are never stored individually.
type Event struct {
	Type     string `json:"type"`
	Username string `json:"username"`
	Reaction string `json:"reaction,omitempty"`
	Message  string `json:"message,omitempty"`
}

func (e Event) encode() ([]byte, error) {
	b, err := json.Marshal(e)
	if err != nil {
		return nil, fmt.Errorf("encode event: %w", err)
	}
	return b, nil
}

// parseEvent decodes a topic payload. Payloads that fail to parse or declare
// an unknown type are reported as errors; the caller drops them without
// terminating the subscription.
func parseEvent(payload []byte) (Event, error) {
	var e Event
	if err := json.Unmarshal(payload, &e); err != nil {
		return Event{}, fmt.Errorf("decode event: %w", err)
	}
	switch e.Type {
	case EventReaction, EventComment:
		return e, nil
	default:
		return Event{}, fmt.Errorf("unknown event type %q", e.Type)
	}
}
