// Package events defines the solver's event stream: typed progress
// events fanned out to every attached front end in identical order.
package events

import (
	"encoding/json"
	"time"
)

// Type identifies the kind of event.
type Type string

// Event types emitted over a session's lifetime.
const (
	TypeSolvingStarted   Type = "solving_started"
	TypeGridUpdated      Type = "grid_updated"
	TypeClueSolved       Type = "clue_solved"
	TypeToolCalled       Type = "tool_called"
	TypeProgressUpdated  Type = "progress_updated"
	TypeSolvingCompleted Type = "solving_completed"
	TypeSolvingFailed    Type = "solving_failed"
	TypeError            Type = "error"
)

// Event is a single entry in the stream. Sequence is monotonically
// increasing per session; every subscriber observes the same sequence.
type Event struct {
	Timestamp time.Time      `json:"timestamp"`
	Data      map[string]any `json:"data"`
	Type      Type           `json:"type"`
	Sequence  uint64         `json:"sequence"`
}

// ToJSON serializes the event for transport and the event log.
func (e *Event) ToJSON() ([]byte, error) {
	return json.Marshal(e)
}

// FromJSON parses a serialized event.
func FromJSON(data []byte) (*Event, error) {
	var e Event
	if err := json.Unmarshal(data, &e); err != nil {
		return nil, err
	}
	return &e, nil
}
