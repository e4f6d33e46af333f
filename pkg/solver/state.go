package solver

import (
	"errors"
	"time"
)

// State represents a session's position in its lifecycle.
type State string

// Session states.
const (
	StateInit        State = "INIT"
	StateIterating   State = "ITERATING"
	StateCompressing State = "COMPRESSING"
	StateCompleted   State = "COMPLETED"
	StateFailed      State = "FAILED"
)

// String returns the state name.
func (s State) String() string {
	return string(s)
}

// IsTerminal reports whether no further transitions are possible.
func (s State) IsTerminal() bool {
	return s == StateCompleted || s == StateFailed
}

// ErrInvalidTransition is returned when a state change is not allowed
// by the transition table.
var ErrInvalidTransition = errors.New("invalid state transition")

// validTransitions is the session transition table. Compression is an
// excursion from ITERATING and always returns there.
//
//nolint:gochecknoglobals // Static table
var validTransitions = map[State][]State{
	StateInit:        {StateIterating, StateFailed},
	StateIterating:   {StateCompressing, StateCompleted, StateFailed},
	StateCompressing: {StateIterating, StateFailed},
	StateCompleted:   {},
	StateFailed:      {},
}

// isValidTransition checks the transition table.
func isValidTransition(from, to State) bool {
	for _, allowed := range validTransitions[from] {
		if allowed == to {
			return true
		}
	}
	return false
}

// StateTransition records a single state change.
type StateTransition struct {
	Timestamp time.Time
	FromState State
	ToState   State
}
