package puzzle

import (
	"errors"
	"fmt"
)

// Sentinel errors for grid operations. Tool results map these to
// structured error kinds instead of letting them cross the oracle
// boundary as faults.
var (
	ErrLengthMismatch       = errors.New("answer length does not match clue length")
	ErrIntersectionConflict = errors.New("answer conflicts with intersecting fill")
	ErrUnknownClue          = errors.New("no such clue")
)

// ConflictError reports which positions of a proposed answer disagree
// with already-filled intersecting cells. It unwraps to
// ErrIntersectionConflict.
type ConflictError struct {
	Key       ClueKey
	Positions []int
}

func (e *ConflictError) Error() string {
	return fmt.Sprintf("clue %s: %v at positions %v", e.Key, ErrIntersectionConflict, e.Positions)
}

func (e *ConflictError) Unwrap() error {
	return ErrIntersectionConflict
}
