// Package ledger records every answer attempt a session makes. The log
// is append-only: attempts are never deleted, only appended, even after
// an undo. The per-clue attempted set only grows, which is what stops
// the solving loop from proposing the identical failing string twice.
package ledger

import (
	"errors"
	"sync"
	"time"

	"solver/pkg/puzzle"
)

// ErrNothingToUndo is returned by UndoLast when no accepted commit is
// outstanding.
var ErrNothingToUndo = errors.New("no committed answer to undo")

// Outcome classifies an attempt.
type Outcome string

const (
	Accepted Outcome = "accepted"
	Rejected Outcome = "rejected"
	Undone   Outcome = "undone"
)

// Attempt is one recorded proposal. Answer is stored normalized.
type Attempt struct {
	Key       puzzle.ClueKey `json:"key"`
	Answer    string         `json:"answer"`
	Outcome   Outcome        `json:"outcome"`
	Iteration int            `json:"iteration"`
	Timestamp time.Time      `json:"timestamp"`
}

// commit links an accepted attempt to the cell states its grid commit
// displaced, so UndoLast can revert it exactly.
type commit struct {
	attemptIndex int
	prev         []puzzle.CellState
}

// Ledger is the session's attempt history. The controller's single
// thread of control is the only mutator; the mutex exists for
// concurrent snapshot readers.
type Ledger struct {
	mu       sync.RWMutex
	attempts []Attempt
	tried    map[puzzle.ClueKey]map[string]bool
	commits  []commit
}

func New() *Ledger {
	return &Ledger{
		tried: make(map[puzzle.ClueKey]map[string]bool),
	}
}

func (l *Ledger) markTried(key puzzle.ClueKey, answer string) {
	if l.tried[key] == nil {
		l.tried[key] = make(map[string]bool)
	}
	l.tried[key][answer] = true
}

// RecordAccepted logs a successful commit and retains the displaced cell
// states for undo.
func (l *Ledger) RecordAccepted(key puzzle.ClueKey, answer string, prev []puzzle.CellState, iteration int) {
	answer = puzzle.NormalizeAnswer(answer)
	l.mu.Lock()
	defer l.mu.Unlock()

	l.attempts = append(l.attempts, Attempt{
		Key:       key,
		Answer:    answer,
		Outcome:   Accepted,
		Iteration: iteration,
		Timestamp: time.Now().UTC(),
	})
	l.markTried(key, answer)
	l.commits = append(l.commits, commit{attemptIndex: len(l.attempts) - 1, prev: prev})
}

// RecordRejected logs a failed proposal. The answer still enters the
// attempted set so the same wrong string is never retried.
func (l *Ledger) RecordRejected(key puzzle.ClueKey, answer string, iteration int) {
	answer = puzzle.NormalizeAnswer(answer)
	l.mu.Lock()
	defer l.mu.Unlock()

	l.attempts = append(l.attempts, Attempt{
		Key:       key,
		Answer:    answer,
		Outcome:   Rejected,
		Iteration: iteration,
		Timestamp: time.Now().UTC(),
	})
	l.markTried(key, answer)
}

// HasBeenTried reports whether the normalized answer was ever proposed
// for the clue, regardless of outcome. Undone answers stay blocked.
func (l *Ledger) HasBeenTried(key puzzle.ClueKey, answer string) bool {
	answer = puzzle.NormalizeAnswer(answer)
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.tried[key][answer]
}

// UndoLast pops the most recent accepted commit, marks its attempt as
// undone, and returns the clue key, the undone answer, and the cell
// states the caller must pass to Grid.Revert. The answer remains in the
// attempted set.
func (l *Ledger) UndoLast() (puzzle.ClueKey, string, []puzzle.CellState, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if len(l.commits) == 0 {
		return puzzle.ClueKey{}, "", nil, ErrNothingToUndo
	}
	last := l.commits[len(l.commits)-1]
	l.commits = l.commits[:len(l.commits)-1]

	attempt := &l.attempts[last.attemptIndex]
	attempt.Outcome = Undone
	return attempt.Key, attempt.Answer, last.prev, nil
}

// Attempts returns a copy of the full attempt log.
func (l *Ledger) Attempts() []Attempt {
	l.mu.RLock()
	defer l.mu.RUnlock()
	out := make([]Attempt, len(l.attempts))
	copy(out, l.attempts)
	return out
}

// RecentFailures returns up to n most recent rejected or undone
// attempts, newest last. Used by transcript compression.
func (l *Ledger) RecentFailures(n int) []Attempt {
	l.mu.RLock()
	defer l.mu.RUnlock()

	var failures []Attempt
	for i := range l.attempts {
		if l.attempts[i].Outcome != Accepted {
			failures = append(failures, l.attempts[i])
		}
	}
	if len(failures) > n {
		failures = failures[len(failures)-n:]
	}
	return failures
}
