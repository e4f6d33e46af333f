// Package constraint provides read-only checks of proposed answers
// against the current grid fill. Nothing here mutates the grid; these
// probes exist so candidates can be rejected before a commit is
// attempted.
package constraint

import (
	"fmt"

	"solver/pkg/puzzle"
)

// Conflict describes one position where a candidate answer disagrees
// with an already-filled cell.
type Conflict struct {
	Position int          `json:"position"`
	Proposed string       `json:"proposed"`
	Existing string       `json:"existing"`
	Cell     puzzle.Coord `json:"cell"`
}

// Result is the outcome of an intersection check.
type Result struct {
	Compatible bool       `json:"compatible"`
	Reason     string     `json:"reason,omitempty"`
	Conflicts  []Conflict `json:"conflicts,omitempty"`
}

// Constraints returns the forced letter for each position of the clue
// that intersects an already-filled cell. Unconstrained positions are
// absent from the map.
func Constraints(g *puzzle.Grid, clue *puzzle.Clue) map[int]string {
	forced := make(map[int]string)
	for i, cell := range clue.Cells() {
		if letter := g.Letter(cell); letter != 0 {
			forced[i] = string(letter)
		}
	}
	return forced
}

// CheckIntersection evaluates a candidate answer against the grid's
// forced letters without mutating anything. Safe to call any number of
// times.
func CheckIntersection(g *puzzle.Grid, clue *puzzle.Clue, candidate string) Result {
	candidate = puzzle.NormalizeAnswer(candidate)
	if len(candidate) != clue.Length {
		return Result{
			Compatible: false,
			Reason:     fmt.Sprintf("answer length %d doesn't match clue length %d", len(candidate), clue.Length),
		}
	}

	var conflicts []Conflict
	for i, cell := range clue.Cells() {
		letter := g.Letter(cell)
		if letter != 0 && letter != candidate[i] {
			conflicts = append(conflicts, Conflict{
				Position: i,
				Proposed: string(candidate[i]),
				Existing: string(letter),
				Cell:     cell,
			})
		}
	}
	if len(conflicts) > 0 {
		return Result{Compatible: false, Reason: "conflicts with existing fill", Conflicts: conflicts}
	}
	return Result{Compatible: true}
}
