// Package puzzle defines the crossword puzzle model: immutable puzzle
// geometry and the mutable fill grid the solving loop writes into.
package puzzle

import (
	"fmt"
	"strings"
)

// Direction is the orientation of a clue in the grid.
type Direction string

const (
	Across Direction = "across"
	Down   Direction = "down"
)

// ParseDirection normalizes a direction string from tool arguments.
func ParseDirection(s string) (Direction, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case string(Across):
		return Across, nil
	case string(Down):
		return Down, nil
	default:
		return "", fmt.Errorf("invalid direction %q (want across or down)", s)
	}
}

// Coord is a grid cell position, zero-based, row-major.
type Coord struct {
	Row int `json:"row"`
	Col int `json:"col"`
}

// ClueKey identifies a clue within a puzzle.
type ClueKey struct {
	Number    int
	Direction Direction
}

func (k ClueKey) String() string {
	return fmt.Sprintf("%d-%s", k.Number, k.Direction)
}

// Clue is one entry in the puzzle. Answer is the canonical solution used
// for correctness checks; it is never shown to the oracle.
type Clue struct {
	Number    int       `json:"number" yaml:"number"`
	Direction Direction `json:"direction" yaml:"direction"`
	Text      string    `json:"text" yaml:"text"`
	Row       int       `json:"row" yaml:"row"`
	Col       int       `json:"col" yaml:"col"`
	Length    int       `json:"length" yaml:"length"`
	Answer    string    `json:"answer" yaml:"answer"`
}

// Key returns the clue's identity within the puzzle.
func (c *Clue) Key() ClueKey {
	return ClueKey{Number: c.Number, Direction: c.Direction}
}

// Cells returns the ordered span of grid cells the clue occupies.
func (c *Clue) Cells() []Coord {
	cells := make([]Coord, c.Length)
	for i := 0; i < c.Length; i++ {
		if c.Direction == Across {
			cells[i] = Coord{Row: c.Row, Col: c.Col + i}
		} else {
			cells[i] = Coord{Row: c.Row + i, Col: c.Col}
		}
	}
	return cells
}

// Puzzle is the immutable geometry of a crossword: dimensions and clues.
// Fill state lives in Grid, never here.
type Puzzle struct {
	Name   string `json:"name" yaml:"name"`
	Width  int    `json:"width" yaml:"width"`
	Height int    `json:"height" yaml:"height"`
	Clues  []Clue `json:"clues" yaml:"clues"`
}

// FindClue looks up a clue by number and direction.
func (p *Puzzle) FindClue(number int, dir Direction) (*Clue, error) {
	for i := range p.Clues {
		if p.Clues[i].Number == number && p.Clues[i].Direction == dir {
			return &p.Clues[i], nil
		}
	}
	return nil, fmt.Errorf("%w: %d-%s", ErrUnknownClue, number, dir)
}

// NormalizeAnswer trims surrounding whitespace and upper-cases a proposed
// answer. All answer comparison and storage goes through this.
func NormalizeAnswer(s string) string {
	return strings.ToUpper(strings.TrimSpace(s))
}

// Validate checks puzzle integrity: positive dimensions, clue spans in
// bounds, answer lengths matching declared lengths, no duplicate clue
// identities, and agreement between canonical answers at every
// intersection. A puzzle that fails validation is unusable and the
// session must not start.
func (p *Puzzle) Validate() error {
	if p.Width <= 0 || p.Height <= 0 {
		return fmt.Errorf("invalid dimensions %dx%d", p.Width, p.Height)
	}
	if len(p.Clues) == 0 {
		return fmt.Errorf("puzzle has no clues")
	}

	seen := make(map[ClueKey]bool, len(p.Clues))
	canonical := make(map[Coord]rune)
	for i := range p.Clues {
		c := &p.Clues[i]
		if c.Direction != Across && c.Direction != Down {
			return fmt.Errorf("clue %d: invalid direction %q", c.Number, c.Direction)
		}
		key := c.Key()
		if seen[key] {
			return fmt.Errorf("duplicate clue %s", key)
		}
		seen[key] = true

		if c.Length <= 0 {
			return fmt.Errorf("clue %s: invalid length %d", key, c.Length)
		}
		c.Answer = NormalizeAnswer(c.Answer)
		if len(c.Answer) != c.Length {
			return fmt.Errorf("clue %s: answer length %d does not match declared length %d", key, len(c.Answer), c.Length)
		}

		for pos, cell := range c.Cells() {
			if cell.Row < 0 || cell.Row >= p.Height || cell.Col < 0 || cell.Col >= p.Width {
				return fmt.Errorf("clue %s: cell (%d,%d) out of bounds", key, cell.Row, cell.Col)
			}
			letter := rune(c.Answer[pos])
			if prev, ok := canonical[cell]; ok && prev != letter {
				return fmt.Errorf("clue %s: answer disagrees with intersecting clue at (%d,%d): %c vs %c",
					key, cell.Row, cell.Col, letter, prev)
			}
			canonical[cell] = letter
		}
	}
	return nil
}
