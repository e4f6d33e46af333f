package puzzle

import (
	"strings"
	"sync"
)

// CellState captures one cell's letter at a point in time. Commit returns
// the previous states of every cell it wrote so Revert can restore them
// exactly.
type CellState struct {
	Coord  Coord
	Letter byte // 0 = empty
}

// CellSnapshot is the JSON shape of a cell in published grid snapshots.
type CellSnapshot struct {
	Value  string `json:"value"`
	Row    int    `json:"row"`
	Col    int    `json:"col"`
	Active bool   `json:"active"`
}

// ClueSnapshot is the JSON shape of a clue in published snapshots.
type ClueSnapshot struct {
	Number    int    `json:"number"`
	Text      string `json:"text"`
	Length    int    `json:"length"`
	Answered  bool   `json:"answered"`
	Direction string `json:"direction"`
}

// CluesSnapshot groups clue snapshots by direction.
type CluesSnapshot struct {
	Across []ClueSnapshot `json:"across"`
	Down   []ClueSnapshot `json:"down"`
}

// Grid is the mutable fill state over an immutable Puzzle. All writes go
// through Commit and Revert; reads never mutate. The mutex makes
// snapshot reads from observer goroutines safe while the single control
// loop mutates.
type Grid struct {
	puzzle *Puzzle

	mu     sync.RWMutex
	cells  [][]byte // 0 = empty
	solved map[ClueKey]bool
	active map[Coord]bool
}

// NewGrid creates an empty fill grid for the puzzle.
func NewGrid(p *Puzzle) *Grid {
	cells := make([][]byte, p.Height)
	for r := range cells {
		cells[r] = make([]byte, p.Width)
	}
	active := make(map[Coord]bool)
	for i := range p.Clues {
		for _, cell := range p.Clues[i].Cells() {
			active[cell] = true
		}
	}
	return &Grid{
		puzzle: p,
		cells:  cells,
		solved: make(map[ClueKey]bool),
		active: active,
	}
}

// Puzzle returns the underlying immutable puzzle.
func (g *Grid) Puzzle() *Puzzle {
	return g.puzzle
}

// Letter returns the current letter at a cell, or 0 if empty.
func (g *Grid) Letter(c Coord) byte {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return g.cells[c.Row][c.Col]
}

// Pattern returns the clue's current fill with '_' for empty cells,
// e.g. "C_T".
func (g *Grid) Pattern(clue *Clue) string {
	g.mu.RLock()
	defer g.mu.RUnlock()

	var b strings.Builder
	for _, cell := range clue.Cells() {
		if letter := g.cells[cell.Row][cell.Col]; letter != 0 {
			b.WriteByte(letter)
		} else {
			b.WriteByte('_')
		}
	}
	return b.String()
}

// Commit writes a normalized answer into every cell of the clue's span.
// It fails with ErrLengthMismatch if the answer length is wrong and with
// a ConflictError if any already-filled cell disagrees. On success it
// returns the previous state of the written cells for Revert.
func (g *Grid) Commit(clue *Clue, answer string) ([]CellState, error) {
	answer = NormalizeAnswer(answer)
	if len(answer) != clue.Length {
		return nil, ErrLengthMismatch
	}

	g.mu.Lock()
	defer g.mu.Unlock()

	cells := clue.Cells()
	var conflicts []int
	for i, cell := range cells {
		if current := g.cells[cell.Row][cell.Col]; current != 0 && current != answer[i] {
			conflicts = append(conflicts, i)
		}
	}
	if len(conflicts) > 0 {
		return nil, &ConflictError{Key: clue.Key(), Positions: conflicts}
	}

	prev := make([]CellState, len(cells))
	for i, cell := range cells {
		prev[i] = CellState{Coord: cell, Letter: g.cells[cell.Row][cell.Col]}
		g.cells[cell.Row][cell.Col] = answer[i]
	}
	return prev, nil
}

// Revert restores exactly the cells captured by a previous Commit.
func (g *Grid) Revert(prev []CellState) {
	g.mu.Lock()
	defer g.mu.Unlock()
	for _, cs := range prev {
		g.cells[cs.Coord.Row][cs.Coord.Col] = cs.Letter
	}
}

// SetSolved marks or clears the clue's solved flag.
func (g *Grid) SetSolved(key ClueKey, solved bool) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if solved {
		g.solved[key] = true
	} else {
		delete(g.solved, key)
	}
}

// IsSolved reports whether the clue has been validated as correct.
func (g *Grid) IsSolved(key ClueKey) bool {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return g.solved[key]
}

// SolvedCount returns how many clues are currently marked solved.
func (g *Grid) SolvedCount() int {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return len(g.solved)
}

// IsAnswered reports whether every cell in the clue's span is filled.
func (g *Grid) IsAnswered(clue *Clue) bool {
	g.mu.RLock()
	defer g.mu.RUnlock()
	for _, cell := range clue.Cells() {
		if g.cells[cell.Row][cell.Col] == 0 {
			return false
		}
	}
	return true
}

// IsCorrect compares the clue's current fill against its canonical answer.
// An incomplete fill is never correct.
func (g *Grid) IsCorrect(clue *Clue) bool {
	g.mu.RLock()
	defer g.mu.RUnlock()
	for i, cell := range clue.Cells() {
		if g.cells[cell.Row][cell.Col] != clue.Answer[i] {
			return false
		}
	}
	return true
}

// Snapshot returns a read-only copy of the full grid for publication.
func (g *Grid) Snapshot() [][]CellSnapshot {
	g.mu.RLock()
	defer g.mu.RUnlock()

	snapshot := make([][]CellSnapshot, g.puzzle.Height)
	for r := 0; r < g.puzzle.Height; r++ {
		row := make([]CellSnapshot, g.puzzle.Width)
		for c := 0; c < g.puzzle.Width; c++ {
			value := ""
			if letter := g.cells[r][c]; letter != 0 {
				value = string(letter)
			}
			row[c] = CellSnapshot{
				Value:  value,
				Row:    r,
				Col:    c,
				Active: g.active[Coord{Row: r, Col: c}],
			}
		}
		snapshot[r] = row
	}
	return snapshot
}

// CluesSnapshot returns the current per-clue state grouped by direction.
func (g *Grid) CluesSnapshot() CluesSnapshot {
	g.mu.RLock()
	defer g.mu.RUnlock()

	var snap CluesSnapshot
	for i := range g.puzzle.Clues {
		clue := &g.puzzle.Clues[i]
		data := ClueSnapshot{
			Number:    clue.Number,
			Text:      clue.Text,
			Length:    clue.Length,
			Answered:  g.solved[clue.Key()],
			Direction: string(clue.Direction),
		}
		if clue.Direction == Across {
			snap.Across = append(snap.Across, data)
		} else {
			snap.Down = append(snap.Down, data)
		}
	}
	return snap
}
