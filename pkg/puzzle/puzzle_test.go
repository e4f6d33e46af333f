package puzzle

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func miniPuzzle(t *testing.T) *Puzzle {
	t.Helper()
	p := &Puzzle{
		Name:   "mini",
		Width:  3,
		Height: 3,
		Clues: []Clue{
			{Number: 1, Direction: Across, Text: "Feline pet", Row: 0, Col: 0, Length: 3, Answer: "CAT"},
			{Number: 1, Direction: Down, Text: "Farm animal that moos", Row: 0, Col: 0, Length: 3, Answer: "COW"},
			{Number: 2, Direction: Down, Text: "Spinning toy", Row: 0, Col: 2, Length: 3, Answer: "TOP"},
		},
	}
	require.NoError(t, p.Validate())
	return p
}

func TestParseDirection(t *testing.T) {
	tests := []struct {
		input   string
		want    Direction
		wantErr bool
	}{
		{"across", Across, false},
		{"down", Down, false},
		{"ACROSS", Across, false},
		{"  Down  ", Down, false},
		{"diagonal", "", true},
		{"", "", true},
	}

	for _, tt := range tests {
		got, err := ParseDirection(tt.input)
		if tt.wantErr {
			assert.Error(t, err, "input %q", tt.input)
		} else {
			require.NoError(t, err, "input %q", tt.input)
			assert.Equal(t, tt.want, got)
		}
	}
}

func TestNormalizeAnswer(t *testing.T) {
	assert.Equal(t, "CAT", NormalizeAnswer("cat"))
	assert.Equal(t, "CAT", NormalizeAnswer("  Cat "))
	assert.Equal(t, "", NormalizeAnswer("   "))
}

func TestClueKeyString(t *testing.T) {
	key := ClueKey{Number: 3, Direction: Down}
	assert.Equal(t, "3-down", key.String())
}

func TestClueCells(t *testing.T) {
	across := Clue{Number: 1, Direction: Across, Row: 2, Col: 1, Length: 3}
	assert.Equal(t, []Coord{{2, 1}, {2, 2}, {2, 3}}, across.Cells())

	down := Clue{Number: 1, Direction: Down, Row: 0, Col: 2, Length: 2}
	assert.Equal(t, []Coord{{0, 2}, {1, 2}}, down.Cells())
}

func TestFindClue(t *testing.T) {
	p := miniPuzzle(t)

	clue, err := p.FindClue(1, Down)
	require.NoError(t, err)
	assert.Equal(t, "COW", clue.Answer)

	_, err = p.FindClue(9, Across)
	assert.ErrorIs(t, err, ErrUnknownClue)
}

func TestValidateRejectsDuplicateKeys(t *testing.T) {
	p := miniPuzzle(t)
	p.Clues = append(p.Clues, Clue{Number: 1, Direction: Across, Row: 1, Col: 0, Length: 3, Answer: "DOG"})
	assert.Error(t, p.Validate())
}

func TestValidateRejectsLengthMismatch(t *testing.T) {
	p := miniPuzzle(t)
	p.Clues[0].Answer = "CATS"
	assert.Error(t, p.Validate())
}

func TestValidateRejectsOutOfBounds(t *testing.T) {
	p := miniPuzzle(t)
	p.Clues = append(p.Clues, Clue{Number: 3, Direction: Across, Row: 2, Col: 1, Length: 3, Answer: "ABC"})
	assert.Error(t, p.Validate())
}

func TestValidateRejectsIntersectionDisagreement(t *testing.T) {
	p := miniPuzzle(t)
	// 1-down starts at the same cell as 1-across; changing its first
	// letter breaks the shared cell.
	p.Clues[1].Answer = "BOW"
	assert.Error(t, p.Validate())
}

func TestValidateRejectsBadDimensions(t *testing.T) {
	p := miniPuzzle(t)
	p.Width = 0
	assert.Error(t, p.Validate())
}
