package puzzle

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCommitAndPattern(t *testing.T) {
	p := miniPuzzle(t)
	g := NewGrid(p)

	across, err := p.FindClue(1, Across)
	require.NoError(t, err)
	down, err := p.FindClue(1, Down)
	require.NoError(t, err)

	assert.Equal(t, "___", g.Pattern(across))

	_, err = g.Commit(across, "cat")
	require.NoError(t, err)
	assert.Equal(t, "CAT", g.Pattern(across))

	// The shared first cell now constrains 1-down.
	assert.Equal(t, "C__", g.Pattern(down))
}

func TestCommitLengthMismatch(t *testing.T) {
	p := miniPuzzle(t)
	g := NewGrid(p)

	across, err := p.FindClue(1, Across)
	require.NoError(t, err)

	_, err = g.Commit(across, "CATS")
	assert.ErrorIs(t, err, ErrLengthMismatch)
	assert.Equal(t, "___", g.Pattern(across))
}

func TestCommitIntersectionConflict(t *testing.T) {
	p := miniPuzzle(t)
	g := NewGrid(p)

	across, err := p.FindClue(1, Across)
	require.NoError(t, err)
	down, err := p.FindClue(1, Down)
	require.NoError(t, err)

	_, err = g.Commit(across, "CAT")
	require.NoError(t, err)

	// "BOW" disagrees with the committed 'C' at the shared cell.
	_, err = g.Commit(down, "BOW")
	assert.ErrorIs(t, err, ErrIntersectionConflict)

	var conflict *ConflictError
	require.ErrorAs(t, err, &conflict)
	assert.Equal(t, []int{0}, conflict.Positions)

	// Grid untouched by the failed commit.
	assert.Equal(t, "CAT", g.Pattern(across))
	assert.Equal(t, "C__", g.Pattern(down))
}

func TestCommitOverwriteAgreement(t *testing.T) {
	p := miniPuzzle(t)
	g := NewGrid(p)

	across, err := p.FindClue(1, Across)
	require.NoError(t, err)
	down, err := p.FindClue(1, Down)
	require.NoError(t, err)

	_, err = g.Commit(across, "CAT")
	require.NoError(t, err)

	// "COW" agrees at the shared cell, so the commit succeeds.
	_, err = g.Commit(down, "COW")
	assert.NoError(t, err)
}

func TestRevertRestoresExactState(t *testing.T) {
	p := miniPuzzle(t)
	g := NewGrid(p)

	across, err := p.FindClue(1, Across)
	require.NoError(t, err)
	down, err := p.FindClue(1, Down)
	require.NoError(t, err)

	_, err = g.Commit(across, "CAT")
	require.NoError(t, err)

	prev, err := g.Commit(down, "COW")
	require.NoError(t, err)

	g.Revert(prev)
	assert.Equal(t, "C__", g.Pattern(down))
	// The across fill survives: its shared cell was captured as 'C' and
	// restored to 'C'.
	assert.Equal(t, "CAT", g.Pattern(across))
}

func TestIsAnsweredAndIsCorrect(t *testing.T) {
	p := miniPuzzle(t)
	g := NewGrid(p)

	across, err := p.FindClue(1, Across)
	require.NoError(t, err)

	assert.False(t, g.IsAnswered(across))
	assert.False(t, g.IsCorrect(across), "incomplete fill is never correct")

	_, err = g.Commit(across, "CUT")
	require.NoError(t, err)
	assert.True(t, g.IsAnswered(across))
	assert.False(t, g.IsCorrect(across))

	g.Revert([]CellState{
		{Coord: Coord{Row: 0, Col: 1}, Letter: 'A'},
	})
	assert.True(t, g.IsCorrect(across))
}

func TestSolvedFlags(t *testing.T) {
	p := miniPuzzle(t)
	g := NewGrid(p)
	key := ClueKey{Number: 1, Direction: Across}

	assert.False(t, g.IsSolved(key))
	g.SetSolved(key, true)
	assert.True(t, g.IsSolved(key))
	assert.Equal(t, 1, g.SolvedCount())

	g.SetSolved(key, false)
	assert.False(t, g.IsSolved(key))
	assert.Equal(t, 0, g.SolvedCount())
}

func TestSnapshotShape(t *testing.T) {
	p := miniPuzzle(t)
	g := NewGrid(p)

	across, err := p.FindClue(1, Across)
	require.NoError(t, err)
	_, err = g.Commit(across, "CAT")
	require.NoError(t, err)

	snap := g.Snapshot()
	require.Len(t, snap, 3)
	require.Len(t, snap[0], 3)

	assert.Equal(t, CellSnapshot{Value: "C", Row: 0, Col: 0, Active: true}, snap[0][0])
	// (1,1) belongs to no clue span.
	assert.False(t, snap[1][1].Active)
	assert.Empty(t, snap[1][1].Value)
}

func TestCluesSnapshotGrouping(t *testing.T) {
	p := miniPuzzle(t)
	g := NewGrid(p)
	g.SetSolved(ClueKey{Number: 2, Direction: Down}, true)

	snap := g.CluesSnapshot()
	require.Len(t, snap.Across, 1)
	require.Len(t, snap.Down, 2)
	assert.Equal(t, "across", snap.Across[0].Direction)

	var topClue ClueSnapshot
	for _, c := range snap.Down {
		if c.Number == 2 {
			topClue = c
		}
	}
	assert.True(t, topClue.Answered)
}
