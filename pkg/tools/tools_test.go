package tools

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"solver/pkg/ledger"
	"solver/pkg/puzzle"
)

func newTestProvider(t *testing.T) (*ToolProvider, *puzzle.Grid) {
	t.Helper()
	p := &puzzle.Puzzle{
		Name:   "mini",
		Width:  3,
		Height: 3,
		Clues: []puzzle.Clue{
			{Number: 1, Direction: puzzle.Across, Text: "Feline pet", Row: 0, Col: 0, Length: 3, Answer: "CAT"},
			{Number: 1, Direction: puzzle.Down, Text: "Farm animal that moos", Row: 0, Col: 0, Length: 3, Answer: "COW"},
			{Number: 2, Direction: puzzle.Down, Text: "Spinning toy", Row: 0, Col: 2, Length: 3, Answer: "TOP"},
		},
	}
	require.NoError(t, p.Validate())
	grid := puzzle.NewGrid(p)
	provider := NewProvider(SolverContext{Grid: grid, Ledger: ledger.New()}, AllToolNames)
	return provider, grid
}

func execTool(t *testing.T, provider *ToolProvider, name string, args map[string]any) map[string]any {
	t.Helper()
	tool, err := provider.Get(name)
	require.NoError(t, err)
	raw, err := tool.Exec(context.Background(), args)
	require.NoError(t, err)
	result, ok := raw.(map[string]any)
	require.True(t, ok, "tool result must be a map")
	return result
}

func clueArgsFor(number int, dir string) map[string]any {
	return map[string]any{"clue_number": number, "direction": dir}
}

func TestProviderAllowlist(t *testing.T) {
	grid := puzzle.NewGrid(&puzzle.Puzzle{Width: 1, Height: 1, Clues: []puzzle.Clue{
		{Number: 1, Direction: puzzle.Across, Text: "x", Row: 0, Col: 0, Length: 1, Answer: "A"},
	}})
	provider := NewProvider(SolverContext{Grid: grid, Ledger: ledger.New()}, []string{ToolValidateAll})

	_, err := provider.Get(ToolValidateAll)
	assert.NoError(t, err)

	_, err = provider.Get(ToolSetAnswer)
	assert.Error(t, err)
}

func TestProviderDefinitions(t *testing.T) {
	provider, _ := newTestProvider(t)
	assert.Len(t, provider.Definitions(), len(AllToolNames))
}

func TestSetAnswerSuccess(t *testing.T) {
	provider, grid := newTestProvider(t)

	args := clueArgsFor(1, "across")
	args["answer"] = "cat"
	result := execTool(t, provider, ToolSetAnswer, args)

	assert.Equal(t, true, result["success"])
	assert.Equal(t, "CAT", result["pattern"])

	clue, err := grid.Puzzle().FindClue(1, puzzle.Across)
	require.NoError(t, err)
	assert.Equal(t, "CAT", grid.Pattern(clue))
}

func TestSetAnswerLengthMismatch(t *testing.T) {
	provider, _ := newTestProvider(t)

	args := clueArgsFor(1, "across")
	args["answer"] = "CATS"
	result := execTool(t, provider, ToolSetAnswer, args)

	assert.Equal(t, false, result["success"])
	assert.Equal(t, ErrKindLengthMismatch, result["error_kind"])
}

func TestSetAnswerIntersectionConflict(t *testing.T) {
	provider, _ := newTestProvider(t)

	args := clueArgsFor(1, "across")
	args["answer"] = "CAT"
	execTool(t, provider, ToolSetAnswer, args)

	args = clueArgsFor(1, "down")
	args["answer"] = "BOW"
	result := execTool(t, provider, ToolSetAnswer, args)

	assert.Equal(t, false, result["success"])
	assert.Equal(t, ErrKindIntersectionConflict, result["error_kind"])
	assert.Equal(t, []int{0}, result["conflict_positions"])
}

func TestSetAnswerAlreadyTried(t *testing.T) {
	provider, _ := newTestProvider(t)

	// A rejected attempt enters the tried set.
	args := clueArgsFor(1, "across")
	args["answer"] = "CAT"
	execTool(t, provider, ToolSetAnswer, args)
	args = clueArgsFor(1, "down")
	args["answer"] = "BOW"
	execTool(t, provider, ToolSetAnswer, args)

	args = clueArgsFor(1, "down")
	args["answer"] = "bow"
	result := execTool(t, provider, ToolSetAnswer, args)

	assert.Equal(t, false, result["success"])
	assert.Equal(t, ErrKindAlreadyTried, result["error_kind"])
}

func TestSetAnswerUnknownClue(t *testing.T) {
	provider, _ := newTestProvider(t)

	args := clueArgsFor(9, "across")
	args["answer"] = "XYZ"
	result := execTool(t, provider, ToolSetAnswer, args)

	assert.Equal(t, false, result["success"])
	assert.NotContains(t, result, "error_kind")
}

func TestSetAnswerFloatClueNumber(t *testing.T) {
	// JSON-decoded arguments arrive as float64.
	provider, _ := newTestProvider(t)

	result := execTool(t, provider, ToolSetAnswer, map[string]any{
		"clue_number": float64(1),
		"direction":   "across",
		"answer":      "CAT",
	})
	assert.Equal(t, true, result["success"])
}

func TestCheckIntersection(t *testing.T) {
	provider, _ := newTestProvider(t)

	args := clueArgsFor(1, "across")
	args["answer"] = "CAT"
	execTool(t, provider, ToolSetAnswer, args)

	args = clueArgsFor(1, "down")
	args["proposed_answer"] = "COW"
	result := execTool(t, provider, ToolCheckIntersection, args)
	assert.Equal(t, true, result["success"])
	assert.Equal(t, true, result["compatible"])

	args = clueArgsFor(1, "down")
	args["proposed_answer"] = "BOW"
	result = execTool(t, provider, ToolCheckIntersection, args)
	assert.Equal(t, true, result["success"])
	assert.Equal(t, false, result["compatible"])
	conflicts, ok := result["conflicts"].([]map[string]any)
	require.True(t, ok)
	require.Len(t, conflicts, 1)
	assert.Equal(t, 0, conflicts[0]["position"])
	assert.Equal(t, "B", conflicts[0]["proposed"])
	assert.Equal(t, "C", conflicts[0]["existing"])
}

func TestGetConstraints(t *testing.T) {
	provider, _ := newTestProvider(t)

	args := clueArgsFor(1, "across")
	args["answer"] = "CAT"
	execTool(t, provider, ToolSetAnswer, args)

	result := execTool(t, provider, ToolGetConstraints, clueArgsFor(1, "down"))
	assert.Equal(t, true, result["success"])
	assert.Equal(t, map[string]any{"0": "C"}, result["constraints"])
	assert.Equal(t, "C__", result["pattern"])
	assert.Equal(t, 3, result["length"])
}

func TestValidateClueNotYetAnswered(t *testing.T) {
	provider, _ := newTestProvider(t)

	result := execTool(t, provider, ToolValidateClue, clueArgsFor(1, "across"))
	assert.Equal(t, false, result["success"])
	assert.Equal(t, ErrKindNotYetAnswered, result["error_kind"])
}

func TestValidateClueVerdicts(t *testing.T) {
	provider, grid := newTestProvider(t)

	args := clueArgsFor(1, "across")
	args["answer"] = "CAT"
	execTool(t, provider, ToolSetAnswer, args)

	result := execTool(t, provider, ToolValidateClue, clueArgsFor(1, "across"))
	assert.Equal(t, true, result["success"])
	assert.Equal(t, true, result["valid"])
	assert.Equal(t, "CAT", result["current_answer"])
	assert.True(t, grid.IsSolved(puzzle.ClueKey{Number: 1, Direction: puzzle.Across}))

	args = clueArgsFor(2, "down")
	args["answer"] = "TIP"
	execTool(t, provider, ToolSetAnswer, args)

	result = execTool(t, provider, ToolValidateClue, clueArgsFor(2, "down"))
	assert.Equal(t, true, result["success"])
	assert.Equal(t, false, result["valid"])
	assert.False(t, grid.IsSolved(puzzle.ClueKey{Number: 2, Direction: puzzle.Down}))
}

func TestValidateAll(t *testing.T) {
	provider, _ := newTestProvider(t)

	args := clueArgsFor(1, "across")
	args["answer"] = "CAT"
	execTool(t, provider, ToolSetAnswer, args)
	args = clueArgsFor(2, "down")
	args["answer"] = "TIP"
	execTool(t, provider, ToolSetAnswer, args)

	result := execTool(t, provider, ToolValidateAll, nil)
	assert.Equal(t, true, result["success"])
	assert.Equal(t, false, result["all_correct"])
	assert.Equal(t, 1, result["correct"])
	assert.Equal(t, 1, result["incorrect"])
	assert.Equal(t, 1, result["unanswered"])
	assert.Equal(t, 3, result["total"])
}

func TestUndoLast(t *testing.T) {
	provider, grid := newTestProvider(t)

	result := execTool(t, provider, ToolUndoLast, nil)
	assert.Equal(t, false, result["success"])
	assert.Equal(t, ErrKindNothingToUndo, result["error_kind"])

	args := clueArgsFor(1, "across")
	args["answer"] = "CAT"
	execTool(t, provider, ToolSetAnswer, args)

	result = execTool(t, provider, ToolUndoLast, nil)
	assert.Equal(t, true, result["success"])

	clue, err := grid.Puzzle().FindClue(1, puzzle.Across)
	require.NoError(t, err)
	assert.Equal(t, "___", grid.Pattern(clue))

	// The undone answer is permanently blocked.
	args = clueArgsFor(1, "across")
	args["answer"] = "CAT"
	result = execTool(t, provider, ToolSetAnswer, args)
	assert.Equal(t, false, result["success"])
	assert.Equal(t, ErrKindAlreadyTried, result["error_kind"])
}

func TestGetCurrentGrid(t *testing.T) {
	provider, _ := newTestProvider(t)

	args := clueArgsFor(1, "across")
	args["answer"] = "CAT"
	execTool(t, provider, ToolSetAnswer, args)

	result := execTool(t, provider, ToolGetCurrentGrid, nil)
	assert.Equal(t, true, result["success"])

	rows, ok := result["grid"].([]string)
	require.True(t, ok)
	require.Len(t, rows, 3)
	assert.Equal(t, "CAT", rows[0])
	assert.Equal(t, "_._", rows[1])
	assert.Equal(t, "_._", rows[2])

	clues, ok := result["clues"].([]map[string]any)
	require.True(t, ok)
	assert.Len(t, clues, 3)
}
