package tools

import (
	"context"
	"errors"
	"fmt"

	"solver/pkg/ledger"
	"solver/pkg/puzzle"
)

// SetAnswerTool commits a proposed answer into the grid after the
// attempted-set and intersection checks pass.
type SetAnswerTool struct {
	grid *puzzle.Grid
	log  *ledger.Ledger
}

// NewSetAnswerTool creates a new set answer tool instance.
func NewSetAnswerTool(grid *puzzle.Grid, log *ledger.Ledger) *SetAnswerTool {
	return &SetAnswerTool{grid: grid, log: log}
}

// Definition returns the tool's definition in Claude API format.
func (t *SetAnswerTool) Definition() ToolDefinition {
	props := clueProperties()
	props["answer"] = Property{
		Type:        "string",
		Description: "The answer to set (must match the clue length)",
	}
	return ToolDefinition{
		Name:        ToolSetAnswer,
		Description: "Set an answer for a clue in the crossword grid. Use this to fill in your proposed answer.",
		InputSchema: InputSchema{
			Type:       "object",
			Properties: props,
			Required:   []string{"clue_number", "direction", "answer"},
		},
	}
}

// Name returns the tool identifier.
func (t *SetAnswerTool) Name() string {
	return ToolSetAnswer
}

// PromptDocumentation returns markdown documentation for oracle prompts.
func (t *SetAnswerTool) PromptDocumentation() string {
	return `- **set_answer** - Fill in an answer for a clue
  - Parameters: clue_number (integer), direction (across/down), answer (string)
  - Answer must match the clue length exactly
  - Fails if the answer conflicts with intersecting fill or was already tried
  - Use check_intersection first when the grid is partially filled`
}

// Exec commits the answer. Every failure is reported as a structured
// result so the oracle can adjust its next proposal.
func (t *SetAnswerTool) Exec(ctx context.Context, args map[string]any) (any, error) {
	number, dir, err := clueArgs(args)
	if err != nil {
		return nil, err
	}
	rawAnswer, err := stringArg(args, "answer")
	if err != nil {
		return nil, err
	}

	clue, err := t.grid.Puzzle().FindClue(number, dir)
	if err != nil {
		return map[string]any{
			"success": false,
			"message": fmt.Sprintf("Clue %d-%s not found", number, dir),
		}, nil
	}

	answer := puzzle.NormalizeAnswer(rawAnswer)
	key := clue.Key()
	iteration := IterationFromContext(ctx)

	if t.log.HasBeenTried(key, answer) {
		return errorResult(ErrKindAlreadyTried,
			fmt.Sprintf("Already tried '%s' for this clue. Try a different answer.", answer)), nil
	}

	prev, commitErr := t.grid.Commit(clue, answer)
	if commitErr != nil {
		t.log.RecordRejected(key, answer, iteration)

		var conflict *puzzle.ConflictError
		switch {
		case errors.Is(commitErr, puzzle.ErrLengthMismatch):
			return errorResult(ErrKindLengthMismatch,
				fmt.Sprintf("Answer length %d doesn't match clue length %d", len(answer), clue.Length)), nil
		case errors.As(commitErr, &conflict):
			result := errorResult(ErrKindIntersectionConflict,
				fmt.Sprintf("'%s' conflicts with intersecting fill at positions %v", answer, conflict.Positions))
			result["conflict_positions"] = conflict.Positions
			return result, nil
		default:
			return nil, commitErr
		}
	}

	t.log.RecordAccepted(key, answer, prev, iteration)
	return map[string]any{
		"success": true,
		"message": fmt.Sprintf("Set %d-%s to '%s'", number, dir, answer),
		"pattern": t.grid.Pattern(clue),
	}, nil
}

// UndoLastTool reverts the most recent accepted commit.
type UndoLastTool struct {
	grid *puzzle.Grid
	log  *ledger.Ledger
}

// NewUndoLastTool creates a new undo tool instance.
func NewUndoLastTool(grid *puzzle.Grid, log *ledger.Ledger) *UndoLastTool {
	return &UndoLastTool{grid: grid, log: log}
}

// Definition returns the tool's definition in Claude API format.
func (t *UndoLastTool) Definition() ToolDefinition {
	return ToolDefinition{
		Name:        ToolUndoLast,
		Description: "Undo the most recently committed answer and restore the previous grid state.",
		InputSchema: InputSchema{
			Type:       "object",
			Properties: map[string]Property{},
			Required:   []string{},
		},
	}
}

// Name returns the tool identifier.
func (t *UndoLastTool) Name() string {
	return ToolUndoLast
}

// PromptDocumentation returns markdown documentation for oracle prompts.
func (t *UndoLastTool) PromptDocumentation() string {
	return `- **undo_last** - Undo the most recent committed answer
  - No parameters
  - Restores the exact grid state from before that commit
  - The undone answer stays blocked; propose something different`
}

// Exec pops the most recent commit. The undone answer remains in the
// attempted set and is not eligible for automatic retry.
func (t *UndoLastTool) Exec(_ context.Context, _ map[string]any) (any, error) {
	key, answer, prev, err := t.log.UndoLast()
	if err != nil {
		if errors.Is(err, ledger.ErrNothingToUndo) {
			return errorResult(ErrKindNothingToUndo, "No committed answer to undo"), nil
		}
		return nil, err
	}

	t.grid.Revert(prev)
	t.grid.SetSolved(key, false)
	return map[string]any{
		"success": true,
		"message": fmt.Sprintf("Undid '%s' for %s", answer, key),
	}, nil
}
