package tools

import (
	"context"
	"fmt"

	"solver/pkg/puzzle"
)

// ValidateClueTool checks a committed clue against the puzzle's canonical
// answer and marks it solved when correct.
type ValidateClueTool struct {
	grid *puzzle.Grid
}

// NewValidateClueTool creates a new validate clue tool instance.
func NewValidateClueTool(grid *puzzle.Grid) *ValidateClueTool {
	return &ValidateClueTool{grid: grid}
}

// Definition returns the tool's definition in Claude API format.
func (t *ValidateClueTool) Definition() ToolDefinition {
	return ToolDefinition{
		Name:        ToolValidateClue,
		Description: "Check if a clue's current answer is correct. ALWAYS use this after set_answer to verify correctness.",
		InputSchema: InputSchema{
			Type:       "object",
			Properties: clueProperties(),
			Required:   []string{"clue_number", "direction"},
		},
	}
}

// Name returns the tool identifier.
func (t *ValidateClueTool) Name() string {
	return ToolValidateClue
}

// PromptDocumentation returns markdown documentation for oracle prompts.
func (t *ValidateClueTool) PromptDocumentation() string {
	return `- **validate_clue** - Verify a committed answer
  - Parameters: clue_number (integer), direction (across/down)
  - Fails if the clue has not been fully filled in yet
  - A clue only counts as solved once validated correct`
}

// Exec validates the clue's current fill. A clue is marked solved only
// here, never at commit time.
func (t *ValidateClueTool) Exec(_ context.Context, args map[string]any) (any, error) {
	number, dir, err := clueArgs(args)
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

	if !t.grid.IsAnswered(clue) {
		return errorResult(ErrKindNotYetAnswered,
			fmt.Sprintf("Clue %d-%s has no answer yet. Use set_answer first.", number, dir)), nil
	}

	valid := t.grid.IsCorrect(clue)
	t.grid.SetSolved(clue.Key(), valid)

	verdict := "INCORRECT"
	if valid {
		verdict = "CORRECT"
	}
	return map[string]any{
		"success":        true,
		"valid":          valid,
		"current_answer": t.grid.Pattern(clue),
		"message":        fmt.Sprintf("Clue %d-%s is %s", number, dir, verdict),
	}, nil
}

// ValidateAllTool reports correctness across every clue in the puzzle.
type ValidateAllTool struct {
	grid *puzzle.Grid
}

// NewValidateAllTool creates a new validate all tool instance.
func NewValidateAllTool(grid *puzzle.Grid) *ValidateAllTool {
	return &ValidateAllTool{grid: grid}
}

// Definition returns the tool's definition in Claude API format.
func (t *ValidateAllTool) Definition() ToolDefinition {
	return ToolDefinition{
		Name:        ToolValidateAll,
		Description: "Check correctness of every filled clue and report overall progress.",
		InputSchema: InputSchema{
			Type:       "object",
			Properties: map[string]Property{},
			Required:   []string{},
		},
	}
}

// Name returns the tool identifier.
func (t *ValidateAllTool) Name() string {
	return ToolValidateAll
}

// PromptDocumentation returns markdown documentation for oracle prompts.
func (t *ValidateAllTool) PromptDocumentation() string {
	return `- **validate_all** - Check the whole puzzle at once
  - No parameters
  - Reports correct, incorrect, and unanswered counts per clue
  - The session completes when every clue validates correct`
}

// Exec always returns a report; it has no failure modes.
func (t *ValidateAllTool) Exec(_ context.Context, _ map[string]any) (any, error) {
	p := t.grid.Puzzle()

	var correct, incorrect, unanswered int
	details := make([]map[string]any, 0, len(p.Clues))
	for i := range p.Clues {
		clue := &p.Clues[i]
		entry := map[string]any{
			"clue_number": clue.Number,
			"direction":   string(clue.Direction),
		}
		switch {
		case !t.grid.IsAnswered(clue):
			unanswered++
			entry["status"] = "unanswered"
		case t.grid.IsCorrect(clue):
			correct++
			entry["status"] = "correct"
			t.grid.SetSolved(clue.Key(), true)
		default:
			incorrect++
			entry["status"] = "incorrect"
			entry["current_answer"] = t.grid.Pattern(clue)
			t.grid.SetSolved(clue.Key(), false)
		}
		details = append(details, entry)
	}

	allCorrect := correct == len(p.Clues)
	return map[string]any{
		"success":     true,
		"all_correct": allCorrect,
		"correct":     correct,
		"incorrect":   incorrect,
		"unanswered":  unanswered,
		"total":       len(p.Clues),
		"details":     details,
		"message":     fmt.Sprintf("%d/%d clues correct, %d incorrect, %d unanswered", correct, len(p.Clues), incorrect, unanswered),
	}, nil
}
