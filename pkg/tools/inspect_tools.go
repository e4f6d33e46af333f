package tools

import (
	"context"
	"fmt"
	"strings"

	"solver/pkg/constraint"
	"solver/pkg/puzzle"
)

// CheckIntersectionTool probes a candidate answer against the current
// fill without mutating anything.
type CheckIntersectionTool struct {
	grid *puzzle.Grid
}

// NewCheckIntersectionTool creates a new check intersection tool instance.
func NewCheckIntersectionTool(grid *puzzle.Grid) *CheckIntersectionTool {
	return &CheckIntersectionTool{grid: grid}
}

// Definition returns the tool's definition in Claude API format.
func (t *CheckIntersectionTool) Definition() ToolDefinition {
	props := clueProperties()
	props["proposed_answer"] = Property{
		Type:        "string",
		Description: "The answer to test against the current grid fill",
	}
	return ToolDefinition{
		Name:        ToolCheckIntersection,
		Description: "Check if a proposed answer is compatible with already-filled intersecting clues. Use this BEFORE set_answer to avoid conflicts.",
		InputSchema: InputSchema{
			Type:       "object",
			Properties: props,
			Required:   []string{"clue_number", "direction", "proposed_answer"},
		},
	}
}

// Name returns the tool identifier.
func (t *CheckIntersectionTool) Name() string {
	return ToolCheckIntersection
}

// PromptDocumentation returns markdown documentation for oracle prompts.
func (t *CheckIntersectionTool) PromptDocumentation() string {
	return `- **check_intersection** - Test a candidate without committing
  - Parameters: clue_number (integer), direction (across/down), proposed_answer (string)
  - Never mutates the grid; safe to call repeatedly
  - Reports conflicting positions when incompatible`
}

// Exec runs the compatibility probe.
func (t *CheckIntersectionTool) Exec(_ context.Context, args map[string]any) (any, error) {
	number, dir, err := clueArgs(args)
	if err != nil {
		return nil, err
	}
	proposed, err := stringArg(args, "proposed_answer")
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

	result := constraint.CheckIntersection(t.grid, clue, proposed)
	out := map[string]any{
		"success":    true,
		"compatible": result.Compatible,
	}
	if result.Reason != "" {
		out["reason"] = result.Reason
	}
	if len(result.Conflicts) > 0 {
		conflicts := make([]map[string]any, len(result.Conflicts))
		for i, c := range result.Conflicts {
			conflicts[i] = map[string]any{
				"position":      c.Position,
				"proposed":      c.Proposed,
				"existing":      c.Existing,
				"grid_position": fmt.Sprintf("(%d, %d)", c.Cell.Row, c.Cell.Col),
			}
		}
		out["conflicts"] = conflicts
	}
	return out, nil
}

// GetConstraintsTool reports the forced letters for a clue.
type GetConstraintsTool struct {
	grid *puzzle.Grid
}

// NewGetConstraintsTool creates a new get constraints tool instance.
func NewGetConstraintsTool(grid *puzzle.Grid) *GetConstraintsTool {
	return &GetConstraintsTool{grid: grid}
}

// Definition returns the tool's definition in Claude API format.
func (t *GetConstraintsTool) Definition() ToolDefinition {
	return ToolDefinition{
		Name:        ToolGetConstraints,
		Description: "Get letter constraints for a clue based on already-filled intersecting answers.",
		InputSchema: InputSchema{
			Type:       "object",
			Properties: clueProperties(),
			Required:   []string{"clue_number", "direction"},
		},
	}
}

// Name returns the tool identifier.
func (t *GetConstraintsTool) Name() string {
	return ToolGetConstraints
}

// PromptDocumentation returns markdown documentation for oracle prompts.
func (t *GetConstraintsTool) PromptDocumentation() string {
	return `- **get_constraints** - Forced letters for a clue
  - Parameters: clue_number (integer), direction (across/down)
  - Returns position -> letter for every constrained position
  - Also returns the clue's current pattern, e.g. "C_T"`
}

// Exec returns the forced-letter map and current pattern.
func (t *GetConstraintsTool) Exec(_ context.Context, args map[string]any) (any, error) {
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

	forced := constraint.Constraints(t.grid, clue)
	constraints := make(map[string]any, len(forced))
	for pos, letter := range forced {
		constraints[fmt.Sprintf("%d", pos)] = letter
	}
	return map[string]any{
		"success":     true,
		"constraints": constraints,
		"pattern":     t.grid.Pattern(clue),
		"length":      clue.Length,
		"message":     fmt.Sprintf("Clue %d-%s pattern: %s", number, dir, t.grid.Pattern(clue)),
	}, nil
}

// GetCurrentGridTool returns a snapshot of the fill state and clue list.
type GetCurrentGridTool struct {
	grid *puzzle.Grid
}

// NewGetCurrentGridTool creates a new grid snapshot tool instance.
func NewGetCurrentGridTool(grid *puzzle.Grid) *GetCurrentGridTool {
	return &GetCurrentGridTool{grid: grid}
}

// Definition returns the tool's definition in Claude API format.
func (t *GetCurrentGridTool) Definition() ToolDefinition {
	return ToolDefinition{
		Name:        ToolGetCurrentGrid,
		Description: "See the current state of the crossword grid.",
		InputSchema: InputSchema{
			Type:       "object",
			Properties: map[string]Property{},
			Required:   []string{},
		},
	}
}

// Name returns the tool identifier.
func (t *GetCurrentGridTool) Name() string {
	return ToolGetCurrentGrid
}

// PromptDocumentation returns markdown documentation for oracle prompts.
func (t *GetCurrentGridTool) PromptDocumentation() string {
	return `- **get_current_grid** - Snapshot of the grid
  - No parameters
  - Returns row strings ('_' empty, '.' blocked) and per-clue patterns`
}

// Exec renders the grid rows and per-clue status.
func (t *GetCurrentGridTool) Exec(_ context.Context, _ map[string]any) (any, error) {
	p := t.grid.Puzzle()
	snapshot := t.grid.Snapshot()

	rows := make([]string, len(snapshot))
	for r := range snapshot {
		var b strings.Builder
		for c := range snapshot[r] {
			cell := &snapshot[r][c]
			switch {
			case !cell.Active:
				b.WriteByte('.')
			case cell.Value == "":
				b.WriteByte('_')
			default:
				b.WriteString(cell.Value)
			}
		}
		rows[r] = b.String()
	}

	clues := make([]map[string]any, 0, len(p.Clues))
	for i := range p.Clues {
		clue := &p.Clues[i]
		clues = append(clues, map[string]any{
			"clue_number": clue.Number,
			"direction":   string(clue.Direction),
			"text":        clue.Text,
			"length":      clue.Length,
			"pattern":     t.grid.Pattern(clue),
			"solved":      t.grid.IsSolved(clue.Key()),
		})
	}

	return map[string]any{
		"success": true,
		"grid":    rows,
		"clues":   clues,
	}, nil
}
