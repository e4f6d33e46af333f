package solver

import (
	"fmt"
	"strings"

	"solver/pkg/ledger"
	"solver/pkg/puzzle"
)

// buildSystemPrompt returns the strategy guidance sent as the system
// message. Tool documentation is appended from the registry so the
// prompt and the declared tools never drift apart.
func buildSystemPrompt(toolDocs string) string {
	prompt := `You are an expert crossword-solving agent with access to tools.

Your task: Solve the crossword puzzle completely using the provided tools.

STRATEGY FOR SUCCESS:
1. Start with clues you're most confident about
2. ALWAYS use check_intersection BEFORE set_answer to avoid conflicts
3. After set_answer, IMMEDIATELY use validate_clue to verify
4. If validation fails, use undo_last and try a different answer
5. Use get_constraints to see what letters are required from intersecting clues
6. Use get_current_grid periodically to see progress
7. When you think you're done, use validate_all to confirm
8. If the puzzle is not yet solved, continue to use the tools

IMPORTANT RULES:
- You MUST use the tools - do not guess if answers are correct
- Always check intersections before committing an answer
- If you've tried an answer before and it failed, don't try it again
- Work systematically - validate each answer before moving to the next

Continue until validate_all reports the puzzle is solved.`

	if toolDocs != "" {
		prompt += "\n\nAVAILABLE TOOLS:\n" + toolDocs
	}
	return prompt
}

// buildPuzzleDescription formats the puzzle for the opening user
// message. Clue answers are never included.
func buildPuzzleDescription(p *puzzle.Puzzle) string {
	var b strings.Builder
	fmt.Fprintf(&b, "=== CROSSWORD PUZZLE (%dx%d) ===\n\n", p.Width, p.Height)

	b.WriteString("ACROSS CLUES:\n")
	for i := range p.Clues {
		c := &p.Clues[i]
		if c.Direction == puzzle.Across {
			fmt.Fprintf(&b, "  %d. %s (%d letters)\n", c.Number, c.Text, c.Length)
		}
	}

	b.WriteString("\nDOWN CLUES:\n")
	for i := range p.Clues {
		c := &p.Clues[i]
		if c.Direction == puzzle.Down {
			fmt.Fprintf(&b, "  %d. %s (%d letters)\n", c.Number, c.Text, c.Length)
		}
	}

	return b.String()
}

// recentFailureLines formats the most recent rejected or undone
// attempts for inclusion in the compression summary.
func recentFailureLines(attempts []ledger.Attempt) string {
	if len(attempts) == 0 {
		return "None"
	}
	lines := make([]string, 0, len(attempts))
	for i := range attempts {
		a := &attempts[i]
		lines = append(lines, fmt.Sprintf("%s: '%s' (%s)", a.Key, a.Answer, a.Outcome))
	}
	return strings.Join(lines, ", ")
}

// buildStateSummary produces the single user message that replaces the
// transcript during compression. It is built from authoritative state
// so every committed answer survives verbatim.
func buildStateSummary(grid *puzzle.Grid, led *ledger.Ledger) string {
	p := grid.Puzzle()

	var filled, remaining []string
	for i := range p.Clues {
		c := &p.Clues[i]
		key := c.Key().String()
		if grid.IsAnswered(c) {
			filled = append(filled, fmt.Sprintf("%s='%s'", key, grid.Pattern(c)))
		} else {
			remaining = append(remaining, key)
		}
	}

	filledStr := "None"
	if len(filled) > 0 {
		filledStr = strings.Join(filled, ", ")
	}

	var b strings.Builder
	b.WriteString("Current puzzle state:\n")
	fmt.Fprintf(&b, "- Filled clues: %s\n", filledStr)
	fmt.Fprintf(&b, "- Remaining clues: %s\n", strings.Join(remaining, ", "))
	fmt.Fprintf(&b, "- Recent failed attempts: %s\n", recentFailureLines(led.RecentFailures(10)))
	b.WriteString("- Grid:\n")
	b.WriteString(renderGridText(grid))
	b.WriteString("\n\nContinue solving the remaining clues. Remember to use check_intersection before set_answer.")
	return b.String()
}

// renderGridText renders the grid as rows of characters: '.' for
// blocked cells, '_' for empty fillable cells.
func renderGridText(grid *puzzle.Grid) string {
	p := grid.Puzzle()
	snapshot := grid.Snapshot()

	rows := make([]string, 0, p.Height)
	for r := 0; r < p.Height; r++ {
		var row strings.Builder
		for c := 0; c < p.Width; c++ {
			cell := snapshot[r][c]
			switch {
			case !cell.Active:
				row.WriteByte('.')
			case cell.Value == "":
				row.WriteByte('_')
			default:
				row.WriteString(cell.Value)
			}
		}
		rows = append(rows, row.String())
	}
	return strings.Join(rows, "\n")
}
