// Package tui renders the solving event stream to a terminal.
package tui

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"

	"golang.org/x/term"

	"solver/pkg/events"
)

const defaultWidth = 80

// Renderer consumes the event stream and prints progress to a terminal.
// It keeps no solver state of its own; everything it shows comes from
// event payloads.
type Renderer struct {
	out        io.Writer
	width      int
	totalClues int
}

// NewRenderer creates a renderer for the given output. When out is a
// terminal the banner width follows the terminal width.
func NewRenderer(out *os.File) *Renderer {
	width := defaultWidth
	if out != nil && term.IsTerminal(int(out.Fd())) {
		if w, _, err := term.GetSize(int(out.Fd())); err == nil && w > 20 {
			width = w
		}
	}
	return &Renderer{out: out, width: width}
}

// NewRendererWithWriter creates a renderer with a fixed width, for
// non-terminal outputs.
func NewRendererWithWriter(out io.Writer) *Renderer {
	return &Renderer{out: out, width: defaultWidth}
}

// Run renders events until the channel closes.
func (r *Renderer) Run(ch <-chan events.Event) {
	for event := range ch {
		r.Render(&event)
	}
}

// Render prints a single event.
func (r *Renderer) Render(event *events.Event) {
	switch event.Type {
	case events.TypeSolvingStarted:
		r.renderStart(event.Data)
	case events.TypeToolCalled:
		r.renderToolCall(event.Data)
	case events.TypeClueSolved:
		r.renderClueSolved(event.Data)
	case events.TypeProgressUpdated:
		r.renderProgress(event.Data)
	case events.TypeSolvingCompleted:
		r.renderCompleted(event.Data)
	case events.TypeSolvingFailed:
		r.renderFailed(event.Data)
	case events.TypeError:
		fmt.Fprintf(r.out, "error: %v\n", event.Data["message"])
	case events.TypeGridUpdated:
		// Too noisy for the terminal; the web UI consumes these.
	}
}

func (r *Renderer) rule() string {
	return strings.Repeat("=", r.width)
}

func (r *Renderer) renderStart(data map[string]any) {
	fmt.Fprintf(r.out, "\n%s\n", r.rule())
	fmt.Fprintf(r.out, "CROSSWORD SOLVING AGENT ACTIVATED\n")
	fmt.Fprintf(r.out, "Puzzle: %v (%vx%v, %v clues)\n",
		data["puzzle"], data["width"], data["height"], data["total_clues"])
	fmt.Fprintf(r.out, "%s\n\n", r.rule())

	if total, ok := toInt(data["total_clues"]); ok {
		r.totalClues = total
	}
}

func (r *Renderer) renderToolCall(data map[string]any) {
	args := ""
	if raw, err := json.Marshal(data["arguments"]); err == nil {
		args = string(raw)
	}
	fmt.Fprintf(r.out, "tool: %v(%s)\n", data["name"], args)
}

func (r *Renderer) renderClueSolved(data map[string]any) {
	fmt.Fprintf(r.out, "  ✓ %v-%v: %v\n", data["clue_number"], data["direction"], data["answer"])
}

func (r *Renderer) renderProgress(data map[string]any) {
	filled, okF := toInt(data["filled"])
	total, okT := toInt(data["total"])
	if !okF || !okT || total == 0 {
		return
	}

	barLength := 40
	if r.width < 60 {
		barLength = r.width - 20
	}
	progress := float64(filled) / float64(total)
	filledLength := int(float64(barLength) * progress)
	bar := strings.Repeat("█", filledLength) + strings.Repeat("░", barLength-filledLength)
	fmt.Fprintf(r.out, "Progress: [%s] %d/%d (%.0f%%)\n", bar, filled, total, progress*100)
}

func (r *Renderer) renderCompleted(data map[string]any) {
	fmt.Fprintf(r.out, "\n%s\n", r.rule())
	fmt.Fprintf(r.out, "PUZZLE SOLVED\n")
	fmt.Fprintf(r.out, "%s\n", r.rule())
	fmt.Fprintf(r.out, "  Iterations:   %v\n", data["iterations"])
	fmt.Fprintf(r.out, "  Tool calls:   %v\n", data["tool_calls"])
	fmt.Fprintf(r.out, "  Time elapsed: %.1fs\n", toFloat(data["time_elapsed"]))
	fmt.Fprintf(r.out, "%s\n", r.rule())
}

func (r *Renderer) renderFailed(data map[string]any) {
	fmt.Fprintf(r.out, "\n%s\n", r.rule())
	fmt.Fprintf(r.out, "SOLVING STOPPED (%v)\n", data["reason"])
	fmt.Fprintf(r.out, "%s\n", r.rule())
	fmt.Fprintf(r.out, "  Progress:     %v/%v clues filled\n", data["filled"], data["total"])
	fmt.Fprintf(r.out, "  Iterations:   %v\n", data["iterations"])
	fmt.Fprintf(r.out, "  Time elapsed: %.1fs\n", toFloat(data["time_elapsed"]))
	fmt.Fprintf(r.out, "%s\n", r.rule())
}

// toInt coerces JSON-decoded numbers, which arrive as float64 after a
// serialization round trip but as int when published in-process.
func toInt(v any) (int, bool) {
	switch n := v.(type) {
	case int:
		return n, true
	case float64:
		return int(n), true
	default:
		return 0, false
	}
}

func toFloat(v any) float64 {
	switch n := v.(type) {
	case float64:
		return n
	case int:
		return float64(n)
	default:
		return 0
	}
}
