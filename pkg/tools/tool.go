// Package tools provides the solving tools exposed to the oracle and the
// registry that manages them.
package tools

import "context"

// Tool names. The set is closed: these seven operations are the entire
// surface the oracle can drive.
const (
	ToolSetAnswer         = "set_answer"
	ToolValidateClue      = "validate_clue"
	ToolValidateAll       = "validate_all"
	ToolCheckIntersection = "check_intersection"
	ToolGetConstraints    = "get_constraints"
	ToolUndoLast          = "undo_last"
	ToolGetCurrentGrid    = "get_current_grid"
)

// AllToolNames lists every registered solving tool.
//
//nolint:gochecknoglobals // Static list
var AllToolNames = []string{
	ToolSetAnswer,
	ToolValidateClue,
	ToolValidateAll,
	ToolCheckIntersection,
	ToolGetConstraints,
	ToolUndoLast,
	ToolGetCurrentGrid,
}

// Structured error kinds surfaced to the oracle inside tool results.
// These never cross the tool boundary as Go errors.
const (
	ErrKindLengthMismatch       = "length_mismatch"
	ErrKindIntersectionConflict = "intersection_conflict"
	ErrKindAlreadyTried         = "already_tried"
	ErrKindNotYetAnswered       = "not_yet_answered"
	ErrKindNothingToUndo        = "nothing_to_undo"
)

// contextKey is a private type for context values passed to tools.
type contextKey string

// IterationContextKey carries the current session iteration into tool
// execution so attempts are logged against the right iteration.
const IterationContextKey contextKey = "iteration"

// IterationFromContext extracts the current iteration, defaulting to 0.
func IterationFromContext(ctx context.Context) int {
	if v := ctx.Value(IterationContextKey); v != nil {
		if i, ok := v.(int); ok {
			return i
		}
	}
	return 0
}

// Property defines a single parameter in a tool's input schema.
type Property struct {
	Type        string               `json:"type"`
	Description string               `json:"description,omitempty"`
	Enum        []string             `json:"enum,omitempty"`
	Items       *Property            `json:"items,omitempty"`
	Properties  map[string]*Property `json:"properties,omitempty"`
	MinItems    *int                 `json:"minItems,omitempty"`
	MaxItems    *int                 `json:"maxItems,omitempty"`
}

// InputSchema is the JSON schema for a tool's arguments.
type InputSchema struct {
	Type       string              `json:"type"`
	Properties map[string]Property `json:"properties,omitempty"`
	Required   []string            `json:"required,omitempty"`
}

// ToolDefinition is the tool schema advertised to the oracle, in Claude
// API format.
type ToolDefinition struct {
	Name        string      `json:"name"`
	Description string      `json:"description"`
	InputSchema InputSchema `json:"input_schema"`
}

// Tool is one solving operation callable by the oracle. Exec returns a
// structured result map; argument problems are reported inside the
// result, not as Go errors.
type Tool interface {
	Definition() ToolDefinition
	Name() string
	PromptDocumentation() string
	Exec(ctx context.Context, args map[string]any) (any, error)
}

// errorResult builds the standard failure payload for a tool result.
func errorResult(kind, message string) map[string]any {
	return map[string]any{
		"success":    false,
		"error_kind": kind,
		"message":    message,
	}
}
