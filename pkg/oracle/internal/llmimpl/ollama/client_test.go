package ollama

import (
	"testing"

	"github.com/ollama/ollama/api"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"solver/pkg/tools"
)

func TestConvertTools(t *testing.T) {
	defs := []tools.ToolDefinition{
		{
			Name:        "set_answer",
			Description: "Commit an answer to the grid.",
			InputSchema: tools.InputSchema{
				Type: "object",
				Properties: map[string]tools.Property{
					"clue_number": {Type: "integer", Description: "Clue number"},
					"direction":   {Type: "string", Enum: []string{"across", "down"}},
				},
				Required: []string{"clue_number", "direction"},
			},
		},
	}

	converted := convertTools(defs)
	require.Len(t, converted, 1)
	fn := converted[0].Function
	assert.Equal(t, "set_answer", fn.Name)
	assert.Equal(t, "object", fn.Parameters.Type)
	assert.Equal(t, []string{"clue_number", "direction"}, fn.Parameters.Required)
	require.Equal(t, 2, fn.Parameters.Properties.Len())

	num, ok := fn.Parameters.Properties.Get("clue_number")
	require.True(t, ok)
	assert.Equal(t, api.PropertyType{"integer"}, num.Type)
	assert.Equal(t, "Clue number", num.Description)

	dir, ok := fn.Parameters.Properties.Get("direction")
	require.True(t, ok)
	assert.Equal(t, []any{"across", "down"}, dir.Enum)
}

func TestConvertToolCalls(t *testing.T) {
	args := api.NewToolCallFunctionArguments()
	args.Set("clue_number", 1)
	args.Set("direction", "across")

	calls := convertToolCalls([]api.ToolCall{
		{Function: api.ToolCallFunction{Name: "set_answer", Arguments: args}},
		{ID: "abc123", Function: api.ToolCallFunction{Name: "undo_last"}},
	})

	require.Len(t, calls, 2)
	assert.Equal(t, "call_0", calls[0].ID)
	assert.Equal(t, "set_answer", calls[0].Name)
	assert.Equal(t, map[string]any{"clue_number": 1, "direction": "across"}, calls[0].Parameters)

	assert.Equal(t, "abc123", calls[1].ID)
	assert.Empty(t, calls[1].Parameters)
}
