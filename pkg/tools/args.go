package tools

import (
	"fmt"

	"solver/pkg/puzzle"
)

// clueArgs extracts and validates the (clue_number, direction) pair every
// clue-addressed tool takes.
func clueArgs(args map[string]any) (int, puzzle.Direction, error) {
	numberVal, ok := args["clue_number"]
	if !ok {
		return 0, "", fmt.Errorf("clue_number parameter is required")
	}

	var number int
	switch v := numberVal.(type) {
	case int:
		number = v
	case float64:
		number = int(v)
	default:
		return 0, "", fmt.Errorf("clue_number must be an integer")
	}

	dirStr, ok := args["direction"].(string)
	if !ok {
		return 0, "", fmt.Errorf("direction parameter is required")
	}
	dir, err := puzzle.ParseDirection(dirStr)
	if err != nil {
		return 0, "", err
	}
	return number, dir, nil
}

// stringArg extracts a required string parameter.
func stringArg(args map[string]any, name string) (string, error) {
	val, ok := args[name].(string)
	if !ok || val == "" {
		return "", fmt.Errorf("%s parameter is required", name)
	}
	return val, nil
}

// clueProperty is the shared schema fragment for clue identification.
func clueProperties() map[string]Property {
	return map[string]Property{
		"clue_number": {
			Type:        "integer",
			Description: "The clue number",
		},
		"direction": {
			Type:        "string",
			Description: "The direction of the clue",
			Enum:        []string{string(puzzle.Across), string(puzzle.Down)},
		},
	}
}
