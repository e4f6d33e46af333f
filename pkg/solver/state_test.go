package solver

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestStateString(t *testing.T) {
	assert.Equal(t, "INIT", StateInit.String())
	assert.Equal(t, "ITERATING", StateIterating.String())
	assert.Equal(t, "COMPRESSING", StateCompressing.String())
	assert.Equal(t, "COMPLETED", StateCompleted.String())
	assert.Equal(t, "FAILED", StateFailed.String())
}

func TestIsTerminal(t *testing.T) {
	assert.True(t, StateCompleted.IsTerminal())
	assert.True(t, StateFailed.IsTerminal())
	assert.False(t, StateInit.IsTerminal())
	assert.False(t, StateIterating.IsTerminal())
	assert.False(t, StateCompressing.IsTerminal())
}

func TestValidTransitions(t *testing.T) {
	allowed := []struct{ from, to State }{
		{StateInit, StateIterating},
		{StateInit, StateFailed},
		{StateIterating, StateCompressing},
		{StateIterating, StateCompleted},
		{StateIterating, StateFailed},
		{StateCompressing, StateIterating},
		{StateCompressing, StateFailed},
	}
	for _, tt := range allowed {
		assert.True(t, isValidTransition(tt.from, tt.to), "%s -> %s", tt.from, tt.to)
	}

	forbidden := []struct{ from, to State }{
		{StateInit, StateCompleted},
		{StateInit, StateCompressing},
		{StateCompressing, StateCompleted},
		{StateCompleted, StateIterating},
		{StateFailed, StateIterating},
		{StateCompleted, StateFailed},
	}
	for _, tt := range forbidden {
		assert.False(t, isValidTransition(tt.from, tt.to), "%s -> %s", tt.from, tt.to)
	}
}
