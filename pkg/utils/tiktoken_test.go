package utils

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"solver/pkg/config"
)

func TestCountTokens(t *testing.T) {
	tc, err := NewTokenCounter(config.ModelClaudeSonnet4)
	require.NoError(t, err)

	assert.Zero(t, tc.CountTokens(""))
	assert.Greater(t, tc.CountTokens("Fill in the crossword grid one clue at a time."), 5)
}

func TestCountTokensFallback(t *testing.T) {
	tc := &TokenCounter{}
	assert.Equal(t, 2, tc.CountTokens("12345678"))
}

func TestCountTokensSimple(t *testing.T) {
	assert.Greater(t, CountTokensSimple("hello crossword world"), 0)
}

func TestValidateTokenLimit(t *testing.T) {
	tc, err := NewTokenCounter(config.ModelGPT4o)
	require.NoError(t, err)

	assert.True(t, tc.ValidateTokenLimit("short", 100))
	assert.False(t, tc.ValidateTokenLimit("this text is definitely longer than one token", 1))
}
