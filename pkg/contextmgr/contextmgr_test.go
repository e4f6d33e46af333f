package contextmgr

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"solver/pkg/oracle"
)

func TestAddMessages(t *testing.T) {
	cm := NewContextManager()
	cm.AddUserMessage("solve this")
	cm.AddAssistantMessage("working on it")
	cm.AddToolResult("set_answer", `{"success":true}`)

	msgs := cm.GetMessages()
	require.Len(t, msgs, 3)
	assert.Equal(t, "user", msgs[0].Role)
	assert.Equal(t, "assistant", msgs[1].Role)
	// Tool results are flattened into user-role text.
	assert.Equal(t, "user", msgs[2].Role)
	assert.Equal(t, `Tool result for set_answer: {"success":true}`, msgs[2].Content)
}

func TestSystemPromptNotInTranscript(t *testing.T) {
	cm := NewContextManager()
	cm.SetSystemPrompt("you are a solver")
	cm.AddUserMessage("hello")

	assert.Equal(t, "you are a solver", cm.SystemPrompt())
	assert.Len(t, cm.GetMessages(), 1)

	completion := cm.CompletionMessages()
	require.Len(t, completion, 2)
	assert.Equal(t, oracle.RoleSystem, completion[0].Role)
	assert.Equal(t, "you are a solver", completion[0].Content)
	assert.Equal(t, oracle.RoleUser, completion[1].Role)
}

func TestShouldCompress(t *testing.T) {
	cm := NewContextManager()

	assert.False(t, cm.ShouldCompress(0))
	assert.False(t, cm.ShouldCompress(14))
	assert.True(t, cm.ShouldCompress(15))
	assert.False(t, cm.ShouldCompress(16))
	assert.True(t, cm.ShouldCompress(30))
	assert.True(t, cm.ShouldCompress(45))
}

func TestCompressReplacesTranscript(t *testing.T) {
	cm := NewContextManager()
	cm.SetSystemPrompt("system")
	for i := 0; i < 20; i++ {
		cm.AddUserMessage(fmt.Sprintf("message %d", i))
	}
	before := cm.CountTokens()

	cm.Compress("state summary: 3 clues filled")

	msgs := cm.GetMessages()
	require.Len(t, msgs, 1)
	assert.Equal(t, "user", msgs[0].Role)
	assert.Equal(t, "state summary: 3 clues filled", msgs[0].Content)

	// System prompt survives compression.
	assert.Equal(t, "system", cm.SystemPrompt())
	assert.Less(t, cm.CountTokens(), before)
}

func TestCountTokensIncludesSystemPrompt(t *testing.T) {
	cm := NewContextManager()
	base := cm.CountTokens()
	cm.SetSystemPrompt("a reasonably long system prompt for counting")
	assert.Greater(t, cm.CountTokens(), base)
}

func TestClear(t *testing.T) {
	cm := NewContextManager()
	cm.AddUserMessage("one")
	cm.AddUserMessage("two")
	cm.Clear()
	assert.Zero(t, cm.GetMessageCount())
}
