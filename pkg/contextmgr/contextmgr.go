// Package contextmgr manages the oracle conversation transcript and its
// periodic compression.
package contextmgr

import (
	"fmt"
	"strings"

	"solver/pkg/config"
	"solver/pkg/oracle"
	"solver/pkg/utils"
)

// Message represents a single message in the conversation context.
type Message struct {
	Role    string
	Content string
}

// ContextManager manages conversation context and token counting.
// The system prompt is held separately from the transcript so that
// compression can rebuild the context without losing it.
type ContextManager struct {
	tokenCounter *utils.TokenCounter
	systemPrompt string
	messages     []Message
	compressions int
}

// NewContextManager creates a new context manager instance.
func NewContextManager() *ContextManager {
	return &ContextManager{
		messages: make([]Message, 0),
	}
}

// NewContextManagerWithModel creates a context manager that counts
// tokens with the tokenizer for the given model.
func NewContextManagerWithModel(model string) *ContextManager {
	cm := NewContextManager()
	// Token counter failure leaves cm.tokenCounter nil and falls back
	// to character-based estimation.
	if counter, err := utils.NewTokenCounter(model); err == nil {
		cm.tokenCounter = counter
	}
	return cm
}

// SetSystemPrompt stores the system prompt. It survives compression
// verbatim.
func (cm *ContextManager) SetSystemPrompt(prompt string) {
	cm.systemPrompt = prompt
}

// SystemPrompt returns the stored system prompt.
func (cm *ContextManager) SystemPrompt() string {
	return cm.systemPrompt
}

// AddMessage stores a role/content pair in the transcript.
func (cm *ContextManager) AddMessage(role, content string) {
	cm.messages = append(cm.messages, Message{Role: role, Content: content})
}

// AddUserMessage appends a user message to the transcript.
func (cm *ContextManager) AddUserMessage(content string) {
	cm.AddMessage(string(oracle.RoleUser), content)
}

// AddAssistantMessage appends an assistant message to the transcript.
func (cm *ContextManager) AddAssistantMessage(content string) {
	cm.AddMessage(string(oracle.RoleAssistant), content)
}

// AddToolResult appends a tool result to the transcript. Tool calls and
// their results are carried as plain text so every provider sees the
// same conversation shape.
func (cm *ContextManager) AddToolResult(toolName, result string) {
	cm.AddMessage(string(oracle.RoleUser), fmt.Sprintf("Tool result for %s: %s", toolName, result))
}

// CountTokens returns the token count of the full context, including
// the system prompt.
func (cm *ContextManager) CountTokens() int {
	total := cm.countText(cm.systemPrompt)
	for i := range cm.messages {
		total += cm.countText(cm.messages[i].Content)
	}
	return total
}

func (cm *ContextManager) countText(text string) int {
	if cm.tokenCounter != nil {
		return cm.tokenCounter.CountTokens(text)
	}
	// 4 chars ≈ 1 token
	return len(text) / 4
}

// ShouldCompress reports whether the transcript is due for compression
// after the given completed iteration count.
func (cm *ContextManager) ShouldCompress(iteration int) bool {
	return iteration > 0 && iteration%config.CompressionInterval == 0
}

// Compress replaces the transcript with a single user message carrying
// the supplied state summary. The system prompt is untouched; the
// caller builds the summary from authoritative state (grid and ledger)
// so no solved answer is lost.
func (cm *ContextManager) Compress(stateSummary string) {
	cm.messages = cm.messages[:0]
	cm.messages = append(cm.messages, Message{
		Role:    string(oracle.RoleUser),
		Content: stateSummary,
	})
	cm.compressions++
}

// CompressionCount returns how many times the transcript has been
// compressed.
func (cm *ContextManager) CompressionCount() int {
	return cm.compressions
}

// GetMessages returns a copy of all transcript messages.
func (cm *ContextManager) GetMessages() []Message {
	result := make([]Message, len(cm.messages))
	copy(result, cm.messages)
	return result
}

// CompletionMessages builds the full message list for an oracle call,
// system prompt first.
func (cm *ContextManager) CompletionMessages() []oracle.CompletionMessage {
	result := make([]oracle.CompletionMessage, 0, len(cm.messages)+1)
	if cm.systemPrompt != "" {
		result = append(result, oracle.NewSystemMessage(cm.systemPrompt))
	}
	for i := range cm.messages {
		result = append(result, oracle.CompletionMessage{
			Role:    oracle.CompletionRole(cm.messages[i].Role),
			Content: cm.messages[i].Content,
		})
	}
	return result
}

// Clear removes all messages from the transcript.
func (cm *ContextManager) Clear() {
	cm.messages = cm.messages[:0]
}

// GetMessageCount returns the number of transcript messages.
func (cm *ContextManager) GetMessageCount() int {
	return len(cm.messages)
}

// GetContextSummary returns a brief summary of the context state.
func (cm *ContextManager) GetContextSummary() string {
	messageCount := len(cm.messages)
	tokenCount := cm.CountTokens()

	if messageCount == 0 {
		return "Empty context"
	}

	roleCounts := make(map[string]int)
	for i := range cm.messages {
		roleCounts[cm.messages[i].Role]++
	}

	var roleBreakdown []string
	for role, count := range roleCounts {
		roleBreakdown = append(roleBreakdown, fmt.Sprintf("%s: %d", role, count))
	}

	return fmt.Sprintf("%d messages (%d tokens) - %s",
		messageCount, tokenCount, strings.Join(roleBreakdown, ", "))
}
