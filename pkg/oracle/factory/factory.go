// Package factory constructs oracle clients for configured models. It
// lives outside pkg/oracle so provider implementations can depend on
// the oracle interface types without an import cycle.
package factory

import (
	"fmt"

	"solver/pkg/config"
	"solver/pkg/oracle"
	"solver/pkg/oracle/internal/llmimpl/anthropic"
	"solver/pkg/oracle/internal/llmimpl/google"
	"solver/pkg/oracle/internal/llmimpl/ollama"
	"solver/pkg/oracle/internal/llmimpl/openai"
)

// NewClientForModel creates an oracle client for the given model name,
// wrapped in retry handling. The provider is inferred from the model
// name and the API key is resolved from stored secrets or environment
// variables (for Ollama it is the server URL).
func NewClientForModel(modelName string) (oracle.Client, error) {
	provider, err := config.GetModelProvider(modelName)
	if err != nil {
		return nil, fmt.Errorf("failed to determine provider for model %s: %w", modelName, err)
	}

	apiKey, err := config.GetAPIKey(provider)
	if err != nil {
		return nil, fmt.Errorf("failed to get API key for provider %s: %w", provider, err)
	}

	var rawClient oracle.Client
	switch provider {
	case config.ProviderAnthropic:
		rawClient = anthropic.NewClaudeClient(apiKey, modelName)
	case config.ProviderOpenAI:
		rawClient = openai.NewClient(apiKey, modelName)
	case config.ProviderGoogle:
		rawClient = google.NewGeminiClient(apiKey, modelName)
	case config.ProviderOllama:
		rawClient = ollama.NewClient(apiKey, modelName)
	default:
		return nil, fmt.Errorf("unsupported provider: %s", provider)
	}

	return oracle.NewRetryableClient(rawClient), nil
}
