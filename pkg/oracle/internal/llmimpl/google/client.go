// Package google provides the Google Gemini implementation of the
// oracle.Client interface.
package google

import (
	"context"
	"fmt"

	"google.golang.org/genai"

	"solver/pkg/oracle"
	"solver/pkg/oracle/llmerrors"
	"solver/pkg/tools"
)

// GeminiClient wraps the Google GenAI client to implement oracle.Client.
type GeminiClient struct {
	client *genai.Client
	apiKey string
	model  string
}

// NewGeminiClient creates a new Gemini client for the given model.
// The underlying genai client requires a context, so creation is
// deferred to the first Complete call.
func NewGeminiClient(apiKey, model string) oracle.Client {
	return &GeminiClient{
		client: nil,
		apiKey: apiKey,
		model:  model,
	}
}

// Complete implements the oracle.Client interface.
func (g *GeminiClient) Complete(ctx context.Context, in oracle.CompletionRequest) (oracle.CompletionResponse, error) {
	if g.client == nil {
		client, err := genai.NewClient(ctx, &genai.ClientConfig{
			APIKey:  g.apiKey,
			Backend: genai.BackendGeminiAPI,
		})
		if err != nil {
			return oracle.CompletionResponse{}, llmerrors.NewError(llmerrors.ErrorTypeAuth, fmt.Sprintf("failed to create Gemini client: %v", err))
		}
		g.client = client
	}

	contents, systemInstruction, err := convertMessages(in.Messages)
	if err != nil {
		return oracle.CompletionResponse{}, llmerrors.NewError(llmerrors.ErrorTypeBadPrompt, fmt.Sprintf("message conversion error: %v", err))
	}

	maxTokens := int32(in.MaxTokens)
	config := &genai.GenerateContentConfig{
		Temperature:     &in.Temperature,
		MaxOutputTokens: maxTokens,
	}
	if systemInstruction != "" {
		config.SystemInstruction = &genai.Content{
			Parts: []*genai.Part{{Text: systemInstruction}},
		}
	}

	if len(in.Tools) > 0 {
		config.Tools = []*genai.Tool{
			{FunctionDeclarations: convertTools(in.Tools)},
		}
		// Gemini may return empty responses when not forced to use
		// tools. Mode "ANY" ensures it always calls one of them.
		config.ToolConfig = &genai.ToolConfig{
			FunctionCallingConfig: &genai.FunctionCallingConfig{
				Mode: genai.FunctionCallingConfigModeAny,
			},
		}
	}

	result, err := g.client.Models.GenerateContent(ctx, g.model, contents, config)
	if err != nil {
		return oracle.CompletionResponse{}, llmerrors.NewError(llmerrors.ErrorTypeUnknown, fmt.Sprintf("Gemini API call failed: %v", err))
	}
	if result == nil {
		return oracle.CompletionResponse{}, llmerrors.NewError(llmerrors.ErrorTypeEmptyResponse, "empty response from Gemini API")
	}

	response := oracle.CompletionResponse{
		Content:    result.Text(),
		StopReason: "end_turn",
	}
	if functionCalls := result.FunctionCalls(); len(functionCalls) > 0 {
		response.ToolCalls = convertFunctionCalls(functionCalls)
	}
	return response, nil
}

// Stream implements the oracle.Client interface (stub - not used).
func (g *GeminiClient) Stream(_ context.Context, _ oracle.CompletionRequest) (<-chan oracle.StreamChunk, error) {
	return nil, llmerrors.NewError(llmerrors.ErrorTypeUnknown, "streaming not implemented for Gemini client")
}

// GetModelName returns the model name for this client.
func (g *GeminiClient) GetModelName() string {
	return g.model
}

// convertMessages converts our message format to Gemini's Content format.
// System messages are pulled out into a separate system instruction.
func convertMessages(messages []oracle.CompletionMessage) ([]*genai.Content, string, error) {
	if len(messages) == 0 {
		return nil, "", fmt.Errorf("message list cannot be empty")
	}

	var systemInstruction string
	var contents []*genai.Content

	for i := range messages {
		msg := &messages[i]

		if msg.Role == oracle.RoleSystem {
			if systemInstruction != "" {
				systemInstruction += "\n\n" + msg.Content
			} else {
				systemInstruction = msg.Content
			}
			continue
		}

		var role string
		switch msg.Role {
		case oracle.RoleUser:
			role = "user"
		case oracle.RoleAssistant:
			role = "model" // Gemini uses "model" instead of "assistant"
		default:
			return nil, "", fmt.Errorf("unsupported message role: %s", msg.Role)
		}

		if msg.Content == "" {
			continue
		}
		contents = append(contents, &genai.Content{
			Role:  role,
			Parts: []*genai.Part{{Text: msg.Content}},
		})
	}

	return contents, systemInstruction, nil
}

// convertTools converts our tool definitions to Gemini's function declarations.
func convertTools(toolDefs []tools.ToolDefinition) []*genai.FunctionDeclaration {
	declarations := make([]*genai.FunctionDeclaration, len(toolDefs))

	for i := range toolDefs {
		tool := &toolDefs[i]
		properties := make(map[string]*genai.Schema)
		for propName, prop := range tool.InputSchema.Properties {
			properties[propName] = convertPropertySchema(&prop)
		}
		declarations[i] = &genai.FunctionDeclaration{
			Name:        tool.Name,
			Description: tool.Description,
			Parameters: &genai.Schema{
				Type:       genai.TypeObject,
				Properties: properties,
				Required:   tool.InputSchema.Required,
			},
		}
	}

	return declarations
}

// convertPropertySchema recursively converts a Property to Gemini schema format.
func convertPropertySchema(prop *tools.Property) *genai.Schema {
	schema := &genai.Schema{
		Description: prop.Description,
	}

	switch prop.Type {
	case "string":
		schema.Type = genai.TypeString
	case "number":
		schema.Type = genai.TypeNumber
	case "integer":
		schema.Type = genai.TypeInteger
	case "boolean":
		schema.Type = genai.TypeBoolean
	case "array":
		schema.Type = genai.TypeArray
		if prop.Items != nil {
			schema.Items = convertPropertySchema(prop.Items)
		}
	case "object":
		schema.Type = genai.TypeObject
		if prop.Properties != nil {
			properties := make(map[string]*genai.Schema)
			for name, childProp := range prop.Properties {
				if childProp != nil {
					properties[name] = convertPropertySchema(childProp)
				}
			}
			schema.Properties = properties
		}
	default:
		schema.Type = genai.TypeString
	}

	if len(prop.Enum) > 0 {
		schema.Enum = prop.Enum
	}

	return schema
}

// convertFunctionCalls converts Gemini function calls to our format.
func convertFunctionCalls(calls []*genai.FunctionCall) []oracle.ToolCall {
	toolCalls := make([]oracle.ToolCall, len(calls))

	for i := range calls {
		call := calls[i]
		// Gemini doesn't always provide call IDs, so fall back to the name.
		id := call.ID
		if id == "" {
			id = call.Name
		}
		toolCalls[i] = oracle.ToolCall{
			ID:         id,
			Name:       call.Name,
			Parameters: call.Args,
		}
	}

	return toolCalls
}
