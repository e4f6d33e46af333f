// Package openai provides the OpenAI implementation of the oracle.Client
// interface using the official OpenAI Go package.
package openai

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
	"github.com/openai/openai-go/responses"

	"solver/pkg/oracle"
	"solver/pkg/oracle/llmerrors"
	"solver/pkg/tools"
)

// Client wraps the official OpenAI Go client to implement oracle.Client.
type Client struct {
	client openai.Client
	model  string
}

// NewClient creates a new OpenAI client for the given model (raw client,
// retry wrapper applied at a higher level).
func NewClient(apiKey, model string) oracle.Client {
	return &Client{
		client: openai.NewClient(option.WithAPIKey(apiKey)),
		model:  model,
	}
}

// convertPropertyToSchema recursively converts a Property to OpenAI
// schema format.
func convertPropertyToSchema(prop *tools.Property) map[string]interface{} {
	schema := map[string]interface{}{
		"type":        prop.Type,
		"description": prop.Description,
	}
	if len(prop.Enum) > 0 {
		schema["enum"] = prop.Enum
	}
	if prop.Type == "array" && prop.Items != nil {
		schema["items"] = convertPropertyToSchema(prop.Items)
	}
	if prop.Type == "object" && prop.Properties != nil {
		properties := make(map[string]interface{})
		for name, childProp := range prop.Properties {
			if childProp != nil {
				properties[name] = convertPropertyToSchema(childProp)
			}
		}
		schema["properties"] = properties
	}
	return schema
}

// Complete implements the oracle.Client interface using the Responses API.
func (o *Client) Complete(ctx context.Context, in oracle.CompletionRequest) (oracle.CompletionResponse, error) {
	// The Responses API takes a single input string; fold the
	// conversation into it with role prefixes.
	var inputText string
	for i := range in.Messages {
		msg := &in.Messages[i]
		switch msg.Role {
		case oracle.RoleSystem:
			inputText += fmt.Sprintf("System: %s\n\n", msg.Content)
		case oracle.RoleUser:
			inputText += msg.Content + "\n\n"
		case oracle.RoleAssistant:
			inputText += fmt.Sprintf("Assistant: %s\n\n", msg.Content)
		}
	}

	params := responses.ResponseNewParams{
		Model:           o.model,
		MaxOutputTokens: openai.Int(int64(in.MaxTokens)),
		Input:           responses.ResponseNewParamsInputUnion{OfString: openai.String(inputText)},
	}

	if len(in.Tools) > 0 {
		toolParams := make([]responses.ToolUnionParam, len(in.Tools))
		for i := range in.Tools {
			tool := &in.Tools[i]
			properties := make(map[string]interface{})
			for name, prop := range tool.InputSchema.Properties {
				properties[name] = convertPropertyToSchema(&prop)
			}
			toolParams[i] = responses.ToolUnionParam{
				OfFunction: &responses.FunctionToolParam{
					Name:        tool.Name,
					Description: openai.String(tool.Description),
					Parameters: openai.FunctionParameters(map[string]interface{}{
						"type":       "object",
						"properties": properties,
						"required":   tool.InputSchema.Required,
					}),
				},
			}
		}
		params.Tools = toolParams
	}

	resp, err := o.client.Responses.New(ctx, params)
	if err != nil {
		return oracle.CompletionResponse{}, classifyError(err)
	}
	if resp == nil {
		return oracle.CompletionResponse{}, llmerrors.NewError(llmerrors.ErrorTypeEmptyResponse, "empty response from OpenAI Responses API")
	}

	var content string
	var toolCalls []oracle.ToolCall
	for i := range resp.Output {
		item := &resp.Output[i]
		switch item.Type {
		case "function_call":
			funcItem := item.AsFunctionCall()
			var parameters map[string]interface{}
			if funcItem.Arguments != "" {
				if err := json.Unmarshal([]byte(funcItem.Arguments), &parameters); err != nil {
					continue
				}
			}
			toolCalls = append(toolCalls, oracle.ToolCall{
				ID:         funcItem.ID,
				Name:       funcItem.Name,
				Parameters: parameters,
			})
		default:
			// Text is collected via OutputText below; reasoning output
			// never enters the transcript.
			continue
		}
	}
	if content == "" {
		content = resp.OutputText()
	}

	return oracle.CompletionResponse{
		Content:   content,
		ToolCalls: toolCalls,
	}, nil
}

// Stream implements the oracle.Client interface.
func (o *Client) Stream(ctx context.Context, in oracle.CompletionRequest) (<-chan oracle.StreamChunk, error) {
	ch := make(chan oracle.StreamChunk, 1)
	go func() {
		defer close(ch)
		resp, err := o.Complete(ctx, in)
		if err != nil {
			ch <- oracle.StreamChunk{Error: err}
			return
		}
		ch <- oracle.StreamChunk{Content: resp.Content}
		ch <- oracle.StreamChunk{Done: true}
	}()
	return ch, nil
}

// GetModelName returns the model name for this client.
func (o *Client) GetModelName() string {
	return o.model
}

// classifyError maps OpenAI SDK errors to our structured error types.
func classifyError(err error) *llmerrors.Error {
	lower := strings.ToLower(err.Error())
	switch {
	case strings.Contains(lower, "429"), strings.Contains(lower, "rate"), strings.Contains(lower, "quota"):
		return llmerrors.NewErrorWithCause(llmerrors.ErrorTypeRateLimit, err, "rate limit exceeded")
	case strings.Contains(lower, "401"), strings.Contains(lower, "403"), strings.Contains(lower, "auth"):
		return llmerrors.NewErrorWithCause(llmerrors.ErrorTypeAuth, err, "authentication failed - check API key")
	case strings.Contains(lower, "400"), strings.Contains(lower, "invalid"):
		return llmerrors.NewErrorWithCause(llmerrors.ErrorTypeBadPrompt, err, "bad request")
	case strings.Contains(lower, "500"), strings.Contains(lower, "502"), strings.Contains(lower, "503"),
		strings.Contains(lower, "504"), strings.Contains(lower, "timeout"), strings.Contains(lower, "connection"):
		return llmerrors.NewErrorWithCause(llmerrors.ErrorTypeTransient, err, "server or network error")
	default:
		return llmerrors.NewErrorWithCause(llmerrors.ErrorTypeUnknown, err, "unclassified error")
	}
}
