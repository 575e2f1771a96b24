package llm

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"

	"github.com/zhy0216/lookout/pkg/types"
)

// anthropicMaxTokens is used when the caller does not cap the reply; the
// Messages API requires an explicit value.
const anthropicMaxTokens = 4096

// AnthropicProvider wraps the Anthropic client for chat completions with tools.
type AnthropicProvider struct {
	client anthropic.Client
	model  string
}

// NewAnthropicProvider creates a new AnthropicProvider.
func NewAnthropicProvider(apiKey, baseURL, model string) *AnthropicProvider {
	opts := []option.RequestOption{
		option.WithAPIKey(apiKey),
		option.WithMaxRetries(0),
	}
	if baseURL != "" {
		opts = append(opts, option.WithBaseURL(baseURL))
	}
	return &AnthropicProvider{
		client: anthropic.NewClient(opts...),
		model:  model,
	}
}

// GetModel returns the model name.
func (a *AnthropicProvider) GetModel() string {
	return a.model
}

func (a *AnthropicProvider) buildRequest(messages []types.Message, toolDefs []map[string]interface{}, cfg types.ChatConfig) anthropic.MessageNewParams {
	var systemBlocks []anthropic.TextBlockParam
	var anthropicMessages []anthropic.MessageParam

	for _, msg := range messages {
		switch msg.Role {
		case types.RoleSystem:
			systemBlocks = append(systemBlocks, anthropic.TextBlockParam{Text: msg.Content})
		case types.RoleUser:
			anthropicMessages = append(anthropicMessages, anthropic.NewUserMessage(anthropic.NewTextBlock(msg.Content)))
		}
	}

	var tools []anthropic.ToolUnionParam
	for _, def := range parseToolDefs(toolDefs) {
		tools = append(tools, anthropic.ToolUnionParam{
			OfTool: &anthropic.ToolParam{
				Name:        def.name,
				Description: anthropic.String(def.description),
				InputSchema: anthropic.ToolInputSchemaParam{
					Properties: def.parameters["properties"],
					Required:   extractRequired(def.parameters["required"]),
				},
			},
		})
	}

	maxTokens := cfg.MaxTokens
	if maxTokens <= 0 {
		maxTokens = anthropicMaxTokens
	}

	params := anthropic.MessageNewParams{
		Model:     anthropic.Model(a.model),
		MaxTokens: maxTokens,
		Messages:  anthropicMessages,
	}
	if len(systemBlocks) > 0 {
		params.System = systemBlocks
	}
	if len(tools) > 0 {
		params.Tools = tools
	}
	return params
}

// Chat sends a chat request.
func (a *AnthropicProvider) Chat(ctx context.Context, messages []types.Message, toolDefs []map[string]interface{}, opts ...types.ChatOption) (*types.ChatResponse, error) {
	params := a.buildRequest(messages, toolDefs, types.ApplyChatOptions(opts))

	msg, err := a.client.Messages.New(ctx, params)
	if err != nil {
		return nil, fmt.Errorf("anthropic chat failed: %w", err)
	}

	response := &types.ChatResponse{
		FinishReason: string(msg.StopReason),
		Usage: types.TokenUsage{
			PromptTokens:     msg.Usage.InputTokens,
			CompletionTokens: msg.Usage.OutputTokens,
			TotalTokens:      msg.Usage.InputTokens + msg.Usage.OutputTokens,
		},
	}

	for _, block := range msg.Content {
		switch block.Type {
		case "tool_use":
			args, err := json.Marshal(block.Input)
			if err != nil {
				return nil, fmt.Errorf("anthropic tool_use input for %s: %w", block.Name, err)
			}
			response.ToolCalls = append(response.ToolCalls, types.NewToolCall(block.ID, block.Name, string(args)))
		case "text":
			response.Content += block.Text
		}
	}

	return response, nil
}

// extractRequired safely extracts a []string from a required field value,
// handling both []string (from Go tool definitions) and []interface{} (from JSON).
func extractRequired(v interface{}) []string {
	switch req := v.(type) {
	case []string:
		return req
	case []interface{}:
		var res []string
		for _, r := range req {
			if s, ok := r.(string); ok {
				res = append(res, s)
			}
		}
		return res
	default:
		return nil
	}
}
