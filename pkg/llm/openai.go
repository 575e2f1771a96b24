package llm

import (
	"context"
	"errors"
	"fmt"

	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
	"github.com/openai/openai-go/responses"
	"github.com/openai/openai-go/shared"

	"github.com/zhy0216/lookout/pkg/config"
	"github.com/zhy0216/lookout/pkg/types"
)

// OpenAIProvider wraps the OpenAI client for chat completions with tools.
type OpenAIProvider struct {
	client  openai.Client
	model   string
	apiType string // "chat" or "responses"
}

// NewOpenAIProvider creates a new OpenAIProvider. Retries are disabled; a
// failed call surfaces immediately.
func NewOpenAIProvider(apiKey, baseURL, model, apiType string) *OpenAIProvider {
	opts := []option.RequestOption{
		option.WithAPIKey(apiKey),
		option.WithMaxRetries(0),
	}
	if baseURL != "" {
		opts = append(opts, option.WithBaseURL(baseURL))
	}

	return &OpenAIProvider{
		client:  openai.NewClient(opts...),
		model:   model,
		apiType: apiType,
	}
}

// GetModel returns the model name.
func (c *OpenAIProvider) GetModel() string {
	return c.model
}

// Chat sends a chat request, dispatching to the appropriate API based on apiType.
func (c *OpenAIProvider) Chat(ctx context.Context, messages []types.Message, toolDefs []map[string]interface{}, opts ...types.ChatOption) (*types.ChatResponse, error) {
	cfg := types.ApplyChatOptions(opts)
	if c.apiType == config.APITypeResponses {
		return c.chatViaResponses(ctx, messages, toolDefs, cfg)
	}
	return c.chatViaCompletions(ctx, messages, toolDefs, cfg)
}

// chatViaCompletions sends a chat completion request using the Chat Completions API.
func (c *OpenAIProvider) chatViaCompletions(ctx context.Context, messages []types.Message, toolDefs []map[string]interface{}, cfg types.ChatConfig) (*types.ChatResponse, error) {
	openaiMessages := make([]openai.ChatCompletionMessageParamUnion, 0, len(messages))
	for _, msg := range messages {
		switch msg.Role {
		case types.RoleSystem:
			openaiMessages = append(openaiMessages, openai.SystemMessage(msg.Content))
		case types.RoleUser:
			openaiMessages = append(openaiMessages, openai.UserMessage(msg.Content))
		}
	}

	var tools []openai.ChatCompletionToolParam
	for _, def := range parseToolDefs(toolDefs) {
		tools = append(tools, openai.ChatCompletionToolParam{
			Type: "function",
			Function: shared.FunctionDefinitionParam{
				Name:        def.name,
				Description: openai.String(def.description),
				Parameters:  shared.FunctionParameters(def.parameters),
			},
		})
	}

	params := openai.ChatCompletionNewParams{
		Model:    c.model,
		Messages: openaiMessages,
	}
	if len(tools) > 0 {
		params.Tools = tools
	}
	if cfg.MaxTokens > 0 {
		params.MaxCompletionTokens = openai.Int(cfg.MaxTokens)
	}

	completion, err := c.client.Chat.Completions.New(ctx, params)
	if err != nil {
		return nil, wrapAPIError("chat completion failed", err)
	}

	if len(completion.Choices) == 0 {
		return nil, fmt.Errorf("no choices in response")
	}

	choice := completion.Choices[0]
	response := &types.ChatResponse{
		Content:      choice.Message.Content,
		FinishReason: string(choice.FinishReason),
		Usage: types.TokenUsage{
			PromptTokens:     completion.Usage.PromptTokens,
			CompletionTokens: completion.Usage.CompletionTokens,
			TotalTokens:      completion.Usage.TotalTokens,
		},
	}

	for _, tc := range choice.Message.ToolCalls {
		response.ToolCalls = append(response.ToolCalls, types.NewToolCall(tc.ID, tc.Function.Name, tc.Function.Arguments))
	}

	return response, nil
}

// chatViaResponses sends a chat request using the Responses API.
func (c *OpenAIProvider) chatViaResponses(ctx context.Context, messages []types.Message, toolDefs []map[string]interface{}, cfg types.ChatConfig) (*types.ChatResponse, error) {
	var instructions string
	var input responses.ResponseInputParam
	for _, msg := range messages {
		switch msg.Role {
		case types.RoleSystem:
			instructions = msg.Content
		case types.RoleUser:
			input = append(input, responses.ResponseInputItemUnionParam{
				OfMessage: &responses.EasyInputMessageParam{
					Role: responses.EasyInputMessageRoleUser,
					Content: responses.EasyInputMessageContentUnionParam{
						OfString: openai.String(msg.Content),
					},
				},
			})
		}
	}

	var tools []responses.ToolUnionParam
	for _, def := range parseToolDefs(toolDefs) {
		tools = append(tools, responses.ToolUnionParam{
			OfFunction: &responses.FunctionToolParam{
				Name:        def.name,
				Description: openai.String(def.description),
				Parameters:  def.parameters,
			},
		})
	}

	reqParams := responses.ResponseNewParams{
		Model: c.model,
		Input: responses.ResponseNewParamsInputUnion{
			OfInputItemList: input,
		},
	}
	if instructions != "" {
		reqParams.Instructions = openai.String(instructions)
	}
	if len(tools) > 0 {
		reqParams.Tools = tools
	}
	if cfg.MaxTokens > 0 {
		reqParams.MaxOutputTokens = openai.Int(cfg.MaxTokens)
	}

	resp, err := c.client.Responses.New(ctx, reqParams)
	if err != nil {
		return nil, wrapAPIError("responses API call failed", err)
	}

	response := &types.ChatResponse{
		Usage: types.TokenUsage{
			PromptTokens:     resp.Usage.InputTokens,
			CompletionTokens: resp.Usage.OutputTokens,
			TotalTokens:      resp.Usage.TotalTokens,
		},
	}
	for _, item := range resp.Output {
		switch item.Type {
		case "message":
			for _, content := range item.Content {
				if content.Type == "output_text" {
					response.Content += content.Text
				}
			}
		case "function_call":
			response.ToolCalls = append(response.ToolCalls, types.NewToolCall(item.CallID, item.Name, item.Arguments))
		}
	}

	if len(response.ToolCalls) > 0 {
		response.FinishReason = "tool_calls"
	} else {
		response.FinishReason = "stop"
	}

	return response, nil
}

// wrapAPIError wraps an API error with context information, extracting HTTP
// status codes from openai.Error when available.
func wrapAPIError(context string, err error) error {
	var apiErr *openai.Error
	if errors.As(err, &apiErr) {
		return fmt.Errorf("%s: HTTP %d: %w", context, apiErr.StatusCode, err)
	}
	return fmt.Errorf("%s: %w", context, err)
}
