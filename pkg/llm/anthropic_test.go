package llm

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/zhy0216/lookout/pkg/types"
)

func anthropicMessage(content []map[string]interface{}, stopReason string) map[string]interface{} {
	return map[string]interface{}{
		"id":          "msg_123",
		"type":        "message",
		"role":        "assistant",
		"model":       "claude-3-5-haiku-latest",
		"content":     content,
		"stop_reason": stopReason,
		"usage": map[string]interface{}{
			"input_tokens":  10,
			"output_tokens": 5,
		},
	}
}

func TestNewAnthropicProvider(t *testing.T) {
	p := NewAnthropicProvider("sk-ant-test", "https://custom.api.com", "claude-3-5-haiku-latest")
	assert.Equal(t, "claude-3-5-haiku-latest", p.GetModel())
}

func TestAnthropicChat_TextResponse(t *testing.T) {
	var req map[string]interface{}
	server := recordingServer(t, anthropicMessage([]map[string]interface{}{
		{"type": "text", "text": "Hello from Claude!"},
	}, "end_turn"), &req)

	p := NewAnthropicProvider("sk-ant-test", server.URL, "claude-3-5-haiku-latest")
	resp, err := p.Chat(context.Background(), []types.Message{
		{Role: types.RoleSystem, Content: types.SystemPrompt},
		{Role: types.RoleUser, Content: "Hello"},
	}, nil)
	require.NoError(t, err)

	assert.Equal(t, "Hello from Claude!", resp.Content)
	assert.Equal(t, "end_turn", resp.FinishReason)
	assert.Equal(t, int64(10), resp.Usage.PromptTokens)
	assert.Equal(t, int64(5), resp.Usage.CompletionTokens)
	assert.Equal(t, int64(15), resp.Usage.TotalTokens)

	assert.EqualValues(t, anthropicMaxTokens, req["max_tokens"])
	system, ok := req["system"].([]interface{})
	require.True(t, ok)
	require.Len(t, system, 1)
	assert.Equal(t, types.SystemPrompt, system[0].(map[string]interface{})["text"])
	msgs := req["messages"].([]interface{})
	require.Len(t, msgs, 1, "system prompt must not be sent as a message")
}

func TestAnthropicChat_WithToolCall(t *testing.T) {
	var req map[string]interface{}
	server := recordingServer(t, anthropicMessage([]map[string]interface{}{
		{
			"type": "tool_use",
			"id":   "toolu_123",
			"name": "get_weather_forecast",
			"input": map[string]interface{}{
				"city":  "Seattle",
				"state": "WA",
			},
		},
	}, "tool_use"), &req)

	p := NewAnthropicProvider("sk-ant-test", server.URL, "claude-3-5-haiku-latest")
	resp, err := p.Chat(context.Background(), []types.Message{{Role: types.RoleUser, Content: "Weather in Seattle?"}},
		forecastToolDefs, types.WithMaxTokens(200))
	require.NoError(t, err)

	require.Len(t, resp.ToolCalls, 1)
	tc := resp.ToolCalls[0]
	assert.Equal(t, "toolu_123", tc.ID)
	assert.Equal(t, "function", tc.Type)
	assert.Equal(t, "get_weather_forecast", tc.Function.Name)
	assert.JSONEq(t, `{"city":"Seattle","state":"WA"}`, tc.Function.Arguments)

	assert.EqualValues(t, 200, req["max_tokens"])
	tools := req["tools"].([]interface{})
	require.Len(t, tools, 1)
	tool := tools[0].(map[string]interface{})
	assert.Equal(t, "get_weather_forecast", tool["name"])
	schema := tool["input_schema"].(map[string]interface{})
	assert.ElementsMatch(t, []interface{}{"city", "state"}, schema["required"])
}

func TestAnthropicChat_MalformedToolDef(t *testing.T) {
	server := recordingServer(t, anthropicMessage([]map[string]interface{}{
		{"type": "text", "text": "OK"},
	}, "end_turn"), nil)

	p := NewAnthropicProvider("sk-ant-test", server.URL, "claude-3-5-haiku-latest")
	toolDefs := []map[string]interface{}{
		{"type": "function", "not_function": "oops"},
	}
	resp, err := p.Chat(context.Background(), []types.Message{{Role: types.RoleUser, Content: "hi"}}, toolDefs)
	require.NoError(t, err)
	assert.Equal(t, "OK", resp.Content)
}

func TestAnthropicChat_Error(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusUnauthorized)
		json.NewEncoder(w).Encode(map[string]interface{}{
			"type": "error",
			"error": map[string]interface{}{
				"type":    "authentication_error",
				"message": "invalid x-api-key",
			},
		})
	}))
	defer server.Close()

	p := NewAnthropicProvider("bad-key", server.URL, "claude-3-5-haiku-latest")
	_, err := p.Chat(context.Background(), []types.Message{{Role: types.RoleUser, Content: "hi"}}, nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "anthropic chat failed")
}

func TestExtractRequired(t *testing.T) {
	assert.Equal(t, []string{"a"}, extractRequired([]string{"a"}))
	assert.Equal(t, []string{"a", "b"}, extractRequired([]interface{}{"a", 1, "b"}))
	assert.Nil(t, extractRequired(nil))
}
