package llm

import (
	"context"
	"fmt"

	"github.com/zhy0216/lookout/pkg/config"
	"github.com/zhy0216/lookout/pkg/types"
)

// Provider defines the interface for different LLM backends.
type Provider interface {
	Chat(ctx context.Context, messages []types.Message, toolDefs []map[string]interface{}, opts ...types.ChatOption) (*types.ChatResponse, error)
	GetModel() string
}

// Compile-time interface compliance checks.
var (
	_ Provider = (*OpenAIProvider)(nil)
	_ Provider = (*AnthropicProvider)(nil)
)

// NewProvider builds the provider selected by cfg.
func NewProvider(cfg *config.Config) (Provider, error) {
	switch cfg.Provider {
	case config.ProviderAnthropic:
		return NewAnthropicProvider(cfg.APIKey, cfg.BaseURL, cfg.Model), nil
	case config.ProviderOpenAI, "":
		return NewOpenAIProvider(cfg.APIKey, cfg.BaseURL, cfg.Model, cfg.APIType), nil
	default:
		return nil, fmt.Errorf("unsupported provider %q", cfg.Provider)
	}
}

// functionDef is the flattened form of an OpenAI-style tool definition.
type functionDef struct {
	name        string
	description string
	parameters  map[string]interface{}
}

// parseToolDefs unpacks {"type":"function","function":{...}} definitions,
// skipping malformed entries.
func parseToolDefs(toolDefs []map[string]interface{}) []functionDef {
	defs := make([]functionDef, 0, len(toolDefs))
	for _, def := range toolDefs {
		fn, ok := def["function"].(map[string]interface{})
		if !ok {
			continue
		}
		name, _ := fn["name"].(string)
		desc, _ := fn["description"].(string)
		params, _ := fn["parameters"].(map[string]interface{})
		defs = append(defs, functionDef{name: name, description: desc, parameters: params})
	}
	return defs
}
