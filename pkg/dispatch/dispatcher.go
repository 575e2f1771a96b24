// Package dispatch routes a free-text query to at most one registered tool
// through the model's tool-calling interface.
package dispatch

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/zhy0216/lookout/pkg/config"
	"github.com/zhy0216/lookout/pkg/llm"
	"github.com/zhy0216/lookout/pkg/logging"
	"github.com/zhy0216/lookout/pkg/ops"
	"github.com/zhy0216/lookout/pkg/resolve"
	"github.com/zhy0216/lookout/pkg/tools"
	"github.com/zhy0216/lookout/pkg/types"
	"github.com/zhy0216/lookout/pkg/weather"
)

// Dispatcher answers one query at a time. It keeps no state between queries.
type Dispatcher struct {
	provider  llm.Provider
	registry  *tools.Registry
	logger    zerolog.Logger
	maxTokens int64
}

// New creates a Dispatcher over an existing provider and registry.
func New(provider llm.Provider, registry *tools.Registry, logger zerolog.Logger) *Dispatcher {
	return &Dispatcher{
		provider:  provider,
		registry:  registry,
		logger:    logger,
		maxTokens: types.DefaultMaxTokens,
	}
}

// FromConfig builds the provider, the upstream clients and the default
// registry from cfg.
func FromConfig(cfg *config.Config, logger zerolog.Logger) (*Dispatcher, error) {
	provider, err := llm.NewProvider(cfg)
	if err != nil {
		return nil, fmt.Errorf("create provider: %w", err)
	}

	httpOps := ops.NewHTTPOps(cfg.HTTPTimeout)
	forecast := weather.NewService(
		weather.NewNominatimGeocoder(cfg.GeocoderURL, cfg.UserAgent, httpOps),
		weather.NewNWSClient(cfg.WeatherURL, cfg.UserAgent, httpOps),
		logging.Component(logger, "weather"),
	)
	hostname := resolve.NewService(
		ops.NewResolverOps(),
		logging.Component(logger, "resolve"),
	)

	d := New(provider, tools.NewDefaultRegistry(forecast, hostname), logging.Component(logger, "dispatch"))
	if cfg.MaxTokens > 0 {
		d.maxTokens = cfg.MaxTokens
	}
	return d, nil
}

// Process answers query. It never returns an error: every failure is
// rendered into the returned text.
func (d *Dispatcher) Process(ctx context.Context, query string) (result string) {
	logger := d.logger.With().Str("query_id", uuid.NewString()).Logger()

	defer func() {
		if r := recover(); r != nil {
			logger.Error().Interface("panic", r).Msg("recovered while processing query")
			result = fmt.Sprintf("Error processing query: %v", r)
		}
	}()

	logger.Debug().Str("query", query).Str("model", d.provider.GetModel()).Msg("processing query")

	messages := []types.Message{
		{Role: types.RoleSystem, Content: types.SystemPrompt},
		{Role: types.RoleUser, Content: query},
	}
	resp, err := d.provider.Chat(ctx, messages, d.registry.Definitions(), types.WithMaxTokens(d.maxTokens))
	if err != nil {
		logger.Error().Err(err).Msg("model request failed")
		return fmt.Sprintf("Error processing query: %v", err)
	}

	logger.Debug().
		Int64("prompt_tokens", resp.Usage.PromptTokens).
		Int64("completion_tokens", resp.Usage.CompletionTokens).
		Int("tool_calls", len(resp.ToolCalls)).
		Msg("model responded")

	if len(resp.ToolCalls) == 0 {
		return resp.Content
	}
	for _, extra := range resp.ToolCalls[1:] {
		logger.Debug().Str("tool", extra.Function.Name).Msg("ignoring additional tool call")
	}

	return d.invoke(ctx, logger, resp.ToolCalls[0])
}

func (d *Dispatcher) invoke(ctx context.Context, logger zerolog.Logger, tc types.ToolCall) string {
	name := tc.Function.Name

	var args map[string]interface{}
	if err := json.Unmarshal([]byte(tc.Function.Arguments), &args); err != nil {
		logger.Warn().Err(err).Str("tool", name).Str("arguments", tc.Function.Arguments).Msg("malformed tool arguments")
		return fmt.Sprintf("Error processing query: malformed arguments for %s: %v", name, err)
	}

	logger.Debug().Str("tool", name).Interface("args", args).Msg("invoking tool")

	out, err := d.registry.Invoke(ctx, name, args)
	switch {
	case errors.Is(err, tools.ErrUnknownTool):
		logger.Warn().Str("tool", name).Msg("model requested unknown tool")
		return fmt.Sprintf("Unknown function: %s", name)
	case err != nil:
		logger.Warn().Err(err).Str("tool", name).Msg("tool arguments rejected")
		return fmt.Sprintf("Error processing query: invalid arguments for %s: %v", name, err)
	}
	return out
}
