package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/viper"

	"github.com/zhy0216/lookout/pkg/types"
)

// Supported providers and OpenAI API flavours.
const (
	ProviderOpenAI    = "openai"
	ProviderAnthropic = "anthropic"

	APITypeChat      = "chat"
	APITypeResponses = "responses"
)

const (
	defaultOpenAIModel    = "gpt-4o-mini"
	defaultAnthropicModel = "claude-3-5-haiku-latest"
)

// Config holds the application configuration.
type Config struct {
	Provider  string // "openai" or "anthropic"
	APIKey    string
	BaseURL   string
	Model     string
	APIType   string // "chat" or "responses"; openai only
	MaxTokens int64

	UserAgent   string
	GeocoderURL string
	WeatherURL  string
	HTTPTimeout time.Duration

	LogLevel string
}

// envBindings maps config keys to the environment variables consulted for
// them, in order of preference.
var envBindings = map[string][]string{
	"provider":     {"LOOKOUT_PROVIDER"},
	"model":        {"LOOKOUT_MODEL"},
	"api_type":     {"OPENAI_API_TYPE"},
	"max_tokens":   {"LOOKOUT_MAX_TOKENS"},
	"user_agent":   {"LOOKOUT_USER_AGENT"},
	"geocoder_url": {"LOOKOUT_GEOCODER_URL"},
	"weather_url":  {"LOOKOUT_WEATHER_URL"},
	"http_timeout": {"LOOKOUT_HTTP_TIMEOUT"},
	"log_level":    {"LOOKOUT_LOG_LEVEL"},
}

// providerEnv lists the credential and endpoint variables for each provider.
// LOOKOUT_API_KEY and LOOKOUT_BASE_URL take precedence over both.
var providerEnv = map[string]struct{ apiKey, baseURL string }{
	ProviderOpenAI:    {apiKey: "OPENAI_API_KEY", baseURL: "OPENAI_BASE_URL"},
	ProviderAnthropic: {apiKey: "ANTHROPIC_API_KEY", baseURL: "ANTHROPIC_BASE_URL"},
}

// Load reads configuration by merging config file, environment variables,
// and defaults. Priority: config file > env var > default.
// Returns an error if the API key is not set from any source.
func Load() (*Config, error) {
	file, err := readConfigFile()
	if err != nil {
		return nil, err
	}
	env := newEnvViper()

	get := func(key string) *viper.Viper {
		if file.IsSet(key) {
			return file
		}
		return env
	}

	provider := get("provider").GetString("provider")
	names, ok := providerEnv[provider]
	if !ok {
		return nil, fmt.Errorf("unsupported provider %q (want %q or %q)", provider, ProviderOpenAI, ProviderAnthropic)
	}
	// BindEnv only errors when called without a key.
	_ = env.BindEnv("api_key", "LOOKOUT_API_KEY", names.apiKey)
	_ = env.BindEnv("base_url", "LOOKOUT_BASE_URL", names.baseURL)

	cfg := &Config{
		Provider:    provider,
		APIKey:      get("api_key").GetString("api_key"),
		BaseURL:     get("base_url").GetString("base_url"),
		Model:       get("model").GetString("model"),
		APIType:     get("api_type").GetString("api_type"),
		MaxTokens:   get("max_tokens").GetInt64("max_tokens"),
		UserAgent:   get("user_agent").GetString("user_agent"),
		GeocoderURL: get("geocoder_url").GetString("geocoder_url"),
		WeatherURL:  get("weather_url").GetString("weather_url"),
		HTTPTimeout: durationValue(get("http_timeout"), "http_timeout"),
		LogLevel:    get("log_level").GetString("log_level"),
	}

	switch cfg.APIType {
	case APITypeChat, APITypeResponses:
	default:
		return nil, fmt.Errorf("unsupported api_type %q (want %q or %q)", cfg.APIType, APITypeChat, APITypeResponses)
	}

	if cfg.Model == "" {
		cfg.Model = defaultModel(cfg.Provider)
	}

	if cfg.APIKey == "" {
		return nil, fmt.Errorf("an API key is required for provider %s (set %s, LOOKOUT_API_KEY or api_key in the config file)", cfg.Provider, names.apiKey)
	}

	return cfg, nil
}

func defaultModel(provider string) string {
	if provider == ProviderAnthropic {
		return defaultAnthropicModel
	}
	return defaultOpenAIModel
}

// durationValue reads key as a duration. Bare numbers, whether a JSON number
// or a numeric string, are seconds; strings with a unit ("1m30s") are parsed
// as Go durations.
func durationValue(v *viper.Viper, key string) time.Duration {
	switch raw := v.Get(key).(type) {
	case time.Duration:
		return raw
	case float64:
		return time.Duration(raw * float64(time.Second))
	case int:
		return time.Duration(raw) * time.Second
	case int64:
		return time.Duration(raw) * time.Second
	case string:
		if secs, err := strconv.ParseFloat(strings.TrimSpace(raw), 64); err == nil {
			return time.Duration(secs * float64(time.Second))
		}
	}
	return v.GetDuration(key)
}

// newEnvViper returns a viper instance backed by the environment and defaults.
func newEnvViper() *viper.Viper {
	v := viper.New()
	v.SetDefault("provider", ProviderOpenAI)
	v.SetDefault("api_type", APITypeChat)
	v.SetDefault("max_tokens", types.DefaultMaxTokens)
	v.SetDefault("user_agent", types.DefaultUserAgent)
	v.SetDefault("geocoder_url", types.DefaultGeocoderURL)
	v.SetDefault("weather_url", types.DefaultWeatherURL)
	v.SetDefault("http_timeout", time.Duration(0))
	v.SetDefault("log_level", "warn")

	for key, names := range envBindings {
		// BindEnv only errors when called without a key.
		_ = v.BindEnv(append([]string{key}, names...)...)
	}
	return v
}

// HomeDir returns the lookout home directory ($LOOKOUT_HOME or ~/.lookout).
func HomeDir() (string, error) {
	if dir := os.Getenv("LOOKOUT_HOME"); dir != "" {
		return dir, nil
	}
	h, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to determine home directory: %w", err)
	}
	return filepath.Join(h, ".lookout"), nil
}

// readConfigFile loads config.json from the home directory.
// Returns an empty viper instance if the file does not exist.
func readConfigFile() (*viper.Viper, error) {
	v := viper.New()

	homeDir, err := HomeDir()
	if err != nil {
		return nil, err
	}

	path := filepath.Join(homeDir, "config.json")
	if _, err := os.Stat(path); err != nil {
		if os.IsNotExist(err) {
			return v, nil
		}
		return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
	}

	v.SetConfigFile(path)
	v.SetConfigType("json")
	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("failed to parse config file %s: %w", path, err)
	}
	return v, nil
}
