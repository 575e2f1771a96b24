package types

// Defaults shared across the codebase.
const (
	// SystemPrompt is the fixed instruction sent ahead of every query.
	SystemPrompt = "You are a helpful assistant."

	// DefaultMaxTokens bounds a single model reply.
	DefaultMaxTokens = 1024

	// --- Forecast rendering ---

	// MaxForecastPeriods is the number of forecast periods rendered per lookup.
	MaxForecastPeriods = 3

	// --- Upstream services ---

	// DefaultUserAgent identifies us to Nominatim and api.weather.gov,
	// both of which reject anonymous clients.
	DefaultUserAgent = "WeatherAssistant/1.0"

	// DefaultGeocoderURL is the public Nominatim endpoint.
	DefaultGeocoderURL = "https://nominatim.openstreetmap.org"

	// DefaultWeatherURL is the National Weather Service API root.
	DefaultWeatherURL = "https://api.weather.gov"
)
