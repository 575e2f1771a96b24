package weather

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/rs/zerolog"

	"github.com/zhy0216/lookout/pkg/types"
)

// Service turns a city/state pair into a short textual forecast.
type Service struct {
	geocoder   Geocoder
	forecaster Forecaster
	logger     zerolog.Logger
}

// NewService wires a geocoder and forecaster together.
func NewService(geocoder Geocoder, forecaster Forecaster, logger zerolog.Logger) *Service {
	return &Service{geocoder: geocoder, forecaster: forecaster, logger: logger}
}

// Lookup always returns a printable string; upstream failures are logged and
// reported in the text.
func (s *Service) Lookup(ctx context.Context, city, state string) string {
	coords, err := s.geocoder.Geocode(ctx, fmt.Sprintf("%s, %s, USA", city, state))
	if err != nil {
		s.logger.Error().Err(err).Str("city", city).Str("state", state).Msg("geocoding failed")
	}
	if coords == nil {
		return fmt.Sprintf("Could not find coordinates for %s, %s", city, state)
	}

	periods, err := s.forecaster.Forecast(ctx, *coords)
	if err != nil {
		s.logger.Error().Err(err).
			Float64("lat", coords.Latitude).
			Float64("lon", coords.Longitude).
			Msg("error getting forecast")
		return fmt.Sprintf("Could not get forecast for %s, %s", city, state)
	}

	return Format(city, state, periods)
}

// Format renders at most MaxForecastPeriods periods under a heading.
func Format(city, state string, periods []Period) string {
	if len(periods) > types.MaxForecastPeriods {
		periods = periods[:types.MaxForecastPeriods]
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Weather forecast for %s, %s:\n\n", city, state)
	for _, p := range periods {
		fmt.Fprintf(&b, "%s:\n", p.Name)
		fmt.Fprintf(&b, "Temperature: %s\n", formatTemperature(p))
		fmt.Fprintf(&b, "Conditions: %s\n", p.ShortForecast)
		fmt.Fprintf(&b, "Wind: %s %s\n\n", p.WindSpeed, p.WindDirection)
	}
	return b.String()
}

// formatTemperature renders "45°F", or "n/a" when the period has no reading.
func formatTemperature(p Period) string {
	if p.Temperature == nil {
		return "n/a"
	}
	return strconv.FormatFloat(*p.Temperature, 'f', -1, 64) + "°" + p.TemperatureUnit
}
