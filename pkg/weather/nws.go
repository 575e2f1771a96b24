package weather

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"github.com/tidwall/gjson"

	"github.com/zhy0216/lookout/pkg/ops"
)

const geoJSON = "application/geo+json"

// Period is one named segment of a forecast ("Tonight", "Tuesday", ...).
type Period struct {
	Name            string  `json:"name"`
	Temperature     *float64 `json:"temperature"` // nil when upstream reports null
	TemperatureUnit string   `json:"temperatureUnit"`
	ShortForecast   string   `json:"shortForecast"`
	WindSpeed       string   `json:"windSpeed"`
	WindDirection   string   `json:"windDirection"`
}

// Forecaster fetches the forecast periods for a coordinate pair.
type Forecaster interface {
	Forecast(ctx context.Context, coords Coordinates) ([]Period, error)
}

// NWSClient talks to the National Weather Service API: a points lookup maps
// coordinates to a forecast URL, which is then fetched.
type NWSClient struct {
	baseURL   string
	userAgent string
	httpOps   ops.HTTPOps
}

// NewNWSClient creates a client rooted at baseURL.
func NewNWSClient(baseURL, userAgent string, httpOps ops.HTTPOps) *NWSClient {
	return &NWSClient{
		baseURL:   strings.TrimRight(baseURL, "/"),
		userAgent: userAgent,
		httpOps:   httpOps,
	}
}

// Forecast returns the periods in upstream order.
func (c *NWSClient) Forecast(ctx context.Context, coords Coordinates) ([]Period, error) {
	forecastURL, err := c.forecastURL(ctx, coords)
	if err != nil {
		return nil, err
	}

	body, err := getJSON(ctx, c.httpOps, forecastURL, c.userAgent, geoJSON)
	if err != nil {
		return nil, fmt.Errorf("fetch forecast: %w", err)
	}

	var payload struct {
		Properties struct {
			Periods []Period `json:"periods"`
		} `json:"properties"`
	}
	if err := json.Unmarshal(body, &payload); err != nil {
		return nil, fmt.Errorf("decode forecast: %w", err)
	}
	return payload.Properties.Periods, nil
}

// forecastURL resolves the grid point for coords. The points endpoint
// redirects for more than four decimal places, so coordinates are rounded.
func (c *NWSClient) forecastURL(ctx context.Context, coords Coordinates) (string, error) {
	pointURL := fmt.Sprintf("%s/points/%s,%s", c.baseURL,
		strconv.FormatFloat(coords.Latitude, 'f', 4, 64),
		strconv.FormatFloat(coords.Longitude, 'f', 4, 64))

	body, err := getJSON(ctx, c.httpOps, pointURL, c.userAgent, geoJSON)
	if err != nil {
		return "", fmt.Errorf("fetch grid point: %w", err)
	}

	forecast := gjson.GetBytes(body, "properties.forecast")
	if forecast.String() == "" {
		return "", fmt.Errorf("grid point response has no forecast URL")
	}
	return forecast.String(), nil
}
