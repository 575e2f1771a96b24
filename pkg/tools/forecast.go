package tools

import "context"

// ForecastLookup is satisfied by weather.Service.
type ForecastLookup interface {
	Lookup(ctx context.Context, city, state string) string
}

// ForecastArgs are the decoded arguments of get_weather_forecast.
type ForecastArgs struct {
	City  string `json:"city"`
	State string `json:"state"`
}

// ForecastDescriptor describes the weather forecast tool to the model.
func ForecastDescriptor() Descriptor {
	return Descriptor{
		ID:          ToolWeatherForecast,
		Description: "Get weather forecast for a US city by first getting coordinates and then fetching the forecast",
		Parameters: []Parameter{
			{Name: "city", Type: "string", Description: "The city name", Required: true},
			{Name: "state", Type: "string", Description: "The two-letter state code", Required: true},
		},
	}
}

// NewForecastTool binds the forecast descriptor to a lookup service.
func NewForecastTool(svc ForecastLookup) Entry {
	return Bind(ForecastDescriptor(), func(ctx context.Context, args ForecastArgs) string {
		return svc.Lookup(ctx, args.City, args.State)
	})
}
