package weather

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"github.com/tidwall/gjson"

	"github.com/zhy0216/lookout/pkg/ops"
)

// Coordinates is a latitude/longitude pair in decimal degrees.
type Coordinates struct {
	Latitude  float64
	Longitude float64
}

// Geocoder resolves a free-text place description to coordinates.
// A place with no match yields (nil, nil).
type Geocoder interface {
	Geocode(ctx context.Context, place string) (*Coordinates, error)
}

// NominatimGeocoder queries an OpenStreetMap Nominatim search endpoint.
type NominatimGeocoder struct {
	baseURL   string
	userAgent string
	httpOps   ops.HTTPOps
}

// NewNominatimGeocoder creates a geocoder rooted at baseURL.
func NewNominatimGeocoder(baseURL, userAgent string, httpOps ops.HTTPOps) *NominatimGeocoder {
	return &NominatimGeocoder{
		baseURL:   strings.TrimRight(baseURL, "/"),
		userAgent: userAgent,
		httpOps:   httpOps,
	}
}

// Geocode returns the best match for place.
func (g *NominatimGeocoder) Geocode(ctx context.Context, place string) (*Coordinates, error) {
	q := url.Values{}
	q.Set("q", place)
	q.Set("format", "json")
	q.Set("limit", "1")

	body, err := getJSON(ctx, g.httpOps, g.baseURL+"/search?"+q.Encode(), g.userAgent, "application/json")
	if err != nil {
		return nil, fmt.Errorf("geocode %q: %w", place, err)
	}

	if !gjson.ValidBytes(body) {
		return nil, fmt.Errorf("geocode %q: invalid JSON response", place)
	}
	best := gjson.GetBytes(body, "0")
	if !best.Exists() {
		return nil, nil
	}

	lat, lon := best.Get("lat"), best.Get("lon")
	if !lat.Exists() || !lon.Exists() {
		return nil, fmt.Errorf("geocode %q: match has no coordinates", place)
	}
	return &Coordinates{Latitude: lat.Float(), Longitude: lon.Float()}, nil
}

// getJSON performs a GET and returns the body of a 2xx response.
func getJSON(ctx context.Context, httpOps ops.HTTPOps, rawURL, userAgent, accept string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("User-Agent", userAgent)
	req.Header.Set("Accept", accept)

	resp, err := httpOps.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, fmt.Errorf("GET %s: HTTP %d", rawURL, resp.StatusCode)
	}
	return body, nil
}
