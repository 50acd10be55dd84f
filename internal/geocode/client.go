// Package geocode resolves typed addresses to coordinates via the
// MapTiler geocoding API. The rest of the system treats the results as
// opaque {address, lat, lng} input.
package geocode

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"github.com/hearthside/tourplan/internal/tour"
)

// ErrNoAPIKey is returned when no MapTiler API key is configured.
var ErrNoAPIKey = errors.New("geocoding API key is not configured")

// DefaultBaseURL is the MapTiler geocoding endpoint.
const DefaultBaseURL = "https://api.maptiler.com/geocoding"

// Result is one address candidate.
type Result struct {
	Address  string     `json:"address"`
	Location tour.Point `json:"location"`
}

// Client queries the geocoding API.
type Client struct {
	apiKey  string
	baseURL string
	http    *http.Client
}

// NewClient creates a geocoding client. An empty baseURL selects the
// default MapTiler endpoint.
func NewClient(apiKey, baseURL string, httpClient *http.Client) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 10 * time.Second}
	}
	return &Client{apiKey: apiKey, baseURL: baseURL, http: httpClient}
}

// geocodeResponse mirrors the GeoJSON feature collection MapTiler returns.
type geocodeResponse struct {
	Features []struct {
		PlaceName string    `json:"place_name"`
		Center    []float64 `json:"center"` // [lng, lat]
	} `json:"features"`
}

// Search resolves a free-text query to address candidates. An empty
// query or no matches yields an empty slice.
func (c *Client) Search(ctx context.Context, query string) ([]Result, error) {
	if c.apiKey == "" {
		return nil, ErrNoAPIKey
	}
	if query == "" {
		return []Result{}, nil
	}

	endpoint := fmt.Sprintf("%s/%s.json?key=%s", c.baseURL, url.PathEscape(query), url.QueryEscape(c.apiKey))
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("build geocode request: %w", err)
	}
	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("geocode request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("geocode request: unexpected status %d", resp.StatusCode)
	}

	var body geocodeResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return nil, fmt.Errorf("decode geocode response: %w", err)
	}

	results := make([]Result, 0, len(body.Features))
	for _, f := range body.Features {
		if len(f.Center) < 2 {
			continue
		}
		results = append(results, Result{
			Address:  f.PlaceName,
			Location: tour.Point{Lat: f.Center[1], Lng: f.Center[0]},
		})
	}
	return results, nil
}
