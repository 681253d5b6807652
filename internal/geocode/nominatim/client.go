// Package nominatim implements place resolution against the OpenStreetMap
// Nominatim API.
package nominatim

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"

	"github.com/rs/zerolog"

	"github.com/ridecast/ridecast/internal/geo"
	"github.com/ridecast/ridecast/internal/geocode"
	"github.com/ridecast/ridecast/internal/pacing"
	"github.com/ridecast/ridecast/internal/provider/resilience"
)

const (
	// ProviderName identifies this geocoding provider.
	ProviderName = "nominatim"

	// DefaultBaseURL is the public Nominatim instance.
	DefaultBaseURL = "https://nominatim.openstreetmap.org"

	// DefaultUserAgent is sent on every request. Nominatim rejects requests
	// without an identifying agent.
	DefaultUserAgent = "ridecast/1.0"
)

// ClientConfig holds configuration for the Nominatim client.
type ClientConfig struct {
	// BaseURL is the API base URL (optional, defaults to the public instance).
	BaseURL string

	// UserAgent identifies this application to Nominatim (optional).
	UserAgent string

	// HTTPClient is the HTTP client to use (optional). If nil, a resilient
	// client with defaults is built and Gate is installed on it; an injected
	// client must carry its own gate.
	HTTPClient *resilience.Client

	// Gate paces HTTP attempts toward the public instance (optional).
	// If nil, a gate honoring its one-request-per-second policy is used.
	Gate *pacing.Gate

	// Logger for client operations.
	Logger zerolog.Logger
}

// Client resolves coordinates and place names via Nominatim.
type Client struct {
	baseURL    string
	userAgent  string
	httpClient *resilience.Client
	logger     zerolog.Logger
}

var _ geocode.PlaceResolver = (*Client)(nil)

// NewClient creates a new Nominatim client.
func NewClient(cfg ClientConfig) *Client {
	baseURL := cfg.BaseURL
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}

	userAgent := cfg.UserAgent
	if userAgent == "" {
		userAgent = DefaultUserAgent
	}

	httpClient := cfg.HTTPClient
	if httpClient == nil {
		gate := cfg.Gate
		if gate == nil {
			gate = pacing.NewGate(pacing.GeocodeInterval)
		}
		httpConfig := resilience.DefaultClientConfig(ProviderName)
		httpConfig.Gate = gate
		httpClient = resilience.NewClient(httpConfig)
	}

	return &Client{
		baseURL:    baseURL,
		userAgent:  userAgent,
		httpClient: httpClient,
		logger:     cfg.Logger,
	}
}

// Name returns the provider name.
func (c *Client) Name() string {
	return ProviderName
}

// ReverseGeocode returns the locality name nearest to the coordinate.
// The zoom level targets city granularity rather than street addresses.
func (c *Client) ReverseGeocode(ctx context.Context, coord geo.Coordinate) (string, error) {
	query := fmt.Sprintf("lat=%.6f, lon=%.6f", coord.Lat, coord.Lon)

	u := fmt.Sprintf("%s/reverse?format=json&lat=%s&lon=%s&zoom=10",
		c.baseURL,
		strconv.FormatFloat(coord.Lat, 'f', -1, 64),
		strconv.FormatFloat(coord.Lon, 'f', -1, 64))

	var body reverseResponse
	if err := c.get(ctx, u, &body); err != nil {
		return "", &geocode.ResolutionError{Provider: ProviderName, Query: query, Err: err}
	}

	name := body.Address.locality()
	if name == "" {
		return "", &geocode.ResolutionError{Provider: ProviderName, Query: query, Err: geocode.ErrPlaceNotFound}
	}

	return name, nil
}

// Geocode returns the coordinate of the best match for a place name.
func (c *Client) Geocode(ctx context.Context, name string) (geo.Coordinate, error) {
	u := fmt.Sprintf("%s/search?q=%s&format=json&limit=1", c.baseURL, url.QueryEscape(name))

	var body []searchResult
	if err := c.get(ctx, u, &body); err != nil {
		return geo.Coordinate{}, &geocode.ResolutionError{Provider: ProviderName, Query: name, Err: err}
	}

	if len(body) == 0 {
		return geo.Coordinate{}, &geocode.ResolutionError{Provider: ProviderName, Query: name, Err: geocode.ErrPlaceNotFound}
	}

	lat, errLat := strconv.ParseFloat(body[0].Lat, 64)
	lon, errLon := strconv.ParseFloat(body[0].Lon, 64)
	if errLat != nil || errLon != nil {
		return geo.Coordinate{}, &geocode.ResolutionError{
			Provider: ProviderName,
			Query:    name,
			Err:      fmt.Errorf("malformed coordinates in response"),
		}
	}

	return geo.Coordinate{Lat: lat, Lon: lon}, nil
}

func (c *Client) get(ctx context.Context, url string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, http.NoBody)
	if err != nil {
		return fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("User-Agent", c.userAgent)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("executing request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("unexpected status code: %d", resp.StatusCode)
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decoding response: %w", err)
	}

	return nil
}

// Nominatim API response structures.

type reverseResponse struct {
	Address address `json:"address"`
}

type address struct {
	City         string `json:"city"`
	Town         string `json:"town"`
	Village      string `json:"village"`
	Municipality string `json:"municipality"`
	County       string `json:"county"`
}

// locality picks the most specific populated-place field available.
func (a address) locality() string {
	for _, name := range []string{a.City, a.Town, a.Village, a.Municipality, a.County} {
		if name != "" {
			return name
		}
	}
	return ""
}

type searchResult struct {
	Lat         string `json:"lat"`
	Lon         string `json:"lon"`
	DisplayName string `json:"display_name"`
}
