// Package openmeteo implements the forecast provider against the Open-Meteo
// API. Open-Meteo needs no API key, so the client carries only pacing and
// resilience configuration.
package openmeteo

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/ridecast/ridecast/internal/geo"
	"github.com/ridecast/ridecast/internal/pacing"
	"github.com/ridecast/ridecast/internal/provider/resilience"
	"github.com/ridecast/ridecast/internal/weather"
)

const (
	// ProviderName identifies this forecast provider.
	ProviderName = "openmeteo"

	// DefaultBaseURL is the Open-Meteo forecast endpoint.
	DefaultBaseURL = "https://api.open-meteo.com/v1/forecast"
)

// hourlyVariables is the exact variable set requested per forecast call.
var hourlyVariables = []string{
	"temperature_2m",
	"wind_speed_10m",
	"winddirection_10m",
	"weathercode",
	"is_day",
	"precipitation",
	"precipitation_probability",
	"relative_humidity_2m",
	"apparent_temperature",
}

// ClientConfig holds configuration for the Open-Meteo client.
type ClientConfig struct {
	// BaseURL is the forecast endpoint (optional).
	BaseURL string

	// HTTPClient is the HTTP client to use (optional). If nil, a resilient
	// client with defaults is built and Gate is installed on it; an injected
	// client must carry its own gate.
	HTTPClient *resilience.Client

	// Gate paces HTTP attempts (optional).
	Gate *pacing.Gate

	// Logger for client operations.
	Logger zerolog.Logger
}

// Client fetches hourly forecasts from Open-Meteo.
type Client struct {
	baseURL    string
	httpClient *resilience.Client
	logger     zerolog.Logger
}

var _ weather.Provider = (*Client)(nil)

// NewClient creates a new Open-Meteo client.
func NewClient(cfg ClientConfig) *Client {
	baseURL := cfg.BaseURL
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}

	httpClient := cfg.HTTPClient
	if httpClient == nil {
		gate := cfg.Gate
		if gate == nil {
			gate = pacing.NewGate(pacing.ForecastInterval)
		}
		httpConfig := resilience.DefaultClientConfig(ProviderName)
		httpConfig.Gate = gate
		httpClient = resilience.NewClient(httpConfig)
	}

	return &Client{
		baseURL:    baseURL,
		httpClient: httpClient,
		logger:     cfg.Logger,
	}
}

// Name returns the provider name.
func (c *Client) Name() string {
	return ProviderName
}

// FetchHourly fetches hourly samples for a coordinate on a calendar day.
// Times in the response are local to the requested location.
func (c *Client) FetchHourly(ctx context.Context, coord geo.Coordinate, date time.Time) ([]weather.HourlySample, error) {
	day := date.Format("2006-01-02")

	params := url.Values{}
	params.Set("latitude", fmt.Sprintf("%.6f", coord.Lat))
	params.Set("longitude", fmt.Sprintf("%.6f", coord.Lon))
	params.Set("hourly", strings.Join(hourlyVariables, ","))
	params.Set("start_date", day)
	params.Set("end_date", day)
	params.Set("timezone", "auto")

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"?"+params.Encode(), http.NoBody)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("executing request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("unexpected status code: %d", resp.StatusCode)
	}

	var body forecastResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return nil, fmt.Errorf("decoding response: %w", err)
	}

	return c.toSamples(&body)
}

// toSamples converts the columnar Open-Meteo response into hourly samples.
// Hours missing from any column are skipped rather than zero-filled.
func (c *Client) toSamples(resp *forecastResponse) ([]weather.HourlySample, error) {
	h := resp.Hourly
	if len(h.Time) == 0 {
		return nil, weather.ErrNoForecast
	}

	samples := make([]weather.HourlySample, 0, len(h.Time))
	for i, raw := range h.Time {
		if i >= len(h.Temperature) || i >= len(h.WeatherCode) {
			break
		}

		ts, err := time.Parse("2006-01-02T15:04", raw)
		if err != nil {
			c.logger.Warn().Str("time", raw).Msg("skipping hour with malformed timestamp")
			continue
		}

		samples = append(samples, weather.HourlySample{
			Time:                        ts,
			Temperature:                 at(h.Temperature, i),
			ApparentTemperature:         at(h.ApparentTemperature, i),
			WindSpeed:                   at(h.WindSpeed, i),
			WindDirectionDeg:            at(h.WindDirection, i),
			WeatherCode:                 h.WeatherCode[i],
			IsDaylight:                  intAt(h.IsDay, i) == 1,
			PrecipitationMm:             at(h.Precipitation, i),
			PrecipitationProbabilityPct: at(h.PrecipitationProbability, i),
			RelativeHumidityPct:         at(h.RelativeHumidity, i),
		})
	}

	if len(samples) == 0 {
		return nil, weather.ErrNoForecast
	}

	return samples, nil
}

func at(values []float64, i int) float64 {
	if i < len(values) {
		return values[i]
	}
	return 0
}

func intAt(values []int, i int) int {
	if i < len(values) {
		return values[i]
	}
	return 0
}

// Open-Meteo API response structure (columnar hourly arrays).

type forecastResponse struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
	Hourly    struct {
		Time                     []string  `json:"time"`
		Temperature              []float64 `json:"temperature_2m"`
		ApparentTemperature      []float64 `json:"apparent_temperature"`
		WindSpeed                []float64 `json:"wind_speed_10m"`
		WindDirection            []float64 `json:"winddirection_10m"`
		WeatherCode              []int     `json:"weathercode"`
		IsDay                    []int     `json:"is_day"`
		Precipitation            []float64 `json:"precipitation"`
		PrecipitationProbability []float64 `json:"precipitation_probability"`
		RelativeHumidity         []float64 `json:"relative_humidity_2m"`
	} `json:"hourly"`
}
