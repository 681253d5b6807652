package passage

import (
	"context"
	"errors"
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/ridecast/ridecast/internal/geo"
	"github.com/ridecast/ridecast/internal/geocode"
	"github.com/ridecast/ridecast/internal/weather"
)

// ErrInvalidSpeed is returned for a non-positive average speed.
var ErrInvalidSpeed = errors.New("average speed must be positive")

// unknownPlace is the sentinel name dropped during the filter pass.
const unknownPlace = "unknown"

// ForecastSource fetches hourly samples for a place name and calendar day.
type ForecastSource interface {
	ForecastFor(ctx context.Context, place string, date time.Time) ([]weather.HourlySample, error)
}

// BuilderConfig holds configuration for the passage builder.
type BuilderConfig struct {
	// Resolver turns sampled coordinates into place names (required).
	Resolver geocode.PlaceResolver

	// Forecast supplies arrival-day weather per place (required).
	Forecast ForecastSource

	// Logger for build progress.
	Logger zerolog.Logger

	// SampleStepM is the minimum distance between sampled points in meters.
	// Default: 2000.
	SampleStepM float64

	// OnProgress, when set, is called after each pipeline step with the
	// number of processed and total sampled points.
	OnProgress func(processed, total int)
}

// Builder runs the passage pipeline: sample, geocode, timestamp, dedup,
// attach weather. External calls are strictly sequential; rate limiting
// toward the providers lives in their clients.
type Builder struct {
	resolver    geocode.PlaceResolver
	forecast    ForecastSource
	logger      zerolog.Logger
	sampleStepM float64
	onProgress  func(processed, total int)
}

// NewBuilder creates a passage builder.
func NewBuilder(cfg BuilderConfig) *Builder {
	sampleStepM := cfg.SampleStepM
	if sampleStepM == 0 {
		sampleStepM = 2000
	}

	return &Builder{
		resolver:    cfg.Resolver,
		forecast:    cfg.Forecast,
		logger:      cfg.Logger,
		sampleStepM: sampleStepM,
		onProgress:  cfg.OnProgress,
	}
}

// Build turns an ordered point sequence into a passage sequence. Per-point
// resolver failures never abort the batch; their passages are dropped with
// the unnamed points. Weather failures keep the passage, marked failed.
// On context cancellation the passages built so far are returned alongside
// the context error; they remain valid on their own.
func (b *Builder) Build(ctx context.Context, points []geo.Coordinate, avgSpeedKmh float64, departure time.Time) ([]Passage, error) {
	if avgSpeedKmh <= 0 {
		return nil, ErrInvalidSpeed
	}
	if len(points) < 2 {
		return []Passage{}, nil
	}

	cumulative := geo.CumulativeDistances(points)
	sampled := b.sampleIndices(cumulative)

	b.logger.Debug().
		Int("points", len(points)).
		Int("sampled", len(sampled)).
		Float64("total_km", cumulative[len(cumulative)-1]).
		Msg("building passages")

	passages, err := b.resolvePlaces(ctx, points, cumulative, sampled, avgSpeedKmh, departure)
	if err != nil {
		return passages, err
	}

	passages = filterPassages(passages)

	return b.attachWeather(ctx, passages)
}

// sampleIndices greedily picks representative points: the first, the last,
// and any point at least the sample step beyond the previous pick.
func (b *Builder) sampleIndices(cumulative []float64) []int {
	stepKm := b.sampleStepM / 1000
	last := len(cumulative) - 1

	indices := []int{0}
	lastSampledKm := cumulative[0]

	for i := 1; i <= last; i++ {
		if i == last || cumulative[i]-lastSampledKm >= stepKm {
			indices = append(indices, i)
			lastSampledKm = cumulative[i]
		}
	}

	return indices
}

// resolvePlaces geocodes each sampled point sequentially. Coordinates rounded
// to two decimals (~1 km) share a dedup key; a repeated key reuses the prior
// name without another resolver call.
func (b *Builder) resolvePlaces(ctx context.Context, points []geo.Coordinate, cumulative []float64, sampled []int, avgSpeedKmh float64, departure time.Time) ([]Passage, error) {
	passages := make([]Passage, 0, len(sampled))
	seen := make(map[string]string)

	for n, idx := range sampled {
		if err := ctx.Err(); err != nil {
			return passages, err
		}

		coord := points[idx]
		distanceKm := cumulative[idx]

		p := Passage{
			Coordinate:           coord,
			CumulativeDistanceKm: distanceKm,
			EstimatedArrival:     arrivalTime(departure, distanceKm, avgSpeedKmh),
			Status:               StatusPending,
		}

		key := dedupKey(coord)
		if name, ok := seen[key]; ok {
			p.PlaceName = name
		} else {
			name, err := b.resolver.ReverseGeocode(ctx, coord)
			if err != nil {
				if ctx.Err() != nil {
					return passages, ctx.Err()
				}
				b.logger.Warn().Err(err).
					Float64("lat", coord.Lat).
					Float64("lon", coord.Lon).
					Msg("place resolution failed")
				p.Status = StatusFailed
				p.ErrorMessage = err.Error()
			} else {
				p.PlaceName = name
				seen[key] = name
			}
		}

		passages = append(passages, p)
		b.reportProgress(n+1, len(sampled))
	}

	return passages, nil
}

// arrivalTime estimates arrival at constant speed, rounded to the second.
func arrivalTime(departure time.Time, distanceKm, avgSpeedKmh float64) time.Time {
	hours := distanceKm / avgSpeedKmh
	return departure.Add(time.Duration(math.Round(hours*3600)) * time.Second)
}

// dedupKey buckets a coordinate on a roughly 1 km grid.
func dedupKey(c geo.Coordinate) string {
	return fmt.Sprintf("%.2f:%.2f", c.Lat, c.Lon)
}

// filterPassages drops passages whose name is empty or the unknown sentinel,
// then drops consecutive repeats of the same name. Geocode failures carry no
// name, so they fall out here; weather failures happen after this pass and
// stay visible to callers.
func filterPassages(passages []Passage) []Passage {
	filtered := make([]Passage, 0, len(passages))
	lastName := ""

	for _, p := range passages {
		name := strings.TrimSpace(p.PlaceName)
		if name == "" || strings.EqualFold(name, unknownPlace) {
			continue
		}
		if name == lastName {
			continue
		}

		filtered = append(filtered, p)
		lastName = name
	}

	return filtered
}

// attachWeather fetches arrival-day forecasts sequentially and attaches the
// hour matching each passage's arrival. A fetch failure marks the passage
// failed but keeps it in the output.
func (b *Builder) attachWeather(ctx context.Context, passages []Passage) ([]Passage, error) {
	for i := range passages {
		if err := ctx.Err(); err != nil {
			return passages, err
		}

		p := &passages[i]

		samples, err := b.forecast.ForecastFor(ctx, p.PlaceName, p.EstimatedArrival)
		if err != nil {
			if ctx.Err() != nil {
				return passages, ctx.Err()
			}
			b.logger.Warn().Err(err).
				Str("place", p.PlaceName).
				Msg("weather attachment failed")
			p.Status = StatusFailed
			p.ErrorMessage = err.Error()
		} else if sample := matchSample(samples, p.EstimatedArrival); sample != nil {
			p.Weather = sample
			p.Status = StatusResolved
		} else {
			p.Status = StatusFailed
			p.ErrorMessage = "no forecast sample for arrival time"
		}

		b.reportProgress(i+1, len(passages))
	}

	return passages, nil
}

// matchSample prefers the sample sharing the arrival's hour of day, falling
// back to the smallest absolute time difference.
func matchSample(samples []weather.HourlySample, arrival time.Time) *weather.HourlySample {
	if len(samples) == 0 {
		return nil
	}

	for i := range samples {
		if samples[i].Time.Hour() == arrival.Hour() {
			s := samples[i]
			return &s
		}
	}

	best := 0
	bestDiff := absDuration(samples[0].Time.Sub(arrival))
	for i := 1; i < len(samples); i++ {
		if d := absDuration(samples[i].Time.Sub(arrival)); d < bestDiff {
			best = i
			bestDiff = d
		}
	}
	s := samples[best]
	return &s
}

func absDuration(d time.Duration) time.Duration {
	if d < 0 {
		return -d
	}
	return d
}

func (b *Builder) reportProgress(processed, total int) {
	if b.onProgress != nil {
		b.onProgress(processed, total)
	}
}
