package weather

import (
	"context"
	"errors"
	"fmt"
	"math"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/ridecast/ridecast/internal/geo"
	"github.com/ridecast/ridecast/internal/geocode"
	"github.com/ridecast/ridecast/internal/telemetry"
)

// forecastOperation labels provider metrics for hourly forecast fetches.
const forecastOperation = "fetch-hourly"

// Predefined errors for forecast retrieval.
var (
	// ErrProviderUnavailable is returned when the forecast provider fails and
	// no stale data can be served.
	ErrProviderUnavailable = errors.New("forecast provider unavailable")

	// ErrInvalidCoordinates is returned for out-of-bounds coordinates.
	ErrInvalidCoordinates = errors.New("invalid coordinates")
)

// Provider fetches hourly forecast samples for a coordinate and calendar day.
type Provider interface {
	FetchHourly(ctx context.Context, coord geo.Coordinate, date time.Time) ([]HourlySample, error)

	// Name returns the provider name for logging.
	Name() string
}

// ServiceConfig holds configuration for the forecast service.
type ServiceConfig struct {
	// Provider is the forecast data provider.
	Provider Provider

	// Resolver turns place names into coordinates for name-based lookups.
	Resolver geocode.PlaceResolver

	// Logger for service operations.
	Logger zerolog.Logger

	// CacheTTL is how long to cache a day forecast (default: 15 minutes).
	CacheTTL time.Duration

	// CacheGridSize is the size of cache grid cells in degrees (default: 0.05).
	// Points within the same grid cell share cached data.
	CacheGridSize float64

	// StaleIfErrorTTL allows serving stale data on provider errors (default: 2 hours).
	StaleIfErrorTTL time.Duration

	// Metrics records provider call and cache instruments (optional).
	Metrics *telemetry.ProviderMetrics
}

// Service provides hourly forecasts with per-day caching. Route analysis asks
// for the same day at many nearby points, so entries are keyed by grid cell
// plus calendar day.
type Service struct {
	provider        Provider
	resolver        geocode.PlaceResolver
	logger          zerolog.Logger
	cacheTTL        time.Duration
	cacheGridSize   float64
	staleIfErrorTTL time.Duration
	metrics         *telemetry.ProviderMetrics

	mu    sync.RWMutex
	cache map[string]*cachedDay
}

type cachedDay struct {
	samples   []HourlySample
	fetchedAt time.Time
	expiresAt time.Time
}

// NewService creates a new forecast service.
func NewService(cfg ServiceConfig) *Service {
	cacheTTL := cfg.CacheTTL
	if cacheTTL == 0 {
		cacheTTL = 15 * time.Minute
	}

	cacheGridSize := cfg.CacheGridSize
	if cacheGridSize == 0 {
		cacheGridSize = 0.05
	}

	staleIfErrorTTL := cfg.StaleIfErrorTTL
	if staleIfErrorTTL == 0 {
		staleIfErrorTTL = 2 * time.Hour
	}

	return &Service{
		provider:        cfg.Provider,
		resolver:        cfg.Resolver,
		logger:          cfg.Logger,
		cacheTTL:        cacheTTL,
		cacheGridSize:   cacheGridSize,
		staleIfErrorTTL: staleIfErrorTTL,
		metrics:         cfg.Metrics,
		cache:           make(map[string]*cachedDay),
	}
}

// ForecastAt returns hourly samples for a coordinate on a calendar day.
func (s *Service) ForecastAt(ctx context.Context, coord geo.Coordinate, date time.Time) ([]HourlySample, error) {
	if !coord.Valid() {
		return nil, ErrInvalidCoordinates
	}

	key := s.cacheKey(coord, date)

	s.mu.RLock()
	if cached, ok := s.cache[key]; ok && time.Now().Before(cached.expiresAt) {
		s.mu.RUnlock()
		s.recordCacheHit()
		return cached.samples, nil
	}
	s.mu.RUnlock()

	s.recordCacheMiss()
	return s.fetch(ctx, coord, date, key)
}

// ForecastFor resolves a place name and returns its hourly samples for a
// calendar day.
func (s *Service) ForecastFor(ctx context.Context, place string, date time.Time) ([]HourlySample, error) {
	if s.resolver == nil {
		return nil, fmt.Errorf("no place resolver configured")
	}

	coord, err := s.resolver.Geocode(ctx, place)
	if err != nil {
		return nil, fmt.Errorf("resolving %q: %w", place, err)
	}

	return s.ForecastAt(ctx, coord, date)
}

func (s *Service) fetch(ctx context.Context, coord geo.Coordinate, date time.Time, key string) ([]HourlySample, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	// Double-check cache
	if cached, ok := s.cache[key]; ok && time.Now().Before(cached.expiresAt) {
		return cached.samples, nil
	}

	s.logger.Debug().
		Float64("lat", coord.Lat).
		Float64("lon", coord.Lon).
		Str("date", date.Format("2006-01-02")).
		Str("provider", s.provider.Name()).
		Msg("fetching forecast from provider")

	fetchStart := time.Now()
	samples, err := s.provider.FetchHourly(ctx, coord, date)
	if s.metrics != nil {
		s.metrics.RecordRequest(s.provider.Name(), forecastOperation, time.Since(fetchStart), err)
	}
	if err != nil {
		s.logger.Error().Err(err).
			Float64("lat", coord.Lat).
			Float64("lon", coord.Lon).
			Msg("failed to fetch forecast")

		if cached, ok := s.cache[key]; ok {
			if time.Now().Before(cached.fetchedAt.Add(s.staleIfErrorTTL)) {
				s.logger.Warn().
					Time("fetched_at", cached.fetchedAt).
					Msg("serving stale forecast due to provider error")
				return cached.samples, nil
			}
		}

		return nil, ErrProviderUnavailable
	}

	now := time.Now()
	s.cache[key] = &cachedDay{
		samples:   samples,
		fetchedAt: now,
		expiresAt: now.Add(s.cacheTTL),
	}

	return samples, nil
}

// cacheKey groups nearby points into grid cells so a route through one town
// reuses a single provider call per day.
func (s *Service) cacheKey(coord geo.Coordinate, date time.Time) string {
	gridLat := math.Floor(coord.Lat/s.cacheGridSize) * s.cacheGridSize
	gridLon := math.Floor(coord.Lon/s.cacheGridSize) * s.cacheGridSize
	return fmt.Sprintf("%.3f:%.3f:%s", gridLat, gridLon, date.Format("2006-01-02"))
}

// InvalidateCache clears all cached forecasts.
func (s *Service) InvalidateCache() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.cache = make(map[string]*cachedDay)
}

func (s *Service) recordCacheHit() {
	if s.metrics != nil {
		s.metrics.RecordCacheHit(s.provider.Name(), forecastOperation)
	}
}

func (s *Service) recordCacheMiss() {
	if s.metrics != nil {
		s.metrics.RecordCacheMiss(s.provider.Name(), forecastOperation)
	}
}
