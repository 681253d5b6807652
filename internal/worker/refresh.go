package worker

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/ridecast/ridecast/internal/geo"
	"github.com/ridecast/ridecast/internal/history"
	"github.com/ridecast/ridecast/internal/passage"
	"github.com/ridecast/ridecast/internal/scoring"
	"github.com/ridecast/ridecast/internal/weather"
)

// RefreshJob re-runs the passage pipeline for saved routes so their forecast
// and score stay current.
type RefreshJob struct {
	config  RefreshConfig
	logger  zerolog.Logger
	builder *passage.Builder
	history *history.Service
	weather *weather.Service

	metrics *RefreshMetrics
}

// RefreshMetrics tracks refresh job statistics.
type RefreshMetrics struct {
	mu sync.RWMutex

	TotalRuns        int64
	SuccessfulRoutes int64
	FailedRoutes     int64

	LastRunAt       time.Time
	LastRunDuration time.Duration
}

// Snapshot returns a copy of the current metrics.
func (m *RefreshMetrics) Snapshot() RefreshMetrics {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return RefreshMetrics{
		TotalRuns:        m.TotalRuns,
		SuccessfulRoutes: m.SuccessfulRoutes,
		FailedRoutes:     m.FailedRoutes,
		LastRunAt:        m.LastRunAt,
		LastRunDuration:  m.LastRunDuration,
	}
}

// RefreshJobConfig holds configuration for creating a RefreshJob.
type RefreshJobConfig struct {
	Config         RefreshConfig
	Logger         zerolog.Logger
	Builder        *passage.Builder
	HistoryService *history.Service
	WeatherService *weather.Service
}

// NewRefreshJob creates a new refresh job processor.
func NewRefreshJob(cfg RefreshJobConfig) *RefreshJob {
	return &RefreshJob{
		config:  cfg.Config.withDefaults(),
		logger:  cfg.Logger,
		builder: cfg.Builder,
		history: cfg.HistoryService,
		weather: cfg.WeatherService,
		metrics: &RefreshMetrics{},
	}
}

// RefreshResult contains the result of a refresh run.
type RefreshResult struct {
	StartTime   time.Time
	EndTime     time.Time
	Duration    time.Duration
	TotalRoutes int
	Successful  int
	Failed      int
	Errors      []RefreshError
}

// RefreshError represents a failed route refresh.
type RefreshError struct {
	RouteID string
	Error   string
}

// Run refreshes every saved route, or the single route named by routeID when
// it is non-empty.
func (j *RefreshJob) Run(ctx context.Context, routeID string) *RefreshResult {
	startTime := time.Now()
	result := &RefreshResult{StartTime: startTime}

	routes, err := j.listTargets(ctx, routeID)
	if err != nil {
		result.Failed = 1
		result.Errors = append(result.Errors, RefreshError{RouteID: routeID, Error: err.Error()})
		result.EndTime = time.Now()
		result.Duration = result.EndTime.Sub(startTime)
		return result
	}
	result.TotalRoutes = len(routes)

	j.logger.Info().
		Int("total_routes", result.TotalRoutes).
		Int("concurrency", j.config.Concurrency).
		Msg("starting route refresh job")

	routesChan := make(chan history.SavedRoute, len(routes))
	errorsChan := make(chan *RefreshError, len(routes))

	var wg sync.WaitGroup
	for i := 0; i < j.config.Concurrency; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for route := range routesChan {
				errorsChan <- j.refreshRoute(ctx, route)
			}
		}()
	}

	for _, route := range routes {
		routesChan <- route
	}
	close(routesChan)

	go func() {
		wg.Wait()
		close(errorsChan)
	}()

	for refreshErr := range errorsChan {
		if refreshErr == nil {
			result.Successful++
		} else {
			result.Failed++
			result.Errors = append(result.Errors, *refreshErr)
		}
	}

	result.EndTime = time.Now()
	result.Duration = result.EndTime.Sub(startTime)

	j.updateMetrics(result)

	j.logger.Info().
		Dur("duration", result.Duration).
		Int("successful", result.Successful).
		Int("failed", result.Failed).
		Msg("route refresh job completed")

	return result
}

func (j *RefreshJob) listTargets(ctx context.Context, routeID string) ([]history.SavedRoute, error) {
	if routeID != "" {
		route, err := j.history.Get(ctx, routeID)
		if err != nil {
			return nil, err
		}
		return []history.SavedRoute{*route}, nil
	}

	routes, err := j.history.List(ctx)
	if err != nil {
		return nil, err
	}
	if j.config.MaxRoutes > 0 && len(routes) > j.config.MaxRoutes {
		routes = routes[:j.config.MaxRoutes]
	}
	return routes, nil
}

// refreshRoute rebuilds a route's passages from its stored waypoints and
// recomputes the score. Returns nil on success.
func (j *RefreshJob) refreshRoute(ctx context.Context, route history.SavedRoute) *RefreshError {
	logger := j.logger.With().Str("route_id", route.ID).Logger()

	points := waypointTrack(route.Passages)
	if len(points) < 2 {
		logger.Warn().Msg("saved route has too few waypoints to refresh")
		return &RefreshError{RouteID: route.ID, Error: "too few waypoints"}
	}

	ctx, cancel := context.WithTimeout(ctx, j.config.Timeout)
	defer cancel()

	passages, err := j.builder.Build(ctx, points, route.AvgSpeedKmh, route.Departure)
	if err != nil {
		return &RefreshError{RouteID: route.ID, Error: err.Error()}
	}

	bearing := geo.BearingDeg(points[0], points[len(points)-1])
	stats, _ := scoring.Aggregate(resolvedSamples(passages), &bearing)
	score := scoring.Evaluate(stats, scoring.ActivityCycling, scoring.AdviceContext{
		DistanceKm:    route.TotalDistanceKm,
		DurationHours: route.Duration.Hours(),
	})

	route.Passages = passages
	route.Score = score
	if err := j.history.Update(ctx, &route); err != nil {
		return &RefreshError{RouteID: route.ID, Error: fmt.Sprintf("updating history: %v", err)}
	}

	logger.Debug().Int("score", score.Value).Msg("route refreshed")
	return nil
}

// HealthCheck verifies provider connectivity with a single forecast fetch.
func (j *RefreshJob) HealthCheck(ctx context.Context) error {
	j.logger.Debug().Msg("running health check")

	// Amsterdam Centraal
	testPoint := geo.Coordinate{Lat: 52.3676, Lon: 4.9041}

	samples, err := j.weather.ForecastAt(ctx, testPoint, time.Now())
	if err != nil {
		return fmt.Errorf("health check forecast fetch: %w", err)
	}
	if len(samples) == 0 {
		return fmt.Errorf("health check returned no samples")
	}

	j.logger.Debug().Msg("health check passed")
	return nil
}

func (j *RefreshJob) updateMetrics(result *RefreshResult) {
	j.metrics.mu.Lock()
	defer j.metrics.mu.Unlock()

	j.metrics.TotalRuns++
	j.metrics.SuccessfulRoutes += int64(result.Successful)
	j.metrics.FailedRoutes += int64(result.Failed)
	j.metrics.LastRunAt = result.EndTime
	j.metrics.LastRunDuration = result.Duration
}

// Metrics exposes the job's counters.
func (j *RefreshJob) Metrics() *RefreshMetrics {
	return j.metrics
}

// waypointTrack recovers the coordinate track from stored passages.
func waypointTrack(passages []passage.Passage) []geo.Coordinate {
	points := make([]geo.Coordinate, 0, len(passages))
	for _, p := range passages {
		if p.Coordinate.Valid() {
			points = append(points, p.Coordinate)
		}
	}
	return points
}

// resolvedSamples collects the weather attached to resolved passages.
func resolvedSamples(passages []passage.Passage) []weather.HourlySample {
	var samples []weather.HourlySample
	for _, p := range passages {
		if p.Weather != nil {
			samples = append(samples, *p.Weather)
		}
	}
	return samples
}
