package history

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/ridecast/ridecast/internal/passage"
	"github.com/ridecast/ridecast/internal/scoring"
)

// ServiceConfig holds configuration for the history service.
type ServiceConfig struct {
	Repository Repository
	Logger     zerolog.Logger
}

// Service manages the saved-route history on top of a repository.
type Service struct {
	repo   Repository
	logger zerolog.Logger
}

// NewService creates a new history service.
func NewService(cfg ServiceConfig) *Service {
	return &Service{
		repo:   cfg.Repository,
		logger: cfg.Logger,
	}
}

// SaveAnalysis stores a freshly analysed route and returns it with its
// assigned ID.
func (s *Service) SaveAnalysis(ctx context.Context, name string, departure time.Time, avgSpeedKmh, totalDistanceKm float64, passages []passage.Passage, score scoring.ConditionScore) (*SavedRoute, error) {
	route := &SavedRoute{
		ID:              NewRouteID(),
		Name:            name,
		SavedAt:         time.Now(),
		DisplayDate:     departure.Format("Mon 2 Jan 2006, 15:04"),
		TotalDistanceKm: totalDistanceKm,
		AvgSpeedKmh:     avgSpeedKmh,
		Departure:       departure,
		Duration:        rideDuration(totalDistanceKm, avgSpeedKmh),
		Passages:        passages,
		Score:           score,
	}

	if err := s.repo.Save(ctx, route); err != nil {
		return nil, fmt.Errorf("saving route: %w", err)
	}

	s.logger.Info().
		Str("route_id", route.ID).
		Str("name", route.Name).
		Float64("distance_km", route.TotalDistanceKm).
		Msg("route saved to history")

	return route, nil
}

// Update overwrites an existing saved route, typically after a refresh.
func (s *Service) Update(ctx context.Context, route *SavedRoute) error {
	if _, err := s.repo.Get(ctx, route.ID); err != nil {
		return err
	}
	return s.repo.Save(ctx, route)
}

// List returns saved routes, newest first.
func (s *Service) List(ctx context.Context) ([]SavedRoute, error) {
	return s.repo.List(ctx)
}

// Get returns a single saved route.
func (s *Service) Get(ctx context.Context, id string) (*SavedRoute, error) {
	return s.repo.Get(ctx, id)
}

// Delete removes a saved route.
func (s *Service) Delete(ctx context.Context, id string) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		return err
	}
	s.logger.Info().Str("route_id", id).Msg("route deleted from history")
	return nil
}

// Clear removes the whole history.
func (s *Service) Clear(ctx context.Context) error {
	if err := s.repo.Clear(ctx); err != nil {
		return err
	}
	s.logger.Info().Msg("history cleared")
	return nil
}

func rideDuration(distanceKm, avgSpeedKmh float64) time.Duration {
	if avgSpeedKmh <= 0 {
		return 0
	}
	return time.Duration(distanceKm / avgSpeedKmh * float64(time.Hour))
}
