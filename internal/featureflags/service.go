package featureflags

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/rs/zerolog"
)

const defaultCacheTTL = time.Minute

// ServiceConfig configures the flag service.
type ServiceConfig struct {
	Repository Repository
	Logger     zerolog.Logger

	// CacheTTL bounds how stale an in-memory flag snapshot may get.
	// Zero means defaultCacheTTL.
	CacheTTL time.Duration

	// DefaultFlags are returned when the repository has no value for a
	// key or cannot be reached. Nil means DefaultFlags().
	DefaultFlags map[string]*Flag
}

// Service evaluates feature flags. Reads go through a short-lived cache
// and fall back to defaults when the repository fails, so a database
// outage leaves every gated surface in its default state instead of
// erroring.
type Service struct {
	repo         Repository
	logger       zerolog.Logger
	cacheTTL     time.Duration
	defaultFlags map[string]*Flag

	mu          sync.RWMutex
	cache       map[string]*Flag
	cacheExpiry time.Time
}

// NewService creates a flag service around the given repository.
func NewService(cfg ServiceConfig) *Service {
	ttl := cfg.CacheTTL
	if ttl == 0 {
		ttl = defaultCacheTTL
	}

	defaults := cfg.DefaultFlags
	if defaults == nil {
		defaults = DefaultFlags()
	}

	return &Service{
		repo:         cfg.Repository,
		logger:       cfg.Logger,
		cacheTTL:     ttl,
		defaultFlags: defaults,
		cache:        make(map[string]*Flag),
	}
}

// GetFlag resolves a flag: cache, then repository, then the default.
// Returns nil only for keys with no default.
func (s *Service) GetFlag(ctx context.Context, key string) *Flag {
	if flag, ok := s.cached(key); ok {
		return flag
	}

	flag, err := s.repo.GetFlag(ctx, key)
	switch {
	case err == nil:
		s.storeCached(flag)
		return flag
	case !errors.Is(err, ErrFlagNotFound):
		s.logger.Warn().Err(err).Str("flag", key).Msg("flag lookup failed, using default")
	}

	return s.defaultFlags[key]
}

// GetAllFlags returns the stored flags layered over the defaults, so
// every known key is present even before an operator has set it.
func (s *Service) GetAllFlags(ctx context.Context) map[string]*Flag {
	result := make(map[string]*Flag, len(s.defaultFlags))
	for key, flag := range s.defaultFlags {
		result[key] = flag
	}

	stored, err := s.repo.GetAllFlags(ctx)
	if err != nil {
		s.logger.Warn().Err(err).Msg("flag listing failed, serving defaults")
		return result
	}
	for key, flag := range stored {
		result[key] = flag
	}

	s.mu.Lock()
	s.cache = stored
	s.cacheExpiry = time.Now().Add(s.cacheTTL)
	s.mu.Unlock()

	return result
}

// SetFlag persists one flag and refreshes its cache entry.
func (s *Service) SetFlag(ctx context.Context, flag *Flag) error {
	flag.UpdatedAt = time.Now()
	if err := s.repo.SetFlag(ctx, flag); err != nil {
		return err
	}

	s.storeCached(flag)
	return nil
}

// SetFlags persists several flags atomically and refreshes their cache
// entries.
func (s *Service) SetFlags(ctx context.Context, flags []*Flag) error {
	now := time.Now()
	for _, flag := range flags {
		flag.UpdatedAt = now
	}

	if err := s.repo.SetFlags(ctx, flags); err != nil {
		return err
	}

	s.mu.Lock()
	for _, flag := range flags {
		s.cache[flag.Key] = flag
	}
	s.mu.Unlock()

	return nil
}

// InvalidateCache drops the snapshot so the next read hits the
// repository.
func (s *Service) InvalidateCache() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.cache = make(map[string]*Flag)
	s.cacheExpiry = time.Time{}
}

// IsEnabled reports whether a boolean flag is on. Missing flags and
// non-boolean values count as off.
func (s *Service) IsEnabled(ctx context.Context, key string) bool {
	return s.GetFlag(ctx, key).BoolValue(false)
}

// IsDisabled is the inverse of IsEnabled.
func (s *Service) IsDisabled(ctx context.Context, key string) bool {
	return !s.IsEnabled(ctx, key)
}

func (s *Service) cached(key string) (*Flag, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if time.Now().After(s.cacheExpiry) {
		return nil, false
	}
	flag, ok := s.cache[key]
	return flag, ok
}

func (s *Service) storeCached(flag *Flag) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.cache[flag.Key] = flag
	if s.cacheExpiry.Before(time.Now()) {
		s.cacheExpiry = time.Now().Add(s.cacheTTL)
	}
}

// IsHistoryEnabled reports whether saved-route history is on.
func (s *Service) IsHistoryEnabled(ctx context.Context) bool {
	return s.IsEnabled(ctx, FlagHistory)
}

// IsNutritionEnabled reports whether nutrition planning is on.
func (s *Service) IsNutritionEnabled(ctx context.Context) bool {
	return s.IsEnabled(ctx, FlagNutrition)
}

// IsRunningEnabled reports whether the running conditions surface is on.
func (s *Service) IsRunningEnabled(ctx context.Context) bool {
	return s.IsEnabled(ctx, FlagRunning)
}

// IsBestDepartureEnabled reports whether best-departure analysis is on.
func (s *Service) IsBestDepartureEnabled(ctx context.Context) bool {
	return s.IsEnabled(ctx, FlagBestDeparture)
}

// IsRouteCreatorEnabled reports whether manual route creation is on.
func (s *Service) IsRouteCreatorEnabled(ctx context.Context) bool {
	return s.IsEnabled(ctx, FlagRouteCreator)
}

// IsExperimentalEnabled reports whether experimental features are on.
func (s *Service) IsExperimentalEnabled(ctx context.Context) bool {
	return s.IsEnabled(ctx, FlagExperimental)
}
