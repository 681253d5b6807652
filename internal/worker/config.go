// Package worker provides background job processing for RideCast.
package worker

import (
	"time"
)

// RefreshConfig holds configuration for the saved-route refresh job.
type RefreshConfig struct {
	// Concurrency is the number of routes refreshed in parallel. Upstream
	// pacing lives in the provider clients, so parallel routes stay within
	// the rate limits. Default: 2.
	Concurrency int

	// Timeout bounds the refresh of a single route.
	// Default: 5 minutes.
	Timeout time.Duration

	// MaxRoutes caps how many saved routes one job run touches, oldest
	// forecasts first. 0 means all.
	MaxRoutes int
}

// DefaultRefreshConfig returns the default refresh configuration.
func DefaultRefreshConfig() RefreshConfig {
	return RefreshConfig{
		Concurrency: 2,
		Timeout:     5 * time.Minute,
	}
}

func (c RefreshConfig) withDefaults() RefreshConfig {
	if c.Concurrency <= 0 {
		c.Concurrency = 2
	}
	if c.Timeout <= 0 {
		c.Timeout = 5 * time.Minute
	}
	return c
}
