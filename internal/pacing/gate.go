// Package pacing provides fixed-interval request gates for upstream APIs with
// usage policies that forbid bursts (Nominatim asks for at most one request
// per second).
package pacing

import (
	"context"
	"time"

	"golang.org/x/time/rate"
)

// Gate spaces calls to an upstream provider at a fixed minimum interval.
// It is safe for concurrent use; concurrent waiters are serialized.
type Gate struct {
	limiter *rate.Limiter
}

// NewGate creates a gate enforcing at least interval between permitted calls.
// A non-positive interval yields a gate that never blocks.
func NewGate(interval time.Duration) *Gate {
	if interval <= 0 {
		return &Gate{limiter: rate.NewLimiter(rate.Inf, 1)}
	}
	return &Gate{limiter: rate.NewLimiter(rate.Every(interval), 1)}
}

// Wait blocks until the next call is permitted or the context is done.
func (g *Gate) Wait(ctx context.Context) error {
	return g.limiter.Wait(ctx)
}

// Default intervals for the providers this service talks to.
const (
	// GeocodeInterval satisfies the Nominatim usage policy with margin.
	GeocodeInterval = 1100 * time.Millisecond

	// ForecastInterval keeps sequential Open-Meteo calls polite.
	ForecastInterval = 300 * time.Millisecond
)
