// Package history stores analysed routes so riders can revisit and refresh
// past trips.
package history

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"

	"github.com/ridecast/ridecast/internal/passage"
	"github.com/ridecast/ridecast/internal/scoring"
)

// ErrRouteNotFound is returned when a saved route does not exist.
var ErrRouteNotFound = errors.New("saved route not found")

// MaxEntries caps the history list; saving beyond it evicts the oldest.
const MaxEntries = 30

// SavedRoute is one analysed trip kept in history.
type SavedRoute struct {
	ID              string                 `json:"id"`
	Name            string                 `json:"name"`
	SavedAt         time.Time              `json:"savedAt"`
	DisplayDate     string                 `json:"displayDate"`
	TotalDistanceKm float64                `json:"totalDistanceKm"`
	AvgSpeedKmh     float64                `json:"avgSpeedKmh"`
	Departure       time.Time              `json:"departure"`
	Duration        time.Duration          `json:"duration"`
	Passages        []passage.Passage      `json:"passages"`
	Score           scoring.ConditionScore `json:"score"`
}

// NewRouteID generates a saved-route identifier.
func NewRouteID() string {
	id := uuid.New().String()
	return "rte_" + id[:22]
}

// Repository defines the interface for saved-route storage.
type Repository interface {
	// List returns saved routes, newest first, capped at MaxEntries.
	List(ctx context.Context) ([]SavedRoute, error)

	// Get returns a single saved route by ID.
	Get(ctx context.Context, id string) (*SavedRoute, error)

	// Save creates or updates a route.
	Save(ctx context.Context, route *SavedRoute) error

	// Delete removes a route by ID.
	Delete(ctx context.Context, id string) error

	// Clear removes all saved routes.
	Clear(ctx context.Context) error
}
