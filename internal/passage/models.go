// Package passage builds the timed, geocoded passage sequence for a route.
package passage

import (
	"time"

	"github.com/ridecast/ridecast/internal/geo"
	"github.com/ridecast/ridecast/internal/weather"
)

// Status tracks a passage through the resolution pipeline.
type Status string

// Passage lifecycle states.
const (
	StatusPending  Status = "pending"
	StatusResolved Status = "resolved"
	StatusFailed   Status = "failed"
)

// Passage is one resolved point along a route: a place, an arrival estimate,
// and the weather expected on arrival.
type Passage struct {
	PlaceName            string                `json:"placeName"`
	Coordinate           geo.Coordinate        `json:"coordinate"`
	EstimatedArrival     time.Time             `json:"estimatedArrival"`
	CumulativeDistanceKm float64               `json:"cumulativeDistanceKm"`
	Status               Status                `json:"status"`
	ErrorMessage         string                `json:"errorMessage,omitempty"`
	Weather              *weather.HourlySample `json:"weather,omitempty"`
}

// ResolvedCount returns how many passages completed the full pipeline.
func ResolvedCount(passages []Passage) int {
	n := 0
	for _, p := range passages {
		if p.Status == StatusResolved {
			n++
		}
	}
	return n
}
