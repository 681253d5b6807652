package models

import (
	"github.com/ridecast/ridecast/internal/scoring"
	"github.com/ridecast/ridecast/internal/weather"
)

// RunConditionsRequest is the input for POST /v1/runs:conditions.
type RunConditionsRequest struct {
	// City is the run location, resolved via geocoding.
	City string `json:"city" validate:"required"`

	// Date is the day of the run, formatted 2006-01-02.
	Date string `json:"date" validate:"required"`

	// StartHour is the planned start, 0-23 local time.
	StartHour int `json:"startHour"`

	// DurationHours sizes the window; 0 defaults to 1.
	DurationHours int `json:"durationHours,omitempty"`

	// DistanceKm feeds the advisory context, not the score.
	DistanceKm float64 `json:"distanceKm,omitempty"`
}

// RunConditionsResponse carries the scored window for a run.
type RunConditionsResponse struct {
	GeneratedAt Timestamp              `json:"generatedAt"`
	Place       string                 `json:"place"`
	Date        string                 `json:"date"`
	Window      []weather.HourlySample `json:"window"`
	Stats       scoring.WindowStats    `json:"stats"`
	Score       scoring.ConditionScore `json:"score"`
}
