package models

import (
	"github.com/ridecast/ridecast/internal/nutrition"
	"github.com/ridecast/ridecast/internal/passage"
	"github.com/ridecast/ridecast/internal/scoring"
)

// RouteAnalyzeRequest is the input for POST /v1/routes:analyze.
// Either Points or EncodedPolyline must carry the track.
type RouteAnalyzeRequest struct {
	// Name labels the route when it is saved to history.
	Name string `json:"name,omitempty"`

	// Points is the ordered GPX track, as decoded coordinates.
	Points []Point `json:"points,omitempty"`

	// EncodedPolyline is the track as a Google encoded polyline, an
	// alternative to Points for large tracks.
	EncodedPolyline string `json:"encodedPolyline,omitempty"`

	// AvgSpeedKmh is the planned average riding speed. Must be positive.
	AvgSpeedKmh float64 `json:"avgSpeedKmh" validate:"required,gt=0"`

	// Departure is the planned start time.
	Departure Timestamp `json:"departure" validate:"required"`

	// TargetCarbsPerHour tunes the nutrition plan; 0 picks the default.
	TargetCarbsPerHour int `json:"targetCarbsPerHour,omitempty"`

	// Save stores the analysis in history when the history flag is on.
	Save bool `json:"save,omitempty"`
}

// RouteAnalyzeResponse is the full analysis for a route.
type RouteAnalyzeResponse struct {
	GeneratedAt     Timestamp              `json:"generatedAt"`
	TotalDistanceKm float64                `json:"totalDistanceKm"`
	RouteBearingDeg float64                `json:"routeBearingDeg"`
	Passages        []passage.Passage      `json:"passages"`
	Stats           scoring.WindowStats    `json:"stats"`
	Score           scoring.ConditionScore `json:"score"`
	Nutrition       *nutrition.Plan        `json:"nutrition,omitempty"`
	SavedRouteID    string                 `json:"savedRouteId,omitempty"`
	Partial         bool                   `json:"partial,omitempty"`
}
