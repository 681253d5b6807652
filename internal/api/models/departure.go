package models

import "github.com/ridecast/ridecast/internal/scoring"

// BestDepartureRequest is the input for POST /v1/departures:best.
// The location comes from either Points (a track, scored with its overall
// bearing) or City (a single place, no headwind component).
type BestDepartureRequest struct {
	Points []Point `json:"points,omitempty"`
	City   string  `json:"city,omitempty"`

	// Date is the day to evaluate, formatted 2006-01-02.
	Date string `json:"date" validate:"required"`

	// AvgSpeedKmh plus the track length derive the window duration when
	// DurationHours is not given.
	AvgSpeedKmh   float64 `json:"avgSpeedKmh,omitempty"`
	DurationHours int     `json:"durationHours,omitempty"`

	// MinHour and MaxHour bound the candidate departure hours, inclusive.
	MinHour int `json:"minHour"`
	MaxHour int `json:"maxHour"`

	Activity Activity `json:"activity,omitempty"`
}

// BestDepartureResponse lists every evaluated departure hour and the winner.
type BestDepartureResponse struct {
	GeneratedAt Timestamp           `json:"generatedAt"`
	Place       string              `json:"place,omitempty"`
	Date        string              `json:"date"`
	Candidates  []scoring.Candidate `json:"candidates"`
	Best        scoring.Candidate   `json:"best"`
}
