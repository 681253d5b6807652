package models

import (
	"github.com/ridecast/ridecast/internal/history"
	"github.com/ridecast/ridecast/internal/passage"
	"github.com/ridecast/ridecast/internal/scoring"
)

// HistorySaveRequest is the input for POST /v1/history. It mirrors the fields
// of a routes:analyze response so a client can persist an analysis verbatim.
type HistorySaveRequest struct {
	Name            string                 `json:"name" validate:"required"`
	Departure       Timestamp              `json:"departure" validate:"required"`
	AvgSpeedKmh     float64                `json:"avgSpeedKmh" validate:"required,gt=0"`
	TotalDistanceKm float64                `json:"totalDistanceKm" validate:"required,gt=0"`
	Passages        []passage.Passage      `json:"passages"`
	Score           scoring.ConditionScore `json:"score"`
}

// HistoryListResponse lists saved routes, newest first.
type HistoryListResponse struct {
	Routes []history.SavedRoute `json:"routes"`
}
