package handler

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/rs/zerolog"

	"github.com/ridecast/ridecast/internal/api/models"
	"github.com/ridecast/ridecast/internal/api/response"
	"github.com/ridecast/ridecast/internal/featureflags"
	"github.com/ridecast/ridecast/internal/scoring"
	"github.com/ridecast/ridecast/internal/weather"
)

// RunHandler handles running condition endpoints.
type RunHandler struct {
	forecast *weather.Service
	flags    *featureflags.Service
	logger   zerolog.Logger
}

// NewRunHandler creates a new RunHandler.
func NewRunHandler(forecast *weather.Service, flags *featureflags.Service, logger zerolog.Logger) *RunHandler {
	return &RunHandler{
		forecast: forecast,
		flags:    flags,
		logger:   logger,
	}
}

// RunConditions handles POST /v1/runs:conditions - score a run window.
func (h *RunHandler) RunConditions(w http.ResponseWriter, r *http.Request) {
	if h.flags.IsDisabled(r.Context(), featureflags.FlagRunning) {
		response.NotFound(w, r, "running conditions are not enabled")
		return
	}

	var input models.RunConditionsRequest
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		response.BadRequest(w, r, "invalid JSON body", nil)
		return
	}

	if input.City == "" {
		response.BadRequest(w, r, "city is required", []models.FieldError{
			{Field: "city", Message: "required"},
		})
		return
	}
	date, err := time.Parse(dateLayout, input.Date)
	if err != nil {
		response.BadRequest(w, r, "date must be formatted YYYY-MM-DD", []models.FieldError{
			{Field: "date", Message: "invalid date"},
		})
		return
	}
	if input.StartHour < 0 || input.StartHour > 23 {
		response.BadRequest(w, r, "startHour must be between 0 and 23", []models.FieldError{
			{Field: "startHour", Message: "out of range"},
		})
		return
	}

	duration := input.DurationHours
	if duration <= 0 {
		duration = 1
	}

	samples, err := h.forecast.ForecastFor(r.Context(), input.City, date)
	if err != nil {
		writeForecastError(w, r, err, h.logger)
		return
	}

	window := hourWindow(samples, input.StartHour, input.StartHour+duration)
	stats, _ := scoring.Aggregate(window, nil)
	score := scoring.Evaluate(stats, scoring.ActivityRunning, scoring.AdviceContext{
		DistanceKm:    input.DistanceKm,
		DurationHours: float64(duration),
	})

	response.JSON(w, r, http.StatusOK, models.RunConditionsResponse{
		GeneratedAt: models.Timestamp(time.Now()),
		Place:       input.City,
		Date:        input.Date,
		Window:      window,
		Stats:       stats,
		Score:       score,
	})
}

// hourWindow keeps the samples whose local hour falls in [startHour, endHour].
// endHour is capped at 23.
func hourWindow(samples []weather.HourlySample, startHour, endHour int) []weather.HourlySample {
	if endHour > 23 {
		endHour = 23
	}

	var window []weather.HourlySample
	for _, s := range samples {
		hour := s.Time.Hour()
		if hour >= startHour && hour <= endHour {
			window = append(window, s)
		}
	}
	return window
}
