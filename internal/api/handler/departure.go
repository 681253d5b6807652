package handler

import (
	"encoding/json"
	"errors"
	"math"
	"net/http"
	"time"

	"github.com/rs/zerolog"

	"github.com/ridecast/ridecast/internal/api/models"
	"github.com/ridecast/ridecast/internal/api/response"
	"github.com/ridecast/ridecast/internal/featureflags"
	"github.com/ridecast/ridecast/internal/geo"
	"github.com/ridecast/ridecast/internal/geocode"
	"github.com/ridecast/ridecast/internal/scoring"
	"github.com/ridecast/ridecast/internal/weather"
)

// dateLayout is the calendar-day format used by the planning endpoints.
const dateLayout = "2006-01-02"

// Default candidate hour range when the request leaves it open.
const (
	defaultMinHour = 6
	defaultMaxHour = 20
)

// DepartureHandler handles best-departure analysis.
type DepartureHandler struct {
	forecast *weather.Service
	flags    *featureflags.Service
	logger   zerolog.Logger
}

// NewDepartureHandler creates a new DepartureHandler.
func NewDepartureHandler(forecast *weather.Service, flags *featureflags.Service, logger zerolog.Logger) *DepartureHandler {
	return &DepartureHandler{
		forecast: forecast,
		flags:    flags,
		logger:   logger,
	}
}

// BestDeparture handles POST /v1/departures:best - rank candidate departure
// hours for a day.
func (h *DepartureHandler) BestDeparture(w http.ResponseWriter, r *http.Request) {
	if h.flags.IsDisabled(r.Context(), featureflags.FlagBestDeparture) {
		response.NotFound(w, r, "best-departure analysis is not enabled")
		return
	}

	var input models.BestDepartureRequest
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		response.BadRequest(w, r, "invalid JSON body", nil)
		return
	}

	date, err := time.Parse(dateLayout, input.Date)
	if err != nil {
		response.BadRequest(w, r, "date must be formatted YYYY-MM-DD", []models.FieldError{
			{Field: "date", Message: "invalid date"},
		})
		return
	}
	if len(input.Points) < 2 && input.City == "" {
		response.BadRequest(w, r, "either points or city is required", []models.FieldError{
			{Field: "points", Message: "required if city not provided"},
			{Field: "city", Message: "required if points not provided"},
		})
		return
	}

	minHour, maxHour := input.MinHour, input.MaxHour
	if minHour == 0 && maxHour == 0 {
		minHour, maxHour = defaultMinHour, defaultMaxHour
	}

	var (
		samples    []weather.HourlySample
		bearingPtr *float64
		place      = input.City
	)

	if len(input.Points) >= 2 {
		points := trackPoints(input.Points, "")
		bearing := geo.BearingDeg(points[0], points[len(points)-1])
		bearingPtr = &bearing
		// The route midpoint stands in for the whole track's weather.
		mid := points[len(points)/2]
		samples, err = h.forecast.ForecastAt(r.Context(), mid, date)
	} else {
		samples, err = h.forecast.ForecastFor(r.Context(), input.City, date)
	}
	if err != nil {
		writeForecastError(w, r, err, h.logger)
		return
	}

	duration := input.DurationHours
	if duration <= 0 && input.AvgSpeedKmh > 0 && len(input.Points) >= 2 {
		duration = int(math.Ceil(geo.TotalDistanceKm(trackPoints(input.Points, "")) / input.AvgSpeedKmh))
	}
	if duration <= 0 {
		duration = 1
	}

	result, err := scoring.SelectBestWindow(samples, minHour, maxHour, duration, bearingPtr, activityFrom(input.Activity))
	if err != nil {
		if errors.Is(err, scoring.ErrNoCandidates) {
			response.NotFound(w, r, "no forecast data for the requested day and hour range")
			return
		}
		response.BadRequest(w, r, err.Error(), nil)
		return
	}

	response.JSON(w, r, http.StatusOK, models.BestDepartureResponse{
		GeneratedAt: models.Timestamp(time.Now()),
		Place:       place,
		Date:        input.Date,
		Candidates:  result.Candidates,
		Best:        result.Best,
	})
}

// writeForecastError maps upstream failures to problem responses.
func writeForecastError(w http.ResponseWriter, r *http.Request, err error, logger zerolog.Logger) {
	switch {
	case errors.Is(err, geocode.ErrPlaceNotFound):
		response.NotFound(w, r, "place not found")
	case errors.Is(err, weather.ErrProviderUnavailable):
		response.ServiceUnavailable(w, r, "weather provider unavailable")
	case errors.Is(err, weather.ErrInvalidCoordinates):
		response.BadRequest(w, r, "coordinates out of range", nil)
	default:
		logger.Error().Err(err).Msg("forecast fetch failed")
		response.InternalError(w, r, "forecast fetch failed")
	}
}

// activityFrom maps the API activity to the scoring profile, defaulting to
// cycling.
func activityFrom(a models.Activity) scoring.Activity {
	if a == models.ActivityRunning {
		return scoring.ActivityRunning
	}
	return scoring.ActivityCycling
}
