package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/rs/zerolog"

	"github.com/ridecast/ridecast/internal/api/models"
	"github.com/ridecast/ridecast/internal/api/response"
	"github.com/ridecast/ridecast/internal/featureflags"
	"github.com/ridecast/ridecast/internal/geo"
	"github.com/ridecast/ridecast/internal/history"
	"github.com/ridecast/ridecast/internal/nutrition"
	"github.com/ridecast/ridecast/internal/passage"
	"github.com/ridecast/ridecast/internal/scoring"
	"github.com/ridecast/ridecast/internal/weather"
	"github.com/ridecast/ridecast/pkg/polyline"
)

// RouteHandler handles route analysis endpoints.
type RouteHandler struct {
	builder *passage.Builder
	history *history.Service
	flags   *featureflags.Service
	logger  zerolog.Logger
}

// NewRouteHandler creates a new RouteHandler.
func NewRouteHandler(builder *passage.Builder, historyService *history.Service, flags *featureflags.Service, logger zerolog.Logger) *RouteHandler {
	return &RouteHandler{
		builder: builder,
		history: historyService,
		flags:   flags,
		logger:  logger,
	}
}

// AnalyzeRoute handles POST /v1/routes:analyze - run the full passage and
// scoring pipeline for a track.
func (h *RouteHandler) AnalyzeRoute(w http.ResponseWriter, r *http.Request) {
	var input models.RouteAnalyzeRequest
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		response.BadRequest(w, r, "invalid JSON body", nil)
		return
	}

	points := trackPoints(input.Points, input.EncodedPolyline)
	if len(points) < 2 {
		response.BadRequest(w, r, "a track of at least two points is required", []models.FieldError{
			{Field: "points", Message: "required if encodedPolyline not provided"},
			{Field: "encodedPolyline", Message: "required if points not provided"},
		})
		return
	}
	if input.AvgSpeedKmh <= 0 {
		response.BadRequest(w, r, "avgSpeedKmh must be positive", []models.FieldError{
			{Field: "avgSpeedKmh", Message: "must be greater than zero"},
		})
		return
	}
	departure := input.Departure.Time()
	if departure.IsZero() {
		response.BadRequest(w, r, "departure is required", []models.FieldError{
			{Field: "departure", Message: "required"},
		})
		return
	}

	passages, err := h.builder.Build(r.Context(), points, input.AvgSpeedKmh, departure)
	partial := false
	if err != nil {
		if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
			partial = true
		} else {
			h.logger.Error().Err(err).Msg("route analysis failed")
			response.InternalError(w, r, "route analysis failed")
			return
		}
	}

	totalKm := geo.TotalDistanceKm(points)
	bearing := geo.BearingDeg(points[0], points[len(points)-1])

	stats, _ := scoring.Aggregate(passageSamples(passages), &bearing)
	score := scoring.Evaluate(stats, scoring.ActivityCycling, scoring.AdviceContext{
		DistanceKm:    totalKm,
		DurationHours: totalKm / input.AvgSpeedKmh,
	})

	resp := models.RouteAnalyzeResponse{
		GeneratedAt:     models.Timestamp(time.Now()),
		TotalDistanceKm: totalKm,
		RouteBearingDeg: bearing,
		Passages:        passages,
		Stats:           stats,
		Score:           score,
		Partial:         partial,
	}

	if h.flags.IsNutritionEnabled(r.Context()) {
		plan := nutrition.Build(passages, totalKm, input.TargetCarbsPerHour)
		resp.Nutrition = &plan
	}

	if input.Save && h.flags.IsHistoryEnabled(r.Context()) {
		name := input.Name
		if name == "" {
			name = "Unnamed route"
		}
		saved, saveErr := h.history.SaveAnalysis(r.Context(), name, departure, input.AvgSpeedKmh, totalKm, passages, score)
		if saveErr != nil {
			h.logger.Warn().Err(saveErr).Msg("failed to save analysis to history")
		} else {
			resp.SavedRouteID = saved.ID
		}
	}

	response.JSON(w, r, http.StatusOK, resp)
}

// trackPoints normalizes the two track input forms into coordinates.
func trackPoints(points []models.Point, encoded string) []geo.Coordinate {
	if len(points) > 0 {
		coords := make([]geo.Coordinate, len(points))
		for i, p := range points {
			coords[i] = geo.Coordinate{Lat: p.Lat, Lon: p.Lon}
		}
		return coords
	}

	decoded := polyline.Decode(encoded)
	coords := make([]geo.Coordinate, len(decoded))
	for i, p := range decoded {
		coords[i] = geo.Coordinate{Lat: p.Lat, Lon: p.Lon}
	}
	return coords
}

// passageSamples collects the weather attached to resolved passages.
func passageSamples(passages []passage.Passage) []weather.HourlySample {
	var samples []weather.HourlySample
	for _, p := range passages {
		if p.Weather != nil {
			samples = append(samples, *p.Weather)
		}
	}
	return samples
}
