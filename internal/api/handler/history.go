package handler

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"

	"github.com/ridecast/ridecast/internal/api/models"
	"github.com/ridecast/ridecast/internal/api/response"
	"github.com/ridecast/ridecast/internal/featureflags"
	"github.com/ridecast/ridecast/internal/history"
)

// HistoryHandler handles saved-route history endpoints.
type HistoryHandler struct {
	service *history.Service
	flags   *featureflags.Service
	logger  zerolog.Logger
}

// NewHistoryHandler creates a new HistoryHandler.
func NewHistoryHandler(service *history.Service, flags *featureflags.Service, logger zerolog.Logger) *HistoryHandler {
	return &HistoryHandler{
		service: service,
		flags:   flags,
		logger:  logger,
	}
}

// enabled gates the whole surface on the history flag.
func (h *HistoryHandler) enabled(w http.ResponseWriter, r *http.Request) bool {
	if h.flags.IsDisabled(r.Context(), featureflags.FlagHistory) {
		response.NotFound(w, r, "route history is not enabled")
		return false
	}
	return true
}

// ListRoutes handles GET /v1/history - list saved routes, newest first.
func (h *HistoryHandler) ListRoutes(w http.ResponseWriter, r *http.Request) {
	if !h.enabled(w, r) {
		return
	}

	routes, err := h.service.List(r.Context())
	if err != nil {
		h.logger.Error().Err(err).Msg("failed to list saved routes")
		response.InternalError(w, r, "failed to list saved routes")
		return
	}
	if routes == nil {
		routes = []history.SavedRoute{}
	}

	response.JSON(w, r, http.StatusOK, models.HistoryListResponse{Routes: routes})
}

// GetRoute handles GET /v1/history/{routeID} - fetch one saved route.
func (h *HistoryHandler) GetRoute(w http.ResponseWriter, r *http.Request) {
	if !h.enabled(w, r) {
		return
	}

	route, err := h.service.Get(r.Context(), chi.URLParam(r, "routeID"))
	if err != nil {
		if errors.Is(err, history.ErrRouteNotFound) {
			response.NotFound(w, r, "saved route not found")
			return
		}
		h.logger.Error().Err(err).Msg("failed to get saved route")
		response.InternalError(w, r, "failed to get saved route")
		return
	}

	response.JSON(w, r, http.StatusOK, route)
}

// SaveRoute handles POST /v1/history - persist an analysis.
func (h *HistoryHandler) SaveRoute(w http.ResponseWriter, r *http.Request) {
	if !h.enabled(w, r) {
		return
	}

	var input models.HistorySaveRequest
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		response.BadRequest(w, r, "invalid JSON body", nil)
		return
	}

	if input.Name == "" {
		response.BadRequest(w, r, "name is required", []models.FieldError{
			{Field: "name", Message: "required"},
		})
		return
	}
	if input.AvgSpeedKmh <= 0 || input.TotalDistanceKm <= 0 {
		response.BadRequest(w, r, "avgSpeedKmh and totalDistanceKm must be positive", []models.FieldError{
			{Field: "avgSpeedKmh", Message: "must be greater than zero"},
			{Field: "totalDistanceKm", Message: "must be greater than zero"},
		})
		return
	}

	route, err := h.service.SaveAnalysis(r.Context(), input.Name, input.Departure.Time(),
		input.AvgSpeedKmh, input.TotalDistanceKm, input.Passages, input.Score)
	if err != nil {
		h.logger.Error().Err(err).Msg("failed to save route")
		response.InternalError(w, r, "failed to save route")
		return
	}

	response.Created(w, r, "/v1/history/"+route.ID, route)
}

// DeleteRoute handles DELETE /v1/history/{routeID} - remove one saved route.
func (h *HistoryHandler) DeleteRoute(w http.ResponseWriter, r *http.Request) {
	if !h.enabled(w, r) {
		return
	}

	err := h.service.Delete(r.Context(), chi.URLParam(r, "routeID"))
	if err != nil {
		if errors.Is(err, history.ErrRouteNotFound) {
			response.NotFound(w, r, "saved route not found")
			return
		}
		h.logger.Error().Err(err).Msg("failed to delete saved route")
		response.InternalError(w, r, "failed to delete saved route")
		return
	}

	response.NoContent(w, r)
}

// ClearRoutes handles DELETE /v1/history - remove the whole history.
func (h *HistoryHandler) ClearRoutes(w http.ResponseWriter, r *http.Request) {
	if !h.enabled(w, r) {
		return
	}

	if err := h.service.Clear(r.Context()); err != nil {
		h.logger.Error().Err(err).Msg("failed to clear history")
		response.InternalError(w, r, "failed to clear history")
		return
	}

	response.NoContent(w, r)
}
