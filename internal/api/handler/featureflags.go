package handler

import (
	"encoding/json"
	"net/http"

	"github.com/ridecast/ridecast/internal/api/models"
	"github.com/ridecast/ridecast/internal/api/response"
	"github.com/ridecast/ridecast/internal/featureflags"
)

// FeatureFlagsHandler handles feature flag endpoints.
type FeatureFlagsHandler struct {
	service *featureflags.Service
}

// NewFeatureFlagsHandler creates a new FeatureFlagsHandler.
func NewFeatureFlagsHandler(service *featureflags.Service) *FeatureFlagsHandler {
	return &FeatureFlagsHandler{service: service}
}

// ListFeatureFlags handles GET /v1/admin/feature-flags - list all flags with
// defaults merged in.
func (h *FeatureFlagsHandler) ListFeatureFlags(w http.ResponseWriter, r *http.Request) {
	response.JSON(w, r, http.StatusOK, models.FeatureFlagsResponse{
		Flags: h.service.GetAllFlags(r.Context()),
	})
}

// UpsertFeatureFlags handles PUT /v1/admin/feature-flags - update flags.
func (h *FeatureFlagsHandler) UpsertFeatureFlags(w http.ResponseWriter, r *http.Request) {
	var input models.FeatureFlagsUpdateRequest
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		response.BadRequest(w, r, "invalid JSON body", nil)
		return
	}
	if len(input.Flags) == 0 {
		response.BadRequest(w, r, "at least one flag is required", []models.FieldError{
			{Field: "flags", Message: "required"},
		})
		return
	}

	flags := make([]*featureflags.Flag, len(input.Flags))
	for i, update := range input.Flags {
		if update.Key == "" {
			response.BadRequest(w, r, "flag key is required", []models.FieldError{
				{Field: "flags.key", Message: "required"},
			})
			return
		}
		flags[i] = &featureflags.Flag{Key: update.Key, Value: update.Value}
	}

	if err := h.service.SetFlags(r.Context(), flags); err != nil {
		response.InternalError(w, r, "failed to update feature flags")
		return
	}

	response.NoContent(w, r)
}

// InvalidateCache handles POST /v1/admin/feature-flags/invalidate - drop the
// in-memory flag cache.
func (h *FeatureFlagsHandler) InvalidateCache(w http.ResponseWriter, r *http.Request) {
	h.service.InvalidateCache()
	response.NoContent(w, r)
}
