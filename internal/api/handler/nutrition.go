package handler

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/rs/zerolog"

	"github.com/ridecast/ridecast/internal/api/models"
	"github.com/ridecast/ridecast/internal/api/response"
	"github.com/ridecast/ridecast/internal/featureflags"
	"github.com/ridecast/ridecast/internal/nutrition"
)

// NutritionHandler handles nutrition planning endpoints.
type NutritionHandler struct {
	flags  *featureflags.Service
	logger zerolog.Logger
}

// NewNutritionHandler creates a new NutritionHandler.
func NewNutritionHandler(flags *featureflags.Service, logger zerolog.Logger) *NutritionHandler {
	return &NutritionHandler{flags: flags, logger: logger}
}

// PlanNutrition handles POST /v1/nutrition:plan - build a feeding schedule
// from an analysed passage sequence.
func (h *NutritionHandler) PlanNutrition(w http.ResponseWriter, r *http.Request) {
	if h.flags.IsDisabled(r.Context(), featureflags.FlagNutrition) {
		response.NotFound(w, r, "nutrition planning is not enabled")
		return
	}

	var input models.NutritionPlanRequest
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		response.BadRequest(w, r, "invalid JSON body", nil)
		return
	}

	if input.TotalDistanceKm <= 0 {
		response.BadRequest(w, r, "totalDistanceKm must be positive", []models.FieldError{
			{Field: "totalDistanceKm", Message: "must be greater than zero"},
		})
		return
	}

	plan := nutrition.Build(input.Passages, input.TotalDistanceKm, input.TargetCarbsPerHour)

	response.JSON(w, r, http.StatusOK, models.NutritionPlanResponse{
		GeneratedAt: models.Timestamp(time.Now()),
		Plan:        plan,
	})
}
