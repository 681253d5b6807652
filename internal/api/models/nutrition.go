package models

import (
	"github.com/ridecast/ridecast/internal/nutrition"
	"github.com/ridecast/ridecast/internal/passage"
)

// NutritionPlanRequest is the input for POST /v1/nutrition:plan. Passages
// come from a previous routes:analyze response.
type NutritionPlanRequest struct {
	Passages           []passage.Passage `json:"passages" validate:"required"`
	TotalDistanceKm    float64           `json:"totalDistanceKm" validate:"required,gt=0"`
	TargetCarbsPerHour int               `json:"targetCarbsPerHour,omitempty"`
}

// NutritionPlanResponse wraps the generated plan.
type NutritionPlanResponse struct {
	GeneratedAt Timestamp      `json:"generatedAt"`
	Plan        nutrition.Plan `json:"plan"`
}
