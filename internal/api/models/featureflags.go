package models

import "github.com/ridecast/ridecast/internal/featureflags"

// FeatureFlagsResponse lists all flags, defaults merged in.
type FeatureFlagsResponse struct {
	Flags map[string]*featureflags.Flag `json:"flags"`
}

// FlagUpdate sets a single flag.
type FlagUpdate struct {
	Key   string      `json:"key" validate:"required"`
	Value interface{} `json:"value"`
}

// FeatureFlagsUpdateRequest is the input for PUT /v1/admin/feature-flags.
type FeatureFlagsUpdateRequest struct {
	Flags []FlagUpdate `json:"flags" validate:"required,min=1"`
}
