// Package featureflags provides feature flag management.
package featureflags

import (
	"time"
)

// Feature flag keys. All features ship disabled and are switched on per
// environment.
const (
	// FlagHistory enables the saved-route history surface.
	FlagHistory = "history"

	// FlagNutrition enables nutrition plan generation.
	FlagNutrition = "nutrition"

	// FlagRunning enables the running conditions surface.
	FlagRunning = "running"

	// FlagBestDeparture enables best-departure-hour analysis.
	FlagBestDeparture = "best_departure"

	// FlagRouteCreator enables the manual route creation endpoint.
	FlagRouteCreator = "route_creator"

	// FlagExperimental gates unfinished features.
	FlagExperimental = "experimental"
)

// Flag represents a feature flag.
type Flag struct {
	Key       string      `json:"key"`
	Value     interface{} `json:"value"`
	UpdatedAt time.Time   `json:"updatedAt"`
}

// BoolValue returns the flag value as a bool, or fallback when the flag is
// nil or not a bool.
func (f *Flag) BoolValue(fallback bool) bool {
	if f == nil {
		return fallback
	}
	if v, ok := f.Value.(bool); ok {
		return v
	}
	return fallback
}

// DefaultFlags returns the default state of every known flag: off.
func DefaultFlags() map[string]*Flag {
	keys := []string{
		FlagHistory,
		FlagNutrition,
		FlagRunning,
		FlagBestDeparture,
		FlagRouteCreator,
		FlagExperimental,
	}

	flags := make(map[string]*Flag, len(keys))
	for _, key := range keys {
		flags[key] = &Flag{Key: key, Value: false}
	}
	return flags
}
