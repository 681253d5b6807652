// Package scoring turns aggregated weather windows into condition scores,
// clothing recommendations, and advisory lists for cycling and running.
package scoring

import (
	"errors"
	"math"

	"github.com/ridecast/ridecast/internal/weather"
)

// ErrNoSamples is returned when an aggregation window contains no samples.
var ErrNoSamples = errors.New("no weather samples in window")

// WindowStats holds aggregate statistics over an hourly weather window.
// Values are derived and immutable; recompute rather than mutate.
type WindowStats struct {
	AvgTemperature          float64 `json:"avgTemperature"`
	AvgApparentTemperature  float64 `json:"avgApparentTemperature"`
	AvgWindSpeed            float64 `json:"avgWindSpeed"`
	AvgHumidity             float64 `json:"avgHumidity"`
	MaxPrecipProbabilityPct float64 `json:"maxPrecipProbabilityPct"`
	TotalPrecipitationMm    float64 `json:"totalPrecipitationMm"`
	DaylightFractionPct     int     `json:"daylightFractionPct"`

	// HeadwindFractionPct is only set when a route bearing was supplied.
	HeadwindFractionPct *int `json:"headwindFractionPct,omitempty"`

	// Window extremes feed the advisory predicates.
	MinTemperature         float64 `json:"minTemperature"`
	MaxTemperature         float64 `json:"maxTemperature"`
	MinApparentTemperature float64 `json:"minApparentTemperature"`
	MaxWindSpeed           float64 `json:"maxWindSpeed"`

	// Weather-code flags across the window.
	HasStorm bool `json:"hasStorm"`
	HasFog   bool `json:"hasFog"`
	HasSun   bool `json:"hasSun"`

	SampleCount int `json:"sampleCount"`
}

// HasRain reports whether the window carries meaningful rain risk.
func (s WindowStats) HasRain() bool {
	return s.MaxPrecipProbabilityPct > 30 || s.TotalPrecipitationMm > 0.5
}

// HasStrongWind reports whether any hour in the window exceeds 35 km/h.
func (s WindowStats) HasStrongWind() bool {
	return s.MaxWindSpeed > 35
}

// TemperatureRange is the spread between the warmest and coldest hour.
func (s WindowStats) TemperatureRange() float64 {
	return s.MaxTemperature - s.MinTemperature
}

// Aggregate computes WindowStats over a set of hourly samples. When a route
// bearing is supplied, the headwind fraction is derived from per-sample wind
// directions. Returns ErrNoSamples for an empty window.
func Aggregate(samples []weather.HourlySample, routeBearingDeg *float64) (WindowStats, error) {
	if len(samples) == 0 {
		return WindowStats{}, ErrNoSamples
	}

	stats := WindowStats{
		MinTemperature:         math.Inf(1),
		MaxTemperature:         math.Inf(-1),
		MinApparentTemperature: math.Inf(1),
		SampleCount:            len(samples),
	}

	var (
		sumTemp, sumApparent, sumWind, sumHumidity float64
		daylight                                   int
	)

	for _, s := range samples {
		sumTemp += s.Temperature
		sumApparent += s.ApparentTemperature
		sumWind += s.WindSpeed
		sumHumidity += s.RelativeHumidityPct

		stats.MinTemperature = math.Min(stats.MinTemperature, s.Temperature)
		stats.MaxTemperature = math.Max(stats.MaxTemperature, s.Temperature)
		stats.MinApparentTemperature = math.Min(stats.MinApparentTemperature, s.ApparentTemperature)
		stats.MaxWindSpeed = math.Max(stats.MaxWindSpeed, s.WindSpeed)

		stats.MaxPrecipProbabilityPct = math.Max(stats.MaxPrecipProbabilityPct, s.PrecipitationProbabilityPct)
		stats.TotalPrecipitationMm += s.PrecipitationMm

		if s.IsDaylight {
			daylight++
		}
		if s.WeatherCode >= 95 {
			stats.HasStorm = true
		}
		if s.WeatherCode == 45 || s.WeatherCode == 48 {
			stats.HasFog = true
		}
		if s.WeatherCode == 0 || s.WeatherCode == 1 {
			stats.HasSun = true
		}
	}

	n := float64(len(samples))
	stats.AvgTemperature = sumTemp / n
	stats.AvgApparentTemperature = sumApparent / n
	stats.AvgWindSpeed = sumWind / n
	stats.AvgHumidity = sumHumidity / n
	stats.DaylightFractionPct = int(math.Round(100 * float64(daylight) / n))

	if routeBearingDeg != nil {
		pct := headwindFraction(samples, *routeBearingDeg)
		stats.HeadwindFractionPct = &pct
	}

	return stats, nil
}

// headwindFraction returns the share of samples whose wind is not favorable
// relative to the route bearing. An angular difference above 90 degrees means
// the wind has a tailwind component.
func headwindFraction(samples []weather.HourlySample, bearingDeg float64) int {
	favorable := 0
	for _, s := range samples {
		diff := math.Abs(s.WindDirectionDeg - bearingDeg)
		if diff > 180 {
			diff = 360 - diff
		}
		if diff > 90 {
			favorable++
		}
	}
	return int(math.Round(100 * (1 - float64(favorable)/float64(len(samples)))))
}
