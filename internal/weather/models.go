// Package weather provides hourly forecast retrieval and weather code
// classification for trip analysis.
package weather

import (
	"errors"
	"fmt"
	"math"
	"time"
)

// ErrNoForecast is returned when a provider has no hourly data for a request.
var ErrNoForecast = errors.New("no forecast data available")

// HourlySample is a single hour of forecast data.
type HourlySample struct {
	Time                        time.Time `json:"time"`
	Temperature                 float64   `json:"temperature"`
	ApparentTemperature         float64   `json:"apparentTemperature"`
	WindSpeed                   float64   `json:"windSpeed"`
	WindDirectionDeg            float64   `json:"windDirectionDeg"`
	WeatherCode                 int       `json:"weatherCode"`
	IsDaylight                  bool      `json:"isDaylight"`
	PrecipitationMm             float64   `json:"precipitationMm"`
	PrecipitationProbabilityPct float64   `json:"precipitationProbabilityPct"`
	RelativeHumidityPct         float64   `json:"relativeHumidityPct"`
}

// CodeInfo describes a WMO weather code.
type CodeInfo struct {
	Icon        string `json:"icon"`
	Description string `json:"description"`
}

// Classify maps a WMO weather code to an icon and human description.
// Unknown codes are passed through in the description so nothing is hidden.
func Classify(code int) CodeInfo {
	switch code {
	case 0:
		return CodeInfo{Icon: "sun", Description: "clear sky"}
	case 1, 2:
		return CodeInfo{Icon: "sun-cloud", Description: "partly cloudy"}
	case 3:
		return CodeInfo{Icon: "cloud", Description: "overcast"}
	case 45, 48:
		return CodeInfo{Icon: "fog", Description: "fog"}
	case 51, 53, 55:
		return CodeInfo{Icon: "drizzle", Description: "drizzle"}
	case 56, 57:
		return CodeInfo{Icon: "drizzle-ice", Description: "freezing drizzle"}
	case 61, 63, 65:
		return CodeInfo{Icon: "rain", Description: "rain"}
	case 66, 67:
		return CodeInfo{Icon: "rain-ice", Description: "freezing rain"}
	case 71, 73, 75:
		return CodeInfo{Icon: "snow", Description: "snow"}
	case 77:
		return CodeInfo{Icon: "snow", Description: "snow grains"}
	case 80, 81, 82:
		return CodeInfo{Icon: "showers", Description: "rain showers"}
	case 85, 86:
		return CodeInfo{Icon: "snow", Description: "snow showers"}
	case 95:
		return CodeInfo{Icon: "storm", Description: "thunderstorm"}
	case 96, 99:
		return CodeInfo{Icon: "storm-hail", Description: "thunderstorm with hail"}
	default:
		return CodeInfo{Icon: "unknown", Description: fmt.Sprintf("unknown (%d)", code)}
	}
}

var compassPoints = [16]string{
	"N", "NNE", "NE", "ENE", "E", "ESE", "SE", "SSE",
	"S", "SSW", "SW", "WSW", "W", "WNW", "NW", "NNW",
}

// Cardinal converts a wind direction in degrees to a 16-point compass
// abbreviation. NaN input yields an empty string.
func Cardinal(deg float64) string {
	if math.IsNaN(deg) {
		return ""
	}
	normalized := math.Mod(deg, 360)
	if normalized < 0 {
		normalized += 360
	}
	idx := int(math.Floor(normalized/22.5+0.5)) % 16
	return compassPoints[idx]
}
