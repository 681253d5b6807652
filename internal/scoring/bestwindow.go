package scoring

import (
	"errors"
	"fmt"

	"github.com/ridecast/ridecast/internal/weather"
)

// ErrNoCandidates is returned when no candidate hour has any samples.
var ErrNoCandidates = errors.New("no candidate windows with weather data")

// Candidate is one evaluated departure hour.
type Candidate struct {
	Hour     int         `json:"hour"`
	Stats    WindowStats `json:"stats"`
	Score    int         `json:"score"`
	Band     Band        `json:"band"`
	Warnings []string    `json:"warnings"`
}

// BestWindowResult lists all evaluated candidates plus the winning one.
type BestWindowResult struct {
	Candidates []Candidate `json:"candidates"`
	Best       Candidate   `json:"best"`
}

// windowTable is the departure-hour penalty ladder set. It is tuned more
// finely than the activity scorers because candidate windows are short and
// compared against each other rather than judged in isolation.
var windowColdLadder = []coldBracket{
	{below: 0, penalty: 35},
	{below: 5, penalty: 20},
	{below: 10, penalty: 10},
	{below: 14, penalty: 5},
}

var windowHotLadder = []bracket{
	{above: 35, penalty: 30},
	{above: 30, penalty: 20},
	{above: 26, penalty: 10},
	{above: 22, penalty: 3},
}

var windowWindLadder = []bracket{
	{above: 50, penalty: 25},
	{above: 35, penalty: 15},
	{above: 20, penalty: 8},
	{above: 12, penalty: 3},
}

var windowHeadwindLadder = []bracket{
	{above: 70, penalty: 10},
	{above: 50, penalty: 5},
}

var windowPrecipProbLadder = []bracket{
	{above: 80, penalty: 20},
	{above: 60, penalty: 12},
	{above: 40, penalty: 6},
	{above: 20, penalty: 2},
}

var windowPrecipLadder = []bracket{
	{above: 5, penalty: 15},
	{above: 2, penalty: 8},
	{above: 0.5, penalty: 3},
}

var windowHumidityLadder = []bracket{
	{above: 85, penalty: 8},
	{above: 70, penalty: 3},
}

var windowBands = []bandCut{
	{85, BandExcellent},
	{70, BandVeryGood},
	{55, BandGood},
	{40, BandFair},
	{25, BandPoor},
}

// WindowScore scores a single candidate window with the departure-hour
// ladder set.
func WindowScore(stats WindowStats) (int, Band) {
	if stats.SampleCount == 0 {
		return 0, BandInsufficientData
	}

	score := 100

	before := score
	score = applyColdLadder(score, windowColdLadder, stats.AvgTemperature)
	if score == before {
		score = applyLadder(score, windowHotLadder, stats.AvgTemperature)
	}

	score = applyLadder(score, windowWindLadder, stats.AvgWindSpeed)
	if stats.HeadwindFractionPct != nil {
		score = applyLadder(score, windowHeadwindLadder, float64(*stats.HeadwindFractionPct))
	}
	score = applyLadder(score, windowPrecipProbLadder, stats.MaxPrecipProbabilityPct)
	score = applyLadder(score, windowPrecipLadder, stats.TotalPrecipitationMm)
	score = applyLadder(score, windowHumidityLadder, stats.AvgHumidity)

	switch {
	case stats.DaylightFractionPct == 100:
		score += 5
	case stats.DaylightFractionPct < 30:
		score -= 5
	}

	score = clamp(score, 0, 100)
	return score, bandFor(score, windowBands)
}

// SelectBestWindow evaluates every candidate start hour in [minHour, maxHour]
// over a window of durationHours (capped at 23:00) and picks the best one.
// Candidates whose window holds no samples are skipped. Ties go to the
// earliest hour.
func SelectBestWindow(samples []weather.HourlySample, minHour, maxHour, durationHours int, routeBearingDeg *float64, activity Activity) (BestWindowResult, error) {
	if minHour < 0 || maxHour > 23 || minHour > maxHour {
		return BestWindowResult{}, fmt.Errorf("invalid hour range [%d, %d]", minHour, maxHour)
	}
	if durationHours <= 0 {
		return BestWindowResult{}, fmt.Errorf("duration must be positive, got %d", durationHours)
	}

	var result BestWindowResult
	bestIdx := -1

	for h := minHour; h <= maxHour; h++ {
		endHour := h + durationHours
		if endHour > 23 {
			endHour = 23
		}

		window := samplesInHourRange(samples, h, endHour)
		if len(window) == 0 {
			continue
		}

		stats, err := Aggregate(window, routeBearingDeg)
		if err != nil {
			continue
		}

		score, band := WindowScore(stats)
		result.Candidates = append(result.Candidates, Candidate{
			Hour:     h,
			Stats:    stats,
			Score:    score,
			Band:     band,
			Warnings: departureWarnings(h, stats, activity),
		})

		// Strictly greater keeps the earliest hour on ties.
		if bestIdx == -1 || score > result.Candidates[bestIdx].Score {
			bestIdx = len(result.Candidates) - 1
		}
	}

	if bestIdx == -1 {
		return BestWindowResult{}, ErrNoCandidates
	}

	result.Best = result.Candidates[bestIdx]
	return result, nil
}

// samplesInHourRange keeps samples whose local hour falls in the closed range.
func samplesInHourRange(samples []weather.HourlySample, startHour, endHour int) []weather.HourlySample {
	var window []weather.HourlySample
	for _, s := range samples {
		h := s.Time.Hour()
		if h >= startHour && h <= endHour {
			window = append(window, s)
		}
	}
	return window
}

// departureWarnings are short per-candidate notes rendered next to each hour.
func departureWarnings(hour int, stats WindowStats, activity Activity) []string {
	warnings := []string{}

	switch {
	case stats.AvgTemperature < 2:
		warnings = append(warnings, "Very cold at this hour.")
	case stats.AvgTemperature < 8:
		warnings = append(warnings, "Cold start.")
	}

	switch {
	case stats.AvgTemperature > 33:
		warnings = append(warnings, "Dangerous heat at this hour.")
	case stats.AvgTemperature > 28:
		warnings = append(warnings, "Hot at this hour.")
	}

	if stats.MaxPrecipProbabilityPct > 70 {
		warnings = append(warnings, "Rain very likely.")
	}
	if stats.AvgWindSpeed > 40 {
		warnings = append(warnings, "Very windy.")
	}
	if hour >= 18 {
		warnings = append(warnings, "Evening start; check your lights.")
	}
	if activity == ActivityRunning && stats.AvgTemperature > 25 && stats.AvgHumidity > 70 {
		warnings = append(warnings, "Heavy running conditions; heat and humidity combine.")
	}

	return warnings
}
