// Package nutrition derives a time-sliced feeding and hydration schedule
// from a resolved passage sequence.
package nutrition

import (
	"fmt"
	"math"

	"github.com/ridecast/ridecast/internal/passage"
)

// Slot categories.
type Category string

// Categories rotate per feeding slot; the first slot is always water.
const (
	CategoryWater     Category = "water"
	CategoryDrink     Category = "isotonic drink"
	CategoryGel       Category = "gel"
	CategorySolidFood Category = "solid food"
)

// Slot is one scheduled intake moment.
type Slot struct {
	TimeOffsetMin int      `json:"timeOffsetMin"`
	DistanceKm    float64  `json:"distanceKm"`
	Category      Category `json:"category"`
	CarbsGrams    int      `json:"carbsGrams"`
	HydrationMl   int      `json:"hydrationMl"`
	Note          string   `json:"note,omitempty"`
}

// Summary totals the plan and adds packing estimates.
type Summary struct {
	TotalCarbsGrams  int      `json:"totalCarbsGrams"`
	TotalFluidLiters float64  `json:"totalFluidLiters"`
	BottleCount      int      `json:"bottleCount"`
	GelCount         int      `json:"gelCount"`
	Notes            []string `json:"notes"`
	Text             string   `json:"text"`
}

// Plan is the full nutrition schedule for a route.
type Plan struct {
	Slots   []Slot  `json:"slots"`
	Summary Summary `json:"summary"`
}

// Carb and fluid packing constants.
const (
	bottleSizeMl  = 750
	gelCarbsGrams = 25

	defaultCarbsPerHour = 60
	minCarbsPerHour     = 20
	maxCarbsPerHour     = 120

	slotIntervalMin = 30
)

// feedingRotation is the category cycle for feeding slots after minute 0.
var feedingRotation = [4]Category{CategoryDrink, CategoryGel, CategoryDrink, CategorySolidFood}

// Build computes the plan for a passage sequence. It needs at least two
// resolved passages to derive a duration; anything less yields an empty plan.
// targetCarbsPerHour is clamped to [20, 120]; 0 selects the default of 60.
func Build(passages []passage.Passage, totalDistanceKm float64, targetCarbsPerHour int) Plan {
	first, last, ok := resolvedEndpoints(passages)
	if !ok {
		return Plan{Slots: []Slot{}}
	}

	durationHours := last.EstimatedArrival.Sub(first.EstimatedArrival).Hours()
	if durationHours <= 0 {
		return Plan{Slots: []Slot{}}
	}

	avgTemp, avgHumidity := windowClimate(passages)
	hydrationPerHour := hydrationRate(avgTemp, avgHumidity)
	carbsPerHour := clampCarbs(targetCarbsPerHour)

	totalMinutes := int(math.Round(durationHours * 60))

	slots := []Slot{{
		TimeOffsetMin: 0,
		DistanceKm:    0,
		Category:      CategoryWater,
		CarbsGrams:    0,
		HydrationMl:   int(math.Round(float64(hydrationPerHour) / 4)),
		Note:          "Start hydrated; a few sips before rolling out.",
	}}

	feeding := 0
	for minute := slotIntervalMin; minute < totalMinutes; minute += slotIntervalMin {
		slot := Slot{
			TimeOffsetMin: minute,
			DistanceKm:    totalDistanceKm * float64(minute) / float64(totalMinutes),
			Category:      feedingRotation[feeding%len(feedingRotation)],
			CarbsGrams:    int(math.Round(float64(carbsPerHour) / 2)),
			HydrationMl:   int(math.Round(float64(hydrationPerHour) / 2)),
		}
		if minute >= totalMinutes-slotIntervalMin {
			slot.Note = "Last intake opportunity before arrival."
		}
		slots = append(slots, slot)
		feeding++
	}

	return Plan{
		Slots:   slots,
		Summary: summarize(slots, avgTemp, avgHumidity),
	}
}

// resolvedEndpoints finds the first and last resolved passages.
func resolvedEndpoints(passages []passage.Passage) (first, last passage.Passage, ok bool) {
	found := 0
	for _, p := range passages {
		if p.Status != passage.StatusResolved {
			continue
		}
		if found == 0 {
			first = p
		}
		last = p
		found++
	}
	return first, last, found >= 2
}

// windowClimate averages temperature and humidity over the resolved passages.
// A resolved passage without attached weather contributes the 20 degree /
// 50 percent defaults.
func windowClimate(passages []passage.Passage) (avgTemp, avgHumidity float64) {
	var sumTemp, sumHumidity float64
	n := 0
	for _, p := range passages {
		if p.Status != passage.StatusResolved {
			continue
		}
		temp, humidity := 20.0, 50.0
		if p.Weather != nil {
			temp = p.Weather.Temperature
			humidity = p.Weather.RelativeHumidityPct
		}
		sumTemp += temp
		sumHumidity += humidity
		n++
	}
	if n == 0 {
		return 20, 50
	}
	return sumTemp / float64(n), sumHumidity / float64(n)
}

// hydrationRate escalates the hourly fluid target with heat and humidity.
func hydrationRate(avgTemp, avgHumidity float64) int {
	rate := 500
	if avgTemp > 25 {
		rate = 650
	}
	if avgTemp > 30 {
		rate = 750
	}
	if avgTemp > 25 && avgHumidity > 70 {
		rate = 800
	}
	return rate
}

func clampCarbs(target int) int {
	if target == 0 {
		return defaultCarbsPerHour
	}
	if target < minCarbsPerHour {
		return minCarbsPerHour
	}
	if target > maxCarbsPerHour {
		return maxCarbsPerHour
	}
	return target
}

func summarize(slots []Slot, avgTemp, avgHumidity float64) Summary {
	totalCarbs := 0
	totalFluidMl := 0
	for _, s := range slots {
		totalCarbs += s.CarbsGrams
		totalFluidMl += s.HydrationMl
	}

	s := Summary{
		TotalCarbsGrams:  totalCarbs,
		TotalFluidLiters: float64(totalFluidMl) / 1000,
		BottleCount:      int(math.Ceil(float64(totalFluidMl) / bottleSizeMl)),
		GelCount:         int(math.Ceil(float64(totalCarbs) / gelCarbsGrams)),
		Notes:            []string{},
	}

	if avgTemp > 30 {
		s.Notes = append(s.Notes, "Very hot: plan refill stops, bottles will not last.")
	} else if avgTemp > 25 {
		s.Notes = append(s.Notes, "Warm conditions: drink on schedule, not on thirst.")
	}
	if avgTemp > 25 && avgHumidity > 70 {
		s.Notes = append(s.Notes, "Humid heat: add electrolytes to every bottle.")
	}

	s.Text = fmt.Sprintf("Total %d g carbs and %.1f L fluid: about %d bottles (750 ml) and %d gels (25 g).",
		totalCarbs, s.TotalFluidLiters, s.BottleCount, s.GelCount)

	return s
}
