package scoring

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func containsSubstring(list []string, sub string) bool {
	for _, s := range list {
		if strings.Contains(s, sub) {
			return true
		}
	}
	return false
}

func TestWarnings_AllIndependentPredicatesFire(t *testing.T) {
	stats := WindowStats{
		AvgTemperature:       34,
		AvgHumidity:          80,
		MinTemperature:       1,
		MaxTemperature:       36,
		MaxWindSpeed:         42,
		TotalPrecipitationMm: 6,
		HasStorm:             true,
		HasFog:               true,
		SampleCount:          6,
	}

	warnings := Warnings(stats, ActivityCycling)
	assert.True(t, containsSubstring(warnings, "Thunderstorm"))
	assert.True(t, containsSubstring(warnings, "Strong wind"))
	assert.True(t, containsSubstring(warnings, "Heavy rain"))
	assert.True(t, containsSubstring(warnings, "ice"))
	assert.True(t, containsSubstring(warnings, "Fog"))
	assert.True(t, containsSubstring(warnings, "heat"))
	assert.Len(t, warnings, 6)
}

func TestWarnings_QuietWindow(t *testing.T) {
	stats := WindowStats{
		AvgTemperature: 18,
		MinTemperature: 15,
		MaxTemperature: 20,
		MaxWindSpeed:   12,
		SampleCount:    4,
	}

	assert.Empty(t, Warnings(stats, ActivityCycling))
}

func TestWarnings_WindMessageCarriesSpeed(t *testing.T) {
	stats := WindowStats{MaxWindSpeed: 47, AvgTemperature: 15, MinTemperature: 12, MaxTemperature: 18, SampleCount: 4}

	warnings := Warnings(stats, ActivityCycling)
	assert.True(t, containsSubstring(warnings, "47 km/h"))
}

func TestWarnings_RunningHumidHeat(t *testing.T) {
	stats := WindowStats{
		AvgTemperature: 27,
		AvgHumidity:    75,
		MinTemperature: 25,
		MaxTemperature: 29,
		SampleCount:    4,
	}

	cycling := Warnings(stats, ActivityCycling)
	running := Warnings(stats, ActivityRunning)

	assert.False(t, containsSubstring(cycling, "humid"))
	assert.True(t, containsSubstring(running, "humid"))
}

func TestCyclingTips(t *testing.T) {
	tests := []struct {
		name      string
		stats     WindowStats
		adviceCtx AdviceContext
		wantSub   string
	}{
		{
			name:    "temperature swing",
			stats:   WindowStats{MinTemperature: 8, MaxTemperature: 18, SampleCount: 4},
			wantSub: "layers",
		},
		{
			name:    "high humidity",
			stats:   WindowStats{AvgHumidity: 80, SampleCount: 4},
			wantSub: "humidity",
		},
		{
			name:    "moderate wind",
			stats:   WindowStats{AvgWindSpeed: 20, SampleCount: 4},
			wantSub: "tailwind",
		},
		{
			name:      "long ride",
			stats:     WindowStats{SampleCount: 4},
			adviceCtx: AdviceContext{DistanceKm: 120},
			wantSub:   "resupply",
		},
		{
			name:    "warm ride",
			stats:   WindowStats{AvgTemperature: 27, SampleCount: 4},
			wantSub: "bottle",
		},
		{
			name:    "cold start warm afternoon",
			stats:   WindowStats{MinApparentTemperature: 8, MaxTemperature: 20, SampleCount: 4},
			wantSub: "extra layer",
		},
		{
			name:    "moderate rain risk",
			stats:   WindowStats{MaxPrecipProbabilityPct: 40, SampleCount: 4},
			wantSub: "rain layer",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tips := Tips(tt.stats, ActivityCycling, tt.adviceCtx)
			assert.True(t, containsSubstring(tips, tt.wantSub), "tips: %v", tips)
		})
	}
}

func TestCyclingTips_NoWindTipAboveModerate(t *testing.T) {
	stats := WindowStats{AvgWindSpeed: 35, SampleCount: 4}
	tips := Tips(stats, ActivityCycling, AdviceContext{})
	assert.False(t, containsSubstring(tips, "tailwind"))
}

func TestRunningTips_AlwaysIncludesHydration(t *testing.T) {
	cool := Tips(WindowStats{AvgTemperature: 10, SampleCount: 4}, ActivityRunning, AdviceContext{})
	warm := Tips(WindowStats{AvgTemperature: 25, SampleCount: 4}, ActivityRunning, AdviceContext{})

	assert.True(t, containsSubstring(cool, "Hydrate"))
	assert.True(t, containsSubstring(warm, "thirsty"))
}

func TestRunningTips_NutritionEscalatesWithDuration(t *testing.T) {
	stats := WindowStats{AvgTemperature: 15, SampleCount: 4}

	short := Tips(stats, ActivityRunning, AdviceContext{DurationHours: 0.5})
	hour := Tips(stats, ActivityRunning, AdviceContext{DurationHours: 1})
	long := Tips(stats, ActivityRunning, AdviceContext{DurationHours: 2})

	assert.False(t, containsSubstring(short, "carbohydrates"))
	assert.True(t, containsSubstring(hour, "carbohydrates"))
	assert.True(t, containsSubstring(long, "solid food"))
	assert.Greater(t, len(long), len(hour))
}

func TestRunningTips_HeatNutrition(t *testing.T) {
	stats := WindowStats{AvgTemperature: 30, SampleCount: 4}
	tips := Tips(stats, ActivityRunning, AdviceContext{DurationHours: 1})
	assert.True(t, containsSubstring(tips, "halve gel"))
}
