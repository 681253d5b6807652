package scoring

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func labels(items []ClothingItem) []string {
	out := make([]string, len(items))
	for i, item := range items {
		out[i] = item.Label
	}
	return out
}

func TestCyclingClothing_WarmDay(t *testing.T) {
	stats := WindowStats{
		MinApparentTemperature: 22,
		AvgTemperature:         24,
		HasSun:                 true,
		SampleCount:            4,
	}

	got := labels(Clothing(stats, ActivityCycling))
	// The base-layer slot is always filled; warm days get the explicit
	// "leave it at home" entry.
	assert.Equal(t, []string{"short bib shorts", "no base layer", "short-sleeve jersey", "sunglasses"}, got)
}

func TestCyclingClothing_ColdDay(t *testing.T) {
	stats := WindowStats{
		MinApparentTemperature: 2,
		AvgTemperature:         4,
		SampleCount:            4,
	}

	got := labels(Clothing(stats, ActivityCycling))
	assert.Equal(t, []string{
		"long bib tights",
		"long-sleeve base layer",
		"long-sleeve jersey",
		"windproof jacket",
		"long-finger gloves",
		"overshoes",
		"under-helmet cap",
	}, got)
}

func TestCyclingClothing_MildWithRain(t *testing.T) {
	stats := WindowStats{
		MinApparentTemperature:  13,
		AvgTemperature:          15,
		MaxPrecipProbabilityPct: 60,
		TotalPrecipitationMm:    1.5,
		SampleCount:             4,
	}

	got := labels(Clothing(stats, ActivityCycling))
	// Rain over 1 mm upgrades the gilet to a jacket and adds the cape.
	assert.Contains(t, got, "windproof jacket")
	assert.Contains(t, got, "rain cape")
	assert.Contains(t, got, "short-finger gloves")
	assert.NotContains(t, got, "gilet")
}

func TestCyclingClothing_StrongWindGilet(t *testing.T) {
	stats := WindowStats{
		MinApparentTemperature: 16,
		MaxWindSpeed:           40,
		SampleCount:            4,
	}

	got := labels(Clothing(stats, ActivityCycling))
	assert.Contains(t, got, "gilet")
	assert.NotContains(t, got, "windproof jacket")
}

func TestRunningClothing_WarmDay(t *testing.T) {
	stats := WindowStats{
		MinApparentTemperature: 21,
		AvgTemperature:         24,
		HasSun:                 true,
		SampleCount:            4,
	}

	got := labels(Clothing(stats, ActivityRunning))
	assert.Equal(t, []string{
		"running shorts",
		"singlet",
		"running cap",
		"sunglasses",
		"road running shoes",
	}, got)
}

func TestRunningClothing_FreezingDay(t *testing.T) {
	stats := WindowStats{
		MinApparentTemperature: -2,
		AvgTemperature:         0,
		SampleCount:            4,
	}

	got := labels(Clothing(stats, ActivityRunning))
	assert.Equal(t, []string{
		"long tights",
		"thermal layer",
		"long-sleeve shirt",
		"running jacket",
		"running gloves",
		"headband",
		"road running shoes",
	}, got)
}

func TestRunningClothing_RainSwitchesShoes(t *testing.T) {
	stats := WindowStats{
		MinApparentTemperature:  15,
		MaxPrecipProbabilityPct: 70,
		TotalPrecipitationMm:    2,
		SampleCount:             4,
	}

	got := labels(Clothing(stats, ActivityRunning))
	assert.Contains(t, got, "waterproof jacket")
	assert.Contains(t, got, "trail shoes with grip")
	assert.NotContains(t, got, "road running shoes")
}

func TestClothing_AlwaysHasBottomAndFootwearForRunning(t *testing.T) {
	for _, temp := range []float64{-10, 0, 10, 20, 30} {
		stats := WindowStats{MinApparentTemperature: temp, AvgTemperature: temp, SampleCount: 4}
		items := Clothing(stats, ActivityRunning)
		require.NotEmpty(t, items)

		got := labels(items)
		hasShoes := false
		for _, l := range got {
			if l == "road running shoes" || l == "trail shoes with grip" {
				hasShoes = true
			}
		}
		assert.True(t, hasShoes, "temp %v missing footwear: %v", temp, got)
	}
}

func TestClothing_OrderIsStable(t *testing.T) {
	stats := WindowStats{
		MinApparentTemperature:  6,
		AvgTemperature:          8,
		MaxPrecipProbabilityPct: 80,
		TotalPrecipitationMm:    3,
		HasSun:                  true,
		SampleCount:             4,
	}

	first := Clothing(stats, ActivityCycling)
	second := Clothing(stats, ActivityCycling)
	assert.Equal(t, first, second)
}
