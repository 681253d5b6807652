package scoring

import "fmt"

// Warnings lists safety warnings for a window. Predicates are independent
// and all matching ones fire, in a fixed order.
func Warnings(stats WindowStats, activity Activity) []string {
	warnings := []string{}

	if stats.HasStorm {
		warnings = append(warnings, "Thunderstorm expected on route. Consider postponing.")
	}
	if stats.HasStrongWind() {
		warnings = append(warnings, fmt.Sprintf("Strong wind with gusts up to %.0f km/h.", stats.MaxWindSpeed))
	}
	if stats.TotalPrecipitationMm > 5 {
		warnings = append(warnings, "Heavy rain expected. Roads will be wet.")
	}
	if stats.MinTemperature < 2 {
		warnings = append(warnings, "Near-freezing temperatures. Watch for ice in shaded spots.")
	}
	if stats.HasFog {
		warnings = append(warnings, "Fog expected. Visibility will be reduced; use lights.")
	}
	if stats.AvgTemperature > 32 {
		warnings = append(warnings, "Extreme heat. Limit effort and plan for extra water.")
	}
	if activity == ActivityRunning && stats.AvgTemperature > 25 && stats.AvgHumidity > 70 {
		warnings = append(warnings, "Hot and humid. Heat builds up quickly when running; slow your pace.")
	}

	return warnings
}

// Tips lists practical suggestions for a window. Like warnings, predicates
// are independent and all fire.
func Tips(stats WindowStats, activity Activity, adviceCtx AdviceContext) []string {
	if activity == ActivityRunning {
		return runningTips(stats, adviceCtx)
	}
	return cyclingTips(stats, adviceCtx)
}

func cyclingTips(stats WindowStats, adviceCtx AdviceContext) []string {
	tips := []string{}

	if stats.TemperatureRange() > 8 {
		tips = append(tips, "Large temperature swing along the ride. Dress in layers you can shed.")
	}
	if stats.AvgHumidity > 75 {
		tips = append(tips, "High humidity. Sweat evaporates slowly; drink more than usual.")
	}
	if stats.AvgWindSpeed > 15 && stats.AvgWindSpeed <= 30 {
		tips = append(tips, "Moderate wind. Start into the wind so the tailwind brings you home.")
	}
	if adviceCtx.DistanceKm > 100 {
		tips = append(tips, "Long ride. Plan a resupply stop around the halfway point.")
	}
	if stats.AvgTemperature > 25 {
		tips = append(tips, "Warm conditions. Freeze one bottle before you leave.")
	}
	if stats.MinApparentTemperature < 10 && stats.MaxTemperature > 18 {
		tips = append(tips, "Cold start but a warm afternoon. Pack a pocketable extra layer.")
	}
	if stats.MaxPrecipProbabilityPct > 30 && stats.MaxPrecipProbabilityPct <= 50 {
		tips = append(tips, "Some rain risk. Pack a light rain layer just in case.")
	}

	return tips
}

func runningTips(stats WindowStats, adviceCtx AdviceContext) []string {
	tips := []string{}

	if stats.AvgTemperature > 22 {
		tips = append(tips, "Warm run. Drink before you feel thirsty and carry water.")
	} else {
		tips = append(tips, "Hydrate before you start; you lose fluid even in cool weather.")
	}
	if adviceCtx.DurationHours > 1 {
		tips = append(tips, "Run over an hour. Take fuel along, not just water.")
	}
	if stats.AvgWindSpeed > 15 && stats.AvgWindSpeed <= 30 {
		tips = append(tips, "Moderate wind. Run the outbound leg into the wind.")
	}
	if stats.TemperatureRange() > 6 {
		tips = append(tips, "Noticeable temperature change during the run. Choose adjustable layers.")
	}
	if stats.AvgTemperature > 25 {
		tips = append(tips, "Hot conditions. Soak your cap at water points to stay cool.")
	}
	if stats.AvgHumidity > 75 {
		tips = append(tips, "Humid air. Expect a higher heart rate at your usual pace.")
	}

	tips = append(tips, nutritionTips(stats, adviceCtx)...)

	return tips
}

// nutritionTips adds fueling reminders keyed to run duration and heat.
func nutritionTips(stats WindowStats, adviceCtx AdviceContext) []string {
	tips := []string{}
	d := adviceCtx.DurationHours

	if d >= 1 {
		tips = append(tips, "Take 30-60 g of carbohydrates per hour from the first hour on.")
	}
	if d >= 1.25 {
		tips = append(tips, "Alternate gels with isotonic drink to spare your stomach.")
	}
	if d >= 1.5 {
		tips = append(tips, "Add electrolytes to your fluids on efforts this long.")
	}
	if d >= 2 {
		tips = append(tips, "Plan solid food as well; pure sugar gets hard to tolerate past two hours.")
	}
	if stats.AvgTemperature > 28 {
		tips = append(tips, "In this heat, prioritize fluids over solids and halve gel concentration.")
	}

	return tips
}
