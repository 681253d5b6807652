package scoring

// Activity selects the threshold and banding tables used for scoring.
type Activity string

// Supported activities.
const (
	ActivityCycling Activity = "cycling"
	ActivityRunning Activity = "running"
)

// Band labels a score range. Cut-points are activity-specific.
type Band string

// Score bands.
const (
	BandExcellent        Band = "excellent"
	BandVeryGood         Band = "very good"
	BandGood             Band = "good"
	BandFair             Band = "fair"
	BandPoor             Band = "poor"
	BandDeterrent        Band = "deterrent"
	BandInsufficientData Band = "insufficient data"
)

// ClothingItem is a single recommended garment or accessory.
type ClothingItem struct {
	Icon  string `json:"icon"`
	Label string `json:"label"`
}

// ConditionScore is the full scoring output for a window.
type ConditionScore struct {
	Value    int            `json:"value"`
	Band     Band           `json:"band"`
	Warnings []string       `json:"warnings"`
	Tips     []string       `json:"tips"`
	Clothing []ClothingItem `json:"clothing"`
}

// bracket is one rung of a penalty ladder. Ladders are ordered most-severe
// first and only the first matching rung applies.
type bracket struct {
	above   float64
	penalty int
}

func (b bracket) matches(v float64) bool { return v > b.above }

// applyLadder subtracts the first matching bracket's penalty.
func applyLadder(score int, ladder []bracket, value float64) int {
	for _, b := range ladder {
		if b.matches(value) {
			return score - b.penalty
		}
	}
	return score
}

// activityTable holds the penalty ladders for one activity. The cycling and
// running tables differ deliberately; they encode activity-specific risk
// tolerance and must not be merged.
type activityTable struct {
	hot          []bracket
	wind         []bracket
	precipTotal  []bracket
	precipProb   []bracket
	stormPenalty int
	fogPenalty   int
	heatHumidity int // applied when avg temp and humidity are both high
	heatTempCut  float64
	bands        []bandCut
}

type bandCut struct {
	min  int
	band Band
}

var cyclingTable = activityTable{
	hot: []bracket{
		{above: 35, penalty: 25},
		{above: 30, penalty: 10},
	},
	wind: []bracket{
		{above: 50, penalty: 30},
		{above: 40, penalty: 20},
		{above: 30, penalty: 10},
		{above: 20, penalty: 5},
	},
	precipTotal: []bracket{
		{above: 5, penalty: 25},
		{above: 2, penalty: 15},
		{above: 0.5, penalty: 8},
	},
	precipProb: []bracket{
		{above: 70, penalty: 10},
		{above: 40, penalty: 5},
	},
	stormPenalty: 20,
	fogPenalty:   5,
	heatHumidity: 10,
	heatTempCut:  25,
	bands: []bandCut{
		{85, BandExcellent},
		{70, BandGood},
		{50, BandFair},
		{30, BandPoor},
	},
}

var runningTable = activityTable{
	hot: []bracket{
		{above: 32, penalty: 30},
		{above: 28, penalty: 15},
		{above: 25, penalty: 5},
	},
	wind: []bracket{
		{above: 50, penalty: 25},
		{above: 40, penalty: 15},
		{above: 30, penalty: 10},
		{above: 20, penalty: 5},
	},
	precipTotal: []bracket{
		{above: 5, penalty: 25},
		{above: 2, penalty: 15},
		{above: 0.5, penalty: 8},
	},
	precipProb: []bracket{
		{above: 70, penalty: 10},
		{above: 40, penalty: 5},
	},
	stormPenalty: 20,
	fogPenalty:   5,
	heatHumidity: 15,
	heatTempCut:  25,
	bands: []bandCut{
		{85, BandExcellent},
		{70, BandGood},
		{50, BandFair},
		{30, BandPoor},
	},
}

// coldBracket is one rung of the cold ladder. It penalizes temperatures
// strictly below the cut-point; rungs are ordered coldest first.
type coldBracket struct {
	below   float64
	penalty int
}

var cyclingCold = []coldBracket{
	{below: 5, penalty: 30},
	{below: 10, penalty: 15},
	{below: 15, penalty: 5},
}

var runningCold = []coldBracket{
	{below: 0, penalty: 30},
	{below: 5, penalty: 20},
	{below: 10, penalty: 5},
}

// headwindLadder applies to cycling when a headwind fraction is available.
var headwindLadder = []bracket{
	{above: 70, penalty: 10},
	{above: 50, penalty: 5},
}

func applyColdLadder(score int, ladder []coldBracket, temp float64) int {
	for _, b := range ladder {
		if temp < b.below {
			return score - b.penalty
		}
	}
	return score
}

// Score computes a 0-100 suitability score for the activity. Ladder order is
// significant: only the first matching rung per factor applies, and the cold
// ladder is checked before the hot one.
func Score(stats WindowStats, activity Activity) (int, Band) {
	if stats.SampleCount == 0 {
		return 0, BandInsufficientData
	}

	table := cyclingTable
	cold := cyclingCold
	if activity == ActivityRunning {
		table = runningTable
		cold = runningCold
	}

	score := 100

	before := score
	score = applyColdLadder(score, cold, stats.AvgTemperature)
	if score == before {
		score = applyLadder(score, table.hot, stats.AvgTemperature)
	}

	score = applyLadder(score, table.wind, stats.AvgWindSpeed)
	score = applyLadder(score, table.precipTotal, stats.TotalPrecipitationMm)
	score = applyLadder(score, table.precipProb, stats.MaxPrecipProbabilityPct)

	if activity == ActivityCycling && stats.HeadwindFractionPct != nil {
		score = applyLadder(score, headwindLadder, float64(*stats.HeadwindFractionPct))
	}

	if stats.HasStorm {
		score -= table.stormPenalty
	}
	if stats.HasFog {
		score -= table.fogPenalty
	}
	if stats.AvgTemperature > table.heatTempCut && stats.AvgHumidity > 70 {
		score -= table.heatHumidity
	}

	switch {
	case stats.DaylightFractionPct == 100:
		score += 5
	case stats.DaylightFractionPct < 30:
		score -= 5
	}

	score = clamp(score, 0, 100)
	return score, bandFor(score, table.bands)
}

func bandFor(score int, cuts []bandCut) Band {
	for _, c := range cuts {
		if score >= c.min {
			return c.band
		}
	}
	return BandDeterrent
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// AdviceContext carries route facts the advisory predicates need beyond the
// weather window itself.
type AdviceContext struct {
	DistanceKm    float64
	DurationHours float64
}

// Evaluate runs scoring, clothing, and advisories in one pass. A window with
// no samples yields a neutral result with empty lists.
func Evaluate(stats WindowStats, activity Activity, adviceCtx AdviceContext) ConditionScore {
	if stats.SampleCount == 0 {
		return ConditionScore{
			Value:    0,
			Band:     BandInsufficientData,
			Warnings: []string{},
			Tips:     []string{},
			Clothing: []ClothingItem{},
		}
	}

	value, band := Score(stats, activity)

	return ConditionScore{
		Value:    value,
		Band:     band,
		Warnings: Warnings(stats, activity),
		Tips:     Tips(stats, activity, adviceCtx),
		Clothing: Clothing(stats, activity),
	}
}
