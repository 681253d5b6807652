package scoring

// Clothing builds the recommended kit list for a window. The decision tree is
// keyed on the minimum apparent temperature so the coldest hour drives layer
// choices; rule evaluation order is fixed to keep output ordering stable.
func Clothing(stats WindowStats, activity Activity) []ClothingItem {
	if activity == ActivityRunning {
		return runningClothing(stats)
	}
	return cyclingClothing(stats)
}

func cyclingClothing(stats WindowStats) []ClothingItem {
	minApparent := stats.MinApparentTemperature
	rain := stats.HasRain()
	items := make([]ClothingItem, 0, 10)

	if minApparent >= 18 {
		items = append(items, ClothingItem{Icon: "bib-short", Label: "short bib shorts"})
	} else {
		items = append(items, ClothingItem{Icon: "bib-long", Label: "long bib tights"})
	}

	switch {
	case minApparent >= 20:
		items = append(items, ClothingItem{Icon: "base-layer", Label: "no base layer"})
	case minApparent >= 12:
		items = append(items, ClothingItem{Icon: "base-layer", Label: "short-sleeve base layer"})
	default:
		items = append(items, ClothingItem{Icon: "base-layer", Label: "long-sleeve base layer"})
	}

	if minApparent >= 15 {
		items = append(items, ClothingItem{Icon: "jersey", Label: "short-sleeve jersey"})
	} else {
		items = append(items, ClothingItem{Icon: "jersey-long", Label: "long-sleeve jersey"})
	}

	switch {
	case minApparent < 8 || (rain && stats.TotalPrecipitationMm > 1):
		items = append(items, ClothingItem{Icon: "jacket", Label: "windproof jacket"})
	case minApparent < 14 || stats.HasStrongWind():
		items = append(items, ClothingItem{Icon: "gilet", Label: "gilet"})
	}

	if rain && stats.MaxPrecipProbabilityPct > 50 {
		items = append(items, ClothingItem{Icon: "rain-cape", Label: "rain cape"})
	}

	switch {
	case minApparent < 8:
		items = append(items, ClothingItem{Icon: "gloves", Label: "long-finger gloves"})
	case minApparent < 14:
		items = append(items, ClothingItem{Icon: "gloves", Label: "short-finger gloves"})
	}

	if minApparent < 5 || (rain && stats.TotalPrecipitationMm > 2) {
		items = append(items, ClothingItem{Icon: "overshoes", Label: "overshoes"})
	}

	if minApparent < 5 {
		items = append(items, ClothingItem{Icon: "cap", Label: "under-helmet cap"})
	}

	if stats.HasSun {
		items = append(items, ClothingItem{Icon: "sunglasses", Label: "sunglasses"})
	}

	return items
}

func runningClothing(stats WindowStats) []ClothingItem {
	minApparent := stats.MinApparentTemperature
	rain := stats.HasRain()
	items := make([]ClothingItem, 0, 10)

	switch {
	case minApparent >= 18:
		items = append(items, ClothingItem{Icon: "shorts", Label: "running shorts"})
	case minApparent >= 10:
		items = append(items, ClothingItem{Icon: "tights", Label: "3/4 tights"})
	default:
		items = append(items, ClothingItem{Icon: "tights-long", Label: "long tights"})
	}

	switch {
	case minApparent >= 20:
		items = append(items, ClothingItem{Icon: "singlet", Label: "singlet"})
	case minApparent >= 14:
		items = append(items, ClothingItem{Icon: "t-shirt", Label: "t-shirt"})
	case minApparent >= 8:
		items = append(items, ClothingItem{Icon: "long-sleeve", Label: "long-sleeve shirt"})
	default:
		items = append(items,
			ClothingItem{Icon: "thermal", Label: "thermal layer"},
			ClothingItem{Icon: "long-sleeve", Label: "long-sleeve shirt"})
	}

	switch {
	case minApparent < 5:
		items = append(items, ClothingItem{Icon: "jacket", Label: "running jacket"})
	case minApparent < 10 || stats.HasStrongWind():
		items = append(items, ClothingItem{Icon: "gilet", Label: "wind gilet"})
	}

	if rain && stats.MaxPrecipProbabilityPct > 50 {
		items = append(items, ClothingItem{Icon: "rain-jacket", Label: "waterproof jacket"})
	}

	if minApparent < 5 {
		items = append(items, ClothingItem{Icon: "gloves", Label: "running gloves"})
	}

	if minApparent < 3 {
		items = append(items, ClothingItem{Icon: "headband", Label: "headband"})
	}

	if stats.AvgTemperature > 22 || stats.HasSun {
		items = append(items, ClothingItem{Icon: "cap", Label: "running cap"})
	}

	if stats.HasSun {
		items = append(items, ClothingItem{Icon: "sunglasses", Label: "sunglasses"})
	}

	if rain {
		items = append(items, ClothingItem{Icon: "shoes", Label: "trail shoes with grip"})
	} else {
		items = append(items, ClothingItem{Icon: "shoes", Label: "road running shoes"})
	}

	return items
}
