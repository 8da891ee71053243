package match

// Score ranks an opportunity by absolute profit weighted by margin:
// (profit in major units) * (profit / retail). Strictly increasing in both
// profit and margin, so a bigger spread on the same retail price always
// ranks higher, and the same profit on a cheaper buy-in ranks higher too.
func Score(profitCents, retailCents int64) float64 {
	if retailCents <= 0 {
		return 0
	}
	profit := float64(profitCents) / 100
	margin := float64(profitCents) / float64(retailCents)
	return profit * margin
}

// MarginPercent is profit over retail, as a percentage.
func MarginPercent(profitCents, retailCents int64) float64 {
	if retailCents <= 0 {
		return 0
	}
	return float64(profitCents) / float64(retailCents) * 100
}
