// Package sizing standardizes region-specific size strings onto one
// cross-region numeric scale (US men's half sizes), so quotes for "the same
// size" from different sources become comparable.
//
// Normalize is pure and referentially transparent: identical inputs always
// yield the identical result. Values without a table entry degrade to
// Unmatched and are stored but excluded from cross-source matching.
package sizing

import (
	"strconv"
	"strings"

	"resale-price-engine/internal/domain"
)

// Size regions understood by the normalizer.
const (
	RegionUS = "US"
	RegionEU = "EU"
	RegionUK = "UK"
	RegionCM = "CM"
	RegionKR = "KR"
)

// Normalize maps a region-specific raw size string to a standardized Size.
// An empty raw value means the product is sizeless.
func Normalize(raw, region string) domain.Size {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return domain.Sizeless()
	}

	region = strings.ToUpper(strings.TrimSpace(region))

	value, ok := parseSizeValue(trimmed)
	if !ok {
		return domain.Unmatched(raw, region)
	}

	standardized, ok := lookup(value, region)
	if !ok {
		return domain.Unmatched(raw, region)
	}

	return domain.Matched(standardized, raw, region)
}

// parseSizeValue extracts the numeric part of a raw size string.
// Accepts forms like "9.5", "US 9.5", "EU 42,5". Fractional forms like
// "42 2/3" are not supported and degrade to unmatched.
func parseSizeValue(raw string) (float64, bool) {
	s := strings.ToUpper(raw)

	// Strip a leading region token if present ("US 9", "EU42.5").
	for _, prefix := range []string{RegionUS, RegionEU, RegionUK, RegionCM, RegionKR} {
		if strings.HasPrefix(s, prefix) {
			s = s[len(prefix):]
			break
		}
	}
	s = strings.TrimSpace(s)

	// European decimal comma.
	s = strings.ReplaceAll(s, ",", ".")

	if s == "" {
		return 0, false
	}

	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, false
	}
	return v, true
}

// lookup finds the standardized US value for a region-specific numeric size.
// The nearest table entry within the region tolerance wins; on an exact tie
// the smaller size wins, keeping the function deterministic.
func lookup(value float64, region string) (float64, bool) {
	bestDiff := -1.0
	bestUS := 0.0

	for _, row := range menSizes {
		rv, ok := regionValue(row, region)
		if !ok {
			return 0, false
		}
		diff := value - rv
		if diff < 0 {
			diff = -diff
		}
		if bestDiff < 0 || diff < bestDiff {
			bestDiff = diff
			bestUS = row.US
		}
	}

	if bestDiff < 0 || bestDiff > regionTolerance(region) {
		return 0, false
	}
	return bestUS, true
}
