package domain

import "strconv"

// SizeKind tags the three distinct size states. A sizeless product is not
// the same thing as a size that failed to standardize.
type SizeKind string

// Size kind constants.
const (
	SizeMatched   SizeKind = "matched"   // standardized to the cross-region scale
	SizeUnmatched SizeKind = "unmatched" // raw value kept, excluded from matching
	SizeNone      SizeKind = "none"      // sizeless product
)

// Size is a tagged size value. Value is set only when Kind == SizeMatched;
// Raw and Region are set for matched and unmatched sizes.
type Size struct {
	Kind   SizeKind
	Value  float64 // standardized value on the US men's scale, half-unit steps
	Raw    string  // original source string, e.g. "EU 42,5"
	Region string  // US | EU | UK | CM | KR
}

// Sizeless returns the Size for a product that has no size dimension.
func Sizeless() Size {
	return Size{Kind: SizeNone}
}

// Matched returns a standardized Size.
func Matched(value float64, raw, region string) Size {
	return Size{Kind: SizeMatched, Value: value, Raw: raw, Region: region}
}

// Unmatched returns a Size that could not be standardized.
func Unmatched(raw, region string) Size {
	return Size{Kind: SizeUnmatched, Raw: raw, Region: region}
}

// Key returns the size component of the natural key. Matched sizes from
// different regions that standardize to the same value share a key; unmatched
// sizes key on their raw string so they never collide with matched ones.
func (s Size) Key() string {
	switch s.Kind {
	case SizeMatched:
		return strconv.FormatFloat(s.Value, 'f', -1, 64)
	case SizeUnmatched:
		return "u:" + s.Region + ":" + s.Raw
	default:
		return ""
	}
}

// MatchKey returns the key used for cross-source matching and whether the
// size participates in matching at all. Unmatched sizes never match.
func (s Size) MatchKey() (string, bool) {
	switch s.Kind {
	case SizeMatched:
		return s.Key(), true
	case SizeNone:
		return "", true
	default:
		return "", false
	}
}

// String renders the size for logs and reports.
func (s Size) String() string {
	switch s.Kind {
	case SizeMatched:
		return "US " + strconv.FormatFloat(s.Value, 'f', -1, 64)
	case SizeUnmatched:
		return s.Raw + " (unmatched)"
	default:
		return "-"
	}
}
