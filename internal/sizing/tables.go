package sizing

// conversionRow is one row of the cross-region sneaker size table.
// The US men's size is the standardized value; the other columns are the
// equivalent sizes other regions use for the same last.
type conversionRow struct {
	US float64
	EU float64
	UK float64
	CM float64
	KR float64
}

// menSizes covers US 4-14 in half-size steps. Table version 1; a new version
// gets a new table, existing behavior must not change.
var menSizes = []conversionRow{
	{4.0, 36.0, 3.0, 22.5, 225},
	{4.5, 37.0, 3.5, 23.0, 230},
	{5.0, 37.5, 4.0, 23.5, 235},
	{5.5, 38.0, 4.5, 24.0, 240},
	{6.0, 39.0, 5.0, 24.5, 245},
	{6.5, 39.5, 5.5, 25.0, 250},
	{7.0, 40.0, 6.0, 25.5, 255},
	{7.5, 40.5, 6.5, 26.0, 260},
	{8.0, 41.5, 7.0, 26.5, 265},
	{8.5, 42.0, 7.5, 27.0, 270},
	{9.0, 42.5, 8.0, 27.5, 275},
	{9.5, 43.5, 8.5, 28.0, 280},
	{10.0, 44.0, 9.0, 28.5, 285},
	{10.5, 44.5, 9.5, 29.0, 290},
	{11.0, 45.0, 10.0, 29.5, 295},
	{11.5, 46.0, 10.5, 30.0, 300},
	{12.0, 46.5, 11.0, 30.5, 305},
	{12.5, 47.0, 11.5, 31.0, 310},
	{13.0, 48.0, 12.0, 31.5, 315},
	{13.5, 48.5, 12.5, 32.0, 320},
	{14.0, 49.0, 13.0, 32.5, 325},
}

// regionValue extracts the region-specific column from a row.
// Returns false for unknown regions.
func regionValue(row conversionRow, region string) (float64, bool) {
	switch region {
	case RegionUS:
		return row.US, true
	case RegionEU:
		return row.EU, true
	case RegionUK:
		return row.UK, true
	case RegionCM:
		return row.CM, true
	case RegionKR:
		return row.KR, true
	default:
		return 0, false
	}
}

// regionTolerance is the maximum distance between a parsed value and a table
// entry for the entry to count as a match. KR sizes are in millimeters with
// 5mm steps, so its tolerance is wider.
func regionTolerance(region string) float64 {
	if region == RegionKR {
		return 2.5
	}
	return 0.25
}
