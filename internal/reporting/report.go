package reporting

import "time"

// Report is a point-in-time snapshot of the engine's derived state: the
// highest-ranked buy/sell spreads plus current inventory performance.
type Report struct {
	GeneratedAt time.Time

	Summary Summary

	// Opportunities sorted by score DESC, profit DESC.
	Opportunities []OpportunityRow

	// Inventory sorted by purchase date ASC.
	Inventory []InventoryRow
}

// Summary contains headline counts.
type Summary struct {
	Products          int
	Opportunities     int
	BestProfitCents   int64
	BestMarginPercent float64
	InventoryItems    int
	UnsoldItems       int
}

// OpportunityRow is one ranked buy/sell pair.
type OpportunityRow struct {
	ProductID        string
	ProductName      string
	Size             string
	RetailPriceCents int64
	ResalePriceCents int64
	Currency         string
	ProfitCents      int64
	MarginPercent    float64
	Score            float64
}

// InventoryRow is one owned item with its lifecycle metrics.
type InventoryRow struct {
	ItemID            string
	ProductID         string
	ProductName       string
	Status            string
	ShelfLifeDays     int
	ROIPercentage     *float64 // nil while unsold
	ProfitPerShelfDay *float64 // nil while unsold
}
