package domain

// Opportunity is a matched retail/resale pair with strictly positive profit,
// both sides currently in stock. Derived data: the full set for a
// (product_id, size key) is replaced atomically on every recomputation.
type Opportunity struct {
	OpportunityID    string // uuid, assigned at computation time
	ProductID        string
	SizeKey          string // Size.Key() of the matched pair ("" for sizeless)
	Size             Size
	RetailRecordID   string
	ResaleRecordID   string
	RetailPriceCents int64
	ResalePriceCents int64
	Currency         string
	ProfitCents      int64   // resale - retail, always > 0
	MarginPercent    float64 // profit / retail * 100
	Score            float64 // strictly increasing in profit and margin
	ComputedAt       int64   // Unix timestamp in milliseconds
}
