package domain

// InventoryItem is one owned stock unit. The inventory domain owns the input
// fields; this engine computes and writes back the derived fields only.
// Corresponds to inventory_items table.
type InventoryItem struct {
	ItemID             string // PRIMARY KEY, uuid
	ProductID          string
	PurchasePriceCents int64
	PurchaseDate       int64  // Unix timestamp in milliseconds
	SaleDate           *int64 // nil while unsold
	SalePriceCents     *int64 // nil while unsold
	Quantity           int
	ReservedQuantity   int
	Status             string // e.g. "available", "sold"

	// Derived fields, recomputed by the lifecycle calculator on every write.
	ShelfLifeDays     int
	ROIPercentage     *float64 // nil while unsold
	ProfitPerShelfDay *float64 // nil while unsold, minor units per day
}
