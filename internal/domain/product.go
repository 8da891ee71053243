package domain

// Product is a catalog identity reference. Owned by the external catalog;
// this engine only reads it.
type Product struct {
	ProductID string // PRIMARY KEY
	SKU       string
	EAN       string
	Name      string
	Brand     string
}
