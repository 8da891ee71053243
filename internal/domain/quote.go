package domain

// ProductRef is the external reference a source uses to describe a product.
// Resolution to a catalog product_id tries EAN first, then SKU, then
// normalized name+brand.
type ProductRef struct {
	EAN   string
	SKU   string
	Name  string
	Brand string
}

// RawQuote is one price observation as delivered by a source adapter,
// before validation and normalization.
type RawQuote struct {
	SourceType      SourceType
	SourceProductID string
	ProductRef      ProductRef
	SizeRaw         string // empty for sizeless products
	Region          string // size region, e.g. "EU"; ignored when SizeRaw is empty
	PriceType       PriceType
	PriceCents      int64
	Currency        string
	InStock         bool
	StockQuantity   *int64
	SourceURL       string
	SupplierRef     *string
	ObservedAt      int64 // Unix timestamp in milliseconds
}
