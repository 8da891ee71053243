package domain

// SourceType identifies the external marketplace or feed a price came from.
type SourceType string

// Known price sources.
const (
	SourceStockX   SourceType = "stockx"
	SourceGoat     SourceType = "goat"
	SourceKlekt    SourceType = "klekt"
	SourceRestocks SourceType = "restocks"
	SourceAwin     SourceType = "awin"
	SourceEbay     SourceType = "ebay"
)

// PriceType classifies what kind of market a price belongs to.
type PriceType string

// Price type constants.
const (
	PriceRetail    PriceType = "retail"
	PriceResale    PriceType = "resale"
	PriceAuction   PriceType = "auction"
	PriceWholesale PriceType = "wholesale"
)

// CanonicalPriceRecord is the one normalized representation of a price quote
// for a (product, source, source-local id, size) natural key.
// Corresponds to price_records table in PostgreSQL.
// Created and updated only by the quote ingestor; never deleted.
type CanonicalPriceRecord struct {
	RecordID        string     // PRIMARY KEY, deterministic hash of the natural key
	ProductID       string     // FK to products
	SourceType      SourceType // stockx | goat | klekt | restocks | awin | ebay
	SourceProductID string     // source-local product identifier
	Size            Size       // matched, unmatched, or none (sizeless product)
	PriceType       PriceType  // retail | resale | auction | wholesale
	PriceCents      int64      // integer minor-unit amount, >= 0
	Currency        string     // 3-letter code, e.g. "EUR"
	InStock         bool
	StockQuantity   *int64  // nullable, >= 0 when set
	SourceURL       string
	SupplierRef     *string // nullable supplier reference for retail sources
	LastObservedAt  int64   // Unix timestamp in milliseconds, never in the future
	CreatedAt       int64   // record creation timestamp (ms)
	UpdatedAt       int64   // last store write timestamp (ms)
}

// PriceHistoryEntry is an immutable snapshot of a record's price/stock state,
// appended whenever the canonical record actually transitions.
// Corresponds to price_history table. Append-only, never mutated.
type PriceHistoryEntry struct {
	Seq           int64  // store-assigned, ascending per record
	RecordID      string // FK to price_records
	PriceCents    int64
	InStock       bool
	StockQuantity *int64
	RecordedAt    int64 // Unix timestamp in milliseconds
}
