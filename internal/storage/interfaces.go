package storage

import (
	"context"

	"resale-price-engine/internal/domain"
)

// UpsertOutcome is the result of a conditional upsert against the canonical
// price store.
type UpsertOutcome string

// Upsert outcomes. Stale is a distinct outcome, not an error: a newer
// observation already won and the caller must be able to see that.
const (
	UpsertInserted  UpsertOutcome = "inserted"
	UpsertUpdated   UpsertOutcome = "updated"
	UpsertUnchanged UpsertOutcome = "unchanged"
	UpsertStale     UpsertOutcome = "stale"
)

// PriceRecordStore holds one canonical record per natural key
// (product_id, source_type, source_product_id, size).
type PriceRecordStore interface {
	// Upsert conditionally writes a record. Concurrent upserts to the same
	// natural key resolve by last_observed_at: the later observation wins
	// regardless of arrival order. An incoming record whose last_observed_at
	// is not newer than the stored one returns UpsertStale.
	// Unchanged means price, stock flag and quantity are all identical;
	// last_observed_at still advances so later stale writes stay rejected.
	Upsert(ctx context.Context, rec *domain.CanonicalPriceRecord) (UpsertOutcome, error)

	// GetByRecordID retrieves a record by its ID. Returns ErrNotFound if not exists.
	GetByRecordID(ctx context.Context, recordID string) (*domain.CanonicalPriceRecord, error)

	// GetByProduct retrieves all records for a product, any stock state.
	GetByProduct(ctx context.Context, productID string) ([]*domain.CanonicalPriceRecord, error)

	// ListActive retrieves in-stock records for a product and price type.
	ListActive(ctx context.Context, productID string, priceType domain.PriceType) ([]*domain.CanonicalPriceRecord, error)
}

// PriceHistoryStore is the append-only change tracker. Entries are never
// mutated, rewritten or compacted.
type PriceHistoryStore interface {
	// Append stores a new history entry, assigning Seq. Called only when the
	// canonical record actually transitioned.
	Append(ctx context.Context, entry *domain.PriceHistoryEntry) error

	// ListByRecord returns entries for a record oldest-first, starting after
	// afterSeq, at most limit entries. Pagination is the caller's job.
	ListByRecord(ctx context.Context, recordID string, afterSeq int64, limit int) ([]*domain.PriceHistoryEntry, error)
}

// OpportunityStore maintains the derived opportunity set.
type OpportunityStore interface {
	// ReplaceForKey atomically swaps the full opportunity set for a
	// (product_id, size key). Passing an empty slice clears the key.
	ReplaceForKey(ctx context.Context, productID, sizeKey string, opps []*domain.Opportunity) error

	// GetByProduct retrieves all opportunities for a product.
	GetByProduct(ctx context.Context, productID string) ([]*domain.Opportunity, error)

	// ListTop retrieves up to limit opportunities ordered by score DESC,
	// profit DESC.
	ListTop(ctx context.Context, limit int) ([]*domain.Opportunity, error)
}

// InventoryStore persists owned inventory items together with their derived
// lifecycle metrics. Writes go through the lifecycle service, which is the
// only writer of the derived fields.
type InventoryStore interface {
	// Put inserts or replaces an item.
	Put(ctx context.Context, item *domain.InventoryItem) error

	// GetByID retrieves an item. Returns ErrNotFound if not exists.
	GetByID(ctx context.Context, itemID string) (*domain.InventoryItem, error)

	// ListAll retrieves all items ordered by purchase date ASC.
	ListAll(ctx context.Context) ([]*domain.InventoryItem, error)
}

// ProductStore provides read access to the external product catalog.
type ProductStore interface {
	// GetByID retrieves a product. Returns ErrNotFound if not exists.
	GetByID(ctx context.Context, productID string) (*domain.Product, error)

	// GetByEAN retrieves a product by EAN. Returns ErrNotFound if not exists.
	GetByEAN(ctx context.Context, ean string) (*domain.Product, error)

	// GetBySKU retrieves a product by SKU. Returns ErrNotFound if not exists.
	GetBySKU(ctx context.Context, sku string) (*domain.Product, error)

	// ListAll retrieves all products.
	ListAll(ctx context.Context) ([]*domain.Product, error)
}
