package postgres

import (
	"context"
	"fmt"

	"resale-price-engine/internal/domain"
	"resale-price-engine/internal/storage"
)

// PriceHistoryStore implements storage.PriceHistoryStore using PostgreSQL.
// The table is append-only; seq comes from a BIGSERIAL column.
type PriceHistoryStore struct {
	pool *Pool
}

// NewPriceHistoryStore creates a new PriceHistoryStore.
func NewPriceHistoryStore(pool *Pool) *PriceHistoryStore {
	return &PriceHistoryStore{pool: pool}
}

// Compile-time interface check.
var _ storage.PriceHistoryStore = (*PriceHistoryStore)(nil)

// Append stores a new history entry, assigning Seq from the sequence.
func (s *PriceHistoryStore) Append(ctx context.Context, entry *domain.PriceHistoryEntry) error {
	if entry == nil || entry.RecordID == "" {
		return storage.ErrInvalidInput
	}

	row := s.pool.QueryRow(ctx, `
		INSERT INTO price_history (record_id, price_cents, in_stock, stock_quantity, recorded_at)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING seq
	`,
		entry.RecordID, entry.PriceCents, entry.InStock, entry.StockQuantity, entry.RecordedAt,
	)

	if err := row.Scan(&entry.Seq); err != nil {
		return fmt.Errorf("append price history: %w", err)
	}
	return nil
}

// ListByRecord returns entries oldest-first, after afterSeq, at most limit.
func (s *PriceHistoryStore) ListByRecord(ctx context.Context, recordID string, afterSeq int64, limit int) ([]*domain.PriceHistoryEntry, error) {
	if limit <= 0 {
		return nil, storage.ErrInvalidInput
	}

	rows, err := s.pool.Query(ctx, `
		SELECT seq, record_id, price_cents, in_stock, stock_quantity, recorded_at
		FROM price_history
		WHERE record_id = $1 AND seq > $2
		ORDER BY seq ASC
		LIMIT $3
	`, recordID, afterSeq, limit)
	if err != nil {
		return nil, fmt.Errorf("list price history: %w", err)
	}
	defer rows.Close()

	var entries []*domain.PriceHistoryEntry
	for rows.Next() {
		var e domain.PriceHistoryEntry
		if err := rows.Scan(&e.Seq, &e.RecordID, &e.PriceCents, &e.InStock, &e.StockQuantity, &e.RecordedAt); err != nil {
			return nil, fmt.Errorf("scan price history row: %w", err)
		}
		entries = append(entries, &e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate price history rows: %w", err)
	}

	return entries, nil
}
