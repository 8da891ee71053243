package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"resale-price-engine/internal/domain"
	"resale-price-engine/internal/storage"
)

// PriceRecordStore is an in-memory implementation of storage.PriceRecordStore.
// The single mutex serializes upserts, which is exactly the per-natural-key
// serialization the conflict rule needs.
type PriceRecordStore struct {
	mu   sync.RWMutex
	data map[string]*domain.CanonicalPriceRecord // keyed by record_id
	now  func() int64
}

// NewPriceRecordStore creates a new in-memory price record store.
func NewPriceRecordStore() *PriceRecordStore {
	return &PriceRecordStore{
		data: make(map[string]*domain.CanonicalPriceRecord),
		now:  func() int64 { return time.Now().UnixMilli() },
	}
}

// Upsert conditionally writes a record, resolving conflicts by last_observed_at.
func (s *PriceRecordStore) Upsert(_ context.Context, rec *domain.CanonicalPriceRecord) (storage.UpsertOutcome, error) {
	if rec == nil || rec.RecordID == "" || rec.ProductID == "" {
		return "", storage.ErrInvalidInput
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	current, exists := s.data[rec.RecordID]
	if !exists {
		recCopy := *rec
		recCopy.CreatedAt = s.now()
		recCopy.UpdatedAt = recCopy.CreatedAt
		s.data[rec.RecordID] = &recCopy
		return storage.UpsertInserted, nil
	}

	if rec.LastObservedAt <= current.LastObservedAt {
		return storage.UpsertStale, nil
	}

	unchanged := current.PriceCents == rec.PriceCents &&
		current.InStock == rec.InStock &&
		equalQuantity(current.StockQuantity, rec.StockQuantity)

	recCopy := *rec
	recCopy.CreatedAt = current.CreatedAt
	recCopy.UpdatedAt = s.now()
	s.data[rec.RecordID] = &recCopy

	if unchanged {
		return storage.UpsertUnchanged, nil
	}
	return storage.UpsertUpdated, nil
}

// GetByRecordID retrieves a record by its ID. Returns ErrNotFound if not exists.
func (s *PriceRecordStore) GetByRecordID(_ context.Context, recordID string) (*domain.CanonicalPriceRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rec, exists := s.data[recordID]
	if !exists {
		return nil, storage.ErrNotFound
	}

	recCopy := *rec
	return &recCopy, nil
}

// GetByProduct retrieves all records for a product, any stock state.
func (s *PriceRecordStore) GetByProduct(_ context.Context, productID string) ([]*domain.CanonicalPriceRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var result []*domain.CanonicalPriceRecord
	for _, rec := range s.data {
		if rec.ProductID == productID {
			recCopy := *rec
			result = append(result, &recCopy)
		}
	}

	sortRecords(result)
	return result, nil
}

// ListActive retrieves in-stock records for a product and price type.
func (s *PriceRecordStore) ListActive(_ context.Context, productID string, priceType domain.PriceType) ([]*domain.CanonicalPriceRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var result []*domain.CanonicalPriceRecord
	for _, rec := range s.data {
		if rec.ProductID == productID && rec.PriceType == priceType && rec.InStock {
			recCopy := *rec
			result = append(result, &recCopy)
		}
	}

	sortRecords(result)
	return result, nil
}

// sortRecords orders by (price_cents ASC, record_id ASC) for deterministic output.
func sortRecords(recs []*domain.CanonicalPriceRecord) {
	sort.Slice(recs, func(i, j int) bool {
		if recs[i].PriceCents != recs[j].PriceCents {
			return recs[i].PriceCents < recs[j].PriceCents
		}
		return recs[i].RecordID < recs[j].RecordID
	})
}

func equalQuantity(a, b *int64) bool {
	if a == nil || b == nil {
		return a == b
	}
	return *a == *b
}

// Verify interface compliance at compile time.
var _ storage.PriceRecordStore = (*PriceRecordStore)(nil)
