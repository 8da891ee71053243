package memory

import (
	"context"
	"sync"

	"resale-price-engine/internal/domain"
	"resale-price-engine/internal/storage"
)

// PriceHistoryStore is an in-memory implementation of storage.PriceHistoryStore.
// Append-only: entries are never mutated or removed.
type PriceHistoryStore struct {
	mu      sync.RWMutex
	entries map[string][]*domain.PriceHistoryEntry // keyed by record_id, append order
	nextSeq int64
}

// NewPriceHistoryStore creates a new in-memory history store.
func NewPriceHistoryStore() *PriceHistoryStore {
	return &PriceHistoryStore{
		entries: make(map[string][]*domain.PriceHistoryEntry),
	}
}

// Append stores a new history entry, assigning Seq.
func (s *PriceHistoryStore) Append(_ context.Context, entry *domain.PriceHistoryEntry) error {
	if entry == nil || entry.RecordID == "" {
		return storage.ErrInvalidInput
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.nextSeq++
	entryCopy := *entry
	entryCopy.Seq = s.nextSeq
	s.entries[entry.RecordID] = append(s.entries[entry.RecordID], &entryCopy)
	return nil
}

// ListByRecord returns entries oldest-first, after afterSeq, at most limit.
func (s *PriceHistoryStore) ListByRecord(_ context.Context, recordID string, afterSeq int64, limit int) ([]*domain.PriceHistoryEntry, error) {
	if limit <= 0 {
		return nil, storage.ErrInvalidInput
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	var result []*domain.PriceHistoryEntry
	for _, e := range s.entries[recordID] {
		if e.Seq <= afterSeq {
			continue
		}
		entryCopy := *e
		result = append(result, &entryCopy)
		if len(result) == limit {
			break
		}
	}
	return result, nil
}

// Count returns the total number of entries across all records.
// Test helper for idempotence checks.
func (s *PriceHistoryStore) Count() int {
	s.mu.RLock()
	defer s.mu.RUnlock()

	total := 0
	for _, es := range s.entries {
		total += len(es)
	}
	return total
}

var _ storage.PriceHistoryStore = (*PriceHistoryStore)(nil)
