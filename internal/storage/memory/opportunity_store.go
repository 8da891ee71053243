package memory

import (
	"context"
	"sort"
	"sync"

	"resale-price-engine/internal/domain"
	"resale-price-engine/internal/storage"
)

// OpportunityStore is an in-memory implementation of storage.OpportunityStore.
type OpportunityStore struct {
	mu   sync.RWMutex
	data map[oppKey][]*domain.Opportunity
}

type oppKey struct {
	productID string
	sizeKey   string
}

// NewOpportunityStore creates a new in-memory opportunity store.
func NewOpportunityStore() *OpportunityStore {
	return &OpportunityStore{
		data: make(map[oppKey][]*domain.Opportunity),
	}
}

// ReplaceForKey atomically swaps the full opportunity set for a (product, size key).
func (s *OpportunityStore) ReplaceForKey(_ context.Context, productID, sizeKey string, opps []*domain.Opportunity) error {
	if productID == "" {
		return storage.ErrInvalidInput
	}

	key := oppKey{productID, sizeKey}

	s.mu.Lock()
	defer s.mu.Unlock()

	if len(opps) == 0 {
		delete(s.data, key)
		return nil
	}

	stored := make([]*domain.Opportunity, 0, len(opps))
	for _, o := range opps {
		oCopy := *o
		stored = append(stored, &oCopy)
	}
	s.data[key] = stored
	return nil
}

// GetByProduct retrieves all opportunities for a product.
func (s *OpportunityStore) GetByProduct(_ context.Context, productID string) ([]*domain.Opportunity, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var result []*domain.Opportunity
	for key, opps := range s.data {
		if key.productID != productID {
			continue
		}
		for _, o := range opps {
			oCopy := *o
			result = append(result, &oCopy)
		}
	}

	sortOpportunities(result)
	return result, nil
}

// ListTop retrieves up to limit opportunities ordered by score DESC, profit DESC.
func (s *OpportunityStore) ListTop(_ context.Context, limit int) ([]*domain.Opportunity, error) {
	if limit <= 0 {
		return nil, storage.ErrInvalidInput
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	var result []*domain.Opportunity
	for _, opps := range s.data {
		for _, o := range opps {
			oCopy := *o
			result = append(result, &oCopy)
		}
	}

	sortOpportunities(result)
	if len(result) > limit {
		result = result[:limit]
	}
	return result, nil
}

// sortOpportunities orders by score DESC, ties broken by higher absolute profit,
// then record IDs for determinism.
func sortOpportunities(opps []*domain.Opportunity) {
	sort.Slice(opps, func(i, j int) bool {
		if opps[i].Score != opps[j].Score {
			return opps[i].Score > opps[j].Score
		}
		if opps[i].ProfitCents != opps[j].ProfitCents {
			return opps[i].ProfitCents > opps[j].ProfitCents
		}
		if opps[i].RetailRecordID != opps[j].RetailRecordID {
			return opps[i].RetailRecordID < opps[j].RetailRecordID
		}
		return opps[i].ResaleRecordID < opps[j].ResaleRecordID
	})
}

var _ storage.OpportunityStore = (*OpportunityStore)(nil)
