package memory

import (
	"context"
	"sort"
	"sync"

	"resale-price-engine/internal/domain"
	"resale-price-engine/internal/storage"
)

// InventoryStore is an in-memory implementation of storage.InventoryStore.
type InventoryStore struct {
	mu   sync.RWMutex
	data map[string]*domain.InventoryItem // keyed by item_id
}

// NewInventoryStore creates a new in-memory inventory store.
func NewInventoryStore() *InventoryStore {
	return &InventoryStore{
		data: make(map[string]*domain.InventoryItem),
	}
}

// Put inserts or replaces an item.
func (s *InventoryStore) Put(_ context.Context, item *domain.InventoryItem) error {
	if item == nil || item.ItemID == "" {
		return storage.ErrInvalidInput
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	itemCopy := *item
	s.data[item.ItemID] = &itemCopy
	return nil
}

// GetByID retrieves an item. Returns ErrNotFound if not exists.
func (s *InventoryStore) GetByID(_ context.Context, itemID string) (*domain.InventoryItem, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	item, exists := s.data[itemID]
	if !exists {
		return nil, storage.ErrNotFound
	}

	itemCopy := *item
	return &itemCopy, nil
}

// ListAll retrieves all items ordered by purchase date ASC.
func (s *InventoryStore) ListAll(_ context.Context) ([]*domain.InventoryItem, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	result := make([]*domain.InventoryItem, 0, len(s.data))
	for _, item := range s.data {
		itemCopy := *item
		result = append(result, &itemCopy)
	}

	sort.Slice(result, func(i, j int) bool {
		if result[i].PurchaseDate != result[j].PurchaseDate {
			return result[i].PurchaseDate < result[j].PurchaseDate
		}
		return result[i].ItemID < result[j].ItemID
	})

	return result, nil
}

var _ storage.InventoryStore = (*InventoryStore)(nil)
