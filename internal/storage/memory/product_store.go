package memory

import (
	"context"
	"sort"
	"sync"

	"resale-price-engine/internal/domain"
	"resale-price-engine/internal/storage"
)

// ProductStore is an in-memory implementation of storage.ProductStore.
// Read-mostly: the catalog is owned externally, Seed loads it.
type ProductStore struct {
	mu   sync.RWMutex
	data map[string]*domain.Product // keyed by product_id
}

// NewProductStore creates a new in-memory product store.
func NewProductStore() *ProductStore {
	return &ProductStore{
		data: make(map[string]*domain.Product),
	}
}

// Seed loads catalog products. Returns ErrDuplicateKey on a repeated product_id.
func (s *ProductStore) Seed(products ...*domain.Product) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, p := range products {
		if p == nil || p.ProductID == "" {
			return storage.ErrInvalidInput
		}
		if _, exists := s.data[p.ProductID]; exists {
			return storage.ErrDuplicateKey
		}
		pCopy := *p
		s.data[p.ProductID] = &pCopy
	}
	return nil
}

// GetByID retrieves a product. Returns ErrNotFound if not exists.
func (s *ProductStore) GetByID(_ context.Context, productID string) (*domain.Product, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	p, exists := s.data[productID]
	if !exists {
		return nil, storage.ErrNotFound
	}

	pCopy := *p
	return &pCopy, nil
}

// GetByEAN retrieves a product by EAN. Returns ErrNotFound if not exists.
func (s *ProductStore) GetByEAN(_ context.Context, ean string) (*domain.Product, error) {
	if ean == "" {
		return nil, storage.ErrNotFound
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, p := range s.data {
		if p.EAN == ean {
			pCopy := *p
			return &pCopy, nil
		}
	}
	return nil, storage.ErrNotFound
}

// GetBySKU retrieves a product by SKU. Returns ErrNotFound if not exists.
func (s *ProductStore) GetBySKU(_ context.Context, sku string) (*domain.Product, error) {
	if sku == "" {
		return nil, storage.ErrNotFound
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, p := range s.data {
		if p.SKU == sku {
			pCopy := *p
			return &pCopy, nil
		}
	}
	return nil, storage.ErrNotFound
}

// ListAll retrieves all products ordered by product_id ASC.
func (s *ProductStore) ListAll(_ context.Context) ([]*domain.Product, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	result := make([]*domain.Product, 0, len(s.data))
	for _, p := range s.data {
		pCopy := *p
		result = append(result, &pCopy)
	}

	sort.Slice(result, func(i, j int) bool {
		return result[i].ProductID < result[j].ProductID
	})

	return result, nil
}

var _ storage.ProductStore = (*ProductStore)(nil)
