package lifecycle

import (
	"context"
	"fmt"
	"log"
	"time"

	"resale-price-engine/internal/domain"
	"resale-price-engine/internal/observability"
	"resale-price-engine/internal/storage"
)

// Service is the single writer of inventory derived fields. Every write path
// recomputes synchronously before persisting, so a stored item never carries
// stale lifecycle metrics relative to its own input fields.
type Service struct {
	store  storage.InventoryStore
	logger *log.Logger
	now    func() int64
}

// ServiceOptions contains configuration for creating a Service.
type ServiceOptions struct {
	Store  storage.InventoryStore
	Logger *log.Logger
	Now    func() int64 // defaults to wall clock, overridable in tests
}

// NewService creates a new lifecycle Service.
func NewService(opts ServiceOptions) *Service {
	logger := opts.Logger
	if logger == nil {
		logger = log.Default()
	}
	now := opts.Now
	if now == nil {
		now = func() int64 { return time.Now().UnixMilli() }
	}

	return &Service{
		store:  opts.Store,
		logger: logger,
		now:    now,
	}
}

// Save recomputes derived fields and persists the item.
func (s *Service) Save(ctx context.Context, item *domain.InventoryItem) error {
	if item == nil || item.ItemID == "" {
		return storage.ErrInvalidInput
	}

	ComputeDerived(item, s.now())
	observability.RecordInventoryRecompute()

	if err := s.store.Put(ctx, item); err != nil {
		return fmt.Errorf("save inventory item: %w", err)
	}
	return nil
}

// RecordSale marks an item sold and recomputes its final metrics.
func (s *Service) RecordSale(ctx context.Context, itemID string, saleDate, salePriceCents int64) (*domain.InventoryItem, error) {
	item, err := s.store.GetByID(ctx, itemID)
	if err != nil {
		return nil, fmt.Errorf("load inventory item: %w", err)
	}

	item.SaleDate = &saleDate
	item.SalePriceCents = &salePriceCents
	item.Status = "sold"

	if err := s.Save(ctx, item); err != nil {
		return nil, err
	}
	return item, nil
}

// Get retrieves one item.
func (s *Service) Get(ctx context.Context, itemID string) (*domain.InventoryItem, error) {
	return s.store.GetByID(ctx, itemID)
}

// List retrieves all items ordered by purchase date.
func (s *Service) List(ctx context.Context) ([]*domain.InventoryItem, error) {
	return s.store.ListAll(ctx)
}

// RefreshAll recomputes every item against the current clock. Sold items are
// already final; only unsold shelf lives drift with time.
func (s *Service) RefreshAll(ctx context.Context) error {
	items, err := s.store.ListAll(ctx)
	if err != nil {
		return fmt.Errorf("list inventory items: %w", err)
	}

	nowMs := s.now()
	refreshed := 0
	for _, item := range items {
		if item.SaleDate != nil {
			continue
		}
		before := item.ShelfLifeDays
		ComputeDerived(item, nowMs)
		if item.ShelfLifeDays == before {
			continue
		}
		observability.RecordInventoryRecompute()
		if err := s.store.Put(ctx, item); err != nil {
			return fmt.Errorf("refresh inventory item %s: %w", item.ItemID, err)
		}
		refreshed++
	}

	s.logger.Printf("inventory refresh: %d of %d items updated", refreshed, len(items))
	return nil
}
