package refresh

import (
	"context"
	"testing"

	"resale-price-engine/internal/domain"
	"resale-price-engine/internal/idhash"
	"resale-price-engine/internal/lifecycle"
	"resale-price-engine/internal/match"
	"resale-price-engine/internal/storage/memory"
)

func TestRunOnceRebuildsDerivedState(t *testing.T) {
	ctx := context.Background()

	products := memory.NewProductStore()
	if err := products.Seed(
		&domain.Product{ProductID: "prod-1", Name: "Dunk Low Panda", Brand: "Nike"},
	); err != nil {
		t.Fatalf("seed: %v", err)
	}

	records := memory.NewPriceRecordStore()
	opps := memory.NewOpportunityStore()
	inventory := memory.NewInventoryStore()

	size := domain.Matched(9, "US 9", "US")
	for _, rec := range []*domain.CanonicalPriceRecord{
		{
			RecordID:        idhash.ComputeRecordID("prod-1", domain.SourceAwin, "aw-1", size),
			ProductID:       "prod-1",
			SourceType:      domain.SourceAwin,
			SourceProductID: "aw-1",
			Size:            size,
			PriceType:       domain.PriceRetail,
			PriceCents:      8000,
			Currency:        "EUR",
			InStock:         true,
			LastObservedAt:  1000,
		},
		{
			RecordID:        idhash.ComputeRecordID("prod-1", domain.SourceStockX, "sx-1", size),
			ProductID:       "prod-1",
			SourceType:      domain.SourceStockX,
			SourceProductID: "sx-1",
			Size:            size,
			PriceType:       domain.PriceResale,
			PriceCents:      14000,
			Currency:        "EUR",
			InStock:         true,
			LastObservedAt:  1000,
		},
	} {
		if _, err := records.Upsert(ctx, rec); err != nil {
			t.Fatalf("upsert: %v", err)
		}
	}

	dayMs := int64(24 * 60 * 60 * 1000)
	nowMs := 30 * dayMs
	item := &domain.InventoryItem{
		ItemID:             "item-1",
		ProductID:          "prod-1",
		PurchasePriceCents: 8000,
		PurchaseDate:       20 * dayMs,
		Quantity:           1,
		Status:             "available",
	}
	if err := inventory.Put(ctx, item); err != nil {
		t.Fatalf("put inventory: %v", err)
	}

	matcher := match.NewMatcher(match.MatcherOptions{
		Records: records,
		Opps:    opps,
		Now:     func() int64 { return nowMs },
	})
	lifecycleSvc := lifecycle.NewService(lifecycle.ServiceOptions{
		Store: inventory,
		Now:   func() int64 { return nowMs },
	})

	runner := NewRunner(products, matcher, lifecycleSvc, nil)
	if err := runner.RunOnce(ctx); err != nil {
		t.Fatalf("RunOnce: %v", err)
	}

	got, err := opps.GetByProduct(ctx, "prod-1")
	if err != nil {
		t.Fatalf("GetByProduct: %v", err)
	}
	if len(got) != 1 {
		t.Errorf("opportunities = %d, want 1", len(got))
	}

	refreshed, err := inventory.GetByID(ctx, "item-1")
	if err != nil {
		t.Fatalf("GetByID: %v", err)
	}
	if refreshed.ShelfLifeDays != 10 {
		t.Errorf("ShelfLifeDays = %d, want 10", refreshed.ShelfLifeDays)
	}
}

func TestStartRejectsBadSchedule(t *testing.T) {
	runner := NewRunner(memory.NewProductStore(), match.NewMatcher(match.MatcherOptions{
		Records: memory.NewPriceRecordStore(),
		Opps:    memory.NewOpportunityStore(),
	}), nil, nil)

	if _, err := runner.Start(context.Background(), "not a cron spec"); err == nil {
		t.Error("expected error for invalid schedule")
	}
}
