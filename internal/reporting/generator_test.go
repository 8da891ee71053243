package reporting

import (
	"context"
	"strings"
	"testing"
	"time"

	"resale-price-engine/internal/domain"
	"resale-price-engine/internal/storage/memory"
)

func setupTestData(t *testing.T) (*memory.ProductStore, *memory.OpportunityStore, *memory.InventoryStore) {
	t.Helper()
	ctx := context.Background()

	products := memory.NewProductStore()
	if err := products.Seed(
		&domain.Product{ProductID: "prod-1", Name: "Dunk Low Panda", Brand: "Nike"},
		&domain.Product{ProductID: "prod-2", Name: "Yeezy Slide", Brand: "Adidas"},
	); err != nil {
		t.Fatalf("seed products: %v", err)
	}

	opps := memory.NewOpportunityStore()
	size := domain.Matched(9, "US 9", "US")
	err := opps.ReplaceForKey(ctx, "prod-1", size.Key(), []*domain.Opportunity{
		{
			OpportunityID:    "opp-1",
			ProductID:        "prod-1",
			SizeKey:          size.Key(),
			Size:             size,
			RetailRecordID:   "r-1",
			ResaleRecordID:   "s-1",
			RetailPriceCents: 8000,
			ResalePriceCents: 14000,
			Currency:         "EUR",
			ProfitCents:      6000,
			MarginPercent:    75,
			Score:            45,
			ComputedAt:       1700000000000,
		},
	})
	if err != nil {
		t.Fatalf("seed opportunities: %v", err)
	}

	inventory := memory.NewInventoryStore()
	roi := 75.0
	perDay := 600.0
	saleDate := int64(1700864000000)
	salePrice := int64(14000)
	items := []*domain.InventoryItem{
		{
			ItemID: "item-sold", ProductID: "prod-1", PurchasePriceCents: 8000, PurchaseDate: 1700000000000,
			SaleDate: &saleDate, SalePriceCents: &salePrice, Quantity: 1, Status: "sold",
			ShelfLifeDays: 10, ROIPercentage: &roi, ProfitPerShelfDay: &perDay,
		},
		{
			ItemID: "item-unsold", ProductID: "prod-2", PurchasePriceCents: 5000, PurchaseDate: 1700500000000,
			Quantity: 1, Status: "available", ShelfLifeDays: 4,
		},
	}
	for _, item := range items {
		if err := inventory.Put(ctx, item); err != nil {
			t.Fatalf("seed inventory: %v", err)
		}
	}

	return products, opps, inventory
}

func TestGeneratorBuildsReport(t *testing.T) {
	products, opps, inventory := setupTestData(t)

	fixed := time.Date(2024, time.March, 1, 12, 0, 0, 0, time.UTC)
	gen := NewGenerator(products, opps, inventory).WithClock(func() time.Time { return fixed })

	report, err := gen.Generate(context.Background(), 10)
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}

	if !report.GeneratedAt.Equal(fixed) {
		t.Errorf("GeneratedAt = %v, want %v", report.GeneratedAt, fixed)
	}
	if report.Summary.Products != 2 {
		t.Errorf("Summary.Products = %d, want 2", report.Summary.Products)
	}
	if report.Summary.Opportunities != 1 {
		t.Errorf("Summary.Opportunities = %d, want 1", report.Summary.Opportunities)
	}
	if report.Summary.BestProfitCents != 6000 {
		t.Errorf("Summary.BestProfitCents = %d, want 6000", report.Summary.BestProfitCents)
	}
	if report.Summary.InventoryItems != 2 || report.Summary.UnsoldItems != 1 {
		t.Errorf("inventory summary = (%d, %d), want (2, 1)", report.Summary.InventoryItems, report.Summary.UnsoldItems)
	}

	if len(report.Opportunities) != 1 {
		t.Fatalf("opportunities = %d, want 1", len(report.Opportunities))
	}
	if report.Opportunities[0].ProductName != "Dunk Low Panda" {
		t.Errorf("ProductName = %q, want Dunk Low Panda", report.Opportunities[0].ProductName)
	}
}

func TestRenderMarkdown(t *testing.T) {
	products, opps, inventory := setupTestData(t)

	gen := NewGenerator(products, opps, inventory).WithClock(func() time.Time {
		return time.Date(2024, time.March, 1, 12, 0, 0, 0, time.UTC)
	})
	report, err := gen.Generate(context.Background(), 10)
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}

	md := RenderMarkdown(report)

	for _, want := range []string{
		"# Arbitrage Report",
		"Dunk Low Panda",
		"US 9",
		"80.00 EUR",
		"140.00 EUR",
		"75.00%",
		"item-unsold",
		"| - | - |", // unsold items have no ROI or profit per day
	} {
		if !strings.Contains(md, want) {
			t.Errorf("markdown missing %q:\n%s", want, md)
		}
	}
}

func TestRenderCSV(t *testing.T) {
	products, opps, inventory := setupTestData(t)

	gen := NewGenerator(products, opps, inventory)
	report, err := gen.Generate(context.Background(), 10)
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}

	csv := RenderCSV(report)
	lines := strings.Split(strings.TrimSpace(csv), "\n")
	if len(lines) != 2 {
		t.Fatalf("lines = %d, want header plus one row", len(lines))
	}
	if !strings.HasPrefix(lines[0], "product_id,") {
		t.Errorf("header = %q", lines[0])
	}
	if !strings.Contains(lines[1], "prod-1") || !strings.Contains(lines[1], "6000") {
		t.Errorf("row = %q, missing fields", lines[1])
	}
}

func TestCSVEscaping(t *testing.T) {
	if got := csvEscape(`plain`); got != `plain` {
		t.Errorf("csvEscape(plain) = %q", got)
	}
	if got := csvEscape(`a,b`); got != `"a,b"` {
		t.Errorf("csvEscape(a,b) = %q", got)
	}
	if got := csvEscape(`say "hi"`); got != `"say ""hi"""` {
		t.Errorf("csvEscape quotes = %q", got)
	}
}

func TestGeneratorWithoutInventory(t *testing.T) {
	products, opps, _ := setupTestData(t)

	gen := NewGenerator(products, opps, nil)
	report, err := gen.Generate(context.Background(), 10)
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	if report.Summary.InventoryItems != 0 || len(report.Inventory) != 0 {
		t.Errorf("expected empty inventory section")
	}
}
