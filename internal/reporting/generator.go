package reporting

import (
	"context"
	"errors"
	"time"

	"resale-price-engine/internal/storage"
)

// Generator produces reports from stored data.
type Generator struct {
	products  storage.ProductStore
	opps      storage.OpportunityStore
	inventory storage.InventoryStore
	now       func() time.Time // Injectable clock for deterministic output
}

// NewGenerator creates a new report generator. The inventory store may be nil
// when only the opportunity side is wanted.
func NewGenerator(products storage.ProductStore, opps storage.OpportunityStore, inventory storage.InventoryStore) *Generator {
	return &Generator{
		products:  products,
		opps:      opps,
		inventory: inventory,
		now:       func() time.Time { return time.Now().UTC() },
	}
}

// WithClock sets a custom clock function for deterministic output.
func (g *Generator) WithClock(now func() time.Time) *Generator {
	g.now = now
	return g
}

// Generate builds a report with up to limit opportunities.
func (g *Generator) Generate(ctx context.Context, limit int) (*Report, error) {
	opps, err := g.opps.ListTop(ctx, limit)
	if err != nil {
		return nil, err
	}

	products, err := g.products.ListAll(ctx)
	if err != nil {
		return nil, err
	}
	names := make(map[string]string, len(products))
	for _, p := range products {
		names[p.ProductID] = p.Name
	}

	report := &Report{
		GeneratedAt: g.now(),
		Summary: Summary{
			Products:      len(products),
			Opportunities: len(opps),
		},
	}

	for i, o := range opps {
		if i == 0 {
			report.Summary.BestProfitCents = o.ProfitCents
			report.Summary.BestMarginPercent = o.MarginPercent
		}
		report.Opportunities = append(report.Opportunities, OpportunityRow{
			ProductID:        o.ProductID,
			ProductName:      names[o.ProductID],
			Size:             o.Size.String(),
			RetailPriceCents: o.RetailPriceCents,
			ResalePriceCents: o.ResalePriceCents,
			Currency:         o.Currency,
			ProfitCents:      o.ProfitCents,
			MarginPercent:    o.MarginPercent,
			Score:            o.Score,
		})
	}

	if g.inventory != nil {
		items, err := g.inventory.ListAll(ctx)
		if err != nil && !errors.Is(err, storage.ErrNotFound) {
			return nil, err
		}
		report.Summary.InventoryItems = len(items)
		for _, item := range items {
			if item.SaleDate == nil {
				report.Summary.UnsoldItems++
			}
			report.Inventory = append(report.Inventory, InventoryRow{
				ItemID:            item.ItemID,
				ProductID:         item.ProductID,
				ProductName:       names[item.ProductID],
				Status:            item.Status,
				ShelfLifeDays:     item.ShelfLifeDays,
				ROIPercentage:     item.ROIPercentage,
				ProfitPerShelfDay: item.ProfitPerShelfDay,
			})
		}
	}

	return report, nil
}
