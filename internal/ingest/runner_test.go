package ingest

import (
	"context"
	"testing"
	"time"

	"resale-price-engine/internal/catalog"
	"resale-price-engine/internal/domain"
	"resale-price-engine/internal/storage/memory"
)

// scriptedSource replays a fixed set of batches and closes.
type scriptedSource struct {
	source  domain.SourceType
	batches []*domain.QuoteBatch
}

func (s *scriptedSource) Source() domain.SourceType { return s.source }

func (s *scriptedSource) Batches(ctx context.Context) (<-chan *domain.QuoteBatch, error) {
	ch := make(chan *domain.QuoteBatch)
	go func() {
		defer close(ch)
		for _, b := range s.batches {
			select {
			case ch <- b:
			case <-ctx.Done():
				return
			}
		}
	}()
	return ch, nil
}

func TestRunnerProcessesAllSources(t *testing.T) {
	products := memory.NewProductStore()
	if err := products.Seed(
		&domain.Product{ProductID: "prod-1", EAN: "4064536318152", Name: "Dunk Low Panda", Brand: "Nike"},
	); err != nil {
		t.Fatalf("seed products: %v", err)
	}

	records := memory.NewPriceRecordStore()
	history := memory.NewPriceHistoryStore()

	ingestor := NewIngestor(IngestorOptions{
		Records:  records,
		History:  history,
		Resolver: catalog.NewResolver(products),
		Now:      func() int64 { return 5_000_000 },
	})

	stockxQuote := validQuote(1000)
	goatQuote := validQuote(1000)
	goatQuote.SourceType = domain.SourceGoat
	goatQuote.SourceProductID = "gt-1"

	runner := NewRunner(ingestor, []BatchSource{
		&scriptedSource{source: domain.SourceStockX, batches: []*domain.QuoteBatch{
			{BatchID: "b1", SourceType: domain.SourceStockX, Quotes: []*domain.RawQuote{stockxQuote}},
		}},
		&scriptedSource{source: domain.SourceGoat, batches: []*domain.QuoteBatch{
			{BatchID: "b2", SourceType: domain.SourceGoat, Quotes: []*domain.RawQuote{goatQuote}},
		}},
	}, nil)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	// Both sources close after replaying, so Run returns without cancellation.
	if err := runner.Run(ctx); err != nil {
		t.Fatalf("Run: %v", err)
	}

	got, err := records.GetByProduct(ctx, "prod-1")
	if err != nil {
		t.Fatalf("GetByProduct: %v", err)
	}
	if len(got) != 2 {
		t.Errorf("records = %d, want 2 (one per source)", len(got))
	}
}
