package ingest

import (
	"context"
	"errors"
	"testing"

	"resale-price-engine/internal/catalog"
	"resale-price-engine/internal/domain"
	"resale-price-engine/internal/storage/memory"
)

type testFixture struct {
	ingestor *Ingestor
	records  *memory.PriceRecordStore
	history  *memory.PriceHistoryStore
	events   chan domain.PriceRecordChanged
}

func newTestFixture(t *testing.T) *testFixture {
	t.Helper()

	products := memory.NewProductStore()
	err := products.Seed(
		&domain.Product{ProductID: "prod-1", SKU: "DD1391-100", EAN: "4064536318152", Name: "Dunk Low Panda", Brand: "Nike"},
	)
	if err != nil {
		t.Fatalf("seed products: %v", err)
	}

	records := memory.NewPriceRecordStore()
	history := memory.NewPriceHistoryStore()
	events := make(chan domain.PriceRecordChanged, 64)

	ingestor := NewIngestor(IngestorOptions{
		Records:  records,
		History:  history,
		Resolver: catalog.NewResolver(products),
		Events:   events,
		Now:      func() int64 { return 5_000_000 },
	})

	return &testFixture{ingestor: ingestor, records: records, history: history, events: events}
}

func validQuote(observedAt int64) *domain.RawQuote {
	return &domain.RawQuote{
		SourceType:      domain.SourceStockX,
		SourceProductID: "sx-1",
		ProductRef:      domain.ProductRef{EAN: "4064536318152"},
		SizeRaw:         "42,5",
		Region:          "EU",
		PriceType:       domain.PriceResale,
		PriceCents:      14000,
		Currency:        "EUR",
		InStock:         true,
		ObservedAt:      observedAt,
	}
}

func batchOf(quotes ...*domain.RawQuote) *domain.QuoteBatch {
	return &domain.QuoteBatch{
		BatchID:    "batch-1",
		SourceType: domain.SourceStockX,
		Quotes:     quotes,
	}
}

func TestIngestorInsertsAndPublishes(t *testing.T) {
	f := newTestFixture(t)
	ctx := context.Background()

	result, err := f.ingestor.ProcessBatch(ctx, batchOf(validQuote(1000)))
	if err != nil {
		t.Fatalf("ProcessBatch: %v", err)
	}

	if result.Inserted != 1 {
		t.Errorf("Inserted = %d, want 1", result.Inserted)
	}
	if len(result.Failed) != 0 {
		t.Errorf("Failed = %v, want none", result.Failed)
	}
	if f.history.Count() != 1 {
		t.Errorf("history count = %d, want 1", f.history.Count())
	}

	select {
	case ev := <-f.events:
		if ev.ProductID != "prod-1" {
			t.Errorf("event ProductID = %q, want prod-1", ev.ProductID)
		}
		// EU 42,5 standardizes to US 9.
		if ev.Size.Kind != domain.SizeMatched || ev.Size.Value != 9 {
			t.Errorf("event Size = %+v, want matched US 9", ev.Size)
		}
	default:
		t.Error("expected a change event")
	}
}

func TestIngestorIdenticalBatchIsIdempotent(t *testing.T) {
	f := newTestFixture(t)
	ctx := context.Background()

	if _, err := f.ingestor.ProcessBatch(ctx, batchOf(validQuote(1000))); err != nil {
		t.Fatalf("first batch: %v", err)
	}
	<-f.events

	// Replay of the exact same batch: equal observed_at means stale.
	result, err := f.ingestor.ProcessBatch(ctx, batchOf(validQuote(1000)))
	if err != nil {
		t.Fatalf("second batch: %v", err)
	}

	if result.Stale != 1 {
		t.Errorf("Stale = %d, want 1", result.Stale)
	}
	if f.history.Count() != 1 {
		t.Errorf("history count = %d, want 1 (no new entries on replay)", f.history.Count())
	}
	select {
	case ev := <-f.events:
		t.Errorf("unexpected event on replay: %+v", ev)
	default:
	}
}

func TestIngestorUnchangedSkipsHistoryAndEvents(t *testing.T) {
	f := newTestFixture(t)
	ctx := context.Background()

	if _, err := f.ingestor.ProcessBatch(ctx, batchOf(validQuote(1000))); err != nil {
		t.Fatalf("first batch: %v", err)
	}
	<-f.events

	// Newer observation, same price and stock.
	result, err := f.ingestor.ProcessBatch(ctx, batchOf(validQuote(2000)))
	if err != nil {
		t.Fatalf("second batch: %v", err)
	}

	if result.Unchanged != 1 {
		t.Errorf("Unchanged = %d, want 1", result.Unchanged)
	}
	if f.history.Count() != 1 {
		t.Errorf("history count = %d, want 1", f.history.Count())
	}
	select {
	case ev := <-f.events:
		t.Errorf("unexpected event for unchanged quote: %+v", ev)
	default:
	}
}

func TestIngestorPriceChangeAppendsHistory(t *testing.T) {
	f := newTestFixture(t)
	ctx := context.Background()

	if _, err := f.ingestor.ProcessBatch(ctx, batchOf(validQuote(1000))); err != nil {
		t.Fatalf("first batch: %v", err)
	}
	<-f.events

	changed := validQuote(2000)
	changed.PriceCents = 15000

	result, err := f.ingestor.ProcessBatch(ctx, batchOf(changed))
	if err != nil {
		t.Fatalf("second batch: %v", err)
	}

	if result.Updated != 1 {
		t.Errorf("Updated = %d, want 1", result.Updated)
	}
	if f.history.Count() != 2 {
		t.Errorf("history count = %d, want 2", f.history.Count())
	}
	select {
	case <-f.events:
	default:
		t.Error("expected a change event for the update")
	}
}

func TestIngestorPartialFailure(t *testing.T) {
	f := newTestFixture(t)
	ctx := context.Background()

	negative := validQuote(1000)
	negative.PriceCents = -1

	badCurrency := validQuote(1000)
	badCurrency.SourceProductID = "sx-2"
	badCurrency.Currency = "eur"

	future := validQuote(99_000_000)
	future.SourceProductID = "sx-3"

	unresolved := validQuote(1000)
	unresolved.SourceProductID = "sx-4"
	unresolved.ProductRef = domain.ProductRef{Name: "Unknown Shoe"}

	ok := validQuote(1000)

	result, err := f.ingestor.ProcessBatch(ctx, batchOf(negative, badCurrency, future, unresolved, ok))
	if err != nil {
		t.Fatalf("ProcessBatch: %v", err)
	}

	if result.Inserted != 1 {
		t.Errorf("Inserted = %d, want 1", result.Inserted)
	}
	if len(result.Failed) != 4 {
		t.Fatalf("Failed = %d, want 4", len(result.Failed))
	}

	wantErrs := []error{ErrNegativePrice, ErrBadCurrency, ErrFutureTimestamp, catalog.ErrUnresolved}
	for i, failure := range result.Failed {
		if failure.Index != i {
			t.Errorf("Failed[%d].Index = %d, want %d", i, failure.Index, i)
		}
		if !errors.Is(failure.Err, wantErrs[i]) {
			t.Errorf("Failed[%d].Err = %v, want %v", i, failure.Err, wantErrs[i])
		}
	}
}

func TestIngestorUnmatchedSizeStillStored(t *testing.T) {
	f := newTestFixture(t)
	ctx := context.Background()

	odd := validQuote(1000)
	odd.SizeRaw = "XL"

	result, err := f.ingestor.ProcessBatch(ctx, batchOf(odd))
	if err != nil {
		t.Fatalf("ProcessBatch: %v", err)
	}

	if result.Inserted != 1 {
		t.Errorf("Inserted = %d, want 1", result.Inserted)
	}

	records, err := f.records.GetByProduct(ctx, "prod-1")
	if err != nil {
		t.Fatalf("GetByProduct: %v", err)
	}
	if len(records) != 1 {
		t.Fatalf("records = %d, want 1", len(records))
	}
	if records[0].Size.Kind != domain.SizeUnmatched {
		t.Errorf("Size.Kind = %q, want unmatched", records[0].Size.Kind)
	}
}
