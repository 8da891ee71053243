package ingest

import (
	"context"
	"errors"
	"fmt"
	"log"
	"regexp"
	"time"

	"resale-price-engine/internal/catalog"
	"resale-price-engine/internal/domain"
	"resale-price-engine/internal/idhash"
	"resale-price-engine/internal/observability"
	"resale-price-engine/internal/sizing"
	"resale-price-engine/internal/storage"
)

// Quote validation errors. A failed quote is skipped; the rest of the batch
// still goes through.
var (
	ErrNegativePrice   = errors.New("ingest: negative price")
	ErrBadCurrency     = errors.New("ingest: currency is not a 3-letter code")
	ErrFutureTimestamp = errors.New("ingest: observed_at is in the future")
	ErrMissingSourceID = errors.New("ingest: missing source product id")
)

var currencyPattern = regexp.MustCompile(`^[A-Z]{3}$`)

// clockSkewTolerance allows for minor clock drift between sources and the
// engine before an observation counts as "in the future".
const clockSkewTolerance = 5 * time.Minute

// QuoteFailure records one rejected quote inside a batch.
type QuoteFailure struct {
	Index int // position within the batch
	Err   error
}

// BatchResult summarizes one processed batch.
type BatchResult struct {
	Processed int
	Inserted  int
	Updated   int
	Unchanged int
	Stale     int
	Failed    []QuoteFailure
}

// Ingestor validates raw quotes, resolves them against the catalog,
// normalizes sizes and conditionally upserts canonical records. A transition
// (insert or update) appends a history entry and publishes a change event.
type Ingestor struct {
	records  storage.PriceRecordStore
	history  storage.PriceHistoryStore
	resolver *catalog.Resolver
	events   chan<- domain.PriceRecordChanged
	logger   *log.Logger
	now      func() int64
}

// IngestorOptions contains configuration for creating an Ingestor.
type IngestorOptions struct {
	Records  storage.PriceRecordStore
	History  storage.PriceHistoryStore
	Resolver *catalog.Resolver
	Events   chan<- domain.PriceRecordChanged // nil disables event publishing
	Logger   *log.Logger
	Now      func() int64 // defaults to wall clock, overridable in tests
}

// NewIngestor creates a new Ingestor.
func NewIngestor(opts IngestorOptions) *Ingestor {
	logger := opts.Logger
	if logger == nil {
		logger = log.Default()
	}
	now := opts.Now
	if now == nil {
		now = func() int64 { return time.Now().UnixMilli() }
	}

	return &Ingestor{
		records:  opts.Records,
		history:  opts.History,
		resolver: opts.Resolver,
		events:   opts.Events,
		logger:   logger,
		now:      now,
	}
}

// ProcessBatch runs every quote in the batch through the full pipeline.
// Individual quote failures are collected, not fatal; the returned error is
// non-nil only when the batch as a whole could not be processed.
func (i *Ingestor) ProcessBatch(ctx context.Context, batch *domain.QuoteBatch) (*BatchResult, error) {
	if batch == nil {
		return nil, storage.ErrInvalidInput
	}

	result := &BatchResult{}
	source := string(batch.SourceType)

	for idx, quote := range batch.Quotes {
		if err := ctx.Err(); err != nil {
			return result, err
		}

		outcome, err := i.processQuote(ctx, quote)
		result.Processed++
		if err != nil {
			result.Failed = append(result.Failed, QuoteFailure{Index: idx, Err: err})
			observability.RecordQuoteFailure(source, failureReason(err))
			i.logger.Printf("quote %d/%d from %s rejected: %v", idx+1, len(batch.Quotes), source, err)
			continue
		}

		observability.RecordQuote(source, string(outcome))
		switch outcome {
		case storage.UpsertInserted:
			result.Inserted++
		case storage.UpsertUpdated:
			result.Updated++
		case storage.UpsertUnchanged:
			result.Unchanged++
		case storage.UpsertStale:
			result.Stale++
		}
	}

	observability.RecordBatch(source)
	observability.DefaultMetrics.LastSuccessfulBatch.Set(float64(i.now()) / 1000)

	i.logger.Printf("batch %s from %s: %d quotes, %d inserted, %d updated, %d unchanged, %d stale, %d failed",
		batch.BatchID, source, result.Processed, result.Inserted, result.Updated, result.Unchanged, result.Stale, len(result.Failed))

	return result, nil
}

// processQuote handles one quote end to end and returns the upsert outcome.
func (i *Ingestor) processQuote(ctx context.Context, quote *domain.RawQuote) (storage.UpsertOutcome, error) {
	if quote == nil {
		return "", storage.ErrInvalidInput
	}
	if err := i.validate(quote); err != nil {
		return "", err
	}

	product, err := i.resolver.Resolve(ctx, quote.ProductRef)
	if err != nil {
		if errors.Is(err, catalog.ErrUnresolved) {
			return "", err
		}
		return "", fmt.Errorf("resolve product: %w", err)
	}

	size := sizing.Normalize(quote.SizeRaw, quote.Region)

	rec := &domain.CanonicalPriceRecord{
		RecordID:        idhash.ComputeRecordID(product.ProductID, quote.SourceType, quote.SourceProductID, size),
		ProductID:       product.ProductID,
		SourceType:      quote.SourceType,
		SourceProductID: quote.SourceProductID,
		Size:            size,
		PriceType:       quote.PriceType,
		PriceCents:      quote.PriceCents,
		Currency:        quote.Currency,
		InStock:         quote.InStock,
		StockQuantity:   quote.StockQuantity,
		SourceURL:       quote.SourceURL,
		SupplierRef:     quote.SupplierRef,
		LastObservedAt:  quote.ObservedAt,
	}

	outcome, err := i.records.Upsert(ctx, rec)
	if err != nil {
		return "", fmt.Errorf("upsert record: %w", err)
	}

	// History and events only on actual transitions.
	if outcome == storage.UpsertInserted || outcome == storage.UpsertUpdated {
		entry := &domain.PriceHistoryEntry{
			RecordID:      rec.RecordID,
			PriceCents:    rec.PriceCents,
			InStock:       rec.InStock,
			StockQuantity: rec.StockQuantity,
			RecordedAt:    rec.LastObservedAt,
		}
		if err := i.history.Append(ctx, entry); err != nil {
			return "", fmt.Errorf("append history: %w", err)
		}
		observability.RecordHistoryAppend()

		if i.events != nil {
			select {
			case i.events <- domain.PriceRecordChanged{RecordID: rec.RecordID, ProductID: rec.ProductID, Size: rec.Size}:
			case <-ctx.Done():
				return outcome, ctx.Err()
			}
		}
	}

	return outcome, nil
}

// validate enforces the quote-level input constraints.
func (i *Ingestor) validate(quote *domain.RawQuote) error {
	if quote.SourceProductID == "" {
		return ErrMissingSourceID
	}
	if quote.PriceCents < 0 {
		return ErrNegativePrice
	}
	if !currencyPattern.MatchString(quote.Currency) {
		return ErrBadCurrency
	}
	if quote.ObservedAt > i.now()+clockSkewTolerance.Milliseconds() {
		return ErrFutureTimestamp
	}
	if quote.StockQuantity != nil && *quote.StockQuantity < 0 {
		return storage.ErrInvalidInput
	}
	return nil
}

// failureReason maps a validation or resolution error to a metric label.
func failureReason(err error) string {
	switch {
	case errors.Is(err, ErrNegativePrice):
		return "negative_price"
	case errors.Is(err, ErrBadCurrency):
		return "bad_currency"
	case errors.Is(err, ErrFutureTimestamp):
		return "future_timestamp"
	case errors.Is(err, ErrMissingSourceID):
		return "missing_source_id"
	case errors.Is(err, catalog.ErrUnresolved):
		return "unresolved_product"
	default:
		return "internal"
	}
}
