package match

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/google/uuid"

	"resale-price-engine/internal/domain"
	"resale-price-engine/internal/observability"
	"resale-price-engine/internal/storage"
)

// Matcher derives arbitrage opportunities from the canonical price store.
// It is the only writer of the opportunity set. Recomputation is a pure
// function of current store state, so replayed or duplicated change events
// converge to the same result.
type Matcher struct {
	records storage.PriceRecordStore
	opps    storage.OpportunityStore
	logger  *log.Logger
	now     func() int64
}

// MatcherOptions contains configuration for creating a Matcher.
type MatcherOptions struct {
	Records storage.PriceRecordStore
	Opps    storage.OpportunityStore
	Logger  *log.Logger
	Now     func() int64 // defaults to wall clock, overridable in tests
}

// NewMatcher creates a new Matcher.
func NewMatcher(opts MatcherOptions) *Matcher {
	logger := opts.Logger
	if logger == nil {
		logger = log.Default()
	}
	now := opts.Now
	if now == nil {
		now = func() int64 { return time.Now().UnixMilli() }
	}

	return &Matcher{
		records: opts.Records,
		opps:    opts.Opps,
		logger:  logger,
		now:     now,
	}
}

// Run consumes change events until the channel closes or the context is
// cancelled. A failed recomputation is logged and skipped; the next event for
// the same key repairs the derived state.
func (m *Matcher) Run(ctx context.Context, events <-chan domain.PriceRecordChanged) error {
	m.logger.Println("opportunity matcher starting")

	for {
		select {
		case <-ctx.Done():
			m.logger.Println("opportunity matcher stopping")
			return ctx.Err()
		case ev, ok := <-events:
			if !ok {
				m.logger.Println("change event channel closed")
				return nil
			}
			observability.UpdateQueuedEvents(len(events))
			if err := m.Recompute(ctx, ev.ProductID, ev.Size); err != nil {
				if ctx.Err() != nil {
					return ctx.Err()
				}
				m.logger.Printf("recompute for product %s size %s failed: %v", ev.ProductID, ev.Size, err)
			}
		}
	}
}

// Recompute rebuilds the opportunity set for one (product, size) key from
// current store state and swaps it in atomically.
func (m *Matcher) Recompute(ctx context.Context, productID string, size domain.Size) error {
	start := time.Now()
	err := m.recompute(ctx, productID, size)
	if err != nil {
		observability.RecordRecompute("error", time.Since(start).Seconds())
		return err
	}
	observability.RecordRecompute("ok", time.Since(start).Seconds())
	observability.DefaultMetrics.LastSuccessfulRecompute.Set(float64(m.now()) / 1000)
	return nil
}

func (m *Matcher) recompute(ctx context.Context, productID string, size domain.Size) error {
	matchKey, matchable := size.MatchKey()
	if !matchable {
		// Unmatched sizes never pair; make sure nothing lingers under the key.
		return m.opps.ReplaceForKey(ctx, productID, size.Key(), nil)
	}

	retail, err := m.records.ListActive(ctx, productID, domain.PriceRetail)
	if err != nil {
		return fmt.Errorf("list retail records: %w", err)
	}
	resale, err := m.records.ListActive(ctx, productID, domain.PriceResale)
	if err != nil {
		return fmt.Errorf("list resale records: %w", err)
	}

	retail = filterByMatchKey(retail, matchKey)
	resale = filterByMatchKey(resale, matchKey)

	computedAt := m.now()
	var opps []*domain.Opportunity
	for _, buy := range retail {
		for _, sell := range resale {
			if sell.Currency != buy.Currency {
				continue
			}
			profit := sell.PriceCents - buy.PriceCents
			if profit <= 0 {
				continue
			}
			opps = append(opps, &domain.Opportunity{
				OpportunityID:    uuid.NewString(),
				ProductID:        productID,
				SizeKey:          size.Key(),
				Size:             size,
				RetailRecordID:   buy.RecordID,
				ResaleRecordID:   sell.RecordID,
				RetailPriceCents: buy.PriceCents,
				ResalePriceCents: sell.PriceCents,
				Currency:         buy.Currency,
				ProfitCents:      profit,
				MarginPercent:    MarginPercent(profit, buy.PriceCents),
				Score:            Score(profit, buy.PriceCents),
				ComputedAt:       computedAt,
			})
		}
	}

	if err := m.opps.ReplaceForKey(ctx, productID, size.Key(), opps); err != nil {
		return fmt.Errorf("replace opportunities: %w", err)
	}

	observability.UpdateActiveOpportunities(len(opps))
	return nil
}

// RecomputeProduct rebuilds every size key a product currently has records
// for. Used by the scheduled full refresh.
func (m *Matcher) RecomputeProduct(ctx context.Context, productID string) error {
	records, err := m.records.GetByProduct(ctx, productID)
	if err != nil {
		return fmt.Errorf("get product records: %w", err)
	}

	seen := make(map[string]bool)
	for _, rec := range records {
		key := rec.Size.Key()
		if seen[key] {
			continue
		}
		seen[key] = true
		if err := m.Recompute(ctx, productID, rec.Size); err != nil {
			return err
		}
	}
	return nil
}

// filterByMatchKey keeps records whose size participates in matching under
// the given key.
func filterByMatchKey(records []*domain.CanonicalPriceRecord, matchKey string) []*domain.CanonicalPriceRecord {
	var out []*domain.CanonicalPriceRecord
	for _, rec := range records {
		key, ok := rec.Size.MatchKey()
		if ok && key == matchKey {
			out = append(out, rec)
		}
	}
	return out
}
