package feed

import (
	"context"

	"github.com/google/uuid"

	"resale-price-engine/internal/domain"
	"resale-price-engine/internal/ingest"
)

// StaticSource replays a fixed set of quote batches and closes. Backs demos
// and tests that need deterministic input without a live feed.
type StaticSource struct {
	source  domain.SourceType
	batches []*domain.QuoteBatch
}

// Compile-time interface check.
var _ ingest.BatchSource = (*StaticSource)(nil)

// NewStaticSource creates a source that replays the given quotes as one batch.
func NewStaticSource(source domain.SourceType, quotes []*domain.RawQuote) *StaticSource {
	return &StaticSource{
		source: source,
		batches: []*domain.QuoteBatch{{
			BatchID:    uuid.NewString(),
			SourceType: source,
			Quotes:     quotes,
		}},
	}
}

// NewStaticBatchSource creates a source that replays prebuilt batches.
func NewStaticBatchSource(source domain.SourceType, batches []*domain.QuoteBatch) *StaticSource {
	return &StaticSource{source: source, batches: batches}
}

// Source identifies the marketplace this adapter covers.
func (s *StaticSource) Source() domain.SourceType {
	return s.source
}

// Batches replays the configured batches and closes the channel.
func (s *StaticSource) Batches(ctx context.Context) (<-chan *domain.QuoteBatch, error) {
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
