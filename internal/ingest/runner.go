package ingest

import (
	"context"
	"log"
	"sync"

	"resale-price-engine/internal/domain"
)

// BatchSource delivers quote batches from one external source. Implementations
// live in the feed package; the stub source backs tests and demos.
type BatchSource interface {
	// Source identifies the marketplace this adapter covers.
	Source() domain.SourceType

	// Batches subscribes to the source's batch stream. The channel closes when
	// the source shuts down or the context is cancelled.
	Batches(ctx context.Context) (<-chan *domain.QuoteBatch, error)
}

// Runner drives continuous ingestion: one worker per source, all feeding the
// shared ingestor. Sources are independent; one source failing or closing does
// not stop the others.
type Runner struct {
	ingestor *Ingestor
	sources  []BatchSource
	logger   *log.Logger
}

// NewRunner creates a new ingestion runner.
func NewRunner(ingestor *Ingestor, sources []BatchSource, logger *log.Logger) *Runner {
	if logger == nil {
		logger = log.Default()
	}
	return &Runner{
		ingestor: ingestor,
		sources:  sources,
		logger:   logger,
	}
}

// Run starts a worker per source and blocks until the context is cancelled
// and all workers have drained.
func (r *Runner) Run(ctx context.Context) error {
	r.logger.Printf("ingestion runner starting with %d sources", len(r.sources))

	var wg sync.WaitGroup
	for _, src := range r.sources {
		batches, err := src.Batches(ctx)
		if err != nil {
			r.logger.Printf("source %s failed to subscribe: %v", src.Source(), err)
			continue
		}

		wg.Add(1)
		go func(source domain.SourceType, batches <-chan *domain.QuoteBatch) {
			defer wg.Done()
			r.consume(ctx, source, batches)
		}(src.Source(), batches)
	}

	wg.Wait()
	r.logger.Println("ingestion runner stopped")
	return ctx.Err()
}

// consume processes batches from one source until its channel closes.
func (r *Runner) consume(ctx context.Context, source domain.SourceType, batches <-chan *domain.QuoteBatch) {
	for {
		select {
		case <-ctx.Done():
			return
		case batch, ok := <-batches:
			if !ok {
				r.logger.Printf("source %s closed its batch stream", source)
				return
			}
			if _, err := r.ingestor.ProcessBatch(ctx, batch); err != nil {
				if ctx.Err() != nil {
					return
				}
				r.logger.Printf("source %s: batch %s failed: %v", source, batch.BatchID, err)
			}
		}
	}
}
