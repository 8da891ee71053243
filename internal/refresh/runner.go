package refresh

import (
	"context"
	"fmt"
	"log"

	"github.com/robfig/cron/v3"

	"resale-price-engine/internal/lifecycle"
	"resale-price-engine/internal/match"
	"resale-price-engine/internal/storage"
)

// Runner periodically rebuilds all derived state from the canonical stores:
// every product's opportunity set and every unsold item's shelf life. Change
// events keep opportunities fresh between runs; the full sweep repairs
// anything a missed or failed event left behind.
type Runner struct {
	products  storage.ProductStore
	matcher   *match.Matcher
	lifecycle *lifecycle.Service
	logger    *log.Logger
	cron      *cron.Cron
}

// NewRunner creates a refresh runner.
func NewRunner(products storage.ProductStore, matcher *match.Matcher, lifecycleSvc *lifecycle.Service, logger *log.Logger) *Runner {
	if logger == nil {
		logger = log.Default()
	}
	return &Runner{
		products:  products,
		matcher:   matcher,
		lifecycle: lifecycleSvc,
		logger:    logger,
	}
}

// RunOnce performs one full recomputation pass.
func (r *Runner) RunOnce(ctx context.Context) error {
	products, err := r.products.ListAll(ctx)
	if err != nil {
		return fmt.Errorf("list products: %w", err)
	}

	failed := 0
	for _, p := range products {
		if err := ctx.Err(); err != nil {
			return err
		}
		if err := r.matcher.RecomputeProduct(ctx, p.ProductID); err != nil {
			r.logger.Printf("refresh: recompute product %s failed: %v", p.ProductID, err)
			failed++
		}
	}

	if r.lifecycle != nil {
		if err := r.lifecycle.RefreshAll(ctx); err != nil {
			return fmt.Errorf("refresh inventory: %w", err)
		}
	}

	r.logger.Printf("refresh: %d products recomputed, %d failed", len(products)-failed, failed)
	if failed > 0 {
		return fmt.Errorf("refresh: %d of %d products failed", failed, len(products))
	}
	return nil
}

// Start schedules recurring full refreshes on the given cron spec
// (e.g. "0 3 * * *" for 3am daily). Returns the stop function.
func (r *Runner) Start(ctx context.Context, spec string) (func(), error) {
	c := cron.New()

	_, err := c.AddFunc(spec, func() {
		if err := r.RunOnce(ctx); err != nil && ctx.Err() == nil {
			r.logger.Printf("scheduled refresh failed: %v", err)
		}
	})
	if err != nil {
		return nil, fmt.Errorf("invalid refresh schedule %q: %w", spec, err)
	}

	c.Start()
	r.cron = c
	r.logger.Printf("scheduled refresh registered: %q", spec)

	return func() { <-c.Stop().Done() }, nil
}
