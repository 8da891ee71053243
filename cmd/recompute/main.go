package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"resale-price-engine/internal/lifecycle"
	"resale-price-engine/internal/match"
	"resale-price-engine/internal/refresh"
	"resale-price-engine/internal/storage/migrations"
	pgstore "resale-price-engine/internal/storage/postgres"
)

func main() {
	_ = godotenv.Load()

	postgresDSN := flag.String("postgres-dsn", os.Getenv("POSTGRES_DSN"), "PostgreSQL connection string")
	schedule := flag.String("schedule", "", "Cron schedule to keep recomputing on (empty runs once and exits)")

	flag.Parse()

	logger := log.New(os.Stdout, "[recompute] ", log.LstdFlags|log.Lshortfile)

	if *postgresDSN == "" {
		logger.Fatal("--postgres-dsn is required")
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	done := make(chan error, 1)
	go func() {
		done <- run(ctx, logger, *postgresDSN, *schedule)
	}()

	select {
	case sig := <-sigCh:
		logger.Printf("Received signal %v, shutting down...", sig)
		cancel()
		select {
		case <-done:
		case <-time.After(30 * time.Second):
			logger.Println("Shutdown timeout, forcing exit")
			os.Exit(1)
		}
	case err := <-done:
		if err != nil && err != context.Canceled {
			logger.Fatalf("Error: %v", err)
		}
	}

	logger.Println("Done")
}

func run(ctx context.Context, logger *log.Logger, postgresDSN, schedule string) error {
	pool, err := pgstore.NewPool(ctx, postgresDSN)
	if err != nil {
		return fmt.Errorf("connect to postgres: %w", err)
	}
	defer pool.Close()

	if err := migrations.RunPostgresMigrations(ctx, pool); err != nil {
		return fmt.Errorf("apply postgres migrations: %w", err)
	}

	matcher := match.NewMatcher(match.MatcherOptions{
		Records: pgstore.NewPriceRecordStore(pool),
		Opps:    pgstore.NewOpportunityStore(pool),
		Logger:  logger,
	})
	lifecycleSvc := lifecycle.NewService(lifecycle.ServiceOptions{
		Store:  pgstore.NewInventoryStore(pool),
		Logger: logger,
	})
	runner := refresh.NewRunner(pgstore.NewProductStore(pool), matcher, lifecycleSvc, logger)

	if schedule == "" {
		return runner.RunOnce(ctx)
	}

	stop, err := runner.Start(ctx, schedule)
	if err != nil {
		return fmt.Errorf("start schedule: %w", err)
	}
	defer stop()

	logger.Printf("Recompute scheduled on %q", schedule)
	<-ctx.Done()
	return ctx.Err()
}
