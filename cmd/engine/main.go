package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"sync"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"resale-price-engine/internal/catalog"
	"resale-price-engine/internal/domain"
	"resale-price-engine/internal/feed"
	"resale-price-engine/internal/ingest"
	"resale-price-engine/internal/lifecycle"
	"resale-price-engine/internal/match"
	"resale-price-engine/internal/observability"
	"resale-price-engine/internal/refresh"
	"resale-price-engine/internal/storage"
	chstore "resale-price-engine/internal/storage/clickhouse"
	"resale-price-engine/internal/storage/memory"
	"resale-price-engine/internal/storage/migrations"
	pgstore "resale-price-engine/internal/storage/postgres"
)

func main() {
	// .env is optional; real deployments set the environment directly.
	_ = godotenv.Load()

	postgresDSN := flag.String("postgres-dsn", os.Getenv("POSTGRES_DSN"), "PostgreSQL connection string")
	clickhouseDSN := flag.String("clickhouse-dsn", os.Getenv("CLICKHOUSE_DSN"), "ClickHouse connection string for price history (empty keeps history in PostgreSQL)")
	useMemory := flag.Bool("use-memory", false, "Use in-memory storage instead of databases")
	catalogPath := flag.String("catalog", os.Getenv("CATALOG_FILE"), "Path to a JSON product catalog to seed on startup")
	sources := flag.String("sources", os.Getenv("FEED_SOURCES"), "Comma-separated source=ws-endpoint pairs, e.g. stockx=wss://host/feed,goat=wss://host/feed")
	eventBuffer := flag.Int("event-buffer", 256, "Change event channel capacity")
	refreshSchedule := flag.String("refresh-schedule", "0 3 * * *", "Cron schedule for the full recompute pass (empty to disable)")
	metricsAddr := flag.String("metrics-addr", ":9090", "Prometheus metrics HTTP address (empty to disable)")

	flag.Parse()

	logger := log.New(os.Stdout, "[engine] ", log.LstdFlags|log.Lshortfile)

	if *metricsAddr != "" {
		go func() {
			mux := http.NewServeMux()
			mux.Handle("/metrics", observability.Handler())
			mux.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(http.StatusOK)
				w.Write([]byte("ok"))
			})
			logger.Printf("Metrics server listening on %s", *metricsAddr)
			if err := http.ListenAndServe(*metricsAddr, mux); err != nil {
				logger.Printf("Metrics server error: %v", err)
			}
		}()
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// First signal cancels the context; a second one, or a stalled drain,
	// forces the exit.
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	done := make(chan error, 1)
	go func() {
		done <- run(ctx, logger, *postgresDSN, *clickhouseDSN, *catalogPath, *sources, *refreshSchedule, *eventBuffer, *useMemory)
	}()

	select {
	case sig := <-sigCh:
		logger.Printf("Received signal %v, shutting down...", sig)
		cancel()
		select {
		case <-done:
		case <-sigCh:
			logger.Println("Second signal, forcing exit")
			os.Exit(1)
		case <-time.After(30 * time.Second):
			logger.Println("Shutdown timeout, forcing exit")
			os.Exit(1)
		}
	case err := <-done:
		if err != nil && err != context.Canceled {
			logger.Fatalf("Error: %v", err)
		}
	}

	logger.Println("Shutdown complete")
}

// run wires stores, feeds, the ingestor and the matcher, then blocks until
// the context is cancelled.
func run(ctx context.Context, logger *log.Logger, postgresDSN, clickhouseDSN, catalogPath, sources, refreshSchedule string, eventBuffer int, useMemory bool) error {
	if !useMemory && postgresDSN == "" {
		return fmt.Errorf("--postgres-dsn is required (use --use-memory for in-memory storage)")
	}

	var (
		recordStore    storage.PriceRecordStore  = memory.NewPriceRecordStore()
		historyStore   storage.PriceHistoryStore = memory.NewPriceHistoryStore()
		oppStore       storage.OpportunityStore  = memory.NewOpportunityStore()
		inventoryStore storage.InventoryStore    = memory.NewInventoryStore()
		productStore   storage.ProductStore
	)
	memProducts := memory.NewProductStore()
	productStore = memProducts

	var pgProducts *pgstore.ProductStore
	if !useMemory {
		pool, err := pgstore.NewPool(ctx, postgresDSN)
		if err != nil {
			return fmt.Errorf("connect to postgres: %w", err)
		}
		defer pool.Close()

		if err := migrations.RunPostgresMigrations(ctx, pool); err != nil {
			return fmt.Errorf("apply postgres migrations: %w", err)
		}

		recordStore = pgstore.NewPriceRecordStore(pool)
		historyStore = pgstore.NewPriceHistoryStore(pool)
		oppStore = pgstore.NewOpportunityStore(pool)
		inventoryStore = pgstore.NewInventoryStore(pool)
		pgProducts = pgstore.NewProductStore(pool)
		productStore = pgProducts

		if clickhouseDSN != "" {
			conn, err := chstore.NewConn(ctx, clickhouseDSN)
			if err != nil {
				return fmt.Errorf("connect to clickhouse: %w", err)
			}
			defer conn.Close()

			if err := migrations.RunClickhouseMigrations(ctx, conn); err != nil {
				return fmt.Errorf("apply clickhouse migrations: %w", err)
			}
			historyStore = chstore.NewPriceHistoryStore(conn)
		}
	}

	if catalogPath != "" {
		products, err := loadCatalog(catalogPath)
		if err != nil {
			return fmt.Errorf("load catalog: %w", err)
		}
		if useMemory {
			err = memProducts.Seed(products...)
		} else {
			err = pgProducts.Seed(ctx, products...)
		}
		if err != nil {
			return fmt.Errorf("seed catalog: %w", err)
		}
		logger.Printf("Seeded %d catalog products from %s", len(products), catalogPath)
	}

	feedSources, err := parseSources(sources, logger)
	if err != nil {
		return err
	}
	if len(feedSources) == 0 {
		return fmt.Errorf("--sources is required, e.g. stockx=wss://host/feed")
	}

	events := make(chan domain.PriceRecordChanged, eventBuffer)

	ingestor := ingest.NewIngestor(ingest.IngestorOptions{
		Records:  recordStore,
		History:  historyStore,
		Resolver: catalog.NewResolver(productStore),
		Events:   events,
		Logger:   logger,
	})
	runner := ingest.NewRunner(ingestor, feedSources, logger)

	matcher := match.NewMatcher(match.MatcherOptions{
		Records: recordStore,
		Opps:    oppStore,
		Logger:  logger,
	})

	lifecycleSvc := lifecycle.NewService(lifecycle.ServiceOptions{
		Store:  inventoryStore,
		Logger: logger,
	})

	if refreshSchedule != "" {
		refresher := refresh.NewRunner(productStore, matcher, lifecycleSvc, logger)
		stop, err := refresher.Start(ctx, refreshSchedule)
		if err != nil {
			return fmt.Errorf("start refresh schedule: %w", err)
		}
		defer stop()
	}

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		if err := matcher.Run(ctx, events); err != nil && err != context.Canceled {
			logger.Printf("Matcher stopped: %v", err)
		}
	}()

	logger.Printf("Starting ingestion with %d sources", len(feedSources))
	runErr := runner.Run(ctx)

	// All producers are stopped; closing the channel lets the matcher drain
	// buffered events before exiting.
	close(events)
	wg.Wait()

	return runErr
}

// parseSources turns "stockx=wss://a,goat=wss://b" into feed adapters.
func parseSources(spec string, logger *log.Logger) ([]ingest.BatchSource, error) {
	if strings.TrimSpace(spec) == "" {
		return nil, nil
	}

	var list []ingest.BatchSource
	for _, pair := range strings.Split(spec, ",") {
		pair = strings.TrimSpace(pair)
		if pair == "" {
			continue
		}
		name, endpoint, ok := strings.Cut(pair, "=")
		if !ok || name == "" || endpoint == "" {
			return nil, fmt.Errorf("invalid source %q, want name=ws-endpoint", pair)
		}
		list = append(list, feed.NewWSSource(domain.SourceType(strings.ToLower(strings.TrimSpace(name))), strings.TrimSpace(endpoint), nil, logger))
	}
	return list, nil
}

// loadCatalog reads a JSON array of products from disk.
func loadCatalog(path string) ([]*domain.Product, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var entries []struct {
		ProductID string `json:"product_id"`
		SKU       string `json:"sku"`
		EAN       string `json:"ean"`
		Name      string `json:"name"`
		Brand     string `json:"brand"`
	}
	if err := json.Unmarshal(data, &entries); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}

	products := make([]*domain.Product, 0, len(entries))
	for _, e := range entries {
		products = append(products, &domain.Product{
			ProductID: e.ProductID,
			SKU:       e.SKU,
			EAN:       e.EAN,
			Name:      e.Name,
			Brand:     e.Brand,
		})
	}
	return products, nil
}
