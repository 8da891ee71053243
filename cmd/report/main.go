package main

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/joho/godotenv"

	"resale-price-engine/internal/reporting"
	pgstore "resale-price-engine/internal/storage/postgres"
)

func main() {
	_ = godotenv.Load()

	postgresDSN := flag.String("postgres-dsn", os.Getenv("POSTGRES_DSN"), "PostgreSQL connection string")
	format := flag.String("format", "markdown", "Output format: markdown or csv")
	limit := flag.Int("limit", 50, "Maximum number of opportunities to include")
	output := flag.String("output", "", "Output file (empty writes to stdout)")
	skipInventory := flag.Bool("skip-inventory", false, "Leave the inventory section out of the report")

	flag.Parse()

	if *postgresDSN == "" {
		fmt.Fprintln(os.Stderr, "Error: --postgres-dsn is required")
		os.Exit(1)
	}
	if *format != "markdown" && *format != "csv" {
		fmt.Fprintf(os.Stderr, "Error: unknown format %q, want markdown or csv\n", *format)
		os.Exit(1)
	}

	ctx := context.Background()

	pool, err := pgstore.NewPool(ctx, *postgresDSN)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error connecting to postgres: %v\n", err)
		os.Exit(1)
	}
	defer pool.Close()

	gen := newGenerator(pool, *skipInventory)
	report, err := gen.Generate(ctx, *limit)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error generating report: %v\n", err)
		os.Exit(1)
	}

	var rendered string
	if *format == "csv" {
		rendered = reporting.RenderCSV(report)
	} else {
		rendered = reporting.RenderMarkdown(report)
	}

	if *output == "" {
		fmt.Print(rendered)
		return
	}
	if err := os.WriteFile(*output, []byte(rendered), 0o644); err != nil {
		fmt.Fprintf(os.Stderr, "Error writing %s: %v\n", *output, err)
		os.Exit(1)
	}
	fmt.Fprintf(os.Stderr, "Report written to %s\n", *output)
}

// newGenerator keeps the nil inventory case explicit: a typed nil pointer
// must not end up behind the store interface.
func newGenerator(pool *pgstore.Pool, skipInventory bool) *reporting.Generator {
	products := pgstore.NewProductStore(pool)
	opps := pgstore.NewOpportunityStore(pool)
	if skipInventory {
		return reporting.NewGenerator(products, opps, nil)
	}
	return reporting.NewGenerator(products, opps, pgstore.NewInventoryStore(pool))
}
