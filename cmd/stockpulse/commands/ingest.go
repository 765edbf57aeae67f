package commands

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/stockpulse/backend/internal/ingest"
	"github.com/stockpulse/backend/internal/stocks"
	"github.com/stockpulse/backend/pkg/config"
	"github.com/stockpulse/backend/pkg/database"
	"github.com/stockpulse/backend/pkg/logger"
)

// ingestCmd represents the ingest command
var ingestCmd = &cobra.Command{
	Use:   "ingest",
	Short: "Run data ingestion",
	Long: `Fetches external data into the local store.

Subcommands:
  prices  - Company profiles and daily bars from Yahoo Finance
  news    - Headlines with sentiment from Google News RSS

Example:
  go run ./cmd/stockpulse ingest prices
  go run ./cmd/stockpulse ingest prices --limit 10 --offset 20
  go run ./cmd/stockpulse ingest news`,
}

var (
	ingestLimit   int
	ingestOffset  int
	ingestWorkers int

	ingestPricesCmd = &cobra.Command{
		Use:   "prices",
		Short: "Ingest company profiles and daily price bars",
		RunE:  runIngestPrices,
	}

	ingestNewsCmd = &cobra.Command{
		Use:   "news",
		Short: "Ingest and score news headlines for stored stocks",
		RunE:  runIngestNews,
	}
)

func init() {
	rootCmd.AddCommand(ingestCmd)
	ingestCmd.AddCommand(ingestPricesCmd)
	ingestCmd.AddCommand(ingestNewsCmd)

	ingestPricesCmd.Flags().IntVar(&ingestLimit, "limit", 0, "number of tickers to ingest (0 = all)")
	ingestPricesCmd.Flags().IntVar(&ingestOffset, "offset", 0, "universe offset to start from")
	ingestCmd.PersistentFlags().IntVar(&ingestWorkers, "workers", 0, "concurrent workers (0 = INGEST_WORKERS)")
}

func runIngestPrices(cmd *cobra.Command, args []string) error {
	fmt.Println("=== StockPulse Price Ingestion ===")

	col, repo, cleanup, err := initIngestion()
	if err != nil {
		return err
	}
	defer cleanup()

	ctx := context.Background()
	if err := repo.EnsureSchema(ctx); err != nil {
		return fmt.Errorf("ensure schema: %w", err)
	}

	tickers := ingest.Universe(ingestLimit, ingestOffset)
	if len(tickers) == 0 {
		return fmt.Errorf("limit/offset selects no tickers")
	}

	fmt.Printf("Ingesting %d tickers...\n\n", len(tickers))

	start := time.Now()
	results, err := col.IngestPrices(ctx, tickers, ingest.Config{Workers: ingestWorkers})
	if err != nil {
		return fmt.Errorf("ingest prices: %w", err)
	}

	printResults(results, func(r ingest.Result) int { return r.BarCount }, "bars", time.Since(start))
	return nil
}

func runIngestNews(cmd *cobra.Command, args []string) error {
	fmt.Println("=== StockPulse News Ingestion ===")

	col, repo, cleanup, err := initIngestion()
	if err != nil {
		return err
	}
	defer cleanup()

	ctx := context.Background()
	if err := repo.EnsureSchema(ctx); err != nil {
		return fmt.Errorf("ensure schema: %w", err)
	}

	start := time.Now()
	results, err := col.IngestNews(ctx, ingest.Config{Workers: ingestWorkers})
	if err != nil {
		return fmt.Errorf("ingest news: %w", err)
	}

	printResults(results, func(r ingest.Result) int { return r.NewsCount }, "articles", time.Since(start))
	return nil
}

// initIngestion loads config and wires a collector over a live database
func initIngestion() (*ingest.Collector, *stocks.Repository, func(), error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, nil, nil, fmt.Errorf("load config: %w", err)
	}
	if ingestWorkers <= 0 {
		ingestWorkers = cfg.Ingest.Workers
	}

	log := logger.New(cfg)

	db, err := database.New(cfg)
	if err != nil {
		return nil, nil, nil, fmt.Errorf("connect to database: %w", err)
	}

	repo := stocks.NewRepository(db.Pool)
	col := newCollector(cfg, repo, log)

	return col, repo, func() { db.Close() }, nil
}

func printResults(results []ingest.Result, count func(ingest.Result) int, unit string, elapsed time.Duration) {
	succeeded := 0
	total := 0
	for _, r := range results {
		if r.Error != nil {
			fmt.Printf("  ❌ %-15s %v\n", r.Ticker, r.Error)
			continue
		}
		succeeded++
		total += count(r)
		fmt.Printf("  ✅ %-15s %d %s\n", r.Ticker, count(r), unit)
	}

	fmt.Printf("\nDone: %d/%d tickers, %d %s in %s\n", succeeded, len(results), total, unit, elapsed.Round(time.Millisecond))
}
