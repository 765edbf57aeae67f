package jobs

import (
	"context"
	"fmt"

	"github.com/stockpulse/backend/internal/ingest"
	"github.com/stockpulse/backend/pkg/config"
	"github.com/stockpulse/backend/pkg/logger"
)

// PriceIngestionJob refreshes daily bars for the whole universe after
// the NSE close.
type PriceIngestionJob struct {
	collector *ingest.Collector
	config    *config.Config
	logger    *logger.Logger
}

// NewPriceIngestionJob creates a new price ingestion job
func NewPriceIngestionJob(col *ingest.Collector, cfg *config.Config, log *logger.Logger) *PriceIngestionJob {
	return &PriceIngestionJob{
		collector: col,
		config:    cfg,
		logger:    log,
	}
}

// Name returns the job name
func (j *PriceIngestionJob) Name() string {
	return "price_ingestion"
}

// Schedule returns the cron schedule (weekdays at 6 PM IST)
func (j *PriceIngestionJob) Schedule() string {
	return "0 0 18 * * MON-FRI" // market close plus settlement slack (with seconds)
}

// Run executes the price ingestion
func (j *PriceIngestionJob) Run(ctx context.Context) error {
	j.logger.Info("Starting scheduled price ingestion")

	cfg := ingest.Config{Workers: j.config.Ingest.Workers}
	results, err := j.collector.IngestPrices(ctx, ingest.Universe(0, 0), cfg)
	if err != nil {
		return fmt.Errorf("ingest prices: %w", err)
	}

	failed := 0
	for _, r := range results {
		if r.Error != nil {
			failed++
		}
	}
	if failed == len(results) && len(results) > 0 {
		return fmt.Errorf("price ingestion failed for all %d tickers", failed)
	}

	j.logger.Info("Scheduled price ingestion completed")
	return nil
}

// NewsIngestionJob fetches and scores headlines for every stored stock.
type NewsIngestionJob struct {
	collector *ingest.Collector
	config    *config.Config
	logger    *logger.Logger
}

// NewNewsIngestionJob creates a new news ingestion job
func NewNewsIngestionJob(col *ingest.Collector, cfg *config.Config, log *logger.Logger) *NewsIngestionJob {
	return &NewsIngestionJob{
		collector: col,
		config:    cfg,
		logger:    log,
	}
}

// Name returns the job name
func (j *NewsIngestionJob) Name() string {
	return "news_ingestion"
}

// Schedule returns the cron schedule (every 3 hours)
func (j *NewsIngestionJob) Schedule() string {
	return "0 0 */3 * * *"
}

// Run executes the news ingestion
func (j *NewsIngestionJob) Run(ctx context.Context) error {
	j.logger.Info("Starting scheduled news ingestion")

	cfg := ingest.Config{Workers: j.config.Ingest.Workers}
	if _, err := j.collector.IngestNews(ctx, cfg); err != nil {
		return fmt.Errorf("ingest news: %w", err)
	}

	j.logger.Info("Scheduled news ingestion completed")
	return nil
}
