package ingest

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/stockpulse/backend/internal/external/gnews"
	"github.com/stockpulse/backend/internal/sentiment"
	"github.com/stockpulse/backend/internal/stocks"
	"github.com/stockpulse/backend/pkg/logger"
)

// headlinesPerStock caps how many articles are considered per run.
const headlinesPerStock = 5

// Store is the persistence surface the collector writes through.
type Store interface {
	ListStocks(ctx context.Context, search string) ([]stocks.Stock, error)
	UpsertStock(ctx context.Context, s stocks.Stock) error
	LatestBarDate(ctx context.Context, ticker string) (time.Time, error)
	SaveBars(ctx context.Context, bars []stocks.PriceBar) (int, error)
	ExistsNews(ctx context.Context, ticker, headline string) (bool, error)
	SaveNews(ctx context.Context, n stocks.NewsItem) (bool, error)
}

// PriceSource provides company profiles and daily bars.
type PriceSource interface {
	FetchProfile(ctx context.Context, ticker string) (*stocks.Stock, error)
	FetchDailyBars(ctx context.Context, ticker string, start time.Time) ([]stocks.PriceBar, error)
}

// NewsSource provides recent headlines for a search query.
type NewsSource interface {
	FetchHeadlines(ctx context.Context, query string, limit int) ([]gnews.Headline, error)
}

// Collector orchestrates price and news ingestion from external sources
type Collector struct {
	prices       PriceSource
	news         NewsSource
	store        Store
	analyze      sentiment.Analyzer
	historyStart time.Time
	logger       *logger.Logger
}

// Config holds collector configuration
type Config struct {
	Workers int // Number of concurrent workers
}

// NewCollector creates a new Collector instance
func NewCollector(
	prices PriceSource,
	news NewsSource,
	store Store,
	analyze sentiment.Analyzer,
	historyStart time.Time,
	log *logger.Logger,
) *Collector {
	if analyze == nil {
		analyze = sentiment.Neutral()
	}
	return &Collector{
		prices:       prices,
		news:         news,
		store:        store,
		analyze:      analyze,
		historyStart: historyStart,
		logger:       log.WithField("module", "ingest"),
	}
}

// Result represents the outcome of ingestion for a single ticker
type Result struct {
	Ticker    string
	BarCount  int
	NewsCount int
	Error     error
}

// IngestPrices refreshes company profiles and daily bars for the given
// tickers. Each ticker is fetched from its last stored bar date, or
// from the configured history start when nothing is stored yet.
func (c *Collector) IngestPrices(ctx context.Context, tickers []string, cfg Config) ([]Result, error) {
	if cfg.Workers <= 0 {
		cfg.Workers = 1
	}

	c.logger.WithFields(map[string]interface{}{
		"ticker_count": len(tickers),
		"workers":      cfg.Workers,
	}).Info("Starting price ingestion")

	results := make([]Result, 0, len(tickers))
	resultCh := make(chan Result, len(tickers))
	tickerCh := make(chan string, len(tickers))

	var wg sync.WaitGroup
	for i := 0; i < cfg.Workers; i++ {
		wg.Add(1)
		go func(workerID int) {
			defer wg.Done()
			c.priceWorker(ctx, workerID, tickerCh, resultCh)
		}(i)
	}

	for _, ticker := range tickers {
		tickerCh <- ticker
	}
	close(tickerCh)

	go func() {
		wg.Wait()
		close(resultCh)
	}()

	successCount := 0
	failCount := 0
	for result := range resultCh {
		results = append(results, result)
		if result.Error != nil {
			failCount++
		} else {
			successCount++
		}
	}

	c.logger.WithFields(map[string]interface{}{
		"success": successCount,
		"failed":  failCount,
		"total":   len(results),
	}).Info("Price ingestion completed")

	return results, nil
}

// priceWorker processes price ingestion for tickers
func (c *Collector) priceWorker(ctx context.Context, workerID int, tickerCh <-chan string, resultCh chan<- Result) {
	for ticker := range tickerCh {
		select {
		case <-ctx.Done():
			resultCh <- Result{Ticker: ticker, Error: ctx.Err()}
			return
		default:
		}

		count, err := c.ingestTickerPrices(ctx, ticker)
		if err != nil {
			c.logger.WithError(err).WithFields(map[string]interface{}{
				"worker": workerID,
				"ticker": ticker,
			}).Error("Failed to ingest prices")
			resultCh <- Result{Ticker: ticker, Error: err}
			continue
		}

		c.logger.WithFields(map[string]interface{}{
			"worker": workerID,
			"ticker": ticker,
			"count":  count,
		}).Debug("Ingested prices")

		resultCh <- Result{Ticker: ticker, BarCount: count}
	}
}

func (c *Collector) ingestTickerPrices(ctx context.Context, ticker string) (int, error) {
	profile, err := c.prices.FetchProfile(ctx, ticker)
	if err != nil {
		// Descriptive fields are best effort, bars still get fetched
		c.logger.WithError(err).WithField("ticker", ticker).Warn("Profile fetch failed, keeping ticker as name")
		profile = &stocks.Stock{Ticker: ticker, CompanyName: ticker}
	}
	if err := c.store.UpsertStock(ctx, *profile); err != nil {
		return 0, fmt.Errorf("upsert stock: %w", err)
	}

	start := c.historyStart
	latest, err := c.store.LatestBarDate(ctx, ticker)
	if err != nil {
		return 0, fmt.Errorf("latest bar date: %w", err)
	}
	if !latest.IsZero() {
		start = latest
	}

	bars, err := c.prices.FetchDailyBars(ctx, ticker, start)
	if err != nil {
		return 0, fmt.Errorf("fetch bars: %w", err)
	}
	if len(bars) == 0 {
		return 0, nil
	}

	saved, err := c.store.SaveBars(ctx, bars)
	if err != nil {
		return 0, fmt.Errorf("save bars: %w", err)
	}
	return saved, nil
}

// IngestNews fetches recent headlines for every stored stock, scores
// each headline, and appends the articles not seen before. Failures on
// one ticker never stop the others.
func (c *Collector) IngestNews(ctx context.Context, cfg Config) ([]Result, error) {
	if cfg.Workers <= 0 {
		cfg.Workers = 1
	}

	all, err := c.store.ListStocks(ctx, "")
	if err != nil {
		return nil, fmt.Errorf("list stocks: %w", err)
	}
	if len(all) == 0 {
		c.logger.Warn("No stocks stored, run price ingestion first")
		return nil, nil
	}

	c.logger.WithFields(map[string]interface{}{
		"stock_count": len(all),
		"workers":     cfg.Workers,
	}).Info("Starting news ingestion")

	results := make([]Result, 0, len(all))
	resultCh := make(chan Result, len(all))
	stockCh := make(chan stocks.Stock, len(all))

	var wg sync.WaitGroup
	for i := 0; i < cfg.Workers; i++ {
		wg.Add(1)
		go func(workerID int) {
			defer wg.Done()
			c.newsWorker(ctx, workerID, stockCh, resultCh)
		}(i)
	}

	for _, s := range all {
		stockCh <- s
	}
	close(stockCh)

	go func() {
		wg.Wait()
		close(resultCh)
	}()

	successCount := 0
	failCount := 0
	articleCount := 0
	for result := range resultCh {
		results = append(results, result)
		if result.Error != nil {
			failCount++
		} else {
			successCount++
			articleCount += result.NewsCount
		}
	}

	c.logger.WithFields(map[string]interface{}{
		"success":  successCount,
		"failed":   failCount,
		"articles": articleCount,
	}).Info("News ingestion completed")

	return results, nil
}

// newsWorker processes news ingestion for stocks
func (c *Collector) newsWorker(ctx context.Context, workerID int, stockCh <-chan stocks.Stock, resultCh chan<- Result) {
	for s := range stockCh {
		select {
		case <-ctx.Done():
			resultCh <- Result{Ticker: s.Ticker, Error: ctx.Err()}
			return
		default:
		}

		count, err := c.ingestStockNews(ctx, s)
		if err != nil {
			c.logger.WithError(err).WithFields(map[string]interface{}{
				"worker": workerID,
				"ticker": s.Ticker,
			}).Error("Failed to ingest news")
			resultCh <- Result{Ticker: s.Ticker, Error: err}
			continue
		}

		c.logger.WithFields(map[string]interface{}{
			"worker": workerID,
			"ticker": s.Ticker,
			"count":  count,
		}).Debug("Ingested news")

		resultCh <- Result{Ticker: s.Ticker, NewsCount: count}
	}
}

func (c *Collector) ingestStockNews(ctx context.Context, s stocks.Stock) (int, error) {
	query := fmt.Sprintf("%s stock news", s.CompanyName)
	headlines, err := c.news.FetchHeadlines(ctx, query, headlinesPerStock)
	if err != nil {
		return 0, fmt.Errorf("fetch headlines: %w", err)
	}

	count := 0
	for _, h := range headlines {
		exists, err := c.store.ExistsNews(ctx, s.Ticker, h.Title)
		if err != nil {
			return count, fmt.Errorf("check headline: %w", err)
		}
		if exists {
			continue
		}

		publishedAt := h.PublishedAt
		if publishedAt.IsZero() {
			publishedAt = time.Now().UTC()
		}

		saved, err := c.store.SaveNews(ctx, stocks.NewsItem{
			Ticker:      s.Ticker,
			Headline:    h.Title,
			URL:         h.URL,
			Sentiment:   c.analyze(h.Title),
			PublishedAt: publishedAt,
		})
		if err != nil {
			return count, fmt.Errorf("save headline: %w", err)
		}
		if saved {
			count++
		}
	}
	return count, nil
}
