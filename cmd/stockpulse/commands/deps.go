package commands

import (
	"time"

	"github.com/stockpulse/backend/internal/external/gnews"
	"github.com/stockpulse/backend/internal/external/yahoo"
	"github.com/stockpulse/backend/internal/ingest"
	"github.com/stockpulse/backend/internal/sentiment"
	"github.com/stockpulse/backend/internal/stocks"
	"github.com/stockpulse/backend/pkg/config"
	"github.com/stockpulse/backend/pkg/httputil"
	"github.com/stockpulse/backend/pkg/logger"
	"github.com/stockpulse/backend/pkg/redis"
)

// newCollector wires the external clients and sentiment analyzer into
// an ingestion collector. Each upstream gets its own rate-limited HTTP
// client; with Redis enabled the limit is shared across processes,
// otherwise it is an in-process token bucket.
func newCollector(cfg *config.Config, repo *stocks.Repository, log *logger.Logger) *ingest.Collector {
	yahooHTTP := httputil.New(cfg, log).WithLocalRateLimit(cfg.Yahoo.RequestsPerSec, 1)
	newsHTTP := httputil.New(cfg, log).WithLocalRateLimit(cfg.News.RequestsPerSec, 1)

	if redisClient, err := redis.New(cfg); err == nil && redisClient.Enabled() {
		limiter := redis.NewRateLimiter(redisClient, "stockpulse")
		yahooHTTP = yahooHTTP.WithRateLimiter(limiter, redis.YahooRateLimit)
		newsHTTP = newsHTTP.WithRateLimiter(limiter, redis.NewsRateLimit)
	}

	yahooClient := yahoo.NewClient(yahooHTTP, log, cfg.Yahoo.BaseURL, cfg.Yahoo.QuoteURL)
	newsClient := gnews.NewClient(newsHTTP, log, cfg.News.RSSBaseURL, cfg.News.Region)

	// Already validated by config.Load
	historyStart, _ := time.Parse("2006-01-02", cfg.Ingest.HistoryStart)

	return ingest.NewCollector(yahooClient, newsClient, repo, sentiment.Lexicon(), historyStart, log)
}
