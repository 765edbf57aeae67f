package health

import (
	"context"
	"time"

	"github.com/stockpulse/backend/internal/stocks"
	"github.com/stockpulse/backend/pkg/redis"
)

// Memo is an optional memoization layer in front of Score. The cache key
// carries the identity of the inputs (ticker, latest bar date, latest news
// timestamp), so a stale entry can never be served: any new bar or headline
// changes the key. With Redis disabled every call falls through to Score,
// preserving the recompute-on-read design.
type Memo struct {
	cache *redis.Cache
	ttl   time.Duration
}

// NewMemo creates a memoization layer backed by the given cache
func NewMemo(cache *redis.Cache) *Memo {
	return &Memo{
		cache: cache,
		ttl:   redis.TTLDaily,
	}
}

// Score computes (or recalls) the assessment for a ticker's current history
func (m *Memo) Score(ctx context.Context, ticker string, bars []stocks.PriceBar, news []stocks.NewsItem) Assessment {
	if m == nil || m.cache == nil {
		return Score(bars, news)
	}

	key := m.key(ticker, bars, news)

	var cached Assessment
	if found, err := m.cache.Get(ctx, key, &cached); err == nil && found {
		return cached
	}

	result := Score(bars, news)
	// Best effort; a failed write just means recomputing next time.
	_ = m.cache.Set(ctx, key, result, m.ttl)
	return result
}

func (m *Memo) key(ticker string, bars []stocks.PriceBar, news []stocks.NewsItem) string {
	latestBar := ""
	if len(bars) > 0 {
		latestBar = bars[0].Date.Format("2006-01-02")
	}
	var latestNews int64
	if len(news) > 0 {
		latestNews = news[0].PublishedAt.Unix()
	}
	return redis.HealthScoreKey(ticker, latestBar, latestNews)
}
