package query

import (
	"context"
	"fmt"

	"github.com/stockpulse/backend/internal/health"
	"github.com/stockpulse/backend/internal/stocks"
	"github.com/stockpulse/backend/pkg/logger"
)

// Projection windows served on read paths.
const (
	scoreWindow     = 200 // bars fed to the scoring engine
	detailWindow    = 30  // bars on the detail/comparison projection
	sparklineWindow = 7   // bars on the dashboard sparkline
	newsWindow      = 5   // headlines on the detail projection
)

// Store is the read contract the query layer needs from the stock store
type Store interface {
	ListStocks(ctx context.Context, search string) ([]stocks.Stock, error)
	GetStock(ctx context.Context, ticker string) (*stocks.Stock, error)
	GetPriceHistory(ctx context.Context, ticker string, limit int) ([]stocks.PriceBar, error)
	GetNewsHistory(ctx context.Context, ticker string, limit int) ([]stocks.NewsItem, error)
}

// Service serves the list, detail and comparison projections. Every call
// scores from a fresh read of the store; nothing is cached in process, so
// concurrent requests share no mutable state.
type Service struct {
	store  Store
	memo   *health.Memo // nil disables memoization
	logger *logger.Logger
}

// NewService creates a new query service. memo may be nil.
func NewService(store Store, memo *health.Memo, log *logger.Logger) *Service {
	return &Service{
		store:  store,
		memo:   memo,
		logger: log,
	}
}

// PricePoint is one bar as serialized on API responses
type PricePoint struct {
	Date   string  `json:"date"`
	Open   float64 `json:"open"`
	Close  float64 `json:"close"`
	Volume int64   `json:"volume"`
}

// StockSummary is the list-view projection of one ticker
type StockSummary struct {
	Ticker       string       `json:"ticker"`
	CompanyName  string       `json:"company_name"`
	Sector       string       `json:"sector"`
	LogoURL      string       `json:"logo_url"`
	CurrentPrice *float64     `json:"current_price"`
	HealthScore  int          `json:"health_score"`
	HealthBadge  string       `json:"health_badge"`
	Sparkline    []PricePoint `json:"sparkline"`
}

// StockDetail extends the summary with recent price and news windows
type StockDetail struct {
	StockSummary
	Prices []PricePoint      `json:"prices"`
	News   []stocks.NewsItem `json:"news"`
}

// Comparison is the two-way detail projection
type Comparison struct {
	Stock1 *StockDetail `json:"stock1"`
	Stock2 *StockDetail `json:"stock2"`
}

// Detail builds the detail projection for one ticker
func (s *Service) Detail(ctx context.Context, ticker string) (*StockDetail, error) {
	stock, err := s.store.GetStock(ctx, ticker)
	if err != nil {
		return nil, err
	}
	return s.buildDetail(ctx, stock)
}

// Compare builds the detail projection for exactly two tickers. Both
// identifiers are resolved before any detail is computed, so an unknown
// second ticker fails without scoring the first.
func (s *Service) Compare(ctx context.Context, ticker1, ticker2 string) (*Comparison, error) {
	stock1, err := s.store.GetStock(ctx, ticker1)
	if err != nil {
		return nil, err
	}
	stock2, err := s.store.GetStock(ctx, ticker2)
	if err != nil {
		return nil, err
	}

	detail1, err := s.buildDetail(ctx, stock1)
	if err != nil {
		return nil, err
	}
	detail2, err := s.buildDetail(ctx, stock2)
	if err != nil {
		return nil, err
	}

	return &Comparison{Stock1: detail1, Stock2: detail2}, nil
}

// buildSummary scores a stock from a fresh read and assembles its list row
func (s *Service) buildSummary(ctx context.Context, stock *stocks.Stock) (StockSummary, []stocks.PriceBar, []stocks.NewsItem, error) {
	bars, err := s.store.GetPriceHistory(ctx, stock.Ticker, scoreWindow)
	if err != nil {
		return StockSummary{}, nil, nil, fmt.Errorf("price history for %s: %w", stock.Ticker, err)
	}
	news, err := s.store.GetNewsHistory(ctx, stock.Ticker, newsWindow)
	if err != nil {
		return StockSummary{}, nil, nil, fmt.Errorf("news history for %s: %w", stock.Ticker, err)
	}

	assessment := s.assess(ctx, stock.Ticker, bars, news)

	summary := StockSummary{
		Ticker:      stock.Ticker,
		CompanyName: stock.CompanyName,
		Sector:      stock.Sector,
		LogoURL:     stock.LogoURL,
		HealthScore: assessment.Score,
		HealthBadge: assessment.Label,
		Sparkline:   sparkline(bars),
	}
	if len(bars) > 0 {
		price := bars[0].Close
		summary.CurrentPrice = &price
	}
	return summary, bars, news, nil
}

func (s *Service) buildDetail(ctx context.Context, stock *stocks.Stock) (*StockDetail, error) {
	summary, bars, news, err := s.buildSummary(ctx, stock)
	if err != nil {
		return nil, err
	}

	window := bars
	if len(window) > detailWindow {
		window = window[:detailWindow]
	}

	detail := &StockDetail{
		StockSummary: summary,
		Prices:       toPricePoints(window),
		News:         news,
	}
	if detail.News == nil {
		detail.News = []stocks.NewsItem{}
	}
	return detail, nil
}

func (s *Service) assess(ctx context.Context, ticker string, bars []stocks.PriceBar, news []stocks.NewsItem) health.Assessment {
	if s.memo != nil {
		return s.memo.Score(ctx, ticker, bars, news)
	}
	return health.Score(bars, news)
}

// sparkline returns the last bars in chronological order for charting
func sparkline(bars []stocks.PriceBar) []PricePoint {
	window := bars
	if len(window) > sparklineWindow {
		window = window[:sparklineWindow]
	}

	points := make([]PricePoint, len(window))
	for i, b := range window {
		// Reverse: stored most-recent-first, charted oldest-first
		points[len(window)-1-i] = toPricePoint(b)
	}
	return points
}

func toPricePoints(bars []stocks.PriceBar) []PricePoint {
	points := make([]PricePoint, len(bars))
	for i, b := range bars {
		points[i] = toPricePoint(b)
	}
	return points
}

func toPricePoint(b stocks.PriceBar) PricePoint {
	return PricePoint{
		Date:   b.Date.Format("2006-01-02"),
		Open:   b.Open,
		Close:  b.Close,
		Volume: b.Volume,
	}
}
