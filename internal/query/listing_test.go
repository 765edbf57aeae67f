package query

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/stockpulse/backend/internal/stocks"
)

// fakeStore is an in-memory Store for query-layer tests
type fakeStore struct {
	stocks map[string]stocks.Stock
	bars   map[string][]stocks.PriceBar
	news   map[string][]stocks.NewsItem

	// historyCalls records which tickers had price history fetched,
	// used to assert that comparison short-circuits on unknown tickers.
	historyCalls []string
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		stocks: make(map[string]stocks.Stock),
		bars:   make(map[string][]stocks.PriceBar),
		news:   make(map[string][]stocks.NewsItem),
	}
}

func (f *fakeStore) add(s stocks.Stock, bars []stocks.PriceBar, news []stocks.NewsItem) {
	f.stocks[s.Ticker] = s
	f.bars[s.Ticker] = bars
	f.news[s.Ticker] = news
}

func (f *fakeStore) ListStocks(_ context.Context, search string) ([]stocks.Stock, error) {
	var result []stocks.Stock
	needle := strings.ToLower(search)
	for _, s := range f.stocks {
		if search == "" ||
			strings.Contains(strings.ToLower(s.Ticker), needle) ||
			strings.Contains(strings.ToLower(s.CompanyName), needle) {
			result = append(result, s)
		}
	}
	sort.Slice(result, func(i, j int) bool { return result[i].Ticker < result[j].Ticker })
	return result, nil
}

func (f *fakeStore) GetStock(_ context.Context, ticker string) (*stocks.Stock, error) {
	s, ok := f.stocks[ticker]
	if !ok {
		return nil, &stocks.NotFoundError{Ticker: ticker}
	}
	return &s, nil
}

func (f *fakeStore) GetPriceHistory(_ context.Context, ticker string, limit int) ([]stocks.PriceBar, error) {
	f.historyCalls = append(f.historyCalls, ticker)
	bars := f.bars[ticker]
	if limit > 0 && len(bars) > limit {
		bars = bars[:limit]
	}
	return bars, nil
}

func (f *fakeStore) GetNewsHistory(_ context.Context, ticker string, limit int) ([]stocks.NewsItem, error) {
	news := f.news[ticker]
	if limit > 0 && len(news) > limit {
		news = news[:limit]
	}
	return news, nil
}

// barsFor builds n flat bars at the given close, most recent first
func barsFor(ticker string, n int, close float64) []stocks.PriceBar {
	bars := make([]stocks.PriceBar, n)
	base := time.Date(2024, 6, 14, 0, 0, 0, 0, time.UTC)
	for i := range bars {
		bars[i] = stocks.PriceBar{
			Ticker: ticker,
			Date:   base.AddDate(0, 0, -i),
			Open:   close,
			Close:  close,
			Volume: 1000,
		}
	}
	return bars
}

// risingBars builds n bars whose most recent close is the highest, which
// passes the short-term trend gate once n >= 50.
func risingBars(ticker string, n int) []stocks.PriceBar {
	bars := make([]stocks.PriceBar, n)
	base := time.Date(2024, 6, 14, 0, 0, 0, 0, time.UTC)
	for i := range bars {
		bars[i] = stocks.PriceBar{
			Ticker: ticker,
			Date:   base.AddDate(0, 0, -i),
			Open:   float64(1000 - i),
			Close:  float64(1000 - i),
			Volume: 1000,
		}
	}
	return bars
}

func newTestService(store Store) *Service {
	return NewService(store, nil, testLogger())
}

func TestList_Pagination(t *testing.T) {
	store := newFakeStore()
	for i := 0; i < 45; i++ {
		ticker := fmt.Sprintf("S%02d.NS", i)
		store.add(stocks.Stock{Ticker: ticker, CompanyName: "Stock " + ticker}, barsFor(ticker, 5, 10), nil)
	}
	svc := newTestService(store)
	ctx := context.Background()

	page1, err := svc.List(ctx, ListOptions{Page: 1})
	require.NoError(t, err)
	assert.Equal(t, 45, page1.Count)
	assert.Len(t, page1.Results, 20)
	assert.True(t, page1.Next)
	assert.False(t, page1.Previous)

	page3, err := svc.List(ctx, ListOptions{Page: 3})
	require.NoError(t, err)
	assert.Len(t, page3.Results, 5)
	assert.False(t, page3.Next)
	assert.True(t, page3.Previous)

	// Beyond the last page: empty results, not an error
	page4, err := svc.List(ctx, ListOptions{Page: 4})
	require.NoError(t, err)
	assert.Empty(t, page4.Results)
	assert.Equal(t, 45, page4.Count)
}

func TestList_PageSizeOverride(t *testing.T) {
	store := newFakeStore()
	for i := 0; i < 30; i++ {
		ticker := fmt.Sprintf("S%02d.NS", i)
		store.add(stocks.Stock{Ticker: ticker}, barsFor(ticker, 5, 10), nil)
	}
	svc := newTestService(store)

	page, err := svc.List(context.Background(), ListOptions{Page: 1, PageSize: 25})
	require.NoError(t, err)
	assert.Len(t, page.Results, 25)
	assert.True(t, page.Next)
}

func TestList_BadParameters(t *testing.T) {
	svc := newTestService(newFakeStore())
	ctx := context.Background()

	tests := []struct {
		name  string
		opts  ListOptions
		field string
	}{
		{"unknown ordering", ListOptions{Ordering: "volume"}, "ordering"},
		{"negative page", ListOptions{Page: -1}, "page"},
		{"page size above cap", ListOptions{PageSize: MaxPageSize + 1}, "page_size"},
		{"negative page size", ListOptions{PageSize: -5}, "page_size"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.List(ctx, tt.opts)
			require.Error(t, err)

			var bad *BadRequestError
			require.ErrorAs(t, err, &bad)
			assert.Equal(t, tt.field, bad.Field)
		})
	}
}

func TestList_DefaultOrderingIsTickerAscending(t *testing.T) {
	store := newFakeStore()
	for _, ticker := range []string{"CCC", "AAA", "BBB"} {
		store.add(stocks.Stock{Ticker: ticker}, barsFor(ticker, 5, 10), nil)
	}
	svc := newTestService(store)

	page, err := svc.List(context.Background(), ListOptions{})
	require.NoError(t, err)

	got := resultTickers(page)
	assert.Equal(t, []string{"AAA", "BBB", "CCC"}, got)

	// Explicit descending
	page, err = svc.List(context.Background(), ListOptions{Ordering: SortTickerDesc})
	require.NoError(t, err)
	assert.Equal(t, []string{"CCC", "BBB", "AAA"}, resultTickers(page))
}

func TestList_ScoreSortIsStableOnTies(t *testing.T) {
	store := newFakeStore()
	// AAA and CCC tie on the base score; BBB scores higher via the
	// short-term trend gate.
	store.add(stocks.Stock{Ticker: "AAA"}, barsFor("AAA", 5, 10), nil)
	store.add(stocks.Stock{Ticker: "BBB"}, risingBars("BBB", 60), nil)
	store.add(stocks.Stock{Ticker: "CCC"}, barsFor("CCC", 5, 10), nil)
	svc := newTestService(store)
	ctx := context.Background()

	desc, err := svc.List(ctx, ListOptions{Ordering: SortScoreDesc})
	require.NoError(t, err)
	assert.Equal(t, []string{"BBB", "AAA", "CCC"}, resultTickers(desc),
		"ties must keep ticker-ascending relative order")

	asc, err := svc.List(ctx, ListOptions{Ordering: SortScoreAsc})
	require.NoError(t, err)
	assert.Equal(t, []string{"AAA", "CCC", "BBB"}, resultTickers(asc))
}

func TestList_SearchFilter(t *testing.T) {
	store := newFakeStore()
	store.add(stocks.Stock{Ticker: "RELIANCE.NS", CompanyName: "Reliance Industries"}, barsFor("RELIANCE.NS", 5, 10), nil)
	store.add(stocks.Stock{Ticker: "TCS.NS", CompanyName: "Tata Consultancy Services"}, barsFor("TCS.NS", 5, 10), nil)
	store.add(stocks.Stock{Ticker: "INFY.NS", CompanyName: "Infosys"}, barsFor("INFY.NS", 5, 10), nil)
	svc := newTestService(store)

	page, err := svc.List(context.Background(), ListOptions{Search: "tata"})
	require.NoError(t, err)
	assert.Equal(t, []string{"TCS.NS"}, resultTickers(page))
	assert.Equal(t, 1, page.Count)
}

func TestList_SummaryFields(t *testing.T) {
	store := newFakeStore()
	store.add(
		stocks.Stock{Ticker: "INFY.NS", CompanyName: "Infosys", Sector: "Technology"},
		risingBars("INFY.NS", 60),
		[]stocks.NewsItem{{Ticker: "INFY.NS", Headline: "Infosys wins large deal", Sentiment: 0.6, PublishedAt: time.Now()}},
	)
	svc := newTestService(store)

	page, err := svc.List(context.Background(), ListOptions{})
	require.NoError(t, err)
	require.Len(t, page.Results, 1)

	got := page.Results[0]
	assert.Equal(t, "Infosys", got.CompanyName)
	require.NotNil(t, got.CurrentPrice)
	assert.Equal(t, float64(1000), *got.CurrentPrice)
	// 40 base + 20 trend + 10 sentiment (flat volume contributes nothing)
	assert.Equal(t, 70, got.HealthScore)
	assert.Equal(t, "Strong Buy", got.HealthBadge)

	// Sparkline: 7 bars, oldest first
	require.Len(t, got.Sparkline, 7)
	assert.Equal(t, float64(994), got.Sparkline[0].Close)
	assert.Equal(t, float64(1000), got.Sparkline[6].Close)
}

func resultTickers(p *Page) []string {
	out := make([]string, len(p.Results))
	for i, r := range p.Results {
		out[i] = r.Ticker
	}
	return out
}
