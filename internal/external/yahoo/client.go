// Package yahoo fetches daily price bars and company profiles from the
// Yahoo Finance public endpoints.
package yahoo

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"sort"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"

	"github.com/stockpulse/backend/internal/stocks"
	"github.com/stockpulse/backend/pkg/httputil"
	"github.com/stockpulse/backend/pkg/logger"
)

const userAgent = "Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) AppleWebKit/537.36"

// Client handles communication with Yahoo Finance
type Client struct {
	httpClient *httputil.Client
	logger     *logger.Logger
	baseURL    string
	quoteURL   string
}

// NewClient creates a new Yahoo Finance client
func NewClient(httpClient *httputil.Client, log *logger.Logger, baseURL, quoteURL string) *Client {
	if baseURL == "" {
		baseURL = "https://query1.finance.yahoo.com"
	}
	if quoteURL == "" {
		quoteURL = "https://finance.yahoo.com/quote"
	}
	return &Client{
		httpClient: httpClient,
		logger:     log,
		baseURL:    baseURL,
		quoteURL:   quoteURL,
	}
}

// chartResponse is the shape of the Yahoo chart API response
type chartResponse struct {
	Chart struct {
		Result []struct {
			Meta struct {
				Symbol   string `json:"symbol"`
				LongName string `json:"longName"`
			} `json:"meta"`
			Timestamp  []int64 `json:"timestamp"`
			Indicators struct {
				Quote []struct {
					Open   []interface{} `json:"open"`
					Close  []interface{} `json:"close"`
					Volume []interface{} `json:"volume"`
				} `json:"quote"`
			} `json:"indicators"`
		} `json:"result"`
		Error *struct {
			Code        string `json:"code"`
			Description string `json:"description"`
		} `json:"error"`
	} `json:"chart"`
}

// FetchDailyBars fetches daily bars for a ticker from start (inclusive)
// up to now. Bars come back ordered date descending, matching the store
// contract.
func (c *Client) FetchDailyBars(ctx context.Context, ticker string, start time.Time) ([]stocks.PriceBar, error) {
	endpoint := fmt.Sprintf("%s/v8/finance/chart/%s?period1=%d&period2=%d&interval=1d",
		c.baseURL, url.PathEscape(ticker), start.Unix(), time.Now().Unix())

	body, err := c.fetch(ctx, endpoint)
	if err != nil {
		return nil, err
	}

	bars, _, err := parseChart(ticker, body)
	if err != nil {
		return nil, err
	}

	c.logger.WithFields(map[string]interface{}{
		"ticker": ticker,
		"count":  len(bars),
	}).Debug("Fetched daily bars")
	return bars, nil
}

// FetchCompanyName fetches the long company name from the chart metadata.
// Returns the ticker itself when Yahoo carries no name.
func (c *Client) FetchCompanyName(ctx context.Context, ticker string) (string, error) {
	endpoint := fmt.Sprintf("%s/v8/finance/chart/%s?interval=1d&range=1d",
		c.baseURL, url.PathEscape(ticker))

	body, err := c.fetch(ctx, endpoint)
	if err != nil {
		return "", err
	}

	_, name, err := parseChart(ticker, body)
	if err != nil {
		return "", err
	}
	if name == "" {
		name = ticker
	}
	return name, nil
}

// FetchProfile scrapes the quote profile page for descriptive attributes
// (company name, sector). Missing fields degrade to empty strings rather
// than failing the fetch.
func (c *Client) FetchProfile(ctx context.Context, ticker string) (*stocks.Stock, error) {
	endpoint := fmt.Sprintf("%s/%s/profile", c.quoteURL, url.PathEscape(ticker))

	body, err := c.fetch(ctx, endpoint)
	if err != nil {
		return nil, err
	}

	profile := parseProfile(ticker, string(body))
	if profile.CompanyName == ticker {
		// Scrape found no name; the chart metadata usually carries one
		if name, err := c.FetchCompanyName(ctx, ticker); err == nil {
			profile.CompanyName = name
		}
	}
	return profile, nil
}

// fetch performs a GET with browser-like headers and reads the body
func (c *Client) fetch(ctx context.Context, endpoint string) ([]byte, error) {
	resp, err := c.httpClient.GetWithHeaders(ctx, endpoint, map[string]string{
		"User-Agent": userAgent,
		"Accept":     "*/*",
	})
	if err != nil {
		return nil, fmt.Errorf("HTTP request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("unexpected status code: %d", resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response body: %w", err)
	}
	return body, nil
}

// parseChart decodes a chart API response into bars (date descending)
// and the long company name from the metadata.
func parseChart(ticker string, body []byte) ([]stocks.PriceBar, string, error) {
	var chart chartResponse
	if err := json.Unmarshal(body, &chart); err != nil {
		return nil, "", fmt.Errorf("decode chart response: %w", err)
	}
	if chart.Chart.Error != nil {
		return nil, "", fmt.Errorf("chart API error: %s", chart.Chart.Error.Description)
	}
	if len(chart.Chart.Result) == 0 {
		return nil, "", fmt.Errorf("chart API returned no result for %s", ticker)
	}

	result := chart.Chart.Result[0]
	name := result.Meta.LongName
	if len(result.Indicators.Quote) == 0 {
		return nil, name, nil
	}

	quote := result.Indicators.Quote[0]
	var bars []stocks.PriceBar
	for i, ts := range result.Timestamp {
		open := numAt(quote.Open, i)
		closePrice := numAt(quote.Close, i)
		if closePrice == 0 {
			// Null slot: market holiday or missing data, skip the bar
			continue
		}

		bars = append(bars, stocks.PriceBar{
			Ticker: ticker,
			Date:   time.Unix(ts, 0).UTC().Truncate(24 * time.Hour),
			Open:   open,
			Close:  closePrice,
			Volume: int64(numAt(quote.Volume, i)),
		})
	}

	// Most recent first
	sort.Slice(bars, func(i, j int) bool {
		return bars[i].Date.After(bars[j].Date)
	})
	return bars, name, nil
}

// numAt reads a possibly-null numeric slot from a quote array
func numAt(values []interface{}, i int) float64 {
	if i >= len(values) || values[i] == nil {
		return 0
	}
	if n, ok := values[i].(float64); ok {
		return n
	}
	return 0
}

// parseProfile extracts name and sector from the profile page HTML
func parseProfile(ticker, html string) *stocks.Stock {
	profile := &stocks.Stock{Ticker: ticker, CompanyName: ticker}

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return profile
	}

	if name := strings.TrimSpace(doc.Find("h1").First().Text()); name != "" {
		// The page title reads "Company Name (TICKER)"
		if idx := strings.LastIndex(name, "("); idx > 0 {
			name = strings.TrimSpace(name[:idx])
		}
		profile.CompanyName = name
	}

	// Sector appears as a link into the sectors tree
	doc.Find("a[href*='/sectors/']").EachWithBreak(func(_ int, sel *goquery.Selection) bool {
		if text := strings.TrimSpace(sel.Text()); text != "" {
			profile.Sector = text
			return false
		}
		return true
	})

	return profile
}
