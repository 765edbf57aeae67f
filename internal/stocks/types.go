package stocks

import (
	"errors"
	"fmt"
	"time"
)

// Stock represents one ticker in the tracked universe.
// Identity is the ticker symbol; descriptive attributes are refreshed
// by ingestion on every run.
type Stock struct {
	Ticker      string `json:"ticker"`
	CompanyName string `json:"company_name"`
	Sector      string `json:"sector"`
	LogoURL     string `json:"logo_url"`
}

// PriceBar is one daily OHLC bar. Bars are immutable once written and
// unique per (ticker, date).
type PriceBar struct {
	Ticker string    `json:"-"`
	Date   time.Time `json:"date"`
	Open   float64   `json:"open"`
	Close  float64   `json:"close"`
	Volume int64     `json:"volume"`
}

// NewsItem is one scored headline. Items are immutable once written and
// deduplicated per (ticker, headline).
type NewsItem struct {
	Ticker      string    `json:"-"`
	Headline    string    `json:"headline"`
	URL         string    `json:"url"`
	Sentiment   float64   `json:"sentiment_score"`
	PublishedAt time.Time `json:"published_at"`
}

// NotFoundError reports a ticker that does not resolve to a stored Stock.
type NotFoundError struct {
	Ticker string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("stock %q not found", e.Ticker)
}

// IsNotFound reports whether err wraps a NotFoundError.
func IsNotFound(err error) bool {
	var nf *NotFoundError
	return errors.As(err, &nf)
}
