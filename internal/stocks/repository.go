package stocks

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Repository is the Postgres-backed store for stocks, price bars and news.
// Price bars and news items are append-only: writes never mutate or delete
// existing rows, so concurrent readers simply observe whatever is committed.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository creates a new stock repository
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

// EnsureSchema creates the tables if they do not exist yet.
// Bars and news carry the uniqueness constraints the ingestion dedup
// relies on; deleting a stock cascades to its bars and news.
func (r *Repository) EnsureSchema(ctx context.Context) error {
	statements := []string{
		`CREATE TABLE IF NOT EXISTS stocks (
			ticker       TEXT PRIMARY KEY,
			company_name TEXT NOT NULL,
			sector       TEXT NOT NULL DEFAULT '',
			logo_url     TEXT NOT NULL DEFAULT ''
		)`,
		`CREATE TABLE IF NOT EXISTS price_bars (
			ticker     TEXT NOT NULL REFERENCES stocks(ticker) ON DELETE CASCADE,
			trade_date DATE NOT NULL,
			open_price NUMERIC(12,2) NOT NULL CHECK (open_price >= 0),
			close_price NUMERIC(12,2) NOT NULL CHECK (close_price >= 0),
			volume     BIGINT NOT NULL CHECK (volume >= 0),
			PRIMARY KEY (ticker, trade_date)
		)`,
		`CREATE TABLE IF NOT EXISTS news_items (
			ticker       TEXT NOT NULL REFERENCES stocks(ticker) ON DELETE CASCADE,
			headline     TEXT NOT NULL,
			url          TEXT NOT NULL DEFAULT '',
			sentiment    DOUBLE PRECISION NOT NULL DEFAULT 0,
			published_at TIMESTAMPTZ NOT NULL DEFAULT now(),
			PRIMARY KEY (ticker, headline)
		)`,
		`CREATE INDEX IF NOT EXISTS idx_price_bars_ticker_date ON price_bars (ticker, trade_date DESC)`,
		`CREATE INDEX IF NOT EXISTS idx_news_items_ticker_published ON news_items (ticker, published_at DESC)`,
	}

	for _, stmt := range statements {
		if _, err := r.pool.Exec(ctx, stmt); err != nil {
			return fmt.Errorf("ensure schema: %w", err)
		}
	}
	return nil
}

// UpsertStock inserts a stock or refreshes its descriptive attributes.
// Identity (ticker) is immutable.
func (r *Repository) UpsertStock(ctx context.Context, s Stock) error {
	query := `
		INSERT INTO stocks (ticker, company_name, sector, logo_url)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (ticker) DO UPDATE SET
			company_name = EXCLUDED.company_name,
			sector = EXCLUDED.sector,
			logo_url = EXCLUDED.logo_url
	`

	_, err := r.pool.Exec(ctx, query, s.Ticker, s.CompanyName, s.Sector, s.LogoURL)
	if err != nil {
		return fmt.Errorf("upsert stock %s: %w", s.Ticker, err)
	}
	return nil
}

// GetStock retrieves a single stock by ticker
func (r *Repository) GetStock(ctx context.Context, ticker string) (*Stock, error) {
	query := `
		SELECT ticker, company_name, sector, logo_url
		FROM stocks
		WHERE ticker = $1
	`

	var s Stock
	err := r.pool.QueryRow(ctx, query, ticker).Scan(&s.Ticker, &s.CompanyName, &s.Sector, &s.LogoURL)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, &NotFoundError{Ticker: ticker}
	}
	if err != nil {
		return nil, fmt.Errorf("get stock %s: %w", ticker, err)
	}
	return &s, nil
}

// ListStocks returns all stocks ordered by ticker ascending, optionally
// filtered by a case-insensitive substring match on ticker or company name.
func (r *Repository) ListStocks(ctx context.Context, search string) ([]Stock, error) {
	query := `
		SELECT ticker, company_name, sector, logo_url
		FROM stocks
		WHERE ($1 = '' OR ticker ILIKE $2 OR company_name ILIKE $2)
		ORDER BY ticker ASC
	`

	pattern := "%" + escapeLike(search) + "%"
	rows, err := r.pool.Query(ctx, query, search, pattern)
	if err != nil {
		return nil, fmt.Errorf("list stocks: %w", err)
	}
	defer rows.Close()

	var result []Stock
	for rows.Next() {
		var s Stock
		if err := rows.Scan(&s.Ticker, &s.CompanyName, &s.Sector, &s.LogoURL); err != nil {
			return nil, err
		}
		result = append(result, s)
	}
	return result, rows.Err()
}

// DeleteStock removes a stock and, via cascade, its bars and news
func (r *Repository) DeleteStock(ctx context.Context, ticker string) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM stocks WHERE ticker = $1`, ticker)
	if err != nil {
		return fmt.Errorf("delete stock %s: %w", ticker, err)
	}
	if tag.RowsAffected() == 0 {
		return &NotFoundError{Ticker: ticker}
	}
	return nil
}

// GetPriceHistory returns bars for a ticker ordered by date descending.
// limit <= 0 returns the full history.
func (r *Repository) GetPriceHistory(ctx context.Context, ticker string, limit int) ([]PriceBar, error) {
	query := `
		SELECT ticker, trade_date, open_price, close_price, volume
		FROM price_bars
		WHERE ticker = $1
		ORDER BY trade_date DESC
	`
	args := []interface{}{ticker}
	if limit > 0 {
		query += ` LIMIT $2`
		args = append(args, limit)
	}

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("get price history %s: %w", ticker, err)
	}
	defer rows.Close()

	var bars []PriceBar
	for rows.Next() {
		var b PriceBar
		if err := rows.Scan(&b.Ticker, &b.Date, &b.Open, &b.Close, &b.Volume); err != nil {
			return nil, err
		}
		bars = append(bars, b)
	}
	return bars, rows.Err()
}

// LatestBarDate returns the most recent bar date for a ticker, or a zero
// time when no bars are stored.
func (r *Repository) LatestBarDate(ctx context.Context, ticker string) (time.Time, error) {
	query := `
		SELECT trade_date
		FROM price_bars
		WHERE ticker = $1
		ORDER BY trade_date DESC
		LIMIT 1
	`

	var date time.Time
	err := r.pool.QueryRow(ctx, query, ticker).Scan(&date)
	if errors.Is(err, pgx.ErrNoRows) {
		return time.Time{}, nil
	}
	if err != nil {
		return time.Time{}, fmt.Errorf("latest bar date %s: %w", ticker, err)
	}
	return date, nil
}

// ExistsBar reports whether a bar is already stored for (ticker, date)
func (r *Repository) ExistsBar(ctx context.Context, ticker string, date time.Time) (bool, error) {
	var exists bool
	err := r.pool.QueryRow(ctx,
		`SELECT EXISTS (SELECT 1 FROM price_bars WHERE ticker = $1 AND trade_date = $2)`,
		ticker, date,
	).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("exists bar %s: %w", ticker, err)
	}
	return exists, nil
}

// SaveBars appends bars, skipping any (ticker, date) pair already present.
// Existing rows are never updated.
func (r *Repository) SaveBars(ctx context.Context, bars []PriceBar) (int, error) {
	if len(bars) == 0 {
		return 0, nil
	}

	query := `
		INSERT INTO price_bars (ticker, trade_date, open_price, close_price, volume)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (ticker, trade_date) DO NOTHING
	`

	inserted := 0
	for _, b := range bars {
		tag, err := r.pool.Exec(ctx, query, b.Ticker, b.Date, b.Open, b.Close, b.Volume)
		if err != nil {
			return inserted, fmt.Errorf("save bar %s %s: %w", b.Ticker, b.Date.Format("2006-01-02"), err)
		}
		inserted += int(tag.RowsAffected())
	}
	return inserted, nil
}

// GetNewsHistory returns news for a ticker ordered by published_at
// descending. limit <= 0 returns the full history.
func (r *Repository) GetNewsHistory(ctx context.Context, ticker string, limit int) ([]NewsItem, error) {
	query := `
		SELECT ticker, headline, url, sentiment, published_at
		FROM news_items
		WHERE ticker = $1
		ORDER BY published_at DESC
	`
	args := []interface{}{ticker}
	if limit > 0 {
		query += ` LIMIT $2`
		args = append(args, limit)
	}

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("get news history %s: %w", ticker, err)
	}
	defer rows.Close()

	var items []NewsItem
	for rows.Next() {
		var n NewsItem
		if err := rows.Scan(&n.Ticker, &n.Headline, &n.URL, &n.Sentiment, &n.PublishedAt); err != nil {
			return nil, err
		}
		items = append(items, n)
	}
	return items, rows.Err()
}

// LatestNewsAt returns the most recent news timestamp for a ticker, or a
// zero time when no news is stored.
func (r *Repository) LatestNewsAt(ctx context.Context, ticker string) (time.Time, error) {
	query := `
		SELECT published_at
		FROM news_items
		WHERE ticker = $1
		ORDER BY published_at DESC
		LIMIT 1
	`

	var at time.Time
	err := r.pool.QueryRow(ctx, query, ticker).Scan(&at)
	if errors.Is(err, pgx.ErrNoRows) {
		return time.Time{}, nil
	}
	if err != nil {
		return time.Time{}, fmt.Errorf("latest news at %s: %w", ticker, err)
	}
	return at, nil
}

// ExistsNews reports whether a headline is already stored for a ticker
func (r *Repository) ExistsNews(ctx context.Context, ticker, headline string) (bool, error) {
	var exists bool
	err := r.pool.QueryRow(ctx,
		`SELECT EXISTS (SELECT 1 FROM news_items WHERE ticker = $1 AND headline = $2)`,
		ticker, headline,
	).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("exists news %s: %w", ticker, err)
	}
	return exists, nil
}

// SaveNews appends a news item unless the (ticker, headline) pair already
// exists. Returns whether a row was inserted.
func (r *Repository) SaveNews(ctx context.Context, n NewsItem) (bool, error) {
	query := `
		INSERT INTO news_items (ticker, headline, url, sentiment, published_at)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (ticker, headline) DO NOTHING
	`

	tag, err := r.pool.Exec(ctx, query, n.Ticker, n.Headline, n.URL, n.Sentiment, n.PublishedAt)
	if err != nil {
		return false, fmt.Errorf("save news %s: %w", n.Ticker, err)
	}
	return tag.RowsAffected() > 0, nil
}

// escapeLike escapes LIKE metacharacters in user-supplied search terms
func escapeLike(s string) string {
	s = strings.ReplaceAll(s, `\`, `\\`)
	s = strings.ReplaceAll(s, `%`, `\%`)
	s = strings.ReplaceAll(s, `_`, `\_`)
	return s
}
