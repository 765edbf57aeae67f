package query

import (
	"context"
	"fmt"
	"sort"
)

// Pagination bounds, matching the read API contract.
const (
	DefaultPageSize = 20
	MaxPageSize     = 100
)

// Sort keys accepted by List. The empty string falls back to ticker
// ascending.
const (
	SortTickerAsc  = "ticker"
	SortTickerDesc = "-ticker"
	SortScoreAsc   = "health_score"
	SortScoreDesc  = "-health_score"
)

// BadRequestError reports a request parameter outside its accepted values
type BadRequestError struct {
	Field  string
	Reason string
}

func (e *BadRequestError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
}

// ListOptions are the caller-supplied listing parameters. Zero values mean
// "use the default" for Page and PageSize.
type ListOptions struct {
	Search   string
	Ordering string
	Page     int
	PageSize int
}

// Page is one page of listed stocks
type Page struct {
	Count    int            `json:"count"`
	Next     bool           `json:"next"`
	Previous bool           `json:"previous"`
	Results  []StockSummary `json:"results"`
}

// List filters, scores, sorts and paginates the stock universe. Score
// sorts materialize and score the full filtered collection before slicing
// the page window; ties keep the ticker-ascending base order.
func (s *Service) List(ctx context.Context, opts ListOptions) (*Page, error) {
	opts, err := normalizeOptions(opts)
	if err != nil {
		return nil, err
	}

	// Filter first, then score and sort the surviving set
	candidates, err := s.store.ListStocks(ctx, opts.Search)
	if err != nil {
		return nil, fmt.Errorf("list stocks: %w", err)
	}

	summaries := make([]StockSummary, 0, len(candidates))
	for i := range candidates {
		summary, _, _, err := s.buildSummary(ctx, &candidates[i])
		if err != nil {
			return nil, err
		}
		summaries = append(summaries, summary)
	}

	sortSummaries(summaries, opts.Ordering)

	total := len(summaries)
	start := (opts.Page - 1) * opts.PageSize
	end := start + opts.PageSize
	if start > total {
		start = total
	}
	if end > total {
		end = total
	}

	return &Page{
		Count:    total,
		Next:     end < total,
		Previous: opts.Page > 1,
		Results:  summaries[start:end],
	}, nil
}

// normalizeOptions applies defaults and rejects out-of-range parameters
func normalizeOptions(opts ListOptions) (ListOptions, error) {
	switch opts.Ordering {
	case "", SortTickerAsc, SortTickerDesc, SortScoreAsc, SortScoreDesc:
	default:
		return opts, &BadRequestError{
			Field:  "ordering",
			Reason: fmt.Sprintf("%q is not one of ticker, -ticker, health_score, -health_score", opts.Ordering),
		}
	}

	if opts.Page == 0 {
		opts.Page = 1
	}
	if opts.Page < 1 {
		return opts, &BadRequestError{Field: "page", Reason: "must be a positive integer"}
	}

	if opts.PageSize == 0 {
		opts.PageSize = DefaultPageSize
	}
	if opts.PageSize < 1 || opts.PageSize > MaxPageSize {
		return opts, &BadRequestError{
			Field:  "page_size",
			Reason: fmt.Sprintf("must be between 1 and %d", MaxPageSize),
		}
	}

	return opts, nil
}

// sortSummaries orders the collection in place. The input arrives ticker
// ascending from the store; stable sorting preserves that order for ties.
func sortSummaries(items []StockSummary, ordering string) {
	switch ordering {
	case SortTickerDesc:
		sort.SliceStable(items, func(i, j int) bool {
			return items[i].Ticker > items[j].Ticker
		})
	case SortScoreAsc:
		sort.SliceStable(items, func(i, j int) bool {
			return items[i].HealthScore < items[j].HealthScore
		})
	case SortScoreDesc:
		sort.SliceStable(items, func(i, j int) bool {
			return items[i].HealthScore > items[j].HealthScore
		})
	default:
		// ticker ascending is the store's natural order; re-sorting keeps
		// the contract honest if a different Store implementation is used
		sort.SliceStable(items, func(i, j int) bool {
			return items[i].Ticker < items[j].Ticker
		})
	}
}
