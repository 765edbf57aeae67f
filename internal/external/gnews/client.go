package gnews

import (
	"context"
	"encoding/xml"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/stockpulse/backend/pkg/httputil"
	"github.com/stockpulse/backend/pkg/logger"
)

// Headline is a single news item from the Google News RSS feed.
type Headline struct {
	Title       string
	URL         string
	PublishedAt time.Time
}

// Client fetches stock news headlines from Google News RSS
type Client struct {
	httpClient *httputil.Client
	logger     *logger.Logger
	baseURL    string
	locale     string // language-country pair, e.g. "en-IN"
}

// NewClient creates a new Google News RSS client
func NewClient(httpClient *httputil.Client, log *logger.Logger, baseURL, locale string) *Client {
	if baseURL == "" {
		baseURL = "https://news.google.com/rss/search"
	}
	if locale == "" {
		locale = "en-IN"
	}
	return &Client{
		httpClient: httpClient,
		logger:     log,
		baseURL:    baseURL,
		locale:     locale,
	}
}

// FetchHeadlines returns the most recent headlines matching the query,
// newest first. At most limit items are returned.
func (c *Client) FetchHeadlines(ctx context.Context, query string, limit int) ([]Headline, error) {
	lang, country := splitLocale(c.locale)

	params := url.Values{}
	params.Set("q", query)
	params.Set("hl", c.locale)
	params.Set("gl", country)
	params.Set("ceid", country+":"+lang)

	fullURL := fmt.Sprintf("%s?%s", c.baseURL, params.Encode())

	resp, err := c.httpClient.Get(ctx, fullURL)
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

	headlines, err := parseFeed(body)
	if err != nil {
		return nil, fmt.Errorf("failed to parse feed for %q: %w", query, err)
	}

	if limit > 0 && len(headlines) > limit {
		headlines = headlines[:limit]
	}

	c.logger.WithFields(map[string]interface{}{
		"query": query,
		"count": len(headlines),
	}).Debug("Fetched news headlines")

	return headlines, nil
}

type rssFeed struct {
	XMLName xml.Name `xml:"rss"`
	Channel struct {
		Items []rssItem `xml:"item"`
	} `xml:"channel"`
}

type rssItem struct {
	Title   string `xml:"title"`
	Link    string `xml:"link"`
	PubDate string `xml:"pubDate"`
	Source  string `xml:"source"`
}

// parseFeed decodes an RSS document into headlines. Items keep the
// feed's order, which Google News emits newest first.
func parseFeed(body []byte) ([]Headline, error) {
	var feed rssFeed
	if err := xml.Unmarshal(body, &feed); err != nil {
		return nil, fmt.Errorf("invalid RSS: %w", err)
	}

	headlines := make([]Headline, 0, len(feed.Channel.Items))
	for _, item := range feed.Channel.Items {
		title := strings.TrimSpace(item.Title)
		if title == "" {
			continue
		}
		// Google News suffixes the publisher onto the title
		if item.Source != "" {
			title = strings.TrimSuffix(title, " - "+item.Source)
		}

		publishedAt := parsePubDate(item.PubDate)

		headlines = append(headlines, Headline{
			Title:       title,
			URL:         strings.TrimSpace(item.Link),
			PublishedAt: publishedAt,
		})
	}

	return headlines, nil
}

func splitLocale(locale string) (lang, country string) {
	if i := strings.IndexByte(locale, '-'); i > 0 && i < len(locale)-1 {
		return locale[:i], locale[i+1:]
	}
	return "en", "IN"
}

func parsePubDate(value string) time.Time {
	for _, layout := range []string{time.RFC1123Z, time.RFC1123, time.RFC822Z, time.RFC822} {
		if t, err := time.Parse(layout, value); err == nil {
			return t.UTC()
		}
	}
	return time.Time{}
}
