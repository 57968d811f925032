// Package feed fetches news-feed entries for search keywords.
package feed

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"time"

	"github.com/mmcdole/gofeed/rss"

	"github.com/mfenderov/newstrack/pkg/models"
)

const (
	// DefaultEndpoint is the Google News search feed. The %s placeholder
	// receives the URL-encoded keyword.
	DefaultEndpoint = "https://news.google.com/rss/search?q=%s&hl=en-US&gl=US&ceid=US:en"

	defaultTimeout      = 15 * time.Second
	defaultLimit        = 5
	defaultUserAgent    = "newstrack/1.0"
	unknownSource       = "Unknown source"
	maxFeedResponseSize = int64(5 * 1024 * 1024) // 5MB
)

// Config holds feed client configuration.
type Config struct {
	Endpoint  string        // feed URL template with one %s for the keyword
	Timeout   time.Duration // per-request timeout
	UserAgent string
	Limit     int // max entries taken per keyword
}

// Fetcher issues one feed query per keyword.
type Fetcher interface {
	Fetch(ctx context.Context, keyword string) ([]models.RawEntry, error)
}

// Client fetches and parses a news feed over HTTP.
// It performs exactly one request per Fetch call; retry policy is layered
// on top by the caller.
type Client struct {
	config     Config
	httpClient *http.Client
}

// New creates a new feed Client with the given configuration.
func New(config Config) *Client {
	if config.Endpoint == "" {
		config.Endpoint = DefaultEndpoint
	}
	if config.Timeout == 0 {
		config.Timeout = defaultTimeout
	}
	if config.UserAgent == "" {
		config.UserAgent = defaultUserAgent
	}
	if config.Limit == 0 {
		config.Limit = defaultLimit
	}
	return &Client{
		config: config,
		httpClient: &http.Client{
			Timeout: config.Timeout,
		},
	}
}

// Fetch queries the feed endpoint for a single keyword and returns its raw
// entries, capped at the configured per-keyword limit.
func (c *Client) Fetch(ctx context.Context, keyword string) ([]models.RawEntry, error) {
	feedURL := fmt.Sprintf(c.config.Endpoint, url.QueryEscape(keyword))

	ctx, cancel := context.WithTimeout(ctx, c.config.Timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, feedURL, nil)
	if err != nil {
		return nil, &FetchError{Keyword: keyword, Err: err}
	}
	req.Header.Set("User-Agent", c.config.UserAgent)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, &FetchError{Keyword: keyword, Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		io.Copy(io.Discard, io.LimitReader(resp.Body, maxFeedResponseSize))
		return nil, &FetchError{Keyword: keyword, StatusCode: resp.StatusCode}
	}

	// The parser keeps per-parse state, so each request gets its own.
	parser := &rss.Parser{}
	parsed, err := parser.Parse(io.LimitReader(resp.Body, maxFeedResponseSize))
	if err != nil {
		return nil, &ParseError{Keyword: keyword, Err: err}
	}

	items := parsed.Items
	if len(items) > c.config.Limit {
		items = items[:c.config.Limit]
	}

	entries := make([]models.RawEntry, 0, len(items))
	for _, item := range items {
		source := unknownSource
		if item.Source != nil && item.Source.Title != "" {
			source = item.Source.Title
		}
		entries = append(entries, models.RawEntry{
			Title:     item.Title,
			Link:      item.Link,
			Published: item.PubDate,
			Source:    source,
			Keyword:   keyword,
		})
	}

	slog.Debug("fetched feed", "keyword", keyword, "entries", len(entries))
	return entries, nil
}
