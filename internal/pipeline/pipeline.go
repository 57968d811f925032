// Package pipeline orchestrates a single news-tracking run: fetch feeds for
// every keyword, normalize, dedupe against the persisted log, merge, and
// re-render the document's news region.
package pipeline

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/mfenderov/newstrack/internal/dedup"
	"github.com/mfenderov/newstrack/internal/document"
	"github.com/mfenderov/newstrack/internal/feed"
	"github.com/mfenderov/newstrack/internal/newslog"
	"github.com/mfenderov/newstrack/internal/normalizer"
	"github.com/mfenderov/newstrack/pkg/models"
)

const defaultConcurrency = 4

// Outcome classifies the result of a run.
type Outcome string

const (
	OutcomeChanged   Outcome = "changed"
	OutcomeUnchanged Outcome = "unchanged"
	OutcomeFailed    Outcome = "failed"
)

// Error kinds recorded in Result.Errors.
const (
	KindFetch      = "FetchError"
	KindParse      = "ParseError"
	KindValidation = "ValidationError"
	KindFormat     = "FormatError"
)

// RunError is a non-fatal (or, for FormatError, fatal) problem encountered
// during a run.
type RunError struct {
	Keyword string `json:"keyword,omitempty"`
	Stage   string `json:"stage"`
	Kind    string `json:"kind"`
	Message string `json:"message"`
}

// Config holds pipeline configuration.
type Config struct {
	Keywords    []string
	MaxEntries  int // log cap, 0 means unlimited
	Concurrency int // parallel keyword fetches
	Feed        feed.Config
	Retry       feed.RetryConfig
}

// Result holds the outcome of a run. UpdatedDocument is only meaningful when
// Outcome is OutcomeChanged; Errors may be non-empty for any outcome.
type Result struct {
	Outcome         Outcome
	UpdatedDocument string
	NewEntries      int
	Errors          []RunError
}

// Pipeline runs the fetch-normalize-dedupe-merge-render sequence.
type Pipeline struct {
	config     Config
	fetcher    feed.Fetcher
	normalizer *normalizer.Normalizer
}

// New creates a Pipeline whose fetches go through the retrying feed client.
func New(config Config) *Pipeline {
	return NewWithFetcher(config, feed.WithRetry(feed.New(config.Feed), config.Retry))
}

// NewWithFetcher creates a Pipeline with a caller-supplied Fetcher.
func NewWithFetcher(config Config, fetcher feed.Fetcher) *Pipeline {
	if config.Concurrency <= 0 {
		config.Concurrency = defaultConcurrency
	}
	return &Pipeline{
		config:     config,
		fetcher:    fetcher,
		normalizer: normalizer.New(),
	}
}

// Run executes one pipeline pass over the given document. Per-keyword and
// per-entry failures are recorded and skipped; only an unreadable news
// region fails the run.
func (p *Pipeline) Run(ctx context.Context, doc string, now time.Time) Result {
	result := Result{}

	existing, err := document.ParseRegion(doc)
	if err != nil {
		slog.Error("existing log is unreadable", "error", err)
		result.Outcome = OutcomeFailed
		result.Errors = append(result.Errors, RunError{
			Stage:   "parse",
			Kind:    KindFormat,
			Message: err.Error(),
		})
		return result
	}

	keywords := models.NormalizeKeywords(p.config.Keywords)
	batches := p.fetchAll(ctx, keywords, &result)

	var candidates []models.Article
	for _, batch := range batches {
		for _, raw := range batch {
			article, err := p.normalizer.Normalize(raw, now)
			if err != nil {
				slog.Warn("dropping entry", "keyword", raw.Keyword, "error", err)
				result.Errors = append(result.Errors, RunError{
					Keyword: raw.Keyword,
					Stage:   "normalize",
					Kind:    KindValidation,
					Message: err.Error(),
				})
				continue
			}
			candidates = append(candidates, article)
		}
	}

	admitted := dedup.Filter(candidates, dedup.Identities(existing))
	result.NewEntries = len(admitted)

	merged := newslog.Merge(existing, admitted, now, p.config.MaxEntries)

	updated, err := document.Render(doc, merged)
	if err != nil {
		result.Outcome = OutcomeFailed
		result.Errors = append(result.Errors, RunError{
			Stage:   "render",
			Kind:    KindFormat,
			Message: err.Error(),
		})
		return result
	}

	if updated == doc {
		result.Outcome = OutcomeUnchanged
		slog.Info("run complete", "outcome", result.Outcome, "new_entries", 0)
		return result
	}

	result.Outcome = OutcomeChanged
	result.UpdatedDocument = updated
	slog.Info("run complete", "outcome", result.Outcome, "new_entries", result.NewEntries, "log_size", len(merged))
	return result
}

// fetchAll queries every keyword with bounded concurrency and reassembles
// the batches in keyword order once all fetches settle, so downstream
// decisions do not depend on completion order. A failed keyword degrades to
// an empty batch and a recorded error; it never cancels its siblings.
func (p *Pipeline) fetchAll(ctx context.Context, keywords []string, result *Result) [][]models.RawEntry {
	batches := make([][]models.RawEntry, len(keywords))
	fetchErrs := make([]error, len(keywords))

	var wg sync.WaitGroup
	semaphore := make(chan struct{}, p.config.Concurrency)

	for i, keyword := range keywords {
		wg.Add(1)
		semaphore <- struct{}{}

		go func(i int, keyword string) {
			defer wg.Done()
			defer func() { <-semaphore }()

			entries, err := p.fetcher.Fetch(ctx, keyword)
			if err != nil {
				fetchErrs[i] = err
				return
			}
			batches[i] = entries
		}(i, keyword)
	}
	wg.Wait()

	for i, err := range fetchErrs {
		if err == nil {
			continue
		}
		slog.Warn("skipping keyword", "keyword", keywords[i], "error", err)

		kind := KindFetch
		var parseErr *feed.ParseError
		if errors.As(err, &parseErr) {
			kind = KindParse
		}
		result.Errors = append(result.Errors, RunError{
			Keyword: keywords[i],
			Stage:   "fetch",
			Kind:    kind,
			Message: err.Error(),
		})
	}
	return batches
}
