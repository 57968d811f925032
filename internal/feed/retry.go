package feed

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/cenkalti/backoff/v4"

	"github.com/mfenderov/newstrack/pkg/models"
)

// RetryConfig controls the exponential backoff applied around a Fetcher.
type RetryConfig struct {
	MaxRetries      uint64
	InitialInterval time.Duration
	MaxInterval     time.Duration
}

// DefaultRetryConfig returns the recommended retry settings.
func DefaultRetryConfig() RetryConfig {
	return RetryConfig{
		MaxRetries:      2,
		InitialInterval: 500 * time.Millisecond,
		MaxInterval:     5 * time.Second,
	}
}

type retryingFetcher struct {
	inner  Fetcher
	config RetryConfig
}

// WithRetry decorates a Fetcher with exponential backoff. Transient failures
// (network errors, HTTP 5xx, 429) are retried; client errors and malformed
// payloads fail immediately.
func WithRetry(inner Fetcher, config RetryConfig) Fetcher {
	return &retryingFetcher{inner: inner, config: config}
}

func (f *retryingFetcher) Fetch(ctx context.Context, keyword string) ([]models.RawEntry, error) {
	b := backoff.NewExponentialBackOff()
	b.InitialInterval = f.config.InitialInterval
	b.MaxInterval = f.config.MaxInterval

	bo := backoff.WithContext(backoff.WithMaxRetries(b, f.config.MaxRetries), ctx)

	var entries []models.RawEntry
	op := func() error {
		var err error
		entries, err = f.inner.Fetch(ctx, keyword)
		if err == nil {
			return nil
		}
		if isRetryable(err) {
			return err
		}
		return backoff.Permanent(err)
	}

	if err := backoff.Retry(op, bo); err != nil {
		var pErr *backoff.PermanentError
		if errors.As(err, &pErr) {
			return nil, pErr.Err
		}
		return nil, err
	}
	return entries, nil
}

func isRetryable(err error) bool {
	var fetchErr *FetchError
	if !errors.As(err, &fetchErr) {
		return false
	}
	// StatusCode zero means the request never completed.
	return fetchErr.StatusCode == 0 ||
		fetchErr.StatusCode >= http.StatusInternalServerError ||
		fetchErr.StatusCode == http.StatusTooManyRequests
}
