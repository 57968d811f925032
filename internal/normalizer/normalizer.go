// Package normalizer converts raw feed entries into canonical articles.
package normalizer

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"golang.org/x/net/html"

	"github.com/mfenderov/newstrack/pkg/models"
)

// trackingPrefixes and trackingKeys form the deny-list of query parameters
// removed during URL canonicalization.
var (
	trackingPrefixes = []string{"utm_"}
	trackingKeys     = map[string]bool{
		"gclid":  true,
		"fbclid": true,
		"ref":    true,
		"source": true,
	}
)

// publishedFormats are tried in order against the feed's publication time.
var publishedFormats = []string{
	time.RFC1123Z,
	time.RFC1123,
	time.RFC822Z,
	time.RFC822,
	time.RFC3339,
}

// ValidationError reports a raw entry that cannot become an article.
type ValidationError struct {
	Field string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("entry has empty %s", e.Field)
}

// Normalizer turns RawEntry values into canonical Articles.
type Normalizer struct{}

// New creates a new Normalizer.
func New() *Normalizer {
	return &Normalizer{}
}

// Normalize validates and canonicalizes a single raw entry. A timestamp that
// fails to parse degrades to now (treated as just published) instead of
// rejecting the entry.
func (n *Normalizer) Normalize(raw models.RawEntry, now time.Time) (models.Article, error) {
	title := CleanTitle(raw.Title)
	if title == "" {
		return models.Article{}, &ValidationError{Field: "title"}
	}
	if strings.TrimSpace(raw.Link) == "" {
		return models.Article{}, &ValidationError{Field: "link"}
	}

	canonical := CanonicalURL(raw.Link)

	identity := models.GenerateIdentity(canonical)
	if canonical == "" {
		// Link present but not canonicalizable; fall back to a
		// title-based key so the entry still dedupes across runs.
		identity = models.GenerateTitleIdentity(title, raw.Keyword)
	}

	publishedAt := now.UTC()
	for _, format := range publishedFormats {
		if parsed, err := time.Parse(format, strings.TrimSpace(raw.Published)); err == nil {
			publishedAt = parsed.UTC()
			break
		}
	}

	return models.Article{
		Title: title,
		URL:   canonical,
		// Minute resolution matches the rendered form, so re-parsed
		// logs keep the same ordering the renderer saw.
		PublishedAt: publishedAt.Truncate(time.Minute),
		Source:      strings.TrimSpace(raw.Source),
		Keyword:     raw.Keyword,
		Identity:    identity,
	}, nil
}

// CleanTitle strips HTML markup and entities from a feed title and collapses
// internal whitespace.
func CleanTitle(title string) string {
	if strings.ContainsAny(title, "<&") {
		tokenizer := html.NewTokenizer(strings.NewReader(title))
		var b strings.Builder
		for {
			tt := tokenizer.Next()
			if tt == html.ErrorToken {
				break
			}
			if tt == html.TextToken {
				b.Write(tokenizer.Text())
			}
		}
		title = b.String()
	}
	return strings.Join(strings.Fields(title), " ")
}

// CanonicalURL reduces a link to scheme, host, path, and the non-tracking
// part of its query. Returns "" when the link cannot be canonicalized.
func CanonicalURL(link string) string {
	u, err := url.Parse(strings.TrimSpace(link))
	if err != nil {
		return ""
	}
	if u.Host == "" || (u.Scheme != "http" && u.Scheme != "https") {
		return ""
	}

	u.Host = strings.ToLower(u.Host)
	u.Fragment = ""
	u.RawFragment = ""

	query := u.Query()
	for key := range query {
		if isTrackingParam(key) {
			query.Del(key)
		}
	}
	// Encode sorts keys, which keeps the canonical form deterministic.
	u.RawQuery = query.Encode()

	return u.String()
}

func isTrackingParam(key string) bool {
	lower := strings.ToLower(key)
	if trackingKeys[lower] {
		return true
	}
	for _, prefix := range trackingPrefixes {
		if strings.HasPrefix(lower, prefix) {
			return true
		}
	}
	return false
}
