package models

import (
	"crypto/sha256"
	"encoding/hex"
	"strings"
	"time"
)

// RawEntry is a single feed item as returned by the feed source.
// It is discarded after normalization.
type RawEntry struct {
	Title     string // item title, may contain markup and entities
	Link      string // item link as published by the feed
	Published string // publication time in the source's own format
	Source    string // publishing outlet name
	Keyword   string // the search keyword that matched this entry
}

// Article is the canonical record produced by normalization.
type Article struct {
	Title       string    `json:"title"`
	URL         string    `json:"url"` // canonical URL, empty if the link could not be canonicalized
	PublishedAt time.Time `json:"published_at"`
	Source      string    `json:"source"`
	Keyword     string    `json:"keyword"`
	Identity    string    `json:"identity"`
}

// LogEntry is an Article that has been admitted into the news log.
type LogEntry struct {
	Article
	FirstSeenAt time.Time `json:"first_seen_at"`
}

// GenerateIdentity creates a deterministic dedup key from a canonical URL.
// The key is a SHA-256 hash (first 16 chars) of the URL.
func GenerateIdentity(canonicalURL string) string {
	hash := sha256.Sum256([]byte(canonicalURL))
	return hex.EncodeToString(hash[:])[:16]
}

// GenerateTitleIdentity is the fallback dedup key for entries whose link
// could not be canonicalized. It folds the title and combines it with the
// matched keyword so the key stays stable across runs.
func GenerateTitleIdentity(title, keyword string) string {
	composite := "title|" + strings.ToLower(title) + "|" + strings.ToLower(keyword)
	hash := sha256.Sum256([]byte(composite))
	return hex.EncodeToString(hash[:])[:16]
}

// CompareEntries defines the total order of the news log: publication time
// descending, then first-seen time descending, then identity ascending.
func CompareEntries(a, b LogEntry) int {
	if c := b.PublishedAt.Compare(a.PublishedAt); c != 0 {
		return c
	}
	if c := b.FirstSeenAt.Compare(a.FirstSeenAt); c != 0 {
		return c
	}
	return strings.Compare(a.Identity, b.Identity)
}

// NormalizeKeywords trims each keyword, drops empties, and collapses
// case-insensitive duplicates while preserving the input order.
func NormalizeKeywords(raw []string) []string {
	seen := make(map[string]bool, len(raw))
	keywords := make([]string, 0, len(raw))
	for _, kw := range raw {
		kw = strings.TrimSpace(kw)
		if kw == "" {
			continue
		}
		folded := strings.ToLower(kw)
		if seen[folded] {
			continue
		}
		seen[folded] = true
		keywords = append(keywords, kw)
	}
	return keywords
}
