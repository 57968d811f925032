// Package dedup filters out articles already present in the news log.
package dedup

import (
	"github.com/mfenderov/newstrack/pkg/models"
)

// Filter returns the candidates whose identity is neither in the existing
// log nor earlier in the same batch. Candidates keep their input order, and
// the first occurrence of an identity wins, so an article matched by two
// keywords keeps the keyword that found it first.
func Filter(candidates []models.Article, existing map[string]bool) []models.Article {
	seen := make(map[string]bool, len(candidates))
	admitted := make([]models.Article, 0, len(candidates))

	for _, candidate := range candidates {
		if existing[candidate.Identity] || seen[candidate.Identity] {
			continue
		}
		seen[candidate.Identity] = true
		admitted = append(admitted, candidate)
	}
	return admitted
}

// Identities collects the dedup keys of an existing log.
func Identities(entries []models.LogEntry) map[string]bool {
	ids := make(map[string]bool, len(entries))
	for _, entry := range entries {
		ids[entry.Identity] = true
	}
	return ids
}
