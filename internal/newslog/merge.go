// Package newslog merges admitted articles into the ordered news log.
package newslog

import (
	"slices"
	"time"

	"github.com/mfenderov/newstrack/pkg/models"
)

// Merge wraps the admitted articles with the run time, combines them with
// the existing log, and re-sorts by the log's total order. When limit is
// positive the result is truncated to its first limit entries, evicting the
// oldest. Merge is pure: the existing slice is not modified.
func Merge(existing []models.LogEntry, admitted []models.Article, now time.Time, limit int) []models.LogEntry {
	merged := make([]models.LogEntry, 0, len(existing)+len(admitted))
	merged = append(merged, existing...)

	// Second resolution matches the rendered first-seen form.
	firstSeen := now.UTC().Truncate(time.Second)
	for _, article := range admitted {
		merged = append(merged, models.LogEntry{
			Article:     article,
			FirstSeenAt: firstSeen,
		})
	}

	slices.SortFunc(merged, models.CompareEntries)

	if limit > 0 && len(merged) > limit {
		merged = merged[:limit]
	}
	return merged
}
