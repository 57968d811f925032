// Package document owns the sentinel-bounded news region of the tracked
// document. Render rewrites the region from a log; ParseRegion is its
// inverse and recovers the log persisted in a previous run. Everything
// outside the region is preserved byte for byte.
package document

import (
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/mfenderov/newstrack/pkg/models"
)

const (
	// BeginMarker and EndMarker delimit the region this package owns.
	// They must each appear exactly once, on their own line, in order.
	BeginMarker = "<!-- newstrack:begin -->"
	EndMarker   = "<!-- newstrack:end -->"

	publishedFormat = "2006-01-02 15:04 MST"
)

// FormatError reports a document whose news region is missing or corrupt.
type FormatError struct {
	Reason string
}

func (e *FormatError) Error() string {
	return "news region: " + e.Reason
}

// entryTail matches the source, publication time, and metadata comment
// shared by linked and bare entry lines.
const entryTail = ` - (.*) \((\d{4}-\d{2}-\d{2} \d{2}:\d{2} UTC)\) <!-- newstrack kw="([^"]*)" seen="([^"\s]+)" -->$`

var (
	// The URL group is greedy on purpose. Canonical URLs never contain
	// spaces but may contain parentheses, so the closing paren that ends
	// the link is the last one before the tail, not the first.
	linkedEntryPattern = regexp.MustCompile(`^- \[((?:[^\]\\]|\\.)*)\]\((\S+)\)` + entryTail)
	bareEntryPattern   = regexp.MustCompile(`^- (.+?)` + entryTail)

	// Titles escape every hyphen so that the " - " separator before the
	// source is unambiguous, and the leading bracket so a bare entry can
	// never look like a linked one. Markdown renders the escapes away.
	escapeTitle   = strings.NewReplacer(`\`, `\\`, `]`, `\]`, `[`, `\[`, `-`, `\-`)
	unescapeTitle = strings.NewReplacer(`\\`, `\`, `\]`, `]`, `\[`, `[`, `\-`, `-`)

	escapeAttr   = strings.NewReplacer(`&`, `&amp;`, `"`, `&quot;`)
	unescapeAttr = strings.NewReplacer(`&quot;`, `"`, `&amp;`, `&`)
)

// Render replaces the interior of the news region with a deterministic
// rendering of the log. All bytes outside the region are returned unchanged.
func Render(doc string, log []models.LogEntry) (string, error) {
	lines := strings.Split(doc, "\n")
	begin, end, err := locateRegion(lines)
	if err != nil {
		return "", err
	}

	updated := make([]string, 0, begin+1+len(log)+len(lines)-end)
	updated = append(updated, lines[:begin+1]...)
	for _, entry := range log {
		updated = append(updated, renderEntry(entry))
	}
	updated = append(updated, lines[end:]...)

	return strings.Join(updated, "\n"), nil
}

// RenderEntries renders the region interior on its own, one line per entry.
func RenderEntries(log []models.LogEntry) string {
	lines := make([]string, 0, len(log))
	for _, entry := range log {
		lines = append(lines, renderEntry(entry))
	}
	return strings.Join(lines, "\n")
}

// ParseRegion extracts the log persisted in the news region. Blank interior
// lines are ignored; any other line that does not match the entry grammar is
// a FormatError, since merging into a half-readable log risks losing data.
func ParseRegion(doc string) ([]models.LogEntry, error) {
	lines := strings.Split(doc, "\n")
	begin, end, err := locateRegion(lines)
	if err != nil {
		return nil, err
	}

	var log []models.LogEntry
	for i := begin + 1; i < end; i++ {
		if strings.TrimSpace(lines[i]) == "" {
			continue
		}
		entry, err := parseEntry(lines[i])
		if err != nil {
			return nil, &FormatError{Reason: fmt.Sprintf("line %d: %v", i+1, err)}
		}
		log = append(log, entry)
	}
	return log, nil
}

func locateRegion(lines []string) (begin, end int, err error) {
	begin, end = -1, -1
	for i, line := range lines {
		switch line {
		case BeginMarker:
			if begin != -1 {
				return 0, 0, &FormatError{Reason: "duplicate begin marker"}
			}
			begin = i
		case EndMarker:
			if end != -1 {
				return 0, 0, &FormatError{Reason: "duplicate end marker"}
			}
			end = i
		}
	}
	switch {
	case begin == -1:
		return 0, 0, &FormatError{Reason: "begin marker not found"}
	case end == -1:
		return 0, 0, &FormatError{Reason: "end marker not found"}
	case end < begin:
		return 0, 0, &FormatError{Reason: "end marker precedes begin marker"}
	}
	return begin, end, nil
}

func renderEntry(entry models.LogEntry) string {
	var b strings.Builder
	b.WriteString("- ")
	title := escapeTitle.Replace(entry.Title)
	if entry.URL != "" {
		fmt.Fprintf(&b, "[%s](%s)", title, entry.URL)
	} else {
		b.WriteString(title)
	}
	fmt.Fprintf(&b, " - %s (%s) <!-- newstrack kw=\"%s\" seen=\"%s\" -->",
		entry.Source,
		entry.PublishedAt.UTC().Format(publishedFormat),
		escapeAttr.Replace(entry.Keyword),
		entry.FirstSeenAt.UTC().Format(time.RFC3339),
	)
	return b.String()
}

func parseEntry(line string) (models.LogEntry, error) {
	var title, articleURL, source, published, keyword, seen string

	if m := linkedEntryPattern.FindStringSubmatch(line); m != nil {
		title, articleURL, source, published, keyword, seen = m[1], m[2], m[3], m[4], m[5], m[6]
	} else if strings.HasPrefix(line, "- [") {
		// A bare entry never starts with an unescaped bracket, so this
		// is a broken link line. Failing loudly beats mis-reading it as
		// a bare entry and dropping the URL.
		return models.LogEntry{}, fmt.Errorf("malformed linked entry")
	} else if m := bareEntryPattern.FindStringSubmatch(line); m != nil {
		title, source, published, keyword, seen = m[1], m[2], m[3], m[4], m[5]
	} else {
		return models.LogEntry{}, fmt.Errorf("not a valid entry line")
	}

	title = unescapeTitle.Replace(title)
	keyword = unescapeAttr.Replace(keyword)

	publishedAt, err := time.Parse(publishedFormat, published)
	if err != nil {
		return models.LogEntry{}, fmt.Errorf("bad publication time %q: %w", published, err)
	}
	firstSeenAt, err := time.Parse(time.RFC3339, seen)
	if err != nil {
		return models.LogEntry{}, fmt.Errorf("bad first-seen time %q: %w", seen, err)
	}

	// The stored URL is already canonical, so the identity recomputes
	// exactly as it did when the entry was admitted.
	identity := models.GenerateIdentity(articleURL)
	if articleURL == "" {
		identity = models.GenerateTitleIdentity(title, keyword)
	}

	return models.LogEntry{
		Article: models.Article{
			Title:       title,
			URL:         articleURL,
			PublishedAt: publishedAt.UTC(),
			Source:      source,
			Keyword:     keyword,
			Identity:    identity,
		},
		FirstSeenAt: firstSeenAt.UTC(),
	}, nil
}
