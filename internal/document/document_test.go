package document

import (
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/mfenderov/newstrack/pkg/models"
)

var (
	published = time.Date(2026, 8, 28, 10, 15, 0, 0, time.UTC)
	firstSeen = time.Date(2026, 8, 30, 9, 0, 0, 0, time.UTC)
)

func sampleDoc(interior string) string {
	return "# News Tracker\n\nSome intro text.\n\n" +
		BeginMarker + "\n" + interior + EndMarker + "\n\n## Footer\n\nUnrelated content.\n"
}

func sampleEntry() models.LogEntry {
	return models.LogEntry{
		Article: models.Article{
			Title:       "AI Breakthrough Announced",
			URL:         "https://example.com/ai-breakthrough",
			PublishedAt: published,
			Source:      "Example News",
			Keyword:     "ai",
			Identity:    models.GenerateIdentity("https://example.com/ai-breakthrough"),
		},
		FirstSeenAt: firstSeen,
	}
}

func TestRender_ReplacesRegionOnly(t *testing.T) {
	doc := sampleDoc("- stale line that gets replaced <!-- not real -->\n")

	updated, err := Render(doc, []models.LogEntry{sampleEntry()})
	if err != nil {
		t.Fatalf("Render() error = %v", err)
	}

	if !strings.Contains(updated, "[AI Breakthrough Announced](https://example.com/ai-breakthrough)") {
		t.Error("rendered region should contain the entry link")
	}
	if strings.Contains(updated, "stale line") {
		t.Error("previous region interior should be gone")
	}
	if !strings.HasPrefix(updated, "# News Tracker\n\nSome intro text.\n\n") {
		t.Error("content before the region must be preserved")
	}
	if !strings.HasSuffix(updated, "\n\n## Footer\n\nUnrelated content.\n") {
		t.Error("content after the region must be preserved")
	}
}

func TestRender_EmptyLogEmptiesRegion(t *testing.T) {
	doc := sampleDoc("- old <!-- x -->\n")

	updated, err := Render(doc, nil)
	if err != nil {
		t.Fatalf("Render() error = %v", err)
	}

	want := sampleDoc("")
	if updated != want {
		t.Errorf("empty log should leave an empty region:\ngot:  %q\nwant: %q", updated, want)
	}
}

func TestRenderParse_RoundTrip(t *testing.T) {
	entries := []models.LogEntry{
		sampleEntry(),
		{
			Article: models.Article{
				Title:       `Brackets [and] back\slashes`,
				URL:         "https://example.com/odd?id=7",
				PublishedAt: published.Add(-time.Hour),
				Source:      "Oddities (Weekly)",
				Keyword:     "machine learning",
				Identity:    models.GenerateIdentity("https://example.com/odd?id=7"),
			},
			FirstSeenAt: firstSeen,
		},
		{
			Article: models.Article{
				Title:       "Go at 15",
				URL:         "https://en.wikipedia.org/wiki/Go_(programming_language)",
				PublishedAt: published.Add(-90 * time.Minute),
				Source:      "Wikipedia",
				Keyword:     "ai",
				Identity:    models.GenerateIdentity("https://en.wikipedia.org/wiki/Go_(programming_language)"),
			},
			FirstSeenAt: firstSeen,
		},
		{
			Article: models.Article{
				Title:       "Linkless Story",
				PublishedAt: published.Add(-2 * time.Hour),
				Source:      "Example News",
				Keyword:     "ai",
				Identity:    models.GenerateTitleIdentity("Linkless Story", "ai"),
			},
			FirstSeenAt: firstSeen,
		},
		{
			Article: models.Article{
				Title:       "Markets - Weekly Wrap",
				PublishedAt: published.Add(-3 * time.Hour),
				Source:      "Example News",
				Keyword:     "markets",
				Identity:    models.GenerateTitleIdentity("Markets - Weekly Wrap", "markets"),
			},
			FirstSeenAt: firstSeen,
		},
	}

	rendered, err := Render(sampleDoc(""), entries)
	if err != nil {
		t.Fatalf("Render() error = %v", err)
	}

	parsed, err := ParseRegion(rendered)
	if err != nil {
		t.Fatalf("ParseRegion() error = %v", err)
	}

	if len(parsed) != len(entries) {
		t.Fatalf("expected %d entries, got %d", len(entries), len(parsed))
	}
	for i := range entries {
		if parsed[i].Title != entries[i].Title {
			t.Errorf("entry %d Title = %q, want %q", i, parsed[i].Title, entries[i].Title)
		}
		if parsed[i].URL != entries[i].URL {
			t.Errorf("entry %d URL = %q, want %q", i, parsed[i].URL, entries[i].URL)
		}
		if parsed[i].Source != entries[i].Source {
			t.Errorf("entry %d Source = %q, want %q", i, parsed[i].Source, entries[i].Source)
		}
		if parsed[i].Keyword != entries[i].Keyword {
			t.Errorf("entry %d Keyword = %q, want %q", i, parsed[i].Keyword, entries[i].Keyword)
		}
		if parsed[i].Identity != entries[i].Identity {
			t.Errorf("entry %d Identity = %q, want %q", i, parsed[i].Identity, entries[i].Identity)
		}
		if !parsed[i].PublishedAt.Equal(entries[i].PublishedAt) {
			t.Errorf("entry %d PublishedAt = %v, want %v", i, parsed[i].PublishedAt, entries[i].PublishedAt)
		}
		if !parsed[i].FirstSeenAt.Equal(entries[i].FirstSeenAt) {
			t.Errorf("entry %d FirstSeenAt = %v, want %v", i, parsed[i].FirstSeenAt, entries[i].FirstSeenAt)
		}
	}

	// Re-rendering the parsed log must reproduce the document exactly.
	again, err := Render(rendered, parsed)
	if err != nil {
		t.Fatalf("second Render() error = %v", err)
	}
	if again != rendered {
		t.Errorf("round trip is not byte-identical:\nfirst:  %q\nsecond: %q", rendered, again)
	}
}

func TestRenderParse_QuotedKeyword(t *testing.T) {
	entry := sampleEntry()
	entry.Keyword = `"generative ai" hype`

	rendered, err := Render(sampleDoc(""), []models.LogEntry{entry})
	if err != nil {
		t.Fatalf("Render() error = %v", err)
	}

	parsed, err := ParseRegion(rendered)
	if err != nil {
		t.Fatalf("ParseRegion() error = %v", err)
	}
	if len(parsed) != 1 {
		t.Fatalf("expected 1 entry, got %d", len(parsed))
	}
	if parsed[0].Keyword != entry.Keyword {
		t.Errorf("Keyword = %q, want %q", parsed[0].Keyword, entry.Keyword)
	}

	again, err := Render(rendered, parsed)
	if err != nil {
		t.Fatalf("second Render() error = %v", err)
	}
	if again != rendered {
		t.Errorf("round trip is not byte-identical:\nfirst:  %q\nsecond: %q", rendered, again)
	}
}

func TestParseRegion_EmptyRegion(t *testing.T) {
	log, err := ParseRegion(sampleDoc(""))
	if err != nil {
		t.Fatalf("ParseRegion() error = %v", err)
	}
	if len(log) != 0 {
		t.Errorf("expected empty log, got %d entries", len(log))
	}
}

func TestParseRegion_IgnoresBlankLines(t *testing.T) {
	rendered, err := Render(sampleDoc(""), []models.LogEntry{sampleEntry()})
	if err != nil {
		t.Fatalf("Render() error = %v", err)
	}
	padded := strings.Replace(rendered, BeginMarker+"\n", BeginMarker+"\n\n", 1)

	log, err := ParseRegion(padded)
	if err != nil {
		t.Fatalf("ParseRegion() error = %v", err)
	}
	if len(log) != 1 {
		t.Errorf("expected 1 entry, got %d", len(log))
	}
}

func TestFormatErrors(t *testing.T) {
	tests := []struct {
		name string
		doc  string
	}{
		{"no markers", "# Plain document\n\nNo region here.\n"},
		{"missing end marker", "# Doc\n" + BeginMarker + "\n"},
		{"missing begin marker", "# Doc\n" + EndMarker + "\n"},
		{"markers out of order", "# Doc\n" + EndMarker + "\n" + BeginMarker + "\n"},
		{"duplicate begin marker", "# Doc\n" + BeginMarker + "\n" + BeginMarker + "\n" + EndMarker + "\n"},
		{"corrupt entry line", sampleDoc("- totally not an entry\n")},
		{"broken link line", sampleDoc(`- [Title](no closing paren - Example News (2026-08-28 10:15 UTC) <!-- newstrack kw="ai" seen="2026-08-30T09:00:00Z" -->` + "\n")},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseRegion(tt.doc)
			var formatErr *FormatError
			if !errors.As(err, &formatErr) {
				t.Fatalf("expected FormatError, got %v", err)
			}
		})
	}
}

func TestRender_FailsOnMissingRegion(t *testing.T) {
	_, err := Render("# No region\n", []models.LogEntry{sampleEntry()})
	var formatErr *FormatError
	if !errors.As(err, &formatErr) {
		t.Fatalf("expected FormatError, got %v", err)
	}
}
