package news

import (
	"strings"
	"time"
)

// Sentiment labels.
const (
	Positive = "positive"
	Negative = "negative"
	Neutral  = "neutral"
)

// Item is a single news entry collected from a source and annotated by the pipeline.
type Item struct {
	Source     string    `json:"source"`
	Title      string    `json:"title"`
	Summary    string    `json:"summary,omitempty"`
	Link       string    `json:"link"`
	Published  time.Time `json:"published"`
	FetchedAt  time.Time `json:"fetched_at"`
	ImageURL   string    `json:"image_url,omitempty"`
	Categories []string  `json:"feed_categories,omitempty"`

	Sentiment string  `json:"sentiment"`
	Polarity  float64 `json:"polarity"`
	Category  string  `json:"category"`

	AISummary string `json:"ai_summary,omitempty"`
}

// Date returns the publication time, falling back to the fetch time for
// scraped items that carry no date.
func (n Item) Date() time.Time {
	if !n.Published.IsZero() {
		return n.Published
	}
	return n.FetchedAt
}

// Text is the searchable text of an item.
func (n Item) Text() string {
	if n.Summary == "" {
		return n.Title
	}
	return n.Title + " " + n.Summary
}

// Query describes one user search.
type Query struct {
	Keywords  []string
	From      time.Time // inclusive, zero = open
	To        time.Time // inclusive day, zero = open
	Category  string
	Sources   []string
	URL       string // one-off page or feed; replaces Sources
	URLKind   string // rss or html, empty means html
	Limit     int
	Summarize bool
	Enrich    bool
}

// ParseKeywords splits a comma separated keyword list. Arabic commas are accepted too.
func ParseKeywords(s string) []string {
	s = strings.ReplaceAll(s, "،", ",")
	var out []string
	for _, k := range strings.Split(s, ",") {
		k = strings.TrimSpace(k)
		if k != "" {
			out = append(out, k)
		}
	}
	return out
}
