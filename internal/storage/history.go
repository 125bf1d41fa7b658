// Package storage persists the history of search runs.
package storage

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"strings"
	"time"

	"github.com/deusflow/newsdesk/internal/news"
)

// maxTopItems is how many result items are kept per run.
const maxTopItems = 10

// RunQuery is the stored form of news.Query.
type RunQuery struct {
	Keywords []string `json:"keywords,omitempty"`
	From     string   `json:"from,omitempty"`
	To       string   `json:"to,omitempty"`
	Category string   `json:"category,omitempty"`
	Sources  []string `json:"sources,omitempty"`
	URL      string   `json:"url,omitempty"`
}

// RunItem is a trimmed result item.
type RunItem struct {
	Title    string `json:"title"`
	Link     string `json:"link"`
	Source   string `json:"source"`
	Category string `json:"category"`
}

// Run is one recorded search.
type Run struct {
	ID         string    `json:"id"`
	At         time.Time `json:"at"`
	Query      RunQuery  `json:"query"`
	Fetched    int       `json:"fetched"`
	Matched    int       `json:"matched"`
	Duplicates int       `json:"duplicates"`
	Returned   int       `json:"returned"`
	Warnings   int       `json:"warnings"`
	DurationMS int64     `json:"duration_ms"`
	Top        []RunItem `json:"top,omitempty"`
}

// History records runs and lists the most recent ones first.
type History interface {
	Record(ctx context.Context, run Run) error
	Recent(ctx context.Context, limit int) ([]Run, error)
	Stats(ctx context.Context) (map[string]int, error)
	Close() error
}

// NewRun builds a run record from a query and its result items.
func NewRun(at time.Time, q news.Query, items []news.Item) Run {
	run := Run{
		At: at.UTC(),
		Query: RunQuery{
			Keywords: q.Keywords,
			Category: q.Category,
			Sources:  q.Sources,
			URL:      q.URL,
		},
		Returned: len(items),
	}
	if !q.From.IsZero() {
		run.Query.From = q.From.Format("2006-01-02")
	}
	if !q.To.IsZero() {
		run.Query.To = q.To.Format("2006-01-02")
	}
	for i, n := range items {
		if i >= maxTopItems {
			break
		}
		run.Top = append(run.Top, RunItem{Title: n.Title, Link: n.Link, Source: n.Source, Category: n.Category})
	}
	run.ID = runID(run)
	return run
}

// runID hashes the time and the normalised query.
func runID(r Run) string {
	h := sha256.New()
	fmt.Fprintf(h, "%d|%s|%s|%s|%s|%s|%s",
		r.At.UnixNano(),
		strings.ToLower(strings.Join(r.Query.Keywords, ",")),
		r.Query.From, r.Query.To,
		strings.ToLower(r.Query.Category),
		strings.ToLower(strings.Join(r.Query.Sources, ",")),
		r.Query.URL,
	)
	return hex.EncodeToString(h.Sum(nil))[:16]
}
