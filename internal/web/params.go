package web

import (
	"fmt"
	"strings"
	"time"

	"github.com/deusflow/newsdesk/internal/export"
	"github.com/deusflow/newsdesk/internal/news"
)

const dateLayout = "2006-01-02"

// searchParams is the query string shared by the page, the API and exports.
type searchParams struct {
	Q         string   `form:"q"`
	From      string   `form:"from"`
	To        string   `form:"to"`
	Category  string   `form:"category"`
	Source    []string `form:"source"`
	URL       string   `form:"url"`
	Kind      string   `form:"kind"`
	Limit     int      `form:"limit"`
	Summarize bool     `form:"summarize"`
	Enrich    bool     `form:"enrich"`
	Format    string   `form:"format"`
}

func (p searchParams) query() (news.Query, error) {
	q := news.Query{
		Keywords:  news.ParseKeywords(p.Q),
		Category:  strings.TrimSpace(p.Category),
		URL:       strings.TrimSpace(p.URL),
		URLKind:   strings.ToLower(strings.TrimSpace(p.Kind)),
		Limit:     p.Limit,
		Summarize: p.Summarize,
		Enrich:    p.Enrich,
	}
	for _, s := range p.Source {
		if s = strings.TrimSpace(s); s != "" {
			q.Sources = append(q.Sources, s)
		}
	}
	if p.Limit < 0 {
		return q, fmt.Errorf("limit must not be negative")
	}

	var err error
	if q.From, err = parseDate(p.From); err != nil {
		return q, fmt.Errorf("invalid 'from' date %q, want YYYY-MM-DD", p.From)
	}
	if q.To, err = parseDate(p.To); err != nil {
		return q, fmt.Errorf("invalid 'to' date %q, want YYYY-MM-DD", p.To)
	}
	return q, nil
}

func (p searchParams) format() (string, error) {
	f := strings.ToLower(strings.TrimSpace(p.Format))
	if f == "" {
		f = "xlsx"
	}
	if !export.Supported(f) {
		return "", fmt.Errorf("unsupported format %q (supported: %s)", p.Format, strings.Join(export.Formats(), ", "))
	}
	return f, nil
}

func parseDate(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, nil
	}
	return time.ParseInLocation(dateLayout, s, time.UTC)
}
