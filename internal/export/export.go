// Package export writes result sets as downloadable files.
package export

import (
	"fmt"
	"io"
	"sort"
	"strings"
	"time"

	"github.com/deusflow/newsdesk/internal/metrics"
	"github.com/deusflow/newsdesk/internal/news"
)

// Meta describes the result set being exported.
type Meta struct {
	Title       string
	Link        string
	Description string
	Generated   time.Time
}

type format struct {
	contentType string
	ext         string
	write       func(w io.Writer, items []news.Item, meta Meta) error
}

var formats = map[string]format{
	"json": {"application/json; charset=utf-8", "json", writeJSON},
	"csv":  {"text/csv; charset=utf-8", "csv", writeCSV},
	"xlsx": {"application/vnd.openxmlformats-officedocument.spreadsheetml.sheet", "xlsx", writeXLSX},
	"pdf":  {"application/pdf", "pdf", writePDF},
	"rss":  {"application/rss+xml; charset=utf-8", "xml", writeRSS},
	"atom": {"application/atom+xml; charset=utf-8", "atom", writeAtom},
}

// Formats lists supported format names.
func Formats() []string {
	out := make([]string, 0, len(formats))
	for name := range formats {
		out = append(out, name)
	}
	sort.Strings(out)
	return out
}

// Supported reports whether name is a known format.
func Supported(name string) bool {
	_, ok := formats[strings.ToLower(name)]
	return ok
}

func ContentType(name string) string {
	return formats[strings.ToLower(name)].contentType
}

// Filename is the download name news_<yyyymmdd-hhmmss>.<ext>.
func Filename(name string, t time.Time) string {
	return fmt.Sprintf("news_%s.%s", t.Format("20060102-150405"), formats[strings.ToLower(name)].ext)
}

// Write encodes items in the named format.
func Write(w io.Writer, name string, items []news.Item, meta Meta) error {
	name = strings.ToLower(name)
	f, ok := formats[name]
	if !ok {
		return fmt.Errorf("unsupported format %q (supported: %s)", name, strings.Join(Formats(), ", "))
	}
	if meta.Generated.IsZero() {
		meta.Generated = time.Now()
	}
	if meta.Title == "" {
		meta.Title = "News"
	}
	if err := f.write(w, items, meta); err != nil {
		return fmt.Errorf("export %s: %w", name, err)
	}
	metrics.Exports.WithLabelValues(name).Inc()
	return nil
}

var columns = []string{"Date", "Source", "Title", "Link", "Category", "Sentiment", "Summary"}

func row(n news.Item) []string {
	summary := n.Summary
	if n.AISummary != "" {
		summary = n.AISummary
	}
	return []string{
		formatDate(n),
		n.Source,
		n.Title,
		n.Link,
		n.Category,
		n.Sentiment,
		summary,
	}
}

func formatDate(n news.Item) string {
	d := n.Date()
	if d.IsZero() {
		return ""
	}
	return d.Format("2006-01-02 15:04:05")
}
