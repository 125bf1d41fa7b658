// Package app wires the news pipeline and its backends.
package app

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/deusflow/newsdesk/internal/ai"
	"github.com/deusflow/newsdesk/internal/category"
	"github.com/deusflow/newsdesk/internal/logger"
	"github.com/deusflow/newsdesk/internal/metrics"
	"github.com/deusflow/newsdesk/internal/news"
	"github.com/deusflow/newsdesk/internal/sentiment"
	"github.com/deusflow/newsdesk/internal/source"
	"github.com/deusflow/newsdesk/internal/storage"
)

// ErrInvalidQuery marks errors caused by the query rather than the system.
var ErrInvalidQuery = errors.New("invalid query")

// Fetcher collects items from sources. source.Fetcher implements it.
type Fetcher interface {
	FetchAll(ctx context.Context, sources []source.Source) ([]news.Item, []*source.SourceError)
	Enrich(ctx context.Context, items []news.Item, n int) int
}

// Stats counts items through the pipeline stages.
type Stats struct {
	Sources    int       `json:"sources"`
	Failed     int       `json:"failed"`
	Fetched    int       `json:"fetched"`
	Matched    int       `json:"matched"`
	Duplicates int       `json:"duplicates"`
	Returned   int       `json:"returned"`
	Enriched   int       `json:"enriched"`
	Summarized int       `json:"summarized"`
	StartedAt  time.Time `json:"started_at"`
	DurationMS int64     `json:"duration_ms"`
}

// Result is the outcome of one run. Warnings list failed sources; Notices
// carry other non-fatal remarks for the user.
type Result struct {
	Items    []news.Item           `json:"items"`
	Warnings []*source.SourceError `json:"warnings,omitempty"`
	Notices  []string              `json:"notices,omitempty"`
	Stats    Stats                 `json:"stats"`
}

type PipelineOptions struct {
	MaxResults   int
	EnrichMax    int
	MaxAISummary int
}

// Pipeline runs fetch, annotate, filter, dedupe and sort for a query.
type Pipeline struct {
	sources    []source.Source
	fetcher    Fetcher
	analyzer   *sentiment.Analyzer
	classifier *category.Classifier
	summarizer ai.Summarizer   // optional
	history    storage.History // optional
	opts       PipelineOptions
	now        func() time.Time
}

func NewPipeline(sources []source.Source, fetcher Fetcher, classifier *category.Classifier, summarizer ai.Summarizer, history storage.History, opts PipelineOptions) *Pipeline {
	if opts.MaxResults <= 0 {
		opts.MaxResults = 200
	}
	if classifier == nil {
		classifier = category.New(nil)
	}
	return &Pipeline{
		sources:    sources,
		fetcher:    fetcher,
		analyzer:   sentiment.New(),
		classifier: classifier,
		summarizer: summarizer,
		history:    history,
		opts:       opts,
		now:        time.Now,
	}
}

// Sources returns the configured sources.
func (p *Pipeline) Sources() []source.Source { return p.sources }

// Categories returns the category names items can be tagged with.
func (p *Pipeline) Categories() []string { return p.classifier.Names() }

// Run executes one query. Source failures are reported in the result and
// never fail the run; only an invalid query returns an error.
func (p *Pipeline) Run(ctx context.Context, q news.Query) (*Result, error) {
	start := p.now()
	res := &Result{Stats: Stats{StartedAt: start}}

	if !q.From.IsZero() && !q.To.IsZero() && q.To.Before(q.From) {
		return nil, fmt.Errorf("%w: 'to' date is before 'from' date", ErrInvalidQuery)
	}
	selected, err := p.selectSources(q)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidQuery, err)
	}
	res.Stats.Sources = len(selected)

	items, failed := p.fetcher.FetchAll(ctx, selected)
	res.Warnings = failed
	res.Stats.Failed = len(failed)
	res.Stats.Fetched = len(items)
	metrics.Items.WithLabelValues("fetched").Add(float64(len(items)))

	if q.Enrich && p.opts.EnrichMax > 0 {
		res.Stats.Enriched = p.fetcher.Enrich(ctx, items, p.opts.EnrichMax)
	}

	// The category filter needs tags, so annotation comes first.
	p.analyzer.Annotate(items)
	p.classifier.Annotate(items)

	matched := news.Filter(items, q)
	res.Stats.Matched = len(matched)
	metrics.Items.WithLabelValues("matched").Add(float64(len(matched)))

	unique, dups := news.DedupeByTitle(matched)
	res.Stats.Duplicates = dups
	metrics.Items.WithLabelValues("duplicate").Add(float64(dups))

	news.Sort(unique)

	limit := q.Limit
	if limit <= 0 || limit > p.opts.MaxResults {
		limit = p.opts.MaxResults
	}
	if len(unique) > limit {
		unique = unique[:limit]
	}

	if q.Summarize {
		if p.summarizer == nil {
			res.Notices = append(res.Notices, "AI summaries are not configured")
		} else {
			res.Stats.Summarized = ai.SummarizeItems(ctx, p.summarizer, unique, p.opts.MaxAISummary)
		}
	}

	if unique == nil {
		unique = []news.Item{}
	}
	res.Items = unique
	res.Stats.Returned = len(unique)
	metrics.Items.WithLabelValues("returned").Add(float64(len(unique)))

	elapsed := p.now().Sub(start)
	res.Stats.DurationMS = elapsed.Milliseconds()

	p.record(ctx, q, res)

	if len(selected) > 0 && len(failed) == len(selected) {
		metrics.Global.SetError(fmt.Sprintf("all %d sources failed", len(failed)))
	} else {
		metrics.Global.RecordRun(elapsed)
	}

	logger.Info("pipeline run",
		"sources", res.Stats.Sources,
		"failed", res.Stats.Failed,
		"fetched", res.Stats.Fetched,
		"matched", res.Stats.Matched,
		"duplicates", res.Stats.Duplicates,
		"returned", res.Stats.Returned,
		"duration", elapsed)
	return res, nil
}

func (p *Pipeline) selectSources(q news.Query) ([]source.Source, error) {
	if strings.TrimSpace(q.URL) == "" {
		return source.Select(p.sources, q.Sources)
	}
	if len(q.Sources) > 0 {
		return nil, errors.New("url and source cannot be combined")
	}
	s, err := source.ForURL(p.sources, q.URL, source.Kind(q.URLKind))
	if err != nil {
		return nil, err
	}
	return []source.Source{s}, nil
}

func (p *Pipeline) record(ctx context.Context, q news.Query, res *Result) {
	if p.history == nil {
		return
	}
	run := storage.NewRun(res.Stats.StartedAt, q, res.Items)
	run.Fetched = res.Stats.Fetched
	run.Matched = res.Stats.Matched
	run.Duplicates = res.Stats.Duplicates
	run.Warnings = len(res.Warnings)
	run.DurationMS = res.Stats.DurationMS
	if err := p.history.Record(ctx, run); err != nil {
		logger.Warn("failed to record history", "error", err)
	}
}
