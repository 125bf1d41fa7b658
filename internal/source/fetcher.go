package source

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/deusflow/newsdesk/internal/cache"
	"github.com/deusflow/newsdesk/internal/logger"
	"github.com/deusflow/newsdesk/internal/metrics"
	"github.com/deusflow/newsdesk/internal/news"
	"github.com/deusflow/newsdesk/internal/rss"
	"github.com/deusflow/newsdesk/internal/scraper"
)

// Getter downloads a document. fetch.Client implements it.
type Getter interface {
	Get(ctx context.Context, url string) ([]byte, error)
}

// SourceError is a per-source failure. It is reported, never fatal to a run.
type SourceError struct {
	Source string `json:"source"`
	URL    string `json:"url"`
	Err    error  `json:"-"`
}

func (e *SourceError) Error() string {
	return fmt.Sprintf("%s: %v", e.Source, e.Err)
}

func (e *SourceError) Unwrap() error { return e.Err }

// MarshalJSON includes the error text.
func (e *SourceError) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		Source string `json:"source"`
		URL    string `json:"url"`
		Error  string `json:"error"`
	}{e.Source, e.URL, e.Err.Error()})
}

type Options struct {
	Concurrency int
	Timeout     time.Duration // per source or article
	Cache       cache.Store   // nil disables caching
	CacheTTL    time.Duration
}

// Fetcher fetches and parses sources through a bounded worker pool.
type Fetcher struct {
	client Getter
	opts   Options
	now    func() time.Time
}

func NewFetcher(client Getter, opts Options) *Fetcher {
	if opts.Concurrency <= 0 {
		opts.Concurrency = 8
	}
	if opts.Timeout <= 0 {
		opts.Timeout = 10 * time.Second
	}
	return &Fetcher{client: client, opts: opts, now: time.Now}
}

// FetchAll fetches every source. Items are merged in source order; failed
// sources are returned as errors alongside whatever succeeded.
func (f *Fetcher) FetchAll(ctx context.Context, sources []Source) ([]news.Item, []*SourceError) {
	results := make([][]news.Item, len(sources))
	errs := make([]*SourceError, len(sources))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(f.opts.Concurrency)
	for i, src := range sources {
		i, src := i, src
		g.Go(func() error {
			items, err := f.FetchOne(gctx, src)
			if err != nil {
				logger.Warn("source failed", "source", src.Name, "url", src.URL, "error", err)
				errs[i] = &SourceError{Source: src.Name, URL: src.URL, Err: err}
				return nil
			}
			results[i] = items
			return nil
		})
	}
	_ = g.Wait()

	var items []news.Item
	var failed []*SourceError
	for i := range sources {
		items = append(items, results[i]...)
		if errs[i] != nil {
			failed = append(failed, errs[i])
		}
	}
	logger.Info("sources fetched", "sources", len(sources), "failed", len(failed), "items", len(items))
	return items, failed
}

// FetchOne fetches and parses a single source with its own timeout.
func (f *Fetcher) FetchOne(ctx context.Context, src Source) ([]news.Item, error) {
	key := cache.Key("source", string(src.Kind), src.URL, strconv.Itoa(src.Limit), src.Name)
	if items, ok := f.cached(ctx, key); ok {
		metrics.SourceFetches.WithLabelValues(src.Name, "cached").Inc()
		return items, nil
	}

	start := time.Now()
	ctx, cancel := context.WithTimeout(ctx, f.opts.Timeout)
	defer cancel()

	items, err := f.fetchAndParse(ctx, src)
	metrics.FetchDuration.WithLabelValues(string(src.Kind)).Observe(time.Since(start).Seconds())
	if err != nil {
		metrics.SourceFetches.WithLabelValues(src.Name, "error").Inc()
		return nil, err
	}
	metrics.SourceFetches.WithLabelValues(src.Name, "ok").Inc()
	logger.Debug("source fetched", "source", src.Name, "items", len(items), "duration", time.Since(start))

	f.store(ctx, key, items)
	return items, nil
}

func (f *Fetcher) fetchAndParse(ctx context.Context, src Source) ([]news.Item, error) {
	body, err := f.client.Get(ctx, src.URL)
	if err != nil {
		return nil, err
	}
	now := f.now()
	switch src.Kind {
	case KindHTML:
		return scraper.ParseListing(body, src.URL, src.Name, src.Selectors, src.Limit, now)
	default:
		return rss.Parse(body, src.Name, src.Limit, now)
	}
}

func (f *Fetcher) cached(ctx context.Context, key string) ([]news.Item, bool) {
	if f.opts.Cache == nil || f.opts.CacheTTL <= 0 {
		return nil, false
	}
	b, ok, err := f.opts.Cache.Get(ctx, key)
	if err != nil {
		logger.Warn("cache get failed", "error", err)
		return nil, false
	}
	if !ok {
		return nil, false
	}
	var items []news.Item
	if err := json.Unmarshal(b, &items); err != nil {
		return nil, false
	}
	return items, true
}

func (f *Fetcher) store(ctx context.Context, key string, items []news.Item) {
	if f.opts.Cache == nil || f.opts.CacheTTL <= 0 {
		return
	}
	b, err := json.Marshal(items)
	if err != nil {
		return
	}
	if err := f.opts.Cache.Set(ctx, key, b, f.opts.CacheTTL); err != nil {
		logger.Warn("cache set failed", "error", err)
	}
}

// Enrich fetches article pages for up to n items missing a summary or image
// and fills those fields in place. Failures are logged and skipped.
func (f *Fetcher) Enrich(ctx context.Context, items []news.Item, n int) int {
	if n <= 0 {
		return 0
	}
	var idx []int
	for i := range items {
		if len(idx) >= n {
			break
		}
		if items[i].Summary == "" || items[i].ImageURL == "" {
			idx = append(idx, i)
		}
	}

	var (
		mu       sync.Mutex
		enriched int
	)
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(f.opts.Concurrency)
	for _, i := range idx {
		i := i
		link := items[i].Link
		g.Go(func() error {
			actx, cancel := context.WithTimeout(gctx, f.opts.Timeout)
			defer cancel()

			body, err := f.client.Get(actx, link)
			if err != nil {
				logger.Debug("enrich fetch failed", "url", link, "error", err)
				return nil
			}
			art, err := scraper.ExtractArticle(body, link)
			if err != nil {
				logger.Debug("enrich extract failed", "url", link, "error", err)
				return nil
			}

			mu.Lock()
			defer mu.Unlock()
			if items[i].Summary == "" {
				if art.Description != "" {
					items[i].Summary = art.Description
				} else {
					items[i].Summary = art.Content
				}
			}
			if items[i].ImageURL == "" {
				items[i].ImageURL = art.ImageURL
			}
			enriched++
			return nil
		})
	}
	_ = g.Wait()
	return enriched
}
