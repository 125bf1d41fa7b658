package source

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/deusflow/newsdesk/internal/cache"
	"github.com/deusflow/newsdesk/internal/fetch"
	"github.com/deusflow/newsdesk/internal/news"
	"github.com/deusflow/newsdesk/internal/scraper"
)

const feedXML = `<?xml version="1.0"?><rss version="2.0"><channel><title>T</title>
<item><title>Feed one</title><link>https://example.com/1</link><description>d</description></item>
<item><title>Feed two</title><link>https://example.com/2</link></item>
</channel></rss>`

const listingHTML = `<html><body>
<div class="card"><a href="/s/1"><h3>Scraped one</h3></a></div>
<div class="card"><a href="/s/2"><h3>Scraped two</h3></a></div>
<div class="card"><a href="/s/3"><h3>Scraped three</h3></a></div>
</body></html>`

const articleHTML = `<html><head><meta property="og:description" content="From the page"><meta property="og:image" content="/img.jpg"></head>
<body><article><p>Paragraph long enough to count as article text.</p></article></body></html>`

func newServer(t *testing.T, hits *int32) *httptest.Server {
	t.Helper()
	mux := http.NewServeMux()
	mux.HandleFunc("/feed", func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(hits, 1)
		_, _ = w.Write([]byte(feedXML))
	})
	mux.HandleFunc("/listing", func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(listingHTML))
	})
	mux.HandleFunc("/broken", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	})
	mux.HandleFunc("/article", func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(articleHTML))
	})
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv
}

func newFetcher(opts Options) *Fetcher {
	client := fetch.New(fetch.Options{Timeout: 2 * time.Second})
	return NewFetcher(client, opts)
}

func TestFetchAll_PartialFailure(t *testing.T) {
	var hits int32
	srv := newServer(t, &hits)

	sources := []Source{
		{Name: "Feed", Kind: KindRSS, URL: srv.URL + "/feed"},
		{Name: "Broken", Kind: KindRSS, URL: srv.URL + "/broken"},
		{Name: "Page", Kind: KindHTML, URL: srv.URL + "/listing", Selectors: scraper.Selectors{Item: "div.card", Title: "h3"}},
	}

	items, errs := newFetcher(Options{Concurrency: 2}).FetchAll(context.Background(), sources)

	if len(items) != 5 {
		t.Fatalf("got %d items, want 5", len(items))
	}
	if items[0].Source != "Feed" || items[2].Source != "Page" {
		t.Errorf("items not merged in source order: %q, %q", items[0].Source, items[2].Source)
	}
	if items[2].Link != srv.URL+"/s/1" {
		t.Errorf("scraped link = %q", items[2].Link)
	}
	if len(errs) != 1 || errs[0].Source != "Broken" {
		t.Fatalf("errors = %v", errs)
	}
	var serr *fetch.StatusError
	if !errors.As(errs[0], &serr) || serr.Code != http.StatusInternalServerError {
		t.Errorf("source error does not wrap status: %v", errs[0])
	}
}

func TestFetchOne_UsesCache(t *testing.T) {
	var hits int32
	srv := newServer(t, &hits)
	store := cache.New()
	defer store.Close()

	f := newFetcher(Options{Cache: store, CacheTTL: time.Minute})
	src := Source{Name: "Feed", Kind: KindRSS, URL: srv.URL + "/feed"}

	for i := 0; i < 2; i++ {
		items, err := f.FetchOne(context.Background(), src)
		if err != nil {
			t.Fatalf("fetch %d: %v", i, err)
		}
		if len(items) != 2 {
			t.Fatalf("fetch %d: got %d items", i, len(items))
		}
	}
	if n := atomic.LoadInt32(&hits); n != 1 {
		t.Errorf("feed requested %d times, want 1", n)
	}
}

func TestFetchOne_ZeroTTLDisablesCache(t *testing.T) {
	var hits int32
	srv := newServer(t, &hits)
	store := cache.New()
	defer store.Close()

	f := newFetcher(Options{Cache: store})
	src := Source{Name: "Feed", Kind: KindRSS, URL: srv.URL + "/feed"}
	_, _ = f.FetchOne(context.Background(), src)
	_, _ = f.FetchOne(context.Background(), src)
	if n := atomic.LoadInt32(&hits); n != 2 {
		t.Errorf("feed requested %d times, want 2", n)
	}
}

func TestEnrich(t *testing.T) {
	var hits int32
	srv := newServer(t, &hits)

	items := []news.Item{
		{Title: "a", Link: srv.URL + "/article"},
		{Title: "b", Link: srv.URL + "/broken"},
		{Title: "c", Link: srv.URL + "/article", Summary: "kept", ImageURL: "x.jpg"},
	}
	n := newFetcher(Options{}).Enrich(context.Background(), items, 5)
	if n != 1 {
		t.Errorf("enriched = %d, want 1", n)
	}
	if items[0].Summary != "From the page" || items[0].ImageURL != srv.URL+"/img.jpg" {
		t.Errorf("item not enriched: %+v", items[0])
	}
	if items[2].Summary != "kept" {
		t.Errorf("complete item changed: %+v", items[2])
	}
}

func TestSelect(t *testing.T) {
	all := []Source{{Name: "A"}, {Name: "B"}, {Name: "C"}}

	got, err := Select(all, []string{"c", "A"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(got) != 2 || got[0].Name != "A" || got[1].Name != "C" {
		t.Errorf("Select = %+v", got)
	}
	if got, _ := Select(all, nil); len(got) != 3 {
		t.Errorf("empty selection should return all")
	}
	if _, err := Select(all, []string{"missing"}); err == nil {
		t.Errorf("expected error for unknown source")
	}
}

func TestNormalize(t *testing.T) {
	s := Source{Name: " Sky ", URL: "https://www.skynewsarabia.com/", Kind: "HTML"}
	if err := s.Normalize(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if s.Name != "Sky" || s.Kind != KindHTML || s.Limit != DefaultLimit {
		t.Errorf("defaults not applied: %+v", s)
	}

	bad := []Source{
		{URL: "https://x"},
		{Name: "x"},
		{Name: "x", URL: "ftp://x"},
		{Name: "x", URL: "https://x", Kind: "json"},
	}
	for _, b := range bad {
		if err := b.Normalize(); err == nil {
			t.Errorf("expected error for %+v", b)
		}
	}
}

func TestForURL(t *testing.T) {
	configured := []Source{
		{Name: "Al Jazeera", Kind: KindRSS, URL: "https://www.aljazeera.net/rss"},
		{Name: "Sky News Arabia", Kind: KindHTML, URL: "https://www.skynewsarabia.com/", Limit: 10, Lang: "ar",
			Selectors: scraper.Selectors{Anchor: "h2 a", Item: "div.comp_1_item"}},
	}

	s, err := ForURL(configured, "https://skynewsarabia.com/", "")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if s.Name != "Sky News Arabia" || s.Kind != KindHTML || s.Limit != 10 || s.Selectors.Anchor != "h2 a" {
		t.Errorf("configured selectors not reused: %+v", s)
	}

	s, err = ForURL(configured, "https://www.skynewsarabia.com/world", "html")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if s.Selectors.Item != "div.comp_1_item" || s.Selectors.Anchor != "" {
		t.Errorf("anchor must only apply to the configured page: %+v", s.Selectors)
	}

	s, err = ForURL(configured, "https://www.aljazeera.net/news/", "")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if s.Name != "www.aljazeera.net" || s.Kind != KindHTML || s.Selectors != (scraper.Selectors{}) || s.Limit != DefaultLimit {
		t.Errorf("unknown page should use the generic chain: %+v", s)
	}

	s, err = ForURL(configured, "https://feeds.example.com/rss.xml", "RSS")
	if err != nil || s.Kind != KindRSS {
		t.Errorf("rss kind: %+v, %v", s, err)
	}

	for _, bad := range []string{"", "not a url", "ftp://example.com/"} {
		if _, err := ForURL(configured, bad, ""); err == nil {
			t.Errorf("expected error for %q", bad)
		}
	}
	if _, err := ForURL(configured, "https://example.com/", "json"); err == nil {
		t.Errorf("expected error for unknown kind")
	}
}
