// Package scraper extracts headlines from listing pages and text from article pages.
package scraper

import (
	"bytes"
	"errors"
	"fmt"
	"net/url"
	"regexp"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"

	"github.com/deusflow/newsdesk/internal/logger"
	"github.com/deusflow/newsdesk/internal/news"
)

// ErrAnchorNotFound is returned when a page lacks the section the source expects.
var ErrAnchorNotFound = errors.New("anchor section not found")

// minStrategyItems is the yield at which a strategy is accepted without trying the rest.
const minStrategyItems = 3

// Selectors configure the listing strategy of one source. Empty Item means
// only the generic strategies are tried.
type Selectors struct {
	Anchor  string `yaml:"anchor,omitempty" json:"anchor,omitempty"`
	Item    string `yaml:"item,omitempty" json:"item,omitempty"`
	Title   string `yaml:"title,omitempty" json:"title,omitempty"`
	Link    string `yaml:"link,omitempty" json:"link,omitempty"`
	Summary string `yaml:"summary,omitempty" json:"summary,omitempty"`
	Image   string `yaml:"image,omitempty" json:"image,omitempty"`
	Date    string `yaml:"date,omitempty" json:"date,omitempty"`
}

type headline struct {
	title, link, summary, image, date string
}

type strategy struct {
	name string
	run  func(doc *goquery.Document) []headline
}

var articlePath = regexp.MustCompile(`(/news/|/article|/story/|/\d{4}/\d{1,2}/\d{1,2}/)`)

// ParseListing extracts headlines from an HTML listing page. Strategies are
// tried in order; the first yielding enough items wins, else the richest.
func ParseListing(body []byte, pageURL, sourceName string, sel Selectors, limit int, fetchedAt time.Time) ([]news.Item, error) {
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("parse html %s: %w", sourceName, err)
	}
	if sel.Anchor != "" && doc.Find(sel.Anchor).Length() == 0 {
		return nil, fmt.Errorf("%s: %w (%s)", sourceName, ErrAnchorNotFound, sel.Anchor)
	}

	base, _ := url.Parse(pageURL)

	enough := minStrategyItems
	if limit > 0 && limit < enough {
		enough = limit
	}

	var best []news.Item
	for _, st := range strategies(sel) {
		items := toItems(st.run(doc), base, sourceName, limit, fetchedAt)
		logger.Debug("listing strategy", "source", sourceName, "strategy", st.name, "items", len(items))
		if len(items) >= enough {
			return items, nil
		}
		if len(items) > len(best) {
			best = items
		}
	}
	return best, nil
}

func strategies(sel Selectors) []strategy {
	var out []strategy
	if sel.Item != "" {
		out = append(out, strategy{"configured", func(doc *goquery.Document) []headline {
			return configured(doc, sel)
		}})
	}
	return append(out,
		strategy{"article", articleBlocks},
		strategy{"headline-anchors", selectorAnchors("h2 a, h3 a")},
		strategy{"classed-anchors", selectorAnchors(".headline a, .title a, .story a, .news-title a, a.headline, a.title")},
		strategy{"article-paths", articlePathAnchors},
	)
}

func configured(doc *goquery.Document, sel Selectors) []headline {
	var out []headline
	doc.Find(sel.Item).Each(func(_ int, s *goquery.Selection) {
		h := headline{
			title: textOf(s, sel.Title),
			link:  attrOf(s, orDefault(sel.Link, "a"), "href"),
		}
		if sel.Title == "" {
			h.title = text(s.Find("a").First())
		}
		if sel.Summary != "" {
			h.summary = textOf(s, sel.Summary)
		}
		if sel.Image != "" {
			h.image = imageSrc(s.Find(sel.Image).First())
		}
		if sel.Date != "" {
			d := s.Find(sel.Date).First()
			h.date = strings.TrimSpace(d.AttrOr("datetime", d.Text()))
		}
		out = append(out, h)
	})
	return out
}

func articleBlocks(doc *goquery.Document) []headline {
	var out []headline
	doc.Find("article").Each(func(_ int, s *goquery.Selection) {
		t := s.Find("h1, h2, h3").First()
		a := t.Find("a").First()
		if a.Length() == 0 {
			a = s.Find("a[href]").First()
		}
		title := text(t)
		if title == "" {
			title = text(a)
		}
		tm := s.Find("time").First()
		out = append(out, headline{
			title:   title,
			link:    a.AttrOr("href", ""),
			summary: text(s.Find("p").First()),
			image:   imageSrc(s.Find("img").First()),
			date:    strings.TrimSpace(tm.AttrOr("datetime", "")),
		})
	})
	return out
}

func selectorAnchors(selector string) func(doc *goquery.Document) []headline {
	return func(doc *goquery.Document) []headline {
		var out []headline
		doc.Find(selector).Each(func(_ int, a *goquery.Selection) {
			out = append(out, headline{title: text(a), link: a.AttrOr("href", "")})
		})
		return out
	}
}

func articlePathAnchors(doc *goquery.Document) []headline {
	var out []headline
	doc.Find("a[href]").Each(func(_ int, a *goquery.Selection) {
		href := a.AttrOr("href", "")
		title := text(a)
		if !articlePath.MatchString(href) || len([]rune(title)) < 20 {
			return
		}
		out = append(out, headline{title: title, link: href})
	})
	return out
}

// toItems resolves links, drops incomplete and repeated entries and applies limit.
func toItems(hs []headline, base *url.URL, sourceName string, limit int, fetchedAt time.Time) []news.Item {
	seen := make(map[string]bool)
	var items []news.Item
	for _, h := range hs {
		if limit > 0 && len(items) >= limit {
			break
		}
		link := resolve(base, h.link)
		if h.title == "" || link == "" || seen[link] {
			continue
		}
		seen[link] = true
		items = append(items, news.Item{
			Source:    sourceName,
			Title:     h.title,
			Summary:   h.summary,
			Link:      link,
			Published: parseDate(h.date),
			FetchedAt: fetchedAt,
			ImageURL:  resolve(base, h.image),
		})
	}
	return items
}

func resolve(base *url.URL, href string) string {
	href = strings.TrimSpace(href)
	if href == "" || strings.HasPrefix(href, "#") || strings.HasPrefix(strings.ToLower(href), "javascript:") {
		return ""
	}
	u, err := url.Parse(href)
	if err != nil {
		return ""
	}
	if base != nil {
		u = base.ResolveReference(u)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return ""
	}
	u.Fragment = ""
	return u.String()
}

var dateLayouts = []string{
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006-01-02",
	time.RFC1123Z,
	time.RFC1123,
}

// parseDate returns the zero time for empty or unknown formats.
func parseDate(s string) time.Time {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}
	}
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t
		}
	}
	return time.Time{}
}

func text(s *goquery.Selection) string {
	return strings.Join(strings.Fields(s.Text()), " ")
}

func textOf(s *goquery.Selection, selector string) string {
	if selector == "" {
		return ""
	}
	return text(s.Find(selector).First())
}

func attrOf(s *goquery.Selection, selector, attr string) string {
	if s.Is(selector) {
		return s.AttrOr(attr, "")
	}
	return s.Find(selector).First().AttrOr(attr, "")
}

func imageSrc(img *goquery.Selection) string {
	for _, attr := range []string{"src", "data-src", "data-lazy-src"} {
		if v := strings.TrimSpace(img.AttrOr(attr, "")); v != "" && !strings.HasPrefix(v, "data:") {
			return v
		}
	}
	return ""
}

func orDefault(s, def string) string {
	if s == "" {
		return def
	}
	return s
}
