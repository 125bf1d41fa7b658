// Package source describes news sources and fetches them concurrently.
package source

import (
	"fmt"
	"net/url"
	"strings"

	"github.com/deusflow/newsdesk/internal/scraper"
)

type Kind string

const (
	KindRSS  Kind = "rss"
	KindHTML Kind = "html"
)

// DefaultLimit caps items per source when the source sets none.
const DefaultLimit = 20

// Source is one configured feed or listing page.
type Source struct {
	Name      string            `yaml:"name" json:"name"`
	Kind      Kind              `yaml:"kind" json:"kind"`
	URL       string            `yaml:"url" json:"url"`
	Lang      string            `yaml:"lang,omitempty" json:"lang,omitempty"`
	Limit     int               `yaml:"limit,omitempty" json:"limit,omitempty"`
	Selectors scraper.Selectors `yaml:"selectors,omitempty" json:"selectors,omitempty"`
}

// Normalize fills defaults and validates the source.
func (s *Source) Normalize() error {
	s.Name = strings.TrimSpace(s.Name)
	s.URL = strings.TrimSpace(s.URL)
	s.Kind = Kind(strings.ToLower(strings.TrimSpace(string(s.Kind))))

	if s.Name == "" {
		return fmt.Errorf("source name is required")
	}
	if s.URL == "" {
		return fmt.Errorf("source %q: url is required", s.Name)
	}
	u, err := url.Parse(s.URL)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return fmt.Errorf("source %q: invalid url %q", s.Name, s.URL)
	}
	if s.Kind == "" {
		s.Kind = KindRSS
	}
	if s.Kind != KindRSS && s.Kind != KindHTML {
		return fmt.Errorf("source %q: unknown kind %q (want rss or html)", s.Name, s.Kind)
	}
	if s.Limit < 0 {
		return fmt.Errorf("source %q: limit must not be negative", s.Name)
	}
	if s.Limit == 0 {
		s.Limit = DefaultLimit
	}
	return nil
}

// Select returns the sources with the given names in configuration order.
// No names selects all. Unknown names are an error.
func Select(all []Source, names []string) ([]Source, error) {
	if len(names) == 0 {
		return all, nil
	}
	want := make(map[string]bool, len(names))
	for _, n := range names {
		n = strings.TrimSpace(n)
		if n != "" {
			want[strings.ToLower(n)] = true
		}
	}
	if len(want) == 0 {
		return all, nil
	}

	var out []Source
	for _, s := range all {
		if want[strings.ToLower(s.Name)] {
			out = append(out, s)
			delete(want, strings.ToLower(s.Name))
		}
	}
	if len(want) > 0 {
		var unknown []string
		for n := range want {
			unknown = append(unknown, n)
		}
		return nil, fmt.Errorf("unknown source(s): %s", strings.Join(unknown, ", "))
	}
	return out, nil
}

// ForURL builds a one-off source for a page or feed the user typed in. A
// configured html source on the same host lends its name and selectors;
// otherwise the page goes through the generic strategy chain.
// Normalize still validates the scheme and kind. An empty kind
// means html.
func ForURL(all []Source, rawURL string, kind Kind) (Source, error) {
	s := Source{Kind: kind, URL: strings.TrimSpace(rawURL)}
	if s.Kind == "" {
		s.Kind = KindHTML
	}
	u, err := url.Parse(s.URL)
	if err != nil || u.Host == "" {
		return Source{}, fmt.Errorf("invalid url %q", rawURL)
	}
	s.Name = u.Hostname()

	host := bareHost(u.Hostname())
	for _, c := range all {
		cu, err := url.Parse(c.URL)
		if err != nil || c.Kind != KindHTML || bareHost(cu.Hostname()) != host {
			continue
		}
		if Kind(strings.ToLower(string(s.Kind))) == KindHTML {
			s.Name = c.Name
			s.Lang = c.Lang
			s.Limit = c.Limit
			s.Selectors = c.Selectors
			// The anchor section only exists on the configured page.
			if strings.Trim(cu.Path, "/") != strings.Trim(u.Path, "/") {
				s.Selectors.Anchor = ""
			}
		}
		break
	}
	if err := s.Normalize(); err != nil {
		return Source{}, err
	}
	return s, nil
}

func bareHost(h string) string {
	return strings.TrimPrefix(strings.ToLower(h), "www.")
}
