// Package rss turns RSS and Atom documents into news items.
package rss

import (
	"bytes"
	"fmt"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/mmcdole/gofeed"

	"github.com/deusflow/newsdesk/internal/news"
)

// Parse decodes a feed body. At most limit items are returned (0 = all).
// Items without a title and link are skipped.
func Parse(body []byte, sourceName string, limit int, fetchedAt time.Time) ([]news.Item, error) {
	parser := gofeed.NewParser()
	feed, err := parser.Parse(bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("parse feed %s: %w", sourceName, err)
	}

	items := make([]news.Item, 0, len(feed.Items))
	for _, fi := range feed.Items {
		if limit > 0 && len(items) >= limit {
			break
		}
		if fi == nil {
			continue
		}

		title := CleanText(fi.Title)
		link := strings.TrimSpace(fi.Link)
		if title == "" || link == "" {
			continue
		}

		summary := fi.Description
		if strings.TrimSpace(summary) == "" {
			summary = fi.Content
		}

		n := news.Item{
			Source:     sourceName,
			Title:      title,
			Summary:    CleanText(summary),
			Link:       link,
			FetchedAt:  fetchedAt,
			ImageURL:   imageOf(fi),
			Categories: fi.Categories,
		}
		switch {
		case fi.PublishedParsed != nil:
			n.Published = *fi.PublishedParsed
		case fi.UpdatedParsed != nil:
			n.Published = *fi.UpdatedParsed
		}
		items = append(items, n)
	}
	return items, nil
}

// CleanText strips markup, decodes entities and folds whitespace.
func CleanText(s string) string {
	s = strings.TrimSpace(s)
	if s == "" {
		return ""
	}
	if strings.ContainsAny(s, "<&") {
		doc, err := goquery.NewDocumentFromReader(strings.NewReader(s))
		if err == nil {
			s = doc.Text()
		}
	}
	return strings.Join(strings.Fields(s), " ")
}

func imageOf(fi *gofeed.Item) string {
	if fi.Image != nil && fi.Image.URL != "" {
		return fi.Image.URL
	}
	for _, enc := range fi.Enclosures {
		if enc != nil && enc.URL != "" && strings.HasPrefix(enc.Type, "image/") {
			return enc.URL
		}
	}
	for _, html := range []string{fi.Content, fi.Description} {
		if !strings.Contains(html, "<img") {
			continue
		}
		doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
		if err != nil {
			continue
		}
		if src, ok := doc.Find("img").First().Attr("src"); ok && src != "" {
			return src
		}
	}
	return ""
}
