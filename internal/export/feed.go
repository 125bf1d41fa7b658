package export

import (
	"io"

	"github.com/gorilla/feeds"

	"github.com/deusflow/newsdesk/internal/news"
)

func buildFeed(items []news.Item, meta Meta) *feeds.Feed {
	link := meta.Link
	if link == "" {
		link = "http://localhost/"
	}
	feed := &feeds.Feed{
		Title:       meta.Title,
		Link:        &feeds.Link{Href: link},
		Description: meta.Description,
		Created:     meta.Generated,
	}
	for _, n := range items {
		description := n.Summary
		if n.AISummary != "" {
			description = n.AISummary
		}
		fi := &feeds.Item{
			Title:       n.Title,
			Link:        &feeds.Link{Href: n.Link},
			Description: description,
			Author:      &feeds.Author{Name: n.Source},
			Id:          n.Link,
			Created:     n.Date(),
		}
		feed.Items = append(feed.Items, fi)
	}
	return feed
}

func writeRSS(w io.Writer, items []news.Item, meta Meta) error {
	return buildFeed(items, meta).WriteRss(w)
}

func writeAtom(w io.Writer, items []news.Item, meta Meta) error {
	return buildFeed(items, meta).WriteAtom(w)
}
