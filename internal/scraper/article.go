package scraper

import (
	"bytes"
	"errors"
	"fmt"
	"net/url"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// ErrNoContent is returned when an article page has no readable text.
var ErrNoContent = errors.New("can't get content")

// Article is the readable part of an article page.
type Article struct {
	Title       string
	Description string
	Content     string
	ImageURL    string
	URL         string
}

var contentSelectors = []string{
	"article p",
	".article-body p",
	".article-content p",
	".article p",
	".content p",
	".post-content p",
	".entry-content p",
	"main p",
	"#content p",
	".text p",
	"p",
}

// ExtractArticle reads title, description, lead image and body text from an
// article page. og: meta tags are preferred over page markup.
func ExtractArticle(body []byte, pageURL string) (*Article, error) {
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("error parsing HTML: %w", err)
	}

	a := &Article{
		Title:       meta(doc, "og:title"),
		Description: meta(doc, "og:description"),
		ImageURL:    meta(doc, "og:image"),
		Content:     cleanContent(extractContent(doc)),
		URL:         pageURL,
	}
	if a.Title == "" {
		a.Title = extractTitle(doc)
	}
	if a.Description == "" {
		a.Description = meta(doc, "description")
	}
	if a.ImageURL == "" {
		a.ImageURL = imageSrc(doc.Find("article img, main img").First())
	}
	if base, err := url.Parse(pageURL); err == nil {
		a.ImageURL = resolve(base, a.ImageURL)
	}

	if a.Content == "" && a.Description == "" {
		return nil, ErrNoContent
	}
	return a, nil
}

func meta(doc *goquery.Document, name string) string {
	sel := fmt.Sprintf(`meta[property=%q], meta[name=%q]`, name, name)
	return strings.TrimSpace(doc.Find(sel).First().AttrOr("content", ""))
}

// extractContent collects paragraphs from the first selector that yields
// three or more of them.
func extractContent(doc *goquery.Document) string {
	var best []string
	for _, selector := range contentSelectors {
		var paragraphs []string
		doc.Find(selector).Each(func(_ int, s *goquery.Selection) {
			text := strings.TrimSpace(s.Text())
			if len([]rune(text)) > 20 {
				paragraphs = append(paragraphs, text)
			}
		})
		if len(paragraphs) >= 3 {
			return strings.Join(paragraphs, "\n\n")
		}
		if len(paragraphs) > len(best) {
			best = paragraphs
		}
	}
	return strings.Join(best, "\n\n")
}

func extractTitle(doc *goquery.Document) string {
	selectors := []string{
		"h1",
		".article-title",
		".headline",
		".entry-title",
		"title",
	}

	for _, selector := range selectors {
		title := strings.TrimSpace(doc.Find(selector).First().Text())
		if title != "" {
			return title
		}
	}
	return ""
}

var junkIndicators = []string{
	"cookie", "gdpr", "subscribe", "newsletter", "read more", "read also",
	"follow us", "share this", "all rights reserved",
	"اقرأ أيضا", "اقرأ أيضاً", "تابعونا", "اشترك", "جميع الحقوق محفوظة",
}

// cleanContent drops junk lines, joins short lines into paragraphs and caps the
// text at roughly 1600 characters on a paragraph boundary.
func cleanContent(content string) string {
	if content == "" {
		return ""
	}

	var cleanLines []string
	var currentParagraph strings.Builder
	flush := func() {
		paragraph := strings.TrimSpace(currentParagraph.String())
		if len([]rune(paragraph)) > 30 {
			cleanLines = append(cleanLines, paragraph)
		}
		currentParagraph.Reset()
	}

	for _, line := range strings.Split(content, "\n") {
		line = strings.Join(strings.Fields(line), " ")

		if len([]rune(line)) < 8 {
			flush()
			continue
		}
		if isJunk(line) {
			continue
		}

		if currentParagraph.Len() > 0 {
			currentParagraph.WriteString(" ")
		}
		currentParagraph.WriteString(line)

		if strings.HasSuffix(line, ".") || strings.HasSuffix(line, "!") || strings.HasSuffix(line, "?") || strings.HasSuffix(line, "؟") {
			flush()
		}
	}
	flush()

	resultText := strings.Join(cleanLines, "\n\n")
	if len([]rune(resultText)) <= 1800 {
		return resultText
	}

	var selected []string
	total := 0
	for _, paragraph := range cleanLines {
		n := len([]rune(paragraph))
		if total+n >= 1600 {
			break
		}
		selected = append(selected, paragraph)
		total += n + 2
	}
	if len(selected) == 0 {
		return string([]rune(resultText)[:1600])
	}
	return strings.Join(selected, "\n\n")
}

func isJunk(line string) bool {
	lower := strings.ToLower(line)
	for _, indicator := range junkIndicators {
		if strings.Contains(lower, indicator) {
			return true
		}
	}
	return false
}
