package news

import (
	"sort"
	"strings"
	"time"
	"unicode"
)

// MatchKeywords reports whether the item text contains any of the keywords,
// ignoring case. Blank keywords are ignored; no keywords matches everything.
func MatchKeywords(n Item, keywords []string) bool {
	text := strings.ToLower(n.Text())
	active := false
	for _, k := range keywords {
		k = strings.ToLower(strings.TrimSpace(k))
		if k == "" {
			continue
		}
		active = true
		if strings.Contains(text, k) {
			return true
		}
	}
	return !active
}

// InDateRange checks the item date against inclusive day bounds. to covers the
// whole day it names. Items with an unknown publication date are kept.
func InDateRange(n Item, from, to time.Time) bool {
	if n.Published.IsZero() {
		return true
	}
	if !from.IsZero() && n.Published.Before(from) {
		return false
	}
	if !to.IsZero() && !n.Published.Before(endOfDay(to)) {
		return false
	}
	return true
}

func endOfDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location()).AddDate(0, 0, 1)
}

// MatchCategory compares the derived category, case-insensitively. An empty
// category matches all items.
func MatchCategory(n Item, category string) bool {
	category = strings.TrimSpace(category)
	if category == "" {
		return true
	}
	return strings.EqualFold(n.Category, category)
}

// Filter applies the keyword, date and category filters of q.
func Filter(items []Item, q Query) []Item {
	out := make([]Item, 0, len(items))
	for _, n := range items {
		if !MatchKeywords(n, q.Keywords) {
			continue
		}
		if !InDateRange(n, q.From, q.To) {
			continue
		}
		if !MatchCategory(n, q.Category) {
			continue
		}
		out = append(out, n)
	}
	return out
}

// DedupeByTitle drops items whose normalised title was already seen and
// returns the kept items with the number of dropped ones. First occurrence wins.
func DedupeByTitle(items []Item) ([]Item, int) {
	seen := make(map[string]struct{}, len(items))
	out := make([]Item, 0, len(items))
	for _, n := range items {
		key := TitleKey(n.Title)
		if key == "" {
			key = n.Link
		}
		if _, dup := seen[key]; dup {
			continue
		}
		seen[key] = struct{}{}
		out = append(out, n)
	}
	return out, len(items) - len(out)
}

// TitleKey folds case, punctuation and whitespace so that the same headline
// from two feeds maps to one key.
func TitleKey(title string) string {
	b := make([]rune, 0, len(title))
	for _, r := range strings.ToLower(title) {
		if unicode.IsLetter(r) || unicode.IsNumber(r) {
			b = append(b, r)
		} else {
			b = append(b, ' ')
		}
	}
	return strings.Join(strings.Fields(string(b)), " ")
}

// Sort orders items newest first; items without a publication date go last,
// keeping their relative order.
func Sort(items []Item) {
	sort.SliceStable(items, func(i, j int) bool {
		a, b := items[i].Published, items[j].Published
		if a.IsZero() != b.IsZero() {
			return !a.IsZero()
		}
		return a.After(b)
	})
}
