package news

import (
	"testing"
	"time"
)

func TestMatchKeywords_SubstringIgnoringCase(t *testing.T) {
	n := Item{Title: "Central Bank raises rates", Summary: "Inflation remains high"}

	if !MatchKeywords(n, []string{"bank"}) {
		t.Errorf("expected title substring match")
	}
	if !MatchKeywords(n, []string{"sport", "INFLATION"}) {
		t.Errorf("expected summary match on second keyword")
	}
	if MatchKeywords(n, []string{"football"}) {
		t.Errorf("unexpected match for keyword absent from text")
	}
}

func TestMatchKeywords_EmptyListMatchesEverything(t *testing.T) {
	n := Item{Title: "anything"}
	if !MatchKeywords(n, nil) {
		t.Errorf("nil keywords should match")
	}
	if !MatchKeywords(n, []string{"", "  "}) {
		t.Errorf("blank keywords should be ignored")
	}
}

func TestMatchKeywords_Arabic(t *testing.T) {
	n := Item{Title: "آخر الأخبار عن الاقتصاد المصري"}
	if !MatchKeywords(n, []string{"الاقتصاد"}) {
		t.Errorf("expected Arabic keyword match")
	}
}

func TestInDateRange(t *testing.T) {
	from := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)
	to := time.Date(2024, 3, 10, 0, 0, 0, 0, time.UTC)

	cases := []struct {
		name      string
		published time.Time
		want      bool
	}{
		{name: "before range", published: time.Date(2024, 2, 28, 23, 0, 0, 0, time.UTC), want: false},
		{name: "first day", published: from, want: true},
		{name: "last day evening", published: time.Date(2024, 3, 10, 22, 30, 0, 0, time.UTC), want: true},
		{name: "after range", published: time.Date(2024, 3, 11, 0, 0, 0, 0, time.UTC), want: false},
		{name: "unknown date kept", published: time.Time{}, want: true},
	}
	for _, tt := range cases {
		t.Run(tt.name, func(t *testing.T) {
			if got := InDateRange(Item{Published: tt.published}, from, to); got != tt.want {
				t.Errorf("InDateRange(%v) = %v, want %v", tt.published, got, tt.want)
			}
		})
	}
}

func TestFilter_CombinesAllConditions(t *testing.T) {
	day := time.Date(2024, 5, 5, 12, 0, 0, 0, time.UTC)
	items := []Item{
		{Title: "Election results announced", Category: "politics", Published: day},
		{Title: "Election fever in football", Category: "sports", Published: day},
		{Title: "Old election story", Category: "politics", Published: day.AddDate(0, -1, 0)},
		{Title: "Weather update", Category: "general", Published: day},
	}

	got := Filter(items, Query{
		Keywords: []string{"election"},
		From:     day.AddDate(0, 0, -1),
		Category: "Politics",
	})
	if len(got) != 1 || got[0].Title != "Election results announced" {
		t.Fatalf("unexpected filter result: %+v", got)
	}
}

func TestDedupeByTitle_FirstOccurrenceWins(t *testing.T) {
	items := []Item{
		{Source: "A", Title: "Markets rally, again!"},
		{Source: "B", Title: "markets   rally again"},
		{Source: "C", Title: "Something else"},
	}

	got, dropped := DedupeByTitle(items)
	if dropped != 1 {
		t.Errorf("dropped = %d, want 1", dropped)
	}
	if len(got) != 2 || got[0].Source != "A" || got[1].Source != "C" {
		t.Errorf("unexpected dedupe result: %+v", got)
	}
}

func TestDedupeByTitle_EmptyTitleFallsBackToLink(t *testing.T) {
	items := []Item{
		{Title: "", Link: "https://a.example/1"},
		{Title: "", Link: "https://a.example/2"},
		{Title: "", Link: "https://a.example/1"},
	}
	got, dropped := DedupeByTitle(items)
	if len(got) != 2 || dropped != 1 {
		t.Errorf("got %d items, %d dropped; want 2 and 1", len(got), dropped)
	}
}

func TestSort_NewestFirstUnknownLast(t *testing.T) {
	t1 := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	items := []Item{
		{Title: "undated-1"},
		{Title: "old", Published: t1},
		{Title: "new", Published: t1.Add(time.Hour)},
		{Title: "undated-2"},
	}
	Sort(items)

	want := []string{"new", "old", "undated-1", "undated-2"}
	for i, w := range want {
		if items[i].Title != w {
			t.Fatalf("position %d = %q, want %q", i, items[i].Title, w)
		}
	}
}

func TestParseKeywords(t *testing.T) {
	got := ParseKeywords(" gaza, ،مصر , ,economy ")
	want := []string{"gaza", "مصر", "economy"}
	if len(got) != len(want) {
		t.Fatalf("ParseKeywords = %q, want %q", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("keyword %d = %q, want %q", i, got[i], want[i])
		}
	}
}
