package category

import (
	"testing"

	"github.com/deusflow/newsdesk/internal/news"
)

func TestClassify_DefaultBags(t *testing.T) {
	c := New(nil)
	cases := []struct {
		title   string
		summary string
		want    string
	}{
		{title: "Parliament approves new government budget vote", want: "politics"},
		{title: "Oil prices jump as markets react", want: "economy"},
		{title: "Hospital warns of virus outbreak", want: "health"},
		{title: "Coach praises player after cup final", want: "sports"},
		{title: "الذكاء الاصطناعي يغير التكنولوجيا", want: "technology"},
		{title: "Local bakery opens", want: General},
	}
	for _, tt := range cases {
		got, _ := c.Classify(news.Item{Title: tt.title, Summary: tt.summary})
		if got != tt.want {
			t.Errorf("Classify(%q) = %q, want %q", tt.title, got, tt.want)
		}
	}
}

func TestClassify_ShortKeywordsNeedWholeToken(t *testing.T) {
	c := New([]Bag{{Name: "technology", Keywords: []string{"ai"}}})
	if got, _ := c.Classify(news.Item{Title: "Minister said nothing"}); got != General {
		t.Errorf("'ai' matched inside 'said': got %q", got)
	}
	if got, _ := c.Classify(news.Item{Title: "New AI rules"}); got != "technology" {
		t.Errorf("expected whole-token match, got %q", got)
	}
}

func TestClassify_TitleOutweighsSummary(t *testing.T) {
	c := New([]Bag{
		{Name: "sports", Keywords: []string{"football"}},
		{Name: "economy", Keywords: []string{"market"}},
	})
	got, score := c.Classify(news.Item{Title: "Football club sold", Summary: "The market reacted"})
	if got != "sports" || score != 2 {
		t.Errorf("got %q/%d, want sports/2", got, score)
	}
}

func TestClassify_FeedCategoryBonus(t *testing.T) {
	c := New(nil)
	got, _ := c.Classify(news.Item{Title: "Weekend roundup", Categories: []string{"Health"}})
	if got != "health" {
		t.Errorf("feed category should decide otherwise neutral item, got %q", got)
	}
}

func TestNames(t *testing.T) {
	c := New([]Bag{{Name: " Politics ", Keywords: []string{"vote"}}, {Name: ""}})
	names := c.Names()
	if len(names) != 2 || names[0] != "politics" || names[1] != General {
		t.Errorf("Names() = %v", names)
	}
}
