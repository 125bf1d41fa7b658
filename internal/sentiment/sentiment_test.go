package sentiment

import (
	"testing"

	"github.com/deusflow/newsdesk/internal/news"
)

func TestScore_Labels(t *testing.T) {
	a := New()
	cases := []struct {
		name string
		text string
		want string
	}{
		{name: "positive english", text: "Team celebrates historic victory and record growth", want: news.Positive},
		{name: "negative english", text: "Earthquake kills dozens, deaths expected to rise", want: news.Negative},
		{name: "no lexicon words", text: "Parliament meets on Tuesday", want: news.Neutral},
		{name: "balanced", text: "Peace talks collapse", want: news.Neutral},
		{name: "negated positive", text: "The plan is not good", want: news.Negative},
		{name: "arabic negative", text: "مقتل ثلاثة في انفجار بالعاصمة", want: news.Negative},
		{name: "arabic with article prefix", text: "النمو والازدهار في الاقتصاد", want: news.Positive},
	}
	for _, tt := range cases {
		t.Run(tt.name, func(t *testing.T) {
			p, _ := a.Score(tt.text)
			if got := Label(p); got != tt.want {
				t.Errorf("Label(Score(%q)) = %s (%.2f), want %s", tt.text, got, p, tt.want)
			}
		})
	}
}

func TestScore_Bounds(t *testing.T) {
	a := New()
	p, hits := a.Score("war war war crisis")
	if p != -1 || hits != 4 {
		t.Errorf("Score = %.2f/%d, want -1/4", p, hits)
	}
	p, hits = a.Score("")
	if p != 0 || hits != 0 {
		t.Errorf("empty text Score = %.2f/%d, want 0/0", p, hits)
	}
}

func TestAnnotate(t *testing.T) {
	items := []news.Item{
		{Title: "Stocks surge on strong profit"},
		{Title: "Flood disaster"},
	}
	New().Annotate(items)
	if items[0].Sentiment != news.Positive || items[1].Sentiment != news.Negative {
		t.Errorf("unexpected labels: %q, %q", items[0].Sentiment, items[1].Sentiment)
	}
}
