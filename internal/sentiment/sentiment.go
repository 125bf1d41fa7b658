// Package sentiment labels text with a lexicon word-count heuristic.
package sentiment

import (
	"strings"
	"unicode"

	"github.com/deusflow/newsdesk/internal/news"
)

// Threshold is the polarity magnitude needed for a non-neutral label.
const Threshold = 0.1

var positiveWords = []string{
	"success", "successful", "win", "wins", "won", "victory", "growth", "grow", "grows",
	"gain", "gains", "rise", "rises", "improve", "improves", "improved", "recovery",
	"agreement", "deal", "peace", "ceasefire", "record", "boost", "strong", "support",
	"celebrate", "hope", "progress", "breakthrough", "benefit", "launch", "award",
	"safe", "rescue", "good", "great", "best", "positive", "profit", "surge",
	// Arabic
	"نجاح", "فوز", "انتصار", "نمو", "ارتفاع", "تحسن", "اتفاق", "سلام", "هدنة", "دعم",
	"تقدم", "إنجاز", "انجاز", "أمل", "ازدهار", "تعافي", "أرباح", "مكاسب", "إيجابي", "افتتاح",
}

var negativeWords = []string{
	"war", "attack", "attacks", "killed", "kill", "dead", "death", "deaths", "crisis",
	"fall", "falls", "drop", "drops", "decline", "loss", "losses", "fail", "failure",
	"crash", "conflict", "violence", "strike", "strikes", "protest", "injured",
	"disaster", "fire", "flood", "earthquake", "threat", "fear", "inflation",
	"recession", "corruption", "arrest", "bad", "worst", "negative", "collapse", "bomb",
	// Arabic
	"حرب", "هجوم", "قتل", "قتلى", "مقتل", "موت", "أزمة", "ازمة", "انخفاض", "تراجع", "خسارة",
	"خسائر", "فشل", "صراع", "عنف", "إضراب", "احتجاج", "جرحى", "كارثة", "حريق", "فيضان",
	"زلزال", "تهديد", "خوف", "تضخم", "ركود", "فساد", "اعتقال", "انهيار", "قصف", "انفجار",
}

var negations = map[string]bool{
	"not": true, "no": true, "never": true, "without": true,
	"لا": true, "لم": true, "لن": true, "ليس": true, "غير": true, "بدون": true,
}

// Analyzer scores text against positive and negative word sets.
type Analyzer struct {
	positive map[string]bool
	negative map[string]bool
}

// New returns an Analyzer with the built-in English and Arabic lexicon.
func New() *Analyzer {
	a := &Analyzer{positive: map[string]bool{}, negative: map[string]bool{}}
	for _, w := range positiveWords {
		a.positive[w] = true
	}
	for _, w := range negativeWords {
		a.negative[w] = true
	}
	return a
}

// Score returns polarity in [-1, 1] and the number of lexicon hits.
// A negation directly before a word flips its sign.
func (a *Analyzer) Score(text string) (float64, int) {
	pos, neg := 0, 0
	words := tokenize(text)
	for i, w := range words {
		p, n := a.lookup(w)
		if !p && !n {
			continue
		}
		if i > 0 && negations[words[i-1]] {
			p, n = n, p
		}
		if p {
			pos++
		} else {
			neg++
		}
	}
	hits := pos + neg
	if hits == 0 {
		return 0, 0
	}
	return float64(pos-neg) / float64(hits), hits
}

// lookup also tries the word without the Arabic definite article "ال" and
// the conjunction prefix "و".
func (a *Analyzer) lookup(w string) (bool, bool) {
	for _, cand := range []string{w, strings.TrimPrefix(w, "و"), strings.TrimPrefix(w, "ال"), strings.TrimPrefix(w, "وال")} {
		if a.positive[cand] {
			return true, false
		}
		if a.negative[cand] {
			return false, true
		}
	}
	return false, false
}

// Label maps a polarity score to a sentiment label.
func Label(polarity float64) string {
	switch {
	case polarity > Threshold:
		return news.Positive
	case polarity < -Threshold:
		return news.Negative
	default:
		return news.Neutral
	}
}

// Annotate sets Sentiment and Polarity on every item from its title and summary.
func (a *Analyzer) Annotate(items []news.Item) {
	for i := range items {
		p, _ := a.Score(items[i].Text())
		items[i].Polarity = p
		items[i].Sentiment = Label(p)
	}
}

func tokenize(text string) []string {
	return strings.FieldsFunc(strings.ToLower(text), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsNumber(r)
	})
}
