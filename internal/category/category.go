// Package category tags news items by keyword-bag scoring.
package category

import (
	"strings"
	"unicode"

	"github.com/deusflow/newsdesk/internal/news"
)

// General is assigned when no bag scores.
const General = "general"

const (
	titleWeight   = 2
	summaryWeight = 1
	feedBonus     = 3
)

// Bag is a named list of keywords. It is also the YAML shape of the
// "categories" section of the sources file.
type Bag struct {
	Name     string   `yaml:"name" json:"name"`
	Keywords []string `yaml:"keywords" json:"keywords"`
}

// DefaultBags are used when the sources file defines no categories.
var DefaultBags = []Bag{
	{Name: "politics", Keywords: []string{
		"election", "parliament", "president", "minister", "government", "vote", "senate",
		"diplomacy", "policy", "party", "cabinet", "summit",
		"انتخابات", "برلمان", "رئيس", "وزير", "حكومة", "الحكومة", "سياسة", "مجلس", "قمة", "دبلوماسية",
	}},
	{Name: "economy", Keywords: []string{
		"economy", "market", "stocks", "bank", "inflation", "oil", "trade", "gdp", "investment",
		"currency", "dollar", "budget", "prices", "interest rate",
		"اقتصاد", "الاقتصاد", "سوق", "بورصة", "بنك", "تضخم", "نفط", "النفط", "تجارة", "استثمار", "عملة", "الدولار", "أسعار", "ميزانية",
	}},
	{Name: "technology", Keywords: []string{
		"technology", "tech", "ai", "artificial intelligence", "software", "startup", "apple",
		"google", "microsoft", "cyber", "smartphone", "internet", "robot",
		"تكنولوجيا", "التكنولوجيا", "ذكاء اصطناعي", "الذكاء الاصطناعي", "تقنية", "إنترنت", "هاتف", "روبوت", "برمجيات",
	}},
	{Name: "health", Keywords: []string{
		"health", "hospital", "vaccine", "virus", "disease", "covid", "medical", "doctor",
		"cancer", "who", "outbreak", "patients",
		"صحة", "الصحة", "مستشفى", "لقاح", "فيروس", "مرض", "كورونا", "طبي", "أطباء", "سرطان", "وباء",
	}},
	{Name: "sports", Keywords: []string{
		"football", "soccer", "match", "league", "cup", "tennis", "olympic", "championship",
		"goal", "coach", "fifa", "player", "tournament",
		"كرة القدم", "مباراة", "الدوري", "كأس", "بطولة", "منتخب", "لاعب", "مدرب", "أولمبي", "هدف",
	}},
	{Name: "world", Keywords: []string{
		"war", "un", "united nations", "conflict", "military", "army", "refugees", "border",
		"ceasefire", "nato", "troops", "invasion",
		"حرب", "الأمم المتحدة", "صراع", "جيش", "الجيش", "عسكري", "لاجئين", "حدود", "هدنة", "قوات",
	}},
	{Name: "culture", Keywords: []string{
		"film", "music", "festival", "art", "museum", "book", "celebrity", "cinema", "concert",
		"فيلم", "موسيقى", "مهرجان", "فن", "متحف", "كتاب", "سينما", "حفل",
	}},
}

type matcher struct {
	phrase string
	token  bool // whole-token match for short words ("ai" must not match "said")
}

type bag struct {
	name     string
	matchers []matcher
}

// Classifier assigns the best scoring category to items.
type Classifier struct {
	bags []bag
}

// New builds a classifier. Empty input selects DefaultBags.
func New(bags []Bag) *Classifier {
	if len(bags) == 0 {
		bags = DefaultBags
	}
	c := &Classifier{}
	for _, b := range bags {
		name := strings.ToLower(strings.TrimSpace(b.Name))
		if name == "" {
			continue
		}
		cb := bag{name: name}
		for _, k := range b.Keywords {
			k = strings.ToLower(strings.TrimSpace(k))
			if k == "" {
				continue
			}
			cb.matchers = append(cb.matchers, matcher{
				phrase: k,
				token:  !strings.Contains(k, " ") && len([]rune(k)) <= 3,
			})
		}
		c.bags = append(c.bags, cb)
	}
	return c
}

// Names lists categories in configured order, General last.
func (c *Classifier) Names() []string {
	out := make([]string, 0, len(c.bags)+1)
	for _, b := range c.bags {
		out = append(out, b.name)
	}
	return append(out, General)
}

// Classify returns the winning category and its score. Ties go to the bag
// listed first.
func (c *Classifier) Classify(n news.Item) (string, int) {
	title := newText(n.Title)
	summary := newText(n.Summary)

	best, bestScore := General, 0
	for _, b := range c.bags {
		score := titleWeight*b.hits(title) + summaryWeight*b.hits(summary)
		for _, fc := range n.Categories {
			if strings.EqualFold(strings.TrimSpace(fc), b.name) {
				score += feedBonus
				break
			}
		}
		if score > bestScore {
			best, bestScore = b.name, score
		}
	}
	return best, bestScore
}

// Annotate sets Category on every item.
func (c *Classifier) Annotate(items []news.Item) {
	for i := range items {
		items[i].Category, _ = c.Classify(items[i])
	}
}

type text struct {
	lower  string
	tokens map[string]bool
}

func newText(s string) text {
	lower := strings.ToLower(s)
	t := text{lower: lower, tokens: map[string]bool{}}
	for _, w := range strings.FieldsFunc(lower, func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsNumber(r)
	}) {
		t.tokens[w] = true
	}
	return t
}

func (b bag) hits(t text) int {
	if t.lower == "" {
		return 0
	}
	n := 0
	for _, m := range b.matchers {
		if m.token {
			if t.tokens[m.phrase] {
				n++
			}
			continue
		}
		if strings.Contains(t.lower, m.phrase) {
			n++
		}
	}
	return n
}
