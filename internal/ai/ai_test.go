package ai

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/deusflow/newsdesk/internal/news"
	"github.com/deusflow/newsdesk/internal/ratelimit"
)

type stubSummarizer struct {
	name  string
	out   string
	err   error
	calls int
}

func (s *stubSummarizer) Name() string { return s.name }

func (s *stubSummarizer) Summarize(_ context.Context, title, _ string) (string, error) {
	s.calls++
	if s.err != nil {
		return "", s.err
	}
	return s.out + " " + title, nil
}

func TestParseSummary(t *testing.T) {
	cases := []struct {
		name, in, want string
	}{
		{"labelled", "SUMMARY: Oil prices rose.\nMarkets reacted calmly.", "Oil prices rose. Markets reacted calmly."},
		{"bold label", "**SUMMARY:** Short text.", "Short text."},
		{"arabic label", "الملخص: ارتفعت أسعار النفط.", "ارتفعت أسعار النفط."},
		{"other label ends block", "SUMMARY: One.\nNOTE: ignore me", "One."},
		{"unlabelled", "  Just a plain answer.\n", "Just a plain answer."},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got, err := parseSummary(tc.in)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got != tc.want {
				t.Errorf("got %q, want %q", got, tc.want)
			}
		})
	}

	if _, err := parseSummary("SUMMARY:"); err == nil {
		t.Errorf("expected error for empty summary")
	}
}

func TestChain_FallsThroughProviders(t *testing.T) {
	bad := &stubSummarizer{name: "gemini", err: errors.New("quota")}
	good := &stubSummarizer{name: "openai", out: "ok"}

	got, err := NewChain(nil, bad, nil, good).Summarize(context.Background(), "t", "c")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != "ok t" || bad.calls != 1 || good.calls != 1 {
		t.Errorf("got %q, calls %d/%d", got, bad.calls, good.calls)
	}
}

func TestChain_RespectsBudget(t *testing.T) {
	p := &stubSummarizer{name: "gemini", out: "ok"}
	chain := NewChain(ratelimit.NewBudget(map[string]int{"gemini": 1}, 0), p)

	if _, err := chain.Summarize(context.Background(), "a", ""); err != nil {
		t.Fatalf("first call: %v", err)
	}
	if _, err := chain.Summarize(context.Background(), "b", ""); err == nil {
		t.Errorf("expected budget error on second call")
	}
	if p.calls != 1 {
		t.Errorf("provider called %d times, want 1", p.calls)
	}
}

func TestChain_Empty(t *testing.T) {
	if _, err := NewChain(nil).Summarize(context.Background(), "t", "c"); !errors.Is(err, ErrNoProvider) {
		t.Errorf("expected ErrNoProvider, got %v", err)
	}
}

func TestSummarizeItems(t *testing.T) {
	items := []news.Item{
		{Title: "a", Summary: "x"},
		{Title: "b", Summary: "This sentence is long enough to be picked. Short."},
		{Title: "c"},
	}
	failing := &stubSummarizer{name: "gemini", err: errors.New("down")}

	n := SummarizeItems(context.Background(), NewChain(nil, &stubSummarizer{name: "openai", out: "s"}), items[:1], 5)
	if n != 1 || items[0].AISummary != "s a" {
		t.Errorf("n=%d summary=%q", n, items[0].AISummary)
	}

	n = SummarizeItems(context.Background(), failing, items[1:], 1)
	if n != 0 {
		t.Errorf("n = %d, want 0", n)
	}
	if items[1].AISummary != "This sentence is long enough to be picked." {
		t.Errorf("fallback summary = %q", items[1].AISummary)
	}
	if items[2].AISummary != "" {
		t.Errorf("item beyond max was summarised")
	}
}

func TestFallbackSummary(t *testing.T) {
	if FallbackSummary("") != "" {
		t.Errorf("empty content should give empty summary")
	}
	fragments := strings.Repeat("ab. ", 60)
	if got := FallbackSummary(fragments); len(got) != 163 {
		t.Errorf("text without usable sentences should be cut to 160 runes, got %d", len(got))
	}
}

func TestPrepareContent(t *testing.T) {
	got := prepareContent(strings.Repeat("word ", 2000))
	if !strings.HasSuffix(got, "[TRUNCATED]") {
		t.Errorf("long content not truncated")
	}
	if prepareContent("a   b\n c") != "a b c" {
		t.Errorf("whitespace not folded")
	}
}
