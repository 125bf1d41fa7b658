// Package ai produces short item summaries with hosted language models.
package ai

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/deusflow/newsdesk/internal/logger"
	"github.com/deusflow/newsdesk/internal/metrics"
	"github.com/deusflow/newsdesk/internal/news"
	"github.com/deusflow/newsdesk/internal/ratelimit"
)

// Summarizer returns a short summary of one article.
type Summarizer interface {
	Name() string
	Summarize(ctx context.Context, title, content string) (string, error)
}

// ErrNoProvider is returned by an empty Chain.
var ErrNoProvider = errors.New("no AI provider available")

const maxPromptChars = 6000

// Chain tries providers in order, each guarded by the shared budget.
type Chain struct {
	providers []Summarizer
	budget    *ratelimit.Budget
}

// NewChain skips nil providers. budget may be nil for no limits.
func NewChain(budget *ratelimit.Budget, providers ...Summarizer) *Chain {
	c := &Chain{budget: budget}
	for _, p := range providers {
		if p != nil {
			c.providers = append(c.providers, p)
		}
	}
	return c
}

func (c *Chain) Name() string { return "chain" }

// Len returns the number of configured providers.
func (c *Chain) Len() int { return len(c.providers) }

func (c *Chain) Summarize(ctx context.Context, title, content string) (string, error) {
	var errs []error
	for _, p := range c.providers {
		if c.budget != nil {
			if err := c.budget.Use(p.Name()); err != nil {
				metrics.AIRequests.WithLabelValues(p.Name(), "limited").Inc()
				errs = append(errs, err)
				continue
			}
		}
		summary, err := p.Summarize(ctx, title, content)
		if err != nil {
			metrics.AIRequests.WithLabelValues(p.Name(), "error").Inc()
			logger.Warn("summary failed", "provider", p.Name(), "error", err)
			errs = append(errs, fmt.Errorf("%s: %w", p.Name(), err))
			continue
		}
		metrics.AIRequests.WithLabelValues(p.Name(), "ok").Inc()
		return summary, nil
	}
	if len(errs) == 0 {
		return "", ErrNoProvider
	}
	return "", errors.Join(errs...)
}

// SummarizeItems fills AISummary for up to max items. When every provider
// fails the sentence-based fallback is used. It returns how many summaries
// came from a provider.
func SummarizeItems(ctx context.Context, s Summarizer, items []news.Item, max int) int {
	ok := 0
	for i := range items {
		if i >= max || ctx.Err() != nil {
			break
		}
		content := items[i].Summary
		summary, err := s.Summarize(ctx, items[i].Title, content)
		if err != nil {
			items[i].AISummary = FallbackSummary(content)
			continue
		}
		items[i].AISummary = summary
		ok++
	}
	return ok
}

// FallbackSummary picks the first two sentences of reasonable length.
func FallbackSummary(content string) string {
	c := strings.TrimSpace(content)
	if c == "" {
		return ""
	}
	sentences := strings.FieldsFunc(c, func(r rune) bool {
		return r == '.' || r == '!' || r == '?' || r == '؟'
	})
	var picked []string
	for _, s := range sentences {
		s = strings.TrimSpace(s)
		if utf8.RuneCountInString(s) < 25 {
			continue
		}
		picked = append(picked, s)
		if len(picked) >= 2 {
			break
		}
	}
	if len(picked) == 0 {
		if utf8.RuneCountInString(c) > 160 {
			return string([]rune(c)[:160]) + "..."
		}
		return c
	}
	return strings.Join(picked, ". ") + "."
}

// prepareContent folds whitespace and caps the prompt size, cutting at a
// sentence end when one is near.
func prepareContent(content string) string {
	content = strings.Join(strings.Fields(content), " ")
	if utf8.RuneCountInString(content) <= maxPromptChars {
		return content
	}
	trimmed := string([]rune(content)[:maxPromptChars])
	if idx := strings.LastIndex(trimmed, ". "); idx > 1200 {
		trimmed = trimmed[:idx+1]
	}
	return trimmed + "\n[TRUNCATED]"
}

func buildPrompt(title, content string) string {
	return fmt.Sprintf(`Summarize this news item in the language it is written in.

TITLE: %s
CONTENT: %s

Rules:
- at most three sentences;
- keep names of people and organisations unchanged;
- no introductions such as "This article is about".

Answer strictly in this format:

SUMMARY: <summary>
`, title, prepareContent(content))
}
