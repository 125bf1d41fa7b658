package ratelimit

import (
	"fmt"
	"sync"
	"time"

	"github.com/deusflow/newsdesk/internal/logger"
)

// Budget caps AI requests per provider and in total over a rolling day.
// A limit of 0 means unlimited.
type Budget struct {
	mu        sync.Mutex
	limits    map[string]int
	used      map[string]int
	maxTotal  int
	total     int
	window    time.Duration
	resetTime time.Time
	now       func() time.Time
}

// NewBudget creates a daily budget. limits maps provider name to its cap.
func NewBudget(limits map[string]int, maxTotal int) *Budget {
	b := &Budget{
		limits:   map[string]int{},
		used:     map[string]int{},
		maxTotal: maxTotal,
		window:   24 * time.Hour,
		now:      time.Now,
	}
	for k, v := range limits {
		b.limits[k] = v
	}
	b.resetTime = b.now().Add(b.window)
	return b
}

// Allow reports whether provider may make another request without consuming it.
func (b *Budget) Allow(provider string) bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.checkReset()
	return b.allowLocked(provider) == nil
}

// Use consumes one request for provider or returns why it is not allowed.
func (b *Budget) Use(provider string) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.checkReset()

	if err := b.allowLocked(provider); err != nil {
		return err
	}
	b.used[provider]++
	b.total++

	logger.Debug("ai budget", "provider", provider, "used", b.used[provider], "limit", b.limits[provider], "total", b.total, "max_total", b.maxTotal)
	return nil
}

func (b *Budget) allowLocked(provider string) error {
	if limit := b.limits[provider]; limit > 0 && b.used[provider] >= limit {
		return fmt.Errorf("%s rate limit exceeded (%d/%d)", provider, b.used[provider], limit)
	}
	if b.maxTotal > 0 && b.total >= b.maxTotal {
		return fmt.Errorf("total AI rate limit exceeded (%d/%d)", b.total, b.maxTotal)
	}
	return nil
}

// GetStats returns current usage.
func (b *Budget) GetStats() map[string]interface{} {
	b.mu.Lock()
	defer b.mu.Unlock()

	stats := map[string]interface{}{
		"total_used":  b.total,
		"total_limit": b.maxTotal,
		"reset_time":  b.resetTime,
	}
	for p, n := range b.used {
		stats[p+"_used"] = n
	}
	for p, n := range b.limits {
		stats[p+"_limit"] = n
	}
	return stats
}

// checkReset clears counters once the window has passed.
func (b *Budget) checkReset() {
	if b.now().After(b.resetTime) {
		logger.Info("resetting AI budget", "total_used", b.total)
		b.used = map[string]int{}
		b.total = 0
		b.resetTime = b.now().Add(b.window)
	}
}
