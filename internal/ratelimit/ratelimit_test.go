package ratelimit

import (
	"testing"
	"time"
)

func TestBudget_ProviderLimit(t *testing.T) {
	b := NewBudget(map[string]int{"gemini": 2}, 0)

	for i := 0; i < 2; i++ {
		if err := b.Use("gemini"); err != nil {
			t.Fatalf("use %d: unexpected error %v", i, err)
		}
	}
	if b.Allow("gemini") {
		t.Errorf("gemini should be exhausted")
	}
	if err := b.Use("gemini"); err == nil {
		t.Errorf("expected error once limit is reached")
	}
	if !b.Allow("openai") {
		t.Errorf("unlimited provider should still be allowed")
	}
}

func TestBudget_TotalLimit(t *testing.T) {
	b := NewBudget(nil, 3)
	_ = b.Use("gemini")
	_ = b.Use("openai")
	_ = b.Use("openai")
	if err := b.Use("gemini"); err == nil {
		t.Errorf("total cap should block further requests")
	}
	if got := b.GetStats()["total_used"]; got != 3 {
		t.Errorf("total_used = %v, want 3", got)
	}
}

func TestBudget_ResetsAfterWindow(t *testing.T) {
	now := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	b := NewBudget(map[string]int{"gemini": 1}, 0)
	b.now = func() time.Time { return now }
	b.resetTime = now.Add(b.window)

	if err := b.Use("gemini"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if b.Allow("gemini") {
		t.Fatalf("expected exhausted budget")
	}

	now = now.Add(25 * time.Hour)
	if !b.Allow("gemini") {
		t.Errorf("budget should reset after the window")
	}
}
