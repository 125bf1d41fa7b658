package metrics

import (
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	SourceFetches = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "newsdesk",
		Name:      "source_fetches_total",
		Help:      "Source fetches by source and outcome (ok, error, cached).",
	}, []string{"source", "status"})

	FetchDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "newsdesk",
		Name:      "source_fetch_duration_seconds",
		Help:      "Time spent fetching and parsing one source.",
		Buckets:   prometheus.DefBuckets,
	}, []string{"kind"})

	Items = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "newsdesk",
		Name:      "items_total",
		Help:      "Items seen per pipeline stage (fetched, matched, duplicate, returned).",
	}, []string{"stage"})

	Exports = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "newsdesk",
		Name:      "exports_total",
		Help:      "Exports written by format.",
	}, []string{"format"})

	AIRequests = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "newsdesk",
		Name:      "ai_requests_total",
		Help:      "Summary requests by provider and outcome.",
	}, []string{"provider", "status"})

	Notifications = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "newsdesk",
		Name:      "notifications_total",
		Help:      "Telegram digest messages by outcome.",
	}, []string{"status"})
)

// Health tracks the last pipeline run for the /health endpoint.
type Health struct {
	mu sync.RWMutex

	Runs                  int64
	LastProcessingTime    time.Duration
	AverageProcessingTime time.Duration
	TotalProcessingTime   time.Duration

	LastRunTime   time.Time
	LastErrorTime time.Time
	LastError     string
	IsHealthy     bool
}

var Global = &Health{IsHealthy: true}

func (m *Health) RecordRun(duration time.Duration) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.Runs++
	m.LastProcessingTime = duration
	m.TotalProcessingTime += duration
	m.AverageProcessingTime = m.TotalProcessingTime / time.Duration(m.Runs)
	m.LastRunTime = time.Now()
	m.IsHealthy = true
}

func (m *Health) SetError(err string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.LastError = err
	m.LastErrorTime = time.Now()
	m.IsHealthy = false
}

func (m *Health) Healthy() bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.IsHealthy
}

func (m *Health) GetStats() map[string]interface{} {
	m.mu.RLock()
	defer m.mu.RUnlock()

	stats := map[string]interface{}{
		"runs":                       m.Runs,
		"last_processing_time_ms":    m.LastProcessingTime.Milliseconds(),
		"average_processing_time_ms": m.AverageProcessingTime.Milliseconds(),
		"last_error":                 m.LastError,
		"is_healthy":                 m.IsHealthy,
	}
	if !m.LastRunTime.IsZero() {
		stats["last_run_time"] = m.LastRunTime.Format(time.RFC3339)
	}
	if !m.LastErrorTime.IsZero() {
		stats["last_error_time"] = m.LastErrorTime.Format(time.RFC3339)
	}
	return stats
}
