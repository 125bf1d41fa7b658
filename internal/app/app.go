package app

import (
	"context"
	"fmt"

	"github.com/deusflow/newsdesk/internal/ai"
	"github.com/deusflow/newsdesk/internal/archive"
	"github.com/deusflow/newsdesk/internal/cache"
	"github.com/deusflow/newsdesk/internal/category"
	"github.com/deusflow/newsdesk/internal/config"
	"github.com/deusflow/newsdesk/internal/fetch"
	"github.com/deusflow/newsdesk/internal/logger"
	"github.com/deusflow/newsdesk/internal/ratelimit"
	"github.com/deusflow/newsdesk/internal/source"
	"github.com/deusflow/newsdesk/internal/storage"
	"github.com/deusflow/newsdesk/internal/telegram"
)

// App holds the pipeline and the backends chosen by configuration.
type App struct {
	Config   *config.Config
	Pipeline *Pipeline
	History  storage.History
	Archive  archive.Archiver // nil when archiving is off
	Budget   *ratelimit.Budget
	Notifier *telegram.Client // nil without Telegram credentials

	closers []func() error
}

// New loads the sources file and connects the configured backends: Redis or
// memory for the source cache, PostgreSQL or a JSON file for history, S3 or
// a directory for the export archive.
func New(ctx context.Context, cfg *config.Config) (*App, error) {
	sf, err := config.LoadSources(cfg.SourcesFile)
	if err != nil {
		return nil, fmt.Errorf("load sources: %w", err)
	}

	a := &App{Config: cfg}
	ok := false
	defer func() {
		if !ok {
			a.Close()
		}
	}()

	store, err := newCache(ctx, cfg)
	if err != nil {
		return nil, err
	}
	a.closers = append(a.closers, store.Close)

	a.History, err = newHistory(ctx, cfg)
	if err != nil {
		return nil, err
	}
	a.closers = append(a.closers, a.History.Close)

	a.Archive, err = newArchive(cfg)
	if err != nil {
		return nil, err
	}

	if cfg.NotifyEnabled() {
		a.Notifier = telegram.New(cfg.TelegramToken, cfg.TelegramChatID)
	}

	summarizer, err := a.newSummarizer(ctx, cfg)
	if err != nil {
		return nil, err
	}

	client := fetch.New(fetch.Options{
		Timeout:    cfg.FetchTimeout,
		UserAgent:  cfg.UserAgent,
		Retries:    cfg.FetchRetries,
		RetryDelay: cfg.RetryDelay,
	})
	fetcher := source.NewFetcher(client, source.Options{
		Concurrency: cfg.FetchConcurrency,
		Timeout:     cfg.FetchTimeout,
		Cache:       store,
		CacheTTL:    cfg.CacheTTL,
	})

	a.Pipeline = NewPipeline(sf.Sources, fetcher, category.New(sf.Categories), summarizer, a.History, PipelineOptions{
		MaxResults:   cfg.MaxResults,
		EnrichMax:    cfg.EnrichMax,
		MaxAISummary: cfg.MaxAISummary,
	})

	logger.Info("app ready", "sources", len(sf.Sources), "categories", len(a.Pipeline.Categories()), "ai", summarizer != nil)
	ok = true
	return a, nil
}

func newCache(ctx context.Context, cfg *config.Config) (cache.Store, error) {
	if cfg.RedisAddr != "" {
		r, err := cache.NewRedis(ctx, cfg.RedisAddr)
		if err != nil {
			return nil, err
		}
		logger.Info("using Redis source cache", "addr", cfg.RedisAddr)
		return r, nil
	}
	return cache.New(), nil
}

func newHistory(ctx context.Context, cfg *config.Config) (storage.History, error) {
	if cfg.DatabaseURL != "" {
		return storage.NewPostgresHistory(ctx, cfg.DatabaseURL, cfg.HistoryLimit)
	}
	logger.Info("using file history", "path", cfg.HistoryFile)
	return storage.NewFileHistory(cfg.HistoryFile, cfg.HistoryLimit)
}

func newArchive(cfg *config.Config) (archive.Archiver, error) {
	switch {
	case cfg.ArchiveS3Bucket != "":
		return archive.NewS3(cfg.AWSRegion, cfg.ArchiveS3Bucket)
	case cfg.ArchiveDir != "":
		return archive.NewLocal(cfg.ArchiveDir)
	default:
		return nil, nil
	}
}

// newSummarizer returns nil when no provider key is configured.
func (a *App) newSummarizer(ctx context.Context, cfg *config.Config) (ai.Summarizer, error) {
	if !cfg.AIEnabled() {
		return nil, nil
	}
	var providers []ai.Summarizer
	if cfg.GeminiAPIKey != "" {
		g, err := ai.NewGemini(ctx, cfg.GeminiAPIKey, cfg.GeminiModel)
		if err != nil {
			return nil, err
		}
		a.closers = append(a.closers, func() error { g.Close(); return nil })
		providers = append(providers, g)
	}
	if cfg.OpenAIAPIKey != "" {
		providers = append(providers, ai.NewOpenAI(cfg.OpenAIAPIKey))
	}
	a.Budget = ratelimit.NewBudget(nil, cfg.MaxAIRequests)
	return ai.NewChain(a.Budget, providers...), nil
}

// Close releases backends in reverse order of creation.
func (a *App) Close() error {
	var first error
	for i := len(a.closers) - 1; i >= 0; i-- {
		if err := a.closers[i](); err != nil && first == nil {
			first = err
		}
	}
	a.closers = nil
	return first
}
