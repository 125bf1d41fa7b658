// Package config loads runtime settings from the environment and the sources file.
package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	// HTTP server
	HTTPAddr string

	// Sources
	SourcesFile string
	MaxResults  int // hard cap of items returned by one query

	// Fetching
	FetchTimeout     time.Duration
	FetchConcurrency int
	FetchRetries     int
	RetryDelay       time.Duration
	UserAgent        string
	EnrichMax        int // article pages fetched per query when enrichment is on

	// Source result cache
	CacheTTL  time.Duration
	RedisAddr string

	// Run history
	DatabaseURL  string
	HistoryFile  string
	HistoryLimit int

	// Export archive
	ArchiveDir      string
	ArchiveS3Bucket string
	AWSRegion       string

	// AI summaries
	GeminiAPIKey  string
	GeminiModel   string
	OpenAIAPIKey  string
	MaxAIRequests int // per day, all providers (0 = unlimited)
	MaxAISummary  int // items summarised per query

	// Telegram digest
	TelegramToken  string
	TelegramChatID string
	DigestMax      int

	Debug bool
}

// Load reads .env (when present) and the environment, applying defaults.
func Load() (*Config, error) {
	// A missing .env is the normal case in containers.
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("load .env: %w", err)
	}

	cfg := &Config{
		HTTPAddr:         getEnvOrDefault("HTTP_ADDR", ":8080"),
		SourcesFile:      getEnvOrDefault("SOURCES_FILE", "configs/sources.yaml"),
		MaxResults:       getEnvIntOrDefault("MAX_RESULTS", 200),
		FetchTimeout:     getEnvDurationOrDefault("FETCH_TIMEOUT", 10*time.Second),
		FetchConcurrency: getEnvIntOrDefault("FETCH_CONCURRENCY", 8),
		FetchRetries:     getEnvIntOrDefault("FETCH_RETRIES", 1),
		RetryDelay:       getEnvDurationOrDefault("RETRY_DELAY", 500*time.Millisecond),
		UserAgent:        getEnvOrDefault("USER_AGENT", "Mozilla/5.0 (compatible; newsdesk/1.0)"),
		EnrichMax:        getEnvIntOrDefault("ENRICH_MAX", 10),
		CacheTTL:         getEnvDurationOrDefault("CACHE_TTL", 5*time.Minute),
		RedisAddr:        os.Getenv("REDIS_ADDR"),
		DatabaseURL:      os.Getenv("DATABASE_URL"),
		HistoryFile:      getEnvOrDefault("HISTORY_FILE", "history.json"),
		HistoryLimit:     getEnvIntOrDefault("HISTORY_LIMIT", 100),
		ArchiveDir:       os.Getenv("ARCHIVE_DIR"),
		ArchiveS3Bucket:  os.Getenv("ARCHIVE_S3_BUCKET"),
		AWSRegion:        getEnvOrDefault("AWS_REGION", "eu-central-1"),
		GeminiAPIKey:     os.Getenv("GEMINI_API_KEY"),
		GeminiModel:      getEnvOrDefault("GEMINI_MODEL", "gemini-1.5-flash"),
		OpenAIAPIKey:     os.Getenv("OPENAI_API_KEY"),
		MaxAIRequests:    getEnvIntOrDefault("MAX_AI_REQUESTS", 50),
		MaxAISummary:     getEnvIntOrDefault("MAX_AI_SUMMARY", 5),
		TelegramToken:    os.Getenv("TELEGRAM_TOKEN"),
		TelegramChatID:   os.Getenv("TELEGRAM_CHAT_ID"),
		DigestMax:        getEnvIntOrDefault("DIGEST_MAX", 10),
		Debug:            os.Getenv("DEBUG") == "true",
	}

	return cfg, cfg.Validate()
}

func getEnvOrDefault(key, defaultValue string) string {
	if value := strings.TrimSpace(os.Getenv(key)); value != "" {
		return value
	}
	return defaultValue
}

func getEnvIntOrDefault(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

// getEnvDurationOrDefault accepts Go durations ("15s") or bare seconds ("15").
func getEnvDurationOrDefault(key string, defaultValue time.Duration) time.Duration {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	if d, err := time.ParseDuration(value); err == nil {
		return d
	}
	if secs, err := strconv.Atoi(value); err == nil {
		return time.Duration(secs) * time.Second
	}
	return defaultValue
}

func (c *Config) Validate() error {
	if c.SourcesFile == "" {
		return fmt.Errorf("SOURCES_FILE is required")
	}
	if c.FetchConcurrency <= 0 {
		return fmt.Errorf("FETCH_CONCURRENCY must be positive, got %d", c.FetchConcurrency)
	}
	if c.FetchTimeout <= 0 {
		return fmt.Errorf("FETCH_TIMEOUT must be positive")
	}
	if c.FetchRetries < 0 {
		return fmt.Errorf("FETCH_RETRIES must not be negative")
	}
	if c.MaxResults <= 0 {
		return fmt.Errorf("MAX_RESULTS must be positive, got %d", c.MaxResults)
	}
	if c.CacheTTL < 0 {
		return fmt.Errorf("CACHE_TTL must not be negative")
	}
	return nil
}

// NotifyEnabled reports whether Telegram digests can be sent.
func (c *Config) NotifyEnabled() bool {
	return c.TelegramToken != "" && c.TelegramChatID != ""
}

// AIEnabled reports whether at least one summary provider is configured.
func (c *Config) AIEnabled() bool {
	return c.GeminiAPIKey != "" || c.OpenAIAPIKey != ""
}
