// Package fetch is the shared HTTP transport for feeds and pages.
package fetch

import (
	"context"
	"fmt"
	"time"

	"github.com/go-resty/resty/v2"

	"github.com/deusflow/newsdesk/internal/retry"
)

const defaultAccept = "text/html,application/xhtml+xml,application/rss+xml,application/atom+xml,application/xml;q=0.9,*/*;q=0.8"

// StatusError is returned for non-2xx responses.
type StatusError struct {
	URL  string
	Code int
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("GET %s: HTTP %d", e.URL, e.Code)
}

type Options struct {
	Timeout    time.Duration
	UserAgent  string
	Retries    int // extra attempts after the first
	RetryDelay time.Duration
}

// Client downloads documents with a per-request timeout and bounded retries.
type Client struct {
	http  *resty.Client
	retry retry.RetryConfig
}

func New(opts Options) *Client {
	if opts.Timeout <= 0 {
		opts.Timeout = 10 * time.Second
	}
	if opts.UserAgent == "" {
		opts.UserAgent = "Mozilla/5.0 (compatible; newsdesk/1.0)"
	}

	h := resty.New().
		SetTimeout(opts.Timeout).
		SetHeader("User-Agent", opts.UserAgent).
		SetHeader("Accept", defaultAccept).
		SetHeader("Accept-Language", "ar,en;q=0.8")

	return &Client{
		http: h,
		retry: retry.RetryConfig{
			MaxAttempts: opts.Retries + 1,
			Delay:       opts.RetryDelay,
			Backoff:     true,
		},
	}
}

// Get returns the body of url. Client errors (4xx) are not retried.
func (c *Client) Get(ctx context.Context, url string) ([]byte, error) {
	var body []byte
	err := retry.WithRetry(ctx, c.retry, func() error {
		resp, err := c.http.R().SetContext(ctx).Get(url)
		if err != nil {
			if ctx.Err() != nil {
				return retry.Permanent(fmt.Errorf("GET %s: %w", url, ctx.Err()))
			}
			return fmt.Errorf("GET %s: %w", url, err)
		}
		code := resp.StatusCode()
		if code < 200 || code > 299 {
			serr := &StatusError{URL: url, Code: code}
			if code >= 400 && code < 500 && code != 429 {
				return retry.Permanent(serr)
			}
			return serr
		}
		body = resp.Body()
		return nil
	})
	if err != nil {
		return nil, err
	}
	return body, nil
}
