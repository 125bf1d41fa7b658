// Package telegram posts result digests to a Telegram chat.
package telegram

import (
	"context"
	"fmt"
	"html"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"

	"github.com/deusflow/newsdesk/internal/logger"
	"github.com/deusflow/newsdesk/internal/metrics"
	"github.com/deusflow/newsdesk/internal/news"
	"github.com/deusflow/newsdesk/internal/retry"
)

const (
	defaultBaseURL = "https://api.telegram.org"
	// Telegram rejects messages above 4096 characters.
	maxMessageRunes = 4000

	maxTitleRunes   = 200
	maxSummaryRunes = 300
	maxSourceRunes  = 100
	maxLinkRunes    = 1000
)

// Client sends HTML messages through the Bot API.
type Client struct {
	http   *resty.Client
	token  string
	chatID string
	retry  retry.RetryConfig
}

// New returns a client for the bot token and chat.
func New(token, chatID string) *Client {
	return &Client{
		http:   resty.New().SetBaseURL(defaultBaseURL).SetTimeout(30 * time.Second),
		token:  token,
		chatID: chatID,
		retry:  retry.RetryConfig{MaxAttempts: 3, Delay: 2 * time.Second, Backoff: true},
	}
}

// SetBaseURL points the client at another API host.
func (c *Client) SetBaseURL(u string) *Client {
	c.http.SetBaseURL(u)
	return c
}

// SetRetry replaces the retry policy.
func (c *Client) SetRetry(cfg retry.RetryConfig) *Client {
	c.retry = cfg
	return c
}

type apiResponse struct {
	OK          bool   `json:"ok"`
	Description string `json:"description"`
}

// SendMessage posts one HTML message. Link previews stay off.
func (c *Client) SendMessage(ctx context.Context, text string) error {
	err := retry.WithRetry(ctx, c.retry, func() error {
		var out apiResponse
		resp, err := c.http.R().
			SetContext(ctx).
			SetBody(map[string]interface{}{
				"chat_id":                  c.chatID,
				"text":                     text,
				"parse_mode":               "HTML",
				"disable_web_page_preview": true,
			}).
			SetResult(&out).
			SetError(&out).
			Post("/bot" + c.token + "/sendMessage")
		if err != nil {
			if ctx.Err() != nil {
				return retry.Permanent(ctx.Err())
			}
			return fmt.Errorf("telegram request: %w", err)
		}
		code := resp.StatusCode()
		if code == 200 && out.OK {
			return nil
		}
		apiErr := fmt.Errorf("telegram API error: status %d: %s", code, out.Description)
		if code >= 400 && code < 500 && code != 429 {
			return retry.Permanent(apiErr)
		}
		return apiErr
	})
	if err != nil {
		metrics.Notifications.WithLabelValues("error").Inc()
		return err
	}
	metrics.Notifications.WithLabelValues("ok").Inc()
	return nil
}

// SendDigest posts the first max items (0 = all) as one or more messages
// and returns the number of messages sent.
func (c *Client) SendDigest(ctx context.Context, title string, items []news.Item, max int) (int, error) {
	if max > 0 && len(items) > max {
		items = items[:max]
	}
	msgs := Digest(title, items)
	for i, m := range msgs {
		if err := c.SendMessage(ctx, m); err != nil {
			return i, fmt.Errorf("send digest part %d/%d: %w", i+1, len(msgs), err)
		}
	}
	logger.Info("digest sent to Telegram", "items", len(items), "messages", len(msgs))
	return len(msgs), nil
}

// Digest formats items as Telegram HTML, split so that no message exceeds
// the API limit. An empty item list yields a single notice.
func Digest(title string, items []news.Item) []string {
	header := "<b>" + html.EscapeString(title) + "</b>\n\n"
	if len(items) == 0 {
		return []string{header + "No news matched."}
	}

	var msgs []string
	var b strings.Builder
	b.WriteString(header)
	size := runeLen(header)
	for i, it := range items {
		entry := formatItem(i+1, it)
		n := runeLen(entry)
		if size+n > maxMessageRunes && b.Len() > 0 {
			msgs = append(msgs, strings.TrimRight(b.String(), "\n"))
			b.Reset()
			size = 0
		}
		b.WriteString(entry)
		size += n
	}
	if b.Len() > 0 {
		msgs = append(msgs, strings.TrimRight(b.String(), "\n"))
	}
	return msgs
}

func formatItem(n int, it news.Item) string {
	var b strings.Builder
	title := html.EscapeString(truncate(it.Title, maxTitleRunes))
	if it.Link != "" && runeLen(it.Link) <= maxLinkRunes {
		fmt.Fprintf(&b, "%d. <a href=\"%s\">%s</a>\n", n, html.EscapeString(it.Link), title)
	} else {
		fmt.Fprintf(&b, "%d. %s\n", n, title)
	}

	meta := truncate(it.Source, maxSourceRunes)
	if d := it.Date(); !d.IsZero() {
		meta += " · " + d.UTC().Format("2006-01-02 15:04")
	}
	if it.Category != "" {
		meta += " · " + it.Category
	}
	b.WriteString("<i>" + html.EscapeString(meta) + "</i>\n")

	summary := it.AISummary
	if summary == "" {
		summary = it.Summary
	}
	if summary != "" {
		b.WriteString(html.EscapeString(truncate(summary, maxSummaryRunes)) + "\n")
	}
	b.WriteString("\n")
	return b.String()
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return strings.TrimSpace(string(r[:n])) + "…"
}

func runeLen(s string) int { return len([]rune(s)) }
