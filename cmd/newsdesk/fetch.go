package main

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/deusflow/newsdesk/internal/app"
	"github.com/deusflow/newsdesk/internal/export"
	"github.com/deusflow/newsdesk/internal/logger"
	"github.com/deusflow/newsdesk/internal/news"
)

type fetchFlags struct {
	keywords  string
	from, to  string
	category  string
	sources   []string
	url       string
	kind      string
	limit     int
	format    string
	out       string
	summarize bool
	enrich    bool
	notify    bool
}

func newFetchCmd() *cobra.Command {
	var f fetchFlags

	cmd := &cobra.Command{
		Use:   "fetch",
		Short: "Run one search and write the result as a file",
		Example: `  newsdesk fetch -q "النفط, oil" --format xlsx --out news.xlsx
  newsdesk fetch --source "Sky News Arabia" --format json
  newsdesk fetch --url https://www.skynewsarabia.com/ --format csv`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if !export.Supported(f.format) {
				return fmt.Errorf("unsupported format %q (supported: %v)", f.format, export.Formats())
			}
			q, err := f.query()
			if err != nil {
				return err
			}

			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			a, err := app.New(cmd.Context(), cfg)
			if err != nil {
				return err
			}
			defer a.Close()

			res, err := a.Pipeline.Run(cmd.Context(), q)
			if err != nil {
				return err
			}
			for _, w := range res.Warnings {
				logger.Warn("source failed", "source", w.Source, "error", w.Err)
			}
			if len(res.Items) == 0 {
				logger.Warn("no news matched the search")
			}

			now := time.Now()
			var buf bytes.Buffer
			if err := export.Write(&buf, f.format, res.Items, export.Meta{Title: "newsdesk", Generated: now}); err != nil {
				return err
			}
			if a.Archive != nil {
				if _, err := a.Archive.Save(cmd.Context(), export.Filename(f.format, now), export.ContentType(f.format), buf.Bytes()); err != nil {
					logger.Warn("archive failed", "error", err)
				}
			}
			if err := writeOutput(cmd.OutOrStdout(), f.out, buf.Bytes()); err != nil {
				return err
			}
			if f.notify {
				if a.Notifier == nil {
					return fmt.Errorf("--notify needs TELEGRAM_TOKEN and TELEGRAM_CHAT_ID")
				}
				if _, err := a.Notifier.SendDigest(cmd.Context(), "newsdesk", res.Items, cfg.DigestMax); err != nil {
					return err
				}
			}
			return nil
		},
	}

	fl := cmd.Flags()
	fl.StringVarP(&f.keywords, "query", "q", "", "comma separated keywords")
	fl.StringVar(&f.from, "from", "", "first day (YYYY-MM-DD)")
	fl.StringVar(&f.to, "to", "", "last day (YYYY-MM-DD)")
	fl.StringVar(&f.category, "category", "", "category tag")
	fl.StringSliceVar(&f.sources, "source", nil, "source names (repeatable, default all)")
	fl.StringVar(&f.url, "url", "", "scrape this page or feed instead of the configured sources")
	fl.StringVar(&f.kind, "kind", "html", "kind of --url: html or rss")
	fl.IntVar(&f.limit, "limit", 0, "maximum number of items")
	fl.StringVar(&f.format, "format", "json", "output format: "+fmt.Sprint(export.Formats()))
	fl.StringVarP(&f.out, "out", "o", "", "output file (default stdout, '-' for stdout)")
	fl.BoolVar(&f.summarize, "summarize", false, "add AI summaries")
	fl.BoolVar(&f.enrich, "enrich", false, "fetch article pages to fill missing summaries and images")
	fl.BoolVar(&f.notify, "notify", false, "post the top results to Telegram")
	return cmd
}

func (f fetchFlags) query() (news.Query, error) {
	q := news.Query{
		Keywords:  news.ParseKeywords(f.keywords),
		Category:  f.category,
		Sources:   f.sources,
		URL:       strings.TrimSpace(f.url),
		URLKind:   strings.ToLower(strings.TrimSpace(f.kind)),
		Limit:     f.limit,
		Summarize: f.summarize,
		Enrich:    f.enrich,
	}
	var err error
	if f.from != "" {
		if q.From, err = time.ParseInLocation("2006-01-02", f.from, time.UTC); err != nil {
			return q, fmt.Errorf("invalid --from %q, want YYYY-MM-DD", f.from)
		}
	}
	if f.to != "" {
		if q.To, err = time.ParseInLocation("2006-01-02", f.to, time.UTC); err != nil {
			return q, fmt.Errorf("invalid --to %q, want YYYY-MM-DD", f.to)
		}
	}
	return q, nil
}

func writeOutput(stdout io.Writer, path string, data []byte) error {
	if path == "" || path == "-" {
		_, err := stdout.Write(data)
		return err
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	logger.Info("export written", "path", path, "bytes", len(data))
	return nil
}
