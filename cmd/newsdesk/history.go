package main

import (
	"fmt"
	"net/url"
	"strings"

	"github.com/spf13/cobra"

	"github.com/deusflow/newsdesk/internal/storage"
)

func newHistoryCmd() *cobra.Command {
	var limit int

	cmd := &cobra.Command{
		Use:   "history",
		Short: "Show recent searches from the history store",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}

			var h storage.History
			if cfg.DatabaseURL != "" {
				fmt.Fprintf(cmd.OutOrStdout(), "Database: %s\n", maskPassword(cfg.DatabaseURL))
				h, err = storage.NewPostgresHistory(cmd.Context(), cfg.DatabaseURL, cfg.HistoryLimit)
			} else {
				fmt.Fprintf(cmd.OutOrStdout(), "History file: %s\n", cfg.HistoryFile)
				h, err = storage.NewFileHistory(cfg.HistoryFile, cfg.HistoryLimit)
			}
			if err != nil {
				return err
			}
			defer h.Close()

			return printHistory(cmd, h, limit)
		},
	}
	cmd.Flags().IntVarP(&limit, "limit", "n", 10, "number of runs to show")
	return cmd
}

func printHistory(cmd *cobra.Command, h storage.History, limit int) error {
	out := cmd.OutOrStdout()

	stats, err := h.Stats(cmd.Context())
	if err != nil {
		return err
	}
	fmt.Fprintf(out, "Runs: %d, items returned: %d\n\n", stats["total_runs"], stats["items_returned"])

	runs, err := h.Recent(cmd.Context(), limit)
	if err != nil {
		return err
	}
	if len(runs) == 0 {
		fmt.Fprintln(out, "(no searches yet)")
		return nil
	}
	for i, r := range runs {
		q := strings.Join(r.Query.Keywords, ", ")
		if q == "" {
			q = "(all)"
		}
		fmt.Fprintf(out, "%d. %s  %s\n", i+1, r.At.Format("2006-01-02 15:04:05"), q)
		fmt.Fprintf(out, "   fetched %d | matched %d | duplicates %d | returned %d | failed sources %d | %d ms\n",
			r.Fetched, r.Matched, r.Duplicates, r.Returned, r.Warnings, r.DurationMS)
	}
	return nil
}

// maskPassword hides the password of a connection URL, or the middle of
// anything that does not parse as one.
func maskPassword(dbURL string) string {
	if u, err := url.Parse(dbURL); err == nil && u.User != nil {
		return u.Redacted()
	}
	if len(dbURL) > 50 {
		return dbURL[:30] + "***" + dbURL[len(dbURL)-20:]
	}
	return dbURL
}
