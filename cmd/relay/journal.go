package main

import (
	"fmt"
	"strconv"
	"time"

	"github.com/spf13/cobra"

	"opensign-hq/relay/pkg/cli"
	"opensign-hq/relay/pkg/journal"
)

var journalFlags struct {
	limit  int
	format string
}

var journalCmd = &cobra.Command{
	Use:   "journal",
	Short: "Inspect the diagnostic journal",
	Long: `Inspect calls recorded in the diagnostic journal.

Only the sqlite backend outlives the relay process, so these commands
require journal.backend to be "sqlite".`,
}

var journalRecentCmd = &cobra.Command{
	Use:   "recent",
	Short: "Show the most recent proxied calls",
	Long: `Show the most recent proxied calls, newest first.

Examples:
  # Last 20 calls
  relay journal recent

  # Last 100 calls as CSV
  relay journal recent --limit 100 --format csv`,
	RunE: runJournalRecent,
}

func init() {
	journalCmd.AddCommand(journalRecentCmd)
	rootCmd.AddCommand(journalCmd)

	journalRecentCmd.Flags().IntVarP(&journalFlags.limit, "limit", "n", 20, "maximum number of entries (0 for all)")
	journalRecentCmd.Flags().StringVarP(&journalFlags.format, "format", "f", "text", "output format (text, json, csv)")
}

func runJournalRecent(cmd *cobra.Command, args []string) error {
	format, err := cli.ParseOutputFormat(journalFlags.format)
	if err != nil {
		return cli.NewConfigError("format", err.Error(), err)
	}
	if journalFlags.limit < 0 {
		return cli.NewConfigError("limit", "must not be negative", nil)
	}

	cfg, err := loadConfig(cmd.Context())
	if err != nil {
		return err
	}
	if cfg.Journal.Backend != "sqlite" {
		return cli.NewConfigError("journal.backend",
			fmt.Sprintf("backend %q is not persistent; set it to \"sqlite\"", cfg.Journal.Backend), nil)
	}

	store, err := journal.NewSQLiteStore(journal.SQLiteOptions{
		Path:        cfg.Journal.SQLite.Path,
		BusyTimeout: cfg.Journal.SQLite.BusyTimeout,
	})
	if err != nil {
		return cli.NewCommandError("journal recent", err)
	}
	defer store.Close()

	entries, err := store.Recent(cmd.Context(), journalFlags.limit)
	if err != nil {
		return cli.NewCommandError("journal recent", err)
	}

	if err := cli.NewFormatter(format).FormatTo(cmd.OutOrStdout(), entryTable(entries)); err != nil {
		return cli.NewCommandError("journal recent", err)
	}
	return nil
}

// entryTable renders journal entries. It encodes to JSON as the entry list.
type entryTable []*journal.Entry

func (t entryTable) Header() []string {
	return []string{"TIME", "METHOD", "PATH", "OPERATION", "OUTCOME", "STATUS", "ATTEMPTS", "CREDENTIALS", "DURATION"}
}

func (t entryTable) Rows() [][]string {
	rows := make([][]string, 0, len(t))
	for _, e := range t {
		rows = append(rows, []string{
			e.Time.Format(time.RFC3339),
			e.Method,
			e.Path,
			e.Operation,
			e.Outcome,
			strconv.Itoa(e.Status),
			strconv.Itoa(e.Attempts),
			e.CredentialSource,
			e.Duration.Round(time.Millisecond).String(),
		})
	}
	return rows
}
