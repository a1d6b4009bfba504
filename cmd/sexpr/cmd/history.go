package cmd

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/msto63/sexpr/internal/store"
)

var (
	historyLimit  int
	historyFailed bool
	historySource string
	pruneOlder    time.Duration
)

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "Lists recorded conversions",
	Long: `Lists conversions recorded in the history database, newest first.

Conversions are recorded by "serve", "watch" and "repl" when history is
enabled in the config, and by the root command with --history.`,
	Args: cobra.NoArgs,
	RunE: runHistory,
}

var historyPruneCmd = &cobra.Command{
	Use:   "prune",
	Short: "Deletes old history entries",
	Args:  cobra.NoArgs,
	RunE:  runHistoryPrune,
}

func init() {
	rootCmd.AddCommand(historyCmd)
	historyCmd.AddCommand(historyPruneCmd)

	historyCmd.Flags().IntVarP(&historyLimit, "limit", "n", 20, "maximum number of entries")
	historyCmd.Flags().BoolVar(&historyFailed, "failed", false, "only failed conversions")
	historyCmd.Flags().StringVar(&historySource, "source", "", "only entries from cli, repl, watch, grpc, websocket or http")

	historyPruneCmd.Flags().DurationVar(&pruneOlder, "older-than", 0, "age of the entries to delete (default: history.retention)")
}

func runHistory(cmd *cobra.Command, args []string) error {
	history, err := openHistory(true)
	if err != nil {
		return err
	}
	defer history.Close()

	entries, err := history.List(cmd.Context(), store.Filter{
		Source:     store.Source(strings.ToLower(historySource)),
		FailedOnly: historyFailed,
		Limit:      historyLimit,
	})
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	if len(entries) == 0 {
		fmt.Fprintln(out, "No conversions recorded.")
		return nil
	}

	for _, e := range entries {
		outcome := e.SExpr
		if !e.OK {
			outcome = fmt.Sprintf("%s [%d,%d)", e.ErrorKind, e.ErrorStart, e.ErrorEnd)
		}
		fmt.Fprintf(out, "%s  %-9s  %s\n    %s\n",
			e.Timestamp.Local().Format("2006-01-02 15:04:05"),
			e.Source,
			e.Input,
			outcome,
		)
	}

	stats, err := history.Stats(cmd.Context())
	if err != nil {
		return err
	}
	fmt.Fprintf(out, "\n%d of %d shown, %d failed in total\n", len(entries), stats.Total, stats.Failed)
	return nil
}

func runHistoryPrune(cmd *cobra.Command, args []string) error {
	olderThan := pruneOlder
	if olderThan <= 0 {
		olderThan = appConfig.History.Retention.Duration
	}

	history, err := openHistory(true)
	if err != nil {
		return err
	}
	defer history.Close()

	deleted, err := history.Prune(cmd.Context(), olderThan)
	if err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Deleted %d entries older than %s\n", deleted, olderThan)
	return nil
}
