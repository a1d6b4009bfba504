package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/msto63/sexpr/internal/watcher"
	"github.com/msto63/sexpr/pkg/core/logging"
)

var watchCmd = &cobra.Command{
	Use:   "watch <file>",
	Short: "Re-converts a file of expressions whenever it changes",
	Args:  cobra.ExactArgs(1),
	RunE:  runWatch,
}

func init() {
	rootCmd.AddCommand(watchCmd)
}

func runWatch(cmd *cobra.Command, args []string) error {
	engine, err := newEngine()
	if err != nil {
		return err
	}

	history, err := openHistory(false)
	if err != nil {
		return err
	}
	cfg := watcher.Config{
		Path:     args[0],
		Debounce: appConfig.Watch.Debounce.Duration,
		Engine:   engine,
		Logger:   logging.New("watcher"),
	}
	if history != nil {
		defer history.Close()
		cfg.History = history
	}

	w, err := watcher.New(cfg)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	c := &converter{
		engine: engine,
		out:    cmd.OutOrStdout(),
		errOut: cmd.OutOrStdout(),
		opts:   diagnosticOptions(),
		logger: logging.New("cli"),
		path:   args[0],
	}

	return w.Run(ctx, func(batch *watcher.Batch) {
		fmt.Fprintf(c.out, "── %s (%s) ──\n", args[0], batch.At.Format("15:04:05"))
		if batch.Err != nil {
			printError(c.out, batch.Err)
			return
		}
		for _, line := range batch.Lines {
			c.print(ctx, line)
		}
		fmt.Fprintf(c.out, "%d converted, %d failed\n\n", len(batch.Lines), batch.Failed())
	})
}
