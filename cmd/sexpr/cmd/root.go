package cmd

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	mdwerror "github.com/msto63/sexpr/foundation/core/error"
	"github.com/msto63/sexpr/foundation/sexpr"
	"github.com/msto63/sexpr/internal/diagnostic"
	"github.com/msto63/sexpr/internal/store"
	"github.com/msto63/sexpr/internal/watcher"
	"github.com/msto63/sexpr/pkg/core/config"
	"github.com/msto63/sexpr/pkg/core/logging"
)

// errReported marks failures whose diagnostic has already been printed
var errReported = errors.New("diagnostic reported")

var (
	cfgFile   string
	verbose   bool
	logFormat string
	strict    bool
	noColor   bool

	debugMode     bool
	fileMode      bool
	recordHistory bool

	appConfig *config.Config
)

var rootCmd = &cobra.Command{
	Use:   "sexpr [flags] <expression>",
	Short: "S-Expression Converter",
	Long: `sexpr converts infix expressions into fully parenthesized S-expressions.

  $ sexpr "x = f(a, 2) * -b"
  ( = x ( * ( f a 2 ) ( - b ) ) )

The argument is an expression, or a file path with --file; every non-empty
line of the file is converted on its own.

Tokens left over after a complete expression are ignored unless --strict is
set. A call name must touch its parenthesis: "f (x)" converts to "f" and
reports the group only with --strict.`,
	Args:              cobra.MaximumNArgs(1),
	PersistentPreRunE: setup,
	RunE:              runConvert,
	SilenceErrors:     true,
	SilenceUsage:      true,
}

// Execute runs the root command
func Execute() error {
	err := rootCmd.Execute()
	if err != nil && !errors.Is(err, errReported) {
		printError(rootCmd.ErrOrStderr(), err)
	}
	return err
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default: $SEXPR_CONFIG or ./configs/config.toml)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose logging")
	rootCmd.PersistentFlags().StringVar(&logFormat, "log-format", "", "log format: console, text, json or logfmt")
	rootCmd.PersistentFlags().BoolVar(&strict, "strict", false, "reject tokens after a complete expression")
	rootCmd.PersistentFlags().BoolVar(&noColor, "no-color", false, "disable colored output")

	rootCmd.Flags().BoolVarP(&debugMode, "debug", "d", false, "show debug information")
	rootCmd.Flags().BoolVarP(&fileMode, "file", "f", false, "treat the argument as a file of expressions")
	rootCmd.Flags().BoolVar(&recordHistory, "history", false, "record conversions in the history database")
}

// setup loads the configuration and configures logging for every command
func setup(cmd *cobra.Command, args []string) error {
	var err error
	if cfgFile != "" {
		appConfig, err = config.Load(cfgFile)
	} else {
		appConfig, err = config.LoadFromEnv()
	}
	if err != nil {
		return err
	}

	level := appConfig.General.LogLevel
	if verbose {
		level = "debug"
	}
	format := appConfig.General.LogFormat
	if logFormat != "" {
		format = logFormat
	}

	logging.Configure(logging.LoggerConfig{
		Name:   appConfig.General.Name,
		Level:  level,
		Format: format,
		Output: cmd.ErrOrStderr(),
	})
	return nil
}

func newEngine() (*sexpr.Engine, error) {
	return sexpr.New(sexpr.Options{
		Logger:         logging.New("engine").Foundation(),
		MaxInputLength: appConfig.Parser.MaxInputLength,
		Strict:         strict || appConfig.Parser.Strict,
	})
}

// openHistory opens the history database when it is enabled in the config
// or force is set; it returns nil otherwise
func openHistory(force bool) (store.Store, error) {
	if !force && !appConfig.History.Enabled {
		return nil, nil
	}
	history, err := store.NewSQLiteStore(store.SQLiteConfig{Path: appConfig.History.Path})
	if err != nil {
		return nil, err
	}
	return history, nil
}

func diagnosticOptions() diagnostic.Options {
	return diagnostic.Options{Color: !noColor && !appConfig.Output.NoColor}
}

func runConvert(cmd *cobra.Command, args []string) error {
	if len(args) == 0 {
		return cmd.Help()
	}

	engine, err := newEngine()
	if err != nil {
		return err
	}

	history, err := openHistory(recordHistory)
	if err != nil {
		return err
	}
	if history != nil {
		defer history.Close()
	}

	var lines []watcher.Line
	if fileMode {
		batch := watcher.ConvertFile(engine, args[0])
		if batch.Err != nil {
			return batch.Err
		}
		lines = batch.Lines
	} else {
		res, err := engine.Convert(args[0])
		lines = []watcher.Line{{Number: 1, Input: args[0], Result: res, Err: err}}
	}

	c := &converter{
		engine:  engine,
		history: history,
		out:     cmd.OutOrStdout(),
		errOut:  cmd.ErrOrStderr(),
		opts:    diagnosticOptions(),
		logger:  logging.New("cli"),
	}

	if fileMode {
		c.path = args[0]
	}

	failed := false
	for _, line := range lines {
		if !c.print(cmd.Context(), line) {
			failed = true
		}
	}
	if failed {
		return errReported
	}
	return nil
}

// converter prints conversion outcomes in the CLI format
type converter struct {
	engine  *sexpr.Engine
	history store.Store
	out     io.Writer
	errOut  io.Writer
	opts    diagnostic.Options
	logger  *logging.Logger

	// path prefixes diagnostics in file mode
	path string
}

// print writes one outcome and reports whether it succeeded
func (c *converter) print(ctx context.Context, line watcher.Line) bool {
	if debugMode {
		c.printDebug(line)
	}

	if c.history != nil {
		if ctx == nil {
			ctx = context.Background()
		}
		if err := c.history.Record(ctx, store.NewEntry(store.SourceCLI, line.Input, line.Result, line.Err)); err != nil {
			c.logger.Warn("Failed to record conversion", "error", err)
		}
	}

	if line.Err != nil {
		if c.path != "" {
			fmt.Fprintf(c.errOut, "%s:%d:\n", c.path, line.Number)
		}
		diagnostic.RenderError(c.errOut, line.Input, line.Err, c.opts)
		return false
	}

	fmt.Fprintln(c.out, line.Result.SExpr)
	return true
}

func printError(w io.Writer, err error) {
	fmt.Fprintf(w, "Error: %s\n", diagnostic.Message(err))

	var merr *mdwerror.Error
	if verbose && errors.As(err, &merr) {
		fmt.Fprintln(w, merr.String())
	}
}
