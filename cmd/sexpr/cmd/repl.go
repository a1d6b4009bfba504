package cmd

import (
	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/msto63/sexpr/internal/tui"
)

var replCmd = &cobra.Command{
	Use:   "repl",
	Short: "Starts the interactive REPL",
	Long: `Starts an interactive session. The line being typed is converted live;
Enter adds it to the scrollback.

Navigation:
  Enter     - Convert
  Up/Down   - Recall previous input
  Tab       - Switch between REPL and history
  Ctrl+L    - Clear scrollback
  Ctrl+C    - Quit`,
	Args: cobra.NoArgs,
	RunE: runREPL,
}

func init() {
	rootCmd.AddCommand(replCmd)
}

func runREPL(cmd *cobra.Command, args []string) error {
	engine, err := newEngine()
	if err != nil {
		return err
	}

	history, err := openHistory(false)
	if err != nil {
		return err
	}
	opts := tui.Options{Engine: engine}
	if history != nil {
		defer history.Close()
		opts.History = history
	}

	p := tea.NewProgram(tui.NewModel(opts), tea.WithAltScreen())
	_, err = p.Run()
	return err
}
