package cmd

import (
	"encoding/json"

	"github.com/spf13/cobra"

	"github.com/msto63/sexpr/internal/diagnostic"
)

var tokensJSON bool

var tokensCmd = &cobra.Command{
	Use:   "tokens <expression>",
	Short: "Prints the tokens of an expression",
	Long: `Prints the token stream the lexer produces for an expression, one
row per token with its kind, span and text. The expression is not parsed.`,
	Args: cobra.ExactArgs(1),
	RunE: runTokens,
}

func init() {
	rootCmd.AddCommand(tokensCmd)
	tokensCmd.Flags().BoolVar(&tokensJSON, "json", false, "print the tokens as JSON")
}

func runTokens(cmd *cobra.Command, args []string) error {
	engine, err := newEngine()
	if err != nil {
		return err
	}

	tokens := engine.Tokenize(args[0])
	if tokensJSON {
		enc := json.NewEncoder(cmd.OutOrStdout())
		enc.SetIndent("", "  ")
		return enc.Encode(tokens)
	}
	return diagnostic.TokenTable(cmd.OutOrStdout(), tokens, diagnosticOptions())
}
