package cmd

import (
	"fmt"

	"github.com/davecgh/go-spew/spew"

	"github.com/msto63/sexpr/internal/diagnostic"
	"github.com/msto63/sexpr/internal/watcher"
)

// dumper prints the tree without pointer addresses so dumps are stable
var dumper = spew.ConfigState{
	Indent:                  "  ",
	DisablePointerAddresses: true,
	DisableCapacities:       true,
	SortKeys:                true,
}

// printDebug writes the flag echo, the token table and the tree dump
func (c *converter) printDebug(line watcher.Line) {
	fmt.Fprintln(c.out)
	fmt.Fprintf(c.out, "Debug: %t\n", debugMode)
	fmt.Fprintf(c.out, "Expr: %q\n", line.Input)

	tokens := c.engine.Tokenize(line.Input)
	if line.Result != nil {
		tokens = line.Result.Tokens
	}
	fmt.Fprintln(c.out)
	if err := diagnostic.TokenTable(c.out, tokens, c.opts); err != nil {
		c.logger.Warn("Failed to write token table", "error", err)
	}

	if line.Result == nil {
		return
	}
	fmt.Fprintln(c.out)
	dumper.Fdump(c.out, line.Result.Tree)
	fmt.Fprintln(c.out)
}
