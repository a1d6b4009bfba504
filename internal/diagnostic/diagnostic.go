// ============================================================================
// sexpr - Infix to S-expression converter
// ============================================================================
//
// Package:     diagnostic
// Description: Caret diagnostics for parse errors and the debug token table
// Author:      Mike Stoffels
// Created:     2026-10-16
// License:     MIT
// ============================================================================

package diagnostic

import (
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"

	mdwerror "github.com/msto63/sexpr/foundation/core/error"
	"github.com/msto63/sexpr/foundation/sexpr/parser"
	"github.com/msto63/sexpr/foundation/sexpr/token"
)

var colorError = lipgloss.Color("#EF4444")

// Options controls terminal rendering
type Options struct {
	// Color enables styling; it is still dropped when the writer is not a
	// terminal
	Color bool
}

// Format returns the caret diagnostic for perr: a blank line, the input, a
// marker line with one caret per character of the span followed by " ERROR",
// and a closing blank line
func Format(input string, perr *parser.ParseError, opts Options) string {
	return format(lipgloss.DefaultRenderer(), input, perr.Span, opts)
}

// Render writes the caret diagnostic for perr to w
func Render(w io.Writer, input string, perr *parser.ParseError, opts Options) error {
	return RenderSpan(w, input, perr.Span, opts)
}

// RenderSpan writes the caret diagnostic for an error reported only by its
// span, as remote replies do
func RenderSpan(w io.Writer, input string, span token.Span, opts Options) error {
	_, err := io.WriteString(w, format(lipgloss.NewRenderer(w), input, span, opts))
	return err
}

func format(r *lipgloss.Renderer, input string, span token.Span, opts Options) string {
	marker := strings.Repeat("^", span.Len()) + " ERROR"
	if opts.Color {
		marker = r.NewStyle().Foreground(colorError).Bold(true).Render(marker)
	}

	var b strings.Builder
	b.WriteString("\n")
	b.WriteString(input)
	b.WriteString("\n")
	b.WriteString(strings.Repeat(" ", span.Start))
	b.WriteString(marker)
	b.WriteString("\n\n")
	return b.String()
}

// RenderError writes a caret diagnostic for parse errors and a single
// "Error: ..." line for everything else
func RenderError(w io.Writer, input string, err error, opts Options) error {
	var perr *parser.ParseError
	if errors.As(err, &perr) {
		if rerr := Render(w, input, perr, opts); rerr != nil {
			return rerr
		}
		_, werr := fmt.Fprintf(w, "Error: %s\n", Message(err))
		return werr
	}

	_, werr := fmt.Fprintf(w, "Error: %s\n", Message(err))
	return werr
}

// Message returns a one-line description of err for logs and API payloads
func Message(err error) string {
	if err == nil {
		return ""
	}

	var perr *parser.ParseError
	if errors.As(err, &perr) {
		return perr.Error()
	}

	var merr *mdwerror.Error
	if errors.As(err, &merr) {
		return merr.Message()
	}
	return err.Error()
}

// TokenTable writes the debug token listing
func TokenTable(w io.Writer, tokens []token.Token, opts Options) error {
	rows := make([][]string, 0, len(tokens))
	for _, tok := range tokens {
		rows = append(rows, []string{
			tok.Kind.String(),
			strconv.Itoa(tok.Span.Start),
			strconv.Itoa(tok.Span.End),
			tok.Text,
		})
	}

	r := lipgloss.NewRenderer(w)
	header := r.NewStyle().Bold(opts.Color).Padding(0, 1)
	cell := r.NewStyle().Padding(0, 1)

	t := table.New().
		Border(lipgloss.NormalBorder()).
		BorderColumn(false).
		BorderTop(false).
		BorderBottom(false).
		BorderLeft(false).
		BorderRight(false).
		Headers("TokenType", "Start", "End", "Value").
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == table.HeaderRow {
				return header
			}
			return cell
		})

	_, err := fmt.Fprintln(w, t.Render())
	return err
}
