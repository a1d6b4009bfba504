// File: sexpr.go
// Title: Expression Conversion Engine
// Description: Facade over lexer, parser and renderer shared by the CLI, the
//              REPL, the watcher and the network services. An Engine holds
//              configuration only and is safe for concurrent use.
// Author: msto63
// Version: v0.1.0
// Created: 2026-10-16
// Modified: 2026-10-16
//
// Change History:
// - 2026-10-16 v0.1.0: Initial implementation

// Package sexpr converts infix expressions into S-expressions.
//
//	engine, _ := sexpr.New(sexpr.Options{})
//	res, err := engine.Convert("a = f(1 + 2, b) * -3")
//	fmt.Println(res.SExpr) // ( = a ( * ( f ( + 1 2 ) b ) ( - 3 ) ) )
//
// Syntax errors are returned as *parser.ParseError and carry the span of the
// offending token; other failures are *mdwerror.Error values.
package sexpr

import (
	"time"
	"unicode/utf8"

	mdwerror "github.com/msto63/sexpr/foundation/core/error"
	mdwlog "github.com/msto63/sexpr/foundation/core/log"
	"github.com/msto63/sexpr/foundation/sexpr/ast"
	"github.com/msto63/sexpr/foundation/sexpr/parser"
	"github.com/msto63/sexpr/foundation/sexpr/token"
)

// DefaultMaxInputLength is the input limit in characters when Options leave
// it unset
const DefaultMaxInputLength = 4096

// Options configures an Engine
type Options struct {
	Logger *mdwlog.Logger

	// MaxInputLength limits the input in characters; 0 selects the default
	MaxInputLength int

	// Strict rejects tokens left over after a complete expression
	Strict bool
}

// Result is the outcome of a successful conversion
type Result struct {
	Input    string        `json:"input"`
	Tokens   []token.Token `json:"tokens"`
	Tree     *ast.Node     `json:"tree"`
	SExpr    string        `json:"sexpr"`
	Duration time.Duration `json:"duration"`
}

// Engine converts expressions
type Engine struct {
	logger         *mdwlog.Logger
	maxInputLength int
	strict         bool
}

// New creates an engine
func New(opts Options) (*Engine, error) {
	if opts.MaxInputLength < 0 {
		return nil, mdwerror.Newf("max input length must not be negative, got %d", opts.MaxInputLength).
			WithCode(mdwerror.CodeInvalidValue).
			WithOperation("sexpr.New")
	}
	if opts.MaxInputLength == 0 {
		opts.MaxInputLength = DefaultMaxInputLength
	}
	if opts.Logger == nil {
		opts.Logger = mdwlog.GetDefault()
	}

	return &Engine{
		logger:         opts.Logger.WithField("component", "sexpr-engine"),
		maxInputLength: opts.MaxInputLength,
		strict:         opts.Strict,
	}, nil
}

// MaxInputLength returns the configured input limit
func (e *Engine) MaxInputLength() int {
	return e.maxInputLength
}

// Strict reports whether trailing tokens are rejected
func (e *Engine) Strict() bool {
	return e.strict
}

// Convert tokenizes and parses input and renders the tree
func (e *Engine) Convert(input string) (*Result, error) {
	length := utf8.RuneCountInString(input)
	if length > e.maxInputLength {
		return nil, mdwerror.Newf("expression has %d characters, limit is %d", length, e.maxInputLength).
			WithCode(mdwerror.CodeInputTooLarge).
			WithOperation("sexpr.Convert").
			WithDetail("length", length).
			WithDetail("limit", e.maxInputLength)
	}

	timer := e.logger.StartTimer("sexpr.Convert").WithField("length", length)

	lexer := parser.NewLexer(input)
	tokens := lexer.Tokens()

	tree, err := parser.NewParser(lexer, parser.Options{
		Logger: e.logger,
		Strict: e.strict,
	}).Parse()
	if err != nil {
		timer.WithField("success", false).WithField("error", err.Error()).Stop()
		return nil, err
	}

	res := &Result{
		Input:  input,
		Tokens: tokens,
		Tree:   tree,
		SExpr:  tree.String(),
	}
	res.Duration = timer.WithField("nodes", ast.Count(tree)).Stop()
	return res, nil
}

// Tokenize returns the tokens of input without parsing
func (e *Engine) Tokenize(input string) []token.Token {
	return parser.Tokenize(input)
}
