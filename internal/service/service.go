// ============================================================================
// sexpr - Infix to S-expression converter
// ============================================================================
//
// Package:     service
// Description: Converter service shared by the gRPC and websocket surfaces
// Author:      Mike Stoffels
// Created:     2026-10-16
// License:     MIT
// ============================================================================

package service

import (
	"context"
	"errors"
	"strings"
	"time"

	mdwerror "github.com/msto63/sexpr/foundation/core/error"
	"github.com/msto63/sexpr/foundation/sexpr"
	"github.com/msto63/sexpr/foundation/sexpr/ast"
	"github.com/msto63/sexpr/foundation/sexpr/parser"
	"github.com/msto63/sexpr/foundation/sexpr/token"
	"github.com/msto63/sexpr/internal/store"
	"github.com/msto63/sexpr/pkg/core/cache"
	"github.com/msto63/sexpr/pkg/core/logging"
)

// Reply is the outcome of a conversion as delivered to remote callers. A
// syntax error is a regular reply with OK false; only failures unrelated to
// the expression's syntax are returned as errors.
type Reply struct {
	OK         bool          `json:"ok"`
	Input      string        `json:"input,omitempty"`
	SExpr      string        `json:"sexpr,omitempty"`
	Tokens     []token.Token `json:"tokens,omitempty"`
	Tree       *ast.Node     `json:"tree,omitempty"`
	Nodes      int           `json:"nodes,omitempty"`
	Depth      int           `json:"depth,omitempty"`
	DurationMs float64       `json:"duration_ms"`
	Cached     bool          `json:"cached"`
	Error      *ReplyError   `json:"error,omitempty"`
}

// ReplyError describes a syntax error
type ReplyError struct {
	Kind    string `json:"kind"`
	Message string `json:"message"`
	Start   int    `json:"start"`
	End     int    `json:"end"`
}

// Config holds the service dependencies. Only Engine is required.
type Config struct {
	Engine  *sexpr.Engine
	Cache   *cache.ResultCache
	History store.Store
	Logger  *logging.Logger
}

// Converter runs conversions for remote callers
type Converter struct {
	engine  *sexpr.Engine
	cache   *cache.ResultCache
	history store.Store
	logger  *logging.Logger
}

// New creates a Converter
func New(cfg Config) (*Converter, error) {
	if cfg.Engine == nil {
		return nil, mdwerror.New("engine is required").
			WithCode(mdwerror.CodeServiceInitialization).
			WithOperation("service.New")
	}
	if cfg.Logger == nil {
		cfg.Logger = logging.New("converter")
	}

	return &Converter{
		engine:  cfg.Engine,
		cache:   cfg.Cache,
		history: cfg.History,
		logger:  cfg.Logger,
	}, nil
}

// Engine returns the underlying engine
func (c *Converter) Engine() *sexpr.Engine {
	return c.engine
}

// Convert converts input on behalf of source. requestID is stored with the
// history entry and may be empty.
func (c *Converter) Convert(ctx context.Context, source store.Source, requestID, input string) (*Reply, error) {
	if strings.TrimSpace(input) == "" {
		return nil, mdwerror.New("expression is required").
			WithCode(mdwerror.CodeInvalidInput).
			WithOperation("service.Convert")
	}

	start := time.Now()
	res, cached, err := c.convert(input)
	c.record(ctx, source, requestID, input, res, err)

	var perr *parser.ParseError
	switch {
	case errors.As(err, &perr):
		return &Reply{
			Input:      input,
			Tokens:     c.engine.Tokenize(input),
			DurationMs: milliseconds(time.Since(start)),
			Error: &ReplyError{
				Kind:    perr.Kind.Code(),
				Message: perr.Error(),
				Start:   perr.Span.Start,
				End:     perr.Span.End,
			},
		}, nil
	case err != nil:
		return nil, err
	}

	duration := res.Duration
	if cached {
		duration = time.Since(start)
	}
	return &Reply{
		OK:         true,
		Input:      input,
		SExpr:      res.SExpr,
		Tokens:     res.Tokens,
		Tree:       res.Tree,
		Nodes:      ast.Count(res.Tree),
		Depth:      ast.Depth(res.Tree),
		DurationMs: milliseconds(duration),
		Cached:     cached,
	}, nil
}

// Tokenize returns the tokens of input
func (c *Converter) Tokenize(ctx context.Context, input string) (*Reply, error) {
	if length := len([]rune(input)); length > c.engine.MaxInputLength() {
		return nil, mdwerror.Newf("expression has %d characters, limit is %d", length, c.engine.MaxInputLength()).
			WithCode(mdwerror.CodeInputTooLarge).
			WithOperation("service.Tokenize")
	}
	return &Reply{
		OK:     true,
		Input:  input,
		Tokens: c.engine.Tokenize(input),
	}, nil
}

func (c *Converter) convert(input string) (*sexpr.Result, bool, error) {
	if c.cache == nil {
		res, err := c.engine.Convert(input)
		return res, false, err
	}
	return c.cache.Convert(c.engine, input)
}

func (c *Converter) record(ctx context.Context, source store.Source, requestID, input string, res *sexpr.Result, convErr error) {
	if c.history == nil {
		return
	}
	entry := store.NewEntry(source, input, res, convErr)
	entry.RequestID = requestID
	if err := c.history.Record(ctx, entry); err != nil {
		c.logger.Warn("Failed to record conversion", "request_id", requestID, "error", err)
	}
}

func milliseconds(d time.Duration) float64 {
	return float64(d.Microseconds()) / 1000
}
