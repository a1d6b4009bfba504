// ============================================================================
// sexpr - Infix to S-expression converter
// ============================================================================
//
// Package:     store
// Description: Conversion history persisted in SQLite
// Author:      Mike Stoffels
// Created:     2026-10-16
// License:     MIT
// ============================================================================

package store

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"

	"github.com/msto63/sexpr/foundation/sexpr"
	"github.com/msto63/sexpr/foundation/sexpr/ast"
	"github.com/msto63/sexpr/foundation/sexpr/parser"
)

// Source names the surface a conversion came from
type Source string

const (
	SourceCLI       Source = "cli"
	SourceREPL      Source = "repl"
	SourceWatch     Source = "watch"
	SourceGRPC      Source = "grpc"
	SourceWebSocket Source = "websocket"
	SourceHTTP      Source = "http"
)

// Entry is one recorded conversion
type Entry struct {
	ID        string        `json:"id"`
	Timestamp time.Time     `json:"timestamp"`
	Source    Source        `json:"source"`
	Input     string        `json:"input"`
	SExpr     string        `json:"sexpr,omitempty"`
	OK        bool          `json:"ok"`
	Nodes     int           `json:"nodes,omitempty"`
	Duration  time.Duration `json:"duration"`
	RequestID string        `json:"request_id,omitempty"`

	// Set when OK is false
	ErrorKind    string `json:"error_kind,omitempty"`
	ErrorMessage string `json:"error_message,omitempty"`
	ErrorStart   int    `json:"error_start,omitempty"`
	ErrorEnd     int    `json:"error_end,omitempty"`
}

// Filter defines criteria for listing entries. Results are newest first.
type Filter struct {
	Source     Source
	FailedOnly bool
	Since      time.Time
	Limit      int
	Offset     int
}

// Stats summarizes the stored history
type Stats struct {
	Total    int64            `json:"total"`
	Failed   int64            `json:"failed"`
	BySource map[Source]int64 `json:"by_source"`
	Oldest   time.Time        `json:"oldest,omitempty"`
	Newest   time.Time        `json:"newest,omitempty"`
}

// Store defines the interface for history persistence
type Store interface {
	Record(ctx context.Context, entry *Entry) error
	Get(ctx context.Context, id string) (*Entry, error)
	List(ctx context.Context, filter Filter) ([]*Entry, error)
	Stats(ctx context.Context) (*Stats, error)

	// Maintenance
	Prune(ctx context.Context, olderThan time.Duration) (int64, error)
	Ping(ctx context.Context) error
	Close() error
}

// NewEntry builds an entry from the outcome of a conversion. err may be a
// *parser.ParseError or any other error; res is ignored when err is set.
func NewEntry(source Source, input string, res *sexpr.Result, err error) *Entry {
	entry := &Entry{
		ID:        uuid.NewString(),
		Timestamp: time.Now().UTC(),
		Source:    source,
		Input:     input,
	}

	if err != nil {
		entry.ErrorMessage = err.Error()
		entry.ErrorKind = "INTERNAL"

		var perr *parser.ParseError
		if errors.As(err, &perr) {
			entry.ErrorKind = perr.Kind.Code()
			entry.ErrorStart = perr.Span.Start
			entry.ErrorEnd = perr.Span.End
		} else if code := errorCode(err); code != "" {
			entry.ErrorKind = code
		}
		return entry
	}

	entry.OK = true
	entry.SExpr = res.SExpr
	entry.Nodes = ast.Count(res.Tree)
	entry.Duration = res.Duration
	return entry
}

// prepare fills generated fields before an insert
func (e *Entry) prepare() {
	if e.ID == "" {
		e.ID = uuid.NewString()
	}
	if e.Timestamp.IsZero() {
		e.Timestamp = time.Now()
	}
	e.Timestamp = e.Timestamp.UTC()
}

// matches reports whether e passes filter
func (f Filter) matches(e *Entry) bool {
	if f.Source != "" && e.Source != f.Source {
		return false
	}
	if f.FailedOnly && e.OK {
		return false
	}
	if !f.Since.IsZero() && e.Timestamp.Before(f.Since) {
		return false
	}
	return true
}
