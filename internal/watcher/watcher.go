// ============================================================================
// sexpr - Infix to S-expression converter
// ============================================================================
//
// Package:     watcher
// Description: Re-converts an expression file whenever it changes
// Author:      Mike Stoffels
// Created:     2026-10-16
// License:     MIT
// ============================================================================

package watcher

import (
	"bufio"
	"context"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"

	mdwerror "github.com/msto63/sexpr/foundation/core/error"
	"github.com/msto63/sexpr/foundation/sexpr"
	"github.com/msto63/sexpr/internal/store"
	"github.com/msto63/sexpr/pkg/core/logging"
)

// DefaultDebounce is the quiet period after the last change before the file
// is converted again
const DefaultDebounce = 500 * time.Millisecond

// Line is the conversion of one non-empty line
type Line struct {
	Number int
	Input  string
	Result *sexpr.Result
	Err    error
}

// Batch is the conversion of a whole file
type Batch struct {
	Path  string
	Lines []Line
	At    time.Time

	// Err is set when the file could not be read; Lines is empty then
	Err error
}

// Failed returns the number of lines that did not convert
func (b *Batch) Failed() int {
	n := 0
	for _, l := range b.Lines {
		if l.Err != nil {
			n++
		}
	}
	return n
}

// ConvertReader converts every non-empty line read from r. Line numbers
// start at 1 and count empty lines.
func ConvertReader(engine *sexpr.Engine, r io.Reader) ([]Line, error) {
	scanner := bufio.NewScanner(r)
	// a line may hold up to MaxInputLength characters of 4 bytes each
	scanner.Buffer(make([]byte, 0, 64*1024), 4*engine.MaxInputLength()+1024)

	var lines []Line
	number := 0
	for scanner.Scan() {
		number++
		text := strings.TrimRight(scanner.Text(), "\r")
		if strings.TrimSpace(text) == "" {
			continue
		}
		res, err := engine.Convert(text)
		lines = append(lines, Line{Number: number, Input: text, Result: res, Err: err})
	}
	if err := scanner.Err(); err != nil {
		return lines, mdwerror.Wrap(err, "failed to read expressions").
			WithCode(mdwerror.CodeInvalidInput).
			WithOperation("watcher.ConvertReader").
			WithDetail("line", number+1)
	}
	return lines, nil
}

// ConvertFile converts every non-empty line of the file at path
func ConvertFile(engine *sexpr.Engine, path string) *Batch {
	batch := &Batch{Path: path, At: time.Now()}

	f, err := os.Open(path)
	if err != nil {
		batch.Err = mdwerror.Wrap(err, "failed to open expression file").
			WithCode(mdwerror.CodeMissingFile).
			WithOperation("watcher.ConvertFile").
			WithDetail("path", path)
		return batch
	}
	defer f.Close()

	batch.Lines, batch.Err = ConvertReader(engine, f)
	return batch
}

// Config configures a Watcher
type Config struct {
	Path     string
	Debounce time.Duration
	Engine   *sexpr.Engine

	// History records every converted line when set
	History store.Store
	Logger  *logging.Logger
}

// Watcher converts a file once and again after every change
type Watcher struct {
	path     string
	debounce time.Duration
	engine   *sexpr.Engine
	history  store.Store
	logger   *logging.Logger
}

// New creates a Watcher
func New(cfg Config) (*Watcher, error) {
	if cfg.Engine == nil {
		return nil, mdwerror.New("engine is required").
			WithCode(mdwerror.CodeServiceInitialization).
			WithOperation("watcher.New")
	}

	path, err := filepath.Abs(cfg.Path)
	if err != nil {
		return nil, mdwerror.Wrap(err, "invalid watch path").
			WithCode(mdwerror.CodeInvalidValue).
			WithOperation("watcher.New").
			WithDetail("path", cfg.Path)
	}
	if info, err := os.Stat(path); err != nil || info.IsDir() {
		return nil, mdwerror.Newf("%s is not a readable file", cfg.Path).
			WithCode(mdwerror.CodeMissingFile).
			WithOperation("watcher.New").
			WithDetail("path", cfg.Path)
	}

	if cfg.Debounce <= 0 {
		cfg.Debounce = DefaultDebounce
	}
	if cfg.Logger == nil {
		cfg.Logger = logging.New("watcher")
	}

	return &Watcher{
		path:     path,
		debounce: cfg.Debounce,
		engine:   cfg.Engine,
		history:  cfg.History,
		logger:   cfg.Logger,
	}, nil
}

// Path returns the absolute path being watched
func (w *Watcher) Path() string {
	return w.path
}

// Run converts the file, hands the batch to fn and repeats after each change
// until ctx is cancelled. The parent directory is watched so editors that
// replace the file on save keep working.
func (w *Watcher) Run(ctx context.Context, fn func(*Batch)) error {
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return mdwerror.Wrap(err, "failed to create file watcher").
			WithCode(mdwerror.CodeServiceInitialization).
			WithOperation("watcher.Run")
	}
	defer fsw.Close()

	if err := fsw.Add(filepath.Dir(w.path)); err != nil {
		return mdwerror.Wrap(err, "failed to watch directory").
			WithCode(mdwerror.CodeServiceInitialization).
			WithOperation("watcher.Run").
			WithDetail("path", filepath.Dir(w.path))
	}

	w.logger.Info("Watching expression file", "path", w.path, "debounce", w.debounce.String())
	w.emit(ctx, fn)

	var (
		timer *time.Timer
		fire  <-chan time.Time
	)
	defer func() {
		if timer != nil {
			timer.Stop()
		}
	}()

	for {
		select {
		case <-ctx.Done():
			w.logger.Debug("Stopping file watcher")
			return nil

		case event, ok := <-fsw.Events:
			if !ok {
				return nil
			}
			if filepath.Clean(event.Name) != w.path {
				continue
			}

			switch {
			case event.Has(fsnotify.Create), event.Has(fsnotify.Write):
				if timer == nil {
					timer = time.NewTimer(w.debounce)
				} else {
					timer.Stop()
					timer.Reset(w.debounce)
				}
				fire = timer.C
			case event.Has(fsnotify.Remove), event.Has(fsnotify.Rename):
				w.logger.Debug("Expression file moved away, waiting", "path", w.path, "op", event.Op.String())
			}

		case <-fire:
			fire = nil
			w.emit(ctx, fn)

		case err, ok := <-fsw.Errors:
			if !ok {
				return nil
			}
			w.logger.Error("Watcher error", "error", err)
		}
	}
}

func (w *Watcher) emit(ctx context.Context, fn func(*Batch)) {
	batch := ConvertFile(w.engine, w.path)
	if batch.Err != nil {
		w.logger.Warn("Failed to read expression file", "path", w.path, "error", batch.Err)
	} else {
		w.logger.Debug("Expression file converted", "path", w.path, "lines", len(batch.Lines), "failed", batch.Failed())
	}

	if w.history != nil {
		for _, line := range batch.Lines {
			if err := w.history.Record(ctx, store.NewEntry(store.SourceWatch, line.Input, line.Result, line.Err)); err != nil {
				w.logger.Warn("Failed to record conversion", "error", err)
				break
			}
		}
	}

	fn(batch)
}
