// ============================================================================
// sexpr - Infix to S-expression converter
// ============================================================================
//
// Package:     logging
// Description: Factory functions and the process-wide logger configuration
// Author:      Mike Stoffels
// Created:     2026-10-16
// License:     MIT
// ============================================================================

package logging

import (
	"io"
	"os"
	"sync"

	mdwlog "github.com/msto63/sexpr/foundation/core/log"
)

var (
	processConfig   = DefaultLoggerConfig("sexpr")
	processConfigMu sync.RWMutex
)

// LoggerConfig holds configuration for creating loggers
type LoggerConfig struct {
	// Component name
	Name string

	// Log level (trace, debug, info, warn, error, silent)
	Level string

	// Output format: json, text, console or logfmt (default: console)
	Format string

	// Output writer (default: stderr, stdout carries conversion results)
	Output io.Writer

	// Additional outputs besides Output
	AdditionalOutputs []io.Writer

	EnableCaller bool
}

// DefaultLoggerConfig returns a default configuration
func DefaultLoggerConfig(name string) LoggerConfig {
	return LoggerConfig{
		Name:   name,
		Level:  "warn",
		Format: "console",
	}
}

// Configure sets the configuration used by New and installs a matching
// foundation default logger
func Configure(cfg LoggerConfig) *mdwlog.Logger {
	processConfigMu.Lock()
	processConfig = cfg
	processConfigMu.Unlock()

	logger := NewLogger(cfg)
	mdwlog.SetDefault(logger)
	return logger
}

// CurrentConfig returns the process configuration
func CurrentConfig() LoggerConfig {
	processConfigMu.RLock()
	defer processConfigMu.RUnlock()
	return processConfig
}

func componentConfig(name string) LoggerConfig {
	cfg := CurrentConfig()
	cfg.Name = name
	return cfg
}

// NewLogger creates a new foundation logger
func NewLogger(cfg LoggerConfig) *mdwlog.Logger {
	var output io.Writer = os.Stderr
	if cfg.Output != nil {
		output = cfg.Output
	}

	if len(cfg.AdditionalOutputs) > 0 {
		writers := append([]io.Writer{output}, cfg.AdditionalOutputs...)
		output = io.MultiWriter(writers...)
	}

	return mdwlog.NewWithConfig(mdwlog.Config{
		Level:        parseLevel(cfg.Level),
		Format:       parseFormat(cfg.Format),
		Output:       output,
		Name:         cfg.Name,
		EnableCaller: cfg.EnableCaller,
	})
}

// parseLevel converts a string level to mdwlog.Level, falling back to info
func parseLevel(level string) mdwlog.Level {
	parsed, err := mdwlog.ParseLevel(level)
	if err != nil {
		return mdwlog.LevelInfo
	}
	return parsed
}

// parseFormat converts a string format to mdwlog.Format, falling back to
// console
func parseFormat(format string) mdwlog.Format {
	parsed, err := mdwlog.ParseFormat(format)
	if err != nil {
		return mdwlog.FormatConsole
	}
	return parsed
}
