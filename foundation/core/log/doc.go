// Package log provides structured logging for the sexpr converter.
//
// Package: log
// Title: sexpr Structured Logging
// Description: Structured logger with levels, contextual fields, request IDs,
//              pluggable output formats and timers. Understands the structured
//              errors of the core/error package so that failures are logged
//              with their code, severity and operation.
// Author: msto63
// Version: v0.2.0
// Created: 2025-01-24
// Modified: 2026-10-16
//
// Change History:
// - 2025-01-24 v0.1.0: Initial implementation with structured logging and error integration
// - 2026-10-16 v0.2.0: Trimmed for the converter; stderr default, sorted fields, silent level
//
// Usage:
//   import mdwlog "github.com/msto63/sexpr/foundation/core/log"
//
//   logger := mdwlog.NewWithConfig(mdwlog.Config{
//     Level:  mdwlog.LevelDebug,
//     Format: mdwlog.FormatConsole,
//   }).WithField("component", "sexpr-parser")
//
//   logger.Debug("Parsing expression", mdwlog.Fields{"input": "1+2*3"})
//
//   timer := logger.StartTimer("convert")
//   // ... lex, parse, render
//   timer.Stop()
package log
