// Package error provides structured error handling for the sexpr converter.
//
// Package: error
// Title: sexpr Error Handling
// Description: Structured errors with codes, severities, operation names,
//              details and stack traces. Used for every failure that is not a
//              syntax error of the converted expression: oversized input,
//              configuration, storage and service failures.
// Author: msto63
// Version: v0.2.0
// Created: 2025-01-24
// Modified: 2026-10-16
//
// Change History:
// - 2025-01-24 v0.1.0: Initial implementation with contextual errors and codes
// - 2026-10-16 v0.2.0: Code set reduced to the converter's failure classes
//
// Usage:
//   import mdwerror "github.com/msto63/sexpr/foundation/core/error"
//
//   err := mdwerror.New("input exceeds maximum length").
//     WithCode(mdwerror.CodeInvalidInput).
//     WithOperation("sexpr.Convert").
//     WithDetail("limit", 4096)
//
//   if mdwerror.HasCode(err, mdwerror.CodeInvalidInput) {
//     // reject the request
//   }
package error
