// File: severity.go
// Title: Error Severity Levels
// Description: Severity levels for structured errors; the logger picks its
//              level from them.
// Author: msto63
// Version: v0.2.0
// Created: 2025-01-24
// Modified: 2026-10-16
//
// Change History:
// - 2025-01-24 v0.1.0: Initial implementation with four severity levels
// - 2026-10-16 v0.2.0: Mapping updated for the converter's codes

package error

// Severity represents the severity level of an error
type Severity int

const (
	// SeverityLow is a problem with the caller's input
	SeverityLow Severity = iota

	// SeverityMedium affects one operation but the process keeps working
	SeverityMedium

	// SeverityHigh is a failing dependency (database, listener)
	SeverityHigh

	// SeverityCritical makes the process unusable
	SeverityCritical
)

// String returns the string representation of the severity level
func (s Severity) String() string {
	switch s {
	case SeverityLow:
		return "low"
	case SeverityMedium:
		return "medium"
	case SeverityHigh:
		return "high"
	case SeverityCritical:
		return "critical"
	default:
		return "unknown"
	}
}

// ShouldAlert returns true if this severity level should trigger alerts
func (s Severity) ShouldAlert() bool {
	return s >= SeverityHigh
}

// GetSeverityFromCode determines the default severity for a code
func GetSeverityFromCode(code Code) Severity {
	switch code {
	case CodeServiceInitialization:
		return SeverityCritical
	case CodeDatabaseError, CodeConnectionFailed, CodeServiceUnavailable:
		return SeverityHigh
	case CodeInvalidInput, CodeSyntax, CodeInputTooLarge, CodeNotFound,
		CodeInvalidValue, CodeMissingFile:
		return SeverityLow
	default:
		return SeverityMedium
	}
}
