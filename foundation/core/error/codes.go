// File: codes.go
// Title: Error Codes
// Description: Structured error codes for categorizing failures and mapping
//              them to HTTP status codes.
// Author: msto63
// Version: v0.2.0
// Created: 2025-01-24
// Modified: 2026-10-16
//
// Change History:
// - 2025-01-24 v0.1.0: Initial implementation with platform error codes
// - 2026-10-16 v0.2.0: Reduced to the converter's codes

package error

// Code represents a structured error code for categorizing errors
type Code string

const (
	// Generic codes
	CodeUnknown      Code = "UNKNOWN"
	CodeInternal     Code = "INTERNAL"
	CodeNotFound     Code = "NOT_FOUND"
	CodeInvalidInput Code = "INVALID_INPUT"
	CodeTimeout      Code = "TIMEOUT"

	// Expression processing
	CodeSyntax        Code = "SYNTAX"
	CodeInputTooLarge Code = "INPUT_TOO_LARGE"

	// Storage
	CodeDatabaseError    Code = "DATABASE_ERROR"
	CodeConnectionFailed Code = "CONNECTION_FAILED"

	// Service and network
	CodeServiceUnavailable    Code = "SERVICE_UNAVAILABLE"
	CodeServiceInitialization Code = "SERVICE_INITIALIZATION"
	CodeNetworkError          Code = "NETWORK_ERROR"

	// Configuration and environment
	CodeConfigError  Code = "CONFIG_ERROR"
	CodeMissingFile  Code = "MISSING_FILE"
	CodeInvalidValue Code = "INVALID_VALUE"
)

// String returns the string representation of the error code
func (c Code) String() string {
	return string(c)
}

// Category returns the high-level category of the error code
func (c Code) Category() string {
	switch c {
	case CodeSyntax, CodeInputTooLarge:
		return "expression"
	case CodeDatabaseError, CodeConnectionFailed:
		return "storage"
	case CodeServiceUnavailable, CodeServiceInitialization, CodeNetworkError:
		return "service"
	case CodeConfigError, CodeMissingFile, CodeInvalidValue:
		return "configuration"
	default:
		return "generic"
	}
}

// HTTPStatus returns the HTTP status code for this error code
func (c Code) HTTPStatus() int {
	switch c {
	case CodeNotFound, CodeMissingFile:
		return 404
	case CodeInvalidInput, CodeSyntax, CodeInvalidValue:
		return 400
	case CodeInputTooLarge:
		return 413
	case CodeTimeout:
		return 408
	case CodeServiceUnavailable, CodeDatabaseError, CodeConnectionFailed:
		return 503
	default:
		return 500
	}
}
