// File: errors.go
// Title: Parse Errors
// Description: Error kinds and the positioned ParseError returned for the
//              first grammar violation of an expression.
// Author: msto63
// Version: v0.1.0
// Created: 2026-10-16
// Modified: 2026-10-16
//
// Change History:
// - 2026-10-16 v0.1.0: Initial implementation

package parser

import (
	"fmt"

	"github.com/msto63/sexpr/foundation/sexpr/token"
)

// ErrorKind classifies a syntax error. Kinds are errors themselves so that
// errors.Is(err, parser.ErrInvalidAssignTarget) works on a *ParseError.
type ErrorKind int

const (
	// ErrUnexpectedEOF: an operand or closing parenthesis was required
	ErrUnexpectedEOF ErrorKind = iota
	// ErrInvalidAssignTarget: the left side of = is not an identifier
	ErrInvalidAssignTarget
	// ErrUnexpectedToken: the token cannot appear at this position
	ErrUnexpectedToken
	// ErrUnterminatedCall: the input ended inside a call's argument list
	ErrUnterminatedCall
	// ErrTrailingInput: tokens follow a complete expression (strict mode)
	ErrTrailingInput
)

// String returns the human-readable description of the kind
func (k ErrorKind) String() string {
	switch k {
	case ErrUnexpectedEOF:
		return "unexpected end of input"
	case ErrInvalidAssignTarget:
		return "invalid assignment target"
	case ErrUnexpectedToken:
		return "unexpected token"
	case ErrUnterminatedCall:
		return "unterminated function call"
	case ErrTrailingInput:
		return "unexpected trailing input"
	default:
		return "syntax error"
	}
}

// Code returns a stable identifier for API payloads and storage
func (k ErrorKind) Code() string {
	switch k {
	case ErrUnexpectedEOF:
		return "UNEXPECTED_EOF"
	case ErrInvalidAssignTarget:
		return "INVALID_ASSIGN_TARGET"
	case ErrUnexpectedToken:
		return "UNEXPECTED_TOKEN"
	case ErrUnterminatedCall:
		return "UNTERMINATED_CALL"
	case ErrTrailingInput:
		return "TRAILING_INPUT"
	default:
		return "SYNTAX"
	}
}

// Error implements the error interface
func (k ErrorKind) Error() string {
	return k.String()
}

// ParseError reports the first grammar violation of an expression
type ParseError struct {
	Kind ErrorKind
	Span token.Span

	// Token is the offending token; Kind is token.EndOfInput when the input
	// ran out
	Token token.Token
}

// Error implements the error interface
func (e *ParseError) Error() string {
	if e.Token.Kind == token.EndOfInput {
		return fmt.Sprintf("parse error at column %d: %s", e.Span.Start+1, e.Kind)
	}
	return fmt.Sprintf("parse error at column %d: %s (near '%s')",
		e.Span.Start+1, e.Kind, e.Token.Text)
}

// Unwrap exposes the kind for errors.Is
func (e *ParseError) Unwrap() error {
	return e.Kind
}

func newParseError(kind ErrorKind, tok token.Token) *ParseError {
	return &ParseError{Kind: kind, Span: tok.Span, Token: tok}
}
