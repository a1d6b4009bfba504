// File: token.go
// Title: Expression Token Definitions
// Description: Token kinds, tokens and source spans shared by the lexer, the
//              parser, the AST and every surface that prints tokens.
// Author: msto63
// Version: v0.1.0
// Created: 2026-10-16
// Modified: 2026-10-16
//
// Change History:
// - 2026-10-16 v0.1.0: Initial implementation

package token

import (
	"fmt"
)

// Kind classifies a token
type Kind int

const (
	Identifier    Kind = iota // abc, a1
	BinaryOp                  // + - * / % = == != < <= > >= || &&
	UnaryOp                   // prefix - + ! ~ ^ | &
	OpenParen                 // (
	CloseParen                // )
	FuncCall                  // identifier directly followed by (
	Comma                     // ,
	Number                    // 12, 1.5
	StringLiteral             // "text" including its quotes
	EndOfInput                // synthetic, never produced by the lexer
)

var kindNames = [...]string{
	Identifier:    "IDENTIFIER",
	BinaryOp:      "BINARY_OP",
	UnaryOp:       "UNARY_OP",
	OpenParen:     "OPEN_PAREN",
	CloseParen:    "CLOSE_PAREN",
	FuncCall:      "FUNC_CALL",
	Comma:         "COMMA",
	Number:        "NUMBER",
	StringLiteral: "STRING",
	EndOfInput:    "EOF",
}

// String returns the upper-case name of the kind
func (k Kind) String() string {
	if k < 0 || int(k) >= len(kindNames) {
		return fmt.Sprintf("KIND(%d)", int(k))
	}
	return kindNames[k]
}

// IsLeaf reports whether nodes of this kind render bare
func (k Kind) IsLeaf() bool {
	return k == Identifier || k == Number || k == StringLiteral
}

// MarshalText encodes the kind by name
func (k Kind) MarshalText() ([]byte, error) {
	return []byte(k.String()), nil
}

// UnmarshalText decodes a kind name
func (k *Kind) UnmarshalText(text []byte) error {
	kind, ok := ParseKind(string(text))
	if !ok {
		return fmt.Errorf("unknown token kind %q", text)
	}
	*k = kind
	return nil
}

// ParseKind looks a kind up by its name
func ParseKind(name string) (Kind, bool) {
	for i, n := range kindNames {
		if n == name {
			return Kind(i), true
		}
	}
	return 0, false
}

// Span is a half-open range of character offsets into the input line
type Span struct {
	Start int `json:"start"`
	End   int `json:"end"`
}

// EOFSpan marks the position one past the end of an input of n characters
func EOFSpan(n int) Span {
	return Span{Start: n, End: n + 1}
}

// Len returns the number of characters covered, at least 1
func (s Span) Len() int {
	if s.End-s.Start < 1 {
		return 1
	}
	return s.End - s.Start
}

// Token is a classified piece of the input
type Token struct {
	Kind Kind   `json:"kind"`
	Text string `json:"text"`
	Span Span   `json:"span"`
}

// String returns KIND(text), for example BINARY_OP(+)
func (t Token) String() string {
	return fmt.Sprintf("%s(%s)", t.Kind, t.Text)
}
