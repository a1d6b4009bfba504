// File: lexer.go
// Title: Expression Lexer
// Description: Single forward scan producing the token queue consumed by the
//              parser. Operators are merged and identifiers reclassified as
//              calls while scanning, by looking at the token in progress.
// Author: msto63
// Version: v0.1.0
// Created: 2026-10-16
// Modified: 2026-10-16
//
// Change History:
// - 2026-10-16 v0.1.0: Initial implementation

package parser

import (
	"strings"
	"unicode/utf8"

	"github.com/msto63/sexpr/foundation/sexpr/token"
)

// Lexer holds the tokens of one input line
type Lexer struct {
	input  string
	length int

	// pending is stored back to front so Next and Push are O(1)
	pending []token.Token
}

// NewLexer tokenizes input and returns a lexer positioned at the first token
func NewLexer(input string) *Lexer {
	tokens := scan(input)

	pending := make([]token.Token, len(tokens))
	for i, tok := range tokens {
		pending[len(tokens)-1-i] = tok
	}

	return &Lexer{
		input:   input,
		length:  utf8.RuneCountInString(input),
		pending: pending,
	}
}

// Tokenize returns all tokens of input in source order
func Tokenize(input string) []token.Token {
	return scan(input)
}

// Next removes and returns the front token. The boolean is false once the
// queue is exhausted.
func (l *Lexer) Next() (token.Token, bool) {
	if len(l.pending) == 0 {
		return token.Token{}, false
	}
	tok := l.pending[len(l.pending)-1]
	l.pending = l.pending[:len(l.pending)-1]
	return tok, true
}

// Push returns a token to the front of the queue
func (l *Lexer) Push(tok token.Token) {
	l.pending = append(l.pending, tok)
}

// Tokens returns the tokens not yet consumed, in source order
func (l *Lexer) Tokens() []token.Token {
	out := make([]token.Token, len(l.pending))
	for i, tok := range l.pending {
		out[len(l.pending)-1-i] = tok
	}
	return out
}

// Remaining returns the number of tokens not yet consumed
func (l *Lexer) Remaining() int {
	return len(l.pending)
}

// Input returns the line the lexer was built from
func (l *Lexer) Input() string {
	return l.input
}

// Len returns the input length in characters
func (l *Lexer) Len() int {
	return l.length
}

// EOFToken returns the synthetic token used to report a missing token
func (l *Lexer) EOFToken() token.Token {
	return token.Token{Kind: token.EndOfInput, Span: token.EOFSpan(l.length)}
}

// scanner is the state of one scan. Ignored characters clear open, so
// identifiers, numbers and call names only grow from adjacent characters.
// Operator merges and sign classification look at the previous token.
type scanner struct {
	tokens []token.Token
	open   bool
}

// current returns the token still accepting characters, or nil
func (s *scanner) current() *token.Token {
	if !s.open || len(s.tokens) == 0 {
		return nil
	}
	return &s.tokens[len(s.tokens)-1]
}

// previous returns the last token produced regardless of adjacency, or nil
func (s *scanner) previous() *token.Token {
	if len(s.tokens) == 0 {
		return nil
	}
	return &s.tokens[len(s.tokens)-1]
}

func (s *scanner) emit(kind token.Kind, r rune, pos int) {
	s.tokens = append(s.tokens, token.Token{
		Kind: kind,
		Text: string(r),
		Span: token.Span{Start: pos, End: pos + 1},
	})
	s.open = true
}

func (s *scanner) extend(cur *token.Token, r rune, pos int) {
	cur.Text += string(r)
	cur.Span.End = pos + 1
}

func scan(input string) []token.Token {
	s := &scanner{}

	pos := 0
	for _, r := range input {
		s.step(r, pos)
		pos++
	}
	return s.tokens
}

func (s *scanner) step(r rune, pos int) {
	cur := s.current()

	switch {
	case cur != nil && isOpenString(cur):
		s.extend(cur, r, pos)

	case r == '"':
		s.emit(token.StringLiteral, r, pos)

	case isLetter(r):
		if cur != nil && cur.Kind == token.Identifier {
			s.extend(cur, r, pos)
		} else {
			s.emit(token.Identifier, r, pos)
		}

	case isDigit(r) || r == '.':
		if cur != nil && (cur.Kind == token.Identifier || cur.Kind == token.Number) {
			s.extend(cur, r, pos)
		} else {
			s.emit(token.Number, r, pos)
		}

	case r == '=':
		if prev := s.previous(); prev != nil && isComparePrefix(prev.Text) {
			s.extend(prev, r, pos)
			prev.Kind = token.BinaryOp
		} else {
			s.emit(token.BinaryOp, r, pos)
		}

	case r == '|' || r == '&':
		if prev := s.previous(); prev != nil && prev.Text == string(r) {
			s.extend(prev, r, pos)
			prev.Kind = token.BinaryOp
		} else {
			s.emit(token.UnaryOp, r, pos)
		}

	case r == '!' || r == '~' || r == '^':
		s.emit(token.UnaryOp, r, pos)

	case r == '+' || r == '-':
		if startsOperand(s.previous()) {
			s.emit(token.UnaryOp, r, pos)
		} else {
			s.emit(token.BinaryOp, r, pos)
		}

	case strings.ContainsRune("*/><%", r):
		s.emit(token.BinaryOp, r, pos)

	case r == '(':
		if cur != nil && cur.Kind == token.Identifier {
			cur.Kind = token.FuncCall
		}
		s.emit(token.OpenParen, r, pos)

	case r == ')':
		s.emit(token.CloseParen, r, pos)

	case r == ',':
		s.emit(token.Comma, r, pos)

	default:
		s.open = false
	}
}

// isOpenString reports whether a string literal still waits for its closing quote
func isOpenString(tok *token.Token) bool {
	if tok.Kind != token.StringLiteral {
		return false
	}
	return len(tok.Text) < 2 || !strings.HasSuffix(tok.Text, `"`)
}

// startsOperand reports whether a sign after prev is a prefix operator
func startsOperand(prev *token.Token) bool {
	if prev == nil {
		return true
	}
	switch prev.Kind {
	case token.UnaryOp, token.BinaryOp, token.OpenParen:
		return true
	default:
		return false
	}
}

func isComparePrefix(text string) bool {
	switch text {
	case ">", "=", "<", "!":
		return true
	default:
		return false
	}
}

func isLetter(r rune) bool {
	return (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z')
}

func isDigit(r rune) bool {
	return r >= '0' && r <= '9'
}
