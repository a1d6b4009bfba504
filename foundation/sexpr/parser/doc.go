// File: doc.go
// Title: Expression Parser Package Documentation
// Description: Lexer and recursive descent parser turning a single-line infix
//              expression into an AST.
// Author: msto63
// Version: v0.1.0
// Created: 2026-10-16
// Modified: 2026-10-16
//
// Change History:
// - 2026-10-16 v0.1.0: Initial implementation

/*
Package parser provides lexical analysis and parsing of infix expressions.

The lexer scans the input once and keeps the tokens in a queue that the
parser consumes with Next and, for one token of lookahead, returns with Push.
The parser implements the precedence ladder

	assign  > compare > add > multi > unary > primary

where assignment is right-associative and the binary levels are
left-associative. The first grammar violation stops parsing and is returned
as a *ParseError carrying the offending span; the parser never exits the
process.
*/
package parser
