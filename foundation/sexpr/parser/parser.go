// File: parser.go
// Title: Expression Recursive Descent Parser
// Description: Builds the AST of an infix expression from the lexer's token
//              queue. One function per precedence level; each level consumes
//              its operators and delegates operands to the next tighter one.
// Author: msto63
// Version: v0.1.0
// Created: 2026-10-16
// Modified: 2026-10-16
//
// Change History:
// - 2026-10-16 v0.1.0: Initial implementation

package parser

import (
	mdwlog "github.com/msto63/sexpr/foundation/core/log"
	mdwast "github.com/msto63/sexpr/foundation/sexpr/ast"
	"github.com/msto63/sexpr/foundation/sexpr/token"
)

var (
	compareOps = []string{">", ">=", "==", "<", "<=", "!="}
	addOps     = []string{"+", "-"}
	multiOps   = []string{"*", "/", "%"}
)

// Parser consumes a Lexer and produces one expression tree
type Parser struct {
	lexer   *Lexer
	logger  *mdwlog.Logger
	options Options
}

// Options configures parser behavior
type Options struct {
	Logger *mdwlog.Logger

	// Strict rejects tokens left over after a complete expression. By
	// default they are ignored.
	Strict bool
}

// NewParser creates a parser reading from lexer
func NewParser(lexer *Lexer, opts Options) *Parser {
	if opts.Logger == nil {
		opts.Logger = mdwlog.GetDefault()
	}

	return &Parser{
		lexer:   lexer,
		logger:  opts.Logger.WithField("component", "sexpr-parser"),
		options: opts,
	}
}

// Parse tokenizes and parses input in one call
func Parse(input string, opts Options) (*mdwast.Node, error) {
	return NewParser(NewLexer(input), opts).Parse()
}

// Parse runs the grammar from the assignment level and returns the root node
func (p *Parser) Parse() (*mdwast.Node, error) {
	p.logger.Debug("Starting expression parsing", mdwlog.Fields{
		"input":  p.lexer.Input(),
		"tokens": p.lexer.Remaining(),
	})

	root, err := p.parseAssign()
	if err == nil && p.options.Strict {
		if tok, ok := p.lexer.Next(); ok {
			err = newParseError(ErrTrailingInput, tok)
		}
	}
	if err != nil {
		p.logger.Debug("Expression parsing failed", mdwlog.Fields{
			"input": p.lexer.Input(),
			"error": err.Error(),
		})
		return nil, err
	}

	if p.logger.IsLevelEnabled(mdwlog.LevelDebug) {
		p.logger.Debug("Expression parsing completed", mdwlog.Fields{
			"sexpr":      root.String(),
			"unconsumed": p.lexer.Remaining(),
		})
	}
	return root, nil
}

// parseAssign: compare ( "=" assign )?
func (p *Parser) parseAssign() (*mdwast.Node, error) {
	left, err := p.parseCompare()
	if err != nil {
		return nil, err
	}

	tok, ok := p.lexer.Next()
	if !ok {
		return left, nil
	}
	if tok.Kind != token.BinaryOp || tok.Text != "=" {
		p.lexer.Push(tok)
		return left, nil
	}

	if left.Kind != token.Identifier {
		return nil, newParseError(ErrInvalidAssignTarget, tok)
	}

	right, err := p.parseAssign()
	if err != nil {
		return nil, err
	}
	return mdwast.New(tok.Kind, tok.Text, left, right), nil
}

func (p *Parser) parseCompare() (*mdwast.Node, error) {
	return p.parseBinary(p.parseAdd, compareOps)
}

func (p *Parser) parseAdd() (*mdwast.Node, error) {
	return p.parseBinary(p.parseMulti, addOps)
}

func (p *Parser) parseMulti() (*mdwast.Node, error) {
	return p.parseBinary(p.parseUnary, multiOps)
}

// parseBinary parses one left-associative level: operand ( op operand )*
func (p *Parser) parseBinary(operand func() (*mdwast.Node, error), ops []string) (*mdwast.Node, error) {
	left, err := operand()
	if err != nil {
		return nil, err
	}

	for {
		tok, ok := p.lexer.Next()
		if !ok {
			return left, nil
		}
		if !contains(ops, tok.Text) {
			p.lexer.Push(tok)
			return left, nil
		}

		right, err := operand()
		if err != nil {
			return nil, err
		}
		left = mdwast.New(tok.Kind, tok.Text, left, right)
	}
}

// parseUnary: UnaryOp unary | primary
func (p *Parser) parseUnary() (*mdwast.Node, error) {
	tok, ok := p.lexer.Next()
	if !ok {
		return nil, newParseError(ErrUnexpectedEOF, p.lexer.EOFToken())
	}
	if tok.Kind != token.UnaryOp {
		p.lexer.Push(tok)
		return p.parsePrimary()
	}

	operand, err := p.parseUnary()
	if err != nil {
		return nil, err
	}
	return mdwast.New(tok.Kind, tok.Text, operand), nil
}

func (p *Parser) parsePrimary() (*mdwast.Node, error) {
	tok, ok := p.lexer.Next()
	if !ok {
		return nil, newParseError(ErrUnexpectedEOF, p.lexer.EOFToken())
	}

	switch tok.Kind {
	case token.Identifier, token.Number, token.StringLiteral:
		return mdwast.NewLeaf(tok), nil
	case token.OpenParen:
		return p.parseGroup()
	case token.FuncCall:
		return p.parseCall(tok)
	default:
		return nil, newParseError(ErrUnexpectedToken, tok)
	}
}

// parseGroup parses the inside of ( ... ); the parentheses leave no node
func (p *Parser) parseGroup() (*mdwast.Node, error) {
	inner, err := p.parseAssign()
	if err != nil {
		return nil, err
	}

	closing, ok := p.lexer.Next()
	if !ok {
		return nil, newParseError(ErrUnexpectedEOF, p.lexer.EOFToken())
	}
	if closing.Kind != token.CloseParen {
		return nil, newParseError(ErrUnexpectedToken, closing)
	}
	return inner, nil
}

// parseCall parses the argument list following a call name. Commas are
// separators only; arguments are parsed at the assignment level.
func (p *Parser) parseCall(name token.Token) (*mdwast.Node, error) {
	call := mdwast.New(name.Kind, name.Text)

	open, ok := p.lexer.Next()
	if !ok {
		return nil, newParseError(ErrUnterminatedCall, name)
	}
	if open.Kind != token.OpenParen {
		return nil, newParseError(ErrUnexpectedToken, open)
	}

	for {
		tok, ok := p.lexer.Next()
		if !ok {
			return nil, newParseError(ErrUnterminatedCall, name)
		}

		switch tok.Kind {
		case token.CloseParen:
			return call, nil
		case token.Comma:
			continue
		}

		p.lexer.Push(tok)
		arg, err := p.parseAssign()
		if err != nil {
			return nil, err
		}
		call.Append(arg)
	}
}

func contains(set []string, s string) bool {
	for _, v := range set {
		if v == s {
			return true
		}
	}
	return false
}
