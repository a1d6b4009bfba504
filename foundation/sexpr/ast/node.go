// File: node.go
// Title: Expression Syntax Tree
// Description: AST node type built by the parser and its S-expression
//              rendering. Leaves carry identifiers and literals; every other
//              node is an operator, assignment or call with ordered children.
// Author: msto63
// Version: v0.1.0
// Created: 2026-10-16
// Modified: 2026-10-16
//
// Change History:
// - 2026-10-16 v0.1.0: Initial implementation

package ast

import (
	"strings"

	"github.com/msto63/sexpr/foundation/sexpr/token"
)

// Node is one element of the expression tree. A node exclusively owns its
// children.
type Node struct {
	Kind     token.Kind `json:"kind"`
	Text     string     `json:"text"`
	Children []*Node    `json:"children,omitempty"`
}

// New creates an inner node with the given children
func New(kind token.Kind, text string, children ...*Node) *Node {
	return &Node{Kind: kind, Text: text, Children: children}
}

// NewLeaf creates a leaf node from an identifier or literal token
func NewLeaf(tok token.Token) *Node {
	return &Node{Kind: tok.Kind, Text: tok.Text}
}

// Append adds a child; used while a call's argument list is being parsed
func (n *Node) Append(child *Node) {
	n.Children = append(n.Children, child)
}

// IsLeaf reports whether the node renders bare
func (n *Node) IsLeaf() bool {
	return n.Kind.IsLeaf()
}

// String renders the node as an S-expression. Parts are separated by single
// spaces: "( + 1 ( * 2 3 ) )". Leaves carry no trailing space.
func (n *Node) String() string {
	var b strings.Builder
	n.render(&b)
	return b.String()
}

func (n *Node) render(b *strings.Builder) {
	if n.IsLeaf() {
		b.WriteString(n.Text)
		return
	}

	b.WriteString("( ")
	b.WriteString(n.Text)
	for _, child := range n.Children {
		b.WriteByte(' ')
		child.render(b)
	}
	b.WriteString(" )")
}

// Walk visits n and its descendants depth-first, parents before children.
// Returning false from fn skips the children of that node.
func Walk(n *Node, fn func(*Node) bool) {
	if n == nil || !fn(n) {
		return
	}
	for _, child := range n.Children {
		Walk(child, fn)
	}
}

// Count returns the number of nodes in the tree rooted at n
func Count(n *Node) int {
	count := 0
	Walk(n, func(*Node) bool {
		count++
		return true
	})
	return count
}

// Depth returns the height of the tree; a single leaf has depth 1
func Depth(n *Node) int {
	if n == nil {
		return 0
	}
	deepest := 0
	for _, child := range n.Children {
		if d := Depth(child); d > deepest {
			deepest = d
		}
	}
	return deepest + 1
}
