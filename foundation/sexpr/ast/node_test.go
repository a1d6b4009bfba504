package ast

import (
	"encoding/json"
	"testing"

	"github.com/msto63/sexpr/foundation/sexpr/token"
)

func leaf(kind token.Kind, text string) *Node {
	return NewLeaf(token.Token{Kind: kind, Text: text})
}

func TestNodeString(t *testing.T) {
	tests := []struct {
		name string
		node *Node
		want string
	}{
		{
			name: "identifier leaf",
			node: leaf(token.Identifier, "a"),
			want: "a",
		},
		{
			name: "string leaf keeps quotes",
			node: leaf(token.StringLiteral, `"hi"`),
			want: `"hi"`,
		},
		{
			name: "binary",
			node: New(token.BinaryOp, "+",
				leaf(token.Number, "1"),
				New(token.BinaryOp, "*", leaf(token.Number, "2"), leaf(token.Number, "3"))),
			want: "( + 1 ( * 2 3 ) )",
		},
		{
			name: "unary",
			node: New(token.UnaryOp, "-", leaf(token.Identifier, "x")),
			want: "( - x )",
		},
		{
			name: "call without arguments",
			node: New(token.FuncCall, "f"),
			want: "( f )",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.node.String(); got != tt.want {
				t.Errorf("String() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestWalkCountDepth(t *testing.T) {
	// ( = a ( + 1 ( f x ) ) )
	tree := New(token.BinaryOp, "=",
		leaf(token.Identifier, "a"),
		New(token.BinaryOp, "+",
			leaf(token.Number, "1"),
			New(token.FuncCall, "f", leaf(token.Identifier, "x"))))

	if got := Count(tree); got != 6 {
		t.Errorf("Count() = %d, want 6", got)
	}
	if got := Depth(tree); got != 4 {
		t.Errorf("Depth() = %d, want 4", got)
	}
	if got := Depth(nil); got != 0 {
		t.Errorf("Depth(nil) = %d, want 0", got)
	}

	var visited []string
	Walk(tree, func(n *Node) bool {
		visited = append(visited, n.Text)
		return n.Kind != token.FuncCall
	})
	want := []string{"=", "a", "+", "1", "f"}
	if len(visited) != len(want) {
		t.Fatalf("Walk visited %v, want %v", visited, want)
	}
	for i := range want {
		if visited[i] != want[i] {
			t.Errorf("Walk visited[%d] = %q, want %q", i, visited[i], want[i])
		}
	}
}

func TestNodeJSON(t *testing.T) {
	tree := New(token.UnaryOp, "!", leaf(token.Identifier, "ok"))

	data, err := json.Marshal(tree)
	if err != nil {
		t.Fatalf("Marshal() error = %v", err)
	}

	want := `{"kind":"UNARY_OP","text":"!","children":[{"kind":"IDENTIFIER","text":"ok"}]}`
	if string(data) != want {
		t.Errorf("Marshal() = %s, want %s", data, want)
	}
}
