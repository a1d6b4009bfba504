package parser

import (
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/msto63/sexpr/foundation/sexpr/token"
)

func tok(kind token.Kind, text string, start, end int) token.Token {
	return token.Token{Kind: kind, Text: text, Span: token.Span{Start: start, End: end}}
}

func TestTokenize(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  []token.Token
	}{
		{
			name:  "empty input",
			input: "",
			want:  nil,
		},
		{
			name:  "identifier with digits",
			input: "a1+2",
			want: []token.Token{
				tok(token.Identifier, "a1", 0, 2),
				tok(token.BinaryOp, "+", 2, 3),
				tok(token.Number, "2", 3, 4),
			},
		},
		{
			name:  "decimal number",
			input: "2.5*x",
			want: []token.Token{
				tok(token.Number, "2.5", 0, 3),
				tok(token.BinaryOp, "*", 3, 4),
				tok(token.Identifier, "x", 4, 5),
			},
		},
		{
			name:  "leading sign is unary",
			input: "-x",
			want: []token.Token{
				tok(token.UnaryOp, "-", 0, 1),
				tok(token.Identifier, "x", 1, 2),
			},
		},
		{
			name:  "sign after operator is unary",
			input: "1 - -2",
			want: []token.Token{
				tok(token.Number, "1", 0, 1),
				tok(token.BinaryOp, "-", 2, 3),
				tok(token.UnaryOp, "-", 4, 5),
				tok(token.Number, "2", 5, 6),
			},
		},
		{
			name:  "sign after open paren is unary",
			input: "(-1)",
			want: []token.Token{
				tok(token.OpenParen, "(", 0, 1),
				tok(token.UnaryOp, "-", 1, 2),
				tok(token.Number, "1", 2, 3),
				tok(token.CloseParen, ")", 3, 4),
			},
		},
		{
			name:  "comparison operators merge",
			input: "a>=b",
			want: []token.Token{
				tok(token.Identifier, "a", 0, 1),
				tok(token.BinaryOp, ">=", 1, 3),
				tok(token.Identifier, "b", 3, 4),
			},
		},
		{
			name:  "not equal merges from unary bang",
			input: "a!=b",
			want: []token.Token{
				tok(token.Identifier, "a", 0, 1),
				tok(token.BinaryOp, "!=", 1, 3),
				tok(token.Identifier, "b", 3, 4),
			},
		},
		{
			name:  "operators merge across spaces",
			input: "a > = b",
			want: []token.Token{
				tok(token.Identifier, "a", 0, 1),
				tok(token.BinaryOp, ">=", 2, 5),
				tok(token.Identifier, "b", 6, 7),
			},
		},
		{
			name:  "doubled bars merge across spaces",
			input: "x | | y",
			want: []token.Token{
				tok(token.Identifier, "x", 0, 1),
				tok(token.BinaryOp, "||", 2, 5),
				tok(token.Identifier, "y", 6, 7),
			},
		},
		{
			name:  "identifiers do not merge across spaces",
			input: "ab c1",
			want: []token.Token{
				tok(token.Identifier, "ab", 0, 2),
				tok(token.Identifier, "c1", 3, 5),
			},
		},
		{
			name:  "doubled logical operators",
			input: "a||b&&c",
			want: []token.Token{
				tok(token.Identifier, "a", 0, 1),
				tok(token.BinaryOp, "||", 1, 3),
				tok(token.Identifier, "b", 3, 4),
				tok(token.BinaryOp, "&&", 4, 6),
				tok(token.Identifier, "c", 6, 7),
			},
		},
		{
			name:  "single ampersand is unary",
			input: "&x",
			want: []token.Token{
				tok(token.UnaryOp, "&", 0, 1),
				tok(token.Identifier, "x", 1, 2),
			},
		},
		{
			name:  "function call",
			input: "f(x,1)",
			want: []token.Token{
				tok(token.FuncCall, "f", 0, 1),
				tok(token.OpenParen, "(", 1, 2),
				tok(token.Identifier, "x", 2, 3),
				tok(token.Comma, ",", 3, 4),
				tok(token.Number, "1", 4, 5),
				tok(token.CloseParen, ")", 5, 6),
			},
		},
		{
			name:  "space before paren is not a call",
			input: "f (x)",
			want: []token.Token{
				tok(token.Identifier, "f", 0, 1),
				tok(token.OpenParen, "(", 2, 3),
				tok(token.Identifier, "x", 3, 4),
				tok(token.CloseParen, ")", 4, 5),
			},
		},
		{
			name:  "string literal keeps spaces and operators",
			input: `"a +b"+1`,
			want: []token.Token{
				tok(token.StringLiteral, `"a +b"`, 0, 6),
				tok(token.BinaryOp, "+", 6, 7),
				tok(token.Number, "1", 7, 8),
			},
		},
		{
			name:  "unterminated string swallows the rest",
			input: `x="ab`,
			want: []token.Token{
				tok(token.Identifier, "x", 0, 1),
				tok(token.BinaryOp, "=", 1, 2),
				tok(token.StringLiteral, `"ab`, 2, 5),
			},
		},
		{
			name:  "unknown characters are dropped",
			input: "a $ b",
			want: []token.Token{
				tok(token.Identifier, "a", 0, 1),
				tok(token.Identifier, "b", 4, 5),
			},
		},
		{
			name:  "spans count characters not bytes",
			input: "é+1",
			want: []token.Token{
				tok(token.UnaryOp, "+", 1, 2),
				tok(token.Number, "1", 2, 3),
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Tokenize(tt.input)
			if diff := cmp.Diff(tt.want, got); diff != "" {
				t.Errorf("Tokenize(%q) mismatch (-want +got):\n%s", tt.input, diff)
			}
		})
	}
}

func TestTokenizeSpansAreOrdered(t *testing.T) {
	inputs := []string{
		"x = f(a, g(b)) * -2",
		`s = "a b" + t`,
		"a<=b != !c",
		"((1))+-~^x",
	}

	for _, input := range inputs {
		tokens := Tokenize(input)
		for i, tk := range tokens {
			if tk.Span.End <= tk.Span.Start {
				t.Errorf("%q: token %d has empty span %+v", input, i, tk.Span)
			}
			if i > 0 && tk.Span.Start < tokens[i-1].Span.End {
				t.Errorf("%q: token %d overlaps previous: %+v", input, i, tk.Span)
			}
			runes := []rune(input)
			if text := string(runes[tk.Span.Start:tk.Span.End]); text != tk.Text {
				t.Errorf("%q: token %d text %q does not match source %q", input, i, tk.Text, text)
			}
		}
	}
}

func TestLexerNextAndPush(t *testing.T) {
	lx := NewLexer("a+b")

	if got := lx.Remaining(); got != 3 {
		t.Fatalf("Remaining() = %d, want 3", got)
	}

	first, ok := lx.Next()
	if !ok || first.Text != "a" {
		t.Fatalf("Next() = %v, %v, want a", first, ok)
	}

	second, _ := lx.Next()
	lx.Push(second)

	again, ok := lx.Next()
	if !ok || again != second {
		t.Errorf("Next() after Push = %v, want %v", again, second)
	}

	want := []token.Token{tok(token.Identifier, "b", 2, 3)}
	if diff := cmp.Diff(want, lx.Tokens()); diff != "" {
		t.Errorf("Tokens() mismatch (-want +got):\n%s", diff)
	}

	lx.Next()
	if _, ok := lx.Next(); ok {
		t.Error("Next() on exhausted lexer returned a token")
	}

	eof := lx.EOFToken()
	if eof.Kind != token.EndOfInput || eof.Span != (token.Span{Start: 3, End: 4}) {
		t.Errorf("EOFToken() = %+v, want EOF at 3..4", eof)
	}
	if lx.Input() != "a+b" || lx.Len() != 3 {
		t.Errorf("Input()/Len() = %q/%d", lx.Input(), lx.Len())
	}
}
