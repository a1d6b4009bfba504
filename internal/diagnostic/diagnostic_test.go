package diagnostic

import (
	"bytes"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	mdwerror "github.com/msto63/sexpr/foundation/core/error"
	mdwlog "github.com/msto63/sexpr/foundation/core/log"
	"github.com/msto63/sexpr/foundation/sexpr/parser"
	"github.com/msto63/sexpr/foundation/sexpr/token"
)

func parseErr(t *testing.T, input string) *parser.ParseError {
	t.Helper()
	return parseErrMode(t, input, false)
}

func parseErrMode(t *testing.T, input string, strict bool) *parser.ParseError {
	t.Helper()
	_, err := parser.Parse(input, parser.Options{Logger: mdwlog.NewNop(), Strict: strict})
	var perr *parser.ParseError
	require.True(t, errors.As(err, &perr), "expected a parse error for %q", input)
	return perr
}

func TestRender(t *testing.T) {
	tests := []struct {
		name   string
		input  string
		strict bool
		want   string
	}{
		{
			name:  "invalid assignment target",
			input: "1=2",
			want:  "\n1=2\n ^ ERROR\n\n",
		},
		{
			name:  "unexpected end of input points past the line",
			input: "a+",
			want:  "\na+\n  ^ ERROR\n\n",
		},
		{
			name:   "multi character token",
			input:  "a && b",
			strict: true,
			want:   "\na && b\n  ^^ ERROR\n\n",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			perr := parseErrMode(t, tt.input, tt.strict)

			var buf bytes.Buffer
			require.NoError(t, Render(&buf, tt.input, perr, Options{}))
			assert.Equal(t, tt.want, buf.String())
			assert.Equal(t, tt.want, Format(tt.input, perr, Options{}))
		})
	}
}

func TestRender_ColorKeepsLayout(t *testing.T) {
	perr := parseErr(t, "1=2")

	out := Format("1=2", perr, Options{Color: true})
	assert.Contains(t, out, "^ ERROR")
	assert.True(t, strings.HasPrefix(out, "\n1=2\n "))
}

func TestRenderSpan(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, RenderSpan(&buf, "a && b", token.Span{Start: 2, End: 4}, Options{}))
	assert.Equal(t, "\na && b\n  ^^ ERROR\n\n", buf.String())

	buf.Reset()
	require.NoError(t, RenderSpan(&buf, "1+", token.EOFSpan(2), Options{}))
	assert.Equal(t, "\n1+\n  ^ ERROR\n\n", buf.String())
}

func TestRenderError(t *testing.T) {
	var buf bytes.Buffer
	perr := parseErr(t, "(1+2")

	require.NoError(t, RenderError(&buf, "(1+2", perr, Options{}))
	assert.Equal(t, "\n(1+2\n    ^ ERROR\n\nError: parse error at column 5: unexpected end of input\n", buf.String())

	buf.Reset()
	tooLarge := mdwerror.New("expression has 9000 characters, limit is 4096").WithCode(mdwerror.CodeInputTooLarge)
	require.NoError(t, RenderError(&buf, "", tooLarge, Options{}))
	assert.Equal(t, "Error: expression has 9000 characters, limit is 4096\n", buf.String())
}

func TestMessage(t *testing.T) {
	assert.Equal(t, "", Message(nil))
	assert.Equal(t, "parse error at column 2: invalid assignment target (near '=')", Message(parseErr(t, "1=2")))
	assert.Equal(t, "plain", Message(errors.New("plain")))
	assert.Equal(t, "limit", Message(mdwerror.Wrap(errors.New("cause"), "limit")))
}

func TestTokenTable(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, TokenTable(&buf, parser.Tokenize("f(x)"), Options{}))

	out := buf.String()
	for _, want := range []string{"TokenType", "Start", "End", "Value", "FUNC_CALL", "OPEN_PAREN", "IDENTIFIER", "CLOSE_PAREN"} {
		assert.Contains(t, out, want)
	}

	lines := strings.Split(strings.TrimRight(out, "\n"), "\n")
	// header and one row per token at least
	assert.GreaterOrEqual(t, len(lines), 5)
}
