package cmd

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// writeConfig creates a quiet config with its history database in a temp dir
func writeConfig(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	path := filepath.Join(dir, "config.toml")
	content := `
[general]
log_level = "silent"

[history]
path = "` + filepath.ToSlash(filepath.Join(dir, "history.db")) + `"
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func resetFlags() {
	cfgFile, logFormat = "", ""
	verbose, strict, noColor = false, false, false
	debugMode, fileMode, recordHistory = false, false, false
	tokensJSON = false
	historyLimit, historyFailed, historySource = 20, false, ""
	pruneOlder = 0
	remoteAddr = ""
}

func run(t *testing.T, config string, args ...string) (string, string, error) {
	t.Helper()
	resetFlags()

	var stdout, stderr bytes.Buffer
	rootCmd.SetOut(&stdout)
	rootCmd.SetErr(&stderr)
	rootCmd.SetArgs(append([]string{"--config", config, "--no-color"}, args...))
	t.Cleanup(func() {
		rootCmd.SetOut(nil)
		rootCmd.SetErr(nil)
		rootCmd.SetArgs(nil)
	})

	err := Execute()
	return stdout.String(), stderr.String(), err
}

func TestConvert(t *testing.T) {
	config := writeConfig(t)

	tests := []struct {
		name   string
		args   []string
		stdout string
		stderr string
		failed bool
	}{
		{
			name:   "precedence",
			args:   []string{"1 + 2 * 3"},
			stdout: "( + 1 ( * 2 3 ) )\n",
		},
		{
			name:   "call and unary",
			args:   []string{"x = f(a, g(b)) * -2"},
			stdout: "( = x ( * ( f a ( g b ) ) ( - 2 ) ) )\n",
		},
		{
			name:   "invalid assignment",
			args:   []string{"1=2"},
			stderr: "\n1=2\n ^ ERROR\n\nError: parse error at column 2: invalid assignment target (near '=')\n",
			failed: true,
		},
		{
			name:   "unexpected end",
			args:   []string{"(1+2"},
			stderr: "\n(1+2\n    ^ ERROR\n\nError: parse error at column 5: unexpected end of input\n",
			failed: true,
		},
		{
			name:   "lenient trailing input",
			args:   []string{"a && b"},
			stdout: "a\n",
		},
		{
			name:   "spaced call drops the group",
			args:   []string{"f (x)"},
			stdout: "f\n",
		},
		{
			name:   "spaced call in strict mode",
			args:   []string{"--strict", "f (x)"},
			stderr: "\nf (x)\n  ^ ERROR\n\n",
			failed: true,
		},
		{
			name:   "spaced comparison merges",
			args:   []string{"x > = 1"},
			stdout: "( >= x 1 )\n",
		},
		{
			name:   "strict trailing input",
			args:   []string{"--strict", "a && b"},
			stderr: "\na && b\n  ^^ ERROR\n\n",
			failed: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			stdout, stderr, err := run(t, config, tt.args...)
			assert.Equal(t, tt.stdout, stdout)
			if tt.failed {
				assert.ErrorIs(t, err, errReported)
				assert.True(t, strings.HasPrefix(stderr, tt.stderr), "stderr: %q", stderr)
				return
			}
			require.NoError(t, err)
			assert.Empty(t, stderr)
		})
	}
}

func TestConvert_Debug(t *testing.T) {
	stdout, _, err := run(t, writeConfig(t), "--debug", "--", "-x")
	require.NoError(t, err)

	assert.True(t, strings.HasPrefix(stdout, "\nDebug: true\nExpr: \"-x\"\n"), stdout)
	assert.Contains(t, stdout, "TokenType")
	assert.Contains(t, stdout, "UNARY_OP")
	assert.Contains(t, stdout, `(len=1) "x"`)
	assert.True(t, strings.HasSuffix(stdout, "( - x )\n"), stdout)
}

func TestConvert_DebugOnError(t *testing.T) {
	stdout, stderr, err := run(t, writeConfig(t), "-d", "1 +")
	assert.ErrorIs(t, err, errReported)
	assert.Contains(t, stdout, "TokenType")
	assert.NotContains(t, stdout, "(len=")
	assert.Contains(t, stderr, "unexpected end of input")
}

func TestConvert_File(t *testing.T) {
	path := filepath.Join(t.TempDir(), "exprs.txt")
	require.NoError(t, os.WriteFile(path, []byte("a+b\n\n1 +\nf(x)\n"), 0644))

	stdout, stderr, err := run(t, writeConfig(t), "--file", path)
	assert.ErrorIs(t, err, errReported)
	assert.Equal(t, "( + a b )\n( f x )\n", stdout)
	assert.Contains(t, stderr, path+":3:")

	_, stderr, err = run(t, writeConfig(t), "-f", filepath.Join(t.TempDir(), "missing"))
	require.Error(t, err)
	assert.Contains(t, stderr, "failed to open expression file")
}

func TestHistory(t *testing.T) {
	config := writeConfig(t)

	_, _, err := run(t, config, "--history", "f(x)")
	require.NoError(t, err)
	_, _, err = run(t, config, "--history", "1 = x")
	require.ErrorIs(t, err, errReported)

	stdout, _, err := run(t, config, "history")
	require.NoError(t, err)
	assert.Contains(t, stdout, "f(x)")
	assert.Contains(t, stdout, "( f x )")
	assert.Contains(t, stdout, "INVALID_ASSIGN_TARGET [2,3)")
	assert.Contains(t, stdout, "2 of 2 shown, 1 failed in total")

	stdout, _, err = run(t, config, "history", "--failed", "--source", "cli")
	require.NoError(t, err)
	assert.NotContains(t, stdout, "( f x )")
	assert.Contains(t, stdout, "1 = x")

	stdout, _, err = run(t, config, "history", "prune", "--older-than", "1ns")
	require.NoError(t, err)
	assert.Contains(t, stdout, "Deleted 2 entries")

	stdout, _, err = run(t, config, "history")
	require.NoError(t, err)
	assert.Equal(t, "No conversions recorded.\n", stdout)
}

func TestTokens(t *testing.T) {
	config := writeConfig(t)

	stdout, _, err := run(t, config, "tokens", "a >= 1")
	require.NoError(t, err)
	for _, want := range []string{"TokenType", "IDENTIFIER", "BINARY_OP", ">=", "NUMBER"} {
		assert.Contains(t, stdout, want)
	}

	stdout, _, err = run(t, config, "tokens", "--json", "a")
	require.NoError(t, err)
	var tokens []map[string]interface{}
	require.NoError(t, json.Unmarshal([]byte(stdout), &tokens))
	require.NotEmpty(t, tokens)
	assert.Equal(t, "IDENTIFIER", tokens[0]["kind"])
	assert.Equal(t, "a", tokens[0]["text"])
}

func TestVersion(t *testing.T) {
	stdout, _, err := run(t, writeConfig(t), "version")
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(stdout, "sexpr v0.1.0\n"))
	assert.Contains(t, stdout, "Go Version:")
}

func TestMissingConfig(t *testing.T) {
	_, stderr, err := run(t, filepath.Join(t.TempDir(), "nope.toml"), "1+1")
	require.Error(t, err)
	assert.Contains(t, stderr, "Error: config file not found")
}
