package sx

import (
	"context"
	"os/exec"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// generate compiles src with a new generator and returns it, to inspect the namespace
func generate(t *testing.T, src string, opts Options) (*Generator, string, error) {
	t.Helper()
	root, err := Parse("test", strings.NewReader(src))
	require.NoError(t, err)
	elem, err := BuildElement(root, opts)
	require.NoError(t, err)
	g, err := NewGenerator(opts)
	require.NoError(t, err)
	out, err := g.Generate(context.Background(), elem)
	return g, out, err
}

func TestInProcessScripts(t *testing.T) {
	tests := []struct {
		name string
		src  string
		want string
	}{
		{"output variable", `(@js "HTML = '<b>x</b>'")`, "<b>x</b>\n"},
		{"shared namespace", `(@js "var a = 2") (@js "HTML = a * 21")`, "42\n"},
		{"output reset between snippets", `(@js "HTML = 'x'" "var z = 1")`, "x\n"},
		{"falsy output is empty", `(@js "HTML = 0")`, ""},
		{"dedented source", "(@js \"\"\"[\n    var s = 'a';\n    HTML = s + 'b';\n]\"\"\")", "ab\n"},
		{"escape helper", `(@js "HTML = escape('<b>')")`, "&lt;b&gt;\n"},
		{"markup children render normally", `(@js (i "a") "HTML = 'b'")`, "<i>a</i>b\n"},
		{"inside a block", `(p (@js "HTML = 'x'"))`, "<p>\n  x</p>\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, got, err := generate(t, tt.src, DefaultOptions())
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestInProcessScriptError(t *testing.T) {
	_, _, err := generate(t, "\n(@js \"throw new Error('boom')\")", DefaultOptions())

	var serr *ScriptError
	require.ErrorAs(t, err, &serr)
	assert.Equal(t, InProcess, serr.Mode)
	assert.Equal(t, 2, serr.Pos.Line)
	assert.Contains(t, err.Error(), "boom")
	assert.Contains(t, err.Error(), "in-process script")
}

func TestInProcessScriptCancelled(t *testing.T) {
	root, err := Parse("test", strings.NewReader(`(@js "for (;;) {}")`))
	require.NoError(t, err)
	elem, err := BuildElement(root, DefaultOptions())
	require.NoError(t, err)
	g, err := NewGenerator(DefaultOptions())
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = g.Generate(ctx, elem)

	var serr *ScriptError
	require.ErrorAs(t, err, &serr)
}

func requireCommand(t *testing.T, name string) {
	t.Helper()
	if _, err := exec.LookPath(name); err != nil {
		t.Skipf("%s not available: %v", name, err)
	}
}

func TestSubprocessScripts(t *testing.T) {
	requireCommand(t, "cat")
	requireCommand(t, "sh")

	tests := []struct {
		name        string
		interpreter string
		src         string
		want        string
	}{
		{"stdout is the output", "cat", "($python \"  <b>\n  x\")", "<b>\nx\n"},
		{"interpreter with arguments", `sh -c 'cat; echo done'`, `($python "x")`, "x\ndone\n"},
		{"empty snippet not run", "false", `($python "  \n ")`, ""},
		{"no shared state", "cat", `($python "a") ($python "b")`, "a\nb\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			opts := DefaultOptions()
			opts.Interpreter = tt.interpreter
			_, got, err := generate(t, tt.src, opts)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestSubprocessWorkingDirectory(t *testing.T) {
	requireCommand(t, "pwd")

	dir := t.TempDir()
	opts := DefaultOptions()
	opts.BaseDir = dir
	opts.Interpreter = "pwd"

	_, got, err := generate(t, `($python "x")`, opts)
	require.NoError(t, err)

	want, err := filepath.EvalSymlinks(dir)
	require.NoError(t, err)
	gotDir, err := filepath.EvalSymlinks(strings.TrimSpace(got))
	require.NoError(t, err)
	assert.Equal(t, want, gotDir)
}

func TestSubprocessErrors(t *testing.T) {
	requireCommand(t, "sh")

	tests := []struct {
		name        string
		interpreter string
		contains    string
	}{
		{"non zero exit", `sh -c 'echo oops >&2; exit 3'`, "oops"},
		{"unknown interpreter", "no-such-interpreter-for-sx2html", "no-such-interpreter"},
		{"bad quoting", `sh -c 'cat`, "invalid interpreter"},
		{"blank interpreter", "   ", "no interpreter"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			opts := DefaultOptions()
			opts.Interpreter = tt.interpreter
			_, _, err := generate(t, `(p ($python "print(1)"))`, opts)

			var serr *ScriptError
			require.ErrorAs(t, err, &serr)
			assert.Equal(t, Subprocess, serr.Mode)
			assert.Contains(t, err.Error(), tt.contains)
		})
	}
}
