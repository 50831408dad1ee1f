package sx

import (
	"bytes"
	"errors"
	"fmt"
	"os/exec"
	"strings"

	"github.com/dop251/goja"
	sq "github.com/kballard/go-shellquote"
)

// outputVar is the name of the variable holding the output of an in-process snippet
const outputVar = "HTML"

// runner evaluates one snippet and returns the text it produced
type runner func(pos Pos, src string) (string, error)

// buildScript renders the markup children of e and replaces every text child
// by the output of run.
func (g *Generator) buildScript(e *Element, run runner) ([]Fragment, error) {
	var frags []Fragment
	for _, c := range e.Children {
		if c.Kind != TextElement {
			f, err := g.build(c)
			if err != nil {
				return nil, err
			}
			frags = append(frags, f...)
			continue
		}

		out, err := run(c.Pos, c.Text)
		if err != nil {
			return nil, err
		}
		if out != "" {
			frags = append(frags, textFragment(out))
		}
	}
	return frags, nil
}

// exec runs a snippet in the shared namespace, discarding its value
func (g *Generator) exec(pos Pos, src string) error {
	src = Dedent(src, g.opts.TabWidth)
	if src == "" {
		return nil
	}

	g.log.Debugw("executing script", "pos", pos.String(), "src", src)

	if _, err := g.vm.RunScript(pos.String(), src); err != nil {
		return &ScriptError{Pos: pos, Mode: InProcess, Err: err}
	}
	return nil
}

// runInProcess runs a snippet in the shared namespace. The output is the
// value left in the HTML variable, which is reset before every snippet.
func (g *Generator) runInProcess(pos Pos, src string) (string, error) {
	if err := g.vm.Set(outputVar, goja.Null()); err != nil {
		return "", &ScriptError{Pos: pos, Mode: InProcess, Err: err}
	}
	if err := g.exec(pos, src); err != nil {
		return "", err
	}

	v := g.vm.Get(outputVar)
	if !truthy(v) {
		return "", nil
	}
	return v.String(), nil
}

// runSubprocess pipes a snippet to a new interpreter process, returning its standard output
func (g *Generator) runSubprocess(pos Pos, src string) (string, error) {
	src = Dedent(src, g.opts.TabWidth)
	if src == "" {
		return "", nil
	}

	words, err := sq.Split(g.opts.Interpreter)
	if err != nil {
		return "", &ScriptError{Pos: pos, Mode: Subprocess, Err: fmt.Errorf("invalid interpreter %q: %w", g.opts.Interpreter, err)}
	}
	if len(words) == 0 {
		return "", &ScriptError{Pos: pos, Mode: Subprocess, Err: errors.New("no interpreter configured")}
	}

	g.log.Debugw("running script", "pos", pos.String(), "interpreter", words, "src", src)

	var stdout, stderr bytes.Buffer
	cmd := exec.CommandContext(g.ctx, words[0], words[1:]...)
	cmd.Dir = g.opts.BaseDir
	cmd.Stdin = strings.NewReader(src)
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		if msg := strings.TrimSpace(stderr.String()); msg != "" {
			err = fmt.Errorf("%w: %s", err, msg)
		}
		return "", &ScriptError{Pos: pos, Mode: Subprocess, Err: err}
	}
	return stdout.String(), nil
}

// truthy tells if a value of the namespace counts as true. Missing values are false.
func truthy(v goja.Value) bool {
	if v == nil || goja.IsUndefined(v) || goja.IsNull(v) {
		return false
	}
	return v.ToBoolean()
}
