package sx

import (
	"errors"
	"fmt"
)

// ErrInternal is matched by errors.Is for faults that well formed input can never produce
var ErrInternal = errors.New("internal error")

// SyntaxError is a fatal error in the bracket structure or the quoting of a document
type SyntaxError struct {
	Filename string
	Line     int
	Column   int
	Msg      string
}

func (e *SyntaxError) Error() string {
	return fmt.Sprintf("%s:%d: syntax error: %s", e.Filename, e.Line, e.Msg)
}

func newSyntaxError(pos Pos, format string, args ...any) *SyntaxError {
	return &SyntaxError{
		Filename: pos.Source,
		Line:     pos.Line,
		Column:   pos.Column,
		Msg:      fmt.Sprintf(format, args...),
	}
}

// BuildError reports a tree that the element builder can not classify.
// It always matches ErrInternal.
type BuildError struct {
	Pos Pos
	Msg string
}

func (e *BuildError) Error() string {
	return fmt.Sprintf("%s: internal error: %s", e.Pos, e.Msg)
}

func (e *BuildError) Is(target error) bool {
	return target == ErrInternal
}

// ScriptMode tells how a snippet was evaluated
type ScriptMode int

const (
	// InProcess snippets share the document namespace
	InProcess ScriptMode = iota
	// Subprocess snippets are piped to an external interpreter
	Subprocess
)

func (m ScriptMode) String() string {
	if m == Subprocess {
		return "subprocess"
	}
	return "in-process"
}

// ScriptError wraps the failure of an embedded snippet
type ScriptError struct {
	Pos  Pos
	Mode ScriptMode
	Err  error
}

func (e *ScriptError) Error() string {
	return fmt.Sprintf("%s: %s script: %v", e.Pos, e.Mode, e.Err)
}

func (e *ScriptError) Unwrap() error {
	return e.Err
}
