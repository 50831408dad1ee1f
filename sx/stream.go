package sx

import (
	"bufio"
	"errors"
	"fmt"
	"io"
)

// StdinName is the source name used for documents read from standard input
const StdinName = "[STDIN]"

// Pos is the location of a character in a source document.
// Line is 1-based and Column is the 0-based offset in characters inside the line.
type Pos struct {
	Source string
	Line   int
	Column int
}

func (p Pos) String() string {
	return fmt.Sprintf("%s:%d", p.Source, p.Line)
}

// Char is a single character together with the place where it was read
type Char struct {
	R   rune
	Pos Pos
}

// Stream supplies located characters from a named source, one line at a time.
// It supports pushing back any number of characters, which is enough for the
// fixed size lookahead needed by multi-character delimiters.
type Stream struct {
	name string
	r    *bufio.Reader

	// the current line and the position of the next character in it
	line []rune
	lnum int
	lpos int

	// characters pushed back, the last one is returned first
	pending []Char

	atEOF bool
	err   error
}

// NewStream creates a stream reading from r. A name of "-" means standard input.
func NewStream(name string, r io.Reader) *Stream {
	if name == "-" || name == "" {
		name = StdinName
	}
	return &Stream{
		name: name,
		r:    bufio.NewReader(r),
	}
}

// Name returns the name of the source
func (s *Stream) Name() string {
	return s.name
}

// Line returns the number of the last line read
func (s *Stream) Line() int {
	return s.lnum
}

// Pos returns the location of the next character to be read from the current line
func (s *Stream) Pos() Pos {
	return Pos{Source: s.name, Line: s.lnum, Column: s.lpos}
}

// Err returns the first read error different from io.EOF
func (s *Stream) Err() error {
	return s.err
}

// readLine refills the current line. It returns false at the end of the input.
func (s *Stream) readLine() bool {
	if s.atEOF {
		return false
	}

	line, err := s.r.ReadString('\n')
	if err != nil {
		s.atEOF = true
		if !errors.Is(err, io.EOF) {
			s.err = err
		}
	}
	if len(line) == 0 {
		return false
	}

	s.line = []rune(line)
	s.lnum++
	s.lpos = 0
	return true
}

// Next returns the next character, or false when the input is exhausted
func (s *Stream) Next() (Char, bool) {
	if n := len(s.pending); n > 0 {
		c := s.pending[n-1]
		s.pending = s.pending[:n-1]
		return c, true
	}

	if s.lpos >= len(s.line) {
		if !s.readLine() {
			return Char{}, false
		}
	}

	c := Char{
		R:   s.line[s.lpos],
		Pos: Pos{Source: s.name, Line: s.lnum, Column: s.lpos},
	}
	s.lpos++
	return c, true
}

// Unread pushes back one character, which will be returned by the next call to Next
func (s *Stream) Unread(c Char) {
	s.pending = append(s.pending, c)
}

// Read reads up to n characters and returns them also as a plain string.
// Fewer than n characters are returned only at the end of the input.
func (s *Stream) Read(n int) (string, []Char) {
	chars := make([]Char, 0, n)
	runes := make([]rune, 0, n)
	for i := 0; i < n; i++ {
		c, ok := s.Next()
		if !ok {
			break
		}
		chars = append(chars, c)
		runes = append(runes, c.R)
	}
	return string(runes), chars
}

// UnreadAll pushes back the characters returned by Read, so they are read again in the same order
func (s *Stream) UnreadAll(chars []Char) {
	for i := len(chars) - 1; i >= 0; i-- {
		s.Unread(chars[i])
	}
}
