package sx

import (
	"strings"
	"unicode"

	"github.com/rivo/uniseg"
)

// maxCut is the largest common indentation removed by Reindent
const maxCut = 80

// Mode tells the layout reducer how to treat a Fragment
type Mode int

const (
	// TextMode fragments are appended verbatim
	TextMode Mode = iota
	// IndentMode fragments start on a fresh line at the current indentation
	IndentMode
	// EnterMode fragments increase the nesting depth
	EnterMode
	// LeaveMode fragments decrease the nesting depth
	LeaveMode
	// ReindentMode fragments are dedented and indented at the current depth
	ReindentMode
)

func (m Mode) String() string {
	switch m {
	case TextMode:
		return "TEXT"
	case IndentMode:
		return "INDENT"
	case EnterMode:
		return "ENTER"
	case LeaveMode:
		return "LEAVE"
	case ReindentMode:
		return "REINDENT"
	}
	return "UNKNOWN"
}

// Fragment is a piece of output text together with its layout mode
type Fragment struct {
	Mode Mode
	Text string
}

func textFragment(s string) Fragment {
	return Fragment{Mode: TextMode, Text: s}
}

func indentFragment(s string) Fragment {
	return Fragment{Mode: IndentMode, Text: s}
}

var (
	newlineFragment = Fragment{Mode: TextMode, Text: "\n"}
	enterFragment   = Fragment{Mode: EnterMode}
	leaveFragment   = Fragment{Mode: LeaveMode}
)

// layout is the state of the reducer
type layout struct {
	sb      strings.Builder
	level   int
	indent  string
	newline bool

	// set while the output ends with an indentation that has no content yet,
	// which starts at indentAt
	fresh    bool
	indentAt int
}

func (l *layout) endsWithNewline() bool {
	s := l.sb.String()
	return len(s) > 0 && s[len(s)-1] == '\n'
}

func (l *layout) setLevel(level int) {
	l.level = max(level, 0)
	l.indent = strings.Repeat("  ", l.level)
}

// truncate discards the output written after position n
func (l *layout) truncate(n int) {
	s := l.sb.String()[:n]
	l.sb.Reset()
	l.sb.WriteString(s)
}

func (l *layout) add(f Fragment, tabWidth int) {
	switch f.Mode {
	case TextMode:
		if strings.Contains(f.Text, "\n") {
			l.newline = true
		}
		l.sb.WriteString(f.Text)
		if f.Text != "" {
			l.fresh = false
		}

	case IndentMode:
		if l.fresh {
			l.truncate(l.indentAt)
		} else if l.sb.Len() > 0 && !l.endsWithNewline() {
			l.sb.WriteByte('\n')
		}
		l.indentAt = l.sb.Len()
		l.sb.WriteString(l.indent)
		l.sb.WriteString(f.Text)
		l.fresh = f.Text == ""

	case EnterMode:
		l.newline = false
		l.setLevel(l.level + 1)
		l.sb.WriteString(f.Text)

	case LeaveMode:
		l.setLevel(l.level - 1)
		if l.fresh {
			l.truncate(l.indentAt)
			l.fresh = false
		}
		if l.newline {
			if !l.endsWithNewline() {
				l.sb.WriteByte('\n')
			}
			l.sb.WriteString(l.indent)
		}
		l.sb.WriteString(f.Text)
		l.newline = true

	case ReindentMode:
		l.sb.WriteString(Reindent(l.indent, f.Text, tabWidth))
		l.fresh = false
	}
}

// BuildText reduces a sequence of fragments to the final text, starting at depth zero.
func BuildText(fragments []Fragment) string {
	return buildText(fragments, DefaultTabWidth)
}

func buildText(fragments []Fragment, tabWidth int) string {
	var l layout
	for _, f := range fragments {
		l.add(f, tabWidth)
	}
	if l.fresh {
		l.truncate(l.indentAt)
	}
	return l.sb.String()
}

// Untabify expands the tabs in s to spaces, with tab stops every tabWidth columns.
// Every grapheme cluster counts as one column and newlines restart the column count.
func Untabify(s string, tabWidth int) string {
	if !strings.Contains(s, "\t") {
		return s
	}
	if tabWidth <= 0 {
		tabWidth = DefaultTabWidth
	}

	var sb strings.Builder
	col := 0
	g := uniseg.NewGraphemes(s)
	for g.Next() {
		cluster := g.Str()
		switch cluster {
		case "\t":
			n := tabWidth - col%tabWidth
			sb.WriteString(strings.Repeat(" ", n))
			col += n
		case "\n", "\r\n":
			sb.WriteString(cluster)
			col = 0
		default:
			sb.WriteString(cluster)
			col++
		}
	}
	return sb.String()
}

func isBlank(line string) bool {
	return strings.TrimSpace(line) == ""
}

// leadingSpace returns the number of whitespace characters at the start of line
func leadingSpace(line string) int {
	n := 0
	for _, r := range line {
		if !unicode.IsSpace(r) {
			break
		}
		n++
	}
	return n
}

// Reindent removes the indentation common to all the non blank lines of s and
// prefixes every line with indent. Blank lines at the start and at the end are
// dropped, and blank lines in between are kept as bare newlines.
func Reindent(indent string, s string, tabWidth int) string {
	lines := strings.Split(Untabify(s, tabWidth), "\n")

	for len(lines) > 0 && isBlank(lines[0]) {
		lines = lines[1:]
	}
	for len(lines) > 0 && isBlank(lines[len(lines)-1]) {
		lines = lines[:len(lines)-1]
	}
	if len(lines) == 0 {
		return ""
	}

	cut := maxCut
	for _, line := range lines {
		if !isBlank(line) {
			cut = min(cut, leadingSpace(line))
		}
	}

	var sb strings.Builder
	for _, line := range lines {
		if isBlank(line) {
			sb.WriteByte('\n')
			continue
		}
		sb.WriteString(indent)
		sb.WriteString(string([]rune(line)[cut:]))
		sb.WriteByte('\n')
	}
	return sb.String()
}

// Dedent is Reindent without any indentation, used for the source of snippets
func Dedent(s string, tabWidth int) string {
	return Reindent("", s, tabWidth)
}
