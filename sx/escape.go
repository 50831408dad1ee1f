package sx

import (
	"strings"

	"github.com/hesusruiz/sx2html/sliceedit"
)

const htmlSpecial = `&<>"`

var htmlEscapes = map[byte]string{
	'&': "&amp;",
	'<': "&lt;",
	'>': "&gt;",
	'"': "&quot;",
}

// EscapeString escapes the characters & < > and " of s
func EscapeString(s string) string {
	if !strings.ContainsAny(s, htmlSpecial) {
		return s
	}
	b := sliceedit.NewBufferString(s)
	b.ReplaceBytes(htmlEscapes)
	return b.String()
}

// escapeComment makes s safe as the content of an HTML comment
func escapeComment(s string) string {
	b := sliceedit.NewBufferString(s)
	if b.Replace("-->", "--&gt;") == 0 {
		return s
	}
	return b.String()
}

// qstrip removes one layer of matching single or double quotes around s
func qstrip(s string) string {
	if len(s) >= 2 && s[0] == s[len(s)-1] && (s[0] == '\'' || s[0] == '"') {
		return s[1 : len(s)-1]
	}
	return s
}
