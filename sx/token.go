package sx

import (
	"strconv"
	"strings"
)

// A TokenType is the type of a Token.
type TokenType uint32

const (
	// ErrorToken means that an error occurred during tokenization.
	ErrorToken TokenType = iota
	// OpenToken is one of the opening brackets '(', '[' or '{'.
	OpenToken
	// CloseToken is one of the closing brackets ')', ']' or '}'.
	CloseToken
	// SpaceToken is a run of control characters, including blanks and newlines.
	SpaceToken
	// QuotedToken is a single, double or long quoted string, without the quotes.
	QuotedToken
	// WordToken is any other run of characters.
	WordToken
)

// String returns a string representation of the TokenType.
func (t TokenType) String() string {
	switch t {
	case ErrorToken:
		return "Error"
	case OpenToken:
		return "Open"
	case CloseToken:
		return "Close"
	case SpaceToken:
		return "Space"
	case QuotedToken:
		return "Quoted"
	case WordToken:
		return "Word"
	}
	return "Invalid(" + strconv.Itoa(int(t)) + ")"
}

// A Token consists of a TokenType, its text and the location of its first character.
// For quoted strings Text is the content with the escapes already processed.
type Token struct {
	Type TokenType
	Text string
	Pos  Pos
}

// String returns a representation of the Token suitable for debugging, with
// tabs and newlines made visible.
func (t Token) String() string {
	s := strings.NewReplacer("\t", `\t`, "\n", `\n`).Replace(t.Text)
	return "type:" + t.Type.String() + ", data:" + s
}

// IsSpace returns true if the token is a whitespace run
func (t *Token) IsSpace() bool {
	return t != nil && t.Type == SpaceToken
}
