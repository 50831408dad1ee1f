package sx

import (
	"io"
	"strings"
)

const (
	openBrackets  = "([{"
	closeBrackets = ")]}"

	// characters that end a bare word, apart from control characters
	wordStop = "()[]{}'\""

	longQuoteStart = `""[`
	longQuoteEnd   = `"""`
)

// closerFor maps every opening delimiter to the one that must close it.
// The empty opener is the synthetic root of the tree.
var closerFor = map[string]string{
	"":  "",
	"(": ")",
	"[": "]",
	"{": "}",
}

func isControl(r rune) bool {
	return r < 0x21
}

// Lexer classifies the characters of a Stream into tokens
type Lexer struct {
	s *Stream
}

func NewLexer(s *Stream) *Lexer {
	return &Lexer{s: s}
}

// Next returns the next token, or io.EOF when the input is exhausted.
// A quote that is not terminated before the end of the input is a syntax error.
func (l *Lexer) Next() (Token, error) {
	c, ok := l.s.Next()
	if !ok {
		if err := l.s.Err(); err != nil {
			return Token{}, err
		}
		return Token{}, io.EOF
	}

	switch {
	case c.R == '"':
		// Check for the long quote form: """[ ... ]"""
		s, chars := l.s.Read(3)
		if s == longQuoteStart {
			return l.longQuote(c)
		}
		l.s.UnreadAll(chars)
		return l.quote(c)
	case c.R == '\'':
		return l.quote(c)
	case strings.ContainsRune(openBrackets, c.R):
		return Token{Type: OpenToken, Text: string(c.R), Pos: c.Pos}, nil
	case strings.ContainsRune(closeBrackets, c.R):
		return Token{Type: CloseToken, Text: string(c.R), Pos: c.Pos}, nil
	case isControl(c.R):
		return l.space(c), nil
	}

	return l.word(c), nil
}

// space consumes a run of control characters
func (l *Lexer) space(first Char) Token {
	var sb strings.Builder
	sb.WriteRune(first.R)
	for {
		c, ok := l.s.Next()
		if !ok {
			break
		}
		if !isControl(c.R) {
			l.s.Unread(c)
			break
		}
		sb.WriteRune(c.R)
	}
	return Token{Type: SpaceToken, Text: sb.String(), Pos: first.Pos}
}

// word consumes characters until a control character, a bracket or a quote
func (l *Lexer) word(first Char) Token {
	var sb strings.Builder
	sb.WriteRune(first.R)
	for {
		c, ok := l.s.Next()
		if !ok {
			break
		}
		if isControl(c.R) || strings.ContainsRune(wordStop, c.R) {
			l.s.Unread(c)
			break
		}
		sb.WriteRune(c.R)
	}
	return Token{Type: WordToken, Text: sb.String(), Pos: first.Pos}
}

// quote reads a string up to the next unescaped quote character equal to the opening one.
// A backslash escapes the next character, with \t and \n standing for tab and newline.
func (l *Lexer) quote(open Char) (Token, error) {
	var sb strings.Builder
	escape := false
	for {
		c, ok := l.s.Next()
		if !ok {
			break
		}
		if escape {
			escape = false
			switch c.R {
			case 't':
				sb.WriteRune('\t')
			case 'n':
				sb.WriteRune('\n')
			default:
				sb.WriteRune(c.R)
			}
			continue
		}
		if c.R == '\\' {
			escape = true
			continue
		}
		if c.R == open.R {
			return Token{Type: QuotedToken, Text: sb.String(), Pos: open.Pos}, nil
		}
		sb.WriteRune(c.R)
	}

	if err := l.s.Err(); err != nil {
		return Token{}, err
	}
	return Token{}, newSyntaxError(open.Pos, "unterminated quote: %c", open.R)
}

// longQuote reads verbatim text up to the first ]"""
func (l *Lexer) longQuote(open Char) (Token, error) {
	var sb strings.Builder
	for {
		c, ok := l.s.Next()
		if !ok {
			break
		}
		if c.R == ']' {
			s, chars := l.s.Read(3)
			if s == longQuoteEnd {
				return Token{Type: QuotedToken, Text: sb.String(), Pos: open.Pos}, nil
			}
			l.s.UnreadAll(chars)
		}
		sb.WriteRune(c.R)
	}

	if err := l.s.Err(); err != nil {
		return Token{}, err
	}
	return Token{}, newSyntaxError(open.Pos, `unterminated long quote: """[`)
}
