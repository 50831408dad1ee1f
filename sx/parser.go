package sx

import (
	"errors"
	"io"
)

// Parser builds the bracket tree from the tokens of a Lexer.
// The stack of open nodes always has the synthetic root at the bottom.
type Parser struct {
	lex   *Lexer
	s     *Stream
	stack []*Node
}

func NewParser(s *Stream) *Parser {
	root := newBracketNode("", Pos{Source: s.Name(), Line: 1})
	return &Parser{
		lex:   NewLexer(s),
		s:     s,
		stack: []*Node{root},
	}
}

func (p *Parser) top() *Node {
	return p.stack[len(p.stack)-1]
}

// Parse consumes the whole input and returns the root of the tree.
// Unmatched or unclosed brackets are reported as a *SyntaxError.
func (p *Parser) Parse() (*Node, error) {
	for {
		tok, err := p.lex.Next()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, err
		}

		switch tok.Type {
		case OpenToken:
			p.stack = append(p.stack, newBracketNode(tok.Text, tok.Pos))

		case CloseToken:
			last := p.top()
			if tok.Text != last.Close {
				return nil, newSyntaxError(tok.Pos, `unmatched: "%s ... %s"`, last.Open, tok.Text)
			}
			p.stack = p.stack[:len(p.stack)-1]
			p.top().AppendChild(last)

		default:
			p.top().AppendChild(newLeafNode(tok))
		}
	}

	if len(p.stack) != 1 {
		last := p.top()
		pos := p.s.Pos()
		pos.Line = max(pos.Line, last.Pos.Line)
		return nil, newSyntaxError(pos, `missing "%s"`, last.Close)
	}

	return p.stack[0], nil
}

// Parse reads a whole document from r and returns its bracket tree.
// name is used in error messages, "-" meaning standard input.
func Parse(name string, r io.Reader) (*Node, error) {
	return NewParser(NewStream(name, r)).Parse()
}
