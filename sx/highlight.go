package sx

import (
	"bytes"
	"fmt"

	"github.com/alecthomas/chroma/v2"
	hlhtml "github.com/alecthomas/chroma/v2/formatters/html"
	"github.com/alecthomas/chroma/v2/lexers"
	"github.com/alecthomas/chroma/v2/styles"
)

// buildCode renders the content of @code as a highlighted pre block.
// The lang attribute selects the lexer, otherwise it is guessed from the content.
func (g *Generator) buildCode(e *Element) ([]Fragment, error) {
	attrs, err := g.attributes(e.Attr)
	if err != nil {
		return nil, err
	}

	content, err := g.childrenString(e)
	if err != nil {
		return nil, err
	}
	content = Dedent(content, g.opts.TabWidth)

	var lang string
	pre := []attribute{{Name: "class", Value: "chroma"}}
	for _, a := range attrs {
		if a.Name == "lang" {
			lang = a.Value
			continue
		}
		pre = append(pre, a)
	}

	highlighted, err := g.highlight(lang, content)
	if err != nil {
		return nil, fmt.Errorf("%s: highlighting code: %w", e.Pos, err)
	}

	return []Fragment{
		indentFragment("<pre" + renderAttributes(pre) + ">"),
		textFragment(highlighted),
		textFragment("</pre>"),
		newlineFragment,
	}, nil
}

func (g *Generator) highlight(lang string, content string) (string, error) {
	if content == "" {
		return "", nil
	}

	// Determine lexer
	l := lexers.Get(lang)
	if l == nil {
		l = lexers.Analyse(content)
	}
	if l == nil {
		l = lexers.Fallback
	}
	l = chroma.Coalesce(l)

	s := styles.Get(g.opts.CodeStyle)

	f := hlhtml.New(hlhtml.Standalone(false), hlhtml.PreventSurroundingPre(true))

	it, err := l.Tokenise(nil, content)
	if err != nil {
		return "", err
	}

	var buf bytes.Buffer
	if err := f.Format(&buf, s, it); err != nil {
		return "", err
	}
	return buf.String(), nil
}
