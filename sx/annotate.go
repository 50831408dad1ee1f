package sx

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
)

// renderRuby renders the pairs of an annotation, without the ruby container
func renderRuby(pairs []RubyPair) string {
	var sb strings.Builder
	for _, p := range pairs {
		sb.WriteString(EscapeString(p.Base))
		sb.WriteString("<rp>(</rp><rt>")
		sb.WriteString(EscapeString(p.Reading))
		sb.WriteString("</rt><rp>)</rp>")
	}
	return sb.String()
}

// buildRuby renders the explicit annotations of @ruby inside a ruby element.
// Every text child is an entry "base:reading", or a base registered before.
func (g *Generator) buildRuby(e *Element) ([]Fragment, error) {
	attr, err := g.buildAttributeText(e.Attr)
	if err != nil {
		return nil, err
	}

	frags := []Fragment{textFragment("<ruby" + attr + ">")}
	for _, c := range e.Children {
		if c.Kind != TextElement {
			f, err := g.build(c)
			if err != nil {
				return nil, err
			}
			frags = append(frags, f...)
			continue
		}
		if c.Text == "" {
			continue
		}

		base, readings := ParseRubyEntry(c.Text)
		var pairs []RubyPair
		if readings != nil {
			pairs = g.ruby.Register(base, readings)
		} else if p, ok := g.ruby.Lookup(base); ok {
			pairs = p
		} else {
			g.log.Debugw("no reading for ruby base", "base", base, "pos", c.Pos.String())
			frags = append(frags, textFragment(EscapeString(base)))
			continue
		}
		frags = append(frags, textFragment(renderRuby(pairs)))
	}
	return append(frags, textFragment("</ruby>")), nil
}

// buildAutoRuby renders the children of $ruby, annotating every text found
// in the dictionary.
func (g *Generator) buildAutoRuby(e *Element) ([]Fragment, error) {
	g.autoRuby++
	defer func() { g.autoRuby-- }()
	return g.buildChildren(e.Children)
}

// annotate escapes s and wraps in ruby elements the longest dictionary matches,
// scanning from left to right.
func (g *Generator) annotate(s string) string {
	var sb, pending strings.Builder
	chars := []rune(s)

	for i := 0; i < len(chars); {
		n, pairs := g.ruby.Match(chars[i:])
		if n == 0 {
			pending.WriteRune(chars[i])
			i++
			continue
		}
		sb.WriteString(EscapeString(pending.String()))
		pending.Reset()
		sb.WriteString("<ruby>")
		sb.WriteString(renderRuby(pairs))
		sb.WriteString("</ruby>")
		i += n
	}
	sb.WriteString(EscapeString(pending.String()))
	return sb.String()
}

// buildRubyFile loads the dictionaries named by the children of @rubyfile.
// Every text child is a file path or a glob pattern, relative to the document.
func (g *Generator) buildRubyFile(e *Element) ([]Fragment, error) {
	for _, c := range e.Children {
		if c.Kind != TextElement || c.Text == "" {
			continue
		}
		name := c.Text
		pattern := g.resolve(name)
		matches, err := doublestar.FilepathGlob(pattern)
		if err != nil {
			return nil, fmt.Errorf("%s: invalid dictionary pattern %s: %w", e.Pos, name, err)
		}
		if len(matches) == 0 {
			// Not a pattern or nothing matches: report the error of the file itself
			matches = []string{pattern}
		}
		for _, path := range matches {
			if err := g.loadRubyFile(path); err != nil {
				return nil, fmt.Errorf("%s: %w", e.Pos, err)
			}
		}
	}
	return nil, nil
}

func (g *Generator) loadRubyFile(path string) error {
	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("reading dictionary %s: %w", path, err)
	}
	defer f.Close()

	n, err := LoadRubyDictionary(g.ruby, filepath.Base(path), f)
	if err != nil {
		return err
	}
	g.log.Debugw("loaded ruby dictionary", "path", path, "entries", n)
	return nil
}
