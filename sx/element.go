package sx

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"go.uber.org/zap"
)

// ElementKind classifies an Element
type ElementKind int

const (
	// TextElement is plain text, possibly with nested markup in Children
	TextElement ElementKind = iota
	// TagElement is a tag with its attributes and children
	TagElement
	// AttributeElement carries attribute groups for its parent tag and renders nothing
	AttributeElement
)

func (k ElementKind) String() string {
	switch k {
	case TextElement:
		return "Text"
	case TagElement:
		return "Tag"
	case AttributeElement:
		return "Attribute"
	}
	return "Invalid"
}

// AttrGroup is the sequence of elements between two whitespace boundaries of an
// attribute block. When rendered, their text is joined and split on the first '='.
type AttrGroup []*Element

// Element is a node of the semantic tree built from the bracket tree
type Element struct {
	Kind ElementKind
	Tag  string

	// Attr holds all the attribute groups of an ordinary tag, or the groups of an attribute element
	Attr []AttrGroup

	// Args keeps the groups of every attribute block separately, for the flow control tags
	Args [][]AttrGroup

	Text     string
	Children []*Element
	Pos      Pos
}

// flowTags keep positional arguments instead of name=value attributes
var flowTags = map[string]bool{
	"@when":   true,
	"@unless": true,
	"@while":  true,
}

func isFlowTag(tag string) bool {
	return flowTags[strings.ToLower(tag)]
}

type builder struct {
	baseDir  string
	tabWidth int
	log      *zap.SugaredLogger
}

// BuildElement builds the semantic tree from the bracket tree rooted at root.
// Included files are read relative to opts.BaseDir.
func BuildElement(root *Node, opts Options) (*Element, error) {
	opts = opts.normalize()
	b := &builder{
		baseDir:  opts.BaseDir,
		tabWidth: opts.TabWidth,
		log:      opts.Logger,
	}
	return b.build(root)
}

func (b *builder) build(n *Node) (*Element, error) {
	switch n.Open {
	case "(":
		return b.buildTag(n)
	case "[":
		return b.buildAttribute(n)
	case "{":
		return b.buildData(n)
	}
	return b.buildText(n)
}

func (b *builder) buildChildren(nodes []*Node) ([]*Element, error) {
	var elems []*Element
	for _, n := range nodes {
		e, err := b.build(n)
		if err != nil {
			return nil, err
		}
		elems = append(elems, e)
	}
	return elems, nil
}

// buildText builds a leaf or the root. Whitespace leaves have no text.
func (b *builder) buildText(n *Node) (*Element, error) {
	e := &Element{Kind: TextElement, Pos: n.Pos}
	if !n.IsSpace() {
		e.Text = n.Text()
	}

	children, err := b.buildChildren(n.Children())
	if err != nil {
		return nil, err
	}
	e.Children = children
	return e, nil
}

func (b *builder) buildTag(n *Node) (*Element, error) {
	nodes := n.Children()
	for len(nodes) > 0 && nodes[0].IsSpace() {
		nodes = nodes[1:]
	}

	// An empty tag renders nothing
	if len(nodes) == 0 {
		return &Element{Kind: TextElement, Pos: n.Pos}, nil
	}

	name := nodes[0]
	if !name.IsLeaf() {
		return nil, newSyntaxError(name.Pos, `tag name expected after "(", found "%s"`, name.Open)
	}

	all, err := b.buildChildren(nodes[1:])
	if err != nil {
		return nil, err
	}

	e := &Element{Kind: TagElement, Tag: name.Text(), Pos: name.Pos}
	flow := isFlowTag(e.Tag)

	for _, c := range all {
		if c.Kind != AttributeElement {
			e.Children = append(e.Children, c)
			continue
		}
		if flow {
			e.Args = append(e.Args, c.Attr)
		} else {
			e.Attr = append(e.Attr, c.Attr...)
		}
	}

	return e, nil
}

// joinsAcross returns true if the whitespace between prev and next does not
// separate attribute groups, as in `name = value`.
func joinsAcross(prev, next *Node) bool {
	if prev != nil && prev.IsLeaf() && prev.Token.Type == WordToken && strings.HasSuffix(prev.Text(), "=") {
		return true
	}
	if next != nil && next.IsLeaf() && next.Token.Type == WordToken && strings.HasPrefix(next.Text(), "=") {
		return true
	}
	return false
}

func (b *builder) buildAttribute(n *Node) (*Element, error) {
	e := &Element{Kind: AttributeElement, Pos: n.Pos}

	var group AttrGroup
	var last *Node

	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if c.IsSpace() {
			if group != nil && !joinsAcross(last, c.NextSibling) {
				e.Attr = append(e.Attr, group)
				group = nil
				last = nil
			}
			continue
		}

		if c.Open == "[" {
			return nil, &BuildError{Pos: c.Pos, Msg: "attribute block without value inside attribute block"}
		}

		elem, err := b.build(c)
		if err != nil {
			return nil, err
		}
		group = append(group, elem)
		last = c
	}

	if group != nil {
		e.Attr = append(e.Attr, group)
	}
	return e, nil
}

// resolve returns the path of a file named in the document
func (b *builder) resolve(name string) string {
	if filepath.IsAbs(name) {
		return name
	}
	return filepath.Join(b.baseDir, name)
}

// buildData reads the files named in a data block and concatenates their contents
func (b *builder) buildData(n *Node) (*Element, error) {
	var sb strings.Builder

	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if c.IsSpace() {
			continue
		}
		if !c.IsLeaf() {
			return nil, newSyntaxError(c.Pos, `file name expected inside "{", found "%s"`, c.Open)
		}

		path := b.resolve(c.Text())
		b.log.Debugw("including file", "path", path)

		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("%s: reading include file %s: %w", c.Pos, c.Text(), err)
		}
		sb.Write(data)
	}

	return &Element{
		Kind: TextElement,
		Text: Untabify(sb.String(), b.tabWidth),
		Pos:  n.Pos,
	}, nil
}
