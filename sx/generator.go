package sx

import (
	"context"
	"fmt"
	"io"
	"path/filepath"
	"strings"
	"time"

	"github.com/dop251/goja"
	"go.uber.org/zap"
)

// Void elements: only the opening tag is emitted
var singleTags = map[string]bool{
	"area": true, "base": true, "bgsound": true, "br": true,
	"col":   true,
	"embed": true,
	"frame": true,
	"hr":    true,
	"image": true, "img": true, "input": true,
	"keygen":   true,
	"link":     true,
	"menuitem": true, "meta": true,
	"param":  true,
	"source": true,
	"track":  true,
	"wbr":    true,
}

// Inline elements: no line breaks are added around them
var embedTags = map[string]bool{
	"a": true, "abbr": true, "acronym": true, "audio": true,
	"b": true, "bdi": true, "bdo": true, "big": true, "blink": true, "br": true, "button": true,
	"canvas": true, "cite": true, "code": true,
	"data": true, "del": true, "dfn": true,
	"em":   true,
	"font": true,
	"i":    true, "img": true, "input": true, "ins": true,
	"kbd":   true,
	"label": true,
	"mark":  true, "meter": true,
	"nobr":     true,
	"output":   true,
	"progress": true,
	"q":        true,
	"rb":       true, "rbc": true, "rp": true, "rt": true, "rtc": true, "ruby": true,
	"s": true, "samp": true, "small": true, "spacer": true, "span": true, "strike": true, "strong": true, "sub": true, "sup": true,
	"textarea": true, "th": true, "td": true, "time": true, "tt": true,
	"u":   true,
	"var": true,
	"wbr": true,
}

// Elements wrapped on their own line without indenting the content
var individualTags = map[string]bool{
	"title": true,
}

// Elements whose content is emitted verbatim and re-indented
var altcodeTags = map[string]bool{
	"script": true,
	"style":  true,
}

const sigils = "!#$@"

// Generator converts an Element tree into indented HTML.
//
// The scripting namespace and the ruby dictionary live as long as the Generator,
// so a Generator should be used for a single document.
type Generator struct {
	opts Options
	log  *zap.SugaredLogger
	ctx  context.Context

	vm   *goja.Runtime
	ruby *RubyMap

	// plain is positive while rendering text that must not be escaped
	plain int
	// autoRuby is positive inside $ruby blocks
	autoRuby int

	now func() time.Time
}

// NewGenerator creates a generator with an empty scripting namespace and ruby dictionary
func NewGenerator(opts Options) (*Generator, error) {
	opts = opts.normalize()

	g := &Generator{
		opts: opts,
		log:  opts.Logger,
		vm:   goja.New(),
		ruby: &RubyMap{},
		now:  time.Now,
	}
	if err := g.vm.Set("escape", EscapeString); err != nil {
		return nil, err
	}
	return g, nil
}

// Ruby returns the ruby dictionary of the generator
func (g *Generator) Ruby() *RubyMap {
	return g.ruby
}

// Generate renders the tree rooted at root. Non empty output ends with exactly one newline.
func (g *Generator) Generate(ctx context.Context, root *Element) (string, error) {
	if ctx == nil {
		ctx = context.Background()
	}
	g.ctx = ctx

	stop := context.AfterFunc(ctx, func() {
		g.vm.Interrupt(ctx.Err())
	})
	defer stop()

	frags, err := g.build(root)
	if err != nil {
		return "", err
	}

	html := strings.TrimRight(g.text(frags), "\n")
	if html == "" {
		return "", nil
	}
	return html + "\n", nil
}

func (g *Generator) text(frags []Fragment) string {
	return buildText(frags, g.opts.TabWidth)
}

func (g *Generator) build(e *Element) ([]Fragment, error) {
	switch e.Kind {
	case AttributeElement:
		return nil, nil
	case TextElement:
		return g.buildText(e)
	}

	ltag := strings.ToLower(e.Tag)
	if isFlowTag(ltag) {
		return g.buildFlow(ltag, e)
	}
	if ltag == "" {
		return g.buildChildren(e.Children)
	}
	if strings.ContainsRune(sigils, rune(ltag[0])) {
		return g.buildCommand(ltag, e)
	}

	attr, err := g.buildAttributeText(e.Attr)
	if err != nil {
		return nil, err
	}
	stag, etag := "<"+e.Tag+attr+">", "</"+e.Tag+">"

	switch {
	case embedTags[ltag]:
		if singleTags[ltag] {
			return []Fragment{textFragment(stag)}, nil
		}
		children, err := g.buildChildren(e.Children)
		if err != nil {
			return nil, err
		}
		frags := []Fragment{textFragment(stag)}
		frags = append(frags, children...)
		return append(frags, textFragment(etag)), nil

	case singleTags[ltag]:
		return []Fragment{indentFragment(stag)}, nil

	case individualTags[ltag]:
		children, err := g.buildChildren(e.Children)
		if err != nil {
			return nil, err
		}
		frags := []Fragment{indentFragment(stag)}
		frags = append(frags, children...)
		return append(frags, textFragment(etag), newlineFragment), nil

	case altcodeTags[ltag]:
		content, err := g.childrenString(e)
		if err != nil {
			return nil, err
		}
		return []Fragment{
			indentFragment(stag), newlineFragment,
			enterFragment, {Mode: ReindentMode, Text: content},
			leaveFragment, indentFragment(etag), newlineFragment,
		}, nil
	}

	return g.buildBlock(stag, etag, e.Children)
}

// buildBlock renders a generic block element, indenting its content
func (g *Generator) buildBlock(stag, etag string, elems []*Element) ([]Fragment, error) {
	children, err := g.buildChildren(elems)
	if err != nil {
		return nil, err
	}

	frags := []Fragment{indentFragment(stag), enterFragment}
	if len(children) > 0 && !g.opts.AltIndent {
		frags = append(frags, indentFragment(""))
	}
	frags = append(frags, children...)
	return append(frags, leaveFragment, textFragment(etag), newlineFragment), nil
}

func (g *Generator) buildChildren(elems []*Element) ([]Fragment, error) {
	var frags []Fragment
	for _, e := range elems {
		f, err := g.build(e)
		if err != nil {
			return nil, err
		}
		frags = append(frags, f...)
	}
	return frags, nil
}

// buildText renders the nested markup and then the text of a text element
func (g *Generator) buildText(e *Element) ([]Fragment, error) {
	frags, err := g.buildChildren(e.Children)
	if err != nil {
		return nil, err
	}
	if e.Text == "" {
		return frags, nil
	}

	switch {
	case g.plain > 0:
		return append(frags, textFragment(e.Text)), nil
	case g.autoRuby > 0:
		return append(frags, textFragment(g.annotate(e.Text))), nil
	}
	return append(frags, textFragment(EscapeString(e.Text))), nil
}

// plainString renders elements as unescaped text
func (g *Generator) plainString(elems []*Element) (string, error) {
	g.plain++
	defer func() { g.plain-- }()

	frags, err := g.buildChildren(elems)
	if err != nil {
		return "", err
	}
	return g.text(frags), nil
}

func (g *Generator) childrenString(e *Element) (string, error) {
	return g.plainString(e.Children)
}

type attribute struct {
	Name  string
	Value string
}

// attributes renders the text of every group and splits it on the first '='
func (g *Generator) attributes(groups []AttrGroup) ([]attribute, error) {
	attrs := make([]attribute, 0, len(groups))
	for _, group := range groups {
		s, err := g.plainString(group)
		if err != nil {
			return nil, err
		}
		name, value, _ := strings.Cut(s, "=")
		attrs = append(attrs, attribute{Name: name, Value: qstrip(value)})
	}
	return attrs, nil
}

func renderAttributes(attrs []attribute) string {
	var sb strings.Builder
	for _, a := range attrs {
		fmt.Fprintf(&sb, ` %s="%s"`, a.Name, EscapeString(a.Value))
	}
	return sb.String()
}

// buildAttributeText renders every group as ` name="value"`
func (g *Generator) buildAttributeText(groups []AttrGroup) (string, error) {
	attrs, err := g.attributes(groups)
	if err != nil {
		return "", err
	}
	return renderAttributes(attrs), nil
}

// buildCommand dispatches the tags starting with a sigil.
// Unknown commands render nothing.
func (g *Generator) buildCommand(ltag string, e *Element) ([]Fragment, error) {
	switch ltag {
	case "!doctype":
		return g.buildDoctype(e)
	case "@comment":
		return g.buildComment(e)
	case "#comment":
		return nil, nil
	case "@date":
		return g.buildDate(e)
	case "@ruby":
		return g.buildRuby(e)
	case "$ruby":
		return g.buildAutoRuby(e)
	case "@rubyfile":
		return g.buildRubyFile(e)
	case "@js":
		return g.buildScript(e, g.runInProcess)
	case "$python":
		return g.buildScript(e, g.runSubprocess)
	case "@code":
		return g.buildCode(e)
	case "@d2":
		return g.buildDiagram(e)
	}

	g.log.Debugw("command not implemented", "tag", e.Tag, "pos", e.Pos.String())
	return nil, nil
}

func (g *Generator) buildDoctype(e *Element) ([]Fragment, error) {
	doctype, err := g.childrenString(e)
	if err != nil {
		return nil, err
	}
	doctype = strings.TrimSpace(doctype)
	if doctype != "" {
		doctype = " " + doctype
	}
	return []Fragment{indentFragment("<" + e.Tag + doctype + ">"), newlineFragment}, nil
}

func (g *Generator) buildComment(e *Element) ([]Fragment, error) {
	comment, err := g.childrenString(e)
	if err != nil {
		return nil, err
	}
	return []Fragment{
		indentFragment("<!-- "),
		textFragment(escapeComment(comment)),
		textFragment(" -->"),
	}, nil
}

func (g *Generator) buildDate(e *Element) ([]Fragment, error) {
	format, err := g.childrenString(e)
	if err != nil {
		return nil, err
	}
	format = strings.TrimSpace(format)
	if format == "" {
		format = g.opts.DateFormat
	}
	return []Fragment{textFragment(EscapeString(g.now().Format(format)))}, nil
}

// resolve returns the path of a file named in the document
func (g *Generator) resolve(name string) string {
	if filepath.IsAbs(name) {
		return name
	}
	return filepath.Join(g.opts.BaseDir, name)
}

// Compile parses the document read from r and renders it as HTML.
// name is the source name used in error messages, "-" meaning standard input.
func Compile(ctx context.Context, name string, r io.Reader, opts Options) (string, error) {
	root, err := Parse(name, r)
	if err != nil {
		return "", err
	}

	elem, err := BuildElement(root, opts)
	if err != nil {
		return "", err
	}

	g, err := NewGenerator(opts)
	if err != nil {
		return "", err
	}
	return g.Generate(ctx, elem)
}
