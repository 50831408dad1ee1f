package sx

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
	"github.com/sanity-io/litter"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func buildFromString(t *testing.T, src string, opts Options) (*Element, error) {
	t.Helper()
	root, err := Parse("test", strings.NewReader(src))
	require.NoError(t, err)
	return BuildElement(root, opts)
}

func txt(s string) *Element {
	return &Element{Kind: TextElement, Text: s}
}

var ignorePos = cmpopts.IgnoreFields(Element{}, "Pos")

func TestBuildElement(t *testing.T) {
	tests := []struct {
		name string
		src  string
		want *Element
	}{
		{
			name: "tag with attribute",
			src:  `(a [href = "x&y"] "go")`,
			want: &Element{Kind: TextElement, Children: []*Element{{
				Kind: TagElement,
				Tag:  "a",
				Attr: []AttrGroup{{txt("href"), txt("="), txt("x&y")}},
				Children: []*Element{
					txt(""), txt(""), txt("go"),
				},
			}}},
		},
		{
			name: "attribute blocks are merged in order",
			src:  `(img[src=a.png][alt="A" width=10])`,
			want: &Element{Kind: TextElement, Children: []*Element{{
				Kind: TagElement,
				Tag:  "img",
				Attr: []AttrGroup{
					{txt("src=a.png")},
					{txt("alt="), txt("A")},
					{txt("width=10")},
				},
			}}},
		},
		{
			name: "flow control keeps positional blocks",
			src:  `(@while [n "n = 3"] ["n -= 1"] x)`,
			want: &Element{Kind: TextElement, Children: []*Element{{
				Kind: TagElement,
				Tag:  "@while",
				Args: [][]AttrGroup{
					{{txt("n")}, {txt("n = 3")}},
					{{txt("n -= 1")}},
				},
				Children: []*Element{txt(""), txt(""), txt(""), txt("x")},
			}}},
		},
		{
			name: "empty tag",
			src:  `()`,
			want: &Element{Kind: TextElement, Children: []*Element{{Kind: TextElement}}},
		},
		{
			name: "tag name after spaces",
			src:  `( b x)`,
			want: &Element{Kind: TextElement, Children: []*Element{{
				Kind:     TagElement,
				Tag:      "b",
				Children: []*Element{txt(""), txt("x")},
			}}},
		},
		{
			name: "nested tag in attribute",
			src:  `[t=(b)]`,
			want: &Element{Kind: TextElement, Children: []*Element{{
				Kind: AttributeElement,
				Attr: []AttrGroup{{txt("t="), {Kind: TagElement, Tag: "b"}}},
			}}},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := buildFromString(t, tt.src, DefaultOptions())
			require.NoError(t, err)
			if diff := cmp.Diff(tt.want, got, ignorePos); diff != "" {
				t.Errorf("BuildElement() mismatch (-want +got):\n%s\ngot: %s", diff, litter.Sdump(got))
			}
		})
	}
}

func TestBuildElementPositions(t *testing.T) {
	got, err := buildFromString(t, "\n  (p x)", DefaultOptions())
	require.NoError(t, err)

	p := got.Children[1]
	assert.Equal(t, "p", p.Tag)
	assert.Equal(t, Pos{Source: "test", Line: 2, Column: 3}, p.Pos)
}

func TestBuildElementData(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "a.txt"), []byte("a\tb\n"), 0644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "b.txt"), []byte("<c>"), 0644))

	opts := DefaultOptions()
	opts.BaseDir = dir

	got, err := buildFromString(t, `{a.txt b.txt}`, opts)
	require.NoError(t, err)
	require.Len(t, got.Children, 1)
	assert.Equal(t, "a   b\n<c>", got.Children[0].Text)

	_, err = buildFromString(t, `{missing.txt}`, opts)
	require.Error(t, err)
	assert.True(t, errors.Is(err, os.ErrNotExist))
	assert.Contains(t, err.Error(), "missing.txt")
}

func TestBuildElementErrors(t *testing.T) {
	_, err := buildFromString(t, `(a [x [y]])`, DefaultOptions())
	var berr *BuildError
	require.ErrorAs(t, err, &berr)
	assert.ErrorIs(t, err, ErrInternal)
	assert.Equal(t, 1, berr.Pos.Line)

	_, err = buildFromString(t, `((b) x)`, DefaultOptions())
	var serr *SyntaxError
	require.ErrorAs(t, err, &serr)
	assert.Contains(t, serr.Msg, "tag name expected")

	_, err = buildFromString(t, `{(b)}`, DefaultOptions())
	require.ErrorAs(t, err, &serr)
	assert.Contains(t, serr.Msg, "file name expected")
}
