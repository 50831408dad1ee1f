package sx

import (
	"context"
	"crypto/md5"
	"fmt"
	"os"
	"path"
	"path/filepath"

	"oss.terrastruct.com/d2/d2graph"
	"oss.terrastruct.com/d2/d2layouts/d2dagrelayout"
	"oss.terrastruct.com/d2/d2lib"
	"oss.terrastruct.com/d2/d2renderers/d2svg"
	"oss.terrastruct.com/d2/d2themes/d2themescatalog"
	"oss.terrastruct.com/d2/lib/textmeasure"
)

// builtAssetsDir is the directory, relative to the document, receiving generated images
const builtAssetsDir = "builtassets"

// buildDiagram renders the D2 source in the children of @d2 as an SVG file
// and emits a figure referencing it.
//
// The name of the file is the hash of the source, so an existing file is reused.
func (g *Generator) buildDiagram(e *Element) ([]Fragment, error) {
	attrs, err := g.attributes(e.Attr)
	if err != nil {
		return nil, err
	}

	src, err := g.childrenString(e)
	if err != nil {
		return nil, err
	}
	src = Dedent(src, g.opts.TabWidth)
	if src == "" {
		return nil, nil
	}

	name := fmt.Sprintf("d2_%x.svg", md5.Sum([]byte(src)))
	dir := filepath.Join(g.opts.BaseDir, builtAssetsDir)
	fileName := filepath.Join(dir, name)

	if _, err := os.Stat(fileName); err != nil {
		g.log.Debugw("generating diagram", "file", fileName, "pos", e.Pos.String())

		svg, err := renderD2(g.ctx, src)
		if err != nil {
			return nil, fmt.Errorf("%s: rendering d2 diagram: %w", e.Pos, err)
		}

		if err := os.MkdirAll(dir, 0750); err != nil {
			return nil, err
		}
		// Permissions for user:rw group:rw others:r
		if err := os.WriteFile(fileName, svg, 0664); err != nil {
			return nil, err
		}
	}

	img := []attribute{{Name: "src", Value: path.Join(builtAssetsDir, name)}}
	img = append(img, attrs...)

	return []Fragment{
		indentFragment("<figure><img" + renderAttributes(img) + "></figure>"),
		newlineFragment,
	}, nil
}

func renderD2(ctx context.Context, src string) ([]byte, error) {
	ruler, err := textmeasure.NewRuler()
	if err != nil {
		return nil, err
	}

	defaultLayout := func(ctx context.Context, g *d2graph.Graph) error {
		return d2dagrelayout.Layout(ctx, g, nil)
	}
	diagram, _, err := d2lib.Compile(ctx, src, &d2lib.CompileOptions{
		Layout: defaultLayout,
		Ruler:  ruler,
	})
	if err != nil {
		return nil, err
	}

	return d2svg.Render(diagram, &d2svg.RenderOpts{
		Pad:     d2svg.DEFAULT_PADDING,
		ThemeID: d2themescatalog.NeutralDefault.ID,
	})
}
