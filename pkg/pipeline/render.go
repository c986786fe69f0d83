package pipeline

import (
	"context"
	stderrors "errors"
	"fmt"

	"github.com/matzehuels/termtree/pkg/core/render"
	"github.com/matzehuels/termtree/pkg/core/render/nodelink"
	"github.com/matzehuels/termtree/pkg/core/render/tree/layout"
	"github.com/matzehuels/termtree/pkg/core/render/tree/sink"
	"github.com/matzehuels/termtree/pkg/errors"
	"github.com/matzehuels/termtree/pkg/graph"
	"github.com/matzehuels/termtree/pkg/observability"
)

// Render produces the artifacts of opts.Formats from a layout, keyed by
// format. The layout may come from [Runner.Layout] or from a layout JSON
// file written earlier.
func (r *Runner) Render(ctx context.Context, l graph.Layout, opts Options) (map[string][]byte, error) {
	if err := r.prepare(&opts); err != nil {
		return nil, err
	}

	artifacts := make(map[string][]byte, len(opts.Formats))
	err := stage(ctx, observability.StageRender, func() (int, error) {
		for _, format := range opts.Formats {
			data, err := renderFormat(ctx, l, format, opts)
			if err != nil {
				return len(artifacts), err
			}
			artifacts[format] = data
		}
		return len(artifacts), nil
	})
	if err != nil {
		return nil, err
	}
	return artifacts, nil
}

func renderFormat(ctx context.Context, l graph.Layout, format string, opts Options) ([]byte, error) {
	if format == FormatJSON {
		return graph.MarshalLayout(l)
	}
	if format == FormatDOT {
		dot, err := dotSource(l, opts)
		return []byte(dot), err
	}

	var (
		data []byte
		err  error
	)
	if l.IsNodelink() {
		var dot string
		if dot, err = dotSource(l, opts); err != nil {
			return nil, err
		}
		data, err = renderNodelink(ctx, dot, format, opts)
	} else {
		var tl layout.Layout
		if tl, err = l.Tree(); err != nil {
			return nil, errors.Wrap(errors.ErrCodeInvalidInput, err, "layout")
		}
		data, err = renderTree(ctx, tl, format, opts)
	}
	if err != nil {
		if errors.GetCode(err) != "" {
			return nil, err
		}
		if stderrors.Is(err, render.ErrConverterMissing) {
			return nil, errors.Wrap(errors.ErrCodeUnsupported, err, "render %s", format)
		}
		return nil, errors.Wrap(errors.ErrCodeRenderFailed, err, "render %s", format)
	}
	return data, nil
}

func renderTree(ctx context.Context, tl layout.Layout, format string, opts Options) ([]byte, error) {
	svgOpts := svgOptions(opts)
	switch format {
	case FormatSVG:
		return sink.RenderSVG(tl, svgOpts...), nil
	case FormatPNG:
		return sink.RenderPNG(ctx, tl, sink.WithPNGSVGOptions(svgOpts...), sink.WithScale(opts.Scale))
	case FormatPDF:
		return sink.RenderPDF(ctx, tl, svgOpts...)
	}
	return nil, fmt.Errorf("unsupported tree format: %s", format)
}

func renderNodelink(ctx context.Context, dot, format string, opts Options) ([]byte, error) {
	switch format {
	case FormatSVG:
		return nodelink.RenderSVG(ctx, dot)
	case FormatPNG:
		return nodelink.RenderPNG(ctx, dot, opts.Scale)
	case FormatPDF:
		return nodelink.RenderPDF(ctx, dot)
	}
	return nil, fmt.Errorf("unsupported nodelink format: %s", format)
}

func svgOptions(opts Options) []sink.SVGOption {
	svgOpts := []sink.SVGOption{
		sink.WithFontSize(opts.Layout.FontSize),
		sink.WithLineHeight(opts.Layout.LineHeight),
	}
	if opts.Title != "" {
		svgOpts = append(svgOpts, sink.WithTitle(opts.Title))
	}
	if opts.RelationLabels {
		svgOpts = append(svgOpts, sink.WithRelationLabels())
	}
	if opts.Interactive {
		svgOpts = append(svgOpts, sink.WithInteraction())
	}
	if opts.EmbedFont {
		svgOpts = append(svgOpts, sink.WithEmbeddedFont())
	}
	return svgOpts
}

// dotSource returns the DOT of a nodelink layout, or derives it from the
// graph carried by a tree layout.
func dotSource(l graph.Layout, opts Options) (string, error) {
	if l.IsNodelink() && l.DOT != "" {
		return l.DOT, nil
	}
	g, err := graph.ToDigraph(graph.Graph{Nodes: l.Nodes, Edges: l.Edges})
	if err != nil {
		return "", errors.Wrap(errors.ErrCodeInvalidInput, err, "layout graph")
	}
	return nodelink.ToDOT(g, dotOptions(opts)), nil
}
