package nodelink

import (
	"bytes"
	"cmp"
	"context"
	"fmt"
	"maps"
	"regexp"
	"slices"
	"strconv"
	"strings"

	"github.com/goccy/go-graphviz"

	"github.com/matzehuels/termtree/pkg/core/digraph"
	"github.com/matzehuels/termtree/pkg/core/render"
)

const hierarchyColor = "#8c8c8c"

// Options configures DOT generation.
type Options struct {
	// Fills maps curation-status classes to node fill colours. Classes
	// without an entry are drawn white.
	Fills map[string]string
	// RelationLabels writes each relation label onto its edge.
	RelationLabels bool
	// Detailed adds the term id, source and depth below the label.
	Detailed bool
}

// ToDOT converts g to Graphviz DOT. Nodes with a finite visual depth are
// grouped into one rank per depth; unranked nodes are left to Graphviz.
func ToDOT(g *digraph.Graph, opts Options) string {
	var buf bytes.Buffer
	buf.WriteString("digraph G {\n")
	buf.WriteString("  rankdir=TB;\n")
	buf.WriteString("  bgcolor=\"transparent\";\n")
	buf.WriteString("  node [shape=box, style=\"rounded,filled\", fillcolor=white, fontname=\"Helvetica\", fontsize=12, margin=\"0.15,0.08\"];\n")
	buf.WriteString("  edge [arrowsize=0.7];\n")
	buf.WriteString("  ranksep=0.6;\n")
	buf.WriteString("  nodesep=0.3;\n")
	buf.WriteString("\n")

	ranks := make(map[digraph.Depth][]string)
	for _, n := range g.Nodes() {
		fmt.Fprintf(&buf, "  %q [%s];\n", n.ID, strings.Join(fmtAttrs(*n, opts), ", "))
		if n.VisualDepth.Finite() {
			ranks[n.VisualDepth] = append(ranks[n.VisualDepth], n.ID)
		}
	}

	buf.WriteString("\n")
	for _, d := range slices.Sorted(maps.Keys(ranks)) {
		ids := make([]string, len(ranks[d]))
		for i, id := range ranks[d] {
			ids[i] = strconv.Quote(id)
		}
		fmt.Fprintf(&buf, "  { rank=same; %s; }\n", strings.Join(ids, "; "))
	}

	buf.WriteString("\n")
	for _, e := range g.Edges() {
		if !g.Has(e.From) || !g.Has(e.To) {
			continue
		}
		fmt.Fprintf(&buf, "  %q -> %q [%s];\n", e.From, e.To, strings.Join(fmtEdgeAttrs(e, opts), ", "))
	}

	buf.WriteString("}\n")
	return buf.String()
}

func fmtLabel(n digraph.Node, detailed bool) string {
	label := cmp.Or(n.Label, n.ID)
	if !detailed {
		return label
	}
	parts := []string{label, "id: " + n.ID}
	if n.Source != "" {
		parts = append(parts, "source: "+n.Source)
	}
	if n.VisualDepth.Finite() {
		parts = append(parts, fmt.Sprintf("depth: %d", n.VisualDepth))
	}
	return strings.Join(parts, "\n")
}

func fmtAttrs(n digraph.Node, opts Options) []string {
	attrs := []string{fmt.Sprintf("label=%q", fmtLabel(n, opts.Detailed))}
	if fill, ok := opts.Fills[n.Class]; ok {
		attrs = append(attrs, fmt.Sprintf("fillcolor=%q", fill))
	}
	if n.Class != "" {
		attrs = append(attrs, fmt.Sprintf("class=%q", n.Class))
	}
	return attrs
}

func fmtEdgeAttrs(e digraph.Edge, opts Options) []string {
	if e.IsHierarchy() {
		return []string{fmt.Sprintf("color=%q", hierarchyColor), "arrowhead=none"}
	}
	attrs := []string{"style=dashed"}
	if e.Color != "" {
		attrs = append(attrs, fmt.Sprintf("color=%q", e.Color), fmt.Sprintf("fontcolor=%q", e.Color))
	}
	if opts.RelationLabels && e.Label != "" {
		attrs = append(attrs, fmt.Sprintf("label=%q", e.Label), "fontsize=9")
	}
	return attrs
}

// RenderSVG lays out and draws a DOT graph with Graphviz.
func RenderSVG(ctx context.Context, dot string) ([]byte, error) {
	gv, err := graphviz.New(ctx)
	if err != nil {
		return nil, fmt.Errorf("init graphviz: %w", err)
	}
	defer gv.Close()

	g, err := graphviz.ParseBytes([]byte(dot))
	if err != nil {
		return nil, fmt.Errorf("parse DOT: %w", err)
	}
	defer g.Close()

	var buf bytes.Buffer
	if err := gv.Render(ctx, g, graphviz.SVG, &buf); err != nil {
		return nil, fmt.Errorf("render: %w", err)
	}
	return normalizeViewBox(buf.Bytes()), nil
}

var (
	svgTagRe  = regexp.MustCompile(`<svg[^>]*>`)
	viewBoxRe = regexp.MustCompile(`viewBox="([0-9.]+)\s+([0-9.]+)\s+([0-9.]+)\s+([0-9.]+)"`)
)

// normalizeViewBox replaces the Graphviz root element, whose width and height
// are in points, with one sized in user units and anchored at the origin.
func normalizeViewBox(svg []byte) []byte {
	match := viewBoxRe.FindSubmatch(svg)
	if match == nil {
		return svg
	}
	w, _ := strconv.ParseFloat(string(match[3]), 64)
	h, _ := strconv.ParseFloat(string(match[4]), 64)
	if w == 0 || h == 0 {
		return svg
	}
	root := fmt.Sprintf(`<svg xmlns="http://www.w3.org/2000/svg" viewBox="0 0 %.2f %.2f" width="%.0f" height="%.0f">`, w, h, w, h)
	return svgTagRe.ReplaceAll(svg, []byte(root))
}

// RenderPDF renders a DOT graph to PDF through SVG.
//
// Requires librsvg: brew install librsvg (macOS), apt install librsvg2-bin (Linux).
func RenderPDF(ctx context.Context, dot string) ([]byte, error) {
	svg, err := RenderSVG(ctx, dot)
	if err != nil {
		return nil, err
	}
	return render.ToPDF(ctx, svg)
}

// RenderPNG renders a DOT graph to PNG through SVG at the given scale.
func RenderPNG(ctx context.Context, dot string, scale float64) ([]byte, error) {
	svg, err := RenderSVG(ctx, dot)
	if err != nil {
		return nil, err
	}
	return render.ToPNG(ctx, svg, scale)
}
