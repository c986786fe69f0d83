package sink

import (
	"bytes"
	"encoding/xml"
	"fmt"
	"maps"
	"slices"
	"strings"

	"github.com/matzehuels/termtree/pkg/core/render/tree/layout"
	"github.com/matzehuels/termtree/pkg/fonts"
)

const (
	hierarchyStroke = "#8c8c8c"
	nodeStroke      = "#4d4d4d"
	defaultFill     = "#ffffff"
)

// DefaultStatusFills colours node boxes by curation-status class.
var DefaultStatusFills = map[string]string{
	"ose-curation-status-external":                     "#eeeeee",
	"ose-curation-status-ready":                        "#d9f2d9",
	"ose-curation-status-ready_for_release":            "#d9f2d9",
	"ose-curation-status-metadata_complete":            "#dbe9fa",
	"ose-curation-status-metadata_incomplete":          "#fff2cc",
	"ose-curation-status-uncurated":                    "#fde0dc",
	"ose-curation-status-pending_final_vetting":        "#e8dcf5",
	"ose-curation-status-requires_discussion":          "#fbd5b5",
	"ose-curation-status-to_be_replaced_with_external": "#f2f2f2",
}

const nodeInteractionCSS = `
    .node rect { transition: stroke-width 0.2s ease; }
    .node.highlight rect { stroke-width: 3; }
    .curve.dim, .curve-label.dim { opacity: 0.15; }`

const nodeInteractionJS = `
    function focusNode(id) {
      document.querySelectorAll('.node').forEach(n => n.classList.toggle('highlight', n.id === 'node-' + id));
      document.querySelectorAll('.curve, .curve-label').forEach(c =>
        c.classList.toggle('dim', c.dataset.source !== id && c.dataset.target !== id));
    }
    function clearFocus() {
      document.querySelectorAll('.highlight, .dim').forEach(el => el.classList.remove('highlight', 'dim'));
    }
    document.querySelectorAll('.node').forEach(el => {
      el.addEventListener('mouseenter', () => focusNode(el.id.replace('node-', '')));
      el.addEventListener('mouseleave', clearFocus);
    });`

// SVGOption configures SVG rendering.
type SVGOption func(*svgRenderer)

type svgRenderer struct {
	fontSize       float64
	lineHeight     float64
	fills          map[string]string
	embedFont      bool
	interactive    bool
	relationLabels bool
	title          string
}

// WithFontSize sets the label font size; it should match the layout's.
func WithFontSize(size float64) SVGOption { return func(r *svgRenderer) { r.fontSize = size } }

// WithLineHeight sets the distance between wrapped label lines.
func WithLineHeight(h float64) SVGOption { return func(r *svgRenderer) { r.lineHeight = h } }

// WithStatusFills overrides box fills per curation-status class.
func WithStatusFills(fills map[string]string) SVGOption {
	return func(r *svgRenderer) { maps.Copy(r.fills, fills) }
}

// WithEmbeddedFont embeds the label font as a data URL.
func WithEmbeddedFont() SVGOption { return func(r *svgRenderer) { r.embedFont = true } }

// WithInteraction adds hover highlighting of a node and its edges.
func WithInteraction() SVGOption { return func(r *svgRenderer) { r.interactive = true } }

// WithRelationLabels draws each relation label at the middle of its curve.
func WithRelationLabels() SVGOption { return func(r *svgRenderer) { r.relationLabels = true } }

// WithTitle sets the document title.
func WithTitle(title string) SVGOption { return func(r *svgRenderer) { r.title = title } }

func newSVGRenderer(opts ...SVGOption) svgRenderer {
	r := svgRenderer{
		fontSize:   layout.DefaultFontSize,
		lineHeight: layout.DefaultLineHeight,
		fills:      maps.Clone(DefaultStatusFills),
	}
	for _, opt := range opts {
		opt(&r)
	}
	return r
}

// RenderSVG draws the layout. Edges are drawn beneath the boxes so hierarchy
// links can start at the parent's centre.
func RenderSVG(l layout.Layout, opts ...SVGOption) []byte {
	r := newSVGRenderer(opts...)

	var buf bytes.Buffer
	fmt.Fprintf(&buf, `<svg xmlns="http://www.w3.org/2000/svg" viewBox="0 0 %.1f %.1f" width="%.0f" height="%.0f">`+"\n",
		l.Width, l.Height, l.Width, l.Height)
	if r.title != "" {
		fmt.Fprintf(&buf, "  <title>%s</title>\n", EscapeXML(r.title))
	}

	r.renderDefs(&buf, l.Markers)
	r.renderCurves(&buf, l.Curves)
	for _, b := range l.Boxes() {
		r.renderNode(&buf, b)
	}
	if r.interactive {
		fmt.Fprintf(&buf, "  <style>%s\n  </style>\n", nodeInteractionCSS)
		fmt.Fprintf(&buf, "  <script type=\"text/javascript\"><![CDATA[%s\n  ]]></script>\n", nodeInteractionJS)
	}

	buf.WriteString("</svg>\n")
	return buf.Bytes()
}

func (r *svgRenderer) renderDefs(buf *bytes.Buffer, markers []layout.Marker) {
	buf.WriteString("  <defs>\n")
	for _, m := range markers {
		fmt.Fprintf(buf, `    <marker id="%s" viewBox="0 0 10 10" refX="10" refY="5" markerWidth="7" markerHeight="7" orient="auto-start-reverse">`+
			`<path d="M0,0 L10,5 L0,10 z" fill="%s"/></marker>`+"\n", EscapeXML(m.ID), EscapeXML(m.Color))
	}
	buf.WriteString("    <style>\n")
	if r.embedFont {
		fmt.Fprintf(buf, "      @font-face { font-family: '%s'; src: url(data:font/ttf;base64,%s) format('truetype'); }\n",
			fonts.FontFamily, fonts.RegularTTFBase64())
	}
	fmt.Fprintf(buf, "      .node text { font-family: %s; font-size: %.1fpx; fill: #1a1a1a; }\n", fonts.FallbackFontFamily, r.fontSize)
	fmt.Fprintf(buf, "      .node rect { fill: %s; stroke: %s; stroke-width: 1.2; }\n", defaultFill, nodeStroke)
	for _, class := range slices.Sorted(maps.Keys(r.fills)) {
		fmt.Fprintf(buf, "      .%s rect { fill: %s; }\n", class, r.fills[class])
	}
	fmt.Fprintf(buf, "      .curve-label { font-family: %s; font-size: %.1fpx; }\n", fonts.FallbackFontFamily, r.fontSize*0.8)
	buf.WriteString("    </style>\n")
	buf.WriteString("  </defs>\n")
}

func (r *svgRenderer) renderCurves(buf *bytes.Buffer, curves []layout.Curve) {
	buf.WriteString("  <g class=\"curves\" fill=\"none\">\n")
	for _, c := range curves {
		if c.Kind == layout.CurveHierarchy {
			fmt.Fprintf(buf, `    <path class="curve hierarchy" data-source="%s" data-target="%s" d="%s" stroke="%s" stroke-width="1.5"/>`+"\n",
				EscapeXML(c.From), EscapeXML(c.To), c.Path(), hierarchyStroke)
			continue
		}
		fmt.Fprintf(buf, `    <path class="curve relation" data-source="%s" data-target="%s" data-relation="%s" d="%s" stroke="%s" stroke-width="1.5" stroke-dasharray="5,3" marker-end="url(#%s)"/>`+"\n",
			EscapeXML(c.From), EscapeXML(c.To), EscapeXML(c.Type), c.Path(), EscapeXML(c.Color), EscapeXML(c.Marker))
	}
	buf.WriteString("  </g>\n")

	if !r.relationLabels {
		return
	}
	for _, c := range curves {
		if c.Kind != layout.CurveRelation || c.Label == "" {
			continue
		}
		fmt.Fprintf(buf, `  <text class="curve-label" data-source="%s" data-target="%s" x="%.2f" y="%.2f" text-anchor="middle" fill="%s">%s</text>`+"\n",
			EscapeXML(c.From), EscapeXML(c.To), c.LabelAt.X, c.LabelAt.Y, EscapeXML(c.Color), EscapeXML(c.Label))
	}
}

func (r *svgRenderer) renderNode(buf *bytes.Buffer, b layout.NodeBox) {
	classes := strings.TrimSpace("node " + b.Class + " source-" + b.Source)
	depth := ""
	if b.Depth.Finite() {
		depth = fmt.Sprintf(` data-depth="%d"`, b.Depth)
	}
	fmt.Fprintf(buf, `  <g id="node-%s" class="%s" data-tree="%d"%s>`+"\n", EscapeXML(b.ID), EscapeXML(classes), b.Tree, depth)
	fmt.Fprintf(buf, `    <title>%s</title>`+"\n", EscapeXML(b.Label))
	fmt.Fprintf(buf, `    <rect x="%.2f" y="%.2f" width="%.2f" height="%.2f" rx="4"/>`+"\n", b.X, b.Y, b.Width, b.Height)

	c := b.Center()
	firstBaseline := c.Y - float64(len(b.Lines)-1)*r.lineHeight/2 + r.fontSize*0.35
	fmt.Fprintf(buf, `    <text x="%.2f" text-anchor="middle">`, c.X)
	for i, line := range b.Lines {
		fmt.Fprintf(buf, `<tspan x="%.2f" y="%.2f">%s</tspan>`, c.X, firstBaseline+float64(i)*r.lineHeight, EscapeXML(line))
	}
	buf.WriteString("</text>\n")
	buf.WriteString("  </g>\n")
}

// EscapeXML escapes s for use in SVG text and attribute values.
func EscapeXML(s string) string {
	var buf bytes.Buffer
	_ = xml.EscapeText(&buf, []byte(s))
	return buf.String()
}
