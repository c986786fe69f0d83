// Package nodelink renders a term graph as a Graphviz node-link diagram.
//
// The tree layout in the tree package draws the spanning forest of the
// hierarchy. This package is the alternative view: every node and every edge
// is handed to Graphviz, which positions them itself. Nodes sharing a visual
// depth are grouped into the same rank, so the rows match the tree view.
//
//	Graph → ToDOT() → DOT → RenderSVG() → SVG
//
// The DOT text is also a useful export on its own; the render command writes
// it when asked for the "dot" format.
//
// # Styling
//
// Hierarchy edges are drawn solid and grey. Relation edges are dashed, take
// the colour assigned by the palette, and carry their relation label when
// [Options.RelationLabels] is set. Node fill follows the curation-status
// class using the same fills as the tree sink.
//
// # Dependencies
//
// [RenderSVG] uses the WebAssembly build of Graphviz bundled with
// github.com/goccy/go-graphviz, so no system installation is needed. PDF and
// PNG output go through rsvg-convert; see the render package.
package nodelink
