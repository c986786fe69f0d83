// Package sink draws a computed [layout.Layout].
//
// # Overview
//
// [RenderSVG] writes a standalone SVG document: one marker per relation
// colour in <defs>, hierarchy links and dashed relation arcs underneath, and
// one group per node holding its box, tooltip and wrapped label lines. Each
// node group carries its curation-status class, its source and, when ranked,
// a data-depth attribute with its visual depth.
//
//	svg := sink.RenderSVG(l,
//	    sink.WithFontSize(opts.FontSize),
//	    sink.WithRelationLabels(),
//	    sink.WithInteraction(),
//	)
//
// [RenderPNG] and [RenderPDF] convert the SVG with rsvg-convert, which must
// be installed separately.
package sink
