// Package graph provides serialization types for term graphs and layouts.
//
// This package defines the wire format for termtree's graph data, used for
// JSON files, API responses, caching, and the MongoDB snapshot store.
//
// # Architecture
//
// The package sits at the serialization boundary between internal
// representations and external formats:
//
//   - [Graph], [Layout]: Serialization types (this package)
//   - pkg/core/digraph.Graph: Internal graph representation
//   - pkg/core/render/tree/layout.Layout: Internal tree layout
//
// Use [FromDigraph]/[ToDigraph] and [FromTree]/[Layout.Tree] to convert
// between them.
//
// # Graph Serialization
//
// Graphs use a node-link JSON format. Nodes keep their insertion order, which
// is also the order the layout engine seeds trees in:
//
//	{
//	  "nodes": [{"id": "CL_1", "label": "cell", "source": "current", "visual_depth": 1}],
//	  "edges": [{"source": "CL_1", "target": "CL_2", "type": "subclass_of"}]
//	}
//
// A node that was never ranked has no visual_depth; a node that could not be
// ranked carries "unreachable": true instead.
//
// # Layout Serialization
//
// Layouts are discriminated by VizType. Tree layouts carry positioned boxes
// and curves; nodelink layouts carry a DOT string that Graphviz positions at
// render time.
package graph
