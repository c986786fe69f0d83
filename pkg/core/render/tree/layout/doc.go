// Package layout computes the geometry of a term forest: node box sizes from
// wrapped labels, tidy positions for every tree, and curves for hierarchy and
// relation edges.
//
// # Pipeline
//
// [Build] runs four steps on a pruned, ranked graph:
//
//  1. Sizing. Each label is wrapped greedily at Options.MaxLineWidth using an
//     injected [Measurer]; the box grows to fit its widest line and line count
//     but never below Options.MinWidth and Options.MinHeight.
//  2. Decomposition. The subclass_of edges are split into spanning trees with
//     [Decompose], one per root, in graph insertion order.
//  3. Placement. Each tree is laid out with a contour-based tidy algorithm
//     that honours variable box widths, then trees are placed left to right
//     with Options.TreeGap between them. A node's row is its VisualDepth
//     shifted so the smallest finite depth is row 0, which lets a node share
//     its parent's row. Nodes without a finite depth sit one row below their
//     tree parent. Rows share a common height across all trees.
//  4. Edges. Hierarchy edges become vertical cubic links, relation edges
//     become bowed quadratic arcs trimmed at the target box, and one arrow
//     [Marker] is emitted per distinct relation colour.
//
// Positions are top-left corners in user units with y growing downward. A
// lone node is always placed at (MarginX, MarginY).
//
// Nothing here fails: an edge whose endpoints were not placed is skipped and
// counted in Layout.Skipped.
package layout
