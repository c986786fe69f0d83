// Package digraph provides the directed multigraph that carries ontology
// terms through building, pruning, ranking and layout.
//
// # Overview
//
// A [Graph] holds [Node] values keyed by sanitized term id and an ordered
// list of [Edge] values. Hierarchy edges have type [SubclassOf] and point from
// parent to child; relation edges carry the relation label as their type.
// Several edges may connect the same pair of nodes.
//
// The container is permissive: edges may reference ids that have no node,
// unknown ids yield empty results, and no method returns an error. Builders
// rely on this to represent external parents that are not part of the merged
// term table until the pruner decides what to keep.
//
// # Queries
//
// [Graph.Successors] and [Graph.Predecessors] return resolved nodes from
// incrementally maintained adjacency lists. [Graph.Reachable] and
// [Graph.BackwardReachable] flood-fill with an explicit stack, so deep
// hierarchies do not grow the goroutine stack. [Graph.Roots] and
// [Graph.Leaves] are recomputed on every call.
//
// Views restricted to one kind of edge are produced with [Graph.FilterEdges]:
//
//	h := g.FilterEdges(digraph.Edge.IsHierarchy)
//	roots := h.Roots()
package digraph
