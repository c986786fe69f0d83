// Package rank assigns every node of a pruned term graph its visual depth,
// the row it is drawn in.
//
// Only subclass_of edges are considered. The rules, applied per node with
// memoization:
//
//  1. A non-current node with at least one child that is not a dependency
//     (a current or derived child) sits on the boundary layer: depth 0.
//  2. Otherwise let maxParent be the deepest parent depth, or -1 without
//     parents. A current node is drawn one row below it, and never above
//     row 1: max(maxParent, 0) + 1. Any other node shares its deepest
//     parent's row, which keeps long dependency chains compact.
//
// Nodes on a cycle, and nodes whose every parent failed to rank, receive
// [digraph.DepthUnreachable] and an error-level log entry. Layout still
// proceeds with them.
package rank

import (
	"io"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/termtree/pkg/core/digraph"
	"github.com/matzehuels/termtree/pkg/core/term"
)

// Boundary is the depth of the boundary layer.
const Boundary digraph.Depth = 0

type assigner struct {
	h        *digraph.Graph
	depth    map[string]digraph.Depth
	visiting map[string]bool
	logger   *log.Logger
}

// Assign computes the visual depth of every node in g, stores it in
// [digraph.Node.VisualDepth] and returns the depths by node id. A nil logger
// discards output.
func Assign(g *digraph.Graph, logger *log.Logger) map[string]digraph.Depth {
	if logger == nil {
		logger = log.NewWithOptions(io.Discard, log.Options{})
	}
	a := &assigner{
		h:        g.FilterEdges(digraph.Edge.IsHierarchy),
		depth:    make(map[string]digraph.Depth, g.NodeCount()),
		visiting: make(map[string]bool),
		logger:   logger,
	}
	for _, n := range g.Nodes() {
		n.VisualDepth = a.rank(n.ID)
	}
	return a.depth
}

func (a *assigner) rank(id string) digraph.Depth {
	if d, ok := a.depth[id]; ok {
		return d
	}
	n, _ := a.h.Node(id)
	if a.visiting[id] {
		a.logger.Error("hierarchy cycle, cannot rank term", "id", id, "label", n.Label)
		return digraph.DepthUnreachable
	}
	a.visiting[id] = true
	defer delete(a.visiting, id)

	d := a.compute(n)
	a.depth[id] = d
	return d
}

func (a *assigner) compute(n *digraph.Node) digraph.Depth {
	current := n.Source == term.SourceCurrent
	if !current {
		for _, child := range a.h.Successors(n.ID) {
			if child.Source != term.SourceDependencies {
				return Boundary
			}
		}
	}

	parents := a.h.Predecessors(n.ID)
	maxParent := digraph.Depth(-1)
	ranked := 0
	for _, p := range parents {
		d := a.rank(p.ID)
		if !d.Finite() {
			continue
		}
		ranked++
		maxParent = max(maxParent, d)
	}
	if len(parents) > 0 && ranked == 0 {
		a.logger.Error("no rankable parent", "id", n.ID, "label", n.Label, "parents", len(parents))
		return digraph.DepthUnreachable
	}

	if current {
		return max(maxParent, 0) + 1
	}
	return maxParent
}
