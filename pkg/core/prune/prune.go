// Package prune removes the parts of a term graph that have no bearing on the
// current sheet.
//
// Relevance depends on where a node came from, and only subclass_of edges are
// followed:
//
//   - current nodes are always relevant
//   - a derived node is relevant when one of its parents is relevant, so only
//     derived generalizations that sit above some current term survive
//   - a dependency node is relevant when one of its children is relevant, so
//     only dependencies on a path down into the current sheet survive
//
// The two directions are intentionally different. [DerivedRelevant] and
// [DependencyRelevant] are pure functions over their own memo so the two
// notions never share cached answers.
package prune

import (
	"github.com/matzehuels/termtree/pkg/core/digraph"
	"github.com/matzehuels/termtree/pkg/core/term"
)

// Memo caches relevance answers by node id for one predicate.
type Memo map[string]state

type state uint8

const (
	visiting state = iota + 1
	relevant
	irrelevant
)

// Result summarizes a pruning pass.
type Result struct {
	Kept         int      `json:"kept"`
	RemovedNodes []string `json:"removed_nodes"`
	RemovedEdges int      `json:"removed_edges"`
}

// Prune removes every irrelevant node from g, then every edge that touches a
// removed or absent node.
func Prune(g *digraph.Graph) Result {
	h := g.FilterEdges(digraph.Edge.IsHierarchy)
	derived, deps := Memo{}, Memo{}

	keep := make(map[string]bool, g.NodeCount())
	var removed []string
	for _, n := range g.Nodes() {
		var ok bool
		switch n.Source {
		case term.SourceCurrent:
			ok = true
		case term.SourceDerived:
			ok = DerivedRelevant(h, n.ID, derived)
		case term.SourceDependencies:
			ok = DependencyRelevant(h, n.ID, deps)
		}
		keep[n.ID] = ok
		if !ok {
			removed = append(removed, n.ID)
		}
	}

	_, edges := g.Retain(func(n *digraph.Node) bool { return keep[n.ID] })
	return Result{Kept: g.NodeCount(), RemovedNodes: removed, RemovedEdges: edges}
}

// DerivedRelevant reports whether id is current, or has a relevant parent
// under the same rule. h should hold subclass_of edges only.
func DerivedRelevant(h *digraph.Graph, id string, memo Memo) bool {
	return relevantVia(h, id, memo, h.Predecessors)
}

// DependencyRelevant reports whether id is current, or has a relevant child
// under the same rule. h should hold subclass_of edges only.
func DependencyRelevant(h *digraph.Graph, id string, memo Memo) bool {
	return relevantVia(h, id, memo, h.Successors)
}

func relevantVia(h *digraph.Graph, id string, memo Memo, next func(string) []*digraph.Node) bool {
	ok, _ := walk(h, id, memo, next)
	return ok
}

// walk reports relevance and whether the answer depended on a node that was
// still being visited. Such negative answers are not memoized: the node on the
// stack may turn out relevant through another branch.
func walk(h *digraph.Graph, id string, memo Memo, next func(string) []*digraph.Node) (ok, partial bool) {
	switch memo[id] {
	case relevant:
		return true, false
	case irrelevant:
		return false, false
	case visiting:
		return false, true
	}
	n, found := h.Node(id)
	if !found {
		memo[id] = irrelevant
		return false, false
	}
	if n.Source == term.SourceCurrent {
		memo[id] = relevant
		return true, false
	}
	memo[id] = visiting
	for _, m := range next(id) {
		r, p := walk(h, m.ID, memo, next)
		if r {
			memo[id] = relevant
			return true, false
		}
		partial = partial || p
	}
	if partial {
		delete(memo, id)
	} else {
		memo[id] = irrelevant
	}
	return false, partial
}
