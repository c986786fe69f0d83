package digraph

import (
	"math"
	"slices"
	"strings"
)

// SubclassOf is the edge type of hierarchy edges. Every other edge type is a
// relation label taken from a spreadsheet REL column.
const SubclassOf = "subclass_of"

// Depth is the visual rank of a node. Finite values are rows in the rendered
// tree; the two sentinels mark nodes that were never ranked or could not be.
type Depth int

const (
	// DepthUnset is the depth of a node that has not been ranked yet.
	DepthUnset Depth = math.MaxInt
	// DepthUnreachable marks a node whose rank could not be derived, either
	// because it sits on a cycle or because none of its parents could be ranked.
	DepthUnreachable Depth = math.MinInt
)

// Finite reports whether d is a real rank rather than a sentinel.
func (d Depth) Finite() bool { return d != DepthUnset && d != DepthUnreachable }

// Node is a term vertex. The zero value is usable once ID is set.
type Node struct {
	ID          string // Sanitized term identifier
	Label       string // Display label
	Class       string // Curation-status class, e.g. "ose-curation-status-ready"
	Source      string // "current", "dependencies" or "derived"
	Origin      string // Ontology the term was imported from
	VisualDepth Depth  // Rank assigned by the rank package
}

// Edge is a directed connection. Type is [SubclassOf] for hierarchy edges and
// the relation label otherwise. Several edges may join the same pair.
type Edge struct {
	From  string `json:"source"`
	To    string `json:"target"`
	Type  string `json:"type"`
	Label string `json:"label,omitempty"`
	Color string `json:"color,omitempty"`
}

// IsHierarchy reports whether e is a subclass_of edge.
func (e Edge) IsHierarchy() bool { return e.Type == SubclassOf }

// IDSet is a set of node ids.
type IDSet map[string]struct{}

// Has reports whether id is in the set.
func (s IDSet) Has(id string) bool {
	_, ok := s[id]
	return ok
}

// Sorted returns the ids in ascending order.
func (s IDSet) Sorted() []string {
	ids := make([]string, 0, len(s))
	for id := range s {
		ids = append(ids, id)
	}
	slices.Sort(ids)
	return ids
}

type pair struct{ from, to string }

// Graph is a mutable directed multigraph.
//
// Edges may reference ids that have no node; such edges are kept and simply
// contribute nothing to neighbour queries. Successor and predecessor lists are
// kept in edge insertion order and are consistent with the edge list after
// every mutation.
//
// The zero value is not usable - use New. Graph is not safe for concurrent use.
type Graph struct {
	nodes map[string]*Node
	order []string
	edges []Edge
	out   map[string][]string // from -> distinct targets
	in    map[string][]string // to -> distinct sources
	mult  map[pair]int        // edges per (from, to)
}

// New creates an empty graph.
func New() *Graph {
	return &Graph{
		nodes: make(map[string]*Node),
		out:   make(map[string][]string),
		in:    make(map[string][]string),
		mult:  make(map[pair]int),
	}
}

// AddNode inserts n, or overwrites the node with the same id in place. An
// overwritten node keeps its original position in [Graph.Nodes].
func (g *Graph) AddNode(n Node) {
	if _, ok := g.nodes[n.ID]; !ok {
		g.order = append(g.order, n.ID)
	}
	node := n
	g.nodes[n.ID] = &node
}

// AddEdge appends e. Endpoints need not exist.
func (g *Graph) AddEdge(e Edge) {
	g.edges = append(g.edges, e)
	p := pair{e.From, e.To}
	if g.mult[p] == 0 {
		g.out[e.From] = append(g.out[e.From], e.To)
		g.in[e.To] = append(g.in[e.To], e.From)
	}
	g.mult[p]++
}

// RemoveEdge removes every edge from -> to of the given type. An empty typ
// removes all edges between the pair regardless of type.
func (g *Graph) RemoveEdge(from, to, typ string) {
	g.removeEdges(func(e Edge) bool {
		return e.From == from && e.To == to && (typ == "" || e.Type == typ)
	})
}

// RemoveNode deletes the node and every edge that touches it. Unknown ids are
// ignored. Runs in O(N+E).
func (g *Graph) RemoveNode(id string) {
	if _, ok := g.nodes[id]; ok {
		delete(g.nodes, id)
		g.order = slices.DeleteFunc(g.order, func(s string) bool { return s == id })
	}
	g.removeEdges(func(e Edge) bool { return e.From == id || e.To == id })
}

func (g *Graph) removeEdges(match func(Edge) bool) int {
	removed := 0
	g.edges = slices.DeleteFunc(g.edges, func(e Edge) bool {
		if !match(e) {
			return false
		}
		removed++
		g.unlink(e.From, e.To)
		return true
	})
	return removed
}

func (g *Graph) unlink(from, to string) {
	p := pair{from, to}
	g.mult[p]--
	if g.mult[p] > 0 {
		return
	}
	delete(g.mult, p)
	g.out[from] = slices.DeleteFunc(g.out[from], func(s string) bool { return s == to })
	if len(g.out[from]) == 0 {
		delete(g.out, from)
	}
	g.in[to] = slices.DeleteFunc(g.in[to], func(s string) bool { return s == from })
	if len(g.in[to]) == 0 {
		delete(g.in, to)
	}
}

// Node returns the node with the given id. The pointer refers to the graph's
// own copy, so field updates (VisualDepth in particular) are visible to later
// readers.
func (g *Graph) Node(id string) (*Node, bool) {
	n, ok := g.nodes[id]
	return n, ok
}

// Has reports whether a node with the id exists.
func (g *Graph) Has(id string) bool {
	_, ok := g.nodes[id]
	return ok
}

// Nodes returns all nodes in insertion order.
func (g *Graph) Nodes() []*Node {
	nodes := make([]*Node, 0, len(g.order))
	for _, id := range g.order {
		nodes = append(nodes, g.nodes[id])
	}
	return nodes
}

// Edges returns a copy of the edge list in insertion order.
func (g *Graph) Edges() []Edge { return slices.Clone(g.edges) }

// NodeCount returns the number of nodes.
func (g *Graph) NodeCount() int { return len(g.nodes) }

// EdgeCount returns the number of edges, dangling ones included.
func (g *Graph) EdgeCount() int { return len(g.edges) }

// OutEdges returns the edges leaving id, in insertion order.
func (g *Graph) OutEdges(id string) []Edge {
	return g.edgesWhere(func(e Edge) bool { return e.From == id })
}

// InEdges returns the edges entering id, in insertion order.
func (g *Graph) InEdges(id string) []Edge {
	return g.edgesWhere(func(e Edge) bool { return e.To == id })
}

func (g *Graph) edgesWhere(match func(Edge) bool) []Edge {
	var out []Edge
	for _, e := range g.edges {
		if match(e) {
			out = append(out, e)
		}
	}
	return out
}

// Successors returns the existing nodes that id has an edge to. Targets
// without a node are skipped. Unknown ids yield nil.
func (g *Graph) Successors(id string) []*Node { return g.resolve(g.out[id]) }

// Predecessors returns the existing nodes with an edge to id.
func (g *Graph) Predecessors(id string) []*Node { return g.resolve(g.in[id]) }

func (g *Graph) resolve(ids []string) []*Node {
	var nodes []*Node
	for _, id := range ids {
		if n, ok := g.nodes[id]; ok {
			nodes = append(nodes, n)
		}
	}
	return nodes
}

// Reachable returns every node id reachable from start by following edges
// forward, start included. Dangling targets are not visited.
func (g *Graph) Reachable(start string) IDSet { return g.flood(start, g.out) }

// BackwardReachable returns every node id from which start can be reached,
// start included.
func (g *Graph) BackwardReachable(start string) IDSet { return g.flood(start, g.in) }

func (g *Graph) flood(start string, adj map[string][]string) IDSet {
	seen := IDSet{start: {}}
	stack := []string{start}
	for len(stack) > 0 {
		id := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		for _, next := range adj[id] {
			if _, ok := g.nodes[next]; !ok {
				continue
			}
			if seen.Has(next) {
				continue
			}
			seen[next] = struct{}{}
			stack = append(stack, next)
		}
	}
	return seen
}

// Roots returns the nodes with no predecessors, in insertion order. The result
// is recomputed on every call.
func (g *Graph) Roots() []*Node {
	var roots []*Node
	for _, id := range g.order {
		if len(g.Predecessors(id)) == 0 {
			roots = append(roots, g.nodes[id])
		}
	}
	return roots
}

// Leaves returns the nodes with no successors, in insertion order.
func (g *Graph) Leaves() []*Node {
	var leaves []*Node
	for _, id := range g.order {
		if len(g.Successors(id)) == 0 {
			leaves = append(leaves, g.nodes[id])
		}
	}
	return leaves
}

// Clone returns an independent copy with fresh node and edge values.
func (g *Graph) Clone() *Graph { return g.FilterEdges(nil) }

// FilterEdges returns a copy of g with all nodes and only the edges keep
// accepts. A nil keep retains every edge.
func (g *Graph) FilterEdges(keep func(Edge) bool) *Graph {
	c := New()
	for _, id := range g.order {
		c.AddNode(*g.nodes[id])
	}
	for _, e := range g.edges {
		if keep == nil || keep(e) {
			c.AddEdge(e)
		}
	}
	return c
}

// Retain removes every node keep rejects, then every edge whose endpoints are
// not both present. It returns the number of removed nodes and edges.
func (g *Graph) Retain(keep func(*Node) bool) (nodes, edges int) {
	for _, id := range slices.Clone(g.order) {
		if !keep(g.nodes[id]) {
			delete(g.nodes, id)
			nodes++
		}
	}
	if nodes > 0 {
		g.order = slices.DeleteFunc(g.order, func(id string) bool { return !g.Has(id) })
	}
	edges = g.removeEdges(func(e Edge) bool { return !g.Has(e.From) || !g.Has(e.To) })
	return nodes, edges
}

// SanitizeID turns a term identifier such as "OBI:0000070" into a value that
// is safe as an element id in the drawing surface.
func SanitizeID(id string) string { return strings.ReplaceAll(id, ":", "_") }
