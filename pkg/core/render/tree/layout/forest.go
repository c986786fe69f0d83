package layout

import "github.com/matzehuels/termtree/pkg/core/digraph"

// SpanningTree is one tree of the forest drawn for a hierarchy. Nodes with
// several parents appear once, under the parent that reached them first.
type SpanningTree struct {
	Root     string
	Order    []string            // breadth-first
	Children map[string][]string // tree children in successor order
	Level    map[string]int      // distance from Root
}

// Decompose splits the hierarchy graph h into spanning trees. Roots of h are
// visited in insertion order and each claims the unclaimed nodes it reaches,
// breadth first. Nodes that no root reaches (they sit on a cycle) seed further
// trees in insertion order.
func Decompose(h *digraph.Graph) []SpanningTree {
	claimed := make(map[string]bool, h.NodeCount())
	var trees []SpanningTree
	seeds := append(h.Roots(), h.Nodes()...)
	for _, seed := range seeds {
		if claimed[seed.ID] {
			continue
		}
		t := SpanningTree{
			Root:     seed.ID,
			Children: make(map[string][]string),
			Level:    map[string]int{seed.ID: 0},
		}
		claimed[seed.ID] = true
		queue := []string{seed.ID}
		for len(queue) > 0 {
			id := queue[0]
			queue = queue[1:]
			t.Order = append(t.Order, id)
			for _, s := range h.Successors(id) {
				if claimed[s.ID] {
					continue
				}
				claimed[s.ID] = true
				t.Children[id] = append(t.Children[id], s.ID)
				t.Level[s.ID] = t.Level[id] + 1
				queue = append(queue, s.ID)
			}
		}
		trees = append(trees, t)
	}
	return trees
}
