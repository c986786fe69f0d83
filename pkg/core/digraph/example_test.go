package digraph_test

import (
	"fmt"

	"github.com/matzehuels/termtree/pkg/core/digraph"
)

func ExampleGraph() {
	g := digraph.New()
	g.AddNode(digraph.Node{ID: "BFO_0000001", Label: "entity"})
	g.AddNode(digraph.Node{ID: "BFO_0000002", Label: "continuant"})
	g.AddNode(digraph.Node{ID: "BFO_0000040", Label: "material entity"})
	g.AddEdge(digraph.Edge{From: "BFO_0000001", To: "BFO_0000002", Type: digraph.SubclassOf})
	g.AddEdge(digraph.Edge{From: "BFO_0000002", To: "BFO_0000040", Type: digraph.SubclassOf})

	fmt.Println("Nodes:", g.NodeCount())
	fmt.Println("Roots:", g.Roots()[0].Label)
	fmt.Println("Reachable from entity:", len(g.Reachable("BFO_0000001")))
	// Output:
	// Nodes: 3
	// Roots: entity
	// Reachable from entity: 3
}

func ExampleGraph_FilterEdges() {
	g := digraph.New()
	g.AddNode(digraph.Node{ID: "cell"})
	g.AddNode(digraph.Node{ID: "nucleus"})
	g.AddEdge(digraph.Edge{From: "cell", To: "nucleus", Type: digraph.SubclassOf})
	g.AddEdge(digraph.Edge{From: "nucleus", To: "cell", Type: "part of"})

	h := g.FilterEdges(digraph.Edge.IsHierarchy)
	fmt.Println("All edges:", g.EdgeCount())
	fmt.Println("Hierarchy edges:", h.EdgeCount())
	// Output:
	// All edges: 2
	// Hierarchy edges: 1
}

func ExampleSanitizeID() {
	fmt.Println(digraph.SanitizeID("OBI:0000070"))
	// Output: OBI_0000070
}
