package nodelink_test

import (
	"fmt"
	"strings"

	"github.com/matzehuels/termtree/pkg/core/digraph"
	"github.com/matzehuels/termtree/pkg/core/render/nodelink"
)

func ExampleToDOT() {
	g := digraph.New()
	g.AddNode(digraph.Node{ID: "GO_1", Label: "process", VisualDepth: 1})
	g.AddNode(digraph.Node{ID: "GO_2", Label: "transport", VisualDepth: 2})
	g.AddEdge(digraph.Edge{From: "GO_1", To: "GO_2", Type: digraph.SubclassOf})

	dot := nodelink.ToDOT(g, nodelink.Options{})
	for _, line := range strings.Split(dot, "\n") {
		if strings.Contains(line, "rank=same") || strings.Contains(line, "->") {
			fmt.Println(strings.TrimSpace(line))
		}
	}
	// Output:
	// { rank=same; "GO_1"; }
	// { rank=same; "GO_2"; }
	// "GO_1" -> "GO_2" [color="#8c8c8c", arrowhead=none];
}
