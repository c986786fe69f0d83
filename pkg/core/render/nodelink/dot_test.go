package nodelink

import (
	"context"
	"strings"
	"testing"

	"github.com/matzehuels/termtree/pkg/core/digraph"
)

func sample() *digraph.Graph {
	g := digraph.New()
	g.AddNode(digraph.Node{ID: "CL_1", Label: "cell", Class: "ose-curation-status-ready", Source: "current", VisualDepth: 1})
	g.AddNode(digraph.Node{ID: "CL_2", Label: "neuron", Source: "current", VisualDepth: 2})
	g.AddNode(digraph.Node{ID: "CL_3", Label: "glia", Source: "current", VisualDepth: 2})
	g.AddNode(digraph.Node{ID: "CL_4", Label: "loop", Source: "current", VisualDepth: digraph.DepthUnreachable})
	g.AddEdge(digraph.Edge{From: "CL_1", To: "CL_2", Type: digraph.SubclassOf})
	g.AddEdge(digraph.Edge{From: "CL_1", To: "CL_3", Type: digraph.SubclassOf})
	g.AddEdge(digraph.Edge{From: "CL_2", To: "CL_3", Type: "part of", Label: "part of", Color: "#1f77b4"})
	g.AddEdge(digraph.Edge{From: "CL_2", To: "gone", Type: digraph.SubclassOf})
	return g
}

func TestToDOT(t *testing.T) {
	dot := ToDOT(sample(), Options{})

	for _, want := range []string{
		"digraph G",
		`"CL_1" [label="cell"`,
		`{ rank=same; "CL_1"; }`,
		`{ rank=same; "CL_2"; "CL_3"; }`,
		`"CL_1" -> "CL_2" [color="#8c8c8c", arrowhead=none]`,
		`"CL_2" -> "CL_3" [style=dashed, color="#1f77b4"`,
	} {
		if !strings.Contains(dot, want) {
			t.Errorf("ToDOT() missing %q in:\n%s", want, dot)
		}
	}
	if strings.Contains(dot, `"gone"`) {
		t.Error("ToDOT() should skip edges to absent nodes")
	}
	if strings.Contains(dot, `rank=same; "CL_4"`) {
		t.Error("ToDOT() should not rank unreachable nodes")
	}
	if strings.Contains(dot, `label="part of"`) {
		t.Error("ToDOT() wrote relation labels without RelationLabels")
	}
}

func TestToDOTRelationLabelsAndFills(t *testing.T) {
	dot := ToDOT(sample(), Options{
		RelationLabels: true,
		Fills:          map[string]string{"ose-curation-status-ready": "#d9f2d9"},
	})

	if !strings.Contains(dot, `label="part of"`) {
		t.Error("ToDOT() missing relation label")
	}
	if !strings.Contains(dot, `fillcolor="#d9f2d9"`) {
		t.Error("ToDOT() missing status fill")
	}
}

func TestFmtLabel(t *testing.T) {
	tests := []struct {
		name     string
		node     digraph.Node
		detailed bool
		want     string
	}{
		{"label", digraph.Node{ID: "X_1", Label: "x"}, false, "x"},
		{"falls back to id", digraph.Node{ID: "X_1"}, false, "X_1"},
		{"detailed", digraph.Node{ID: "X_1", Label: "x", Source: "current", VisualDepth: 2}, true, "x\nid: X_1\nsource: current\ndepth: 2"},
		{"detailed unset depth", digraph.Node{ID: "X_1", Label: "x", VisualDepth: digraph.DepthUnset}, true, "x\nid: X_1"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := fmtLabel(tt.node, tt.detailed); got != tt.want {
				t.Errorf("fmtLabel() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestNormalizeViewBox(t *testing.T) {
	tests := []struct {
		name string
		svg  string
		want string
	}{
		{
			name: "with viewBox",
			svg:  `<svg viewBox="10 20 800 600" xmlns="http://www.w3.org/2000/svg">content</svg>`,
			want: `<svg xmlns="http://www.w3.org/2000/svg" viewBox="0 0 800.00 600.00" width="800" height="600">content</svg>`,
		},
		{
			name: "no viewBox",
			svg:  `<svg xmlns="http://www.w3.org/2000/svg">content</svg>`,
			want: `<svg xmlns="http://www.w3.org/2000/svg">content</svg>`,
		},
		{
			name: "zero dimensions",
			svg:  `<svg viewBox="0 0 0 0">content</svg>`,
			want: `<svg viewBox="0 0 0 0">content</svg>`,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := string(normalizeViewBox([]byte(tt.svg))); got != tt.want {
				t.Errorf("normalizeViewBox() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestRenderSVG(t *testing.T) {
	svg, err := RenderSVG(context.Background(), ToDOT(sample(), Options{}))
	if err != nil {
		t.Fatalf("RenderSVG() error: %v", err)
	}
	if !strings.Contains(string(svg), "<svg") {
		t.Error("RenderSVG() output missing <svg> tag")
	}
}

func TestRenderSVGInvalidDOT(t *testing.T) {
	if _, err := RenderSVG(context.Background(), `not valid DOT {{{`); err == nil {
		t.Error("RenderSVG() should return error for invalid DOT")
	}
}
