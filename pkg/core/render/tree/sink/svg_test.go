package sink

import (
	"encoding/xml"
	"errors"
	"io"
	"strings"
	"testing"

	"github.com/matzehuels/termtree/pkg/core/digraph"
	"github.com/matzehuels/termtree/pkg/core/render/tree/layout"
)

func sample() layout.Layout {
	g := digraph.New()
	g.AddNode(digraph.Node{ID: "A_1", Label: "Alpha & friends", Class: "ose-curation-status-ready", Source: "current", VisualDepth: 1})
	g.AddNode(digraph.Node{ID: "A_2", Label: "Beta", Class: "ose-curation-status-external", Source: "current", VisualDepth: digraph.DepthUnreachable})
	g.AddEdge(digraph.Edge{From: "A_1", To: "A_2", Type: digraph.SubclassOf})
	g.AddEdge(digraph.Edge{From: "A_2", To: "A_1", Type: "part of", Label: "part of", Color: "#1f77b4"})
	return layout.Build(g, nil, layout.Options{})
}

func TestRenderSVGIsWellFormed(t *testing.T) {
	out := RenderSVG(sample(), WithRelationLabels(), WithInteraction(), WithTitle("a < b"))

	dec := xml.NewDecoder(strings.NewReader(string(out)))
	for {
		_, err := dec.Token()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			t.Fatalf("invalid XML: %v\n%s", err, out)
		}
	}
}

func TestRenderSVGContent(t *testing.T) {
	out := string(RenderSVG(sample(), WithRelationLabels()))

	wants := []string{
		`<marker id="arrow-1f77b4"`,
		`id="node-A_1" class="node ose-curation-status-ready source-current" data-tree="0" data-depth="1"`,
		`id="node-A_2" class="node ose-curation-status-external source-current" data-tree="0">`,
		`Alpha &amp; friends`,
		`class="curve hierarchy"`,
		`marker-end="url(#arrow-1f77b4)"`,
		`class="curve-label"`,
		`.ose-curation-status-ready rect { fill: #d9f2d9; }`,
	}
	for _, w := range wants {
		if !strings.Contains(out, w) {
			t.Errorf("SVG missing %q", w)
		}
	}
	if strings.Contains(out, "@font-face") {
		t.Error("font embedded without WithEmbeddedFont")
	}
}

func TestRenderSVGOptions(t *testing.T) {
	out := string(RenderSVG(sample(),
		WithEmbeddedFont(),
		WithStatusFills(map[string]string{"ose-curation-status-ready": "#000000"}),
	))

	if !strings.Contains(out, "@font-face") {
		t.Error("embedded font missing")
	}
	if !strings.Contains(out, ".ose-curation-status-ready rect { fill: #000000; }") {
		t.Error("status fill override not applied")
	}
	if strings.Contains(out, `class="curve-label"`) {
		t.Error("relation labels drawn without WithRelationLabels")
	}
	if DefaultStatusFills["ose-curation-status-ready"] != "#d9f2d9" {
		t.Error("WithStatusFills modified the defaults")
	}
}
