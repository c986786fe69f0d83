package graph

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/matzehuels/termtree/pkg/core/digraph"
	"github.com/matzehuels/termtree/pkg/core/render/tree/layout"
)

// Visualization types.
const (
	VizTypeTree     = "tree"
	VizTypeNodelink = "nodelink"
)

// Layout is the serialization format for both visualizations. VizType
// selects which of the type-specific fields are populated.
//
//	Tree ("tree"):
//	  - Boxes, Curves, Markers, Trees: the positioned forest
//
//	Nodelink ("nodelink"):
//	  - DOT: Graphviz DOT string for rendering
//	  - Engine: Graphviz layout engine
type Layout struct {
	VizType string  `json:"viz_type" bson:"viz_type"`
	Width   float64 `json:"width" bson:"width"`
	Height  float64 `json:"height" bson:"height"`

	Nodes []Node           `json:"nodes,omitempty" bson:"nodes,omitempty"`
	Edges []Edge           `json:"edges,omitempty" bson:"edges,omitempty"`
	Rows  map[int][]string `json:"rows,omitempty" bson:"rows,omitempty"`

	// Tree-specific
	Boxes   []layout.NodeBox `json:"boxes,omitempty" bson:"boxes,omitempty"`
	Curves  []layout.Curve   `json:"curves,omitempty" bson:"curves,omitempty"`
	Markers []layout.Marker  `json:"markers,omitempty" bson:"markers,omitempty"`
	Trees   []layout.Tree    `json:"trees,omitempty" bson:"trees,omitempty"`
	Skipped int              `json:"skipped_edges,omitempty" bson:"skipped_edges,omitempty"`

	// Nodelink-specific
	DOT    string `json:"dot,omitempty" bson:"dot,omitempty"`
	Engine string `json:"engine,omitempty" bson:"engine,omitempty"`
}

// IsTree reports whether l is a tree layout.
func (l *Layout) IsTree() bool { return l.VizType == VizTypeTree }

// IsNodelink reports whether l is a nodelink layout.
func (l *Layout) IsNodelink() bool { return l.VizType == VizTypeNodelink }

// FromTree packages a computed tree layout together with the graph it was
// computed from.
func FromTree(tl layout.Layout, g *digraph.Graph) Layout {
	out := Layout{
		VizType: VizTypeTree,
		Width:   tl.Width,
		Height:  tl.Height,
		Boxes:   tl.Boxes(),
		Curves:  tl.Curves,
		Markers: tl.Markers,
		Trees:   tl.Trees,
		Skipped: tl.Skipped,
	}
	attachGraph(&out, g)
	return out
}

// FromDOT packages a nodelink DOT string. Graphviz decides the final size,
// so Width and Height are left zero.
func FromDOT(dot string, g *digraph.Graph) Layout {
	out := Layout{VizType: VizTypeNodelink, DOT: dot, Engine: "dot"}
	attachGraph(&out, g)
	return out
}

func attachGraph(l *Layout, g *digraph.Graph) {
	if g == nil {
		return
	}
	s := FromDigraph(g)
	l.Nodes, l.Edges = s.Nodes, s.Edges
	l.Rows = make(map[int][]string)
	for _, n := range g.Nodes() {
		if n.VisualDepth.Finite() {
			l.Rows[int(n.VisualDepth)] = append(l.Rows[int(n.VisualDepth)], n.ID)
		}
	}
}

// Tree rebuilds the internal tree layout for rendering.
func (l Layout) Tree() (layout.Layout, error) {
	if !l.IsTree() {
		return layout.Layout{}, fmt.Errorf("invalid viz_type for tree layout: %q", l.VizType)
	}
	out := layout.Layout{
		Width:   l.Width,
		Height:  l.Height,
		Order:   make([]string, 0, len(l.Boxes)),
		Nodes:   make(map[string]layout.NodeBox, len(l.Boxes)),
		Trees:   l.Trees,
		Curves:  l.Curves,
		Markers: l.Markers,
		Skipped: l.Skipped,
	}
	for _, b := range l.Boxes {
		if _, dup := out.Nodes[b.ID]; dup {
			return layout.Layout{}, fmt.Errorf("duplicate box %q", b.ID)
		}
		out.Order = append(out.Order, b.ID)
		out.Nodes[b.ID] = b
	}
	return out, nil
}

// MarshalLayout serializes a Layout to indented JSON.
func MarshalLayout(l Layout) ([]byte, error) {
	return json.MarshalIndent(l, "", "  ")
}

// UnmarshalLayout decodes JSON bytes into a Layout and checks that the
// fields required by its VizType are present. A missing VizType means tree.
func UnmarshalLayout(data []byte) (Layout, error) {
	var l Layout
	if err := json.Unmarshal(data, &l); err != nil {
		return Layout{}, fmt.Errorf("unmarshal layout: %w", err)
	}
	if l.VizType == "" {
		l.VizType = VizTypeTree
	}
	switch l.VizType {
	case VizTypeTree:
		if len(l.Boxes) == 0 && len(l.Nodes) > 0 {
			return Layout{}, fmt.Errorf("tree layout must contain boxes")
		}
	case VizTypeNodelink:
		if l.DOT == "" {
			return Layout{}, fmt.Errorf("nodelink layout must contain DOT string")
		}
	default:
		return Layout{}, fmt.Errorf("unknown viz_type %q", l.VizType)
	}
	return l, nil
}

// WriteLayoutFile writes a Layout to a JSON file.
func WriteLayoutFile(l Layout, path string) error {
	data, err := MarshalLayout(l)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

// ReadLayoutFile reads a Layout from a JSON file.
func ReadLayoutFile(path string) (Layout, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Layout{}, fmt.Errorf("read %s: %w", path, err)
	}
	return UnmarshalLayout(data)
}
