package graph

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/matzehuels/termtree/pkg/core/digraph"
)

// Graph is the serialization format for term graphs.
type Graph struct {
	Nodes []Node `json:"nodes" bson:"nodes"`
	Edges []Edge `json:"edges" bson:"edges"`
}

// Node is one serialized term vertex.
type Node struct {
	ID          string `json:"id" bson:"id"`
	Label       string `json:"label,omitempty" bson:"label,omitempty"`
	Class       string `json:"class,omitempty" bson:"class,omitempty"`
	Source      string `json:"source,omitempty" bson:"source,omitempty"`
	Origin      string `json:"origin,omitempty" bson:"origin,omitempty"`
	VisualDepth *int   `json:"visual_depth,omitempty" bson:"visual_depth,omitempty"`
	Unreachable bool   `json:"unreachable,omitempty" bson:"unreachable,omitempty"`
}

// Depth converts the serialized rank back to a [digraph.Depth].
func (n Node) Depth() digraph.Depth {
	switch {
	case n.Unreachable:
		return digraph.DepthUnreachable
	case n.VisualDepth == nil:
		return digraph.DepthUnset
	default:
		return digraph.Depth(*n.VisualDepth)
	}
}

// DisplayLabel returns the label if set, otherwise the ID.
func (n Node) DisplayLabel() string {
	if n.Label != "" {
		return n.Label
	}
	return n.ID
}

// Edge is one serialized edge.
type Edge struct {
	Source string `json:"source" bson:"source"`
	Target string `json:"target" bson:"target"`
	Type   string `json:"type" bson:"type"`
	Label  string `json:"label,omitempty" bson:"label,omitempty"`
	Color  string `json:"color,omitempty" bson:"color,omitempty"`
}

// FromDigraph converts g to its serialization format. Nodes and edges keep
// their insertion order.
func FromDigraph(g *digraph.Graph) Graph {
	out := Graph{Nodes: make([]Node, 0, g.NodeCount()), Edges: make([]Edge, 0, g.EdgeCount())}
	for _, n := range g.Nodes() {
		out.Nodes = append(out.Nodes, nodeFromDigraph(n))
	}
	for _, e := range g.Edges() {
		out.Edges = append(out.Edges, Edge{Source: e.From, Target: e.To, Type: e.Type, Label: e.Label, Color: e.Color})
	}
	return out
}

func nodeFromDigraph(n *digraph.Node) Node {
	node := Node{ID: n.ID, Label: n.Label, Class: n.Class, Source: n.Source, Origin: n.Origin}
	switch {
	case n.VisualDepth == digraph.DepthUnreachable:
		node.Unreachable = true
	case n.VisualDepth.Finite():
		d := int(n.VisualDepth)
		node.VisualDepth = &d
	}
	return node
}

// ToDigraph rebuilds a [digraph.Graph]. It rejects nodes without an id and
// duplicate ids; edges may reference unknown ids, as the graph allows.
func ToDigraph(gj Graph) (*digraph.Graph, error) {
	g := digraph.New()
	for i, nj := range gj.Nodes {
		if nj.ID == "" {
			return nil, fmt.Errorf("node %d: missing id", i)
		}
		if g.Has(nj.ID) {
			return nil, fmt.Errorf("node %s: duplicate id", nj.ID)
		}
		g.AddNode(digraph.Node{
			ID:          nj.ID,
			Label:       nj.Label,
			Class:       nj.Class,
			Source:      nj.Source,
			Origin:      nj.Origin,
			VisualDepth: nj.Depth(),
		})
	}
	for i, ej := range gj.Edges {
		if ej.Source == "" || ej.Target == "" {
			return nil, fmt.Errorf("edge %d: missing endpoint", i)
		}
		typ := ej.Type
		if typ == "" {
			typ = digraph.SubclassOf
		}
		g.AddEdge(digraph.Edge{From: ej.Source, To: ej.Target, Type: typ, Label: ej.Label, Color: ej.Color})
	}
	return g, nil
}

// MarshalGraph converts g to indented JSON.
func MarshalGraph(g *digraph.Graph) ([]byte, error) {
	var buf bytes.Buffer
	if err := WriteGraph(g, &buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// UnmarshalGraph decodes JSON bytes into a [Graph].
func UnmarshalGraph(data []byte) (Graph, error) {
	var g Graph
	if err := json.Unmarshal(data, &g); err != nil {
		return Graph{}, err
	}
	return g, nil
}

// WriteGraph writes g as JSON to w.
func WriteGraph(g *digraph.Graph, w io.Writer) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(FromDigraph(g)); err != nil {
		return fmt.Errorf("encode: %w", err)
	}
	return nil
}

// WriteGraphFile writes g to a JSON file.
func WriteGraphFile(g *digraph.Graph, path string) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	defer f.Close()
	return WriteGraph(g, f)
}

// ReadGraph decodes a JSON graph from r.
func ReadGraph(r io.Reader) (*digraph.Graph, error) {
	var data Graph
	if err := json.NewDecoder(r).Decode(&data); err != nil {
		return nil, fmt.Errorf("decode: %w", err)
	}
	return ToDigraph(data)
}

// ReadGraphFile reads a JSON graph file.
func ReadGraphFile(path string) (*digraph.Graph, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()
	return ReadGraph(f)
}
