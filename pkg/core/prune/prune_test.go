package prune

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/matzehuels/termtree/pkg/core/digraph"
	"github.com/matzehuels/termtree/pkg/core/term"
)

type node struct{ id, source string }

func graph(nodes []node, edges ...[2]string) *digraph.Graph {
	g := digraph.New()
	for _, n := range nodes {
		g.AddNode(digraph.Node{ID: n.id, Source: n.source})
	}
	for _, e := range edges {
		g.AddEdge(digraph.Edge{From: e[0], To: e[1], Type: digraph.SubclassOf})
	}
	return g
}

const (
	cur = term.SourceCurrent
	dep = term.SourceDependencies
	der = term.SourceDerived
)

func TestPrune(t *testing.T) {
	tests := []struct {
		name  string
		nodes []node
		edges [][2]string
		kept  []string
	}{
		{
			name:  "dependency above current survives",
			nodes: []node{{"dep", dep}, {"cur", cur}},
			edges: [][2]string{{"dep", "cur"}},
			kept:  []string{"dep", "cur"},
		},
		{
			name:  "dependency with no path to current is removed",
			nodes: []node{{"X", dep}, {"cur", cur}},
			kept:  []string{"cur"},
		},
		{
			name:  "dependency below current is removed",
			nodes: []node{{"cur", cur}, {"dep", dep}},
			edges: [][2]string{{"cur", "dep"}},
			kept:  []string{"cur"},
		},
		{
			name:  "derived below current survives",
			nodes: []node{{"cur", cur}, {"der", der}},
			edges: [][2]string{{"cur", "der"}},
			kept:  []string{"cur", "der"},
		},
		{
			name:  "derived above current is removed",
			nodes: []node{{"der", der}, {"cur", cur}},
			edges: [][2]string{{"der", "cur"}},
			kept:  []string{"cur"},
		},
		{
			name:  "isolated derived is removed",
			nodes: []node{{"der", der}, {"cur", cur}},
			kept:  []string{"cur"},
		},
		{
			name:  "dependency chain into current survives",
			nodes: []node{{"root", dep}, {"mid", dep}, {"cur", cur}},
			edges: [][2]string{{"root", "mid"}, {"mid", "cur"}},
			kept:  []string{"root", "mid", "cur"},
		},
		{
			name:  "derived chain under current survives",
			nodes: []node{{"cur", cur}, {"d1", der}, {"d2", der}},
			edges: [][2]string{{"cur", "d1"}, {"d1", "d2"}},
			kept:  []string{"cur", "d1", "d2"},
		},
		{
			name:  "unknown source is removed",
			nodes: []node{{"odd", "imported"}, {"cur", cur}},
			edges: [][2]string{{"odd", "cur"}},
			kept:  []string{"cur"},
		},
		{
			name:  "cycle with an exit to current",
			nodes: []node{{"a", dep}, {"b", dep}, {"cur", cur}},
			edges: [][2]string{{"a", "b"}, {"b", "a"}, {"a", "cur"}},
			kept:  []string{"a", "b", "cur"},
		},
		{
			name:  "cycle without exit",
			nodes: []node{{"a", dep}, {"b", dep}, {"cur", cur}},
			edges: [][2]string{{"a", "b"}, {"b", "a"}},
			kept:  []string{"cur"},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			g := graph(tt.nodes, tt.edges...)
			res := Prune(g)

			var kept []string
			for _, n := range g.Nodes() {
				kept = append(kept, n.ID)
			}
			assert.Equal(t, tt.kept, kept)
			assert.Equal(t, len(tt.kept), res.Kept)
			assert.Len(t, res.RemovedNodes, len(tt.nodes)-len(tt.kept))
		})
	}
}

func TestPruneRemovesDanglingAndRelationEdges(t *testing.T) {
	g := graph([]node{{"cur", cur}, {"X", dep}}, [2]string{"external", "cur"})
	g.AddEdge(digraph.Edge{From: "cur", To: "X", Type: "part of"})

	res := Prune(g)

	assert.Equal(t, 2, res.RemovedEdges)
	assert.Zero(t, g.EdgeCount())
}

func TestPruneIgnoresRelationEdgesForRelevance(t *testing.T) {
	g := graph([]node{{"cur", cur}, {"X", dep}})
	g.AddEdge(digraph.Edge{From: "X", To: "cur", Type: "part of"})

	Prune(g)

	assert.False(t, g.Has("X"))
}

func TestPredicatesKeepSeparateMemos(t *testing.T) {
	// "mixed" is derived-relevant (parent cur) but not dependency-relevant.
	h := graph([]node{{"cur", cur}, {"mixed", dep}}, [2]string{"cur", "mixed"})

	derivedMemo, depMemo := Memo{}, Memo{}
	require.True(t, DerivedRelevant(h, "mixed", derivedMemo))
	require.False(t, DependencyRelevant(h, "mixed", depMemo))
	assert.Equal(t, relevant, derivedMemo["mixed"])
	assert.Equal(t, irrelevant, depMemo["mixed"])
}

func TestCycleDoesNotPoisonMemo(t *testing.T) {
	// a <-> b, and a -> cur. Walking from b visits a, whose exit to cur makes
	// both relevant; b must not be cached as irrelevant on the way.
	h := graph([]node{{"a", dep}, {"b", dep}, {"c", dep}, {"cur", cur}},
		[2]string{"b", "a"}, [2]string{"a", "b"}, [2]string{"a", "cur"}, [2]string{"c", "b"})

	memo := Memo{}
	assert.True(t, DependencyRelevant(h, "c", memo))
	assert.True(t, DependencyRelevant(h, "b", memo))
	assert.True(t, DependencyRelevant(h, "a", memo))
}

func TestDiamondIsMemoized(t *testing.T) {
	nodes := []node{{"top", dep}, {"l", dep}, {"r", dep}, {"cur", cur}}
	h := graph(nodes, [2]string{"top", "l"}, [2]string{"top", "r"}, [2]string{"l", "cur"}, [2]string{"r", "cur"})

	memo := Memo{}
	assert.True(t, DependencyRelevant(h, "top", memo))
	assert.Equal(t, relevant, memo["l"])
	assert.Equal(t, relevant, memo["cur"])
}
