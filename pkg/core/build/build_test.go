package build

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/matzehuels/termtree/pkg/core/digraph"
	"github.com/matzehuels/termtree/pkg/core/palette"
	"github.com/matzehuels/termtree/pkg/core/term"
)

func edgesOfType(g *digraph.Graph, typ string) []digraph.Edge {
	var out []digraph.Edge
	for _, e := range g.Edges() {
		if e.Type == typ {
			out = append(out, e)
		}
	}
	return out
}

func TestFromSources_AlphaBeta(t *testing.T) {
	rows := []term.Row{
		{"ID": "A:1", "Label": "Alpha", "Parent": ""},
		{"ID": "A:2", "Label": "Beta", "Parent": "Alpha"},
	}
	current, issues := term.ParseRows(rows)
	require.Empty(t, issues)

	res := FromSources(current, nil, nil, Options{})

	g := res.Graph
	assert.Equal(t, 2, g.NodeCount())
	require.Equal(t, 1, g.EdgeCount())
	assert.Equal(t, digraph.Edge{From: "A_1", To: "A_2", Type: digraph.SubclassOf}, g.Edges()[0])
	assert.Empty(t, res.Issues)

	alpha, ok := g.Node("A_1")
	require.True(t, ok)
	assert.Equal(t, "Alpha", alpha.Label)
	assert.Equal(t, term.SourceCurrent, alpha.Source)
	assert.Equal(t, "ose-curation-status-external", alpha.Class)
	assert.Equal(t, UnknownOrigin, alpha.Origin)
	assert.Equal(t, digraph.DepthUnset, alpha.VisualDepth)
}

func TestFromSources_RelationColumn(t *testing.T) {
	rows := []term.Row{
		{"ID": "A:1", "Label": "Alpha", "Parent": "", "REL 'part of' other stuff": "B:1; B:2"},
		{"ID": "B:1", "Label": "B:1", "Parent": ""},
		{"ID": "B:2", "Label": "B:2", "Parent": ""},
	}
	current, _ := term.ParseRows(rows)

	res := FromSources(current, nil, nil, Options{})

	rel := edgesOfType(res.Graph, "part of")
	require.Len(t, rel, 2)
	want := palette.Default().Color("part of")
	for i, target := range []string{"B_1", "B_2"} {
		assert.Equal(t, "A_1", rel[i].From)
		assert.Equal(t, target, rel[i].To)
		assert.Equal(t, "part of", rel[i].Label)
		assert.Equal(t, want, rel[i].Color)
	}
}

func TestAssemble_DanglingParentKept(t *testing.T) {
	deps := []term.Term{{
		ID: "D:1", Label: "dep", Origin: "BFO",
		Parents: []term.ParentRef{{Label: "entity", ID: "BFO:0000001"}},
	}}

	res := FromSources(nil, deps, nil, Options{})

	edges := res.Graph.Edges()
	require.Len(t, edges, 1)
	assert.Equal(t, "BFO_0000001", edges[0].From)
	assert.False(t, res.Graph.Has("BFO_0000001"))
	require.Len(t, res.Issues, 1)
	assert.Equal(t, term.IssueDanglingParent, res.Issues[0].Kind)

	n, _ := res.Graph.Node("D_1")
	assert.Equal(t, "BFO", n.Origin)
}

func TestAssemble_UnresolvedRelationSkipped(t *testing.T) {
	current := []term.Term{{
		ID: "A:1", Label: "Alpha",
		Relations: []term.RelationRef{{RelationLabel: "part of", TargetLabel: "missing"}},
	}}

	res := FromSources(current, nil, nil, Options{})

	assert.Zero(t, res.Graph.EdgeCount())
	require.Len(t, res.Issues, 1)
	assert.Equal(t, term.IssueUnresolvedRelation, res.Issues[0].Kind)
	assert.Equal(t, "missing", res.Issues[0].Reference)
}

func TestAssemble_UnresolvedParentDropped(t *testing.T) {
	current := []term.Term{{ID: "A:1", Label: "Alpha", Parents: []term.ParentRef{{Label: "Nowhere"}}}}

	res := FromSources(current, nil, nil, Options{})

	assert.Equal(t, 1, res.Graph.NodeCount())
	assert.Zero(t, res.Graph.EdgeCount())
	require.Len(t, res.Issues, 1)
	assert.Equal(t, term.IssueUnresolvedParent, res.Issues[0].Kind)
}

func TestAssemble_CustomPalette(t *testing.T) {
	p := palette.New(map[string]string{"touches": "#000001"}, "#ffffff")
	current := []term.Term{
		{ID: "A:1", Label: "a", Relations: []term.RelationRef{
			{RelationLabel: "touches", TargetLabel: "b"},
			{RelationLabel: "part of", TargetLabel: "b"},
		}},
		{ID: "A:2", Label: "b"},
	}

	res := FromSources(current, nil, nil, Options{Palette: &p})

	assert.Equal(t, "#000001", edgesOfType(res.Graph, "touches")[0].Color)
	assert.Equal(t, "#ffffff", edgesOfType(res.Graph, "part of")[0].Color)
	require.Len(t, res.Issues, 1)
	assert.Equal(t, term.IssueUnmappedRelation, res.Issues[0].Kind)
	assert.Equal(t, "part of", res.Issues[0].Reference)
}

func TestSlug(t *testing.T) {
	tests := []struct{ in, want string }{
		{"External", "external"},
		{"Ready for Release", "ready_for_release"},
		{"  needs--review! ", "needs_review"},
		{"Metadata Complete", "metadata_complete"},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, Slug(tt.in))
		})
	}
}
