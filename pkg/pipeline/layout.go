package pipeline

import (
	"context"

	"github.com/matzehuels/termtree/pkg/core/digraph"
	"github.com/matzehuels/termtree/pkg/core/render/nodelink"
	"github.com/matzehuels/termtree/pkg/core/render/tree/layout"
	"github.com/matzehuels/termtree/pkg/core/render/tree/sink"
	"github.com/matzehuels/termtree/pkg/graph"
	"github.com/matzehuels/termtree/pkg/observability"
)

// Layout computes the layout of a built graph: the positioned forest for
// tree diagrams or the ranked DOT source for nodelink diagrams.
func (r *Runner) Layout(ctx context.Context, g *digraph.Graph, opts Options) (graph.Layout, error) {
	if err := r.prepare(&opts); err != nil {
		return graph.Layout{}, err
	}

	var out graph.Layout
	err := stage(ctx, observability.StageLayout, func() (int, error) {
		if opts.IsNodelink() {
			out = graph.FromDOT(nodelink.ToDOT(g, dotOptions(opts)), g)
			return g.NodeCount(), nil
		}
		tl := layout.Build(g, opts.Measurer, opts.Layout)
		out = graph.FromTree(tl, g)
		return len(tl.Order), nil
	})
	if err != nil {
		return graph.Layout{}, err
	}

	if out.Skipped > 0 {
		opts.Logger.Debug("skipped edges without both boxes", "count", out.Skipped)
	}
	return out, nil
}

func dotOptions(opts Options) nodelink.Options {
	return nodelink.Options{
		Fills:          sink.DefaultStatusFills,
		RelationLabels: opts.RelationLabels,
		Detailed:       opts.Detailed,
	}
}
