package cli

import (
	"context"
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/matzehuels/termtree/pkg/core/digraph"
	"github.com/matzehuels/termtree/pkg/core/render/tree/layout"
	"github.com/matzehuels/termtree/pkg/errors"
	"github.com/matzehuels/termtree/pkg/pipeline"
)

type inspectFlags struct {
	output  string
	formats string
	tree    string
	list    bool
}

func (c *CLI) inspectCommand() *cobra.Command {
	var (
		inf inspectFlags
		sf  sourceFlags
		lf  layoutFlags
	)
	cmd := &cobra.Command{
		Use:   "inspect [sheet]",
		Short: "Pick one tree of the forest and render it alone",
		Long: `Build the graph of a sheet and list the trees of its forest.

Pick a tree interactively, or name its root with --tree (id or label), to
render only that tree. Output goes to <sheet>.<root>.<format>.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runInspect(cmd.Context(), args[0], &inf, &sf, &lf)
		},
	}
	cmd.Flags().StringVarP(&inf.output, "output", "o", "", "output base path (default: <sheet>.<root>)")
	cmd.Flags().StringVarP(&inf.formats, "format", "f", "", "output format(s): svg (default), png, pdf, json, dot")
	cmd.Flags().StringVar(&inf.tree, "tree", "", "root id or label of the tree to render")
	cmd.Flags().BoolVar(&inf.list, "list", false, "list the trees and exit")
	sf.register(cmd.Flags())
	lf.register(cmd.Flags())
	return cmd
}

func (c *CLI) runInspect(ctx context.Context, input string, inf *inspectFlags, sf *sourceFlags, lf *layoutFlags) error {
	formats := parseFormats(inf.formats)
	for _, f := range formats {
		if err := errors.ValidateFormat(f); err != nil {
			return err
		}
	}
	rows, err := readSheet(input)
	if err != nil {
		return err
	}
	cfg, err := c.loadConfig(sf)
	if err != nil {
		return err
	}
	runner, cleanup, err := c.newRunner(ctx, cfg, sf.noCache)
	if err != nil {
		return fmt.Errorf("initialize runner: %w", err)
	}
	defer cleanup()

	opts := lf.options(cfg, sf)
	opts.Formats = formats
	res, err := runner.Build(ctx, pipeline.Input{Rows: rows}, opts)
	if err != nil {
		return err
	}
	items, members := forestItems(res.Graph)
	if len(items) == 0 {
		c.printInfo("Graph is empty")
		return nil
	}

	if inf.list {
		c.printInfo("%d tree(s)", len(items))
		for _, it := range items {
			c.printKeyValue(it.Root, fmt.Sprintf("%s (%d terms, depth %d)", it.Label, it.Nodes, it.Depth))
		}
		return nil
	}

	var selected *treeItem
	if inf.tree != "" {
		if selected = findTree(items, inf.tree); selected == nil {
			return errors.New(errors.ErrCodeNotFound, "no tree rooted at %q", inf.tree)
		}
	} else {
		final, err := tea.NewProgram(NewTreeListModel(items), tea.WithContext(ctx), tea.WithOutput(c.errOut())).Run()
		if err != nil {
			return fmt.Errorf("tree picker: %w", err)
		}
		if selected = final.(TreeListModel).Selected; selected == nil {
			return nil
		}
	}

	sub := subtree(res.Graph, members[selected.Root])
	l, err := runner.Layout(ctx, sub, opts)
	if err != nil {
		return err
	}
	artifacts, err := runner.Render(ctx, l, opts)
	if err != nil {
		return err
	}

	base := basePath(inf.output, input)
	if inf.output == "" {
		base += "." + digraph.SanitizeID(selected.Root)
	}
	paths, err := writeArtifacts(artifacts, formats, base, "")
	if err != nil {
		return err
	}
	c.printSuccess("Rendered tree %s", styleHighlight.Render(selected.Label))
	for _, p := range paths {
		c.printFile(p)
	}
	c.printStats(sub.NodeCount(), sub.EdgeCount(), res.CacheInfo.SnapshotHit)
	return nil
}

// forestItems lists the spanning trees of g's hierarchy in drawing order,
// with the node ids claimed by each root.
func forestItems(g *digraph.Graph) ([]treeItem, map[string]digraph.IDSet) {
	forest := layout.Decompose(g.FilterEdges(digraph.Edge.IsHierarchy))
	items := make([]treeItem, 0, len(forest))
	members := make(map[string]digraph.IDSet, len(forest))
	for _, t := range forest {
		set := make(digraph.IDSet, len(t.Order))
		depth := 0
		for _, id := range t.Order {
			set[id] = struct{}{}
			if n, ok := g.Node(id); ok && n.VisualDepth.Finite() {
				depth = max(depth, int(n.VisualDepth))
			}
		}
		label := t.Root
		if n, ok := g.Node(t.Root); ok && n.Label != "" {
			label = n.Label
		}
		items = append(items, treeItem{Root: t.Root, Label: label, Nodes: len(t.Order), Depth: depth})
		members[t.Root] = set
	}
	return items, members
}

// findTree matches key against root ids first, then case-insensitively
// against labels.
func findTree(items []treeItem, key string) *treeItem {
	for i := range items {
		if items[i].Root == key || items[i].Root == digraph.SanitizeID(key) {
			return &items[i]
		}
	}
	for i := range items {
		if strings.EqualFold(items[i].Label, key) {
			return &items[i]
		}
	}
	return nil
}

// subtree copies g restricted to ids. Relation edges between members are
// kept.
func subtree(g *digraph.Graph, ids digraph.IDSet) *digraph.Graph {
	sub := g.Clone()
	sub.Retain(func(n *digraph.Node) bool { return ids.Has(n.ID) })
	return sub
}
