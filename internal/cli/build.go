package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/matzehuels/termtree/pkg/core/term"
	"github.com/matzehuels/termtree/pkg/graph"
	"github.com/matzehuels/termtree/pkg/pipeline"
)

func (c *CLI) buildCommand() *cobra.Command {
	var (
		output  string
		sf      sourceFlags
		noPrune bool
	)
	cmd := &cobra.Command{
		Use:   "build [sheet]",
		Short: "Build the pruned, ranked term graph of a sheet",
		Long: `Build the term graph of a curation sheet.

Rows are merged with dependency and derived terms, parents and relations are
resolved, terms unrelated to the sheet are pruned and every node gets its
visual depth. The result is written as graph JSON (default: <sheet>.graph.json).`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runBuild(cmd.Context(), args[0], output, &sf, noPrune)
		},
	}
	cmd.Flags().StringVarP(&output, "output", "o", "", "output file (default: <sheet>.graph.json)")
	cmd.Flags().BoolVar(&noPrune, "no-prune", false, "keep external terms unrelated to the sheet")
	sf.register(cmd.Flags())
	return cmd
}

func (c *CLI) runBuild(ctx context.Context, input, output string, sf *sourceFlags, noPrune bool) error {
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

	pal := cfg.Palette.Palette()
	res, err := runner.Build(ctx, pipeline.Input{Rows: rows}, pipeline.Options{
		NoPrune: noPrune,
		Refresh: sf.refresh,
		Palette: &pal,
	})
	if err != nil {
		return err
	}
	logRun(c.Logger, "Built graph", res)

	if output == "" {
		output = basePath("", input) + ".graph.json"
	}
	if err := graph.WriteGraphFile(res.Graph, output); err != nil {
		return fmt.Errorf("write %s: %w", output, err)
	}

	c.printSuccess("Graph built")
	c.printFile(output)
	c.printStats(res.Stats.NodeCount, res.Stats.EdgeCount, res.CacheInfo.SnapshotHit)
	c.printIssues(res.Issues)
	c.printNewline()
	c.printNextStep("Render", appName+" render "+input)
	return nil
}

func (c *CLI) printIssues(issues []term.Issue) {
	if len(issues) == 0 {
		return
	}
	c.printWarning("%d issue(s) in the input", len(issues))
	for i, is := range issues {
		if i == maxListedIssues {
			c.printDetail("... and %d more", len(issues)-maxListedIssues)
			break
		}
		c.printDetail("%s", is)
	}
}

const maxListedIssues = 10
