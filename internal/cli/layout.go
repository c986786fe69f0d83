package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/matzehuels/termtree/pkg/graph"
	"github.com/matzehuels/termtree/pkg/pipeline"
)

func (c *CLI) layoutCommand() *cobra.Command {
	var (
		output string
		sf     sourceFlags
		lf     layoutFlags
	)
	cmd := &cobra.Command{
		Use:   "layout [sheet]",
		Short: "Compute the diagram layout of a sheet",
		Long: `Compute the diagram layout of a sheet.

The output is a layout JSON file (same format as 'render -f json') holding the
positioned boxes and curves of every tree, or the ranked DOT source for
nodelink diagrams. Render it later with 'render --from-layout'.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runLayout(cmd.Context(), args[0], output, &sf, &lf)
		},
	}
	cmd.Flags().StringVarP(&output, "output", "o", "", "output file (default: <sheet>.layout.json)")
	sf.register(cmd.Flags())
	lf.register(cmd.Flags())
	return cmd
}

func (c *CLI) runLayout(ctx context.Context, input, output string, sf *sourceFlags, lf *layoutFlags) error {
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
	opts.Formats = []string{pipeline.FormatJSON}

	spinner := newSpinnerWithContext(ctx, c.errOut(), fmt.Sprintf("Computing %s layout...", opts.VizType))
	spinner.Start()
	res, err := runner.Execute(ctx, pipeline.Input{Rows: rows}, opts)
	if err != nil {
		spinner.StopWithError(c, "Layout failed")
		return err
	}
	spinner.Stop()
	logRun(c.Logger, "Computed layout", res)

	if output == "" {
		output = basePath("", input) + ".layout.json"
	}
	if err := graph.WriteLayoutFile(res.Layout, output); err != nil {
		return fmt.Errorf("write %s: %w", output, err)
	}

	c.printSuccess("Layout complete")
	c.printFile(output)
	c.printStats(res.Stats.NodeCount, res.Stats.EdgeCount, res.CacheInfo.SnapshotHit)
	c.printIssues(res.Issues)
	c.printNewline()
	c.printNextStep("Render", appName+" render --from-layout "+output)
	return nil
}
