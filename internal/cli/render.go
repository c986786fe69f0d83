package cli

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/matzehuels/termtree/pkg/errors"
	"github.com/matzehuels/termtree/pkg/graph"
	"github.com/matzehuels/termtree/pkg/pipeline"
)

type renderFlags struct {
	output      string
	formats     string
	fromLayout  bool
	title       string
	interactive bool
	embedFont   bool
	scale       float64
}

func (c *CLI) renderCommand() *cobra.Command {
	var (
		rf renderFlags
		sf sourceFlags
		lf layoutFlags
	)
	cmd := &cobra.Command{
		Use:   "render [sheet]",
		Short: "Render the term hierarchy of a sheet",
		Long: `Render the term hierarchy of a sheet.

Formats: svg (default), png, pdf, json (layout), dot. PNG and PDF need
rsvg-convert on PATH. With --from-layout the argument is a layout JSON file
written by 'layout' and no terms are fetched.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			formats := parseFormats(rf.formats)
			for _, f := range formats {
				if err := errors.ValidateFormat(f); err != nil {
					return err
				}
			}
			return c.runRender(cmd.Context(), args[0], formats, &rf, &sf, &lf)
		},
	}
	cmd.Flags().StringVarP(&rf.output, "output", "o", "", "output file (single format) or base path (multiple)")
	cmd.Flags().StringVarP(&rf.formats, "format", "f", "", "output format(s): svg (default), png, pdf, json, dot (comma-separated)")
	cmd.Flags().BoolVar(&rf.fromLayout, "from-layout", false, "argument is a layout JSON file")
	cmd.Flags().StringVar(&rf.title, "title", "", "diagram title")
	cmd.Flags().BoolVar(&rf.interactive, "interactive", false, "highlight neighbours on hover (svg)")
	cmd.Flags().BoolVar(&rf.embedFont, "embed-font", false, "embed the label font (svg)")
	cmd.Flags().Float64Var(&rf.scale, "scale", pipeline.DefaultScale, "png scale factor")
	sf.register(cmd.Flags())
	lf.register(cmd.Flags())
	return cmd
}

func (c *CLI) runRender(ctx context.Context, input string, formats []string, rf *renderFlags, sf *sourceFlags, lf *layoutFlags) error {
	cfg, err := c.loadConfig(sf)
	if err != nil {
		return err
	}
	opts := lf.options(cfg, sf)
	opts.Formats = formats
	opts.Title = rf.title
	opts.Interactive = rf.interactive
	opts.EmbedFont = rf.embedFont
	opts.Scale = rf.scale

	var (
		artifacts map[string][]byte
		cached    bool
		nodes     int
		edges     int
	)
	if rf.fromLayout {
		l, err := graph.ReadLayoutFile(input)
		if err != nil {
			return err
		}
		opts.VizType = l.VizType
		runner := pipeline.NewRunner(nil, nil, nil, c.Logger)
		if artifacts, err = runner.Render(ctx, l, opts); err != nil {
			return err
		}
		nodes, edges = len(l.Nodes), len(l.Edges)
	} else {
		rows, err := readSheet(input)
		if err != nil {
			return err
		}
		runner, cleanup, err := c.newRunner(ctx, cfg, sf.noCache)
		if err != nil {
			return fmt.Errorf("initialize runner: %w", err)
		}
		defer cleanup()

		spinner := newSpinnerWithContext(ctx, c.errOut(), "Rendering "+strings.Join(formats, ", ")+"...")
		spinner.Start()
		res, err := runner.Execute(ctx, pipeline.Input{Rows: rows}, opts)
		if err != nil {
			spinner.StopWithError(c, "Render failed")
			return err
		}
		spinner.Stop()
		logRun(c.Logger, "Rendered diagram", res)
		c.printIssues(res.Issues)
		artifacts, cached = res.Artifacts, res.CacheInfo.SnapshotHit
		nodes, edges = res.Stats.NodeCount, res.Stats.EdgeCount
	}

	paths, err := writeArtifacts(artifacts, formats, basePath(rf.output, input), rf.output)
	if err != nil {
		return err
	}
	c.printSuccess("Rendered %d file(s)", len(paths))
	for _, p := range paths {
		c.printFile(p)
	}
	c.printStats(nodes, edges, cached)
	return nil
}

// writeArtifacts writes each format to base plus its extension and returns
// the paths in format order. A single format is written to exact instead
// when exact is set.
func writeArtifacts(artifacts map[string][]byte, formats []string, base, exact string) ([]string, error) {
	paths := make([]string, 0, len(formats))
	for _, f := range formats {
		path := base + "." + f
		switch {
		case len(formats) == 1 && exact != "":
			path = exact
		case f == pipeline.FormatJSON:
			path = base + ".layout.json"
		}
		if err := os.WriteFile(path, artifacts[f], 0o644); err != nil {
			return paths, fmt.Errorf("write %s: %w", path, err)
		}
		paths = append(paths, path)
	}
	return paths, nil
}
