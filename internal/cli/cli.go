// Package cli implements the termtree command-line interface.
//
// Commands:
//   - build: sheet -> pruned, ranked graph JSON
//   - layout: sheet -> layout JSON
//   - render: sheet or layout JSON -> SVG, PNG, PDF, DOT or JSON
//   - inspect: pick one tree of the forest interactively and render it
//   - serve: run the HTTP API
//   - cache: inspect and clear the term cache
//
// Dependency and derived terms come from --deps/--derived/--snapshot files,
// a --lookup-url term service or a --mongo-uri collection, on top of
// whatever the config file names. Fetched terms are cached; --no-cache
// disables that.
package cli

import (
	"context"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/matzehuels/termtree/pkg/buildinfo"
	"github.com/matzehuels/termtree/pkg/cache"
	"github.com/matzehuels/termtree/pkg/config"
	"github.com/matzehuels/termtree/pkg/core/term"
	"github.com/matzehuels/termtree/pkg/errors"
	"github.com/matzehuels/termtree/pkg/observability"
	"github.com/matzehuels/termtree/pkg/pipeline"
	"github.com/matzehuels/termtree/pkg/source"
)

const appName = "termtree"

// Log levels exported for use in main.go.
const (
	LogDebug = log.DebugLevel
	LogInfo  = log.InfoLevel
)

// CLI holds state shared by all commands.
type CLI struct {
	Logger *log.Logger

	out        io.Writer
	errW       io.Writer
	configPath string
	verbose    bool
}

// New creates a CLI logging to w at level. Command output goes to stdout.
func New(w io.Writer, level log.Level) *CLI {
	return &CLI{Logger: newLogger(w, level), out: os.Stdout, errW: w}
}

// SetOutput redirects command output.
func (c *CLI) SetOutput(w io.Writer) { c.out = w }

func (c *CLI) errOut() io.Writer { return c.errW }

// SetLogLevel updates the logger's level.
func (c *CLI) SetLogLevel(level log.Level) {
	c.Logger.SetLevel(level)
}

// RootCommand creates the root command with every subcommand registered.
func (c *CLI) RootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:          appName,
		Short:        "termtree draws ontology term hierarchies",
		Long:         `termtree turns a curation spreadsheet plus its imported and derived terms into a pruned, ranked term-hierarchy diagram.`,
		Version:      buildinfo.Version,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if c.verbose {
				c.SetLogLevel(LogDebug)
				hooks := observability.NewLogHooks(c.Logger)
				observability.SetPipelineHooks(hooks)
				observability.SetCacheHooks(hooks)
				observability.SetSourceHooks(hooks)
			}
			cmd.SetContext(log.WithContext(cmd.Context(), c.Logger))
			return nil
		},
	}
	root.SetVersionTemplate(buildinfo.Template())
	root.PersistentFlags().BoolVarP(&c.verbose, "verbose", "v", false, "enable debug logging")
	root.PersistentFlags().StringVar(&c.configPath, "config", "", "config file (default: "+config.DefaultPath()+")")

	root.AddCommand(c.buildCommand())
	root.AddCommand(c.layoutCommand())
	root.AddCommand(c.renderCommand())
	root.AddCommand(c.inspectCommand())
	root.AddCommand(c.serveCommand())
	root.AddCommand(c.cacheCommand())
	root.AddCommand(c.completionCommand())
	registerCompletions(root)
	return root
}

// loadConfig reads the config file and applies the source flags on top.
func (c *CLI) loadConfig(sf *sourceFlags) (*config.Config, error) {
	cfg, err := config.Load(c.configPath)
	if err != nil {
		return nil, err
	}
	if sf != nil {
		sf.apply(cfg)
	}
	return cfg, nil
}

// newRunner opens the configured cache and term sources. The returned
// function releases both.
func (c *CLI) newRunner(ctx context.Context, cfg *config.Config, noCache bool) (*pipeline.Runner, func(), error) {
	var store cache.Cache = cache.NewNullCache()
	if !noCache {
		opened, err := cfg.Cache.OpenCache(ctx)
		if err != nil {
			c.Logger.Warn("cache unavailable, continuing without", "backend", cfg.Cache.Backend, "error", err)
		} else {
			store = opened
		}
	}

	keyer := cfg.Cache.Keyer()
	srcs, closeSources, err := cfg.Source.Sources(ctx, store, keyer, cfg.Cache.TTL, c.Logger)
	if err != nil {
		_ = closeSources(ctx)
		_ = store.Close()
		return nil, nil, err
	}
	var src source.TermSource
	if len(srcs) > 0 {
		src = srcs
	}

	runner := pipeline.NewRunner(src, store, keyer, c.Logger)
	cleanup := func() {
		if err := closeSources(context.Background()); err != nil {
			c.Logger.Debug("close sources", "error", err)
		}
		_ = runner.Close()
	}
	return runner, cleanup, nil
}

// readSheet loads the rows of a CSV, TSV or JSON sheet.
func readSheet(path string) ([]term.Row, error) {
	if err := errors.ValidateSheetPath(path); err != nil {
		return nil, err
	}
	return source.ReadRowsFile(path)
}

// parseFormats splits a comma-separated format list.
func parseFormats(s string) []string {
	if s == "" {
		return []string{pipeline.FormatSVG}
	}
	var out []string
	for _, f := range strings.Split(s, ",") {
		if f = strings.ToLower(strings.TrimSpace(f)); f != "" {
			out = append(out, f)
		}
	}
	return out
}

// basePath derives the output stem from -o or the input file. Known output
// and intermediate suffixes are stripped.
func basePath(output, input string) string {
	p := output
	if p == "" {
		p = input
	}
	for _, suffix := range []string{".graph.json", ".layout.json"} {
		if strings.HasSuffix(p, suffix) {
			return strings.TrimSuffix(p, suffix)
		}
	}
	return strings.TrimSuffix(p, filepath.Ext(p))
}
