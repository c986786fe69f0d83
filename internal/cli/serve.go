package cli

import (
	"fmt"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/matzehuels/termtree/pkg/api"
	"github.com/matzehuels/termtree/pkg/buildinfo"
	"github.com/matzehuels/termtree/pkg/config"
	"github.com/matzehuels/termtree/pkg/observability"
)

func (c *CLI) serveCommand() *cobra.Command {
	var (
		addr string
		sf   sourceFlags
	)
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API",
		Long: `Run the HTTP API.

Routes:
  GET  /healthz
  POST /v1/graph
  POST /v1/layout
  POST /v1/render?format=svg|dot|json

Requests carry the sheet rows inline. Terms not included in the request
body are fetched from the configured sources. The server stops gracefully on
SIGINT or SIGTERM.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := c.loadConfig(&sf)
			if err != nil {
				return err
			}
			if addr != "" {
				cfg.Server.Addr = addr
			}
			runner, cleanup, err := c.newRunner(cmd.Context(), cfg, sf.noCache)
			if err != nil {
				return fmt.Errorf("initialize runner: %w", err)
			}
			defer cleanup()

			logger := log.FromContext(cmd.Context())
			hooks := observability.NewLogHooks(logger)
			observability.SetPipelineHooks(hooks)
			observability.SetCacheHooks(hooks)
			observability.SetSourceHooks(hooks)
			logger.Info("starting server", "version", buildinfo.Version, "cache", cfg.Cache.Backend)
			return api.New(runner, cfg.Server, logger).Run(cmd.Context())
		},
	}
	cmd.Flags().StringVar(&addr, "addr", "", "listen address (default: "+config.DefaultServerAddr+")")
	sf.register(cmd.Flags())
	return cmd
}
