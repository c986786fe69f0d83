package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/matzehuels/termtree/pkg/cache"
	"github.com/matzehuels/termtree/pkg/config"
)

// cacheCommand creates the cache management command.
func (c *CLI) cacheCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "cache",
		Short: "Manage the term cache",
	}
	cmd.AddCommand(c.cacheClearCommand())
	cmd.AddCommand(c.cachePathCommand())
	return cmd
}

func (c *CLI) cacheClearCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "clear",
		Short: "Drop every cached lookup and snapshot",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := c.loadConfig(nil)
			if err != nil {
				return err
			}
			if cfg.Cache.Backend == config.BackendNone {
				c.printInfo("Cache is disabled")
				return nil
			}
			store, err := cfg.Cache.OpenCache(cmd.Context())
			if err != nil {
				return fmt.Errorf("open cache: %w", err)
			}
			defer store.Close()

			clearer, ok := store.(cache.Clearer)
			if !ok {
				return fmt.Errorf("cache backend %q cannot be cleared", cfg.Cache.Backend)
			}
			if err := clearer.Clear(cmd.Context()); err != nil {
				return fmt.Errorf("clear cache: %w", err)
			}
			c.printSuccess("Cleared %s cache", cfg.Cache.Backend)
			if fc, ok := store.(*cache.FileCache); ok {
				c.printDetail("Directory: %s", fc.Dir())
			}
			return nil
		},
	}
}

func (c *CLI) cachePathCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "path",
		Short: "Print the cache directory path",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := c.loadConfig(nil)
			if err != nil {
				return err
			}
			switch cfg.Cache.Backend {
			case config.BackendFile:
				fmt.Fprintln(c.out, cfg.Cache.Dir)
			case config.BackendRedis:
				fmt.Fprintf(c.out, "redis://%s/%d\n", cfg.Cache.Redis.Addr, cfg.Cache.Redis.DB)
			default:
				c.printInfo("Cache backend %q has no location", cfg.Cache.Backend)
			}
			return nil
		},
	}
}
