package cli

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/matzehuels/dirmap/internal/config"
	"github.com/matzehuels/dirmap/pkg/cache"
)

// cacheCommand creates the cache management command.
func (c *CLI) cacheCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "cache",
		Short: "Manage the scan and artifact cache",
	}

	cmd.AddCommand(c.cacheClearCommand())
	cmd.AddCommand(c.cachePathCommand())

	return cmd
}

// cacheClearCommand creates the "cache clear" subcommand.
func (c *CLI) cacheClearCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "clear",
		Short: "Remove all cached scans and rendered artifacts",
		RunE: func(cmd *cobra.Command, args []string) error {
			count, where, err := c.clearCache(cmd.Context())
			if err != nil {
				return err
			}
			if count == 0 {
				printInfo("Cache is empty")
				return nil
			}
			printSuccess("Cleared %d cached entries", count)
			printDetail("Location: %s", where)
			return nil
		},
	}
}

// clearCache empties the configured backend and reports how many entries
// were removed and where they lived.
func (c *CLI) clearCache(ctx context.Context) (int, string, error) {
	switch c.Config.Cache.Backend {
	case config.BackendNone:
		return 0, "", nil
	case config.BackendRedis:
		rc, err := cache.NewRedisCache(ctx, c.Config.Cache.RedisURL)
		if err != nil {
			return 0, "", fmt.Errorf("connect to redis: %w", err)
		}
		defer rc.Close()
		n, err := rc.Clear(ctx)
		return n, c.Config.Cache.RedisURL, err
	default:
		dir := c.Config.Cache.Dir
		if _, err := os.Stat(dir); os.IsNotExist(err) {
			return 0, dir, nil
		}
		fc, err := cache.NewFileCache(dir)
		if err != nil {
			return 0, "", err
		}
		n, err := fc.Clear()
		return n, dir, err
	}
}

// cachePathCommand creates the "cache path" subcommand.
func (c *CLI) cachePathCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "path",
		Short: "Print the cache location",
		RunE: func(cmd *cobra.Command, args []string) error {
			switch c.Config.Cache.Backend {
			case config.BackendRedis:
				fmt.Println(c.Config.Cache.RedisURL)
			case config.BackendNone:
				printInfo("Caching is disabled")
			default:
				fmt.Println(c.Config.Cache.Dir)
			}
			return nil
		},
	}
}
