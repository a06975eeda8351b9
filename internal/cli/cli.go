// Package cli implements the dirmap command-line interface.
//
// dirmap scans a directory (or imports a tree exported earlier as JSON) and
// draws it as a treemap: every file is a rectangle whose area is proportional
// to its size, nested inside the rectangles of its parent directories.
//
// # Commands
//
//   - scan: Scan a directory, summarize it and optionally export the tree
//   - render: Render a treemap as SVG, PNG, PDF or JSON
//   - resolve: Print the node under a point of the treemap
//   - view: Explore a treemap interactively in the terminal
//   - serve: Serve an interactive treemap over HTTP
//   - cache: Inspect or clear the scan and artifact cache
//
// # Logging
//
// All commands support --verbose (-v) for debug-level logging. The logger is
// also attached to the command context (see loggerFromContext).
package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/matzehuels/dirmap/internal/config"
	"github.com/matzehuels/dirmap/pkg/buildinfo"
	"github.com/matzehuels/dirmap/pkg/cache"
	"github.com/matzehuels/dirmap/pkg/observability"
	"github.com/matzehuels/dirmap/pkg/pipeline"
)

// =============================================================================
// Constants
// =============================================================================

const (
	// appName is the application name used for directories and display.
	appName = "dirmap"

	// defaultTop is the number of largest files listed by scan.
	defaultTop = 10
)

// Log levels exported for use in main.go.
const (
	LogDebug = log.DebugLevel
	LogInfo  = log.InfoLevel
)

// =============================================================================
// CLI - Central CLI State
// =============================================================================

// CLI holds shared state for all commands.
type CLI struct {
	Logger *log.Logger
	Config *config.Config
}

// New creates a new CLI instance with a default logger and configuration.
func New(w io.Writer, level log.Level) *CLI {
	return &CLI{
		Logger: newLogger(w, level),
		Config: config.Default(),
	}
}

// SetLogLevel updates the logger's level.
func (c *CLI) SetLogLevel(level log.Level) {
	c.Logger.SetLevel(level)
}

// LoadConfig reads the user configuration file and applies its log level.
// With verbose set, debug logging wins over the configured level and the
// observability hooks are routed to the logger.
func (c *CLI) LoadConfig(path string, verbose bool) error {
	var (
		cfg *config.Config
		err error
	)
	if path != "" {
		cfg, err = config.LoadFile(path)
	} else {
		cfg, err = config.Load()
	}
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	c.Config = cfg

	level, _ := config.ParseLevel(cfg.LogLevel)
	if verbose {
		level = LogDebug
		hooks := observability.NewLogHooks(c.Logger)
		observability.SetPipelineHooks(hooks)
		observability.SetCacheHooks(hooks)
		observability.SetHTTPHooks(hooks)
	}
	c.SetLogLevel(level)
	return nil
}

// RootCommand creates the root cobra command with all subcommands registered.
func (c *CLI) RootCommand() *cobra.Command {
	var (
		verbose    bool
		configPath string
	)

	root := &cobra.Command{
		Use:           appName,
		Short:         "dirmap draws disk usage as a treemap",
		Long:          `dirmap scans a directory and draws it as a treemap: every file is a rectangle whose area is proportional to its size, nested inside its directories.`,
		Version:       buildinfo.Version,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if err := c.LoadConfig(configPath, verbose); err != nil {
				return err
			}
			ctx := cmd.Context()
			if ctx == nil {
				ctx = context.Background()
			}
			cmd.SetContext(withLogger(ctx, c.Logger))
			return nil
		},
	}

	root.SetVersionTemplate(buildinfo.Template())
	root.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable verbose logging")
	root.PersistentFlags().StringVar(&configPath, "config", "", "config file (default $XDG_CONFIG_HOME/dirmap/config.toml)")

	// Register all subcommands
	root.AddCommand(c.scanCommand())
	root.AddCommand(c.renderCommand())
	root.AddCommand(c.resolveCommand())
	root.AddCommand(c.viewCommand())
	root.AddCommand(c.serveCommand())
	root.AddCommand(c.cacheCommand())
	root.AddCommand(c.completionCommand())

	return root
}

// =============================================================================
// Runner Factory
// =============================================================================

// newRunner creates a pipeline runner for CLI use.
func (c *CLI) newRunner(ctx context.Context, noCache bool) (*pipeline.Runner, error) {
	cc, err := c.newCache(ctx, noCache)
	if err != nil {
		return nil, err
	}
	runner := pipeline.NewRunner(cc, nil, c.Logger)
	runner.ScanTTL = c.Config.Cache.TTL.Duration
	return runner, nil
}

// newCache builds the configured cache backend. A file cache that cannot be
// created degrades to no caching; an unreachable Redis is an error.
func (c *CLI) newCache(ctx context.Context, noCache bool) (cache.Cache, error) {
	if noCache {
		return cache.NewNullCache(), nil
	}
	switch c.Config.Cache.Backend {
	case config.BackendNone:
		return cache.NewNullCache(), nil
	case config.BackendRedis:
		rc, err := cache.NewRedisCache(ctx, c.Config.Cache.RedisURL)
		if err != nil {
			return nil, fmt.Errorf("connect to redis: %w", err)
		}
		return rc, nil
	default:
		fc, err := cache.NewFileCache(c.Config.Cache.Dir)
		if err != nil {
			c.Logger.Warn("caching disabled", "dir", c.Config.Cache.Dir, "error", err)
			return cache.NewNullCache(), nil
		}
		return fc, nil
	}
}

// =============================================================================
// Options Helpers
// =============================================================================

// inputFlags are the flags shared by every command that loads a tree.
type inputFlags struct {
	exclude []string
	noCache bool
	refresh bool
}

func (f *inputFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringSliceVarP(&f.exclude, "exclude", "x", nil, "exclusion pattern (repeatable; 'dir/' matches directories)")
	cmd.Flags().BoolVar(&f.noCache, "no-cache", false, "disable caching")
	cmd.Flags().BoolVar(&f.refresh, "refresh", false, "rescan even if a cached scan exists")
}

// baseOptions builds pipeline options for input, which is either a directory
// to scan or a .json tree to import. Configured exclusions come first.
func (c *CLI) baseOptions(input string, f inputFlags) pipeline.Options {
	opts := pipeline.Options{
		Width:   c.Config.Render.Width,
		Height:  c.Config.Render.Height,
		Formats: c.Config.Render.Formats,
		Popups:  c.Config.Render.Popups,
		Refresh: f.refresh,
		Logger:  c.Logger,
	}
	if isTreeFile(input) {
		opts.TreeFile = input
	} else {
		opts.Path = input
		opts.Exclude = append(append([]string(nil), c.Config.Scan.Exclude...), f.exclude...)
	}
	return opts
}

// isTreeFile reports whether input names an exported JSON tree rather than a
// directory to scan.
func isTreeFile(input string) bool {
	if !strings.EqualFold(filepath.Ext(input), ".json") {
		return false
	}
	info, err := os.Stat(input)
	return err != nil || !info.IsDir()
}

// parseFormats parses a comma-separated format string into a slice.
func parseFormats(s string) []string {
	if s == "" {
		return nil
	}
	var formats []string
	for _, f := range strings.Split(s, ",") {
		if f = strings.TrimSpace(f); f != "" {
			formats = append(formats, f)
		}
	}
	return formats
}
