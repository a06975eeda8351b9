// Package config loads dirmap's user configuration.
//
// The file lives at $XDG_CONFIG_HOME/dirmap/config.toml (falling back to
// ~/.config/dirmap/config.toml). Files ending in .yaml or .yml are read as
// YAML instead. A missing file yields [Default].
//
// Example:
//
//	log_level = "debug"
//
//	[scan]
//	exclude = [".git/", "node_modules/", "*.tmp"]
//
//	[render]
//	width = 1920
//	height = 1080
//	formats = ["svg", "png"]
//	popups = true
//
//	[cache]
//	backend = "redis"
//	redis_url = "redis://localhost:6379/0"
//	ttl = "30m"
//
//	[serve]
//	addr = ":8080"
package config

import (
	"bytes"
	"errors"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"gopkg.in/yaml.v3"

	derrors "github.com/matzehuels/dirmap/pkg/errors"
)

// Cache backends.
const (
	BackendFile  = "file"
	BackendRedis = "redis"
	BackendNone  = "none"
)

// Config is the full user configuration.
type Config struct {
	LogLevel string       `toml:"log_level" yaml:"log_level"`
	Scan     ScanConfig   `toml:"scan" yaml:"scan"`
	Render   RenderConfig `toml:"render" yaml:"render"`
	Cache    CacheConfig  `toml:"cache" yaml:"cache"`
	Serve    ServeConfig  `toml:"serve" yaml:"serve"`
}

// ScanConfig holds defaults for directory scans.
type ScanConfig struct {
	Exclude []string `toml:"exclude" yaml:"exclude"`
}

// RenderConfig holds defaults for rendered output.
type RenderConfig struct {
	Width   int      `toml:"width" yaml:"width"`
	Height  int      `toml:"height" yaml:"height"`
	Formats []string `toml:"formats" yaml:"formats"`
	Popups  bool     `toml:"popups" yaml:"popups"`
}

// CacheConfig selects and configures the cache backend.
type CacheConfig struct {
	Backend  string   `toml:"backend" yaml:"backend"`
	Dir      string   `toml:"dir" yaml:"dir"`
	RedisURL string   `toml:"redis_url" yaml:"redis_url"`
	TTL      Duration `toml:"ttl" yaml:"ttl"`
}

// ServeConfig configures the HTTP server.
type ServeConfig struct {
	Addr string `toml:"addr" yaml:"addr"`
}

// Default returns the configuration used when no file exists.
func Default() *Config {
	home, _ := os.UserHomeDir()
	return &Config{
		LogLevel: "info",
		Render: RenderConfig{
			Width:   1440,
			Height:  900,
			Formats: []string{"svg"},
		},
		Cache: CacheConfig{
			Backend: BackendFile,
			Dir:     filepath.Join(xdgCacheHome(home), "dirmap"),
			TTL:     Duration{time.Hour},
		},
		Serve: ServeConfig{
			Addr: "127.0.0.1:8080",
		},
	}
}

// Load reads configuration from the standard config path.
// Search order:
//  1. $XDG_CONFIG_HOME/dirmap/config.{toml,yaml,yml}
//  2. ~/.config/dirmap/config.{toml,yaml,yml}
//
// If no file exists, Load returns [Default] with environment overrides applied.
func Load() (*Config, error) {
	for _, p := range SearchPaths() {
		if _, err := os.Stat(p); err == nil {
			return LoadFile(p)
		}
	}
	cfg := Default()
	applyEnvOverrides(cfg)
	return cfg, cfg.Validate()
}

// LoadFile reads configuration from a specific file. The format follows the
// extension: .yaml and .yml are YAML, everything else is TOML.
func LoadFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			cfg := Default()
			applyEnvOverrides(cfg)
			return cfg, cfg.Validate()
		}
		return nil, derrors.WrapFS(err, "read config %s", path)
	}

	cfg := Default()
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		dec := yaml.NewDecoder(bytes.NewReader(data))
		dec.KnownFields(true)
		if err := dec.Decode(cfg); err != nil && !errors.Is(err, io.EOF) {
			return nil, derrors.Wrap(derrors.ErrCodeInvalidInput, err, "parse %s", path)
		}
	default:
		md, err := toml.Decode(string(data), cfg)
		if err != nil {
			return nil, derrors.Wrap(derrors.ErrCodeInvalidInput, err, "parse %s", path)
		}
		if undecoded := md.Undecoded(); len(undecoded) > 0 {
			return nil, derrors.New(derrors.ErrCodeInvalidInput, "unknown config key %q in %s", undecoded[0].String(), path)
		}
	}

	applyEnvOverrides(cfg)
	return cfg, cfg.Validate()
}

// Validate checks field values that the decoders cannot.
func (c *Config) Validate() error {
	switch c.Cache.Backend {
	case BackendFile, BackendNone:
	case BackendRedis:
		if c.Cache.RedisURL == "" {
			return derrors.New(derrors.ErrCodeInvalidInput, "cache backend %q needs redis_url", BackendRedis)
		}
	default:
		return derrors.New(derrors.ErrCodeInvalidInput, "unknown cache backend %q (must be file, redis or none)", c.Cache.Backend)
	}
	if err := derrors.ValidateDimensions(c.Render.Width, c.Render.Height); err != nil {
		return err
	}
	for _, p := range c.Scan.Exclude {
		if err := derrors.ValidatePattern(p); err != nil {
			return err
		}
	}
	if _, err := ParseLevel(c.LogLevel); err != nil {
		return err
	}
	return nil
}

// applyEnvOverrides lets the environment win over the file.
func applyEnvOverrides(cfg *Config) {
	if v := os.Getenv("DIRMAP_CACHE"); v != "" {
		if v == BackendFile || v == BackendRedis || v == BackendNone {
			cfg.Cache.Backend = v
		} else {
			// Anything else names a cache directory.
			cfg.Cache.Backend = BackendFile
			cfg.Cache.Dir = v
		}
	}
	if v := os.Getenv("DIRMAP_REDIS_URL"); v != "" {
		cfg.Cache.RedisURL = v
		if os.Getenv("DIRMAP_CACHE") == "" {
			cfg.Cache.Backend = BackendRedis
		}
	}
	if v := os.Getenv("DIRMAP_LOG_LEVEL"); v != "" {
		cfg.LogLevel = v
	}
}

// SearchPaths returns the ordered list of config file paths to try.
func SearchPaths() []string {
	home, _ := os.UserHomeDir()
	dirs := []string{filepath.Join(xdgConfigHome(home), "dirmap")}

	// If XDG_CONFIG_HOME was explicitly set, also try the fallback default.
	if fallback := filepath.Join(home, ".config", "dirmap"); fallback != dirs[0] {
		dirs = append(dirs, fallback)
	}

	var paths []string
	for _, d := range dirs {
		for _, name := range []string{"config.toml", "config.yaml", "config.yml"} {
			paths = append(paths, filepath.Join(d, name))
		}
	}
	return paths
}

// xdgConfigHome returns XDG_CONFIG_HOME or ~/.config as fallback.
func xdgConfigHome(home string) string {
	if v := os.Getenv("XDG_CONFIG_HOME"); v != "" {
		return v
	}
	return filepath.Join(home, ".config")
}

// xdgCacheHome returns XDG_CACHE_HOME or ~/.cache as fallback.
func xdgCacheHome(home string) string {
	if v := os.Getenv("XDG_CACHE_HOME"); v != "" {
		return v
	}
	return filepath.Join(home, ".cache")
}
