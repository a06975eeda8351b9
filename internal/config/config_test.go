package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/charmbracelet/log"

	derrors "github.com/matzehuels/dirmap/pkg/errors"
)

// isolate points the XDG directories at a temp dir and clears overrides.
func isolate(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	t.Setenv("HOME", dir)
	t.Setenv("XDG_CONFIG_HOME", filepath.Join(dir, "config"))
	t.Setenv("XDG_CACHE_HOME", filepath.Join(dir, "cache"))
	t.Setenv("DIRMAP_CACHE", "")
	t.Setenv("DIRMAP_REDIS_URL", "")
	t.Setenv("DIRMAP_LOG_LEVEL", "")
	return dir
}

func writeConfig(t *testing.T, dir, name, body string) string {
	t.Helper()
	path := filepath.Join(dir, "config", "dirmap", name)
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, []byte(body), 0644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestLoadDefaults(t *testing.T) {
	dir := isolate(t)

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}
	if cfg.Render.Width != 1440 || cfg.Render.Height != 900 {
		t.Errorf("render size = %dx%d, want 1440x900", cfg.Render.Width, cfg.Render.Height)
	}
	if cfg.Cache.Backend != BackendFile {
		t.Errorf("backend = %q, want %q", cfg.Cache.Backend, BackendFile)
	}
	if want := filepath.Join(dir, "cache", "dirmap"); cfg.Cache.Dir != want {
		t.Errorf("cache dir = %q, want %q", cfg.Cache.Dir, want)
	}
	if cfg.Cache.TTL.Duration != time.Hour {
		t.Errorf("ttl = %v, want 1h", cfg.Cache.TTL)
	}
}

func TestLoadTOML(t *testing.T) {
	dir := isolate(t)
	writeConfig(t, dir, "config.toml", `
log_level = "debug"

[scan]
exclude = [".git/", "*.tmp"]

[render]
width = 800
height = 600
formats = ["svg", "png"]
popups = true

[cache]
backend = "none"
ttl = "30m"

[serve]
addr = ":9000"
`)

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}
	if cfg.LogLevel != "debug" {
		t.Errorf("LogLevel = %q", cfg.LogLevel)
	}
	if len(cfg.Scan.Exclude) != 2 || cfg.Scan.Exclude[0] != ".git/" {
		t.Errorf("Exclude = %v", cfg.Scan.Exclude)
	}
	if cfg.Render.Width != 800 || cfg.Render.Height != 600 || !cfg.Render.Popups {
		t.Errorf("Render = %+v", cfg.Render)
	}
	if cfg.Cache.Backend != BackendNone || cfg.Cache.TTL.Duration != 30*time.Minute {
		t.Errorf("Cache = %+v", cfg.Cache)
	}
	if cfg.Serve.Addr != ":9000" {
		t.Errorf("Addr = %q", cfg.Serve.Addr)
	}
}

func TestLoadYAML(t *testing.T) {
	dir := isolate(t)
	path := writeConfig(t, dir, "config.yaml", `
render:
  width: 640
  height: 480
cache:
  ttl: 2h
`)

	cfg, err := LoadFile(path)
	if err != nil {
		t.Fatalf("LoadFile() error: %v", err)
	}
	if cfg.Render.Width != 640 || cfg.Render.Height != 480 {
		t.Errorf("Render = %+v", cfg.Render)
	}
	if cfg.Cache.TTL.Duration != 2*time.Hour {
		t.Errorf("ttl = %v, want 2h", cfg.Cache.TTL)
	}
	// Unset keys keep their defaults.
	if len(cfg.Render.Formats) != 1 || cfg.Render.Formats[0] != "svg" {
		t.Errorf("Formats = %v", cfg.Render.Formats)
	}
}

func TestLoadEmptyYAML(t *testing.T) {
	dir := isolate(t)
	path := writeConfig(t, dir, "config.yml", "")
	if _, err := LoadFile(path); err != nil {
		t.Errorf("LoadFile(empty) error: %v", err)
	}
}

func TestLoadErrors(t *testing.T) {
	tests := []struct {
		name string
		file string
		body string
	}{
		{"malformed toml", "config.toml", "width = ["},
		{"unknown toml key", "config.toml", "colour = \"red\""},
		{"unknown yaml key", "config.yaml", "colour: red"},
		{"bad backend", "config.toml", "[cache]\nbackend = \"s3\""},
		{"redis without url", "config.toml", "[cache]\nbackend = \"redis\""},
		{"bad ttl", "config.toml", "[cache]\nttl = \"soon\""},
		{"negative ttl", "config.toml", "[cache]\nttl = \"-1m\""},
		{"bad size", "config.toml", "[render]\nwidth = 0"},
		{"bad pattern", "config.toml", "[scan]\nexclude = [\"[\"]"},
		{"bad level", "config.toml", "log_level = \"loud\""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dir := isolate(t)
			path := writeConfig(t, dir, tt.file, tt.body)
			if _, err := LoadFile(path); err == nil {
				t.Error("LoadFile() should fail")
			}
		})
	}
}

func TestLoadFileMissing(t *testing.T) {
	dir := isolate(t)
	cfg, err := LoadFile(filepath.Join(dir, "nope.toml"))
	if err != nil {
		t.Fatalf("LoadFile(missing) error: %v", err)
	}
	if cfg.Render.Width != 1440 {
		t.Errorf("missing file should give defaults, got %+v", cfg.Render)
	}
}

func TestEnvOverrides(t *testing.T) {
	t.Run("redis url", func(t *testing.T) {
		isolate(t)
		t.Setenv("DIRMAP_REDIS_URL", "redis://localhost:6379/1")
		t.Setenv("DIRMAP_LOG_LEVEL", "warn")

		cfg, err := Load()
		if err != nil {
			t.Fatalf("Load() error: %v", err)
		}
		if cfg.Cache.Backend != BackendRedis || cfg.Cache.RedisURL != "redis://localhost:6379/1" {
			t.Errorf("Cache = %+v", cfg.Cache)
		}
		if cfg.LogLevel != "warn" {
			t.Errorf("LogLevel = %q", cfg.LogLevel)
		}
	})

	t.Run("cache dir", func(t *testing.T) {
		dir := isolate(t)
		t.Setenv("DIRMAP_CACHE", filepath.Join(dir, "elsewhere"))
		cfg, err := Load()
		if err != nil {
			t.Fatalf("Load() error: %v", err)
		}
		if cfg.Cache.Backend != BackendFile || cfg.Cache.Dir != filepath.Join(dir, "elsewhere") {
			t.Errorf("Cache = %+v", cfg.Cache)
		}
	})

	t.Run("disabled", func(t *testing.T) {
		isolate(t)
		t.Setenv("DIRMAP_CACHE", "none")
		t.Setenv("DIRMAP_REDIS_URL", "redis://localhost:6379/1")
		cfg, err := Load()
		if err != nil {
			t.Fatalf("Load() error: %v", err)
		}
		if cfg.Cache.Backend != BackendNone {
			t.Errorf("backend = %q, want none", cfg.Cache.Backend)
		}
	})

	t.Run("file is overridden", func(t *testing.T) {
		dir := isolate(t)
		writeConfig(t, dir, "config.toml", "log_level = \"debug\"")
		t.Setenv("DIRMAP_LOG_LEVEL", "error")
		cfg, err := Load()
		if err != nil {
			t.Fatalf("Load() error: %v", err)
		}
		if cfg.LogLevel != "error" {
			t.Errorf("LogLevel = %q, want error", cfg.LogLevel)
		}
	})
}

func TestSearchPaths(t *testing.T) {
	dir := isolate(t)
	paths := SearchPaths()
	if len(paths) != 6 {
		t.Fatalf("len(SearchPaths()) = %d, want 6", len(paths))
	}
	if want := filepath.Join(dir, "config", "dirmap", "config.toml"); paths[0] != want {
		t.Errorf("paths[0] = %q, want %q", paths[0], want)
	}
	if want := filepath.Join(dir, ".config", "dirmap", "config.toml"); paths[3] != want {
		t.Errorf("paths[3] = %q, want %q", paths[3], want)
	}
}

func TestParseLevel(t *testing.T) {
	tests := []struct {
		in      string
		want    log.Level
		wantErr bool
	}{
		{"", log.InfoLevel, false},
		{"debug", log.DebugLevel, false},
		{"WARN", log.WarnLevel, false},
		{" error ", log.ErrorLevel, false},
		{"loud", log.InfoLevel, true},
	}
	for _, tt := range tests {
		got, err := ParseLevel(tt.in)
		if (err != nil) != tt.wantErr {
			t.Errorf("ParseLevel(%q) error = %v, wantErr %v", tt.in, err, tt.wantErr)
			continue
		}
		if err != nil && !derrors.Is(err, derrors.ErrCodeInvalidInput) {
			t.Errorf("ParseLevel(%q) code = %v", tt.in, derrors.GetCode(err))
		}
		if got != tt.want {
			t.Errorf("ParseLevel(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
}
