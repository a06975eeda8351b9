package pipeline

import (
	"bytes"
	"context"
	"fmt"
	"path/filepath"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/dirmap/pkg/cache"
	"github.com/matzehuels/dirmap/pkg/fstree"
	"github.com/matzehuels/dirmap/pkg/observability"
	"github.com/matzehuels/dirmap/pkg/treemap"
)

// Runner encapsulates pipeline execution with caching.
// The CLI, the viewer and the server all use it to share caching logic.
//
// The Runner is stateless except for the cache and logger - it doesn't
// store pipeline results. Multiple goroutines can safely use the same
// Runner with different options.
type Runner struct {
	Cache  cache.Cache
	Keyer  cache.Keyer
	Logger *log.Logger

	// ScanTTL overrides cache.TTLScan when positive.
	ScanTTL time.Duration
}

// NewRunner creates a runner with the given cache and keyer.
// If keyer is nil, a DefaultKeyer is used.
// If cache is nil, a NullCache is used (caching disabled).
func NewRunner(c cache.Cache, keyer cache.Keyer, logger *log.Logger) *Runner {
	if keyer == nil {
		keyer = cache.NewDefaultKeyer()
	}
	if c == nil {
		c = cache.NewNullCache()
	}
	if logger == nil {
		logger = log.Default()
	}
	return &Runner{
		Cache:  c,
		Keyer:  keyer,
		Logger: logger,
	}
}

// Execute runs the complete load → layout → render pipeline with caching.
func (r *Runner) Execute(ctx context.Context, opts Options) (*Result, error) {
	r.applyLogger(&opts)
	if err := opts.ValidateAndSetDefaults(); err != nil {
		return nil, fmt.Errorf("invalid options: %w", err)
	}

	result := &Result{
		Artifacts: make(map[string][]byte),
	}

	// Stage 1: Load
	loadStart := time.Now()
	snap, loadHit, err := r.LoadWithCacheInfo(ctx, opts)
	if err != nil {
		return nil, fmt.Errorf("load: %w", err)
	}
	result.Snapshot = snap
	result.Fingerprint = cache.Fingerprint(snap.Root)
	result.Stats.LoadTime = time.Since(loadStart)
	result.Stats.Files = snap.Files
	result.Stats.Dirs = snap.Dirs
	result.Stats.TotalSize = snap.Root.Size
	result.CacheInfo.LoadHit = loadHit

	r.Logger.Info("loaded tree",
		"files", snap.Files,
		"dirs", snap.Dirs,
		"size", snap.Root.Size,
		"cached", loadHit,
		"duration", result.Stats.LoadTime)

	// Stage 2: Layout
	layoutStart := time.Now()
	l, err := r.ComputeLayout(ctx, snap.Root, opts)
	if err != nil {
		return nil, fmt.Errorf("layout: %w", err)
	}
	result.Layout = l
	result.Stats.LayoutTime = time.Since(layoutStart)
	result.Stats.Placed = l.Len()

	r.Logger.Info("computed layout",
		"blocks", l.Len(),
		"duration", result.Stats.LayoutTime)

	// Stage 3: Render
	renderStart := time.Now()
	artifacts, renderHit, err := r.RenderWithFingerprint(ctx, l, snap, result.Fingerprint, opts)
	if err != nil {
		return nil, fmt.Errorf("render: %w", err)
	}
	result.Artifacts = artifacts
	result.Stats.RenderTime = time.Since(renderStart)
	result.CacheInfo.RenderHit = renderHit

	r.Logger.Info("rendered outputs",
		"formats", opts.Formats,
		"cached", renderHit,
		"duration", result.Stats.RenderTime)

	return result, nil
}

// LoadWithCacheInfo scans the configured directory or imports the configured
// tree file, and reports whether the snapshot came from the cache.
//
// Only directory scans are cached; tree files are read directly.
func (r *Runner) LoadWithCacheInfo(ctx context.Context, opts Options) (*fstree.Snapshot, bool, error) {
	r.applyLogger(&opts)
	if err := opts.ValidateForLoad(); err != nil {
		return nil, false, err
	}

	hooks := observability.Pipeline()
	source := opts.Source()
	hooks.OnScanStart(ctx, source)
	start := time.Now()

	if opts.TreeFile != "" {
		snap, err := fstree.ImportJSON(opts.TreeFile)
		hooks.OnScanComplete(ctx, source, nodeCount(snap), time.Since(start), err)
		return snap, false, err
	}

	root := opts.Path
	if abs, err := filepath.Abs(root); err == nil {
		root = abs
	}
	cacheKey := r.Keyer.ScanKey(root, opts.ScanKeyOpts())
	cacheHooks := observability.Cache()

	// Try cache first (unless refresh requested)
	if !opts.Refresh {
		if data, hit, err := r.Cache.Get(ctx, cacheKey); err == nil && hit {
			snap, err := fstree.ReadJSON(bytes.NewReader(data))
			if err == nil {
				cacheHooks.OnCacheHit(ctx, "scan")
				hooks.OnScanComplete(ctx, source, nodeCount(snap), time.Since(start), nil)
				return snap, true, nil
			}
			// A stale or corrupt entry falls through to a fresh scan.
			opts.Logger.Debug("discarding unreadable cached scan", "error", err)
		}
		cacheHooks.OnCacheMiss(ctx, "scan")
	}

	snap, err := fstree.Scan(ctx, root, fstree.ScanOptions{
		Exclude: opts.Exclude,
		Logger:  opts.Logger,
		OnDir:   opts.OnDir,
	})
	hooks.OnScanComplete(ctx, source, nodeCount(snap), time.Since(start), err)
	if err != nil {
		return nil, false, err
	}
	for _, e := range snap.Errors {
		opts.Logger.Warn("skipped entry", "error", e)
	}

	if data, err := fstree.Marshal(snap); err == nil {
		if err := r.Cache.Set(ctx, cacheKey, data, r.scanTTL()); err == nil {
			cacheHooks.OnCacheSet(ctx, "scan", len(data))
		} else {
			opts.Logger.Debug("caching scan failed", "error", err)
		}
	}

	return snap, false, nil
}

// Load is a convenience wrapper that calls LoadWithCacheInfo and discards the cache hit info.
func (r *Runner) Load(ctx context.Context, opts Options) (*fstree.Snapshot, error) {
	snap, _, err := r.LoadWithCacheInfo(ctx, opts)
	return snap, err
}

// ComputeLayout places root in the configured frame. Layouts are pure
// functions of the tree and the frame and are never cached.
//
// A violated packing invariant is a programming error: treemap panics with
// an [*treemap.InvariantError] and ComputeLayout lets the panic through.
func (r *Runner) ComputeLayout(ctx context.Context, root *fstree.Node, opts Options) (*treemap.Layout, error) {
	r.applyLogger(&opts)
	if err := opts.ValidateForLayout(); err != nil {
		return nil, err
	}

	hooks := observability.Pipeline()
	hooks.OnLayoutStart(ctx, opts.Width, opts.Height, treeSize(root))
	start := time.Now()

	l := treemap.Compute(root, opts.Frame())

	hooks.OnLayoutComplete(ctx, l.Len(), time.Since(start), nil)
	return l, nil
}

// RenderWithCacheInfo generates artifacts with caching and returns cache hit info.
func (r *Runner) RenderWithCacheInfo(ctx context.Context, l *treemap.Layout, snap *fstree.Snapshot, opts Options) (map[string][]byte, bool, error) {
	return r.RenderWithFingerprint(ctx, l, snap, "", opts)
}

// Render is a convenience wrapper that calls RenderWithCacheInfo and discards the cache hit info.
func (r *Runner) Render(ctx context.Context, l *treemap.Layout, snap *fstree.Snapshot, opts Options) (map[string][]byte, error) {
	artifacts, _, err := r.RenderWithCacheInfo(ctx, l, snap, opts)
	return artifacts, err
}

// RenderWithFingerprint is RenderWithCacheInfo for callers that already hold
// the tree's [cache.Fingerprint], such as a server rendering one snapshot many
// times. An empty fingerprint is computed from snap.
func (r *Runner) RenderWithFingerprint(ctx context.Context, l *treemap.Layout, snap *fstree.Snapshot, fingerprint string, opts Options) (map[string][]byte, bool, error) {
	r.applyLogger(&opts)
	if err := opts.ValidateForRender(); err != nil {
		return nil, false, err
	}
	if l.Frame != opts.Frame() {
		return nil, false, fmt.Errorf("layout frame %v does not match %dx%d", l.Frame, opts.Width, opts.Height)
	}

	if fingerprint == "" {
		fingerprint = cache.Fingerprint(snap.Root)
	}

	hooks := observability.Pipeline()
	cacheHooks := observability.Cache()
	hooks.OnRenderStart(ctx, opts.Formats)
	start := time.Now()

	// Try to get all formats from cache
	artifacts := make(map[string][]byte)
	var missing []string
	for _, format := range opts.Formats {
		cacheKey := r.Keyer.ArtifactKey(fingerprint, opts.ArtifactKeyOpts(format))
		if data, hit, err := r.Cache.Get(ctx, cacheKey); err == nil && hit {
			cacheHooks.OnCacheHit(ctx, "artifact")
			artifacts[format] = data
		} else {
			cacheHooks.OnCacheMiss(ctx, "artifact")
			missing = append(missing, format)
		}
	}

	if len(missing) == 0 {
		hooks.OnRenderComplete(ctx, opts.Formats, time.Since(start), nil)
		return artifacts, true, nil // All artifacts from cache
	}

	rendered, err := RenderFormats(l, snap, missing, opts)
	hooks.OnRenderComplete(ctx, opts.Formats, time.Since(start), err)
	if err != nil {
		return nil, false, err
	}

	// Cache each newly rendered format
	for format, data := range rendered {
		artifacts[format] = data
		cacheKey := r.Keyer.ArtifactKey(fingerprint, opts.ArtifactKeyOpts(format))
		if err := r.Cache.Set(ctx, cacheKey, data, cache.TTLArtifact); err == nil {
			cacheHooks.OnCacheSet(ctx, "artifact", len(data))
		}
	}

	return artifacts, false, nil
}

// Close releases resources held by the runner (primarily the cache).
func (r *Runner) Close() error {
	if r.Cache != nil {
		return r.Cache.Close()
	}
	return nil
}

func (r *Runner) scanTTL() time.Duration {
	if r.ScanTTL > 0 {
		return r.ScanTTL
	}
	return cache.TTLScan
}

// applyLogger sets the runner's logger on options if not already set.
func (r *Runner) applyLogger(opts *Options) {
	if opts.Logger == nil {
		opts.Logger = r.Logger
	}
}

func nodeCount(snap *fstree.Snapshot) int {
	if snap == nil {
		return 0
	}
	return snap.Files + snap.Dirs
}

func treeSize(root *fstree.Node) int {
	s := fstree.Summarize(root)
	return s.Files + s.Dirs
}
