// Package pipeline provides the scan → layout → render pipeline shared by the
// CLI commands, the terminal viewer and the HTTP server.
//
// # Architecture
//
// The pipeline consists of three stages:
//
//  1. Load: scan a directory, or import a tree previously exported as JSON
//  2. Layout: compute the treemap rectangles for a frame size
//  3. Render: produce output in various formats (SVG, PNG, PDF, JSON)
//
// Each stage can be run independently or as part of the complete pipeline.
// Scans and rendered artifacts are cached; layouts are not, since computing
// one is cheaper than decoding it.
//
// # Usage
//
//	runner := pipeline.NewRunner(cache, nil, logger)
//	result, err := runner.Execute(ctx, pipeline.Options{
//	    Path:    "/home/me/Downloads",
//	    Formats: []string{"svg"},
//	})
//	if err != nil {
//	    log.Fatal(err)
//	}
//	svg := result.Artifacts["svg"]
//
// Run individual stages:
//
//	snap, err := runner.Load(ctx, opts)
//	l, err := runner.ComputeLayout(ctx, snap.Root, opts)
//	artifacts, err := runner.Render(ctx, l, snap, opts)
package pipeline

import (
	"fmt"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/dirmap/pkg/cache"
	derrors "github.com/matzehuels/dirmap/pkg/errors"
	"github.com/matzehuels/dirmap/pkg/fstree"
	"github.com/matzehuels/dirmap/pkg/treemap"
)

// =============================================================================
// Default Values - Single Source of Truth for CLI, viewer and server
// =============================================================================

const (
	// DefaultWidth is the default frame width in pixels.
	DefaultWidth = 1440

	// DefaultHeight is the default frame height in pixels.
	DefaultHeight = 900

	// DefaultScale is the default PNG scale factor.
	DefaultScale = 1.0
)

// Format constants for output formats.
const (
	FormatSVG  = "svg"
	FormatPNG  = "png"
	FormatPDF  = "pdf"
	FormatJSON = "json"
)

// ValidFormats is the set of supported output formats.
var ValidFormats = map[string]bool{
	FormatSVG:  true,
	FormatPNG:  true,
	FormatPDF:  true,
	FormatJSON: true,
}

// =============================================================================
// Options - Pipeline Configuration
// =============================================================================

// Options contains all configuration for the pipeline.
type Options struct {
	// Load options. Exactly one of Path and TreeFile is set.
	Path     string   `json:"path,omitempty"`
	TreeFile string   `json:"tree_file,omitempty"`
	Exclude  []string `json:"exclude,omitempty"`
	Refresh  bool     `json:"refresh,omitempty"`

	// Layout options
	Width  int `json:"width,omitempty"`
	Height int `json:"height,omitempty"`

	// Render options
	Formats []string `json:"formats,omitempty"`
	Popups  bool     `json:"popups,omitempty"`
	Labels  bool     `json:"labels,omitempty"`
	Scale   float64  `json:"scale,omitempty"`

	// Runtime options (not serialized)
	Logger *log.Logger       `json:"-"`
	OnDir  func(path string) `json:"-"`

	validated bool
}

// Result contains the outputs of a pipeline run.
type Result struct {
	// Snapshot is the scanned or imported tree.
	Snapshot *fstree.Snapshot

	// Fingerprint identifies the tree's content (see [cache.Fingerprint]).
	Fingerprint string

	// Layout maps the tree's nodes to rectangles.
	Layout *treemap.Layout

	// Artifacts contains rendered outputs keyed by format.
	Artifacts map[string][]byte

	// Stats contains timing and size information.
	Stats Stats

	// CacheInfo tracks which stages hit the cache.
	CacheInfo CacheInfo
}

// Stats contains pipeline execution statistics.
type Stats struct {
	Files      int
	Dirs       int
	TotalSize  int64
	Placed     int
	LoadTime   time.Duration
	LayoutTime time.Duration
	RenderTime time.Duration
}

// CacheInfo tracks cache hits for each pipeline stage.
type CacheInfo struct {
	LoadHit   bool // Whether the snapshot came from cache
	RenderHit bool // Whether all artifacts came from cache
}

// =============================================================================
// Validation Functions
// =============================================================================

// ValidateFormat checks that a format is valid.
func ValidateFormat(format string) error {
	if !ValidFormats[format] {
		return derrors.New(derrors.ErrCodeInvalidFormat, "invalid format: %q (must be one of: svg, png, pdf, json)", format)
	}
	return nil
}

// ValidateFormats checks that all formats are valid.
func ValidateFormats(formats []string) error {
	for _, f := range formats {
		if err := ValidateFormat(f); err != nil {
			return err
		}
	}
	return nil
}

// =============================================================================
// Options Methods
// =============================================================================

// ValidateAndSetDefaults checks required fields and applies defaults for the
// full pipeline. It is idempotent.
func (o *Options) ValidateAndSetDefaults() error {
	if o.validated {
		return nil
	}
	if err := o.ValidateForLoad(); err != nil {
		return err
	}
	if err := o.ValidateForRender(); err != nil {
		return err
	}
	o.validated = true
	return nil
}

// ValidateForLoad checks the input source and exclusion patterns.
func (o *Options) ValidateForLoad() error {
	switch {
	case o.Path == "" && o.TreeFile == "":
		return derrors.New(derrors.ErrCodeInvalidInput, "a directory or a tree file is required")
	case o.Path != "" && o.TreeFile != "":
		return derrors.New(derrors.ErrCodeInvalidInput, "give either a directory or a tree file, not both")
	}
	if err := derrors.ValidatePath(o.Source()); err != nil {
		return err
	}
	for _, p := range o.Exclude {
		if err := derrors.ValidatePattern(p); err != nil {
			return err
		}
	}
	return nil
}

// SetLayoutDefaults sets default values for layout computation.
func (o *Options) SetLayoutDefaults() {
	if o.Width == 0 {
		o.Width = DefaultWidth
	}
	if o.Height == 0 {
		o.Height = DefaultHeight
	}
}

// ValidateForLayout validates and sets defaults for layout computation.
func (o *Options) ValidateForLayout() error {
	o.SetLayoutDefaults()
	return derrors.ValidateDimensions(o.Width, o.Height)
}

// SetRenderDefaults sets default values for rendering.
func (o *Options) SetRenderDefaults() {
	if len(o.Formats) == 0 {
		o.Formats = []string{FormatSVG}
	}
	if o.Scale == 0 {
		o.Scale = DefaultScale
	}
}

// ValidateForRender validates and sets defaults for rendering.
func (o *Options) ValidateForRender() error {
	if err := o.ValidateForLayout(); err != nil {
		return err
	}
	o.SetRenderDefaults()
	if o.Scale < 0 {
		return derrors.New(derrors.ErrCodeInvalidInput, "scale must be positive, got %g", o.Scale)
	}
	return ValidateFormats(o.Formats)
}

// Source returns the directory or tree file being loaded.
func (o *Options) Source() string {
	if o.TreeFile != "" {
		return o.TreeFile
	}
	return o.Path
}

// Frame returns the layout frame for the configured size.
func (o *Options) Frame() treemap.Rect {
	return treemap.Rect{W: o.Width, H: o.Height}
}

// ScanKeyOpts returns cache key options for scanning.
func (o *Options) ScanKeyOpts() cache.ScanKeyOpts {
	return cache.ScanKeyOpts{Exclude: o.Exclude}
}

// ArtifactKeyOpts returns cache key options for artifact rendering.
func (o *Options) ArtifactKeyOpts(format string) cache.ArtifactKeyOpts {
	opts := cache.ArtifactKeyOpts{
		Format: format,
		Width:  o.Width,
		Height: o.Height,
	}
	switch format {
	case FormatSVG, FormatPDF:
		opts.Popups = o.Popups && format == FormatSVG
		opts.Labels = o.Labels
	case FormatPNG:
		opts.Scale = o.Scale
	}
	return opts
}

func (o *Options) String() string {
	return fmt.Sprintf("%s %dx%d %v", o.Source(), o.Width, o.Height, o.Formats)
}
