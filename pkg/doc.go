// Package pkg provides the core libraries for dirmap disk usage treemaps.
//
// # Overview
//
// dirmap scans a directory into a size-annotated tree and draws it as a
// treemap: every file becomes a rectangle whose area follows its size,
// nested inside the rectangles of its directories. The pkg directory is
// organized by stage:
//
//  1. [fstree] - Filesystem trees (scan, exclusions, JSON import/export)
//  2. [treemap] - Squarified layout, hit testing and rectangles
//  3. [render] - Colors and output formats (SVG, PNG, PDF, JSON)
//  4. [pipeline] - Orchestration (load → layout → render) with caching
//  5. [cache] - File and Redis caches keyed by content hashes
//
// # Architecture
//
//	Directory or tree.json
//	         ↓
//	    [fstree] package (scan or import)
//	         ↓
//	    [treemap] package (nested rectangles for a frame)
//	         ↓
//	    [render] packages (palette + sink)
//	         ↓
//	    SVG/PNG/PDF/JSON output
//
// # Quick Start
//
//	snap, _ := fstree.Scan(ctx, "/var/log", fstree.ScanOptions{})
//	l := treemap.Compute(snap.Root, treemap.Rect{W: 1440, H: 900})
//	svg := sink.RenderSVG(l, snap.Root,
//	    sink.WithColors(palette.Assign(snap.Root)),
//	    sink.WithPopups())
//
// The [pipeline] package runs the same steps with validation, caching and
// hooks, and is what the CLI and the HTTP server use:
//
//	runner := pipeline.NewRunner(c, nil, logger)
//	result, err := runner.Execute(ctx, pipeline.Options{Path: "/var/log"})
//
// # Supporting Packages
//
// [errors] - Error codes shared by every stage, with user-facing messages.
//
// [bytesize] - Human-readable byte counts and size parsing.
//
// [observability] - Hooks for pipeline, cache and HTTP events.
//
// [buildinfo] - Version information injected at build time.
//
// [fstree]: https://pkg.go.dev/github.com/matzehuels/dirmap/pkg/fstree
// [treemap]: https://pkg.go.dev/github.com/matzehuels/dirmap/pkg/treemap
// [render]: https://pkg.go.dev/github.com/matzehuels/dirmap/pkg/render
// [pipeline]: https://pkg.go.dev/github.com/matzehuels/dirmap/pkg/pipeline
// [cache]: https://pkg.go.dev/github.com/matzehuels/dirmap/pkg/cache
// [errors]: https://pkg.go.dev/github.com/matzehuels/dirmap/pkg/errors
// [bytesize]: https://pkg.go.dev/github.com/matzehuels/dirmap/pkg/bytesize
// [observability]: https://pkg.go.dev/github.com/matzehuels/dirmap/pkg/observability
// [buildinfo]: https://pkg.go.dev/github.com/matzehuels/dirmap/pkg/buildinfo
package pkg
