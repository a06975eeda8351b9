// Package sink writes a computed [treemap.Layout] in a final output format.
//
// # Overview
//
// Every sink draws the placed nodes in pre-order, so a directory is painted
// first and its children on top of it; the inset margins left around each
// child therefore show the parent's color. Nodes missing from the layout are
// not drawn.
//
//   - SVG: one rect per node with a native tooltip ("path (size)"), optional
//     labels and an optional hover info bar
//   - JSON: block geometry with paths and sizes for external tools
//   - PNG: in-process rasterization
//   - PDF: SVG converted with rsvg-convert
//
// Basic usage:
//
//	l := treemap.Compute(root, treemap.Rect{W: 1440, H: 900})
//	svg := sink.RenderSVG(l, root, sink.WithPopups())
//
// Colors default to [palette.Default]; pass [WithColors] to reuse a precomputed
// assignment across several sinks.
//
// [treemap.Layout]: github.com/matzehuels/dirmap/pkg/treemap.Layout
// [palette.Default]: github.com/matzehuels/dirmap/pkg/render/palette.Default
package sink
