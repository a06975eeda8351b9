// Package render turns treemap layouts into images and documents.
//
// # Overview
//
// Rendering is split into small pieces:
//
//   - [palette]: per-node fill colors blended from sibling hues
//   - [sink]: output formats (SVG, JSON, PNG, PDF)
//
// This package itself holds the external converters shared by the sinks.
// [ToPDF] shells out to rsvg-convert (from librsvg):
//
//	svg := sink.RenderSVG(l, root)
//	pdf, err := render.ToPDF(svg)
//
// [palette]: github.com/matzehuels/dirmap/pkg/render/palette
// [sink]: github.com/matzehuels/dirmap/pkg/render/sink
package render
