package pipeline

import (
	"fmt"

	"github.com/matzehuels/dirmap/pkg/fstree"
	"github.com/matzehuels/dirmap/pkg/render/palette"
	"github.com/matzehuels/dirmap/pkg/render/sink"
	"github.com/matzehuels/dirmap/pkg/treemap"
)

// RenderFormats renders the layout of snap in each of the given formats.
// Colors are assigned once and shared by all formats.
func RenderFormats(l *treemap.Layout, snap *fstree.Snapshot, formats []string, opts Options) (map[string][]byte, error) {
	if snap == nil || snap.Root == nil {
		return nil, fmt.Errorf("nothing to render")
	}
	colors := palette.Assign(snap.Root)

	var svgOpts []sink.SVGOption
	svgOpts = append(svgOpts, sink.WithColors(colors))
	if opts.Labels {
		svgOpts = append(svgOpts, sink.WithLabels())
	}

	artifacts := make(map[string][]byte, len(formats))
	for _, format := range formats {
		var (
			data []byte
			err  error
		)
		switch format {
		case FormatSVG:
			o := svgOpts
			if opts.Popups {
				o = append(o[:len(o):len(o)], sink.WithPopups())
			}
			data = sink.RenderSVG(l, snap.Root, o...)
		case FormatPNG:
			scale := opts.Scale
			if scale == 0 {
				scale = DefaultScale
			}
			data, err = sink.RenderPNG(l, snap.Root, sink.WithScale(scale), sink.WithPNGColors(colors))
		case FormatPDF:
			data, err = sink.RenderPDF(l, snap.Root, sink.WithPDFSVGOptions(svgOpts...))
		case FormatJSON:
			data, err = sink.RenderJSON(l, snap.Root, sink.WithJSONScanID(snap.ID.String()), sink.WithJSONColors(colors))
		default:
			err = ValidateFormat(format)
		}
		if err != nil {
			return nil, fmt.Errorf("render %s: %w", format, err)
		}
		artifacts[format] = data
	}
	return artifacts, nil
}
