package sink

import (
	"encoding/json"

	"github.com/matzehuels/dirmap/pkg/bytesize"
	"github.com/matzehuels/dirmap/pkg/fstree"
	"github.com/matzehuels/dirmap/pkg/treemap"
)

// JSONOption configures [RenderJSON].
type JSONOption func(*jsonRenderer)

type jsonRenderer struct {
	scanID string
	colors Colors
}

// WithJSONScanID records the id of the snapshot the layout was computed from.
func WithJSONScanID(id string) JSONOption { return func(r *jsonRenderer) { r.scanID = id } }

// WithJSONColors includes each block's fill color.
func WithJSONColors(c Colors) JSONOption { return func(r *jsonRenderer) { r.colors = c } }

type jsonOutput struct {
	X      int         `json:"x"`
	Y      int         `json:"y"`
	Width  int         `json:"width"`
	Height int         `json:"height"`
	ScanID string      `json:"scan_id,omitempty"`
	Root   string      `json:"root"`
	Total  int64       `json:"total"`
	Blocks []jsonBlock `json:"blocks"`
}

type jsonBlock struct {
	Path   string `json:"path"`
	Name   string `json:"name"`
	Size   int64  `json:"size"`
	Human  string `json:"human"`
	Depth  int    `json:"depth"`
	Dir    bool   `json:"dir,omitempty"`
	X      int    `json:"x"`
	Y      int    `json:"y"`
	Width  int    `json:"width"`
	Height int    `json:"height"`
	Color  string `json:"color,omitempty"`
}

// RenderJSON exports the placed blocks of root in drawing order as an
// indented JSON document. Nodes missing from the layout are omitted.
//
// RenderJSON does not modify l or the tree and is safe to call concurrently.
func RenderJSON(l *treemap.Layout, root *fstree.Node, opts ...JSONOption) ([]byte, error) {
	r := jsonRenderer{}
	for _, opt := range opts {
		opt(&r)
	}

	out := jsonOutput{
		X:      l.Frame.X,
		Y:      l.Frame.Y,
		Width:  l.Frame.W,
		Height: l.Frame.H,
		ScanID: r.scanID,
		Blocks: buildJSONBlocks(l, root, r.colors),
	}
	if root != nil {
		out.Root = root.Path
		out.Total = root.Size
	}
	return json.MarshalIndent(out, "", "  ")
}

func buildJSONBlocks(l *treemap.Layout, root *fstree.Node, colors Colors) []jsonBlock {
	blocks := l.Blocks(root)
	out := make([]jsonBlock, 0, len(blocks))
	for _, b := range blocks {
		jb := jsonBlock{
			Path:   b.Node.Path,
			Name:   b.Node.Name,
			Size:   b.Node.Size,
			Human:  bytesize.Format(b.Node.Size),
			Depth:  b.Depth,
			Dir:    b.Node.IsDir,
			X:      b.Rect.X,
			Y:      b.Rect.Y,
			Width:  b.Rect.W,
			Height: b.Rect.H,
		}
		if c, ok := colors[b.Node]; ok {
			jb.Color = c.Hex()
		}
		out = append(out, jb)
	}
	return out
}
