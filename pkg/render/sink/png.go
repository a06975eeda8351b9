package sink

import (
	"bytes"
	"math"

	"github.com/fogleman/gg"

	derrors "github.com/matzehuels/dirmap/pkg/errors"
	"github.com/matzehuels/dirmap/pkg/fstree"
	"github.com/matzehuels/dirmap/pkg/treemap"
)

// PNGOption configures [RenderPNG].
type PNGOption func(*pngRenderer)

type pngRenderer struct {
	colors Colors
	scale  float64
}

// WithScale sets the PNG scale factor (default 1.0; 2.0 for 2x resolution).
func WithScale(s float64) PNGOption {
	return func(r *pngRenderer) { r.scale = s }
}

// WithPNGColors uses a precomputed color assignment.
func WithPNGColors(c Colors) PNGOption { return func(r *pngRenderer) { r.colors = c } }

// RenderPNG rasterizes the layout of root. Unlike PDF export it needs no
// external tools.
func RenderPNG(l *treemap.Layout, root *fstree.Node, opts ...PNGOption) ([]byte, error) {
	r := pngRenderer{scale: 1.0}
	for _, opt := range opts {
		opt(&r)
	}
	if r.scale <= 0 {
		return nil, derrors.New(derrors.ErrCodeInvalidInput, "scale must be positive, got %g", r.scale)
	}
	f := l.Frame
	if f.Empty() {
		return nil, derrors.New(derrors.ErrCodeInvalidDimensions, "cannot rasterize an empty frame %v", f)
	}
	colors := resolveColors(r.colors, root)

	w := int(math.Ceil(float64(f.W) * r.scale))
	h := int(math.Ceil(float64(f.H) * r.scale))
	dc := gg.NewContext(w, h)
	dc.Scale(r.scale, r.scale)
	dc.Translate(-float64(f.X), -float64(f.Y))

	for _, b := range l.Blocks(root) {
		dc.SetColor(colorFor(colors, b.Node))
		dc.DrawRectangle(float64(b.Rect.X), float64(b.Rect.Y), float64(b.Rect.W), float64(b.Rect.H))
		dc.Fill()
	}

	var buf bytes.Buffer
	if err := dc.EncodePNG(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
