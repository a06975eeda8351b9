package sink

import (
	"bytes"
	"fmt"

	"github.com/lucasb-eyer/go-colorful"

	"github.com/matzehuels/dirmap/pkg/bytesize"
	"github.com/matzehuels/dirmap/pkg/fstree"
	"github.com/matzehuels/dirmap/pkg/treemap"
)

const infoBarHeight = 22

const infoCSS = `
    .node:hover { stroke: #141414; stroke-width: 1; }
    #info { pointer-events: none; }
    #info text { font: 12px "DejaVu Sans Mono", monospace; fill: #fff; }`

const infoJS = `
    const info = document.getElementById('info');
    const label = info.querySelector('text');
    const bg = info.querySelector('rect');
    document.querySelectorAll('.node').forEach(el => {
      el.addEventListener('mouseenter', () => {
        label.textContent = el.dataset.path + '  ' + el.dataset.human;
        bg.setAttribute('width', label.getComputedTextLength() + 16);
        info.setAttribute('visibility', 'visible');
      });
    });
    document.querySelector('svg').addEventListener('mouseleave', () => info.setAttribute('visibility', 'hidden'));`

// SVGOption configures [RenderSVG].
type SVGOption func(*svgRenderer)

type svgRenderer struct {
	colors Colors
	popups bool
	labels bool
}

// WithColors uses a precomputed color assignment.
func WithColors(c Colors) SVGOption { return func(r *svgRenderer) { r.colors = c } }

// WithPopups adds an info bar that follows the pointer and shows the hovered
// node's path and size.
func WithPopups() SVGOption { return func(r *svgRenderer) { r.popups = true } }

// WithLabels writes file names into leaf blocks large enough to hold them.
func WithLabels() SVGOption { return func(r *svgRenderer) { r.labels = true } }

// RenderSVG draws the layout of root as a standalone SVG document sized to
// the layout frame.
func RenderSVG(l *treemap.Layout, root *fstree.Node, opts ...SVGOption) []byte {
	r := svgRenderer{}
	for _, opt := range opts {
		opt(&r)
	}
	colors := resolveColors(r.colors, root)
	f := l.Frame

	var buf bytes.Buffer
	fmt.Fprintf(&buf, `<svg xmlns="http://www.w3.org/2000/svg" viewBox="%d %d %d %d" width="%d" height="%d">`+"\n",
		f.X, f.Y, f.W, f.H, f.W, f.H)

	blocks := l.Blocks(root)
	for _, b := range blocks {
		renderBlock(&buf, b, colorFor(colors, b.Node))
	}
	if r.labels {
		for _, b := range blocks {
			if isLeafBlock(l, b.Node) {
				renderLabel(&buf, b, colors)
			}
		}
	}
	if r.popups {
		renderInfoBar(&buf, f)
	}

	buf.WriteString("</svg>\n")
	return buf.Bytes()
}

func renderBlock(buf *bytes.Buffer, b treemap.Block, fill colorful.Color) {
	human := bytesize.Format(b.Node.Size)
	kind := "file"
	if b.Node.IsDir {
		kind = "dir"
	}
	fmt.Fprintf(buf, `  <rect class="node %s" x="%d" y="%d" width="%d" height="%d" fill="%s" data-path="%s" data-size="%d" data-human="%s" data-depth="%d">`,
		kind, b.Rect.X, b.Rect.Y, b.Rect.W, b.Rect.H, fill.Hex(),
		escapeXML(b.Node.Path), b.Node.Size, escapeXML(human), b.Depth)
	fmt.Fprintf(buf, "<title>%s (%s)</title></rect>\n", escapeXML(b.Node.Path), escapeXML(human))
}

func renderLabel(buf *bytes.Buffer, b treemap.Block, colors Colors) {
	size := fontSize(b.Rect.W, b.Rect.H, b.Node.Name)
	if size == 0 {
		return
	}
	cx := float64(b.Rect.X) + float64(b.Rect.W)/2
	cy := float64(b.Rect.Y) + float64(b.Rect.H)/2
	fmt.Fprintf(buf, `  <text x="%.1f" y="%.1f" font-size="%.1f" fill="%s" text-anchor="middle" dominant-baseline="middle" pointer-events="none" font-family="sans-serif">%s</text>`+"\n",
		cx, cy, size, textColor(colors, b.Node), escapeXML(b.Node.Name))
}

func renderInfoBar(buf *bytes.Buffer, f treemap.Rect) {
	y := f.Y + f.H - infoBarHeight
	fmt.Fprintf(buf, `  <g id="info" visibility="hidden"><rect x="%d" y="%d" width="%d" height="%d" fill="#141414"/>`,
		f.X, y, f.W, infoBarHeight)
	fmt.Fprintf(buf, `<text x="%d" y="%d"></text></g>`+"\n", f.X+8, y+15)
	fmt.Fprintf(buf, "  <style>%s\n  </style>\n", infoCSS)
	fmt.Fprintf(buf, "  <script type=\"text/javascript\"><![CDATA[%s\n  ]]></script>\n", infoJS)
}
