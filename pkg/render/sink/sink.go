package sink

import (
	"github.com/lucasb-eyer/go-colorful"

	"github.com/matzehuels/dirmap/pkg/fstree"
	"github.com/matzehuels/dirmap/pkg/render/palette"
	"github.com/matzehuels/dirmap/pkg/treemap"
)

// Colors maps nodes to fill colors.
type Colors = map[*fstree.Node]colorful.Color

// colorFor returns the fill of n, falling back to white for nodes that were
// not assigned a color.
func colorFor(colors Colors, n *fstree.Node) colorful.Color {
	if c, ok := colors[n]; ok {
		return c
	}
	return colorful.Color{R: 1, G: 1, B: 1}
}

func resolveColors(colors Colors, root *fstree.Node) Colors {
	if colors != nil {
		return colors
	}
	return palette.Assign(root)
}

// isLeafBlock reports whether none of n's children were placed.
func isLeafBlock(l *treemap.Layout, n *fstree.Node) bool {
	for _, c := range n.Children {
		if _, ok := l.Rect(c); ok {
			return false
		}
	}
	return true
}

func textColor(colors Colors, n *fstree.Node) string {
	return palette.Text(colorFor(colors, n)).Hex()
}
