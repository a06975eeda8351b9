// Package palette colors treemap nodes so siblings are distinguishable and
// nested nodes stay recognizably related to their parents.
//
// Each child of a node gets a fully saturated hue spaced evenly around the
// color wheel by its index, which is then blended into the parent's color.
// The weight of the hue shrinks with depth, so deep nodes drift toward their
// ancestors' colors.
package palette

import (
	"math"

	"github.com/lucasb-eyer/go-colorful"

	"github.com/matzehuels/dirmap/pkg/fstree"
)

// Palette holds the blending parameters.
type Palette struct {
	// Base is the color of the root.
	Base colorful.Color
	// Weight is the hue weight for the root's children.
	Weight float64
	// Decay multiplies Weight at each level below the root.
	Decay float64
}

// Default starts from white with equal hue weight, decaying by 5% per level.
var Default = Palette{
	Base:   colorful.Color{R: 1, G: 1, B: 1},
	Weight: 1.0,
	Decay:  0.95,
}

// Assign colors root and all its descendants using [Default].
func Assign(root *fstree.Node) map[*fstree.Node]colorful.Color {
	return Default.Assign(root)
}

// Assign colors root and all its descendants.
func (p Palette) Assign(root *fstree.Node) map[*fstree.Node]colorful.Color {
	colors := make(map[*fstree.Node]colorful.Color)
	if root == nil {
		return colors
	}
	colors[root] = p.Base
	p.assign(root, p.Base, p.Weight, colors)
	return colors
}

func (p Palette) assign(n *fstree.Node, base colorful.Color, weight float64, colors map[*fstree.Node]colorful.Color) {
	for i, c := range n.Children {
		col := Blend(base, Hue(i, len(n.Children)), weight)
		colors[c] = col
		if len(c.Children) > 0 {
			p.assign(c, col, weight*p.Decay, colors)
		}
	}
}

// Hue returns the fully saturated color for sibling i of n.
func Hue(i, n int) colorful.Color {
	if n <= 0 {
		return colorful.Hsv(0, 1, 1)
	}
	return colorful.Hsv(360*float64(i)/float64(n), 1, 1)
}

// Blend mixes hue into base with the given weight, channel by channel:
// (base + weight*hue) / (1 + weight). Channels are quantized to 8 bits.
func Blend(base, hue colorful.Color, weight float64) colorful.Color {
	br, bg, bb := base.RGB255()
	hr, hg, hb := hue.RGB255()
	mix := func(b, h uint8) float64 {
		return math.RoundToEven((float64(b)+weight*float64(h))/(1+weight)) / 255
	}
	return colorful.Color{R: mix(br, hr), G: mix(bg, hg), B: mix(bb, hb)}
}

// Text returns black or white, whichever reads better on bg.
func Text(bg colorful.Color) colorful.Color {
	_, _, l := bg.Hsl()
	if l > 0.55 {
		return colorful.Color{}
	}
	return colorful.Color{R: 1, G: 1, B: 1}
}
