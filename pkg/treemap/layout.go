package treemap

import "github.com/matzehuels/dirmap/pkg/fstree"

const (
	// Margin is the inset applied to each side of a child's rectangle.
	Margin = 2

	// MinSplit is the largest width or height that is not subdivided.
	MinSplit = 2 * Margin
)

// Layout maps nodes of one tree to their assigned rectangles.
// A node missing from the layout is not drawn and cannot be hit.
type Layout struct {
	Frame Rect
	rects map[*fstree.Node]Rect
}

// New returns an empty layout.
func New() *Layout {
	return &Layout{rects: make(map[*fstree.Node]Rect)}
}

// Compute lays out the tree rooted at root into frame.
func Compute(root *fstree.Node, frame Rect) *Layout {
	l := New()
	l.Frame = frame
	if root != nil {
		l.Place(root, frame)
	}
	return l
}

// Place assigns r to n and recursively lays out n's children inside it,
// replacing any earlier assignment for n's subtree. It panics with an
// [*InvariantError] if n's subtree violates the size invariant.
func (l *Layout) Place(n *fstree.Node, r Rect) {
	l.forget(n)
	l.place(n, r)
}

func (l *Layout) place(n *fstree.Node, r Rect) {
	if r.Empty() {
		return
	}
	l.rects[n] = r
	if r.W <= MinSplit || r.H <= MinSplit {
		return
	}

	y := r.Y
	for _, row := range Rows(n, r) {
		x := r.X
		for _, it := range row.Items {
			l.place(it.Node, Rect{X: x, Y: y, W: it.Width, H: row.Height}.Inset(Margin))
			x += it.Width
		}
		y += row.Height
	}
}

func (l *Layout) forget(n *fstree.Node) {
	if len(l.rects) == 0 {
		return
	}
	fstree.Walk(n, func(m *fstree.Node) bool {
		delete(l.rects, m)
		return true
	})
}

// Rect returns the rectangle assigned to n and whether n was placed.
func (l *Layout) Rect(n *fstree.Node) (Rect, bool) {
	r, ok := l.rects[n]
	return r, ok
}

// Len returns the number of placed nodes.
func (l *Layout) Len() int { return len(l.rects) }

// Block is a placed node in drawing order.
type Block struct {
	Node  *fstree.Node
	Rect  Rect
	Depth int
}

// Blocks returns the placed nodes below and including root in pre-order, so
// parents come before the children drawn on top of them. Depth is relative to
// root.
func (l *Layout) Blocks(root *fstree.Node) []Block {
	var blocks []Block
	var visit func(n *fstree.Node, depth int)
	visit = func(n *fstree.Node, depth int) {
		r, ok := l.rects[n]
		if !ok {
			return
		}
		blocks = append(blocks, Block{Node: n, Rect: r, Depth: depth})
		for _, c := range n.Children {
			visit(c, depth+1)
		}
	}
	if root != nil {
		visit(root, 0)
	}
	return blocks
}
