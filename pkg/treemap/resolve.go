package treemap

import "github.com/matzehuels/dirmap/pkg/fstree"

// Resolve returns the deepest node under root whose rectangle contains
// (x, y). Children are tried in order and the first hit is descended into;
// when no child contains the point the current node is returned. Resolve does
// not check the point against root's own rectangle.
func (l *Layout) Resolve(root *fstree.Node, x, y int) *fstree.Node {
	n := root
	for n != nil {
		next := l.hit(n.Children, x, y)
		if next == nil {
			return n
		}
		n = next
	}
	return nil
}

func (l *Layout) hit(children []*fstree.Node, x, y int) *fstree.Node {
	for _, c := range children {
		if r, ok := l.rects[c]; ok && r.Contains(x, y) {
			return c
		}
	}
	return nil
}

// Trail returns the chain of nodes from root down to the node Resolve would
// return for (x, y).
func (l *Layout) Trail(root *fstree.Node, x, y int) []*fstree.Node {
	var trail []*fstree.Node
	for n := root; n != nil; n = l.hit(n.Children, x, y) {
		trail = append(trail, n)
	}
	return trail
}
