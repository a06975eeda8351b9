package fstree

import (
	"cmp"
	"path"
	"slices"
)

// Node is a directory or a file in a size tree.
type Node struct {
	Name     string
	Path     string
	Size     int64
	IsDir    bool
	Children []*Node

	parent *Node
}

// Parent returns the directory containing n, or nil for the root.
func (n *Node) Parent() *Node { return n.parent }

// IsLeaf reports whether n has no children.
func (n *Node) IsLeaf() bool { return len(n.Children) == 0 }

// Depth returns the number of ancestors of n.
func (n *Node) Depth() int {
	d := 0
	for p := n.parent; p != nil; p = p.parent {
		d++
	}
	return d
}

// Root returns the topmost ancestor of n.
func (n *Node) Root() *Node {
	r := n
	for r.parent != nil {
		r = r.parent
	}
	return r
}

// IsAncestorOf reports whether n is other or one of its ancestors.
func (n *Node) IsAncestorOf(other *Node) bool {
	for p := other; p != nil; p = p.parent {
		if p == n {
			return true
		}
	}
	return false
}

// NewFile returns a leaf node of the given size. Negative sizes are clamped
// to zero.
func NewFile(name string, size int64) *Node {
	return &Node{Name: name, Path: name, Size: max(size, 0)}
}

// NewDir returns a directory holding children. Its size is the sum of the
// children's sizes and the children are stably sorted by size, largest first.
// Children are re-parented and their paths rewritten below name.
func NewDir(name string, children ...*Node) *Node {
	d := &Node{Name: name, Path: name, IsDir: true}
	d.adopt(children)
	d.repath()
	return d
}

// adopt attaches children to d, aggregating sizes and sorting. It is shared by
// the hand builders, the scanner and the JSON importer.
func (d *Node) adopt(children []*Node) {
	var total int64
	for _, c := range children {
		c.parent = d
		total += c.Size
	}
	sortBySize(children)
	d.Children = children
	d.Size = total
}

func (d *Node) repath() {
	for _, c := range d.Children {
		c.Path = path.Join(d.Path, c.Name)
		c.repath()
	}
}

// sortBySize orders nodes largest first, keeping input order for equal sizes.
func sortBySize(nodes []*Node) {
	slices.SortStableFunc(nodes, func(a, b *Node) int {
		return cmp.Compare(b.Size, a.Size)
	})
}

// Walk visits n and its descendants in pre-order. Returning false from fn
// skips the node's children.
func Walk(n *Node, fn func(*Node) bool) {
	if n == nil || !fn(n) {
		return
	}
	for _, c := range n.Children {
		Walk(c, fn)
	}
}

// Find returns the node with the given path, or nil.
func Find(root *Node, p string) *Node {
	var found *Node
	Walk(root, func(n *Node) bool {
		if found != nil {
			return false
		}
		if n.Path == p {
			found = n
			return false
		}
		return true
	})
	return found
}

// Stats summarizes a tree.
type Stats struct {
	Files     int
	Dirs      int
	EmptyDirs int
	ZeroFiles int
	TotalSize int64
	MaxDepth  int
}

// Summarize computes Stats for the tree rooted at root.
func Summarize(root *Node) Stats {
	var s Stats
	if root == nil {
		return s
	}
	s.TotalSize = root.Size
	base := root.Depth()
	Walk(root, func(n *Node) bool {
		s.MaxDepth = max(s.MaxDepth, n.Depth()-base)
		switch {
		case n.IsDir:
			s.Dirs++
			if len(n.Children) == 0 {
				s.EmptyDirs++
			}
		default:
			s.Files++
			if n.Size == 0 {
				s.ZeroFiles++
			}
		}
		return true
	})
	return s
}

// Largest returns up to limit files in the tree, biggest first.
func Largest(root *Node, limit int) []*Node {
	var files []*Node
	Walk(root, func(n *Node) bool {
		if !n.IsDir {
			files = append(files, n)
		}
		return true
	})
	sortBySize(files)
	if limit >= 0 && len(files) > limit {
		files = files[:limit]
	}
	return files
}
