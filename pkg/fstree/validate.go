package fstree

import (
	derrors "github.com/matzehuels/dirmap/pkg/errors"
)

// Validate checks the tree invariants the treemap engine relies on:
//
//   - sizes are non-negative
//   - files have no children
//   - every directory's size is the sum of its children's sizes
//   - children are ordered by size, largest first
//   - every child's parent pointer refers back to its directory
//
// The first violation found in pre-order is returned as an INVALID_TREE error.
func Validate(root *Node) error {
	if root == nil {
		return derrors.New(derrors.ErrCodeInvalidTree, "tree has no root")
	}
	var err error
	Walk(root, func(n *Node) bool {
		if err != nil {
			return false
		}
		err = validateNode(n)
		return err == nil
	})
	return err
}

func validateNode(n *Node) error {
	if n.Size < 0 {
		return derrors.New(derrors.ErrCodeInvalidTree, "%s: negative size %d", n.Path, n.Size)
	}
	if !n.IsDir {
		if len(n.Children) > 0 {
			return derrors.New(derrors.ErrCodeInvalidTree, "%s: file has %d children", n.Path, len(n.Children))
		}
		return nil
	}

	var sum int64
	for i, c := range n.Children {
		if c == nil {
			return derrors.New(derrors.ErrCodeInvalidTree, "%s: nil child at index %d", n.Path, i)
		}
		if c.parent != n {
			return derrors.New(derrors.ErrCodeInvalidTree, "%s: child %q has a foreign parent", n.Path, c.Name)
		}
		if i > 0 && c.Size > n.Children[i-1].Size {
			return derrors.New(derrors.ErrCodeInvalidTree, "%s: children not sorted by size at %q", n.Path, c.Name)
		}
		sum += c.Size
	}
	if sum != n.Size {
		return derrors.New(derrors.ErrCodeInvalidTree, "%s: size %d does not match children total %d", n.Path, n.Size, sum)
	}
	return nil
}
