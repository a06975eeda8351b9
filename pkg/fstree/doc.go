// Package fstree provides the size-aggregated file tree that dirmap lays out.
//
// # Overview
//
// A [Node] is either a directory or a file. Every directory's Size equals the
// sum of its children's sizes, and children are ordered by Size descending
// (ties keep discovery order). These two invariants are established once, when
// the tree is built, and never change afterwards:
//
//   - [Scan] walks a real directory and builds a tree from it.
//   - [NewFile] and [NewDir] build trees by hand (tests, fixtures, imports).
//   - [ReadJSON] / [ImportJSON] restore a tree written by [ExportJSON].
//
// [Validate] checks both invariants and is run on every imported tree.
//
// # Identity
//
// Node.Path is the node's display identity. Scanned trees carry absolute
// filesystem paths; hand-built trees carry slash-separated paths rooted at the
// root's name. The treemap package keys its rectangles by *Node, not by path,
// so two nodes with the same path never collide.
//
// # Parents
//
// [Node.Parent] is a non-owning back reference used by interactive viewers to
// zoom out. Layout and hit-testing only ever walk downwards.
package fstree
