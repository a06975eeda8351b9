// Package treemap partitions a rectangle among the nodes of a size tree and
// answers which node lies under a point.
//
// # Layout
//
// [Compute] walks an [fstree.Node] tree top-down and assigns every node that
// fits a [Rect]. Children are packed into horizontal rows stacked along the
// parent's height. A row grows greedily in child order until adding the next
// child would make some item in the row taller than it is wide; the row is
// then closed and the rejected child starts the next one. Row heights are
// proportional to the bytes they hold, and item widths are allocated
// sequentially from what remains of the row so every row spans the full
// width:
//
//	row_height = round(row_bytes / remaining_bytes * remaining_height)
//	item_width = round(item_bytes / remaining_row_bytes * remaining_row_width)
//
// Rounding is half-to-even. After all rows are closed the remaining bytes and
// height must both be exactly zero; anything else is a bookkeeping defect and
// [Compute] panics with an [*InvariantError].
//
// Every child rectangle is inset by [Margin] units on each side so siblings
// are visually separated. Rectangles no larger than [MinSplit] in either
// dimension are placed but not subdivided, and rectangles with no area are not
// placed at all; the node and its whole subtree are then absent from the
// layout.
//
// # Resolution
//
// [Layout.Resolve] maps a point to the deepest placed node containing it,
// using the assigned rectangles as a spatial index. Points inside a margin
// resolve to the enclosing node.
//
// # Concurrency
//
// A Layout is a plain value keyed by node identity. It is safe for concurrent
// readers once [Compute] returns; the tree it was computed from must not be
// mutated while the layout is in use. A new frame size needs a new Layout.
package treemap
