package treemap

import (
	"fmt"
	"math"

	"github.com/matzehuels/dirmap/pkg/fstree"
)

// Item is one child within a row together with its allocated width.
type Item struct {
	Node  *fstree.Node
	Width int
}

// Row is a horizontal band of siblings.
type Row struct {
	Height int
	Bytes  int64
	Items  []Item
}

// InvariantError reports that row construction did not consume exactly the
// node's bytes and height. It is raised with panic, never returned: it means
// the input tree broke the size invariant or the packing has a defect.
type InvariantError struct {
	Path            string
	RemainingBytes  int64
	RemainingHeight int
}

func (e *InvariantError) Error() string {
	return fmt.Sprintf("treemap: %s: rows left %d bytes and %d units of height unassigned",
		e.Path, e.RemainingBytes, e.RemainingHeight)
}

// Rows packs the children of n into rows spanning r.W and stacking to r.H.
// Zero-size children are left out. A node with no bytes yields no rows.
//
// Rows panics with an [*InvariantError] if the rows do not account for all of
// n.Size and r.H.
func Rows(n *fstree.Node, r Rect) []Row {
	if n.Size == 0 || len(n.Children) == 0 {
		return nil
	}

	p := packer{node: n, remBytes: n.Size, remH: r.H, width: r.W}
	var (
		rows    []Row
		pending []*fstree.Node
		current Row
	)
	for _, c := range n.Children {
		if c.Size == 0 {
			continue
		}
		candidate := append(pending[:len(pending):len(pending)], c)
		if row, ok := p.fit(candidate); ok {
			pending, current = candidate, row
			continue
		}
		rows = append(rows, p.close(current))
		pending = []*fstree.Node{c}
		current, _ = p.fit(pending)
	}
	if len(pending) > 0 {
		rows = append(rows, p.close(current))
	}

	if p.remBytes != 0 || p.remH != 0 {
		panic(p.invariantError())
	}
	return rows
}

type packer struct {
	node     *fstree.Node
	remBytes int64
	remH     int
	width    int
}

// fit lays out items as a single row against the unconsumed budget. It fails
// when a multi-item row leaves some item taller than wide. A single item
// always fits.
func (p *packer) fit(items []*fstree.Node) (Row, bool) {
	var rowBytes int64
	for _, it := range items {
		rowBytes += it.Size
	}
	if rowBytes > p.remBytes {
		panic(p.invariantError())
	}

	row := Row{
		Height: share(rowBytes, p.remBytes, p.remH),
		Bytes:  rowBytes,
		Items:  make([]Item, len(items)),
	}
	restBytes, restW := rowBytes, p.width
	for i, it := range items {
		w := share(it.Size, restBytes, restW)
		if len(items) > 1 && row.Height > w && w > 0 {
			return Row{}, false
		}
		row.Items[i] = Item{Node: it, Width: w}
		restBytes -= it.Size
		restW -= w
	}
	return row, true
}

func (p *packer) close(row Row) Row {
	p.remBytes -= row.Bytes
	p.remH -= row.Height
	return row
}

func (p *packer) invariantError() *InvariantError {
	return &InvariantError{Path: p.node.Path, RemainingBytes: p.remBytes, RemainingHeight: p.remH}
}

// share returns round(part/whole*extent), rounding half to even.
func share(part, whole int64, extent int) int {
	return int(math.RoundToEven(float64(part) / float64(whole) * float64(extent)))
}
