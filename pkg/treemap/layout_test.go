package treemap

import (
	"errors"
	"fmt"
	"math/rand/v2"
	"reflect"
	"testing"

	"github.com/matzehuels/dirmap/pkg/fstree"
)

func threeFiles() (*fstree.Node, []*fstree.Node) {
	root := fstree.NewDir("root",
		fstree.NewFile("a", 100),
		fstree.NewFile("b", 50),
		fstree.NewFile("c", 50),
	)
	return root, root.Children
}

func TestRowsWorkedExample(t *testing.T) {
	root, files := threeFiles()

	rows := Rows(root, Rect{W: 200, H: 100})
	if len(rows) != 2 {
		t.Fatalf("got %d rows, want 2", len(rows))
	}

	first, second := rows[0], rows[1]
	if first.Height != 50 || len(first.Items) != 1 || first.Items[0].Node != files[0] || first.Items[0].Width != 200 {
		t.Errorf("first row = %+v, want [a:200] at height 50", first)
	}
	if second.Height != 50 || len(second.Items) != 2 {
		t.Fatalf("second row = %+v, want two items at height 50", second)
	}
	for i, it := range second.Items {
		if it.Node != files[i+1] || it.Width != 100 {
			t.Errorf("second row item %d = %s:%d, want %s:100", i, it.Node.Name, it.Width, files[i+1].Name)
		}
	}
	if first.Bytes+second.Bytes != 200 {
		t.Errorf("row bytes sum to %d, want 200", first.Bytes+second.Bytes)
	}
}

func TestComputeWorkedExample(t *testing.T) {
	root, files := threeFiles()
	l := Compute(root, Rect{W: 200, H: 100})

	want := map[*fstree.Node]Rect{
		root:     {X: 0, Y: 0, W: 200, H: 100},
		files[0]: {X: 2, Y: 2, W: 196, H: 46},
		files[1]: {X: 2, Y: 52, W: 96, H: 46},
		files[2]: {X: 102, Y: 52, W: 96, H: 46},
	}
	if l.Len() != len(want) {
		t.Errorf("Len() = %d, want %d", l.Len(), len(want))
	}
	for n, r := range want {
		got, ok := l.Rect(n)
		if !ok || got != r {
			t.Errorf("Rect(%s) = %v, %v; want %v", n.Name, got, ok, r)
		}
	}
}

func TestRowsSingleItemAlwaysFits(t *testing.T) {
	// Tall and narrow: every row holds one item even though each is taller
	// than wide.
	root := fstree.NewDir("root", fstree.NewFile("a", 50), fstree.NewFile("b", 50))
	rows := Rows(root, Rect{W: 10, H: 100})
	if len(rows) != 2 {
		t.Fatalf("got %d rows, want 2", len(rows))
	}
	for i, row := range rows {
		if row.Height != 50 || len(row.Items) != 1 || row.Items[0].Width != 10 {
			t.Errorf("row %d = %+v, want one item 10 wide at height 50", i, row)
		}
	}
}

func TestRowsRoundHalfToEven(t *testing.T) {
	root := fstree.NewDir("root", fstree.NewFile("a", 3), fstree.NewFile("b", 1))
	rows := Rows(root, Rect{W: 1000, H: 10})
	if len(rows) != 1 {
		t.Fatalf("got %d rows, want 1", len(rows))
	}
	row := rows[0]
	if row.Items[0].Width != 750 || row.Items[1].Width != 250 {
		t.Errorf("widths = %d, %d; want 750, 250", row.Items[0].Width, row.Items[1].Width)
	}

	root = fstree.NewDir("root", fstree.NewFile("a", 3), fstree.NewFile("b", 1))
	rows = Rows(root, Rect{W: 10, H: 1000})
	var heights []int
	for _, r := range rows {
		heights = append(heights, r.Height)
	}
	if !reflect.DeepEqual(heights, []int{750, 250}) {
		t.Errorf("heights = %v, want [750 250]", heights)
	}

	// A quarter of 10 is 2.5.
	root = fstree.NewDir("root", fstree.NewFile("a", 1), fstree.NewFile("b", 1), fstree.NewFile("c", 1), fstree.NewFile("d", 1))
	rows = Rows(root, Rect{W: 2, H: 10})
	if rows[0].Height != 2 {
		t.Errorf("first row height = %d, want 2 (2.5 rounds to even)", rows[0].Height)
	}
}

func TestComputeZeroSizeChild(t *testing.T) {
	root := fstree.NewDir("root", fstree.NewFile("data", 100), fstree.NewFile("empty", 0))
	l := Compute(root, Rect{W: 200, H: 100})

	empty := root.Children[1]
	if _, ok := l.Rect(empty); ok {
		t.Error("zero-size file must not be placed")
	}
	if got := l.Resolve(root, 150, 50); got == empty {
		t.Error("zero-size file must not be hit")
	}
	if l.Len() != 2 {
		t.Errorf("Len() = %d, want 2", l.Len())
	}
}

func TestComputeSmallFrame(t *testing.T) {
	root, _ := threeFiles()
	l := Compute(root, Rect{W: 3, H: 3})

	if r, ok := l.Rect(root); !ok || r != (Rect{W: 3, H: 3}) {
		t.Errorf("Rect(root) = %v, %v; want (0,0 3x3)", r, ok)
	}
	if l.Len() != 1 {
		t.Errorf("Len() = %d, want 1", l.Len())
	}
}

func TestComputeEmptyFrame(t *testing.T) {
	root, _ := threeFiles()
	for _, frame := range []Rect{{W: 0, H: 100}, {W: 100, H: 0}, {W: -5, H: 10}} {
		if l := Compute(root, frame); l.Len() != 0 {
			t.Errorf("Compute(%v) placed %d nodes, want 0", frame, l.Len())
		}
	}
}

func TestComputeZeroSizeDirectory(t *testing.T) {
	root := fstree.NewDir("root", fstree.NewFile("a", 0), fstree.NewFile("b", 0))
	l := Compute(root, Rect{W: 100, H: 100})
	if l.Len() != 1 {
		t.Errorf("Len() = %d, want 1 (only the directory)", l.Len())
	}
}

func TestComputeIdempotent(t *testing.T) {
	root := randomTree(rand.New(rand.NewPCG(7, 11)), "root", 4)
	frame := Rect{W: 1440, H: 900}

	a := Compute(root, frame).Blocks(root)
	b := Compute(root, frame).Blocks(root)
	if !reflect.DeepEqual(a, b) {
		t.Error("two layouts of the same tree differ")
	}
}

func TestPlaceReplacesSubtree(t *testing.T) {
	root, files := threeFiles()
	l := Compute(root, Rect{W: 200, H: 100})

	l.Place(root, Rect{W: 3, H: 3})
	if _, ok := l.Rect(files[0]); ok {
		t.Error("re-placing into a small rect should drop the old child rects")
	}
	if l.Len() != 1 {
		t.Errorf("Len() = %d, want 1", l.Len())
	}
}

func TestComputeInvariantPanics(t *testing.T) {
	tests := []struct {
		name  string
		build func() *fstree.Node
	}{
		{
			name: "size larger than children",
			build: func() *fstree.Node {
				d := fstree.NewDir("d", fstree.NewFile("a", 10))
				d.Size = 20
				return d
			},
		},
		{
			name: "size smaller than children",
			build: func() *fstree.Node {
				d := fstree.NewDir("d", fstree.NewFile("a", 10), fstree.NewFile("b", 10))
				d.Size = 5
				return d
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			defer func() {
				r := recover()
				err, ok := r.(error)
				if !ok {
					t.Fatalf("recovered %v, want an error", r)
				}
				var inv *InvariantError
				if !errors.As(err, &inv) {
					t.Fatalf("recovered %T, want *InvariantError", r)
				}
				if inv.Path != "d" {
					t.Errorf("Path = %q, want %q", inv.Path, "d")
				}
			}()
			Compute(tt.build(), Rect{W: 100, H: 100})
		})
	}
}

// randomTree builds a tree with a mix of files, empty files and nested
// directories.
func randomTree(rng *rand.Rand, name string, depth int) *fstree.Node {
	n := rng.IntN(8)
	children := make([]*fstree.Node, 0, n)
	for i := range n {
		childName := fmt.Sprintf("%s-%d", name, i)
		switch {
		case depth > 0 && rng.IntN(3) == 0:
			children = append(children, randomTree(rng, childName, depth-1))
		case rng.IntN(6) == 0:
			children = append(children, fstree.NewFile(childName, 0))
		default:
			children = append(children, fstree.NewFile(childName, rng.Int64N(1<<20)))
		}
	}
	return fstree.NewDir(name, children...)
}

func TestLayoutProperties(t *testing.T) {
	rng := rand.New(rand.NewPCG(1, 2))
	frames := []Rect{
		{W: 1440, H: 900},
		{W: 200, H: 100},
		{X: 13, Y: 7, W: 97, H: 301},
		{W: 20, H: 2000},
	}

	for i := range 40 {
		root := randomTree(rng, "root", 4)
		if err := fstree.Validate(root); err != nil {
			t.Fatalf("random tree %d invalid: %v", i, err)
		}
		frame := frames[i%len(frames)]
		l := Compute(root, frame)

		fstree.Walk(root, func(n *fstree.Node) bool {
			r, placed := l.Rect(n)
			if !placed {
				fstree.Walk(n, func(d *fstree.Node) bool {
					if _, ok := l.Rect(d); ok {
						t.Errorf("tree %d: %s is placed under absent %s", i, d.Path, n.Path)
					}
					return true
				})
				return false
			}

			var siblings []Rect
			for _, c := range n.Children {
				cr, ok := l.Rect(c)
				if !ok {
					continue
				}
				if c.Size == 0 {
					t.Errorf("tree %d: zero-size %s is placed", i, c.Path)
				}
				if !cr.Within(r) {
					t.Errorf("tree %d: %s %v escapes parent %v", i, c.Path, cr, r)
				}
				for _, s := range siblings {
					if cr.Overlaps(s) {
						t.Errorf("tree %d: %s %v overlaps a sibling %v", i, c.Path, cr, s)
					}
				}
				siblings = append(siblings, cr)
			}

			if r.W > MinSplit && r.H > MinSplit && n.Size > 0 && !n.IsLeaf() {
				checkRowsCover(t, n, r)
			}
			return true
		})
	}
}

func checkRowsCover(t *testing.T, n *fstree.Node, r Rect) {
	t.Helper()
	var height, area int
	var bytes int64
	for _, row := range Rows(n, r) {
		width := 0
		for _, it := range row.Items {
			width += it.Width
		}
		if width != r.W {
			t.Errorf("%s: row widths sum to %d, want %d", n.Path, width, r.W)
		}
		height += row.Height
		bytes += row.Bytes
		area += row.Height * width
	}
	if height != r.H || bytes != n.Size || area != r.Area() {
		t.Errorf("%s: rows cover height %d bytes %d area %d, want %d %d %d",
			n.Path, height, bytes, area, r.H, n.Size, r.Area())
	}
}

func TestRowsWithoutChildren(t *testing.T) {
	frame := Rect{W: 100, H: 50}
	tests := []struct {
		name string
		node *fstree.Node
	}{
		{"file", fstree.NewFile("f", 500)},
		{"empty dir", fstree.NewDir("d")},
		{"dir of empty files", fstree.NewDir("d", fstree.NewFile("a", 0), fstree.NewFile("b", 0))},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if rows := Rows(tt.node, frame); rows != nil {
				t.Errorf("Rows() = %v, want nil", rows)
			}
		})
	}
}

func TestBlocks(t *testing.T) {
	root := fstree.NewDir("root",
		fstree.NewDir("sub", fstree.NewFile("x", 60), fstree.NewFile("y", 40)),
		fstree.NewFile("z", 0),
	)
	l := Compute(root, Rect{W: 400, H: 300})
	blocks := l.Blocks(root)

	var names []string
	for _, b := range blocks {
		names = append(names, fmt.Sprintf("%s@%d", b.Node.Name, b.Depth))
	}
	want := []string{"root@0", "sub@1", "x@2", "y@2"}
	if !reflect.DeepEqual(names, want) {
		t.Errorf("Blocks() = %v, want %v", names, want)
	}
	if got := l.Blocks(nil); got != nil {
		t.Errorf("Blocks(nil) = %v, want nil", got)
	}
}
