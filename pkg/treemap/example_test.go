package treemap_test

import (
	"fmt"

	"github.com/matzehuels/dirmap/pkg/fstree"
	"github.com/matzehuels/dirmap/pkg/treemap"
)

func ExampleCompute() {
	root := fstree.NewDir("downloads",
		fstree.NewFile("movie.mkv", 100),
		fstree.NewFile("album.zip", 50),
		fstree.NewFile("notes.txt", 50),
	)

	l := treemap.Compute(root, treemap.Rect{W: 200, H: 100})
	for _, b := range l.Blocks(root) {
		fmt.Println(b.Node.Name, b.Rect)
	}
	// Output:
	// downloads (0,0 200x100)
	// movie.mkv (2,2 196x46)
	// album.zip (2,52 96x46)
	// notes.txt (102,52 96x46)
}

func ExampleLayout_Resolve() {
	root := fstree.NewDir("downloads",
		fstree.NewFile("movie.mkv", 100),
		fstree.NewFile("album.zip", 50),
		fstree.NewFile("notes.txt", 50),
	)
	l := treemap.Compute(root, treemap.Rect{W: 200, H: 100})

	fmt.Println(l.Resolve(root, 150, 75).Path)
	fmt.Println(l.Resolve(root, 100, 75).Path)
	// Output:
	// downloads/notes.txt
	// downloads
}

func ExampleRows() {
	root := fstree.NewDir("d",
		fstree.NewFile("a", 100),
		fstree.NewFile("b", 50),
		fstree.NewFile("c", 50),
	)
	for _, row := range treemap.Rows(root, treemap.Rect{W: 200, H: 100}) {
		fmt.Printf("height %d:", row.Height)
		for _, it := range row.Items {
			fmt.Printf(" %s=%d", it.Node.Name, it.Width)
		}
		fmt.Println()
	}
	// Output:
	// height 50: a=200
	// height 50: b=100 c=100
}
