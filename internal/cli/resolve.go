package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/matzehuels/dirmap/pkg/bytesize"
	derrors "github.com/matzehuels/dirmap/pkg/errors"
	"github.com/matzehuels/dirmap/pkg/fstree"
	"github.com/matzehuels/dirmap/pkg/treemap"
)

// resolveCommand creates the resolve command.
func (c *CLI) resolveCommand() *cobra.Command {
	var (
		flags         inputFlags
		x, y          int
		width, height int
		asJSON        bool
	)

	cmd := &cobra.Command{
		Use:   "resolve [dir|tree.json]",
		Short: "Print the node under a point of the treemap",
		Long: `Print the node under a point of the treemap.

The treemap is laid out for the given frame and the point is resolved to the
deepest block containing it, from the root down. Points in a directory's
margin resolve to the directory itself.`,
		Example: `  dirmap resolve ~/Downloads --x 300 --y 120
  dirmap resolve tree.json --x 10 --y 10 --width 800 --height 600 --json`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			input := "."
			if len(args) == 1 {
				input = args[0]
			}
			opts := c.baseOptions(input, flags)
			if cmd.Flags().Changed("width") {
				opts.Width = width
			}
			if cmd.Flags().Changed("height") {
				opts.Height = height
			}

			runner, err := c.newRunner(cmd.Context(), flags.noCache)
			if err != nil {
				return fmt.Errorf("initialize runner: %w", err)
			}
			defer runner.Close()

			snap, err := runner.Load(cmd.Context(), opts)
			if err != nil {
				return err
			}
			l, err := runner.ComputeLayout(cmd.Context(), snap.Root, opts)
			if err != nil {
				return err
			}
			return resolvePoint(cmd.Context(), os.Stdout, l, snap.Root, x, y, asJSON)
		},
	}

	flags.register(cmd)
	cmd.Flags().IntVar(&x, "x", 0, "x coordinate in pixels")
	cmd.Flags().IntVar(&y, "y", 0, "y coordinate in pixels")
	cmd.Flags().IntVar(&width, "width", 0, "frame width (default from config)")
	cmd.Flags().IntVar(&height, "height", 0, "frame height (default from config)")
	cmd.Flags().BoolVar(&asJSON, "json", false, "print the trail as JSON")

	return cmd
}

// resolvedNode is the JSON form of one step of a trail.
type resolvedNode struct {
	Path  string `json:"path"`
	Size  int64  `json:"size"`
	Human string `json:"human"`
	Dir   bool   `json:"dir"`
	X     int    `json:"x"`
	Y     int    `json:"y"`
	W     int    `json:"width"`
	H     int    `json:"height"`
}

func newResolvedNode(l *treemap.Layout, n *fstree.Node) resolvedNode {
	r, _ := l.Rect(n)
	return resolvedNode{
		Path:  n.Path,
		Size:  n.Size,
		Human: bytesize.Format(n.Size),
		Dir:   n.IsDir,
		X:     r.X,
		Y:     r.Y,
		W:     r.W,
		H:     r.H,
	}
}

// resolvePoint writes the trail from root to the node under (x, y). A point
// outside the laid out root is a NOT_FOUND error.
func resolvePoint(ctx context.Context, w io.Writer, l *treemap.Layout, root *fstree.Node, x, y int, asJSON bool) error {
	logger := loggerFromContext(ctx)

	r, ok := l.Rect(root)
	if !ok || !r.Contains(x, y) {
		return derrors.New(derrors.ErrCodeNotFound, "no block at (%d, %d) in frame %v", x, y, l.Frame)
	}
	trail := l.Trail(root, x, y)
	logger.Debug("resolved point", "x", x, "y", y, "depth", len(trail)-1)

	if asJSON {
		out := make([]resolvedNode, len(trail))
		for i, n := range trail {
			out[i] = newResolvedNode(l, n)
		}
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(out)
	}

	for i, n := range trail {
		rect, _ := l.Rect(n)
		name := n.Name
		if i == 0 {
			name = n.Path
		}
		if n.IsDir {
			name += "/"
		}
		line := fmt.Sprintf("%s%s  %s  %s",
			strings.Repeat("  ", i),
			StyleValue.Render(name),
			StyleNumber.Render(bytesize.Format(n.Size)),
			StyleDim.Render(rect.String()))
		if _, err := fmt.Fprintln(w, line); err != nil {
			return err
		}
	}
	return nil
}
