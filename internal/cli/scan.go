package cli

import (
	"context"
	"fmt"
	"path/filepath"
	"strconv"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/spf13/cobra"

	"github.com/matzehuels/dirmap/pkg/bytesize"
	"github.com/matzehuels/dirmap/pkg/fstree"
)

// scanCommand creates the scan command.
func (c *CLI) scanCommand() *cobra.Command {
	var (
		flags   inputFlags
		output  string
		top     int
		minSize string
	)

	cmd := &cobra.Command{
		Use:   "scan [dir]",
		Short: "Scan a directory and list its largest files",
		Long: `Scan a directory and list its largest files.

The scan follows real directories only: symlinks, devices and sockets are
skipped. Unreadable entries are reported and left out. Use -o to export the
tree as JSON; every other command accepts such a file in place of a directory.

Scans are cached for an hour; use --refresh to force a rescan.`,
		Example: `  dirmap scan ~/Downloads
  dirmap scan . -x node_modules/ -x '*.o' --top 20 --min-size 10M
  dirmap scan /var/log -o logs.json`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			dir := "."
			if len(args) == 1 {
				dir = args[0]
			}
			var min int64
			if minSize != "" {
				n, err := bytesize.Parse(minSize)
				if err != nil {
					return err
				}
				min = n
			}
			return c.runScan(cmd.Context(), dir, flags, output, top, min)
		},
	}

	flags.register(cmd)
	cmd.Flags().StringVarP(&output, "output", "o", "", "export the scanned tree as JSON")
	cmd.Flags().IntVarP(&top, "top", "n", defaultTop, "number of largest files to list (0 to disable)")
	cmd.Flags().StringVar(&minSize, "min-size", "", "only list files at least this large (e.g. 500K, 1.5GB)")

	return cmd
}

func (c *CLI) runScan(ctx context.Context, dir string, flags inputFlags, output string, top int, minSize int64) error {
	opts := c.baseOptions(dir, flags)

	runner, err := c.newRunner(ctx, flags.noCache)
	if err != nil {
		return fmt.Errorf("initialize runner: %w", err)
	}
	defer runner.Close()

	spinner := newSpinnerWithContext(ctx, "Scanning "+dir+"...")
	opts.OnDir = func(path string) { spinner.SetMessage("Scanning " + path) }
	spinner.Start()

	prog := newProgress(c.Logger)
	snap, cached, err := runner.LoadWithCacheInfo(ctx, opts)
	if err != nil {
		spinner.StopWithError("Scan failed")
		return err
	}
	spinner.Stop()
	prog.done("scan finished", "files", snap.Files, "dirs", snap.Dirs)

	printSnapshot(snap, cached)

	if top > 0 {
		if t := largestTable(snap, top, minSize); t != "" {
			printNewline()
			fmt.Println(t)
		}
	}

	if output != "" {
		if err := fstree.ExportJSON(snap, output); err != nil {
			return err
		}
		printNewline()
		printSuccess("Exported tree")
		printFile(output)
	}

	printNewline()
	printNextStep("Render it", fmt.Sprintf("%s render %s", appName, dir))
	return nil
}

// largestTable renders the limit largest files of at least minSize bytes as
// a table of size, share of the total and path relative to the root. It
// returns "" if no file qualifies.
func largestTable(snap *fstree.Snapshot, limit int, minSize int64) string {
	total := snap.Root.Size
	var rows [][]string
	for i, f := range fstree.Largest(snap.Root, limit) {
		if f.Size < minSize || f.Size == 0 {
			break
		}
		rel, err := filepath.Rel(snap.Root.Path, f.Path)
		if err != nil {
			rel = f.Path
		}
		rows = append(rows, []string{
			strconv.Itoa(i + 1),
			bytesize.Format(f.Size),
			fmt.Sprintf("%.1f%%", bytesize.Percent(f.Size, total)),
			rel,
		})
	}
	if len(rows) == 0 {
		return ""
	}

	headerStyle := lipgloss.NewStyle().Foreground(colorGray).Bold(true)
	t := table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(lipgloss.NewStyle().Foreground(colorDim)).
		Headers("#", "Size", "Share", "Path").
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			base := lipgloss.NewStyle().Padding(0, 1)
			switch {
			case row == -1: // header
				return headerStyle.Padding(0, 1)
			case col == 0 || col == 2:
				return base.Foreground(colorDim).Align(lipgloss.Right)
			case col == 1:
				return base.Foreground(colorAccent).Align(lipgloss.Right)
			default:
				return base.Foreground(colorWhite)
			}
		})
	return t.Render()
}
