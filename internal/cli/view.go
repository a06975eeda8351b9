package cli

import (
	"context"
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/lucasb-eyer/go-colorful"
	"github.com/spf13/cobra"

	"github.com/matzehuels/dirmap/pkg/bytesize"
	"github.com/matzehuels/dirmap/pkg/fstree"
	"github.com/matzehuels/dirmap/pkg/render/palette"
	"github.com/matzehuels/dirmap/pkg/treemap"
)

// Each terminal cell covers cellW×cellH layout units, so margins and the
// minimum split size stay meaningful at terminal resolution.
const (
	cellW = 8
	cellH = 16
)

// viewCommand creates the interactive view command.
func (c *CLI) viewCommand() *cobra.Command {
	var flags inputFlags

	cmd := &cobra.Command{
		Use:   "view [dir|tree.json]",
		Short: "Explore a treemap interactively in the terminal",
		Long: `Explore a treemap interactively in the terminal.

Move the mouse to see the path and size of the block under the pointer.
Left click zooms into the hovered directory, right click or backspace zooms
back out, q quits.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			input := "."
			if len(args) == 1 {
				input = args[0]
			}
			return c.runView(cmd.Context(), input, flags)
		},
	}

	flags.register(cmd)
	return cmd
}

func (c *CLI) runView(ctx context.Context, input string, flags inputFlags) error {
	opts := c.baseOptions(input, flags)

	runner, err := c.newRunner(ctx, flags.noCache)
	if err != nil {
		return fmt.Errorf("initialize runner: %w", err)
	}
	defer runner.Close()

	spinner := newSpinnerWithContext(ctx, "Scanning "+input+"...")
	opts.OnDir = func(path string) { spinner.SetMessage("Scanning " + path) }
	spinner.Start()
	snap, err := runner.Load(ctx, opts)
	if err != nil {
		spinner.StopWithError("Scan failed")
		return err
	}
	spinner.Stop()

	p := tea.NewProgram(newViewModel(snap),
		tea.WithAltScreen(),
		tea.WithMouseAllMotion(),
		tea.WithContext(ctx),
	)
	_, err = p.Run()
	return err
}

// =============================================================================
// viewModel - Interactive treemap
// =============================================================================

var (
	viewStatusStyle = lipgloss.NewStyle().Foreground(colorWhite).Background(lipgloss.Color("236"))
	viewHintStyle   = lipgloss.NewStyle().Foreground(colorGray).Background(lipgloss.Color("236"))
)

type viewModel struct {
	snap   *fstree.Snapshot
	focus  *fstree.Node
	layout *treemap.Layout
	colors map[*fstree.Node]colorful.Color

	cols, rows int
	hovered    *fstree.Node
}

func newViewModel(snap *fstree.Snapshot) viewModel {
	return viewModel{
		snap:   snap,
		focus:  snap.Root,
		colors: palette.Assign(snap.Root),
	}
}

func (m viewModel) Init() tea.Cmd {
	return nil
}

func (m viewModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.cols, m.rows = msg.Width, msg.Height
		m.relayout()
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c", "esc":
			return m, tea.Quit
		case "backspace", "u":
			m.zoomOut()
		}
	case tea.MouseMsg:
		m.hovered = m.nodeAt(msg.X, msg.Y)
		if msg.Action != tea.MouseActionPress {
			break
		}
		switch msg.Button {
		case tea.MouseButtonLeft:
			m.zoomIn(msg.X, msg.Y)
		case tea.MouseButtonRight:
			m.zoomOut()
		}
	}
	return m, nil
}

// mapRows is the number of terminal rows the treemap occupies; the last
// row holds the status line.
func (m viewModel) mapRows() int {
	return max(m.rows-1, 0)
}

// relayout lays out the focus in the virtual frame of the current terminal.
func (m *viewModel) relayout() {
	frame := treemap.Rect{W: m.cols * cellW, H: m.mapRows() * cellH}
	m.layout = treemap.Compute(m.focus, frame)
	m.hovered = nil
}

// nodeAt resolves the center of cell (col, row) to the deepest node, or nil
// outside the treemap.
func (m viewModel) nodeAt(col, row int) *fstree.Node {
	if m.layout == nil || col < 0 || row < 0 || col >= m.cols || row >= m.mapRows() {
		return nil
	}
	x, y := col*cellW+cellW/2, row*cellH+cellH/2
	if r, ok := m.layout.Rect(m.focus); !ok || !r.Contains(x, y) {
		return nil
	}
	return m.layout.Resolve(m.focus, x, y)
}

// zoomIn focuses the child of the current focus on the way to the node under
// the cell, if that child is a directory with children.
func (m *viewModel) zoomIn(col, row int) {
	if m.layout == nil || m.nodeAt(col, row) == nil {
		return
	}
	trail := m.layout.Trail(m.focus, col*cellW+cellW/2, row*cellH+cellH/2)
	if len(trail) < 2 || !trail[1].IsDir || trail[1].IsLeaf() {
		return
	}
	m.focus = trail[1]
	m.relayout()
}

// zoomOut focuses the parent of the current focus.
func (m *viewModel) zoomOut() {
	if m.focus == m.snap.Root || m.focus.Parent() == nil {
		return
	}
	m.focus = m.focus.Parent()
	m.relayout()
}

func (m viewModel) View() string {
	if m.layout == nil || m.cols == 0 {
		return "loading..."
	}

	var b strings.Builder
	for row := 0; row < m.mapRows(); row++ {
		m.renderRow(&b, row)
		b.WriteByte('\n')
	}
	b.WriteString(m.statusLine())
	return b.String()
}

// renderRow writes one terminal row, merging runs of cells with the same
// node into a single styled span.
func (m viewModel) renderRow(b *strings.Builder, row int) {
	start := 0
	run := m.nodeAt(0, row)
	for col := 1; col <= m.cols; col++ {
		var n *fstree.Node
		if col < m.cols {
			n = m.nodeAt(col, row)
			if n == run {
				continue
			}
		}
		b.WriteString(m.cellStyle(run).Render(strings.Repeat(m.cellRune(run), col-start)))
		start, run = col, n
	}
}

func (m viewModel) cellRune(n *fstree.Node) string {
	if n != nil && m.hovered != nil && m.hovered.IsAncestorOf(n) {
		return "░"
	}
	return " "
}

func (m viewModel) cellStyle(n *fstree.Node) lipgloss.Style {
	c, ok := m.colors[n]
	if n == nil || !ok {
		return lipgloss.NewStyle()
	}
	return lipgloss.NewStyle().
		Background(lipgloss.Color(c.Hex())).
		Foreground(lipgloss.Color(palette.Text(c).Hex()))
}

// statusLine shows the hovered node, or the focus when nothing is hovered.
func (m viewModel) statusLine() string {
	n := m.hovered
	if n == nil {
		n = m.focus
	}
	kind := "file"
	if n.IsDir {
		kind = "dir"
	}
	info := fmt.Sprintf(" %s  %s  %.1f%% of %s  [%s]",
		n.Path,
		bytesize.Format(n.Size),
		bytesize.Percent(n.Size, m.focus.Size),
		bytesize.Compact(m.focus.Size),
		kind)
	hint := " click zoom · right-click/⌫ up · q quit "

	pad := m.cols - lipgloss.Width(info) - lipgloss.Width(hint)
	if pad < 0 {
		return viewStatusStyle.Render(truncate(info, m.cols))
	}
	return viewStatusStyle.Render(info+strings.Repeat(" ", pad)) + viewHintStyle.Render(hint)
}

// truncate shortens s to at most width cells, marking the cut with "…".
func truncate(s string, width int) string {
	if width <= 0 {
		return ""
	}
	r := []rune(s)
	if len(r) <= width {
		return s
	}
	return string(r[:width-1]) + "…"
}
