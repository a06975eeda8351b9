package cli

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/matzehuels/dirmap/pkg/bytesize"
	"github.com/matzehuels/dirmap/pkg/fstree"
)

// Command output goes to stdout. Logs and the spinner write to stderr so
// that piping a command's output stays clean.

var (
	colorAccent = lipgloss.Color("36")  // teal
	colorOK     = lipgloss.Color("35")  // green
	colorWarn   = lipgloss.Color("220") // amber
	colorFail   = lipgloss.Color("167") // soft red
	colorLink   = lipgloss.Color("75")  // light blue
	colorWhite  = lipgloss.Color("255")
	colorGray   = lipgloss.Color("245")
	colorDim    = lipgloss.Color("240")
)

var (
	// StyleHighlight for paths and values the user asked about.
	StyleHighlight = lipgloss.NewStyle().Foreground(colorAccent)

	// StyleLink for URLs.
	StyleLink = lipgloss.NewStyle().Foreground(colorLink).Underline(true)

	// StyleDim for secondary text.
	StyleDim = lipgloss.NewStyle().Foreground(colorDim)

	// StyleValue for names.
	StyleValue = lipgloss.NewStyle().Foreground(colorWhite)

	// StyleNumber for sizes and counts.
	StyleNumber = lipgloss.NewStyle().Foreground(colorAccent)

	styleSpinner = lipgloss.NewStyle().Foreground(colorAccent)
	styleCommand = lipgloss.NewStyle().Foreground(colorLink)
)

// mark is the leading glyph of a status line.
type mark struct {
	glyph string
	style lipgloss.Style
}

var (
	markOK   = mark{"✓", lipgloss.NewStyle().Foreground(colorOK)}
	markFail = mark{"✗", lipgloss.NewStyle().Foreground(colorFail)}
	markWarn = mark{"!", lipgloss.NewStyle().Foreground(colorWarn)}
	markInfo = mark{"›", lipgloss.NewStyle().Foreground(colorGray)}
)

func (m mark) line(msg string) string {
	return m.style.Render(m.glyph) + " " + msg
}

func printSuccess(format string, args ...any) {
	fmt.Println(markOK.line(fmt.Sprintf(format, args...)))
}

func printError(format string, args ...any) {
	fmt.Println(markFail.line(fmt.Sprintf(format, args...)))
}

func printInfo(format string, args ...any) {
	fmt.Println(markInfo.line(fmt.Sprintf(format, args...)))
}

// printDetail prints an indented secondary line.
func printDetail(format string, args ...any) {
	fmt.Println("  " + StyleDim.Render(fmt.Sprintf(format, args...)))
}

// printFile prints a written output file.
func printFile(path string) {
	fmt.Println("  " + StyleDim.Render("→") + " " + StyleValue.Render(path))
}

// printNextStep suggests a follow-up command.
func printNextStep(description, cmd string) {
	fmt.Println(StyleDim.Render(description+":") + " " + styleCommand.Render(cmd))
}

func printNewline() {
	fmt.Println()
}

// statsLine formats counts and total size as "3 files · 1 dirs · 1.0 KiB · fresh".
func statsLine(files, dirs int, size int64, cached bool) string {
	origin := "fresh"
	if cached {
		origin = "cached"
	}
	return strings.Join([]string{
		fmt.Sprintf("%d files", files),
		fmt.Sprintf("%d dirs", dirs),
		bytesize.Format(size),
		origin,
	}, " · ")
}

func printStats(files, dirs int, size int64, cached bool) {
	fmt.Println("  " + StyleDim.Render(statsLine(files, dirs, size, cached)))
}

// snapshotSummary describes a loaded tree: where it came from, how big it
// is and what the scan had to leave out.
func snapshotSummary(snap *fstree.Snapshot, cached bool) []string {
	lines := []string{
		markOK.line("Scanned " + StyleHighlight.Render(snap.RootPath)),
		"  " + StyleDim.Render(statsLine(snap.Files, snap.Dirs, snap.Root.Size, cached)),
	}
	if snap.Skipped > 0 {
		lines = append(lines, "  "+StyleDim.Render(fmt.Sprintf("%d entries skipped (symlinks, special files, exclusions)", snap.Skipped)))
	}
	if n := len(snap.Errors); n > 0 {
		lines = append(lines, markWarn.line(markWarn.style.Render(fmt.Sprintf("%d entries could not be read (run with -v for details)", n))))
	}
	return lines
}

func printSnapshot(snap *fstree.Snapshot, cached bool) {
	for _, l := range snapshotSummary(snap, cached) {
		fmt.Println(l)
	}
}
