package cli

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/matzehuels/dirmap/pkg/bytesize"
	"github.com/matzehuels/dirmap/pkg/pipeline"
)

// renderFlags holds the output flags of the render command.
type renderFlags struct {
	output  string
	formats string
	width   int
	height  int
	popups  bool
	labels  bool
	scale   float64
}

// renderCommand creates the render command.
func (c *CLI) renderCommand() *cobra.Command {
	var (
		flags inputFlags
		rf    renderFlags
	)

	cmd := &cobra.Command{
		Use:   "render [dir|tree.json]",
		Short: "Render a treemap to SVG, PNG, PDF or JSON",
		Long: `Render a treemap to SVG, PNG, PDF or JSON.

The input is a directory to scan or a tree exported with 'scan -o'. Each file
becomes a rectangle whose area is proportional to its size; directories
contain the rectangles of their children, inset by a two pixel margin.

PDF output needs rsvg-convert (librsvg). SVG output can carry an interactive
info bar (--popups) that shows the block under the mouse.`,
		Example: `  dirmap render ~/Downloads
  dirmap render . -f svg,png --width 1920 --height 1080 --labels
  dirmap render tree.json -o map.pdf -f pdf`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			input := "."
			if len(args) == 1 {
				input = args[0]
			}
			opts := c.baseOptions(input, flags)
			if f := parseFormats(rf.formats); len(f) > 0 {
				opts.Formats = f
			}
			if cmd.Flags().Changed("width") {
				opts.Width = rf.width
			}
			if cmd.Flags().Changed("height") {
				opts.Height = rf.height
			}
			if cmd.Flags().Changed("popups") {
				opts.Popups = rf.popups
			}
			opts.Labels = rf.labels
			opts.Scale = rf.scale
			if err := opts.ValidateAndSetDefaults(); err != nil {
				return err
			}
			return c.runRender(cmd.Context(), input, opts, rf.output, flags.noCache)
		},
	}

	flags.register(cmd)
	cmd.Flags().StringVarP(&rf.output, "output", "o", "", "output file (single format) or base path (multiple)")
	cmd.Flags().StringVarP(&rf.formats, "format", "f", "", "output format(s): svg (default), png, pdf, json (comma-separated)")
	cmd.Flags().IntVar(&rf.width, "width", pipeline.DefaultWidth, "frame width in pixels")
	cmd.Flags().IntVar(&rf.height, "height", pipeline.DefaultHeight, "frame height in pixels")
	cmd.Flags().BoolVar(&rf.popups, "popups", false, "add a hover info bar to SVG output")
	cmd.Flags().BoolVar(&rf.labels, "labels", false, "write file names into blocks large enough to hold them")
	cmd.Flags().Float64Var(&rf.scale, "scale", pipeline.DefaultScale, "PNG scale factor")

	return cmd
}

func (c *CLI) runRender(ctx context.Context, input string, opts pipeline.Options, output string, noCache bool) error {
	runner, err := c.newRunner(ctx, noCache)
	if err != nil {
		return fmt.Errorf("initialize runner: %w", err)
	}
	defer runner.Close()

	spinner := newSpinnerWithContext(ctx, "Scanning "+input+"...")
	opts.OnDir = func(path string) { spinner.SetMessage("Scanning " + path) }
	spinner.Start()

	result, err := runner.Execute(ctx, opts)
	if err != nil {
		spinner.StopWithError("Render failed")
		return err
	}
	spinner.Stop()

	printSuccess("Rendered %s", StyleHighlight.Render(result.Snapshot.RootPath))
	printStats(result.Stats.Files, result.Stats.Dirs, result.Stats.TotalSize, result.CacheInfo.LoadHit)

	return writeArtifacts(artifactWriteParams{
		artifacts: result.Artifacts,
		formats:   opts.Formats,
		input:     input,
		output:    output,
		cacheHit:  result.CacheInfo.RenderHit,
	})
}

// artifactWriteParams describes rendered artifacts and where they go.
type artifactWriteParams struct {
	artifacts map[string][]byte
	formats   []string
	input     string
	output    string
	cacheHit  bool
}

// writeArtifacts writes each artifact to the path given by outputPaths.
func writeArtifacts(p artifactWriteParams) error {
	paths := outputPaths(p.input, p.output, p.formats)
	if p.cacheHit {
		printDetail("artifacts served from cache")
	}
	for _, format := range p.formats {
		data, ok := p.artifacts[format]
		if !ok {
			return fmt.Errorf("no %s artifact rendered", format)
		}
		path := paths[format]
		if err := os.WriteFile(path, data, 0644); err != nil {
			return fmt.Errorf("write %s: %w", path, err)
		}
		printFile(fmt.Sprintf("%s %s", path, StyleDim.Render("("+bytesize.Format(int64(len(data)))+")")))
	}
	return nil
}

// outputPaths maps each format to its output file.
//
// A single format with an explicit output is written there verbatim. Otherwise
// the output (minus a known format extension) or, without one, the input's
// base name serves as the base path and each format appends its extension.
// A JSON layout never overwrites the JSON tree it was rendered from.
func outputPaths(input, output string, formats []string) map[string]string {
	paths := make(map[string]string, len(formats))
	if output != "" && len(formats) == 1 {
		paths[formats[0]] = output
		return paths
	}

	base := basePath(output, input)
	for _, f := range formats {
		p := base + "." + f
		if filepath.Clean(p) == filepath.Clean(input) {
			p = base + ".layout." + f
		}
		paths[f] = p
	}
	return paths
}

// basePath derives the base output path. With an output, a known format
// extension is stripped; without one, the input's base name is used so that
// rendering a directory writes next to the current directory, not inside the
// scanned tree.
func basePath(output, input string) string {
	if output != "" {
		ext := filepath.Ext(output)
		if pipeline.ValidFormats[strings.TrimPrefix(ext, ".")] {
			return strings.TrimSuffix(output, ext)
		}
		return output
	}

	if isTreeFile(input) {
		return strings.TrimSuffix(input, filepath.Ext(input))
	}
	abs, err := filepath.Abs(input)
	if err != nil {
		abs = input
	}
	name := filepath.Base(abs)
	if name == string(filepath.Separator) || name == "." || name == "" {
		name = "root"
	}
	return name
}
