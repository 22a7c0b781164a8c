package cli

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/phylomovie/phylomovie/pkg/errors"
	"github.com/phylomovie/phylomovie/pkg/render"
	"github.com/phylomovie/phylomovie/pkg/render/svg"
)

// Supported render output formats.
const (
	FormatSVG = "svg"
	FormatPDF = "pdf"
	FormatPNG = "png"
)

// renderCommand creates the render command.
func (c *CLI) renderCommand() *cobra.Command {
	var (
		treeIndex int
		progress  float64
		formats   string
		outDir    string
		noCache   bool
	)

	cmd := &cobra.Command{
		Use:   "render <movie.json | stored:ID>",
		Short: "Export snapshots or frames as SVG, PDF, or PNG",
		Long: `Render exports one tree of a movie, or one interpolated frame of a
transition, as an image. Pass --tree for a static snapshot or
--progress for an exact position on the movie timeline.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			logger := loggerFromContext(ctx)

			if cmd.Flags().Changed("tree") && cmd.Flags().Changed("progress") {
				return errors.New(errors.ErrCodeInvalidInput, "--tree and --progress are mutually exclusive")
			}

			data, err := c.loadMovie(ctx, args[0])
			if err != nil {
				return err
			}
			runner, err := c.newPipeline(ctx, data, noCache)
			if err != nil {
				return err
			}
			defer runner.Close()

			a := runner.Appearance()
			opts := []svg.Option{
				svg.WithSize(c.Config.Canvas.Width, c.Config.Canvas.Height),
				svg.WithStrokeWidth(a.StrokeWidth),
				svg.WithFontSize(a.FontSize),
			}

			spin := newSpinnerWithContext(ctx, "Computing layout...")
			spin.Start()

			var (
				image []byte
				base  string
			)
			if cmd.Flags().Changed("progress") {
				result, err := runner.FrameAt(ctx, progress)
				if err != nil {
					spin.Stop()
					return err
				}
				if result.Static {
					image = svg.RenderLayout(result.Data, opts...)
					base = fmt.Sprintf("%s-tree%03d", data.Name(), result.TreeIndex)
				} else {
					image = svg.RenderFrame(result.Frame, opts...)
					base = fmt.Sprintf("%s-%03d-%03d-t%.2f", data.Name(), result.FromIndex, result.ToIndex, result.Frame.T)
				}
			} else {
				ld, err := runner.LayerData(ctx, treeIndex)
				if err != nil {
					spin.Stop()
					return err
				}
				image = svg.RenderLayout(ld, opts...)
				base = fmt.Sprintf("%s-tree%03d", data.Name(), treeIndex)
			}
			spin.Stop()

			prog := newProgress(logger)
			written, err := writeFormats(image, filepath.Join(outDir, base), parseFormats(formats))
			if err != nil {
				return err
			}
			prog.done(fmt.Sprintf("Rendered %d file(s)", len(written)))

			printSuccess("Render complete")
			for _, path := range written {
				printFile(path)
			}
			return nil
		},
	}

	cmd.Flags().IntVar(&treeIndex, "tree", 0, "tree index to render")
	cmd.Flags().Float64Var(&progress, "progress", 0, "movie progress in [0,1] to render")
	cmd.Flags().StringVarP(&formats, "format", "f", FormatSVG, "comma-separated output formats (svg,pdf,png)")
	cmd.Flags().StringVarP(&outDir, "out", "o", ".", "output directory")
	cmd.Flags().BoolVar(&noCache, "no-cache", false, "disable the layout cache")

	return cmd
}

// parseFormats parses a comma-separated format string into a slice.
func parseFormats(s string) []string {
	if s == "" {
		return []string{FormatSVG}
	}
	return strings.Split(s, ",")
}

// writeFormats writes the SVG image in every requested format, deriving
// PDF and PNG via rsvg-convert.
func writeFormats(image []byte, base string, formats []string) ([]string, error) {
	var written []string
	for _, format := range formats {
		format = strings.TrimSpace(strings.ToLower(format))
		var (
			out []byte
			err error
		)
		switch format {
		case FormatSVG:
			out = image
		case FormatPDF:
			out, err = render.ToPDF(image)
		case FormatPNG:
			out, err = render.ToPNG(image, 2.0)
		default:
			return written, errors.New(errors.ErrCodeUnsupported, "unsupported format %q (svg, pdf, png)", format)
		}
		if err != nil {
			return written, err
		}

		path := base + "." + format
		if err := os.WriteFile(path, out, 0644); err != nil {
			return written, err
		}
		written = append(written, path)
	}
	return written, nil
}
