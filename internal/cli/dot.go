package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/phylomovie/phylomovie/pkg/errors"
	"github.com/phylomovie/phylomovie/pkg/render/nodelink"
)

// dotCommand creates the dot command, which exports a tree's topology
// as a Graphviz node-link diagram.
func (c *CLI) dotCommand() *cobra.Command {
	var (
		treeIndex int
		detailed  bool
		outPath   string
		asSVG     bool
	)

	cmd := &cobra.Command{
		Use:   "dot <movie.json | stored:ID>",
		Short: "Export tree topology as Graphviz DOT",
		Long: `Dot exports the topology of one tree as a Graphviz node-link diagram,
for inspecting split structure independent of the radial geometry.
Node IDs are the stable entity keys, so diagrams of consecutive trees
can be compared by ID.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			data, err := c.loadMovie(ctx, args[0])
			if err != nil {
				return err
			}
			if treeIndex < 0 || treeIndex >= data.TreeCount() {
				return errors.New(errors.ErrCodeNotFound, "tree index %d out of range [0, %d)", treeIndex, data.TreeCount())
			}

			dot := nodelink.ToDOT(data.InterpolatedTrees[treeIndex], nodelink.Options{Detailed: detailed})

			out := []byte(dot)
			if asSVG {
				out, err = nodelink.RenderSVG(dot)
				if err != nil {
					return err
				}
			}

			if outPath == "" || outPath == "-" {
				fmt.Print(string(out))
				return nil
			}
			if err := os.WriteFile(outPath, out, 0644); err != nil {
				return err
			}
			printSuccess("Topology exported")
			printFile(outPath)
			return nil
		},
	}

	cmd.Flags().IntVar(&treeIndex, "tree", 0, "tree index to export")
	cmd.Flags().BoolVar(&detailed, "detailed", false, "include branch lengths and split counts")
	cmd.Flags().BoolVar(&asSVG, "svg", false, "render to SVG via Graphviz instead of printing DOT")
	cmd.Flags().StringVarP(&outPath, "out", "o", "", "output file (default stdout)")

	return cmd
}
