package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/phylomovie/phylomovie/pkg/errors"
)

// frameCommand creates the frame command, which prints the frame bundle
// at a progress value as JSON. External renderers use this for one-shot
// inspection of what the HTTP /api/frame endpoint would serve.
func (c *CLI) frameCommand() *cobra.Command {
	var (
		progress float64
		outPath  string
		noCache  bool
	)

	cmd := &cobra.Command{
		Use:   "frame <movie.json | stored:ID>",
		Short: "Print the frame bundle at a progress value as JSON",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			if progress < 0 || progress > 1 {
				return errors.New(errors.ErrCodeInvalidProgress, "progress must be in [0,1], got %v", progress)
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

			bundle, err := runner.FrameBundle(ctx, progress)
			if err != nil {
				return err
			}

			if outPath == "" || outPath == "-" {
				fmt.Println(string(bundle))
				return nil
			}
			if err := os.WriteFile(outPath, bundle, 0644); err != nil {
				return err
			}
			printSuccess("Frame written")
			printFile(outPath)
			return nil
		},
	}

	cmd.Flags().Float64VarP(&progress, "progress", "p", 0, "movie progress in [0,1]")
	cmd.Flags().StringVarP(&outPath, "out", "o", "", "output file (default stdout)")
	cmd.Flags().BoolVar(&noCache, "no-cache", false, "disable the layout cache")

	return cmd
}
