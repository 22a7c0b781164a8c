package cli

import (
	"fmt"
	"strconv"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/spf13/cobra"

	"github.com/phylomovie/phylomovie/pkg/msa"
)

// infoCommand creates the info command.
func (c *CLI) infoCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "info <movie.json | stored:ID>",
		Short: "Summarize a movie file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			logger := loggerFromContext(ctx)

			data, err := c.loadMovie(ctx, args[0])
			if err != nil {
				return err
			}
			hash, err := data.Hash()
			if err != nil {
				return err
			}

			anchors := data.FullTreeIndices()
			leaves := 0
			if data.TreeCount() > 0 {
				leaves = len(data.InterpolatedTrees[0].Leaves())
			}

			fmt.Println(StyleTitle.Render(data.Name()))
			printKeyValue("hash", hash[:12])
			printKeyValue("trees", strconv.Itoa(data.TreeCount()))
			printKeyValue("full trees", strconv.Itoa(len(anchors)))
			printKeyValue("leaves", strconv.Itoa(leaves))
			printKeyValue("window", fmt.Sprintf("size %d, step %d", data.WindowSize, data.WindowStepSize))
			if l := data.AlignmentLength(); l > 0 {
				printKeyValue("alignment", fmt.Sprintf("%d columns", l))
			}

			if len(anchors) > 1 {
				fmt.Println()
				fmt.Println(StyleDim.Render("Anchor pairs"))
				printAnchorTable(anchors, data.Distances.RobinsonFoulds, data.Distances.WeightedRobinsonFoulds,
					msa.NewMapper(data.WindowSize, data.WindowStepSize, data.AlignmentLength(), logger))
			}

			fmt.Println()
			printNextStep("Play it", fmt.Sprintf("%s play %s", appName, args[0]))
			return nil
		},
	}
}

func printAnchorTable(anchors []int, rf, wrf []float64, mapper *msa.Mapper) {
	headers := []string{"Pair", "Trees", "Window", "RF"}
	if len(wrf) > 0 {
		headers = append(headers, "wRF")
	}

	var rows [][]string
	for i := 0; i+1 < len(anchors); i++ {
		window := mapper.WindowFor(i)
		row := []string{
			strconv.Itoa(i),
			fmt.Sprintf("%d %s %d", anchors[i], iconArrow, anchors[i+1]),
			fmt.Sprintf("%d–%d", window.Start, window.End),
			distanceAt(rf, i),
		}
		if len(wrf) > 0 {
			row = append(row, distanceAt(wrf, i))
		}
		rows = append(rows, row)
	}

	t := table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(lipgloss.NewStyle().Foreground(colorDim)).
		Headers(headers...).
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == -1 {
				return lipgloss.NewStyle().Foreground(colorGray).Bold(true)
			}
			return lipgloss.NewStyle().Foreground(colorWhite)
		})
	fmt.Println(t.Render())
}

func distanceAt(distances []float64, i int) string {
	if i >= len(distances) {
		return "—"
	}
	return strconv.FormatFloat(distances[i], 'g', 4, 64)
}
