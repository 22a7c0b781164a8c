package cli

import (
	"fmt"
	"os"
	"strconv"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/spf13/cobra"

	"github.com/phylomovie/phylomovie/pkg/movie"
)

// moviesCommand creates the movies command group for managing the
// stored movie library.
func (c *CLI) moviesCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "movies",
		Short: "Manage the stored movie library",
	}

	cmd.AddCommand(c.moviesListCommand())
	cmd.AddCommand(c.moviesAddCommand())
	cmd.AddCommand(c.moviesRemoveCommand())

	return cmd
}

func (c *CLI) moviesListCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List stored movies",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			s, err := c.newStore(ctx)
			if err != nil {
				return err
			}
			defer s.Close(ctx)

			infos, err := s.List(ctx)
			if err != nil {
				return err
			}
			if len(infos) == 0 {
				printInfo("Library is empty")
				printNextStep("Add a movie", fmt.Sprintf("%s movies add <movie.json>", appName))
				return nil
			}

			rows := make([][]string, len(infos))
			for i, info := range infos {
				rows[i] = []string{
					shortID(info.ID),
					info.Name,
					strconv.Itoa(info.TreeCount),
					info.CreatedAt.Format("2006-01-02 15:04"),
				}
			}

			t := table.New().
				Border(lipgloss.RoundedBorder()).
				BorderStyle(lipgloss.NewStyle().Foreground(colorDim)).
				Headers("ID", "Name", "Trees", "Added").
				Rows(rows...).
				StyleFunc(func(row, col int) lipgloss.Style {
					if row == -1 {
						return lipgloss.NewStyle().Foreground(colorGray).Bold(true)
					}
					return lipgloss.NewStyle().Foreground(colorWhite)
				})
			fmt.Println(t.Render())
			return nil
		},
	}
}

func (c *CLI) moviesAddCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "add <movie.json>",
		Short: "Add a movie to the library",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			f, err := os.Open(args[0])
			if err != nil {
				return err
			}
			defer f.Close()

			data, err := movie.Decode(f)
			if err != nil {
				return err
			}

			s, err := c.newStore(ctx)
			if err != nil {
				return err
			}
			defer s.Close(ctx)

			id, err := s.Put(ctx, data)
			if err != nil {
				return err
			}

			printSuccess("Stored %s", StyleHighlight.Render(data.Name()))
			printDetail("ID: %s", id)
			printNextStep("Play it", fmt.Sprintf("%s play stored:%s", appName, shortID(id)))
			return nil
		},
	}
}

func (c *CLI) moviesRemoveCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "rm <id>",
		Short: "Remove a movie from the library",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			s, err := c.newStore(ctx)
			if err != nil {
				return err
			}
			defer s.Close(ctx)

			if err := s.Delete(ctx, args[0]); err != nil {
				return err
			}
			printSuccess("Removed %s", args[0])
			return nil
		},
	}
}

// shortID abbreviates content-hash IDs for display.
func shortID(id string) string {
	if len(id) <= 12 {
		return id
	}
	return id[:12]
}
