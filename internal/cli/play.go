package cli

import (
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/phylomovie/phylomovie/pkg/player"
	"github.com/phylomovie/phylomovie/pkg/settings"
)

// playCommand creates the play command.
func (c *CLI) playCommand() *cobra.Command {
	var (
		segDur   time.Duration
		pauseDur time.Duration
		speed    float64
		noCache  bool
	)

	cmd := &cobra.Command{
		Use:   "play <movie.json | stored:ID>",
		Short: "Animate a movie in the terminal",
		Long: `Play animates a tree-morphing movie in the terminal: a progress bar,
the current transition and its stage, and the alignment window of the
nearest full tree.

Keys:
  space        play / pause
  ←/→          previous / next tree
  p/n          previous / next full tree
  0-9          seek to 0%..90%
  +/-          faster / slower
  t            cycle branch transformation
  q            quit`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			logger := loggerFromContext(ctx)

			data, err := c.loadMovie(ctx, args[0])
			if err != nil {
				return err
			}
			runner, err := c.newPipeline(ctx, data, noCache)
			if err != nil {
				return err
			}
			defer runner.Close()

			var prefs *settings.Store
			if s, err := settings.NewStore(settingsPath()); err == nil {
				prefs = s
			} else {
				logger.Debug("settings store unavailable", "err", err)
			}

			timeline := player.NewTimeline(data.TreeCount(), segDur, pauseDur)
			if speed != 1 {
				if err := timeline.SetSpeed(speed, time.Now()); err != nil {
					return err
				}
			}

			model := newPlayModel(runner, timeline, prefs, c.Config.Playback.FPS, logger)
			_, err = tea.NewProgram(model, tea.WithContext(ctx)).Run()
			return err
		},
	}

	cmd.Flags().DurationVar(&segDur, "segment", c.Config.Playback.SegmentDuration.Duration, "duration of one tree transition")
	cmd.Flags().DurationVar(&pauseDur, "pause", c.Config.Playback.PauseDuration.Duration, "pause between transitions")
	cmd.Flags().Float64Var(&speed, "speed", 1, "playback speed multiplier")
	cmd.Flags().BoolVar(&noCache, "no-cache", false, "disable the layout cache")

	return cmd
}
