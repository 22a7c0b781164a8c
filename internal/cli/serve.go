package cli

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/spf13/cobra"

	"github.com/phylomovie/phylomovie/pkg/movie/store"
	"github.com/phylomovie/phylomovie/pkg/server"
)

// serveCommand creates the serve command.
func (c *CLI) serveCommand() *cobra.Command {
	var (
		addr    string
		noCache bool
		noStore bool
	)

	cmd := &cobra.Command{
		Use:   "serve <movie.json | stored:ID>",
		Short: "Serve layouts and frames over HTTP",
		Long: `Serve exposes a movie to external renderers over HTTP:

  GET  /api/movie               movie metadata
  GET  /api/frame?progress=P    frame bundle at progress P
  GET  /api/static/{index}      layer data of one tree
  GET  /api/msa-window/{index}  alignment window of a tree
  GET  /api/movies              stored movie library
  POST /api/movies              store a movie`,
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

			var movies store.Store
			if !noStore {
				s, err := c.newStore(ctx)
				if err != nil {
					logger.Warn("movie store unavailable, store endpoints disabled", "err", err)
				} else {
					movies = s
					defer s.Close(ctx)
				}
			}

			srv := &http.Server{
				Addr:              addr,
				Handler:           server.New(runner, movies, logger).Handler(),
				ReadHeaderTimeout: 5 * time.Second,
			}

			errCh := make(chan error, 1)
			go func() {
				logger.Info("serving", "addr", addr, "movie", data.Name(), "trees", data.TreeCount())
				errCh <- srv.ListenAndServe()
			}()

			select {
			case <-ctx.Done():
				shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
				defer cancel()
				if err := srv.Shutdown(shutdownCtx); err != nil {
					return err
				}
				logger.Info("server stopped")
				return nil
			case err := <-errCh:
				if errors.Is(err, http.ErrServerClosed) {
					return nil
				}
				return err
			}
		},
	}

	cmd.Flags().StringVar(&addr, "addr", c.Config.Serve.Addr, "listen address")
	cmd.Flags().BoolVar(&noCache, "no-cache", false, "disable the layout cache")
	cmd.Flags().BoolVar(&noStore, "no-store", false, "disable the movie store endpoints")

	return cmd
}
