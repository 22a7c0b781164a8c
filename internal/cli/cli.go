// Package cli implements the phylomovie command-line interface.
//
// This package provides commands for playing tree-morphing movies in
// the terminal, serving frames over HTTP, exporting snapshots and
// frames as images, and managing the movie library and layout cache.
// The CLI is built using cobra and supports verbose logging via the
// charmbracelet/log library.
//
// # Commands
//
// The main commands are:
//   - play: Animate a movie in the terminal
//   - serve: Serve layouts and frames over HTTP
//   - render: Export snapshots or frames as SVG, PDF, or PNG
//   - frame: Print the frame bundle at a progress value as JSON
//   - info: Summarize a movie file
//   - dot: Export tree topology as Graphviz DOT
//   - movies: Manage the stored movie library
//   - cache: Manage the layout cache
//   - config: Show the effective configuration
//
// # Logging
//
// All commands support --verbose (-v) for debug-level logging. Loggers
// are passed through context.Context to allow structured progress
// tracking.
package cli

import (
	"context"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/phylomovie/phylomovie/pkg/buildinfo"
	"github.com/phylomovie/phylomovie/pkg/cache"
	"github.com/phylomovie/phylomovie/pkg/errors"
	"github.com/phylomovie/phylomovie/pkg/movie"
	"github.com/phylomovie/phylomovie/pkg/movie/store"
	"github.com/phylomovie/phylomovie/pkg/pipeline"
	"github.com/phylomovie/phylomovie/pkg/settings"
)

// appName is the application name used for directories and display.
const appName = "phylomovie"

// Log levels exported for use in main.go.
const (
	LogDebug = log.DebugLevel
	LogInfo  = log.InfoLevel
)

// CLI holds shared state for all commands.
type CLI struct {
	Logger *log.Logger
	Config Config
}

// New creates a new CLI instance with a default logger and the config
// file loaded from its standard location.
func New(w io.Writer, level log.Level) *CLI {
	c := &CLI{Logger: newLogger(w, level)}
	c.Config = LoadConfig(configPath(), c.Logger)
	return c
}

// SetLogLevel updates the logger's level.
func (c *CLI) SetLogLevel(level log.Level) {
	c.Logger.SetLevel(level)
}

// RootCommand creates the root cobra command with all subcommands registered.
func (c *CLI) RootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:          appName,
		Short:        "Phylomovie animates sequences of phylogenetic trees",
		Long:         `Phylomovie plays a sequence of phylogenetic trees as a smooth radial animation, interpolating node positions between consecutive trees and mapping each tree back to its alignment window.`,
		Version:      buildinfo.Version,
		SilenceUsage: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			cmd.SetContext(withLogger(cmd.Context(), c.Logger))
		},
	}

	root.SetVersionTemplate(buildinfo.Template())

	root.AddCommand(c.playCommand())
	root.AddCommand(c.serveCommand())
	root.AddCommand(c.renderCommand())
	root.AddCommand(c.frameCommand())
	root.AddCommand(c.infoCommand())
	root.AddCommand(c.dotCommand())
	root.AddCommand(c.moviesCommand())
	root.AddCommand(c.cacheCommand())
	root.AddCommand(c.configCommand())
	root.AddCommand(c.completionCommand())

	return root
}

// loadMovie loads a movie from a file path, or from the movie library
// when the argument carries the "stored:" prefix or matches a stored
// movie ID.
func (c *CLI) loadMovie(ctx context.Context, arg string) (*movie.Data, error) {
	if id, ok := strings.CutPrefix(arg, "stored:"); ok {
		return c.loadStoredMovie(ctx, id)
	}

	f, err := os.Open(arg)
	if err != nil {
		if os.IsNotExist(err) {
			// Fall back to the library for bare IDs.
			if data, serr := c.loadStoredMovie(ctx, arg); serr == nil {
				return data, nil
			}
			return nil, errors.Wrap(errors.ErrCodeFileNotFound, err, "movie %q not found on disk or in the library", arg)
		}
		return nil, errors.Wrap(errors.ErrCodeFileNotFound, err, "opening movie file")
	}
	defer f.Close()

	data, err := movie.Decode(f)
	if err != nil {
		return nil, err
	}
	if data.FileName == "" {
		data.FileName = filepath.Base(arg)
	}
	return data, nil
}

func (c *CLI) loadStoredMovie(ctx context.Context, id string) (*movie.Data, error) {
	s, err := c.newStore(ctx)
	if err != nil {
		return nil, err
	}
	defer s.Close(ctx)

	data, err := s.Get(ctx, id)
	if err == nil || !errors.Is(err, errors.ErrCodeMovieNotFound) {
		return data, err
	}

	// Allow unique ID prefixes, as printed by "movies list".
	infos, lerr := s.List(ctx)
	if lerr != nil {
		return nil, err
	}
	match := ""
	for _, info := range infos {
		if strings.HasPrefix(info.ID, id) {
			if match != "" {
				return nil, errors.New(errors.ErrCodeInvalidInput, "movie ID prefix %q is ambiguous", id)
			}
			match = info.ID
		}
	}
	if match == "" {
		return nil, err
	}
	return s.Get(ctx, match)
}

// newPipeline builds a pipeline runner for a loaded movie, wiring the
// configured cache backend and the persisted appearance settings.
func (c *CLI) newPipeline(ctx context.Context, data *movie.Data, noCache bool) (*pipeline.Runner, error) {
	byteCache, err := c.newCache(ctx, noCache)
	if err != nil {
		c.Logger.Warn("cache backend unavailable, continuing without", "err", err)
		byteCache = cache.NewNullCache()
	}

	appearance := settings.DefaultAppearance()
	if s, err := settings.NewStore(settingsPath()); err == nil {
		if a, err := s.Appearance(); err == nil {
			appearance = a
		}
	}

	return pipeline.NewRunner(data, byteCache, nil, c.Logger, pipeline.Options{
		Width:      c.Config.Canvas.Width,
		Height:     c.Config.Canvas.Height,
		Appearance: appearance,
	})
}

func (c *CLI) newCache(ctx context.Context, noCache bool) (cache.Cache, error) {
	if noCache {
		return cache.NewNullCache(), nil
	}
	switch c.Config.Cache.Backend {
	case "none":
		return cache.NewNullCache(), nil
	case "redis":
		return cache.NewRedisCache(ctx, cache.RedisConfig{
			Addr:     c.Config.Cache.RedisAddr,
			Password: c.Config.Cache.RedisPassword,
			DB:       c.Config.Cache.RedisDB,
		})
	default:
		dir, err := cacheDir()
		if err != nil {
			return cache.NewNullCache(), nil
		}
		return cache.NewFileCache(dir)
	}
}

// newStore opens the configured movie library backend.
func (c *CLI) newStore(ctx context.Context) (store.Store, error) {
	if c.Config.Store.Backend == "mongo" {
		return store.NewMongoStore(ctx, store.MongoConfig{
			URI:        c.Config.Store.MongoURI,
			Database:   c.Config.Store.MongoDatabase,
			Collection: c.Config.Store.MongoCollection,
		})
	}
	return store.NewFileStore(c.Config.Store.Dir)
}

// cacheDir returns the cache directory using XDG standard (~/.cache/phylomovie/).
func cacheDir() (string, error) {
	if cacheHome := os.Getenv("XDG_CACHE_HOME"); cacheHome != "" {
		return filepath.Join(cacheHome, appName), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".cache", appName), nil
}

// configDir returns the configuration directory (~/.config/phylomovie/).
func configDir() string {
	if configHome := os.Getenv("XDG_CONFIG_HOME"); configHome != "" {
		return filepath.Join(configHome, appName)
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return appName
	}
	return filepath.Join(home, ".config", appName)
}

func configPath() string   { return filepath.Join(configDir(), "config.toml") }
func settingsPath() string { return filepath.Join(configDir(), "settings.json") }
