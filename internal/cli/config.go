package cli

import (
	"fmt"
	"os"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"
)

// Config is the TOML configuration file (~/.config/phylomovie/config.toml).
// Every field has a sensible default; a missing file means defaults.
type Config struct {
	Playback PlaybackConfig `toml:"playback"`
	Canvas   CanvasConfig   `toml:"canvas"`
	Cache    CacheConfig    `toml:"cache"`
	Store    StoreConfig    `toml:"store"`
	Serve    ServeConfig    `toml:"serve"`
}

// PlaybackConfig holds timeline defaults.
type PlaybackConfig struct {
	SegmentDuration duration `toml:"segment_duration"`
	PauseDuration   duration `toml:"pause_duration"`
	FPS             int      `toml:"fps"`
}

// CanvasConfig holds the virtual canvas dimensions layouts are scaled to.
type CanvasConfig struct {
	Width  float64 `toml:"width"`
	Height float64 `toml:"height"`
}

// CacheConfig selects the layout cache backend.
type CacheConfig struct {
	// Backend is "file", "redis", or "none".
	Backend       string `toml:"backend"`
	RedisAddr     string `toml:"redis_addr"`
	RedisPassword string `toml:"redis_password"`
	RedisDB       int    `toml:"redis_db"`
}

// StoreConfig selects the movie library backend.
type StoreConfig struct {
	// Backend is "file" or "mongo".
	Backend         string `toml:"backend"`
	Dir             string `toml:"dir"`
	MongoURI        string `toml:"mongo_uri"`
	MongoDatabase   string `toml:"mongo_database"`
	MongoCollection string `toml:"mongo_collection"`
}

// ServeConfig holds HTTP server defaults.
type ServeConfig struct {
	Addr string `toml:"addr"`
}

// DefaultConfig returns the built-in configuration.
func DefaultConfig() Config {
	return Config{
		Playback: PlaybackConfig{
			SegmentDuration: duration{2 * time.Second},
			PauseDuration:   duration{500 * time.Millisecond},
			FPS:             60,
		},
		Canvas: CanvasConfig{Width: 800, Height: 600},
		Cache:  CacheConfig{Backend: "file", RedisAddr: "localhost:6379"},
		Store: StoreConfig{
			Backend:         "file",
			MongoURI:        "mongodb://localhost:27017",
			MongoDatabase:   "phylomovie",
			MongoCollection: "movies",
		},
		Serve: ServeConfig{Addr: "localhost:8723"},
	}
}

// LoadConfig reads the config file on top of the defaults. A missing
// file is not an error; a malformed one is logged and ignored so a bad
// edit never locks the user out of the CLI.
func LoadConfig(path string, logger *log.Logger) Config {
	cfg := DefaultConfig()

	raw, err := os.ReadFile(path)
	if err != nil {
		if !os.IsNotExist(err) {
			logger.Warn("reading config file", "path", path, "err", err)
		}
		return cfg
	}

	if _, err := toml.Decode(string(raw), &cfg); err != nil {
		logger.Warn("malformed config file, using defaults", "path", path, "err", err)
		return DefaultConfig()
	}
	return cfg
}

// configCommand creates the config inspection command.
func (c *CLI) configCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Show the effective configuration",
		Long: `Config prints the effective configuration as TOML: the built-in
defaults overlaid with the config file. The output can be saved as a
starting point for the config file itself.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return toml.NewEncoder(cmd.OutOrStdout()).Encode(c.Config)
		},
	}

	cmd.AddCommand(c.configPathCommand())

	return cmd
}

// configPathCommand creates the "config path" subcommand.
func (c *CLI) configPathCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "path",
		Short: "Print the config file path",
		RunE: func(cmd *cobra.Command, args []string) error {
			fmt.Println(configPath())
			return nil
		},
	}
}

// duration wraps time.Duration so TOML files can spell durations as
// strings like "2s" or "500ms".
type duration struct {
	time.Duration
}

func (d *duration) UnmarshalText(text []byte) error {
	parsed, err := time.ParseDuration(string(text))
	if err != nil {
		return err
	}
	d.Duration = parsed
	return nil
}

func (d duration) MarshalText() ([]byte, error) {
	return []byte(d.Duration.String()), nil
}
