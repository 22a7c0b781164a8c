package cli

import (
	"io"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/charmbracelet/log"
)

func TestLoadConfigMissingFile(t *testing.T) {
	cfg := LoadConfig(filepath.Join(t.TempDir(), "config.toml"), log.New(io.Discard))
	if cfg != DefaultConfig() {
		t.Errorf("missing file should yield defaults, got %+v", cfg)
	}
}

func TestLoadConfigOverrides(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	content := `
[playback]
segment_duration = "3s"
pause_duration = "250ms"
fps = 24

[cache]
backend = "redis"
redis_addr = "cache.internal:6379"

[serve]
addr = ":9000"
`
	if err := os.WriteFile(path, []byte(content), 0600); err != nil {
		t.Fatal(err)
	}

	cfg := LoadConfig(path, log.New(io.Discard))
	if cfg.Playback.SegmentDuration.Duration != 3*time.Second {
		t.Errorf("segment duration = %v", cfg.Playback.SegmentDuration)
	}
	if cfg.Playback.PauseDuration.Duration != 250*time.Millisecond {
		t.Errorf("pause duration = %v", cfg.Playback.PauseDuration)
	}
	if cfg.Playback.FPS != 24 {
		t.Errorf("fps = %d", cfg.Playback.FPS)
	}
	if cfg.Cache.Backend != "redis" || cfg.Cache.RedisAddr != "cache.internal:6379" {
		t.Errorf("cache = %+v", cfg.Cache)
	}
	if cfg.Serve.Addr != ":9000" {
		t.Errorf("serve addr = %q", cfg.Serve.Addr)
	}
	// Untouched sections keep their defaults.
	if cfg.Canvas != DefaultConfig().Canvas {
		t.Errorf("canvas = %+v, want defaults", cfg.Canvas)
	}
	if cfg.Store.Backend != "file" {
		t.Errorf("store backend = %q, want file", cfg.Store.Backend)
	}
}

func TestLoadConfigMalformed(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	if err := os.WriteFile(path, []byte("playback = [not toml"), 0600); err != nil {
		t.Fatal(err)
	}

	cfg := LoadConfig(path, log.New(io.Discard))
	if cfg != DefaultConfig() {
		t.Error("malformed file should fall back to defaults")
	}
}

func TestDurationRoundTrip(t *testing.T) {
	var d duration
	if err := d.UnmarshalText([]byte("1500ms")); err != nil {
		t.Fatalf("UnmarshalText: %v", err)
	}
	if d.Duration != 1500*time.Millisecond {
		t.Errorf("duration = %v", d.Duration)
	}
	text, err := d.MarshalText()
	if err != nil {
		t.Fatalf("MarshalText: %v", err)
	}
	if string(text) != "1.5s" {
		t.Errorf("text = %q", text)
	}
}
