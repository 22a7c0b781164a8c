// Package cache provides byte caches and cache keys for the layout pipeline.
//
// Two layers of caching are used by phylomovie:
//
//   - A bounded in-memory LRU ([LRU]) holding decoded layout records for the
//     trees the player touches most often. This is the hot path during
//     playback and scrubbing.
//   - A pluggable byte cache ([Cache]) for serialized layouts and frame
//     bundles, with file, Redis, and null backends. This lets the HTTP
//     frame server share computed layouts across processes.
//
// Cache keys are produced by a [Keyer] so that every facet that affects a
// layout (container size, branch transformation, angle extent, rotation,
// node size) is part of the key. Changing a facet therefore misses the
// cache instead of serving stale geometry.
package cache

import (
	"context"
	"time"
)

// TTL values for the different cached artifact kinds.
const (
	// TTLLayout is the byte-cache lifetime for serialized layouts.
	TTLLayout = 24 * time.Hour

	// TTLFrame is the byte-cache lifetime for serialized frame bundles.
	TTLFrame = time.Hour

	// TTLMovie is the byte-cache lifetime for validated movie documents.
	TTLMovie = 7 * 24 * time.Hour
)

// Cache is the interface for byte-cache backends.
type Cache interface {
	// Get retrieves a value. The second return value reports whether the
	// key was present and unexpired.
	Get(ctx context.Context, key string) ([]byte, bool, error)

	// Set stores a value with the given TTL. A zero TTL means no expiry.
	Set(ctx context.Context, key string, data []byte, ttl time.Duration) error

	// Delete removes a value. Deleting a missing key is not an error.
	Delete(ctx context.Context, key string) error

	// Close releases backend resources.
	Close() error
}

// LayoutKeyOpts carries every parameter that affects layout geometry.
// All fields participate in the cache key.
type LayoutKeyOpts struct {
	TreeIndex       int     `json:"tree_index"`
	Transform       string  `json:"transform"`
	AngleExtentDeg  float64 `json:"angle_extent_deg"`
	RotationDeg     float64 `json:"rotation_deg"`
	ContainerWidth  float64 `json:"container_width"`
	ContainerHeight float64 `json:"container_height"`
	NodeSize        float64 `json:"node_size"`
}

// FrameKeyOpts carries the parameters that identify an interpolated frame.
type FrameKeyOpts struct {
	FromIndex int           `json:"from_index"`
	ToIndex   int           `json:"to_index"`
	T         float64       `json:"t"`
	Layout    LayoutKeyOpts `json:"layout"`
}

// Keyer generates cache keys for the different artifact kinds.
type Keyer interface {
	// MovieKey generates a key for a validated movie document.
	MovieKey(movieHash string) string

	// LayoutKey generates a key for a laid-out tree.
	LayoutKey(movieHash string, opts LayoutKeyOpts) string

	// FrameKey generates a key for an interpolated frame bundle.
	FrameKey(movieHash string, opts FrameKeyOpts) string
}

// DefaultKeyer is the standard key generator.
// Keys embed a SHA-256 hash of the options so any facet change produces a
// distinct key.
type DefaultKeyer struct{}

// NewDefaultKeyer creates the standard key generator.
func NewDefaultKeyer() Keyer {
	return &DefaultKeyer{}
}

// MovieKey generates a key for a validated movie document.
func (k *DefaultKeyer) MovieKey(movieHash string) string {
	return "movie:" + movieHash
}

// LayoutKey generates a key for a laid-out tree.
func (k *DefaultKeyer) LayoutKey(movieHash string, opts LayoutKeyOpts) string {
	return hashKey("layout", movieHash, opts)
}

// FrameKey generates a key for an interpolated frame bundle.
func (k *DefaultKeyer) FrameKey(movieHash string, opts FrameKeyOpts) string {
	return hashKey("frame", movieHash, opts)
}
