// Package pipeline turns a loaded movie into render-ready geometry.
//
// The pipeline owns the movie-wide layout invariants and the two cache
// layers in front of the radial layout:
//
//  1. Transform: the selected branch-length transformation, applied to
//     deep copies of the movie's trees.
//  2. Layout: the radial tidy layout, scaled against the movie-wide
//     maximum radius so all trees share one coordinate scale and one
//     extension ring.
//  3. Layer data: flat keyed records (nodes, links, extensions, labels)
//     the interpolator and renderers consume.
//
// Results are cached in a bounded in-memory LRU for the playback hot
// path and, when a byte cache is configured, as serialized JSON shared
// across processes. Cache keys carry every layout-affecting facet, so
// appearance changes that only restyle never touch the layout caches.
package pipeline

import (
	"github.com/phylomovie/phylomovie/pkg/settings"
)

// Default container dimensions used when the caller does not size the
// pipeline explicitly.
const (
	DefaultWidth  = 800.0
	DefaultHeight = 600.0
)

// Options configures a pipeline runner.
type Options struct {
	// Width and Height are the container dimensions in pixels.
	Width  float64
	Height float64

	// Appearance supplies the layout-affecting parameters (branch
	// transformation, angle extent, rotation, node size). A zero value
	// means defaults.
	Appearance settings.Appearance

	// LRUCapacity bounds the in-memory layout cache; zero uses the
	// cache package default.
	LRUCapacity int
}

func (o *Options) setDefaults() error {
	if o.Width <= 0 {
		o.Width = DefaultWidth
	}
	if o.Height <= 0 {
		o.Height = DefaultHeight
	}
	if o.Appearance == (settings.Appearance{}) {
		o.Appearance = settings.DefaultAppearance()
	}
	return o.Appearance.Validate()
}
