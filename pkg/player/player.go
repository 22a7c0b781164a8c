// Package player drives playback of a tree movie: it owns the timeline
// clock, maps progress to tree-pair segments, and hands interpolated
// frame bundles to a renderer.
//
// The package is renderer-agnostic. Anything that can draw a frame
// bundle (a terminal UI, an SVG writer, an HTTP response) implements
// Renderer; anything that can produce laid-out trees by index
// implements LayoutProvider (normally the pipeline with its caches).
package player

import (
	"context"

	"github.com/phylomovie/phylomovie/pkg/layout"
	"github.com/phylomovie/phylomovie/pkg/morph"
)

// Renderer consumes frames produced by the runner.
//
// Frame bundles are immutable once handed over; implementations must
// not retain or mutate them past the call.
type Renderer interface {
	// RenderFrame draws an interpolated frame bundle.
	RenderFrame(ctx context.Context, frame *morph.Frame) error

	// RenderStatic draws the layout of a single tree, used for snap
	// rendering when scrubbing lands on (or within epsilon of) a tree.
	RenderStatic(ctx context.Context, treeIndex int, data *layout.LayerData) error

	// Resize propagates a container size change. The caller is
	// responsible for invalidating layout caches.
	Resize(width, height int)

	// Destroy releases renderer resources.
	Destroy()
}

// LayoutProvider produces layer data for tree indices. Implementations
// are expected to cache; the runner calls this on every frame.
type LayoutProvider interface {
	// TreeCount reports the number of trees in the movie.
	TreeCount() int

	// LayerData returns the laid-out geometry records of a tree.
	LayerData(ctx context.Context, treeIndex int) (*layout.LayerData, error)
}
