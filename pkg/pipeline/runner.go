package pipeline

import (
	"context"
	"encoding/json"
	"math"
	"sync"
	"time"

	"github.com/charmbracelet/log"

	"github.com/phylomovie/phylomovie/pkg/cache"
	"github.com/phylomovie/phylomovie/pkg/errors"
	"github.com/phylomovie/phylomovie/pkg/layout"
	"github.com/phylomovie/phylomovie/pkg/morph"
	"github.com/phylomovie/phylomovie/pkg/movie"
	"github.com/phylomovie/phylomovie/pkg/observability"
	"github.com/phylomovie/phylomovie/pkg/player"
	"github.com/phylomovie/phylomovie/pkg/settings"
	"github.com/phylomovie/phylomovie/pkg/tree"
)

// Runner computes and caches layer data for one movie. It implements
// player.LayoutProvider, so it plugs directly into the animation
// runner, and serves scrubbed frames for the HTTP server and the frame
// command.
//
// Multiple goroutines may use the same Runner; the mutable layout state
// (appearance facets, container size, derived globals) is guarded by a
// mutex and the caches are safe themselves.
type Runner struct {
	Cache  cache.Cache
	Keyer  cache.Keyer
	Logger *log.Logger

	data      *movie.Data
	movieHash string

	mu         sync.Mutex
	width      float64
	height     float64
	appearance settings.Appearance

	// Derived per (transform, container, extent): the transformed tree
	// copies, the movie-wide unscaled maximum radius, and the shared
	// extension ring radius.
	transformed     []*tree.Node
	globalMaxRadius float64
	extensionRadius float64

	lru *cache.LRU
}

// NewRunner builds a pipeline runner for a validated movie.
// A nil byte cache disables cross-process caching; a nil keyer uses the
// default key scheme.
func NewRunner(data *movie.Data, c cache.Cache, keyer cache.Keyer, logger *log.Logger, opts Options) (*Runner, error) {
	if data == nil || data.TreeCount() == 0 {
		return nil, errors.New(errors.ErrCodeInvalidMovie, "pipeline requires a loaded movie")
	}
	if err := opts.setDefaults(); err != nil {
		return nil, err
	}
	if c == nil {
		c = cache.NewNullCache()
	}
	if keyer == nil {
		keyer = cache.NewDefaultKeyer()
	}
	if logger == nil {
		logger = log.Default()
	}
	hash, err := data.Hash()
	if err != nil {
		return nil, err
	}

	r := &Runner{
		Cache:      c,
		Keyer:      keyer,
		Logger:     logger,
		data:       data,
		movieHash:  hash,
		width:      opts.Width,
		height:     opts.Height,
		appearance: opts.Appearance,
		lru:        cache.NewLRU(opts.LRUCapacity, "layout"),
	}
	r.rebuildLocked()
	return r, nil
}

// Movie returns the underlying movie data.
func (r *Runner) Movie() *movie.Data { return r.data }

// MovieHash returns the movie's content hash.
func (r *Runner) MovieHash() string { return r.movieHash }

// TreeCount reports the number of trees in the movie.
func (r *Runner) TreeCount() int { return r.data.TreeCount() }

// Appearance returns the active appearance parameters.
func (r *Runner) Appearance() settings.Appearance {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.appearance
}

// ExtensionRadius returns the movie-wide extension ring radius under
// the current facets. All trees share it so labels never pump between
// frames.
func (r *Runner) ExtensionRadius() float64 {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.extensionRadius
}

// SetAppearance switches the appearance parameters, invalidating the
// in-memory layout cache only when a layout facet actually changed.
func (r *Runner) SetAppearance(a settings.Appearance) error {
	if err := a.Validate(); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()

	invalidates := r.appearance.InvalidatesLayout(a)
	r.appearance = a
	if invalidates {
		r.lru.Clear()
		r.rebuildLocked()
		r.Logger.Debug("layout facets changed, caches invalidated",
			"transform", a.BranchTransformation,
			"angle", a.LayoutAngleDegrees,
			"rotation", a.LayoutRotationDegrees)
	}
	return nil
}

// Resize changes the container dimensions and invalidates layouts.
func (r *Runner) Resize(width, height float64) {
	if width <= 0 || height <= 0 {
		return
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if width == r.width && height == r.height {
		return
	}
	r.width = width
	r.height = height
	r.lru.Clear()
	r.rebuildLocked()
}

// rebuildLocked recomputes the transformed trees and the movie-wide
// scale invariants. Called whenever a layout facet changes.
func (r *Runner) rebuildLocked() {
	r.transformed = make([]*tree.Node, r.data.TreeCount())
	r.globalMaxRadius = 0
	for i, root := range r.data.InterpolatedTrees {
		t := tree.ApplyTransform(root, r.appearance.BranchTransformation)
		r.transformed[i] = t
		if radius := maxPathLength(t); radius > r.globalMaxRadius {
			r.globalMaxRadius = radius
		}
	}

	minDim := math.Min(r.width, r.height)
	scale := minDim / (2 * math.Max(r.globalMaxRadius, 1))
	r.extensionRadius = r.globalMaxRadius * scale
}

// maxPathLength returns the longest root-to-leaf branch-length sum.
func maxPathLength(root *tree.Node) float64 {
	var longest float64
	var walk func(n *tree.Node, acc float64)
	walk = func(n *tree.Node, acc float64) {
		if n.IsLeaf() && acc > longest {
			longest = acc
		}
		for _, c := range n.Children {
			walk(c, acc+c.Length)
		}
	}
	walk(root, 0)
	return longest
}

func (r *Runner) layoutKeyOptsLocked(treeIndex int) cache.LayoutKeyOpts {
	return cache.LayoutKeyOpts{
		TreeIndex:       treeIndex,
		Transform:       string(r.appearance.BranchTransformation),
		AngleExtentDeg:  r.appearance.LayoutAngleDegrees,
		RotationDeg:     r.appearance.LayoutRotationDegrees,
		ContainerWidth:  r.width,
		ContainerHeight: r.height,
		NodeSize:        r.appearance.NodeSize,
	}
}

// LayerData returns the layer data of a tree, from cache when possible.
func (r *Runner) LayerData(ctx context.Context, treeIndex int) (*layout.LayerData, error) {
	if treeIndex < 0 || treeIndex >= r.data.TreeCount() {
		return nil, errors.New(errors.ErrCodeNotFound, "tree index %d out of range [0, %d)", treeIndex, r.data.TreeCount())
	}

	r.mu.Lock()
	key := r.Keyer.LayoutKey(r.movieHash, r.layoutKeyOptsLocked(treeIndex))
	root := r.transformed[treeIndex]
	layoutOpts := layout.Options{
		Width:          r.width,
		Height:         r.height,
		AngleExtent:    r.appearance.LayoutAngleDegrees * math.Pi / 180,
		AngleOffset:    r.appearance.LayoutRotationDegrees * math.Pi / 180,
		MaxGlobalScale: r.globalMaxRadius,
	}
	layerOpts := layout.LayerOptions{
		NodeSize:        r.appearance.NodeSize,
		ExtensionRadius: r.extensionRadius,
	}
	r.mu.Unlock()

	// The LRU reports its own hit/miss hook events.
	if cached, ok := r.lru.Get(key); ok {
		return cached.(*layout.LayerData), nil
	}

	// Second chance: the shared byte cache.
	if raw, hit, err := r.Cache.Get(ctx, key); err == nil && hit {
		var ld layout.LayerData
		if err := json.Unmarshal(raw, &ld); err == nil {
			r.lru.Put(key, &ld)
			return &ld, nil
		}
	}

	nodeCount := 0
	root.Each(func(*tree.Node) { nodeCount++ })
	observability.Layout().OnLayoutStart(ctx, treeIndex, nodeCount)

	start := time.Now()
	lt := layout.Radial(root, layoutOpts)
	ld := layout.LayerDataFrom(lt, layerOpts)
	observability.Layout().OnLayoutComplete(ctx, treeIndex, time.Since(start), nil)

	r.lru.Put(key, ld)
	if raw, err := json.Marshal(ld); err == nil {
		_ = r.Cache.Set(ctx, key, raw, cache.TTLLayout)
	}
	return ld, nil
}

// FrameResult is the outcome of resolving a progress value: either a
// static tree layout or an interpolated frame bundle.
type FrameResult struct {
	Static    bool              `json:"static"`
	TreeIndex int               `json:"tree_index,omitempty"`
	Data      *layout.LayerData `json:"data,omitempty"`

	FromIndex int          `json:"from_index,omitempty"`
	ToIndex   int          `json:"to_index,omitempty"`
	Frame     *morph.Frame `json:"frame,omitempty"`
}

// FrameAt resolves a progress value in [0,1] to a frame: positions
// within epsilon of a tree snap to its static layout, everything else
// interpolates between the bracketing trees with the stage-appropriate
// easing.
func (r *Runner) FrameAt(ctx context.Context, progress float64) (*FrameResult, error) {
	target := player.ResolveScrub(progress, r.data.TreeCount())
	if target.Static {
		data, err := r.LayerData(ctx, target.TreeIndex)
		if err != nil {
			return nil, err
		}
		return &FrameResult{Static: true, TreeIndex: target.TreeIndex, Data: data}, nil
	}

	a, err := r.LayerData(ctx, target.FromIndex)
	if err != nil {
		return nil, err
	}
	b, err := r.LayerData(ctx, target.ToIndex)
	if err != nil {
		return nil, err
	}
	stage := morph.DetectStage(a, b)
	return &FrameResult{
		FromIndex: target.FromIndex,
		ToIndex:   target.ToIndex,
		Frame:     morph.Interpolate(a, b, target.T, stage),
	}, nil
}

// FrameBundle serializes the frame at a progress value, using the byte
// cache keyed by every facet that shapes the frame. The HTTP frame
// server serves these bytes directly.
func (r *Runner) FrameBundle(ctx context.Context, progress float64) ([]byte, error) {
	target := player.ResolveScrub(progress, r.data.TreeCount())

	r.mu.Lock()
	var key string
	if target.Static {
		key = r.Keyer.FrameKey(r.movieHash, cache.FrameKeyOpts{
			FromIndex: target.TreeIndex,
			ToIndex:   target.TreeIndex,
			Layout:    r.layoutKeyOptsLocked(target.TreeIndex),
		})
	} else {
		key = r.Keyer.FrameKey(r.movieHash, cache.FrameKeyOpts{
			FromIndex: target.FromIndex,
			ToIndex:   target.ToIndex,
			T:         target.T,
			Layout:    r.layoutKeyOptsLocked(target.FromIndex),
		})
	}
	r.mu.Unlock()

	if raw, hit, err := r.Cache.Get(ctx, key); err == nil && hit {
		observability.Cache().OnCacheHit(ctx, "frame")
		return raw, nil
	}
	observability.Cache().OnCacheMiss(ctx, "frame")

	result, err := r.FrameAt(ctx, progress)
	if err != nil {
		return nil, err
	}
	raw, err := json.Marshal(result)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInternal, err, "encoding frame bundle")
	}
	_ = r.Cache.Set(ctx, key, raw, cache.TTLFrame)
	observability.Cache().OnCacheSet(ctx, "frame", len(raw))
	return raw, nil
}

// Close releases the byte cache.
func (r *Runner) Close() error {
	if r.Cache != nil {
		return r.Cache.Close()
	}
	return nil
}
