// Package observability provides hooks for metrics, tracing, and logging.
//
// This package enables optional instrumentation without adding hard dependencies
// on specific observability backends. Consumers can register hooks at startup
// to receive events about layout computation, playback, and cache operations.
//
// # Architecture
//
// The package uses a simple hooks pattern:
//   - Define hook interfaces for different event categories
//   - Provide no-op default implementations
//   - Allow registration of custom implementations at startup
//
// This approach:
//   - Avoids import cycles (hooks are registered by main, not by libraries)
//   - Keeps the core library dependency-free from observability frameworks
//   - Allows different backends (OpenTelemetry, Prometheus, etc.)
//
// # Usage
//
// Register hooks at application startup:
//
//	func main() {
//	    observability.SetLayoutHooks(&myLayoutHooks{})
//	    observability.SetPlayerHooks(&myPlayerHooks{})
//	    // ... run application
//	}
//
// Libraries call hooks to emit events:
//
//	observability.Layout().OnLayoutStart(ctx, treeIndex, nodeCount)
//	// ... compute layout ...
//	observability.Layout().OnLayoutComplete(ctx, treeIndex, duration, err)
package observability

import (
	"context"
	"sync"
	"time"
)

// =============================================================================
// Layout Hooks
// =============================================================================

// LayoutHooks receives events from layout computation.
type LayoutHooks interface {
	// OnLayoutStart records the beginning of a radial layout for a tree index.
	OnLayoutStart(ctx context.Context, treeIndex, nodeCount int)

	// OnLayoutComplete records the end of a layout computation.
	OnLayoutComplete(ctx context.Context, treeIndex int, duration time.Duration, err error)
}

// =============================================================================
// Player Hooks
// =============================================================================

// PlayerHooks receives events from the animation runner.
type PlayerHooks interface {
	// OnFrameRendered records a completed frame with its interpolation parameter.
	OnFrameRendered(ctx context.Context, fromIndex, toIndex int, t float64, duration time.Duration)

	// OnFrameDropped records a tick skipped due to overlap protection.
	OnFrameDropped(ctx context.Context, fromIndex, toIndex int)

	// OnStageChange records a transition stage change.
	OnStageChange(ctx context.Context, stage string)

	// OnSeek records a seek to a progress value.
	OnSeek(ctx context.Context, progress float64)
}

// =============================================================================
// Cache Hooks
// =============================================================================

// CacheHooks receives events from cache operations.
type CacheHooks interface {
	// OnCacheHit records a cache hit.
	OnCacheHit(ctx context.Context, keyType string)

	// OnCacheMiss records a cache miss.
	OnCacheMiss(ctx context.Context, keyType string)

	// OnCacheSet records a cache write.
	OnCacheSet(ctx context.Context, keyType string, size int)

	// OnCacheEvict records an LRU eviction.
	OnCacheEvict(ctx context.Context, keyType string)
}

// =============================================================================
// No-op Implementations
// =============================================================================

// NoopLayoutHooks is a no-op implementation of LayoutHooks.
type NoopLayoutHooks struct{}

func (NoopLayoutHooks) OnLayoutStart(context.Context, int, int)                     {}
func (NoopLayoutHooks) OnLayoutComplete(context.Context, int, time.Duration, error) {}

// NoopPlayerHooks is a no-op implementation of PlayerHooks.
type NoopPlayerHooks struct{}

func (NoopPlayerHooks) OnFrameRendered(context.Context, int, int, float64, time.Duration) {}
func (NoopPlayerHooks) OnFrameDropped(context.Context, int, int)                          {}
func (NoopPlayerHooks) OnStageChange(context.Context, string)                             {}
func (NoopPlayerHooks) OnSeek(context.Context, float64)                                   {}

// NoopCacheHooks is a no-op implementation of CacheHooks.
type NoopCacheHooks struct{}

func (NoopCacheHooks) OnCacheHit(context.Context, string)      {}
func (NoopCacheHooks) OnCacheMiss(context.Context, string)     {}
func (NoopCacheHooks) OnCacheSet(context.Context, string, int) {}
func (NoopCacheHooks) OnCacheEvict(context.Context, string)    {}

// =============================================================================
// Global Hook Registry
// =============================================================================

var (
	layoutHooks LayoutHooks = NoopLayoutHooks{}
	playerHooks PlayerHooks = NoopPlayerHooks{}
	cacheHooks  CacheHooks  = NoopCacheHooks{}
	hooksMu     sync.RWMutex
)

// SetLayoutHooks registers custom layout hooks.
// This should be called once at application startup before any layout operations.
func SetLayoutHooks(h LayoutHooks) {
	hooksMu.Lock()
	defer hooksMu.Unlock()
	if h != nil {
		layoutHooks = h
	}
}

// SetPlayerHooks registers custom player hooks.
// This should be called once at application startup before playback begins.
func SetPlayerHooks(h PlayerHooks) {
	hooksMu.Lock()
	defer hooksMu.Unlock()
	if h != nil {
		playerHooks = h
	}
}

// SetCacheHooks registers custom cache hooks.
// This should be called once at application startup before any cache operations.
func SetCacheHooks(h CacheHooks) {
	hooksMu.Lock()
	defer hooksMu.Unlock()
	if h != nil {
		cacheHooks = h
	}
}

// Layout returns the registered layout hooks.
func Layout() LayoutHooks {
	hooksMu.RLock()
	defer hooksMu.RUnlock()
	return layoutHooks
}

// Player returns the registered player hooks.
func Player() PlayerHooks {
	hooksMu.RLock()
	defer hooksMu.RUnlock()
	return playerHooks
}

// Cache returns the registered cache hooks.
func Cache() CacheHooks {
	hooksMu.RLock()
	defer hooksMu.RUnlock()
	return cacheHooks
}

// Reset restores all hooks to their no-op defaults.
// This is primarily useful for testing.
func Reset() {
	hooksMu.Lock()
	defer hooksMu.Unlock()
	layoutHooks = NoopLayoutHooks{}
	playerHooks = NoopPlayerHooks{}
	cacheHooks = NoopCacheHooks{}
}
