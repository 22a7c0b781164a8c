package observability

import (
	"context"
	"testing"
	"time"
)

type recordingCacheHooks struct {
	hits   int
	misses int
	sets   int
	evicts int
}

func (r *recordingCacheHooks) OnCacheHit(context.Context, string)      { r.hits++ }
func (r *recordingCacheHooks) OnCacheMiss(context.Context, string)     { r.misses++ }
func (r *recordingCacheHooks) OnCacheSet(context.Context, string, int) { r.sets++ }
func (r *recordingCacheHooks) OnCacheEvict(context.Context, string)    { r.evicts++ }

func TestDefaultHooksAreNoop(t *testing.T) {
	Reset()
	ctx := context.Background()

	// Must not panic.
	Layout().OnLayoutStart(ctx, 0, 10)
	Layout().OnLayoutComplete(ctx, 0, time.Millisecond, nil)
	Player().OnFrameRendered(ctx, 0, 1, 0.5, time.Millisecond)
	Player().OnFrameDropped(ctx, 0, 1)
	Player().OnStageChange(ctx, "REORDER")
	Player().OnSeek(ctx, 0.5)
	Cache().OnCacheHit(ctx, "layout")
	Cache().OnCacheMiss(ctx, "layout")
	Cache().OnCacheSet(ctx, "layout", 128)
	Cache().OnCacheEvict(ctx, "layout")
}

func TestSetCacheHooks(t *testing.T) {
	defer Reset()

	rec := &recordingCacheHooks{}
	SetCacheHooks(rec)

	ctx := context.Background()
	Cache().OnCacheHit(ctx, "layout")
	Cache().OnCacheMiss(ctx, "layout")
	Cache().OnCacheMiss(ctx, "frame")
	Cache().OnCacheSet(ctx, "frame", 64)
	Cache().OnCacheEvict(ctx, "layout")

	if rec.hits != 1 || rec.misses != 2 || rec.sets != 1 || rec.evicts != 1 {
		t.Errorf("recorded %+v, want hits=1 misses=2 sets=1 evicts=1", *rec)
	}
}

func TestSetNilHooksKeepsPrevious(t *testing.T) {
	defer Reset()

	rec := &recordingCacheHooks{}
	SetCacheHooks(rec)
	SetCacheHooks(nil)

	Cache().OnCacheHit(context.Background(), "layout")
	if rec.hits != 1 {
		t.Error("nil registration should not replace existing hooks")
	}
}

func TestReset(t *testing.T) {
	rec := &recordingCacheHooks{}
	SetCacheHooks(rec)
	Reset()

	Cache().OnCacheHit(context.Background(), "layout")
	if rec.hits != 0 {
		t.Error("Reset should restore no-op hooks")
	}
}
