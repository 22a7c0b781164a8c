package player

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"

	"github.com/phylomovie/phylomovie/pkg/errors"
	"github.com/phylomovie/phylomovie/pkg/morph"
	"github.com/phylomovie/phylomovie/pkg/observability"
)

// Runner defaults.
const (
	// DefaultFrameInterval paces the render loop at 60 fps.
	DefaultFrameInterval = time.Second / 60

	// progressThrottle bounds progress callbacks to 10 Hz.
	progressThrottle = 100 * time.Millisecond
)

// Config assembles a Runner.
type Config struct {
	Provider LayoutProvider
	Renderer Renderer

	// SegmentDuration and PauseDuration size the timeline; zero values
	// use the timeline defaults.
	SegmentDuration time.Duration
	PauseDuration   time.Duration

	// FrameInterval paces Run's tick loop.
	FrameInterval time.Duration

	// OnProgress, if set, receives progress updates throttled to 10 Hz.
	OnProgress func(p float64)

	Logger *log.Logger

	// Now substitutes the clock, for tests.
	Now func() time.Time
}

// Runner drives the frame loop: each tick it maps the clock to a
// (segment, localT) position, interpolates between the bracketing
// trees, and hands the frame to the renderer.
//
// The loop is self-pacing. If the renderer is still busy when a tick
// fires, that tick is skipped entirely: frames are dropped, never
// queued, so a slow renderer degrades frame rate instead of building a
// backlog.
type Runner struct {
	provider  LayoutProvider
	renderer  Renderer
	logger    *log.Logger
	sessionID string
	now       func() time.Time

	frameInterval time.Duration
	onProgress    func(p float64)

	mu       sync.Mutex
	timeline *Timeline

	running   atomic.Bool
	rendering atomic.Bool

	// seq is bumped by every seek; an in-flight frame whose snapshot is
	// stale discards its result instead of committing it.
	seq atomic.Uint64

	lastStage      morph.Stage
	lastFrom       int
	lastT          float64
	lastProgressAt time.Time
}

// NewRunner validates the config and builds a runner with a fresh
// playback session ID.
func NewRunner(cfg Config) (*Runner, error) {
	if cfg.Provider == nil {
		return nil, errors.New(errors.ErrCodeInvalidInput, "runner requires a layout provider")
	}
	if cfg.Renderer == nil {
		return nil, errors.New(errors.ErrCodeInvalidInput, "runner requires a renderer")
	}
	if cfg.Logger == nil {
		cfg.Logger = log.Default()
	}
	if cfg.Now == nil {
		cfg.Now = time.Now
	}
	if cfg.FrameInterval <= 0 {
		cfg.FrameInterval = DefaultFrameInterval
	}
	return &Runner{
		provider:      cfg.Provider,
		renderer:      cfg.Renderer,
		logger:        cfg.Logger,
		sessionID:     uuid.NewString(),
		now:           cfg.Now,
		frameInterval: cfg.FrameInterval,
		onProgress:    cfg.OnProgress,
		timeline:      NewTimeline(cfg.Provider.TreeCount(), cfg.SegmentDuration, cfg.PauseDuration),
		lastFrom:      -1,
	}, nil
}

// SessionID identifies this playback session in logs and HTTP frames.
func (r *Runner) SessionID() string { return r.sessionID }

// Duration reports the total timeline duration at speed 1.
func (r *Runner) Duration() time.Duration {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.timeline.Duration()
}

// Progress returns the current overall progress.
func (r *Runner) Progress() float64 {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.timeline.Progress(r.now())
}

// Playing reports whether the timeline clock is advancing.
func (r *Runner) Playing() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.timeline.Playing()
}

// Play starts or resumes the clock.
func (r *Runner) Play() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.timeline.Play(r.now())
}

// Pause freezes the clock at the current progress.
func (r *Runner) Pause() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.timeline.Pause(r.now())
}

// Stop halts the loop and rewinds to progress 0. In-flight frames
// observe the cleared running flag and discard their result.
func (r *Runner) Stop() {
	r.running.Store(false)
	r.seq.Add(1)
	r.mu.Lock()
	defer r.mu.Unlock()
	r.timeline.Stop()
}

// Seek jumps to a progress value. Any in-flight frame for the pre-seek
// position is discarded; the next rendered frame corresponds to p.
func (r *Runner) Seek(p float64) {
	r.seq.Add(1)
	r.mu.Lock()
	r.timeline.Seek(p, r.now())
	r.lastFrom = -1
	r.lastT = 0
	r.mu.Unlock()
	observability.Player().OnSeek(context.Background(), clampProgress(p))
}

// SetSpeed changes the playback speed multiplier.
func (r *Runner) SetSpeed(s float64) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.timeline.SetSpeed(s, r.now())
}

// Scrub renders the frame for an external progress value immediately,
// outside the tick loop. If the clock is playing this is a seek; either
// way the scrubbed frame is rendered synchronously.
func (r *Runner) Scrub(ctx context.Context, p float64) error {
	r.Seek(p)
	target := ResolveScrub(p, r.provider.TreeCount())
	if target.Static {
		data, err := r.provider.LayerData(ctx, target.TreeIndex)
		if err != nil {
			return err
		}
		return r.renderer.RenderStatic(ctx, target.TreeIndex, data)
	}
	return r.renderInterpolated(ctx, target.FromIndex, target.ToIndex, target.T, r.seq.Load())
}

// Run executes the tick loop until Stop is called or the context ends.
// An empty movie (fewer than two trees) completes immediately.
func (r *Runner) Run(ctx context.Context) error {
	if r.provider.TreeCount() < 2 {
		r.logger.Info("movie has no transitions, nothing to play",
			"trees", r.provider.TreeCount(), "session", r.sessionID)
		return nil
	}
	r.running.Store(true)
	defer r.running.Store(false)

	ticker := time.NewTicker(r.frameInterval)
	defer ticker.Stop()

	for r.running.Load() {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			if err := r.Step(ctx); err != nil {
				return err
			}
		}
	}
	return nil
}

// Step performs one tick: clock → segment → interpolate → render.
// Recoverable problems (missing layouts, busy renderer) are absorbed;
// only renderer failures propagate.
func (r *Runner) Step(ctx context.Context) error {
	if r.provider.TreeCount() < 2 {
		return nil
	}

	now := r.now()
	seq := r.seq.Load()

	r.mu.Lock()
	p := r.timeline.Progress(now)
	segment, localT, inPause := r.timeline.ProgressToSegment(p)
	throttled := now.Sub(r.lastProgressAt) < progressThrottle
	if !throttled {
		r.lastProgressAt = now
	}
	r.mu.Unlock()

	if !throttled && r.onProgress != nil {
		r.onProgress(p)
	}

	if inPause {
		// The previous segment's target tree is already on screen.
		return nil
	}
	return r.renderInterpolated(ctx, segment, segment+1, localT, seq)
}

func (r *Runner) renderInterpolated(ctx context.Context, from, to int, t float64, seq uint64) error {
	// Overlap protection: skip the tick if a frame is still in flight.
	if !r.rendering.CompareAndSwap(false, true) {
		observability.Player().OnFrameDropped(ctx, from, to)
		return nil
	}
	defer r.rendering.Store(false)

	a, err := r.provider.LayerData(ctx, from)
	if err != nil {
		r.logger.Debug("source layout unavailable, skipping frame", "tree", from, "err", err)
		return nil
	}
	b, err := r.provider.LayerData(ctx, to)
	if err != nil {
		r.logger.Debug("target layout unavailable, skipping frame", "tree", to, "err", err)
		return nil
	}

	stage := morph.DetectStage(a, b)
	start := time.Now()
	frame := morph.Interpolate(a, b, t, stage)

	// A seek or stop while interpolating invalidates this frame.
	if r.seq.Load() != seq {
		return nil
	}

	r.mu.Lock()
	stageChanged := stage != r.lastStage
	if stageChanged {
		r.lastStage = stage
	}
	// Monotonicity within a playthrough: never re-render an earlier
	// position unless a seek reset the trackers.
	if from < r.lastFrom || (from == r.lastFrom && t < r.lastT) {
		r.mu.Unlock()
		return nil
	}
	r.lastFrom = from
	r.lastT = t
	r.mu.Unlock()

	if stageChanged {
		observability.Player().OnStageChange(ctx, string(stage))
	}

	if err := r.renderer.RenderFrame(ctx, frame); err != nil {
		return errors.Wrap(errors.ErrCodeRenderFailed, err, "rendering frame %d→%d at t=%.3f", from, to, t)
	}
	observability.Player().OnFrameRendered(ctx, from, to, t, time.Since(start))
	return nil
}
