package player

import (
	"math"
	"time"

	"github.com/phylomovie/phylomovie/pkg/errors"
)

// Timeline defaults.
const (
	DefaultSegmentDuration = time.Second
	DefaultPauseDuration   = 0
)

// Timeline maps wall-clock time to movie progress and progress to
// (segment, localT) pairs. A movie of N+1 trees has N segments; every
// segment except the last is followed by a pause of fixed duration, so
// the total timeline is N·d_seg + (N−1)·d_pause.
//
// The Timeline is a pure clock transform: all methods take the current
// time explicitly, which keeps it deterministic under test. It is not
// safe for concurrent use; the Runner serializes access.
type Timeline struct {
	segments int
	segDur   time.Duration
	pauseDur time.Duration

	speed   float64
	playing bool
	origin  time.Time
	base    float64
}

// NewTimeline sizes a timeline for a movie. Non-positive durations fall
// back to the defaults (a zero pause is valid and the default).
func NewTimeline(treeCount int, segDur, pauseDur time.Duration) *Timeline {
	segments := treeCount - 1
	if segments < 0 {
		segments = 0
	}
	if segDur <= 0 {
		segDur = DefaultSegmentDuration
	}
	if pauseDur < 0 {
		pauseDur = DefaultPauseDuration
	}
	return &Timeline{
		segments: segments,
		segDur:   segDur,
		pauseDur: pauseDur,
		speed:    1,
	}
}

// Segments reports the number of transition segments.
func (tl *Timeline) Segments() int { return tl.segments }

// Duration reports the total timeline duration at speed 1.
func (tl *Timeline) Duration() time.Duration {
	if tl.segments <= 0 {
		return 0
	}
	return time.Duration(tl.segments)*tl.segDur + time.Duration(tl.segments-1)*tl.pauseDur
}

// Playing reports whether the clock is advancing.
func (tl *Timeline) Playing() bool { return tl.playing }

// Speed reports the current speed multiplier.
func (tl *Timeline) Speed() float64 { return tl.speed }

// Progress returns the overall progress in [0,1] at the given time.
func (tl *Timeline) Progress(now time.Time) float64 {
	if !tl.playing {
		return tl.base
	}
	total := tl.Duration()
	if total <= 0 {
		return 1
	}
	p := tl.base + tl.speed*float64(now.Sub(tl.origin))/float64(total)
	return clampProgress(p)
}

// Play starts the clock from the current position.
func (tl *Timeline) Play(now time.Time) {
	if tl.playing {
		return
	}
	tl.origin = now
	tl.playing = true
}

// Pause freezes progress at its current value.
func (tl *Timeline) Pause(now time.Time) {
	if !tl.playing {
		return
	}
	tl.base = tl.Progress(now)
	tl.playing = false
}

// Resume is Play; it exists for symmetry with Pause.
func (tl *Timeline) Resume(now time.Time) { tl.Play(now) }

// Stop halts the clock and rewinds to progress 0.
func (tl *Timeline) Stop() {
	tl.playing = false
	tl.base = 0
}

// Seek jumps to a progress value, preserving the play/pause state.
func (tl *Timeline) Seek(p float64, now time.Time) {
	tl.base = clampProgress(p)
	tl.origin = now
}

// SetSpeed changes the speed multiplier without jumping progress.
func (tl *Timeline) SetSpeed(s float64, now time.Time) error {
	if s <= 0 || math.IsNaN(s) || math.IsInf(s, 0) {
		return errors.New(errors.ErrCodeInvalidInput, "playback speed must be positive")
	}
	tl.base = tl.Progress(now)
	tl.origin = now
	tl.speed = s
	return nil
}

// ProgressToSegment maps overall progress to a segment index, the local
// interpolation parameter within that segment, and whether the position
// falls in the pause after the segment. The last segment has no
// trailing pause, so progress 1 is (lastSegment, 1, false).
func (tl *Timeline) ProgressToSegment(p float64) (segment int, localT float64, inPause bool) {
	if tl.segments <= 0 {
		return 0, 0, false
	}
	return tl.SegmentAtTime(time.Duration(clampProgress(p) * float64(tl.Duration())))
}

// SegmentProgress maps a position within a segment back to overall
// progress. It inverts ProgressToSegment, so seeking to
// SegmentProgress(s, t) lands on (s, t) no matter how long the pauses
// are. Segments past the end map to progress 1.
func (tl *Timeline) SegmentProgress(segment int, localT float64) float64 {
	if tl.segments <= 0 {
		return 0
	}
	if segment < 0 {
		segment = 0
	}
	if segment >= tl.segments {
		return 1
	}
	localT = clampProgress(localT)
	elapsed := time.Duration(segment)*(tl.segDur+tl.pauseDur) +
		time.Duration(localT*float64(tl.segDur))
	return clampProgress(float64(elapsed) / float64(tl.Duration()))
}

// SegmentAtTime is ProgressToSegment with an absolute offset from the
// timeline start (at speed 1).
func (tl *Timeline) SegmentAtTime(elapsed time.Duration) (segment int, localT float64, inPause bool) {
	if tl.segments <= 0 {
		return 0, 0, false
	}
	if elapsed < 0 {
		elapsed = 0
	}
	total := tl.Duration()
	if elapsed > total {
		elapsed = total
	}

	block := tl.segDur + tl.pauseDur
	segment = int(elapsed / block)
	if segment >= tl.segments {
		return tl.segments - 1, 1, false
	}
	within := elapsed - time.Duration(segment)*block
	if within >= tl.segDur {
		if segment == tl.segments-1 {
			// The last segment has no trailing pause.
			return segment, 1, false
		}
		// Trailing pause: the segment's target tree is held on screen.
		return segment, 1, true
	}
	return segment, float64(within) / float64(tl.segDur), false
}

// IsInPauseSegment reports whether the current position is inside a
// pause between transitions.
func (tl *Timeline) IsInPauseSegment(now time.Time) bool {
	_, _, inPause := tl.ProgressToSegment(tl.Progress(now))
	return inPause
}

func clampProgress(p float64) float64 {
	if p < 0 || math.IsNaN(p) {
		return 0
	}
	if p > 1 {
		return 1
	}
	return p
}
