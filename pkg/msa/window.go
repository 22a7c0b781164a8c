// Package msa maps anchor trees to multiple-sequence-alignment column
// windows. Each anchor tree was inferred from a sliding window over the
// alignment; the mapper recovers that window from the anchor's ordinal
// position and the sliding-window parameters.
package msa

import (
	"github.com/charmbracelet/log"
)

// Default sliding-window parameters substituted when the input carries
// degenerate values.
const (
	DefaultWindowSize = 100
	DefaultStepSize   = 1
)

// Window is a 1-based inclusive column range of the alignment. Mid is
// the center column of the window, the position an anchor tree is
// usually annotated with.
type Window struct {
	Start int `json:"start"`
	Mid   int `json:"mid"`
	End   int `json:"end"`
}

// Mapper converts anchor ordinals to alignment windows.
//
// AlignmentLength of 0 means unknown; windows are then only clamped at
// the left edge.
type Mapper struct {
	WindowSize      int
	StepSize        int
	AlignmentLength int

	logger *log.Logger
}

// NewMapper builds a mapper from the movie's sliding-window parameters.
// Degenerate windowSize or stepSize values (zero or negative) are
// replaced with defaults and logged; upstream inference pipelines
// occasionally omit these fields.
func NewMapper(windowSize, stepSize, alignmentLength int, logger *log.Logger) *Mapper {
	if logger == nil {
		logger = log.Default()
	}
	if windowSize <= 0 || stepSize <= 0 {
		logger.Warn("degenerate MSA window parameters, using defaults",
			"window_size", windowSize,
			"step_size", stepSize,
			"default_window_size", DefaultWindowSize,
			"default_step_size", DefaultStepSize)
		windowSize = DefaultWindowSize
		stepSize = DefaultStepSize
	}
	if alignmentLength < 0 {
		alignmentLength = 0
	}
	return &Mapper{
		WindowSize:      windowSize,
		StepSize:        stepSize,
		AlignmentLength: alignmentLength,
		logger:          logger,
	}
}

// WindowFor returns the alignment window of the k-th anchor tree
// (k is the 0-based ordinal among anchors, not a global tree index).
//
// The k-th window starts at column 1 + k·step, so with a step of 1
// consecutive anchors shift the window by exactly one column. When the
// alignment length is known the window is pushed back inside the
// alignment instead of being truncated.
func (m *Mapper) WindowFor(k int) Window {
	if k < 0 {
		k = 0
	}
	start := 1 + k*m.StepSize
	if m.AlignmentLength > 0 {
		last := m.AlignmentLength - m.WindowSize + 1
		if last < 1 {
			last = 1
		}
		if start > last {
			start = last
		}
	}
	end := start + m.WindowSize - 1
	return Window{
		Start: start,
		Mid:   start + (m.WindowSize-1)/2,
		End:   end,
	}
}
