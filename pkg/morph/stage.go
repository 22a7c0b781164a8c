// Package morph interpolates geometry between two laid-out trees.
//
// Correspondence between trees is established purely through entity keys:
// for each entity kind the key sets of the two trees are partitioned into
// update (both), enter (target only), and exit (source only). A transition
// stage derived from the enter/exit cardinality of the node set picks a
// time remapping, which guarantees that entering entities never appear
// during the shrink phase and exiting entities never linger into the grow
// phase.
package morph

import (
	"math"

	"github.com/phylomovie/phylomovie/pkg/layout"
)

// Stage is the topological character of a transition.
type Stage string

// Transition stages.
const (
	// StageCollapse means at least one entity leaves: the source tree
	// shrinks before anything else happens.
	StageCollapse Stage = "COLLAPSE"

	// StageExpand means entities only appear: updates settle first, then
	// the new entities fade in.
	StageExpand Stage = "EXPAND"

	// StageReorder means the key sets match and only positions change.
	StageReorder Stage = "REORDER"
)

// DetectStage classifies a transition from the enter/exit sets of the node
// arrays. Exits dominate: a transition with both exits and enters is a
// collapse, because the exits must clear out first.
func DetectStage(a, b *layout.LayerData) Stage {
	inA := make(map[string]bool, len(a.Nodes))
	for _, n := range a.Nodes {
		inA[n.Key] = true
	}
	inB := make(map[string]bool, len(b.Nodes))
	for _, n := range b.Nodes {
		inB[n.Key] = true
	}

	exits := 0
	for k := range inA {
		if !inB[k] {
			exits++
		}
	}
	if exits > 0 {
		return StageCollapse
	}

	enters := 0
	for k := range inB {
		if !inA[k] {
			enters++
		}
	}
	if enters > 0 {
		return StageExpand
	}
	return StageReorder
}

// Timing is the stage-specific time remapping applied to the raw
// interpolation parameter.
type Timing struct {
	// ExitStart and ExitEnd bound the window in which exiting entities
	// fade out. At t >= ExitEnd exiting records are omitted entirely.
	ExitStart float64
	ExitEnd   float64

	// EnterStart is where entering entities begin to fade in. A value of 1
	// suppresses enters until the very end of the transition.
	EnterStart float64

	// Update remaps t for updating entities.
	Update func(t float64) float64
}

// TimingFor returns the time remapping of a stage.
func TimingFor(stage Stage) Timing {
	switch stage {
	case StageCollapse:
		// Everything moves and fades in the first half; the second half
		// holds the settled target so the following expand reads cleanly.
		return Timing{
			ExitStart:  0,
			ExitEnd:    0.5,
			EnterStart: 1.0,
			Update:     func(t float64) float64 { return clamp01(2 * t) },
		}
	case StageExpand:
		// Mirror of collapse: hold for the first half, then move and fade in.
		return Timing{
			ExitStart:  0,
			ExitEnd:    0.5,
			EnterStart: 0.5,
			Update:     func(t float64) float64 { return clamp01(2 * (t - 0.5)) },
		}
	default:
		return Timing{
			ExitStart:  0,
			ExitEnd:    1,
			EnterStart: 0,
			Update:     EaseInOutCubic,
		}
	}
}

// EnterOpacity returns the opacity multiplier of an entering entity at t.
func (tm Timing) EnterOpacity(t float64) float64 {
	if tm.EnterStart >= 1 {
		if t >= 1 {
			return 1
		}
		return 0
	}
	return clamp01((t - tm.EnterStart) / (1 - tm.EnterStart))
}

// ExitOpacity returns the opacity multiplier of an exiting entity at t.
// A zero return means the record is omitted from the frame.
func (tm Timing) ExitOpacity(t float64) float64 {
	if t >= tm.ExitEnd {
		return 0
	}
	span := tm.ExitEnd - tm.ExitStart
	if span <= 0 {
		return 0
	}
	return 1 - clamp01((t-tm.ExitStart)/span)
}

// EaseInOutCubic is the mild ease used for pure reorder transitions.
func EaseInOutCubic(t float64) float64 {
	t = clamp01(t)
	if t < 0.5 {
		return 4 * t * t * t
	}
	return 1 - math.Pow(-2*t+2, 3)/2
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
