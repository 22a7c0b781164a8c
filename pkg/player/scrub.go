package player

import "math"

// snapEpsilon is how close the fractional position must be to a tree
// before scrubbing renders the static layout instead of interpolating.
const snapEpsilon = 1e-3

// ScrubTarget is the render decision for an external progress value.
type ScrubTarget struct {
	// Static is true when the position snaps to a single tree; only
	// TreeIndex is meaningful then.
	Static    bool
	TreeIndex int

	// FromIndex, ToIndex and T describe the interpolated render when
	// Static is false.
	FromIndex int
	ToIndex   int
	T         float64
}

// ResolveScrub maps a progress value in [0,1] onto the tree sequence.
// Positions within snapEpsilon of a tree snap to that tree's static
// layout; everything else interpolates between the bracketing trees.
func ResolveScrub(p float64, treeCount int) ScrubTarget {
	if treeCount <= 0 {
		return ScrubTarget{Static: true}
	}
	p = clampProgress(p)

	x := p * float64(treeCount-1)
	from := int(math.Floor(x))
	to := from + 1
	if to > treeCount-1 {
		to = treeCount - 1
	}
	t := x - float64(from)

	if t < snapEpsilon || 1-t < snapEpsilon || from == to {
		return ScrubTarget{Static: true, TreeIndex: int(math.Round(x))}
	}
	return ScrubTarget{FromIndex: from, ToIndex: to, T: t}
}
