package player

// Position locates a tree index within the movie's anchor-pair
// structure.
type Position struct {
	// PairIndex is the anchor pair the position belongs to: pair i
	// animates between the i-th and (i+1)-th full trees.
	PairIndex int

	// SourceTreeIndex and TargetTreeIndex are the global indices of the
	// bracketing anchors in the interpolated tree sequence.
	SourceTreeIndex int
	TargetTreeIndex int

	// LocalWithinPair is the fractional position inside the pair, in
	// [0,1].
	LocalWithinPair float64
}

// Resolver maps arbitrary tree indices to anchor pairs. Anchors are the
// full trees inferred from actual alignment windows; the trees between
// two anchors are synthesized interpolation steps.
type Resolver struct {
	anchors   []int
	treeCount int
}

// NewResolver builds a resolver from the global indices of the full
// trees, which must be strictly ascending.
func NewResolver(fullTreeIndices []int, treeCount int) *Resolver {
	return &Resolver{anchors: fullTreeIndices, treeCount: treeCount}
}

// AnchorCount reports the number of full trees.
func (r *Resolver) AnchorCount() int { return len(r.anchors) }

// Anchors returns the global indices of the full trees.
func (r *Resolver) Anchors() []int { return r.anchors }

// Resolve locates currentTreeIndex within the anchor pairs.
//
// Pair i covers the half-open range [anchors[i], anchors[i+1]). When
// currentTreeIndex sits exactly on an anchor and firstFull is false,
// the position belongs to the end of the previous pair instead of the
// start of the next; alignment-window readouts at anchor boundaries
// depend on this.
func (r *Resolver) Resolve(currentTreeIndex int, firstFull bool) Position {
	if len(r.anchors) == 0 {
		return Position{}
	}
	if len(r.anchors) == 1 {
		a := r.anchors[0]
		return Position{SourceTreeIndex: a, TargetTreeIndex: a}
	}

	if currentTreeIndex < r.anchors[0] {
		currentTreeIndex = r.anchors[0]
	}
	last := len(r.anchors) - 1
	if currentTreeIndex >= r.anchors[last] {
		return Position{
			PairIndex:       last - 1,
			SourceTreeIndex: r.anchors[last-1],
			TargetTreeIndex: r.anchors[last],
			LocalWithinPair: 1,
		}
	}

	pair := 0
	for i := 1; i <= last; i++ {
		if r.anchors[i] > currentTreeIndex {
			pair = i - 1
			break
		}
	}

	if !firstFull && currentTreeIndex == r.anchors[pair] && pair > 0 {
		return Position{
			PairIndex:       pair - 1,
			SourceTreeIndex: r.anchors[pair-1],
			TargetTreeIndex: r.anchors[pair],
			LocalWithinPair: 1,
		}
	}

	src, dst := r.anchors[pair], r.anchors[pair+1]
	return Position{
		PairIndex:       pair,
		SourceTreeIndex: src,
		TargetTreeIndex: dst,
		LocalWithinPair: float64(currentTreeIndex-src) / float64(dst-src),
	}
}
