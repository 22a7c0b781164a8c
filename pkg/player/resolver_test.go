package player

import (
	"math"
	"testing"
)

func TestResolveAnchorPairs(t *testing.T) {
	r := NewResolver([]int{0, 3, 6, 8}, 9)

	tests := []struct {
		name      string
		index     int
		firstFull bool
		pair      int
		src, dst  int
		local     float64
	}{
		{"first anchor", 0, true, 0, 0, 3, 0},
		{"inside first pair", 1, true, 0, 0, 3, 1.0 / 3},
		{"inside first pair deep", 2, true, 0, 0, 3, 2.0 / 3},
		{"second anchor as start", 3, true, 1, 3, 6, 0},
		{"second anchor as end of previous", 3, false, 0, 0, 3, 1},
		{"inside second pair", 4, false, 1, 3, 6, 1.0 / 3},
		{"third anchor as end", 6, false, 1, 3, 6, 1},
		{"last anchor", 8, true, 2, 6, 8, 1},
		{"past the end", 100, true, 2, 6, 8, 1},
		{"before the start", -5, true, 0, 0, 3, 0},
	}

	for _, tt := range tests {
		got := r.Resolve(tt.index, tt.firstFull)
		if got.PairIndex != tt.pair || got.SourceTreeIndex != tt.src ||
			got.TargetTreeIndex != tt.dst || math.Abs(got.LocalWithinPair-tt.local) > 1e-9 {
			t.Errorf("%s: Resolve(%d, %v) = %+v, want pair %d (%d→%d) local %v",
				tt.name, tt.index, tt.firstFull, got, tt.pair, tt.src, tt.dst, tt.local)
		}
	}
}

func TestResolveFirstAnchorFirstFullFalse(t *testing.T) {
	r := NewResolver([]int{0, 3, 6, 8}, 9)

	// There is no previous pair for the first anchor; firstFull=false
	// must not underflow.
	got := r.Resolve(0, false)
	if got.PairIndex != 0 || got.LocalWithinPair != 0 {
		t.Errorf("Resolve(0, false) = %+v, want start of pair 0", got)
	}
}

func TestResolveDegenerateAnchors(t *testing.T) {
	if got := NewResolver(nil, 5).Resolve(2, true); got != (Position{}) {
		t.Errorf("no anchors: got %+v, want zero position", got)
	}

	got := NewResolver([]int{4}, 5).Resolve(2, true)
	if got.SourceTreeIndex != 4 || got.TargetTreeIndex != 4 {
		t.Errorf("single anchor: got %+v, want the anchor for both endpoints", got)
	}
}
