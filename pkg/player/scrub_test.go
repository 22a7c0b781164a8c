package player

import (
	"math"
	"testing"
)

func TestResolveScrubSnapping(t *testing.T) {
	const treeCount = 11 // x = p·10

	tests := []struct {
		name      string
		p         float64
		static    bool
		treeIndex int
	}{
		{"exact start", 0, true, 0},
		{"exact end", 1, true, 10},
		{"on a tree", 0.5, true, 5},
		{"just before a tree", 0.5 - 1e-5, true, 5},
		{"just after a tree", 0.5 + 1e-5, true, 5},
	}

	for _, tt := range tests {
		got := ResolveScrub(tt.p, treeCount)
		if got.Static != tt.static || got.TreeIndex != tt.treeIndex {
			t.Errorf("%s: ResolveScrub(%v) = %+v, want static at %d", tt.name, tt.p, got, tt.treeIndex)
		}
	}
}

func TestResolveScrubInterpolates(t *testing.T) {
	got := ResolveScrub(0.55, 11) // x = 5.5
	if got.Static {
		t.Fatalf("ResolveScrub(0.55) = %+v, want interpolated", got)
	}
	if got.FromIndex != 5 || got.ToIndex != 6 || math.Abs(got.T-0.5) > 1e-9 {
		t.Errorf("ResolveScrub(0.55) = %+v, want 5→6 at t=0.5", got)
	}
}

func TestResolveScrubClamping(t *testing.T) {
	if got := ResolveScrub(-0.5, 11); !got.Static || got.TreeIndex != 0 {
		t.Errorf("negative progress = %+v, want static at 0", got)
	}
	if got := ResolveScrub(1.5, 11); !got.Static || got.TreeIndex != 10 {
		t.Errorf("overshoot progress = %+v, want static at last tree", got)
	}
	if got := ResolveScrub(0.5, 1); !got.Static || got.TreeIndex != 0 {
		t.Errorf("single tree = %+v, want static at 0", got)
	}
	if got := ResolveScrub(0.5, 0); !got.Static {
		t.Errorf("empty movie = %+v, want static", got)
	}
}
