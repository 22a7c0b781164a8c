package layout

import (
	"math"
	"testing"
)

func TestShortestAngleDelta(t *testing.T) {
	tests := []struct {
		a, b, want float64
	}{
		{0, 1, 1},
		{1, 0, -1},
		{0.1, 2*math.Pi - 0.1, -0.2}, // wraps through zero, not through π
		{2*math.Pi - 0.1, 0.1, 0.2},
		{0, math.Pi, math.Pi}, // boundary maps to +π
		{0, 2 * math.Pi, 0},
		{-3, 3, -(2*math.Pi - 6)},
	}

	for _, tt := range tests {
		got := ShortestAngleDelta(tt.a, tt.b)
		if math.Abs(got-tt.want) > 1e-9 {
			t.Errorf("ShortestAngleDelta(%v, %v) = %v, want %v", tt.a, tt.b, got, tt.want)
		}
	}
}

func TestLerpAngleThroughZero(t *testing.T) {
	// Angles 0.1 and 2π−0.1 interpolate through 0, not through π.
	got := LerpAngle(0.1, 2*math.Pi-0.1, 0.5)
	if math.Abs(CanonicalAngle(got)) > 1e-9 {
		t.Errorf("midpoint = %v, want 0", got)
	}
}

func TestLerpAngleEndpoints(t *testing.T) {
	a, b := 0.3, 2.2
	if got := LerpAngle(a, b, 0); math.Abs(got-a) > 1e-12 {
		t.Errorf("t=0: %v, want %v", got, a)
	}
	if got := LerpAngle(a, b, 1); math.Abs(CanonicalAngle(got-b)) > 1e-9 {
		t.Errorf("t=1: %v, want %v", got, b)
	}
}

func TestArcRadialPathEndpoints(t *testing.T) {
	path := ArcRadialPath(10, 0, 20, math.Pi/2)

	start := path[0]
	if math.Abs(start[0]-10) > 1e-9 || math.Abs(start[1]) > 1e-9 {
		t.Errorf("path start = %v, want (10, 0)", start)
	}

	end := path[len(path)-1]
	if math.Abs(end[0]) > 1e-9 || math.Abs(end[1]-20) > 1e-9 {
		t.Errorf("path end = %v, want (0, 20)", end)
	}
}

func TestArcRadialPathChordError(t *testing.T) {
	radius := 200.0
	path := ArcRadialPath(radius, 0, 250, math.Pi)

	// All points except the final radial one lie on the source circle; the
	// midpoint of each chord must stay within half a pixel of the arc.
	for i := 0; i+2 < len(path); i++ {
		mx := (path[i][0] + path[i+1][0]) / 2
		my := (path[i][1] + path[i+1][1]) / 2
		dev := radius - math.Hypot(mx, my)
		if dev > maxChordDeviation+1e-9 {
			t.Fatalf("chord %d deviates %v px from the arc", i, dev)
		}
	}
}

func TestArcRadialPathShortestDirection(t *testing.T) {
	// From 0.1 to 2π−0.1 the arc must pass near angle 0, staying short.
	path := ArcRadialPath(100, 0.1, 100, 2*math.Pi-0.1)

	for _, p := range path[:len(path)-1] {
		a := math.Atan2(p[1], p[0])
		if math.Abs(a) > 0.1+1e-9 {
			t.Fatalf("arc point at angle %v left the short way", a)
		}
	}
}

func TestCanonicalAngle(t *testing.T) {
	tests := []struct{ in, want float64 }{
		{0, 0},
		{math.Pi, math.Pi},
		{-math.Pi, math.Pi},
		{3 * math.Pi, math.Pi},
		{2 * math.Pi, 0},
		{-0.25, -0.25},
	}
	for _, tt := range tests {
		if got := CanonicalAngle(tt.in); math.Abs(got-tt.want) > 1e-9 {
			t.Errorf("CanonicalAngle(%v) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

func TestTextAnchor(t *testing.T) {
	if TextAnchor(0) != "start" {
		t.Error("angle 0 should anchor start")
	}
	if TextAnchor(math.Pi) != "end" {
		t.Error("angle π should anchor end")
	}
	if TextAnchor(math.Pi/2) != "end" {
		t.Error("angle π/2 is on the boundary and should anchor end")
	}
	if TextAnchor(2*math.Pi-0.1) != "start" {
		t.Error("angle just below 2π should anchor start")
	}
}
