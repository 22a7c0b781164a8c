package morph

import (
	"math"
	"reflect"
	"testing"

	"github.com/phylomovie/phylomovie/pkg/layout"
)

func polarNode(key string, radius, angle float64, leaf bool) layout.NodeRecord {
	return layout.NodeRecord{
		Key:      key,
		Position: [3]float64{radius * math.Cos(angle), radius * math.Sin(angle), 0},
		IsLeaf:   leaf,
		RadiusPx: 3,
		Radius:   radius,
		Angle:    angle,
	}
}

func polarLink(key string, sr, sa, tr, ta float64) layout.LinkRecord {
	return layout.LinkRecord{
		Key:          key,
		Path:         layout.ArcRadialPath(sr, sa, tr, ta),
		SourceRadius: sr,
		SourceAngle:  sa,
		TargetRadius: tr,
		TargetAngle:  ta,
	}
}

func TestInterpolateEndpointContract(t *testing.T) {
	a := &layout.LayerData{
		Nodes: []layout.NodeRecord{
			polarNode("node-a", 10, 0.2, true),
			polarNode("node-b", 20, 1.0, true),
		},
		Links: []layout.LinkRecord{polarLink("link-a", 5, 0.2, 10, 0.2)},
	}
	b := &layout.LayerData{
		Nodes: []layout.NodeRecord{
			polarNode("node-a", 15, 0.6, true),
			polarNode("node-b", 20, 1.4, true),
		},
		Links: []layout.LinkRecord{polarLink("link-a", 8, 0.6, 15, 0.6)},
	}
	stage := DetectStage(a, b)
	if stage != StageReorder {
		t.Fatalf("stage = %v, want REORDER", stage)
	}

	f0 := Interpolate(a, b, 0, stage)
	for i, n := range f0.Nodes {
		want := a.Nodes[i]
		if n.Key != want.Key || math.Abs(n.Radius-want.Radius) > 1e-12 || math.Abs(n.Angle-want.Angle) > 1e-12 {
			t.Errorf("t=0 node %d = %+v, want source %+v", i, n.NodeRecord, want)
		}
	}

	f1 := Interpolate(a, b, 1, stage)
	for i, n := range f1.Nodes {
		want := b.Nodes[i]
		if n.Key != want.Key || math.Abs(n.Radius-want.Radius) > 1e-12 || math.Abs(n.Angle-want.Angle) > 1e-12 {
			t.Errorf("t=1 node %d = %+v, want target %+v", i, n.NodeRecord, want)
		}
	}
	if len(f1.Links) != 1 || math.Abs(f1.Links[0].TargetAngle-0.6) > 1e-12 {
		t.Errorf("t=1 link = %+v, want target endpoints", f1.Links)
	}
}

func TestInterpolateShortestAngle(t *testing.T) {
	// Leaves at 0.1 and 2π−0.1 must meet at angle 0, not at π.
	a := &layout.LayerData{Nodes: []layout.NodeRecord{polarNode("node-x", 100, 0.1, true)}}
	b := &layout.LayerData{Nodes: []layout.NodeRecord{polarNode("node-x", 100, 2*math.Pi-0.1, true)}}

	f := Interpolate(a, b, 0.5, StageReorder)
	if len(f.Nodes) != 1 {
		t.Fatalf("nodes = %d, want 1", len(f.Nodes))
	}
	mid := layout.CanonicalAngle(f.Nodes[0].Angle)
	if math.Abs(mid) > 1e-9 {
		t.Errorf("midpoint angle = %v, want 0 (short way round)", mid)
	}
	if f.Nodes[0].Position[1] > 0 && math.Abs(f.Nodes[0].Position[1]) > 1e-6 {
		t.Errorf("midpoint position %v drifted off the short arc", f.Nodes[0].Position)
	}
}

func TestInterpolateEnterExitRules(t *testing.T) {
	a := &layout.LayerData{Nodes: []layout.NodeRecord{
		polarNode("node-keep", 10, 0.5, true),
		polarNode("node-gone", 30, 1.5, true),
	}}
	b := &layout.LayerData{Nodes: []layout.NodeRecord{
		polarNode("node-keep", 12, 0.7, true),
		polarNode("node-new", 40, 2.5, true),
	}}
	stage := DetectStage(a, b)
	if stage != StageCollapse {
		t.Fatalf("stage = %v, want COLLAPSE", stage)
	}

	// Early on the exit is present, held at its source position, fading.
	f := Interpolate(a, b, 0.25, stage)
	var sawExit, sawEnter bool
	for _, n := range f.Nodes {
		switch n.Key {
		case "node-gone":
			sawExit = true
			if math.Abs(n.Radius-30) > 1e-12 || math.Abs(n.Angle-1.5) > 1e-12 {
				t.Errorf("exit moved: %+v", n.NodeRecord)
			}
			if math.Abs(n.Opacity-0.5) > 1e-12 {
				t.Errorf("exit opacity = %v, want 0.5", n.Opacity)
			}
		case "node-new":
			sawEnter = true
		}
	}
	if !sawExit {
		t.Error("exit missing before ExitEnd")
	}
	if sawEnter {
		t.Error("enter appeared during the shrink phase")
	}

	// Past ExitEnd the exit is omitted entirely.
	f = Interpolate(a, b, 0.75, stage)
	for _, n := range f.Nodes {
		if n.Key == "node-gone" {
			t.Error("exit lingered past ExitEnd")
		}
	}

	// At the end the enter is present at the target position, fully opaque.
	f = Interpolate(a, b, 1, stage)
	sawEnter = false
	for _, n := range f.Nodes {
		if n.Key == "node-new" {
			sawEnter = true
			if n.Opacity != 1 || math.Abs(n.Radius-40) > 1e-12 {
				t.Errorf("enter at t=1 = %+v opacity %v", n.NodeRecord, n.Opacity)
			}
		}
	}
	if !sawEnter {
		t.Error("enter missing at t=1")
	}
}

func TestInterpolateIdenticalLayouts(t *testing.T) {
	ld := &layout.LayerData{
		Nodes: []layout.NodeRecord{polarNode("node-a", 10, 0.3, true)},
		Links: []layout.LinkRecord{polarLink("link-a", 5, 0.3, 10, 0.3)},
		Labels: []layout.LabelRecord{{
			Key: "label-a", Text: "a", Position: [2]float64{9.5, 3}, Rotation: 0.3,
			TextAnchor: "start", LeafRef: "node-a", Radius: 10, Angle: 0.3,
		}},
	}

	for _, p := range []float64{0, 0.25, 0.5, 1} {
		f := Interpolate(ld, ld, p, StageReorder)
		if len(f.Nodes) != 1 || math.Abs(f.Nodes[0].Radius-10) > 1e-12 || math.Abs(f.Nodes[0].Angle-0.3) > 1e-12 {
			t.Errorf("t=%v: identical layouts should be a fixed point, got %+v", p, f.Nodes)
		}
	}
}

func TestInterpolateDeterministic(t *testing.T) {
	a := &layout.LayerData{Nodes: []layout.NodeRecord{
		polarNode("node-a", 10, 0.2, true),
		polarNode("node-b", 20, 1.0, false),
	}}
	b := &layout.LayerData{Nodes: []layout.NodeRecord{
		polarNode("node-a", 15, 0.9, true),
		polarNode("node-b", 25, 1.8, false),
	}}

	f1 := Interpolate(a, b, 0.5, StageReorder)
	f2 := Interpolate(a, b, 0.5, StageReorder)
	if !reflect.DeepEqual(f1.Nodes, f2.Nodes) {
		t.Error("repeated interpolation at the same t differs")
	}
}

func TestInterpolateExtensionsKeepRing(t *testing.T) {
	a := &layout.LayerData{Extensions: []layout.ExtensionRecord{{
		Key: "ext-a", InnerRadius: 50, Angle: 0.5, OuterRadius: 200,
		Path: [2][2]float64{{50 * math.Cos(0.5), 50 * math.Sin(0.5)}, {200 * math.Cos(0.5), 200 * math.Sin(0.5)}},
	}}}
	b := &layout.LayerData{Extensions: []layout.ExtensionRecord{{
		Key: "ext-a", InnerRadius: 80, Angle: 1.5, OuterRadius: 200,
		Path: [2][2]float64{{80 * math.Cos(1.5), 80 * math.Sin(1.5)}, {200 * math.Cos(1.5), 200 * math.Sin(1.5)}},
	}}}

	f := Interpolate(a, b, 0.5, StageReorder)
	if len(f.Extensions) != 1 {
		t.Fatalf("extensions = %d, want 1", len(f.Extensions))
	}
	e := f.Extensions[0]
	if e.OuterRadius != 200 {
		t.Errorf("outer radius = %v, want the constant ring 200", e.OuterRadius)
	}
	if r := math.Hypot(e.Path[1][0], e.Path[1][1]); math.Abs(r-200) > 1e-9 {
		t.Errorf("outer path point at radius %v, want 200", r)
	}
	if math.Abs(e.Angle-1.0) > 1e-9 {
		t.Errorf("midpoint angle = %v, want 1.0", e.Angle)
	}
}

func TestInterpolateLabelsUseTargetText(t *testing.T) {
	a := &layout.LayerData{Labels: []layout.LabelRecord{{
		Key: "label-a", Text: "old", LeafRef: "node-a", Radius: 100, Angle: 0.2,
	}}}
	b := &layout.LayerData{Labels: []layout.LabelRecord{{
		Key: "label-a", Text: "new", LeafRef: "node-a", Radius: 100, Angle: 0.8,
	}}}

	f := Interpolate(a, b, 0.5, StageReorder)
	if len(f.Labels) != 1 {
		t.Fatalf("labels = %d, want 1", len(f.Labels))
	}
	l := f.Labels[0]
	if l.Text != "new" {
		t.Errorf("label text = %q, want target text", l.Text)
	}
	if l.TextAnchor != layout.TextAnchor(l.Angle) {
		t.Errorf("anchor %q not recomputed for angle %v", l.TextAnchor, l.Angle)
	}
}
