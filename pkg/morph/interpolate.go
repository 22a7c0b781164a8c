package morph

import (
	"math"

	"github.com/phylomovie/phylomovie/pkg/layout"
)

// FrameNode is a node record with an opacity multiplier.
type FrameNode struct {
	layout.NodeRecord
	Opacity float64 `json:"opacity"`
}

// FrameLink is a link record with an opacity multiplier.
type FrameLink struct {
	layout.LinkRecord
	Opacity float64 `json:"opacity"`
}

// FrameExtension is an extension record with an opacity multiplier.
type FrameExtension struct {
	layout.ExtensionRecord
	Opacity float64 `json:"opacity"`
}

// FrameLabel is a label record with an opacity multiplier.
type FrameLabel struct {
	layout.LabelRecord
	Opacity float64 `json:"opacity"`
}

// Frame is the geometry bundle for one animation frame.
//
// TargetData references the target tree's layer data so renderers can draw
// motion trails or arrows toward final positions; the interpolator itself
// keeps no history.
type Frame struct {
	Nodes      []FrameNode      `json:"nodes"`
	Links      []FrameLink      `json:"links"`
	Extensions []FrameExtension `json:"extensions"`
	Labels     []FrameLabel     `json:"labels"`

	Stage Stage   `json:"stage"`
	T     float64 `json:"t"`

	TargetData *layout.LayerData `json:"-"`
}

// Interpolate produces the frame geometry at parameter t between two
// laid-out trees. Correspondence is by key; the stage's timing remaps t
// per entity class.
//
// Contract: at t=0 the frame is geometrically identical to A's update and
// exit records; at t=1 it is identical to B's update and enter records.
func Interpolate(a, b *layout.LayerData, t float64, stage Stage) *Frame {
	tm := TimingFor(stage)
	u := tm.Update(t)
	enterOp := tm.EnterOpacity(t)
	exitOp := tm.ExitOpacity(t)

	frame := &Frame{Stage: stage, T: t, TargetData: b}
	frame.interpolateNodes(a, b, u, enterOp, exitOp)
	frame.interpolateLinks(a, b, u, enterOp, exitOp)
	frame.interpolateExtensions(a, b, u, enterOp, exitOp)
	frame.interpolateLabels(a, b, u, enterOp, exitOp)
	return frame
}

func (f *Frame) interpolateNodes(a, b *layout.LayerData, u, enterOp, exitOp float64) {
	aByKey := make(map[string]layout.NodeRecord, len(a.Nodes))
	for _, n := range a.Nodes {
		aByKey[n.Key] = n
	}
	bKeys := make(map[string]bool, len(b.Nodes))

	for _, nb := range b.Nodes {
		bKeys[nb.Key] = true
		na, ok := aByKey[nb.Key]
		if !ok {
			// Enter: appears at the target position.
			if enterOp > 0 {
				f.Nodes = append(f.Nodes, FrameNode{NodeRecord: nb, Opacity: enterOp})
			}
			continue
		}
		// Update: polar interpolation along the shortest angular path.
		r := layout.Lerp(na.Radius, nb.Radius, u)
		angle := layout.LerpAngle(na.Angle, nb.Angle, u)
		f.Nodes = append(f.Nodes, FrameNode{
			NodeRecord: layout.NodeRecord{
				Key:      nb.Key,
				Position: [3]float64{r * math.Cos(angle), r * math.Sin(angle), 0},
				IsLeaf:   nb.IsLeaf,
				RadiusPx: layout.Lerp(na.RadiusPx, nb.RadiusPx, u),
				Radius:   r,
				Angle:    angle,
			},
			Opacity: 1,
		})
	}

	for _, na := range a.Nodes {
		if bKeys[na.Key] {
			continue
		}
		// Exit: held at the source position while fading.
		if exitOp > 0 {
			f.Nodes = append(f.Nodes, FrameNode{NodeRecord: na, Opacity: exitOp})
		}
	}
}

func (f *Frame) interpolateLinks(a, b *layout.LayerData, u, enterOp, exitOp float64) {
	aByKey := make(map[string]layout.LinkRecord, len(a.Links))
	for _, l := range a.Links {
		aByKey[l.Key] = l
	}
	bKeys := make(map[string]bool, len(b.Links))

	for _, lb := range b.Links {
		bKeys[lb.Key] = true
		la, ok := aByKey[lb.Key]
		if !ok {
			if enterOp > 0 {
				f.Links = append(f.Links, FrameLink{LinkRecord: lb, Opacity: enterOp})
			}
			continue
		}
		// Update: interpolate both polar endpoints and resample the path.
		sr := layout.Lerp(la.SourceRadius, lb.SourceRadius, u)
		sa := layout.LerpAngle(la.SourceAngle, lb.SourceAngle, u)
		tr := layout.Lerp(la.TargetRadius, lb.TargetRadius, u)
		ta := layout.LerpAngle(la.TargetAngle, lb.TargetAngle, u)
		f.Links = append(f.Links, FrameLink{
			LinkRecord: layout.LinkRecord{
				Key:          lb.Key,
				Path:         layout.ArcRadialPath(sr, sa, tr, ta),
				SourceRadius: sr,
				SourceAngle:  sa,
				TargetRadius: tr,
				TargetAngle:  ta,
			},
			Opacity: 1,
		})
	}

	for _, la := range a.Links {
		if bKeys[la.Key] {
			continue
		}
		if exitOp > 0 {
			f.Links = append(f.Links, FrameLink{LinkRecord: la, Opacity: exitOp})
		}
	}
}

func (f *Frame) interpolateExtensions(a, b *layout.LayerData, u, enterOp, exitOp float64) {
	aByKey := make(map[string]layout.ExtensionRecord, len(a.Extensions))
	for _, e := range a.Extensions {
		aByKey[e.Key] = e
	}
	bKeys := make(map[string]bool, len(b.Extensions))

	for _, eb := range b.Extensions {
		bKeys[eb.Key] = true
		ea, ok := aByKey[eb.Key]
		if !ok {
			if enterOp > 0 {
				f.Extensions = append(f.Extensions, FrameExtension{ExtensionRecord: eb, Opacity: enterOp})
			}
			continue
		}
		// The inner point moves like a leaf node; the outer point stays on
		// the movie-wide ring with the interpolated angle.
		inner := layout.Lerp(ea.InnerRadius, eb.InnerRadius, u)
		angle := layout.LerpAngle(ea.Angle, eb.Angle, u)
		outer := eb.OuterRadius
		f.Extensions = append(f.Extensions, FrameExtension{
			ExtensionRecord: layout.ExtensionRecord{
				Key: eb.Key,
				Path: [2][2]float64{
					{inner * math.Cos(angle), inner * math.Sin(angle)},
					{outer * math.Cos(angle), outer * math.Sin(angle)},
				},
				InnerRadius: inner,
				Angle:       angle,
				OuterRadius: outer,
			},
			Opacity: 1,
		})
	}

	for _, ea := range a.Extensions {
		if bKeys[ea.Key] {
			continue
		}
		if exitOp > 0 {
			f.Extensions = append(f.Extensions, FrameExtension{ExtensionRecord: ea, Opacity: exitOp})
		}
	}
}

func (f *Frame) interpolateLabels(a, b *layout.LayerData, u, enterOp, exitOp float64) {
	aByKey := make(map[string]layout.LabelRecord, len(a.Labels))
	for _, l := range a.Labels {
		aByKey[l.Key] = l
	}
	bKeys := make(map[string]bool, len(b.Labels))

	for _, lb := range b.Labels {
		bKeys[lb.Key] = true
		la, ok := aByKey[lb.Key]
		if !ok {
			if enterOp > 0 {
				f.Labels = append(f.Labels, FrameLabel{LabelRecord: lb, Opacity: enterOp})
			}
			continue
		}
		// Labels ride the ring: constant radius, shortest-angle rotation,
		// target text.
		radius := layout.Lerp(la.Radius, lb.Radius, u)
		angle := layout.LerpAngle(la.Angle, lb.Angle, u)
		f.Labels = append(f.Labels, FrameLabel{
			LabelRecord: layout.LabelRecord{
				Key:        lb.Key,
				Text:       lb.Text,
				Position:   [2]float64{radius * math.Cos(angle), radius * math.Sin(angle)},
				Rotation:   angle,
				TextAnchor: layout.TextAnchor(angle),
				LeafRef:    lb.LeafRef,
				Radius:     radius,
				Angle:      angle,
			},
			Opacity: 1,
		})
	}

	for _, la := range a.Labels {
		if bKeys[la.Key] {
			continue
		}
		if exitOp > 0 {
			f.Labels = append(f.Labels, FrameLabel{LabelRecord: la, Opacity: exitOp})
		}
	}
}
