package layout

import (
	"math"

	"github.com/phylomovie/phylomovie/pkg/tree"
)

// Layer-data defaults.
const (
	// DefaultNodeSize is the default leaf node radius in pixels.
	DefaultNodeSize = 3.0

	// minInternalNodeRadius keeps internal nodes visible at small node sizes.
	minInternalNodeRadius = 1.0

	// labelGap is the radial distance between the extension ring and labels.
	labelGap = 10.0
)

// NodeRecord is a renderable node circle.
type NodeRecord struct {
	Key      string     `json:"key"`
	Position [3]float64 `json:"position"`
	IsLeaf   bool       `json:"is_leaf"`
	RadiusPx float64    `json:"radius_px"`

	// Radius and Angle are the polar coordinates the position derives from.
	// The interpolator works in polar space.
	Radius float64 `json:"radius"`
	Angle  float64 `json:"angle"`
}

// LinkRecord is a renderable branch path: an arc on the source circle
// followed by a radial segment to the target.
type LinkRecord struct {
	Key  string       `json:"key"`
	Path [][2]float64 `json:"path"`

	// Polar endpoints, kept so the interpolator can resample the path at
	// intermediate positions.
	SourceRadius float64 `json:"source_radius"`
	SourceAngle  float64 `json:"source_angle"`
	TargetRadius float64 `json:"target_radius"`
	TargetAngle  float64 `json:"target_angle"`
}

// ExtensionRecord is a dashed segment from a leaf to the label ring.
type ExtensionRecord struct {
	Key  string        `json:"key"`
	Path [2][2]float64 `json:"path"`

	// Inner polar endpoint (the leaf) and the shared outer ring radius.
	InnerRadius float64 `json:"inner_radius"`
	Angle       float64 `json:"angle"`
	OuterRadius float64 `json:"outer_radius"`
}

// LabelRecord is a renderable leaf label. Rotation is in radians; the
// renderer converts to degrees.
type LabelRecord struct {
	Key        string     `json:"key"`
	Text       string     `json:"text"`
	Position   [2]float64 `json:"position"`
	Rotation   float64    `json:"rotation"`
	TextAnchor string     `json:"text_anchor"`
	LeafRef    string     `json:"leaf_ref"`

	Radius float64 `json:"radius"`
	Angle  float64 `json:"angle"`
}

// LayerData is the complete renderable geometry of one laid-out tree.
// Records carry only primitive data so they can cross a process or worker
// boundary as JSON.
type LayerData struct {
	Nodes      []NodeRecord      `json:"nodes"`
	Links      []LinkRecord      `json:"links"`
	Extensions []ExtensionRecord `json:"extensions"`
	Labels     []LabelRecord     `json:"labels"`

	// MaxRadius is the largest node radius of this tree.
	MaxRadius float64 `json:"max_radius"`

	// ExtensionRadius is the movie-wide label ring radius. All trees of a
	// movie share it so labels do not pump in and out between frames.
	ExtensionRadius float64 `json:"extension_radius"`

	// LabelRadius is the radial position of label anchors.
	LabelRadius float64 `json:"label_radius"`
}

// LayerOptions configures layer-data generation.
type LayerOptions struct {
	// NodeSize is the leaf node radius in pixels.
	NodeSize float64

	// ExtensionRadius is the movie-wide label ring radius in pixels.
	// It must be at least the scaled max radius of every tree in the movie.
	// Zero derives it from this tree alone.
	ExtensionRadius float64
}

// LayerDataFrom converts a laid-out tree into renderable records.
func LayerDataFrom(t *Tree, opts LayerOptions) *LayerData {
	nodeSize := opts.NodeSize
	if nodeSize <= 0 {
		nodeSize = DefaultNodeSize
	}
	extRadius := opts.ExtensionRadius
	if extRadius < t.MaxRadius {
		extRadius = t.MaxRadius
	}

	out := &LayerData{
		MaxRadius:       t.MaxRadius,
		ExtensionRadius: extRadius,
		LabelRadius:     extRadius + labelGap,
	}

	for _, n := range t.Nodes {
		radiusPx := nodeSize
		if !n.IsLeaf() {
			radiusPx = math.Max(nodeSize/2, minInternalNodeRadius)
		}
		out.Nodes = append(out.Nodes, NodeRecord{
			Key:      tree.NodeKey(n.Tree),
			Position: [3]float64{n.X, n.Y, 0},
			IsLeaf:   n.IsLeaf(),
			RadiusPx: radiusPx,
			Radius:   n.Radius,
			Angle:    n.Angle,
		})

		for _, c := range n.Children {
			out.Links = append(out.Links, LinkRecord{
				Key:          tree.LinkKey(c.Tree),
				Path:         ArcRadialPath(n.Radius, n.Angle, c.Radius, c.Angle),
				SourceRadius: n.Radius,
				SourceAngle:  n.Angle,
				TargetRadius: c.Radius,
				TargetAngle:  c.Angle,
			})
		}

		if n.IsLeaf() {
			outer := [2]float64{
				extRadius * math.Cos(n.Angle),
				extRadius * math.Sin(n.Angle),
			}
			out.Extensions = append(out.Extensions, ExtensionRecord{
				Key:         tree.ExtensionKey(n.Tree),
				Path:        [2][2]float64{{n.X, n.Y}, outer},
				InnerRadius: n.Radius,
				Angle:       n.Angle,
				OuterRadius: extRadius,
			})

			labelRadius := extRadius + labelGap
			out.Labels = append(out.Labels, LabelRecord{
				Key:  tree.LabelKey(n.Tree),
				Text: n.Tree.Name,
				Position: [2]float64{
					labelRadius * math.Cos(n.Angle),
					labelRadius * math.Sin(n.Angle),
				},
				Rotation:   n.Angle,
				TextAnchor: TextAnchor(n.Angle),
				LeafRef:    tree.NodeKey(n.Tree),
				Radius:     labelRadius,
				Angle:      n.Angle,
			})
		}
	}
	return out
}
