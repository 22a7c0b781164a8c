// Package settings holds the user-tunable appearance parameters and
// persists them, with color category preferences, in a flat JSON
// key-value file.
//
// Every parameter is classified by the pipeline facet it affects, so a
// change invalidates only the caches that actually depend on it: layout
// parameters force layouts to be recomputed, style parameters only
// restyle already-cached geometry.
package settings

import (
	"github.com/phylomovie/phylomovie/pkg/errors"
	"github.com/phylomovie/phylomovie/pkg/tree"
)

// Facet identifies the pipeline stage a parameter change invalidates.
type Facet string

const (
	// FacetLayout parameters change node positions; cached layouts must
	// be recomputed.
	FacetLayout Facet = "layout"

	// FacetStyle parameters only change how cached geometry is drawn.
	FacetStyle Facet = "style"
)

// MarkedSubtreeMode selects which trees show marked-subtree highlights.
type MarkedSubtreeMode string

const (
	MarkedSubtreeAll     MarkedSubtreeMode = "all"
	MarkedSubtreeCurrent MarkedSubtreeMode = "current"
)

// Appearance bundles all render-affecting parameters with their
// defaults.
type Appearance struct {
	NodeSize                 float64           `json:"nodeSize"`
	StrokeWidth              float64           `json:"strokeWidth"`
	FontSize                 float64           `json:"fontSize"`
	BranchTransformation     tree.Transform    `json:"branchTransformation"`
	LayoutAngleDegrees       float64           `json:"layoutAngleDegrees"`
	LayoutRotationDegrees    float64           `json:"layoutRotationDegrees"`
	TrailsEnabled            bool              `json:"trailsEnabled"`
	TrailLength              int               `json:"trailLength"`
	HighlightPulseEnabled    bool              `json:"highlightPulseEnabled"`
	ActiveEdgeDashingEnabled bool              `json:"activeEdgeDashingEnabled"`
	MarkedSubtreeMode        MarkedSubtreeMode `json:"markedSubtreeMode"`
}

// DefaultAppearance returns the stock parameter set.
func DefaultAppearance() Appearance {
	return Appearance{
		NodeSize:                 3,
		StrokeWidth:              1.5,
		FontSize:                 12,
		BranchTransformation:     tree.TransformNone,
		LayoutAngleDegrees:       350,
		LayoutRotationDegrees:    0,
		TrailsEnabled:            false,
		TrailLength:              10,
		HighlightPulseEnabled:    true,
		ActiveEdgeDashingEnabled: true,
		MarkedSubtreeMode:        MarkedSubtreeAll,
	}
}

// Validate checks every parameter's range.
func (a Appearance) Validate() error {
	if a.NodeSize <= 0 {
		return errors.New(errors.ErrCodeInvalidInput, "nodeSize must be positive, got %v", a.NodeSize)
	}
	if a.StrokeWidth <= 0 {
		return errors.New(errors.ErrCodeInvalidInput, "strokeWidth must be positive, got %v", a.StrokeWidth)
	}
	if a.FontSize <= 0 {
		return errors.New(errors.ErrCodeInvalidInput, "fontSize must be positive, got %v", a.FontSize)
	}
	if _, err := tree.ParseTransform(string(a.BranchTransformation)); err != nil {
		return err
	}
	if a.LayoutAngleDegrees < 90 || a.LayoutAngleDegrees > 360 {
		return errors.New(errors.ErrCodeInvalidInput,
			"layoutAngleDegrees must be in [90, 360], got %v", a.LayoutAngleDegrees)
	}
	if a.LayoutRotationDegrees < 0 || a.LayoutRotationDegrees >= 360 {
		return errors.New(errors.ErrCodeInvalidInput,
			"layoutRotationDegrees must be in [0, 360), got %v", a.LayoutRotationDegrees)
	}
	if a.TrailLength < 2 || a.TrailLength > 50 {
		return errors.New(errors.ErrCodeInvalidInput,
			"trailLength must be in [2, 50], got %d", a.TrailLength)
	}
	switch a.MarkedSubtreeMode {
	case MarkedSubtreeAll, MarkedSubtreeCurrent:
	default:
		return errors.New(errors.ErrCodeInvalidInput,
			"markedSubtreeMode must be all or current, got %q", a.MarkedSubtreeMode)
	}
	return nil
}

// facets maps parameter names to the facet they invalidate.
var facets = map[string]Facet{
	"nodeSize":                 FacetLayout, // node size feeds layer-data radii
	"strokeWidth":              FacetStyle,
	"fontSize":                 FacetStyle,
	"branchTransformation":     FacetLayout,
	"layoutAngleDegrees":       FacetLayout,
	"layoutRotationDegrees":    FacetLayout,
	"trailsEnabled":            FacetStyle,
	"trailLength":              FacetStyle,
	"highlightPulseEnabled":    FacetStyle,
	"activeEdgeDashingEnabled": FacetStyle,
	"markedSubtreeMode":        FacetStyle,
}

// FacetOf reports which facet a parameter invalidates; unknown
// parameters conservatively invalidate layouts.
func FacetOf(param string) Facet {
	if f, ok := facets[param]; ok {
		return f
	}
	return FacetLayout
}

// Diff lists the parameters that differ between two appearance sets.
func (a Appearance) Diff(b Appearance) []string {
	var changed []string
	if a.NodeSize != b.NodeSize {
		changed = append(changed, "nodeSize")
	}
	if a.StrokeWidth != b.StrokeWidth {
		changed = append(changed, "strokeWidth")
	}
	if a.FontSize != b.FontSize {
		changed = append(changed, "fontSize")
	}
	if a.BranchTransformation != b.BranchTransformation {
		changed = append(changed, "branchTransformation")
	}
	if a.LayoutAngleDegrees != b.LayoutAngleDegrees {
		changed = append(changed, "layoutAngleDegrees")
	}
	if a.LayoutRotationDegrees != b.LayoutRotationDegrees {
		changed = append(changed, "layoutRotationDegrees")
	}
	if a.TrailsEnabled != b.TrailsEnabled {
		changed = append(changed, "trailsEnabled")
	}
	if a.TrailLength != b.TrailLength {
		changed = append(changed, "trailLength")
	}
	if a.HighlightPulseEnabled != b.HighlightPulseEnabled {
		changed = append(changed, "highlightPulseEnabled")
	}
	if a.ActiveEdgeDashingEnabled != b.ActiveEdgeDashingEnabled {
		changed = append(changed, "activeEdgeDashingEnabled")
	}
	if a.MarkedSubtreeMode != b.MarkedSubtreeMode {
		changed = append(changed, "markedSubtreeMode")
	}
	return changed
}

// InvalidatesLayout reports whether switching from a to b requires
// recomputing layouts, or only restyling.
func (a Appearance) InvalidatesLayout(b Appearance) bool {
	for _, param := range a.Diff(b) {
		if FacetOf(param) == FacetLayout {
			return true
		}
	}
	return false
}
