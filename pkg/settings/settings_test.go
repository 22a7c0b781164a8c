package settings

import (
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"

	"github.com/phylomovie/phylomovie/pkg/errors"
	"github.com/phylomovie/phylomovie/pkg/tree"
)

func TestDefaultAppearanceIsValid(t *testing.T) {
	if err := DefaultAppearance().Validate(); err != nil {
		t.Fatalf("defaults must validate: %v", err)
	}
}

func TestAppearanceValidation(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Appearance)
	}{
		{"zero node size", func(a *Appearance) { a.NodeSize = 0 }},
		{"negative stroke", func(a *Appearance) { a.StrokeWidth = -1 }},
		{"zero font", func(a *Appearance) { a.FontSize = 0 }},
		{"bad transform", func(a *Appearance) { a.BranchTransformation = "cbrt" }},
		{"angle too small", func(a *Appearance) { a.LayoutAngleDegrees = 45 }},
		{"angle too large", func(a *Appearance) { a.LayoutAngleDegrees = 361 }},
		{"rotation negative", func(a *Appearance) { a.LayoutRotationDegrees = -1 }},
		{"rotation full circle", func(a *Appearance) { a.LayoutRotationDegrees = 360 }},
		{"trail too short", func(a *Appearance) { a.TrailLength = 1 }},
		{"trail too long", func(a *Appearance) { a.TrailLength = 51 }},
		{"bad subtree mode", func(a *Appearance) { a.MarkedSubtreeMode = "some" }},
	}

	for _, tt := range tests {
		a := DefaultAppearance()
		tt.mutate(&a)
		if err := a.Validate(); err == nil {
			t.Errorf("%s: want validation error", tt.name)
		}
	}
}

func TestAppearanceBoundaries(t *testing.T) {
	a := DefaultAppearance()
	a.LayoutAngleDegrees = 90
	a.LayoutRotationDegrees = 359.9
	a.TrailLength = 2
	if err := a.Validate(); err != nil {
		t.Errorf("lower boundaries should validate: %v", err)
	}

	a.LayoutAngleDegrees = 360
	a.TrailLength = 50
	if err := a.Validate(); err != nil {
		t.Errorf("upper boundaries should validate: %v", err)
	}
}

func TestFacetClassification(t *testing.T) {
	layoutParams := []string{"nodeSize", "branchTransformation", "layoutAngleDegrees", "layoutRotationDegrees"}
	for _, p := range layoutParams {
		if FacetOf(p) != FacetLayout {
			t.Errorf("%s should invalidate layouts", p)
		}
	}
	styleParams := []string{"strokeWidth", "fontSize", "trailsEnabled", "trailLength", "markedSubtreeMode"}
	for _, p := range styleParams {
		if FacetOf(p) != FacetStyle {
			t.Errorf("%s should only restyle", p)
		}
	}
	if FacetOf("somethingNew") != FacetLayout {
		t.Error("unknown parameters should conservatively invalidate layouts")
	}
}

func TestDiffAndInvalidation(t *testing.T) {
	a := DefaultAppearance()

	b := a
	b.StrokeWidth = 3
	if got := a.Diff(b); !reflect.DeepEqual(got, []string{"strokeWidth"}) {
		t.Errorf("Diff = %v, want [strokeWidth]", got)
	}
	if a.InvalidatesLayout(b) {
		t.Error("stroke width change must not invalidate layouts")
	}

	c := a
	c.LayoutAngleDegrees = 180
	c.FontSize = 14
	if !a.InvalidatesLayout(c) {
		t.Error("angle change must invalidate layouts")
	}
	if len(a.Diff(c)) != 2 {
		t.Errorf("Diff = %v, want two entries", a.Diff(c))
	}

	if a.InvalidatesLayout(a) {
		t.Error("no change, no invalidation")
	}
}

func TestStoreRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "settings.json")

	s, err := NewStore(path)
	if err != nil {
		t.Fatalf("NewStore: %v", err)
	}

	// Fresh store yields defaults.
	a, err := s.Appearance()
	if err != nil {
		t.Fatalf("Appearance: %v", err)
	}
	if a != DefaultAppearance() {
		t.Errorf("fresh store = %+v, want defaults", a)
	}

	a.NodeSize = 5
	a.BranchTransformation = tree.TransformLog
	if err := s.SetAppearance(a); err != nil {
		t.Fatalf("SetAppearance: %v", err)
	}
	if err := s.SetColorCategories(map[string]string{"primates": "#ff0000"}); err != nil {
		t.Fatalf("SetColorCategories: %v", err)
	}

	// Reopen and read back.
	s2, err := NewStore(path)
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	got, err := s2.Appearance()
	if err != nil {
		t.Fatalf("Appearance after reopen: %v", err)
	}
	if got.NodeSize != 5 || got.BranchTransformation != tree.TransformLog {
		t.Errorf("persisted appearance = %+v", got)
	}
	categories, err := s2.ColorCategories()
	if err != nil {
		t.Fatalf("ColorCategories: %v", err)
	}
	if categories["primates"] != "#ff0000" {
		t.Errorf("persisted categories = %v", categories)
	}
}

func TestStoreRejectsInvalidAppearance(t *testing.T) {
	s, _ := NewStore(filepath.Join(t.TempDir(), "settings.json"))

	a := DefaultAppearance()
	a.TrailLength = 1000
	if err := s.SetAppearance(a); !errors.Is(err, errors.ErrCodeInvalidInput) {
		t.Errorf("err = %v, want INVALID_INPUT", err)
	}
}

func TestStoreToleratesUnknownKeys(t *testing.T) {
	path := filepath.Join(t.TempDir(), "settings.json")
	seed := `{"phylo.futureFeature": {"x": 1}, "phylo.appearance": {"nodeSize": 7}}`
	if err := os.WriteFile(path, []byte(seed), 0600); err != nil {
		t.Fatal(err)
	}

	s, err := NewStore(path)
	if err != nil {
		t.Fatalf("NewStore: %v", err)
	}
	a, err := s.Appearance()
	if err != nil {
		t.Fatalf("Appearance: %v", err)
	}
	if a.NodeSize != 7 {
		t.Errorf("nodeSize = %v, want 7 from file", a.NodeSize)
	}
	// Partial objects inherit defaults for missing fields.
	if a.TrailLength != DefaultAppearance().TrailLength {
		t.Errorf("trailLength = %v, want default", a.TrailLength)
	}

	// Saving must preserve the unknown key.
	if err := s.SetAppearance(DefaultAppearance()); err != nil {
		t.Fatalf("SetAppearance: %v", err)
	}
	raw, _ := os.ReadFile(path)
	if !strings.Contains(string(raw), "phylo.futureFeature") {
		t.Error("unknown key dropped on save")
	}
}
