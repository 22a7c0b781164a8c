// Package movie loads and validates the flat movie record delivered by
// the upstream inference service: the interpolated tree sequence, its
// anchor metadata, the per-pair distances, and the optional alignment
// block.
package movie

import (
	"encoding/json"
	"io"
	"strings"

	"github.com/phylomovie/phylomovie/pkg/cache"
	"github.com/phylomovie/phylomovie/pkg/errors"
	"github.com/phylomovie/phylomovie/pkg/tree"
)

// TreeMetadata annotates one entry of the interpolated tree sequence.
type TreeMetadata struct {
	// SourceTreeGlobalIndex is the index of the inferred tree this entry
	// derives from.
	SourceTreeGlobalIndex int `json:"source_tree_global_index"`

	// IsFullTree marks anchors: trees that came from actual alignment
	// windows rather than synthesized interpolation steps.
	IsFullTree bool `json:"is_full_tree"`
}

// Distances carries per-anchor-pair tree distances, consumed by
// timeline charts.
type Distances struct {
	RobinsonFoulds         []float64 `json:"robinson_foulds"`
	WeightedRobinsonFoulds []float64 `json:"weighted_robinson_foulds,omitempty"`
}

// MSA is the optional alignment block.
type MSA struct {
	// Sequences maps taxon name to its aligned sequence.
	Sequences map[string]string `json:"sequences,omitempty"`

	AlignmentLength int  `json:"alignment_length,omitempty"`
	Overlapping     bool `json:"overlapping,omitempty"`
}

// Data is the movie record. Required fields: InterpolatedTrees,
// TreeMetadata, PairInterpolationRanges, and Distances.RobinsonFoulds.
type Data struct {
	FileName string `json:"file_name,omitempty"`

	InterpolatedTrees []*tree.Node   `json:"interpolated_trees"`
	TreeMetadata      []TreeMetadata `json:"tree_metadata"`

	// PairInterpolationRanges holds one half-open [start, end) index
	// range per consecutive anchor pair, identifying the slice of
	// InterpolatedTrees that animates that pair.
	PairInterpolationRanges [][2]int `json:"pair_interpolation_ranges"`

	Distances Distances `json:"distances"`

	WindowSize     int  `json:"window_size,omitempty"`
	WindowStepSize int  `json:"window_step_size,omitempty"`
	MSA            *MSA `json:"msa,omitempty"`
}

// Decode reads, validates, and initializes a movie from JSON.
func Decode(r io.Reader) (*Data, error) {
	var d Data
	if err := json.NewDecoder(r).Decode(&d); err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidFormat, err, "decoding movie data")
	}
	if err := d.Validate(); err != nil {
		return nil, err
	}
	if err := d.Init(); err != nil {
		return nil, err
	}
	return &d, nil
}

// Validate checks the required fields and their cross-consistency. The
// returned error names every missing field at once so the upstream
// service gets one actionable message.
func (d *Data) Validate() error {
	var missing []string
	if len(d.InterpolatedTrees) == 0 {
		missing = append(missing, "interpolated_trees")
	}
	if len(d.TreeMetadata) == 0 {
		missing = append(missing, "tree_metadata")
	}
	if len(d.PairInterpolationRanges) == 0 {
		missing = append(missing, "pair_interpolation_ranges")
	}
	if len(d.Distances.RobinsonFoulds) == 0 {
		missing = append(missing, "distances.robinson_foulds")
	}
	if len(missing) > 0 {
		return errors.MissingFields(missing)
	}

	if len(d.TreeMetadata) != len(d.InterpolatedTrees) {
		return errors.New(errors.ErrCodeInvalidMovie,
			"tree_metadata has %d entries for %d trees", len(d.TreeMetadata), len(d.InterpolatedTrees))
	}
	for i, rng := range d.PairInterpolationRanges {
		if rng[0] < 0 || rng[1] > len(d.InterpolatedTrees) || rng[0] >= rng[1] {
			return errors.New(errors.ErrCodeInvalidMovie,
				"pair_interpolation_ranges[%d] = [%d, %d) is out of bounds for %d trees",
				i, rng[0], rng[1], len(d.InterpolatedTrees))
		}
	}
	return nil
}

// Init links and validates every tree in the sequence. It must run once
// after decoding.
func (d *Data) Init() error {
	for i, root := range d.InterpolatedTrees {
		if root == nil {
			return errors.New(errors.ErrCodeInvalidMovie, "interpolated_trees[%d] is null", i)
		}
		if err := root.Init(); err != nil {
			return errors.Wrap(errors.ErrCodeInvalidMovie, err, "initializing interpolated_trees[%d]", i)
		}
	}
	return nil
}

// TreeCount reports the number of trees in the sequence.
func (d *Data) TreeCount() int { return len(d.InterpolatedTrees) }

// FullTreeIndices derives the global index of each anchor: the start of
// each pair range plus the end anchor of the final pair.
func (d *Data) FullTreeIndices() []int {
	if len(d.PairInterpolationRanges) == 0 {
		return nil
	}
	indices := make([]int, 0, len(d.PairInterpolationRanges)+1)
	for _, rng := range d.PairInterpolationRanges {
		indices = append(indices, rng[0])
	}
	last := d.PairInterpolationRanges[len(d.PairInterpolationRanges)-1]
	if end := last[1] - 1; len(indices) == 0 || end > indices[len(indices)-1] {
		indices = append(indices, end)
	}
	return indices
}

// AlignmentLength reports the MSA length, or 0 when no alignment block
// is present. A missing explicit length falls back to the longest
// sequence.
func (d *Data) AlignmentLength() int {
	if d.MSA == nil {
		return 0
	}
	if d.MSA.AlignmentLength > 0 {
		return d.MSA.AlignmentLength
	}
	longest := 0
	for _, seq := range d.MSA.Sequences {
		if len(seq) > longest {
			longest = len(seq)
		}
	}
	return longest
}

// Hash returns a stable content hash of the movie, used as its identity
// in caches and stores.
func (d *Data) Hash() (string, error) {
	raw, err := json.Marshal(d)
	if err != nil {
		return "", errors.Wrap(errors.ErrCodeInternal, err, "hashing movie data")
	}
	return cache.Hash(raw), nil
}

// Name returns a human identifier for the movie: the file name without
// its extension, or the content hash prefix when unnamed.
func (d *Data) Name() string {
	if d.FileName != "" {
		name := d.FileName
		if i := strings.LastIndexByte(name, '.'); i > 0 {
			name = name[:i]
		}
		return name
	}
	if h, err := d.Hash(); err == nil && len(h) >= 12 {
		return h[:12]
	}
	return "movie"
}
