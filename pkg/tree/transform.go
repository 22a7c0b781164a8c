package tree

import (
	"math"

	"github.com/phylomovie/phylomovie/pkg/errors"
)

// Transform names a branch-length transformation applied before layout.
type Transform string

// Supported branch-length transformations.
const (
	// TransformNone leaves branch lengths unchanged.
	TransformNone Transform = "none"

	// TransformLog maps b to log(1+b), compressing long branches.
	TransformLog Transform = "log"

	// TransformSqrt maps b to sqrt(b).
	TransformSqrt Transform = "sqrt"
)

// ValidTransforms is the set of supported transformations.
var ValidTransforms = map[Transform]bool{
	TransformNone: true,
	TransformLog:  true,
	TransformSqrt: true,
}

// ParseTransform validates a transform name. The empty string means none.
func ParseTransform(s string) (Transform, error) {
	if s == "" {
		return TransformNone, nil
	}
	tr := Transform(s)
	if !ValidTransforms[tr] {
		return "", errors.New(errors.ErrCodeInvalidTransform,
			"invalid branch transformation: %q (must be one of: none, log, sqrt)", s)
	}
	return tr, nil
}

// Apply transforms a single branch length.
func (t Transform) Apply(length float64) float64 {
	switch t {
	case TransformLog:
		return math.Log1p(length)
	case TransformSqrt:
		return math.Sqrt(length)
	default:
		return length
	}
}

// ApplyTransform returns a deep copy of the tree with every branch length
// transformed. The original tree is not modified; TransformNone still
// copies so callers can rely on getting an independent tree.
func ApplyTransform(root *Node, t Transform) *Node {
	cp := root.Clone()
	cp.Each(func(n *Node) {
		n.Length = t.Apply(n.Length)
	})
	return cp
}
