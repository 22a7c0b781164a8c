// Package layout computes radial coordinates for phylogenetic trees and
// converts laid-out trees into plain geometry records for rendering.
//
// The layout is a radial "tidy" layout: leaves are spread over a
// configurable angular extent with cluster separation weighted by subtree
// leaf counts, internal nodes sit at the midpoint of their children, and
// the radial axis is the cumulative branch length from the root. A
// movie-wide scale keeps all trees of a movie at the same radial scale so
// labels stay on a stable ring between frames.
package layout

import (
	"math"

	"github.com/phylomovie/phylomovie/pkg/tree"
)

// Default layout parameters.
const (
	// DefaultAngleExtent spreads leaves over a near-full circle, leaving a
	// small gap so the first and last leaf do not touch.
	DefaultAngleExtent = 350.0 / 180.0 * math.Pi

	// DefaultMargin is the pixel margin between the tree and the container.
	DefaultMargin = 40.0

	// comparisonScaleFactor shrinks per-tree scaling slightly so trees laid
	// out without a movie-wide scale still leave room for labels.
	comparisonScaleFactor = 0.95

	// radiusEpsilon floors non-root radii so zero-length branches cannot
	// collapse a subtree onto its parent.
	radiusEpsilon = 1e-9
)

// Options configures a radial layout.
type Options struct {
	// Width and Height are the container dimensions in pixels.
	Width  float64
	Height float64

	// Margin is the padding between the tree and the container edge.
	Margin float64

	// AngleExtent is the angular range over which leaves are spread, in
	// radians. Valid range is [π/2, 2π].
	AngleExtent float64

	// AngleOffset rotates the whole layout, in radians.
	AngleOffset float64

	// MaxGlobalScale is the largest unscaled tree radius across the whole
	// movie. When set, every tree is scaled by the same factor so radii are
	// comparable between frames. Zero means per-tree scaling.
	MaxGlobalScale float64
}

// withDefaults fills unset options.
func (o Options) withDefaults() Options {
	if o.Width == 0 {
		o.Width = 800
	}
	if o.Height == 0 {
		o.Height = 600
	}
	if o.Margin == 0 {
		o.Margin = DefaultMargin
	}
	if o.AngleExtent == 0 {
		o.AngleExtent = DefaultAngleExtent
	}
	return o
}

// Node is a tree node with radial coordinates attached.
type Node struct {
	Tree *tree.Node

	// Radius is the scaled cumulative branch length from the root.
	Radius float64

	// Angle is the angular position in radians.
	Angle float64

	// X and Y are the cartesian coordinates derived from (Radius, Angle).
	X float64
	Y float64

	// LeafCount caches the number of leaves under this node.
	LeafCount int

	Parent   *Node
	Children []*Node
}

// IsLeaf reports whether the node has no children.
func (n *Node) IsLeaf() bool {
	return len(n.Children) == 0
}

// Tree is a fully laid-out tree.
type Tree struct {
	Root *Node

	// Nodes lists every node in pre-order.
	Nodes []*Node

	// MaxRadius is the largest scaled radius over all nodes.
	MaxRadius float64

	// Scale is the factor applied to cumulative branch lengths.
	Scale float64
}

// Radial lays out a tree with radial coordinates.
//
// Degenerate trees (zero total branch length, single leaf) produce a
// minimal valid layout with all nodes at the origin rather than an error.
func Radial(root *tree.Node, opts Options) *Tree {
	opts = opts.withDefaults()

	ln := buildNodes(root, nil)
	out := &Tree{Root: ln}
	out.collect(ln)

	// Cumulative branch-length radii. The root sits at zero.
	ln.Radius = 0
	for _, n := range out.Nodes {
		if n.Parent != nil {
			n.Radius = n.Parent.Radius + n.Tree.Length
			if n.Radius < radiusEpsilon {
				n.Radius = radiusEpsilon
			}
		}
	}

	// Tidy angle assignment over [0, AngleExtent], then global rotation.
	assignAngles(ln, opts.AngleExtent)
	for _, n := range out.Nodes {
		n.Angle += opts.AngleOffset
	}

	// Radial scale: movie-wide when available, per-tree otherwise.
	maxRadius := 0.0
	for _, n := range out.Nodes {
		if n.Radius > maxRadius {
			maxRadius = n.Radius
		}
	}
	minDim := math.Min(opts.Width, opts.Height) - 2*opts.Margin
	if minDim < 1 {
		minDim = 1
	}
	scale := 0.0
	switch {
	case opts.MaxGlobalScale > 0:
		scale = minDim / (2 * math.Max(opts.MaxGlobalScale, 1))
	case maxRadius > radiusEpsilon:
		scale = minDim / (2 * maxRadius) * comparisonScaleFactor
	default:
		// Degenerate tree: collapse to the origin.
		scale = 0
	}
	out.Scale = scale

	for _, n := range out.Nodes {
		n.Radius *= scale
		n.X = n.Radius * math.Cos(n.Angle)
		n.Y = n.Radius * math.Sin(n.Angle)
		if n.Radius > out.MaxRadius {
			out.MaxRadius = n.Radius
		}
	}
	return out
}

func buildNodes(t *tree.Node, parent *Node) *Node {
	n := &Node{Tree: t, Parent: parent}
	for _, c := range t.Children {
		n.Children = append(n.Children, buildNodes(c, n))
	}
	if n.IsLeaf() {
		n.LeafCount = 1
	} else {
		for _, c := range n.Children {
			n.LeafCount += c.LeafCount
		}
	}
	return n
}

func (t *Tree) collect(n *Node) {
	t.Nodes = append(t.Nodes, n)
	for _, c := range n.Children {
		t.collect(c)
	}
}

// separation returns the angular weight between two adjacent leaves.
// Siblings sit closer together than leaves from different parents, and
// heavy subtrees push their neighbours further away.
func separation(a, b *Node) float64 {
	base := 4.0
	if a.Parent == b.Parent {
		base = 2.0
	}
	return base * math.Max(1, float64(a.LeafCount+b.LeafCount)/2)
}

// assignAngles places leaves along [0, extent] with separation weights and
// centers internal nodes over their first and last child, the cluster
// ("tidy") assignment.
func assignAngles(root *Node, extent float64) {
	var leaves []*Node
	var walk func(n *Node)
	walk = func(n *Node) {
		if n.IsLeaf() {
			leaves = append(leaves, n)
			return
		}
		for _, c := range n.Children {
			walk(c)
		}
	}
	walk(root)

	if len(leaves) == 1 {
		leaves[0].Angle = extent / 2
	} else {
		pos := 0.0
		for i, leaf := range leaves {
			if i > 0 {
				pos += separation(leaf, leaves[i-1])
			}
			leaf.Angle = pos
		}
		if pos > 0 {
			for _, leaf := range leaves {
				leaf.Angle = leaf.Angle / pos * extent
			}
		}
	}

	// Internal nodes: midpoint of first and last child, bottom-up.
	var center func(n *Node)
	center = func(n *Node) {
		if n.IsLeaf() {
			return
		}
		for _, c := range n.Children {
			center(c)
		}
		first := n.Children[0]
		last := n.Children[len(n.Children)-1]
		n.Angle = (first.Angle + last.Angle) / 2
	}
	center(root)
}
