// Package tree implements the phylogenetic tree model used across a movie.
//
// A movie is an ordered sequence of rooted trees over the same leaf set.
// Each node carries the sorted leaf-index set of its subtree (the biological
// split), which is the stable identity of the node across all trees in the
// movie: two nodes in different trees with the same split indices represent
// the same biological entity. Keys derived from split indices (see keys.go)
// drive animation correspondence.
//
// Trees are immutable after Init. Branch-length transforms return deep
// copies so the original movie data stays intact.
package tree

import (
	"math"

	"github.com/phylomovie/phylomovie/pkg/errors"
)

// Node is a node of a rooted phylogenetic tree.
//
// Leaves carry a Name (the taxon identifier) and a singleton SplitIndices.
// Internal nodes carry the union of their children's SplitIndices. The
// root's Length is zero or absent.
type Node struct {
	Name         string  `json:"name,omitempty"`
	Length       float64 `json:"branch_length"`
	SplitIndices []int   `json:"split_indices,omitempty"`
	Children     []*Node `json:"children,omitempty"`

	// Parent is set by Init. It is nil for the root.
	Parent *Node `json:"-"`
}

// IsLeaf reports whether the node has no children.
func (n *Node) IsLeaf() bool {
	return len(n.Children) == 0
}

// Init links parent pointers, validates branch lengths, and fills missing
// split indices from in-order leaf positions. It must be called once on the
// root after decoding and before any other operation.
func (n *Node) Init() error {
	if err := n.link(nil); err != nil {
		return err
	}
	if !n.hasSplitIndices() {
		next := 0
		n.assignSplits(&next)
	}
	return nil
}

func (n *Node) link(parent *Node) error {
	n.Parent = parent
	if math.IsNaN(n.Length) || math.IsInf(n.Length, 0) {
		return errors.New(errors.ErrCodeInvalidTree, "non-finite branch length on node %q", n.Name)
	}
	if n.Length < 0 {
		return errors.New(errors.ErrCodeInvalidTree, "negative branch length on node %q", n.Name)
	}
	for _, c := range n.Children {
		if err := c.link(n); err != nil {
			return err
		}
	}
	return nil
}

// hasSplitIndices reports whether every leaf carries a split index set.
func (n *Node) hasSplitIndices() bool {
	if n.IsLeaf() {
		return len(n.SplitIndices) > 0
	}
	for _, c := range n.Children {
		if !c.hasSplitIndices() {
			return false
		}
	}
	return true
}

// assignSplits numbers leaves in traversal order and propagates unions
// upward. Used only when the upstream data omits split indices.
func (n *Node) assignSplits(next *int) []int {
	if n.IsLeaf() {
		n.SplitIndices = []int{*next}
		*next++
		return n.SplitIndices
	}
	var union []int
	for _, c := range n.Children {
		union = mergeSorted(union, c.assignSplits(next))
	}
	n.SplitIndices = union
	return union
}

// mergeSorted merges two sorted int slices into a new sorted slice.
func mergeSorted(a, b []int) []int {
	out := make([]int, 0, len(a)+len(b))
	i, j := 0, 0
	for i < len(a) && j < len(b) {
		switch {
		case a[i] < b[j]:
			out = append(out, a[i])
			i++
		case a[i] > b[j]:
			out = append(out, b[j])
			j++
		default:
			out = append(out, a[i])
			i++
			j++
		}
	}
	out = append(out, a[i:]...)
	out = append(out, b[j:]...)
	return out
}

// Each visits the subtree rooted at n in pre-order.
func (n *Node) Each(fn func(*Node)) {
	fn(n)
	for _, c := range n.Children {
		c.Each(fn)
	}
}

// EachPost visits the subtree rooted at n in post-order.
func (n *Node) EachPost(fn func(*Node)) {
	for _, c := range n.Children {
		c.EachPost(fn)
	}
	fn(n)
}

// Descendants returns every node of the subtree in pre-order, including n.
func (n *Node) Descendants() []*Node {
	var out []*Node
	n.Each(func(m *Node) { out = append(out, m) })
	return out
}

// Leaves returns the leaves of the subtree in traversal order.
func (n *Node) Leaves() []*Node {
	var out []*Node
	n.Each(func(m *Node) {
		if m.IsLeaf() {
			out = append(out, m)
		}
	})
	return out
}

// Link is a directed branch from a parent node to one of its children.
type Link struct {
	Source *Node
	Target *Node
}

// Links returns every parent-child branch of the subtree in pre-order.
func (n *Node) Links() []Link {
	var out []Link
	n.Each(func(m *Node) {
		for _, c := range m.Children {
			out = append(out, Link{Source: m, Target: c})
		}
	})
	return out
}

// LeafCount returns the number of leaves in the subtree.
func (n *Node) LeafCount() int {
	if n.IsLeaf() {
		return 1
	}
	count := 0
	for _, c := range n.Children {
		count += c.LeafCount()
	}
	return count
}

// Depth returns the cumulative branch length from the root to n.
func (n *Node) Depth() float64 {
	d := 0.0
	for m := n; m != nil; m = m.Parent {
		d += m.Length
	}
	return d
}

// MaxDepth returns the largest cumulative branch length over all leaves.
func (n *Node) MaxDepth() float64 {
	max := 0.0
	n.Each(func(m *Node) {
		if d := m.Depth(); d > max {
			max = d
		}
	})
	return max
}

// Clone returns a deep copy of the subtree with parent pointers relinked.
// Split index slices are shared: they are immutable after Init.
func (n *Node) Clone() *Node {
	cp := &Node{
		Name:         n.Name,
		Length:       n.Length,
		SplitIndices: n.SplitIndices,
	}
	if len(n.Children) > 0 {
		cp.Children = make([]*Node, len(n.Children))
		for i, c := range n.Children {
			cp.Children[i] = c.Clone()
			cp.Children[i].Parent = cp
		}
	}
	return cp
}

// ValidateSplits checks the split invariant: the split indices of every
// internal node equal the union of its children's split indices.
func (n *Node) ValidateSplits() error {
	var fail *Node
	n.EachPost(func(m *Node) {
		if fail != nil || m.IsLeaf() {
			return
		}
		var union []int
		for _, c := range m.Children {
			union = mergeSorted(union, c.SplitIndices)
		}
		if !equalInts(union, m.SplitIndices) {
			fail = m
		}
	})
	if fail != nil {
		return errors.New(errors.ErrCodeInvalidTree,
			"split indices of node %q are not the union of its children", fail.Name)
	}
	return nil
}

func equalInts(a, b []int) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}
