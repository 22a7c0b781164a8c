package tree

import (
	"strconv"
	"strings"
)

// Keys give every node, branch, label, and leaf extension a stable string
// identity across all trees of a movie. Two nodes in different trees with
// the same split-index set produce the same key, which is what lets the
// interpolator match entities between frames without cross-tree pointers.
//
// The key body is a commutative 64-bit hash over the split indices, so it
// is independent of element order. At the documented operating regime of
// up to 1e5 distinct splits per movie, the collision probability of a
// 64-bit accumulator is far below 1e-9.

// splitmix64 is the finalizer of the SplitMix64 generator. It mixes a
// single index into a well-distributed 64-bit value.
func splitmix64(x uint64) uint64 {
	x += 0x9e3779b97f4a7c15
	x = (x ^ (x >> 30)) * 0xbf58476d1ce4e5b9
	x = (x ^ (x >> 27)) * 0x94d049bb133111eb
	return x ^ (x >> 31)
}

// splitHash folds the per-index hashes with XOR, which makes the result
// independent of input order. The element count is mixed in separately so
// {0} and {0,0} cannot collide.
func splitHash(indices []int) uint64 {
	var acc uint64
	for _, idx := range indices {
		acc ^= splitmix64(uint64(idx))
	}
	return acc ^ splitmix64(uint64(len(indices))<<32)
}

// keyBody returns the hash body for a node: the base-36 split hash, a
// sanitized name when split indices are absent, or "unknown" as the last
// resort. Nodes that end up with the same fallback body lose animation
// correspondence but never break layout.
func keyBody(n *Node) string {
	if len(n.SplitIndices) > 0 {
		return strconv.FormatUint(splitHash(n.SplitIndices), 36)
	}
	if s := sanitizeName(n.Name); s != "" {
		return s
	}
	return "unknown"
}

// sanitizeName reduces a free-form taxon name to a key-safe token.
func sanitizeName(name string) string {
	var b strings.Builder
	for _, r := range name {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9', r == '_':
			b.WriteRune(r)
		case r >= 'A' && r <= 'Z':
			b.WriteRune(r + ('a' - 'A'))
		case r == ' ', r == '-', r == '.':
			b.WriteRune('_')
		}
	}
	return b.String()
}

// NodeKey returns the stable identity of a node.
func NodeKey(n *Node) string {
	return "node-" + keyBody(n)
}

// LinkKey returns the stable identity of the branch ending at target.
// Branches are keyed by their target node: a branch exists iff its target
// exists, so the target's split identifies the branch.
func LinkKey(target *Node) string {
	return "link-" + keyBody(target)
}

// LabelKey returns the stable identity of a leaf's text label.
func LabelKey(leaf *Node) string {
	return "label-" + keyBody(leaf)
}

// ExtensionKey returns the stable identity of a leaf's dashed extension.
func ExtensionKey(leaf *Node) string {
	return "ext-" + keyBody(leaf)
}
