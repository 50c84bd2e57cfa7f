// Package bptree implements the heterogeneous-key B+-tree secondary
// index: an order-k ordered multimap from key.Key to a caller-supplied
// row reference, with duplicate keys, leaf sibling links for range
// scans, and split/redistribute/coalesce on insert and delete.
//
// Grounded on the original engine's pointer-and-malloc tree
// (engine/bplus.c, engine/serial/bplus-serial.c): the split/coalesce/
// redistribute arithmetic (cut, k_prime promotion, neighbor selection)
// is carried over faithfully, but node linkage uses ordinary Go pointers
// rather than the arena-of-indices the spec's design notes suggest for
// languages without a garbage collector — Go's pointers already give
// the tree the stable, shared, non-owning references spec.md §9 asks
// for, so an arena would only add indirection for no benefit here.
package bptree

import "github.com/Jairik/Parallel-Query-Processing-System/key"

// node is shared by both leaf and internal nodes, mirroring the
// original's single `struct node` with an is_leaf tag.
//
// Internal node: len(children) == len(keys)+1.
// Leaf node: len(values) == len(keys); next is the sibling link (the
// original repurposes the last pointer slot for this; here it is just a
// field, since Go slices aren't capacity-constrained the way the
// original's fixed `pointers[order]` array is).
type node[V comparable] struct {
	isLeaf   bool
	keys     []key.Key
	children []*node[V]
	values   []V
	next     *node[V]
	parent   *node[V]
}

func (n *node[V]) numKeys() int { return len(n.keys) }

// firstGreater returns the index of the first key strictly greater than
// k, or len(keys) if none. This is the "first-greater" descent rule
// spec.md §4.1 names: Insert descends by it, so a new key goes to the
// rightmost leaf that may already hold keys equal to it.
func firstGreater(keys []key.Key, k key.Key) int {
	for i, existing := range keys {
		if existing.Compare(k) > 0 {
			return i
		}
	}
	return len(keys)
}

// firstGE returns the index of the first key greater than or equal to
// k, or len(keys) if none. Used for leaf insertion position and for
// findLeaf's descent (point lookup, range lower bound, delete), which
// must reach the leftmost leaf that may hold k.
func firstGE(keys []key.Key, k key.Key) int {
	for i, existing := range keys {
		if existing.Compare(k) >= 0 {
			return i
		}
	}
	return len(keys)
}

// cut mirrors the original's cut(length): ceil(length/2). A leaf split
// passes order-1 and keeps that many of the leaf's order entries on the
// left; an internal split promotes the key at index cut(order)-1. In
// both cases, when the entries do not divide evenly, the right half
// gets the larger share (spec.md §4.1's tie-break).
func cut(length int) int {
	if length%2 == 0 {
		return length / 2
	}
	return length/2 + 1
}

func indexOfChild[V comparable](parent *node[V], child *node[V]) int {
	for i, c := range parent.children {
		if c == child {
			return i
		}
	}
	panic("bptree: child not found in parent")
}
