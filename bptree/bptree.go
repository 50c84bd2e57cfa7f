package bptree

import (
	"fmt"
	"strings"

	"github.com/Jairik/Parallel-Query-Processing-System/key"
	"github.com/k0kubun/pp/v3"
)

// DefaultOrder is the fanout used when callers don't have a reason to
// pick their own. The original hardcodes order 4 for its demonstration
// trees (bplus.c); spec.md §4.1 leaves the order a build-time choice, so
// this is carried forward as the default rather than invented fresh.
const DefaultOrder = 4

// Tree is an order-k B+-tree keyed by key.Key, mapping each key to zero
// or more values of type V (duplicates allowed). V is typically a row
// reference (e.g. a row index or pointer) rather than the row itself —
// the tree is a secondary index, not the row store.
type Tree[V comparable] struct {
	order int
	root  *node[V]
	count int
}

// New creates an empty tree of the given order (must be >= 3).
func New[V comparable](order int) *Tree[V] {
	if order < 3 {
		order = DefaultOrder
	}
	return &Tree[V]{order: order}
}

// Len reports the total number of (key, value) pairs stored.
func (t *Tree[V]) Len() int { return t.count }

// Height reports the number of levels from root to leaf, 0 for an empty
// tree, 1 for a tree with a single leaf root.
func (t *Tree[V]) Height() int {
	if t.root == nil {
		return 0
	}
	h := 1
	n := t.root
	for !n.isLeaf {
		h++
		n = n.children[0]
	}
	return h
}

// descendToLeaf walks from root to the leaf that would contain k,
// using the first-greater rule at each internal node (spec.md §4.1):
// among an internal node's keys, take the child before the first key
// strictly greater than k. This lands on the rightmost leaf that may
// hold keys equal to k; Insert uses it, while lookups start from
// findLeaf's leftmost candidate leaf instead.
func (t *Tree[V]) descendToLeaf(k key.Key) *node[V] {
	n := t.root
	for n != nil && !n.isLeaf {
		i := firstGreater(n.keys, k)
		n = n.children[i]
	}
	return n
}

// Insert adds (k, v) to the tree. Duplicate keys are permitted; each
// Insert call adds one more occurrence.
func (t *Tree[V]) Insert(k key.Key, v V) {
	t.count++
	if t.root == nil {
		t.root = &node[V]{isLeaf: true, keys: []key.Key{k}, values: []V{v}}
		return
	}
	leaf := t.descendToLeaf(k)
	t.insertIntoLeaf(leaf, k, v)
	if len(leaf.keys) < t.order {
		return
	}
	t.splitLeaf(leaf)
}

// insertIntoLeaf inserts (k, v) into leaf's key/value slices at the
// first-GE position, so a new duplicate is placed ahead of the equal
// keys already in the leaf (newest first within a leaf).
func (t *Tree[V]) insertIntoLeaf(leaf *node[V], k key.Key, v V) {
	i := firstGE(leaf.keys, k)
	leaf.keys = append(leaf.keys, key.Key{})
	copy(leaf.keys[i+1:], leaf.keys[i:])
	leaf.keys[i] = k
	leaf.values = append(leaf.values, v)
	copy(leaf.values[i+1:], leaf.values[i:])
	leaf.values[i] = v
}

// splitLeaf splits an overfull leaf, mirroring insert_into_leaf_after_
// splitting in bplus.c: the left half keeps cut(order-1) entries, the
// right half (the larger share on an odd split) gets the rest, and the
// right leaf's first key is promoted into the parent.
func (t *Tree[V]) splitLeaf(leaf *node[V]) {
	splitAt := cut(t.order - 1)
	right := &node[V]{isLeaf: true, parent: leaf.parent, next: leaf.next}

	right.keys = append([]key.Key{}, leaf.keys[splitAt:]...)
	right.values = append([]V{}, leaf.values[splitAt:]...)
	leaf.keys = leaf.keys[:splitAt]
	leaf.values = leaf.values[:splitAt]
	leaf.next = right

	t.insertIntoParent(leaf, right.keys[0], right)
}

// insertIntoParent attaches newChild to left's parent, keyed by
// promoteKey. If left has no parent, a new root is created (the tree
// grows by one level). If the parent overflows, it is split in turn.
func (t *Tree[V]) insertIntoParent(left *node[V], promoteKey key.Key, right *node[V]) {
	parent := left.parent
	if parent == nil {
		newRoot := &node[V]{
			keys:     []key.Key{promoteKey},
			children: []*node[V]{left, right},
		}
		left.parent = newRoot
		right.parent = newRoot
		t.root = newRoot
		return
	}

	i := indexOfChild(parent, left)
	parent.keys = append(parent.keys, key.Key{})
	copy(parent.keys[i+1:], parent.keys[i:])
	parent.keys[i] = promoteKey

	parent.children = append(parent.children, nil)
	copy(parent.children[i+2:], parent.children[i+1:])
	parent.children[i+1] = right
	right.parent = parent

	if len(parent.children) <= t.order {
		return
	}
	t.splitInternal(parent)
}

// splitInternal splits an overfull internal node, mirroring
// insert_into_node_after_splitting: the middle key (at index
// cut(order)-1) is promoted to the grandparent rather than copied, unlike a leaf
// split, since internal keys are separators, not data.
func (t *Tree[V]) splitInternal(n *node[V]) {
	splitAt := cut(t.order) - 1
	kPrime := n.keys[splitAt]

	right := &node[V]{parent: n.parent}
	right.keys = append([]key.Key{}, n.keys[splitAt+1:]...)
	right.children = append([]*node[V]{}, n.children[splitAt+1:]...)
	for _, c := range right.children {
		c.parent = right
	}

	n.keys = n.keys[:splitAt]
	n.children = n.children[:splitAt+1]

	t.insertIntoParent(n, kPrime, right)
}

// Find returns every value stored under exactly k, in leaf order.
// Within one leaf a newer duplicate precedes older ones, so this is not
// insertion order.
func (t *Tree[V]) Find(k key.Key) []V {
	leaf := t.findLeaf(k)
	if leaf == nil {
		return nil
	}
	var out []V
	for leaf != nil {
		matched := false
		for i, existing := range leaf.keys {
			if existing.Equal(k) {
				out = append(out, leaf.values[i])
				matched = true
			} else if existing.Compare(k) > 0 {
				return out
			}
		}
		if !matched && len(leaf.keys) > 0 && leaf.keys[0].Compare(k) > 0 {
			return out
		}
		leaf = leaf.next
	}
	return out
}

// findLeaf returns the leftmost leaf that may hold k, descending by the
// first-GE rule: a run of equal keys can straddle leaves, so lookups
// start before all of it and walk forward along sibling links.
func (t *Tree[V]) findLeaf(k key.Key) *node[V] {
	n := t.root
	for n != nil && !n.isLeaf {
		n = n.children[firstGE(n.keys, k)]
	}
	return n
}

// Range returns every (key, value) pair with lo <= key <= hi, walking
// leaf sibling links from the leftmost leaf that may contain lo (spec.md §4.1's range
// scan). Both bounds are inclusive; the planner converts exclusive
// operators to inclusive ones via key.Succ/key.Pred before calling this.
func (t *Tree[V]) Range(lo, hi key.Key) []V {
	if t.root == nil || lo.Compare(hi) > 0 {
		return nil
	}
	leaf := t.findLeaf(lo)
	var out []V
	for leaf != nil {
		for i, k := range leaf.keys {
			if k.Compare(lo) < 0 {
				continue
			}
			if k.Compare(hi) > 0 {
				return out
			}
			out = append(out, leaf.values[i])
		}
		leaf = leaf.next
	}
	return out
}

// Delete removes one occurrence of (k, v) from the tree — the specific
// pair, not merely the first match on k, since V is comparable and a
// given key may map to several distinct values. Reports whether a match
// was found and removed.
func (t *Tree[V]) Delete(k key.Key, v V) bool {
	leaf := t.findLeaf(k)
	if leaf == nil {
		return false
	}
	for ; leaf != nil; leaf = leaf.next {
		for i, existing := range leaf.keys {
			if existing.Compare(k) > 0 {
				return false
			}
			if existing.Equal(k) && leaf.values[i] == v {
				t.removeFromLeaf(leaf, i)
				t.count--
				t.rebalanceAfterDelete(leaf)
				return true
			}
		}
	}
	return false
}

func (t *Tree[V]) removeFromLeaf(leaf *node[V], idx int) {
	leaf.keys = append(leaf.keys[:idx], leaf.keys[idx+1:]...)
	leaf.values = append(leaf.values[:idx], leaf.values[idx+1:]...)
}

// minLeafKeys / minInternalKeys are the occupancy floors from bplus.c's
// delete path: a leaf may shrink to cut(order-1) entries before it must
// borrow or coalesce; an internal node similarly to cut(order)-1.
func (t *Tree[V]) minLeafKeys() int     { return cut(t.order - 1) }
func (t *Tree[V]) minInternalKeys() int { return cut(t.order) - 1 }

// rebalanceAfterDelete restores the minimum-occupancy invariant after a
// removal, mirroring delete_entry in bplus.c: the root is exempt (it may
// underflow down to a single child, in which case it is replaced by that
// child), otherwise an underfull node redistributes from a neighbor if
// one has entries to spare, or coalesces into a neighbor otherwise —
// preferring the left neighbor in both cases, matching the original's
// neighbor-index-minus-one-first search order.
func (t *Tree[V]) rebalanceAfterDelete(n *node[V]) {
	if n == t.root {
		t.adjustRoot()
		return
	}

	minKeys := t.minLeafKeys()
	if !n.isLeaf {
		minKeys = t.minInternalKeys()
	}
	if n.numKeys() >= minKeys {
		return
	}

	parent := n.parent
	nIdx := indexOfChild(parent, n)

	var neighbor *node[V]
	var neighborIdx int
	var keyPrimeIdx int
	if nIdx == 0 {
		neighbor = parent.children[1]
		neighborIdx = 1
		keyPrimeIdx = 0
	} else {
		neighbor = parent.children[nIdx-1]
		neighborIdx = nIdx - 1
		keyPrimeIdx = nIdx - 1
	}

	capacity := t.order
	if !n.isLeaf {
		capacity = t.order - 1
	}

	if neighbor.numKeys()+n.numKeys() < capacity {
		if nIdx == 0 {
			// n is leftmost: n absorbs neighbor's entries, so the
			// pointer freed from the parent is neighbor's, at
			// neighborIdx (mirrors coalesceNodes' leftmost swap).
			t.coalesce(n, neighbor, parent.keys[keyPrimeIdx], neighborIdx)
		} else {
			// neighbor absorbs n's entries, so the pointer freed
			// from the parent is n's own, at nIdx.
			t.coalesce(neighbor, n, parent.keys[keyPrimeIdx], nIdx)
		}
		return
	}

	t.redistribute(n, neighbor, nIdx, keyPrimeIdx)
}

// adjustRoot shrinks the tree by one level when the root has underflowed
// to zero separator keys: an internal root with one child is replaced by
// that child, and a now-empty leaf root leaves the tree empty.
func (t *Tree[V]) adjustRoot() {
	if t.root.numKeys() > 0 {
		return
	}
	if t.root.isLeaf {
		t.root = nil
		return
	}
	newRoot := t.root.children[0]
	newRoot.parent = nil
	t.root = newRoot
}

// coalesce merges right into left (left is the lower-indexed sibling),
// pulling keyPrime down from the parent for internal merges, then
// recurses the rebalance check up to the parent — mirroring coalesce_
// nodes in bplus.c.
func (t *Tree[V]) coalesce(left, right *node[V], keyPrime key.Key, rightIdxInParent int) {
	if left.isLeaf {
		left.keys = append(left.keys, right.keys...)
		left.values = append(left.values, right.values...)
		left.next = right.next
	} else {
		left.keys = append(left.keys, keyPrime)
		left.keys = append(left.keys, right.keys...)
		for _, c := range right.children {
			c.parent = left
		}
		left.children = append(left.children, right.children...)
	}

	parent := left.parent
	t.removeFromInternal(parent, rightIdxInParent)
	t.rebalanceAfterDelete(parent)
}

// removeFromInternal removes the separator key and the child pointer at
// childIdx (the child being absorbed by its left sibling during
// coalesce), shifting the remaining entries down.
func (t *Tree[V]) removeFromInternal(n *node[V], childIdx int) {
	keyIdx := childIdx - 1
	if keyIdx < 0 {
		keyIdx = 0
	}
	n.keys = append(n.keys[:keyIdx], n.keys[keyIdx+1:]...)
	n.children = append(n.children[:childIdx], n.children[childIdx+1:]...)
}

// redistribute borrows one entry from neighbor into n, mirroring
// redistribute_nodes: when neighbor is n's left sibling (nIdx > 0), its
// last entry moves to the front of n; when neighbor is n's right sibling
// (nIdx == 0), its first entry moves to the end of n. The parent
// separator key is updated to reflect the new split point.
func (t *Tree[V]) redistribute(n, neighbor *node[V], nIdx, keyPrimeIdx int) {
	parent := n.parent

	if nIdx != 0 {
		// neighbor is the left sibling; borrow its last entry.
		lastIdx := neighbor.numKeys() - 1
		if n.isLeaf {
			n.keys = append([]key.Key{neighbor.keys[lastIdx]}, n.keys...)
			n.values = append([]V{neighbor.values[lastIdx]}, n.values...)
			neighbor.keys = neighbor.keys[:lastIdx]
			neighbor.values = neighbor.values[:lastIdx]
			parent.keys[keyPrimeIdx] = n.keys[0]
		} else {
			borrowedKey := parent.keys[keyPrimeIdx]
			borrowedChild := neighbor.children[len(neighbor.children)-1]
			newParentKey := neighbor.keys[lastIdx]
			n.keys = append([]key.Key{borrowedKey}, n.keys...)
			n.children = append([]*node[V]{borrowedChild}, n.children...)
			borrowedChild.parent = n
			neighbor.keys = neighbor.keys[:lastIdx]
			neighbor.children = neighbor.children[:len(neighbor.children)-1]
			parent.keys[keyPrimeIdx] = newParentKey
		}
		return
	}

	// neighbor is the right sibling; borrow its first entry.
	if n.isLeaf {
		n.keys = append(n.keys, neighbor.keys[0])
		n.values = append(n.values, neighbor.values[0])
		neighbor.keys = neighbor.keys[1:]
		neighbor.values = neighbor.values[1:]
		parent.keys[keyPrimeIdx] = neighbor.keys[0]
	} else {
		borrowedKey := parent.keys[keyPrimeIdx]
		borrowedChild := neighbor.children[0]
		n.keys = append(n.keys, borrowedKey)
		n.children = append(n.children, borrowedChild)
		borrowedChild.parent = n
		parent.keys[keyPrimeIdx] = neighbor.keys[0]
		neighbor.keys = neighbor.keys[1:]
		neighbor.children = neighbor.children[1:]
	}
}

// Dump renders the tree level by level for debugging, using pp for
// readable nested formatting of the key slices.
func (t *Tree[V]) Dump() string {
	if t.root == nil {
		return "<empty tree>"
	}
	var b strings.Builder
	level := []*node[V]{t.root}
	depth := 0
	for len(level) > 0 {
		fmt.Fprintf(&b, "level %d:\n", depth)
		var next []*node[V]
		for _, n := range level {
			b.WriteString("  ")
			b.WriteString(pp.Sprint(n.keys))
			b.WriteString("\n")
			if !n.isLeaf {
				next = append(next, n.children...)
			}
		}
		level = next
		depth++
	}
	return b.String()
}
