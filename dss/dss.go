// Package dss implements the disjoint-set structure used by the union-find
// engines.
//
// The structure is a flat parent array over dense node ids with full path
// compression and no rank. It is not safe for concurrent mutation; the
// parallel engines give every batch its own structure and merge them.
package dss

import (
	"iter"

	"github.com/RoaringBitmap/roaring/v2"
	"github.com/hupe1980/hugecc/core"
)

// DisjointSet partitions the nodes [0, n) into disjoint sets.
type DisjointSet struct {
	parent []core.NodeID
}

// New creates a structure with every node in its own set.
func New(n int) *DisjointSet {
	parent := make([]core.NodeID, n)
	for i := range parent {
		parent[i] = core.NodeID(i)
	}
	return &DisjointSet{parent: parent}
}

// Len returns the number of nodes.
func (s *DisjointSet) Len() int { return len(s.parent) }

// Find returns the representative of x and points every node on the path
// directly at it.
func (s *DisjointSet) Find(x core.NodeID) core.NodeID {
	root := x
	for s.parent[root] != root {
		root = s.parent[root]
	}
	for x != root {
		next := s.parent[x]
		s.parent[x] = root
		x = next
	}
	return root
}

// Root returns the representative of x without modifying the structure.
// It is safe for concurrent use as long as nothing mutates s.
func (s *DisjointSet) Root(x core.NodeID) core.NodeID {
	for s.parent[x] != x {
		x = s.parent[x]
	}
	return x
}

// Flatten points every node directly at its representative, so that Root
// resolves in one step afterwards.
func (s *DisjointSet) Flatten() {
	for i := range s.parent {
		s.Find(core.NodeID(i))
	}
}

// Union joins the sets of a and b by attaching the root of a under the root
// of b.
func (s *DisjointSet) Union(a, b core.NodeID) {
	ra, rb := s.Find(a), s.Find(b)
	if ra != rb {
		s.parent[ra] = rb
	}
}

// Connected reports whether a and b are in the same set.
func (s *DisjointSet) Connected(a, b core.NodeID) bool {
	return s.Find(a) == s.Find(b)
}

// SetCount returns the number of distinct sets.
func (s *DisjointSet) SetCount() int {
	count := 0
	for i, p := range s.parent {
		if p == core.NodeID(i) {
			count++
		}
	}
	return count
}

// Merge replays every non-trivial membership of other onto s and returns s.
// Both structures must cover the same node range. other is left unchanged
// apart from path compression.
func (s *DisjointSet) Merge(other *DisjointSet) *DisjointSet {
	for i := range other.parent {
		node := core.NodeID(i)
		if root := other.Find(node); root != node {
			s.Union(node, root)
		}
	}
	return s
}

// All yields (node, representative) for every node in ascending node order.
// The sequence can be iterated more than once.
func (s *DisjointSet) All() iter.Seq2[core.NodeID, core.NodeID] {
	return func(yield func(core.NodeID, core.NodeID) bool) {
		for i := range s.parent {
			node := core.NodeID(i)
			if !yield(node, s.Find(node)) {
				return
			}
		}
	}
}

// Components groups the nodes by representative.
func (s *DisjointSet) Components() map[core.NodeID]*roaring.Bitmap {
	components := make(map[core.NodeID]*roaring.Bitmap)
	for node, root := range s.All() {
		bm, ok := components[root]
		if !ok {
			bm = roaring.New()
			components[root] = bm
		}
		bm.Add(uint32(node))
	}
	for _, bm := range components {
		bm.RunOptimize()
	}
	return components
}

// SamePartition reports whether s and other group the nodes identically,
// irrespective of which node represents each set.
func (s *DisjointSet) SamePartition(other *DisjointSet) bool {
	if s.Len() != other.Len() {
		return false
	}
	// Representatives must correspond one to one.
	forward := make(map[core.NodeID]core.NodeID)
	backward := make(map[core.NodeID]core.NodeID)
	for i := range s.parent {
		node := core.NodeID(i)
		a, b := s.Find(node), other.Find(node)
		if mapped, ok := forward[a]; ok && mapped != b {
			return false
		}
		if mapped, ok := backward[b]; ok && mapped != a {
			return false
		}
		forward[a] = b
		backward[b] = a
	}
	return true
}
