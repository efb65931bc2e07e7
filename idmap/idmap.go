// Package idmap maps sparse original node ids to dense ids in [0, nodeCount).
//
// The map is populated once by a single-threaded scan (Add) and is immutable
// afterwards; lookups are safe for concurrent use once Build has been called.
package idmap

import (
	"fmt"

	"github.com/hupe1980/hugecc/core"
	"github.com/hupe1980/hugecc/internal/container"
	"github.com/hupe1980/hugecc/internal/conv"
)

// pagedLimit bounds the original ids kept in the paged forward index, which
// keeps its page table small for ids drawn from a huge range.
const pagedLimit = core.OriginalID(1) << 32

// IDMap is a bijection between original ids and dense node ids.
type IDMap struct {
	originals []core.OriginalID
	// forward holds dense+1 per original id in [0, pagedLimit); 0 means absent.
	forward *container.PagedArray[uint32]
	// sparse holds originals outside the paged range.
	sparse   map[core.OriginalID]core.NodeID
	capacity int
	built    bool
}

// New creates an empty IDMap for at most capacity nodes.
func New(capacity int) *IDMap {
	if capacity < 0 {
		capacity = 0
	}
	return &IDMap{
		originals: make([]core.OriginalID, 0, capacity),
		forward:   container.NewSparsePagedArray[uint32](),
		capacity:  capacity,
	}
}

// Add appends original to the dense sequence and returns its dense id.
// Adding an id twice returns the existing dense id.
func (m *IDMap) Add(original core.OriginalID) (core.NodeID, error) {
	if m.built {
		return core.InvalidNodeID, ErrFrozen
	}
	if dense := m.ToDense(original); dense != core.InvalidNodeID {
		return dense, nil
	}
	if len(m.originals) >= m.capacity {
		return core.InvalidNodeID, fmt.Errorf("%w: capacity %d", ErrCapacityExceeded, m.capacity)
	}
	if int64(len(m.originals)) >= core.MaxNodeCount {
		return core.InvalidNodeID, ErrCapacityExceeded
	}

	dense := conv.MustChecked[core.NodeID](len(m.originals))
	m.originals = append(m.originals, original)
	if isPaged(original) {
		m.forward.Set(uint64(original), uint32(dense)+1)
	} else {
		if m.sparse == nil {
			m.sparse = make(map[core.OriginalID]core.NodeID)
		}
		m.sparse[original] = dense
	}
	return dense, nil
}

// Build freezes the map. Further calls to Add fail with ErrFrozen.
func (m *IDMap) Build() *IDMap {
	m.built = true
	return m
}

// ToOriginal returns the original id of a dense node id.
func (m *IDMap) ToOriginal(node core.NodeID) core.OriginalID {
	return m.originals[node]
}

// ToDense returns the dense id of original, or core.InvalidNodeID if the
// original id was never added (for example because a load filter excluded it).
func (m *IDMap) ToDense(original core.OriginalID) core.NodeID {
	if !isPaged(original) {
		if dense, ok := m.sparse[original]; ok {
			return dense
		}
		return core.InvalidNodeID
	}
	v, ok := m.forward.Get(uint64(original))
	if !ok || v == 0 {
		return core.InvalidNodeID
	}
	return core.NodeID(v - 1)
}

func isPaged(original core.OriginalID) bool {
	return original >= 0 && original < pagedLimit
}

// Contains reports whether original is part of the id space.
func (m *IDMap) Contains(original core.OriginalID) bool {
	return m.ToDense(original) != core.InvalidNodeID
}

// NodeCount returns the number of mapped nodes.
func (m *IDMap) NodeCount() int {
	return len(m.originals)
}

// ForEach calls fn for every node in dense order until fn returns false.
func (m *IDMap) ForEach(fn func(node core.NodeID, original core.OriginalID) bool) {
	for i, original := range m.originals {
		if !fn(core.NodeID(i), original) {
			return
		}
	}
}

// FromOriginals builds a frozen IDMap from a list of original ids, in order.
func FromOriginals(originals ...core.OriginalID) (*IDMap, error) {
	m := New(len(originals))
	for _, original := range originals {
		if _, err := m.Add(original); err != nil {
			return nil, err
		}
	}
	return m.Build(), nil
}
