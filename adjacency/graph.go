package adjacency

import (
	"fmt"

	"github.com/hupe1980/hugecc/core"
	"github.com/hupe1980/hugecc/idmap"
	"github.com/hupe1980/hugecc/internal/arena"
	"github.com/hupe1980/hugecc/internal/bitset"
	"github.com/hupe1980/hugecc/internal/container"
)

// list is the record storage of one direction.
type list struct {
	arena   *arena.Arena
	offsets *container.PagedArray[uint64]
}

func (l *list) record(node core.NodeID) []byte {
	off, _ := l.offsets.Get(uint64(node))
	if off == 0 {
		return nil
	}
	return l.arena.Bytes(off)
}

func (l *list) degree(node core.NodeID) int {
	rec := l.record(node)
	if rec == nil {
		return 0
	}
	d, err := Degree(rec)
	if err != nil {
		panic(fmt.Errorf("adjacency: node %d: %w", node, err))
	}
	return d
}

// forEach decodes the record of node. It reports false if fn stopped early.
// Records are written by the importer only, so a decode failure is a broken
// invariant and panics.
func (l *list) forEach(node core.NodeID, fn func(other core.NodeID) bool) bool {
	rec := l.record(node)
	if rec == nil {
		return true
	}
	finished := true
	err := DecodeDeltas(rec, func(v uint64) bool {
		finished = fn(core.NodeID(v))
		return finished
	})
	if err != nil {
		panic(fmt.Errorf("adjacency: node %d: %w", node, err))
	}
	return finished
}

// MemoryStats describes the memory held by a Graph.
type MemoryStats struct {
	Outgoing     arena.Stats
	Incoming     arena.Stats
	OffsetBytes  int64
	WeightsCount int
}

// Graph is the immutable, compressed adjacency store produced by an
// Importer. All read methods are safe for concurrent use.
type Graph struct {
	ids       *idmap.IDMap
	nodeCount int
	direction core.Direction
	out       *list
	in        *list
	weights   WeightMapping
	loaded    *bitset.BitSet
	complete  bool
}

// NodeCount returns the number of nodes.
func (g *Graph) NodeCount() int { return g.nodeCount }

// IDMap returns the id map the graph was built over.
func (g *Graph) IDMap() *idmap.IDMap { return g.ids }

// Direction returns the directions that were loaded.
func (g *Graph) Direction() core.Direction { return g.direction }

// Complete reports whether every node was imported. It is false when the
// import was cancelled.
func (g *Graph) Complete() bool { return g.complete }

// Loaded reports whether node has been fully imported.
func (g *Graph) Loaded(node core.NodeID) bool { return g.loaded.Test(uint64(node)) }

// Supports reports whether iterating in dir visits every stored record dir
// asks for.
func (g *Graph) Supports(dir core.Direction) bool {
	if dir.LoadsOutgoing() && g.out == nil {
		return false
	}
	if dir.LoadsIncoming() && g.in == nil {
		return false
	}
	return true
}

// Degree returns the number of neighbours of node in dir. Both sums the
// outgoing and incoming degree.
func (g *Graph) Degree(node core.NodeID, dir core.Direction) int {
	d := 0
	if dir.LoadsOutgoing() && g.out != nil {
		d += g.out.degree(node)
	}
	if dir.LoadsIncoming() && g.in != nil {
		d += g.in.degree(node)
	}
	return d
}

// ForEachRelationship calls fn(node, neighbour) for every neighbour of node
// in dir, in ascending neighbour order per direction. Both visits outgoing
// before incoming. Iteration stops when fn returns false.
func (g *Graph) ForEachRelationship(node core.NodeID, dir core.Direction, fn func(src, tgt core.NodeID) bool) {
	if dir.LoadsOutgoing() && g.out != nil {
		if !g.out.forEach(node, func(other core.NodeID) bool { return fn(node, other) }) {
			return
		}
	}
	if dir.LoadsIncoming() && g.in != nil {
		g.in.forEach(node, func(other core.NodeID) bool { return fn(node, other) })
	}
}

// ForEachWeightedRelationship is ForEachRelationship with the weight of each
// edge. Incoming edges are weighed in their stored direction, neighbour to
// node.
func (g *Graph) ForEachWeightedRelationship(node core.NodeID, dir core.Direction, fn func(src, tgt core.NodeID, w float64) bool) {
	if dir.LoadsOutgoing() && g.out != nil {
		if !g.out.forEach(node, func(other core.NodeID) bool {
			return fn(node, other, g.weights.Weight(node, other))
		}) {
			return
		}
	}
	if dir.LoadsIncoming() && g.in != nil {
		g.in.forEach(node, func(other core.NodeID) bool {
			return fn(node, other, g.weights.Weight(other, node))
		})
	}
}

// Weight returns the weight of the stored edge src -> tgt, or the default
// weight when none was recorded.
func (g *Graph) Weight(src, tgt core.NodeID) float64 {
	return g.weights.Weight(src, tgt)
}

// MemoryStats reports arena and offset array usage.
func (g *Graph) MemoryStats() MemoryStats {
	var s MemoryStats
	if g.out != nil {
		s.Outgoing = g.out.arena.Stats()
		s.OffsetBytes += g.out.offsets.SizeInBytes(8)
	}
	if g.in != nil {
		s.Incoming = g.in.arena.Stats()
		s.OffsetBytes += g.in.offsets.SizeInBytes(8)
	}
	if sw, ok := g.weights.(*ShardedWeights); ok {
		s.WeightsCount = sw.Len()
	}
	return s
}

// Release unmaps the adjacency pages. The graph must not be read afterwards.
func (g *Graph) Release() {
	if g.out != nil {
		g.out.arena.Free()
	}
	if g.in != nil {
		g.in.arena.Free()
	}
}

func (g *Graph) String() string {
	return fmt.Sprintf("Graph{nodes: %d, direction: %s, complete: %t}", g.nodeCount, g.direction, g.complete)
}
