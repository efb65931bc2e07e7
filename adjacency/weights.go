package adjacency

import (
	"hash/maphash"
	"sync"

	"github.com/hupe1980/hugecc/core"
)

// WeightMapping returns the weight of the edge src -> tgt.
type WeightMapping interface {
	Weight(src, tgt core.NodeID) float64
}

// NullWeights maps every edge to a single default weight.
type NullWeights struct {
	Default float64
}

// Weight implements WeightMapping.
func (w NullWeights) Weight(core.NodeID, core.NodeID) float64 { return w.Default }

const numWeightShards = 64

type weightShard struct {
	mu sync.RWMutex
	m  map[uint64]float64
}

// ShardedWeights is a concurrent weight store keyed by the packed
// (source, target) pair. Absent pairs resolve to the default weight.
type ShardedWeights struct {
	shards [numWeightShards]weightShard
	seed   maphash.Seed
	def    float64
}

// NewShardedWeights creates an empty store with the given default weight.
func NewShardedWeights(defaultWeight float64) *ShardedWeights {
	w := &ShardedWeights{seed: maphash.MakeSeed(), def: defaultWeight}
	for i := range w.shards {
		w.shards[i].m = make(map[uint64]float64)
	}
	return w
}

func packPair(src, tgt core.NodeID) uint64 {
	return uint64(src)<<32 | uint64(tgt)
}

func (w *ShardedWeights) shard(key uint64) *weightShard {
	return &w.shards[maphash.Comparable(w.seed, key)%numWeightShards]
}

// Set records the weight of src -> tgt. A later Set for the same pair wins.
func (w *ShardedWeights) Set(src, tgt core.NodeID, weight float64) {
	key := packPair(src, tgt)
	s := w.shard(key)
	s.mu.Lock()
	s.m[key] = weight
	s.mu.Unlock()
}

// Weight implements WeightMapping.
func (w *ShardedWeights) Weight(src, tgt core.NodeID) float64 {
	key := packPair(src, tgt)
	s := w.shard(key)
	s.mu.RLock()
	weight, ok := s.m[key]
	s.mu.RUnlock()
	if !ok {
		return w.def
	}
	return weight
}

// Len returns the number of stored pairs.
func (w *ShardedWeights) Len() int {
	n := 0
	for i := range w.shards {
		s := &w.shards[i]
		s.mu.RLock()
		n += len(s.m)
		s.mu.RUnlock()
	}
	return n
}
