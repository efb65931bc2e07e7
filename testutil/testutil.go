package testutil

import (
	"math/rand"
	"sync"
	"testing"

	"github.com/hupe1980/hugecc/adjacency"
	"github.com/hupe1980/hugecc/core"
)

// RNG struct encapsulates the random number generator and seed.
// It is thread-safe.
type RNG struct {
	rand *rand.Rand
	seed int64
	mu   sync.Mutex
}

// NewRNG creates a new RNG instance with the specified seed.
func NewRNG(seed int64) *RNG {
	return &RNG{
		rand: rand.New(rand.NewSource(seed)),
		seed: seed,
	}
}

// Reset resets the RNG to its initial seed.
func (r *RNG) Reset() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.rand.Seed(r.seed)
}

// Seed returns the initial seed.
func (r *RNG) Seed() int64 {
	return r.seed
}

// Intn returns a non-negative pseudo-random number in [0,n).
func (r *RNG) Intn(n int) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.rand.Intn(n)
}

// Float64 returns a pseudo-random number in [0.0,1.0).
func (r *RNG) Float64() float64 {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.rand.Float64()
}

// RandomGraph returns nodes isolated-or-connected nodes with original ids
// 0..nodes-1 (every node registered, in order) and edges random edges
// between them.
func (r *RNG) RandomGraph(nodes, edges int) *adjacency.EdgeList {
	r.mu.Lock()
	defer r.mu.Unlock()

	l := adjacency.NewEdgeList()
	for i := range nodes {
		l.AddNode(core.OriginalID(i))
	}
	for range edges {
		src := core.OriginalID(r.rand.Intn(nodes))
		dst := core.OriginalID(r.rand.Intn(nodes))
		l.AddEdge(src, dst)
	}
	return l
}

// RandomWeightedGraph is RandomGraph with weights uniform in [0, 1).
func (r *RNG) RandomWeightedGraph(nodes, edges int) *adjacency.EdgeList {
	r.mu.Lock()
	defer r.mu.Unlock()

	l := adjacency.NewEdgeList()
	for i := range nodes {
		l.AddNode(core.OriginalID(i))
	}
	for range edges {
		src := core.OriginalID(r.rand.Intn(nodes))
		dst := core.OriginalID(r.rand.Intn(nodes))
		l.AddWeightedEdge(src, dst, r.rand.Float64())
	}
	return l
}

// SparseIDGraph is RandomGraph over original ids scattered across the whole
// int64 range, negative ids included.
func (r *RNG) SparseIDGraph(nodes, edges int) *adjacency.EdgeList {
	r.mu.Lock()
	defer r.mu.Unlock()

	ids := make([]core.OriginalID, nodes)
	seen := make(map[core.OriginalID]struct{}, nodes)
	for i := range ids {
		for {
			id := core.OriginalID(r.rand.Uint64())
			if _, dup := seen[id]; !dup {
				seen[id] = struct{}{}
				ids[i] = id
				break
			}
		}
	}

	l := adjacency.NewEdgeList()
	for _, id := range ids {
		l.AddNode(id)
	}
	for range edges {
		l.AddEdge(ids[r.rand.Intn(nodes)], ids[r.rand.Intn(nodes)])
	}
	return l
}

// SixNodeGraph is the directed graph
//
//	a-c a-d c-a c-b c-e d-a d-b d-f e-c f-d b-c b-d
//
// with a..f mapped to original ids 0..5. It forms a single component.
func SixNodeGraph() *adjacency.EdgeList {
	const (
		a core.OriginalID = iota
		b
		c
		d
		e
		f
	)
	l := adjacency.NewEdgeList()
	for _, n := range []core.OriginalID{a, b, c, d, e, f} {
		l.AddNode(n)
	}
	for _, edge := range [][2]core.OriginalID{
		{a, c}, {a, d}, {c, a}, {c, b}, {c, e}, {d, a},
		{d, b}, {d, f}, {e, c}, {f, d}, {b, c}, {b, d},
	} {
		l.AddEdge(edge[0], edge[1])
	}
	return l
}

// ThresholdChain is the weighted chain (1,2,0.1) (2,3,0.5) (3,4,0.9). With a
// threshold of 0.4 it splits into {2,3,4} and {1}.
func ThresholdChain() *adjacency.EdgeList {
	l := adjacency.NewEdgeList()
	l.AddWeightedEdge(1, 2, 0.1)
	l.AddWeightedEdge(2, 3, 0.5)
	l.AddWeightedEdge(3, 4, 0.9)
	return l
}

// Build imports l over all of its nodes and releases the graph when the test
// ends.
func Build(tb testing.TB, l *adjacency.EdgeList, opts ...adjacency.Option) *adjacency.Graph {
	tb.Helper()
	ids, err := l.IDMap()
	if err != nil {
		tb.Fatalf("testutil: id map: %v", err)
	}
	im, err := adjacency.NewImporter(ids, l, opts...)
	if err != nil {
		tb.Fatalf("testutil: importer: %v", err)
	}
	g, err := im.Build(tb.Context())
	if err != nil {
		tb.Fatalf("testutil: build: %v", err)
	}
	tb.Cleanup(g.Release)
	return g
}
