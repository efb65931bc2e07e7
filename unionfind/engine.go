package unionfind

import (
	"context"
	"fmt"
	"sync/atomic"
	"time"

	"github.com/hupe1980/hugecc/core"
	"github.com/hupe1980/hugecc/dss"
	"github.com/hupe1980/hugecc/internal/parallel"
)

// Graph is the adjacency view the engines scan.
type Graph interface {
	NodeCount() int
	ForEachRelationship(node core.NodeID, dir core.Direction, fn func(src, tgt core.NodeID) bool)
	ForEachWeightedRelationship(node core.NodeID, dir core.Direction, fn func(src, tgt core.NodeID, w float64) bool)
}

// Engine computes the disjoint-set partition of a graph.
type Engine interface {
	// Compute unions the endpoints of every relationship.
	Compute(ctx context.Context) (*Result, error)
	// ComputeThreshold unions only the endpoints of relationships whose
	// weight is strictly greater than threshold.
	ComputeThreshold(ctx context.Context, threshold float64) (*Result, error)
}

// Result is the outcome of a computation.
type Result struct {
	Set *dss.DisjointSet
	// Complete is false when the computation was cancelled; Set then holds a
	// partial partition.
	Complete bool
	Batches  int
	Merges   int
	Duration time.Duration
}

// SetCount returns the number of sets in the partition.
func (r *Result) SetCount() int { return r.Set.SetCount() }

// New creates an engine for the given strategy.
func New(strategy Strategy, graph Graph, opts ...Option) (Engine, error) {
	if graph == nil {
		return nil, ErrNilGraph
	}
	o := defaultOptions()
	for _, opt := range opts {
		opt(&o)
	}
	if s, ok := graph.(interface{ Supports(core.Direction) bool }); ok && !s.Supports(o.direction) {
		return nil, fmt.Errorf("%w: %s", ErrDirectionNotLoaded, o.direction)
	}

	b := base{graph: graph, opts: o, strategy: strategy}
	switch strategy {
	case Sequential:
		return &sequentialEngine{base: b}, nil
	case Queue:
		return &queueEngine{base: b}, nil
	case ForkJoin:
		return &forkJoinEngine{base: b}, nil
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnknownStrategy, strategy)
	}
}

// mode selects between plain and thresholded union.
type mode struct {
	weighted  bool
	threshold float64
}

// base holds what every strategy shares: the graph, the options and the
// per-node scan.
type base struct {
	graph    Graph
	opts     options
	strategy Strategy
}

// run is the mutable state of one computation.
type run struct {
	mode     mode
	start    time.Time
	scanned  atomic.Int64
	merges   atomic.Int64
	canceled atomic.Bool
}

func newRun(m mode) *run {
	return &run{mode: m, start: time.Now()}
}

// scan unions the relationships of the nodes in [start, end) into set. It
// returns false if it stopped because of cancellation.
func (b *base) scan(ctx context.Context, rs *run, set *dss.DisjointSet, start, end int) bool {
	total := int64(b.graph.NodeCount())
	dir := b.opts.direction
	m := rs.mode
	for i := start; i < end; i++ {
		if !core.Running(ctx, b.opts.termination) {
			return false
		}
		node := core.NodeID(i)
		if m.weighted {
			// Every edge is visited; a connected pre-check cannot skip the
			// weight comparison.
			b.graph.ForEachWeightedRelationship(node, dir, func(src, tgt core.NodeID, w float64) bool {
				if w > m.threshold {
					set.Union(src, tgt)
				}
				return true
			})
		} else {
			b.graph.ForEachRelationship(node, dir, func(src, tgt core.NodeID) bool {
				if !set.Connected(src, tgt) {
					set.Union(src, tgt)
				}
				return true
			})
		}
		b.opts.progress.LogProgress(rs.scanned.Add(1), total)
	}
	return true
}

// batches slices the node range for the parallel strategies.
func (b *base) batches() []parallel.Range {
	n := b.graph.NodeCount()
	size := parallel.AdjustBatchSize(n, b.opts.concurrency, b.opts.minBatchSize, 0)
	return parallel.Ranges(n, size)
}

// computeBatch builds a full-size structure that holds the unions of the
// relationships whose source lies in r.
func (b *base) computeBatch(ctx context.Context, rs *run, r parallel.Range) *dss.DisjointSet {
	set := dss.New(b.graph.NodeCount())
	if !b.scan(ctx, rs, set, r.Start, r.End) {
		rs.canceled.Store(true)
	}
	return set
}

// merge folds other into set unless the computation was cancelled, in
// which case set is passed through unchanged.
func (b *base) merge(ctx context.Context, rs *run, set, other *dss.DisjointSet) *dss.DisjointSet {
	if !core.Running(ctx, b.opts.termination) {
		rs.canceled.Store(true)
		return set
	}
	start := time.Now()
	set.Merge(other)
	b.opts.onMerge(time.Since(start))
	rs.merges.Add(1)
	return set
}

func (b *base) finish(rs *run, set *dss.DisjointSet, batches int) *Result {
	res := &Result{
		Set:      set,
		Complete: !rs.canceled.Load(),
		Batches:  batches,
		Merges:   int(rs.merges.Load()),
		Duration: time.Since(rs.start),
	}
	b.opts.logger.Info("union-find finished",
		"strategy", b.strategy.String(),
		"nodes", b.graph.NodeCount(),
		"batches", res.Batches,
		"merges", res.Merges,
		"sets", res.Set.SetCount(),
		"complete", res.Complete,
		"duration", res.Duration)
	return res
}
