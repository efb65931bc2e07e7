package unionfind

import (
	"context"
	"sync/atomic"
	"testing"
	"time"

	"github.com/hupe1980/hugecc/adjacency"
	"github.com/hupe1980/hugecc/core"
	"github.com/hupe1980/hugecc/dss"
	"github.com/hupe1980/hugecc/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var strategies = []Strategy{Sequential, Queue, ForkJoin}

func compute(t *testing.T, s Strategy, g Graph, opts ...Option) *Result {
	t.Helper()
	e, err := New(s, g, opts...)
	require.NoError(t, err)
	res, err := e.Compute(t.Context())
	require.NoError(t, err)
	return res
}

// assertMatchesReference checks res against a breadth-first component
// labelling of l.
func assertMatchesReference(t *testing.T, l *adjacency.EdgeList, g *adjacency.Graph, set *dss.DisjointSet) {
	t.Helper()
	labels := testutil.Components(l)
	ids := g.IDMap()

	reference := dss.New(ids.NodeCount())
	ids.ForEach(func(node core.NodeID, original core.OriginalID) bool {
		reference.Union(node, ids.ToDense(labels[original]))
		return true
	})
	assert.True(t, reference.SamePartition(set))
	assert.Equal(t, testutil.ComponentCount(l), set.SetCount())
}

func TestNew_Validation(t *testing.T) {
	g := testutil.Build(t, testutil.SixNodeGraph())

	_, err := New(Sequential, nil)
	require.ErrorIs(t, err, ErrNilGraph)

	_, err = New(Strategy(42), g)
	require.ErrorIs(t, err, ErrUnknownStrategy)

	_, err = New(ForkJoin, g, WithDirection(core.Both))
	require.ErrorIs(t, err, ErrDirectionNotLoaded)
}

func TestSixNodeGraph_AllBatchSizes(t *testing.T) {
	l := testutil.SixNodeGraph()
	g := testutil.Build(t, l)

	for _, s := range strategies {
		for _, batch := range []int{1, 2, 3, 6} {
			t.Run(s.String(), func(t *testing.T) {
				// Six workers over six nodes give a derived batch size of 1,
				// so the minimum decides.
				res := compute(t, s, g, WithConcurrency(6), WithMinBatchSize(batch))

				assert.True(t, res.Complete)
				assert.Equal(t, 1, res.SetCount(), "batch size %d", batch)
				if s != Sequential {
					wantBatches := (6 + batch - 1) / batch
					assert.Equal(t, wantBatches, res.Batches)
					assert.Equal(t, wantBatches-1, res.Merges)
				}
			})
		}
	}
}

func TestRandomGraph_MatchesReference(t *testing.T) {
	rng := testutil.NewRNG(4711)
	l := rng.RandomGraph(3000, 2500)
	g := testutil.Build(t, l)

	for _, s := range strategies {
		t.Run(s.String(), func(t *testing.T) {
			res := compute(t, s, g, WithConcurrency(4), WithMinBatchSize(100))
			require.True(t, res.Complete)
			assertMatchesReference(t, l, g, res.Set)
		})
	}
}

func TestParallelMatchesSequential(t *testing.T) {
	rng := testutil.NewRNG(99)
	l := rng.SparseIDGraph(2000, 1800)
	g := testutil.Build(t, l, adjacency.WithDirection(core.Both))

	seq := compute(t, Sequential, g, WithDirection(core.Both))
	for _, s := range []Strategy{Queue, ForkJoin} {
		for _, workers := range []int{1, 3, 16} {
			res := compute(t, s, g, WithDirection(core.Both), WithConcurrency(workers), WithMinBatchSize(7))
			assert.Equal(t, seq.SetCount(), res.SetCount())
			assert.True(t, seq.Set.SamePartition(res.Set), "%s with %d workers", s, workers)
		}
	}
}

func TestIncomingDirection(t *testing.T) {
	l := testutil.SixNodeGraph()
	g := testutil.Build(t, l, adjacency.WithDirection(core.Incoming))

	res := compute(t, ForkJoin, g, WithDirection(core.Incoming), WithConcurrency(2), WithMinBatchSize(2))
	assert.Equal(t, 1, res.SetCount())
}

func TestComputeThreshold(t *testing.T) {
	l := testutil.ThresholdChain()
	g := testutil.Build(t, l, adjacency.WithWeights(0))
	ids := g.IDMap()
	n := func(original core.OriginalID) core.NodeID { return ids.ToDense(original) }

	for _, s := range []Strategy{Sequential, ForkJoin} {
		t.Run(s.String(), func(t *testing.T) {
			e, err := New(s, g, WithConcurrency(4), WithMinBatchSize(1))
			require.NoError(t, err)

			res, err := e.ComputeThreshold(t.Context(), 0.4)
			require.NoError(t, err)
			assert.Equal(t, 2, res.SetCount())
			assert.True(t, res.Set.Connected(n(2), n(3)))
			assert.True(t, res.Set.Connected(n(3), n(4)))
			assert.False(t, res.Set.Connected(n(1), n(2)))
		})
	}
}

func TestComputeThreshold_IsStrict(t *testing.T) {
	l := adjacency.NewEdgeList()
	l.AddWeightedEdge(1, 2, 0.5)
	g := testutil.Build(t, l, adjacency.WithWeights(0))

	e, err := New(Sequential, g)
	require.NoError(t, err)
	res, err := e.ComputeThreshold(t.Context(), 0.5)
	require.NoError(t, err)
	assert.Equal(t, 2, res.SetCount())
}

func TestComputeThreshold_ParallelMatchesSequential(t *testing.T) {
	l := testutil.NewRNG(5).RandomWeightedGraph(1500, 3000)
	g := testutil.Build(t, l, adjacency.WithWeights(0))

	seq, err := New(Sequential, g)
	require.NoError(t, err)
	want, err := seq.ComputeThreshold(t.Context(), 0.7)
	require.NoError(t, err)

	fj, err := New(ForkJoin, g, WithConcurrency(8), WithMinBatchSize(50))
	require.NoError(t, err)
	got, err := fj.ComputeThreshold(t.Context(), 0.7)
	require.NoError(t, err)

	assert.True(t, want.Set.SamePartition(got.Set))
}

func TestQueue_ThresholdUnsupported(t *testing.T) {
	g := testutil.Build(t, testutil.ThresholdChain(), adjacency.WithWeights(0))
	e, err := New(Queue, g)
	require.NoError(t, err)

	res, err := e.ComputeThreshold(t.Context(), 0.4)
	assert.Nil(t, res)
	assert.ErrorIs(t, err, ErrThresholdUnsupported)
}

func TestCancellation(t *testing.T) {
	l := testutil.NewRNG(8).RandomGraph(5000, 5000)
	g := testutil.Build(t, l)

	for _, s := range strategies {
		t.Run(s.String(), func(t *testing.T) {
			var polls atomic.Int64
			stop := core.TerminationFunc(func() bool { return polls.Add(1) < 500 })

			res := compute(t, s, g, WithConcurrency(4), WithMinBatchSize(100), WithTermination(stop))
			require.NotNil(t, res.Set)
			assert.False(t, res.Complete)
			assert.Equal(t, g.NodeCount(), res.Set.Len())
		})
	}
}

func TestCancellation_Context(t *testing.T) {
	g := testutil.Build(t, testutil.SixNodeGraph())
	ctx, cancel := context.WithCancel(t.Context())
	cancel()

	for _, s := range strategies {
		e, err := New(s, g, WithConcurrency(2), WithMinBatchSize(2))
		require.NoError(t, err)
		res, err := e.Compute(ctx)
		require.NoError(t, err)
		assert.False(t, res.Complete)
		assert.Equal(t, 6, res.SetCount(), "%s must not union after cancellation", s)
	}
}

func TestProgressAndMergeHook(t *testing.T) {
	g := testutil.Build(t, testutil.NewRNG(3).RandomGraph(1000, 800))

	var last atomic.Int64
	var mergeCalls atomic.Int64
	res := compute(t, Queue, g,
		WithConcurrency(10),
		WithMinBatchSize(100),
		WithProgress(core.ProgressFunc(func(done, total int64) {
			assert.Equal(t, int64(1000), total)
			if done == total {
				last.Store(done)
			}
		})),
		WithMergeHook(func(time.Duration) { mergeCalls.Add(1) }),
	)

	assert.Equal(t, int64(1000), last.Load())
	assert.Equal(t, int64(res.Merges), mergeCalls.Load())
	assert.Equal(t, 9, res.Merges)
}

func TestEmptyGraph(t *testing.T) {
	g := testutil.Build(t, adjacency.NewEdgeList())
	for _, s := range strategies {
		res := compute(t, s, g)
		assert.True(t, res.Complete)
		assert.Zero(t, res.SetCount())
	}
}
