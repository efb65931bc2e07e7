package adjacency

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"math/rand/v2"
	"slices"
	"sync/atomic"
	"testing"

	"github.com/hupe1980/hugecc/core"
	"github.com/hupe1980/hugecc/idmap"
	"github.com/hupe1980/hugecc/internal/resource"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// sixNodes is the graph (0,1) (2,1) (3,4) (4,5) (5,3) (0,3) over originals
// 100..105.
func sixNodes() *EdgeList {
	l := NewEdgeList()
	for _, e := range [][2]core.OriginalID{{100, 101}, {102, 101}, {103, 104}, {104, 105}, {105, 103}, {100, 103}} {
		l.AddEdge(e[0], e[1])
	}
	return l
}

func build(t *testing.T, l *EdgeList, opts ...Option) *Graph {
	t.Helper()
	ids, err := l.IDMap()
	require.NoError(t, err)
	im, err := NewImporter(ids, l, opts...)
	require.NoError(t, err)
	g, err := im.Build(t.Context())
	require.NoError(t, err)
	t.Cleanup(g.Release)
	return g
}

func neighbours(g *Graph, node core.NodeID, dir core.Direction) []core.NodeID {
	var out []core.NodeID
	g.ForEachRelationship(node, dir, func(src, tgt core.NodeID) bool {
		out = append(out, tgt)
		return true
	})
	return out
}

func TestNewImporter_Validation(t *testing.T) {
	l := sixNodes()
	ids, err := l.IDMap()
	require.NoError(t, err)

	_, err = NewImporter(nil, l)
	assert.ErrorIs(t, err, ErrNilIDMap)
	_, err = NewImporter(ids, nil)
	assert.ErrorIs(t, err, ErrNilSource)
}

func TestImporter_Outgoing(t *testing.T) {
	g := build(t, sixNodes(), WithConcurrency(4), WithBatchSize(1, 0))

	assert.Equal(t, 6, g.NodeCount())
	assert.True(t, g.Complete())
	assert.Equal(t, core.Outgoing, g.Direction())
	assert.True(t, g.Supports(core.Outgoing))
	assert.False(t, g.Supports(core.Both))

	assert.Equal(t, []core.NodeID{1, 3}, neighbours(g, 0, core.Outgoing))
	assert.Equal(t, []core.NodeID{1}, neighbours(g, 2, core.Outgoing))
	assert.Equal(t, []core.NodeID{3}, neighbours(g, 5, core.Outgoing))
	assert.Empty(t, neighbours(g, 1, core.Outgoing))
	assert.Empty(t, neighbours(g, 1, core.Incoming), "incoming was not loaded")

	assert.Equal(t, 2, g.Degree(0, core.Outgoing))
	assert.Equal(t, 0, g.Degree(1, core.Outgoing))
	for n := range core.NodeID(6) {
		assert.True(t, g.Loaded(n))
	}
}

func TestImporter_Both(t *testing.T) {
	g := build(t, sixNodes(), WithDirection(core.Both), WithBatchSize(2, 2))

	assert.True(t, g.Supports(core.Incoming))
	assert.Equal(t, []core.NodeID{0, 2}, neighbours(g, 1, core.Incoming))
	assert.Equal(t, []core.NodeID{4, 0, 5}, neighbours(g, 3, core.Both))
	assert.Equal(t, 3, g.Degree(3, core.Both))
}

func TestImporter_Weights(t *testing.T) {
	l := NewEdgeList()
	l.AddWeightedEdge(1, 2, 0.1)
	l.AddWeightedEdge(2, 3, 0.5)
	l.AddEdge(3, 4)

	t.Run("outgoing", func(t *testing.T) {
		g := build(t, l, WithWeights(-1))
		var got []float64
		g.ForEachWeightedRelationship(1, core.Outgoing, func(_, _ core.NodeID, w float64) bool {
			got = append(got, w)
			return true
		})
		assert.Equal(t, []float64{0.5}, got)
		assert.InDelta(t, 0.1, g.Weight(0, 1), 0)
		assert.InDelta(t, -1, g.Weight(2, 3), 0, "unweighted edge falls back to the default")
		assert.Equal(t, 2, g.MemoryStats().WeightsCount)
	})

	t.Run("incoming keeps stored direction", func(t *testing.T) {
		g := build(t, l, WithDirection(core.Incoming), WithWeights(0))
		var got []float64
		g.ForEachWeightedRelationship(2, core.Incoming, func(src, tgt core.NodeID, w float64) bool {
			assert.Equal(t, core.NodeID(2), src)
			assert.Equal(t, core.NodeID(1), tgt)
			got = append(got, w)
			return true
		})
		assert.Equal(t, []float64{0.5}, got)
		assert.InDelta(t, 0.5, g.Weight(1, 2), 0)
	})

	t.Run("not loaded", func(t *testing.T) {
		g := build(t, l)
		assert.InDelta(t, 1.0, g.Weight(0, 1), 0)
	})
}

func TestImporter_DropsUnmappedTargets(t *testing.T) {
	l := NewEdgeList()
	l.AddEdge(1, 2)
	l.AddEdge(1, 99)

	// 99 is filtered out of the id space.
	ids, err := idmap.FromOriginals(1, 2)
	require.NoError(t, err)
	im, err := NewImporter(ids, l)
	require.NoError(t, err)
	g, err := im.Build(t.Context())
	require.NoError(t, err)
	defer g.Release()

	assert.Equal(t, []core.NodeID{1}, neighbours(g, 0, core.Outgoing))
	assert.Equal(t, 1, g.Degree(0, core.Outgoing))
}

func TestImporter_RandomGraphMatchesSource(t *testing.T) {
	rng := rand.New(rand.NewPCG(7, 11))
	l := NewEdgeList()
	for i := range core.OriginalID(2000) {
		l.AddNode(i)
	}
	for range 20000 {
		l.AddEdge(core.OriginalID(rng.IntN(2000)), core.OriginalID(rng.IntN(2000)))
	}

	// Small pages force many page switches and some oversized records.
	g := build(t, l, WithConcurrency(8), WithBatchSize(16, 64), WithPageSize(64))

	ids := g.IDMap()
	for n := range core.NodeID(2000) {
		var want []core.NodeID
		_ = l.ForEachRelationship(ids.ToOriginal(n), core.Outgoing, func(r Relationship) bool {
			want = append(want, ids.ToDense(r.Target))
			return true
		})
		slices.Sort(want)
		got := neighbours(g, n, core.Outgoing)
		if len(want) == 0 {
			assert.Empty(t, got)
			continue
		}
		require.Equal(t, want, got, "node %d", n)
	}
	assert.Greater(t, g.MemoryStats().Outgoing.Pages, uint64(1))
}

func TestImporter_SourceError(t *testing.T) {
	l := sixNodes()
	ids, err := l.IDMap()
	require.NoError(t, err)

	boom := errors.New("disk on fire")
	src := SourceFunc(func(node core.OriginalID, dir core.Direction, fn func(Relationship) bool) error {
		if node == 104 {
			return boom
		}
		return l.ForEachRelationship(node, dir, fn)
	})
	im, err := NewImporter(ids, src, WithBatchSize(1, 1))
	require.NoError(t, err)

	g, err := im.Build(t.Context())
	assert.Nil(t, g)
	var ie *ImportError
	require.ErrorAs(t, err, &ie)
	assert.Equal(t, core.OriginalID(104), ie.Node)
	assert.ErrorIs(t, err, boom)
}

func TestImporter_Cancellation(t *testing.T) {
	rng := rand.New(rand.NewPCG(3, 5))
	l := NewEdgeList()
	for i := range core.OriginalID(1000) {
		l.AddEdge(i, core.OriginalID(rng.IntN(1000)))
	}

	var polls atomic.Int64
	stopAfter := core.TerminationFunc(func() bool { return polls.Add(1) <= 300 })
	g := build(t, l, WithConcurrency(4), WithBatchSize(10, 10), WithTermination(stopAfter))

	assert.False(t, g.Complete())
	ids := g.IDMap()
	loaded := 0
	for n := range core.NodeID(1000) {
		if !g.Loaded(n) {
			assert.Zero(t, g.Degree(n, core.Outgoing), "unfinished node %d must read as empty", n)
			continue
		}
		loaded++
		var want []core.NodeID
		_ = l.ForEachRelationship(ids.ToOriginal(n), core.Outgoing, func(r Relationship) bool {
			want = append(want, ids.ToDense(r.Target))
			return true
		})
		slices.Sort(want)
		assert.Equal(t, want, neighbours(g, n, core.Outgoing))
	}
	assert.Positive(t, loaded)
	assert.Less(t, loaded, 1000)
}

func TestImporter_ContextCancelled(t *testing.T) {
	l := sixNodes()
	ids, err := l.IDMap()
	require.NoError(t, err)
	im, err := NewImporter(ids, l)
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(t.Context())
	cancel()

	g, err := im.Build(ctx)
	require.NoError(t, err)
	defer g.Release()
	assert.False(t, g.Complete())
	assert.Zero(t, g.Degree(0, core.Outgoing))
}

func TestImporter_MemoryLimit(t *testing.T) {
	l := sixNodes()
	ids, err := l.IDMap()
	require.NoError(t, err)

	rc := resource.NewController(resource.Config{MemoryLimitBytes: 1024})
	im, err := NewImporter(ids, l, WithResourceController(rc), WithPageSize(4096))
	require.NoError(t, err)

	_, err = im.Build(t.Context())
	assert.ErrorIs(t, err, resource.ErrMemoryLimitExceeded)
	assert.Zero(t, rc.MemoryUsage())
}

func TestImporter_Progress(t *testing.T) {
	var last atomic.Int64
	progress := core.ProgressFunc(func(done, total int64) {
		assert.Equal(t, int64(6), total)
		for {
			cur := last.Load()
			if done <= cur || last.CompareAndSwap(cur, done) {
				return
			}
		}
	})
	build(t, sixNodes(), WithProgress(progress), WithBatchSize(1, 1))
	assert.Equal(t, int64(6), last.Load())
}

func TestImporter_LogsBatchAllocations(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewJSONHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug}))
	build(t, sixNodes(), WithLogger(logger), WithConcurrency(1), WithBatchSize(6, 6))

	var batches []map[string]any
	dec := json.NewDecoder(&buf)
	for dec.More() {
		var line map[string]any
		require.NoError(t, dec.Decode(&line))
		if line["msg"] == "import batch finished" {
			batches = append(batches, line)
		}
	}
	require.Len(t, batches, 1)
	// Five nodes have outgoing edges: one record of 4+2 bytes, four of 4+1.
	assert.InDelta(t, 5, batches[0]["records"], 0)
	assert.InDelta(t, 26, batches[0]["bytes"], 0)
}

func TestImporter_Empty(t *testing.T) {
	g := build(t, NewEdgeList())
	assert.Zero(t, g.NodeCount())
	assert.True(t, g.Complete())
}
