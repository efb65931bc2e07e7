package integration_test

import (
	"context"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/hupe1980/hugecc"
	"github.com/hupe1980/hugecc/adjacency"
	"github.com/hupe1980/hugecc/blobstore"
	"github.com/hupe1980/hugecc/core"
	"github.com/hupe1980/hugecc/export"
	"github.com/hupe1980/hugecc/testutil"
	"github.com/hupe1980/hugecc/unionfind"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestE2E_FileToBlob(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "edges.txt")
	require.NoError(t, os.WriteFile(path, []byte(`
# social graph
-7 3
3 1099511627776
5 6 0.3
8
`), 0o644))

	// 1. Load and compute
	edges, ids, err := adjacency.LoadEdgeListFile(path)
	require.NoError(t, err)
	res, err := hugecc.Run(context.Background(), ids, edges, hugecc.WithConcurrency(3), hugecc.WithBatchSize(1, 2))
	require.NoError(t, err)
	defer res.Release()
	require.True(t, res.Complete)
	require.Equal(t, 6, res.NodeCount)
	require.Equal(t, 3, res.SetCount)

	// 2. Write and read back
	store := blobstore.NewLocalStore(filepath.Join(dir, "out"))
	n, err := res.WriteToBlob(context.Background(), store, "cc.hucc", export.CodecLZ4)
	require.NoError(t, err)
	require.Equal(t, int64(6), n)

	pairs, err := export.ReadBlob(context.Background(), store, "cc.hucc")
	require.NoError(t, err)
	got := make(map[core.OriginalID]int64, len(pairs))
	for _, p := range pairs {
		got[p.Node] = p.Component
	}
	assert.Equal(t, got[-7], got[3])
	assert.Equal(t, got[3], got[1<<40])
	assert.Equal(t, got[5], got[6])
	assert.NotEqual(t, got[-7], got[5])
	assert.NotEqual(t, got[8], got[5])
}

func TestE2E_StrategiesAgree(t *testing.T) {
	l := testutil.NewRNG(99).RandomGraph(20_000, 15_000)
	ids, err := l.IDMap()
	require.NoError(t, err)
	want := testutil.ComponentCount(l)

	for _, dir := range []core.Direction{core.Outgoing, core.Incoming, core.Both} {
		for _, s := range []unionfind.Strategy{unionfind.Sequential, unionfind.Queue, unionfind.ForkJoin} {
			t.Run(dir.String()+"/"+s.String(), func(t *testing.T) {
				res, err := hugecc.Run(context.Background(), ids, l,
					hugecc.WithStrategy(s),
					hugecc.WithDirection(dir),
					hugecc.WithConcurrency(8),
					hugecc.WithBatchSize(500, 2_000))
				require.NoError(t, err)
				defer res.Release()
				assert.Equal(t, want, res.SetCount)
			})
		}
	}
}

func TestE2E_WriteBack(t *testing.T) {
	l := testutil.NewRNG(5).RandomGraph(50_000, 30_000)
	ids, err := l.IDMap()
	require.NoError(t, err)
	res, err := hugecc.Run(context.Background(), ids, l, hugecc.WithBatchSize(10_000, 100_000))
	require.NoError(t, err)
	defer res.Release()

	var mu sync.Mutex
	written := make(map[core.OriginalID]int64, ids.NodeCount())
	stats, err := res.Write(context.Background(), func(_ context.Context, node core.OriginalID, component int64) error {
		mu.Lock()
		defer mu.Unlock()
		written[node] = component
		return nil
	})
	require.NoError(t, err)
	assert.True(t, stats.Complete)
	assert.Len(t, written, ids.NodeCount())

	streamed := make(map[core.OriginalID]int64, ids.NodeCount())
	for node, component := range res.Stream() {
		streamed[node] = component
	}
	assert.Equal(t, streamed, written)
}
