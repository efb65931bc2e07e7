package blobstore

import (
	"io"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryStore(t *testing.T) {
	store := NewMemoryStore()
	ctx := t.Context()

	_, err := store.Open(ctx, "missing")
	require.ErrorIs(t, err, ErrNotFound)

	w, err := store.Create(ctx, "b")
	require.NoError(t, err)
	_, err = w.Write([]byte("hello"))
	require.NoError(t, err)
	require.NoError(t, w.Sync())
	require.NoError(t, w.Close())

	require.NoError(t, store.Put(ctx, "a", []byte("xyz")))

	names, err := store.List(ctx, "")
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "b"}, names)

	blob, err := store.Open(ctx, "b")
	require.NoError(t, err)
	assert.Equal(t, int64(5), blob.Size())

	buf := make([]byte, 3)
	n, err := blob.ReadAt(ctx, buf, 1)
	require.NoError(t, err)
	assert.Equal(t, "ell", string(buf[:n]))

	r, err := blob.ReadRange(ctx, 3, 10)
	require.NoError(t, err)
	rest, err := io.ReadAll(r)
	require.NoError(t, err)
	assert.Equal(t, "lo", string(rest))
	require.NoError(t, blob.Close())

	data, ok := store.Bytes("a")
	require.True(t, ok)
	data[0] = 'Q'
	again, _ := store.Bytes("a")
	assert.Equal(t, "xyz", string(again), "returned slices are copies")

	require.NoError(t, store.Delete(ctx, "a"))
	_, ok = store.Bytes("a")
	assert.False(t, ok)
}

func TestMemoryStore_ListPrefixAndAbort(t *testing.T) {
	store := NewMemoryStore()
	ctx := t.Context()

	for _, name := range []string{"runs/b", "runs/a", "other"} {
		require.NoError(t, store.Put(ctx, name, []byte(name)))
	}
	names, err := store.List(ctx, "runs/")
	require.NoError(t, err)
	assert.Equal(t, []string{"runs/a", "runs/b"}, names)

	w, err := store.Create(ctx, "runs/c")
	require.NoError(t, err)
	_, err = w.Write([]byte("partial"))
	require.NoError(t, err)
	require.NoError(t, w.(Abortable).Abort())

	_, ok := store.Bytes("runs/c")
	assert.False(t, ok)

	b, err := store.Open(ctx, "other")
	require.NoError(t, err)
	_, err = b.ReadAt(ctx, make([]byte, 1), 10)
	assert.ErrorIs(t, err, io.EOF)
}
