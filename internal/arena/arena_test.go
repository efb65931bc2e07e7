package arena

import (
	"context"
	"encoding/binary"
	"sync"
	"testing"

	"github.com/hupe1980/hugecc/internal/resource"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestArena(t *testing.T, pageSize int, opts ...Option) *Arena {
	t.Helper()
	a, err := New(t.Context(), pageSize, opts...)
	require.NoError(t, err)
	t.Cleanup(a.Free)
	return a
}

func TestArena_New(t *testing.T) {
	t.Run("default page size", func(t *testing.T) {
		a := newTestArena(t, 0)
		assert.Equal(t, DefaultPageSize, a.PageSize())
		assert.Equal(t, uint64(1), a.Stats().Pages)
	})

	t.Run("rounds up to power of two", func(t *testing.T) {
		a := newTestArena(t, 1000)
		assert.Equal(t, 1024, a.PageSize())
	})
}

func TestArena_ReservesNullOffset(t *testing.T) {
	a := newTestArena(t, 1024)

	offset, buf, err := a.Alloc(t.Context(), 8)
	require.NoError(t, err)
	assert.NotZero(t, offset)
	assert.Len(t, buf, 8)
}

func TestArena_RegionNeverSpansPages(t *testing.T) {
	a := newTestArena(t, 64)

	// 1 reserved + 60 used; the next 10-byte region must start a new page.
	_, _, err := a.Alloc(t.Context(), 60)
	require.NoError(t, err)

	offset, buf, err := a.Alloc(t.Context(), 10)
	require.NoError(t, err)
	assert.Equal(t, uint64(1)<<6, offset, "second page, in-page offset 0")
	assert.Len(t, buf, 10)
	assert.Equal(t, uint64(2), a.Stats().Pages)
}

func TestArena_Oversized(t *testing.T) {
	a := newTestArena(t, 64)

	small, _, err := a.Alloc(t.Context(), 4)
	require.NoError(t, err)

	offset, buf, err := a.Alloc(t.Context(), 200)
	require.NoError(t, err)
	require.Len(t, buf, 200)
	buf[199] = 0xAB
	assert.Equal(t, byte(0xAB), a.Bytes(offset)[199])

	// Small allocations continue in the regular page.
	next, _, err := a.Alloc(t.Context(), 4)
	require.NoError(t, err)
	assert.Equal(t, small+4, next)
}

func TestLocalAllocator_RegionIsWrittenInPlace(t *testing.T) {
	a := newTestArena(t, 1024)
	l := a.NewLocalAllocator(t.Context())

	offset, region, err := l.Allocate(4 + 2)
	require.NoError(t, err)
	require.Len(t, region, 6)
	require.Equal(t, 6, cap(region))

	rec := binary.LittleEndian.AppendUint32(region[:0], 300)
	rec = binary.AppendUvarint(rec, 200) // two bytes
	require.Len(t, rec, 6)

	data := a.Bytes(offset)
	assert.Equal(t, []byte{0x2c, 0x01, 0x00, 0x00, 0xc8, 0x01}, data[:6])
	assert.Equal(t, int64(1), l.Allocations())
	assert.Equal(t, int64(6), l.AllocatedBytes())
}

func TestArena_ConcurrentAllocationsAreDisjoint(t *testing.T) {
	a := newTestArena(t, 4096)

	const workers, perWorker = 8, 2000
	offsets := make([][]uint64, workers)

	var wg sync.WaitGroup
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func(w int) {
			defer wg.Done()
			l := a.NewLocalAllocator(context.Background())
			for i := 0; i < perWorker; i++ {
				off, region, err := l.Allocate(4)
				if err != nil {
					t.Error(err)
					return
				}
				binary.LittleEndian.PutUint32(region, uint32(w*perWorker+i))
				offsets[w] = append(offsets[w], off)
			}
		}(w)
	}
	wg.Wait()

	seen := make(map[uint64]struct{}, workers*perWorker)
	for w := range offsets {
		for i, off := range offsets[w] {
			_, dup := seen[off]
			require.False(t, dup, "offset %d handed out twice", off)
			seen[off] = struct{}{}
			data := a.Bytes(off)
			got := uint32(data[0]) | uint32(data[1])<<8 | uint32(data[2])<<16 | uint32(data[3])<<24
			require.Equal(t, uint32(w*perWorker+i), got)
		}
	}
	assert.Equal(t, uint64(workers*perWorker), a.Stats().TotalAllocs)
}

func TestArena_MemoryAcquirer(t *testing.T) {
	rc := resource.NewController(resource.Config{MemoryLimitBytes: 128})
	a, err := New(t.Context(), 64, WithMemoryAcquirer(rc))
	require.NoError(t, err)
	assert.Equal(t, int64(64), rc.MemoryUsage())

	_, _, err = a.Alloc(t.Context(), 60)
	require.NoError(t, err)
	_, _, err = a.Alloc(t.Context(), 60) // second page
	require.NoError(t, err)
	_, _, err = a.Alloc(t.Context(), 60) // third page exceeds limit
	assert.ErrorIs(t, err, resource.ErrMemoryLimitExceeded)

	a.Free()
	assert.Zero(t, rc.MemoryUsage())

	_, _, err = a.Alloc(t.Context(), 1)
	assert.ErrorIs(t, err, ErrClosed)
}

func TestArena_InvalidSize(t *testing.T) {
	a := newTestArena(t, 64)
	_, _, err := a.Alloc(t.Context(), 0)
	assert.Error(t, err)
}
