package arena

import "context"

// LocalAllocator is a per-writer handle over a shared Arena. It performs one
// atomic bump per Allocate call and keeps unsynchronized counters, so it must
// stay on a single goroutine.
type LocalAllocator struct {
	arena  *Arena
	ctx    context.Context
	allocs int64
	bytes  int64
}

// NewLocalAllocator returns an allocator handle for a single writer goroutine.
func (a *Arena) NewLocalAllocator(ctx context.Context) *LocalAllocator {
	return &LocalAllocator{arena: a, ctx: ctx}
}

// Allocate reserves size bytes and returns their global offset and the
// region. The region has capacity size, so appending to region[:0] fills it
// in place.
func (l *LocalAllocator) Allocate(size int) (uint64, []byte, error) {
	offset, region, err := l.arena.Alloc(l.ctx, size)
	if err != nil {
		return 0, nil, err
	}
	l.allocs++
	l.bytes += int64(size)
	return offset, region, nil
}

// Allocations returns the number of regions this handle allocated.
func (l *LocalAllocator) Allocations() int64 { return l.allocs }

// AllocatedBytes returns the number of bytes this handle allocated.
func (l *LocalAllocator) AllocatedBytes() int64 { return l.bytes }
