package arena

import (
	"context"
	"errors"
	"fmt"
	"math/bits"
	"sync"
	"sync/atomic"

	"github.com/hupe1980/hugecc/internal/mmap"
)

// MemoryAcquirer is an interface for acquiring memory.
type MemoryAcquirer interface {
	AcquireMemory(ctx context.Context, amount int64) error
	ReleaseMemory(amount int64)
}

var (
	// ErrMaxPagesExceeded is returned when the arena exceeds the maximum number of pages.
	ErrMaxPagesExceeded = errors.New("arena: max pages exceeded")
	// ErrClosed is returned when allocating from a freed arena.
	ErrClosed = errors.New("arena: closed")
)

const (
	// DefaultPageSize is the default size of a page (1MB).
	DefaultPageSize = 1024 * 1024
	// MaxPages limits the number of pages an arena can hold.
	MaxPages = 65536
)

// Stats tracks arena memory usage metrics.
type Stats struct {
	Pages         uint64 // pages currently held
	BytesReserved uint64 // bytes mapped for pages
	BytesUsed     uint64 // bytes handed out by Alloc
	TotalAllocs   uint64 // number of successful allocations
}

type page struct {
	data    []byte
	mapping *mmap.Mapping
	cursor  atomic.Int64 // MUST be atomic - bumped concurrently without locks
	index   uint32
}

// Arena is a paged byte allocator.
type Arena struct {
	pageSize  int
	pageBits  int
	pageMask  uint64
	pages     [MaxPages]atomic.Pointer[page]
	pageCount atomic.Uint32
	current   atomic.Pointer[page]
	mu        sync.Mutex // serializes page creation

	bytesReserved atomic.Uint64
	bytesUsed     atomic.Uint64
	totalAllocs   atomic.Uint64

	acquirer MemoryAcquirer
}

// Option is a configuration option for Arena.
type Option func(*Arena)

// WithMemoryAcquirer accounts every page against the given acquirer.
func WithMemoryAcquirer(acquirer MemoryAcquirer) Option {
	return func(a *Arena) {
		a.acquirer = acquirer
	}
}

// New creates an Arena. pageSize is rounded up to a power of two;
// values <= 0 select DefaultPageSize.
func New(ctx context.Context, pageSize int, opts ...Option) (*Arena, error) {
	if pageSize <= 0 {
		pageSize = DefaultPageSize
	}
	pageBits := bits.Len(uint(pageSize - 1))
	pageSize = 1 << pageBits

	a := &Arena{
		pageSize: pageSize,
		pageBits: pageBits,
		pageMask: uint64(pageSize - 1),
	}
	for _, opt := range opts {
		opt(a)
	}

	a.mu.Lock()
	p, err := a.newPageLocked(ctx, pageSize)
	a.mu.Unlock()
	if err != nil {
		return nil, err
	}
	// Offset 0 is the null offset.
	p.cursor.Store(1)
	a.current.Store(p)
	return a, nil
}

// PageSize returns the size of a regular page.
func (a *Arena) PageSize() int {
	return a.pageSize
}

func (a *Arena) newPageLocked(ctx context.Context, size int) (*page, error) {
	idx := a.pageCount.Load()
	if idx >= MaxPages {
		return nil, ErrMaxPagesExceeded
	}

	if a.acquirer != nil {
		if err := a.acquirer.AcquireMemory(ctx, int64(size)); err != nil {
			return nil, err
		}
	}

	mapping, err := mmap.MapAnon(size)
	if err != nil {
		if a.acquirer != nil {
			a.acquirer.ReleaseMemory(int64(size))
		}
		return nil, fmt.Errorf("arena: map page: %w", err)
	}
	_ = mapping.Advise(mmap.AccessRandom)

	p := &page{
		data:    mapping.Bytes(),
		mapping: mapping,
		index:   idx,
	}
	a.pages[idx].Store(p)
	a.bytesReserved.Add(uint64(size))
	// Publish the count before the page can hand out offsets, so Bytes()
	// never sees an offset whose page is not yet counted.
	a.pageCount.Add(1)
	return p, nil
}

// Alloc reserves size contiguous bytes and returns the global offset of the
// region together with the writable region itself.
func (a *Arena) Alloc(ctx context.Context, size int) (uint64, []byte, error) {
	if size <= 0 {
		return 0, nil, fmt.Errorf("arena: invalid allocation size %d", size)
	}
	if size > a.pageSize {
		return a.allocOversized(ctx, size)
	}

	for {
		curr := a.current.Load()
		if curr == nil {
			return 0, nil, ErrClosed
		}

		if offset, data, ok := a.tryAllocInPage(curr, size); ok {
			return offset, data, nil
		}

		// Current page is full; one goroutine installs the next one.
		a.mu.Lock()
		if a.current.Load() != curr {
			a.mu.Unlock()
			continue
		}
		next, err := a.newPageLocked(ctx, a.pageSize)
		if err != nil {
			a.mu.Unlock()
			return 0, nil, err
		}
		a.current.Store(next)
		a.mu.Unlock()
	}
}

func (a *Arena) tryAllocInPage(p *page, size int) (uint64, []byte, bool) {
	for {
		old := p.cursor.Load()
		next := old + int64(size)
		if next > int64(len(p.data)) {
			return 0, nil, false
		}
		if p.cursor.CompareAndSwap(old, next) {
			a.bytesUsed.Add(uint64(size))
			a.totalAllocs.Add(1)
			offset := uint64(p.index)<<a.pageBits | uint64(old)
			return offset, p.data[old:next:next], true
		}
	}
}

// allocOversized gives a region larger than a page its own page. The regular
// current page is left untouched so small allocations keep filling it.
func (a *Arena) allocOversized(ctx context.Context, size int) (uint64, []byte, error) {
	a.mu.Lock()
	defer a.mu.Unlock()

	if a.current.Load() == nil {
		return 0, nil, ErrClosed
	}
	p, err := a.newPageLocked(ctx, size)
	if err != nil {
		return 0, nil, err
	}
	p.cursor.Store(int64(size))
	a.bytesUsed.Add(uint64(size))
	a.totalAllocs.Add(1)
	return uint64(p.index) << a.pageBits, p.data[:size:size], nil
}

// Bytes returns the page bytes starting at offset. The slice extends to the end
// of the page; callers know the length of what they stored.
func (a *Arena) Bytes(offset uint64) []byte {
	idx := offset >> a.pageBits
	if idx >= uint64(a.pageCount.Load()) {
		panic(fmt.Sprintf("arena: offset %d out of range", offset))
	}
	p := a.pages[idx].Load()
	if p == nil {
		panic("arena: page released")
	}
	return p.data[offset&a.pageMask:]
}

// Stats returns the current arena statistics.
func (a *Arena) Stats() Stats {
	return Stats{
		Pages:         uint64(a.pageCount.Load()),
		BytesReserved: a.bytesReserved.Load(),
		BytesUsed:     a.bytesUsed.Load(),
		TotalAllocs:   a.totalAllocs.Load(),
	}
}

// Free unmaps every page. The arena cannot be used afterwards.
// Do NOT call Free concurrently with Alloc or Bytes.
func (a *Arena) Free() {
	a.mu.Lock()
	defer a.mu.Unlock()

	count := a.pageCount.Load()
	for i := uint32(0); i < count; i++ {
		p := a.pages[i].Load()
		if p == nil {
			continue
		}
		_ = p.mapping.Close()
		if a.acquirer != nil {
			a.acquirer.ReleaseMemory(int64(len(p.data)))
		}
		a.pages[i].Store(nil)
	}
	a.pageCount.Store(0)
	a.current.Store(nil)
	a.bytesReserved.Store(0)
	a.bytesUsed.Store(0)
}

func (a *Arena) String() string {
	s := a.Stats()
	return fmt.Sprintf(
		"Arena{pages: %d, reserved: %.2f MB, used: %.2f MB, allocs: %d}",
		s.Pages,
		float64(s.BytesReserved)/(1024*1024),
		float64(s.BytesUsed)/(1024*1024),
		s.TotalAllocs,
	)
}
