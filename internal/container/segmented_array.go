// Package container implements paged container data structures.
package container

import (
	"sync"
	"sync/atomic"
)

const (
	// pageBits determines the size of each page.
	// 16 bits = 65536 items per page.
	pageBits = 16
	pageSize = 1 << pageBits
	pageMask = pageSize - 1
)

// PagedArray is an array split into fixed-size pages so that no single
// allocation grows with the number of items. Pages are allocated on first
// write (or up front via NewPagedArray) and never move.
//
// Concurrent Set calls on distinct indexes are safe once the target page
// exists; page creation is serialized by a mutex.
type PagedArray[T any] struct {
	pages atomic.Pointer[[]*page[T]]
	mu    sync.Mutex // Protects growth
}

type page[T any] struct {
	items [pageSize]T
}

// NewPagedArray creates a PagedArray with pages preallocated for size items.
func NewPagedArray[T any](size uint64) *PagedArray[T] {
	pa := &PagedArray[T]{}
	n := (size + pageSize - 1) >> pageBits
	pages := make([]*page[T], n)
	for i := range pages {
		pages[i] = new(page[T])
	}
	pa.pages.Store(&pages)
	return pa
}

// NewSparsePagedArray creates an empty PagedArray whose pages are allocated on demand.
func NewSparsePagedArray[T any]() *PagedArray[T] {
	pa := &PagedArray[T]{}
	pages := make([]*page[T], 0)
	pa.pages.Store(&pages)
	return pa
}

// Get returns the item at the given index.
// Returns the zero value and false if the page was never allocated.
func (pa *PagedArray[T]) Get(index uint64) (T, bool) {
	pages := *pa.pages.Load()
	idx := index >> pageBits
	if idx >= uint64(len(pages)) || pages[idx] == nil {
		var zero T
		return zero, false
	}
	return pages[idx].items[index&pageMask], true
}

// Set stores value at index, allocating its page if necessary.
func (pa *PagedArray[T]) Set(index uint64, value T) {
	idx := index >> pageBits

	// Fast path: page exists
	pages := *pa.pages.Load()
	if idx < uint64(len(pages)) && pages[idx] != nil {
		pages[idx].items[index&pageMask] = value
		return
	}

	pa.mu.Lock()
	defer pa.mu.Unlock()

	pages = *pa.pages.Load()
	if idx < uint64(len(pages)) && pages[idx] != nil {
		pages[idx].items[index&pageMask] = value
		return
	}

	grown := pages
	if idx >= uint64(len(grown)) {
		grown = make([]*page[T], idx+1)
		copy(grown, pages)
	}
	if grown[idx] == nil {
		grown[idx] = new(page[T])
	}
	grown[idx].items[index&pageMask] = value

	pa.pages.Store(&grown)
}

// Pages returns the number of allocated pages.
func (pa *PagedArray[T]) Pages() int {
	n := 0
	for _, p := range *pa.pages.Load() {
		if p != nil {
			n++
		}
	}
	return n
}

// SizeInBytes estimates the memory held by allocated pages, given the size of one item.
func (pa *PagedArray[T]) SizeInBytes(itemSize int) int64 {
	return int64(pa.Pages()) * pageSize * int64(itemSize)
}
