package bitset

import (
	"math/bits"
	"sync/atomic"
)

const (
	segmentBits     = 16
	segmentSize     = 1 << segmentBits
	segmentMask     = segmentSize - 1
	wordsPerSegment = segmentSize / 64
)

type segment [wordsPerSegment]atomic.Uint64

// BitSet is a thread-safe, fixed-size, segmented bitset.
type BitSet struct {
	segments []*segment
	size     uint64
}

// New creates a BitSet holding size bits, all unset.
func New(size uint64) *BitSet {
	n := (size + segmentSize - 1) >> segmentBits
	b := &BitSet{
		segments: make([]*segment, n),
		size:     size,
	}
	for i := range b.segments {
		b.segments[i] = new(segment)
	}
	return b
}

func (b *BitSet) locate(i uint64) (*atomic.Uint64, uint64) {
	seg := b.segments[i>>segmentBits]
	offset := i & segmentMask
	return &seg[offset/64], uint64(1) << (offset % 64)
}

// Set sets the bit at index i. Out of range indexes are ignored.
func (b *BitSet) Set(i uint64) {
	if i >= b.size {
		return
	}
	word, mask := b.locate(i)
	word.Or(mask)
}

// Test reports whether the bit at index i is set.
func (b *BitSet) Test(i uint64) bool {
	if i >= b.size {
		return false
	}
	word, mask := b.locate(i)
	return word.Load()&mask != 0
}

// Count returns the number of set bits.
func (b *BitSet) Count() int {
	count := 0
	for _, seg := range b.segments {
		for i := range seg {
			if v := seg[i].Load(); v != 0 {
				count += bits.OnesCount64(v)
			}
		}
	}
	return count
}

// Len returns the number of bits the set can hold.
func (b *BitSet) Len() uint64 {
	return b.size
}
