package mmap

import (
	"os"
	"sync"
)

// Mapping is a mapped byte region. File mappings are read-only; anonymous
// mappings are zeroed and writable.
type Mapping struct {
	mu   sync.RWMutex
	data []byte
	done bool
}

// Open maps path read-only. Empty files produce an empty mapping that needs
// no unmapping.
func Open(path string) (*Mapping, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		return nil, err
	}
	switch n := info.Size(); {
	case n < 0:
		return nil, ErrInvalidSize
	case n == 0:
		return &Mapping{}, nil
	default:
		data, err := mapFile(f, int(n))
		if err != nil {
			return nil, err
		}
		return &Mapping{data: data}, nil
	}
}

// MapAnon reserves size bytes of zeroed memory outside the Go heap.
func MapAnon(size int) (*Mapping, error) {
	if size <= 0 {
		return nil, ErrInvalidSize
	}
	data, err := mapAnon(size)
	if err != nil {
		return nil, err
	}
	return &Mapping{data: data}, nil
}

// Bytes returns the region, or nil after Close.
func (m *Mapping) Bytes() []byte {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.done {
		return nil
	}
	return m.data
}

// Size is the mapped length, which stays stable after Close.
func (m *Mapping) Size() int {
	return len(m.data)
}

func (m *Mapping) Advise(pattern AccessPattern) error {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.done {
		return ErrClosed
	}
	if len(m.data) == 0 {
		return nil
	}
	return advise(m.data, pattern)
}

// Close releases the region. Calling it again is a no-op.
func (m *Mapping) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.done {
		return nil
	}
	m.done = true
	if len(m.data) == 0 {
		return nil
	}
	return unmap(m.data)
}
