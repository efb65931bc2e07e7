// Package mmap provides memory mappings for adjacency pages and edge files.
//
// # Anonymous Mappings
//
// MapAnon creates read-write anonymous mappings. The adjacency arena uses them
// to obtain large pages outside the Go garbage collector's control, so a graph
// with billions of relationships does not inflate GC scan work.
//
// # File Mappings
//
// Open maps a file read-only. The edge list loader uses it to parse input files
// without copying them through kernel buffers.
//
//	m, err := mmap.Open("edges.txt")
//	if err != nil { ... }
//	defer m.Close()
//	_ = m.Advise(mmap.AccessSequential)
//	data := m.Bytes()
//
// # Platform Support
//
//   - Unix (Linux, macOS, BSD): mmap(2) with madvise(2) for access hints
//   - Windows: MapViewOfFile and VirtualAlloc (Advise is a no-op)
//
// # Thread Safety
//
// A Mapping is safe for concurrent reads. Close is idempotent; callers must
// ensure no goroutine touches Bytes() after Close returns.
package mmap
