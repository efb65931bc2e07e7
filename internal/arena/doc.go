// Package arena provides the paged, off-heap byte arena behind adjacency lists.
//
// The arena hands out byte regions from large pages (1 MiB by default) that are
// backed by anonymous mmap, so billions of encoded relationships never become
// GC-scanned heap. Pages are never moved or resized, which keeps every returned
// offset valid for the lifetime of the arena.
//
// # Features
//
//   - One lock-free CAS bump per allocation
//   - A region never spans two pages; oversized regions get a dedicated page
//   - Offset 0 is reserved, so it can mean "no region" in offset tables
//   - Optional memory accounting through a MemoryAcquirer
//
// # Safety
//
// Alloc is safe for concurrent use. Free is not, and must only run once all
// writers and readers are done.
package arena
