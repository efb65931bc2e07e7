// Package adjacency builds and serves the compressed, immutable adjacency
// store.
//
// Each node owns at most one record per loaded direction:
//
//	[degree uint32 LE][uvarint delta_0]...[uvarint delta_{k-1}]
//
// Neighbour ids are sorted ascending and stored as gaps from the previous id,
// so dense neighbourhoods cost about one byte per edge. Records live in
// arena pages; a paged offset array maps every node to the global offset of
// its record, and offset 0 means "no neighbours".
//
// Build runs one task per node batch on a bounded pool. Each task owns a
// local allocator and claims exactly the bytes a record needs with one atomic
// bump, so concurrent writers never touch the same region.
package adjacency
