// Package bitset provides a fixed-size segmented bitset for concurrent writers.
//
// Architecture:
//   - Segmented design: 1024 uint64 words (65536 bits) per segment
//   - All segments are allocated up front; the set never grows
//   - Lock-free: atomic.Uint64 words, so disjoint writers never contend on a lock
//
// Used internally for:
//   - Import completion tracking (which nodes have a published adjacency record)
package bitset
