// Package testutil provides testing utilities for hugecc.
//
// This package is intended for use in tests and benchmarks only.
// It provides seeded random graph generators, the small fixture graphs the
// engines are checked against, and a reference component counter.
//
// # Random Graphs
//
//	rng := testutil.NewRNG(seed)
//	edges := rng.RandomGraph(10_000, 15_000)
//
// # Reference Components
//
//	want := testutil.ComponentCount(edges)
//	partition := testutil.Components(edges)
package testutil
