// Package unionfind computes weakly connected components over an adjacency
// store.
//
// Three strategies share the per-node scan:
//
//   - Sequential: one structure, one pass over all nodes.
//   - Queue: one structure per node batch, computed on a bounded pool and
//     reduced pairwise through a blocking queue. The merge tree shape
//     depends on completion order.
//   - ForkJoin: one structure per batch, reduced by a balanced recursive
//     merge whose halves run concurrently.
//
// Every strategy yields the same partition. Cancellation is polled between
// nodes and is not an error: the result reports Complete == false.
package unionfind
