// Package hugecc computes weakly-connected components of very large graphs.
//
// A run has two phases. The import phase builds an immutable, delta-encoded
// adjacency store in parallel batches over off-heap pages. The compute phase
// runs a union-find engine over that store: a sequential scan, a queue-based
// pairwise reduction of per-batch structures, or a fork-join merge tree.
//
// # Quick Start
//
//	edges, ids, _ := adjacency.LoadEdgeListFile("graph.tsv")
//	res, _ := hugecc.Run(ctx, ids, edges,
//	    hugecc.WithStrategy(unionfind.ForkJoin),
//	    hugecc.WithConcurrency(8),
//	)
//	defer res.Release()
//	fmt.Println(res.NodeCount, res.SetCount)
//
// # Weighted Runs
//
// With a threshold only relationships whose weight is strictly greater than
// the threshold join components:
//
//	res, _ := hugecc.Run(ctx, ids, edges, hugecc.WithThreshold(0.4))
//
// The queue strategy does not support thresholds; Run reports
// ErrThresholdUnsupported before loading anything.
//
// # Consuming Results
//
//	for node, component := range res.Stream() { ... }      // lazy pairs
//	res.Write(ctx, func(ctx context.Context, node core.OriginalID, c int64) error { ... })
//	res.WriteTo(ctx, file, export.CodecZSTD)               // compact result file
//	res.WriteToBlob(ctx, s3Store, "cc/result.hucc", export.CodecLZ4)
//
// # Cancellation
//
// A run stops early when its context is cancelled or its termination flag
// reports false. That is not an error: the Result carries Complete == false.
package hugecc
