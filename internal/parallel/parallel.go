// Package parallel partitions node ranges into batches and runs batch tasks on
// a bounded worker pool.
package parallel

import (
	"context"

	"golang.org/x/sync/errgroup"
)

// Range is a half-open interval [Start, End) of dense node ids.
type Range struct {
	Start int
	End   int
}

// Len returns the number of ids in the range.
func (r Range) Len() int { return r.End - r.Start }

// AdjustBatchSize derives a batch size that spreads nodeCount ids over
// concurrency workers, bounded below by minBatchSize and, when positive,
// above by maxBatchSize. The result is at least 1.
func AdjustBatchSize(nodeCount, concurrency, minBatchSize, maxBatchSize int) int {
	if concurrency < 1 {
		concurrency = 1
	}
	size := (nodeCount + concurrency - 1) / concurrency
	size = max(size, minBatchSize)
	if maxBatchSize > 0 {
		size = min(size, maxBatchSize)
	}
	return max(size, 1)
}

// Ranges slices [0, n) into contiguous ranges of batchSize ids. The last range
// may be shorter. n == 0 yields no ranges.
func Ranges(n, batchSize int) []Range {
	if n <= 0 {
		return nil
	}
	batchSize = max(batchSize, 1)
	ranges := make([]Range, 0, (n+batchSize-1)/batchSize)
	for start := 0; start < n; start += batchSize {
		ranges = append(ranges, Range{Start: start, End: min(start+batchSize, n)})
	}
	return ranges
}

// Task is one unit of work on the pool.
type Task func(ctx context.Context) error

// Run executes tasks on a pool of at most concurrency goroutines, submitting
// them in order. The first error cancels the context passed to the remaining
// tasks and is returned once every started task has finished.
func Run(ctx context.Context, concurrency int, tasks ...Task) error {
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(max(concurrency, 1))
	for _, task := range tasks {
		g.Go(func() error {
			return task(gctx)
		})
	}
	return g.Wait()
}
