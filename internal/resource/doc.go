// Package resource implements the Controller for global limits during a run.
//
// The Controller governs two resource types:
//
//   - Memory: tracks and limits adjacency page memory (non-blocking, fail-fast)
//   - IO: rate-limits result export so a write-back does not saturate the disk
//     or the network link to an object store
//
// # Memory Management
//
// Memory tracking uses a weighted semaphore for the hard limit and an atomic
// counter for usage. AcquireMemory never waits: a graph that does not fit is a
// hard import failure, not something to retry.
//
//	rc := resource.NewController(resource.Config{
//	    MemoryLimitBytes: 8 << 30,
//	})
//	if err := rc.AcquireMemory(ctx, pageSize); err != nil {
//	    // ErrMemoryLimitExceeded
//	}
//	defer rc.ReleaseMemory(pageSize)
//
// # IO Rate Limiting
//
// A token bucket limits export throughput:
//
//	rc := resource.NewController(resource.Config{
//	    IOLimitBytesPerSec: 64 << 20,
//	})
//	w := resource.NewRateLimitedWriter(ctx, file, rc)
//
// # Nil Safety
//
// All methods handle a nil Controller gracefully; they become no-ops.
package resource
