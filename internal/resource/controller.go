package resource

import (
	"context"
	"errors"
	"fmt"
	"sync/atomic"

	"golang.org/x/sync/semaphore"
	"golang.org/x/time/rate"
)

// ErrMemoryLimitExceeded reports a reservation that would overrun the
// configured page budget.
var ErrMemoryLimitExceeded = errors.New("memory limit exceeded")

// Config bounds a run. Zero values mean unbounded.
type Config struct {
	// MemoryLimitBytes caps arena pages reserved during import.
	MemoryLimitBytes int64
	// IOLimitBytesPerSec caps export throughput.
	IOLimitBytesPerSec int64
}

// budget is a non-blocking byte budget. A nil semaphore only counts.
type budget struct {
	sem   *semaphore.Weighted
	limit int64
	used  atomic.Int64
}

func (b *budget) take(n int64) bool {
	if b.sem != nil && !b.sem.TryAcquire(n) {
		return false
	}
	b.used.Add(n)
	return true
}

func (b *budget) give(n int64) {
	if b.sem != nil {
		b.sem.Release(n)
	}
	b.used.Add(-n)
}

// Controller is shared by the import and export stages of one run. A nil
// *Controller imposes no limits.
type Controller struct {
	mem      budget
	throttle *rate.Limiter
}

// NewController returns a controller enforcing cfg. A zero limit disables the
// matching check.
func NewController(cfg Config) *Controller {
	c := &Controller{}
	if cfg.MemoryLimitBytes > 0 {
		c.mem.sem = semaphore.NewWeighted(cfg.MemoryLimitBytes)
		c.mem.limit = cfg.MemoryLimitBytes
	}
	if bps := cfg.IOLimitBytesPerSec; bps > 0 {
		c.throttle = rate.NewLimiter(rate.Limit(bps), int(bps))
	}
	return c
}

// AcquireMemory reserves n bytes or fails immediately; it never waits for
// another stage to release.
func (c *Controller) AcquireMemory(ctx context.Context, n int64) error {
	if c == nil || n <= 0 {
		return nil
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	if !c.mem.take(n) {
		return fmt.Errorf("%w: need %d bytes with %d/%d reserved",
			ErrMemoryLimitExceeded, n, c.mem.used.Load(), c.mem.limit)
	}
	return nil
}

func (c *Controller) ReleaseMemory(n int64) {
	if c == nil || n <= 0 {
		return
	}
	c.mem.give(n)
}

// MemoryUsage is the number of bytes currently reserved.
func (c *Controller) MemoryUsage() int64 {
	if c == nil {
		return 0
	}
	return c.mem.used.Load()
}

// MemoryLimit is the configured cap, or 0 when unbounded.
func (c *Controller) MemoryLimit() int64 {
	if c == nil {
		return 0
	}
	return c.mem.limit
}

// AcquireIO blocks until n bytes of export throughput are available. Requests
// above the one-second burst are taken in burst-sized slices.
func (c *Controller) AcquireIO(ctx context.Context, n int) error {
	if c == nil || c.throttle == nil {
		return nil
	}
	step := c.throttle.Burst()
	for n > 0 {
		chunk := min(n, step)
		if err := c.throttle.WaitN(ctx, chunk); err != nil {
			return err
		}
		n -= chunk
	}
	return nil
}
