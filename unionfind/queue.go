package unionfind

import (
	"context"

	"github.com/hupe1980/hugecc/dss"
	"github.com/hupe1980/hugecc/internal/parallel"
)

type queueEngine struct {
	base
}

func (e *queueEngine) Compute(ctx context.Context) (*Result, error) {
	rs := newRun(mode{})
	ranges := e.batches()
	if len(ranges) == 0 {
		return e.finish(rs, dss.New(0), 0), nil
	}

	// Holds every structure at once, so no push ever blocks.
	queue := make(chan *dss.DisjointSet, len(ranges))

	tasks := make([]parallel.Task, 0, 2*len(ranges)-1)
	for _, r := range ranges {
		tasks = append(tasks, func(ctx context.Context) error {
			queue <- e.computeBatch(ctx, rs, r)
			return nil
		})
	}
	// Compute tasks are submitted first, so each one holds a pool slot
	// before any reducer can. With k reducers left there are k+1 structures
	// in flight, so some reducer can always take two.
	for range len(ranges) - 1 {
		tasks = append(tasks, func(ctx context.Context) error {
			a := <-queue
			b := <-queue
			queue <- e.merge(ctx, rs, a, b)
			return nil
		})
	}

	if err := parallel.Run(ctx, e.opts.concurrency, tasks...); err != nil {
		return nil, err
	}
	return e.finish(rs, <-queue, len(ranges)), nil
}

// ComputeThreshold is not available for queue reduction.
func (e *queueEngine) ComputeThreshold(context.Context, float64) (*Result, error) {
	return nil, ErrThresholdUnsupported
}
