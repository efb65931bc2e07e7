package unionfind

import (
	"context"

	"github.com/hupe1980/hugecc/dss"
	"github.com/hupe1980/hugecc/internal/parallel"
)

type forkJoinEngine struct {
	base
}

func (e *forkJoinEngine) Compute(ctx context.Context) (*Result, error) {
	return e.run(ctx, mode{})
}

func (e *forkJoinEngine) ComputeThreshold(ctx context.Context, threshold float64) (*Result, error) {
	return e.run(ctx, mode{weighted: true, threshold: threshold})
}

func (e *forkJoinEngine) run(ctx context.Context, m mode) (*Result, error) {
	rs := newRun(m)
	ranges := e.batches()
	if len(ranges) == 0 {
		return e.finish(rs, dss.New(0), 0), nil
	}

	sets := make([]*dss.DisjointSet, len(ranges))
	tasks := make([]parallel.Task, len(ranges))
	for i, r := range ranges {
		tasks[i] = func(ctx context.Context) error {
			sets[i] = e.computeBatch(ctx, rs, r)
			return nil
		}
	}
	if err := parallel.Run(ctx, e.opts.concurrency, tasks...); err != nil {
		return nil, err
	}

	// The merge tree runs outside the batch pool.
	return e.finish(rs, e.reduce(ctx, rs, sets), len(ranges)), nil
}

// reduce merges sets in a balanced tree: one half is forked onto its own
// goroutine, the other is reduced inline.
func (e *forkJoinEngine) reduce(ctx context.Context, rs *run, sets []*dss.DisjointSet) *dss.DisjointSet {
	switch len(sets) {
	case 1:
		return sets[0]
	case 2:
		return e.merge(ctx, rs, sets[0], sets[1])
	}

	mid := len(sets) / 2
	var left *dss.DisjointSet
	forked := make(chan struct{})
	go func() {
		defer close(forked)
		left = e.reduce(ctx, rs, sets[:mid])
	}()
	right := e.reduce(ctx, rs, sets[mid:])
	<-forked

	return e.merge(ctx, rs, left, right)
}
