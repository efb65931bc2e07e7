package unionfind

import (
	"context"

	"github.com/hupe1980/hugecc/dss"
)

type sequentialEngine struct {
	base
}

func (e *sequentialEngine) Compute(ctx context.Context) (*Result, error) {
	return e.run(ctx, mode{}), nil
}

func (e *sequentialEngine) ComputeThreshold(ctx context.Context, threshold float64) (*Result, error) {
	return e.run(ctx, mode{weighted: true, threshold: threshold}), nil
}

func (e *sequentialEngine) run(ctx context.Context, m mode) *Result {
	rs := newRun(m)
	n := e.graph.NodeCount()
	set := dss.New(n)
	if !e.scan(ctx, rs, set, 0, n) {
		rs.canceled.Store(true)
	}
	return e.finish(rs, set, 1)
}
