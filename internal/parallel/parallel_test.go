package parallel

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestAdjustBatchSize(t *testing.T) {
	tests := []struct {
		name                             string
		nodes, concurrency, lower, upper int
		want                             int
	}{
		{"even split", 100, 4, 1, 0, 25},
		{"rounds up", 10, 4, 1, 0, 3},
		{"lower bound wins", 100, 4, 50, 0, 50},
		{"upper bound wins", 1_000_000, 2, 10, 100_000, 100_000},
		{"zero concurrency is one worker", 10, 0, 1, 0, 10},
		{"empty graph", 0, 4, 0, 0, 1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, AdjustBatchSize(tt.nodes, tt.concurrency, tt.lower, tt.upper))
		})
	}
}

func TestRanges(t *testing.T) {
	assert.Nil(t, Ranges(0, 3))
	assert.Equal(t, []Range{{0, 3}, {3, 6}, {6, 7}}, Ranges(7, 3))
	assert.Equal(t, []Range{{0, 1}, {1, 2}}, Ranges(2, 0))

	total := 0
	for _, r := range Ranges(1000, 33) {
		total += r.Len()
	}
	assert.Equal(t, 1000, total)
}

func TestRun(t *testing.T) {
	var count atomic.Int64
	tasks := make([]Task, 20)
	for i := range tasks {
		tasks[i] = func(context.Context) error {
			count.Add(1)
			return nil
		}
	}
	assert.NoError(t, Run(t.Context(), 3, tasks...))
	assert.Equal(t, int64(20), count.Load())
}

func TestRun_FirstErrorCancels(t *testing.T) {
	boom := errors.New("boom")
	var sawCancel atomic.Bool

	err := Run(t.Context(), 1,
		func(context.Context) error { return boom },
		func(ctx context.Context) error {
			if ctx.Err() != nil {
				sawCancel.Store(true)
			}
			return nil
		},
	)
	assert.ErrorIs(t, err, boom)
	assert.True(t, sawCancel.Load())
}
