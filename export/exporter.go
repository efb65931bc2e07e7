package export

import (
	"context"
	"fmt"
	"log/slog"
	"runtime"
	"sync/atomic"
	"time"

	"github.com/hupe1980/hugecc/core"
	"github.com/hupe1980/hugecc/dss"
	"github.com/hupe1980/hugecc/idmap"
	"github.com/hupe1980/hugecc/internal/parallel"
)

const (
	// DefaultMinBatchSize is the smallest number of nodes an export batch covers.
	DefaultMinBatchSize = 10_000
	// DefaultMaxBatchSize is the largest number of nodes an export batch covers.
	DefaultMaxBatchSize = 100_000
)

// WriteFunc receives one node and its component id. It is called from
// several goroutines at once unless the exporter runs with concurrency 1.
type WriteFunc func(ctx context.Context, node core.OriginalID, component int64) error

type exporterOptions struct {
	concurrency  int
	minBatchSize int
	maxBatchSize int
	termination  core.TerminationFlag
	progress     core.ProgressLogger
	logger       *slog.Logger
}

// ExporterOption configures an Exporter.
type ExporterOption func(*exporterOptions)

// WithConcurrency sets the number of concurrent writers.
func WithConcurrency(n int) ExporterOption {
	return func(o *exporterOptions) {
		if n > 0 {
			o.concurrency = n
		}
	}
}

// WithBatchSize bounds the number of nodes per write batch.
func WithBatchSize(minSize, maxSize int) ExporterOption {
	return func(o *exporterOptions) {
		if minSize > 0 {
			o.minBatchSize = minSize
		}
		if maxSize >= o.minBatchSize {
			o.maxBatchSize = maxSize
		}
	}
}

// WithTermination stops the export early once flag reports false.
func WithTermination(flag core.TerminationFlag) ExporterOption {
	return func(o *exporterOptions) {
		if flag != nil {
			o.termination = flag
		}
	}
}

// WithProgress reports written node counts.
func WithProgress(p core.ProgressLogger) ExporterOption {
	return func(o *exporterOptions) {
		if p != nil {
			o.progress = p
		}
	}
}

// WithLogger sets the logger.
func WithLogger(l *slog.Logger) ExporterOption {
	return func(o *exporterOptions) {
		if l != nil {
			o.logger = l
		}
	}
}

// Stats summarizes one export.
type Stats struct {
	Written  int64
	Batches  int
	Complete bool
	Duration time.Duration
}

// Exporter writes finished components back through a WriteFunc in parallel.
type Exporter struct {
	ids  *idmap.IDMap
	opts exporterOptions
}

// NewExporter creates an exporter for results over ids.
func NewExporter(ids *idmap.IDMap, opts ...ExporterOption) (*Exporter, error) {
	if ids == nil {
		return nil, ErrNilIDMap
	}
	o := exporterOptions{
		concurrency:  runtime.GOMAXPROCS(0),
		minBatchSize: DefaultMinBatchSize,
		maxBatchSize: DefaultMaxBatchSize,
		termination:  core.AlwaysRunning,
		progress:     core.NoopProgress,
		logger:       slog.New(slog.DiscardHandler),
	}
	for _, opt := range opts {
		opt(&o)
	}
	return &Exporter{ids: ids, opts: o}, nil
}

// Write calls fn once per node of set. The set is flattened first so that
// batches can resolve roots without mutating it. A termination signal ends
// the export early with Complete false and a nil error.
func (e *Exporter) Write(ctx context.Context, set *dss.DisjointSet, fn WriteFunc) (Stats, error) {
	n := e.ids.NodeCount()
	if set.Len() != n {
		return Stats{}, fmt.Errorf("%w: set has %d nodes, id map has %d", ErrSizeMismatch, set.Len(), n)
	}
	start := time.Now()
	set.Flatten()

	batchSize := parallel.AdjustBatchSize(n, e.opts.concurrency, e.opts.minBatchSize, e.opts.maxBatchSize)
	ranges := parallel.Ranges(n, batchSize)

	var written atomic.Int64
	var canceled atomic.Bool
	writeRange := func(ctx context.Context, r parallel.Range) error {
		// Nodes handed to fn count as written even when the batch stops early.
		var done int64
		defer func() { e.opts.progress.LogProgress(written.Add(done), int64(n)) }()
		for i := r.Start; i < r.End; i++ {
			if !core.Running(ctx, e.opts.termination) {
				canceled.Store(true)
				return nil
			}
			node := core.NodeID(i)
			done++
			if err := fn(ctx, e.ids.ToOriginal(node), int64(set.Root(node))); err != nil {
				return fmt.Errorf("export node %d: %w", e.ids.ToOriginal(node), err)
			}
		}
		return nil
	}

	var err error
	if e.opts.concurrency == 1 {
		for _, r := range ranges {
			if err = writeRange(ctx, r); err != nil || canceled.Load() {
				break
			}
		}
	} else {
		tasks := make([]parallel.Task, len(ranges))
		for i, r := range ranges {
			tasks[i] = func(ctx context.Context) error { return writeRange(ctx, r) }
		}
		err = parallel.Run(ctx, e.opts.concurrency, tasks...)
	}

	stats := Stats{
		Written:  written.Load(),
		Batches:  len(ranges),
		Complete: err == nil && !canceled.Load(),
		Duration: time.Since(start),
	}
	if err != nil {
		return stats, err
	}
	e.opts.logger.Info("export finished",
		slog.Int("nodes", n),
		slog.Int("batches", stats.Batches),
		slog.Bool("complete", stats.Complete),
		slog.Duration("duration", stats.Duration))
	return stats, nil
}
