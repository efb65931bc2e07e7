package adjacency

import (
	"log/slog"
	"runtime"

	"github.com/hupe1980/hugecc/core"
	"github.com/hupe1980/hugecc/internal/arena"
	"github.com/hupe1980/hugecc/internal/resource"
)

const (
	// DefaultMinBatchSize is the smallest number of nodes an import task handles.
	DefaultMinBatchSize = 10_000
	// DefaultMaxBatchSize caps the number of nodes an import task handles.
	DefaultMaxBatchSize = 100_000
)

type importOptions struct {
	concurrency   int
	minBatchSize  int
	maxBatchSize  int
	direction     core.Direction
	loadWeights   bool
	defaultWeight float64
	termination   core.TerminationFlag
	progress      core.ProgressLogger
	logger        *slog.Logger
	rc            *resource.Controller
	pageSize      int
}

func defaultImportOptions() importOptions {
	return importOptions{
		concurrency:   runtime.GOMAXPROCS(0),
		minBatchSize:  DefaultMinBatchSize,
		maxBatchSize:  DefaultMaxBatchSize,
		direction:     core.Outgoing,
		defaultWeight: 1.0,
		termination:   core.AlwaysRunning,
		progress:      core.NoopProgress,
		logger:        slog.New(slog.DiscardHandler),
		pageSize:      arena.DefaultPageSize,
	}
}

// Option configures an Importer.
type Option func(*importOptions)

// WithConcurrency sets the number of import workers.
func WithConcurrency(n int) Option {
	return func(o *importOptions) {
		if n > 0 {
			o.concurrency = n
		}
	}
}

// WithBatchSize bounds the number of nodes per import task. A max of 0
// removes the upper bound.
func WithBatchSize(minSize, maxSize int) Option {
	return func(o *importOptions) {
		o.minBatchSize = minSize
		o.maxBatchSize = maxSize
	}
}

// WithDirection selects which adjacency lists are built.
func WithDirection(dir core.Direction) Option {
	return func(o *importOptions) {
		o.direction = dir
	}
}

// WithWeights loads relationship weights. Relationships without a weight,
// and pairs that were never seen, resolve to defaultWeight.
func WithWeights(defaultWeight float64) Option {
	return func(o *importOptions) {
		o.loadWeights = true
		o.defaultWeight = defaultWeight
	}
}

// WithTermination installs a host cancellation flag, polled between nodes.
func WithTermination(flag core.TerminationFlag) Option {
	return func(o *importOptions) {
		if flag != nil {
			o.termination = flag
		}
	}
}

// WithProgress installs a progress logger.
func WithProgress(p core.ProgressLogger) Option {
	return func(o *importOptions) {
		if p != nil {
			o.progress = p
		}
	}
}

// WithLogger sets the logger for import lifecycle events.
func WithLogger(l *slog.Logger) Option {
	return func(o *importOptions) {
		if l != nil {
			o.logger = l
		}
	}
}

// WithResourceController accounts arena pages against rc's memory limit.
func WithResourceController(rc *resource.Controller) Option {
	return func(o *importOptions) {
		o.rc = rc
	}
}

// WithPageSize sets the arena page size. It is rounded up to a power of two.
func WithPageSize(size int) Option {
	return func(o *importOptions) {
		o.pageSize = size
	}
}
