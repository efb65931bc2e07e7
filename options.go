package hugecc

import (
	"fmt"
	"log/slog"
	"runtime"
	"time"

	"github.com/hupe1980/hugecc/core"
	"github.com/hupe1980/hugecc/unionfind"
)

const (
	// DefaultMinBatchSize is the lower bound on nodes per import, compute and export batch.
	DefaultMinBatchSize = 10_000
	// DefaultMaxBatchSize is the upper bound on nodes per import and export batch.
	DefaultMaxBatchSize = 100_000
)

type options struct {
	strategy         unionfind.Strategy
	concurrency      int
	minBatchSize     int
	maxBatchSize     int
	direction        core.Direction
	weighted         bool
	threshold        float64
	defaultWeight    float64
	termination      core.TerminationFlag
	progress         core.ProgressLogger
	progressInterval time.Duration
	memoryLimit      int64
	ioLimit          int64
	pageSize         int
	metricsCollector MetricsCollector
	logger           *Logger
}

// Option configures Run.
type Option func(*options)

// WithStrategy selects the union-find strategy. The default is ForkJoin.
func WithStrategy(s unionfind.Strategy) Option {
	return func(o *options) {
		o.strategy = s
	}
}

// WithConcurrency sets the number of workers used by every stage.
// Values below 1 make Run fail with ErrInvalidConcurrency.
func WithConcurrency(n int) Option {
	return func(o *options) {
		o.concurrency = n
	}
}

// WithBatchSize bounds the number of nodes per batch.
func WithBatchSize(minSize, maxSize int) Option {
	return func(o *options) {
		o.minBatchSize = minSize
		o.maxBatchSize = maxSize
	}
}

// WithDirection selects which relationships are loaded and followed.
func WithDirection(dir core.Direction) Option {
	return func(o *options) {
		o.direction = dir
	}
}

// WithThreshold switches to weighted union-find: only relationships whose
// weight is strictly greater than threshold join components. Weights are
// loaded from the source.
//
// The Queue strategy does not support thresholds; Run fails with
// ErrThresholdUnsupported before loading anything.
func WithThreshold(threshold float64) Option {
	return func(o *options) {
		o.weighted = true
		o.threshold = threshold
	}
}

// WithDefaultWeight sets the weight of relationships that carry none.
func WithDefaultWeight(w float64) Option {
	return func(o *options) {
		o.defaultWeight = w
	}
}

// WithTermination lets the host stop a run early. A terminated run returns
// a Result with Complete false and no error.
func WithTermination(flag core.TerminationFlag) Option {
	return func(o *options) {
		o.termination = flag
	}
}

// WithProgress reports progress of every stage to p instead of the logger.
func WithProgress(p core.ProgressLogger) Option {
	return func(o *options) {
		o.progress = p
	}
}

// WithProgressInterval sets the minimum time between logged progress lines.
func WithProgressInterval(d time.Duration) Option {
	return func(o *options) {
		o.progressInterval = d
	}
}

// WithMemoryLimit caps the bytes of adjacency pages the import may map.
func WithMemoryLimit(bytes int64) Option {
	return func(o *options) {
		o.memoryLimit = bytes
	}
}

// WithIOLimit caps the throughput of result file writes in bytes per second.
func WithIOLimit(bytesPerSec int64) Option {
	return func(o *options) {
		o.ioLimit = bytesPerSec
	}
}

// WithPageSize sets the adjacency page size in bytes.
func WithPageSize(bytes int) Option {
	return func(o *options) {
		o.pageSize = bytes
	}
}

// WithMetricsCollector configures a metrics collector for monitoring runs.
// Pass nil to disable metrics collection.
//
// Example with BasicMetricsCollector:
//
//	metrics := &hugecc.BasicMetricsCollector{}
//	res, _ := hugecc.Run(ctx, ids, src, hugecc.WithMetricsCollector(metrics))
//	stats := metrics.GetStats()
//	fmt.Printf("Merges: %d, avg %dns\n", stats.MergeCount, stats.MergeAvgNanos)
func WithMetricsCollector(mc MetricsCollector) Option {
	return func(o *options) {
		if mc == nil {
			mc = NoopMetricsCollector{}
		}
		o.metricsCollector = mc
	}
}

// WithLogger configures structured logging for runs.
// Pass nil to disable logging.
//
// Example with JSON logging:
//
//	logger := hugecc.NewJSONLogger(slog.LevelInfo)
//	res, _ := hugecc.Run(ctx, ids, src, hugecc.WithLogger(logger))
func WithLogger(logger *Logger) Option {
	return func(o *options) {
		if logger == nil {
			logger = NoopLogger()
		}
		o.logger = logger
	}
}

// WithLogLevel creates a text logger with the specified level and sets it.
// Convenience wrapper for WithLogger(NewTextLogger(level)).
func WithLogLevel(level slog.Level) Option {
	return func(o *options) {
		o.logger = NewTextLogger(level)
	}
}

func applyOptions(optFns []Option) options {
	o := options{
		strategy:         unionfind.ForkJoin,
		concurrency:      runtime.GOMAXPROCS(0),
		minBatchSize:     DefaultMinBatchSize,
		maxBatchSize:     DefaultMaxBatchSize,
		direction:        core.Outgoing,
		defaultWeight:    1.0,
		termination:      core.AlwaysRunning,
		progressInterval: DefaultProgressInterval,
		metricsCollector: NoopMetricsCollector{},
		logger:           NoopLogger(),
	}
	for _, fn := range optFns {
		if fn != nil {
			fn(&o)
		}
	}
	if o.termination == nil {
		o.termination = core.AlwaysRunning
	}
	return o
}

func (o *options) validate() error {
	if o.concurrency < 1 {
		return ErrInvalidConcurrency
	}
	if o.minBatchSize < 1 || o.maxBatchSize < o.minBatchSize {
		return ErrInvalidBatchSize
	}
	if o.strategy < unionfind.Sequential || o.strategy > unionfind.ForkJoin {
		return fmt.Errorf("%w: %s", ErrUnknownStrategy, o.strategy)
	}
	if o.weighted && o.strategy == unionfind.Queue {
		return ErrThresholdUnsupported
	}
	return nil
}

func (o *options) progressFor(stage Stage) core.ProgressLogger {
	if o.progress != nil {
		return o.progress
	}
	return NewProgressLogger(o.logger, string(stage), o.progressInterval)
}
