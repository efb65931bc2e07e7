package unionfind

import (
	"log/slog"
	"runtime"
	"time"

	"github.com/hupe1980/hugecc/core"
)

// DefaultMinBatchSize is the smallest number of nodes a parallel batch covers.
const DefaultMinBatchSize = 10_000

type options struct {
	concurrency  int
	minBatchSize int
	direction    core.Direction
	termination  core.TerminationFlag
	progress     core.ProgressLogger
	logger       *slog.Logger
	onMerge      func(time.Duration)
}

func defaultOptions() options {
	return options{
		concurrency:  runtime.GOMAXPROCS(0),
		minBatchSize: DefaultMinBatchSize,
		direction:    core.Outgoing,
		termination:  core.AlwaysRunning,
		progress:     core.NoopProgress,
		logger:       slog.New(slog.DiscardHandler),
		onMerge:      func(time.Duration) {},
	}
}

// Option configures an Engine.
type Option func(*options)

// WithConcurrency sets the size of the batch worker pool.
func WithConcurrency(n int) Option {
	return func(o *options) {
		if n > 0 {
			o.concurrency = n
		}
	}
}

// WithMinBatchSize sets the lower bound on nodes per batch. The batch size
// is otherwise derived from the node count and the concurrency.
func WithMinBatchSize(n int) Option {
	return func(o *options) {
		if n > 0 {
			o.minBatchSize = n
		}
	}
}

// WithDirection selects which relationships are followed. The graph must
// have been imported with that direction.
func WithDirection(dir core.Direction) Option {
	return func(o *options) {
		o.direction = dir
	}
}

// WithTermination installs a host cancellation flag, polled between nodes.
func WithTermination(flag core.TerminationFlag) Option {
	return func(o *options) {
		if flag != nil {
			o.termination = flag
		}
	}
}

// WithProgress installs a progress logger. Progress is counted in scanned
// nodes.
func WithProgress(p core.ProgressLogger) Option {
	return func(o *options) {
		if p != nil {
			o.progress = p
		}
	}
}

// WithLogger sets the logger for engine lifecycle events.
func WithLogger(l *slog.Logger) Option {
	return func(o *options) {
		if l != nil {
			o.logger = l
		}
	}
}

// WithMergeHook is called with the duration of every structure merge.
func WithMergeHook(fn func(time.Duration)) Option {
	return func(o *options) {
		if fn != nil {
			o.onMerge = fn
		}
	}
}
