package hugecc

import (
	"sync/atomic"
	"time"

	"github.com/hupe1980/hugecc/core"
	"golang.org/x/time/rate"
)

// DefaultProgressInterval is the minimum time between two progress lines.
const DefaultProgressInterval = 10 * time.Second

// ProgressLogger logs task progress at most once per interval, plus the
// final line at 100%. It is safe for concurrent use.
type ProgressLogger struct {
	logger  *Logger
	task    string
	limiter *rate.Limiter
	done    atomic.Bool
}

var _ core.ProgressLogger = (*ProgressLogger)(nil)

// NewProgressLogger creates a throttled progress logger for task.
func NewProgressLogger(logger *Logger, task string, interval time.Duration) *ProgressLogger {
	if logger == nil {
		logger = NoopLogger()
	}
	if interval <= 0 {
		interval = DefaultProgressInterval
	}
	return &ProgressLogger{
		logger:  logger,
		task:    task,
		limiter: rate.NewLimiter(rate.Every(interval), 1),
	}
}

// LogProgress implements core.ProgressLogger.
func (p *ProgressLogger) LogProgress(done, total int64) {
	if total <= 0 {
		return
	}
	if done >= total {
		if p.done.CompareAndSwap(false, true) {
			p.log(total, total)
		}
		return
	}
	if p.limiter.Allow() {
		p.log(done, total)
	}
}

func (p *ProgressLogger) log(done, total int64) {
	p.logger.Info("progress",
		"task", p.task,
		"done", done,
		"total", total,
		"percent", done*100/total,
	)
}
