package core

import "context"

// TerminationFlag is a cooperative cancellation signal supplied by the host.
// Running is polled between nodes and must never block.
type TerminationFlag interface {
	Running() bool
}

// TerminationFunc adapts a function to TerminationFlag.
type TerminationFunc func() bool

// Running implements TerminationFlag.
func (f TerminationFunc) Running() bool { return f() }

// AlwaysRunning is a TerminationFlag that never terminates.
var AlwaysRunning TerminationFlag = TerminationFunc(func() bool { return true })

// Running reports whether work may continue: the context is not done and the
// optional host flag (nil means always running) still reports running.
func Running(ctx context.Context, flag TerminationFlag) bool {
	if ctx.Err() != nil {
		return false
	}
	return flag == nil || flag.Running()
}

// ProgressLogger receives fire-and-forget progress updates.
// Implementations must be safe for concurrent use.
type ProgressLogger interface {
	LogProgress(done, total int64)
}

// ProgressFunc adapts a function to ProgressLogger.
type ProgressFunc func(done, total int64)

// LogProgress implements ProgressLogger.
func (f ProgressFunc) LogProgress(done, total int64) { f(done, total) }

// NoopProgress discards all progress updates.
var NoopProgress ProgressLogger = ProgressFunc(func(int64, int64) {})
