package hugecc

import (
	"context"
	"log/slog"
	"os"
	"time"
)

// Logger wraps slog.Logger with hugecc-specific context.
// This provides structured logging with consistent field names.
type Logger struct {
	*slog.Logger
}

// NewLogger creates a new Logger with the given handler.
// If handler is nil, uses default text handler to stderr.
func NewLogger(handler slog.Handler) *Logger {
	if handler == nil {
		handler = slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
			Level: slog.LevelInfo,
		})
	}
	return &Logger{
		Logger: slog.New(handler),
	}
}

// NewJSONLogger creates a Logger that outputs JSON-formatted logs.
// level sets the minimum log level (e.g., slog.LevelDebug, slog.LevelInfo).
func NewJSONLogger(level slog.Level) *Logger {
	return NewLogger(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{
		Level: level,
	}))
}

// NewTextLogger creates a Logger that outputs human-readable text logs.
func NewTextLogger(level slog.Level) *Logger {
	return NewLogger(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: level,
	}))
}

// NoopLogger creates a Logger that discards all log output.
func NoopLogger() *Logger {
	return &Logger{
		Logger: slog.New(slog.DiscardHandler),
	}
}

// WithStage adds a stage field to the logger.
func (l *Logger) WithStage(stage Stage) *Logger {
	return &Logger{
		Logger: l.Logger.With("stage", string(stage)),
	}
}

// WithStrategy adds a strategy field to the logger.
func (l *Logger) WithStrategy(strategy string) *Logger {
	return &Logger{
		Logger: l.Logger.With("strategy", strategy),
	}
}

// LogImport logs the end of a graph import.
func (l *Logger) LogImport(ctx context.Context, nodes int, complete bool, duration time.Duration, err error) {
	if err != nil {
		l.ErrorContext(ctx, "import failed",
			"nodes", nodes,
			"error", err,
		)
		return
	}
	if !complete {
		l.WarnContext(ctx, "import terminated early",
			"nodes", nodes,
			"duration", duration,
		)
		return
	}
	l.InfoContext(ctx, "import completed",
		"nodes", nodes,
		"duration", duration,
	)
}

// LogCompute logs the end of a union-find computation.
func (l *Logger) LogCompute(ctx context.Context, setCount int, complete bool, duration time.Duration, err error) {
	if err != nil {
		l.ErrorContext(ctx, "compute failed",
			"error", err,
		)
		return
	}
	if !complete {
		l.WarnContext(ctx, "compute terminated early",
			"duration", duration,
		)
		return
	}
	l.InfoContext(ctx, "compute completed",
		"set_count", setCount,
		"duration", duration,
	)
}

// LogExport logs the end of a result export.
func (l *Logger) LogExport(ctx context.Context, records int64, duration time.Duration, err error) {
	if err != nil {
		l.ErrorContext(ctx, "export failed",
			"records", records,
			"error", err,
		)
	} else {
		l.InfoContext(ctx, "export completed",
			"records", records,
			"duration", duration,
		)
	}
}
