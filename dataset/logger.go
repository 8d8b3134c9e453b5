package dataset

import (
	"context"
	"io"
	"log/slog"
	"os"

	"github.com/viant/geofeat/query"
)

// Logger wraps slog.Logger with dataset-specific fields.
type Logger struct {
	*slog.Logger
}

// NewLogger creates a Logger with the given handler.
// If handler is nil, uses a text handler to stderr at info level.
func NewLogger(handler slog.Handler) *Logger {
	if handler == nil {
		handler = slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
			Level: slog.LevelInfo,
		})
	}
	return &Logger{Logger: slog.New(handler)}
}

// NewTextLogger creates a Logger that outputs human-readable text logs.
func NewTextLogger(level slog.Level) *Logger {
	return NewLogger(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
}

// NewJSONLogger creates a Logger that outputs JSON-formatted logs.
func NewJSONLogger(level slog.Level) *Logger {
	return NewLogger(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
}

// NoopLogger creates a Logger that discards all log output.
func NoopLogger() *Logger {
	return NewLogger(slog.NewTextHandler(io.Discard, &slog.HandlerOptions{Level: slog.Level(1000)}))
}

// WithDataset adds the dataset name to every record.
func (l *Logger) WithDataset(name string) *Logger {
	return &Logger{Logger: l.Logger.With("dataset", name)}
}

// LogQuery logs how a query was planned.
func (l *Logger) LogQuery(ctx context.Context, op string, plan *query.Plan, err error) {
	if err != nil {
		l.ErrorContext(ctx, op+" failed",
			"query", plan.Query().String(),
			"error", err,
		)
		return
	}
	l.DebugContext(ctx, op+" planned",
		"query", plan.Query().String(),
		"bounds_pushed", plan.IsBounded(),
		"offset_pushed", plan.IsOffsetted(),
		"limit_pushed", plan.IsLimited(),
		"filtered", plan.Filtered(),
	)
}

// LogCursorClosed logs release of a native cursor.
func (l *Logger) LogCursorClosed(ctx context.Context, op string, err error) {
	if err != nil {
		l.WarnContext(ctx, "cursor close failed",
			"op", op,
			"error", err,
		)
		return
	}
	l.DebugContext(ctx, "cursor closed", "op", op)
}

// LogSkipped logs a record dropped by a lenient read.
func (l *Logger) LogSkipped(ctx context.Context, id string, err error) {
	l.WarnContext(ctx, "skipping undecodable record",
		"id", id,
		"error", err,
	)
}
