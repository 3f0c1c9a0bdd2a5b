package observability

import (
	"context"
	"log/slog"

	"git.home.luguber.info/inful/kostelemetry/internal/logfields"
)

// LogContext holds structured logging context information.
type LogContext struct {
	RobotID string
	Topic   string
}

type logContextKeyType string

const logContextKey logContextKeyType = "log-context"

// WithRobotID adds a robot identifier to the context.
func WithRobotID(ctx context.Context, robotID string) context.Context {
	lc := extractLogContext(ctx)
	lc.RobotID = robotID
	return context.WithValue(ctx, logContextKey, lc)
}

// WithTopic adds a telemetry topic to the context.
func WithTopic(ctx context.Context, topic string) context.Context {
	lc := extractLogContext(ctx)
	lc.Topic = topic
	return context.WithValue(ctx, logContextKey, lc)
}

// extractLogContext retrieves or creates a LogContext from the context.
func extractLogContext(ctx context.Context) LogContext {
	if ctx == nil {
		return LogContext{}
	}
	if lc, ok := ctx.Value(logContextKey).(LogContext); ok {
		return lc
	}
	return LogContext{}
}

func (lc LogContext) attrs() []slog.Attr {
	var attrs []slog.Attr
	if lc.RobotID != "" {
		attrs = append(attrs, logfields.RobotID(lc.RobotID))
	}
	if lc.Topic != "" {
		attrs = append(attrs, logfields.Topic(lc.Topic))
	}
	return attrs
}

func logContext(ctx context.Context, level slog.Level, msg string, attrs []slog.Attr) {
	if ctx == nil {
		ctx = context.Background()
	}
	if !slog.Default().Enabled(ctx, level) {
		return
	}
	allAttrs := append(extractLogContext(ctx).attrs(), attrs...)
	slog.LogAttrs(ctx, level, msg, allAttrs...)
}

// TraceContext logs a trace message with context information.
func TraceContext(ctx context.Context, msg string, attrs ...slog.Attr) {
	logContext(ctx, LevelTrace, msg, attrs)
}

// DebugContext logs a debug message with context information.
func DebugContext(ctx context.Context, msg string, attrs ...slog.Attr) {
	logContext(ctx, slog.LevelDebug, msg, attrs)
}

// WarnContext logs a warning message with context information.
func WarnContext(ctx context.Context, msg string, attrs ...slog.Attr) {
	logContext(ctx, slog.LevelWarn, msg, attrs)
}

// GetContext returns the structured log context from the provided context.
func GetContext(ctx context.Context) LogContext {
	return extractLogContext(ctx)
}
