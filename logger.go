package jokebox

import (
	"context"
	"log/slog"
)

// Logger wraps slog.Logger with request context.
type Logger struct {
	logger    *slog.Logger
	ctx       context.Context
	requestID string
}

// Info logs an info message.
func (l Logger) Info(msg string, attrs ...slog.Attr) {
	l.log(slog.LevelInfo, msg, attrs)
}

// Warn logs a warning message.
func (l Logger) Warn(msg string, attrs ...slog.Attr) {
	l.log(slog.LevelWarn, msg, attrs)
}

// Error logs an error message.
func (l Logger) Error(msg string, attrs ...slog.Attr) {
	l.log(slog.LevelError, msg, attrs)
}

// Debug logs a debug message.
func (l Logger) Debug(msg string, attrs ...slog.Attr) {
	l.log(slog.LevelDebug, msg, attrs)
}

// Slog returns the underlying logger with the request id attached.
func (l Logger) Slog() *slog.Logger {
	if l.requestID == "" {
		return l.logger
	}
	return l.logger.With(slog.String("request_id", l.requestID))
}

func (l Logger) log(level slog.Level, msg string, attrs []slog.Attr) {
	if l.logger == nil {
		return
	}
	ctx := l.ctx
	if ctx == nil {
		ctx = context.Background()
	}
	if l.requestID != "" {
		attrs = append(attrs, slog.String("request_id", l.requestID))
	}
	l.logger.LogAttrs(ctx, level, msg, attrs...)
}
