// Package ctxlog provides a context key for safely passing a slog.Logger
// instance through context.Context.
package ctxlog

import (
	"context"
	"log/slog"
)

// key is an unexported type to prevent collisions with context keys from other packages.
type key struct{}

// loggerKey is the key for the logger entry in a context.Context.
var loggerKey = key{}

// entry is the logger in use plus the logger it was scoped from.
type entry struct {
	logger   *slog.Logger
	unscoped *slog.Logger
}

// WithLogger returns a new context with the provided logger embedded. The
// logger becomes the unscoped one for later WithScope calls.
func WithLogger(ctx context.Context, logger *slog.Logger) context.Context {
	return context.WithValue(ctx, loggerKey, entry{logger: logger, unscoped: logger})
}

// WithScope returns a new context whose logger carries args in addition to
// the current attributes. Unscoped still returns the logger set by the last
// WithLogger.
func WithScope(ctx context.Context, args ...any) context.Context {
	e := lookup(ctx)
	if e.logger == nil {
		e.logger = slog.Default()
		e.unscoped = e.logger
	}
	e.logger = e.logger.With(args...)
	return context.WithValue(ctx, loggerKey, e)
}

// Unscoped returns a context carrying the logger without any WithScope
// attributes. Long-lived work started from a scoped call uses it, so that
// the operations it triggers can scope their own logs.
func Unscoped(ctx context.Context) context.Context {
	e := lookup(ctx)
	if e.unscoped == nil {
		return ctx
	}
	return WithLogger(ctx, e.unscoped)
}

// FromContext extracts the slog.Logger from a context. If no logger is
// found, it returns the default global logger.
func FromContext(ctx context.Context) *slog.Logger {
	if logger := lookup(ctx).logger; logger != nil {
		return logger
	}
	return slog.Default()
}

func lookup(ctx context.Context) entry {
	if ctx == nil {
		return entry{}
	}
	e, _ := ctx.Value(loggerKey).(entry)
	return e
}
