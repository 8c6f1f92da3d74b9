package logger

import (
	"context"
	"errors"
	"log/slog"
)

// tee writes every record to each sink that accepts its level. Stdout keeps
// receiving records while Sentry is failing.
type tee []slog.Handler

func (t tee) Enabled(ctx context.Context, level slog.Level) bool {
	for _, h := range t {
		if h.Enabled(ctx, level) {
			return true
		}
	}
	return false
}

func (t tee) Handle(ctx context.Context, rec slog.Record) error {
	var errs error
	for _, h := range t {
		if !h.Enabled(ctx, rec.Level) {
			continue
		}
		errs = errors.Join(errs, h.Handle(ctx, rec.Clone()))
	}
	return errs
}

func (t tee) WithAttrs(attrs []slog.Attr) slog.Handler {
	return t.each(func(h slog.Handler) slog.Handler { return h.WithAttrs(attrs) })
}

func (t tee) WithGroup(name string) slog.Handler {
	return t.each(func(h slog.Handler) slog.Handler { return h.WithGroup(name) })
}

func (t tee) each(fn func(slog.Handler) slog.Handler) tee {
	out := make(tee, len(t))
	for i, h := range t {
		out[i] = fn(h)
	}
	return out
}
