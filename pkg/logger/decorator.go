package logger

import (
	"context"
	"log/slog"
	"slices"
)

// ContextExtractor derives one attribute from a request context, such as
// the request id or the route being served.
type ContextExtractor func(ctx context.Context) (slog.Attr, bool)

// contextual appends extracted attributes to each record before passing it
// on. Extractors run at Handle time, so attributes reflect the context the
// record was logged with.
type contextual struct {
	next       slog.Handler
	extractors []ContextExtractor
}

// NewLogHandlerDecorator wraps next with the given extractors. Nil
// extractors are dropped; without any, next is returned as is.
func NewLogHandlerDecorator(next slog.Handler, extractors ...ContextExtractor) slog.Handler {
	extractors = slices.DeleteFunc(slices.Clone(extractors), func(ex ContextExtractor) bool { return ex == nil })
	if len(extractors) == 0 {
		return next
	}
	return &contextual{next: next, extractors: extractors}
}

func (h *contextual) Enabled(ctx context.Context, level slog.Level) bool {
	return h.next.Enabled(ctx, level)
}

func (h *contextual) Handle(ctx context.Context, rec slog.Record) error {
	for _, ex := range h.extractors {
		if attr, ok := ex(ctx); ok {
			rec.AddAttrs(attr)
		}
	}
	return h.next.Handle(ctx, rec)
}

func (h *contextual) WithAttrs(attrs []slog.Attr) slog.Handler {
	return &contextual{next: h.next.WithAttrs(attrs), extractors: h.extractors}
}

func (h *contextual) WithGroup(name string) slog.Handler {
	return &contextual{next: h.next.WithGroup(name), extractors: h.extractors}
}

// ValueExtractor logs the T stored in ctx under key as attribute name.
// Missing and zero values are skipped.
func ValueExtractor[T comparable](key any, name string) ContextExtractor {
	return func(ctx context.Context) (slog.Attr, bool) {
		var zero T
		v, ok := ctx.Value(key).(T)
		if !ok || v == zero {
			return slog.Attr{}, false
		}
		return slog.Any(name, v), true
	}
}

// StringExtractor is ValueExtractor for string values.
func StringExtractor(key any, name string) ContextExtractor {
	return ValueExtractor[string](key, name)
}
