package logger

import (
	"io"
	"log/slog"
)

// NewNope returns a logger that discards everything. Components use it
// when no logger is injected.
func NewNope() *slog.Logger {
	return slog.New(slog.DiscardHandler)
}

// NewWriter returns a text logger writing to w, convenient for CLI output and tests.
func NewWriter(w io.Writer, level slog.Level) *slog.Logger {
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: level}))
}
