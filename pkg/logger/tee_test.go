package logger

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

type failingHandler struct{ slog.Handler }

func (failingHandler) Handle(context.Context, slog.Record) error { return errors.New("sink down") }

func TestTee(t *testing.T) {
	t.Parallel()

	var debug, warn bytes.Buffer
	h := tee{
		slog.NewTextHandler(&debug, &slog.HandlerOptions{Level: slog.LevelDebug}),
		slog.NewTextHandler(&warn, &slog.HandlerOptions{Level: slog.LevelWarn}),
	}
	log := slog.New(h).With("router", "web")

	log.Debug("table built")
	log.Warn("rewrite store unavailable")

	require.Contains(t, debug.String(), "table built")
	require.Contains(t, debug.String(), "router=web")
	require.Contains(t, debug.String(), "rewrite store unavailable")
	require.NotContains(t, warn.String(), "table built")
	require.Contains(t, warn.String(), "router=web")
}

func TestTee_KeepsWritingWhenOneSinkFails(t *testing.T) {
	t.Parallel()

	var out bytes.Buffer
	stdout := slog.NewTextHandler(&out, nil)
	h := tee{failingHandler{stdout}, stdout}

	rec := slog.NewRecord(time.Time{}, slog.LevelInfo, "request served", 0)
	err := h.Handle(context.Background(), rec)

	require.ErrorContains(t, err, "sink down")
	require.Contains(t, out.String(), "request served")
}
