package log

import (
	"context"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/require"
)

type captureHandler struct {
	attrs *[]slog.Attr
}

func (h *captureHandler) Enabled(context.Context, slog.Level) bool { return true }

func (h *captureHandler) Handle(context.Context, slog.Record) error { return nil }

func (h *captureHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	*h.attrs = append(*h.attrs, attrs...)

	return h
}

func (h *captureHandler) WithGroup(string) slog.Handler { return h }

func TestNewLoggerTagsRelease(t *testing.T) {
	var attrs []slog.Attr

	logger := newLogger("v1.2.3", &captureHandler{attrs: &attrs})
	logger.Info("starting")

	require.Len(t, attrs, 1)
	require.Equal(t, "release", attrs[0].Key)
	require.Equal(t, "v1.2.3", attrs[0].Value.String())

	attrs = nil
	newLogger("", &captureHandler{attrs: &attrs})
	require.Empty(t, attrs)
}

func TestToSlogLevel(t *testing.T) {
	require.Equal(t, slog.LevelDebug, ToSlogLevel(Debug))
	require.Equal(t, slog.LevelInfo, ToSlogLevel(Info))
	require.Equal(t, slog.LevelWarn, ToSlogLevel(Warn))
	require.Equal(t, slog.LevelError, ToSlogLevel(Error))
	require.Equal(t, slog.LevelError, ToSlogLevel(Level("bogus")))
}
