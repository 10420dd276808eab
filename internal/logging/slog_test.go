package logging

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/require"
)

func newTestLogger(buf *bytes.Buffer) *slog.Logger {
	return slog.New(NewSlogWrapper(slog.NewJSONHandler(buf, &slog.HandlerOptions{Level: slog.LevelDebug})))
}

func decode(t *testing.T, buf *bytes.Buffer) map[string]any {
	t.Helper()
	var rec map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &rec))
	return rec
}

func TestHandleAddsContextAttrs(t *testing.T) {
	var buf bytes.Buffer
	logger := newTestLogger(&buf)

	ctx := WithRequestID(context.Background(), "req-1")
	ctx = WithRig(ctx, "rig-a")
	ctx = WithChatID(ctx, 42)

	logger.InfoContext(ctx, "dispatch")

	rec := decode(t, &buf)
	require.Equal(t, "req-1", rec["requestId"])
	require.Equal(t, "rig-a", rec["rig"])
	require.Equal(t, float64(42), rec["chatId"])
}

func TestWithAttrsKeepsWrapper(t *testing.T) {
	var buf bytes.Buffer
	logger := newTestLogger(&buf).With("component", "stream")

	logger.InfoContext(WithRequestID(context.Background(), "req-2"), "connected")

	rec := decode(t, &buf)
	require.Equal(t, "stream", rec["component"])
	require.Equal(t, "req-2", rec["requestId"])
}

func TestWrapErrorCarriesContext(t *testing.T) {
	base := errors.New("boom")
	ctx := WithRig(context.Background(), "rig-b")

	err := WrapError(ctx, base)
	require.ErrorIs(t, err, base)
	require.Equal(t, "boom", err.Error())

	restored := ErrorCtx(context.Background(), err)
	require.Equal(t, "rig-b", logCtx(restored).Rig)

	require.NoError(t, WrapError(ctx, nil))
}
