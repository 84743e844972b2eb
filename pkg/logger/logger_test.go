package logger

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"testing"

	"github.com/go-chi/chi/v5/middleware"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestLogger(buf *bytes.Buffer) *slog.Logger {
	return slog.New(NewContextHandler(slog.NewJSONHandler(buf, nil)))
}

func decode(t *testing.T, buf *bytes.Buffer) map[string]any {
	t.Helper()
	var record map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &record))
	return record
}

func TestContextHandler_RequestID(t *testing.T) {
	// given
	var buf bytes.Buffer
	log := newTestLogger(&buf)
	ctx := context.WithValue(context.Background(), middleware.RequestIDKey, "req-42")

	// when
	log.InfoContext(ctx, "hello")

	// then
	record := decode(t, &buf)
	assert.Equal(t, "req-42", record["request_id"])
	assert.NotContains(t, record, "trace_id", "no span in context")
}

func TestContextHandler_AppendAttrs(t *testing.T) {
	// given
	var buf bytes.Buffer
	log := newTestLogger(&buf).With("component", "test")
	ctx := AppendAttrs(context.Background(), slog.String("user", "alice"))
	ctx = AppendAttrs(ctx, slog.Int64("product_id", 7))

	// when
	log.InfoContext(ctx, "hello")

	// then
	record := decode(t, &buf)
	assert.Equal(t, "alice", record["user"])
	assert.Equal(t, float64(7), record["product_id"])
	assert.Equal(t, "test", record["component"])
}

func TestContextHandler_PlainContext(t *testing.T) {
	var buf bytes.Buffer
	log := newTestLogger(&buf)

	log.Info("plain")

	record := decode(t, &buf)
	assert.Equal(t, "plain", record["msg"])
	assert.NotContains(t, record, "request_id")
}
