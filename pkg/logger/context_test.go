package logger_test

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/restkit/pkg/logger"
)

type ctxKey struct{}

func TestContextHandler(t *testing.T) {
	t.Parallel()

	extractor := func(ctx context.Context) (slog.Attr, bool) {
		if v, ok := ctx.Value(ctxKey{}).(string); ok && v != "" {
			return slog.String("request_id", v), true
		}
		return slog.Attr{}, false
	}

	t.Run("injects attribute from context", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		h := logger.NewContextHandler(slog.NewJSONHandler(&buf, nil), extractor)
		log := slog.New(h)

		ctx := context.WithValue(context.Background(), ctxKey{}, "req-123")
		log.InfoContext(ctx, "hello")

		var entry map[string]any
		require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
		assert.Equal(t, "req-123", entry["request_id"])
		assert.Equal(t, "hello", entry["msg"])
	})

	t.Run("skips missing context value", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		h := logger.NewContextHandler(slog.NewJSONHandler(&buf, nil), extractor)
		slog.New(h).Info("no request")

		var entry map[string]any
		require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
		_, present := entry["request_id"]
		assert.False(t, present)
	})

	t.Run("filters nil extractors", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		h := logger.NewContextHandler(slog.NewJSONHandler(&buf, nil), nil, extractor, nil)
		ctx := context.WithValue(context.Background(), ctxKey{}, "req-9")
		slog.New(h).InfoContext(ctx, "ok")

		var entry map[string]any
		require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
		assert.Equal(t, "req-9", entry["request_id"])
	})
}

func TestNewNope(t *testing.T) {
	t.Parallel()

	log := logger.NewNope()
	require.NotNil(t, log)
	log.Info("discarded")
}
