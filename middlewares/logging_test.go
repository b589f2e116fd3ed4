package middlewares_test

import (
	"bytes"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/restkit/internal"
	"github.com/dmitrymomot/restkit/middlewares"
)

func newLoggingApp(buf *bytes.Buffer, h internal.HandlerFunc, opts ...middlewares.LoggingOption) *internal.App {
	log := slog.New(slog.NewTextHandler(buf, nil))
	return internal.New(
		internal.WithCustomLogger(log),
		internal.WithHandlers(routesFunc(func(r internal.Router) {
			r.GET("/test", h, middlewares.Logging(opts...))
		})),
	)
}

func TestLogging(t *testing.T) {
	t.Parallel()

	t.Run("logs method path status and duration", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		app := newLoggingApp(&buf, func(c internal.Context) (any, error) {
			return map[string]string{"status": "ok"}, nil
		})

		req := httptest.NewRequest(http.MethodGet, "/test", nil)
		rec := doRequest(t, app, req)

		require.Equal(t, http.StatusOK, rec.Code)
		out := buf.String()
		assert.Contains(t, out, "method=GET")
		assert.Contains(t, out, "path=/test")
		assert.Contains(t, out, "status=200")
		assert.Contains(t, out, "duration=")
	})

	t.Run("handler errors log their status", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		app := newLoggingApp(&buf, func(c internal.Context) (any, error) {
			return nil, internal.ErrNotFound("resource not found")
		})

		req := httptest.NewRequest(http.MethodGet, "/test", nil)
		rec := doRequest(t, app, req)

		require.Equal(t, http.StatusNotFound, rec.Code)
		assert.Contains(t, buf.String(), "status=404")
		assert.Contains(t, buf.String(), "level=INFO")
	})

	t.Run("unexpected errors log at error level", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		app := newLoggingApp(&buf, func(c internal.Context) (any, error) {
			return nil, assert.AnError
		})

		req := httptest.NewRequest(http.MethodGet, "/test", nil)
		doRequest(t, app, req)

		assert.Contains(t, buf.String(), "status=500")
		assert.Contains(t, buf.String(), "level=ERROR")
	})

	t.Run("skip paths are not logged", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		app := newLoggingApp(&buf, func(c internal.Context) (any, error) {
			return "ok", nil
		}, middlewares.WithLoggingSkipPaths("/test"))

		req := httptest.NewRequest(http.MethodGet, "/test", nil)
		doRequest(t, app, req)

		assert.NotContains(t, buf.String(), "method=GET")
	})

	t.Run("request ID is included when present", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		log := slog.New(slog.NewTextHandler(&buf, nil))
		app := internal.New(
			internal.WithCustomLogger(log),
			internal.WithHandlers(routesFunc(func(r internal.Router) {
				r.GET("/test", func(c internal.Context) (any, error) {
					return "ok", nil
				}, middlewares.RequestID(), middlewares.Logging())
			})),
		)

		req := httptest.NewRequest(http.MethodGet, "/test", nil)
		req.Header.Set("X-Request-ID", "rid-1")
		doRequest(t, app, req)

		assert.Contains(t, buf.String(), "request_id=rid-1")
	})
}
