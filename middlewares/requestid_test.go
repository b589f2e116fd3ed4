package middlewares_test

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/restkit/internal"
	"github.com/dmitrymomot/restkit/middlewares"
)

func TestRequestID(t *testing.T) {
	t.Parallel()

	echoID := func(c internal.Context) (any, error) {
		return map[string]any{"request_id": middlewares.GetRequestID(c)}, nil
	}

	t.Run("generates an ID when none supplied", func(t *testing.T) {
		t.Parallel()

		app := newTestApp(echoID, middlewares.RequestID())

		req := httptest.NewRequest(http.MethodGet, "/test", nil)
		rec := doRequest(t, app, req)

		require.Equal(t, http.StatusOK, rec.Code)
		assert.NotEmpty(t, rec.Header().Get("X-Request-ID"))
		assert.Equal(t, rec.Header().Get("X-Request-ID"), decodeBody(t, rec)["request_id"])
	})

	t.Run("preserves an upstream ID", func(t *testing.T) {
		t.Parallel()

		app := newTestApp(echoID, middlewares.RequestID())

		req := httptest.NewRequest(http.MethodGet, "/test", nil)
		req.Header.Set("X-Request-ID", "upstream-123")
		rec := doRequest(t, app, req)

		assert.Equal(t, "upstream-123", rec.Header().Get("X-Request-ID"))
		assert.Equal(t, "upstream-123", decodeBody(t, rec)["request_id"])
	})

	t.Run("custom generator and response header", func(t *testing.T) {
		t.Parallel()

		app := newTestApp(echoID, middlewares.RequestID(
			middlewares.WithRequestIDGenerator(func() string { return "fixed" }),
			middlewares.WithRequestIDResponseHeader("X-Trace-ID"),
		))

		req := httptest.NewRequest(http.MethodGet, "/test", nil)
		rec := doRequest(t, app, req)

		assert.Equal(t, "fixed", rec.Header().Get("X-Trace-ID"))
	})

	t.Run("GetRequestID without middleware returns empty", func(t *testing.T) {
		t.Parallel()

		app := newTestApp(echoID)

		req := httptest.NewRequest(http.MethodGet, "/test", nil)
		rec := doRequest(t, app, req)

		assert.Equal(t, "", decodeBody(t, rec)["request_id"])
	})
}
