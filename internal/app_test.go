package internal

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type routesFunc func(r Router)

func (f routesFunc) Routes(r Router) { f(r) }

func doRequest(t *testing.T, app *App, method, path string, body string) *httptest.ResponseRecorder {
	t.Helper()

	var req *http.Request
	if body != "" {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	} else {
		req = httptest.NewRequest(method, path, nil)
	}
	rec := httptest.NewRecorder()
	app.Router().ServeHTTP(rec, req)
	return rec
}

func decodeBody(t *testing.T, rec *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var body map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	return body
}

func TestDispatch(t *testing.T) {
	t.Parallel()

	t.Run("plain result becomes JSON 200", func(t *testing.T) {
		t.Parallel()

		app := New(WithHandlers(routesFunc(func(r Router) {
			r.GET("/ping", func(c Context) (any, error) {
				return map[string]any{"pong": true}, nil
			})
		})))

		rec := doRequest(t, app, http.MethodGet, "/ping", "")
		require.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, "application/json; charset=utf-8", rec.Header().Get("Content-Type"))
		assert.Equal(t, map[string]any{"pong": true}, decodeBody(t, rec))
	})

	t.Run("written response is left alone", func(t *testing.T) {
		t.Parallel()

		app := New(WithHandlers(routesFunc(func(r Router) {
			r.GET("/created", func(c Context) (any, error) {
				return nil, c.JSON(http.StatusCreated, map[string]string{"id": "1"})
			})
		})))

		rec := doRequest(t, app, http.MethodGet, "/created", "")
		require.Equal(t, http.StatusCreated, rec.Code)
	})

	t.Run("nil result with nothing written yields empty 200", func(t *testing.T) {
		t.Parallel()

		app := New(WithHandlers(routesFunc(func(r Router) {
			r.GET("/noop", func(c Context) (any, error) {
				return nil, nil
			})
		})))

		rec := doRequest(t, app, http.MethodGet, "/noop", "")
		require.Equal(t, http.StatusOK, rec.Code)
		assert.Empty(t, rec.Body.String())
	})

	t.Run("HTTPError renders status and structured body", func(t *testing.T) {
		t.Parallel()

		app := New(WithHandlers(routesFunc(func(r Router) {
			r.GET("/missing", func(c Context) (any, error) {
				return nil, ErrNotFound("resource not found")
			})
		})))

		rec := doRequest(t, app, http.MethodGet, "/missing", "")
		require.Equal(t, http.StatusNotFound, rec.Code)
		assert.Equal(t, "resource not found", decodeBody(t, rec)["error"])
	})

	t.Run("HTTPError payload merges into body", func(t *testing.T) {
		t.Parallel()

		app := New(WithHandlers(routesFunc(func(r Router) {
			r.POST("/things", func(c Context) (any, error) {
				return nil, ErrBadRequest("invalid data",
					WithPayload("errors", map[string][]string{"title": {"is required"}}))
			})
		})))

		rec := doRequest(t, app, http.MethodPost, "/things", "{}")
		require.Equal(t, http.StatusBadRequest, rec.Code)

		body := decodeBody(t, rec)
		assert.Equal(t, "invalid data", body["error"])
		assert.Contains(t, body, "errors")
	})

	t.Run("unexpected error hides message", func(t *testing.T) {
		t.Parallel()

		app := New(WithHandlers(routesFunc(func(r Router) {
			r.GET("/boom", func(c Context) (any, error) {
				return nil, errors.New("pq: connection refused")
			})
		})))

		rec := doRequest(t, app, http.MethodGet, "/boom", "")
		require.Equal(t, http.StatusInternalServerError, rec.Code)

		body := decodeBody(t, rec)
		assert.Equal(t, "internal server error", body["error"])
		assert.NotContains(t, body, "detail")
	})

	t.Run("debug mode exposes error detail", func(t *testing.T) {
		t.Parallel()

		app := New(
			WithDebug(),
			WithHandlers(routesFunc(func(r Router) {
				r.GET("/boom", func(c Context) (any, error) {
					return nil, errors.New("pq: connection refused")
				})
			})),
		)

		rec := doRequest(t, app, http.MethodGet, "/boom", "")
		require.Equal(t, http.StatusInternalServerError, rec.Code)
		assert.Equal(t, "pq: connection refused", decodeBody(t, rec)["detail"])
	})

	t.Run("custom error handler takes over", func(t *testing.T) {
		t.Parallel()

		app := New(
			WithErrorHandler(func(c Context, err error) error {
				return c.JSON(http.StatusTeapot, map[string]string{"custom": err.Error()})
			}),
			WithHandlers(routesFunc(func(r Router) {
				r.GET("/boom", func(c Context) (any, error) {
					return nil, errors.New("x")
				})
			})),
		)

		rec := doRequest(t, app, http.MethodGet, "/boom", "")
		require.Equal(t, http.StatusTeapot, rec.Code)
	})

	t.Run("default 404 and 405 bodies", func(t *testing.T) {
		t.Parallel()

		app := New(WithHandlers(routesFunc(func(r Router) {
			r.GET("/only-get", func(c Context) (any, error) { return nil, nil })
		})))

		rec := doRequest(t, app, http.MethodGet, "/nope", "")
		require.Equal(t, http.StatusNotFound, rec.Code)
		assert.Equal(t, "resource not found", decodeBody(t, rec)["error"])

		rec = doRequest(t, app, http.MethodPost, "/only-get", "{}")
		require.Equal(t, http.StatusMethodNotAllowed, rec.Code)
		assert.Equal(t, "method not allowed", decodeBody(t, rec)["error"])
	})

	t.Run("route middleware wraps handler", func(t *testing.T) {
		t.Parallel()

		tagged := func(next HandlerFunc) HandlerFunc {
			return func(c Context) (any, error) {
				c.SetHeader("X-Tagged", "yes")
				return next(c)
			}
		}

		app := New(WithHandlers(routesFunc(func(r Router) {
			r.GET("/tagged", func(c Context) (any, error) {
				return map[string]string{"ok": "1"}, nil
			}, tagged)
		})))

		rec := doRequest(t, app, http.MethodGet, "/tagged", "")
		require.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, "yes", rec.Header().Get("X-Tagged"))
	})

	t.Run("middleware can short-circuit with an error", func(t *testing.T) {
		t.Parallel()

		deny := func(next HandlerFunc) HandlerFunc {
			return func(c Context) (any, error) {
				return nil, ErrForbidden("forbidden")
			}
		}

		app := New(WithHandlers(routesFunc(func(r Router) {
			r.GET("/secret", func(c Context) (any, error) {
				return map[string]string{"secret": "x"}, nil
			}, deny)
		})))

		rec := doRequest(t, app, http.MethodGet, "/secret", "")
		require.Equal(t, http.StatusForbidden, rec.Code)
		assert.Equal(t, "forbidden", decodeBody(t, rec)["error"])
	})
}
