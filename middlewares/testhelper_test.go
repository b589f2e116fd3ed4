package middlewares_test

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/restkit/internal"
)

// routesFunc adapts a function to the internal.Handler interface.
type routesFunc func(r internal.Router)

func (f routesFunc) Routes(r internal.Router) { f(r) }

// newTestApp builds an app with a single GET /test route wrapped in the
// given middleware.
func newTestApp(h internal.HandlerFunc, mw ...internal.Middleware) *internal.App {
	return internal.New(internal.WithHandlers(routesFunc(func(r internal.Router) {
		r.GET("/test", h, mw...)
	})))
}

func doRequest(t *testing.T, app *internal.App, req *http.Request) *httptest.ResponseRecorder {
	t.Helper()

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
