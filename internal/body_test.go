package internal

import (
	"bytes"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newBodyContext(t *testing.T, method, contentType, body string) *requestContext {
	t.Helper()

	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, "/", nil)
	} else {
		req = httptest.NewRequest(method, "/", strings.NewReader(body))
	}
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	return newContext(httptest.NewRecorder(), req, New())
}

func TestContentType(t *testing.T) {
	t.Parallel()

	c := newBodyContext(t, http.MethodPost, "application/json; charset=utf-8", "{}")
	assert.Equal(t, "application/json", c.ContentType())

	c = newBodyContext(t, http.MethodGet, "", "")
	assert.Empty(t, c.ContentType())
}

func TestData(t *testing.T) {
	t.Parallel()

	t.Run("json object", func(t *testing.T) {
		t.Parallel()

		c := newBodyContext(t, http.MethodPost, "application/json", `{"title":"hello","done":false}`)
		data, err := c.Data()
		require.NoError(t, err)
		assert.Equal(t, map[string]any{"title": "hello", "done": false}, data)
	})

	t.Run("json array", func(t *testing.T) {
		t.Parallel()

		c := newBodyContext(t, http.MethodPut, "application/json", `[1,2,3]`)
		data, err := c.Data()
		require.NoError(t, err)
		assert.Equal(t, []any{float64(1), float64(2), float64(3)}, data)
	})

	t.Run("malformed json yields 400", func(t *testing.T) {
		t.Parallel()

		c := newBodyContext(t, http.MethodPost, "application/json", `{"title":`)
		_, err := c.Data()
		require.Error(t, err)

		httpErr := AsHTTPError(err)
		require.NotNil(t, httpErr)
		assert.Equal(t, http.StatusBadRequest, httpErr.Code)
		assert.True(t, strings.HasPrefix(httpErr.Message, "invalid JSON payload"))
	})

	t.Run("parse error is cached", func(t *testing.T) {
		t.Parallel()

		c := newBodyContext(t, http.MethodPost, "application/json", `{`)
		_, first := c.Data()
		_, second := c.Data()
		assert.Same(t, AsHTTPError(first), AsHTTPError(second))
	})

	t.Run("urlencoded form becomes first-value map", func(t *testing.T) {
		t.Parallel()

		form := url.Values{"title": {"hello", "ignored"}, "done": {"true"}}
		c := newBodyContext(t, http.MethodPost, "application/x-www-form-urlencoded", form.Encode())

		data, err := c.Data()
		require.NoError(t, err)
		assert.Equal(t, map[string]any{"title": "hello", "done": "true"}, data)
	})

	t.Run("multipart form becomes first-value map", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		w := multipart.NewWriter(&buf)
		require.NoError(t, w.WriteField("title", "hello"))
		require.NoError(t, w.Close())

		c := newBodyContext(t, http.MethodPost, w.FormDataContentType(), buf.String())

		data, err := c.Data()
		require.NoError(t, err)
		assert.Equal(t, map[string]any{"title": "hello"}, data)
	})

	t.Run("unknown content type keeps raw only", func(t *testing.T) {
		t.Parallel()

		c := newBodyContext(t, http.MethodPost, "application/octet-stream", "rawbytes")

		data, err := c.Data()
		require.NoError(t, err)
		assert.Nil(t, data)

		raw, err := c.RawData()
		require.NoError(t, err)
		assert.Equal(t, []byte("rawbytes"), raw)
	})

	t.Run("GET requests are not parsed", func(t *testing.T) {
		t.Parallel()

		c := newBodyContext(t, http.MethodGet, "application/json", `{"x":1}`)
		data, err := c.Data()
		require.NoError(t, err)
		assert.Nil(t, data)
	})

	t.Run("empty json body is nil", func(t *testing.T) {
		t.Parallel()

		c := newBodyContext(t, http.MethodPost, "application/json", "")
		data, err := c.Data()
		require.NoError(t, err)
		assert.Nil(t, data)
	})
}

func TestRawData(t *testing.T) {
	t.Parallel()

	t.Run("raw body available alongside parsed data", func(t *testing.T) {
		t.Parallel()

		c := newBodyContext(t, http.MethodPost, "application/json", `{"a":1}`)
		raw, err := c.RawData()
		require.NoError(t, err)
		assert.Equal(t, []byte(`{"a":1}`), raw)

		data, err := c.Data()
		require.NoError(t, err)
		assert.Equal(t, map[string]any{"a": float64(1)}, data)
	})
}

func TestParams(t *testing.T) {
	t.Parallel()

	req := httptest.NewRequest(http.MethodGet, "/?q=go&page=2&q=ignored", nil)
	c := newContext(httptest.NewRecorder(), req, New())

	assert.Equal(t, map[string]string{"q": "go", "page": "2"}, c.Params())
}
