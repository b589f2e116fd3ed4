package internal

import (
	"bytes"
	"encoding/json"
	"io"
	"mime"
	"net/http"
	"net/url"
	"strings"
)

// bodyState holds the lazily-parsed request body. The body is read at
// most once; parsed data and raw bytes are cached for the lifetime of
// the request.
type bodyState struct {
	raw    []byte
	data   any
	err    error
	parsed bool
}

// ContentType returns the request media type without parameters.
func (c *requestContext) ContentType() string {
	ct := c.request.Header.Get("Content-Type")
	if ct == "" {
		return ""
	}
	mediaType, _, err := mime.ParseMediaType(ct)
	if err != nil {
		// Fall back to the bare prefix when parameters are malformed.
		mediaType, _, _ = strings.Cut(ct, ";")
		return strings.TrimSpace(strings.ToLower(mediaType))
	}
	return mediaType
}

// RawData returns the buffered raw request body. The first call drains
// the body; the request's Body is replaced so later form parsing still
// works.
func (c *requestContext) RawData() ([]byte, error) {
	if err := c.bufferBody(); err != nil {
		return nil, err
	}
	return c.body.raw, nil
}

// Data returns the parsed request body. Bodies are parsed only for
// POST, PUT, and PATCH requests; other methods yield nil.
func (c *requestContext) Data() (any, error) {
	if c.body.parsed {
		return c.body.data, c.body.err
	}
	c.body.parsed = true

	switch c.request.Method {
	case http.MethodPost, http.MethodPut, http.MethodPatch:
	default:
		return nil, nil
	}

	if err := c.bufferBody(); err != nil {
		c.body.err = err
		return nil, err
	}

	switch c.ContentType() {
	case "application/json":
		if len(bytes.TrimSpace(c.body.raw)) == 0 {
			return nil, nil
		}
		var data any
		if err := json.Unmarshal(c.body.raw, &data); err != nil {
			c.body.err = ErrBadRequest("invalid JSON payload: "+err.Error(), WithError(err))
			return nil, c.body.err
		}
		c.body.data = data

	case "application/x-www-form-urlencoded":
		values, err := url.ParseQuery(string(c.body.raw))
		if err != nil {
			c.body.err = ErrBadRequest("invalid form payload: "+err.Error(), WithError(err))
			return nil, c.body.err
		}
		c.body.data = firstValues(values)

	case "multipart/form-data":
		if err := c.request.ParseMultipartForm(defaultMaxMultipartMemory); err != nil {
			c.body.err = ErrBadRequest("invalid multipart payload: "+err.Error(), WithError(err))
			return nil, c.body.err
		}
		c.body.data = firstValues(c.request.MultipartForm.Value)

	default:
		// Unknown content types keep the raw bytes only.
	}

	return c.body.data, nil
}

const defaultMaxMultipartMemory = 32 << 20 // 32MB

// bufferBody reads the request body once and replaces it with a fresh
// reader over the buffered bytes.
func (c *requestContext) bufferBody() error {
	if c.body.raw != nil || c.request.Body == nil {
		return nil
	}
	raw, err := io.ReadAll(c.request.Body)
	if err != nil {
		return ErrBadRequest("failed to read request body", WithError(err))
	}
	_ = c.request.Body.Close()
	c.request.Body = io.NopCloser(bytes.NewReader(raw))
	c.body.raw = raw
	return nil
}

func firstValues(values map[string][]string) map[string]any {
	out := make(map[string]any, len(values))
	for name, vs := range values {
		if len(vs) > 0 {
			out[name] = vs[0]
		}
	}
	return out
}
