package internal

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHTTPError(t *testing.T) {
	t.Parallel()

	t.Run("implements error with message", func(t *testing.T) {
		t.Parallel()

		err := NewHTTPError(http.StatusNotFound, "resource not found")
		assert.Equal(t, "resource not found", err.Error())
		assert.Equal(t, http.StatusNotFound, err.StatusCode())
		assert.Equal(t, "Not Found", err.StatusText())
	})

	t.Run("unwraps underlying error", func(t *testing.T) {
		t.Parallel()

		cause := errors.New("row not found")
		err := ErrNotFound("resource not found", WithError(cause))
		assert.ErrorIs(t, err, cause)
	})

	t.Run("options populate fields", func(t *testing.T) {
		t.Parallel()

		err := ErrBadRequest("invalid data",
			WithDetail("field checks failed"),
			WithErrorCode("invalid_data"),
			WithRequestID("req-1"),
			WithPayload("errors", map[string][]string{"title": {"is required"}}),
		)

		assert.Equal(t, "field checks failed", err.Detail)
		assert.Equal(t, "invalid_data", err.ErrorCode)
		assert.Equal(t, "req-1", err.RequestID)
		assert.Equal(t, map[string][]string{"title": {"is required"}}, err.Payload["errors"])
	})

	t.Run("body merges payload into error object", func(t *testing.T) {
		t.Parallel()

		err := ErrBadRequest("invalid data",
			WithPayload("errors", map[string][]string{"title": {"is required"}}),
		)
		body := err.Body()

		assert.Equal(t, "invalid data", body["error"])
		assert.Equal(t, map[string][]string{"title": {"is required"}}, body["errors"])
	})

	t.Run("convenience constructors set status codes", func(t *testing.T) {
		t.Parallel()

		assert.Equal(t, http.StatusBadRequest, ErrBadRequest("x").Code)
		assert.Equal(t, http.StatusUnauthorized, ErrUnauthorized("x").Code)
		assert.Equal(t, http.StatusForbidden, ErrForbidden("x").Code)
		assert.Equal(t, http.StatusNotFound, ErrNotFound("x").Code)
		assert.Equal(t, http.StatusMethodNotAllowed, ErrMethodNotAllowed("x").Code)
		assert.Equal(t, http.StatusConflict, ErrConflict("x").Code)
		assert.Equal(t, http.StatusUnprocessableEntity, ErrUnprocessable("x").Code)
		assert.Equal(t, http.StatusInternalServerError, ErrInternal("x").Code)
		assert.Equal(t, http.StatusServiceUnavailable, ErrServiceUnavailable("x").Code)
	})

	t.Run("AsHTTPError finds wrapped errors", func(t *testing.T) {
		t.Parallel()

		inner := ErrForbidden("forbidden")
		wrapped := fmt.Errorf("request failed: %w", inner)

		require.True(t, IsHTTPError(wrapped))
		got := AsHTTPError(wrapped)
		require.NotNil(t, got)
		assert.Equal(t, http.StatusForbidden, got.Code)

		assert.False(t, IsHTTPError(errors.New("plain")))
		assert.Nil(t, AsHTTPError(errors.New("plain")))
		assert.Nil(t, AsHTTPError(nil))
	})
}
