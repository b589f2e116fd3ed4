package resource

import (
	"github.com/dmitrymomot/restkit/internal"
)

// Form binds request data into a resource instance. Implementations
// return validation errors separately from system errors so endpoints
// can render them as a 400 response with per-field messages.
type Form[T any] interface {
	Bind(c internal.Context, dst *T) (internal.ValidationErrors, error)
}

// FormFunc adapts a plain function to the Form interface.
type FormFunc[T any] func(c internal.Context, dst *T) (internal.ValidationErrors, error)

func (f FormFunc[T]) Bind(c internal.Context, dst *T) (internal.ValidationErrors, error) {
	return f(c, dst)
}

// DefaultForm binds by request content type: JSON bodies via BindJSON,
// form and multipart bodies via Bind. The bound struct is sanitized and
// validated the same way handler-level binding is.
type DefaultForm[T any] struct{}

func (DefaultForm[T]) Bind(c internal.Context, dst *T) (internal.ValidationErrors, error) {
	switch c.ContentType() {
	case "application/x-www-form-urlencoded", "multipart/form-data":
		return c.Bind(dst)
	default:
		return c.BindJSON(dst)
	}
}
