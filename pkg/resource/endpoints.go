package resource

import (
	"errors"
	"net/http"

	"github.com/dmitrymomot/restkit/internal"
	"github.com/dmitrymomot/restkit/pkg/serializer"
)

// Collection exposes a resource list at Path: GET returns all items,
// POST creates one and responds with 201. Only methods listed in
// Methods are registered (default GET and POST); anything else gets the
// router's 405 response.
type Collection[T any] struct {
	// Path is the route pattern, e.g. "/todos".
	Path string

	// Store provides persistence. Required unless Query replaces
	// the GET side and POST is disabled via Methods.
	Store Store[T]

	// Form binds request data on POST. Defaults to DefaultForm.
	Form Form[T]

	// Spec shapes serialized output. Nil serializes all fields.
	Spec *serializer.Spec

	// Methods whitelists the HTTP methods to register.
	Methods []string

	// Query overrides the item lookup on GET.
	Query func(c internal.Context) ([]T, error)

	// Serialize overrides the default serializer.
	Serialize func(v any) any

	// Middleware runs on every route of the endpoint.
	Middleware []internal.Middleware
}

func (e *Collection[T]) Routes(r internal.Router) {
	for _, method := range allowedMethods(e.Methods, http.MethodGet, http.MethodPost) {
		switch method {
		case http.MethodGet:
			register(r, method, e.Path, e.list, e.Middleware...)
		case http.MethodPost:
			register(r, method, e.Path, e.create, e.Middleware...)
		}
	}
}

func (e *Collection[T]) list(c internal.Context) (any, error) {
	query := e.Query
	if query == nil {
		query = func(c internal.Context) ([]T, error) {
			return e.Store.List(c)
		}
	}

	items, err := query(c)
	if err != nil {
		return nil, storeError(err)
	}
	return e.render(items), nil
}

func (e *Collection[T]) create(c internal.Context) (any, error) {
	var item T
	if err := bindForm(c, e.Form, &item); err != nil {
		return nil, err
	}

	created, err := e.Store.Create(c, item)
	if err != nil {
		return nil, storeError(err)
	}

	if err := c.JSON(http.StatusCreated, e.render(created)); err != nil {
		return nil, err
	}
	return nil, nil
}

func (e *Collection[T]) render(v any) any {
	if e.Serialize != nil {
		return e.Serialize(v)
	}
	return serializer.Serialize(v, e.Spec)
}

// Member exposes a single resource at Path: GET retrieves it, PUT binds
// the request onto the existing instance and updates it, DELETE removes
// it and responds with an empty JSON object. A missing instance yields
// a 404 "resource not found" response.
type Member[T any] struct {
	// Path is the route pattern and must contain the ID parameter,
	// e.g. "/todos/{id}".
	Path string

	// IDParam names the URL parameter holding the resource ID.
	// Defaults to "id".
	IDParam string

	// Store provides persistence.
	Store Store[T]

	// Form binds request data on PUT. Defaults to DefaultForm.
	Form Form[T]

	// Spec shapes serialized output. Nil serializes all fields.
	Spec *serializer.Spec

	// Methods whitelists the HTTP methods to register.
	Methods []string

	// Instance overrides the item lookup.
	Instance func(c internal.Context) (T, error)

	// Serialize overrides the default serializer.
	Serialize func(v any) any

	// Middleware runs on every route of the endpoint.
	Middleware []internal.Middleware
}

func (e *Member[T]) Routes(r internal.Router) {
	for _, method := range allowedMethods(e.Methods, http.MethodGet, http.MethodPut, http.MethodDelete) {
		switch method {
		case http.MethodGet:
			register(r, method, e.Path, e.get, e.Middleware...)
		case http.MethodPut:
			register(r, method, e.Path, e.update, e.Middleware...)
		case http.MethodDelete:
			register(r, method, e.Path, e.delete, e.Middleware...)
		}
	}
}

func (e *Member[T]) get(c internal.Context) (any, error) {
	item, err := e.instance(c)
	if err != nil {
		return nil, storeError(err)
	}
	return e.render(item), nil
}

func (e *Member[T]) update(c internal.Context) (any, error) {
	item, err := e.instance(c)
	if err != nil {
		return nil, storeError(err)
	}

	// Bind onto the existing instance so omitted fields keep their
	// stored values.
	if err := bindForm(c, e.Form, &item); err != nil {
		return nil, err
	}

	updated, err := e.Store.Update(c, item)
	if err != nil {
		return nil, storeError(err)
	}
	return e.render(updated), nil
}

func (e *Member[T]) delete(c internal.Context) (any, error) {
	id := c.Param(e.idParam())
	if id == "" {
		return nil, internal.ErrNotFound("resource not found")
	}
	if err := e.Store.Delete(c, id); err != nil {
		return nil, storeError(err)
	}
	return map[string]any{}, nil
}

func (e *Member[T]) instance(c internal.Context) (T, error) {
	if e.Instance != nil {
		return e.Instance(c)
	}

	id := c.Param(e.idParam())
	if id == "" {
		var zero T
		return zero, ErrNotFound
	}
	return e.Store.Get(c, id)
}

func (e *Member[T]) idParam() string {
	if e.IDParam != "" {
		return e.IDParam
	}
	return "id"
}

func (e *Member[T]) render(v any) any {
	if e.Serialize != nil {
		return e.Serialize(v)
	}
	return serializer.Serialize(v, e.Spec)
}

// Action is an RPC-style endpoint for operations that don't map to
// CRUD, e.g. "/todos/{id}/archive". POST-only unless Methods says
// otherwise; the result is wrapped by normal dispatch.
type Action struct {
	Path       string
	Func       internal.HandlerFunc
	Methods    []string
	Middleware []internal.Middleware
}

func (a *Action) Routes(r internal.Router) {
	for _, method := range allowedMethods(a.Methods, http.MethodPost) {
		register(r, method, a.Path, a.Func, a.Middleware...)
	}
}

// allowedMethods returns the configured whitelist or the defaults,
// keeping only methods the endpoint knows how to serve.
func allowedMethods(configured []string, defaults ...string) []string {
	if len(configured) == 0 {
		return defaults
	}
	return configured
}

func register(r internal.Router, method, path string, h internal.HandlerFunc, mw ...internal.Middleware) {
	switch method {
	case http.MethodGet:
		r.GET(path, h, mw...)
	case http.MethodPost:
		r.POST(path, h, mw...)
	case http.MethodPut:
		r.PUT(path, h, mw...)
	case http.MethodPatch:
		r.PATCH(path, h, mw...)
	case http.MethodDelete:
		r.DELETE(path, h, mw...)
	case http.MethodHead:
		r.HEAD(path, h, mw...)
	case http.MethodOptions:
		r.OPTIONS(path, h, mw...)
	}
}

// bindForm runs the form and converts failures into 400 responses.
// Validation errors land under "errors" in the response body.
func bindForm[T any](c internal.Context, form Form[T], dst *T) error {
	if form == nil {
		form = DefaultForm[T]{}
	}

	verrs, err := form.Bind(c, dst)
	if err != nil {
		if internal.IsHTTPError(err) {
			return err
		}
		return internal.ErrBadRequest("invalid data", internal.WithError(err))
	}
	if len(verrs) > 0 {
		return internal.ErrBadRequest("invalid data", internal.WithPayload("errors", verrs))
	}
	return nil
}

func storeError(err error) error {
	if errors.Is(err, ErrNotFound) {
		return internal.ErrNotFound("resource not found")
	}
	return err
}
