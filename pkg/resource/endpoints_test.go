package resource_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/restkit/internal"
	"github.com/dmitrymomot/restkit/pkg/resource"
	"github.com/dmitrymomot/restkit/pkg/serializer"
)

type todo struct {
	ID    string `json:"id"`
	Title string `json:"title" validate:"required"`
	Done  bool   `json:"done"`
}

func (t todo) ResourceID() string { return t.ID }

func newTodoApp(t *testing.T, store resource.Store[todo], opts ...func(*resource.Collection[todo], *resource.Member[todo])) *internal.App {
	t.Helper()

	coll := &resource.Collection[todo]{Path: "/todos", Store: store}
	memb := &resource.Member[todo]{Path: "/todos/{id}", Store: store}
	for _, opt := range opts {
		opt(coll, memb)
	}
	return internal.New(internal.WithHandlers(coll, memb))
}

func seedTodoStore(t *testing.T, items ...todo) *resource.MemoryStore[todo] {
	t.Helper()

	store := resource.NewMemoryStore(
		resource.WithIDSetter(func(td *todo, id string) { td.ID = id }),
	)
	for _, item := range items {
		_, err := store.Create(context.Background(), item)
		require.NoError(t, err)
	}
	return store
}

func doJSON(t *testing.T, app *internal.App, method, target, body string) *httptest.ResponseRecorder {
	t.Helper()

	req := httptest.NewRequest(method, target, strings.NewReader(body))
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	rec := httptest.NewRecorder()
	app.Router().ServeHTTP(rec, req)
	return rec
}

func decodeJSON[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()

	var v T
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &v))
	return v
}

func TestCollection(t *testing.T) {
	t.Parallel()

	t.Run("list returns all items", func(t *testing.T) {
		t.Parallel()

		store := seedTodoStore(t,
			todo{ID: "1", Title: "write docs"},
			todo{ID: "2", Title: "review pr", Done: true},
		)
		app := newTodoApp(t, store)

		rec := doJSON(t, app, http.MethodGet, "/todos", "")
		require.Equal(t, http.StatusOK, rec.Code)

		items := decodeJSON[[]map[string]any](t, rec)
		require.Len(t, items, 2)
		assert.Equal(t, "write docs", items[0]["title"])
		assert.Equal(t, true, items[1]["done"])
	})

	t.Run("list applies spec", func(t *testing.T) {
		t.Parallel()

		store := seedTodoStore(t, todo{ID: "1", Title: "secret"})
		app := newTodoApp(t, store, func(c *resource.Collection[todo], _ *resource.Member[todo]) {
			c.Spec = &serializer.Spec{Fields: []string{"id", "done"}}
		})

		rec := doJSON(t, app, http.MethodGet, "/todos", "")
		items := decodeJSON[[]map[string]any](t, rec)
		require.Len(t, items, 1)
		assert.NotContains(t, items[0], "title")
		assert.Contains(t, items[0], "id")
	})

	t.Run("query hook overrides store list", func(t *testing.T) {
		t.Parallel()

		store := seedTodoStore(t,
			todo{ID: "1", Title: "open"},
			todo{ID: "2", Title: "closed", Done: true},
		)
		app := newTodoApp(t, store, func(c *resource.Collection[todo], _ *resource.Member[todo]) {
			c.Query = func(ctx internal.Context) ([]todo, error) {
				all, err := store.List(ctx)
				if err != nil {
					return nil, err
				}
				var open []todo
				for _, item := range all {
					if !item.Done {
						open = append(open, item)
					}
				}
				return open, nil
			}
		})

		rec := doJSON(t, app, http.MethodGet, "/todos", "")
		items := decodeJSON[[]map[string]any](t, rec)
		require.Len(t, items, 1)
		assert.Equal(t, "open", items[0]["title"])
	})

	t.Run("create returns 201 with serialized item", func(t *testing.T) {
		t.Parallel()

		store := seedTodoStore(t)
		app := newTodoApp(t, store)

		rec := doJSON(t, app, http.MethodPost, "/todos", `{"title":"new task"}`)
		require.Equal(t, http.StatusCreated, rec.Code)

		body := decodeJSON[map[string]any](t, rec)
		assert.Equal(t, "new task", body["title"])
		assert.NotEmpty(t, body["id"])
		assert.Equal(t, 1, store.Len())
	})

	t.Run("create accepts form encoded bodies", func(t *testing.T) {
		t.Parallel()

		store := seedTodoStore(t)
		app := newTodoApp(t, store)

		form := url.Values{"title": {"from form"}}
		req := httptest.NewRequest(http.MethodPost, "/todos", strings.NewReader(form.Encode()))
		req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
		rec := httptest.NewRecorder()
		app.Router().ServeHTTP(rec, req)

		require.Equal(t, http.StatusCreated, rec.Code)
		body := decodeJSON[map[string]any](t, rec)
		assert.Equal(t, "from form", body["title"])
	})

	t.Run("create with validation failure returns field errors", func(t *testing.T) {
		t.Parallel()

		store := seedTodoStore(t)
		app := newTodoApp(t, store)

		rec := doJSON(t, app, http.MethodPost, "/todos", `{"done":true}`)
		require.Equal(t, http.StatusBadRequest, rec.Code)

		body := decodeJSON[map[string]any](t, rec)
		assert.Equal(t, "invalid data", body["error"])
		errs, ok := body["errors"].(map[string]any)
		require.True(t, ok)
		assert.Contains(t, errs, "title")
		assert.Equal(t, 0, store.Len())
	})

	t.Run("disallowed method returns 405", func(t *testing.T) {
		t.Parallel()

		store := seedTodoStore(t)
		app := newTodoApp(t, store, func(c *resource.Collection[todo], _ *resource.Member[todo]) {
			c.Methods = []string{http.MethodGet}
		})

		rec := doJSON(t, app, http.MethodPost, "/todos", `{"title":"nope"}`)
		require.Equal(t, http.StatusMethodNotAllowed, rec.Code)

		body := decodeJSON[map[string]any](t, rec)
		assert.Equal(t, "method not allowed", body["error"])
	})
}

func TestMember(t *testing.T) {
	t.Parallel()

	t.Run("get returns the item", func(t *testing.T) {
		t.Parallel()

		store := seedTodoStore(t, todo{ID: "42", Title: "answer"})
		app := newTodoApp(t, store)

		rec := doJSON(t, app, http.MethodGet, "/todos/42", "")
		require.Equal(t, http.StatusOK, rec.Code)

		body := decodeJSON[map[string]any](t, rec)
		assert.Equal(t, "answer", body["title"])
	})

	t.Run("get missing returns 404", func(t *testing.T) {
		t.Parallel()

		store := seedTodoStore(t)
		app := newTodoApp(t, store)

		rec := doJSON(t, app, http.MethodGet, "/todos/missing", "")
		require.Equal(t, http.StatusNotFound, rec.Code)

		body := decodeJSON[map[string]any](t, rec)
		assert.Equal(t, "resource not found", body["error"])
	})

	t.Run("put updates onto the existing instance", func(t *testing.T) {
		t.Parallel()

		store := seedTodoStore(t, todo{ID: "1", Title: "keep me", Done: false})
		app := newTodoApp(t, store)

		rec := doJSON(t, app, http.MethodPut, "/todos/1", `{"title":"keep me","done":true}`)
		require.Equal(t, http.StatusOK, rec.Code)

		body := decodeJSON[map[string]any](t, rec)
		assert.Equal(t, true, body["done"])

		stored, err := store.Get(context.Background(), "1")
		require.NoError(t, err)
		assert.True(t, stored.Done)
	})

	t.Run("put missing returns 404", func(t *testing.T) {
		t.Parallel()

		store := seedTodoStore(t)
		app := newTodoApp(t, store)

		rec := doJSON(t, app, http.MethodPut, "/todos/none", `{"title":"x"}`)
		require.Equal(t, http.StatusNotFound, rec.Code)
	})

	t.Run("delete returns empty object", func(t *testing.T) {
		t.Parallel()

		store := seedTodoStore(t, todo{ID: "1", Title: "gone soon"})
		app := newTodoApp(t, store)

		rec := doJSON(t, app, http.MethodDelete, "/todos/1", "")
		require.Equal(t, http.StatusOK, rec.Code)
		assert.JSONEq(t, `{}`, rec.Body.String())
		assert.Equal(t, 0, store.Len())
	})

	t.Run("instance hook overrides lookup", func(t *testing.T) {
		t.Parallel()

		store := seedTodoStore(t)
		app := newTodoApp(t, store, func(_ *resource.Collection[todo], m *resource.Member[todo]) {
			m.Instance = func(c internal.Context) (todo, error) {
				return todo{ID: c.Param("id"), Title: "virtual"}, nil
			}
		})

		rec := doJSON(t, app, http.MethodGet, "/todos/anything", "")
		require.Equal(t, http.StatusOK, rec.Code)

		body := decodeJSON[map[string]any](t, rec)
		assert.Equal(t, "virtual", body["title"])
	})

	t.Run("custom ID param", func(t *testing.T) {
		t.Parallel()

		store := seedTodoStore(t, todo{ID: "7", Title: "custom"})
		memb := &resource.Member[todo]{Path: "/items/{itemID}", IDParam: "itemID", Store: store}
		app := internal.New(internal.WithHandlers(memb))

		rec := doJSON(t, app, http.MethodGet, "/items/7", "")
		require.Equal(t, http.StatusOK, rec.Code)

		body := decodeJSON[map[string]any](t, rec)
		assert.Equal(t, "custom", body["title"])
	})
}

func TestAction(t *testing.T) {
	t.Parallel()

	t.Run("post result is wrapped as JSON", func(t *testing.T) {
		t.Parallel()

		action := &resource.Action{
			Path: "/todos/{id}/archive",
			Func: func(c internal.Context) (any, error) {
				return map[string]any{"archived": c.Param("id")}, nil
			},
		}
		app := internal.New(internal.WithHandlers(action))

		rec := doJSON(t, app, http.MethodPost, "/todos/9/archive", "")
		require.Equal(t, http.StatusOK, rec.Code)

		body := decodeJSON[map[string]any](t, rec)
		assert.Equal(t, "9", body["archived"])
	})

	t.Run("only POST is registered by default", func(t *testing.T) {
		t.Parallel()

		action := &resource.Action{
			Path: "/ping",
			Func: func(c internal.Context) (any, error) { return "pong", nil },
		}
		app := internal.New(internal.WithHandlers(action))

		rec := doJSON(t, app, http.MethodGet, "/ping", "")
		require.Equal(t, http.StatusMethodNotAllowed, rec.Code)
	})
}
