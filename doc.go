// Package restkit is a lightweight toolkit for building JSON REST APIs
// on top of chi. Handlers return plain values that are encoded as JSON,
// errors carry their HTTP status, and cross-cutting concerns (sessions,
// authentication, request binding, serialization) live in focused
// subpackages.
//
// A minimal application:
//
//	type Todo struct {
//	    ID    string `json:"id"`
//	    Title string `json:"title" validate:"required"`
//	    Done  bool   `json:"done"`
//	}
//
//	func main() {
//	    store := resource.NewMemoryStore(
//	        resource.WithIDFunc(func(t Todo) string { return t.ID }),
//	        resource.WithIDSetter(func(t *Todo, id string) { t.ID = id }),
//	    )
//
//	    app := restkit.New(
//	        restkit.WithMiddleware(middlewares.RequestID(), middlewares.Recover()),
//	        restkit.WithHandlers(
//	            &resource.Collection[Todo]{Path: "/todos", Store: store},
//	            &resource.Member[Todo]{Path: "/todos/{id}", Store: store},
//	        ),
//	    )
//
//	    if err := app.Run(":8080"); err != nil {
//	        log.Fatal(err)
//	    }
//	}
//
// Handlers have the signature func(c restkit.Context) (any, error).
// A non-nil result is serialized as a JSON 200 response; write the
// response yourself (c.JSON, c.NoContent) for other status codes and
// return nil. Returned errors are rendered by the error handler:
// *HTTPError values keep their status code and body, anything else
// becomes a 500 with a generic message.
//
// Subpackages:
//
//   - pkg/resource: generic list/detail/action endpoints over a Store
//   - pkg/serializer: spec-driven recursive model serialization
//   - pkg/auth, pkg/password: session and HTTP Basic authentication
//   - pkg/session: session stores (memory, postgres, redis)
//   - pkg/binder, pkg/validator, pkg/sanitizer: request binding
//   - pkg/db, pkg/redis, pkg/health, pkg/config, pkg/logger: infrastructure
//   - middlewares: request ID, recover, timeout, CORS, logging, auth guard
package restkit
