// Package resource provides generic CRUD endpoints built on the
// restkit dispatch model. A Collection serves list and create, a Member
// serves retrieve, update, and delete for a single item, and an Action
// covers RPC-style operations. Persistence is delegated to a Store and
// request binding to a Form, so the same endpoint types work against
// any backend.
//
//	store := resource.NewMemoryStore(
//	    resource.WithIDFunc(func(t Todo) string { return t.ID }),
//	    resource.WithIDSetter(func(t *Todo, id string) { t.ID = id }),
//	)
//
//	app := restkit.New(restkit.WithHandlers(
//	    &resource.Collection[Todo]{Path: "/todos", Store: store},
//	    &resource.Member[Todo]{Path: "/todos/{id}", Store: store},
//	))
package resource
