package internal

// Handler declares routes on a router.
//
// Example:
//
//	type AuthHandler struct {
//	    users *repository.Users
//	}
//
//	func (h *AuthHandler) Routes(r restkit.Router) {
//	    r.POST("/login", h.login)
//	    r.POST("/logout", h.logout)
//	}
type Handler interface {
	Routes(r Router)
}

// HandlerFunc is the signature for route handlers. A non-nil result is
// encoded as a JSON 200 response unless the handler already wrote one.
// A non-nil error triggers the app error handler.
type HandlerFunc func(c Context) (any, error)

// Middleware wraps a HandlerFunc to add cross-cutting concerns.
// Middleware can inspect the request, short-circuit processing by
// returning early, or rewrite the result.
//
// Example:
//
//	func RequireAdmin(next restkit.HandlerFunc) restkit.HandlerFunc {
//	    return func(c restkit.Context) (any, error) {
//	        if ident := c.Identity(); ident == nil || !ident.Active {
//	            return nil, internal.ErrForbidden("forbidden")
//	        }
//	        return next(c)
//	    }
//	}
type Middleware func(next HandlerFunc) HandlerFunc

// ErrorHandler renders errors returned from handlers.
type ErrorHandler func(Context, error) error
