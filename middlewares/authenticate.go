package middlewares

import (
	"github.com/dmitrymomot/restkit/internal"
	"github.com/dmitrymomot/restkit/pkg/auth"
)

// challengeKey holds the active authenticator's WWW-Authenticate value.
type challengeKey struct{}

// Authenticate returns middleware that runs the given authentication
// strategy before the handler. The authenticator attaches the identity
// on success and leaves the request unauthenticated otherwise; an error
// return short-circuits the request and is rendered as usual. The
// strategy's challenge is remembered so RequireAuth can issue it on
// rejection.
//
// Multiple Authenticate middlewares can be stacked; the first strategy
// that attaches an identity wins and later ones are skipped.
func Authenticate(a auth.Authenticator) internal.Middleware {
	return func(next internal.HandlerFunc) internal.HandlerFunc {
		return func(c internal.Context) (any, error) {
			if challenge := a.Challenge(); challenge != "" {
				c.Set(challengeKey{}, challenge)
			}

			if c.Identity() == nil {
				if err := a.Authenticate(c); err != nil {
					return nil, err
				}
			}

			return next(c)
		}
	}
}

// RequireAuth returns middleware that rejects requests without an
// active identity. When the active authenticator issued a challenge
// (HTTP Basic), the rejection is a 401 with the WWW-Authenticate
// header; otherwise it is a 403 "forbidden" response. Inactive users
// are rejected the same way.
func RequireAuth() internal.Middleware {
	return func(next internal.HandlerFunc) internal.HandlerFunc {
		return func(c internal.Context) (any, error) {
			if ident := c.Identity(); ident != nil && ident.Active {
				return next(c)
			}

			if challenge, ok := c.Get(challengeKey{}).(string); ok && challenge != "" {
				c.SetHeader("WWW-Authenticate", challenge)
				return nil, internal.ErrUnauthorized("unauthorized")
			}
			return nil, internal.ErrForbidden("forbidden")
		}
	}
}
