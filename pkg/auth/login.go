package auth

import (
	"github.com/dmitrymomot/restkit/internal"
	"github.com/dmitrymomot/restkit/pkg/serializer"
)

// identitySpec shapes the identity returned by LoginHandler.
var identitySpec = &serializer.Spec{
	Fields: []string{"id", "username", "first_name", "last_name", "email"},
}

// LoginHandler is a session-based authentication endpoint. GET and POST
// authenticate via the Password strategy (session restore, then
// explicit credentials) and return the serialized identity with the
// id, username, first_name, last_name, and email fields. Requests that
// end up unauthenticated get a 403 "forbidden" response.
type LoginHandler struct {
	// Path is the route pattern. Defaults to "/auth".
	Path string

	// Verifier checks explicit credentials. Required.
	Verifier Verifier

	// Loader restores the identity from a session. Optional.
	Loader Loader
}

func (h *LoginHandler) Routes(r internal.Router) {
	path := h.Path
	if path == "" {
		path = "/auth"
	}

	r.GET(path, h.handle)
	r.POST(path, h.handle)
}

func (h *LoginHandler) handle(c internal.Context) (any, error) {
	authn := Password(h.Verifier, h.Loader)
	if err := authn.Authenticate(c); err != nil {
		return nil, err
	}

	ident := c.Identity()
	if ident == nil || !ident.Active {
		return nil, internal.ErrForbidden("forbidden")
	}
	return serializer.Serialize(ident, identitySpec), nil
}
