package auth

import (
	"errors"
	"net/http"

	"github.com/dmitrymomot/restkit/internal"
	"github.com/dmitrymomot/restkit/pkg/session"
)

type passwordAuthenticator struct {
	verifier Verifier
	loader   Loader
}

// Password returns a session-based authenticator. It first restores the
// identity from an authenticated session via the loader; failing that,
// it reads "username" and "password" credentials from the parsed body
// on POST requests or from the query parameters otherwise, verifies
// them, and on success associates the user with the session (rotating
// the session token) and attaches the identity. Invalid or missing
// credentials leave the request unauthenticated for the guard to
// reject.
//
// The loader may be nil when sessions are not used; the authenticator
// then only handles explicit credentials.
func Password(verifier Verifier, loader Loader) Authenticator {
	return &passwordAuthenticator{verifier: verifier, loader: loader}
}

func (a *passwordAuthenticator) Challenge() string { return "" }

func (a *passwordAuthenticator) Authenticate(c internal.Context) error {
	if a.loader != nil {
		if userID := c.UserID(); userID != "" {
			ident, err := a.loader.LoadIdentity(c, userID)
			if err == nil && ident != nil && ident.Active {
				c.SetIdentity(ident)
				return nil
			}
		}
	}

	username, password, err := a.credentials(c)
	if err != nil {
		return err
	}
	if username == "" {
		return nil
	}

	ident, err := a.verifier.VerifyCredentials(c, username, password)
	if err != nil {
		if errors.Is(err, ErrInvalidCredentials) {
			return nil
		}
		return err
	}
	if ident == nil || !ident.Active {
		return nil
	}

	if err := c.AuthenticateSession(ident.ID); err != nil && !errors.Is(err, session.ErrNotConfigured) {
		return err
	}

	c.SetIdentity(ident)
	return nil
}

// credentials extracts the username/password pair from the parsed body
// on POST, or from query parameters on any other method. A malformed
// body propagates its 400 error.
func (a *passwordAuthenticator) credentials(c internal.Context) (string, string, error) {
	if c.Request().Method == http.MethodPost {
		data, err := c.Data()
		if err != nil {
			return "", "", err
		}
		fields, ok := data.(map[string]any)
		if !ok {
			return "", "", nil
		}
		username, _ := fields["username"].(string)
		password, _ := fields["password"].(string)
		return username, password, nil
	}

	params := c.Params()
	return params["username"], params["password"], nil
}
