// Package auth provides pluggable request authentication strategies.
// An Authenticator inspects the request and attaches an Identity when
// the credentials check out; it never rejects by itself, leaving the
// decision to the RequireAuth guard. Credential verification is
// delegated to a Verifier so any user backend can plug in.
package auth

import (
	"context"
	"errors"

	"github.com/dmitrymomot/restkit/internal"
)

// Identity is the authenticated principal attached to a request.
type Identity = internal.Identity

// ErrInvalidCredentials signals that the username/password pair did not
// match any user. Authenticators treat it as "continue unauthenticated"
// rather than an error response.
var ErrInvalidCredentials = errors.New("invalid credentials")

// Verifier checks a username/password pair against the user backend.
// Returns ErrInvalidCredentials when the pair matches no user.
type Verifier interface {
	VerifyCredentials(ctx context.Context, username, password string) (*Identity, error)
}

// VerifierFunc adapts a plain function to the Verifier interface.
type VerifierFunc func(ctx context.Context, username, password string) (*Identity, error)

func (f VerifierFunc) VerifyCredentials(ctx context.Context, username, password string) (*Identity, error) {
	return f(ctx, username, password)
}

// Loader restores an identity by user ID, used to rebuild the request
// identity from an authenticated session.
type Loader interface {
	LoadIdentity(ctx context.Context, userID string) (*Identity, error)
}

// LoaderFunc adapts a plain function to the Loader interface.
type LoaderFunc func(ctx context.Context, userID string) (*Identity, error)

func (f LoaderFunc) LoadIdentity(ctx context.Context, userID string) (*Identity, error) {
	return f(ctx, userID)
}

// Authenticator resolves the request identity. Implementations attach
// the identity via Context.SetIdentity on success and leave it nil
// otherwise. Returning an error short-circuits the request and renders
// the error as usual.
type Authenticator interface {
	Authenticate(c internal.Context) error

	// Challenge returns the WWW-Authenticate header value the guard
	// sends on 401 responses, or "" when the scheme has none.
	Challenge() string
}
