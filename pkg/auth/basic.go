package auth

import (
	"encoding/base64"
	"errors"
	"fmt"
	"strings"

	"github.com/dmitrymomot/restkit/internal"
)

// DefaultRealm is used by Basic when no realm is given.
const DefaultRealm = "api"

type basicAuthenticator struct {
	verifier    Verifier
	realm       string
	credentials internal.Extractor
}

// Basic returns an HTTP Basic authenticator. It pulls the base64
// credentials out of the Authorization header, verifies them, and
// attaches the identity without touching the session. Malformed or
// missing headers and invalid credentials leave the request
// unauthenticated; the guard then responds 401 with the realm challenge.
func Basic(verifier Verifier, realm string) Authenticator {
	if realm == "" {
		realm = DefaultRealm
	}
	return &basicAuthenticator{
		verifier:    verifier,
		realm:       realm,
		credentials: internal.NewExtractor(internal.FromBasicAuth()),
	}
}

func (a *basicAuthenticator) Challenge() string {
	return fmt.Sprintf("Basic realm=%q", a.realm)
}

func (a *basicAuthenticator) Authenticate(c internal.Context) error {
	encoded, ok := a.credentials.Extract(c)
	if !ok {
		return nil
	}
	decoded, err := base64.StdEncoding.DecodeString(encoded)
	if err != nil {
		return nil
	}
	username, password, ok := strings.Cut(string(decoded), ":")
	if !ok {
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

	c.SetIdentity(ident)
	return nil
}
