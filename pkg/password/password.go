// Package password provides bcrypt hashing helpers and an adapter that
// turns a user lookup with stored hashes into an auth.Verifier.
package password

import (
	"context"
	"errors"
	"fmt"

	"golang.org/x/crypto/bcrypt"

	"github.com/dmitrymomot/restkit/pkg/auth"
)

// ErrHashTooLong is returned when the plaintext exceeds bcrypt's 72
// byte input limit.
var ErrHashTooLong = errors.New("password exceeds 72 bytes")

// Hash derives a bcrypt hash from the plaintext at the default cost.
func Hash(plain string) (string, error) {
	return HashWithCost(plain, bcrypt.DefaultCost)
}

// HashWithCost derives a bcrypt hash at the given cost.
func HashWithCost(plain string, cost int) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(plain), cost)
	if err != nil {
		if errors.Is(err, bcrypt.ErrPasswordTooLong) {
			return "", ErrHashTooLong
		}
		return "", fmt.Errorf("hash password: %w", err)
	}
	return string(hash), nil
}

// Verify reports whether the plaintext matches the bcrypt hash.
func Verify(hash, plain string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(plain)) == nil
}

// Lookup resolves a username to its identity and stored bcrypt hash.
// Return auth.ErrInvalidCredentials for unknown users so the failure is
// indistinguishable from a wrong password.
type Lookup func(ctx context.Context, username string) (*auth.Identity, string, error)

// HashVerifier adapts a Lookup into an auth.Verifier that compares the
// supplied password against the stored bcrypt hash.
func HashVerifier(lookup Lookup) auth.Verifier {
	return auth.VerifierFunc(func(ctx context.Context, username, plain string) (*auth.Identity, error) {
		ident, hash, err := lookup(ctx, username)
		if err != nil {
			return nil, err
		}
		if !Verify(hash, plain) {
			return nil, auth.ErrInvalidCredentials
		}
		return ident, nil
	})
}
