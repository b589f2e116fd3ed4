// Package id provides sortable ID and opaque token generation.
package id

import (
	"crypto/rand"
	"encoding/base64"
	"encoding/binary"
	"time"
)

// Crockford's Base32 alphabet (excludes I, L, O, U to avoid confusion).
const crockfordBase32 = "0123456789ABCDEFGHJKMNPQRSTVWXYZ"

// NewULID generates a ULID (Universally Unique Lexicographically Sortable Identifier).
// Returns a 26-character string: 10 chars timestamp (48-bit ms) + 16 chars random (80-bit).
// ULIDs are lexicographically sortable by creation time.
func NewULID() string {
	ms := uint64(time.Now().UnixMilli())

	entropy := make([]byte, 10)
	if _, err := rand.Read(entropy); err != nil {
		// Fallback: time-based entropy (degraded but functional)
		binary.BigEndian.PutUint64(entropy[:8], uint64(time.Now().UnixNano()))
	}

	var out [26]byte

	// Timestamp: 48 bits as 10 base32 chars, most significant first.
	for i := 9; i >= 0; i-- {
		out[i] = crockfordBase32[ms&0x1F]
		ms >>= 5
	}

	// Entropy: 80 bits as 16 base32 chars. Walk the bit stream in 5-bit steps.
	bits := uint(0)
	acc := uint16(0)
	pos := 10
	for _, b := range entropy {
		acc = acc<<8 | uint16(b)
		bits += 8
		for bits >= 5 {
			bits -= 5
			out[pos] = crockfordBase32[(acc>>bits)&0x1F]
			pos++
		}
	}

	return string(out[:])
}

// NewToken generates a URL-safe random token with the given number of
// random bytes. Used for session tokens and similar opaque credentials.
func NewToken(size int) (string, error) {
	if size <= 0 {
		size = 32
	}
	buf := make([]byte, size)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	return base64.RawURLEncoding.EncodeToString(buf), nil
}
