// Package authn implements the Password authenticator component
// (spec.md §4.2): Argon2id hashing and constant-time verification.
package authn

import (
	"crypto/rand"
	"crypto/subtle"
	"encoding/base64"

	"github.com/authcore/authcore/pkg/errx"
	"golang.org/x/crypto/argon2"
)

var registry = errx.NewRegistry("AUTHN")

var ErrPasswordHashing = registry.Register("PASSWORD_HASHING", errx.TypeInternal, 500, "password hashing failed")

// Argon2 parameters follow the reference recommendation (spec.md §4.2:
// "defaults follow the reference Argon2 recommendation").
const (
	argonTime    = 1
	argonMemory  = 64 * 1024 // 64 MiB
	argonThreads = 4
	argonKeyLen  = 32
	saltLen      = 16
)

// Hasher hashes and verifies passwords with Argon2id.
type Hasher struct{}

func NewHasher() *Hasher { return &Hasher{} }

// Hash generates a fresh salt and returns (hash, salt), both base64
// standard-encoded, per spec.md §3 ("password hash + salt").
func (h *Hasher) Hash(plain string) (hash string, salt string, err error) {
	saltBytes := make([]byte, saltLen)
	if _, err := rand.Read(saltBytes); err != nil {
		return "", "", registry.NewWithCause(ErrPasswordHashing, err)
	}

	digest := argon2.IDKey([]byte(plain), saltBytes, argonTime, argonMemory, argonThreads, argonKeyLen)

	return base64.StdEncoding.EncodeToString(digest), base64.StdEncoding.EncodeToString(saltBytes), nil
}

// Verify re-derives the digest from plain and the stored salt and compares
// it against hash in constant time (spec.md §4.2: "Verification is
// constant-time in the hash comparator").
func (h *Hasher) Verify(plain, hash, salt string) (bool, error) {
	saltBytes, err := base64.StdEncoding.DecodeString(salt)
	if err != nil {
		return false, registry.NewWithCause(ErrPasswordHashing, err)
	}
	want, err := base64.StdEncoding.DecodeString(hash)
	if err != nil {
		return false, registry.NewWithCause(ErrPasswordHashing, err)
	}

	got := argon2.IDKey([]byte(plain), saltBytes, argonTime, argonMemory, argonThreads, argonKeyLen)

	return subtle.ConstantTimeCompare(got, want) == 1, nil
}
