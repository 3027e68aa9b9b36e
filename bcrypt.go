package pricegrid

import (
	"crypto/rand"
	"encoding/hex"

	goerrors "github.com/goliatone/go-errors"
	"golang.org/x/crypto/bcrypt"
)

const bcryptCost = 14

// HashPassword hashes a plaintext password for storage.
func HashPassword(password string) (string, error) {
	if password == "" {
		return "", ErrNoEmptyPassword
	}
	bytes, err := bcrypt.GenerateFromPassword([]byte(password), bcryptCost)
	if err != nil {
		return "", goerrors.Wrap(err, goerrors.CategoryInternal, "failed to hash password")
	}
	return string(bytes), nil
}

// ComparePasswordAndHash checks a plaintext password against a stored hash.
// A mismatch returns ErrInvalidCredentials so callers never have to inspect
// bcrypt internals.
func ComparePasswordAndHash(password, hash string) error {
	err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(password))
	if err == nil {
		return nil
	}
	if err == bcrypt.ErrMismatchedHashAndPassword {
		return ErrInvalidCredentials
	}
	return goerrors.Wrap(err, goerrors.CategoryInternal, "failed to compare password hash")
}

// RandomPasswordHash returns a hash of random bytes. It is never matched by
// any input; comparing against it keeps login timing uniform when the email
// does not resolve to an account.
func RandomPasswordHash() string {
	buf := make([]byte, 32)
	if _, err := rand.Read(buf); err != nil {
		// rand.Read failing means the platform RNG is broken; a fixed
		// unmatched hash is still safe here.
		return "$2a$14$invalidinvalidinvalidinvalidinvalidinvalidinvalidinv"
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(hex.EncodeToString(buf)), bcrypt.MinCost)
	if err != nil {
		return "$2a$14$invalidinvalidinvalidinvalidinvalidinvalidinvalidinv"
	}
	return string(hash)
}
