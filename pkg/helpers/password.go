package helpers

import (
	"errors"
	"fmt"

	"golang.org/x/crypto/bcrypt"
)

// ErrMalformedHash reports a stored digest that bcrypt cannot parse. It is
// distinct from a wrong password so corrupted rows are never reported as a
// plain verification failure.
var ErrMalformedHash = errors.New("malformed password hash")

// HashPassword hashes the plain text password using bcrypt. The digest embeds
// the cost and a per-call salt, so two calls never produce the same output.
func HashPassword(plain string) (string, error) {
	b, err := bcrypt.GenerateFromPassword([]byte(plain), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	return string(b), nil
}

// VerifyPassword compares a bcrypt digest with a plain password.
// A mismatch returns (false, nil); an unparseable digest returns
// (false, ErrMalformedHash).
func VerifyPassword(digest string, plain string) (bool, error) {
	err := bcrypt.CompareHashAndPassword([]byte(digest), []byte(plain))
	switch {
	case err == nil:
		return true, nil
	case errors.Is(err, bcrypt.ErrMismatchedHashAndPassword):
		return false, nil
	default:
		return false, fmt.Errorf("%w: %v", ErrMalformedHash, err)
	}
}
