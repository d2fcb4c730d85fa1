// Package service declares the stateless collaborators the usecases depend on:
// credential hashing, token issuance and the clock.
package service

import "errors"

// MaxPasswordBytes is the longest password, in bytes, that bcrypt accepts.
const MaxPasswordBytes = 72

// ErrPasswordTooLong is returned by Hash for passwords over MaxPasswordBytes.
var ErrPasswordTooLong = errors.New("password exceeds 72 bytes")

// PasswordHasher hashes credentials at signup and verifies them at login.
type PasswordHasher interface {
	// Hash returns a salted one-way hash of password.
	Hash(password string) (string, error)

	// Check reports whether password matches hash. A malformed hash never matches.
	Check(password, hash string) bool
}
