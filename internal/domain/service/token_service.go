package service

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// Token verification failures. Callers outside the token service treat all of them as
// "unauthenticated"; they are distinguished only for logging.
var (
	ErrTokenMalformed        = errors.New("token is malformed")
	ErrTokenExpired          = errors.New("token has expired")
	ErrTokenSignatureInvalid = errors.New("token signature is invalid")
)

// Claims defines the custom claims carried by access tokens.
type Claims struct {
	Email string `json:"email"`
	jwt.RegisteredClaims
}

// UserID parses the subject claim.
func (c *Claims) UserID() (uuid.UUID, error) {
	return uuid.Parse(c.Subject)
}

// TokenService issues and verifies stateless bearer tokens. Verification never
// consults a store: validity is signature plus expiry.
type TokenService interface {
	// Issue creates a signed token for the user valid for the configured TTL.
	Issue(userID uuid.UUID, email string) (string, error)

	// Verify checks the signature and expiry of a token and returns its claims.
	Verify(tokenString string) (*Claims, error)

	// TTL returns the configured token lifetime.
	TTL() time.Duration
}

// Clock returns the current time. Production code uses time.Now.
type Clock func() time.Time
