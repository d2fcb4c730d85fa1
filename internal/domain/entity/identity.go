package entity

import "github.com/google/uuid"

// Identity is the caller resolved from a verified bearer token.
type Identity struct {
	UserID uuid.UUID
	Email  string
}
