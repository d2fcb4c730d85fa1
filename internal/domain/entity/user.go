// Package entity contains the core business objects of the project,
// each representing a unique, identifiable concept within the domain.
package entity

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

// User is the account that owns posts and holds the email/password credential.
type User struct {
	ID           uuid.UUID // UUIDv7, assigned by the application at signup.
	Email        string    // Normalized (trimmed, lowercased); unique across all users.
	Name         string    // Display name shown as the author of the user's posts.
	PasswordHash string    // bcrypt hash of the user's password. Never serialized.
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// NormalizeEmail returns the canonical form under which emails are stored and looked up.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
