package entity

import (
	"time"

	"github.com/google/uuid"
)

// Post is a blog post. It may only be mutated or deleted by the user recorded in OwnerID.
type Post struct {
	ID        uuid.UUID  // UUIDv7, so ID order follows insertion order.
	OwnerID   uuid.UUID  // The user who created the post.
	Title     string
	Content   string
	CreatedAt time.Time
	UpdatedAt *time.Time // Nil until the first update.
}

// IsOwnedBy reports whether userID is the recorded owner of the post.
func (p *Post) IsOwnedBy(userID uuid.UUID) bool {
	return p.OwnerID == userID
}

// PostView is a post joined with its owner's display name.
type PostView struct {
	ID         uuid.UUID  `json:"id"`
	Title      string     `json:"title"`
	Content    string     `json:"content"`
	AuthorID   uuid.UUID  `json:"authorId"`
	AuthorName string     `json:"authorName"`
	CreatedAt  time.Time  `json:"createdAt"`
	UpdatedAt  *time.Time `json:"updatedAt,omitempty"`
}

// NewPostView builds the caller-facing representation of a post.
func NewPostView(post *Post, authorName string) *PostView {
	return &PostView{
		ID:         post.ID,
		Title:      post.Title,
		Content:    post.Content,
		AuthorID:   post.OwnerID,
		AuthorName: authorName,
		CreatedAt:  post.CreatedAt,
		UpdatedAt:  post.UpdatedAt,
	}
}
