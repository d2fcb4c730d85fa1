package repository

import (
	"context"
	"errors"

	"quill/internal/domain/entity"

	"github.com/google/uuid"
)

// ErrPostNotFound is returned when a post does not exist.
var ErrPostNotFound = errors.New("post not found")

// PageRequest selects a zero-indexed page of Size items.
type PageRequest struct {
	Page int
	Size int
}

// Offset returns the number of items preceding the page.
func (r PageRequest) Offset() int {
	return r.Page * r.Size
}

// PostRepository persists posts. Pages are ordered by (CreatedAt, ID) ascending.
type PostRepository interface {
	// Create persists a new post.
	Create(ctx context.Context, post *entity.Post) error

	// FindByID retrieves a single post by its ID.
	FindByID(ctx context.Context, id uuid.UUID) (*entity.Post, error)

	// FindPage returns one page of all posts and the total number of posts.
	FindPage(ctx context.Context, req PageRequest) ([]*entity.Post, int64, error)

	// FindPageByOwner returns one page of the posts owned by ownerID and their total.
	FindPageByOwner(ctx context.Context, ownerID uuid.UUID, req PageRequest) ([]*entity.Post, int64, error)

	// Update replaces the title, content and update timestamp of an existing post.
	Update(ctx context.Context, post *entity.Post) error

	// Delete removes a post by its ID.
	Delete(ctx context.Context, id uuid.UUID) error
}
