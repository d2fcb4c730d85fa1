package usecase

import (
	"context"

	"quill/internal/domain/entity"

	"github.com/google/uuid"
)

// CreatePostInput represents the input for creating a post
type CreatePostInput struct {
	Title   string
	Content string
}

// UpdatePostInput represents a partial update. Nil or blank fields are left unchanged.
type UpdatePostInput struct {
	Title   *string
	Content *string
}

// PostUsecase defines the blog post operations. Mutations are restricted to the post's owner;
// reads are public.
type PostUsecase interface {
	Create(ctx context.Context, ownerID uuid.UUID, input *CreatePostInput) (*entity.PostView, error)
	List(ctx context.Context, page, size int) (*entity.Page[*entity.PostView], error)
	Get(ctx context.Context, postID uuid.UUID) (*entity.PostView, error)
	Update(ctx context.Context, postID, ownerID uuid.UUID, input *UpdatePostInput) (*entity.PostView, error)
	Delete(ctx context.Context, postID, ownerID uuid.UUID) error
	ListByOwner(ctx context.Context, ownerID uuid.UUID, page, size int) (*entity.Page[*entity.PostView], error)
}
