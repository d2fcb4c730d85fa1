package memory

import (
	"context"

	"quill/internal/domain/entity"
	domainerrors "quill/internal/domain/errors"
	"quill/internal/domain/repository"

	"github.com/google/uuid"
)

type postRepository struct {
	store *Store
}

// NewPostRepository returns a PostRepository over the store.
func NewPostRepository(store *Store) repository.PostRepository {
	return &postRepository{store: store}
}

func (repo *postRepository) Create(_ context.Context, post *entity.Post) error {
	repo.store.mu.Lock()
	defer repo.store.mu.Unlock()

	if _, ok := repo.store.users[post.OwnerID]; !ok {
		return domainerrors.ErrUserNotFound.WrapMessage("post owner does not exist")
	}

	repo.store.posts[post.ID] = *clonePost(*post)

	return nil
}

func (repo *postRepository) FindByID(_ context.Context, id uuid.UUID) (*entity.Post, error) {
	repo.store.mu.RLock()
	defer repo.store.mu.RUnlock()

	post, ok := repo.store.posts[id]
	if !ok {
		return nil, repository.ErrPostNotFound
	}

	return clonePost(post), nil
}

func (repo *postRepository) FindPage(_ context.Context, req repository.PageRequest) ([]*entity.Post, int64, error) {
	repo.store.mu.RLock()
	defer repo.store.mu.RUnlock()

	return paginate(repo.store.sortedPosts(func(*entity.Post) bool { return true }), req)
}

func (repo *postRepository) FindPageByOwner(_ context.Context, ownerID uuid.UUID, req repository.PageRequest) ([]*entity.Post, int64, error) {
	repo.store.mu.RLock()
	defer repo.store.mu.RUnlock()

	return paginate(repo.store.sortedPosts(func(p *entity.Post) bool { return p.OwnerID == ownerID }), req)
}

func (repo *postRepository) Update(_ context.Context, post *entity.Post) error {
	repo.store.mu.Lock()
	defer repo.store.mu.Unlock()

	stored, ok := repo.store.posts[post.ID]
	if !ok {
		return repository.ErrPostNotFound
	}

	stored.Title = post.Title
	stored.Content = post.Content
	stored.UpdatedAt = post.UpdatedAt
	repo.store.posts[post.ID] = *clonePost(stored)

	return nil
}

func (repo *postRepository) Delete(_ context.Context, id uuid.UUID) error {
	repo.store.mu.Lock()
	defer repo.store.mu.Unlock()

	if _, ok := repo.store.posts[id]; !ok {
		return repository.ErrPostNotFound
	}
	delete(repo.store.posts, id)

	return nil
}

func paginate(posts []*entity.Post, req repository.PageRequest) ([]*entity.Post, int64, error) {
	total := int64(len(posts))

	start := min(req.Offset(), len(posts))
	end := min(start+req.Size, len(posts))

	return posts[start:end], total, nil
}
