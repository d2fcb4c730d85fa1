// Package memory is a process-local implementation of the persistence layer, used by the
// "memory" storage driver and by handler tests.
package memory

import (
	"bytes"
	"slices"
	"sync"

	"quill/internal/domain/entity"

	"github.com/google/uuid"
)

// Store holds users and posts behind one lock. Values are copied on the way in and out
// so callers never share memory with the store.
type Store struct {
	mu     sync.RWMutex
	users  map[uuid.UUID]entity.User
	emails map[string]uuid.UUID
	posts  map[uuid.UUID]entity.Post
}

// NewStore creates an empty store.
func NewStore() *Store {
	return &Store{
		users:  make(map[uuid.UUID]entity.User),
		emails: make(map[string]uuid.UUID),
		posts:  make(map[uuid.UUID]entity.Post),
	}
}

// sortedPosts returns copies of the posts accepted by keep in (CreatedAt, ID) order.
// The caller must hold at least a read lock.
func (s *Store) sortedPosts(keep func(*entity.Post) bool) []*entity.Post {
	posts := make([]*entity.Post, 0, len(s.posts))
	for _, post := range s.posts {
		if keep(&post) {
			posts = append(posts, clonePost(post))
		}
	}

	slices.SortFunc(posts, func(a, b *entity.Post) int {
		if c := a.CreatedAt.Compare(b.CreatedAt); c != 0 {
			return c
		}

		return bytes.Compare(a.ID[:], b.ID[:])
	})

	return posts
}

func clonePost(post entity.Post) *entity.Post {
	if post.UpdatedAt != nil {
		updatedAt := *post.UpdatedAt
		post.UpdatedAt = &updatedAt
	}

	return &post
}
