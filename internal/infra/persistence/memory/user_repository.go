package memory

import (
	"context"

	"quill/internal/domain/entity"
	domainerrors "quill/internal/domain/errors"
	"quill/internal/domain/repository"

	"github.com/google/uuid"
)

type userRepository struct {
	store *Store
}

// NewUserRepository returns a UserRepository over the store.
func NewUserRepository(store *Store) repository.UserRepository {
	return &userRepository{store: store}
}

func (repo *userRepository) Create(_ context.Context, user *entity.User) error {
	repo.store.mu.Lock()
	defer repo.store.mu.Unlock()

	email := entity.NormalizeEmail(user.Email)
	if _, exists := repo.store.emails[email]; exists {
		return domainerrors.ErrEmailAlreadyExists.WrapMessage(email)
	}

	repo.store.users[user.ID] = *user
	repo.store.emails[email] = user.ID

	return nil
}

func (repo *userRepository) FindByID(_ context.Context, id uuid.UUID) (*entity.User, error) {
	repo.store.mu.RLock()
	defer repo.store.mu.RUnlock()

	user, ok := repo.store.users[id]
	if !ok {
		return nil, repository.ErrUserNotFound
	}

	return &user, nil
}

func (repo *userRepository) FindByIDs(_ context.Context, ids []uuid.UUID) (map[uuid.UUID]*entity.User, error) {
	repo.store.mu.RLock()
	defer repo.store.mu.RUnlock()

	users := make(map[uuid.UUID]*entity.User, len(ids))
	for _, id := range ids {
		if user, ok := repo.store.users[id]; ok {
			users[id] = &user
		}
	}

	return users, nil
}

func (repo *userRepository) FindByEmail(_ context.Context, email string) (*entity.User, error) {
	repo.store.mu.RLock()
	defer repo.store.mu.RUnlock()

	id, ok := repo.store.emails[entity.NormalizeEmail(email)]
	if !ok {
		return nil, repository.ErrUserNotFound
	}
	user := repo.store.users[id]

	return &user, nil
}

func (repo *userRepository) ExistsByEmail(_ context.Context, email string) (bool, error) {
	repo.store.mu.RLock()
	defer repo.store.mu.RUnlock()

	_, ok := repo.store.emails[entity.NormalizeEmail(email)]

	return ok, nil
}
