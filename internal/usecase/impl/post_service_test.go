package impl

import (
	"context"
	"testing"
	"time"

	"quill/config"
	"quill/internal/domain/entity"
	domainerrors "quill/internal/domain/errors"
	"quill/internal/domain/repository"
	mockRepo "quill/internal/mocks/repository"
	"quill/internal/usecase"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func newTestPostService(t *testing.T) (usecase.PostUsecase, *mockRepo.MockUserRepository, *mockRepo.MockPostRepository) {
	userRepo := mockRepo.NewMockUserRepository(t)
	postRepo := mockRepo.NewMockPostRepository(t)

	svc := NewPostService(PostServiceParams{
		UserRepo: userRepo,
		PostRepo: postRepo,
		Clock:    fixedClock(),
		Config: &config.Config{
			Pagination: &config.PaginationConfig{DefaultSize: 10, MaxSize: 50},
		},
		Logger: newDiscardLogger(),
	})

	return svc, userRepo, postRepo
}

func TestPostService_Create(t *testing.T) {
	svc, userRepo, postRepo := newTestPostService(t)
	ctx := context.Background()
	owner := &entity.User{ID: uuid.New(), Name: "Alice"}

	userRepo.EXPECT().FindByID(ctx, owner.ID).Return(owner, nil)
	postRepo.EXPECT().Create(ctx, mock.MatchedBy(func(p *entity.Post) bool {
		return p.OwnerID == owner.ID && p.Title == "Hello" && p.UpdatedAt == nil
	})).Return(nil)

	view, err := svc.Create(ctx, owner.ID, &usecase.CreatePostInput{Title: "Hello", Content: "World"})
	require.NoError(t, err)
	assert.Equal(t, "Hello", view.Title)
	assert.Equal(t, "World", view.Content)
	assert.Equal(t, "Alice", view.AuthorName)
	assert.Equal(t, owner.ID, view.AuthorID)
	assert.Equal(t, fixedNow, view.CreatedAt)
	assert.Equal(t, uuid.Version(7), view.ID.Version())
}

func TestPostService_Create_UnknownOwner(t *testing.T) {
	svc, userRepo, _ := newTestPostService(t)
	ctx := context.Background()
	ownerID := uuid.New()

	userRepo.EXPECT().FindByID(ctx, ownerID).Return(nil, repository.ErrUserNotFound)

	_, err := svc.Create(ctx, ownerID, &usecase.CreatePostInput{Title: "Hello", Content: "World"})
	assert.ErrorIs(t, err, domainerrors.ErrUserNotFound)
}

func TestPostService_Create_BlankFields(t *testing.T) {
	svc, _, _ := newTestPostService(t)

	_, err := svc.Create(context.Background(), uuid.New(), &usecase.CreatePostInput{Title: "  ", Content: "World"})
	assert.ErrorIs(t, err, domainerrors.ErrValidationFailed)
}

func TestPostService_List(t *testing.T) {
	svc, userRepo, postRepo := newTestPostService(t)
	ctx := context.Background()
	alice := &entity.User{ID: uuid.New(), Name: "Alice"}
	bob := &entity.User{ID: uuid.New(), Name: "Bob"}
	posts := []*entity.Post{
		{ID: uuid.New(), OwnerID: alice.ID, Title: "a1"},
		{ID: uuid.New(), OwnerID: bob.ID, Title: "b1"},
		{ID: uuid.New(), OwnerID: alice.ID, Title: "a2"},
	}

	postRepo.EXPECT().FindPage(ctx, repository.PageRequest{Page: 1, Size: 3}).Return(posts, int64(7), nil)
	userRepo.EXPECT().FindByIDs(ctx, []uuid.UUID{alice.ID, bob.ID}).
		Return(map[uuid.UUID]*entity.User{alice.ID: alice, bob.ID: bob}, nil)

	page, err := svc.List(ctx, 1, 3)
	require.NoError(t, err)
	assert.Equal(t, 1, page.Page)
	assert.Equal(t, 3, page.Size)
	assert.Equal(t, int64(7), page.TotalElements)
	assert.Equal(t, 3, page.TotalPages)
	require.Len(t, page.Content, 3)
	assert.Equal(t, "Alice", page.Content[0].AuthorName)
	assert.Equal(t, "Bob", page.Content[1].AuthorName)
	assert.Equal(t, "a2", page.Content[2].Title)
}

func TestPostService_List_PageSizes(t *testing.T) {
	tests := []struct {
		name     string
		size     int
		wantSize int
	}{
		{name: "default", size: 0, wantSize: 10},
		{name: "explicit", size: 25, wantSize: 25},
		{name: "capped", size: 500, wantSize: 50},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc, _, postRepo := newTestPostService(t)
			ctx := context.Background()

			postRepo.EXPECT().FindPage(ctx, repository.PageRequest{Page: 0, Size: tt.wantSize}).Return(nil, int64(0), nil)

			page, err := svc.List(ctx, 0, tt.size)
			require.NoError(t, err)
			assert.Equal(t, tt.wantSize, page.Size)
			assert.NotNil(t, page.Content)
			assert.Empty(t, page.Content)
			assert.Equal(t, 0, page.TotalPages)
		})
	}
}

func TestPostService_List_NegativeParams(t *testing.T) {
	svc, _, _ := newTestPostService(t)

	_, err := svc.List(context.Background(), -1, 10)
	assert.ErrorIs(t, err, domainerrors.ErrValidationFailed)

	_, err = svc.List(context.Background(), 0, -5)
	assert.ErrorIs(t, err, domainerrors.ErrValidationFailed)
}

func TestPostService_ListByOwner(t *testing.T) {
	svc, userRepo, postRepo := newTestPostService(t)
	ctx := context.Background()
	alice := &entity.User{ID: uuid.New(), Name: "Alice"}
	posts := []*entity.Post{{ID: uuid.New(), OwnerID: alice.ID, Title: "mine"}}

	postRepo.EXPECT().FindPageByOwner(ctx, alice.ID, repository.PageRequest{Page: 0, Size: 10}).Return(posts, int64(1), nil)
	userRepo.EXPECT().FindByIDs(ctx, []uuid.UUID{alice.ID}).Return(map[uuid.UUID]*entity.User{alice.ID: alice}, nil)

	page, err := svc.ListByOwner(ctx, alice.ID, 0, 0)
	require.NoError(t, err)
	require.Len(t, page.Content, 1)
	assert.Equal(t, "mine", page.Content[0].Title)
	assert.Equal(t, int64(1), page.TotalElements)
}

func TestPostService_Get(t *testing.T) {
	svc, userRepo, postRepo := newTestPostService(t)
	ctx := context.Background()
	alice := &entity.User{ID: uuid.New(), Name: "Alice"}
	post := &entity.Post{ID: uuid.New(), OwnerID: alice.ID, Title: "Hello"}

	postRepo.EXPECT().FindByID(ctx, post.ID).Return(post, nil)
	userRepo.EXPECT().FindByIDs(ctx, []uuid.UUID{alice.ID}).Return(map[uuid.UUID]*entity.User{alice.ID: alice}, nil)

	view, err := svc.Get(ctx, post.ID)
	require.NoError(t, err)
	assert.Equal(t, "Hello", view.Title)
	assert.Equal(t, "Alice", view.AuthorName)

	missing := uuid.New()
	postRepo.EXPECT().FindByID(ctx, missing).Return(nil, repository.ErrPostNotFound)

	_, err = svc.Get(ctx, missing)
	assert.ErrorIs(t, err, domainerrors.ErrPostNotFound)
}

func TestPostService_Update(t *testing.T) {
	ctx := context.Background()
	alice := &entity.User{ID: uuid.New(), Name: "Alice"}

	newPost := func() *entity.Post {
		return &entity.Post{
			ID:        uuid.New(),
			OwnerID:   alice.ID,
			Title:     "Old title",
			Content:   "Old content",
			CreatedAt: fixedNow.Add(-time.Hour),
		}
	}

	t.Run("applies only non-blank fields", func(t *testing.T) {
		svc, userRepo, postRepo := newTestPostService(t)
		post := newPost()

		postRepo.EXPECT().FindByID(ctx, post.ID).Return(post, nil)
		postRepo.EXPECT().Update(ctx, mock.MatchedBy(func(p *entity.Post) bool {
			return p.Title == "New title" && p.Content == "Old content" && p.UpdatedAt != nil && p.UpdatedAt.Equal(fixedNow)
		})).Return(nil)
		userRepo.EXPECT().FindByIDs(ctx, []uuid.UUID{alice.ID}).Return(map[uuid.UUID]*entity.User{alice.ID: alice}, nil)

		view, err := svc.Update(ctx, post.ID, alice.ID, &usecase.UpdatePostInput{
			Title:   ptr("New title"),
			Content: ptr("   "),
		})
		require.NoError(t, err)
		assert.Equal(t, "New title", view.Title)
		assert.Equal(t, "Old content", view.Content)
		require.NotNil(t, view.UpdatedAt)
		assert.Equal(t, fixedNow, *view.UpdatedAt)
	})

	t.Run("rejects non-owner", func(t *testing.T) {
		svc, _, postRepo := newTestPostService(t)
		post := newPost()

		postRepo.EXPECT().FindByID(ctx, post.ID).Return(post, nil)

		_, err := svc.Update(ctx, post.ID, uuid.New(), &usecase.UpdatePostInput{Title: ptr("Hijacked")})
		assert.ErrorIs(t, err, domainerrors.ErrPostOwnershipViolation)
		assert.Equal(t, "Old title", post.Title)
	})

	t.Run("not found", func(t *testing.T) {
		svc, _, postRepo := newTestPostService(t)
		missing := uuid.New()

		postRepo.EXPECT().FindByID(ctx, missing).Return(nil, repository.ErrPostNotFound)

		_, err := svc.Update(ctx, missing, alice.ID, &usecase.UpdatePostInput{Title: ptr("x")})
		assert.ErrorIs(t, err, domainerrors.ErrPostNotFound)
	})
}

func TestPostService_Delete(t *testing.T) {
	ctx := context.Background()
	ownerID := uuid.New()

	t.Run("owner deletes", func(t *testing.T) {
		svc, _, postRepo := newTestPostService(t)
		post := &entity.Post{ID: uuid.New(), OwnerID: ownerID}

		postRepo.EXPECT().FindByID(ctx, post.ID).Return(post, nil)
		postRepo.EXPECT().Delete(ctx, post.ID).Return(nil)

		require.NoError(t, svc.Delete(ctx, post.ID, ownerID))
	})

	t.Run("non-owner is rejected", func(t *testing.T) {
		svc, _, postRepo := newTestPostService(t)
		post := &entity.Post{ID: uuid.New(), OwnerID: ownerID}

		postRepo.EXPECT().FindByID(ctx, post.ID).Return(post, nil)

		err := svc.Delete(ctx, post.ID, uuid.New())
		assert.ErrorIs(t, err, domainerrors.ErrPostOwnershipViolation)
	})

	t.Run("already deleted", func(t *testing.T) {
		svc, _, postRepo := newTestPostService(t)
		missing := uuid.New()

		postRepo.EXPECT().FindByID(ctx, missing).Return(nil, repository.ErrPostNotFound)

		err := svc.Delete(ctx, missing, ownerID)
		assert.ErrorIs(t, err, domainerrors.ErrPostNotFound)
	})
}
