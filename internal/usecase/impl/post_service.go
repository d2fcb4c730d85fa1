package impl

import (
	"context"
	"log/slog"
	"math"
	"strings"

	"quill/config"
	deliverycontext "quill/internal/delivery/context"
	"quill/internal/domain/entity"
	domainerrors "quill/internal/domain/errors"
	"quill/internal/domain/repository"
	"quill/internal/domain/service"
	"quill/internal/usecase"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"go.uber.org/fx"
)

const (
	fallbackPageSize    = 10
	fallbackMaxPageSize = 100
	maxPageIndex        = math.MaxInt32
)

// postService implements the PostUsecase interface.
type postService struct {
	userRepo    repository.UserRepository
	postRepo    repository.PostRepository
	clock       service.Clock
	defaultSize int
	maxSize     int
	logger      *slog.Logger
}

// PostServiceParams holds dependencies for PostService, injected by Fx.
type PostServiceParams struct {
	fx.In

	UserRepo repository.UserRepository
	PostRepo repository.PostRepository
	Clock    service.Clock
	Config   *config.Config
	Logger   *slog.Logger
}

// NewPostService creates a new post service instance
func NewPostService(params PostServiceParams) usecase.PostUsecase {
	defaultSize, maxSize := fallbackPageSize, fallbackMaxPageSize
	if params.Config != nil && params.Config.Pagination != nil {
		if params.Config.Pagination.DefaultSize > 0 {
			defaultSize = params.Config.Pagination.DefaultSize
		}
		if params.Config.Pagination.MaxSize > 0 {
			maxSize = params.Config.Pagination.MaxSize
		}
	}

	return &postService{
		userRepo:    params.UserRepo,
		postRepo:    params.PostRepo,
		clock:       params.Clock,
		defaultSize: min(defaultSize, maxSize),
		maxSize:     maxSize,
		logger:      params.Logger,
	}
}

func (srv *postService) log(ctx context.Context) *slog.Logger {
	return deliverycontext.GetLoggerOrDefault(ctx, srv.logger)
}

// Create publishes a new post owned by ownerID.
func (srv *postService) Create(ctx context.Context, ownerID uuid.UUID, input *usecase.CreatePostInput) (*entity.PostView, error) {
	if isBlank(input.Title) || isBlank(input.Content) {
		return nil, domainerrors.ErrValidationFailed.WithDetails("title and content are required")
	}

	owner, err := srv.userRepo.FindByID(ctx, ownerID)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return nil, domainerrors.ErrUserNotFound.WrapMessage("post owner")
		}

		return nil, errors.Wrap(err, "failed to find post owner")
	}

	postID, err := uuid.NewV7()
	if err != nil {
		return nil, errors.Wrap(err, "failed to generate post id")
	}

	post := &entity.Post{
		ID:        postID,
		OwnerID:   owner.ID,
		Title:     input.Title,
		Content:   input.Content,
		CreatedAt: timestamp(srv.clock),
	}

	if err := srv.postRepo.Create(ctx, post); err != nil {
		return nil, errors.Wrap(err, "failed to create post")
	}

	srv.log(ctx).Info("Post created", slog.String("postID", post.ID.String()), slog.String("ownerID", owner.ID.String()))

	return entity.NewPostView(post, owner.Name), nil
}

// List returns one page of all posts in publication order.
func (srv *postService) List(ctx context.Context, page, size int) (*entity.Page[*entity.PostView], error) {
	req, err := srv.pageRequest(page, size)
	if err != nil {
		return nil, err
	}

	posts, total, err := srv.postRepo.FindPage(ctx, req)
	if err != nil {
		return nil, errors.Wrap(err, "failed to list posts")
	}

	views, err := srv.toViews(ctx, posts)
	if err != nil {
		return nil, err
	}

	return entity.NewPage(views, req.Page, req.Size, total), nil
}

// ListByOwner returns one page of the posts written by ownerID.
func (srv *postService) ListByOwner(ctx context.Context, ownerID uuid.UUID, page, size int) (*entity.Page[*entity.PostView], error) {
	req, err := srv.pageRequest(page, size)
	if err != nil {
		return nil, err
	}

	posts, total, err := srv.postRepo.FindPageByOwner(ctx, ownerID, req)
	if err != nil {
		return nil, errors.Wrap(err, "failed to list posts by owner")
	}

	views, err := srv.toViews(ctx, posts)
	if err != nil {
		return nil, err
	}

	return entity.NewPage(views, req.Page, req.Size, total), nil
}

// Get returns a single post.
func (srv *postService) Get(ctx context.Context, postID uuid.UUID) (*entity.PostView, error) {
	post, err := srv.findPost(ctx, postID)
	if err != nil {
		return nil, err
	}

	views, err := srv.toViews(ctx, []*entity.Post{post})
	if err != nil {
		return nil, err
	}

	return views[0], nil
}

// Update applies the non-blank fields of input to a post owned by ownerID.
func (srv *postService) Update(ctx context.Context, postID, ownerID uuid.UUID, input *usecase.UpdatePostInput) (*entity.PostView, error) {
	post, err := srv.findOwnedPost(ctx, postID, ownerID)
	if err != nil {
		return nil, err
	}

	if input.Title != nil && !isBlank(*input.Title) {
		post.Title = *input.Title
	}
	if input.Content != nil && !isBlank(*input.Content) {
		post.Content = *input.Content
	}
	updatedAt := timestamp(srv.clock)
	post.UpdatedAt = &updatedAt

	if err := srv.postRepo.Update(ctx, post); err != nil {
		if errors.Is(err, repository.ErrPostNotFound) {
			return nil, domainerrors.ErrPostNotFound.WrapMessage("deleted during update")
		}

		return nil, errors.Wrap(err, "failed to update post")
	}

	views, err := srv.toViews(ctx, []*entity.Post{post})
	if err != nil {
		return nil, err
	}

	return views[0], nil
}

// Delete removes a post owned by ownerID.
func (srv *postService) Delete(ctx context.Context, postID, ownerID uuid.UUID) error {
	if _, err := srv.findOwnedPost(ctx, postID, ownerID); err != nil {
		return err
	}

	if err := srv.postRepo.Delete(ctx, postID); err != nil {
		if errors.Is(err, repository.ErrPostNotFound) {
			return domainerrors.ErrPostNotFound.WrapMessage("already deleted")
		}

		return errors.Wrap(err, "failed to delete post")
	}

	srv.log(ctx).Info("Post deleted", slog.String("postID", postID.String()))

	return nil
}

func (srv *postService) findPost(ctx context.Context, postID uuid.UUID) (*entity.Post, error) {
	post, err := srv.postRepo.FindByID(ctx, postID)
	if err != nil {
		if errors.Is(err, repository.ErrPostNotFound) {
			return nil, domainerrors.ErrPostNotFound.WrapMessage(postID.String())
		}

		return nil, errors.Wrap(err, "failed to find post by id")
	}

	return post, nil
}

// findOwnedPost loads a post and rejects callers other than its owner.
func (srv *postService) findOwnedPost(ctx context.Context, postID, ownerID uuid.UUID) (*entity.Post, error) {
	post, err := srv.findPost(ctx, postID)
	if err != nil {
		return nil, err
	}

	if !post.IsOwnedBy(ownerID) {
		srv.log(ctx).Warn("Rejected mutation by non-owner",
			slog.String("postID", postID.String()),
			slog.String("callerID", ownerID.String()),
		)

		return nil, domainerrors.ErrPostOwnershipViolation.WrapMessage(postID.String())
	}

	return post, nil
}

// toViews resolves author names with a single lookup.
func (srv *postService) toViews(ctx context.Context, posts []*entity.Post) ([]*entity.PostView, error) {
	views := make([]*entity.PostView, 0, len(posts))
	if len(posts) == 0 {
		return views, nil
	}

	seen := make(map[uuid.UUID]struct{}, len(posts))
	ownerIDs := make([]uuid.UUID, 0, len(posts))
	for _, post := range posts {
		if _, ok := seen[post.OwnerID]; !ok {
			seen[post.OwnerID] = struct{}{}
			ownerIDs = append(ownerIDs, post.OwnerID)
		}
	}

	owners, err := srv.userRepo.FindByIDs(ctx, ownerIDs)
	if err != nil {
		return nil, errors.Wrap(err, "failed to resolve post authors")
	}

	for _, post := range posts {
		var authorName string
		if owner, ok := owners[post.OwnerID]; ok {
			authorName = owner.Name
		} else {
			srv.log(ctx).Warn("Post author not found", slog.String("postID", post.ID.String()))
		}
		views = append(views, entity.NewPostView(post, authorName))
	}

	return views, nil
}

// pageRequest applies the default and maximum page size. Negative values are rejected.
func (srv *postService) pageRequest(page, size int) (repository.PageRequest, error) {
	if page < 0 || size < 0 {
		return repository.PageRequest{}, domainerrors.ErrValidationFailed.WithDetails("page and size must not be negative")
	}
	if page > maxPageIndex {
		return repository.PageRequest{}, domainerrors.ErrValidationFailed.WithDetails("page is out of range")
	}

	switch {
	case size == 0:
		size = srv.defaultSize
	case size > srv.maxSize:
		size = srv.maxSize
	}

	return repository.PageRequest{Page: page, Size: size}, nil
}

func isBlank(s string) bool {
	return strings.TrimSpace(s) == ""
}
