package postgres

import (
	"context"

	"quill/internal/domain/entity"
	domainerrors "quill/internal/domain/errors"
	"quill/internal/domain/repository"
	"quill/internal/infra/persistence/model"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"gorm.io/gorm"
)

const postPageOrder = "created_at ASC, id ASC"

// postRepository implements the domain.PostRepository interface using GORM.
type postRepository struct {
	db *gorm.DB
}

// NewPostRepository is the constructor for postRepository.
func NewPostRepository(db *gorm.DB) repository.PostRepository {
	return &postRepository{db: db}
}

func (repo *postRepository) Create(ctx context.Context, post *entity.Post) error {
	if err := repo.db.WithContext(ctx).Create(fromPostDomain(post)).Error; err != nil {
		if isForeignKeyConstraintViolation(err) {
			return domainerrors.ErrUserNotFound.WrapMessage("post owner does not exist")
		}

		return domainerrors.NewDatabaseExecuteError(err, "failed to create post")
	}

	return nil
}

func (repo *postRepository) FindByID(ctx context.Context, id uuid.UUID) (*entity.Post, error) {
	var postM model.PostModel
	if err := repo.db.WithContext(ctx).Where("id = ?", id).First(&postM).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, repository.ErrPostNotFound
		}

		return nil, domainerrors.NewDatabaseExecuteError(err, "failed to find post by id")
	}

	return toPostDomain(&postM), nil
}

func (repo *postRepository) FindPage(ctx context.Context, req repository.PageRequest) ([]*entity.Post, int64, error) {
	return repo.findPage(repo.db.WithContext(ctx).Model(&model.PostModel{}), req)
}

func (repo *postRepository) FindPageByOwner(ctx context.Context, ownerID uuid.UUID, req repository.PageRequest) ([]*entity.Post, int64, error) {
	return repo.findPage(repo.db.WithContext(ctx).Model(&model.PostModel{}).Where("owner_id = ?", ownerID), req)
}

func (repo *postRepository) findPage(scope *gorm.DB, req repository.PageRequest) ([]*entity.Post, int64, error) {
	var total int64
	if err := scope.Session(&gorm.Session{}).Count(&total).Error; err != nil {
		return nil, 0, domainerrors.NewDatabaseExecuteError(err, "failed to count posts")
	}

	var postMs []model.PostModel
	if err := scope.Session(&gorm.Session{}).
		Order(postPageOrder).
		Offset(req.Offset()).
		Limit(req.Size).
		Find(&postMs).Error; err != nil {
		return nil, 0, domainerrors.NewDatabaseExecuteError(err, "failed to list posts")
	}

	posts := make([]*entity.Post, 0, len(postMs))
	for i := range postMs {
		posts = append(posts, toPostDomain(&postMs[i]))
	}

	return posts, total, nil
}

// Update writes the mutable columns of the post. Ownership has already been checked by the caller.
func (repo *postRepository) Update(ctx context.Context, post *entity.Post) error {
	result := repo.db.WithContext(ctx).
		Model(&model.PostModel{}).
		Where("id = ?", post.ID).
		Updates(map[string]any{
			"title":      post.Title,
			"content":    post.Content,
			"updated_at": post.UpdatedAt,
		})
	if result.Error != nil {
		return domainerrors.NewDatabaseExecuteError(result.Error, "failed to update post")
	}
	if result.RowsAffected == 0 {
		return repository.ErrPostNotFound
	}

	return nil
}

func (repo *postRepository) Delete(ctx context.Context, id uuid.UUID) error {
	result := repo.db.WithContext(ctx).Where("id = ?", id).Delete(&model.PostModel{})
	if result.Error != nil {
		return domainerrors.NewDatabaseExecuteError(result.Error, "failed to delete post")
	}
	if result.RowsAffected == 0 {
		return repository.ErrPostNotFound
	}

	return nil
}

func fromPostDomain(post *entity.Post) *model.PostModel {
	return &model.PostModel{
		ID:        post.ID,
		OwnerID:   post.OwnerID,
		Title:     post.Title,
		Content:   post.Content,
		CreatedAt: post.CreatedAt,
		UpdatedAt: post.UpdatedAt,
	}
}

func toPostDomain(postM *model.PostModel) *entity.Post {
	return &entity.Post{
		ID:        postM.ID,
		OwnerID:   postM.OwnerID,
		Title:     postM.Title,
		Content:   postM.Content,
		CreatedAt: postM.CreatedAt,
		UpdatedAt: postM.UpdatedAt,
	}
}
