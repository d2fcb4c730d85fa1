package mongo

import (
	"context"

	"quill/internal/domain/entity"
	domainerrors "quill/internal/domain/errors"
	"quill/internal/domain/repository"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

var postPageSort = bson.D{{Key: "createdAt", Value: 1}, {Key: "_id", Value: 1}}

type postRepository struct {
	posts *mongo.Collection
}

// NewPostRepository returns a PostRepository backed by the posts collection.
func NewPostRepository(db *mongo.Database) repository.PostRepository {
	return &postRepository{posts: db.Collection(postsCollection)}
}

func (repo *postRepository) Create(ctx context.Context, post *entity.Post) error {
	if _, err := repo.posts.InsertOne(ctx, fromPostDomain(post)); err != nil {
		return domainerrors.NewDatabaseExecuteError(err, "failed to create post")
	}

	return nil
}

func (repo *postRepository) FindByID(ctx context.Context, id uuid.UUID) (*entity.Post, error) {
	var doc postDocument
	if err := repo.posts.FindOne(ctx, bson.D{{Key: "_id", Value: id.String()}}).Decode(&doc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, repository.ErrPostNotFound
		}

		return nil, domainerrors.NewDatabaseExecuteError(err, "failed to find post by id")
	}

	return doc.toDomain()
}

func (repo *postRepository) FindPage(ctx context.Context, req repository.PageRequest) ([]*entity.Post, int64, error) {
	return repo.findPage(ctx, bson.D{}, req)
}

func (repo *postRepository) FindPageByOwner(ctx context.Context, ownerID uuid.UUID, req repository.PageRequest) ([]*entity.Post, int64, error) {
	return repo.findPage(ctx, bson.D{{Key: "ownerId", Value: ownerID.String()}}, req)
}

func (repo *postRepository) findPage(ctx context.Context, filter bson.D, req repository.PageRequest) ([]*entity.Post, int64, error) {
	total, err := repo.posts.CountDocuments(ctx, filter)
	if err != nil {
		return nil, 0, domainerrors.NewDatabaseExecuteError(err, "failed to count posts")
	}

	cursor, err := repo.posts.Find(ctx, filter, options.Find().
		SetSort(postPageSort).
		SetSkip(int64(req.Offset())).
		SetLimit(int64(req.Size)))
	if err != nil {
		return nil, 0, domainerrors.NewDatabaseExecuteError(err, "failed to list posts")
	}

	var docs []postDocument
	if err := cursor.All(ctx, &docs); err != nil {
		return nil, 0, domainerrors.NewDatabaseExecuteError(err, "failed to decode posts")
	}

	posts := make([]*entity.Post, 0, len(docs))
	for i := range docs {
		post, err := docs[i].toDomain()
		if err != nil {
			return nil, 0, err
		}
		posts = append(posts, post)
	}

	return posts, total, nil
}

func (repo *postRepository) Update(ctx context.Context, post *entity.Post) error {
	doc := fromPostDomain(post)

	result, err := repo.posts.UpdateOne(ctx,
		bson.D{{Key: "_id", Value: doc.ID}},
		bson.D{{Key: "$set", Value: bson.D{
			{Key: "title", Value: doc.Title},
			{Key: "content", Value: doc.Content},
			{Key: "updatedAt", Value: doc.UpdatedAt},
		}}},
	)
	if err != nil {
		return domainerrors.NewDatabaseExecuteError(err, "failed to update post")
	}
	if result.MatchedCount == 0 {
		return repository.ErrPostNotFound
	}

	return nil
}

func (repo *postRepository) Delete(ctx context.Context, id uuid.UUID) error {
	result, err := repo.posts.DeleteOne(ctx, bson.D{{Key: "_id", Value: id.String()}})
	if err != nil {
		return domainerrors.NewDatabaseExecuteError(err, "failed to delete post")
	}
	if result.DeletedCount == 0 {
		return repository.ErrPostNotFound
	}

	return nil
}
