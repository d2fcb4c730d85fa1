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
)

type userRepository struct {
	users *mongo.Collection
}

// NewUserRepository returns a UserRepository backed by the users collection.
func NewUserRepository(db *mongo.Database) repository.UserRepository {
	return &userRepository{users: db.Collection(usersCollection)}
}

func (repo *userRepository) Create(ctx context.Context, user *entity.User) error {
	if _, err := repo.users.InsertOne(ctx, fromUserDomain(user)); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return domainerrors.ErrEmailAlreadyExists.WrapMessage("users_email_key")
		}

		return domainerrors.NewDatabaseExecuteError(err, "failed to create user")
	}

	return nil
}

func (repo *userRepository) FindByID(ctx context.Context, id uuid.UUID) (*entity.User, error) {
	return repo.findOne(ctx, bson.D{{Key: "_id", Value: id.String()}})
}

func (repo *userRepository) FindByIDs(ctx context.Context, ids []uuid.UUID) (map[uuid.UUID]*entity.User, error) {
	users := make(map[uuid.UUID]*entity.User, len(ids))
	if len(ids) == 0 {
		return users, nil
	}

	keys := make([]string, 0, len(ids))
	for _, id := range ids {
		keys = append(keys, id.String())
	}

	cursor, err := repo.users.Find(ctx, bson.D{{Key: "_id", Value: bson.D{{Key: "$in", Value: keys}}}})
	if err != nil {
		return nil, domainerrors.NewDatabaseExecuteError(err, "failed to find users by ids")
	}

	var docs []userDocument
	if err := cursor.All(ctx, &docs); err != nil {
		return nil, domainerrors.NewDatabaseExecuteError(err, "failed to decode users")
	}

	for i := range docs {
		user, err := docs[i].toDomain()
		if err != nil {
			return nil, err
		}
		users[user.ID] = user
	}

	return users, nil
}

func (repo *userRepository) FindByEmail(ctx context.Context, email string) (*entity.User, error) {
	return repo.findOne(ctx, emailFilter(email))
}

func (repo *userRepository) ExistsByEmail(ctx context.Context, email string) (bool, error) {
	count, err := repo.users.CountDocuments(ctx, emailFilter(email))
	if err != nil {
		return false, domainerrors.NewDatabaseExecuteError(err, "failed to check email existence")
	}

	return count > 0, nil
}

// emailFilter matches the stored normalized email, so lookups ignore case and padding
// like the other backends.
func emailFilter(email string) bson.D {
	return bson.D{{Key: "email", Value: entity.NormalizeEmail(email)}}
}

func (repo *userRepository) findOne(ctx context.Context, filter bson.D) (*entity.User, error) {
	var doc userDocument
	if err := repo.users.FindOne(ctx, filter).Decode(&doc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, repository.ErrUserNotFound
		}

		return nil, domainerrors.NewDatabaseExecuteError(err, "failed to find user")
	}

	return doc.toDomain()
}
