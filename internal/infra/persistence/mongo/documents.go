package mongo

import (
	"time"

	"quill/internal/domain/entity"

	"github.com/google/uuid"
	"github.com/pkg/errors"
)

// IDs are stored in their canonical string form. For UUIDv7 the string order matches
// the creation order, which keeps the (createdAt, _id) sort stable.
type userDocument struct {
	ID           string    `bson:"_id"`
	Email        string    `bson:"email"`
	Name         string    `bson:"name"`
	PasswordHash string    `bson:"passwordHash"`
	CreatedAt    time.Time `bson:"createdAt"`
	UpdatedAt    time.Time `bson:"updatedAt"`
}

type postDocument struct {
	ID        string     `bson:"_id"`
	OwnerID   string     `bson:"ownerId"`
	Title     string     `bson:"title"`
	Content   string     `bson:"content"`
	CreatedAt time.Time  `bson:"createdAt"`
	UpdatedAt *time.Time `bson:"updatedAt,omitempty"`
}

func fromUserDomain(user *entity.User) *userDocument {
	return &userDocument{
		ID:           user.ID.String(),
		Email:        entity.NormalizeEmail(user.Email),
		Name:         user.Name,
		PasswordHash: user.PasswordHash,
		CreatedAt:    user.CreatedAt.UTC(),
		UpdatedAt:    user.UpdatedAt.UTC(),
	}
}

func (d *userDocument) toDomain() (*entity.User, error) {
	id, err := uuid.Parse(d.ID)
	if err != nil {
		return nil, errors.Wrapf(err, "invalid user id %q", d.ID)
	}

	return &entity.User{
		ID:           id,
		Email:        d.Email,
		Name:         d.Name,
		PasswordHash: d.PasswordHash,
		CreatedAt:    d.CreatedAt,
		UpdatedAt:    d.UpdatedAt,
	}, nil
}

func fromPostDomain(post *entity.Post) *postDocument {
	doc := &postDocument{
		ID:        post.ID.String(),
		OwnerID:   post.OwnerID.String(),
		Title:     post.Title,
		Content:   post.Content,
		CreatedAt: post.CreatedAt.UTC(),
	}
	if post.UpdatedAt != nil {
		updatedAt := post.UpdatedAt.UTC()
		doc.UpdatedAt = &updatedAt
	}

	return doc
}

func (d *postDocument) toDomain() (*entity.Post, error) {
	id, err := uuid.Parse(d.ID)
	if err != nil {
		return nil, errors.Wrapf(err, "invalid post id %q", d.ID)
	}
	ownerID, err := uuid.Parse(d.OwnerID)
	if err != nil {
		return nil, errors.Wrapf(err, "invalid owner id %q", d.OwnerID)
	}

	return &entity.Post{
		ID:        id,
		OwnerID:   ownerID,
		Title:     d.Title,
		Content:   d.Content,
		CreatedAt: d.CreatedAt,
		UpdatedAt: d.UpdatedAt,
	}, nil
}
