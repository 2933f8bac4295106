package store

import (
	"context"
	"errors"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"inkwell/models"
)

var (
	ErrNotFound        = errors.New("document not found")
	ErrInvalidCategory = errors.New("category is not supported")
)

// UserUpdate is a partial update; nil fields are left untouched.
type UserUpdate struct {
	Name     *string
	Email    *string
	Password *string
	Avatar   *string
}

type UserStore interface {
	Create(ctx context.Context, user *models.User) error
	FindByEmail(ctx context.Context, email string) (*models.User, error)
	FindByID(ctx context.Context, id primitive.ObjectID) (*models.User, error)
	UpdateByID(ctx context.Context, id primitive.ObjectID, upd UserUpdate) (*models.User, error)
	FindAll(ctx context.Context) ([]models.User, error)
	// IncrementPosts adjusts the denormalized post counter. It is a separate
	// step from post create/delete, so a failure in between drifts the count.
	IncrementPosts(ctx context.Context, id primitive.ObjectID, delta int) error
}

// PostUpdate is a partial update; nil fields are left untouched.
type PostUpdate struct {
	Title       *string
	Category    *string
	Description *string
	Thumbnail   *string
}

type PostStore interface {
	Create(ctx context.Context, post *models.Post) error
	FindByID(ctx context.Context, id primitive.ObjectID) (*models.Post, error)
	// FindAll returns posts sorted by most recent update first.
	FindAll(ctx context.Context) ([]models.Post, error)
	// FindByCreator returns the creator's posts, newest created first.
	FindByCreator(ctx context.Context, creator primitive.ObjectID) ([]models.Post, error)
	// FindByCategory returns posts in a category, newest created first.
	FindByCategory(ctx context.Context, category string) ([]models.Post, error)
	UpdateByID(ctx context.Context, id primitive.ObjectID, upd PostUpdate) (*models.Post, error)
	DeleteByID(ctx context.Context, id primitive.ObjectID) (bool, error)
}
