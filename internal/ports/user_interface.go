package ports

import (
	"context"

	"odyssey/internal/model"
)

// UserRepository : credential store
type UserRepository interface {
	CreateUser(ctx context.Context, user *model.User) (*model.User, error)
	FindByEmail(ctx context.Context, email string) (*model.User, error)
	UpdatePassword(ctx context.Context, email, newPasswordHash string) error
	DeleteUser(ctx context.Context, email string) error
}

// UserService : account operations of a logged-in user
type UserService interface {
	UpdatePassword(ctx context.Context, email, newPassword string) error
	DeleteUser(ctx context.Context, email string) error
}
