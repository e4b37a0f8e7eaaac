package ports

import (
	"context"

	"odyssey/internal/model"
)

// AuthenticationService : sign up, login and logout flows
type AuthenticationService interface {
	SignUp(ctx context.Context, email, password string) (*model.Session, error)
	Login(ctx context.Context, email, password string) (*model.Session, error)
	Logout(ctx context.Context, identity string) error
}
