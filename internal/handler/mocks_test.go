package handler_test

import (
	"context"
	"time"

	"odyssey/internal/model"
	"odyssey/internal/security"

	"github.com/stretchr/testify/mock"
)

// MockAuthenticationService
type MockAuthenticationService struct {
	mock.Mock
}

func (m *MockAuthenticationService) SignUp(ctx context.Context, email, password string) (*model.Session, error) {
	args := m.Called(ctx, email, password)
	if s, ok := args.Get(0).(*model.Session); ok {
		return s, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockAuthenticationService) Login(ctx context.Context, email, password string) (*model.Session, error) {
	args := m.Called(ctx, email, password)
	if s, ok := args.Get(0).(*model.Session); ok {
		return s, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockAuthenticationService) Logout(ctx context.Context, identity string) error {
	args := m.Called(ctx, identity)
	return args.Error(0)
}

// MockUserService
type MockUserService struct {
	mock.Mock
}

func (m *MockUserService) UpdatePassword(ctx context.Context, email, newPassword string) error {
	args := m.Called(ctx, email, newPassword)
	return args.Error(0)
}

func (m *MockUserService) DeleteUser(ctx context.Context, email string) error {
	args := m.Called(ctx, email)
	return args.Error(0)
}

// MockAggregator
type MockAggregator struct {
	mock.Mock
}

func (m *MockAggregator) Aggregate(ctx context.Context, requests []model.PageRequest) (*model.AggregateResult, error) {
	args := m.Called(ctx, requests)
	if r, ok := args.Get(0).(*model.AggregateResult); ok {
		return r, args.Error(1)
	}
	return nil, args.Error(1)
}

// MockRegistry
type MockRegistry struct {
	mock.Mock
}

func (m *MockRegistry) IsValid(ctx context.Context, identity string) (bool, error) {
	args := m.Called(ctx, identity)
	return args.Bool(0), args.Error(1)
}

const cookieName = "access_token"

func newTestGuard(registry *MockRegistry) (*security.Guard, *security.JWTService) {
	codec := security.NewJWTService("handler-secret", "odyssey")
	guard := security.NewGuard(codec, registry, security.GuardConfig{
		CookieName: cookieName,
		TokenTTL:   time.Hour,
		LoginPath:  "/login",
	}, nil)
	return guard, codec
}

func withIdentity(ctx context.Context, identity string) context.Context {
	return context.WithValue(ctx, security.IdentityContextKey, identity)
}
