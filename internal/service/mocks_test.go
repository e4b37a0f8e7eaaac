package service_test

import (
	"context"
	"time"

	"odyssey/internal/model"
	"odyssey/internal/security"

	"github.com/stretchr/testify/mock"
)

// ===== MOCKS =====

// MockUserRepository
type MockUserRepository struct {
	mock.Mock
}

func (m *MockUserRepository) CreateUser(ctx context.Context, user *model.User) (*model.User, error) {
	args := m.Called(ctx, user)
	if u, ok := args.Get(0).(*model.User); ok {
		return u, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockUserRepository) FindByEmail(ctx context.Context, email string) (*model.User, error) {
	args := m.Called(ctx, email)
	if u, ok := args.Get(0).(*model.User); ok {
		return u, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockUserRepository) UpdatePassword(ctx context.Context, email, newPasswordHash string) error {
	args := m.Called(ctx, email, newPasswordHash)
	return args.Error(0)
}

func (m *MockUserRepository) DeleteUser(ctx context.Context, email string) error {
	args := m.Called(ctx, email)
	return args.Error(0)
}

// MockSessionRegistry
type MockSessionRegistry struct {
	mock.Mock
}

func (m *MockSessionRegistry) Issue(ctx context.Context, identity string) (*model.RefreshRecord, error) {
	args := m.Called(ctx, identity)
	if r, ok := args.Get(0).(*model.RefreshRecord); ok {
		return r, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockSessionRegistry) IsValid(ctx context.Context, identity string) (bool, error) {
	args := m.Called(ctx, identity)
	return args.Bool(0), args.Error(1)
}

func (m *MockSessionRegistry) Revoke(ctx context.Context, identity string) error {
	args := m.Called(ctx, identity)
	return args.Error(0)
}

func (m *MockSessionRegistry) PurgeExpired(ctx context.Context, maxAge time.Duration) (int64, error) {
	args := m.Called(ctx, maxAge)
	return args.Get(0).(int64), args.Error(1)
}

// MockTokenCodec
type MockTokenCodec struct {
	mock.Mock
}

func (m *MockTokenCodec) Sign(identity string, ttl time.Duration) (string, error) {
	args := m.Called(identity, ttl)
	return args.String(0), args.Error(1)
}

func (m *MockTokenCodec) Verify(token string) (*security.Claims, error) {
	args := m.Called(token)
	if c, ok := args.Get(0).(*security.Claims); ok {
		return c, args.Error(1)
	}
	return nil, args.Error(1)
}

// MockPageFetcher
type MockPageFetcher struct {
	mock.Mock
}

func (m *MockPageFetcher) Fetch(ctx context.Context, request model.PageRequest) (*model.Page, error) {
	args := m.Called(ctx, request)
	if p, ok := args.Get(0).(*model.Page); ok {
		return p, args.Error(1)
	}
	return nil, args.Error(1)
}
