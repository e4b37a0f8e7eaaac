package ports

import (
	"context"
	"time"

	"odyssey/internal/model"
	"odyssey/internal/security"
)

// TokenCodec : signs and verifies access tokens
type TokenCodec interface {
	Sign(identity string, ttl time.Duration) (string, error)
	Verify(token string) (*security.Claims, error)
}

// SessionRegistry : durable record of live refresh records, one per identity
type SessionRegistry interface {
	Issue(ctx context.Context, identity string) (*model.RefreshRecord, error)
	IsValid(ctx context.Context, identity string) (bool, error)
	Revoke(ctx context.Context, identity string) error
	PurgeExpired(ctx context.Context, maxAge time.Duration) (int64, error)
}
