package model

import "errors"

// MaxPageChain : absolute ceiling for the number of follow-up pagination rounds
const MaxPageChain = 9

var (
	ErrNoToken             = errors.New("access token is missing")
	ErrTokenInvalid        = errors.New("access token is invalid")
	ErrSessionRevoked      = errors.New("session is revoked")
	ErrRegistryUnavailable = errors.New("session registry is unavailable")

	ErrUpstreamFailure = errors.New("upstream search failed")
	ErrUnsafeDepth     = errors.New("unsafe pagination depth")
	ErrNoPageRequests  = errors.New("no page requests")

	ErrUserExists         = errors.New("user already exists")
	ErrUserNotFound       = errors.New("user not found")
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrInvalidEmail       = errors.New("invalid email")
	ErrWeakPassword       = errors.New("password must be at least 8 characters")
	ErrPasswordTooLong    = errors.New("password must be at most 72 bytes")
)
