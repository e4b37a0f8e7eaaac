package service

import (
	"context"
	"errors"
	"fmt"
	"net/mail"
	"strings"
	"time"

	"odyssey/internal/model"
	"odyssey/internal/ports"
	"odyssey/internal/security"

	"github.com/google/uuid"
)

const (
	minPasswordLength = 8
	// bcrypt only hashes the first 72 bytes and refuses anything longer
	maxPasswordBytes = 72
)

type AuthenticationService struct {
	userRepository ports.UserRepository
	registry       ports.SessionRegistry
	tokenCodec     ports.TokenCodec
	tokenTTL       time.Duration
}

func NewAuthenticationService(
	userRepository ports.UserRepository,
	registry ports.SessionRegistry,
	tokenCodec ports.TokenCodec,
	tokenTTL time.Duration,
) *AuthenticationService {
	return &AuthenticationService{
		userRepository: userRepository,
		registry:       registry,
		tokenCodec:     tokenCodec,
		tokenTTL:       tokenTTL,
	}
}

// SignUp : creates the credential, then opens a session for it
func (s *AuthenticationService) SignUp(ctx context.Context, email, password string) (*model.Session, error) {
	email, err := NormalizeEmail(email)
	if err != nil {
		return nil, err
	}
	if err := ValidatePassword(password); err != nil {
		return nil, err
	}

	hash, err := security.HashPassword(password)
	if err != nil {
		return nil, fmt.Errorf("[AuthService] hash password: %w", err)
	}

	user, err := s.userRepository.CreateUser(ctx, &model.User{
		UUID:         uuid.New().String(),
		Email:        email,
		PasswordHash: hash,
	})
	if err != nil {
		return nil, fmt.Errorf("[AuthService] create user: %w", err)
	}

	return s.openSession(ctx, user.Email)
}

// Login : checks the password and re-issues the refresh record, replacing any previous one
func (s *AuthenticationService) Login(ctx context.Context, email, password string) (*model.Session, error) {
	email, err := NormalizeEmail(email)
	if err != nil {
		return nil, model.ErrInvalidCredentials
	}

	user, err := s.userRepository.FindByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, model.ErrUserNotFound) {
			return nil, model.ErrInvalidCredentials
		}
		return nil, fmt.Errorf("[AuthService] find user: %w", err)
	}

	if !security.CheckPassword(password, user.PasswordHash) {
		return nil, model.ErrInvalidCredentials
	}

	return s.openSession(ctx, user.Email)
}

// Logout : revokes the refresh record, every access token of the identity stops working
func (s *AuthenticationService) Logout(ctx context.Context, identity string) error {
	if err := s.registry.Revoke(ctx, identity); err != nil {
		return fmt.Errorf("[AuthService] revoke session: %w", err)
	}
	return nil
}

func (s *AuthenticationService) openSession(ctx context.Context, identity string) (*model.Session, error) {
	if _, err := s.registry.Issue(ctx, identity); err != nil {
		return nil, fmt.Errorf("[AuthService] issue refresh record: %w", err)
	}

	token, err := s.tokenCodec.Sign(identity, s.tokenTTL)
	if err != nil {
		return nil, fmt.Errorf("[AuthService] sign access token: %w", err)
	}

	return &model.Session{
		Identity:    identity,
		AccessToken: token,
		ExpiresAt:   time.Now().Add(s.tokenTTL),
	}, nil
}

// NormalizeEmail : trims and lowercases a syntactically valid address
func NormalizeEmail(email string) (string, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	address, err := mail.ParseAddress(email)
	if err != nil || address.Address != email {
		return "", model.ErrInvalidEmail
	}
	return email, nil
}

// ValidatePassword : length rules shared by sign up and password change
func ValidatePassword(password string) error {
	if len(password) < minPasswordLength {
		return model.ErrWeakPassword
	}
	if len(password) > maxPasswordBytes {
		return model.ErrPasswordTooLong
	}
	return nil
}
