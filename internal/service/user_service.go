package service

import (
	"context"
	"fmt"

	"odyssey/internal/ports"
	"odyssey/internal/security"
)

type UserService struct {
	userRepository ports.UserRepository
	registry       ports.SessionRegistry
}

func NewUserService(userRepository ports.UserRepository, registry ports.SessionRegistry) *UserService {
	return &UserService{
		userRepository: userRepository,
		registry:       registry,
	}
}

// UpdatePassword : validates and hashes the new password before storing it
func (s *UserService) UpdatePassword(ctx context.Context, email, newPassword string) error {
	if err := ValidatePassword(newPassword); err != nil {
		return err
	}

	hash, err := security.HashPassword(newPassword)
	if err != nil {
		return fmt.Errorf("[UserService] hash password: %w", err)
	}

	if err := s.userRepository.UpdatePassword(ctx, email, hash); err != nil {
		return fmt.Errorf("[UserService] update password: %w", err)
	}
	return nil
}

// DeleteUser : revokes the session before removing the credential
func (s *UserService) DeleteUser(ctx context.Context, email string) error {
	if err := s.registry.Revoke(ctx, email); err != nil {
		return fmt.Errorf("[UserService] revoke session: %w", err)
	}

	if err := s.userRepository.DeleteUser(ctx, email); err != nil {
		return fmt.Errorf("[UserService] delete user: %w", err)
	}
	return nil
}
