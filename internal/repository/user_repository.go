package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"odyssey/config"
	"odyssey/internal/model"
	"odyssey/internal/util"

	"github.com/jackc/pgerrcode"
	"github.com/lib/pq"
)

type UserRepository struct {
	*config.Database
}

func NewUserRepository(database *config.Database) *UserRepository {
	return &UserRepository{database}
}

// CreateUser : saves a new credential, a taken email gives model.ErrUserExists
func (r *UserRepository) CreateUser(ctx context.Context, user *model.User) (*model.User, error) {
	query := `
	INSERT INTO users (uuid, email, password_hash)
	VALUES ($1, $2, $3)
	RETURNING uuid, email, password_hash, created_at
	`

	createdUser := &model.User{}
	err := r.DB.QueryRowxContext(ctx, query, user.UUID, user.Email, user.PasswordHash).StructScan(createdUser)
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && string(pqErr.Code) == pgerrcode.UniqueViolation {
			return nil, fmt.Errorf("[UserRepo] %w: %s", model.ErrUserExists, user.Email)
		}
		return nil, util.LogError("[UserRepo] insert user", err)
	}

	return createdUser, nil
}

// FindByEmail : looks a credential up by email
func (r *UserRepository) FindByEmail(ctx context.Context, email string) (*model.User, error) {
	query := `SELECT uuid, email, password_hash, created_at FROM users WHERE email = $1`

	var user model.User
	err := r.DB.GetContext(ctx, &user, query, email)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("[UserRepo] %w: %s", model.ErrUserNotFound, email)
		}
		return nil, util.LogError("[UserRepo] find user by email", err)
	}

	return &user, nil
}

// UpdatePassword : replaces the password hash
func (r *UserRepository) UpdatePassword(ctx context.Context, email, newPasswordHash string) error {
	query := `UPDATE users SET password_hash = $2, updated_at = now() WHERE email = $1`

	result, err := r.DB.ExecContext(ctx, query, email, newPasswordHash)
	if err != nil {
		return util.LogError("[UserRepo] update password", err)
	}

	return expectAffected(result, email)
}

// DeleteUser : removes the credential of email
func (r *UserRepository) DeleteUser(ctx context.Context, email string) error {
	query := `DELETE FROM users WHERE email = $1`

	result, err := r.DB.ExecContext(ctx, query, email)
	if err != nil {
		return util.LogError("[UserRepo] delete user", err)
	}

	return expectAffected(result, email)
}

func expectAffected(result sql.Result, email string) error {
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return util.LogError("[UserRepo] rows affected", err)
	}
	if rowsAffected == 0 {
		return fmt.Errorf("[UserRepo] %w: %s", model.ErrUserNotFound, email)
	}
	return nil
}
