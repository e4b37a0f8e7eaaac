package repository

import (
	"context"
	"fmt"
	"time"

	"odyssey/config"
	"odyssey/internal/model"
)

// SessionRepository : refresh records in the postgres table refresh_records
type SessionRepository struct {
	*config.Database
	now func() time.Time
}

func NewSessionRepository(database *config.Database) *SessionRepository {
	return &SessionRepository{Database: database, now: time.Now}
}

// Issue : creates the refresh record of identity, replacing an existing one in a single statement
func (r *SessionRepository) Issue(ctx context.Context, identity string) (*model.RefreshRecord, error) {
	query := `
	INSERT INTO refresh_records (identity, created_at)
	VALUES ($1, $2)
	ON CONFLICT (identity) DO UPDATE SET created_at = EXCLUDED.created_at
	RETURNING identity, created_at
	`

	record := &model.RefreshRecord{}
	err := r.DB.QueryRowxContext(ctx, query, identity, r.now().UTC()).StructScan(record)
	if err != nil {
		return nil, unavailable("issue refresh record", err)
	}

	return record, nil
}

// IsValid : true when a row exists for identity
func (r *SessionRepository) IsValid(ctx context.Context, identity string) (bool, error) {
	query := `SELECT EXISTS (SELECT 1 FROM refresh_records WHERE identity = $1)`

	var exists bool
	if err := r.DB.GetContext(ctx, &exists, query, identity); err != nil {
		return false, unavailable("look up refresh record", err)
	}

	return exists, nil
}

// Revoke : deleting a missing record is not an error
func (r *SessionRepository) Revoke(ctx context.Context, identity string) error {
	query := `DELETE FROM refresh_records WHERE identity = $1`

	if _, err := r.DB.ExecContext(ctx, query, identity); err != nil {
		return unavailable("revoke refresh record", err)
	}

	return nil
}

// PurgeExpired : compares every row's own created_at with the cutoff, so rows
// issued while the sweep runs are never touched
func (r *SessionRepository) PurgeExpired(ctx context.Context, maxAge time.Duration) (int64, error) {
	query := `DELETE FROM refresh_records WHERE created_at < $1`

	result, err := r.DB.ExecContext(ctx, query, r.now().UTC().Add(-maxAge))
	if err != nil {
		return 0, unavailable("purge refresh records", err)
	}

	removed, err := result.RowsAffected()
	if err != nil {
		return 0, unavailable("purge refresh records", err)
	}

	return removed, nil
}

func unavailable(op string, err error) error {
	return fmt.Errorf("%s: %w: %w", op, model.ErrRegistryUnavailable, err)
}
