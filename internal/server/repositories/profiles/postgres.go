// Package profiles provides a PostgreSQL-backed repository for the
// loja_perfil table, the single profile row kept per user.
package profiles

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/lojabox/lojabox/internal/common"
	"github.com/lojabox/lojabox/internal/dbx"
	"github.com/lojabox/lojabox/internal/server/models"
)

// PostgresRepository implements profile storage over a dbx.DBTX
// (*sql.DB or *sql.Tx).
type PostgresRepository struct {
	db dbx.DBTX
}

// NewPostgresRepository constructs a repository bound to the given DBTX.
func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

func scanProfile(row *sql.Row) (*models.Profile, error) {
	p := &models.Profile{}
	var avatar sql.NullString
	if err := row.Scan(&p.ID, &p.UserID, &p.Name, &p.Email, &avatar, &p.Version, &p.UpdatedAt); err != nil {
		return nil, err
	}
	p.AvatarURL = avatar.String
	return p, nil
}

// GetByUserID returns the profile row for userID.
// If no row exists, it returns common.ErrorNotFound.
func (r *PostgresRepository) GetByUserID(ctx context.Context, userID string) (*models.Profile, error) {
	query := `
		SELECT id, user_id, nome, email, foto_perfil, version, updated_at
		FROM loja_perfil
		WHERE user_id = $1
	`
	p, err := scanProfile(r.db.QueryRowContext(ctx, query, userID))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrorNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}
	return p, nil
}

// Create inserts a new profile row; id, version and updated_at come back
// from the store.
func (r *PostgresRepository) Create(ctx context.Context, profile *models.Profile) (*models.Profile, error) {
	query := `
		INSERT INTO loja_perfil (user_id, nome, email)
		VALUES ($1, $2, $3)
		RETURNING id, user_id, nome, email, foto_perfil, version, updated_at
	`
	p, err := scanProfile(r.db.QueryRowContext(ctx, query, profile.UserID, profile.Name, profile.Email))
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	return p, nil
}

// Update rewrites nome and email, bumps the version and, when avatarURL is
// non-nil, replaces the stored avatar reference. The row must still be at
// expectedVersion. Profiles are never deleted, so zero matched rows means
// the version guard failed and common.ErrVersionConflict is returned.
func (r *PostgresRepository) Update(ctx context.Context, userID string, expectedVersion int64, name, email string, avatarURL *string) (*models.Profile, error) {
	query := `
		UPDATE loja_perfil
		SET nome = $1, email = $2, foto_perfil = COALESCE($3, foto_perfil),
		    version = version + 1, updated_at = now()
		WHERE user_id = $4 AND version = $5
		RETURNING id, user_id, nome, email, foto_perfil, version, updated_at
	`
	p, err := scanProfile(r.db.QueryRowContext(ctx, query, name, email, avatarURL, userID, expectedVersion))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrVersionConflict
		}
		return nil, fmt.Errorf("db error: %w", err)
	}
	return p, nil
}
