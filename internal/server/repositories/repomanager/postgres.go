// Package repomanager provides a concrete RepositoryManager for PostgreSQL,
// wiring together repository constructors and database migrations (via goose).
package repomanager

import (
	"context"
	"database/sql"

	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/lojabox/lojabox/internal/dbx"
	"github.com/lojabox/lojabox/internal/server/migrations"
	"github.com/lojabox/lojabox/internal/server/repositories/products"
	"github.com/lojabox/lojabox/internal/server/repositories/profiles"
	"github.com/lojabox/lojabox/internal/server/repositories/refreshtokens"
	"github.com/lojabox/lojabox/internal/server/repositories/users"
	"github.com/pressly/goose/v3"
)

// PostgresRepositoryManager vends PostgreSQL-backed repository
// implementations and exposes a schema migration hook.
type PostgresRepositoryManager struct{}

// Users returns a users.Repository bound to the provided DBTX.
func (m *PostgresRepositoryManager) Users(db dbx.DBTX) users.Repository {
	return users.NewPostgresRepository(db)
}

// RefreshTokens returns a refreshtokens.Repository bound to the provided DBTX.
func (m *PostgresRepositoryManager) RefreshTokens(db dbx.DBTX) refreshtokens.Repository {
	return refreshtokens.NewPostgresRepository(db)
}

// Profiles returns a profiles.Repository bound to the provided DBTX.
func (m *PostgresRepositoryManager) Profiles(db dbx.DBTX) profiles.Repository {
	return profiles.NewPostgresRepository(db)
}

// Products returns a products.Repository bound to the provided DBTX.
func (m *PostgresRepositoryManager) Products(db dbx.DBTX) products.Repository {
	return products.NewPostgresRepository(db)
}

// gooseUpContext is a seam for testing goose.UpContext.
var gooseUpContext = func(ctx context.Context, db *sql.DB, dir string, opts ...goose.OptionsFunc) error {
	return goose.UpContext(ctx, db, dir, opts...)
}

// RunMigrations sets up goose with the embedded migrations and runs them
// against the provided database connection.
func (m *PostgresRepositoryManager) RunMigrations(ctx context.Context, db *sql.DB) error {
	goose.SetBaseFS(migrations.Migrations)
	goose.SetDialect("pgx")
	if err := gooseUpContext(ctx, db, "."); err != nil {
		return err
	}
	return nil
}

// NewPostgresRepositoryManager constructs a PostgreSQL-backed RepositoryManager.
func NewPostgresRepositoryManager() RepositoryManager {
	return &PostgresRepositoryManager{}
}
