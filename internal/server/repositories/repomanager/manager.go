package repomanager

import (
	"context"
	"database/sql"

	"github.com/lojabox/lojabox/internal/dbx"
	"github.com/lojabox/lojabox/internal/server/repositories/products"
	"github.com/lojabox/lojabox/internal/server/repositories/profiles"
	"github.com/lojabox/lojabox/internal/server/repositories/refreshtokens"
	"github.com/lojabox/lojabox/internal/server/repositories/users"
)

type RepositoryManager interface {
	RunMigrations(context.Context, *sql.DB) error
	Users(db dbx.DBTX) users.Repository
	RefreshTokens(db dbx.DBTX) refreshtokens.Repository
	Profiles(db dbx.DBTX) profiles.Repository
	Products(db dbx.DBTX) products.Repository
}
