package repomanager

import (
	"context"
	"database/sql"

	"contacthub/internal/dbx"
	"contacthub/internal/server/repositories/contacts"
	"contacthub/internal/server/repositories/users"
)

// RepositoryManager vends repository implementations bound to a DBTX, so
// services can run the same repository code against *sql.DB or inside a
// transaction, and exposes a schema migration hook.
type RepositoryManager interface {
	Users(db dbx.DBTX) users.Repository
	Contacts(db dbx.DBTX) contacts.Repository
	RunMigrations(ctx context.Context, db *sql.DB) error
}
