// Package plugin holds the contracts shared between modules and the core:
// the persistence store, schema migrations, and optional module interfaces.
package plugin

import (
	"context"
	"database/sql"
)

// Store is the persistence handle given to module repositories.
type Store interface {
	// DB returns the underlying handle for direct queries.
	DB() *sql.DB

	// Tx runs fn in a transaction, committing when fn returns nil.
	Tx(ctx context.Context, fn func(tx *sql.Tx) error) error

	// Migrate applies the pending migrations for one module.
	Migrate(ctx context.Context, module string, migrations []Migration) error
}

// Migration is one versioned schema step.
type Migration struct {
	Version     int
	Description string
	Up          func(tx *sql.Tx) error
}
