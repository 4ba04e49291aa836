// Package dbtest opens migrated in-memory databases for repository tests.
package dbtest

import (
	"context"
	"database/sql"
	"testing"

	"github.com/stretchr/testify/require"

	"business-navigator/internal/shared/storage/db"
)

// OpenSQLite returns an in-memory sqlite database with all migrations applied.
func OpenSQLite(t testing.TB) *sql.DB {
	t.Helper()
	ctx := context.Background()
	database, err := db.Connect(ctx, db.SQLite, ":memory:", db.DefaultServerOptions())
	require.NoError(t, err)
	t.Cleanup(func() { _ = database.Close() })
	require.NoError(t, db.RunMigrations(ctx, database, db.SQLite))
	return database
}
