package db

import (
	"context"
	"database/sql"
	"embed"
	"path"

	"github.com/pressly/goose/v3"
)

//go:embed migrations/postgres/*.sql migrations/sqlite/*.sql
var migrationFiles embed.FS

// RunMigrations applies the dialect's embedded SQL migrations via goose. If database is nil, it's a no-op.
func RunMigrations(ctx context.Context, database *sql.DB, dialect Dialect) error {
	if database == nil {
		return nil
	}
	if err := prepareGoose(dialect); err != nil {
		return err
	}
	return goose.UpContext(ctx, database, migrationDir(dialect))
}

// MigrationVersion reports the latest applied migration version.
func MigrationVersion(ctx context.Context, database *sql.DB, dialect Dialect) (int64, error) {
	if err := prepareGoose(dialect); err != nil {
		return 0, err
	}
	return goose.GetDBVersionContext(ctx, database)
}

func prepareGoose(dialect Dialect) error {
	goose.SetBaseFS(migrationFiles)
	return goose.SetDialect(dialect.GooseDialect())
}

func migrationDir(dialect Dialect) string {
	return path.Join("migrations", string(dialect))
}
