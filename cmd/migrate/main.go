package main

// Run database migrations:
//   go run ./cmd/migrate

import (
	"context"
	"fmt"
	"os"

	"business-navigator/internal/shared/config"
	"business-navigator/internal/shared/storage/db"
	"business-navigator/internal/shared/telemetry"
)

func main() {
	if err := run(context.Background(), config.Load()); err != nil {
		telemetry.Error("migrate.failed", map[string]any{"error": err.Error()})
		os.Exit(1)
	}
}

func run(ctx context.Context, cfg config.Config) error {
	dialect, err := db.ParseDialect(cfg.DatabaseDriver)
	if err != nil {
		return err
	}
	dsn := cfg.DatabaseDSN()
	if dsn == "" {
		return fmt.Errorf("DATABASE_URL is required")
	}
	sqlDB, err := db.Connect(ctx, dialect, dsn, db.DefaultMigrateOptions().Merge(db.Options(cfg.DBPool)))
	if err != nil {
		return fmt.Errorf("connect database: %w", err)
	}
	defer sqlDB.Close()

	if err := db.RunMigrations(ctx, sqlDB, dialect); err != nil {
		return fmt.Errorf("run migrations: %w", err)
	}
	version, err := db.MigrationVersion(ctx, sqlDB, dialect)
	if err != nil {
		return err
	}
	telemetry.Info("migrate.done", map[string]any{"dialect": string(dialect), "version": version})
	return nil
}
