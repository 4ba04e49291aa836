package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"business-navigator/internal/shared/storage/db"
)

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Apply database migrations",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg := loadConfig()
		dialect, err := db.ParseDialect(cfg.DatabaseDriver)
		if err != nil {
			return err
		}
		dsn := cfg.DatabaseDSN()
		if dsn == "" {
			return fmt.Errorf("DATABASE_URL is required")
		}
		ctx := cmd.Context()
		sqlDB, err := db.Connect(ctx, dialect, dsn, db.DefaultMigrateOptions().Merge(db.Options(cfg.DBPool)))
		if err != nil {
			return err
		}
		defer sqlDB.Close()
		if err := db.RunMigrations(ctx, sqlDB, dialect); err != nil {
			return err
		}
		version, err := db.MigrationVersion(ctx, sqlDB, dialect)
		if err != nil {
			return err
		}
		if flagJSON {
			return writeJSON(out(cmd), map[string]any{"dialect": dialect, "version": version})
		}
		fmt.Fprintf(out(cmd), "%s migrated to version %d\n", dialect, version)
		return nil
	},
}
