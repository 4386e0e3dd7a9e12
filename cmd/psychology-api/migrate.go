package main

import (
	"context"

	"github.com/ranis-junior/psychology-reports/internal/store"
	"github.com/ranis-junior/psychology-reports/pkg/migrations"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Migrate the db",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, done := setupLogger()
		defer done()

		zap.S().Info("Starting migration")
		defer zap.S().Info("Db migrated")

		db, err := store.InitDB(cfg)
		if err != nil {
			zap.S().Fatalw("initializing data store", "error", err)
		}
		s := store.NewStore(db)
		defer s.Close()

		// sqlite has no bundled migrations, the schema comes from the models
		if cfg.Database.Type == "sqlite" {
			return s.InitialMigration(context.Background())
		}
		return migrations.MigrateStore(db, cfg.Service.MigrationFolder)
	},
}
