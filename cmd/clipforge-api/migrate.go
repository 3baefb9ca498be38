package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/clipforge/clipforge/internal/config"
	"github.com/clipforge/clipforge/internal/store"
	"github.com/clipforge/clipforge/pkg/log"
	"github.com/clipforge/clipforge/pkg/migrations"
)

var migrationFolder string

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Apply database migrations",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.New()
		if err != nil {
			return fmt.Errorf("reading configuration: %w", err)
		}

		logger := log.InitLog(log.LevelFromString(cfg.Service.LogLevel))
		defer func() { _ = logger.Sync() }()
		undo := zap.ReplaceGlobals(logger)
		defer undo()

		if migrationFolder == "" {
			migrationFolder = cfg.Service.MigrationFolder
		}
		if migrationFolder == "" {
			return fmt.Errorf("no migration folder configured")
		}

		db, err := store.InitDB(cfg)
		if err != nil {
			return fmt.Errorf("initializing data store: %w", err)
		}

		pool, err := newPgxPool(context.Background(), cfg)
		if err != nil {
			return fmt.Errorf("creating pgx pool: %w", err)
		}
		defer pool.Close()

		if err := migrations.MigrateStore(db, migrationFolder, pool); err != nil {
			return fmt.Errorf("running migrations: %w", err)
		}

		zap.S().Info("migrations applied")
		return nil
	},
}

func init() {
	migrateCmd.Flags().StringVar(&migrationFolder, "migrations-folder", "", "folder containing the goose SQL migrations")
}
