package cli

import (
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"tradejournal-billing/config"
	"tradejournal-billing/database"
	"tradejournal-billing/internal/infra/logging"
)

func newMigrateCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Database migration tools",
	}
	cmd.AddCommand(
		&cobra.Command{
			Use:   "up",
			Short: "Apply all pending migrations",
			RunE: func(cmd *cobra.Command, args []string) error {
				return withDB(func(deps *migrateDeps) error {
					return database.Migrate(deps.db, deps.log)
				})
			},
		},
		&cobra.Command{
			Use:   "status",
			Short: "Show migration status",
			RunE: func(cmd *cobra.Command, args []string) error {
				return withDB(func(deps *migrateDeps) error {
					return database.MigrationStatus(deps.db)
				})
			},
		},
	)
	return cmd
}

type migrateDeps struct {
	db  *gorm.DB
	log *zap.Logger
}

func withDB(fn func(*migrateDeps) error) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	log, err := logging.New(cfg.LogLevel, cfg.LogFormat)
	if err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}
	defer func() { _ = log.Sync() }()

	db, err := database.Open(cfg.DBURL, log)
	if err != nil {
		return err
	}
	sqlDB, err := db.DB()
	if err == nil {
		defer sqlDB.Close()
	}
	return fn(&migrateDeps{db: db, log: log})
}
