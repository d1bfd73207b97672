package main

import (
	"errors"

	"github.com/spf13/cobra"

	"deedgate/internal/platform/database"
	"deedgate/internal/platform/logger"
)

func newMigrateCommand(cc *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Apply the embedded SQL schema to the configured database",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := cc.config()
			if err != nil {
				return err
			}
			if cfg.Database.URL == "" {
				return errors.New("database.url is not configured")
			}
			log := logger.New(cfg.LogLevel)

			pool, err := database.New(cmd.Context(), database.Config{
				URL:             cfg.Database.URL,
				MaxOpenConns:    1,
				MaxIdleConns:    1,
				ConnMaxLifetime: cfg.Database.ConnMaxLifetime,
			})
			if err != nil {
				return err
			}
			defer pool.Close()

			if err := database.Migrate(cmd.Context(), pool.DB()); err != nil {
				return err
			}
			log.Info("migrations applied")
			return nil
		},
	}
}
