package commands

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"task-tracker/internal/config"
	"task-tracker/internal/logger"
	"task-tracker/internal/repository"
)

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Create or update the database schema and exit",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		cfg, err := config.Load()
		if err != nil {
			return fmt.Errorf("config: %w", err)
		}
		log := logger.New(cfg.LogLevel, os.Stdout)

		store, err := repository.Open(cfg.DBDriver, cfg.DatabaseURL, log)
		if err != nil {
			return fmt.Errorf("db: %w", err)
		}
		if err := store.Close(); err != nil {
			return fmt.Errorf("close db: %w", err)
		}
		fmt.Fprintf(cmd.OutOrStdout(), "✅ Schema is up to date in %s\n", cfg.DatabaseURL)
		return nil
	},
}
