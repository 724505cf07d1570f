package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/Rahul-J-IT/stream-app/internal/config"
	"github.com/Rahul-J-IT/stream-app/internal/database"
)

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Run pending SQL migrations for the identity store",
	RunE:  runMigrateUp,
}

var migrateCreateCmd = &cobra.Command{
	Use:   "migrate-create [name]",
	Short: "Create a timestamped pair of up/down migration files",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return database.CreateMigration(args[0])
	},
}

func init() {
	rootCmd.AddCommand(migrateCreateCmd)
}

func runMigrateUp(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("config: %w", err)
	}
	return database.MigrateUp(cfg.DatabaseURL())
}
