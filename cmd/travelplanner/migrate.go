package main

import (
	"fmt"

	"github.com/ahmetcoskunkizilkaya/travel-assistant/internal/config"
	"github.com/ahmetcoskunkizilkaya/travel-assistant/internal/database"
	"github.com/ahmetcoskunkizilkaya/travel-assistant/internal/store"
	"github.com/spf13/cobra"
)

var seedDemo bool

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Create or update the database tables",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg := config.Load()
		if cfg.DBPassword == "" {
			return fmt.Errorf("DB_PASSWORD environment variable is required")
		}

		db, err := database.Open(cfg)
		if err != nil {
			return err
		}
		defer func() { _ = database.Close(db) }()

		if err := database.Migrate(db); err != nil {
			return fmt.Errorf("migrate failed: %w", err)
		}
		if seedDemo {
			if err := database.SeedDemoUser(cmd.Context(), store.NewUsers(db)); err != nil {
				return fmt.Errorf("seed demo user: %w", err)
			}
		}
		fmt.Fprintln(cmd.OutOrStdout(), "migrations applied")
		return nil
	},
}

func init() {
	rootCmd.AddCommand(migrateCmd)
	migrateCmd.Flags().BoolVar(&seedDemo, "seed-demo", false, "also create the demo user")
}
