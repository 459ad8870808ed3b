package main

import (
	"context"
	"fmt"

	"github.com/jhoicas/printshop-api/internal/infrastructure/postgres"
	"github.com/spf13/cobra"
)

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Apply the database schema",
	Long:  "Creates the tables, indexes and counters used by the API. Every statement is idempotent, so the command can be re-run safely.",
	RunE:  runMigrate,
}

func init() {
	rootCmd.AddCommand(migrateCmd)
}

func runMigrate(_ *cobra.Command, _ []string) error {
	ctx := context.Background()
	pool, log, err := connect(ctx)
	if err != nil {
		return err
	}
	defer pool.Close()

	if err := postgres.Migrate(ctx, pool); err != nil {
		return fmt.Errorf("failed to migrate: %w", err)
	}
	log.Info().Msg("schema up to date")
	return nil
}
