package main

import (
	"context"
	"fmt"
	"time"

	"github.com/jhoicas/printshop-api/internal/application/catalog"
	"github.com/jhoicas/printshop-api/internal/domain/specification"
	"github.com/jhoicas/printshop-api/internal/infrastructure/postgres"
	"github.com/spf13/cobra"
)

var seedCatalogCmd = &cobra.Command{
	Use:   "seed-catalog",
	Short: "Load the default sizes, papers, finishes and services",
	Long:  "Upserts the built-in catalog so a fresh database can quote immediately. Existing rows with the same ids are overwritten.",
	RunE:  runSeedCatalog,
}

var seedCatalogMigrate bool

func init() {
	seedCatalogCmd.Flags().BoolVar(&seedCatalogMigrate, "migrate", false, "Apply the schema before seeding")
	rootCmd.AddCommand(seedCatalogCmd)
}

func runSeedCatalog(_ *cobra.Command, _ []string) error {
	ctx := context.Background()
	pool, log, err := connect(ctx)
	if err != nil {
		return err
	}
	defer pool.Close()

	if seedCatalogMigrate {
		if err := postgres.Migrate(ctx, pool); err != nil {
			return fmt.Errorf("failed to migrate: %w", err)
		}
	}

	cat := specification.DefaultCatalog()
	services := catalog.DefaultServices(time.Now())
	if err := catalog.Seed(ctx, postgres.NewCatalogRepository(pool), cat, services); err != nil {
		return fmt.Errorf("failed to seed catalog: %w", err)
	}
	log.Info().
		Int("sizes", len(cat.SizePresets)).
		Int("papers", len(cat.PaperTypes)).
		Int("finishes", len(cat.FinishOptions)).
		Int("services", len(services)).
		Msg("catalog seeded")
	return nil
}
