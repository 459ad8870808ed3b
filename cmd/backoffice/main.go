// Package main es la CLI de backoffice: migraciones de esquema, carga del catálogo y reportes.
package main

import (
	"context"
	"fmt"
	"os"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jhoicas/printshop-api/internal/infrastructure/postgres"
	"github.com/jhoicas/printshop-api/pkg/config"
	"github.com/jhoicas/printshop-api/pkg/logger"
	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "backoffice",
	Short: "Print shop backoffice tasks",
	Long:  "Maintenance commands for the print shop API: apply the database schema, seed the service catalog and export pricing reports.",
}

func main() {
	// Cargar .env si existe
	_ = godotenv.Load()

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// connect carga la configuración y abre el pool de PostgreSQL.
func connect(ctx context.Context) (*pgxpool.Pool, *logger.Logger, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, nil, fmt.Errorf("failed to load config: %w", err)
	}
	log := logger.New(logger.Config{Env: cfg.App.Env, Level: cfg.App.LogLevel, Out: os.Stderr})
	pool, err := postgres.NewPool(ctx, cfg.DB)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to connect to database: %w", err)
	}
	return pool, log, nil
}
