package main

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/pgx/v5"
	_ "github.com/golang-migrate/migrate/v4/source/file"
	"github.com/shenikar/crowd_safety_engine/internal/config"
	"github.com/shenikar/crowd_safety_engine/pkg/logger"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

// @title Crowd Safety Engine API
// @version 1.0
// @description Incident coordination for mass-gathering crowd safety.
// @host localhost:8080
// @BasePath /api/v1
// @securityDefinitions.apikey ApiKeyAuth
// @in header
// @name X-API-Key
func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "crowd-safety-engine",
		Short:         "Incident coordination engine for crowd safety",
		SilenceUsage:  true,
		SilenceErrors: false,
		// Без подкоманды запускается сервер
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe()
		},
	}

	root.AddCommand(&cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API and background workers",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe()
		},
	})
	root.AddCommand(newMigrateCmd())
	return root
}

func newMigrateCmd() *cobra.Command {
	var (
		path string
		down bool
	)
	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Apply database migrations",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.LoadConfig()
			if err != nil {
				return fmt.Errorf("failed to load config: %w", err)
			}
			log := logger.New(cfg.LogLevel)
			if cfg.DatabaseURL == "" {
				return errors.New("DATABASE_URL is required for migrations")
			}
			if down {
				return migrateDown(cfg.DatabaseURL, path, log)
			}
			return runMigrations(cfg.DatabaseURL, path, log)
		},
	}
	cmd.Flags().StringVar(&path, "path", "migrations", "directory with migration files")
	cmd.Flags().BoolVar(&down, "down", false, "roll back all migrations")
	return cmd
}

func newMigrate(databaseURL, path string) (*migrate.Migrate, error) {
	migrationURL := databaseURL
	if !strings.HasPrefix(migrationURL, "pgx5://") {
		migrationURL = strings.Replace(migrationURL, "postgres://", "pgx5://", 1)
	}

	m, err := migrate.New("file://"+path, migrationURL)
	if err != nil {
		return nil, fmt.Errorf("could not create migrate instance: %w", err)
	}
	return m, nil
}

func runMigrations(databaseURL, path string, log *logrus.Logger) error {
	log.Info("Running database migrations...")

	m, err := newMigrate(databaseURL, path)
	if err != nil {
		return err
	}
	defer m.Close()

	if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return fmt.Errorf("failed to run migrations: %w", err)
	}

	log.Info("Database migrations applied successfully")
	return nil
}

func migrateDown(databaseURL, path string, log *logrus.Logger) error {
	m, err := newMigrate(databaseURL, path)
	if err != nil {
		return err
	}
	defer m.Close()

	if err := m.Down(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return fmt.Errorf("failed to roll back migrations: %w", err)
	}
	log.Info("Database migrations rolled back")
	return nil
}
