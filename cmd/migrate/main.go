package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/source/file"
	"gorm.io/gorm"

	"github.com/dwarvesf/perp-bridge/internal/store"
	pgstore "github.com/dwarvesf/perp-bridge/internal/store/kv/postgres"
	"github.com/dwarvesf/perp-bridge/internal/utils/config"
	"github.com/dwarvesf/perp-bridge/internal/utils/logger"
)

func runMigrations(db *gorm.DB, logger *logger.Logger) error {
	sqlDB, err := db.DB()
	if err != nil {
		return fmt.Errorf("failed to get database connection: %w", err)
	}

	migrationPath := fmt.Sprintf("file://%s", filepath.Join("migrations", "schema"))
	driver, err := postgres.WithInstance(sqlDB, &postgres.Config{})
	if err != nil {
		return fmt.Errorf("failed to create postgres driver: %w", err)
	}

	m, err := migrate.NewWithDatabaseInstance(migrationPath, "postgres", driver)
	if err != nil {
		return fmt.Errorf("failed to create migrate instance: %w", err)
	}

	if err := m.Up(); err != nil && err != migrate.ErrNoChange {
		return fmt.Errorf("migration failed: %w", err)
	}

	logger.Info("Migrations completed successfully")
	return nil
}

func main() {
	appConfig := config.New()
	logger := logger.New(appConfig.Environment)

	// only the postgres history backend needs a schema
	if appConfig.History.Backend != store.BackendPostgres {
		logger.Info("history backend needs no migrations", map[string]string{
			"backend": appConfig.History.Backend,
		})
		return
	}

	db, err := pgstore.Connect(appConfig)
	if err != nil {
		logger.Error("[main][Connect] failed to connect to postgres", map[string]string{
			"error": err.Error(),
		})
		os.Exit(1)
	}

	if err := runMigrations(db, logger); err != nil {
		logger.Error("[main][runMigrations] failed to run migrations", map[string]string{
			"error": err.Error(),
		})
		os.Exit(1)
	}
}
