package testhelpers

import (
	"database/sql"
	"embed"
	"errors"
	"fmt"

	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database/postgres"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	"go.uber.org/zap"
)

//go:embed migrations/*.sql
var catalogMigrations embed.FS

// CatalogSchema is the schema created by the catalog fixture migrations.
const CatalogSchema = "shop"

// RunCatalogMigrations creates the fixture catalog (customers, orders, users, profiles,
// products, order_lines) in the shop schema. It is idempotent.
func RunCatalogMigrations(db *sql.DB, logger *zap.Logger) error {
	source, err := iofs.New(catalogMigrations, "migrations")
	if err != nil {
		return fmt.Errorf("failed to open embedded migrations: %w", err)
	}

	driver, err := postgres.WithInstance(db, &postgres.Config{})
	if err != nil {
		return fmt.Errorf("failed to create migration driver: %w", err)
	}

	m, err := migrate.NewWithInstance("iofs", source, "postgres", driver)
	if err != nil {
		return fmt.Errorf("failed to create migration instance: %w", err)
	}

	defer func() {
		srcErr, dbErr := m.Close()
		if srcErr != nil {
			logger.Warn("Failed to close migration source", zap.Error(srcErr))
		}
		if dbErr != nil {
			logger.Warn("Failed to close migration database", zap.Error(dbErr))
		}
	}()

	err = m.Up()
	if errors.Is(err, migrate.ErrNoChange) {
		logger.Info("No catalog migrations to apply")
		return nil
	}
	if err != nil {
		return fmt.Errorf("failed to run catalog migrations: %w", err)
	}

	version, _, _ := m.Version()
	logger.Info("Applied catalog migrations", zap.Uint("version", version))
	return nil
}
