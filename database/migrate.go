package database

import (
	"embed"
	"errors"
	"fmt"

	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database/postgres"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jackc/pgx/v5/stdlib"
	log "github.com/sirupsen/logrus"
)

//go:embed migrations/*.sql
var migrationsFS embed.FS

// MigrateUp applies every pending migration
func MigrateUp(databaseURL string) error {
	return withMigrate(databaseURL, func(m *migrate.Migrate) error {
		if err := m.Up(); err != nil {
			if errors.Is(err, migrate.ErrNoChange) {
				log.Info("No new migrations to apply")
				return nil
			}
			return fmt.Errorf("failed to run migrations: %w", err)
		}
		logVersion(m, "Schema migrated")
		return nil
	})
}

// MigrateDown rolls back the given number of migrations
func MigrateDown(databaseURL string, steps int) error {
	if steps <= 0 {
		return fmt.Errorf("steps must be positive, got %d", steps)
	}

	return withMigrate(databaseURL, func(m *migrate.Migrate) error {
		if err := m.Steps(-steps); err != nil {
			if errors.Is(err, migrate.ErrNoChange) {
				log.Info("No migrations to roll back")
				return nil
			}
			return fmt.Errorf("failed to roll back %d migrations: %w", steps, err)
		}
		logVersion(m, "Schema rolled back")
		return nil
	})
}

// MigrateStatus logs the schema version and whether it is dirty
func MigrateStatus(databaseURL string) error {
	return withMigrate(databaseURL, func(m *migrate.Migrate) error {
		version, dirty, err := m.Version()
		if errors.Is(err, migrate.ErrNilVersion) {
			log.Info("No migrations have been applied yet")
			return nil
		}
		if err != nil {
			return fmt.Errorf("failed to get migration version: %w", err)
		}

		log.WithFields(log.Fields{
			"version": version,
			"dirty":   dirty,
		}).Info("Current schema version")
		return nil
	})
}

// RunMigrationsWithURL applies pending migrations without logging.
// Test databases use it right after their container starts.
func RunMigrationsWithURL(databaseURL string) error {
	return withMigrate(databaseURL, func(m *migrate.Migrate) error {
		if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
			return fmt.Errorf("failed to run migrations: %w", err)
		}
		return nil
	})
}

func logVersion(m *migrate.Migrate, message string) {
	version, dirty, err := m.Version()
	if err != nil {
		log.Info(message)
		return
	}
	log.WithFields(log.Fields{"version": version, "dirty": dirty}).Info(message)
}

// withMigrate opens a migrate instance over the embedded migrations for the duration of fn
func withMigrate(databaseURL string, fn func(m *migrate.Migrate) error) error {
	poolConfig, err := pgxpool.ParseConfig(databaseURL)
	if err != nil {
		return fmt.Errorf("failed to parse database URL: %w", err)
	}

	db := stdlib.OpenDB(*poolConfig.ConnConfig)
	defer db.Close()

	driver, err := postgres.WithInstance(db, &postgres.Config{})
	if err != nil {
		return fmt.Errorf("failed to create postgres driver: %w", err)
	}

	source, err := iofs.New(migrationsFS, "migrations")
	if err != nil {
		return fmt.Errorf("failed to open embedded migrations: %w", err)
	}

	m, err := migrate.NewWithInstance("iofs", source, "postgres", driver)
	if err != nil {
		return fmt.Errorf("failed to create migrate instance: %w", err)
	}
	defer m.Close()

	return fn(m)
}
