package database

import (
	"context"
	"errors"
	"fmt"

	"github.com/alexivanou/weather-widget/internal/config"
	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database"
	"github.com/golang-migrate/migrate/v4/database/postgres"
	"github.com/golang-migrate/migrate/v4/database/sqlite3"
	_ "github.com/golang-migrate/migrate/v4/source/file"
	_ "github.com/jackc/pgx/v5/stdlib" // Postgres driver for database/sql
	"github.com/jmoiron/sqlx"
	_ "github.com/mattn/go-sqlite3"
)

// DefaultMigrationsDir is relative to the working directory of the binaries
const DefaultMigrationsDir = "migrations"

// Connect opens the saved city store described by cfg
func Connect(ctx context.Context, cfg config.DBConfig) (*sqlx.DB, error) {
	driverName := "pgx"
	if cfg.IsMemory() {
		driverName = "sqlite3"
	}

	db, err := sqlx.ConnectContext(ctx, driverName, cfg.DSN())
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	return db, nil
}

// NewMigrate builds a migrator on top of an open connection. dir holds the
// sqlite and postgres subdirectories.
func NewMigrate(db *sqlx.DB, cfg config.DBConfig, dir string) (*migrate.Migrate, error) {
	var (
		driver database.Driver
		err    error
		name   string
	)

	// Use the driver instance directly to avoid DSN parsing issues with in-memory SQLite
	if cfg.IsMemory() {
		name = "sqlite3"
		driver, err = sqlite3.WithInstance(db.DB, &sqlite3.Config{})
	} else {
		name = "postgres"
		driver, err = postgres.WithInstance(db.DB, &postgres.Config{})
	}
	if err != nil {
		return nil, fmt.Errorf("could not create %s driver: %w", name, err)
	}

	sub := "postgres"
	if cfg.IsMemory() {
		sub = "sqlite"
	}
	m, err := migrate.NewWithDatabaseInstance("file://"+dir+"/"+sub, name, driver)
	if err != nil {
		return nil, fmt.Errorf("could not create migrate instance: %w", err)
	}
	return m, nil
}

// Migrate applies all pending migrations from dir
func Migrate(db *sqlx.DB, cfg config.DBConfig, dir string) error {
	m, err := NewMigrate(db, cfg, dir)
	if err != nil {
		return err
	}
	if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return fmt.Errorf("failed to apply migrations: %w", err)
	}
	return nil
}
