package main

import (
	"context"
	"errors"
	"flag"
	"log"

	"github.com/alexivanou/weather-widget/internal/config"
	"github.com/alexivanou/weather-widget/internal/database"
	"github.com/golang-migrate/migrate/v4"
	"go.uber.org/zap"
)

func main() {
	var (
		command = flag.String("command", "up", "Migration command: up, down, or version")
		dir     = flag.String("dir", database.DefaultMigrationsDir, "Directory holding the sqlite and postgres migrations")
	)
	flag.Parse()

	logger, err := zap.NewDevelopment()
	if err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}
	defer logger.Sync()

	cfg, err := config.Load()
	if err != nil {
		logger.Fatal("Failed to load config", zap.Error(err))
	}

	// An in-memory store only lives as long as this process; this is mostly useful for checking the files parse
	if cfg.DB.IsMemory() {
		logger.Warn("DB_TYPE is memory, migrations will not outlive this command")
	}

	db, err := database.Connect(context.Background(), cfg.DB)
	if err != nil {
		logger.Fatal("Failed to connect to database", zap.Error(err))
	}
	defer db.Close()

	// m shares db, so it is not closed separately
	m, err := database.NewMigrate(db, cfg.DB, *dir)
	if err != nil {
		logger.Fatal("Failed to create migration instance", zap.Error(err))
	}

	switch *command {
	case "up":
		logger.Info("Running migrations UP")
		if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
			logger.Fatal("Migration up failed", zap.Error(err))
		}
	case "down":
		logger.Info("Running migrations DOWN")
		if err := m.Down(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
			logger.Fatal("Migration down failed", zap.Error(err))
		}
	case "version":
		v, dirty, err := m.Version()
		if errors.Is(err, migrate.ErrNilVersion) {
			logger.Info("No migrations applied")
			return
		}
		if err != nil {
			logger.Fatal("Failed to get version", zap.Error(err))
		}
		logger.Info("Migration version", zap.Uint("version", v), zap.Bool("dirty", dirty))
	default:
		logger.Fatal("Unknown command", zap.String("command", *command))
	}

	logger.Info("Migration command completed successfully")
}
