package main

import (
	"context"
	"flag"
	"log"

	"github.com/alexivanou/weather-widget/internal/config"
	"github.com/alexivanou/weather-widget/internal/database"
	"github.com/alexivanou/weather-widget/internal/repository"
	"github.com/alexivanou/weather-widget/internal/seeder"
	"go.uber.org/zap"
)

func main() {
	file := flag.String("file", "", "Seed file to read instead of SEEDER_FILE")
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
	if *file != "" {
		cfg.Seeder.File = *file
	}

	ctx := context.Background()
	db, err := database.Connect(ctx, cfg.DB)
	if err != nil {
		logger.Fatal("Failed to connect to database", zap.Error(err))
	}
	defer db.Close()

	logger.Info("Connected to database", zap.String("type", string(cfg.DB.Type)))

	// The memory store starts empty, so the schema has to exist first
	if cfg.DB.IsMemory() {
		if err := database.Migrate(db, cfg.DB, database.DefaultMigrationsDir); err != nil {
			logger.Fatal("Failed to run migrations", zap.Error(err))
		}
	}

	repos := repository.NewRepositories(db, cfg.DB.Type)

	logger.Info("Seeding saved cities...",
		zap.Strings("defaults", cfg.Seeder.DefaultCities),
		zap.String("file", cfg.Seeder.File),
	)
	n, err := seeder.Seed(ctx, seeder.NewParser(cfg.Seeder), repos.City)
	if err != nil {
		logger.Fatal("Failed to seed saved cities", zap.Error(err))
	}

	// Entries already saved are skipped by the insert
	logger.Info("Seeding completed", zap.Int("entries", n))
}
