package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/alexivanou/weather-widget/internal/api"
	"github.com/alexivanou/weather-widget/internal/config"
	"github.com/alexivanou/weather-widget/internal/database"
	"github.com/alexivanou/weather-widget/internal/openweather"
	"github.com/alexivanou/weather-widget/internal/repository"
	"github.com/alexivanou/weather-widget/internal/seeder"
	"github.com/alexivanou/weather-widget/internal/service"
	"github.com/alexivanou/weather-widget/internal/stats"
	"github.com/alexivanou/weather-widget/internal/telemetry"
	"github.com/alexivanou/weather-widget/internal/widget"
	"go.uber.org/zap"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	logger, err := zap.NewProduction()
	if err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}
	defer logger.Sync()

	if err := cfg.Weather.Validate(); err != nil {
		logger.Fatal("Invalid weather configuration", zap.Error(err))
	}

	ctx := context.Background()

	shutdownTracing, err := telemetry.Setup(ctx, cfg.Telemetry, logger)
	if err != nil {
		logger.Fatal("Failed to set up tracing", zap.Error(err))
	}

	db, err := database.Connect(ctx, cfg.DB)
	if err != nil {
		logger.Fatal("Failed to connect to database", zap.Error(err))
	}
	defer db.Close()
	logger.Info("Connected to database", zap.String("type", string(cfg.DB.Type)))

	if err := database.Migrate(db, cfg.DB, database.DefaultMigrationsDir); err != nil {
		logger.Fatal("Failed to run migrations", zap.Error(err))
	}

	repos := repository.NewRepositories(db, cfg.DB.Type)

	isEmpty, err := repository.IsDatabaseEmpty(ctx, db)
	if err != nil {
		logger.Warn("Failed to check if database is empty", zap.Error(err))
	} else if isEmpty {
		logger.Info("No saved cities, seeding defaults...")
		n, err := seeder.Seed(ctx, seeder.NewParser(cfg.Seeder), repos.City)
		if err != nil {
			logger.Fatal("Failed to seed saved cities", zap.Error(err))
		}
		logger.Info("Saved cities seeded", zap.Int("cities", n))
	}

	counters := &stats.FetchCounters{}
	client := openweather.NewClient(cfg.Weather, nil)
	svc := service.NewService(repos.City, client, logger, widget.Options{
		ParallelFetch: cfg.Weather.ParallelFetch,
		Recorder:      counters,
	})
	router := api.NewRouter(svc, stats.NewCollector(db, cfg.DB, counters), logger)

	srv := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		logger.Info("Starting server", zap.String("port", cfg.Server.Port))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("Server failed", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Info("Shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("Server forced to shutdown", zap.Error(err))
	}
	if err := shutdownTracing(shutdownCtx); err != nil {
		logger.Warn("Failed to flush traces", zap.Error(err))
	}

	logger.Info("Server exited")
}
