package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"os"

	"github.com/alexivanou/weather-widget/internal/config"
	"github.com/alexivanou/weather-widget/internal/database"
	"github.com/alexivanou/weather-widget/internal/stats"
	"go.uber.org/zap"
)

func main() {
	outputFormat := flag.String("format", getEnv("OUTPUT_FORMAT", "json"), "Output format: json or text")
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

	db, err := database.Connect(context.Background(), cfg.DB)
	if err != nil {
		logger.Fatal("Failed to connect to database", zap.Error(err))
	}
	defer db.Close()

	if cfg.DB.IsMemory() {
		if err := database.Migrate(db, cfg.DB, database.DefaultMigrationsDir); err != nil {
			logger.Fatal("Failed to run migrations", zap.Error(err))
		}
	}

	logger.Info("Collecting statistics...", zap.String("db_type", string(cfg.DB.Type)))

	// Lookup counters live in the server process; a standalone run reports zeros
	collector := stats.NewCollector(db, cfg.DB, nil)

	ctx := context.Background()
	statistics, err := collector.Collect(ctx)
	if err != nil {
		logger.Fatal("Failed to collect statistics", zap.Error(err))
	}

	switch *outputFormat {
	case "json":
		encoder := json.NewEncoder(os.Stdout)
		encoder.SetIndent("", "  ")
		if err := encoder.Encode(statistics); err != nil {
			logger.Fatal("Failed to encode statistics", zap.Error(err))
		}
	case "text", "human":
		printHumanReadable(statistics)
	default:
		logger.Fatal("Unknown output format", zap.String("format", *outputFormat))
	}
}

func printHumanReadable(s *stats.Stats) {
	fmt.Println("=== Application Statistics ===")
	fmt.Printf("Timestamp: %s\n", s.Timestamp.Format("2006-01-02 15:04:05"))
	fmt.Println()

	fmt.Println("--- Memory Statistics ---")
	fmt.Printf("Allocated:        %s\n", formatBytes(s.Memory.Alloc))
	fmt.Printf("Heap In Use:      %s\n", formatBytes(s.Memory.HeapInuse))
	fmt.Printf("GC Cycles:        %d\n", s.Memory.NumGC)
	fmt.Println()

	fmt.Println("--- Database Statistics ---")
	fmt.Printf("Type:            %s\n", s.Database.Type)
	fmt.Printf("Total Records:   %d\n", s.Database.TotalRecords)
	if s.Database.SizeBytes > 0 {
		fmt.Printf("Size:            %s\n", formatBytes(uint64(s.Database.SizeBytes)))
	}
	fmt.Println()
	fmt.Println("Table Statistics:")
	for _, ts := range s.Database.TableStats {
		fmt.Printf("  %-25s: %10d rows", ts.Name, ts.RowCount)
		if ts.SizeBytes > 0 {
			fmt.Printf(" (%s)", formatBytes(uint64(ts.SizeBytes)))
		}
		fmt.Println()
	}
	fmt.Println()

	fmt.Println("--- Fetch Statistics ---")
	fmt.Printf("Lookups:         %d\n", s.Fetches.Total)
	fmt.Printf("Succeeded:       %d\n", s.Fetches.Succeeded)
	fmt.Printf("Failed:          %d (%d unknown city)\n", s.Fetches.Failed, s.Fetches.NotFound)
	fmt.Println()

	fmt.Println("--- Runtime Statistics ---")
	fmt.Printf("Goroutines:      %d\n", s.Runtime.NumGoroutines)
	fmt.Printf("Uptime:          %ds\n", s.Runtime.UptimeSeconds)
}

func formatBytes(bytes uint64) string {
	const unit = 1024
	if bytes < unit {
		return fmt.Sprintf("%d B", bytes)
	}
	div, exp := int64(unit), 0
	for n := bytes / unit; n >= unit; n /= unit {
		div *= unit
		exp++
	}
	return fmt.Sprintf("%.2f %cB", float64(bytes)/float64(div), "KMGTPE"[exp])
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
