package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"os"
	"strings"
	"time"

	"github.com/alexivanou/weather-widget/internal/config"
	"github.com/alexivanou/weather-widget/internal/model"
	"github.com/alexivanou/weather-widget/internal/openweather"
	"github.com/alexivanou/weather-widget/internal/widget"
	"go.uber.org/zap"
)

func main() {
	var (
		city    = flag.String("city", "", "City to look up, e.g. London or London,GB")
		lat     = flag.Float64("lat", 0, "Latitude, used with -lon when -city is empty")
		lon     = flag.Float64("lon", 0, "Longitude, used with -lat when -city is empty")
		format  = flag.String("format", "text", "Output format: json or text")
		units   = flag.String("units", "", "Override OPENWEATHER_UNITS: standard, metric or imperial")
		timeout = flag.Duration("timeout", 30*time.Second, "Overall deadline for the lookup")
		watch   = flag.Bool("watch", false, "Log every widget state change")
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
	if *units != "" {
		cfg.Weather.Units = *units
	}
	if err := cfg.Weather.Validate(); err != nil {
		logger.Fatal("Invalid weather configuration", zap.Error(err))
	}

	byCoord := *city == ""
	if byCoord && !flagSet("lat") && !flagSet("lon") {
		fmt.Fprintln(os.Stderr, "either -city or -lat and -lon is required")
		flag.Usage()
		os.Exit(2)
	}

	w := widget.New(openweather.NewClient(cfg.Weather, nil), logger, widget.Options{
		ParallelFetch: cfg.Weather.ParallelFetch,
	})

	if *watch {
		states, cancel := w.Subscribe()
		defer cancel()
		go func() {
			for s := range states {
				logger.Debug("Widget state changed",
					zap.Bool("loading", s.Loading),
					zap.Bool("has_report", s.Report != nil),
				)
			}
		}()
	}

	ctx, cancel := context.WithTimeout(context.Background(), *timeout)
	defer cancel()

	if byCoord {
		if err := w.FetchReportByCoord(ctx, *lat, *lon); err != nil {
			logger.Error("Failed to fetch weather report", zap.Error(err))
		}
	} else {
		w.FetchReport(ctx, *city)
	}

	report := w.Report()
	if report == nil {
		os.Exit(1)
	}

	switch *format {
	case "json":
		encoder := json.NewEncoder(os.Stdout)
		encoder.SetIndent("", "  ")
		if err := encoder.Encode(report); err != nil {
			logger.Fatal("Failed to encode report", zap.Error(err))
		}
	case "text":
		printReport(report, cfg.Weather.Units)
	default:
		logger.Fatal("Unknown output format", zap.String("format", *format))
	}
}

func flagSet(name string) bool {
	found := false
	flag.Visit(func(f *flag.Flag) {
		if f.Name == name {
			found = true
		}
	})
	return found
}

func printReport(r *model.WeatherReport, units string) {
	temp, speed := "K", "m/s"
	switch units {
	case "metric":
		temp = "°C"
	case "imperial":
		temp, speed = "°F", "mph"
	}

	place := r.Name
	if r.Sys.Country != "" {
		place += ", " + r.Sys.Country
	}
	fmt.Printf("%s (%.2f, %.2f)\n", place, r.Coord.Lat, r.Coord.Lon)

	if len(r.Weather) > 0 {
		desc := make([]string, 0, len(r.Weather))
		for _, c := range r.Weather {
			desc = append(desc, c.Description)
		}
		fmt.Printf("Conditions:  %s\n", strings.Join(desc, ", "))
	}
	fmt.Printf("Temperature: %.1f%s (feels like %.1f%s)\n", r.Main.Temp, temp, r.Main.FeelsLike, temp)
	if r.Main.DewPoint != nil {
		fmt.Printf("Dew point:   %.1f%s\n", *r.Main.DewPoint, temp)
	}
	fmt.Printf("Humidity:    %d%%\n", r.Main.Humidity)
	fmt.Printf("Pressure:    %d hPa\n", r.Main.Pressure)
	fmt.Printf("Wind:        %.1f %s at %d°\n", r.Wind.Speed, speed, r.Wind.Deg)
	if r.Visibility > 0 {
		fmt.Printf("Visibility:  %d m\n", r.Visibility)
	}
}
