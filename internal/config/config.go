package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config holds application configuration
type Config struct {
	DB        DBConfig
	Server    ServerConfig
	Seeder    SeederConfig
	Weather   WeatherConfig
	Telemetry TelemetryConfig
}

// DBType represents database type
type DBType string

const (
	DBTypePostgreSQL DBType = "postgres"
	DBTypeMemory     DBType = "memory"
)

const (
	defaultWeatherBaseURL = "https://api.openweathermap.org"
	defaultGeoBaseURL     = "http://api.openweathermap.org"
)

// DBConfig holds database configuration for the saved city list
type DBConfig struct {
	Type     DBType
	Host     string
	Port     string
	User     string
	Password string
	Name     string
	SSLMode  string
}

// SeederConfig holds settings for the initial saved city list
type SeederConfig struct {
	// DefaultCities entries have the form "Name" or "Name:CC"
	DefaultCities []string
	File          string
}

// WeatherConfig holds OpenWeatherMap client settings
type WeatherConfig struct {
	APIKey     string
	BaseURL    string
	GeoBaseURL string
	Units      string
	Lang       string
	// Timeout of zero leaves the transport default in place
	Timeout       time.Duration
	ParallelFetch bool
}

// TelemetryConfig holds tracing settings. An empty endpoint disables export.
type TelemetryConfig struct {
	OTLPEndpoint string
	ServiceName  string
}

// DSN returns the database connection string
func (c DBConfig) DSN() string {
	if c.Type == DBTypeMemory {
		if c.Name != "" && c.Name != "weather" {
			return fmt.Sprintf("file:%s?mode=memory&cache=shared", c.Name)
		}
		return "file::memory:?cache=shared"
	}
	return fmt.Sprintf(
		"postgres://%s:%s@%s:%s/%s?sslmode=%s",
		c.User, c.Password, c.Host, c.Port, c.Name, c.SSLMode,
	)
}

// IsMemory returns true if using in-memory database
func (c DBConfig) IsMemory() bool {
	return c.Type == DBTypeMemory
}

// Validate reports whether the client has what it needs to call the API
func (c WeatherConfig) Validate() error {
	if c.APIKey == "" {
		return fmt.Errorf("OPENWEATHER_API_KEY is required")
	}
	switch c.Units {
	case "", "standard", "metric", "imperial":
	default:
		return fmt.Errorf("unsupported units %q", c.Units)
	}
	return nil
}

// ServerConfig holds server configuration
type ServerConfig struct {
	Port string
}

// Load loads configuration from environment variables
func Load() (*Config, error) {
	_ = godotenv.Load()

	dbType := DBType(getEnv("DB_TYPE", "memory"))
	if dbType != DBTypePostgreSQL && dbType != DBTypeMemory {
		dbType = DBTypeMemory
	}

	config := &Config{
		DB: DBConfig{
			Type:     dbType,
			Host:     getEnv("DB_HOST", "localhost"),
			Port:     getEnv("DB_PORT", "5432"),
			User:     getEnv("DB_USER", "weather"),
			Password: getEnv("DB_PASSWORD", "weather_password"),
			Name:     getEnv("DB_NAME", "weather"),
			SSLMode:  getEnv("DB_SSLMODE", "disable"),
		},
		Server: ServerConfig{
			Port: getEnv("APP_PORT", "8080"),
		},
		Seeder: SeederConfig{
			DefaultCities: getEnvAsSlice("SEEDER_DEFAULT_CITIES"),
			File:          getEnv("SEEDER_FILE", "data/cities.tsv"),
		},
		Weather: WeatherConfig{
			APIKey:        os.Getenv("OPENWEATHER_API_KEY"),
			BaseURL:       strings.TrimRight(getEnv("OPENWEATHER_BASE_URL", defaultWeatherBaseURL), "/"),
			GeoBaseURL:    strings.TrimRight(getEnv("OPENWEATHER_GEO_URL", defaultGeoBaseURL), "/"),
			Units:         os.Getenv("OPENWEATHER_UNITS"),
			Lang:          os.Getenv("OPENWEATHER_LANG"),
			Timeout:       getEnvAsDuration("OPENWEATHER_TIMEOUT", 0),
			ParallelFetch: getEnvAsBool("WEATHER_PARALLEL_FETCH", false),
		},
		Telemetry: TelemetryConfig{
			OTLPEndpoint: os.Getenv("OTEL_EXPORTER_OTLP_ENDPOINT"),
			ServiceName:  getEnv("OTEL_SERVICE_NAME", "weather-widget"),
		},
	}

	return config, nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if b, err := strconv.ParseBool(value); err == nil {
			return b
		}
	}
	return defaultValue
}

func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil && d >= 0 {
			return d
		}
	}
	return defaultValue
}

func getEnvAsSlice(key string) []string {
	value := os.Getenv(key)
	if value == "" {
		return nil
	}
	parts := strings.Split(value, ",")
	var result []string
	for _, part := range parts {
		trimmed := strings.TrimSpace(part)
		if trimmed != "" {
			result = append(result, trimmed)
		}
	}
	return result
}
