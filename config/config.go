package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
)

// Config holds all configuration for the application
type Config struct {
	// Server
	Port            string        `envconfig:"PORT" default:"8080"`
	ReadTimeout     time.Duration `envconfig:"READ_TIMEOUT" default:"10s"`
	WriteTimeout    time.Duration `envconfig:"WRITE_TIMEOUT" default:"20s"`
	IdleTimeout     time.Duration `envconfig:"IDLE_TIMEOUT" default:"60s"`
	ShutdownTimeout time.Duration `envconfig:"SHUTDOWN_TIMEOUT" default:"15s"`
	CORSOrigins     string        `envconfig:"CORS_ORIGINS"`

	// Database
	DBDriver    string `envconfig:"DB_DRIVER" default:"mysql"`
	MySQLURL    string `envconfig:"MYSQL_URL"`
	DatabaseURL string `envconfig:"DATABASE_URL"`
	DBUser      string `envconfig:"DB_USER" default:"root"`
	DBPass      string `envconfig:"DB_PASS"`
	DBHost      string `envconfig:"DB_HOST" default:"127.0.0.1"`
	DBPort      string `envconfig:"DB_PORT" default:"3306"`
	DBName      string `envconfig:"DB_NAME" default:"facility_booking"`
	PostgresDSN string `envconfig:"POSTGRES_DSN"`
	DBLogLevel  string `envconfig:"DB_LOG_LEVEL" default:"warn"`
	SeedFile    string `envconfig:"SEED_FILE"`

	// Logging / metrics
	LogLevel         string `envconfig:"LOG_LEVEL" default:"info"`
	MetricsNamespace string `envconfig:"METRICS_NAMESPACE" default:"facility_booking"`

	// Business
	Timezone string `envconfig:"TIMEZONE" default:"Asia/Seoul"`

	// Authorization (tokens are issued by the auth service)
	JWTSecret       string   `envconfig:"JWT_SECRET"`
	BulkActionRoles []string `envconfig:"BULK_ACTION_ROLES" default:"ADMIN,MANAGER"`

	// Messaging
	RabbitURL       string `envconfig:"RABBIT_URL"`
	BookingExchange string `envconfig:"BOOKING_EXCHANGE" default:"booking.exchange"`
}

// Load reads .env when present and decodes the environment into Config.
// The bool reports whether a .env file was loaded.
func Load() (Config, bool, error) {
	loadedDotenv := godotenv.Load() == nil

	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return Config{}, loadedDotenv, fmt.Errorf("process env: %w", err)
	}

	cfg.DBDriver = strings.ToLower(strings.TrimSpace(cfg.DBDriver))
	switch cfg.DBDriver {
	case "mysql", "postgres":
	default:
		return Config{}, loadedDotenv, fmt.Errorf("unsupported DB_DRIVER %q", cfg.DBDriver)
	}
	if _, err := cfg.Location(); err != nil {
		return Config{}, loadedDotenv, err
	}
	return cfg, loadedDotenv, nil
}

// Location resolves the business time zone used for zone-less timestamps.
func (c Config) Location() (*time.Location, error) {
	tz := strings.TrimSpace(c.Timezone)
	if tz == "" {
		return time.UTC, nil
	}
	loc, err := time.LoadLocation(tz)
	if err != nil {
		return nil, fmt.Errorf("load timezone %q: %w", tz, err)
	}
	return loc, nil
}

// CORSOriginList splits CORS_ORIGINS, defaulting to "*".
func (c Config) CORSOriginList() []string {
	raw := strings.TrimSpace(c.CORSOrigins)
	if raw == "" {
		return []string{"*"}
	}

	parts := strings.Split(raw, ",")
	origins := make([]string, 0, len(parts))
	for _, part := range parts {
		origin := strings.TrimSpace(part)
		if origin != "" {
			origins = append(origins, origin)
		}
	}
	if len(origins) == 0 {
		return []string{"*"}
	}
	return origins
}
