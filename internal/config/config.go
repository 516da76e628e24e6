// Package config loads the service configuration from the environment.
package config

import (
	"fmt"
	"log"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config carries everything the binaries need at startup.
type Config struct {
	AppEnv   string
	LogLevel slog.Level
	Port     string

	// DataDir is scanned for forecast files when no manifest URL is set.
	DataDir string
	// ManifestURL points at the dataset manifest endpoint. When set it
	// takes precedence over the directory scan.
	ManifestURL string

	RefreshInterval time.Duration
	SweepInterval   time.Duration
	ForecastHorizon time.Duration

	// WarningsDBPath is the sqlite file for warning rules. Empty keeps
	// rules in memory.
	WarningsDBPath string

	CORSAllowedOrigins []string
}

// Load reads the environment, after merging a .env file when present.
func Load() (Config, error) {
	if err := godotenv.Load(); err != nil {
		log.Printf("INFO: no .env file loaded: %v", err)
	}

	appEnv := getEnv("APP_ENV", "dev")
	switch appEnv {
	case "dev", "prod":
	default:
		return Config{}, fmt.Errorf("invalid APP_ENV %q (allowed: dev, prod)", appEnv)
	}

	level, err := parseLogLevel(getEnv("LOG_LEVEL", "info"))
	if err != nil {
		return Config{}, err
	}

	refreshInterval, err := getEnvDuration("REFRESH_INTERVAL", 10*time.Minute)
	if err != nil {
		return Config{}, err
	}
	sweepInterval, err := getEnvDuration("SWEEP_INTERVAL", time.Hour)
	if err != nil {
		return Config{}, err
	}
	horizon, err := getEnvDuration("FORECAST_HORIZON", 48*time.Hour)
	if err != nil {
		return Config{}, err
	}
	if horizon <= 0 {
		return Config{}, fmt.Errorf("FORECAST_HORIZON must be positive")
	}

	return Config{
		AppEnv:             appEnv,
		LogLevel:           level,
		Port:               getEnv("PORT", "8080"),
		DataDir:            getEnv("DATA_DIR", "./data"),
		ManifestURL:        os.Getenv("MANIFEST_URL"),
		RefreshInterval:    refreshInterval,
		SweepInterval:      sweepInterval,
		ForecastHorizon:    horizon,
		WarningsDBPath:     os.Getenv("WARNINGS_DB_PATH"),
		CORSAllowedOrigins: splitList(os.Getenv("CORS_ALLOWED_ORIGINS")),
	}, nil
}

// getEnv retrieves an environment variable or returns a default value.
func getEnv(key, defaultValue string) string {
	if value := strings.TrimSpace(os.Getenv(key)); value != "" {
		return value
	}
	return defaultValue
}

func getEnvDuration(key string, defaultValue time.Duration) (time.Duration, error) {
	raw := strings.TrimSpace(os.Getenv(key))
	if raw == "" {
		return defaultValue, nil
	}
	d, err := time.ParseDuration(raw)
	if err != nil {
		return 0, fmt.Errorf("invalid %s %q: %w", key, raw, err)
	}
	return d, nil
}

func splitList(raw string) []string {
	if strings.TrimSpace(raw) == "" {
		return nil
	}
	parts := strings.Split(raw, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

func parseLogLevel(s string) (slog.Level, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "debug":
		return slog.LevelDebug, nil
	case "info":
		return slog.LevelInfo, nil
	case "warn", "warning":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	default:
		return slog.LevelInfo, fmt.Errorf("invalid LOG_LEVEL %q (allowed: debug, info, warn, error)", s)
	}
}
