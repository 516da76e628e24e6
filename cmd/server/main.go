// Package main provides the forecast warnings API HTTP server.
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"

	"github.com/gin-gonic/gin"

	"github.com/khazidhea/jua-warnings-api/internal/adapter/source"
	"github.com/khazidhea/jua-warnings-api/internal/adapter/store/ncgrid"
	"github.com/khazidhea/jua-warnings-api/internal/adapter/store/rules"
	"github.com/khazidhea/jua-warnings-api/internal/alert"
	"github.com/khazidhea/jua-warnings-api/internal/config"
	httpHandler "github.com/khazidhea/jua-warnings-api/internal/http"
	"github.com/khazidhea/jua-warnings-api/internal/logging"
	"github.com/khazidhea/jua-warnings-api/internal/scheduler"
	"github.com/khazidhea/jua-warnings-api/internal/usecase"
)

const version = "0.1.0"

func main() {
	// Parse command-line flags.
	showHelp := flag.Bool("help", false, "Show usage information")
	showVersion := flag.Bool("version", false, "Show version information")
	flag.Parse()

	if *showHelp {
		printUsage()
		return
	}

	if *showVersion {
		fmt.Printf("jua-warnings-api version %s\n", version)
		return
	}

	// Load configuration from environment.
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	logger := logging.New(cfg, version, "jua-warnings-api")
	if cfg.AppEnv == "prod" {
		gin.SetMode(gin.ReleaseMode)
	}

	// Pick the dataset source: manifest endpoint when configured,
	// directory scan otherwise.
	var src usecase.Source
	if cfg.ManifestURL != "" {
		src = source.NewManifest(cfg.ManifestURL, nil)
		logger.Info("using manifest dataset source", "url", cfg.ManifestURL)
	} else {
		src = source.NewDir(cfg.DataDir)
		logger.Info("using directory dataset source", "dir", cfg.DataDir)
	}

	holder := usecase.NewDatasetHolder(src, ncgrid.Load, cfg.ForecastHorizon, logger.With("component", "holder"))

	// Load the first dataset now so most requests never see a 503. A
	// failure here is not fatal: the scheduler keeps retrying.
	if err := holder.Refresh(context.Background()); err != nil {
		logger.Warn("initial dataset load failed", "error", err)
	}

	// Warning rule store: sqlite when a path is configured, memory
	// otherwise.
	var ruleStore alert.Store
	if cfg.WarningsDBPath != "" {
		sqlite, err := rules.OpenSQLite(cfg.WarningsDBPath)
		if err != nil {
			logger.Error("failed to open warnings database", "path", cfg.WarningsDBPath, "error", err)
			os.Exit(1)
		}
		defer sqlite.Close()
		ruleStore = sqlite
		logger.Info("warnings stored in sqlite", "path", cfg.WarningsDBPath)
	} else {
		ruleStore = rules.NewMemory()
		logger.Info("warnings stored in memory")
	}

	notifier := alert.NewLogNotifier(logger.With("component", "notifier"))
	alerts := alert.NewService(ruleStore, notifier, holder, logger.With("component", "alerts"))

	// Background jobs: dataset refresh and warning sweep.
	jobs := scheduler.New(holder, alerts, cfg.RefreshInterval, cfg.SweepInterval, logger.With("component", "scheduler"))
	if err := jobs.Start(); err != nil {
		logger.Error("failed to start scheduler", "error", err)
		os.Exit(1)
	}
	defer jobs.Stop()

	// Setup router.
	router := httpHandler.SetupRouter(holder, alerts, cfg.CORSAllowedOrigins)

	// Start server.
	addr := fmt.Sprintf(":%s", cfg.Port)
	logger.Info("server listening", "addr", addr)

	if err := router.Run(addr); err != nil {
		logger.Error("server stopped", "error", err)
		os.Exit(1)
	}
}

// printUsage prints usage information.
func printUsage() {
	fmt.Printf("Jua Warnings API Server v%s\n\n", version)
	fmt.Println("USAGE:")
	fmt.Println("  jua-warnings-api [flags]")
	fmt.Println()
	fmt.Println("FLAGS:")
	fmt.Println("  -help          Show this help message")
	fmt.Println("  -version       Show version information")
	fmt.Println()
	fmt.Println("ENVIRONMENT VARIABLES:")
	fmt.Println("  PORT                    Server port (default: 8080)")
	fmt.Println("  APP_ENV                 dev or prod (default: dev)")
	fmt.Println("  LOG_LEVEL               debug, info, warn or error (default: info)")
	fmt.Println("  DATA_DIR                Directory scanned for forecast files (default: ./data)")
	fmt.Println("  MANIFEST_URL            Dataset manifest endpoint (overrides DATA_DIR)")
	fmt.Println("  REFRESH_INTERVAL        Dataset refresh cadence (default: 10m)")
	fmt.Println("  SWEEP_INTERVAL          Warning sweep cadence (default: 1h)")
	fmt.Println("  FORECAST_HORIZON        Served forecast window length (default: 48h)")
	fmt.Println("  WARNINGS_DB_PATH        SQLite file for warning rules (default: in-memory)")
	fmt.Println("  CORS_ALLOWED_ORIGINS    Comma-separated list of allowed origins (default: all origins)")
	fmt.Println()
	fmt.Println("EXAMPLES:")
	fmt.Println("  # Start server with default settings")
	fmt.Println("  jua-warnings-api")
	fmt.Println()
	fmt.Println("  # Start server on custom port")
	fmt.Println("  PORT=3000 jua-warnings-api")
	fmt.Println()
	fmt.Println("API ENDPOINTS:")
	fmt.Println("  GET    /health                   Health check")
	fmt.Println("  GET    /v1/forecast              Point forecast (lon, lat query)")
	fmt.Println("  POST   /v1/forecast              Multi-point forecast (GeoJSON body)")
	fmt.Println("  GET    /v1/forecast/parameters   Supported parameters")
	fmt.Println("  POST   /v1/warnings              Create a warning rule")
	fmt.Println("  GET    /v1/warnings              List warning rules")
	fmt.Println("  DELETE /v1/warnings/:id          Delete a warning rule")
	fmt.Println("  GET    /v1/warnings/check        Evaluate due warnings now")
	fmt.Println()
}
