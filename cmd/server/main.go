package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"bikeshare-dashboard/internal/config"
	"bikeshare-dashboard/internal/dataset"
	"bikeshare-dashboard/internal/handlers"
	"bikeshare-dashboard/internal/render"
	"bikeshare-dashboard/internal/repository"
	"bikeshare-dashboard/internal/services"
	"bikeshare-dashboard/pkg/database"
	"bikeshare-dashboard/pkg/logging"
	"bikeshare-dashboard/pkg/metrics"
)

const version = "1.0.0"

func main() {
	// Load configuration
	cfg, err := config.LoadConfig()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	if err := cfg.Validate(); err != nil {
		fmt.Fprintf(os.Stderr, "Invalid configuration: %v\n", err)
		os.Exit(1)
	}

	logger := logging.NewStructuredLogger("bikeshare-api", version, logging.ParseLevel(cfg.Logging.Level))

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	logger.Info(ctx, "[STARTUP] Starting bike sharing dashboard API server", logging.Fields{
		"version":        version,
		"server_host":    cfg.Server.Host,
		"server_port":    cfg.Server.Port,
		"dataset_source": cfg.Dataset.Source,
		"dataset_path":   cfg.Dataset.Path,
	})

	metricsCollector := metrics.NewCollector("bikeshare", nil)

	policy := dataset.DropInvalidDates
	if cfg.Dataset.RejectInvalidDates {
		policy = dataset.RejectInvalidDates
	}
	loader := dataset.NewLoader(policy, logger, metricsCollector)

	// The dataset comes from the CSV file, or from the rentals table filled by the ingester
	var (
		source       dataset.Source
		statsService *services.StatisticsService
	)
	switch cfg.Dataset.Source {
	case config.SourcePostgres:
		db, err := database.NewPostgresDB(cfg.DatabaseConfig(), logger, metricsCollector)
		if err != nil {
			logger.Fatal(ctx, "[STARTUP_ERROR] Failed to connect to database", logging.Fields{}, err)
		}
		defer db.Close()

		rentalRepo := repository.NewRentalRepository(db, logger, metricsCollector)
		source = dataset.NewStoreSource("postgres:"+cfg.Database.Database, rentalRepo)
		statsService = services.NewStatisticsService(rentalRepo, logger, metricsCollector)
	default:
		source = dataset.NewFileSource(cfg.Dataset.Path, loader)
	}

	cache := dataset.NewCache(source, logger, metricsCollector)

	if cfg.Dataset.Source == config.SourceCSV && !cfg.Dataset.DisableWatch {
		if err := cache.WatchFile(ctx, cfg.Dataset.Path); err != nil {
			logger.Warn(ctx, "[STARTUP_WARNING] Dataset file watch disabled", logging.Fields{
				"path":  cfg.Dataset.Path,
				"error": err.Error(),
			})
		}
	}

	// Warm the cache; a failure here is reported per request rather than fatal
	if _, err := cache.Get(ctx); err != nil {
		logger.Warn(ctx, "[STARTUP_WARNING] Initial dataset load failed", logging.Fields{
			"source": source.Name(),
			"error":  err.Error(),
		})
	}

	dashboardService := services.NewDashboardService(cache, logger, metricsCollector)
	renderer := render.NewRenderer(cfg.Charts.WidthInches, cfg.Charts.HeightInches, metricsCollector)

	dashboardHandler := handlers.NewDashboardHandler(dashboardService, statsService, renderer, logger, metricsCollector)

	router := mux.NewRouter()
	dashboardHandler.RegisterRoutes(router)

	// Prometheus metrics endpoint
	router.Handle("/metrics", promhttp.Handler())

	server := &http.Server{
		Addr:         fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port),
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	go func() {
		logger.Info(ctx, "[SERVER_START] HTTP server listening", logging.Fields{
			"address": server.Addr,
		})

		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal(ctx, "[SERVER_ERROR] Server failed", logging.Fields{}, err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info(ctx, "[SHUTDOWN] Shutting down server...", logging.Fields{})

	// stops the file watcher
	cancel()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error(shutdownCtx, "[SHUTDOWN_ERROR] Server forced to shutdown", logging.Fields{}, err)
	}

	logger.Info(shutdownCtx, "[SHUTDOWN_COMPLETE] Server stopped", logging.Fields{})
}
