package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"strings"

	"bikeshare-dashboard/internal/config"
	"bikeshare-dashboard/internal/dataset"
	"bikeshare-dashboard/internal/repository"
	"bikeshare-dashboard/internal/services"
	"bikeshare-dashboard/pkg/database"
	"bikeshare-dashboard/pkg/logging"
	"bikeshare-dashboard/pkg/metrics"
)

func main() {
	dataPath := flag.String("data", "./main_data.csv", "CSV file, or directory of *.csv files, to ingest")
	batchSize := flag.Int("batch-size", 500, "Number of records to write in each transaction")
	calculateStats := flag.Bool("calculate-stats", false, "Store per-season weekday statistics after ingestion")
	strictDates := flag.Bool("strict-dates", false, "Fail a file on the first unparseable date instead of skipping the row")
	flag.Parse()

	cfg, err := config.LoadConfig()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	logger := logging.NewStructuredLogger("bikeshare-ingester", "1.0.0", logging.ParseLevel(cfg.Logging.Level))

	ctx := context.Background()
	logger.Info(ctx, "[INGESTER_START] Starting rental data ingestion", logging.Fields{
		"version":         "1.0.0",
		"data":            *dataPath,
		"batch_size":      *batchSize,
		"calculate_stats": *calculateStats,
		"strict_dates":    *strictDates,
	})

	metricsCollector := metrics.NewCollector("bikeshare_ingester", nil)

	db, err := database.NewPostgresDB(cfg.DatabaseConfig(), logger, metricsCollector)
	if err != nil {
		logger.Fatal(ctx, "[INGESTER_ERROR] Failed to connect to database", logging.Fields{}, err)
	}
	defer db.Close()

	policy := dataset.DropInvalidDates
	if *strictDates || cfg.Dataset.RejectInvalidDates {
		policy = dataset.RejectInvalidDates
	}

	rentalRepo := repository.NewRentalRepository(db, logger, metricsCollector)
	loader := dataset.NewLoader(policy, logger, metricsCollector)

	ingestionService := services.NewIngestionService(rentalRepo, loader, logger, metricsCollector)
	statsService := services.NewStatisticsService(rentalRepo, logger, metricsCollector)

	result, err := ingestionService.IngestPath(ctx, *dataPath, *batchSize)
	if err != nil {
		logger.Fatal(ctx, "[INGESTION_ERROR] Ingestion failed", logging.Fields{
			"data": *dataPath,
		}, err)
	}

	fmt.Println(strings.Repeat("=", 80))
	fmt.Println("INGESTION COMPLETE")
	fmt.Println(strings.Repeat("=", 80))
	fmt.Printf("Total Files:        %d\n", result.TotalFiles)
	fmt.Printf("Total Records:      %d\n", result.TotalRecords)
	fmt.Printf("Successful Records: %d\n", result.SuccessfulRecords)
	fmt.Printf("Skipped Records:    %d\n", result.FailedRecords)
	fmt.Printf("Duration:           %v\n", result.Duration)

	if len(result.Errors) > 0 {
		fmt.Printf("\nErrors (%d):\n", len(result.Errors))
		for i, errMsg := range result.Errors {
			if i < 10 {
				fmt.Printf("  - %s\n", errMsg)
			}
		}
		if len(result.Errors) > 10 {
			fmt.Printf("  ... and %d more errors\n", len(result.Errors)-10)
		}
	}

	if *calculateStats {
		fmt.Println("\n" + strings.Repeat("=", 80))
		fmt.Println("CALCULATING STATISTICS")
		fmt.Println(strings.Repeat("=", 80))

		stored, err := statsService.CalculateAllStatistics(ctx)
		if err != nil {
			logger.Error(ctx, "[STATS_ERROR] Statistics calculation failed", logging.Fields{}, err)
			fmt.Printf("Statistics calculation failed: %v\n", err)
		} else {
			fmt.Printf("Stored %d weekday statistics\n", stored)
		}
	}

	if count, err := rentalRepo.CountRecords(ctx); err == nil {
		fmt.Printf("\nRecords in database: %d\n", count)
	}

	logger.Info(ctx, "[INGESTER_COMPLETE] Ingestion completed", logging.Fields{
		"total_records":      result.TotalRecords,
		"successful_records": result.SuccessfulRecords,
		"skipped_records":    result.FailedRecords,
		"duration_seconds":   result.Duration.Seconds(),
	})
}
