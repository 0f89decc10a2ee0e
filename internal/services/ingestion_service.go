package services

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"bikeshare-dashboard/internal/dataset"
	"bikeshare-dashboard/internal/repository"
	"bikeshare-dashboard/pkg/logging"
	"bikeshare-dashboard/pkg/metrics"
)

// IngestionService loads rental CSV files and stores them in the database
type IngestionService struct {
	repo    repository.RentalRepository
	loader  *dataset.Loader
	logger  *logging.StructuredLogger
	metrics *metrics.Collector
}

// IngestionResult contains ingestion statistics
type IngestionResult struct {
	TotalFiles        int
	TotalRecords      int
	SuccessfulRecords int
	FailedRecords     int
	Duration          time.Duration
	Errors            []string
}

// FileIngestionResult contains per-file ingestion statistics
type FileIngestionResult struct {
	TotalRecords      int
	SuccessfulRecords int
	FailedRecords     int
}

// NewIngestionService creates a new ingestion service
func NewIngestionService(repo repository.RentalRepository, loader *dataset.Loader, logger *logging.StructuredLogger, metricsCollector *metrics.Collector) *IngestionService {
	return &IngestionService{
		repo:    repo,
		loader:  loader,
		logger:  logger,
		metrics: metricsCollector,
	}
}

// IngestPath ingests a single CSV file, or every *.csv file when path is a directory
func (s *IngestionService) IngestPath(ctx context.Context, path string, batchSize int) (*IngestionResult, error) {
	if batchSize <= 0 {
		return nil, fmt.Errorf("batch size must be positive, got %d", batchSize)
	}

	startTime := time.Now()

	s.logger.Info(ctx, "[INGEST_START] Starting data ingestion", logging.Fields{
		"path":       path,
		"batch_size": batchSize,
		"stage":      "INITIALIZATION",
	})

	files, err := discoverFiles(path)
	if err != nil {
		return nil, err
	}

	result := &IngestionResult{
		TotalFiles: len(files),
		Errors:     make([]string, 0),
	}

	s.logger.Info(ctx, "[INGEST_FILES] Found data files", logging.Fields{
		"file_count": len(files),
		"stage":      "FILE_DISCOVERY",
	})

	for _, filePath := range files {
		fileResult, err := s.ingestFile(ctx, filePath, batchSize)
		if err != nil {
			result.Errors = append(result.Errors, fmt.Sprintf("failed to ingest %s: %v", filePath, err))
			s.logger.Error(ctx, "[INGEST_FILE_ERROR] File ingestion failed", logging.Fields{
				"file_path": filePath,
				"stage":     "FILE_PROCESSING",
			}, err)
			s.metrics.RecordIngestionError("file_error")
			continue
		}

		result.TotalRecords += fileResult.TotalRecords
		result.SuccessfulRecords += fileResult.SuccessfulRecords
		result.FailedRecords += fileResult.FailedRecords

		s.logger.Info(ctx, "[INGEST_FILE_SUCCESS] File ingested successfully", logging.Fields{
			"file_path":          filePath,
			"total_records":      fileResult.TotalRecords,
			"successful_records": fileResult.SuccessfulRecords,
			"failed_records":     fileResult.FailedRecords,
			"stage":              "FILE_COMPLETE",
		})
	}

	result.Duration = time.Since(startTime)
	s.metrics.PipelineDuration.WithLabelValues("ingest").Observe(result.Duration.Seconds())

	s.logger.Info(ctx, "[INGEST_COMPLETE] Data ingestion completed", logging.Fields{
		"total_files":        result.TotalFiles,
		"total_records":      result.TotalRecords,
		"successful_records": result.SuccessfulRecords,
		"failed_records":     result.FailedRecords,
		"duration_seconds":   result.Duration.Seconds(),
		"error_count":        len(result.Errors),
		"stage":              "COMPLETE",
	})

	return result, nil
}

// ingestFile loads one file with the dataset loader and writes it in batches.
// Rows dropped for bad dates count as failed records.
func (s *IngestionService) ingestFile(ctx context.Context, filePath string, batchSize int) (*FileIngestionResult, error) {
	ds, err := s.loader.LoadFile(ctx, filePath)
	if err != nil {
		return nil, err
	}

	records := ds.Records()
	result := &FileIngestionResult{
		TotalRecords:  len(records) + ds.Dropped(),
		FailedRecords: ds.Dropped(),
	}
	log := s.logger.WithFields(logging.Fields{"file": filePath})
	if ds.Dropped() > 0 {
		s.metrics.IngestionErrorsTotal.WithLabelValues("invalid_date").Add(float64(ds.Dropped()))
		log.Warn(ctx, "[INGESTION_ROWS_SKIPPED] Rows with unparseable dates skipped", logging.Fields{
			"skipped": ds.Dropped(),
		})
	}

	for start := 0; start < len(records); start += batchSize {
		end := min(start+batchSize, len(records))
		if err := s.repo.CreateRecordsBatch(ctx, records[start:end]); err != nil {
			return nil, fmt.Errorf("failed to insert batch: %w", err)
		}
		result.SuccessfulRecords += end - start
		log.Debug(ctx, "[INGESTION_BATCH] Batch stored", logging.Fields{
			"offset": start,
			"size":   end - start,
		})
	}

	return result, nil
}

func discoverFiles(path string) ([]string, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", path, err)
	}
	if !info.IsDir() {
		return []string{path}, nil
	}

	files, err := filepath.Glob(filepath.Join(path, "*.csv"))
	if err != nil {
		return nil, fmt.Errorf("failed to read directory: %w", err)
	}
	if len(files) == 0 {
		return nil, fmt.Errorf("no data files found in %s", path)
	}
	return files, nil
}
