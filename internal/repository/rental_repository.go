package repository

import (
	"context"
	"fmt"
	"time"

	"bikeshare-dashboard/internal/models"
	"bikeshare-dashboard/pkg/database"
	"bikeshare-dashboard/pkg/logging"
	"bikeshare-dashboard/pkg/metrics"
)

// RentalRepository provides data access for daily rental records
type RentalRepository interface {
	// Record operations
	CreateRecordsBatch(ctx context.Context, records []models.Record) error
	ListRecords(ctx context.Context) ([]models.Record, error)
	CountRecords(ctx context.Context) (int, error)

	// Statistics operations
	UpsertWeekdayStatistics(ctx context.Context, stats *models.WeekdayStatistics) error
	GetWeekdayStatistics(ctx context.Context, season string) ([]*models.WeekdayStatistics, error)

	// Utility operations
	HealthCheck(ctx context.Context) error
}

// rentalRepository implements RentalRepository
type rentalRepository struct {
	db      *database.PostgresDB
	logger  *logging.StructuredLogger
	metrics *metrics.Collector
}

// NewRentalRepository creates a new rental repository
func NewRentalRepository(db *database.PostgresDB, logger *logging.StructuredLogger, metricsCollector *metrics.Collector) RentalRepository {
	return &rentalRepository{
		db:      db,
		logger:  logger,
		metrics: metricsCollector,
	}
}

const upsertRecordQuery = `
	INSERT INTO daily_rentals (
		rental_date, season_code, weekday_code, weather_code, rental_count, created_at
	)
	VALUES ($1, $2, $3, $4, $5, $6)
	ON CONFLICT (rental_date) DO UPDATE SET
		season_code = EXCLUDED.season_code,
		weekday_code = EXCLUDED.weekday_code,
		weather_code = EXCLUDED.weather_code,
		rental_count = EXCLUDED.rental_count
`

// CreateRecordsBatch upserts records in a single transaction keyed by date
func (r *rentalRepository) CreateRecordsBatch(ctx context.Context, records []models.Record) error {
	if len(records) == 0 {
		return nil
	}

	timer := time.Now()
	defer func() {
		duration := time.Since(timer)
		r.metrics.IngestionBatchSize.Observe(float64(len(records)))
		r.logger.Debug(ctx, "[REPO_BATCH_INSERT] Batch insert completed", logging.Fields{
			"count":       len(records),
			"duration_ms": duration.Milliseconds(),
		})
	}()

	tx, err := r.db.BeginTx(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx, upsertRecordQuery)
	if err != nil {
		return fmt.Errorf("failed to prepare statement: %w", err)
	}
	defer stmt.Close()

	now := time.Now().UTC()
	for _, rec := range records {
		_, err := stmt.ExecContext(ctx,
			rec.Date,
			rec.SeasonCode,
			rec.WeekdayCode,
			rec.WeatherCode,
			rec.Count,
			now,
		)
		if err != nil {
			return fmt.Errorf("failed to insert record for %s: %w", rec.Date.Format("2006-01-02"), err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}

	r.metrics.IngestionRecords.Add(float64(len(records)))

	return nil
}

// ListRecords returns every stored record in date order with labels applied
func (r *rentalRepository) ListRecords(ctx context.Context) ([]models.Record, error) {
	query := `
		SELECT rental_date, season_code, weekday_code, weather_code, rental_count
		FROM daily_rentals
		ORDER BY rental_date
	`

	rows, err := r.db.QueryContext(ctx, "list_records", query)
	if err != nil {
		return nil, fmt.Errorf("failed to list records: %w", err)
	}
	defer rows.Close()

	var records []models.Record
	for rows.Next() {
		var rec models.Record
		if err := rows.StructScan(&rec); err != nil {
			return nil, fmt.Errorf("failed to scan record: %w", err)
		}
		records = append(records, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to list records: %w", err)
	}

	return models.ApplyLabels(records), nil
}

// CountRecords returns the number of stored records
func (r *rentalRepository) CountRecords(ctx context.Context) (int, error) {
	var count int
	if err := r.db.GetContext(ctx, "count_records", &count, `SELECT COUNT(*) FROM daily_rentals`); err != nil {
		return 0, fmt.Errorf("failed to count records: %w", err)
	}
	return count, nil
}

// UpsertWeekdayStatistics creates or updates the weekday mean for a season
func (r *rentalRepository) UpsertWeekdayStatistics(ctx context.Context, stats *models.WeekdayStatistics) error {
	query := `
		INSERT INTO weekday_statistics (
			season, weekday_code, mean_count, day_count, created_at, updated_at
		)
		VALUES ($1, $2, $3, $4, $5, $6)
		ON CONFLICT (season, weekday_code) DO UPDATE SET
			mean_count = EXCLUDED.mean_count,
			day_count = EXCLUDED.day_count,
			updated_at = EXCLUDED.updated_at
		RETURNING id
	`

	err := r.db.DB().QueryRowContext(ctx, query,
		stats.Season,
		stats.WeekdayCode,
		stats.MeanCount,
		stats.DayCount,
		stats.CreatedAt,
		stats.UpdatedAt,
	).Scan(&stats.ID)

	if err != nil {
		r.metrics.RecordDBError("upsert_error")
		return fmt.Errorf("failed to upsert weekday statistics: %w", err)
	}

	return nil
}

// GetWeekdayStatistics returns the stored weekday means for a season ordered by weekday
func (r *rentalRepository) GetWeekdayStatistics(ctx context.Context, season string) ([]*models.WeekdayStatistics, error) {
	query := `
		SELECT id, season, weekday_code, mean_count, day_count, created_at, updated_at
		FROM weekday_statistics
		WHERE season = $1
		ORDER BY weekday_code
	`

	var statistics []*models.WeekdayStatistics
	if err := r.db.SelectContext(ctx, "get_weekday_statistics", &statistics, query, season); err != nil {
		return nil, fmt.Errorf("failed to get weekday statistics: %w", err)
	}

	if len(statistics) == 0 {
		return nil, &NotFoundError{
			Resource: "weekday_statistics",
			ID:       season,
		}
	}

	return statistics, nil
}

// HealthCheck performs a repository health check
func (r *rentalRepository) HealthCheck(ctx context.Context) error {
	return r.db.HealthCheck(ctx)
}

// NotFoundError represents a resource not found error
type NotFoundError struct {
	Resource string
	ID       string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s not found: %s", e.Resource, e.ID)
}

func (e *NotFoundError) IsTransient() bool {
	return false
}
