package services

import (
	"context"
	"fmt"
	"time"

	"bikeshare-dashboard/internal/analytics"
	"bikeshare-dashboard/internal/dataset"
	"bikeshare-dashboard/internal/models"
	"bikeshare-dashboard/internal/repository"
	"bikeshare-dashboard/pkg/logging"
	"bikeshare-dashboard/pkg/metrics"
)

// StatisticsService precomputes weekday means per season and stores them
type StatisticsService struct {
	repo    repository.RentalRepository
	logger  *logging.StructuredLogger
	metrics *metrics.Collector
}

// NewStatisticsService creates a new statistics service
func NewStatisticsService(repo repository.RentalRepository, logger *logging.StructuredLogger, metricsCollector *metrics.Collector) *StatisticsService {
	return &StatisticsService{
		repo:    repo,
		logger:  logger,
		metrics: metricsCollector,
	}
}

// CalculateAllStatistics stores the seven weekday means for All and for
// every season present in the stored records. It returns the number of rows written.
func (s *StatisticsService) CalculateAllStatistics(ctx context.Context) (int, error) {
	startTime := time.Now()

	s.logger.Info(ctx, "[STATS_CALC_START] Starting statistics calculation", logging.Fields{
		"stage": "INITIALIZATION",
	})

	records, err := s.repo.ListRecords(ctx)
	if err != nil {
		return 0, fmt.Errorf("failed to list records: %w", err)
	}

	ds := dataset.New("database", records, 0)
	seasons := append([]models.Season{models.AllSeasons}, ds.Seasons()...)

	total := 0
	for _, season := range seasons {
		slots, err := analytics.WeekdaySlots(analytics.FilterBySeason(ds.Records(), season))
		if err != nil {
			return total, fmt.Errorf("failed to aggregate %s: %w", season, err)
		}

		now := time.Now().UTC()
		for i, slot := range slots {
			stats := &models.WeekdayStatistics{
				Season:      string(season),
				WeekdayCode: i,
				MeanCount:   slot.Mean,
				DayCount:    slot.Days,
				CreatedAt:   now,
				UpdatedAt:   now,
			}
			if err := s.repo.UpsertWeekdayStatistics(ctx, stats); err != nil {
				s.logger.Error(ctx, "[STATS_SAVE_ERROR] Failed to save statistics", logging.Fields{
					"season":  season,
					"weekday": slot.Weekday,
				}, err)
				continue
			}
			total++
		}

		s.logger.Info(ctx, "[STATS_SEASON_COMPLETE] Season statistics calculated", logging.Fields{
			"season": season,
		})
	}

	duration := time.Since(startTime)
	s.metrics.PipelineDuration.WithLabelValues("statistics").Observe(duration.Seconds())

	s.logger.Info(ctx, "[STATS_CALC_COMPLETE] Statistics calculation completed", logging.Fields{
		"seasons":          len(seasons),
		"total_statistics": total,
		"duration_seconds": duration.Seconds(),
		"stage":            "COMPLETE",
	})

	return total, nil
}

// GetWeekdayStatistics returns the stored weekday means for season
func (s *StatisticsService) GetWeekdayStatistics(ctx context.Context, season models.Season) ([]*models.WeekdayStatistics, error) {
	return s.repo.GetWeekdayStatistics(ctx, string(season))
}

// HealthCheck reports whether the rentals database is reachable
func (s *StatisticsService) HealthCheck(ctx context.Context) error {
	return s.repo.HealthCheck(ctx)
}
