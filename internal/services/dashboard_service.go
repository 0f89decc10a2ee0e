package services

import (
	"context"
	"fmt"
	"time"

	"bikeshare-dashboard/internal/analytics"
	"bikeshare-dashboard/internal/dataset"
	"bikeshare-dashboard/internal/models"
	"bikeshare-dashboard/pkg/logging"
	"bikeshare-dashboard/pkg/metrics"
)

// DashboardService builds the per-season dashboard from the cached dataset
type DashboardService struct {
	cache   *dataset.Cache
	logger  *logging.StructuredLogger
	metrics *metrics.Collector
	now     func() time.Time
}

// NewDashboardService creates a new dashboard service
func NewDashboardService(cache *dataset.Cache, logger *logging.StructuredLogger, metricsCollector *metrics.Collector) *DashboardService {
	return &DashboardService{
		cache:   cache,
		logger:  logger,
		metrics: metricsCollector,
		now:     time.Now,
	}
}

// SeasonOptions returns the selector choices: All followed by the seasons
// present in the data in first-appearance order
func (s *DashboardService) SeasonOptions(ctx context.Context) ([]models.Season, error) {
	ds, err := s.cache.Get(ctx)
	if err != nil {
		return nil, err
	}
	return append([]models.Season{models.AllSeasons}, ds.Seasons()...), nil
}

// Build filters the dataset to season and computes every chart input.
// Load failures are returned unchanged so callers can match them with errors.As.
func (s *DashboardService) Build(ctx context.Context, season models.Season) (*models.Dashboard, error) {
	ds, err := s.cache.Get(ctx)
	if err != nil {
		return nil, err
	}

	timer := s.metrics.NewTimer(s.metrics.PipelineDuration.WithLabelValues("filter"))
	filtered := analytics.FilterBySeason(ds.Records(), season)
	timer.ObserveDuration()

	timer = s.metrics.NewTimer(s.metrics.PipelineDuration.WithLabelValues("weekday"))
	slots, err := analytics.WeekdaySlots(filtered)
	timer.ObserveDuration()
	if err != nil {
		return nil, fmt.Errorf("failed to aggregate weekdays for %s: %w", season, err)
	}

	timer = s.metrics.NewTimer(s.metrics.PipelineDuration.WithLabelValues("trend"))
	trend := analytics.Trend(filtered)
	timer.ObserveDuration()

	timer = s.metrics.NewTimer(s.metrics.PipelineDuration.WithLabelValues("weather"))
	weather := analytics.WeatherSummaries(filtered)
	timer.ObserveDuration()

	s.logger.Debug(ctx, "[DASHBOARD_BUILD] Dashboard computed", logging.Fields{
		"season":  season,
		"records": len(filtered),
		"source":  ds.Source(),
	})

	return &models.Dashboard{
		Season:      season,
		Records:     len(filtered),
		Trend:       trend,
		Weather:     weather,
		Weekdays:    slots,
		GeneratedAt: s.now().UTC(),
	}, nil
}

// Reload drops the cached dataset so the next request reads the source again
func (s *DashboardService) Reload() {
	s.cache.Invalidate(dataset.ReasonManual)
}

// Loaded reports whether the dataset is currently cached
func (s *DashboardService) Loaded() bool {
	return s.cache.Loaded()
}
