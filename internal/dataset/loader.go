package dataset

import (
	"bufio"
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"slices"

	"github.com/go-gota/gota/dataframe"
	"github.com/go-gota/gota/series"

	"bikeshare-dashboard/internal/models"
	"bikeshare-dashboard/pkg/logging"
	"bikeshare-dashboard/pkg/metrics"
)

// DatePolicy decides what happens to rows whose date does not parse
type DatePolicy int

const (
	// DropInvalidDates discards the row and counts it
	DropInvalidDates DatePolicy = iota
	// RejectInvalidDates fails the whole load with a MalformedDataError
	RejectInvalidDates
)

// Loader parses the rentals CSV into a Dataset
type Loader struct {
	policy  DatePolicy
	logger  *logging.StructuredLogger
	metrics *metrics.Collector
}

// NewLoader creates a loader with the given date policy
func NewLoader(policy DatePolicy, logger *logging.StructuredLogger, metricsCollector *metrics.Collector) *Loader {
	return &Loader{
		policy:  policy,
		logger:  logger,
		metrics: metricsCollector,
	}
}

// LoadFile loads the dataset at path
func (l *Loader) LoadFile(ctx context.Context, path string) (*Dataset, error) {
	info, err := os.Stat(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			l.metrics.RecordLoadError("not_found")
			return nil, &NotFoundError{Path: path, Err: err}
		}
		l.metrics.RecordLoadError("stat_error")
		return nil, fmt.Errorf("failed to stat dataset: %w", err)
	}
	if info.IsDir() {
		l.metrics.RecordLoadError("not_found")
		return nil, &NotFoundError{Path: path, Err: errors.New("is a directory")}
	}

	file, err := os.Open(path)
	if err != nil {
		l.metrics.RecordLoadError("open_error")
		return nil, fmt.Errorf("failed to open dataset: %w", err)
	}
	defer file.Close()

	return l.Load(ctx, file, path)
}

// Load parses CSV from r; name identifies the source in errors and logs
func (l *Loader) Load(ctx context.Context, r io.Reader, name string) (*Dataset, error) {
	timer := l.metrics.NewTimer(l.metrics.DatasetLoadDuration)

	df := dataframe.ReadCSV(skipBOM(r),
		dataframe.HasHeader(true),
		dataframe.DetectTypes(false),
		dataframe.DefaultType(series.String),
	)
	if df.Err != nil {
		l.metrics.RecordLoadError("parse_error")
		return nil, &MalformedDataError{Path: name, Err: df.Err}
	}

	names := df.Names()
	columns := make(map[string][]string, len(models.RequiredColumns))
	for _, col := range models.RequiredColumns {
		if !slices.Contains(names, col) {
			l.metrics.RecordLoadError("missing_column")
			return nil, &MalformedDataError{Path: name, Column: col, Err: errors.New("required column missing")}
		}
		columns[col] = df.Col(col).Records()
	}

	nrows := df.Nrow()
	if nrows == 0 {
		l.metrics.RecordLoadError("no_rows")
		return nil, &MalformedDataError{Path: name, Err: errors.New("no data rows")}
	}
	records := make([]models.Record, 0, nrows)
	dropped := 0

	for i := 0; i < nrows; i++ {
		raw := models.RawRecord{
			Line:    i + 2, // header is line 1
			Date:    columns[models.ColumnDate][i],
			Season:  columns[models.ColumnSeason][i],
			Weekday: columns[models.ColumnWeekday][i],
			Weather: columns[models.ColumnWeather][i],
			Count:   columns[models.ColumnCount][i],
		}

		rec, err := raw.ToRecord()
		if err != nil {
			var verr *models.ValidationError
			if errors.As(err, &verr) && verr.Field == models.ColumnDate && l.policy == DropInvalidDates {
				dropped++
				l.logger.Debug(ctx, "[DATASET_ROW_DROPPED] Row with unparseable date discarded", logging.Fields{
					"source": name,
					"line":   raw.Line,
					"value":  raw.Date,
				})
				continue
			}

			l.metrics.RecordLoadError("invalid_value")
			column := ""
			if verr != nil {
				column = verr.Field
			}
			return nil, &MalformedDataError{Path: name, Line: raw.Line, Column: column, Err: err}
		}

		records = append(records, rec)
	}

	ds := New(name, records, dropped)
	duration := timer.ObserveDuration()

	l.metrics.DatasetRowsDropped.Add(float64(dropped))
	l.metrics.DatasetRowsLoaded.Set(float64(ds.Len()))

	l.logger.Info(ctx, "[DATASET_LOAD] Dataset loaded", logging.Fields{
		"source":       name,
		"total_rows":   nrows,
		"records":      ds.Len(),
		"dropped_rows": dropped,
		"duration_ms":  duration.Milliseconds(),
	})

	return ds, nil
}

var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// skipBOM drops a leading UTF-8 byte order mark so the first header name
// matches
func skipBOM(r io.Reader) io.Reader {
	br := bufio.NewReader(r)
	if head, err := br.Peek(len(utf8BOM)); err == nil && bytes.Equal(head, utf8BOM) {
		br.Discard(len(utf8BOM))
	}
	return br
}
