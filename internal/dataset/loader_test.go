package dataset

import (
	"context"
	"errors"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"bikeshare-dashboard/internal/models"
	"bikeshare-dashboard/pkg/logging"
	"bikeshare-dashboard/pkg/metrics"
)

const validCSV = `instant,dteday,season,yr,mnth,holiday,weekday,workingday,weathersit,temp,cnt
1,2021-01-04,1,0,1,0,0,1,1,0.34,100
2,2021-01-11,1,0,1,0,0,1,2,0.36,50
3,2021-06-02,2,0,6,0,2,1,1,0.70,300
4,2021-09-24,4,0,9,0,4,1,3,0.50,80
`

func newTestDeps() (*logging.StructuredLogger, *metrics.Collector) {
	logger := logging.NewStructuredLoggerWithOutput("test", "0.0.0", logging.DebugLevel, io.Discard)
	return logger, metrics.NewCollector("bikeshare_test", prometheus.NewRegistry())
}

func writeCSV(t *testing.T, dir, content string) string {
	t.Helper()
	path := filepath.Join(dir, "main_data.csv")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestLoader_Load_Valid(t *testing.T) {
	logger, m := newTestDeps()
	loader := NewLoader(DropInvalidDates, logger, m)

	ds, err := loader.Load(context.Background(), strings.NewReader(validCSV), "inline")
	require.NoError(t, err)

	assert.Equal(t, 4, ds.Len())
	assert.Equal(t, 0, ds.Dropped())
	assert.Equal(t, "inline", ds.Source())

	records := ds.Records()
	assert.Equal(t, time.Date(2021, 1, 4, 0, 0, 0, 0, time.UTC), records[0].Date)
	assert.Equal(t, models.SeasonSpring, records[0].Season)
	assert.Equal(t, models.Monday, records[0].Weekday)
	assert.Equal(t, models.WeatherCloudy, records[1].Weather)
	assert.Equal(t, 300, records[2].Count)
	assert.Equal(t, models.Friday, records[3].Weekday)
	assert.Equal(t, models.SeasonWinter, records[3].Season)

	assert.Equal(t, 4.0, testutil.ToFloat64(m.DatasetRowsLoaded))
}

func TestLoader_Load_LenientDropsBadDates(t *testing.T) {
	csv := `dteday,season,weekday,weathersit,cnt
2021-01-04,1,0,1,100
garbage,1,1,1,70
,2,2,1,90
2021-01-11,1,0,2,50
`
	logger, m := newTestDeps()
	loader := NewLoader(DropInvalidDates, logger, m)

	ds, err := loader.Load(context.Background(), strings.NewReader(csv), "inline")
	require.NoError(t, err)

	// row count equals input rows minus rows with unparseable dates
	assert.Equal(t, 2, ds.Len())
	assert.Equal(t, 2, ds.Dropped())
	assert.Equal(t, 2.0, testutil.ToFloat64(m.DatasetRowsDropped))
}

func TestLoader_Load_StrictRejectsBadDates(t *testing.T) {
	csv := `dteday,season,weekday,weathersit,cnt
2021-01-04,1,0,1,100
garbage,1,1,1,70
`
	logger, m := newTestDeps()
	loader := NewLoader(RejectInvalidDates, logger, m)

	_, err := loader.Load(context.Background(), strings.NewReader(csv), "inline")
	require.Error(t, err)

	var merr *MalformedDataError
	require.True(t, errors.As(err, &merr), "expected MalformedDataError, got %T", err)
	assert.Equal(t, 3, merr.Line)
	assert.Equal(t, models.ColumnDate, merr.Column)
	assert.False(t, merr.IsTransient())
}

func TestLoader_Load_ByteOrderMark(t *testing.T) {
	logger, m := newTestDeps()
	loader := NewLoader(DropInvalidDates, logger, m)

	ds, err := loader.Load(context.Background(), strings.NewReader("\ufeff"+validCSV), "bom")
	require.NoError(t, err)
	assert.Equal(t, 4, ds.Len())
	assert.Equal(t, models.Monday, ds.Records()[0].Weekday)
}

func TestMalformedDataError_Message(t *testing.T) {
	csv := `dteday,season,weekday,weathersit,cnt
2021-01-04,1,0,1,
`
	logger, m := newTestDeps()
	loader := NewLoader(DropInvalidDates, logger, m)

	_, err := loader.Load(context.Background(), strings.NewReader(csv), "inline")
	require.Error(t, err)

	msg := err.Error()
	assert.True(t, strings.HasPrefix(msg, "malformed dataset inline: line 2: column cnt: "), msg)
	assert.Equal(t, 1, strings.Count(msg, "line 2"), msg)
	assert.Equal(t, 1, strings.Count(msg, "cnt"), msg)

	plain := &MalformedDataError{Path: "x", Err: errors.New("boom")}
	assert.Equal(t, "malformed dataset x: boom", plain.Error())
}

func TestLoader_Load_Malformed(t *testing.T) {
	tests := []struct {
		name       string
		csv        string
		wantColumn string
	}{
		{
			name:       "missing column",
			csv:        "dteday,season,weekday,cnt\n2021-01-04,1,0,100\n",
			wantColumn: models.ColumnWeather,
		},
		{
			name:       "non integer weekday",
			csv:        "dteday,season,weekday,weathersit,cnt\n2021-01-04,1,monday,1,100\n",
			wantColumn: models.ColumnWeekday,
		},
		{
			name: "ragged row",
			csv:  "dteday,season,weekday,weathersit,cnt\n2021-01-04,1,0,1\n",
		},
		{
			name: "empty input",
			csv:  "",
		},
		{
			name: "header only",
			csv:  "dteday,season,weekday,weathersit,cnt\n",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			logger, m := newTestDeps()
			loader := NewLoader(DropInvalidDates, logger, m)

			_, err := loader.Load(context.Background(), strings.NewReader(tt.csv), "inline")
			require.Error(t, err)

			var merr *MalformedDataError
			require.True(t, errors.As(err, &merr), "expected MalformedDataError, got %T: %v", err, err)
			if tt.wantColumn != "" {
				assert.Equal(t, tt.wantColumn, merr.Column)
			}
			assert.Contains(t, merr.Error(), "malformed dataset inline")
		})
	}
}

func TestLoader_LoadFile(t *testing.T) {
	logger, m := newTestDeps()
	loader := NewLoader(DropInvalidDates, logger, m)

	t.Run("existing file", func(t *testing.T) {
		path := writeCSV(t, t.TempDir(), validCSV)
		ds, err := loader.LoadFile(context.Background(), path)
		require.NoError(t, err)
		assert.Equal(t, 4, ds.Len())
		assert.Equal(t, path, ds.Source())
	})

	t.Run("missing file", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "absent.csv")
		_, err := loader.LoadFile(context.Background(), path)

		var nerr *NotFoundError
		require.True(t, errors.As(err, &nerr), "expected NotFoundError, got %T", err)
		assert.Equal(t, path, nerr.Path)
		assert.True(t, errors.Is(err, os.ErrNotExist))
		assert.False(t, nerr.IsTransient())
	})

	t.Run("directory", func(t *testing.T) {
		_, err := loader.LoadFile(context.Background(), t.TempDir())

		var nerr *NotFoundError
		require.True(t, errors.As(err, &nerr), "expected NotFoundError, got %T", err)
	})
}

func TestDataset_SeasonsFirstAppearance(t *testing.T) {
	ds := New("test", []models.Record{
		{SeasonCode: 3}, {SeasonCode: 1}, {SeasonCode: 3}, {SeasonCode: 7}, {SeasonCode: 1},
	}, 0)

	assert.Equal(t, []models.Season{models.SeasonFall, models.SeasonSpring, models.SeasonUnknown}, ds.Seasons())
}

func TestDataset_RecordsIsACopy(t *testing.T) {
	ds := New("test", []models.Record{{SeasonCode: 1, Count: 5}}, 0)

	records := ds.Records()
	records[0].Count = 999

	assert.Equal(t, 5, ds.Records()[0].Count)
}
