package export

import (
	"bytes"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"bikeshare-dashboard/internal/analytics"
	"bikeshare-dashboard/internal/models"
)

func TestWriteWorkbook(t *testing.T) {
	records := models.ApplyLabels([]models.Record{
		{Date: time.Date(2021, 1, 11, 0, 0, 0, 0, time.UTC), SeasonCode: 1, WeekdayCode: 0, WeatherCode: 1, Count: 50},
		{Date: time.Date(2021, 1, 4, 0, 0, 0, 0, time.UTC), SeasonCode: 1, WeekdayCode: 0, WeatherCode: 1, Count: 100},
		{Date: time.Date(2021, 1, 6, 0, 0, 0, 0, time.UTC), SeasonCode: 1, WeekdayCode: 2, WeatherCode: 2, Count: 120},
	})
	slots, err := analytics.WeekdaySlots(records)
	require.NoError(t, err)

	dash := &models.Dashboard{
		Season:   models.SeasonSpring,
		Records:  len(records),
		Trend:    analytics.Trend(records),
		Weather:  analytics.WeatherSummaries(records),
		Weekdays: slots,
	}

	var buf bytes.Buffer
	require.NoError(t, WriteWorkbook(&buf, dash))

	f, err := excelize.OpenReader(bytes.NewReader(buf.Bytes()))
	require.NoError(t, err)
	defer f.Close()

	assert.Equal(t, []string{SheetWeekdays, SheetWeather, SheetTrend}, f.GetSheetList())

	weekdays, err := f.GetRows(SheetWeekdays)
	require.NoError(t, err)
	require.Len(t, weekdays, 8)
	assert.Equal(t, weekdayHeaders, weekdays[0])
	assert.Equal(t, []string{"Mon", "75", "2", "6", analytics.Palette[5]}, weekdays[1])
	assert.Equal(t, "", weekdays[2][1], "missing Tuesday leaves the mean blank")
	assert.Equal(t, []string{"Wed", "120", "1", "7", analytics.Palette[6]}, weekdays[3])

	weather, err := f.GetRows(SheetWeather)
	require.NoError(t, err)
	require.Len(t, weather, 3)
	assert.Equal(t, "Clear", weather[1][0])
	assert.Equal(t, "Cloudy", weather[2][0])

	trend, err := f.GetRows(SheetTrend)
	require.NoError(t, err)
	require.Len(t, trend, 4)
	assert.Equal(t, []string{"2021-01-04", "100"}, trend[1])
	assert.Equal(t, []string{"2021-01-11", "50"}, trend[3])
}

func TestWriteWorkbook_Empty(t *testing.T) {
	slots, err := analytics.WeekdaySlots(nil)
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, WriteWorkbook(&buf, &models.Dashboard{Season: models.AllSeasons, Weekdays: slots}))

	f, err := excelize.OpenReader(bytes.NewReader(buf.Bytes()))
	require.NoError(t, err)
	defer f.Close()

	trend, err := f.GetRows(SheetTrend)
	require.NoError(t, err)
	assert.Len(t, trend, 1)
}
