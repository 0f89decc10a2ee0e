package render

import (
	"bytes"
	"image/color"
	"image/png"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"bikeshare-dashboard/internal/analytics"
	"bikeshare-dashboard/internal/models"
	"bikeshare-dashboard/pkg/metrics"
)

func testDashboard(t *testing.T) *models.Dashboard {
	t.Helper()

	records := models.ApplyLabels([]models.Record{
		{Date: time.Date(2021, 1, 4, 0, 0, 0, 0, time.UTC), SeasonCode: 1, WeekdayCode: 0, WeatherCode: 1, Count: 100},
		{Date: time.Date(2021, 1, 5, 0, 0, 0, 0, time.UTC), SeasonCode: 1, WeekdayCode: 1, WeatherCode: 2, Count: 60},
		{Date: time.Date(2021, 1, 6, 0, 0, 0, 0, time.UTC), SeasonCode: 1, WeekdayCode: 2, WeatherCode: 3, Count: 20},
		{Date: time.Date(2021, 1, 11, 0, 0, 0, 0, time.UTC), SeasonCode: 1, WeekdayCode: 0, WeatherCode: 1, Count: 50},
	})

	slots, err := analytics.WeekdaySlots(records)
	require.NoError(t, err)

	return &models.Dashboard{
		Season:   models.SeasonSpring,
		Records:  len(records),
		Trend:    analytics.Trend(records),
		Weather:  analytics.WeatherSummaries(records),
		Weekdays: slots,
	}
}

func TestRenderer_RenderPNG(t *testing.T) {
	m := metrics.NewCollector("bikeshare_test", prometheus.NewRegistry())
	r := NewRenderer(4, 3, m)
	dash := testDashboard(t)

	for _, chart := range Charts {
		t.Run(string(chart), func(t *testing.T) {
			var buf bytes.Buffer
			require.NoError(t, r.Render(&buf, chart, dash))

			cfg, err := png.DecodeConfig(bytes.NewReader(buf.Bytes()))
			require.NoError(t, err)
			assert.Greater(t, cfg.Width, 0)
			assert.Greater(t, cfg.Height, 0)
		})
	}

	assert.Equal(t, 3, testutil.CollectAndCount(m.ChartRenderDuration))
}

func TestRenderer_EmptyDashboard(t *testing.T) {
	r := NewRenderer(4, 3, metrics.NewCollector("bikeshare_test", prometheus.NewRegistry()))

	slots, err := analytics.WeekdaySlots(nil)
	require.NoError(t, err)
	dash := &models.Dashboard{Season: models.SeasonFall, Weekdays: slots}

	for _, chart := range Charts {
		var buf bytes.Buffer
		assert.NoError(t, r.Render(&buf, chart, dash), "chart %s", chart)
		assert.NotZero(t, buf.Len())
	}
}

func TestRenderer_UnknownChart(t *testing.T) {
	r := NewRenderer(4, 3, metrics.NewCollector("bikeshare_test", prometheus.NewRegistry()))
	var buf bytes.Buffer
	assert.Error(t, r.Render(&buf, Chart("pie"), &models.Dashboard{}))
}

func TestParseChart(t *testing.T) {
	c, err := ParseChart("weekday")
	require.NoError(t, err)
	assert.Equal(t, ChartWeekday, c)

	_, err = ParseChart("pie")
	assert.Error(t, err)
}

func TestParseHex(t *testing.T) {
	c, err := parseHex("#084594")
	require.NoError(t, err)
	assert.Equal(t, color.RGBA{R: 0x08, G: 0x45, B: 0x94, A: 255}, c)

	_, err = parseHex("blue")
	assert.Error(t, err)
}
