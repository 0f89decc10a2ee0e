package render

import (
	"fmt"
	"image/color"
	"io"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"

	"bikeshare-dashboard/internal/models"
	"bikeshare-dashboard/pkg/metrics"
)

// Chart names one of the dashboard charts
type Chart string

const (
	ChartTrend   Chart = "trend"
	ChartWeather Chart = "weather"
	ChartWeekday Chart = "weekday"
)

// Charts lists every chart in page order
var Charts = []Chart{ChartTrend, ChartWeather, ChartWeekday}

// ParseChart resolves a chart name
func ParseChart(name string) (Chart, error) {
	for _, c := range Charts {
		if string(c) == name {
			return c, nil
		}
	}
	return "", fmt.Errorf("unknown chart: %q", name)
}

// weatherPalette colors the weather boxes in weather-code order
var weatherPalette = []string{"#66c2a5", "#fc8d62", "#8da0cb", "#e78ac3"}

// Renderer draws dashboard charts as PNG images
type Renderer struct {
	width   vg.Length
	height  vg.Length
	metrics *metrics.Collector
}

// NewRenderer creates a renderer producing images of the given size in inches
func NewRenderer(widthInches, heightInches float64, metricsCollector *metrics.Collector) *Renderer {
	return &Renderer{
		width:   vg.Length(widthInches) * vg.Inch,
		height:  vg.Length(heightInches) * vg.Inch,
		metrics: metricsCollector,
	}
}

// Render writes the named chart for dash to w
func (r *Renderer) Render(w io.Writer, chart Chart, dash *models.Dashboard) error {
	if _, err := ParseChart(string(chart)); err != nil {
		return err
	}

	timer := r.metrics.NewTimer(r.metrics.ChartRenderDuration.WithLabelValues(string(chart)))
	defer timer.ObserveDuration()

	var (
		p   *plot.Plot
		err error
	)
	switch chart {
	case ChartTrend:
		p, err = trendPlot(dash.Season, dash.Trend)
	case ChartWeather:
		p, err = weatherPlot(dash.Weather)
	case ChartWeekday:
		p, err = weekdayPlot(dash.Weekdays)
	}
	if err != nil {
		return fmt.Errorf("failed to build %s chart: %w", chart, err)
	}

	wt, err := p.WriterTo(r.width, r.height, "png")
	if err != nil {
		return fmt.Errorf("failed to draw %s chart: %w", chart, err)
	}
	if _, err := wt.WriteTo(w); err != nil {
		return fmt.Errorf("failed to write %s chart: %w", chart, err)
	}
	return nil
}

func trendPlot(season models.Season, points []models.TrendPoint) (*plot.Plot, error) {
	p := plot.New()
	p.Title.Text = fmt.Sprintf("Rental trend during %s", seasonTitle(season))
	p.Title.TextStyle.Font.Size = vg.Points(14)
	p.X.Label.Text = "Date"
	p.Y.Label.Text = "Total rentals"
	p.X.Tick.Marker = plot.TimeTicks{Format: "2006-01-02"}
	p.Add(plotter.NewGrid())

	if len(points) == 0 {
		return p, nil
	}

	xys := make(plotter.XYs, len(points))
	for i, pt := range points {
		xys[i].X = float64(pt.Date.Unix())
		xys[i].Y = float64(pt.Count)
	}

	line, scatter, err := plotter.NewLinePoints(xys)
	if err != nil {
		return nil, err
	}
	line.Color = color.RGBA{B: 255, A: 255}
	line.Width = vg.Points(1.5)
	scatter.GlyphStyle.Color = color.RGBA{B: 255, A: 255}
	scatter.GlyphStyle.Radius = vg.Points(2)
	p.Add(line, scatter)

	return p, nil
}

func weatherPlot(summaries []models.WeatherSummary) (*plot.Plot, error) {
	p := plot.New()
	p.Title.Text = "Rental distribution by weather"
	p.Title.TextStyle.Font.Size = vg.Points(14)
	p.X.Label.Text = "Weather condition"
	p.Y.Label.Text = "Total rentals"
	p.Add(plotter.NewGrid())

	if len(summaries) == 0 {
		return p, nil
	}

	labels := make([]string, len(summaries))
	for i, s := range summaries {
		labels[i] = string(s.Weather)

		box, err := plotter.NewBoxPlot(vg.Points(40), float64(i), plotter.Values(s.Counts))
		if err != nil {
			return nil, err
		}
		fill, err := parseHex(weatherPalette[i%len(weatherPalette)])
		if err != nil {
			return nil, err
		}
		box.FillColor = fill
		p.Add(box)
	}
	p.NominalX(labels...)

	return p, nil
}

func weekdayPlot(slots []models.WeekdaySlot) (*plot.Plot, error) {
	p := plot.New()
	p.Title.Text = "Average rentals per weekday"
	p.Title.TextStyle.Font.Size = vg.Points(14)
	p.X.Label.Text = "Weekday"
	p.Y.Label.Text = "Average rentals"
	p.Add(plotter.NewGrid())

	labels := make([]string, len(slots))
	for i, slot := range slots {
		labels[i] = string(slot.Weekday)
		if slot.Mean == nil {
			// keep the slot on the axis without drawing a bar
			continue
		}

		bars, err := plotter.NewBarChart(plotter.Values{*slot.Mean}, vg.Points(30))
		if err != nil {
			return nil, err
		}
		fill, err := parseHex(slot.Color)
		if err != nil {
			return nil, err
		}
		bars.Color = fill
		bars.LineStyle.Width = vg.Length(0)
		bars.XMin = float64(i)
		p.Add(bars)
	}

	if len(labels) > 0 {
		p.NominalX(labels...)
		p.X.Min = -0.5
		p.X.Max = float64(len(labels)) - 0.5
	}
	p.Y.Min = 0

	return p, nil
}

func seasonTitle(season models.Season) string {
	if season == models.AllSeasons {
		return "all seasons"
	}
	return string(season)
}

func parseHex(hex string) (color.RGBA, error) {
	c := color.RGBA{A: 255}
	if _, err := fmt.Sscanf(hex, "#%02x%02x%02x", &c.R, &c.G, &c.B); err != nil {
		return c, fmt.Errorf("invalid color %q: %w", hex, err)
	}
	return c, nil
}
