package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/prometheus/client_golang/prometheus"

	"bikeshare-dashboard/internal/dataset"
	"bikeshare-dashboard/internal/export"
	"bikeshare-dashboard/internal/models"
	"bikeshare-dashboard/internal/render"
	"bikeshare-dashboard/internal/services"
	"bikeshare-dashboard/pkg/logging"
	"bikeshare-dashboard/pkg/metrics"
)

type options struct {
	dataPath string
	season   string
	outDir   string
	width    float64
	height   float64
	strict   bool
}

// render prints the weekday summary of every season and writes the charts and
// workbook for one season without a server or database
func main() {
	var opts options
	flag.StringVar(&opts.dataPath, "data", "./main_data.csv", "Rental CSV file")
	flag.StringVar(&opts.season, "season", "All", "Season to render: All, Spring, Summer, Fall, Winter")
	flag.StringVar(&opts.outDir, "out", "./out", "Output directory for PNG charts and the XLSX export")
	flag.Float64Var(&opts.width, "width", 10, "Chart width in inches")
	flag.Float64Var(&opts.height, "height", 5, "Chart height in inches")
	flag.BoolVar(&opts.strict, "strict-dates", false, "Fail on the first unparseable date instead of skipping the row")
	flag.Parse()

	if err := run(context.Background(), opts, os.Stdout); err != nil {
		fmt.Fprintf(os.Stderr, "render failed: %v\n", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, opts options, out io.Writer) error {
	season, err := models.ParseSeason(opts.season)
	if err != nil {
		return err
	}

	logger := logging.NewStructuredLogger("bikeshare-render", "1.0.0", logging.WarnLevel)
	metricsCollector := metrics.NewCollector("bikeshare_render", prometheus.NewRegistry())

	policy := dataset.DropInvalidDates
	if opts.strict {
		policy = dataset.RejectInvalidDates
	}
	loader := dataset.NewLoader(policy, logger, metricsCollector)
	cache := dataset.NewCache(dataset.NewFileSource(opts.dataPath, loader), logger, metricsCollector)
	dashboards := services.NewDashboardService(cache, logger, metricsCollector)

	ds, err := cache.Get(ctx)
	if err != nil {
		return err
	}

	fmt.Fprintln(out, strings.Repeat("═", 64))
	fmt.Fprintln(out, "BIKE SHARING DASHBOARD - WEEKDAY SUMMARY")
	fmt.Fprintln(out, strings.Repeat("═", 64))
	fmt.Fprintf(out, "Source:          %s\n", ds.Source())
	fmt.Fprintf(out, "Records:         %d\n", ds.Len())
	fmt.Fprintf(out, "Dropped rows:    %d\n", ds.Dropped())

	seasons, err := dashboards.SeasonOptions(ctx)
	if err != nil {
		return err
	}

	for _, s := range seasons {
		dash, err := dashboards.Build(ctx, s)
		if err != nil {
			return err
		}
		printWeekdays(out, dash)
	}

	if err := os.MkdirAll(opts.outDir, 0o755); err != nil {
		return fmt.Errorf("failed to create output directory: %w", err)
	}

	dash, err := dashboards.Build(ctx, season)
	if err != nil {
		return err
	}

	renderer := render.NewRenderer(opts.width, opts.height, metricsCollector)
	prefix := strings.ToLower(string(season))

	fmt.Fprintln(out)
	for _, chart := range render.Charts {
		path := filepath.Join(opts.outDir, fmt.Sprintf("%s_%s.png", prefix, chart))
		if err := writeFile(path, func(w io.Writer) error { return renderer.Render(w, chart, dash) }); err != nil {
			return err
		}
		fmt.Fprintf(out, "Wrote %s\n", path)
	}

	path := filepath.Join(opts.outDir, fmt.Sprintf("%s.xlsx", prefix))
	if err := writeFile(path, func(w io.Writer) error { return export.WriteWorkbook(w, dash) }); err != nil {
		return err
	}
	fmt.Fprintf(out, "Wrote %s\n", path)

	return nil
}

func printWeekdays(out io.Writer, dash *models.Dashboard) {
	fmt.Fprintf(out, "\n%s (%d records)\n", dash.Season, dash.Records)
	fmt.Fprintln(out, strings.Repeat("─", 64))
	for _, slot := range dash.Weekdays {
		mean := "      -"
		if slot.Mean != nil {
			mean = fmt.Sprintf("%7.1f", *slot.Mean)
		}
		fmt.Fprintf(out, "  %-4s %s  days=%-3d rank=%d  %s\n", slot.Weekday, mean, slot.Days, slot.Rank, slot.Color)
	}
}

func writeFile(path string, write func(io.Writer) error) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", path, err)
	}
	if err := write(f); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}
