// Package analytics holds the stateless transformations behind the
// dashboard: season filtering, weekday aggregation with rank-based colors,
// the rentals trend and the weather distribution. Every function returns a
// new slice and leaves its input untouched.
package analytics

import (
	"cmp"
	"math"
	"slices"

	"gonum.org/v1/gonum/stat"

	"bikeshare-dashboard/internal/models"
)

// FilterBySeason keeps the records whose season label equals season, in
// their original order. AllSeasons keeps every record.
func FilterBySeason(records []models.Record, season models.Season) []models.Record {
	if season == models.AllSeasons {
		return slices.Clone(records)
	}

	filtered := make([]models.Record, 0, len(records))
	for _, r := range records {
		if r.Season == season {
			filtered = append(filtered, r)
		}
	}
	return filtered
}

// WeekdayAggregate holds the mean rental count for each canonical weekday
// position. A nil mean marks a day with no records.
type WeekdayAggregate struct {
	Means [7]*float64
	Days  [7]int
}

// AggregateWeekdays groups records by weekday label and averages their
// counts. Records with an unknown weekday have no slot and are skipped.
func AggregateWeekdays(records []models.Record) WeekdayAggregate {
	var groups [7][]float64
	for _, r := range records {
		idx := r.Weekday.Index()
		if idx < 0 {
			continue
		}
		groups[idx] = append(groups[idx], float64(r.Count))
	}

	var agg WeekdayAggregate
	for i, counts := range groups {
		agg.Days[i] = len(counts)
		if len(counts) == 0 {
			continue
		}
		mean := stat.Mean(counts, nil)
		agg.Means[i] = &mean
	}
	return agg
}

// Trend returns the (date, count) series in date order. Records sharing a
// date keep their relative order.
func Trend(records []models.Record) []models.TrendPoint {
	points := make([]models.TrendPoint, len(records))
	for i, r := range records {
		points[i] = models.TrendPoint{Date: r.Date, Count: r.Count}
	}
	slices.SortStableFunc(points, func(a, b models.TrendPoint) int {
		return a.Date.Compare(b.Date)
	})
	return points
}

// WeatherSummaries describes the count distribution per weather label,
// ordered by weather code with Unknown last. Quartiles are empirical.
func WeatherSummaries(records []models.Record) []models.WeatherSummary {
	groups := make(map[models.Weather][]float64)
	var order []models.Weather
	for _, r := range records {
		if _, ok := groups[r.Weather]; !ok {
			order = append(order, r.Weather)
		}
		groups[r.Weather] = append(groups[r.Weather], float64(r.Count))
	}

	slices.SortFunc(order, func(a, b models.Weather) int {
		return cmp.Compare(weatherSortKey(a), weatherSortKey(b))
	})

	summaries := make([]models.WeatherSummary, 0, len(order))
	for _, w := range order {
		counts := groups[w]
		sorted := slices.Clone(counts)
		slices.Sort(sorted)

		summaries = append(summaries, models.WeatherSummary{
			Weather: w,
			Code:    weatherCode(w),
			Days:    len(sorted),
			Min:     sorted[0],
			Q1:      stat.Quantile(0.25, stat.Empirical, sorted, nil),
			Median:  stat.Quantile(0.5, stat.Empirical, sorted, nil),
			Q3:      stat.Quantile(0.75, stat.Empirical, sorted, nil),
			Max:     sorted[len(sorted)-1],
			Mean:    stat.Mean(sorted, nil),
			Counts:  counts,
		})
	}
	return summaries
}

func weatherCode(w models.Weather) int {
	for code := 1; code <= 3; code++ {
		if models.WeatherFromCode(code) == w {
			return code
		}
	}
	return 0
}

func weatherSortKey(w models.Weather) int {
	if code := weatherCode(w); code > 0 {
		return code
	}
	return math.MaxInt
}
