package analytics

import (
	"fmt"
	"math"
	"sort"

	"bikeshare-dashboard/internal/models"
)

// Palette is a sequential blue scale, lightest first. Rank r uses Palette[r-1].
var Palette = []string{
	"#eff3ff",
	"#c6dbef",
	"#9ecae1",
	"#6baed6",
	"#4292c6",
	"#2171b5",
	"#084594",
}

// RankFirst ranks values ascending starting at 1. Ties are broken by
// position, so the result is always a permutation of 1..len(values).
// Missing values (nil or NaN) rank below every present value.
func RankFirst(values []*float64) []int {
	order := make([]int, len(values))
	for i := range order {
		order[i] = i
	}

	sort.SliceStable(order, func(a, b int) bool {
		va, vb := values[order[a]], values[order[b]]
		switch {
		case !present(va):
			return present(vb)
		case !present(vb):
			return false
		default:
			return *va < *vb
		}
	})

	ranks := make([]int, len(values))
	for pos, idx := range order {
		ranks[idx] = pos + 1
	}
	return ranks
}

// VerifyDenseRanks checks that ranks is a permutation of 1..len(ranks)
func VerifyDenseRanks(ranks []int) error {
	seen := make([]bool, len(ranks))
	for i, r := range ranks {
		if r < 1 || r > len(ranks) {
			return fmt.Errorf("rank %d at position %d outside 1..%d", r, i, len(ranks))
		}
		if seen[r-1] {
			return fmt.Errorf("rank %d repeated at position %d", r, i)
		}
		seen[r-1] = true
	}
	return nil
}

// AssignColors maps each rank to its palette shade
func AssignColors(ranks []int, palette []string) ([]string, error) {
	if len(palette) < len(ranks) {
		return nil, fmt.Errorf("palette has %d shades for %d ranks", len(palette), len(ranks))
	}
	if err := VerifyDenseRanks(ranks); err != nil {
		return nil, err
	}

	colors := make([]string, len(ranks))
	for i, r := range ranks {
		colors[i] = palette[r-1]
	}
	return colors, nil
}

// WeekdaySlots aggregates records into the seven weekday slots, Mon..Sun,
// each with its rank and palette color
func WeekdaySlots(records []models.Record) ([]models.WeekdaySlot, error) {
	agg := AggregateWeekdays(records)
	means := agg.Means[:]

	ranks := RankFirst(means)
	colors, err := AssignColors(ranks, Palette)
	if err != nil {
		return nil, fmt.Errorf("failed to color weekdays: %w", err)
	}

	slots := make([]models.WeekdaySlot, len(models.Weekdays))
	for i, day := range models.Weekdays {
		slots[i] = models.WeekdaySlot{
			Weekday: day,
			Mean:    means[i],
			Days:    agg.Days[i],
			Rank:    ranks[i],
			Color:   colors[i],
		}
	}
	return slots, nil
}

// MeanValues returns the slot means with missing slots as NaN
func MeanValues(slots []models.WeekdaySlot) []float64 {
	values := make([]float64, len(slots))
	for i, s := range slots {
		values[i] = math.NaN()
		if s.Mean != nil {
			values[i] = *s.Mean
		}
	}
	return values
}

func present(v *float64) bool {
	return v != nil && !math.IsNaN(*v)
}
