package analytics

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func ptrs(values ...float64) []*float64 {
	out := make([]*float64, len(values))
	for i := range values {
		v := values[i]
		if !math.IsNaN(v) {
			out[i] = &v
		}
	}
	return out
}

func TestRankFirst(t *testing.T) {
	tests := []struct {
		name   string
		values []*float64
		want   []int
	}{
		{
			// Mon..Sun: ties broken by first occurrence
			name:   "documented example",
			values: ptrs(10, 10, 30, 5, 20, 25, 15),
			want:   []int{2, 3, 7, 1, 5, 6, 4},
		},
		{
			name:   "all equal",
			values: ptrs(4, 4, 4, 4, 4, 4, 4),
			want:   []int{1, 2, 3, 4, 5, 6, 7},
		},
		{
			name:   "descending",
			values: ptrs(7, 6, 5, 4, 3, 2, 1),
			want:   []int{7, 6, 5, 4, 3, 2, 1},
		},
		{
			name:   "missing values rank first in position order",
			values: ptrs(10, math.NaN(), 30, math.NaN(), 20, 25, 15),
			want:   []int{3, 1, 7, 2, 5, 6, 4},
		},
		{
			name:   "all missing",
			values: make([]*float64, 7),
			want:   []int{1, 2, 3, 4, 5, 6, 7},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := RankFirst(tt.values)
			assert.Equal(t, tt.want, got)
			assert.NoError(t, VerifyDenseRanks(got))
		})
	}
}

func TestRankFirst_NaNPointerIsMissing(t *testing.T) {
	nan := math.NaN()
	one := 1.0
	assert.Equal(t, []int{2, 1}, RankFirst([]*float64{&one, &nan}))
}

func TestVerifyDenseRanks(t *testing.T) {
	assert.NoError(t, VerifyDenseRanks([]int{3, 1, 2}))
	assert.NoError(t, VerifyDenseRanks(nil))
	assert.Error(t, VerifyDenseRanks([]int{1, 1, 2}), "repeated rank")
	assert.Error(t, VerifyDenseRanks([]int{0, 1, 2}), "zero rank")
	assert.Error(t, VerifyDenseRanks([]int{1, 2, 4}), "gap")
}

func TestAssignColors(t *testing.T) {
	colors, err := AssignColors([]int{2, 3, 7, 1, 5, 6, 4}, Palette)
	require.NoError(t, err)

	assert.Equal(t, Palette[0], colors[3], "smallest mean gets the lightest shade")
	assert.Equal(t, Palette[6], colors[2], "largest mean gets the darkest shade")
	assert.Equal(t, Palette[1], colors[0])

	_, err = AssignColors([]int{1, 1, 2, 3, 4, 5, 6}, Palette)
	assert.Error(t, err)

	_, err = AssignColors([]int{1, 2, 3}, Palette[:2])
	assert.Error(t, err)
}

func TestMeanValues(t *testing.T) {
	slots, err := WeekdaySlots(nil)
	require.NoError(t, err)

	values := MeanValues(slots)
	require.Len(t, values, 7)
	for _, v := range values {
		assert.True(t, math.IsNaN(v))
	}
}
