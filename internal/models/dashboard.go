package models

import "time"

// TrendPoint is one point of the rentals-over-time line chart
type TrendPoint struct {
	Date  time.Time `json:"date"`
	Count int       `json:"count"`
}

// WeatherSummary describes the rental distribution for one weather label
type WeatherSummary struct {
	Weather Weather `json:"weather"`
	Code    int     `json:"code"`
	Days    int     `json:"days"`
	Min     float64 `json:"min"`
	Q1      float64 `json:"q1"`
	Median  float64 `json:"median"`
	Q3      float64 `json:"q3"`
	Max     float64 `json:"max"`
	Mean    float64 `json:"mean"`

	// Counts holds the raw values in record order for box plot rendering
	Counts []float64 `json:"-"`
}

// WeekdaySlot is one of the seven fixed positions of the weekday chart.
// Mean is nil when the filtered data has no record for that day.
type WeekdaySlot struct {
	Weekday Weekday  `json:"weekday"`
	Mean    *float64 `json:"mean"`
	Days    int      `json:"days"`
	Rank    int      `json:"rank"`
	Color   string   `json:"color"`
}

// Dashboard is everything the rendering surface needs for one selection
type Dashboard struct {
	Season      Season           `json:"season"`
	Records     int              `json:"records"`
	Trend       []TrendPoint     `json:"trend"`
	Weather     []WeatherSummary `json:"weather"`
	Weekdays    []WeekdaySlot    `json:"weekdays"`
	GeneratedAt time.Time        `json:"generated_at"`
}

// WeekdayStatistics is a persisted weekday mean for one season
type WeekdayStatistics struct {
	ID          int64     `json:"id" db:"id"`
	Season      string    `json:"season" db:"season"`
	WeekdayCode int       `json:"weekday_code" db:"weekday_code"`
	MeanCount   *float64  `json:"mean_count,omitempty" db:"mean_count"`
	DayCount    int       `json:"day_count" db:"day_count"`
	CreatedAt   time.Time `json:"created_at" db:"created_at"`
	UpdatedAt   time.Time `json:"updated_at" db:"updated_at"`
}
