package models

import (
	"strconv"
	"strings"
	"time"
)

// Column names of the input dataset
const (
	ColumnDate    = "dteday"
	ColumnSeason  = "season"
	ColumnWeekday = "weekday"
	ColumnWeather = "weathersit"
	ColumnCount   = "cnt"
)

// RequiredColumns lists the columns a dataset must carry; others are ignored
var RequiredColumns = []string{ColumnDate, ColumnSeason, ColumnWeekday, ColumnWeather, ColumnCount}

// dateLayouts are tried in order when parsing the date column
var dateLayouts = []string{
	"2006-01-02",
	"2006-01-02 15:04:05",
	"2006-01-02T15:04:05Z07:00",
	"2006/01/02",
	"01/02/2006",
}

// Record is one day of rentals. Codes are kept as loaded; labels are derived.
type Record struct {
	Date        time.Time `json:"date" db:"rental_date"`
	SeasonCode  int       `json:"season_code" db:"season_code"`
	WeekdayCode int       `json:"weekday_code" db:"weekday_code"`
	WeatherCode int       `json:"weather_code" db:"weather_code"`
	Count       int       `json:"count" db:"rental_count"`

	Season  Season  `json:"season" db:"-"`
	Weekday Weekday `json:"weekday" db:"-"`
	Weather Weather `json:"weather" db:"-"`
}

// WithLabels returns a copy of r with the label columns derived from its codes
func (r Record) WithLabels() Record {
	r.Season = SeasonFromCode(r.SeasonCode)
	r.Weekday = WeekdayFromCode(r.WeekdayCode)
	r.Weather = WeatherFromCode(r.WeatherCode)
	return r
}

// ApplyLabels derives the label columns for every record into a new slice.
// Applying it to already labeled records yields the same records.
func ApplyLabels(records []Record) []Record {
	labeled := make([]Record, len(records))
	for i, r := range records {
		labeled[i] = r.WithLabels()
	}
	return labeled
}

// RawRecord is a single CSV row before conversion
type RawRecord struct {
	Line    int
	Date    string
	Season  string
	Weekday string
	Weather string
	Count   string
}

// ToRecord converts the raw row into a labeled Record.
// A ValidationError on ColumnDate marks a row with an unparseable date.
func (r *RawRecord) ToRecord() (Record, error) {
	date, err := ParseDate(r.Date)
	if err != nil {
		return Record{}, &ValidationError{
			Field:   ColumnDate,
			Value:   r.Date,
			Line:    r.Line,
			Message: "invalid date format",
		}
	}

	season, err := parseCode(ColumnSeason, r.Season, r.Line)
	if err != nil {
		return Record{}, err
	}
	weekday, err := parseCode(ColumnWeekday, r.Weekday, r.Line)
	if err != nil {
		return Record{}, err
	}
	weather, err := parseCode(ColumnWeather, r.Weather, r.Line)
	if err != nil {
		return Record{}, err
	}
	count, err := parseCode(ColumnCount, r.Count, r.Line)
	if err != nil {
		return Record{}, err
	}
	if count < 0 {
		return Record{}, &ValidationError{
			Field:   ColumnCount,
			Value:   r.Count,
			Line:    r.Line,
			Message: "rental count must not be negative",
		}
	}

	rec := Record{
		Date:        date,
		SeasonCode:  season,
		WeekdayCode: weekday,
		WeatherCode: weather,
		Count:       count,
	}
	return rec.WithLabels(), nil
}

// ParseDate parses a dataset date in any of the accepted layouts
func ParseDate(value string) (time.Time, error) {
	value = strings.TrimSpace(value)
	var lastErr error
	for _, layout := range dateLayouts {
		t, err := time.Parse(layout, value)
		if err == nil {
			return t, nil
		}
		lastErr = err
	}
	return time.Time{}, lastErr
}

func parseCode(field, value string, line int) (int, error) {
	value = strings.TrimSpace(value)
	n, err := strconv.Atoi(value)
	if err != nil {
		// integer columns exported as floats, e.g. "3.0"
		f, ferr := strconv.ParseFloat(value, 64)
		if ferr != nil || f != float64(int(f)) {
			return 0, &ValidationError{
				Field:   field,
				Value:   value,
				Line:    line,
				Message: "expected an integer",
			}
		}
		n = int(f)
	}
	return n, nil
}
