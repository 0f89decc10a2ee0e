package models

import (
	"errors"
	"testing"
	"time"
)

// TestRawRecord_ToRecord tests conversion of raw CSV rows
func TestRawRecord_ToRecord(t *testing.T) {
	tests := []struct {
		name        string
		record      RawRecord
		wantErr     bool
		wantField   string
		checkValues func(*testing.T, Record)
	}{
		{
			name:   "valid record",
			record: RawRecord{Line: 2, Date: "2021-01-04", Season: "1", Weekday: "0", Weather: "1", Count: "100"},
			checkValues: func(t *testing.T, r Record) {
				want := time.Date(2021, 1, 4, 0, 0, 0, 0, time.UTC)
				if !r.Date.Equal(want) {
					t.Errorf("Date = %v, want %v", r.Date, want)
				}
				if r.Season != SeasonSpring {
					t.Errorf("Season = %v, want %v", r.Season, SeasonSpring)
				}
				if r.Weekday != Monday {
					t.Errorf("Weekday = %v, want %v", r.Weekday, Monday)
				}
				if r.Weather != WeatherClear {
					t.Errorf("Weather = %v, want %v", r.Weather, WeatherClear)
				}
				if r.Count != 100 {
					t.Errorf("Count = %v, want 100", r.Count)
				}
			},
		},
		{
			name:   "unmapped codes produce Unknown labels",
			record: RawRecord{Line: 3, Date: "2021-01-05", Season: "9", Weekday: "7", Weather: "4", Count: "5"},
			checkValues: func(t *testing.T, r Record) {
				if r.Season != SeasonUnknown {
					t.Errorf("Season = %v, want %v", r.Season, SeasonUnknown)
				}
				if r.Weekday != WeekdayUnknown {
					t.Errorf("Weekday = %v, want %v", r.Weekday, WeekdayUnknown)
				}
				if r.Weather != WeatherUnknown {
					t.Errorf("Weather = %v, want %v", r.Weather, WeatherUnknown)
				}
				if r.SeasonCode != 9 || r.WeekdayCode != 7 || r.WeatherCode != 4 {
					t.Errorf("codes not preserved: %+v", r)
				}
			},
		},
		{
			name:   "float encoded integers",
			record: RawRecord{Line: 4, Date: "2021/01/06", Season: "2.0", Weekday: "2", Weather: "3", Count: "42.0"},
			checkValues: func(t *testing.T, r Record) {
				if r.SeasonCode != 2 || r.Count != 42 {
					t.Errorf("SeasonCode = %d, Count = %d, want 2, 42", r.SeasonCode, r.Count)
				}
				if r.Date.Day() != 6 {
					t.Errorf("Date = %v, want day 6", r.Date)
				}
			},
		},
		{
			name:      "unparseable date",
			record:    RawRecord{Line: 5, Date: "not-a-date", Season: "1", Weekday: "0", Weather: "1", Count: "1"},
			wantErr:   true,
			wantField: ColumnDate,
		},
		{
			name:      "non integer season",
			record:    RawRecord{Line: 6, Date: "2021-01-04", Season: "spring", Weekday: "0", Weather: "1", Count: "1"},
			wantErr:   true,
			wantField: ColumnSeason,
		},
		{
			name:      "fractional count",
			record:    RawRecord{Line: 7, Date: "2021-01-04", Season: "1", Weekday: "0", Weather: "1", Count: "1.5"},
			wantErr:   true,
			wantField: ColumnCount,
		},
		{
			name:      "negative count",
			record:    RawRecord{Line: 8, Date: "2021-01-04", Season: "1", Weekday: "0", Weather: "1", Count: "-3"},
			wantErr:   true,
			wantField: ColumnCount,
		},
		{
			name:      "NaN weather",
			record:    RawRecord{Line: 9, Date: "2021-01-04", Season: "1", Weekday: "0", Weather: "NaN", Count: "3"},
			wantErr:   true,
			wantField: ColumnWeather,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec, err := tt.record.ToRecord()

			if (err != nil) != tt.wantErr {
				t.Fatalf("ToRecord() error = %v, wantErr %v", err, tt.wantErr)
			}

			if tt.wantErr {
				var verr *ValidationError
				if !errors.As(err, &verr) {
					t.Fatalf("error %T is not a *ValidationError", err)
				}
				if verr.Field != tt.wantField {
					t.Errorf("Field = %q, want %q", verr.Field, tt.wantField)
				}
				if verr.Line != tt.record.Line {
					t.Errorf("Line = %d, want %d", verr.Line, tt.record.Line)
				}
				return
			}

			if tt.checkValues != nil {
				tt.checkValues(t, rec)
			}
		})
	}
}

func TestApplyLabels_Idempotent(t *testing.T) {
	records := []Record{
		{SeasonCode: 3, WeekdayCode: 4, WeatherCode: 2, Count: 10},
		{SeasonCode: 0, WeekdayCode: 6, WeatherCode: 1, Count: 20},
	}

	once := ApplyLabels(records)
	twice := ApplyLabels(once)

	for i := range once {
		if once[i] != twice[i] {
			t.Errorf("record %d changed on second pass: %+v != %+v", i, once[i], twice[i])
		}
	}
	if records[0].Season != "" {
		t.Error("ApplyLabels mutated its input")
	}
	if once[0].Season != SeasonFall || once[0].Weekday != Friday || once[0].Weather != WeatherCloudy {
		t.Errorf("unexpected labels: %+v", once[0])
	}
	if once[1].Season != SeasonUnknown || once[1].Weekday != Sunday {
		t.Errorf("unexpected labels: %+v", once[1])
	}
}

func TestLabelMappings(t *testing.T) {
	seasons := map[int]Season{1: SeasonSpring, 2: SeasonSummer, 3: SeasonFall, 4: SeasonWinter, 0: SeasonUnknown, 5: SeasonUnknown, -1: SeasonUnknown}
	for code, want := range seasons {
		if got := SeasonFromCode(code); got != want {
			t.Errorf("SeasonFromCode(%d) = %v, want %v", code, got, want)
		}
	}

	for code, want := range Weekdays {
		if got := WeekdayFromCode(code); got != want {
			t.Errorf("WeekdayFromCode(%d) = %v, want %v", code, got, want)
		}
		if got := want.Index(); got != code {
			t.Errorf("%v.Index() = %d, want %d", want, got, code)
		}
	}
	if got := WeekdayFromCode(-1); got != WeekdayUnknown {
		t.Errorf("WeekdayFromCode(-1) = %v, want Unknown", got)
	}
	if got := WeekdayUnknown.Index(); got != -1 {
		t.Errorf("WeekdayUnknown.Index() = %d, want -1", got)
	}

	if got := SeasonWinter.Code(); got != 4 {
		t.Errorf("SeasonWinter.Code() = %d, want 4", got)
	}
	if got := AllSeasons.Code(); got != 0 {
		t.Errorf("AllSeasons.Code() = %d, want 0", got)
	}
}

func TestParseSeason(t *testing.T) {
	tests := []struct {
		in      string
		want    Season
		wantErr bool
	}{
		{"", AllSeasons, false},
		{"All", AllSeasons, false},
		{"spring", SeasonSpring, false},
		{" Winter ", SeasonWinter, false},
		{"unknown", SeasonUnknown, false},
		{"Monsoon", "", true},
	}

	for _, tt := range tests {
		got, err := ParseSeason(tt.in)
		if (err != nil) != tt.wantErr {
			t.Errorf("ParseSeason(%q) error = %v, wantErr %v", tt.in, err, tt.wantErr)
			continue
		}
		if got != tt.want {
			t.Errorf("ParseSeason(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

// TestValidationError tests error handling
func TestValidationError(t *testing.T) {
	err := &ValidationError{
		Field:   "dteday",
		Value:   "invalid",
		Line:    12,
		Message: "invalid date format",
	}

	if err.Error() != `line 12: dteday "invalid": invalid date format` {
		t.Errorf("Error() = %v", err.Error())
	}

	if err.IsTransient() {
		t.Error("ValidationError should not be transient")
	}
}
