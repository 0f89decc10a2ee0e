package models

import "strings"

// Season is the display label of a season code
type Season string

const (
	SeasonSpring  Season = "Spring"
	SeasonSummer  Season = "Summer"
	SeasonFall    Season = "Fall"
	SeasonWinter  Season = "Winter"
	SeasonUnknown Season = "Unknown"

	// AllSeasons is the filter sentinel that keeps every record
	AllSeasons Season = "All"
)

// SeasonFromCode maps season codes 1-4; any other code is SeasonUnknown
func SeasonFromCode(code int) Season {
	switch code {
	case 1:
		return SeasonSpring
	case 2:
		return SeasonSummer
	case 3:
		return SeasonFall
	case 4:
		return SeasonWinter
	default:
		return SeasonUnknown
	}
}

// Code returns the dataset code of s, or 0 for Unknown and All
func (s Season) Code() int {
	switch s {
	case SeasonSpring:
		return 1
	case SeasonSummer:
		return 2
	case SeasonFall:
		return 3
	case SeasonWinter:
		return 4
	default:
		return 0
	}
}

// ParseSeason resolves a selector value, case-insensitively. An empty value
// means AllSeasons.
func ParseSeason(value string) (Season, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return AllSeasons, nil
	}
	for _, s := range []Season{AllSeasons, SeasonSpring, SeasonSummer, SeasonFall, SeasonWinter, SeasonUnknown} {
		if strings.EqualFold(value, string(s)) {
			return s, nil
		}
	}
	return "", &ValidationError{
		Field:   "season",
		Value:   value,
		Message: "unknown season, expected one of All, Spring, Summer, Fall, Winter",
	}
}

// Weekday is the display label of a weekday code
type Weekday string

const (
	Monday         Weekday = "Mon"
	Tuesday        Weekday = "Tue"
	Wednesday      Weekday = "Wed"
	Thursday       Weekday = "Thu"
	Friday         Weekday = "Fri"
	Saturday       Weekday = "Sat"
	Sunday         Weekday = "Sun"
	WeekdayUnknown Weekday = "Unknown"
)

// Weekdays is the canonical presentation order; code i maps to Weekdays[i]
var Weekdays = [7]Weekday{Monday, Tuesday, Wednesday, Thursday, Friday, Saturday, Sunday}

// WeekdayFromCode maps weekday codes 0 (Monday) to 6 (Sunday)
func WeekdayFromCode(code int) Weekday {
	if code < 0 || code >= len(Weekdays) {
		return WeekdayUnknown
	}
	return Weekdays[code]
}

// Index returns the canonical position of w, or -1 for WeekdayUnknown
func (w Weekday) Index() int {
	for i, d := range Weekdays {
		if d == w {
			return i
		}
	}
	return -1
}

// Weather is the display label of a weather situation code
type Weather string

const (
	WeatherClear   Weather = "Clear"
	WeatherCloudy  Weather = "Cloudy"
	WeatherRain    Weather = "Rain"
	WeatherUnknown Weather = "Unknown"
)

// WeatherFromCode maps weather codes 1-3; any other code is WeatherUnknown
func WeatherFromCode(code int) Weather {
	switch code {
	case 1:
		return WeatherClear
	case 2:
		return WeatherCloudy
	case 3:
		return WeatherRain
	default:
		return WeatherUnknown
	}
}
