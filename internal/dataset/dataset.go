package dataset

import (
	"slices"
	"time"

	"bikeshare-dashboard/internal/models"
)

// Dataset is a loaded, labeled and read-only set of records
type Dataset struct {
	records  []models.Record
	source   string
	dropped  int
	loadedAt time.Time
}

// New builds a Dataset from records, deriving their labels
func New(source string, records []models.Record, dropped int) *Dataset {
	return &Dataset{
		records:  models.ApplyLabels(records),
		source:   source,
		dropped:  dropped,
		loadedAt: time.Now().UTC(),
	}
}

// Records returns a copy of the records in load order
func (d *Dataset) Records() []models.Record {
	return slices.Clone(d.records)
}

// Len returns the number of records
func (d *Dataset) Len() int {
	return len(d.records)
}

// Dropped returns how many input rows were discarded for an unparseable date
func (d *Dataset) Dropped() int {
	return d.dropped
}

// Source names where the dataset was loaded from
func (d *Dataset) Source() string {
	return d.source
}

// LoadedAt returns the load time in UTC
func (d *Dataset) LoadedAt() time.Time {
	return d.loadedAt
}

// Seasons returns the distinct season labels in order of first appearance
func (d *Dataset) Seasons() []models.Season {
	seen := make(map[models.Season]bool)
	var seasons []models.Season
	for _, r := range d.records {
		if !seen[r.Season] {
			seen[r.Season] = true
			seasons = append(seasons, r.Season)
		}
	}
	return seasons
}
