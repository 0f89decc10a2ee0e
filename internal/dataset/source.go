package dataset

import (
	"context"
	"fmt"

	"bikeshare-dashboard/internal/models"
)

// Source produces a fresh Dataset each time it is loaded
type Source interface {
	Load(ctx context.Context) (*Dataset, error)
	Name() string
}

// FileSource loads the dataset from a CSV file
type FileSource struct {
	path   string
	loader *Loader
}

// NewFileSource creates a source reading path with loader
func NewFileSource(path string, loader *Loader) *FileSource {
	return &FileSource{path: path, loader: loader}
}

// Load reads and parses the file
func (s *FileSource) Load(ctx context.Context) (*Dataset, error) {
	return s.loader.LoadFile(ctx, s.path)
}

// Name returns the file path
func (s *FileSource) Name() string {
	return s.path
}

// Path returns the file path, used to watch the file for changes
func (s *FileSource) Path() string {
	return s.path
}

// RecordLister is the read side of the rentals store
type RecordLister interface {
	ListRecords(ctx context.Context) ([]models.Record, error)
}

// StoreSource loads the dataset from the rentals table
type StoreSource struct {
	name  string
	store RecordLister
}

// NewStoreSource creates a source backed by store
func NewStoreSource(name string, store RecordLister) *StoreSource {
	return &StoreSource{name: name, store: store}
}

// Load lists every stored record in date order
func (s *StoreSource) Load(ctx context.Context) (*Dataset, error) {
	records, err := s.store.ListRecords(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load dataset from %s: %w", s.name, err)
	}
	return New(s.name, records, 0), nil
}

// Name returns the store name
func (s *StoreSource) Name() string {
	return s.name
}
