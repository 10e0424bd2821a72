package store

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/BurntSushi/toml"

	"recheck-go/internal/recheck"
)

// TOMLStore persists the whole record mapping as a single TOML file, one
// table per resource key. The file is read wholesale when the store is
// opened and written wholesale on Save; there is no partial update.
type TOMLStore struct {
	path    string
	records map[string]recheck.Record
}

// NewTOMLStore opens the store file at path. A missing file yields an empty
// store, not an error; any other read or parse failure is surfaced.
func NewTOMLStore(path string) (*TOMLStore, error) {
	records := make(map[string]recheck.Record)

	data, err := os.ReadFile(path)
	switch {
	case errors.Is(err, os.ErrNotExist):
		// First run, nothing recorded yet.
	case err != nil:
		return nil, fmt.Errorf("reading store file %s: %w", path, err)
	default:
		if err := toml.Unmarshal(data, &records); err != nil {
			return nil, fmt.Errorf("parsing store file %s: %w", path, err)
		}
	}

	return &TOMLStore{path: path, records: records}, nil
}

func (s *TOMLStore) Lookup(name string) (*recheck.Record, error) {
	rec, ok := s.records[name]
	if !ok {
		return nil, nil
	}
	return &rec, nil
}

func (s *TOMLStore) Upsert(name string, rec recheck.Record) error {
	s.records[name] = rec
	return nil
}

func (s *TOMLStore) All() (map[string]recheck.Record, error) {
	out := make(map[string]recheck.Record, len(s.records))
	for name, rec := range s.records {
		out[name] = rec
	}
	return out, nil
}

// Save serializes the whole mapping through a temp file in the target
// directory and renames it into place, so a failed write never truncates
// the previous store. Parent directories are created if needed.
func (s *TOMLStore) Save() error {
	dir := filepath.Dir(s.path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("creating store directory: %w", err)
	}

	tmp, err := os.CreateTemp(dir, ".records-*.toml")
	if err != nil {
		return fmt.Errorf("creating temp store file: %w", err)
	}
	tmpPath := tmp.Name()

	if err := toml.NewEncoder(tmp).Encode(s.records); err != nil {
		tmp.Close()
		os.Remove(tmpPath)
		return fmt.Errorf("encoding store: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("closing temp store file: %w", err)
	}

	if err := os.Rename(tmpPath, s.path); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("replacing store file %s: %w", s.path, err)
	}
	return nil
}

func (s *TOMLStore) Close() error { return nil }
