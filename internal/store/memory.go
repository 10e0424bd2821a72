package store

import "recheck-go/internal/recheck"

// MemoryStore keeps records in a plain map with no persistence. Used by
// tests and by the "memory" store type for throwaway runs.
type MemoryStore struct {
	records map[string]recheck.Record
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{records: make(map[string]recheck.Record)}
}

func (s *MemoryStore) Lookup(name string) (*recheck.Record, error) {
	rec, ok := s.records[name]
	if !ok {
		return nil, nil
	}
	return &rec, nil
}

func (s *MemoryStore) Upsert(name string, rec recheck.Record) error {
	s.records[name] = rec
	return nil
}

func (s *MemoryStore) All() (map[string]recheck.Record, error) {
	out := make(map[string]recheck.Record, len(s.records))
	for name, rec := range s.records {
		out[name] = rec
	}
	return out, nil
}

func (s *MemoryStore) Save() error { return nil }

func (s *MemoryStore) Close() error { return nil }
